package models

import "github.com/aashari/go-generative-gateway/internal/types"

func entry(id, name string, provider types.Provider, tier types.ModelTier) types.CatalogEntry {
	return types.CatalogEntry{ID: id, Name: name, Provider: provider, Tier: tier}
}

// catalog is the display list served on /v1/models. It is broader than the
// valid lists: entries outside them resolve through fallbacks or provider defaults.
var catalog = []types.CatalogEntry{
	entry("claude-3-5-sonnet-20241022", "Claude 3.5 Sonnet (New)", types.ProviderClaude, types.TierFlagship),
	entry("claude-3-5-haiku-20241022", "Claude 3.5 Haiku", types.ProviderClaude, types.TierFast),
	entry("claude-3-sonnet-20240229", "Claude 3 Sonnet", types.ProviderClaude, types.TierBalanced),
	entry("claude-3-haiku-20240307", "Claude 3 Haiku", types.ProviderClaude, types.TierFast),
	entry("claude-haiku-3.5", "Claude Haiku 3.5", types.ProviderClaude, types.TierFast),
	entry("claude-sonnet-4-20250514", "Claude Sonnet 4", types.ProviderClaude, types.TierFlagship),
	entry("claude-opus-4", "Claude Opus 4.x", types.ProviderClaude, types.TierFlagship),
	entry("claude-sonnet-3.7", "Claude Sonnet 3.7", types.ProviderClaude, types.TierFlagship),
	entry("claude-3-opus-20240229", "Claude 3 Opus", types.ProviderClaude, types.TierFlagship),

	entry("gpt-4o", "GPT-4o (Latest)", types.ProviderOpenAI, types.TierFlagship),
	entry("gpt-4o-mini", "GPT-4o Mini", types.ProviderOpenAI, types.TierFast),
	entry("gpt-4-turbo", "GPT-4 Turbo", types.ProviderOpenAI, types.TierFlagship),
	entry("gpt-4-turbo-preview", "GPT-4 Turbo Preview", types.ProviderOpenAI, types.TierFlagship),
	entry("gpt-4", "GPT-4", types.ProviderOpenAI, types.TierBalanced),
	entry("gpt-3.5-turbo", "GPT-3.5 Turbo", types.ProviderOpenAI, types.TierFast),
	entry("gpt-3.5-turbo-16k", "GPT-3.5 Turbo 16K", types.ProviderOpenAI, types.TierFast),
	entry("gpt-5", "GPT-5 (Beta)", types.ProviderOpenAI, types.TierFlagship),
	entry("gpt-5-mini", "GPT-5 Mini", types.ProviderOpenAI, types.TierFast),
	entry("gpt-5-nano", "GPT-5 Nano", types.ProviderOpenAI, types.TierFast),
	entry("o3-deep-research", "o3 Deep Research", types.ProviderOpenAI, types.TierFlagship),
	entry("o3-pro", "o3 Pro", types.ProviderOpenAI, types.TierFlagship),
	entry("o3", "o3 (Reasoning)", types.ProviderOpenAI, types.TierFlagship),
	entry("o4-mini-deep-research", "o4 Mini Deep Research", types.ProviderOpenAI, types.TierBalanced),
	entry("o4-mini", "o4 Mini", types.ProviderOpenAI, types.TierFast),
	entry("o1-pro", "o1 Pro", types.ProviderOpenAI, types.TierFlagship),
	entry("o1-preview", "o1 Preview", types.ProviderOpenAI, types.TierFlagship),
	entry("o1-mini", "o1 Mini", types.ProviderOpenAI, types.TierFast),
	entry("gpt-4.1", "GPT-4.1", types.ProviderOpenAI, types.TierBalanced),
	entry("gpt-4.1-mini", "GPT-4.1 Mini", types.ProviderOpenAI, types.TierFast),
	entry("gpt-4.1-nano", "GPT-4.1 Nano", types.ProviderOpenAI, types.TierFast),
	entry("gpt-4o-realtime", "GPT-4o Realtime", types.ProviderOpenAI, types.TierFlagship),
	entry("gpt-realtime", "GPT Realtime", types.ProviderOpenAI, types.TierFlagship),
	entry("gpt-audio", "GPT Audio", types.ProviderOpenAI, types.TierBalanced),
	entry("chatgpt-4o", "ChatGPT-4o", types.ProviderOpenAI, types.TierFlagship),
	entry("babbage-002", "Babbage-002", types.ProviderOpenAI, types.TierLegacy),
	entry("davinci-002", "Davinci-002", types.ProviderOpenAI, types.TierLegacy),
	entry("codex-mini-latest", "Codex Mini Latest", types.ProviderOpenAI, types.TierFast),
	entry("dall-e-2", "DALL-E 2", types.ProviderOpenAI, types.TierBalanced),
	entry("dall-e-3", "DALL-E 3", types.ProviderOpenAI, types.TierFlagship),

	entry("gemini-1.5-pro", "Gemini 1.5 Pro", types.ProviderGoogle, types.TierFlagship),
	entry("gemini-1.5-pro-exp-0827", "Gemini 1.5 Pro Experimental", types.ProviderGoogle, types.TierFlagship),
	entry("gemini-1.5-flash", "Gemini 1.5 Flash", types.ProviderGoogle, types.TierFast),
	entry("gemini-1.5-flash-8b", "Gemini 1.5 Flash 8B", types.ProviderGoogle, types.TierFast),
	entry("gemini-1.0-pro", "Gemini 1.0 Pro", types.ProviderGoogle, types.TierBalanced),
	entry("gemini-2.5-pro", "Gemini 2.5 Pro", types.ProviderGoogle, types.TierFlagship),
	entry("gemini-2.5-flash", "Gemini 2.5 Flash", types.ProviderGoogle, types.TierFast),
	entry("gemini-2.5-flash-lite", "Gemini 2.5 Flash-Lite", types.ProviderGoogle, types.TierFast),
	entry("veo-3", "Veo 3 (Video)", types.ProviderGoogle, types.TierFlagship),
	entry("gemini-2.5-flash-image", "Gemini 2.5 Flash Image", types.ProviderGoogle, types.TierBalanced),
	entry("gemini-embeddings", "Gemini Embeddings", types.ProviderGoogle, types.TierBalanced),
}

// Catalog returns the catalog entries of one provider, or all of them when
// provider is empty.
func Catalog(provider types.Provider) []types.CatalogEntry {
	if provider == "" {
		return append([]types.CatalogEntry(nil), catalog...)
	}
	out := make([]types.CatalogEntry, 0, len(catalog))
	for _, e := range catalog {
		if e.Provider == provider {
			out = append(out, e)
		}
	}
	return out
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (types.CatalogEntry, bool) {
	for _, e := range catalog {
		if e.ID == id {
			return e, true
		}
	}
	return types.CatalogEntry{}, false
}
