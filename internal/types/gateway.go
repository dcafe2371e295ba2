package types

import "strings"

// Provider identifies one of the three backend AI families.
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
	ProviderGoogle Provider = "google"
)

// Providers lists every provider in resolution priority order.
var Providers = []Provider{ProviderClaude, ProviderOpenAI, ProviderGoogle}

// ParseProvider accepts the canonical names and the aliases used by clients
// (anthropic, chatgpt, gemini).
func ParseProvider(s string) (Provider, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "claude", "anthropic":
		return ProviderClaude, true
	case "openai", "chatgpt":
		return ProviderOpenAI, true
	case "google", "gemini":
		return ProviderGoogle, true
	}
	return "", false
}

// Mode is the generation class of a request.
type Mode string

const (
	ModeChat  Mode = "chat"
	ModeImage Mode = "image"
	ModeVideo Mode = "video"
)

// ParseMode returns the mode named by s, case-insensitively.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeChat:
		return ModeChat, true
	case ModeImage:
		return ModeImage, true
	case ModeVideo:
		return ModeVideo, true
	}
	return "", false
}

// Capabilities are the optional per-model tags carried by a ModelDescriptor.
type Capabilities struct {
	SupportsSystemPrompt bool    `json:"supports_system_prompt"`
	SupportsMultimodal   bool    `json:"supports_multimodal"`
	SupportsRealtime     bool    `json:"supports_realtime"`
	SupportsVideo        bool    `json:"supports_video"`
	MaxOutputTokens      int     `json:"max_output_tokens"`
	DefaultTemperature   float64 `json:"default_temperature"`
}

// ModelDescriptor describes one known model identifier.
type ModelDescriptor struct {
	ID           string        `json:"id"`
	Provider     Provider      `json:"provider"`
	Capabilities *Capabilities `json:"capabilities,omitempty"`
}

// ModelTier groups catalog entries for display.
type ModelTier string

const (
	TierFlagship ModelTier = "flagship"
	TierBalanced ModelTier = "balanced"
	TierFast     ModelTier = "fast"
	TierLegacy   ModelTier = "legacy"
)

// CatalogEntry is a model advertised on the models endpoint.
type CatalogEntry struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Provider Provider  `json:"provider"`
	Tier     ModelTier `json:"tier"`
}

// Selection is the per-request outcome of model and provider resolution.
type Selection struct {
	RequestedModel string   `json:"requested_model"`
	ResolvedModel  string   `json:"resolved_model"`
	Provider       Provider `json:"provider"`
	Mode           Mode     `json:"mode"`
	IsFallback     bool     `json:"is_fallback"`
}
