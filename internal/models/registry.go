// Package models holds the static model tables: valid identifiers per provider,
// the fallback map, provider defaults, capability descriptors and the display catalog.
// Everything here is built once at package init and never mutated.
package models

import (
	"sort"

	"github.com/aashari/go-generative-gateway/internal/types"
)

// DefaultModel is used when the client sends no model at all.
const DefaultModel = "claude-3-5-sonnet-20241022"

var providerDefaults = map[types.Provider]string{
	types.ProviderClaude: "claude-3-5-sonnet-20241022",
	types.ProviderOpenAI: "gpt-4o",
	types.ProviderGoogle: "gemini-1.5-pro",
}

var validModels = map[types.Provider][]string{
	types.ProviderClaude: {
		"claude-3-5-sonnet-20241022",
		"claude-3-5-haiku-20241022",
		"claude-3-opus-20240229",
		"claude-3-sonnet-20240229",
		"claude-3-haiku-20240307",
	},
	types.ProviderOpenAI: {
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
		"gpt-4-turbo-preview",
		"gpt-4",
		"gpt-3.5-turbo",
		"gpt-3.5-turbo-16k",
		"o1-preview",
		"o1-mini",
		"dall-e-3",
		"dall-e-2",
	},
	types.ProviderGoogle: {
		"gemini-1.5-pro",
		"gemini-1.5-pro-exp-0827",
		"gemini-1.5-flash",
		"gemini-1.5-flash-8b",
		"gemini-1.0-pro",
	},
}

// fallbacks maps deprecated or not-yet-supported identifiers to supported ones.
// Self-referential entries accept the identifier as-is but still flag the
// request as a fallback so the backend can special-case it.
var fallbacks = map[string]string{
	"gpt-5":                    "gpt-4o",
	"gpt-5-mini":               "gpt-4o-mini",
	"o3":                       "o1-preview",
	"o3-pro":                   "o1-preview",
	"o4-mini":                  "o1-mini",
	"claude-sonnet-4-20250514": "claude-3-5-sonnet-20241022",
	"claude-opus-4":            "claude-3-opus-20240229",
	"gemini-2.5-pro":           "gemini-1.5-pro",
	"gemini-2.5-flash":         "gemini-1.5-flash",
	"gemini-2.5-flash-image":   "gemini-2.5-flash-image",
	"veo-3":                    "veo-3",
}

var validSet = func() map[types.Provider]map[string]struct{} {
	out := make(map[types.Provider]map[string]struct{}, len(validModels))
	for provider, ids := range validModels {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		out[provider] = set
	}
	return out
}()

// IsValid reports whether id is in the provider's known-valid list.
func IsValid(provider types.Provider, id string) bool {
	_, ok := validSet[provider][id]
	return ok
}

// ProviderDefault returns the designated default model of a provider.
// Unknown providers get the global default.
func ProviderDefault(provider types.Provider) string {
	if id, ok := providerDefaults[provider]; ok {
		return id
	}
	return DefaultModel
}

// Fallback returns the fallback target for id, if one is registered.
func Fallback(id string) (string, bool) {
	target, ok := fallbacks[id]
	return target, ok
}

// FallbackEntries returns a copy of the fallback map.
func FallbackEntries() map[string]string {
	out := make(map[string]string, len(fallbacks))
	for k, v := range fallbacks {
		out[k] = v
	}
	return out
}

// ValidModels returns the known-valid identifiers of a provider, in table order.
func ValidModels(provider types.Provider) []string {
	return append([]string(nil), validModels[provider]...)
}

// AllValidModels returns every valid identifier across providers, sorted.
func AllValidModels() []string {
	var out []string
	for _, provider := range types.Providers {
		out = append(out, validModels[provider]...)
	}
	sort.Strings(out)
	return out
}
