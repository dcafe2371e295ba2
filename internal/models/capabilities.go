package models

import (
	"strings"

	"github.com/aashari/go-generative-gateway/internal/types"
)

const (
	defaultMaxTokens       = 4096
	defaultGoogleMaxTokens = 8192
	defaultTemperature     = 0.7
	reasoningTemperature   = 1.0
)

// specialCapabilities covers models whose limits differ from the provider defaults.
var specialCapabilities = map[string]types.Capabilities{
	// reasoning models: fixed temperature, no system prompt
	"o1-preview":            {MaxOutputTokens: 32768, DefaultTemperature: 1.0},
	"o1-mini":               {MaxOutputTokens: 65536, DefaultTemperature: 1.0},
	"o1-pro":                {MaxOutputTokens: 32768, DefaultTemperature: 1.0},
	"o3":                    {MaxOutputTokens: 40000, DefaultTemperature: 1.0},
	"o3-pro":                {MaxOutputTokens: 50000, DefaultTemperature: 1.0},
	"o3-deep-research":      {MaxOutputTokens: 60000, DefaultTemperature: 1.0},
	"o4-mini":               {MaxOutputTokens: 32768, DefaultTemperature: 1.0},
	"o4-mini-deep-research": {MaxOutputTokens: 40000, DefaultTemperature: 1.0},

	"gpt-5":        {MaxOutputTokens: 128000, DefaultTemperature: 0.7, SupportsSystemPrompt: true},
	"gpt-5-mini":   {MaxOutputTokens: 64000, DefaultTemperature: 0.7, SupportsSystemPrompt: true},
	"gpt-5-nano":   {MaxOutputTokens: 32000, DefaultTemperature: 0.7, SupportsSystemPrompt: true},
	"gpt-4.1":      {MaxOutputTokens: 32000, DefaultTemperature: 0.7, SupportsSystemPrompt: true},
	"gpt-4.1-mini": {MaxOutputTokens: 16000, DefaultTemperature: 0.7, SupportsSystemPrompt: true},
	"gpt-4.1-nano": {MaxOutputTokens: 8000, DefaultTemperature: 0.7, SupportsSystemPrompt: true},

	"gpt-realtime":    {MaxOutputTokens: 16000, DefaultTemperature: 0.7, SupportsRealtime: true},
	"gpt-4o-realtime": {MaxOutputTokens: 32000, DefaultTemperature: 0.7, SupportsRealtime: true},

	"gemini-2.5-pro":   {MaxOutputTokens: 100000, DefaultTemperature: 0.7, SupportsMultimodal: true},
	"gemini-2.5-flash": {MaxOutputTokens: 50000, DefaultTemperature: 0.7, SupportsMultimodal: true},
	"veo-3":            {MaxOutputTokens: 32000, DefaultTemperature: 0.7, SupportsVideo: true},

	"claude-sonnet-4-20250514": {MaxOutputTokens: 200000, DefaultTemperature: 0.7, SupportsSystemPrompt: true},
	"claude-opus-4":            {MaxOutputTokens: 200000, DefaultTemperature: 0.7, SupportsSystemPrompt: true},
}

// tokenLimits are the per-model output limits for the valid chat models.
var tokenLimits = map[string]int{
	"gpt-4o":                     4096,
	"gpt-4o-mini":                4096,
	"gpt-4-turbo":                4096,
	"gpt-4":                      4096,
	"gpt-3.5-turbo":              4096,
	"claude-3-5-sonnet-20241022": 4096,
	"claude-3-5-haiku-20241022":  4096,
	"claude-3-opus-20240229":     4096,
	"claude-3-sonnet-20240229":   4096,
	"claude-3-haiku-20240307":    4096,
	"gemini-1.5-pro":             8192,
	"gemini-1.5-flash":           8192,
	"gemini-1.0-pro":             4096,
}

var descriptors = buildDescriptors()

func buildDescriptors() map[string]types.ModelDescriptor {
	out := make(map[string]types.ModelDescriptor)

	add := func(id string, provider types.Provider) {
		if _, exists := out[id]; exists {
			return
		}
		caps := capabilitiesFor(id, provider)
		out[id] = types.ModelDescriptor{ID: id, Provider: provider, Capabilities: &caps}
	}

	for _, provider := range types.Providers {
		for _, id := range validModels[provider] {
			add(id, provider)
		}
	}
	for source, target := range fallbacks {
		add(source, DetectProvider(source))
		add(target, DetectProvider(target))
	}
	for id := range specialCapabilities {
		add(id, DetectProvider(id))
	}
	for _, entry := range catalog {
		add(entry.ID, entry.Provider)
	}
	return out
}

func capabilitiesFor(id string, provider types.Provider) types.Capabilities {
	if caps, ok := specialCapabilities[id]; ok {
		return caps
	}
	caps := types.Capabilities{
		MaxOutputTokens:      DefaultMaxTokens(id),
		DefaultTemperature:   DefaultTemperature(id),
		SupportsSystemPrompt: !isReasoningModel(id),
	}
	if provider == types.ProviderGoogle || strings.HasPrefix(id, "gpt-4o") {
		caps.SupportsMultimodal = true
	}
	return caps
}

// Describe returns the descriptor of a known model identifier.
func Describe(id string) (types.ModelDescriptor, bool) {
	d, ok := descriptors[id]
	return d, ok
}

// DefaultMaxTokens returns the max_tokens default used when the client sends none.
func DefaultMaxTokens(id string) int {
	if caps, ok := specialCapabilities[id]; ok {
		return caps.MaxOutputTokens
	}
	if limit, ok := tokenLimits[id]; ok {
		return limit
	}
	if strings.Contains(strings.ToLower(id), "gemini") {
		return defaultGoogleMaxTokens
	}
	return defaultMaxTokens
}

// DefaultTemperature returns the temperature default used when the client sends none.
func DefaultTemperature(id string) float64 {
	if caps, ok := specialCapabilities[id]; ok {
		return caps.DefaultTemperature
	}
	if isReasoningModel(id) {
		return reasoningTemperature
	}
	return defaultTemperature
}

func isReasoningModel(id string) bool {
	lower := strings.ToLower(id)
	return strings.HasPrefix(lower, "o1") || strings.HasPrefix(lower, "o3") || strings.HasPrefix(lower, "o4")
}
