package models

import (
	"strings"

	"github.com/aashari/go-generative-gateway/internal/types"
)

type keywordRule[T any] struct {
	value    T
	keywords []string
}

// Order matters: the first matching rule wins.
var providerRules = []keywordRule[types.Provider]{
	{types.ProviderClaude, []string{"claude"}},
	{types.ProviderOpenAI, []string{"gpt", "o1", "o3", "o4", "dall-e"}},
	{types.ProviderGoogle, []string{"gemini", "veo"}},
}

var modeRules = []keywordRule[types.Mode]{
	{types.ModeImage, []string{"dall-e", "imagen", "image"}},
	{types.ModeVideo, []string{"veo", "video", "sora"}},
}

func matchKeyword[T any](rules []keywordRule[T], id string) (T, bool) {
	lower := strings.ToLower(id)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.value, true
			}
		}
	}
	var zero T
	return zero, false
}

// DetectProvider infers the provider family from keywords in the identifier.
// Identifiers with no recognizable keyword belong to claude.
func DetectProvider(id string) types.Provider {
	if p, ok := matchKeyword(providerRules, id); ok {
		return p
	}
	return types.ProviderClaude
}

// DetectMode infers the generation mode from keywords in the identifier.
func DetectMode(id string) types.Mode {
	if m, ok := matchKeyword(modeRules, id); ok {
		return m
	}
	return types.ModeChat
}
