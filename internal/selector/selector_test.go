package selector

import (
	"strings"
	"testing"

	"github.com/aashari/go-generative-gateway/internal/models"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		model        string
		mode         string
		wantModel    string
		wantProvider types.Provider
		wantMode     types.Mode
		wantFallback bool
	}{
		{"empty model uses global default", "", "", "claude-3-5-sonnet-20241022", types.ProviderClaude, types.ModeChat, true},
		{"whitespace model uses global default", "   ", "", "claude-3-5-sonnet-20241022", types.ProviderClaude, types.ModeChat, true},
		{"valid openai model", "gpt-4o", "", "gpt-4o", types.ProviderOpenAI, types.ModeChat, false},
		{"valid model is trimmed", "  gpt-4o-mini  ", "", "gpt-4o-mini", types.ProviderOpenAI, types.ModeChat, false},
		{"valid claude model", "claude-3-opus-20240229", "", "claude-3-opus-20240229", types.ProviderClaude, types.ModeChat, false},
		{"valid google model", "gemini-1.5-flash", "", "gemini-1.5-flash", types.ProviderGoogle, types.ModeChat, false},
		{"fallback gpt-5", "gpt-5", "", "gpt-4o", types.ProviderOpenAI, types.ModeChat, true},
		{"fallback o3", "o3", "", "o1-preview", types.ProviderOpenAI, types.ModeChat, true},
		{"fallback claude sonnet 4", "claude-sonnet-4-20250514", "", "claude-3-5-sonnet-20241022", types.ProviderClaude, types.ModeChat, true},
		{"fallback gemini 2.5", "gemini-2.5-flash", "", "gemini-1.5-flash", types.ProviderGoogle, types.ModeChat, true},
		{"image model infers image mode", "dall-e-3", "", "dall-e-3", types.ProviderOpenAI, types.ModeImage, false},
		{"self-referential video fallback", "veo-3", "", "veo-3", types.ProviderGoogle, types.ModeVideo, true},
		{"self-referential image fallback", "gemini-2.5-flash-image", "", "gemini-2.5-flash-image", types.ProviderGoogle, types.ModeImage, true},
		{"unknown openai-looking model", "gpt-99", "", "gpt-4o", types.ProviderOpenAI, types.ModeChat, true},
		{"unknown google-looking model", "gemini-ultra", "", "gemini-1.5-pro", types.ProviderGoogle, types.ModeChat, true},
		{"unknown model goes to claude", "mystery-model", "", "claude-3-5-sonnet-20241022", types.ProviderClaude, types.ModeChat, true},
		{"mode inferred from resolved model", "sora-2", "", "claude-3-5-sonnet-20241022", types.ProviderClaude, types.ModeChat, true},
		{"explicit mode wins", "gpt-4o", "VIDEO", "gpt-4o", types.ProviderOpenAI, types.ModeVideo, false},
		{"unknown explicit mode is ignored", "dall-e-2", "banana", "dall-e-2", types.ProviderOpenAI, types.ModeImage, false},
		{"case differs from valid list", "GPT-4o", "", "gpt-4o", types.ProviderOpenAI, types.ModeChat, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Resolve(tt.model, tt.mode)
			assert.Equal(t, tt.model, sel.RequestedModel)
			assert.Equal(t, tt.wantModel, sel.ResolvedModel)
			assert.Equal(t, tt.wantProvider, sel.Provider)
			assert.Equal(t, tt.wantMode, sel.Mode)
			assert.Equal(t, tt.wantFallback, sel.IsFallback)
		})
	}
}

func TestRegistryResolver(t *testing.T) {
	var s Selector = NewRegistryResolver()
	require.NotNil(t, s)
	assert.Equal(t, Resolve("o4-mini", ""), s.Resolve("o4-mini", ""))
}

func TestDetectProvider(t *testing.T) {
	tests := map[string]types.Provider{
		"claude-anything":   types.ProviderClaude,
		"CLAUDE-3":          types.ProviderClaude,
		"gpt-4":             types.ProviderOpenAI,
		"o1-mini":           types.ProviderOpenAI,
		"o3-pro":            types.ProviderOpenAI,
		"o4-mini":           types.ProviderOpenAI,
		"dall-e-2":          types.ProviderOpenAI,
		"gemini-1.0-pro":    types.ProviderGoogle,
		"veo-3":             types.ProviderGoogle,
		"llama-3":           types.ProviderClaude,
		"":                  types.ProviderClaude,
		"claude-gpt-hybrid": types.ProviderClaude,
	}
	for model, want := range tests {
		t.Run(model, func(t *testing.T) {
			assert.Equal(t, want, DetectProvider(model))
		})
	}
}

func TestDetectMode(t *testing.T) {
	tests := map[string]types.Mode{
		"dall-e-3":               types.ModeImage,
		"imagen-2":               types.ModeImage,
		"gemini-2.5-flash-image": types.ModeImage,
		"veo-3":                  types.ModeVideo,
		"sora":                   types.ModeVideo,
		"some-video-model":       types.ModeVideo,
		"gpt-4o":                 types.ModeChat,
		"":                       types.ModeChat,
	}
	for model, want := range tests {
		t.Run(model, func(t *testing.T) {
			assert.Equal(t, want, DetectMode(model))
		})
	}
}

func TestResolve_Properties(t *testing.T) {
	candidates := append(models.AllValidModels(), "", "gpt-5", "veo-3", "o3-pro", "unknown", "gemini-x", "dall-e-9")
	for id := range models.FallbackEntries() {
		candidates = append(candidates, id)
	}

	rapid.Check(t, func(rt *rapid.T) {
		var model string
		if rapid.Bool().Draw(rt, "fromTable") {
			model = rapid.SampledFrom(candidates).Draw(rt, "model")
		} else {
			model = rapid.String().Draw(rt, "model")
		}
		mode := rapid.SampledFrom([]string{"", "chat", "image", "video", "Image", "other"}).Draw(rt, "mode")

		sel := Resolve(model, mode)

		// deterministic
		require.Equal(rt, sel, Resolve(model, mode))

		// the resolved model is usable: valid for its provider or an explicit self-referential fallback
		target, selfRef := models.Fallback(sel.ResolvedModel)
		selfRef = selfRef && target == sel.ResolvedModel
		require.True(rt, models.IsValid(sel.Provider, sel.ResolvedModel) || selfRef,
			"resolved %q not usable for %s", sel.ResolvedModel, sel.Provider)

		// a non-fallback resolution passes the trimmed input through
		if !sel.IsFallback {
			require.Equal(rt, strings.TrimSpace(model), sel.ResolvedModel)
		}

		// explicit valid modes are honored
		if m, ok := types.ParseMode(mode); ok {
			require.Equal(rt, m, sel.Mode)
		} else {
			require.Equal(rt, DetectMode(sel.ResolvedModel), sel.Mode)
		}
	})
}
