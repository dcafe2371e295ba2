package models

import (
	"testing"

	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(types.ProviderOpenAI, "gpt-4o"))
	assert.True(t, IsValid(types.ProviderClaude, "claude-3-haiku-20240307"))
	assert.True(t, IsValid(types.ProviderGoogle, "gemini-1.5-flash-8b"))
	assert.False(t, IsValid(types.ProviderClaude, "gpt-4o"))
	assert.False(t, IsValid(types.ProviderOpenAI, "gpt-5"))
	assert.False(t, IsValid("unknown", "gpt-4o"))
}

func TestProviderDefaultsAreValid(t *testing.T) {
	for _, p := range types.Providers {
		def := ProviderDefault(p)
		assert.True(t, IsValid(p, def), "default %s of %s", def, p)
	}
	assert.Equal(t, DefaultModel, ProviderDefault("nope"))
}

func TestFallbackTargetsAreUsable(t *testing.T) {
	for source, target := range FallbackEntries() {
		if source == target {
			continue
		}
		assert.True(t, IsValid(DetectProvider(target), target), "%s -> %s", source, target)
		_, chained := Fallback(target)
		assert.False(t, chained, "fallback target %s must not itself be a fallback source", target)
	}
}

func TestFallbackEntriesReturnsCopy(t *testing.T) {
	entries := FallbackEntries()
	entries["gpt-5"] = "tampered"
	target, ok := Fallback("gpt-5")
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", target)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		id            string
		wantProvider  types.Provider
		wantMaxTokens int
		wantTemp      float64
		wantSystem    bool
	}{
		{"o1-preview", types.ProviderOpenAI, 32768, 1.0, false},
		{"gpt-5", types.ProviderOpenAI, 128000, 0.7, true},
		{"gpt-4o", types.ProviderOpenAI, 4096, 0.7, true},
		{"gemini-1.5-pro", types.ProviderGoogle, 8192, 0.7, true},
		{"gemini-1.5-flash-8b", types.ProviderGoogle, 8192, 0.7, true},
		{"claude-opus-4", types.ProviderClaude, 200000, 0.7, true},
		{"babbage-002", types.ProviderOpenAI, 4096, 0.7, true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			d, ok := Describe(tt.id)
			require.True(t, ok)
			require.NotNil(t, d.Capabilities)
			assert.Equal(t, tt.id, d.ID)
			assert.Equal(t, tt.wantProvider, d.Provider)
			assert.Equal(t, tt.wantMaxTokens, d.Capabilities.MaxOutputTokens)
			assert.InDelta(t, tt.wantTemp, d.Capabilities.DefaultTemperature, 1e-9)
			assert.Equal(t, tt.wantSystem, d.Capabilities.SupportsSystemPrompt)
		})
	}

	_, ok := Describe("not-a-model")
	assert.False(t, ok)

	veo, ok := Describe("veo-3")
	require.True(t, ok)
	assert.True(t, veo.Capabilities.SupportsVideo)
}

func TestDefaultsForUnknownModels(t *testing.T) {
	assert.Equal(t, 4096, DefaultMaxTokens("mystery"))
	assert.Equal(t, 8192, DefaultMaxTokens("gemini-3-ultra"))
	assert.InDelta(t, 1.0, DefaultTemperature("o1-something"), 1e-9)
	assert.InDelta(t, 1.0, DefaultTemperature("o4-future"), 1e-9)
	assert.InDelta(t, 0.7, DefaultTemperature("mystery"), 1e-9)
}

func TestCatalog(t *testing.T) {
	all := Catalog("")
	require.NotEmpty(t, all)

	total := 0
	for _, p := range types.Providers {
		entries := Catalog(p)
		require.NotEmpty(t, entries, string(p))
		for _, e := range entries {
			assert.Equal(t, p, e.Provider)
			assert.NotEmpty(t, e.Name)
		}
		total += len(entries)
	}
	assert.Equal(t, len(all), total)

	// every valid model is advertised
	for _, id := range AllValidModels() {
		_, ok := Lookup(id)
		assert.True(t, ok, id)
	}
}

func TestValidModelsReturnsCopy(t *testing.T) {
	list := ValidModels(types.ProviderGoogle)
	list[0] = "tampered"
	assert.True(t, IsValid(types.ProviderGoogle, "gemini-1.5-pro"))
	assert.Equal(t, "gemini-1.5-pro", ValidModels(types.ProviderGoogle)[0])
}
