package filter

import (
	"strings"

	"github.com/aashari/go-generative-gateway/internal/types"
)

// EntriesByProvider filters catalog entries by provider name. Aliases such as
// "anthropic" or "gemini" are accepted; an empty name keeps every entry.
// The boolean is false when the name is not a known provider.
func EntriesByProvider(entries []types.CatalogEntry, provider string) ([]types.CatalogEntry, bool) {
	if strings.TrimSpace(provider) == "" {
		return entries, true
	}
	p, ok := types.ParseProvider(provider)
	if !ok {
		return nil, false
	}
	var result []types.CatalogEntry
	for _, e := range entries {
		if e.Provider == p {
			result = append(result, e)
		}
	}
	return result, true
}

// EntriesByTier filters catalog entries by display tier
func EntriesByTier(entries []types.CatalogEntry, tier types.ModelTier) []types.CatalogEntry {
	if tier == "" {
		return entries
	}
	var result []types.CatalogEntry
	for _, e := range entries {
		if e.Tier == tier {
			result = append(result, e)
		}
	}
	return result
}
