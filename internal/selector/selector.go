// Package selector turns the raw model string of a client request into a
// concrete Selection: resolved model, owning provider, mode and fallback flag.
package selector

import (
	"strings"

	"github.com/aashari/go-generative-gateway/internal/models"
	"github.com/aashari/go-generative-gateway/internal/types"
)

// Selector interface for different resolution strategies
type Selector interface {
	Resolve(model, mode string) types.Selection
}

// RegistryResolver resolves models against the static registry tables.
// It holds no state and is safe for concurrent use.
type RegistryResolver struct{}

// NewRegistryResolver creates a new registry resolver
func NewRegistryResolver() *RegistryResolver {
	return &RegistryResolver{}
}

// Resolve never fails: every input maps to a usable model.
func (r *RegistryResolver) Resolve(model, mode string) types.Selection {
	return Resolve(model, mode)
}

// Resolve maps a raw model and optional mode to a Selection.
//
// Order: empty input uses the global default, then the fallback map, then the
// detected provider's valid list, then the provider default. A fallback is
// applied at most once; its target is never looked up again.
func Resolve(model, mode string) types.Selection {
	requested := strings.TrimSpace(model)
	sel := types.Selection{RequestedModel: model}

	switch target, isFallback := models.Fallback(requested); {
	case requested == "":
		sel.ResolvedModel = models.DefaultModel
		sel.Provider = types.ProviderClaude
		sel.IsFallback = true
	case isFallback:
		sel.ResolvedModel = target
		sel.Provider = DetectProvider(target)
		sel.IsFallback = true
	default:
		provider := DetectProvider(requested)
		sel.Provider = provider
		if models.IsValid(provider, requested) {
			sel.ResolvedModel = requested
		} else {
			sel.ResolvedModel = models.ProviderDefault(provider)
			sel.IsFallback = true
		}
	}

	if explicit, ok := types.ParseMode(mode); ok {
		sel.Mode = explicit
	} else {
		sel.Mode = DetectMode(sel.ResolvedModel)
	}
	return sel
}

// DetectProvider infers the provider from keywords; unknown identifiers go to claude.
func DetectProvider(model string) types.Provider {
	return models.DetectProvider(model)
}

// DetectMode infers chat, image or video from keywords in the identifier.
func DetectMode(model string) types.Mode {
	return models.DetectMode(model)
}
