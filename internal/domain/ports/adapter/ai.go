package adapter

import (
	"context"

	"shopify-store-builder/internal/domain/model"
)

// TextGenerator is the port for LLM-backed store planning. Implementations
// wrap a single provider; use the multi adapter to fall back across
// providers.
type TextGenerator interface {
	// AnalyzeNiche turns a free-text niche description into a structured
	// analysis. The returned NicheName is never empty on success.
	AnalyzeNiche(ctx context.Context, description string) (*model.NicheAnalysis, error)

	// RecommendColorScheme proposes a storefront palette for a niche.
	// personality is optional brand-personality steering.
	RecommendColorScheme(ctx context.Context, niche, personality string) (*model.ColorScheme, error)
}

// ImageGenerator produces a hosted image URL for a text prompt. Failures
// are non-fatal to product creation; callers proceed without an image.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (imageURL string, err error)
}
