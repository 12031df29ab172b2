package image

import (
	"context"
	"net/url"

	"shopify-store-builder/internal/domain/ports/adapter"
)

var _ adapter.ImageGenerator = (*PlaceholderGenerator)(nil)

// PlaceholderGenerator returns a deterministic placeholder URL derived from
// the prompt. Used in dev mode and as the last-resort fallback when no image
// provider is configured.
type PlaceholderGenerator struct{}

func NewPlaceholderGenerator() *PlaceholderGenerator {
	return &PlaceholderGenerator{}
}

func (g *PlaceholderGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text := prompt
	if len(text) > 50 {
		text = text[:50]
	}
	if text == "" {
		text = "Product Image"
	}
	return "https://via.placeholder.com/800x800?text=" + url.QueryEscape(text), nil
}
