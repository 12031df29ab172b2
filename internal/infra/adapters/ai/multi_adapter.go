package ai

import (
	"context"
	"errors"

	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/adapter"
)

var _ adapter.TextGenerator = (*MultiTextAdapter)(nil)

// MultiTextAdapter tries each provider in order and returns the first
// successful result. A provider error is not fatal while another provider
// remains; context cancellation stops the chain immediately.
type MultiTextAdapter struct {
	providers []adapter.TextGenerator
}

func NewMultiTextAdapter(providers ...adapter.TextGenerator) *MultiTextAdapter {
	return &MultiTextAdapter{providers: providers}
}

func (m *MultiTextAdapter) AnalyzeNiche(ctx context.Context, description string) (*model.NicheAnalysis, error) {
	var lastErr error
	for _, p := range m.providers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		analysis, err := p.AnalyzeNiche(ctx, description)
		if err == nil {
			return analysis, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no text providers configured")
	}
	return nil, lastErr
}

func (m *MultiTextAdapter) RecommendColorScheme(ctx context.Context, niche, personality string) (*model.ColorScheme, error) {
	var lastErr error
	for _, p := range m.providers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		scheme, err := p.RecommendColorScheme(ctx, niche, personality)
		if err == nil {
			return scheme, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no text providers configured")
	}
	return nil, lastErr
}
