package ai

import (
	"context"
	"fmt"
	"time"

	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/adapter"
)

var _ adapter.TextGenerator = (*NoopTextAdapter)(nil)

// NoopTextAdapter implements adapter.TextGenerator for local/dev runs.
// It returns deterministic canned output instead of calling a real model.
type NoopTextAdapter struct{}

func NewNoopTextAdapter() *NoopTextAdapter {
	return &NoopTextAdapter{}
}

func (a *NoopTextAdapter) AnalyzeNiche(ctx context.Context, description string) (*model.NicheAnalysis, error) {
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	name := description
	if name == "" {
		name = "general merchandise"
	}
	return &model.NicheAnalysis{
		NicheName:         name,
		MarketOpportunity: 7,
		CompetitionLevel:  5,
		RecommendedColors: []string{"#2D5A27", "#8FBC8F"},
		TargetAudience:    fmt.Sprintf("shoppers interested in %s", name),
		KeyProducts:       []string{"starter kit", "accessory bundle"},
	}, nil
}

func (a *NoopTextAdapter) RecommendColorScheme(ctx context.Context, niche, personality string) (*model.ColorScheme, error) {
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &model.ColorScheme{
		PrimaryColor:   "#1E3A5F",
		SecondaryColor: "#F5F1E8",
		AccentColors:   []string{"#D4A843"},
	}, nil
}
