package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"shopify-store-builder/internal/domain"
	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/adapter"
	"shopify-store-builder/internal/infra/metrics"
)

var _ adapter.TextGenerator = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client *genai.Client
	model  string
	maxOut int
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if maxOut <= 0 {
		maxOut = 1024
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model, maxOut: maxOut}, nil
}

func (g *GeminiAdapter) AnalyzeNiche(ctx context.Context, description string) (*model.NicheAnalysis, error) {
	reply, err := g.generate(ctx, "analyze_niche", nicheAnalysisPrompt(description))
	if err != nil {
		return nil, err
	}
	var analysis model.NicheAnalysis
	if err := extractJSON(reply, &analysis); err != nil {
		return nil, err
	}
	if analysis.NicheName == "" {
		return nil, fmt.Errorf("%w: missing niche_name", domain.ErrEmptyGeneration)
	}
	return &analysis, nil
}

func (g *GeminiAdapter) RecommendColorScheme(ctx context.Context, niche, personality string) (*model.ColorScheme, error) {
	reply, err := g.generate(ctx, "recommend_colors", colorSchemePrompt(niche, personality))
	if err != nil {
		return nil, err
	}
	var scheme model.ColorScheme
	if err := extractJSON(reply, &scheme); err != nil {
		return nil, err
	}
	if scheme.PrimaryColor == "" {
		return nil, fmt.Errorf("%w: missing primaryColor", domain.ErrEmptyGeneration)
	}
	return &scheme, nil
}

// --- internal ---

func (g *GeminiAdapter) generate(ctx context.Context, operation, prompt string) (string, error) {
	started := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			MaxOutputTokens:   int32(g.maxOut),
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		})
	metrics.ObserveAICall("gemini", operation, int(time.Since(started).Milliseconds()), err == nil)
	if err != nil {
		return "", err
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		text = resp.Candidates[0].Content.Parts[0].Text
	}
	if resp != nil && resp.UsageMetadata != nil {
		metrics.AddPromptTokens("gemini", operation, int(resp.UsageMetadata.PromptTokenCount))
	}
	if text == "" {
		return "", domain.ErrEmptyGeneration
	}
	return text, nil
}
