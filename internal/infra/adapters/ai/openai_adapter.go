package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"shopify-store-builder/internal/domain"
	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/adapter"
	"shopify-store-builder/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.TextGenerator = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.TextGenerator using the Chat Completions API.
type OpenAIAdapter struct {
	client openai.Client
	model  string
	enc    *tiktoken.Tiktoken
}

func NewOpenAIAdapter(apiKey, model string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, _ = tiktoken.GetEncoding("cl100k_base")
	}
	return &OpenAIAdapter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		enc:    enc,
	}, nil
}

func (o *OpenAIAdapter) AnalyzeNiche(ctx context.Context, description string) (*model.NicheAnalysis, error) {
	reply, err := o.complete(ctx, "analyze_niche", nicheAnalysisPrompt(description), 0.3)
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

func (o *OpenAIAdapter) RecommendColorScheme(ctx context.Context, niche, personality string) (*model.ColorScheme, error) {
	reply, err := o.complete(ctx, "recommend_colors", colorSchemePrompt(niche, personality), 0.4)
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

func (o *OpenAIAdapter) complete(ctx context.Context, operation, prompt string, temperature float64) (string, error) {
	if o.enc != nil {
		metrics.AddPromptTokens("openai", operation, len(o.enc.Encode(prompt, nil, nil)))
	}

	started := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(500),
	})
	metrics.ObserveAICall("openai", operation, int(time.Since(started).Milliseconds()), err == nil)
	if err != nil {
		return "", err
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", domain.ErrEmptyGeneration
}
