package image

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"shopify-store-builder/internal/domain"
	"shopify-store-builder/internal/domain/ports/adapter"
	"shopify-store-builder/internal/infra/metrics"
)

var _ adapter.ImageGenerator = (*DalleGenerator)(nil)

// DalleGenerator produces hosted product images via the OpenAI Images API.
type DalleGenerator struct {
	client openai.Client
	model  string
	size   openai.ImageGenerateParamsSize
}

func NewDalleGenerator(apiKey, model, size string) (*DalleGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = string(openai.ImageModelDallE3)
	}
	if size == "" {
		size = string(openai.ImageGenerateParamsSize1024x1024)
	}
	return &DalleGenerator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		size:   openai.ImageGenerateParamsSize(size),
	}, nil
}

func (g *DalleGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	started := time.Now()
	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(g.model),
		Size:   g.size,
		N:      openai.Int(1),
	})
	metrics.ObserveAICall("openai", "generate_image", int(time.Since(started).Milliseconds()), err == nil)
	if err != nil {
		return "", err
	}
	for _, d := range resp.Data {
		if d.URL != "" {
			return d.URL, nil
		}
	}
	return "", domain.ErrEmptyGeneration
}
