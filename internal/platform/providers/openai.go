package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

const (
	defaultOpenAITextModel = "gpt-4o-mini"
	artistSystemPrompt     = "You are a creative assistant for a virtual music artist. Stay in the artist's voice and keep answers concise."
)

type openAIProvider struct {
	log *logger.Logger
	cfg Config
}

func NewOpenAI(log *logger.Logger, cfg Config) Provider {
	if strings.TrimSpace(cfg.TextModel) == "" {
		cfg.TextModel = defaultOpenAITextModel
	}
	return &openAIProvider{log: log.With("provider", "openai"), cfg: cfg}
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Supports(t types.GenerationType) bool {
	return t == types.GenerationText || t == types.GenerationPersona || t == types.GenerationImage
}

func (p *openAIProvider) client(apiKey string) *openai.Client {
	conf := openai.DefaultConfig(apiKey)
	if p.cfg.BaseURL != "" {
		conf.BaseURL = p.cfg.BaseURL
	}
	return openai.NewClientWithConfig(conf)
}

func (p *openAIProvider) Generate(ctx context.Context, apiKey string, req Request) (*Result, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	switch req.Type {
	case types.GenerationText, types.GenerationPersona:
		return p.text(ctx, apiKey, req)
	case types.GenerationImage:
		return p.image(ctx, apiKey, req)
	}
	return nil, unsupported(p.Name(), req.Type)
}

func (p *openAIProvider) text(ctx context.Context, apiKey string, req Request) (*Result, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.TextModel
	}
	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: artistSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if v, ok := floatParam(req.Parameters, "temperature"); ok {
		chatReq.Temperature = v
	}
	if v, ok := intParam(req.Parameters, "maxTokens"); ok {
		chatReq.MaxCompletionTokens = v
	}

	resp, err := p.client(apiKey).CreateChatCompletion(ctx, chatReq)
	if err != nil {
		p.log.Warn("openai chat completion failed", "model", model, "error", err)
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}
	return &Result{
		Data: map[string]interface{}{
			"text":         resp.Choices[0].Message.Content,
			"finishReason": string(resp.Choices[0].FinishReason),
			"totalTokens":  resp.Usage.TotalTokens,
		},
		Model: resp.Model,
	}, nil
}

func (p *openAIProvider) image(ctx context.Context, apiKey string, req Request) (*Result, error) {
	model := req.Model
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	resp, err := p.client(apiKey).CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		p.log.Warn("openai image generation failed", "model", model, "error", err)
		return nil, fmt.Errorf("openai image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, fmt.Errorf("openai returned no image")
	}
	return &Result{
		Data:          map[string]interface{}{"imageUrl": resp.Data[0].URL},
		RefinedPrompt: resp.Data[0].RevisedPrompt,
		Model:         model,
	}, nil
}
