package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

const defaultGeminiTextModel = "gemini-1.5-flash-latest"

type geminiProvider struct {
	log *logger.Logger
	cfg Config
}

func NewGemini(log *logger.Logger, cfg Config) Provider {
	if strings.TrimSpace(cfg.TextModel) == "" {
		cfg.TextModel = defaultGeminiTextModel
	}
	return &geminiProvider{log: log.With("provider", "gemini"), cfg: cfg}
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Supports(t types.GenerationType) bool {
	return t == types.GenerationText || t == types.GenerationPersona
}

func (p *geminiProvider) Generate(ctx context.Context, apiKey string, req Request) (*Result, error) {
	if !p.Supports(req.Type) {
		return nil, unsupported(p.Name(), req.Type)
	}
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if p.cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(p.cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			p.log.Warn("gemini client close failed", "error", cerr)
		}
	}()

	modelName := req.Model
	if modelName == "" {
		modelName = p.cfg.TextModel
	}
	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(artistSystemPrompt)}}
	if v, ok := floatParam(req.Parameters, "temperature"); ok {
		model.SetTemperature(v)
	}
	if v, ok := intParam(req.Parameters, "maxTokens"); ok {
		model.SetMaxOutputTokens(int32(v))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		p.log.Warn("gemini generate failed", "model", modelName, "error", err)
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return &Result{Data: map[string]interface{}{"text": text}, Model: modelName}, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text")
	}
	return b.String(), nil
}
