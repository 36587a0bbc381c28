// Package providers adapts external generation APIs to one call shape.
// Keys are passed per call so rotation in the key manager takes effect
// without rebuilding clients.
package providers

import (
	"context"
	"time"

	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
)

type Request struct {
	Type       types.GenerationType
	Prompt     string
	Model      string
	Parameters map[string]interface{}
}

type Result struct {
	Data          map[string]interface{}
	RefinedPrompt string
	Model         string
}

type Provider interface {
	Name() string
	Supports(t types.GenerationType) bool
	Generate(ctx context.Context, apiKey string, req Request) (*Result, error)
}

type Config struct {
	BaseURL   string
	TextModel string
	Timeout   time.Duration
}

func unsupported(provider string, t types.GenerationType) error {
	return apperrors.New(apperrors.KindInvalidArgument, provider+".Generate",
		"generation type "+string(t)+" is not supported by "+provider)
}

func floatParam(params map[string]interface{}, key string) (float32, bool) {
	switch v := params[key].(type) {
	case float64:
		return float32(v), true
	case float32:
		return v, true
	case int:
		return float32(v), true
	}
	return 0, false
}

func intParam(params map[string]interface{}, key string) (int, bool) {
	switch v := params[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
