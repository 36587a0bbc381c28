package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ModularHallway100/harmony-backend/internal/data/repos/testutil"
	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
	"github.com/ModularHallway100/harmony-backend/internal/platform/providers"
)

type fakeProvider struct {
	name   string
	result *providers.Result
	err    error
	calls  int
	gotKey string
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) Supports(t types.GenerationType) bool {
	return t == types.GenerationText || t == types.GenerationImage
}
func (p *fakeProvider) Generate(ctx context.Context, apiKey string, req providers.Request) (*providers.Result, error) {
	p.calls++
	p.gotKey = apiKey
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func newGenerationFixture(t *testing.T, prov *fakeProvider, keys StaticKeySource, limit int) (*artistFixture, GenerationService) {
	t.Helper()
	fx := newArtistFixture(t, nil)
	mgr := NewAIKeyManager(testutil.Logger(t), keys, nil)
	gen := NewGenerationService(testutil.Logger(t), fx.svc, mgr, NewMemoryLimiterFactory(nil),
		RateLimitConfig{Limit: limit, Window: time.Minute}, prov)
	return fx, gen
}

func TestGenerateSucceeded(t *testing.T) {
	prov := &fakeProvider{name: "openai", result: &providers.Result{
		Data:  map[string]interface{}{"imageUrl": "https://cdn/gen.png"},
		Model: "dall-e-3",
	}}
	fx, gen := newGenerationFixture(t, prov, StaticKeySource{"openai": goodKey}, 5)
	ctx := context.Background()
	artistID := uuid.New()
	if _, err := fx.svc.CreateArtistDocument(ctx, &types.ArtistDocument{ArtistID: artistID.String()}); err != nil {
		t.Fatalf("CreateArtistDocument: %v", err)
	}

	out, err := gen.Generate(ctx, GenerateCommand{
		UserID:   uuid.New(),
		ArtistID: &artistID,
		Service:  "OpenAI",
		Type:     types.GenerationImage,
		Prompt:   "album cover, chrome and fog",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if prov.gotKey != goodKey {
		t.Fatalf("provider got key %q", prov.gotKey)
	}
	if out.Record.Status != types.StatusSucceeded || out.Record.ServiceUsed != "openai" {
		t.Fatalf("unexpected record: %+v", out.Record)
	}
	if out.Image == nil || out.Image.ImageURL != "https://cdn/gen.png" || out.Image.ModelUsed != "dall-e-3" {
		t.Fatalf("generated image not stored: %+v", out.Image)
	}

	doc, _ := fx.svc.GetArtistDocument(ctx, artistID.String())
	if len(doc.GenerationHistory) != 1 || doc.GenerationHistory[0].Status != types.StatusSucceeded {
		t.Fatalf("mirror should hold one succeeded entry: %+v", doc.GenerationHistory)
	}
	if len(doc.Images) != 1 {
		t.Fatalf("mirror should hold the generated image")
	}
}

func TestGenerateProviderFailureMarksLedger(t *testing.T) {
	prov := &fakeProvider{name: "openai", err: errors.New("upstream 500")}
	fx, gen := newGenerationFixture(t, prov, StaticKeySource{"openai": goodKey}, 5)
	ctx := context.Background()
	userID := uuid.New()

	_, err := gen.Generate(ctx, GenerateCommand{UserID: userID, Service: "openai", Type: types.GenerationText, Prompt: "verse"})
	if err == nil {
		t.Fatalf("expected provider error")
	}

	rows, err := fx.svc.ListHistory(ctx, userID, 0)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListHistory: len=%d err=%v", len(rows), err)
	}
	if rows[0].Status != types.StatusFailed || rows[0].ErrorMessage == nil || *rows[0].ErrorMessage != "upstream 500" {
		t.Fatalf("ledger not marked failed: %+v", rows[0])
	}
}

func TestGenerateGates(t *testing.T) {
	ctx := context.Background()

	prov := &fakeProvider{name: "openai", result: &providers.Result{Data: map[string]interface{}{"text": "ok"}}}
	_, gen := newGenerationFixture(t, prov, StaticKeySource{"openai": goodKey}, 1)
	cmd := GenerateCommand{UserID: uuid.New(), Service: "openai", Type: types.GenerationText, Prompt: "hi"}
	if _, err := gen.Generate(ctx, cmd); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if _, err := gen.Generate(ctx, cmd); !errors.Is(err, apperrors.ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}

	prov2 := &fakeProvider{name: "openai"}
	_, gen2 := newGenerationFixture(t, prov2, StaticKeySource{"openai": "your-openai-key-0000000000"}, 5)
	if _, err := gen2.Generate(ctx, cmd); !errors.Is(err, apperrors.ErrInvalidKeyFormat) {
		t.Fatalf("expected invalid key format, got %v", err)
	}
	if prov2.calls != 0 {
		t.Fatalf("provider must not be called with a bad key")
	}

	if _, err := gen2.Generate(ctx, GenerateCommand{UserID: uuid.New(), Service: "suno", Type: types.GenerationText, Prompt: "x"}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for unregistered provider, got %v", err)
	}
	if _, err := gen2.Generate(ctx, GenerateCommand{UserID: uuid.New(), Service: "openai", Type: types.GenerationVideo, Prompt: "x"}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for unsupported type, got %v", err)
	}
}
