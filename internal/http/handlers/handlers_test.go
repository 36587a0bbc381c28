package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ModularHallway100/harmony-backend/internal/data/repos"
	"github.com/ModularHallway100/harmony-backend/internal/data/repos/testutil"
	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	"github.com/ModularHallway100/harmony-backend/internal/platform/ctxutil"
	"github.com/ModularHallway100/harmony-backend/internal/platform/providers"
	"github.com/ModularHallway100/harmony-backend/internal/services"
)

const testKey = "0123456789abcdef0123456789abcdef01234567"

type echoProvider struct{}

func (echoProvider) Name() string { return "openai" }
func (echoProvider) Supports(t types.GenerationType) bool { return t == types.GenerationText }
func (echoProvider) Generate(ctx context.Context, apiKey string, req providers.Request) (*providers.Result, error) {
	return &providers.Result{Data: map[string]interface{}{"text": "echo: " + req.Prompt}}, nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type testAPI struct {
	engine *gin.Engine
	user   uuid.UUID
}

// newTestAPI mounts the handlers over a SQLite ledger with no document
// store, behind a stub that authenticates every request as one user.
func newTestAPI(t *testing.T, stores map[string]Pinger) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := testutil.Logger(t)
	db := testutil.DB(t)
	artists := services.NewArtistService(log,
		repos.NewArtistDetailRepo(db, log),
		repos.NewArtistImageRepo(db, log),
		repos.NewGenerationHistoryRepo(db, log),
		nil, nil, nil, services.ArtistServiceConfig{},
	)
	keys := services.NewAIKeyManager(log, services.StaticKeySource{"openai": testKey}, nil)
	gens := services.NewGenerationService(log, artists, keys, services.NewMemoryLimiterFactory(nil),
		services.RateLimitConfig{Limit: 5}, echoProvider{})

	user := uuid.New()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: user})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	ah := NewArtistHandler(artists)
	gh := NewGenerationHandler(gens, artists)
	hh := NewHealthHandler(keys, stores)
	r.GET("/healthcheck", hh.HealthCheck)
	api := r.Group("/api")
	api.GET("/health/services", hh.Services)
	api.GET("/health/stores", hh.Stores)
	api.GET("/artists/search", ah.SearchArtists)
	api.GET("/artists/popular", ah.PopularArtists)
	api.GET("/artists/:id/details", ah.GetDetails)
	api.POST("/artists/:id/details", ah.CreateDetails)
	api.PATCH("/artists/:id/details", ah.UpdateDetails)
	api.GET("/artists/:id/images", ah.ListImages)
	api.POST("/artists/:id/images", ah.AddImage)
	api.PATCH("/images/:id", ah.UpdateImage)
	api.DELETE("/images/:id", ah.DeleteImage)
	api.GET("/artists/:id/document", ah.GetDocument)
	api.GET("/history", gh.ListHistory)
	api.POST("/generations", gh.Generate)
	return &testAPI{engine: r, user: user}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

func TestArtistDetailsLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	path := "/api/artists/" + uuid.NewString() + "/details"

	expectStatus(t, api.do(t, http.MethodGet, path, nil), http.StatusNotFound)
	expectStatus(t, api.do(t, http.MethodPost, path, map[string]interface{}{
		"visualStyle": "neon noir",
		"influences":  []string{"Kraftwerk"},
	}), http.StatusCreated)

	dup := api.do(t, http.MethodPost, path, map[string]interface{}{"visualStyle": "again"})
	expectStatus(t, dup, http.StatusConflict)
	var env struct {
		Error struct{ Code string } `json:"error"`
	}
	decode(t, dup, &env)
	if env.Error.Code != "constraint_violation" {
		t.Fatalf("unexpected error code %q", env.Error.Code)
	}

	rec := api.do(t, http.MethodPatch, path, map[string]interface{}{"speakingStyle": "whispered"})
	expectStatus(t, rec, http.StatusOK)
	var got struct {
		Details types.ArtistDetail `json:"details"`
	}
	decode(t, rec, &got)
	if got.Details.VisualStyle != "neon noir" || got.Details.SpeakingStyle != "whispered" {
		t.Fatalf("patch did not merge: %+v", got.Details)
	}

	expectStatus(t, api.do(t, http.MethodPatch, "/api/artists/"+uuid.NewString()+"/details",
		map[string]interface{}{"backstory": "x"}), http.StatusNotFound)
	expectStatus(t, api.do(t, http.MethodGet, "/api/artists/not-a-uuid/details", nil), http.StatusBadRequest)
}

func TestImagesLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	base := "/api/artists/" + uuid.NewString() + "/images"

	expectStatus(t, api.do(t, http.MethodPost, base, map[string]interface{}{"modelUsed": "dall-e-3"}), http.StatusBadRequest)

	rec := api.do(t, http.MethodPost, base, map[string]interface{}{"imageUrl": "https://cdn.example/a.png"})
	expectStatus(t, rec, http.StatusCreated)
	var created services.ImageWrite
	decode(t, rec, &created)
	if !created.MirrorStale {
		t.Fatalf("expected mirrorStale without a document store")
	}

	rec = api.do(t, http.MethodGet, base, nil)
	expectStatus(t, rec, http.StatusOK)
	var list struct {
		Images []types.ArtistImage `json:"images"`
	}
	decode(t, rec, &list)
	if len(list.Images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(list.Images))
	}

	imgPath := "/api/images/" + created.Image.ID.String()
	expectStatus(t, api.do(t, http.MethodPatch, imgPath, map[string]interface{}{"isPrimary": true}), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodDelete, imgPath, nil), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodDelete, imgPath, nil), http.StatusNotFound)
}

func TestMirrorRoutesWithoutDocumentStore(t *testing.T) {
	api := newTestAPI(t, nil)

	expectStatus(t, api.do(t, http.MethodGet, "/api/artists/"+uuid.NewString()+"/document", nil), http.StatusServiceUnavailable)
	expectStatus(t, api.do(t, http.MethodGet, "/api/artists/search?limit=0", nil), http.StatusBadRequest)
	expectStatus(t, api.do(t, http.MethodGet, "/api/artists/search?q=synth", nil), http.StatusServiceUnavailable)
	expectStatus(t, api.do(t, http.MethodGet, "/api/artists/popular?limit=abc", nil), http.StatusBadRequest)
}

func TestGenerateRecordsHistoryForCaller(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/api/generations", map[string]interface{}{
		"service":        "openai",
		"generationType": "text",
		"prompt":         "write a chorus",
	})
	expectStatus(t, rec, http.StatusCreated)
	var out services.GenerationOutcome
	decode(t, rec, &out)
	if out.Record == nil || out.Record.Status != types.StatusSucceeded {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	rec = api.do(t, http.MethodGet, "/api/history?limit=10", nil)
	expectStatus(t, rec, http.StatusOK)
	var hist struct {
		History []types.GenerationHistory `json:"history"`
	}
	decode(t, rec, &hist)
	if len(hist.History) != 1 || hist.History[0].UserID != api.user {
		t.Fatalf("history not scoped to caller: %+v", hist.History)
	}

	expectStatus(t, api.do(t, http.MethodPost, "/api/generations", map[string]interface{}{
		"service":        "openai",
		"generationType": "audio",
		"prompt":         "a bassline",
	}), http.StatusBadRequest)
	expectStatus(t, api.do(t, http.MethodPost, "/api/generations", map[string]interface{}{
		"service": "openai",
	}), http.StatusBadRequest)
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t, map[string]Pinger{
		"postgres": pingerFunc(func(context.Context) error { return nil }),
		"redis":    pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	rec := api.do(t, http.MethodGet, "/healthcheck", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	rec = api.do(t, http.MethodGet, "/api/health/services", nil)
	expectStatus(t, rec, http.StatusOK)
	var svc struct {
		Services map[string]bool `json:"services"`
	}
	decode(t, rec, &svc)
	if !svc.Services["openai"] || svc.Services["gemini"] {
		t.Fatalf("unexpected service statuses: %v", svc.Services)
	}

	rec = api.do(t, http.MethodGet, "/api/health/stores", nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)
	var st struct {
		Stores []storeStatus `json:"stores"`
	}
	decode(t, rec, &st)
	if len(st.Stores) != 2 || !st.Stores[0].Up || st.Stores[1].Up {
		t.Fatalf("unexpected store statuses: %+v", st.Stores)
	}
}
