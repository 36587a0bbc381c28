package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	httpH "github.com/ModularHallway100/harmony-backend/internal/http/handlers"
	httpMW "github.com/ModularHallway100/harmony-backend/internal/http/middleware"
	"github.com/ModularHallway100/harmony-backend/internal/platform/jwtauth"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
	"github.com/ModularHallway100/harmony-backend/internal/services"
)

func TestRouterRequiresAuthUnderAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	verifier, err := jwtauth.NewVerifier("router-secret")
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	keys := services.NewAIKeyManager(log, services.StaticKeySource{}, nil)
	r := NewRouter(RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, verifier),
		HealthHandler:  httpH.NewHealthHandler(keys, nil),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck should be public, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/services", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	tok, err := verifier.Issue(uuid.New(), time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/health/services", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
}
