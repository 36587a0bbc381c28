package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ModularHallway100/harmony-backend/internal/http/response"
	"github.com/ModularHallway100/harmony-backend/internal/services"
)

// Pinger is any store client with a liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	keys   services.AIKeyManager
	stores map[string]Pinger
}

func NewHealthHandler(keys services.AIKeyManager, stores map[string]Pinger) *HealthHandler {
	return &HealthHandler{keys: keys, stores: stores}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /api/health/services
func (h *HealthHandler) Services(c *gin.Context) {
	if h.keys == nil {
		response.RespondOK(c, gin.H{"services": map[string]bool{}})
		return
	}
	response.RespondOK(c, gin.H{"services": h.keys.AllServiceStatuses(c.Request.Context())})
}

type storeStatus struct {
	Name  string `json:"name"`
	Up    bool   `json:"up"`
	Error string `json:"error,omitempty"`
}

// GET /api/health/stores
func (h *HealthHandler) Stores(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.stores))
	for name := range h.stores {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	out := make([]storeStatus, 0, len(names))
	for _, name := range names {
		st := storeStatus{Name: name, Up: true}
		if err := h.stores[name].Ping(ctx); err != nil {
			st.Up = false
			st.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
		out = append(out, st)
	}
	c.JSON(status, gin.H{"stores": out})
}
