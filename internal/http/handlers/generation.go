package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ModularHallway100/harmony-backend/internal/http/response"
	"github.com/ModularHallway100/harmony-backend/internal/platform/ctxutil"
	"github.com/ModularHallway100/harmony-backend/internal/services"
)

type GenerationHandler struct {
	generations services.GenerationService
	artists     services.ArtistService
}

func NewGenerationHandler(generations services.GenerationService, artists services.ArtistService) *GenerationHandler {
	return &GenerationHandler{generations: generations, artists: artists}
}

// GET /api/history
func (h *GenerationHandler) ListHistory(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	history, err := h.artists.ListHistory(c.Request.Context(), userID, int(limit))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": history})
}

// POST /api/generations
func (h *GenerationHandler) Generate(c *gin.Context) {
	var cmd services.GenerateCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	cmd.UserID = ctxutil.UserID(c.Request.Context())
	out, err := h.generations.Generate(c.Request.Context(), cmd)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, out)
}
