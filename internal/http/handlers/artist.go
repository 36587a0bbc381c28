package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ModularHallway100/harmony-backend/internal/data/mirror"
	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	"github.com/ModularHallway100/harmony-backend/internal/http/response"
	"github.com/ModularHallway100/harmony-backend/internal/platform/ctxutil"
	"github.com/ModularHallway100/harmony-backend/internal/services"
)

type ArtistHandler struct {
	artists services.ArtistService
}

func NewArtistHandler(artists services.ArtistService) *ArtistHandler {
	return &ArtistHandler{artists: artists}
}

// GET /api/artists/:id/details
func (h *ArtistHandler) GetDetails(c *gin.Context) {
	artistID, ok := uuidParam(c, "id", "invalid_artist_id")
	if !ok {
		return
	}
	detail, err := h.artists.GetArtistDetails(c.Request.Context(), artistID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if detail == nil {
		response.RespondNotFound(c, "artist details")
		return
	}
	response.RespondOK(c, gin.H{"details": detail})
}

// POST /api/artists/:id/details
func (h *ArtistHandler) CreateDetails(c *gin.Context) {
	artistID, ok := uuidParam(c, "id", "invalid_artist_id")
	if !ok {
		return
	}
	var in types.ArtistDetailInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	detail, err := h.artists.CreateArtistDetails(c.Request.Context(), artistID, in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"details": detail})
}

// PATCH /api/artists/:id/details
func (h *ArtistHandler) UpdateDetails(c *gin.Context) {
	artistID, ok := uuidParam(c, "id", "invalid_artist_id")
	if !ok {
		return
	}
	var patch types.ArtistDetailPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	detail, err := h.artists.UpdateArtistDetails(c.Request.Context(), artistID, patch)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if detail == nil {
		response.RespondNotFound(c, "artist details")
		return
	}
	response.RespondOK(c, gin.H{"details": detail})
}

// GET /api/artists/:id/images
func (h *ArtistHandler) ListImages(c *gin.Context) {
	artistID, ok := uuidParam(c, "id", "invalid_artist_id")
	if !ok {
		return
	}
	images, err := h.artists.ListImages(c.Request.Context(), artistID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"images": images})
}

// POST /api/artists/:id/images
func (h *ArtistHandler) AddImage(c *gin.Context) {
	artistID, ok := uuidParam(c, "id", "invalid_artist_id")
	if !ok {
		return
	}
	var in types.ImageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.artists.AddImage(c.Request.Context(), artistID, in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// PATCH /api/images/:id
func (h *ArtistHandler) UpdateImage(c *gin.Context) {
	imageID, ok := uuidParam(c, "id", "invalid_image_id")
	if !ok {
		return
	}
	var patch types.ImagePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	img, err := h.artists.UpdateImage(c.Request.Context(), imageID, patch)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if img == nil {
		response.RespondNotFound(c, "image")
		return
	}
	response.RespondOK(c, gin.H{"image": img})
}

// DELETE /api/images/:id
func (h *ArtistHandler) DeleteImage(c *gin.Context) {
	imageID, ok := uuidParam(c, "id", "invalid_image_id")
	if !ok {
		return
	}
	img, err := h.artists.DeleteImage(c.Request.Context(), imageID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if img == nil {
		response.RespondNotFound(c, "image")
		return
	}
	response.RespondOK(c, gin.H{"image": img})
}

// GET /api/artists/:id/document
func (h *ArtistHandler) GetDocument(c *gin.Context) {
	artistID, ok := uuidParam(c, "id", "invalid_artist_id")
	if !ok {
		return
	}
	doc, err := h.artists.GetArtistDocument(c.Request.Context(), artistID.String())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if doc == nil {
		response.RespondNotFound(c, "artist document")
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

// POST /api/artists/:id/document
func (h *ArtistHandler) CreateDocument(c *gin.Context) {
	artistID, ok := uuidParam(c, "id", "invalid_artist_id")
	if !ok {
		return
	}
	var doc types.ArtistDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	doc.ArtistID = artistID.String()
	if doc.OwnerID == "" {
		doc.OwnerID = ctxutil.UserID(c.Request.Context()).String()
	}
	created, err := h.artists.CreateArtistDocument(c.Request.Context(), &doc)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"document": created})
}

// PATCH /api/artists/:id/document
func (h *ArtistHandler) UpdateDocument(c *gin.Context) {
	artistID, ok := uuidParam(c, "id", "invalid_artist_id")
	if !ok {
		return
	}
	var patch types.DocumentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	doc, err := h.artists.UpdateArtistDocument(c.Request.Context(), artistID.String(), patch)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if doc == nil {
		response.RespondNotFound(c, "artist document")
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

// POST /api/artists/:id/document/rebuild
func (h *ArtistHandler) RebuildDocument(c *gin.Context) {
	artistID, ok := uuidParam(c, "id", "invalid_artist_id")
	if !ok {
		return
	}
	doc, err := h.artists.RebuildDocumentFromLedger(c.Request.Context(), artistID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

type searchQuery struct {
	mirror.SearchFilters
	mirror.SearchOptions
}

// GET /api/artists/search
func (h *ArtistHandler) SearchArtists(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}
	if _, set := c.GetQuery("limit"); !set {
		q.Limit = mirror.DefaultSearchLimit
	}
	res, err := h.artists.SearchArtists(c.Request.Context(), q.SearchFilters, q.SearchOptions)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/artists/popular
func (h *ArtistHandler) PopularArtists(c *gin.Context) {
	limit, ok := intQuery(c, "limit", mirror.DefaultPopularLimit)
	if !ok {
		return
	}
	artists, err := h.artists.GetPopularArtists(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"artists": artists})
}
