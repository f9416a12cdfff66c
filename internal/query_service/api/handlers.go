package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docqa/internal/database/minio"
	"docqa/internal/query_service/service"
	"docqa/internal/rag/schema"
)

// Handler bundles the query endpoint handlers.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(s *service.Service) *Handler {
	return &Handler{service: s}
}

// ChatRequest is the question payload. Collections must name at least one
// target; the server never silently queries everything.
type ChatRequest struct {
	Question    string   `json:"question" binding:"required"`
	Collections []string `json:"collections"`
	TopK        int      `json:"topK"`
}

// Chat answers a question grounded on the selected collections.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.service.Chat(c.Request.Context(), req.Question, req.Collections, req.TopK)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// ListDocuments returns the filenames of all registered documents.
func (h *Handler) ListDocuments(c *gin.Context) {
	filenames, err := h.service.ListDocuments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": filenames})
}

// ListCollections returns the collection names.
func (h *Handler) ListCollections(c *gin.Context) {
	names, err := h.service.ListCollections(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"collections": names})
}

// FetchDocument streams the original document bytes back to the caller.
func (h *Handler) FetchDocument(c *gin.Context) {
	raw, err := h.service.FetchDocument(c.Request.Context(), c.Param("collection"), c.Param("filename"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", raw)
}

// Health reports service health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": h.service.Health(c.Request.Context())})
}

// respondError maps the error taxonomy onto HTTP statuses. The query path
// always produces a response: the error class is surfaced, raw stack traces
// never are.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, schema.ErrNoCollectionsSelected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, schema.ErrCollectionNotFound),
		errors.Is(err, minio.ErrObjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, schema.ErrModelVersionMismatch):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, schema.ErrEmbedding),
		errors.Is(err, schema.ErrLanguageModel):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
