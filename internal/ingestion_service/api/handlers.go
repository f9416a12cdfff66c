package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"docqa/internal/database/minio"
	"docqa/internal/ingestion_service/service"
	"docqa/internal/rag/schema"
)

// Handler bundles the ingestion endpoint handlers.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(s *service.Service) *Handler {
	return &Handler{service: s}
}

// UploadDocument handles a multipart document upload into a collection.
func (h *Handler) UploadDocument(c *gin.Context) {
	collection := c.Param("collection")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filename := filepath.Base(fileHeader.Filename)
	stats, err := h.service.UploadDocument(c.Request.Context(), collection, filename, raw)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// EmbedPagesRequest selects the pages to re-ingest.
type EmbedPagesRequest struct {
	Pages []int `json:"pages" binding:"required"`
}

// EmbedPages re-ingests a subset of a stored document's pages.
func (h *Handler) EmbedPages(c *gin.Context) {
	collection := c.Param("collection")
	filename := c.Param("filename")

	var req EmbedPagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.service.EmbedPages(c.Request.Context(), collection, filename, req.Pages)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// DeleteCollection removes a whole collection.
func (h *Handler) DeleteCollection(c *gin.Context) {
	deleted, err := h.service.DeleteCollection(c.Request.Context(), c.Param("collection"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
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

// Health reports service health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": h.service.Health(c.Request.Context())})
}

// respondError maps the error taxonomy onto HTTP statuses. The error class is
// always surfaced; raw stack traces never are.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, schema.ErrUnsupportedFormat),
		errors.Is(err, schema.ErrExtraction),
		errors.Is(err, service.ErrInvalidCollectionName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, schema.ErrCollectionNotFound),
		errors.Is(err, minio.ErrObjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, schema.ErrModelVersionMismatch):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, schema.ErrEmbedding):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
