package api

import (
	"github.com/gin-gonic/gin"

	"docqa/pkg/middleware"
)

// SetupRouter configures the gin engine for the ingestion service.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestID())

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/collections", h.ListCollections)
		apiV1.POST("/collections/:collection/documents", h.UploadDocument)
		apiV1.POST("/collections/:collection/documents/:filename/pages", h.EmbedPages)
		apiV1.DELETE("/collections/:collection", h.DeleteCollection)
	}

	r.GET("/healthz", h.Health)

	return r
}
