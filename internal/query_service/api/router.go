package api

import (
	"github.com/gin-gonic/gin"

	"docqa/pkg/middleware"
)

// SetupRouter configures the gin engine for the query service.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestID())

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/chat", h.Chat)
		apiV1.GET("/documents", h.ListDocuments)
		apiV1.GET("/documents/:collection/:filename", h.FetchDocument)
		apiV1.GET("/collections", h.ListCollections)
	}

	r.GET("/healthz", h.Health)

	return r
}
