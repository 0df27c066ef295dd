package api

import (
	"github.com/gin-gonic/gin"
	"github.com/savitara/dharma-assistant/api/handler"
	"github.com/savitara/dharma-assistant/api/middleware"
)

// SetupRouter wires all API endpoints and middleware.
func SetupRouter(
	docHandler *handler.DocumentHandler,
	chatHandler *handler.ChatHandler,
) *gin.Engine {
	router := gin.New()

	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestLogger())
	}

	api := router.Group("/api")
	{
		docGroup := api.Group("/documents")
		{
			// upload a document - POST /api/documents
			docGroup.POST("", docHandler.Upload)

			// document status - GET /api/documents/:id/status
			docGroup.GET("/:id/status", docHandler.Status)

			// list documents - GET /api/documents
			docGroup.GET("", docHandler.List)

			// delete a document - DELETE /api/documents/:id
			docGroup.DELETE("/:id", docHandler.Delete)

			// rebuild the corpus from the database - POST /api/documents/reload
			docGroup.POST("/reload", docHandler.Reload)
		}

		// question answering - POST /api/ask
		api.POST("/ask", chatHandler.Ask)

		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})
	}

	return router
}
