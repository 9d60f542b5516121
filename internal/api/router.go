package api

import "github.com/gin-gonic/gin"

// NewRouter builds the gin engine with all routes registered.
func NewRouter(a *API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", a.HealthHandler)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/documents", a.UploadHandler)
		v1.GET("/documents", a.ListDocumentsHandler)
		v1.POST("/chat", a.AskHandler)
	}

	return router
}
