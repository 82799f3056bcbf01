package api

import (
	"github.com/gin-gonic/gin"

	"github.com/taskhive-io/taskhive/internal/handlers"
)

func registerProjectRoutes(api *gin.RouterGroup, projectHandler *handlers.ProjectHandler) {
	projects := api.Group("/projects")
	{
		projects.GET("", projectHandler.List)
		projects.POST("", projectHandler.Create)
		projects.GET("/:id", projectHandler.Get)
		projects.PATCH("/:id", projectHandler.Update)
		projects.DELETE("/:id", projectHandler.Delete)
		projects.GET("/:id/analytics", projectHandler.Analytics)
	}
}
