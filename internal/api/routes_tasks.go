package api

import (
	"github.com/gin-gonic/gin"

	"github.com/taskhive-io/taskhive/internal/handlers"
)

func registerTaskRoutes(api *gin.RouterGroup, taskHandler *handlers.TaskHandler) {
	tasks := api.Group("/tasks")
	{
		tasks.GET("", taskHandler.List)
		tasks.POST("", taskHandler.Create)
		tasks.POST("/bulk-update", taskHandler.BulkUpdate)
		tasks.GET("/:id", taskHandler.Get)
		tasks.PATCH("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}
}
