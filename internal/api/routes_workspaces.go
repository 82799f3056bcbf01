package api

import (
	"github.com/gin-gonic/gin"

	"github.com/taskhive-io/taskhive/internal/handlers"
)

func registerWorkspaceRoutes(api *gin.RouterGroup, workspaceHandler *handlers.WorkspaceHandler, memberHandler *handlers.MemberHandler, auditHandler *handlers.AuditHandler) {
	workspaces := api.Group("/workspaces")
	{
		workspaces.GET("", workspaceHandler.List)
		workspaces.POST("", workspaceHandler.Create)
		workspaces.GET("/:id", workspaceHandler.Get)
		workspaces.PATCH("/:id", workspaceHandler.Update)
		workspaces.DELETE("/:id", workspaceHandler.Delete)
		workspaces.POST("/:id/join", workspaceHandler.Join)
		workspaces.POST("/:id/reset-invite-code", workspaceHandler.ResetInviteCode)
		workspaces.GET("/:id/analytics", workspaceHandler.Analytics)
		workspaces.GET("/:id/members", memberHandler.List)
		workspaces.GET("/:id/audit", auditHandler.List)
	}

	members := api.Group("/members")
	{
		members.PATCH("/:id", memberHandler.UpdateRole)
		members.DELETE("/:id", memberHandler.Remove)
	}
}
