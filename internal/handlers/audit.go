package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-io/taskhive/internal/services"
	"github.com/taskhive-io/taskhive/pkg/response"
)

// AuditHandler exposes the workspace audit trail to its admins.
type AuditHandler struct {
	audit      *services.AuditService
	membership *services.MembershipService
}

func NewAuditHandler(audit *services.AuditService, membership *services.MembershipService) *AuditHandler {
	return &AuditHandler{audit: audit, membership: membership}
}

// GET /api/workspaces/:id/audit?limit=...
func (h *AuditHandler) List(c *gin.Context) {
	ctx := requestContext(c)
	workspaceID := c.Param("id")

	if _, err := h.membership.RequireAdmin(ctx, workspaceID, currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	limit := parseIntQuery(c, "limit", 50)
	logs, err := h.audit.ListByWorkspace(ctx, workspaceID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, logs, &response.Meta{Total: len(logs)})
}
