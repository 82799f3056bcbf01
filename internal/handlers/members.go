package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-io/taskhive/internal/models"
	"github.com/taskhive-io/taskhive/internal/services"
	"github.com/taskhive-io/taskhive/pkg/response"
)

// MemberHandler exposes workspace membership management.
type MemberHandler struct {
	members *services.MemberService
}

func NewMemberHandler(members *services.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

type updateMemberRoleRequest struct {
	Role models.MemberRole `json:"role" validate:"required,oneof=ADMIN MEMBER"`
}

// GET /api/workspaces/:id/members
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.members.List(requestContext(c), c.Param("id"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, members, &response.Meta{Total: len(members)})
}

// PATCH /api/members/:id
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	var req updateMemberRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	member, err := h.members.UpdateRole(requestContext(c), c.Param("id"), currentUserID(c), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, member)
}

// DELETE /api/members/:id
func (h *MemberHandler) Remove(c *gin.Context) {
	if err := h.members.Remove(requestContext(c), c.Param("id"), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
