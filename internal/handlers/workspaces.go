package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-io/taskhive/internal/services"
	"github.com/taskhive-io/taskhive/pkg/response"
)

// WorkspaceHandler exposes workspace lifecycle, invites and analytics.
type WorkspaceHandler struct {
	workspaces *services.WorkspaceService
	analytics  *services.AnalyticsService
}

func NewWorkspaceHandler(workspaces *services.WorkspaceService, analytics *services.AnalyticsService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces, analytics: analytics}
}

type createWorkspaceRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type updateWorkspaceRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=120"`
	ImageURL *string `json:"image_url"`
}

type joinWorkspaceRequest struct {
	Code string `json:"code" validate:"required"`
}

// POST /api/workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req createWorkspaceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	workspace, err := h.workspaces.Create(requestContext(c), currentUserID(c), services.CreateWorkspaceInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, workspace)
}

// GET /api/workspaces
func (h *WorkspaceHandler) List(c *gin.Context) {
	workspaces, err := h.workspaces.ListForUser(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, workspaces, &response.Meta{Total: len(workspaces)})
}

// GET /api/workspaces/:id
func (h *WorkspaceHandler) Get(c *gin.Context) {
	workspace, err := h.workspaces.GetByID(requestContext(c), c.Param("id"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, workspace)
}

// PATCH /api/workspaces/:id
func (h *WorkspaceHandler) Update(c *gin.Context) {
	var req updateWorkspaceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	workspace, err := h.workspaces.Update(requestContext(c), c.Param("id"), currentUserID(c), services.UpdateWorkspaceInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, workspace)
}

// DELETE /api/workspaces/:id
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	if err := h.workspaces.Delete(requestContext(c), c.Param("id"), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/workspaces/:id/join
func (h *WorkspaceHandler) Join(c *gin.Context) {
	var req joinWorkspaceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	workspace, err := h.workspaces.Join(requestContext(c), c.Param("id"), currentUserID(c), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, workspace)
}

// POST /api/workspaces/:id/reset-invite-code
func (h *WorkspaceHandler) ResetInviteCode(c *gin.Context) {
	workspace, err := h.workspaces.ResetInviteCode(requestContext(c), c.Param("id"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, workspace)
}

// GET /api/workspaces/:id/analytics
func (h *WorkspaceHandler) Analytics(c *gin.Context) {
	metrics, err := h.analytics.Compute(requestContext(c), services.AnalyticsScope{
		WorkspaceID: c.Param("id"),
	}, currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, metrics)
}
