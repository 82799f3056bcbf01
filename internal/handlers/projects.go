package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-io/taskhive/internal/services"
	"github.com/taskhive-io/taskhive/pkg/errors"
	"github.com/taskhive-io/taskhive/pkg/response"
)

// ProjectHandler exposes project lifecycle and project-scoped analytics.
type ProjectHandler struct {
	projects  *services.ProjectService
	analytics *services.AnalyticsService
}

func NewProjectHandler(projects *services.ProjectService, analytics *services.AnalyticsService) *ProjectHandler {
	return &ProjectHandler{projects: projects, analytics: analytics}
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	WorkspaceID string `json:"workspace_id" validate:"required"`
}

type updateProjectRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=120"`
	ImageURL *string `json:"image_url"`
}

// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Create(requestContext(c), currentUserID(c), services.CreateProjectInput{
		Name:        req.Name,
		ImageURL:    req.ImageURL,
		WorkspaceID: req.WorkspaceID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, project)
}

// GET /api/projects?workspace_id=...
func (h *ProjectHandler) List(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		response.Error(c, errors.NewBadRequest("workspace_id is required"))
		return
	}

	projects, err := h.projects.List(requestContext(c), workspaceID, currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, projects, &response.Meta{Total: len(projects)})
}

// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.GetByID(requestContext(c), c.Param("id"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// PATCH /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req updateProjectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Update(requestContext(c), c.Param("id"), currentUserID(c), services.UpdateProjectInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.Delete(requestContext(c), c.Param("id"), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/projects/:id/analytics
//
// The scope is resolved from the project itself so the caller only names
// the project; membership is checked against its owning workspace.
func (h *ProjectHandler) Analytics(c *gin.Context) {
	ctx := requestContext(c)
	userID := currentUserID(c)

	project, err := h.projects.GetByID(ctx, c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics, err := h.analytics.Compute(ctx, services.AnalyticsScope{
		WorkspaceID: project.WorkspaceID,
		ProjectID:   project.ID,
	}, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, metrics)
}
