package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-io/taskhive/internal/models"
	"github.com/taskhive-io/taskhive/internal/services"
	"github.com/taskhive-io/taskhive/pkg/errors"
	"github.com/taskhive-io/taskhive/pkg/response"
)

// TaskHandler exposes task lifecycle, filtered listing and bulk updates.
type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Name        string            `json:"name" validate:"required,max=200"`
	Status      models.TaskStatus `json:"status" validate:"required,oneof=BACKLOG TODO IN_PROGRESS IN_REVIEW DONE"`
	WorkspaceID string            `json:"workspace_id" validate:"required"`
	ProjectID   string            `json:"project_id" validate:"required"`
	AssigneeID  string            `json:"assignee_id" validate:"required"`
	DueDate     time.Time         `json:"due_date" validate:"required"`
	Description string            `json:"description"`
}

type updateTaskRequest struct {
	Name        *string            `json:"name" validate:"omitempty,max=200"`
	Status      *models.TaskStatus `json:"status" validate:"omitempty,oneof=BACKLOG TODO IN_PROGRESS IN_REVIEW DONE"`
	ProjectID   *string            `json:"project_id"`
	AssigneeID  *string            `json:"assignee_id"`
	DueDate     *time.Time         `json:"due_date"`
	Description *string            `json:"description"`
}

type bulkUpdateTaskItem struct {
	ID       string            `json:"id" validate:"required"`
	Status   models.TaskStatus `json:"status" validate:"required,oneof=BACKLOG TODO IN_PROGRESS IN_REVIEW DONE"`
	Position int               `json:"position" validate:"required,min=1000,max=1000000"`
}

type bulkUpdateTasksRequest struct {
	Tasks []bulkUpdateTaskItem `json:"tasks" validate:"required,min=1,dive"`
}

// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if !bindAndValidate(c, &req) {
		return
	}

	task, err := h.tasks.Create(requestContext(c), currentUserID(c), services.CreateTaskInput{
		Name:        req.Name,
		Status:      req.Status,
		WorkspaceID: req.WorkspaceID,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, task)
}

// GET /api/tasks?workspace_id=...&project_id=...&assignee_id=...&status=...&due_date=...&search=...
func (h *TaskHandler) List(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		response.Error(c, errors.NewBadRequest("workspace_id is required"))
		return
	}

	filter := services.TaskFilter{
		WorkspaceID: workspaceID,
		ProjectID:   c.Query("project_id"),
		AssigneeID:  c.Query("assignee_id"),
		Status:      models.TaskStatus(c.Query("status")),
		Search:      c.Query("search"),
	}

	if raw := c.Query("due_date"); raw != "" {
		due, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, errors.NewBadRequest("due_date must be RFC3339"))
			return
		}
		filter.DueDate = &due
	}

	tasks, err := h.tasks.List(requestContext(c), currentUserID(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, tasks, &response.Meta{Total: len(tasks)})
}

// GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.tasks.GetByID(requestContext(c), c.Param("id"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, task)
}

// PATCH /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var req updateTaskRequest
	if !bindAndValidate(c, &req) {
		return
	}

	task, err := h.tasks.Update(requestContext(c), c.Param("id"), currentUserID(c), services.UpdateTaskInput{
		Name:        req.Name,
		Status:      req.Status,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, task)
}

// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.tasks.Delete(requestContext(c), c.Param("id"), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/tasks/bulk-update
//
// The batch is validated up front but applied item by item; a partial
// failure still returns the items that were written.
func (h *TaskHandler) BulkUpdate(c *gin.Context) {
	var req bulkUpdateTasksRequest
	if !bindAndValidate(c, &req) {
		return
	}

	items := make([]services.BulkTaskUpdate, 0, len(req.Tasks))
	for _, item := range req.Tasks {
		items = append(items, services.BulkTaskUpdate{
			ID:       item.ID,
			Status:   item.Status,
			Position: item.Position,
		})
	}

	result, err := h.tasks.BulkUpdate(requestContext(c), currentUserID(c), items)
	if err != nil && result == nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if result != nil && len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	response.Success(c, status, result)
}
