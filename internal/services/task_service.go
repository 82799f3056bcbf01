package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/taskhive-io/taskhive/internal/models"
	apperrors "github.com/taskhive-io/taskhive/pkg/errors"
)

var (
	// ErrTaskNotFound indicates the requested task does not exist.
	ErrTaskNotFound = apperrors.New("TASK_NOT_FOUND", "Task not found", http.StatusNotFound)
	// ErrTasksSpanWorkspaces rejects bulk updates whose tasks belong to more than one workspace.
	ErrTasksSpanWorkspaces = apperrors.New("TASKS_WORKSPACE_MISMATCH", "All tasks must share the same workspace", http.StatusBadRequest)
)

// TaskFilter describes the conjunctive filters for task listings.
// WorkspaceID is mandatory; the rest are optional exact matches except
// Search, which is a substring match on the task name.
type TaskFilter struct {
	WorkspaceID string
	ProjectID   string
	AssigneeID  string
	Status      models.TaskStatus
	DueDate     *time.Time
	Search      string
}

// CreateTaskInput captures the fields needed to create a task.
type CreateTaskInput struct {
	Name        string
	Status      models.TaskStatus
	WorkspaceID string
	ProjectID   string
	AssigneeID  string
	DueDate     time.Time
	Description string
}

// UpdateTaskInput describes mutable task fields.
type UpdateTaskInput struct {
	Name        *string
	Status      *models.TaskStatus
	ProjectID   *string
	AssigneeID  *string
	DueDate     *time.Time
	Description *string
}

// BulkTaskUpdate is one item of a bulk status/position update.
type BulkTaskUpdate struct {
	ID       string
	Status   models.TaskStatus
	Position int
}

// BulkUpdateFailure reports a single item that could not be applied.
type BulkUpdateFailure struct {
	ID  string `json:"id"`
	Err string `json:"error"`
}

// BulkUpdateResult reports per-item outcomes of a bulk update. The batch is
// not atomic: some items may be written while others fail.
type BulkUpdateResult struct {
	Updated []models.Task       `json:"updated"`
	Failed  []BulkUpdateFailure `json:"failed,omitempty"`
}

// TaskService handles task lifecycle, filtered listing and enrichment.
type TaskService struct {
	db         *gorm.DB
	membership *MembershipService
	users      *UserService
	audit      *AuditService
}

// NewTaskService constructs a TaskService instance.
func NewTaskService(db *gorm.DB, membership *MembershipService, users *UserService, audit *AuditService) (*TaskService, error) {
	if db == nil {
		return nil, errors.New("task service: db is required")
	}
	if membership == nil {
		return nil, errors.New("task service: membership service is required")
	}
	if users == nil {
		return nil, errors.New("task service: user service is required")
	}
	return &TaskService{db: db, membership: membership, users: users, audit: audit}, nil
}

// Create registers a task at the end of its status column. The position is
// the column's highest position plus the step, or the step itself for an
// empty column.
func (s *TaskService) Create(ctx context.Context, actorUserID string, input CreateTaskInput) (*models.Task, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("task name is required")
	}
	if !models.ValidTaskStatus(input.Status) {
		return nil, apperrors.NewBadRequest("invalid task status")
	}
	if strings.TrimSpace(input.ProjectID) == "" || strings.TrimSpace(input.AssigneeID) == "" {
		return nil, apperrors.NewBadRequest("project id and assignee id are required")
	}
	if input.DueDate.IsZero() {
		return nil, apperrors.NewBadRequest("due date is required")
	}

	if _, err := s.membership.RequireMember(ctx, input.WorkspaceID, actorUserID); err != nil {
		return nil, err
	}

	var highest int
	err := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Select("COALESCE(MAX(position), 0)").
		Where("workspace_id = ? AND status = ?", strings.TrimSpace(input.WorkspaceID), input.Status).
		Scan(&highest).Error
	if err != nil {
		return nil, fmt.Errorf("task service: find highest position: %w", err)
	}

	task := &models.Task{
		Name:        name,
		Status:      input.Status,
		WorkspaceID: strings.TrimSpace(input.WorkspaceID),
		ProjectID:   strings.TrimSpace(input.ProjectID),
		AssigneeID:  strings.TrimSpace(input.AssigneeID),
		Description: strings.TrimSpace(input.Description),
		DueDate:     input.DueDate,
		Position:    highest + models.PositionStep,
	}

	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, fmt.Errorf("task service: create task: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: task.WorkspaceID,
		Action:      "task.create",
		Resource:    task.ID,
		Result:      "success",
		Metadata:    map[string]any{"name": task.Name, "status": string(task.Status)},
	})

	return task, nil
}

// List returns the tasks matching the filter, newest first, enriched with
// their project and assignee.
func (s *TaskService) List(ctx context.Context, actorUserID string, filter TaskFilter) ([]models.Task, error) {
	ctx = ensureContext(ctx)

	if _, err := s.membership.RequireMember(ctx, filter.WorkspaceID, actorUserID); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("workspace_id = ?", strings.TrimSpace(filter.WorkspaceID)).
		Order("created_at DESC")

	if projectID := strings.TrimSpace(filter.ProjectID); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if assigneeID := strings.TrimSpace(filter.AssigneeID); assigneeID != "" {
		query = query.Where("assignee_id = ?", assigneeID)
	}
	if filter.Status != "" {
		if !models.ValidTaskStatus(filter.Status) {
			return nil, apperrors.NewBadRequest("invalid task status")
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DueDate != nil {
		query = query.Where("due_date = ?", *filter.DueDate)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task service: list tasks: %w", err)
	}

	if err := s.enrich(ctx, tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// GetByID loads a single task, enriched, for a member of its workspace.
func (s *TaskService) GetByID(ctx context.Context, taskID, actorUserID string) (*models.Task, error) {
	ctx = ensureContext(ctx)

	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if _, err := s.membership.RequireMember(ctx, task.WorkspaceID, actorUserID); err != nil {
		return nil, err
	}

	tasks := []models.Task{*task}
	if err := s.enrich(ctx, tasks); err != nil {
		return nil, err
	}

	return &tasks[0], nil
}

// Update modifies a task. The guard runs against the task's own workspace,
// loaded from the existing record.
func (s *TaskService) Update(ctx context.Context, taskID, actorUserID string, input UpdateTaskInput) (*models.Task, error) {
	ctx = ensureContext(ctx)

	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if _, err := s.membership.RequireMember(ctx, task.WorkspaceID, actorUserID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			updates["name"] = name
		}
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, apperrors.NewBadRequest("invalid task status")
		}
		updates["status"] = *input.Status
	}
	if input.ProjectID != nil {
		if projectID := strings.TrimSpace(*input.ProjectID); projectID != "" {
			updates["project_id"] = projectID
		}
	}
	if input.AssigneeID != nil {
		if assigneeID := strings.TrimSpace(*input.AssigneeID); assigneeID != "" {
			updates["assignee_id"] = assigneeID
		}
	}
	if input.DueDate != nil && !input.DueDate.IsZero() {
		updates["due_date"] = *input.DueDate
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}

	if len(updates) == 0 {
		return task, nil
	}

	if err := s.db.WithContext(ctx).Model(task).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("task service: update task: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: task.WorkspaceID,
		Action:      "task.update",
		Resource:    task.ID,
		Result:      "success",
	})

	return s.loadTask(ctx, taskID)
}

// Delete removes a task after guarding on its workspace.
func (s *TaskService) Delete(ctx context.Context, taskID, actorUserID string) error {
	ctx = ensureContext(ctx)

	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return err
	}

	if _, err := s.membership.RequireMember(ctx, task.WorkspaceID, actorUserID); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(task).Error; err != nil {
		return fmt.Errorf("task service: delete task: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: task.WorkspaceID,
		Action:      "task.delete",
		Resource:    task.ID,
		Result:      "success",
	})

	return nil
}

// BulkUpdate applies status/position changes to a batch of tasks. Every
// referenced task must exist and all must share one workspace; otherwise
// nothing is written. One membership check gates the whole batch. Items are
// then applied independently; the result carries per-item failures and the
// returned error aggregates them.
func (s *TaskService) BulkUpdate(ctx context.Context, actorUserID string, items []BulkTaskUpdate) (*BulkUpdateResult, error) {
	ctx = ensureContext(ctx)

	if len(items) == 0 {
		return nil, apperrors.NewBadRequest("no tasks to update")
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if !models.ValidTaskStatus(item.Status) {
			return nil, apperrors.NewBadRequest("invalid task status")
		}
		if item.Position < models.PositionStep || item.Position > 1_000_000 {
			return nil, apperrors.NewBadRequest("task position out of range")
		}
		ids = append(ids, item.ID)
	}

	cleanIDs := normaliseIDs(ids)
	var existing []models.Task
	if err := s.db.WithContext(ctx).Where("id IN ?", cleanIDs).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("task service: load tasks: %w", err)
	}
	if len(existing) != len(cleanIDs) {
		return nil, ErrTaskNotFound
	}

	workspaceIDs := make(map[string]struct{}, 1)
	for _, task := range existing {
		workspaceIDs[task.WorkspaceID] = struct{}{}
	}
	if len(workspaceIDs) != 1 {
		return nil, ErrTasksSpanWorkspaces
	}

	var workspaceID string
	for id := range workspaceIDs {
		workspaceID = id
	}

	if _, err := s.membership.RequireMember(ctx, workspaceID, actorUserID); err != nil {
		return nil, err
	}

	result := &BulkUpdateResult{Updated: make([]models.Task, 0, len(items))}
	var itemErrs error
	for _, item := range items {
		err := s.db.WithContext(ctx).
			Model(&models.Task{}).
			Where("id = ?", item.ID).
			Updates(map[string]any{"status": item.Status, "position": item.Position}).Error
		if err != nil {
			result.Failed = append(result.Failed, BulkUpdateFailure{ID: item.ID, Err: err.Error()})
			itemErrs = multierr.Append(itemErrs, fmt.Errorf("task %s: %w", item.ID, err))
			continue
		}

		task, err := s.loadTask(ctx, item.ID)
		if err != nil {
			result.Failed = append(result.Failed, BulkUpdateFailure{ID: item.ID, Err: err.Error()})
			itemErrs = multierr.Append(itemErrs, fmt.Errorf("task %s: %w", item.ID, err))
			continue
		}
		result.Updated = append(result.Updated, *task)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: workspaceID,
		Action:      "task.bulk_update",
		Resource:    workspaceID,
		Result:      "success",
		Metadata:    map[string]any{"updated": len(result.Updated), "failed": len(result.Failed)},
	})

	return result, itemErrs
}

// enrich attaches project and assignee records to each task using one batch
// query per collection and an in-memory join. Missing references are left
// nil; the store has no native join and stale ids are tolerated.
func (s *TaskService) enrich(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	projectIDs := make([]string, 0, len(tasks))
	assigneeIDs := make([]string, 0, len(tasks))
	for _, task := range tasks {
		projectIDs = append(projectIDs, task.ProjectID)
		assigneeIDs = append(assigneeIDs, task.AssigneeID)
	}

	projects := make(map[string]models.Project)
	if ids := normaliseIDs(projectIDs); len(ids) > 0 {
		var rows []models.Project
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return fmt.Errorf("task service: load projects: %w", err)
		}
		for _, row := range rows {
			projects[row.ID] = row
		}
	}

	members := make(map[string]models.Member)
	var memberUserIDs []string
	if ids := normaliseIDs(assigneeIDs); len(ids) > 0 {
		var rows []models.Member
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return fmt.Errorf("task service: load members: %w", err)
		}
		for _, row := range rows {
			members[row.ID] = row
			memberUserIDs = append(memberUserIDs, row.UserID)
		}
	}

	users, err := s.users.GetByIDs(ctx, memberUserIDs)
	if err != nil {
		return err
	}

	for i := range tasks {
		if project, ok := projects[tasks[i].ProjectID]; ok {
			p := project
			tasks[i].Project = &p
		}
		if member, ok := members[tasks[i].AssigneeID]; ok {
			m := member
			if user, found := users[m.UserID]; found {
				m.Name = user.Name
				m.Email = user.Email
			}
			tasks[i].Assignee = &m
		}
	}

	return nil
}

func (s *TaskService) loadTask(ctx context.Context, taskID string) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).First(&task, "id = ?", strings.TrimSpace(taskID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("task service: load task: %w", err)
	}
	return &task, nil
}
