package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/taskhive-io/taskhive/internal/models"
	apperrors "github.com/taskhive-io/taskhive/pkg/errors"
)

// ErrProjectNotFound indicates the requested project does not exist.
var ErrProjectNotFound = apperrors.New("PROJECT_NOT_FOUND", "Project not found", http.StatusNotFound)

// CreateProjectInput captures new project metadata.
type CreateProjectInput struct {
	Name        string
	ImageURL    string
	WorkspaceID string
}

// UpdateProjectInput describes mutable project fields.
type UpdateProjectInput struct {
	Name     *string
	ImageURL *string
}

// ProjectService handles project lifecycle within a workspace. Authorization
// for existing projects is two-hop: load project, then check membership in
// its workspace.
type ProjectService struct {
	db         *gorm.DB
	membership *MembershipService
	audit      *AuditService
}

// NewProjectService constructs a ProjectService instance.
func NewProjectService(db *gorm.DB, membership *MembershipService, audit *AuditService) (*ProjectService, error) {
	if db == nil {
		return nil, errors.New("project service: db is required")
	}
	if membership == nil {
		return nil, errors.New("project service: membership service is required")
	}
	return &ProjectService{db: db, membership: membership, audit: audit}, nil
}

// Create registers a project. Any member of the workspace may create one.
func (s *ProjectService) Create(ctx context.Context, actorUserID string, input CreateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("project name is required")
	}

	if _, err := s.membership.RequireMember(ctx, input.WorkspaceID, actorUserID); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		WorkspaceID: strings.TrimSpace(input.WorkspaceID),
	}

	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, fmt.Errorf("project service: create project: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: project.WorkspaceID,
		Action:      "project.create",
		Resource:    project.ID,
		Result:      "success",
		Metadata:    map[string]any{"name": project.Name},
	})

	return project, nil
}

// List returns the workspace's projects, newest first.
func (s *ProjectService) List(ctx context.Context, workspaceID, actorUserID string) ([]models.Project, error) {
	ctx = ensureContext(ctx)

	if _, err := s.membership.RequireMember(ctx, workspaceID, actorUserID); err != nil {
		return nil, err
	}

	var projects []models.Project
	err := s.db.WithContext(ctx).
		Where("workspace_id = ?", strings.TrimSpace(workspaceID)).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("project service: list projects: %w", err)
	}

	return projects, nil
}

// GetByID loads a project for a member of its workspace.
func (s *ProjectService) GetByID(ctx context.Context, projectID, actorUserID string) (*models.Project, error) {
	ctx = ensureContext(ctx)

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if _, err := s.membership.RequireMember(ctx, project.WorkspaceID, actorUserID); err != nil {
		return nil, err
	}

	return project, nil
}

// Update modifies project metadata for a member of its workspace.
func (s *ProjectService) Update(ctx context.Context, projectID, actorUserID string, input UpdateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if _, err := s.membership.RequireMember(ctx, project.WorkspaceID, actorUserID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != project.Name {
			updates["name"] = name
		}
	}
	if input.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*input.ImageURL)
	}

	if len(updates) == 0 {
		return project, nil
	}

	if err := s.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("project service: update project: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: project.WorkspaceID,
		Action:      "project.update",
		Resource:    project.ID,
		Result:      "success",
		Metadata:    updates,
	})

	return s.loadProject(ctx, projectID)
}

// Delete removes the project record. Tasks keep their project_id; task
// enrichment treats the missing project as an absent join.
func (s *ProjectService) Delete(ctx context.Context, projectID, actorUserID string) error {
	ctx = ensureContext(ctx)

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}

	if _, err := s.membership.RequireMember(ctx, project.WorkspaceID, actorUserID); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(project).Error; err != nil {
		return fmt.Errorf("project service: delete project: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: project.WorkspaceID,
		Action:      "project.delete",
		Resource:    project.ID,
		Result:      "success",
	})

	return nil
}

func (s *ProjectService) loadProject(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).First(&project, "id = ?", strings.TrimSpace(projectID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("project service: load project: %w", err)
	}
	return &project, nil
}
