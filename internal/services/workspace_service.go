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
	"github.com/taskhive-io/taskhive/pkg/crypto"
)

const inviteCodeLength = 10

var (
	// ErrWorkspaceNotFound indicates the requested workspace does not exist.
	ErrWorkspaceNotFound = apperrors.New("WORKSPACE_NOT_FOUND", "Workspace not found", http.StatusNotFound)
	// ErrAlreadyMember signals the user already belongs to the workspace.
	ErrAlreadyMember = apperrors.New("ALREADY_MEMBER", "Already a member of this workspace", http.StatusConflict)
	// ErrInvalidInviteCode indicates the supplied invite code does not match.
	ErrInvalidInviteCode = apperrors.New("INVALID_INVITE_CODE", "Invalid invite code", http.StatusBadRequest)
)

// CreateWorkspaceInput captures new workspace metadata.
type CreateWorkspaceInput struct {
	Name     string
	ImageURL string
}

// UpdateWorkspaceInput describes mutable workspace fields.
type UpdateWorkspaceInput struct {
	Name     *string
	ImageURL *string
}

// WorkspaceService handles workspace lifecycle, invites and joins.
type WorkspaceService struct {
	db         *gorm.DB
	membership *MembershipService
	audit      *AuditService
}

// NewWorkspaceService constructs a WorkspaceService instance.
func NewWorkspaceService(db *gorm.DB, membership *MembershipService, audit *AuditService) (*WorkspaceService, error) {
	if db == nil {
		return nil, errors.New("workspace service: db is required")
	}
	if membership == nil {
		return nil, errors.New("workspace service: membership service is required")
	}
	return &WorkspaceService{db: db, membership: membership, audit: audit}, nil
}

// Create registers a new workspace and its founding ADMIN member. The two
// writes are independent; if the member write fails the workspace is left
// without members and no compensation runs.
func (s *WorkspaceService) Create(ctx context.Context, actorUserID string, input CreateWorkspaceInput) (*models.Workspace, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("workspace name is required")
	}
	if strings.TrimSpace(actorUserID) == "" {
		return nil, apperrors.NewBadRequest("actor user id is required")
	}

	code, err := crypto.GenerateInviteCode(inviteCodeLength)
	if err != nil {
		return nil, fmt.Errorf("workspace service: generate invite code: %w", err)
	}

	workspace := &models.Workspace{
		Name:        name,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		OwnerUserID: actorUserID,
		InviteCode:  code,
	}

	if err := s.db.WithContext(ctx).Create(workspace).Error; err != nil {
		return nil, fmt.Errorf("workspace service: create workspace: %w", err)
	}

	founder := &models.Member{
		WorkspaceID: workspace.ID,
		UserID:      actorUserID,
		Role:        models.RoleAdmin,
	}
	if err := s.db.WithContext(ctx).Create(founder).Error; err != nil {
		return nil, fmt.Errorf("workspace service: create founding member: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: workspace.ID,
		Action:      "workspace.create",
		Resource:    workspace.ID,
		Result:      "success",
		Metadata:    map[string]any{"name": workspace.Name},
	})

	return workspace, nil
}

// ListForUser returns the workspaces the user is a member of, newest first.
func (s *WorkspaceService) ListForUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	ctx = ensureContext(ctx)

	var members []models.Member
	err := s.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("workspace service: list memberships: %w", err)
	}

	if len(members) == 0 {
		return []models.Workspace{}, nil
	}

	workspaceIDs := make([]string, 0, len(members))
	for _, member := range members {
		workspaceIDs = append(workspaceIDs, member.WorkspaceID)
	}

	var workspaces []models.Workspace
	err = s.db.WithContext(ctx).
		Where("id IN ?", workspaceIDs).
		Order("created_at DESC").
		Find(&workspaces).Error
	if err != nil {
		return nil, fmt.Errorf("workspace service: list workspaces: %w", err)
	}

	return workspaces, nil
}

// GetByID loads a workspace for a member of it.
func (s *WorkspaceService) GetByID(ctx context.Context, workspaceID, actorUserID string) (*models.Workspace, error) {
	ctx = ensureContext(ctx)

	if _, err := s.membership.RequireMember(ctx, workspaceID, actorUserID); err != nil {
		return nil, err
	}

	return s.loadWorkspace(ctx, workspaceID)
}

// Update modifies workspace metadata. ADMIN only.
func (s *WorkspaceService) Update(ctx context.Context, workspaceID, actorUserID string, input UpdateWorkspaceInput) (*models.Workspace, error) {
	ctx = ensureContext(ctx)

	if _, err := s.membership.RequireAdmin(ctx, workspaceID, actorUserID); err != nil {
		return nil, err
	}

	workspace, err := s.loadWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != workspace.Name {
			updates["name"] = name
		}
	}
	if input.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*input.ImageURL)
	}

	if len(updates) == 0 {
		return workspace, nil
	}

	if err := s.db.WithContext(ctx).Model(workspace).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("workspace service: update workspace: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: workspace.ID,
		Action:      "workspace.update",
		Resource:    workspace.ID,
		Result:      "success",
		Metadata:    updates,
	})

	return s.loadWorkspace(ctx, workspaceID)
}

// Delete removes the workspace record. ADMIN only. Projects, tasks and
// members are left in place; the maintenance sweeper reports them as orphans.
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID, actorUserID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.membership.RequireAdmin(ctx, workspaceID, actorUserID); err != nil {
		return err
	}

	workspace, err := s.loadWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(workspace).Error; err != nil {
		return fmt.Errorf("workspace service: delete workspace: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: workspace.ID,
		Action:      "workspace.delete",
		Resource:    workspace.ID,
		Result:      "success",
	})

	return nil
}

// ResetInviteCode rotates the invite code, invalidating all outstanding
// invite links at once. ADMIN only.
func (s *WorkspaceService) ResetInviteCode(ctx context.Context, workspaceID, actorUserID string) (*models.Workspace, error) {
	ctx = ensureContext(ctx)

	if _, err := s.membership.RequireAdmin(ctx, workspaceID, actorUserID); err != nil {
		return nil, err
	}

	workspace, err := s.loadWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	code, err := crypto.GenerateInviteCode(inviteCodeLength)
	if err != nil {
		return nil, fmt.Errorf("workspace service: generate invite code: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(workspace).Update("invite_code", code).Error; err != nil {
		return nil, fmt.Errorf("workspace service: reset invite code: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: workspace.ID,
		Action:      "workspace.reset_invite_code",
		Resource:    workspace.ID,
		Result:      "success",
	})

	workspace.InviteCode = code
	return workspace, nil
}

// Join adds the actor as a MEMBER when the invite code matches.
func (s *WorkspaceService) Join(ctx context.Context, workspaceID, actorUserID, code string) (*models.Workspace, error) {
	ctx = ensureContext(ctx)

	existing, err := s.membership.ResolveMember(ctx, workspaceID, actorUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	workspace, err := s.loadWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if workspace.InviteCode != strings.TrimSpace(code) {
		return nil, ErrInvalidInviteCode
	}

	member := &models.Member{
		WorkspaceID: workspace.ID,
		UserID:      actorUserID,
		Role:        models.RoleMember,
	}
	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("workspace service: create member: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: workspace.ID,
		Action:      "workspace.join",
		Resource:    workspace.ID,
		Result:      "success",
	})

	return workspace, nil
}

func (s *WorkspaceService) loadWorkspace(ctx context.Context, workspaceID string) (*models.Workspace, error) {
	var workspace models.Workspace
	err := s.db.WithContext(ctx).First(&workspace, "id = ?", strings.TrimSpace(workspaceID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("workspace service: load workspace: %w", err)
	}
	return &workspace, nil
}
