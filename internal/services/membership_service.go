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
	"github.com/taskhive-io/taskhive/pkg/metrics"
)

var (
	// ErrNotWorkspaceMember signals the actor holds no membership in the workspace.
	ErrNotWorkspaceMember = apperrors.New("WORKSPACE_MEMBER_REQUIRED", "You are not a member of this workspace", http.StatusForbidden)
	// ErrWorkspaceAdminRequired signals the operation is reserved for ADMIN members.
	ErrWorkspaceAdminRequired = apperrors.New("WORKSPACE_ADMIN_REQUIRED", "Workspace admin role required", http.StatusForbidden)
)

// MembershipService resolves workspace memberships and acts as the access
// guard for every workspace-scoped operation. It holds no cache; each check
// re-queries the store so decisions always reflect latest committed state.
type MembershipService struct {
	db *gorm.DB
}

// NewMembershipService constructs a MembershipService instance.
func NewMembershipService(db *gorm.DB) (*MembershipService, error) {
	if db == nil {
		return nil, errors.New("membership service: db is required")
	}
	return &MembershipService{db: db}, nil
}

// ResolveMember returns the Member row joining the user to the workspace, or
// nil when none exists. Absence is not an error; callers decide whether it is
// fatal. At most one row matches thanks to the (workspace_id, user_id) unique
// index, and the first match is taken.
func (s *MembershipService) ResolveMember(ctx context.Context, workspaceID, userID string) (*models.Member, error) {
	ctx = ensureContext(ctx)

	workspaceID = strings.TrimSpace(workspaceID)
	userID = strings.TrimSpace(userID)
	if workspaceID == "" || userID == "" {
		return nil, nil
	}

	var members []models.Member
	err := s.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Limit(1).
		Find(&members).Error
	if err != nil {
		metrics.MembershipChecks.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("membership service: resolve member: %w", err)
	}

	if len(members) == 0 {
		return nil, nil
	}
	return &members[0], nil
}

// RequireMember enforces membership of any role and returns the member on success.
func (s *MembershipService) RequireMember(ctx context.Context, workspaceID, userID string) (*models.Member, error) {
	member, err := s.ResolveMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		metrics.MembershipChecks.WithLabelValues("deny").Inc()
		return nil, ErrNotWorkspaceMember
	}

	metrics.MembershipChecks.WithLabelValues("allow").Inc()
	return member, nil
}

// RequireAdmin enforces ADMIN membership and returns the member on success.
// Non-members and plain members both fail closed.
func (s *MembershipService) RequireAdmin(ctx context.Context, workspaceID, userID string) (*models.Member, error) {
	member, err := s.ResolveMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		metrics.MembershipChecks.WithLabelValues("deny").Inc()
		return nil, ErrNotWorkspaceMember
	}
	if !member.IsAdmin() {
		metrics.MembershipChecks.WithLabelValues("deny").Inc()
		return nil, ErrWorkspaceAdminRequired
	}

	metrics.MembershipChecks.WithLabelValues("allow").Inc()
	return member, nil
}
