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

var (
	// ErrMemberNotFound indicates the requested membership does not exist.
	ErrMemberNotFound = apperrors.New("MEMBER_NOT_FOUND", "Member not found", http.StatusNotFound)
	// ErrLastAdmin blocks demoting or removing the only ADMIN of a workspace.
	ErrLastAdmin = apperrors.New("LAST_ADMIN", "Workspace must keep at least one admin", http.StatusBadRequest)
)

// MemberService manages workspace membership rows.
type MemberService struct {
	db         *gorm.DB
	membership *MembershipService
	users      *UserService
	audit      *AuditService
}

// NewMemberService constructs a MemberService instance.
func NewMemberService(db *gorm.DB, membership *MembershipService, users *UserService, audit *AuditService) (*MemberService, error) {
	if db == nil {
		return nil, errors.New("member service: db is required")
	}
	if membership == nil {
		return nil, errors.New("member service: membership service is required")
	}
	if users == nil {
		return nil, errors.New("member service: user service is required")
	}
	return &MemberService{db: db, membership: membership, users: users, audit: audit}, nil
}

// List returns the workspace's members enriched with user name and email.
// Any member may list; enrichment is best effort for users that vanished.
func (s *MemberService) List(ctx context.Context, workspaceID, actorUserID string) ([]models.Member, error) {
	ctx = ensureContext(ctx)

	if _, err := s.membership.RequireMember(ctx, workspaceID, actorUserID); err != nil {
		return nil, err
	}

	var members []models.Member
	err := s.db.WithContext(ctx).
		Where("workspace_id = ?", strings.TrimSpace(workspaceID)).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("member service: list members: %w", err)
	}

	userIDs := make([]string, 0, len(members))
	for _, member := range members {
		userIDs = append(userIDs, member.UserID)
	}

	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for i := range members {
		if user, ok := users[members[i].UserID]; ok {
			members[i].Name = user.Name
			members[i].Email = user.Email
		}
	}

	return members, nil
}

// UpdateRole changes a member's role. ADMIN only. The last admin of a
// workspace cannot be demoted.
func (s *MemberService) UpdateRole(ctx context.Context, memberID, actorUserID string, role models.MemberRole) (*models.Member, error) {
	ctx = ensureContext(ctx)

	if role != models.RoleAdmin && role != models.RoleMember {
		return nil, apperrors.NewBadRequest("invalid member role")
	}

	member, err := s.loadMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if _, err := s.membership.RequireAdmin(ctx, member.WorkspaceID, actorUserID); err != nil {
		return nil, err
	}

	if member.Role == role {
		return member, nil
	}

	if member.Role == models.RoleAdmin && role == models.RoleMember {
		if err := s.ensureNotLastAdmin(ctx, member); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Model(member).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("member service: update role: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: member.WorkspaceID,
		Action:      "member.update_role",
		Resource:    member.ID,
		Result:      "success",
		Metadata:    map[string]any{"role": string(role)},
	})

	member.Role = role
	return member, nil
}

// Remove deletes a membership row. ADMIN only. The last admin cannot be removed.
func (s *MemberService) Remove(ctx context.Context, memberID, actorUserID string) error {
	ctx = ensureContext(ctx)

	member, err := s.loadMember(ctx, memberID)
	if err != nil {
		return err
	}

	if _, err := s.membership.RequireAdmin(ctx, member.WorkspaceID, actorUserID); err != nil {
		return err
	}

	if member.Role == models.RoleAdmin {
		if err := s.ensureNotLastAdmin(ctx, member); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Delete(member).Error; err != nil {
		return fmt.Errorf("member service: remove member: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:      auditUser(actorUserID),
		WorkspaceID: member.WorkspaceID,
		Action:      "member.remove",
		Resource:    member.ID,
		Result:      "success",
		Metadata:    map[string]any{"user_id": member.UserID},
	})

	return nil
}

func (s *MemberService) ensureNotLastAdmin(ctx context.Context, member *models.Member) error {
	var admins int64
	err := s.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("workspace_id = ? AND role = ?", member.WorkspaceID, models.RoleAdmin).
		Count(&admins).Error
	if err != nil {
		return fmt.Errorf("member service: count admins: %w", err)
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func (s *MemberService) loadMember(ctx context.Context, memberID string) (*models.Member, error) {
	var member models.Member
	err := s.db.WithContext(ctx).First(&member, "id = ?", strings.TrimSpace(memberID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("member service: load member: %w", err)
	}
	return &member, nil
}
