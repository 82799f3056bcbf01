package models

// MemberRole enumerates workspace membership roles.
type MemberRole string

const (
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

// Member joins a user to a workspace with a role. At most one row exists per
// (workspace_id, user_id) pair; the membership resolver relies on that.
// Tasks reference members, not users, as their assignee.
type Member struct {
	BaseModel

	WorkspaceID string     `gorm:"type:uuid;not null;uniqueIndex:idx_members_workspace_user" json:"workspace_id"`
	UserID      string     `gorm:"type:uuid;not null;uniqueIndex:idx_members_workspace_user" json:"user_id"`
	Role        MemberRole `gorm:"not null;default:MEMBER" json:"role"`

	// Filled from the users table when listings are enriched; never stored.
	Name  string `gorm:"-" json:"name,omitempty"`
	Email string `gorm:"-" json:"email,omitempty"`
}

// IsAdmin reports whether the member holds the ADMIN role.
func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}
