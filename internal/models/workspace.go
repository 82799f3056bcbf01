package models

// Workspace is the top-level tenant containing projects, tasks and members.
type Workspace struct {
	BaseModel

	Name     string `gorm:"not null" json:"name"`
	ImageURL string `json:"image_url,omitempty"`

	// OwnerUserID records the creating user; authorization still goes
	// through Member rows, including for the owner.
	OwnerUserID string `gorm:"type:uuid;not null;index" json:"owner_user_id"`

	// InviteCode is a shared secret; resetting it invalidates every
	// outstanding invite link at once.
	InviteCode string `gorm:"not null" json:"invite_code"`
}
