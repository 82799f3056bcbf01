package models

// Project groups tasks inside a single workspace.
type Project struct {
	BaseModel

	Name        string `gorm:"not null" json:"name"`
	ImageURL    string `json:"image_url,omitempty"`
	WorkspaceID string `gorm:"type:uuid;not null;index" json:"workspace_id"`
}
