package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records workspace-scoped actions for traceability.
type AuditLog struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      *string        `gorm:"type:uuid;index" json:"user_id"`
	WorkspaceID string         `gorm:"type:uuid;index" json:"workspace_id"`
	Action      string         `gorm:"not null;index" json:"action"`
	Resource    string         `gorm:"index" json:"resource"`
	Result      string         `gorm:"not null" json:"result"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
