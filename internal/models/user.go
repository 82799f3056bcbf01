package models

// User is a platform identity. Workspace access is never granted on the user
// directly; it always flows through a Member row.
type User struct {
	BaseModel

	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
}
