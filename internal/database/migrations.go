package database

import (
	"gorm.io/gorm"

	"github.com/taskhive-io/taskhive/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Member{},
		&models.Project{},
		&models.Task{},
		&models.AuditLog{},
	)
}
