package repository

import (
	"github.com/project-manager/engine/internal/models"
	"gorm.io/gorm"
)

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.Project{},
		&models.ProjectFile{},
		&models.SubProject{},
	}
}

// AutoMigrate creates or updates the tables for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
