package main

import (
	"gorm.io/gorm"

	"github.com/project-manager/engine/internal/repository"
)

// runMigrations creates the tables, then applies what AutoMigrate cannot express.
func runMigrations(db *gorm.DB) error {
	if err := repository.AutoMigrate(db); err != nil {
		return err
	}
	return runCustomMigrations(db)
}

func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		addFileListingIndex,
		addSubProjectListingIndex,
	}
	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}
	return nil
}

// addFileListingIndex serves files.php?project_id in upload order.
func addFileListingIndex(db *gorm.DB) error {
	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_project_files_project_uploaded ON project_files(project_id, uploaded_at, id)`).Error
}

func addSubProjectListingIndex(db *gorm.DB) error {
	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_subprojects_project_id_id ON subprojects(project_id, id)`).Error
}
