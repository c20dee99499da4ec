package repository

import (
	"context"

	"github.com/project-manager/engine/internal/models"
	appErr "github.com/project-manager/engine/pkg/errors"
	"gorm.io/gorm"
)

type FileRepository interface {
	BaseRepository[models.ProjectFile]
	ListByProject(ctx context.Context, projectID uint) ([]models.ProjectFile, error)
	CountByProject(ctx context.Context, projectID uint) (int64, error)
	// DeleteByProject removes every file row of the project and returns the removed rows.
	DeleteByProject(ctx context.Context, projectID uint) ([]models.ProjectFile, error)
}

type fileRepository struct {
	BaseRepository[models.ProjectFile]
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{BaseRepository: NewBaseRepository[models.ProjectFile](db, "File"), db: db}
}

func (r *fileRepository) ListByProject(ctx context.Context, projectID uint) ([]models.ProjectFile, error) {
	out := []models.ProjectFile{}
	if err := orderFiles(r.db.WithContext(ctx)).Where("project_id = ?", projectID).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list files failed")
	}
	return out, nil
}

func (r *fileRepository) CountByProject(ctx context.Context, projectID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.ProjectFile{}).Where("project_id = ?", projectID).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count files failed")
	}
	return n, nil
}

func (r *fileRepository) DeleteByProject(ctx context.Context, projectID uint) ([]models.ProjectFile, error) {
	files, err := r.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return files, nil
	}
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.ProjectFile{}).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "delete project files failed")
	}
	return files, nil
}
