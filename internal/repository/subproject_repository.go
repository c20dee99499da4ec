package repository

import (
	"context"

	"github.com/project-manager/engine/internal/models"
	appErr "github.com/project-manager/engine/pkg/errors"
	"gorm.io/gorm"
)

type SubProjectRepository interface {
	BaseRepository[models.SubProject]
	ListByProject(ctx context.Context, projectID uint) ([]models.SubProject, error)
	// Patch updates only the given columns of one sub-project.
	Patch(ctx context.Context, id uint, fields map[string]interface{}) error
	DeleteByProject(ctx context.Context, projectID uint) (int64, error)
}

type subProjectRepository struct {
	BaseRepository[models.SubProject]
	db *gorm.DB
}

func NewSubProjectRepository(db *gorm.DB) SubProjectRepository {
	return &subProjectRepository{BaseRepository: NewBaseRepository[models.SubProject](db, "Subproject"), db: db}
}

func (r *subProjectRepository) ListByProject(ctx context.Context, projectID uint) ([]models.SubProject, error) {
	out := []models.SubProject{}
	if err := orderSubProjects(r.db.WithContext(ctx)).Where("project_id = ?", projectID).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list subprojects failed")
	}
	return out, nil
}

func (r *subProjectRepository) Patch(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		var sp models.SubProject
		return r.GetByID(ctx, id, &sp)
	}
	res := r.db.WithContext(ctx).Model(&models.SubProject{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update subproject failed")
	}
	if res.RowsAffected == 0 {
		return appErr.NotFound("Subproject not found")
	}
	return nil
}

func (r *subProjectRepository) DeleteByProject(ctx context.Context, projectID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.SubProject{})
	if res.Error != nil {
		return 0, appErr.Wrap(res.Error, appErr.CodeInternal, "delete project subprojects failed")
	}
	return res.RowsAffected, nil
}
