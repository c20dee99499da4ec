package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/project-manager/engine/internal/models"
	appErr "github.com/project-manager/engine/pkg/errors"
	"gorm.io/gorm"
)

// ProjectFilter narrows a project listing. Empty fields and "all" match everything.
type ProjectFilter struct {
	Status   string
	Type     string
	Priority string
	Query    string
}

type ProjectRepository interface {
	BaseRepository[models.Project]
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, error)
	// GetDetailed loads the project with its files and sub-projects.
	GetDetailed(ctx context.Context, id uint, dest *models.Project) error
	// Replace rewrites every mutable column of the project.
	Replace(ctx context.Context, id uint, p *models.Project) error
	Exists(ctx context.Context, id uint) (bool, error)
	Stats(ctx context.Context) (models.ProjectStats, error)
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db, "Project"), db: db}
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{})
	if v := normalizeFilter(filter.Status); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := normalizeFilter(filter.Type); v != "" {
		q = q.Where("type = ?", v)
	}
	if v := normalizeFilter(filter.Priority); v != "" {
		q = q.Where("priority = ?", v)
	}

	term := strings.ToLower(strings.TrimSpace(filter.Query))
	if term != "" {
		// Free-text matching runs in Go with Unicode case folding, one tag at a time.
		var rows []models.Project
		if err := q.Select("id", "name", "description", "client", "tags").Find(&rows).Error; err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects failed")
		}
		ids := make([]uint, 0, len(rows))
		for i := range rows {
			if matchesTerm(&rows[i], term) {
				ids = append(ids, rows[i].ID)
			}
		}
		if len(ids) == 0 {
			return []models.Project{}, nil
		}
		q = r.db.WithContext(ctx).Model(&models.Project{}).Where("id IN ?", ids)
	}

	var out []models.Project
	err := q.Preload("Files", orderFiles).Preload("SubProjects", orderSubProjects).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects failed")
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (r *projectRepository) GetDetailed(ctx context.Context, id uint, dest *models.Project) error {
	err := r.db.WithContext(ctx).
		Preload("Files", orderFiles).Preload("SubProjects", orderSubProjects).
		First(dest, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.NotFound("Project not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get project failed")
	}
	dest.Normalize()
	return nil
}

func (r *projectRepository) Replace(ctx context.Context, id uint, p *models.Project) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":           p.Name,
		"description":    p.Description,
		"status":         p.Status,
		"priority":       p.Priority,
		"type":           p.Type,
		"due_date":       p.DueDate,
		"tags":           p.Tags,
		"subdomain":      p.Subdomain,
		"repository_url": p.RepositoryURL,
		"live_url":       p.LiveURL,
		"features":       p.Features,
		"budget":         p.Budget,
		"client":         p.Client,
		"notes":          p.Notes,
	})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update project failed")
	}
	if res.RowsAffected == 0 {
		return appErr.NotFound("Project not found")
	}
	return nil
}

func (r *projectRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, appErr.Wrap(err, appErr.CodeInternal, "check project failed")
	}
	return n > 0, nil
}

func (r *projectRepository) Stats(ctx context.Context) (models.ProjectStats, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error
	if err != nil {
		return models.ProjectStats{}, appErr.Wrap(err, appErr.CodeInternal, "project stats failed")
	}

	var s models.ProjectStats
	for _, row := range rows {
		s.Total += row.N
		switch row.Status {
		case models.StatusPlanning:
			s.Planning = row.N
		case models.StatusInProgress:
			s.InProgress = row.N
		case models.StatusCompleted:
			s.Completed = row.N
		case models.StatusOnHold:
			s.OnHold = row.N
		}
	}
	return s, nil
}

func orderFiles(db *gorm.DB) *gorm.DB       { return db.Order("uploaded_at ASC").Order("id ASC") }
func orderSubProjects(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

func normalizeFilter(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

// matchesTerm reports whether the lowercased term occurs in the name,
// description, client or any single tag.
func matchesTerm(p *models.Project, term string) bool {
	if containsFold(p.Name, term) || containsFold(p.Description, term) {
		return true
	}
	if p.Client != nil && containsFold(*p.Client, term) {
		return true
	}
	for _, tag := range p.Tags {
		if containsFold(tag, term) {
			return true
		}
	}
	return false
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}
