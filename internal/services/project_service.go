package services

import (
	"context"

	"github.com/project-manager/engine/internal/models"
	"github.com/project-manager/engine/internal/repository"
	appErr "github.com/project-manager/engine/pkg/errors"
	"github.com/project-manager/engine/pkg/logger"
	"go.uber.org/zap"
)

// OrphanSweeper schedules removal of files and sub-projects left behind by a deleted project.
type OrphanSweeper interface {
	EnqueueSweep(ctx context.Context, projectID uint) error
}

type ProjectService interface {
	ListProjects(ctx context.Context, filter repository.ProjectFilter) ([]models.Project, error)
	GetProject(ctx context.Context, id uint) (*models.Project, error)
	CreateProject(ctx context.Context, input *ProjectInput) (*models.Project, error)
	ReplaceProject(ctx context.Context, id uint, input *ProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, id uint) error
	Stats(ctx context.Context) (models.ProjectStats, error)
}

type projectService struct {
	projectRepo repository.ProjectRepository
	sweeper     OrphanSweeper
}

// NewProjectService wires the project use cases. sweeper may be nil, in
// which case deleting a project leaves its files and sub-projects in place.
func NewProjectService(projectRepo repository.ProjectRepository, sweeper OrphanSweeper) ProjectService {
	return &projectService{projectRepo: projectRepo, sweeper: sweeper}
}

var _ ProjectService = (*projectService)(nil)

func (s *projectService) ListProjects(ctx context.Context, filter repository.ProjectFilter) ([]models.Project, error) {
	logger.FromContext(ctx).Debug("list projects",
		zap.String("status", filter.Status),
		zap.String("type", filter.Type),
		zap.String("priority", filter.Priority),
		zap.String("q", filter.Query),
	)
	return s.projectRepo.List(ctx, filter)
}

func (s *projectService) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := s.projectRepo.GetDetailed(ctx, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a project and returns it as stored.
func (s *projectService) CreateProject(ctx context.Context, input *ProjectInput) (*models.Project, error) {
	p, err := input.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("project created", zap.Uint("project_id", p.ID), zap.String("name", p.Name))
	return s.GetProject(ctx, p.ID)
}

// ReplaceProject overwrites every mutable field, applying create defaults to omitted ones.
func (s *projectService) ReplaceProject(ctx context.Context, id uint, input *ProjectInput) (*models.Project, error) {
	if id == 0 {
		return nil, appErr.Invalid("Project ID is required")
	}
	p, err := input.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.Replace(ctx, id, p); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("project updated", zap.Uint("project_id", id))
	return s.GetProject(ctx, id)
}

func (s *projectService) DeleteProject(ctx context.Context, id uint) error {
	if id == 0 {
		return appErr.Invalid("Project ID is required")
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("project deleted", zap.Uint("project_id", id))

	if s.sweeper == nil {
		return nil
	}
	// the delete already happened; a failed enqueue only leaves orphans behind
	if err := s.sweeper.EnqueueSweep(ctx, id); err != nil {
		logger.FromContext(ctx).Error("enqueue orphan sweep failed", zap.Uint("project_id", id), zap.Error(err))
	}
	return nil
}

func (s *projectService) Stats(ctx context.Context) (models.ProjectStats, error) {
	return s.projectRepo.Stats(ctx)
}
