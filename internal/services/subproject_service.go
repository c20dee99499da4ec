package services

import (
	"context"
	"strings"

	"github.com/project-manager/engine/internal/models"
	"github.com/project-manager/engine/internal/repository"
	appErr "github.com/project-manager/engine/pkg/errors"
	"github.com/project-manager/engine/pkg/logger"
	"go.uber.org/zap"
)

type SubProjectService interface {
	AddSubProject(ctx context.Context, input *SubProjectInput) (*models.SubProject, error)
	GetSubProject(ctx context.Context, id uint) (*models.SubProject, error)
	ListSubProjects(ctx context.Context, projectID uint) ([]models.SubProject, error)
	UpdateSubProject(ctx context.Context, id uint, patch *SubProjectPatch) (*models.SubProject, error)
	DeleteSubProject(ctx context.Context, id uint) error
}

type subProjectService struct {
	projects repository.ProjectRepository
	subs     repository.SubProjectRepository
}

func NewSubProjectService(projects repository.ProjectRepository, subs repository.SubProjectRepository) SubProjectService {
	return &subProjectService{projects: projects, subs: subs}
}

var _ SubProjectService = (*subProjectService)(nil)

func (s *subProjectService) AddSubProject(ctx context.Context, input *SubProjectInput) (*models.SubProject, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.ProjectID == 0 {
		return nil, appErr.Invalid("Project ID is required")
	}
	if err := validate.Struct(input); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "Missing required field: name")
	}
	due, err := parseOptionalDate(input.DueDate)
	if err != nil {
		return nil, err
	}
	ok, err := s.projects.Exists(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErr.NotFound("Project not found")
	}

	status := valueOr(input.Status, models.SubStatusTodo)
	if status == "" {
		status = models.SubStatusTodo
	}
	sp := &models.SubProject{
		ProjectID: input.ProjectID,
		Name:      input.Name,
		Status:    status,
		DueDate:   due,
		Assignee:  nonEmpty(input.Assignee),
	}
	if err := s.subs.Create(ctx, sp); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("subproject created", zap.Uint("subproject_id", sp.ID), zap.Uint("project_id", sp.ProjectID))
	return s.GetSubProject(ctx, sp.ID)
}

func (s *subProjectService) GetSubProject(ctx context.Context, id uint) (*models.SubProject, error) {
	if id == 0 {
		return nil, appErr.Invalid("Subproject ID is required")
	}
	var sp models.SubProject
	if err := s.subs.GetByID(ctx, id, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

func (s *subProjectService) ListSubProjects(ctx context.Context, projectID uint) ([]models.SubProject, error) {
	if projectID == 0 {
		return nil, appErr.Invalid("Project ID is required")
	}
	return s.subs.ListByProject(ctx, projectID)
}

func (s *subProjectService) UpdateSubProject(ctx context.Context, id uint, patch *SubProjectPatch) (*models.SubProject, error) {
	if id == 0 {
		return nil, appErr.Invalid("Subproject ID is required")
	}
	fields, err := patch.fields()
	if err != nil {
		return nil, err
	}
	if err := s.subs.Patch(ctx, id, fields); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("subproject updated", zap.Uint("subproject_id", id), zap.Int("fields", len(fields)))
	return s.GetSubProject(ctx, id)
}

func (s *subProjectService) DeleteSubProject(ctx context.Context, id uint) error {
	if id == 0 {
		return appErr.Invalid("Subproject ID is required")
	}
	if err := s.subs.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("subproject deleted", zap.Uint("subproject_id", id))
	return nil
}
