package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/project-manager/engine/internal/repository"
	"github.com/project-manager/engine/internal/storage"
	appErr "github.com/project-manager/engine/pkg/errors"
	"github.com/project-manager/engine/pkg/logger"
	"go.uber.org/zap"
)

// TypeSweepOrphans removes the files and sub-projects of a deleted project.
const TypeSweepOrphans = "project:sweep_orphans"

// SweepPayload is the task payload for orphan sweeps.
type SweepPayload struct {
	ProjectID uint `json:"project_id"`
}

// NewSweepTask builds a sweep task for projectID.
func NewSweepTask(projectID uint) (*asynq.Task, error) {
	if projectID == 0 {
		return nil, fmt.Errorf("sweep task: project id is required")
	}
	pb, err := json.Marshal(SweepPayload{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSweepOrphans, pb, asynq.MaxRetry(5), asynq.Timeout(2*time.Minute)), nil
}

// SweepTaskHandler deletes rows and blobs that still reference a removed project.
type SweepTaskHandler struct {
	projectRepo repository.ProjectRepository
	fileRepo    repository.FileRepository
	subRepo     repository.SubProjectRepository
	blobs       storage.BlobStore
}

func NewSweepTaskHandler(projectRepo repository.ProjectRepository, fileRepo repository.FileRepository, subRepo repository.SubProjectRepository, blobs storage.BlobStore) *SweepTaskHandler {
	return &SweepTaskHandler{projectRepo: projectRepo, fileRepo: fileRepo, subRepo: subRepo, blobs: blobs}
}

func (h *SweepTaskHandler) HandleSweep(ctx context.Context, t *asynq.Task) error {
	var p SweepPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid sweep task payload", zap.Error(err))
		return fmt.Errorf("decode sweep payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.ProjectID == 0 {
		logger.L().Error("sweep task without project id")
		return fmt.Errorf("sweep payload without project id: %w", asynq.SkipRetry)
	}

	log := logger.L().With(zap.Uint("project_id", p.ProjectID))
	log.Info("handling sweep task")

	exists, err := h.projectRepo.Exists(ctx, p.ProjectID)
	if err != nil {
		log.Error("check project failed", zap.Error(err))
		return err
	}
	if exists {
		// nothing is orphaned while the project row is present
		log.Warn("project still exists, skipping sweep")
		return nil
	}

	subs, err := h.subRepo.DeleteByProject(ctx, p.ProjectID)
	if err != nil {
		log.Error("delete subprojects failed", zap.Error(err))
		return err
	}

	files, err := h.fileRepo.DeleteByProject(ctx, p.ProjectID)
	if err != nil {
		log.Error("delete files failed", zap.Error(err))
		return err
	}

	var blobErrs int
	for _, f := range files {
		if err := h.blobs.Delete(ctx, f.StorageKey); err != nil {
			blobErrs++
			log.Warn("remove blob failed", zap.String("key", f.StorageKey), zap.Error(err))
		}
	}

	log.Info("sweep completed",
		zap.Int64("subprojects", subs),
		zap.Int("files", len(files)),
		zap.Int("blob_errors", blobErrs),
	)
	if blobErrs > 0 {
		return appErr.New(appErr.CodeInternal, fmt.Sprintf("%d blobs could not be removed", blobErrs))
	}
	return nil
}
