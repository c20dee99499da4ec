// Package queue publishes background tasks to Redis through asynq.
package queue

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/project-manager/engine/internal/queue/tasks"
	"github.com/project-manager/engine/internal/services"
	appErr "github.com/project-manager/engine/pkg/errors"
	"github.com/project-manager/engine/pkg/logger"
	"go.uber.org/zap"
)

// TaskEnqueuer is the subset of *asynq.Client used to publish tasks.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer schedules background work for the API process.
type Enqueuer struct {
	client TaskEnqueuer
}

var _ services.OrphanSweeper = (*Enqueuer)(nil)

func NewEnqueuer(client TaskEnqueuer) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueSweep schedules removal of everything still attached to a deleted project.
func (e *Enqueuer) EnqueueSweep(ctx context.Context, projectID uint) error {
	task, err := tasks.NewSweepTask(projectID)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, "build sweep task failed")
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "enqueue sweep task failed")
	}
	logger.FromContext(ctx).Info("sweep task enqueued", zap.Uint("project_id", projectID), zap.String("task_id", info.ID), zap.String("queue", info.Queue))
	return nil
}
