package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/project-manager/engine/internal/models"
	"github.com/project-manager/engine/internal/repository"
	"github.com/project-manager/engine/internal/storage"
	"github.com/project-manager/engine/internal/testutil"
	"github.com/project-manager/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Set(zap.NewNop())
	os.Exit(m.Run())
}

type sweepFixture struct {
	projects repository.ProjectRepository
	files    repository.FileRepository
	subs     repository.SubProjectRepository
	store    *storage.LocalStore
	handler  *SweepTaskHandler
}

func newSweepFixture(t *testing.T) sweepFixture {
	t.Helper()
	db := testutil.NewDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	fx := sweepFixture{
		projects: repository.NewProjectRepository(db),
		files:    repository.NewFileRepository(db),
		subs:     repository.NewSubProjectRepository(db),
		store:    store,
	}
	fx.handler = NewSweepTaskHandler(fx.projects, fx.files, fx.subs, store)
	return fx
}

func (fx sweepFixture) addFile(t *testing.T, projectID uint, key string) {
	t.Helper()
	_, err := fx.store.Put(context.Background(), key, strings.NewReader("data"))
	require.NoError(t, err)
	require.NoError(t, fx.files.Create(context.Background(), &models.ProjectFile{
		ProjectID: projectID, Name: key, Size: 4, Type: "text/plain", URL: fx.store.URL(key), StorageKey: key,
	}))
}

func TestNewSweepTask(t *testing.T) {
	task, err := NewSweepTask(9)
	require.NoError(t, err)
	require.Equal(t, TypeSweepOrphans, task.Type())

	var p SweepPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	require.EqualValues(t, 9, p.ProjectID)

	_, err = NewSweepTask(0)
	require.Error(t, err)
}

func TestHandleSweep_RemovesOrphans(t *testing.T) {
	ctx := context.Background()
	fx := newSweepFixture(t)

	p := &models.Project{Name: "gone", Status: models.StatusPlanning, Priority: models.PriorityMedium, Type: models.TypeOther}
	require.NoError(t, fx.projects.Create(ctx, p))
	fx.addFile(t, p.ID, "one.txt")
	fx.addFile(t, p.ID, "two.txt")
	fx.addFile(t, p.ID+1, "other.txt")
	require.NoError(t, fx.subs.Create(ctx, &models.SubProject{ProjectID: p.ID, Name: "task", Status: models.SubStatusTodo}))
	require.NoError(t, fx.projects.Delete(ctx, p.ID))

	task, err := NewSweepTask(p.ID)
	require.NoError(t, err)
	require.NoError(t, fx.handler.HandleSweep(ctx, task))

	n, err := fx.files.CountByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Zero(t, n)
	subs, err := fx.subs.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Empty(t, subs)

	_, err = os.Stat(filepath.Join(fx.store.Dir(), "one.txt"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(fx.store.Dir(), "other.txt"))
	require.NoError(t, err)
}

func TestHandleSweep_SkipsLiveProject(t *testing.T) {
	ctx := context.Background()
	fx := newSweepFixture(t)

	p := &models.Project{Name: "alive", Status: models.StatusPlanning, Priority: models.PriorityMedium, Type: models.TypeOther}
	require.NoError(t, fx.projects.Create(ctx, p))
	fx.addFile(t, p.ID, "keep.txt")

	task, err := NewSweepTask(p.ID)
	require.NoError(t, err)
	require.NoError(t, fx.handler.HandleSweep(ctx, task))

	n, err := fx.files.CountByProject(ctx, p.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestHandleSweep_BadPayloadSkipsRetry(t *testing.T) {
	fx := newSweepFixture(t)

	err := fx.handler.HandleSweep(context.Background(), asynq.NewTask(TypeSweepOrphans, []byte("{")))
	require.True(t, errors.Is(err, asynq.SkipRetry))

	err = fx.handler.HandleSweep(context.Background(), asynq.NewTask(TypeSweepOrphans, []byte(`{"project_id":0}`)))
	require.True(t, errors.Is(err, asynq.SkipRetry))
}
