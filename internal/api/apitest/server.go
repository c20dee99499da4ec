// Package apitest assembles a complete API backed by a temporary SQLite
// database and upload directory, for handler and client tests.
package apitest

import (
	"context"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/project-manager/engine/internal/api"
	"github.com/project-manager/engine/internal/api/handlers"
	"github.com/project-manager/engine/internal/repository"
	"github.com/project-manager/engine/internal/services"
	"github.com/project-manager/engine/internal/storage"
	"github.com/project-manager/engine/internal/testutil"
	"github.com/project-manager/engine/pkg/database"
)

const BasePath = "/api"

type Options struct {
	MaxUploadBytes int64
	HMACSecret     []byte
	Sweeper        services.OrphanSweeper
}

type Env struct {
	Handler   http.Handler
	DB        *gorm.DB
	UploadDir string
}

func New(t testing.TB, opts Options) *Env {
	t.Helper()
	if opts.MaxUploadBytes == 0 {
		opts.MaxUploadBytes = 1 << 20
	}
	db := testutil.NewDB(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, BasePath+"/uploads")
	if err != nil {
		t.Fatalf("upload dir: %v", err)
	}

	projectRepo := repository.NewProjectRepository(db)
	projectSvc := services.NewProjectService(projectRepo, opts.Sweeper)
	fileSvc := services.NewFileService(projectRepo, repository.NewFileRepository(db), store)
	subSvc := services.NewSubProjectService(projectRepo, repository.NewSubProjectRepository(db))

	h := api.NewRouter(api.Dependencies{
		BasePath:           BasePath,
		ProjectsHandler:    handlers.NewProjectsHandler(projectSvc),
		FilesHandler:       handlers.NewFilesHandler(fileSvc, opts.MaxUploadBytes),
		SubProjectsHandler: handlers.NewSubProjectsHandler(subSvc),
		StatsHandler:       handlers.NewStatsHandler(projectSvc),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Check{
			"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
		}),
		UploadDir:  dir,
		HMACSecret: opts.HMACSecret,
		Metrics:    true,
	})
	return &Env{Handler: h, DB: db, UploadDir: dir}
}
