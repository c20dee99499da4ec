//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/project-manager/engine/internal/models"
	"github.com/project-manager/engine/internal/repository"
	"github.com/project-manager/engine/pkg/database"
	"github.com/project-manager/engine/pkg/logger"
)

func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Set(zap.NewNop())
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("engine"),
		tcpostgres.WithUsername("engine"),
		tcpostgres.WithPassword("engine"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := database.Open(openCtx, database.Options{Driver: "postgres", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPostgres_ProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)
	projects := repository.NewProjectRepository(db)
	files := repository.NewFileRepository(db)
	subs := repository.NewSubProjectRepository(db)

	due, err := models.ParseDate("2025-06-30")
	require.NoError(t, err)
	p := newProject("Storefront", "Shop", "go")
	p.DueDate = &due
	require.NoError(t, projects.Create(ctx, p))
	require.NoError(t, projects.Create(ctx, newProject("Internal wiki")))

	require.NoError(t, subs.Create(ctx, &models.SubProject{ProjectID: p.ID, Name: "cart", Status: models.SubStatusCompleted}))
	require.NoError(t, subs.Create(ctx, &models.SubProject{ProjectID: p.ID, Name: "checkout", Status: models.SubStatusTodo}))
	require.NoError(t, files.Create(ctx, &models.ProjectFile{
		ProjectID: p.ID, Name: "logo.png", Size: 3, Type: "image/png", URL: "/api/uploads/k.png", StorageKey: "k.png",
	}))

	var got models.Project
	require.NoError(t, projects.GetDetailed(ctx, p.ID, &got))
	require.Equal(t, "2025-06-30", got.DueDate.String())
	require.Equal(t, models.StringList{"Shop", "go"}, got.Tags)
	require.Len(t, got.Files, 1)
	require.Len(t, got.SubProjects, 2)
	require.InDelta(t, 50.0, got.Progress, 0.001)

	// search is case-insensitive across name and tags
	list, err := projects.List(ctx, repository.ProjectFilter{Query: "shop"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, p.ID, list[0].ID)

	list, err = projects.List(ctx, repository.ProjectFilter{Query: "100%"})
	require.NoError(t, err)
	require.Empty(t, list)

	stats, err := projects.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.Total)
	require.EqualValues(t, 2, stats.Planning)

	require.NoError(t, projects.Delete(ctx, p.ID))

	// children survive their parent until swept
	left, err := subs.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, left, 2)

	removed, err := files.DeleteByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	n, err := subs.DeleteByProject(ctx, p.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}
