// Package testutil wires throwaway SQLite databases for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/project-manager/engine/internal/repository"
	"github.com/project-manager/engine/pkg/database"
	"github.com/project-manager/engine/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewDB returns a migrated SQLite database that lives for the duration of t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	if !loggerReady() {
		logger.Set(zap.NewNop())
	}

	db, err := database.Open(context.Background(), database.Options{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "engine.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func loggerReady() (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	logger.L()
	return true
}
