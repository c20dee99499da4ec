package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/project-manager/engine/internal/api"
	"github.com/project-manager/engine/internal/api/handlers"
	mw "github.com/project-manager/engine/internal/api/middleware"
	"github.com/project-manager/engine/internal/queue"
	"github.com/project-manager/engine/internal/repository"
	"github.com/project-manager/engine/internal/services"
	"github.com/project-manager/engine/internal/storage"
	"github.com/project-manager/engine/pkg/config"
	"github.com/project-manager/engine/pkg/database"
	"github.com/project-manager/engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting project engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("base_path", cfg.APIBasePath),
		zap.String("db_driver", cfg.DatabaseDriver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Open(ctx, database.Options{
		Driver:  cfg.DatabaseDriver,
		DSN:     cfg.DatabaseURL,
		Verbose: cfg.LogLevel == "debug",
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if cfg.DatabaseDriver == "sqlite" {
		// local sqlite files have no separate migrate step
		if err := repository.AutoMigrate(db); err != nil {
			log.Fatal("sqlite migration failed", zap.Error(err))
		}
	}
	log.Info("database connected")

	basePath := "/" + strings.Trim(cfg.APIBasePath, "/")
	store, err := storage.NewLocalStore(cfg.UploadDir, strings.TrimRight(cfg.PublicBaseURL, "/")+basePath+"/uploads")
	if err != nil {
		log.Fatal("failed to prepare upload dir", zap.Error(err))
	}

	checks := map[string]handlers.Check{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}

	var sweeper services.OrphanSweeper
	if cfg.QueueEnabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

		if cfg.OrphanSweepEnabled {
			client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
			defer client.Close()
			sweeper = queue.NewEnqueuer(client)
			log.Info("orphan sweep enabled")
		}
	} else if cfg.OrphanSweepEnabled {
		log.Warn("ORPHAN_SWEEP_ENABLED is set but REDIS_ADDR is empty, sweep disabled")
	}

	projectRepo := repository.NewProjectRepository(db)
	projectSvc := services.NewProjectService(projectRepo, sweeper)
	fileSvc := services.NewFileService(projectRepo, repository.NewFileRepository(db), store)
	subSvc := services.NewSubProjectService(projectRepo, repository.NewSubProjectRepository(db))

	var limiter *mw.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = mw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go limiter.Run(ctx)
	}

	var secret []byte
	if cfg.JWTSecret != "" {
		secret = []byte(cfg.JWTSecret)
	} else if cfg.AppEnv == "production" {
		log.Warn("JWT_SECRET not set, API is unauthenticated")
	}

	router := api.NewRouter(api.Dependencies{
		BasePath:           basePath,
		ProjectsHandler:    handlers.NewProjectsHandler(projectSvc),
		FilesHandler:       handlers.NewFilesHandler(fileSvc, cfg.MaxUploadBytes),
		SubProjectsHandler: handlers.NewSubProjectsHandler(subSvc),
		StatsHandler:       handlers.NewStatsHandler(projectSvc),
		HealthHandler:      handlers.NewHealthHandler(checks),
		UploadDir:          store.Dir(),
		HMACSecret:         secret,
		RateLimiter:        limiter,
		Development:        cfg.AppEnv == "development",
		Metrics:            true,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
