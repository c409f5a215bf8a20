package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/projecthubv3/projecthub-backend/config"
	"github.com/projecthubv3/projecthub-backend/internal/bootstrap"
	"github.com/projecthubv3/projecthub-backend/internal/logging"
	"github.com/projecthubv3/projecthub-backend/internal/projects/catalog"
	cronjob "github.com/projecthubv3/projecthub-backend/internal/projects/cron"
	"github.com/projecthubv3/projecthub-backend/internal/projects/repository"
	"github.com/projecthubv3/projecthub-backend/internal/projects/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	bootstrap.SetGinMode(cfg.App.Environment)

	scanner := catalog.NewScanner(cfg.Catalog.ProjectsDir, cfg.Catalog.ScanWorkers, logger.Named("catalog"))

	// Postgres and Redis are optional; the service scans the catalog directly without them.
	var (
		store service.Store
		cache service.Cache
	)
	db, err := bootstrap.OpenDB(ctx, &cfg.Database)
	if err != nil {
		logger.Warn("project index unavailable", zap.Error(err))
	} else if db != nil {
		defer db.Close()
		store = repository.NewProjectRepository(db)
	}

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		logger.Warn("snapshot cache unavailable", zap.Error(err))
	} else if rdb != nil {
		defer rdb.Close()
		cache = repository.NewSnapshotCache(rdb, cfg.Redis.CacheTTL)
	}

	svc := service.NewProjectService(scanner, store, cache, logger.Named("projects"))

	scheduler := cronjob.NewScheduler(svc, cfg.Catalog.RefreshCron, cfg.Catalog.RefreshTimeout, logger.Named("cron"))
	if err := scheduler.Start(); err != nil {
		return err
	}
	go scheduler.RunOnce()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "projecthub-api",
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		DB:          db,
		Redis:       rdb,
		Projects:    svc,
		Log:         logger.Named("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("projects_dir", scanner.Root()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
