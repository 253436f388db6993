// Command pharmacy-inventory-api serves fuzzy medicine-name search and
// inventory queries over a catalog that is reloaded on a schedule.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/pharmacy-inventory-api/catalogloader"
	"github.com/giygas/pharmacy-inventory-api/config"
	"github.com/giygas/pharmacy-inventory-api/data"
	"github.com/giygas/pharmacy-inventory-api/handlers"
	"github.com/giygas/pharmacy-inventory-api/health"
	"github.com/giygas/pharmacy-inventory-api/interfaces"
	"github.com/giygas/pharmacy-inventory-api/logging"
	"github.com/giygas/pharmacy-inventory-api/query"
	"github.com/giygas/pharmacy-inventory-api/scheduler"
	"github.com/giygas/pharmacy-inventory-api/server"
	"github.com/giygas/pharmacy-inventory-api/validation"
)

const shutdownTimeout = 30 * time.Second

// app holds the long-lived components so they can be stopped in order
type app struct {
	store     *data.DataContainer
	loader    interfaces.CatalogLoader
	scheduler *scheduler.Scheduler
	server    *server.Server
}

// newApp wires every component from cfg without starting anything
func newApp(cfg *config.Config) (*app, error) {
	loader, err := catalogloader.NewLoader(cfg.CatalogDriver, cfg.CatalogDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	store := data.NewDataContainer()
	store.SetServerStartTime(time.Now())

	sched := scheduler.NewScheduler(store, loader, scheduler.Options{
		Schedule:   cfg.ReloadSchedule,
		MaxRetries: cfg.ReloadMaxRetries,
		RetryDelay: cfg.ReloadRetryDelay,
	})

	handler := handlers.NewHTTPHandler(
		query.NewService(store, query.OptionsFromConfig(cfg)),
		store,
		validation.NewDataValidator(),
		health.NewHealthChecker(store, cfg.ReloadSchedule),
		sched,
	)

	return &app{
		store:     store,
		loader:    loader,
		scheduler: sched,
		server:    server.NewServer(cfg, handler),
	}, nil
}

// close stops the scheduler, then the server, then releases the catalog
func (a *app) close(ctx context.Context) error {
	a.scheduler.Stop()
	serverErr := a.server.Shutdown(ctx)
	loaderErr := a.loader.Close()
	return errors.Join(serverErr, loaderErr)
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.InitLoggerWithOptions(logging.Options{
		Dir:            cfg.LogDir,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	logging.Info("Configuration loaded",
		"env", cfg.Env.String(),
		"driver", cfg.CatalogDriver,
		"schedule", cfg.ReloadSchedule)

	a, err := newApp(cfg)
	if err != nil {
		logging.Error("Startup failed", "error", err)
		os.Exit(1)
	}

	// The initial load is required: serving an empty catalog is never useful.
	if err := a.scheduler.Start(); err != nil {
		logging.Error("Initial catalog load failed", "error", err)
		_ = a.loader.Close()
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.Start()
	}()

	select {
	case sig := <-quit:
		logging.Info("Signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			logging.Error("Server failed to start", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.close(ctx); err != nil {
		logging.Error("Shutdown finished with errors", "error", err)
		os.Exit(1)
	}
	logging.Info("Server exited gracefully")
}
