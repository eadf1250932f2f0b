package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/api"
	"github.com/Harshitk-cp/contentmesh/internal/bootstrap"
	"github.com/Harshitk-cp/contentmesh/internal/buildconfig"
	"github.com/Harshitk-cp/contentmesh/internal/config"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := bootstrap.NewLogger(config.LogLevel())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	components, err := bootstrap.Build(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialize services", zap.Error(err))
	}
	defer components.Close()

	app := api.NewApp(components.Deps(), logger)

	if components.Expirer != nil {
		components.Expirer.Start()
	}
	if components.Watcher != nil {
		if err := components.Watcher.Start(ctx); err != nil {
			logger.Fatal("failed to watch documents directory", zap.Error(err))
		}
	}

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("version", buildconfig.Version()),
			zap.String("memory_backend", config.MemoryBackend()),
			zap.String("search_provider", config.SearchProvider()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	if components.Watcher != nil {
		components.Watcher.Stop()
	}
	if components.Expirer != nil {
		components.Expirer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
