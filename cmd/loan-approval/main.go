package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/loan-approval/internal/adapters/web"
	"github.com/mikey/loan-approval/internal/config"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/di"
	"github.com/mikey/loan-approval/internal/factory"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

type deps struct {
	dig.In

	Config       *config.Config
	Logger       *zap.Logger
	Server       *web.Server
	Generator    core.TextGenerator
	ScoringCache factory.StoppableCache
	Sessions     factory.StoppableSessionProvider
}

// run is the main application function that gets all dependencies injected
func run(d deps) error {
	logger := d.Logger
	defer logger.Sync()

	serverCfg, err := d.Config.GetServer()
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Server.Start()
	}()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Shutting down...")
	case err := <-errCh:
		if err != nil {
			logger.Error("Web server failed", zap.Error(err))
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()
	if err := d.Server.Shutdown(ctx); err != nil {
		logger.Error("Failed to stop web server", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := d.Generator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}

	if d.ScoringCache != nil {
		d.ScoringCache.Stop()
	}
	d.Sessions.Stop()

	logger.Info("Shutdown complete")
	return nil
}
