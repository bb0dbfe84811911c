package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mikey/loan-approval/internal/config"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	cfg *config.Config,
	logger *zap.Logger,
	service *core.LoanService,
	drafter *core.EmailDrafter,
) error {
	defer logger.Sync()

	app, err := core.ValidateApplication(flags.RawApplication())
	if err != nil {
		return err
	}

	ctx := context.Background()
	session := core.NewMemorySession()

	fmt.Printf("Provider: %s\n", cfg.GetString("llm.provider"))
	startTime := time.Now()

	result, err := service.Submit(ctx, app, session)
	if err != nil {
		return fmt.Errorf("error processing application: %w", err)
	}

	var draft *core.EmailDraft
	if flags.Decision != "" {
		d, err := drafter.Draft(ctx, core.Decision(flags.Decision), app.ApplicantName, session)
		if err != nil {
			return err
		}
		draft = &d
	}

	writeReport(os.Stdout, core.RenderResult(app, result), draft)
	fmt.Printf("Processing time: %v\n", time.Since(startTime))
	return nil
}
