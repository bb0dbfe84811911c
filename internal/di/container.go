package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/loan-approval/internal/adapters/web"
	"github.com/mikey/loan-approval/internal/config"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/factory"
	"github.com/mikey/loan-approval/internal/logging"
	"github.com/mikey/loan-approval/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register scoring cache. Nil when caching is disabled.
	if err := container.Provide(func(f *factory.CacheFactory, logger *zap.Logger) (factory.StoppableCache, error) {
		if !f.IsCacheEnabled() {
			logger.Info("Scoring cache disabled")
			return nil, nil
		}
		return f.CreateScoringCache()
	}); err != nil {
		return nil, err
	}

	// Register loan service
	if err := container.Provide(func(
		f *factory.ScoringFactory,
		cf *factory.CacheFactory,
		scorer core.ScoringClient,
		scoringCache factory.StoppableCache,
	) (*core.LoanService, error) {
		var c core.ScoringCache
		if scoringCache != nil {
			c = scoringCache
		}
		return f.CreateLoanService(scorer, c, cf)
	}); err != nil {
		return nil, err
	}

	// Register session provider
	if err := container.Provide(func(f *factory.SessionFactory) (factory.StoppableSessionProvider, error) {
		return f.CreateSessionProvider()
	}); err != nil {
		return nil, err
	}

	// Register draft forwarder
	if err := container.Provide(func(f *factory.OutboxFactory) (core.DraftForwarder, error) {
		return f.CreateDraftForwarder()
	}); err != nil {
		return nil, err
	}

	// Register web server
	if err := container.Provide(func(
		cfg *config.Config,
		logger *zap.Logger,
		service *core.LoanService,
		drafter *core.EmailDrafter,
		sessions factory.StoppableSessionProvider,
		forwarder core.DraftForwarder,
	) (*web.Server, error) {
		serverCfg, err := cfg.GetServer()
		if err != nil {
			return nil, err
		}
		sessionCfg, err := cfg.GetSession()
		if err != nil {
			return nil, err
		}
		return web.NewServer(service, drafter, sessions, forwarder, logger, serverCfg.ListenAddress, sessionCfg.CookieName)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCommon registers everything shared by the server and the CLI.
// The caller provides *config.Config and *zap.Logger.
func provideCommon(container *dig.Container) error {
	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewScoringFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewSessionFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewOutboxFactory); err != nil {
		return err
	}

	// Register text generator and drafter
	if err := container.Provide(func(f *factory.LLMFactory) (core.TextGenerator, error) {
		return f.CreateTextGenerator()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.LLMFactory, generator core.TextGenerator) (*core.EmailDrafter, error) {
		return f.CreateEmailDrafter(generator)
	}); err != nil {
		return err
	}

	// Register scoring client
	if err := container.Provide(func(f *factory.ScoringFactory) (core.ScoringClient, error) {
		return f.CreateScoringClient()
	}); err != nil {
		return err
	}

	return nil
}
