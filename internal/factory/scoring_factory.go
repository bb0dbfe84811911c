package factory

import (
	"fmt"

	"github.com/mikey/loan-approval/internal/adapters/datarobot"
	"github.com/mikey/loan-approval/internal/config"
	"github.com/mikey/loan-approval/internal/core"
	"go.uber.org/zap"
)

// ScoringFactory creates the scoring client and the loan service around it
type ScoringFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewScoringFactory creates a new scoring factory
func NewScoringFactory(cfg *config.Config, logger *zap.Logger) *ScoringFactory {
	return &ScoringFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateScoringClient creates the DataRobot batch scoring client
func (f *ScoringFactory) CreateScoringClient() (core.ScoringClient, error) {
	return datarobot.NewFactory(f.cfg, f.logger).CreateClient()
}

// CreateLoanService wires the scoring client and cache into a loan service
func (f *ScoringFactory) CreateLoanService(scorer core.ScoringClient, scoringCache core.ScoringCache, cacheFactory *CacheFactory) (*core.LoanService, error) {
	scoringCfg, err := f.cfg.GetScoring()
	if err != nil {
		return nil, fmt.Errorf("invalid scoring configuration: %w", err)
	}
	ttl, err := cacheFactory.GetCacheTTL()
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL: %w", err)
	}

	return core.NewLoanService(
		scorer,
		scoringCache,
		f.logger,
		cacheFactory.IsCacheEnabled(),
		ttl,
		scoringCfg.Timeout,
	), nil
}
