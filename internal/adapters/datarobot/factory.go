package datarobot

import (
	"fmt"
	"net/http"

	"github.com/mikey/loan-approval/internal/config"
	"go.uber.org/zap"
)

// Factory creates DataRobot scoring clients
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new DataRobot factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClient creates a new DataRobot client
func (f *Factory) CreateClient() (*Client, error) {
	scoringCfg, err := f.cfg.GetScoring()
	if err != nil {
		return nil, err
	}
	if scoringCfg.APIToken == "" {
		return nil, fmt.Errorf("scoring API token is required")
	}
	if scoringCfg.DeploymentID == "" {
		return nil, fmt.Errorf("scoring deployment ID is required")
	}

	return NewClient(
		&http.Client{Timeout: scoringCfg.Timeout},
		scoringCfg.Endpoint,
		scoringCfg.APIToken,
		scoringCfg.DeploymentID,
		scoringCfg.MaxExplanations,
		scoringCfg.PollInterval,
		f.logger,
	), nil
}
