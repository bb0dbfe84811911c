package factory

import (
	"fmt"

	"github.com/mikey/loan-approval/internal/adapters/outbox"
	"github.com/mikey/loan-approval/internal/config"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/utils"
	"go.uber.org/zap"
)

// OutboxFactory creates the draft forwarder
type OutboxFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOutboxFactory creates a new outbox factory
func NewOutboxFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *OutboxFactory {
	return &OutboxFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateDraftForwarder returns the SMTP outbox, or nil when forwarding is disabled
func (f *OutboxFactory) CreateDraftForwarder() (core.DraftForwarder, error) {
	outboxCfg, err := f.cfg.GetOutbox()
	if err != nil {
		return nil, fmt.Errorf("invalid outbox configuration: %w", err)
	}
	if !outboxCfg.Enabled {
		return nil, nil
	}

	return outbox.NewSMTPOutbox(outbox.Settings{
		Address:     outboxCfg.Address,
		Username:    outboxCfg.Username,
		Password:    outboxCfg.Password,
		From:        outboxCfg.From,
		To:          outboxCfg.To,
		TLS:         outboxCfg.TLS,
		DialTimeout: outboxCfg.DialTimeout,
		Timeout:     outboxCfg.Timeout,
	}, f.logger, f.textProcessor), nil
}
