package gemini

import (
	"fmt"

	"github.com/mikey/loan-approval/internal/config"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/utils"
	"go.uber.org/zap"
)

// Factory creates new instances of GeminiClient
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for GeminiClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateTextGenerator creates a new GeminiClient
func (f *Factory) CreateTextGenerator() (core.TextGenerator, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	return NewGeminiClient(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		f.logger,
		f.textProcessor,
	)
}
