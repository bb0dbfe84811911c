package factory

import (
	"fmt"

	"github.com/mikey/loan-approval/internal/adapters/bedrock"
	"github.com/mikey/loan-approval/internal/adapters/gemini"
	"github.com/mikey/loan-approval/internal/adapters/openai"
	"github.com/mikey/loan-approval/internal/config"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/utils"
	"go.uber.org/zap"
)

// SamplingParams are the generation settings of the selected provider
type SamplingParams struct {
	Temperature float32
	TopP        float32
}

// LLMFactory creates text generators
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateTextGenerator creates a text generator based on the configuration
func (f *LLMFactory) CreateTextGenerator() (core.TextGenerator, error) {
	llmConfig, err := f.cfg.GetLLM()
	if err != nil {
		return nil, fmt.Errorf("invalid llm configuration: %w", err)
	}

	switch llmConfig.Provider {
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateTextGenerator()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateTextGenerator()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateTextGenerator()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}

// SamplingParams returns temperature and top_p for the configured provider
func (f *LLMFactory) SamplingParams() (SamplingParams, error) {
	llmConfig, err := f.cfg.GetLLM()
	if err != nil {
		return SamplingParams{}, fmt.Errorf("invalid llm configuration: %w", err)
	}

	switch llmConfig.Provider {
	case "bedrock":
		c := f.cfg.GetBedrock()
		return SamplingParams{Temperature: c.Temperature, TopP: c.TopP}, nil
	case "gemini":
		c := f.cfg.GetGemini()
		return SamplingParams{Temperature: c.Temperature, TopP: c.TopP}, nil
	case "openai":
		c := f.cfg.GetOpenAI()
		return SamplingParams{Temperature: c.Temperature, TopP: c.TopP}, nil
	default:
		return SamplingParams{}, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}

// CreateEmailDrafter creates the email drafter around generator
func (f *LLMFactory) CreateEmailDrafter(generator core.TextGenerator) (*core.EmailDrafter, error) {
	llmConfig, err := f.cfg.GetLLM()
	if err != nil {
		return nil, fmt.Errorf("invalid llm configuration: %w", err)
	}
	params, err := f.SamplingParams()
	if err != nil {
		return nil, err
	}
	return core.NewEmailDrafter(generator, f.logger, llmConfig.Timeout, params.Temperature, params.TopP), nil
}
