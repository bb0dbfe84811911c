package openai

import (
	"fmt"

	"github.com/mikey/loan-approval/internal/config"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Factory creates new instances of OpenAIClient
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for OpenAIClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// ClientConfig returns the go-openai configuration for the configured service
func ClientConfig(openaiCfg config.OpenAIConfig) openai.ClientConfig {
	if !openaiCfg.Azure {
		clientCfg := openai.DefaultConfig(openaiCfg.APIKey)
		if openaiCfg.Endpoint != "" {
			clientCfg.BaseURL = openaiCfg.Endpoint
		}
		return clientCfg
	}

	clientCfg := openai.DefaultAzureConfig(openaiCfg.APIKey, openaiCfg.Endpoint)
	if openaiCfg.APIVersion != "" {
		clientCfg.APIVersion = openaiCfg.APIVersion
	}
	return clientCfg
}

// CreateTextGenerator creates a new OpenAIClient
func (f *Factory) CreateTextGenerator() (core.TextGenerator, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if openaiCfg.Azure && openaiCfg.Endpoint == "" {
		return nil, fmt.Errorf("azure OpenAI endpoint is required")
	}

	client := openai.NewClientWithConfig(ClientConfig(openaiCfg))

	return NewOpenAIClient(
		client,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		f.logger,
		f.textProcessor,
	), nil
}
