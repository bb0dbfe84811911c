package bedrock

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/loan-approval/internal/config"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Bedrock clients
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Bedrock factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateTextGenerator creates a new Bedrock client
func (f *Factory) CreateTextGenerator() (core.TextGenerator, error) {
	bedrockCfg := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bedrockCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewBedrockClient(
		bedrockruntime.NewFromConfig(awsCfg),
		bedrockCfg.ModelID,
		bedrockCfg.MaxTokens,
		f.logger,
		f.textProcessor,
	), nil
}
