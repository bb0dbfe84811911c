package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the TextGenerator interface using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	modelName     string
	maxTokens     int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Generate sends the prompt and joins the text parts of the first candidate
func (c *GeminiClient) Generate(ctx context.Context, req core.GenerationRequest) (string, error) {
	// A model handle per call keeps sampling settings per request
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(req.Temperature)
	model.SetTopP(req.TopP)
	model.SetMaxOutputTokens(int32(c.maxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	c.logger.Debug("Gemini generation finished",
		zap.String("model", c.modelName),
		zap.Int("length", b.Len()))

	return c.textProcessor.SanitizeUTF8(b.String()), nil
}
