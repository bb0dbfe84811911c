package openai

import (
	"context"
	"fmt"

	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the TextGenerator interface using
// OpenAI or Azure OpenAI chat completions
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Generate sends the prompt as a single user turn and returns the first choice
func (c *OpenAIClient) Generate(ctx context.Context, req core.GenerationRequest) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	c.logger.Debug("Chat completion finished",
		zap.String("model", c.modelName),
		zap.String("id", resp.ID),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return c.textProcessor.SanitizeUTF8(resp.Choices[0].Message.Content), nil
}
