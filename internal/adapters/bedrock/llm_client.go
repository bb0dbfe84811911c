package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/utils"
	"go.uber.org/zap"
)

// ModelInvoker is the subset of the Bedrock runtime client used here
type ModelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockClient is an implementation of the TextGenerator interface using Amazon Bedrock
type BedrockClient struct {
	client        ModelInvoker
	modelID       string
	maxTokens     int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(
	client ModelInvoker,
	modelID string,
	maxTokens int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockClient {
	return &BedrockClient{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Generate invokes the model with a payload shaped for its family
func (c *BedrockClient) Generate(ctx context.Context, req core.GenerationRequest) (string, error) {
	payload, err := c.buildPayload(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	text, err := c.parseResponse(resp.Body)
	if err != nil {
		return "", err
	}

	c.logger.Debug("Bedrock generation finished",
		zap.String("model", c.modelID),
		zap.Int("length", len(text)))

	return c.textProcessor.SanitizeUTF8(strings.TrimSpace(text)), nil
}

func (c *BedrockClient) buildPayload(req core.GenerationRequest) ([]byte, error) {
	switch {
	case c.isAnthropicModel():
		return json.Marshal(map[string]interface{}{
			"prompt":               "\n\nHuman: " + req.Prompt + "\n\nAssistant:",
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          req.Temperature,
			"top_p":                req.TopP,
		})
	case c.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": req.Prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   req.Temperature,
				"topP":          req.TopP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      req.Prompt,
			"max_tokens":  c.maxTokens,
			"temperature": req.Temperature,
			"top_p":       req.TopP,
		})
	}
}

func (c *BedrockClient) parseResponse(body []byte) (string, error) {
	switch {
	case c.isAnthropicModel():
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		if claudeResp.Completion == "" {
			return "", fmt.Errorf("empty response from Claude model")
		}
		return claudeResp.Completion, nil
	case c.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	default:
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		switch {
		case genericResp.Output != "":
			return genericResp.Output, nil
		case genericResp.Text != "":
			return genericResp.Text, nil
		case genericResp.Response != "":
			return genericResp.Response, nil
		}
		return string(body), nil
	}
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
