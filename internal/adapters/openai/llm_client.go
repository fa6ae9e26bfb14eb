package openai

import (
	"context"
	"fmt"

	"github.com/mikey/mail-inspector/internal/config"
	"github.com/mikey/mail-inspector/internal/core"
	"github.com/mikey/mail-inspector/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Inspector implements core.BodyInspector with the OpenAI chat API
type Inspector struct {
	client        *openai.Client
	cfg           config.OpenAIConfig
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewInspector creates an inspector for cfg. An empty cfg.BaseURL uses the
// public OpenAI endpoint.
func NewInspector(cfg config.OpenAIConfig, logger *zap.Logger, textProcessor *utils.TextProcessor) *Inspector {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Inspector{
		client:        openai.NewClientWithConfig(clientCfg),
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Inspect asks the model for an assessment of req
func (i *Inspector) Inspect(ctx context.Context, req *core.InspectionRequest) (*core.InspectionResult, error) {
	body := i.textProcessor.Prepare(req.Body, i.cfg.MaxBodySize)

	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: i.cfg.ModelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: utils.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: utils.BuildInspectionPrompt(req, body)},
		},
		MaxTokens:   i.cfg.MaxTokens,
		Temperature: i.cfg.Temperature,
		TopP:        i.cfg.TopP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	i.logger.Debug("OpenAI inspection complete",
		zap.String("id", resp.ID),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return utils.ParseInspectionResponse(resp.Choices[0].Message.Content, i.cfg.ModelName, resp.ID)
}
