package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/mail-inspector/internal/config"
	"github.com/mikey/mail-inspector/internal/core"
	"github.com/mikey/mail-inspector/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// generator is the part of genai.GenerativeModel the inspector uses
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Inspector implements core.BodyInspector with Google Gemini
type Inspector struct {
	client        *genai.Client
	model         generator
	cfg           config.GeminiConfig
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewInspector creates a Gemini client and model for cfg
func NewInspector(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger, textProcessor *utils.TextProcessor) (*Inspector, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.ModelName)
	model.SetTemperature(cfg.Temperature)
	model.SetTopP(cfg.TopP)
	model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	model.SystemInstruction = genai.NewUserContent(genai.Text(utils.SystemPrompt))
	model.ResponseMIMEType = "application/json"

	return &Inspector{
		client:        client,
		model:         model,
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (i *Inspector) Close() error {
	if i.client != nil {
		return i.client.Close()
	}
	return nil
}

// Inspect asks the model for an assessment of req
func (i *Inspector) Inspect(ctx context.Context, req *core.InspectionRequest) (*core.InspectionResult, error) {
	body := i.textProcessor.Prepare(req.Body, i.cfg.MaxBodySize)

	resp, err := i.model.GenerateContent(ctx, genai.Text(utils.BuildInspectionPrompt(req, body)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	return utils.ParseInspectionResponse(text, i.cfg.ModelName, "")
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
