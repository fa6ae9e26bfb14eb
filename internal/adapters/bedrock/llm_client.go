package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/mail-inspector/internal/config"
	"github.com/mikey/mail-inspector/internal/core"
	"github.com/mikey/mail-inspector/internal/utils"
	"go.uber.org/zap"
)

const anthropicVersion = "bedrock-2023-05-31"

// invoker is the part of bedrockruntime.Client the inspector uses
type invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Inspector implements core.BodyInspector with Amazon Bedrock
type Inspector struct {
	client        invoker
	cfg           config.BedrockConfig
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewInspector loads the default AWS configuration for cfg.Region
func NewInspector(ctx context.Context, cfg config.BedrockConfig, logger *zap.Logger, textProcessor *utils.TextProcessor) (*Inspector, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &Inspector{
		client:        bedrockruntime.NewFromConfig(awsCfg),
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Inspect asks the model for an assessment of req
func (i *Inspector) Inspect(ctx context.Context, req *core.InspectionRequest) (*core.InspectionResult, error) {
	body := i.textProcessor.Prepare(req.Body, i.cfg.MaxBodySize)
	prompt := utils.BuildInspectionPrompt(req, body)

	payload, err := json.Marshal(i.requestBody(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := i.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(i.cfg.ModelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	text, err := i.responseText(resp.Body)
	if err != nil {
		return nil, err
	}

	return utils.ParseInspectionResponse(text, i.cfg.ModelID, "")
}

// requestBody shapes the prompt for the model family
func (i *Inspector) requestBody(prompt string) map[string]interface{} {
	switch {
	case i.isAnthropicModel():
		return map[string]interface{}{
			"anthropic_version": anthropicVersion,
			"max_tokens":        i.cfg.MaxTokens,
			"temperature":       i.cfg.Temperature,
			"top_p":             i.cfg.TopP,
			"system":            utils.SystemPrompt,
			"messages": []map[string]interface{}{
				{"role": "user", "content": prompt},
			},
		}
	case i.isAmazonTitanModel():
		return map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": i.cfg.MaxTokens,
				"temperature":   i.cfg.Temperature,
				"topP":          i.cfg.TopP,
			},
		}
	default:
		return map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  i.cfg.MaxTokens,
			"temperature": i.cfg.Temperature,
			"top_p":       i.cfg.TopP,
		}
	}
}

// responseText pulls the generated text out of a model-specific response
func (i *Inspector) responseText(body []byte) (string, error) {
	switch {
	case i.isAnthropicModel():
		var resp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Anthropic response: %w", err)
		}
		var sb strings.Builder
		for _, c := range resp.Content {
			if c.Type == "text" {
				sb.WriteString(c.Text)
			}
		}
		if sb.Len() == 0 {
			return "", fmt.Errorf("empty response from Anthropic model")
		}
		return sb.String(), nil

	case i.isAmazonTitanModel():
		var resp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(resp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return resp.Results[0].OutputText, nil

	default:
		var resp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		for _, s := range []string{resp.Output, resp.Text, resp.Response} {
			if s != "" {
				return s, nil
			}
		}
		return string(body), nil
	}
}

func (i *Inspector) isAnthropicModel() bool {
	return strings.HasPrefix(i.cfg.ModelID, "anthropic.") || strings.Contains(i.cfg.ModelID, ".anthropic.")
}

func (i *Inspector) isAmazonTitanModel() bool {
	return strings.HasPrefix(i.cfg.ModelID, "amazon.titan")
}
