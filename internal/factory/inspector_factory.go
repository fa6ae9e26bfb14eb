package factory

import (
	"context"
	"fmt"

	"github.com/mikey/mail-inspector/internal/adapters/bedrock"
	"github.com/mikey/mail-inspector/internal/adapters/gemini"
	"github.com/mikey/mail-inspector/internal/adapters/openai"
	"github.com/mikey/mail-inspector/internal/config"
	"github.com/mikey/mail-inspector/internal/core"
	"github.com/mikey/mail-inspector/internal/utils"
	"go.uber.org/zap"
)

// InspectorFactory creates the optional body inspector
type InspectorFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewInspectorFactory creates a new inspector factory
func NewInspectorFactory(cfg *config.Config, logger *zap.Logger) *InspectorFactory {
	return &InspectorFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: utils.NewTextProcessor(logger),
	}
}

// CreateInspector returns the inspector for inspection.provider, or nil
// when inspection is disabled
func (f *InspectorFactory) CreateInspector(ctx context.Context) (core.BodyInspector, error) {
	provider := f.cfg.GetInspection().Provider

	switch provider {
	case "", "none":
		f.logger.Debug("Body inspection disabled")
		return nil, nil
	case "bedrock":
		return bedrock.NewInspector(ctx, f.cfg.GetBedrock(), f.logger, f.textProcessor)
	case "gemini":
		geminiCfg := f.cfg.GetGemini()
		if geminiCfg.APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		return gemini.NewInspector(ctx, geminiCfg, f.logger, f.textProcessor)
	case "openai":
		openaiCfg := f.cfg.GetOpenAI()
		if openaiCfg.APIKey == "" {
			return nil, fmt.Errorf("openai API key is required")
		}
		return openai.NewInspector(openaiCfg, f.logger, f.textProcessor), nil
	default:
		return nil, fmt.Errorf("unsupported inspection provider: %s", provider)
	}
}
