package factory

import (
	"fmt"
	"io"

	"github.com/mikey/mail-inspector/internal/adapters/report"
	"github.com/mikey/mail-inspector/internal/config"
	"github.com/mikey/mail-inspector/internal/ports"
	"go.uber.org/zap"
)

// ReporterFactory creates reporters based on configuration
type ReporterFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewReporterFactory creates a new reporter factory
func NewReporterFactory(cfg *config.Config, logger *zap.Logger) *ReporterFactory {
	return &ReporterFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateReporter creates the reporter selected by output.format
func (f *ReporterFactory) CreateReporter(out io.Writer) (ports.Reporter, error) {
	format := f.cfg.GetOutput().Format

	switch format {
	case "text", "":
		return report.NewConsoleReporter(out, f.logger, f.cfg.GetBool("output.verbose")), nil
	case "json":
		return report.NewJSONReporter(out), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
