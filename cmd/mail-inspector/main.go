package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/mail-inspector/internal/auth"
	"github.com/mikey/mail-inspector/internal/core"
	"github.com/mikey/mail-inspector/internal/di"
	"github.com/mikey/mail-inspector/internal/logging"
	"github.com/mikey/mail-inspector/internal/ports"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags("mail-inspector", os.Args[1:], false)
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Build the dependency injection container
	container, err := di.BuildContainer(ctx, flags)
	if err != nil {
		fatal(flags, "Failed to build dependency container", err)
	}

	// Run the application
	if err := container.Invoke(func(
		logger *zap.Logger,
		service *core.IngestionService,
		reporter ports.Reporter,
		inspector core.BodyInspector,
	) error {
		return run(ctx, logger, service, reporter, inspector)
	}); err != nil {
		fatal(flags, "Application error", dig.RootCause(err))
	}
}

// run performs one ingestion pass and prints the result
func run(
	ctx context.Context,
	logger *zap.Logger,
	service *core.IngestionService,
	reporter ports.Reporter,
	inspector core.BodyInspector,
) error {
	defer logger.Sync()

	// Close any resources that need closing
	if closer, ok := inspector.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close inspector", zap.Error(err))
			}
		}()
	}

	report, err := service.Ingest(ctx)
	if errors.Is(err, core.ErrMailboxEmpty) {
		return reporter.NoMessages()
	}
	if err != nil {
		return err
	}

	return reporter.Report(report)
}

func fatal(flags *di.Flags, msg string, err error) {
	logger, logErr := logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}

	fields := []zap.Field{zap.Error(err)}
	switch {
	case errors.Is(err, auth.ErrFlowNotStarted):
		fields = append(fields, zap.String("hint", "check CLIENT_ID and that public client flows are enabled"))
	case errors.Is(err, auth.ErrCacheCorrupt):
		fields = append(fields, zap.String("hint", "remove the stored credential cache and sign in again"))
	}
	logger.Error(msg, fields...)
	logger.Sync()
	os.Exit(1)
}
