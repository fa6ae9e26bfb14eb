package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/mail-inspector/internal/core"
	"github.com/mikey/mail-inspector/internal/di"
	"github.com/mikey/mail-inspector/internal/ports"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

// deps are the services a diagnostic read needs
type deps struct {
	dig.In

	Logger      *zap.Logger
	Tokens      core.TokenProvider
	Diagnostics core.MailDiagnostics
	Claims      core.ClaimsDecoder
	Reporter    ports.Reporter
}

func main() {
	flags, err := di.ParseFlags("graph-debug", os.Args[1:], true)
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := di.BuildContainer(ctx, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(func(d deps) error {
		defer d.Logger.Sync()
		return run(ctx, flags.Action, d)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", flags.Action, dig.RootCause(err))
		os.Exit(1)
	}
}

// run executes one diagnostic read. Failures are returned, never degraded.
func run(ctx context.Context, action string, d deps) error {
	d.Logger.Debug("Running diagnostic", zap.String("action", action))

	switch action {
	case "identity":
		identity, err := d.Diagnostics.Identity(ctx)
		if err != nil {
			return err
		}
		return d.Reporter.Identity(identity)
	case "folders":
		folders, err := d.Diagnostics.Folders(ctx)
		if err != nil {
			return err
		}
		return d.Reporter.Folders(folders)
	case "claims":
		token, err := d.Tokens.Token(ctx)
		if err != nil {
			return err
		}
		claims, err := d.Claims.Decode(token)
		if err != nil {
			return fmt.Errorf("access token is not a readable JWT: %w", err)
		}
		return d.Reporter.Claims(claims)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}
