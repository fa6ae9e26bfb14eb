package di

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-inspector/internal/adapters/entra"
	"github.com/mikey/mail-inspector/internal/adapters/graph"
	"github.com/mikey/mail-inspector/internal/adapters/jwtclaims"
	"github.com/mikey/mail-inspector/internal/adapters/report"
	"github.com/mikey/mail-inspector/internal/auth"
	"github.com/mikey/mail-inspector/internal/config"
	"github.com/mikey/mail-inspector/internal/core"
	"github.com/mikey/mail-inspector/internal/factory"
	"github.com/mikey/mail-inspector/internal/logging"
	"github.com/mikey/mail-inspector/internal/ports"
	"github.com/mikey/mail-inspector/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container.
// Providers run lazily, so graph-debug never builds the inspector.
func BuildContainer(ctx context.Context, flags *Flags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *Flags { return flags }); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(loadConfig); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(cfg *config.Config, flags *Flags) (*zap.Logger, error) {
		if flags.JSONLog {
			cfg.GetViper().Set("logging.format", "json")
		}
		return logging.InitLogger(cfg)
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewInspectorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewReporterFactory); err != nil {
		return nil, err
	}

	// Register identity provider and its cache
	if err := container.Provide(entra.NewCache); err != nil {
		return nil, err
	}
	if err := container.Provide(func() core.ClaimsDecoder { return jwtclaims.NewDecoder() }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, cache *entra.Cache, claims core.ClaimsDecoder, logger *zap.Logger) core.IdentityProvider {
		return entra.NewProvider(cfg.GetIdentity(), cache, claims, nil, logger)
	}); err != nil {
		return nil, err
	}

	// Register credential store
	if err := container.Provide(func(f *factory.StoreFactory) (core.CredentialStore, error) {
		return f.CreateCredentialStore()
	}); err != nil {
		return nil, err
	}

	// Register token manager
	if err := container.Provide(func(logger *zap.Logger) auth.Prompter {
		return report.NewDevicePrompter(os.Stderr, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		cfg *config.Config,
		provider core.IdentityProvider,
		cache *entra.Cache,
		store core.CredentialStore,
		prompter auth.Prompter,
		logger *zap.Logger,
	) (*auth.Manager, error) {
		return auth.NewManager(ctx, provider, cache, store, prompter, cfg.GetIdentity().Scopes, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(m *auth.Manager) core.TokenProvider { return m }); err != nil {
		return nil, err
	}

	// Register Graph client
	if err := container.Provide(func(cfg *config.Config, tokens core.TokenProvider, logger *zap.Logger) *graph.Client {
		return graph.NewClient(cfg.GetGraph(), tokens, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *graph.Client) core.MailReader { return c }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *graph.Client) core.MailDiagnostics { return c }); err != nil {
		return nil, err
	}

	// Register body inspection
	if err := container.Provide(func(f *factory.InspectorFactory) (core.BodyInspector, error) {
		return f.CreateInspector(ctx)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.SenderPolicy {
		return whitelist.NewChecker(cfg.GetInspection().TrustedDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register ingestion service
	if err := container.Provide(func(
		cfg *config.Config,
		tokens core.TokenProvider,
		mail core.MailReader,
		inspector core.BodyInspector,
		senders core.SenderPolicy,
		logger *zap.Logger,
	) *core.IngestionService {
		return core.NewIngestionService(tokens, mail, inspector, senders, cfg.GetInspection().Threshold, logger)
	}); err != nil {
		return nil, err
	}

	// Register reporter
	if err := container.Provide(func(f *factory.ReporterFactory) (ports.Reporter, error) {
		return f.CreateReporter(os.Stdout)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// loadConfig reads the configuration, applies flag overrides and checks
// the identity settings
func loadConfig(flags *Flags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flags.ConfigFile != "" {
		cfg, err = config.NewFromFile(flags.ConfigFile)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return nil, err
	}

	v := cfg.GetViper()
	if flags.Format != "" {
		v.Set("output.format", flags.Format)
	}
	if flags.Provider != "" {
		v.Set("inspection.provider", flags.Provider)
	}
	if domains := flags.trustedDomains(); domains != nil {
		v.Set("inspection.trusted_domains", domains)
	}
	if flags.TokenCache != "" {
		v.Set("token_cache.type", flags.TokenCache)
	}
	if flags.Verbose {
		v.Set("logging.level", "debug")
		v.Set("output.verbose", true)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
