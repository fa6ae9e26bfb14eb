// Package auth produces the bearer token for the mail API. It loads the
// persisted credential cache, tries silent acquisition for the first cached
// account, falls back to the device-code flow and persists the cache when
// it changed.
//
// The session token is kept for the process lifetime. It is not refreshed
// when it expires upstream; a long-running caller has to restart.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikey/mail-inspector/internal/core"
	"go.uber.org/zap"
)

var (
	// ErrCacheCorrupt is returned when a stored credential cache cannot be read
	ErrCacheCorrupt = errors.New("credential cache is corrupt")
	// ErrFlowNotStarted is returned when the provider refuses to issue a device code
	ErrFlowNotStarted = errors.New("device flow could not be started")
	// ErrNoTokenGranted is returned when the device flow ends without a token
	ErrNoTokenGranted = errors.New("device flow completed without granting a token")
)

// State is the position of a Manager in the acquisition sequence
type State int

const (
	Uninitialized State = iota
	CacheLoaded
	SilentHit
	DeviceFlowPending
	Authenticated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case CacheLoaded:
		return "cache_loaded"
	case SilentHit:
		return "silent_hit"
	case DeviceFlowPending:
		return "device_flow_pending"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Prompter shows the device-code instructions to the operator
type Prompter interface {
	PromptDeviceCode(flow *core.DeviceFlow)
}

// PrompterFunc adapts a function to Prompter
type PrompterFunc func(flow *core.DeviceFlow)

// PromptDeviceCode calls f(flow)
func (f PrompterFunc) PromptDeviceCode(flow *core.DeviceFlow) { f(flow) }

// Manager owns the session token
type Manager struct {
	provider core.IdentityProvider
	cache    core.CredentialCache
	store    core.CredentialStore
	prompter Prompter
	scopes   []string
	logger   *zap.Logger

	state State
	token string
}

// NewManager loads the credential cache from store into cache. A missing
// cache starts empty; an unreadable one is an error so stored credentials
// are never dropped silently.
func NewManager(
	ctx context.Context,
	provider core.IdentityProvider,
	cache core.CredentialCache,
	store core.CredentialStore,
	prompter Prompter,
	scopes []string,
	logger *zap.Logger,
) (*Manager, error) {
	m := &Manager{
		provider: provider,
		cache:    cache,
		store:    store,
		prompter: prompter,
		scopes:   scopes,
		logger:   logger,
	}

	logger.Debug("Requesting scopes", zap.Strings("scopes", scopes))

	data, err := store.Load(ctx)
	switch {
	case errors.Is(err, core.ErrCredentialsNotFound):
		logger.Debug("No credential cache stored, starting empty")
	case err != nil:
		return nil, fmt.Errorf("failed to load credential cache: %w", err)
	default:
		if err := cache.Deserialize(data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheCorrupt, err)
		}
		logger.Debug("Loaded credential cache", zap.Int("bytes", len(data)))
	}

	m.state = CacheLoaded
	return m, nil
}

// State returns the current acquisition state
func (m *Manager) State() State {
	return m.state
}

// Token returns the session token, acquiring it on first use
func (m *Manager) Token(ctx context.Context) (string, error) {
	if m.token != "" {
		return m.token, nil
	}

	result, err := m.acquireSilent(ctx)
	if err != nil {
		return "", err
	}
	if result == nil {
		result, err = m.acquireByDeviceFlow(ctx)
		if err != nil {
			return "", err
		}
	}

	m.token = result.AccessToken
	m.state = Authenticated
	m.logger.Info("Token acquired", zap.String("account", result.Account.Username))

	if err := m.persist(ctx); err != nil {
		return "", err
	}
	return m.token, nil
}

// acquireSilent returns nil, nil when silent acquisition is not possible
// and the device flow should be used.
func (m *Manager) acquireSilent(ctx context.Context) (*core.AuthResult, error) {
	accounts, err := m.provider.Accounts(ctx)
	if err != nil {
		m.logger.Warn("Failed to list cached accounts", zap.Error(err))
		return nil, nil
	}
	if len(accounts) == 0 {
		m.logger.Debug("No cached accounts, skipping silent acquisition")
		return nil, nil
	}

	account := accounts[0]
	if len(accounts) > 1 {
		m.logger.Debug("Several cached accounts, using the first",
			zap.Int("accounts", len(accounts)),
			zap.String("account", account.Username))
	}

	result, err := m.provider.AcquireTokenSilent(ctx, m.scopes, &account)
	if err != nil || result == nil || result.AccessToken == "" {
		m.logger.Info("Silent token acquisition failed, falling back to device flow",
			zap.String("account", account.Username),
			zap.Error(err))
		return nil, nil
	}

	m.state = SilentHit
	return result, nil
}

func (m *Manager) acquireByDeviceFlow(ctx context.Context) (*core.AuthResult, error) {
	flow, err := m.provider.InitiateDeviceFlow(ctx, m.scopes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFlowNotStarted, err)
	}
	if flow == nil || flow.UserCode == "" || flow.VerificationURI == "" {
		return nil, ErrFlowNotStarted
	}

	m.state = DeviceFlowPending
	m.prompter.PromptDeviceCode(flow)

	result, err := m.provider.AcquireTokenByDeviceFlow(ctx, flow)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoTokenGranted, err)
	}
	if result == nil || result.AccessToken == "" {
		return nil, ErrNoTokenGranted
	}
	return result, nil
}

func (m *Manager) persist(ctx context.Context) error {
	if !m.cache.HasStateChanged() {
		return nil
	}
	data, err := m.cache.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize credential cache: %w", err)
	}
	if err := m.store.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to persist credential cache: %w", err)
	}
	m.logger.Debug("Persisted credential cache", zap.Int("bytes", len(data)))
	return nil
}
