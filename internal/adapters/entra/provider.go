// Package entra signs a user in to Microsoft Entra ID with the OAuth2
// device authorization grant, keeping tokens in a serializable Cache.
package entra

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/mikey/mail-inspector/internal/config"
	"github.com/mikey/mail-inspector/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// implicitScopes are always requested by the provider itself
var implicitScopes = []string{"openid", "profile", "offline_access"}

// Provider implements core.IdentityProvider on top of golang.org/x/oauth2
type Provider struct {
	clientID   string
	endpoint   oauth2.Endpoint
	cache      *Cache
	claims     core.ClaimsDecoder
	httpClient *http.Client
	logger     *zap.Logger
}

// pendingFlow is the provider state carried in core.DeviceFlow.Handle
type pendingFlow struct {
	resp   *oauth2.DeviceAuthResponse
	scopes []string
}

// NewProvider creates a provider for the tenant and client in id.
// httpClient may be nil to use http.DefaultClient.
func NewProvider(id config.IdentityConfig, cache *Cache, claims core.ClaimsDecoder, httpClient *http.Client, logger *zap.Logger) *Provider {
	authority := fmt.Sprintf("%s/%s/oauth2/v2.0", id.AuthorityHost, id.TenantID)
	return &Provider{
		clientID: id.ClientID,
		endpoint: oauth2.Endpoint{
			AuthURL:       authority + "/authorize",
			TokenURL:      authority + "/token",
			DeviceAuthURL: authority + "/devicecode",
			AuthStyle:     oauth2.AuthStyleInParams,
		},
		cache:      cache,
		claims:     claims,
		httpClient: httpClient,
		logger:     logger,
	}
}

// RequestScopes returns the scopes sent to the endpoint: the configured
// scopes without reserved entries, followed by the implicit ones.
func RequestScopes(scopes []string) []string {
	return append(config.FilterScopes(scopes), implicitScopes...)
}

func (p *Provider) oauthConfig(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: p.clientID,
		Endpoint: p.endpoint,
		Scopes:   RequestScopes(scopes),
	}
}

func (p *Provider) withClient(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// Accounts lists the accounts in the cache
func (p *Provider) Accounts(ctx context.Context) ([]core.Account, error) {
	return p.cache.accounts(), nil
}

// AcquireTokenSilent returns the cached token for account, refreshing it
// with the stored refresh token when it has expired.
func (p *Provider) AcquireTokenSilent(ctx context.Context, scopes []string, account *core.Account) (*core.AuthResult, error) {
	if account == nil || account.HomeAccountID == "" {
		return nil, core.ErrNoAccount
	}

	entry, ok := p.cache.lookup(account.HomeAccountID)
	if !ok || entry.Token == nil {
		return nil, fmt.Errorf("account %s has no cached token", account.HomeAccountID)
	}
	if !coversScopes(entry.Scopes, config.FilterScopes(scopes)) {
		return nil, fmt.Errorf("cached token for %s does not cover the requested scopes", account.Username)
	}

	ctx = p.withClient(ctx)
	tok, err := p.oauthConfig(scopes).TokenSource(ctx, entry.Token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if tok.AccessToken != entry.Token.AccessToken {
		p.logger.Debug("Refreshed cached token", zap.String("account", entry.Username))
		entry.Token = tok
		p.cache.upsert(entry)
	}

	return &core.AuthResult{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.Expiry,
		Account:     *account,
	}, nil
}

// InitiateDeviceFlow asks the device authorization endpoint for a user code
func (p *Provider) InitiateDeviceFlow(ctx context.Context, scopes []string) (*core.DeviceFlow, error) {
	resp, err := p.oauthConfig(scopes).DeviceAuth(p.withClient(ctx))
	if err != nil {
		return nil, fmt.Errorf("device authorization request failed: %w", err)
	}

	return &core.DeviceFlow{
		UserCode:        resp.UserCode,
		VerificationURI: resp.VerificationURI,
		Message: fmt.Sprintf("To sign in, use a web browser to open the page %s and enter the code %s to authenticate.",
			resp.VerificationURI, resp.UserCode),
		ExpiresAt: resp.Expiry,
		Handle:    &pendingFlow{resp: resp, scopes: scopes},
	}, nil
}

// AcquireTokenByDeviceFlow polls the token endpoint until the user signs
// in, declines or the code expires, then stores the account in the cache.
func (p *Provider) AcquireTokenByDeviceFlow(ctx context.Context, flow *core.DeviceFlow) (*core.AuthResult, error) {
	if flow == nil {
		return nil, errors.New("no device flow to complete")
	}
	pending, ok := flow.Handle.(*pendingFlow)
	if !ok {
		return nil, errors.New("device flow was not started by this provider")
	}

	tok, err := p.oauthConfig(pending.scopes).DeviceAccessToken(p.withClient(ctx), pending.resp)
	if err != nil {
		return nil, fmt.Errorf("device flow token request failed: %w", err)
	}

	account := p.accountFor(tok)
	p.cache.upsert(cachedAccount{
		HomeAccountID: account.HomeAccountID,
		Username:      account.Username,
		TenantID:      account.TenantID,
		Scopes:        config.FilterScopes(pending.scopes),
		Token:         tok,
	})

	return &core.AuthResult{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.Expiry,
		Account:     account,
	}, nil
}

// accountFor derives the account from the id_token, falling back to the
// access token claims and finally to a fixed id.
func (p *Provider) accountFor(tok *oauth2.Token) core.Account {
	candidates := []string{tok.AccessToken}
	if idToken, ok := tok.Extra("id_token").(string); ok && idToken != "" {
		candidates = append([]string{idToken}, candidates...)
	}

	for _, raw := range candidates {
		claims, err := p.claims.Decode(raw)
		if err != nil {
			continue
		}
		if account, ok := accountFromClaims(claims); ok {
			return account
		}
	}

	p.logger.Warn("Could not determine the signed-in account from token claims")
	return core.Account{HomeAccountID: "default", Username: "unknown"}
}

func accountFromClaims(claims map[string]any) (core.Account, bool) {
	str := func(key string) string {
		s, _ := claims[key].(string)
		return s
	}

	oid, tid := str("oid"), str("tid")
	if oid == "" {
		return core.Account{}, false
	}

	username := str("preferred_username")
	if username == "" {
		username = str("upn")
	}
	if username == "" {
		username = str("unique_name")
	}

	homeID := oid
	if tid != "" {
		homeID = oid + "." + tid
	}
	return core.Account{HomeAccountID: homeID, Username: username, TenantID: tid}, true
}

func coversScopes(granted, requested []string) bool {
	for _, s := range requested {
		if !slices.ContainsFunc(granted, func(g string) bool { return strings.EqualFold(g, s) }) {
			return false
		}
	}
	return true
}
