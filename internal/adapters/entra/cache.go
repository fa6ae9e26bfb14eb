package entra

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mikey/mail-inspector/internal/core"
	"golang.org/x/oauth2"
)

const cacheVersion = 1

type cacheData struct {
	Version  int             `json:"version"`
	Accounts []cachedAccount `json:"accounts"`
}

type cachedAccount struct {
	HomeAccountID string        `json:"home_account_id"`
	Username      string        `json:"username"`
	TenantID      string        `json:"tenant_id"`
	Scopes        []string      `json:"scopes"`
	Token         *oauth2.Token `json:"token"`
}

// Cache is the credential cache behind Provider. It implements
// core.CredentialCache.
type Cache struct {
	mu      sync.Mutex
	data    cacheData
	changed bool
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{data: cacheData{Version: cacheVersion}}
}

// Deserialize replaces the cache content with data
func (c *Cache) Deserialize(data []byte) error {
	var d cacheData
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("failed to parse credential cache: %w", err)
	}
	if d.Version != cacheVersion {
		return fmt.Errorf("unsupported credential cache version %d", d.Version)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = d
	c.changed = false
	return nil
}

// Serialize returns the cache content and clears the changed flag
func (c *Cache) Serialize() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize credential cache: %w", err)
	}
	c.changed = false
	return data, nil
}

// HasStateChanged reports whether tokens were added or refreshed since the
// last Deserialize or Serialize
func (c *Cache) HasStateChanged() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

func (c *Cache) accounts() []core.Account {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]core.Account, 0, len(c.data.Accounts))
	for _, a := range c.data.Accounts {
		out = append(out, core.Account{
			HomeAccountID: a.HomeAccountID,
			Username:      a.Username,
			TenantID:      a.TenantID,
		})
	}
	return out
}

func (c *Cache) lookup(homeAccountID string) (cachedAccount, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range c.data.Accounts {
		if a.HomeAccountID == homeAccountID {
			return a, true
		}
	}
	return cachedAccount{}, false
}

func (c *Cache) upsert(entry cachedAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.changed = true
	for i, a := range c.data.Accounts {
		if a.HomeAccountID == entry.HomeAccountID {
			c.data.Accounts[i] = entry
			return
		}
	}
	c.data.Accounts = append(c.data.Accounts, entry)
}
