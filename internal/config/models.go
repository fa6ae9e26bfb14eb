package config

import (
	"strings"
	"time"
)

// reservedScopes are added implicitly by the identity provider and must
// never be requested explicitly.
var reservedScopes = map[string]struct{}{
	"openid":         {},
	"profile":        {},
	"offline_access": {},
}

// IdentityConfig represents the Entra ID application registration
type IdentityConfig struct {
	TenantID      string
	ClientID      string
	AuthorityHost string
	// Scopes is the configured scope list with the reserved scopes removed.
	Scopes []string
}

// GraphConfig represents the Microsoft Graph connection settings
type GraphConfig struct {
	BaseURL string
	Timeout time.Duration
	Folder  string
}

// TokenCacheConfig represents where the credential cache is persisted
type TokenCacheConfig struct {
	Type            string
	Key             string
	Path            string
	SQLitePath      string
	MySQLDSN        string
	KeyringService  string
	KeyringDir      string
	KeyringPassword string
}

// InspectionConfig represents the optional body inspection step
type InspectionConfig struct {
	Provider       string
	Threshold      float64
	TrustedDomains []string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OutputConfig represents how reports are presented
type OutputConfig struct {
	Format string
}

// FilterScopes drops the reserved scopes by exact match and keeps the
// order of everything else.
func FilterScopes(scopes []string) []string {
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if _, reserved := reservedScopes[s]; reserved {
			continue
		}
		out = append(out, s)
	}
	return out
}

// GetIdentity returns the identity configuration
func (c *Config) GetIdentity() IdentityConfig {
	return IdentityConfig{
		TenantID:      strings.TrimSpace(c.GetString("identity.tenant_id")),
		ClientID:      strings.TrimSpace(c.GetString("identity.client_id")),
		AuthorityHost: strings.TrimRight(c.GetString("identity.authority_host"), "/"),
		Scopes:        FilterScopes(strings.Fields(c.GetString("identity.scopes"))),
	}
}

// GetGraph returns the Graph configuration. An unparsable timeout falls
// back to 30 seconds.
func (c *Config) GetGraph() GraphConfig {
	timeout, err := c.GetDuration("graph.timeout")
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}
	return GraphConfig{
		BaseURL: strings.TrimRight(c.GetString("graph.base_url"), "/"),
		Timeout: timeout,
		Folder:  c.GetString("graph.folder"),
	}
}

// GetTokenCache returns the credential cache configuration
func (c *Config) GetTokenCache() TokenCacheConfig {
	return TokenCacheConfig{
		Type:            c.GetString("token_cache.type"),
		Key:             c.GetString("token_cache.key"),
		Path:            c.GetPath("token_cache.path"),
		SQLitePath:      c.GetPath("token_cache.sqlite_path"),
		MySQLDSN:        c.GetString("token_cache.mysql_dsn"),
		KeyringService:  c.GetString("token_cache.keyring_service"),
		KeyringDir:      c.GetPath("token_cache.keyring_dir"),
		KeyringPassword: c.GetString("token_cache.keyring_password"),
	}
}

// GetInspection returns the inspection configuration
func (c *Config) GetInspection() InspectionConfig {
	return InspectionConfig{
		Provider:       c.GetString("inspection.provider"),
		Threshold:      c.GetFloat64("inspection.threshold"),
		TrustedDomains: c.GetStringSlice("inspection.trusted_domains"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetOutput returns the output configuration
func (c *Config) GetOutput() OutputConfig {
	return OutputConfig{
		Format: c.GetString("output.format"),
	}
}
