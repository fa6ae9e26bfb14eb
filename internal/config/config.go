package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingSetting is returned when a required identity setting is absent.
var ErrMissingSetting = errors.New("missing required setting")

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance.
// A .env file in the working directory is loaded first when present;
// real environment variables always take precedence over it.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mail-inspector/")
	v.AddConfigPath("$HOME/.mail-inspector")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration instance from an explicit config file
func NewFromFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// bindEnv wires environment variables. The identity settings keep their
// bare names (TENANT_ID, CLIENT_ID, SCOPES); everything else is prefixed.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("MAIL_INSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("identity.tenant_id", "TENANT_ID")
	_ = v.BindEnv("identity.client_id", "CLIENT_ID")
	_ = v.BindEnv("identity.scopes", "SCOPES")
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Identity defaults
	v.SetDefault("identity.authority_host", "https://login.microsoftonline.com")

	// Graph defaults
	v.SetDefault("graph.base_url", "https://graph.microsoft.com/v1.0")
	v.SetDefault("graph.timeout", "30s")
	v.SetDefault("graph.folder", "inbox")

	// Token cache defaults
	v.SetDefault("token_cache.type", "file")
	v.SetDefault("token_cache.key", "default")
	v.SetDefault("token_cache.path", "$HOME/.mail-inspector/token_cache.json")
	v.SetDefault("token_cache.sqlite_path", "$HOME/.mail-inspector/token_cache.db")
	v.SetDefault("token_cache.mysql_dsn", "")
	v.SetDefault("token_cache.keyring_service", "mail-inspector")
	v.SetDefault("token_cache.keyring_dir", "$HOME/.mail-inspector/keyring")
	v.SetDefault("token_cache.keyring_password", "")

	// Inspection defaults
	v.SetDefault("inspection.provider", "none")
	v.SetDefault("inspection.threshold", 0.7)
	v.SetDefault("inspection.trusted_domains", []string{})

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Output defaults
	v.SetDefault("output.format", "text")
	v.SetDefault("output.verbose", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
}

// Validate checks that the identity settings needed to sign in are present.
// Every missing variable is named in the returned error.
func (c *Config) Validate() error {
	id := c.GetIdentity()

	var missing []string
	if id.TenantID == "" {
		missing = append(missing, "TENANT_ID")
	}
	if id.ClientID == "" {
		missing = append(missing, "CLIENT_ID")
	}
	if len(id.Scopes) == 0 {
		missing = append(missing, "SCOPES")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}
	return nil
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetPath gets a filesystem path with $VAR references expanded
func (c *Config) GetPath(key string) string {
	return os.ExpandEnv(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
