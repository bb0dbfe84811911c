package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/loan-approval/")
	v.AddConfigPath("$HOME/.loan-approval")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("LOAN_APPROVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration from an explicit file path
func NewFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvPrefix("LOAN_APPROVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

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

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Scoring deployment
	v.SetDefault("scoring.endpoint", "https://app.datarobot.com/api/v2")
	v.SetDefault("scoring.api_token", "")
	v.SetDefault("scoring.deployment_id", "")
	v.SetDefault("scoring.max_explanations", 5)
	v.SetDefault("scoring.timeout", "30s")
	v.SetDefault("scoring.poll_interval", "1s")

	// Text generation
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.timeout", "60s")

	// Azure OpenAI / OpenAI
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.endpoint", "https://next-openai-lab.openai.azure.com/")
	v.SetDefault("openai.api_version", "2024-02-15-preview")
	v.SetDefault("openai.azure", true)
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.5)

	// Gemini
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.5)

	// Bedrock
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.5)

	// Scoring cache
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.cleanup_frequency", "1m")
	v.SetDefault("cache.sqlite_path", "/data/scoring_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/loan_approval")
	v.SetDefault("cache.redis_address", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	// Sessions
	v.SetDefault("session.type", "memory")
	v.SetDefault("session.idle_timeout", "30m")
	v.SetDefault("session.cookie_name", "loan_session")
	v.SetDefault("session.redis_address", "localhost:6379")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 1)

	// Web server
	v.SetDefault("server.listen_address", "0.0.0.0:8501")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Draft outbox
	v.SetDefault("outbox.enabled", false)
	v.SetDefault("outbox.address", "localhost:25")
	v.SetDefault("outbox.username", "")
	v.SetDefault("outbox.password", "")
	v.SetDefault("outbox.from", "loan-desk@localhost")
	v.SetDefault("outbox.to", []string{})
	v.SetDefault("outbox.tls", "none")
	v.SetDefault("outbox.dial_timeout", "10s")
	v.SetDefault("outbox.timeout", "30s")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
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
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
