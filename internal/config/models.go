package config

import (
	"fmt"
	"time"
)

// ScoringConfig represents the configuration for the scoring deployment
type ScoringConfig struct {
	Endpoint        string
	APIToken        string
	DeploymentID    string
	MaxExplanations int
	Timeout         time.Duration
	PollInterval    time.Duration
}

// LLMConfig represents the configuration for the text generation provider
type LLMConfig struct {
	Provider string
	Timeout  time.Duration
}

// OpenAIConfig represents the configuration for OpenAI or Azure OpenAI
type OpenAIConfig struct {
	APIKey      string
	Endpoint    string
	APIVersion  string
	Azure       bool
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// CacheConfig represents the configuration for the scoring cache
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	RedisAddress     string
	RedisPassword    string
	RedisDB          int
}

// SessionConfig represents the configuration for per-browser sessions
type SessionConfig struct {
	Type          string
	IdleTimeout   time.Duration
	CookieName    string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
}

// ServerConfig represents the configuration for the web server
type ServerConfig struct {
	ListenAddress   string
	ShutdownTimeout time.Duration
}

// OutboxConfig represents the configuration for forwarding drafts over SMTP
type OutboxConfig struct {
	Enabled  bool
	Address  string
	Username string
	Password string
	From        string
	To          []string
	TLS         string
	DialTimeout time.Duration
	Timeout     time.Duration
}

// GetScoring returns the scoring configuration
func (c *Config) GetScoring() (ScoringConfig, error) {
	timeout, err := c.GetDuration("scoring.timeout")
	if err != nil {
		return ScoringConfig{}, err
	}
	poll, err := c.GetDuration("scoring.poll_interval")
	if err != nil {
		return ScoringConfig{}, err
	}
	return ScoringConfig{
		Endpoint:        c.GetString("scoring.endpoint"),
		APIToken:        c.GetString("scoring.api_token"),
		DeploymentID:    c.GetString("scoring.deployment_id"),
		MaxExplanations: c.GetInt("scoring.max_explanations"),
		Timeout:         timeout,
		PollInterval:    poll,
	}, nil
}

// GetLLM returns the text generation provider configuration
func (c *Config) GetLLM() (LLMConfig, error) {
	timeout, err := c.GetDuration("llm.timeout")
	if err != nil {
		return LLMConfig{}, err
	}
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
		Timeout:  timeout,
	}, nil
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		Endpoint:    c.GetString("openai.endpoint"),
		APIVersion:  c.GetString("openai.api_version"),
		Azure:       c.GetBool("openai.azure"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
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
	}
}

// GetCache returns the scoring cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		RedisAddress:     c.GetString("cache.redis_address"),
		RedisPassword:    c.GetString("cache.redis_password"),
		RedisDB:          c.GetInt("cache.redis_db"),
	}, nil
}

// GetSession returns the session configuration
func (c *Config) GetSession() (SessionConfig, error) {
	idle, err := c.GetDuration("session.idle_timeout")
	if err != nil {
		return SessionConfig{}, err
	}
	return SessionConfig{
		Type:          c.GetString("session.type"),
		IdleTimeout:   idle,
		CookieName:    c.GetString("session.cookie_name"),
		RedisAddress:  c.GetString("session.redis_address"),
		RedisPassword: c.GetString("session.redis_password"),
		RedisDB:       c.GetInt("session.redis_db"),
	}, nil
}

// GetServer returns the web server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	shutdown, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		ShutdownTimeout: shutdown,
	}, nil
}

// GetOutbox returns the draft outbox configuration
func (c *Config) GetOutbox() (OutboxConfig, error) {
	dialTimeout, err := c.GetDuration("outbox.dial_timeout")
	if err != nil {
		return OutboxConfig{}, err
	}
	timeout, err := c.GetDuration("outbox.timeout")
	if err != nil {
		return OutboxConfig{}, err
	}
	cfg := OutboxConfig{
		Enabled:     c.GetBool("outbox.enabled"),
		Address:     c.GetString("outbox.address"),
		Username:    c.GetString("outbox.username"),
		Password:    c.GetString("outbox.password"),
		From:        c.GetString("outbox.from"),
		To:          c.GetStringSlice("outbox.to"),
		TLS:         c.GetString("outbox.tls"),
		DialTimeout: dialTimeout,
		Timeout:     timeout,
	}
	if cfg.Enabled && len(cfg.To) == 0 {
		return OutboxConfig{}, fmt.Errorf("outbox is enabled but outbox.to is empty")
	}
	switch cfg.TLS {
	case "none", "starttls", "tls":
	default:
		return OutboxConfig{}, fmt.Errorf("unsupported outbox.tls mode: %s", cfg.TLS)
	}
	return cfg, nil
}
