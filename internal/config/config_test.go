package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	scoring, err := cfg.GetScoring()
	require.NoError(t, err)
	assert.Equal(t, "https://app.datarobot.com/api/v2", scoring.Endpoint)
	assert.Equal(t, 5, scoring.MaxExplanations)
	assert.Equal(t, 30*time.Second, scoring.Timeout)

	llm, err := cfg.GetLLM()
	require.NoError(t, err)
	assert.Equal(t, "openai", llm.Provider)
	assert.Equal(t, 60*time.Second, llm.Timeout)

	openai := cfg.GetOpenAI()
	assert.Equal(t, "gpt-4o-mini", openai.ModelName)
	assert.True(t, openai.Azure)
	assert.InDelta(t, 0.1, openai.Temperature, 1e-6)
	assert.InDelta(t, 0.5, openai.TopP, 1e-6)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "memory", cache.Type)
	assert.True(t, cache.Enabled)
	assert.Equal(t, 5*time.Minute, cache.TTL)

	session, err := cfg.GetSession()
	require.NoError(t, err)
	assert.Equal(t, "loan_session", session.CookieName)
	assert.Equal(t, 30*time.Minute, session.IdleTimeout)

	server, err := cfg.GetServer()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8501", server.ListenAddress)

	outbox, err := cfg.GetOutbox()
	require.NoError(t, err)
	assert.False(t, outbox.Enabled)
	assert.Equal(t, 10*time.Second, outbox.DialTimeout)
	assert.Equal(t, 30*time.Second, outbox.Timeout)
	assert.Equal(t, "none", outbox.TLS)
}

func TestOutboxTLSMode(t *testing.T) {
	v := NewEmptyViper()
	v.Set("outbox.tls", "starttls")
	outbox, err := NewFromViper(v).GetOutbox()
	require.NoError(t, err)
	assert.Equal(t, "starttls", outbox.TLS)

	v.Set("outbox.tls", "ssl3")
	_, err = NewFromViper(v).GetOutbox()
	assert.Error(t, err)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scoring:
  deployment_id: dep-1
  timeout: 10s
cache:
  type: redis
  ttl: 1m
outbox:
  enabled: true
  to:
    - review@example.com
`), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	scoring, err := cfg.GetScoring()
	require.NoError(t, err)
	assert.Equal(t, "dep-1", scoring.DeploymentID)
	assert.Equal(t, 10*time.Second, scoring.Timeout)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "redis", cache.Type)
	assert.Equal(t, time.Minute, cache.TTL)

	outbox, err := cfg.GetOutbox()
	require.NoError(t, err)
	assert.Equal(t, []string{"review@example.com"}, outbox.To)
}

func TestNewFromFile_Missing(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestInvalidDuration(t *testing.T) {
	v := NewEmptyViper()
	v.Set("scoring.timeout", "soon")

	_, err := NewFromViper(v).GetScoring()
	assert.Error(t, err)
}

func TestOutboxRequiresRecipients(t *testing.T) {
	v := NewEmptyViper()
	v.Set("outbox.enabled", true)

	_, err := NewFromViper(v).GetOutbox()
	assert.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("LOAN_APPROVAL_LLM_PROVIDER", "bedrock")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "bedrock", cfg.GetString("llm.provider"))
}
