package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"
  cors_origins:
    - "https://dash.example.com"

backends:
  - provider: "openai"
    model: "gpt-4o"
    api_key: "file-key"
    enabled: true
  - provider: "bedrock"
    model: "anthropic.claude-3-sonnet-20240229-v1:0"
    region: "us-west-2"
    enabled: true

advisor:
  timeout_seconds: 90
  max_tokens: 2048
  temperature: 0.5
  history_turns: 10

database:
  url: "postgres://localhost/ads_advisor?sslmode=disable"
  enabled: true

redis:
  addr: "localhost:6379"
  session_ttl_hours: 48
  enabled: true
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	// Test server config
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.Server.CORSOrigins)

	// Test backend chain order
	require.Len(t, cfg.Backends, 2)
	assert.Equal(t, "openai", cfg.Backends[0].Provider)
	assert.Equal(t, "gpt-4o", cfg.Backends[0].Model)
	assert.Equal(t, "file-key", cfg.Backends[0].APIKey)
	assert.Equal(t, "bedrock", cfg.Backends[1].Provider)
	assert.Equal(t, "us-west-2", cfg.Backends[1].Region)

	// Test advisor config
	assert.Equal(t, 90, cfg.Advisor.TimeoutSeconds)
	assert.Equal(t, 2048, cfg.Advisor.MaxTokens)
	assert.Equal(t, 0.5, cfg.Advisor.Temperature)
	assert.Equal(t, 10, cfg.Advisor.HistoryTurns)

	// Test store config
	assert.Equal(t, "postgres://localhost/ads_advisor?sslmode=disable", cfg.Database.URL)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 48, cfg.Redis.SessionTTLHours)
}

func TestLoadDefaults(t *testing.T) {
	// Create a minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
backends:
  - model: "gpt-4o-mini"
    api_key: "test-key"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	// Verify defaults are applied
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, []string{"https://*", "http://*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 120, cfg.Advisor.TimeoutSeconds)
	assert.Equal(t, 4000, cfg.Advisor.MaxTokens)
	assert.Equal(t, 0.7, cfg.Advisor.Temperature)
	assert.Equal(t, 20, cfg.Advisor.HistoryTurns)
	assert.Equal(t, 24, cfg.Redis.SessionTTLHours)

	// Entries without a provider default to openai
	require.Len(t, cfg.Backends, 1)
	assert.Equal(t, "openai", cfg.Backends[0].Provider)
}

func TestLoadFromEnv(t *testing.T) {
	// Create a config file with an openai entry missing its key
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
backends:
  - provider: "openai"
    model: "gpt-4o"
    enabled: true
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Set environment variables
	os.Setenv("OPENAI_API_KEY", "env-key")
	os.Setenv("OPENAI_BASE_URL", "https://env-url.com/v1")
	os.Setenv("DATABASE_URL", "postgres://env-host/advisor")
	os.Setenv("REDIS_ADDR", "env-host:6379")
	defer func() {
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("OPENAI_BASE_URL")
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("REDIS_ADDR")
	}()

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	// Environment variables should fill the missing credentials
	require.Len(t, cfg.Backends, 1)
	assert.Equal(t, "env-key", cfg.Backends[0].APIKey)
	assert.Equal(t, "https://env-url.com/v1", cfg.Backends[0].BaseURL)

	// Stores become enabled when their env vars are present
	assert.Equal(t, "postgres://env-host/advisor", cfg.Database.URL)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "env-host:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadFromEnvAppendsDefaultBackend(t *testing.T) {
	// An empty chain plus OPENAI_API_KEY yields a usable default entry
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("server:\n  port: 8081\n"), 0644)
	require.NoError(t, err)

	os.Setenv("OPENAI_API_KEY", "env-key")
	defer os.Unsetenv("OPENAI_API_KEY")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	require.Len(t, cfg.Backends, 1)
	assert.Equal(t, "openai", cfg.Backends[0].Provider)
	assert.Equal(t, "env-key", cfg.Backends[0].APIKey)
	assert.True(t, cfg.Backends[0].Enabled)
}

func TestLoadFromEnvDoesNotOverwriteFileKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
backends:
  - provider: "openai"
    api_key: "file-key"
    enabled: true
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	os.Setenv("OPENAI_API_KEY", "env-key")
	defer os.Unsetenv("OPENAI_API_KEY")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	require.Len(t, cfg.Backends, 1)
	assert.Equal(t, "file-key", cfg.Backends[0].APIKey)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestTimeout(t *testing.T) {
	cfg := AdvisorConfig{TimeoutSeconds: 45}
	assert.Equal(t, 45*time.Second, cfg.Timeout())
}

func TestSessionTTL(t *testing.T) {
	cfg := RedisConfig{SessionTTLHours: 2}
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL())
}
