package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Backends []BackendConfig `yaml:"backends"`
	Advisor  AdvisorConfig   `yaml:"advisor"`
	Database DatabaseConfig  `yaml:"database"`
	Redis    RedisConfig     `yaml:"redis"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int      `yaml:"port"`
	Host        string   `yaml:"host"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// BackendConfig holds one model backend in the fallback chain.
// Entries are tried in the order they appear in the file.
type BackendConfig struct {
	Provider string `yaml:"provider"` // "openai" or "bedrock"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Region   string `yaml:"region"`
	Enabled  bool   `yaml:"enabled"`
}

// AdvisorConfig holds advisory pipeline configuration
type AdvisorConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	HistoryTurns   int     `yaml:"history_turns"`
}

// Timeout returns the advisory wall-clock ceiling as a duration
func (c AdvisorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig holds Postgres configuration for the account store
type DatabaseConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// RedisConfig holds Redis configuration for the conversation store
type RedisConfig struct {
	Addr            string `yaml:"addr"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	SessionTTLHours int    `yaml:"session_ttl_hours"`
	Enabled         bool   `yaml:"enabled"`
}

// SessionTTL returns the idle-session expiry as a duration
func (c RedisConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"https://*", "http://*"}
	}
	if cfg.Advisor.TimeoutSeconds == 0 {
		cfg.Advisor.TimeoutSeconds = 120
	}
	if cfg.Advisor.MaxTokens == 0 {
		cfg.Advisor.MaxTokens = 4000
	}
	if cfg.Advisor.Temperature == 0 {
		cfg.Advisor.Temperature = 0.7
	}
	if cfg.Advisor.HistoryTurns == 0 {
		cfg.Advisor.HistoryTurns = 20
	}
	if cfg.Redis.SessionTTLHours == 0 {
		cfg.Redis.SessionTTLHours = 24
	}
	for i := range cfg.Backends {
		if cfg.Backends[i].Provider == "" {
			cfg.Backends[i].Provider = "openai"
		}
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Fill missing OpenAI credentials; add a default entry when the
	// chain is empty so a bare OPENAI_API_KEY is enough to run.
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		found := false
		for i := range cfg.Backends {
			if cfg.Backends[i].Provider == "openai" {
				found = true
				if cfg.Backends[i].APIKey == "" {
					cfg.Backends[i].APIKey = apiKey
				}
			}
		}
		if !found {
			cfg.Backends = append(cfg.Backends, BackendConfig{
				Provider: "openai",
				APIKey:   apiKey,
				Enabled:  true,
			})
		}
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		for i := range cfg.Backends {
			if cfg.Backends[i].Provider == "openai" && cfg.Backends[i].BaseURL == "" {
				cfg.Backends[i].BaseURL = baseURL
			}
		}
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		for i := range cfg.Backends {
			if cfg.Backends[i].Provider == "bedrock" && cfg.Backends[i].Region == "" {
				cfg.Backends[i].Region = region
			}
		}
	}

	// Database override (critical for ECS deployment where config.yaml has local defaults)
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
		if !cfg.Database.Enabled {
			cfg.Database.Enabled = true
		}
	}

	// Redis overrides
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		if !cfg.Redis.Enabled {
			cfg.Redis.Enabled = true
		}
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	return cfg, nil
}
