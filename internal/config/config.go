package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the Immortal Stories server.
type Config struct {
	// Server settings
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	Env         string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Local story storage
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"file"` // file or redis
	DataDir        string `envconfig:"DATA_DIR" default:"./data"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`

	// GitHub OAuth (token exchange + Gist sync)
	GitHubClientID     string `envconfig:"GITHUB_CLIENT_ID" default:""`
	GitHubClientSecret string `envconfig:"GITHUB_CLIENT_SECRET" default:""`
	GitHubOAuthBaseURL string `envconfig:"GITHUB_OAUTH_BASE_URL" default:"https://github.com"`
	GitHubAPIBaseURL   string `envconfig:"GITHUB_API_BASE_URL" default:"https://api.github.com"`

	// LLM generation (OpenAI-compatible API)
	OpenAIAPIKey      string        `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIBaseURL     string        `envconfig:"OPENAI_BASE_URL" default:""`
	OpenAIModel       string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"60s"`

	// Supabase (optional cloud mirror)
	SupabaseURL     string `envconfig:"SUPABASE_URL" default:""`
	SupabaseAnonKey string `envconfig:"SUPABASE_ANON_KEY" default:""`

	// CORS
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.StorageBackend != "file" && cfg.StorageBackend != "redis" {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: must be \"file\" or \"redis\"", cfg.StorageBackend)
	}
	return &cfg, nil
}

// GetAllowedOrigins returns the configured CORS origins as a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// SupabaseEnabled reports whether the Supabase cloud mirror is configured.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}

// GenerationEnabled reports whether the LLM generation client is configured.
func (c *Config) GenerationEnabled() bool {
	return c.OpenAIAPIKey != ""
}
