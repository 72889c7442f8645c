// Package config loads the process configuration from environment variables.
//
// The Config struct is built once in main and handed to server.New; nothing
// below this package reads the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// minSecretLength mirrors auth.NewTokenService so a bad secret fails at load
// time with a config error instead of later during wiring.
const minSecretLength = 16

// Config contains server configuration parameters.
type Config struct {
	Port      int        `env:"PORT" envDefault:"5000"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text"`
	StaticDir string     `env:"STATIC_DIR"`

	Database Database `envPrefix:"DATABASE_"`
	JWT      JWT      `envPrefix:"JWT_"`
	LLM      LLM      `envPrefix:"LLM_"`
	CORS     CORS     `envPrefix:"CORS_"`
}

// Database contains the persistence connection string.
// postgres:// and postgresql:// URLs select PostgreSQL; anything else is
// handed to SQLite as a file path or DSN.
type Database struct {
	URL string `env:"URL" envDefault:"file:data/study-buddy.db"`
}

// IsPostgres reports whether URL points at a PostgreSQL server.
func (d Database) IsPostgres() bool {
	return strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://")
}

// JWT contains token signing parameters.
type JWT struct {
	Secret string `env:"SECRET,required"`
}

// LLM contains the chat-completions upstream parameters.
// An empty APIKey leaves the AI routes mounted but answering 503.
type LLM struct {
	APIKey  string        `env:"API_KEY"`
	BaseURL string        `env:"BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	Model   string        `env:"MODEL" envDefault:"llama-3.1-8b-instant"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Enabled reports whether an API key was provided.
func (l LLM) Enabled() bool {
	return l.APIKey != ""
}

// CORS contains cross-origin settings for the browser frontend.
type CORS struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load parses the process environment into a Config and validates it.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
// Used by tests and by callers that assemble settings themselves.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: PORT %d out of range", c.Port))
	}
	if len(c.JWT.Secret) < minSecretLength {
		errs = append(errs, fmt.Errorf("config: JWT_SECRET must be at least %d characters", minSecretLength))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("config: DATABASE_URL must not be empty"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: LOG_FORMAT %q must be text or json", c.LogFormat))
	}
	return errors.Join(errs...)
}
