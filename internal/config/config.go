package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// EnvDevelopment relaxes secret validation and disables the Secure
	// cookie attribute.
	EnvDevelopment = "development"
	// EnvProduction requires real secrets and OAuth credentials.
	EnvProduction = "production"
)

// Config aggregates runtime configuration for the authgate service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort    int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	DataStore   string `env:"DATA_STORE" envDefault:"postgres"`

	SecretKey  string        `env:"SECRET_KEY" envDefault:"local"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8760h"`

	FrontendURL           string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	FrontendOAuthErrorURL string `env:"FRONTEND_OAUTH_ERROR_URL" envDefault:"http://localhost:5173/oauth-error"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI" envDefault:"http://localhost:5173/api/v1/auth/google/callback"`

	DatabaseURL      string `env:"DATABASE_URL"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"local"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"local"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"local"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`
}

// Load reads configuration from environment variables and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.DataStore = strings.ToLower(strings.TrimSpace(cfg.DataStore))
	cfg.FrontendURL = strings.TrimSuffix(cfg.FrontendURL, "/")

	switch cfg.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return Config{}, fmt.Errorf("invalid ENVIRONMENT %q", cfg.Environment)
	}

	switch cfg.DataStore {
	case "memory", "postgres":
	default:
		return Config{}, fmt.Errorf("invalid DATA_STORE %q", cfg.DataStore)
	}

	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}

	if cfg.IsProduction() {
		if cfg.SecretKey == "" || cfg.SecretKey == "local" {
			return Config{}, fmt.Errorf("SECRET_KEY must be set in production")
		}
		if cfg.GoogleClientID == "" {
			return Config{}, fmt.Errorf("GOOGLE_CLIENT_ID is required in production")
		}
		if cfg.GoogleClientSecret == "" {
			return Config{}, fmt.Errorf("GOOGLE_CLIENT_SECRET is required in production")
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = cfg.postgresURL()
	}

	return cfg, nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// UseInMemoryStore returns true if the in-memory user directory should be used.
func (c Config) UseInMemoryStore() bool {
	return c.DataStore == "memory"
}

// postgresURL assembles a connection URL from the discrete POSTGRES_* parts.
func (c Config) postgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     net.JoinHostPort(c.PostgresHost, strconv.Itoa(c.PostgresPort)),
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
