// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingDatabaseURL is returned when DATABASE_URL is unset.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")

// Config holds all configuration values.
type Config struct {
	// Server configuration
	Port int

	// DatabaseURL selects the store: postgres:// or postgresql:// for
	// Postgres, anything else (sqlite://path, file:path, plain path) for SQLite.
	DatabaseURL string

	// JWTSecret verifies access tokens issued by the auth provider.
	JWTSecret string

	// Location is the time zone "today" is computed in.
	Location *time.Location

	LogLevel  string
	LogFormat string

	Email    EmailConfig
	WhatsApp WhatsAppConfig

	// NotifyTimeout bounds each provider HTTP call.
	NotifyTimeout time.Duration

	// DispatchSchedule is a cron expression; empty disables the in-process scheduler.
	DispatchSchedule string

	// DispatchTokenHash is a bcrypt hash guarding the dispatch endpoint; empty leaves it open.
	DispatchTokenHash string

	// RedisURL enables the dispatch run lock when set.
	RedisURL string

	CurrencySymbol string
}

// EmailConfig configures the email provider. The channel is disabled unless
// both APIKey and From are set.
type EmailConfig struct {
	APIKey  string
	From    string
	BaseURL string
}

// Enabled reports whether the email channel is configured.
func (c EmailConfig) Enabled() bool {
	return c.APIKey != "" && c.From != ""
}

// WhatsAppConfig configures the messaging provider. The channel is disabled
// unless AccountSID, AuthToken and From are all set.
type WhatsAppConfig struct {
	AccountSID    string
	AuthToken     string
	From          string
	BaseURL       string
	DefaultRegion string
}

// Enabled reports whether the WhatsApp channel is configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

// Load reads .env (if present) and the environment. A missing DATABASE_URL
// is an error; every other setting has a default or is optional.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	notifyTimeout, err := time.ParseDuration(getEnvOrDefault("NOTIFY_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEOUT: %w", err)
	}

	loc, err := time.LoadLocation(getEnvOrDefault("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	return &Config{
		Port:        port,
		DatabaseURL: databaseURL,
		JWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		Location:    loc,
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "text"),
		Email: EmailConfig{
			APIKey:  os.Getenv("EMAIL_API_KEY"),
			From:    os.Getenv("EMAIL_FROM"),
			BaseURL: strings.TrimRight(getEnvOrDefault("EMAIL_API_URL", "https://api.resend.com"), "/"),
		},
		WhatsApp: WhatsAppConfig{
			AccountSID:    os.Getenv("WHATSAPP_ACCOUNT_SID"),
			AuthToken:     os.Getenv("WHATSAPP_AUTH_TOKEN"),
			From:          os.Getenv("WHATSAPP_FROM"),
			BaseURL:       strings.TrimRight(getEnvOrDefault("WHATSAPP_API_URL", "https://api.twilio.com"), "/"),
			DefaultRegion: strings.ToUpper(getEnvOrDefault("WHATSAPP_DEFAULT_REGION", "BR")),
		},
		NotifyTimeout:     notifyTimeout,
		DispatchSchedule:  strings.TrimSpace(os.Getenv("DISPATCH_SCHEDULE")),
		DispatchTokenHash: os.Getenv("DISPATCH_TOKEN_HASH"),
		RedisURL:          os.Getenv("REDIS_URL"),
		CurrencySymbol:    getEnvOrDefault("CURRENCY_SYMBOL", "R$"),
	}, nil
}

// ValidateServer checks settings only the API server needs.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET environment variable is required")
	}
	return nil
}

// IsPostgres reports whether DatabaseURL points at Postgres.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// SQLitePath returns the file path for a SQLite DatabaseURL.
func (c *Config) SQLitePath() string {
	path := strings.TrimPrefix(c.DatabaseURL, "sqlite://")
	return strings.TrimPrefix(path, "file:")
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
