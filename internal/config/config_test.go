package config

import (
	"errors"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://./data/test.db")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
	if cfg.NotifyTimeout != 10*time.Second {
		t.Errorf("NotifyTimeout = %v, want 10s", cfg.NotifyTimeout)
	}
	if cfg.Email.Enabled() {
		t.Error("email channel should be disabled without credentials")
	}
	if cfg.WhatsApp.Enabled() {
		t.Error("WhatsApp channel should be disabled without credentials")
	}
	if cfg.WhatsApp.DefaultRegion != "BR" {
		t.Errorf("DefaultRegion = %s, want BR", cfg.WhatsApp.DefaultRegion)
	}
	if cfg.IsPostgres() {
		t.Error("sqlite URL detected as postgres")
	}
	if cfg.SQLitePath() != "./data/test.db" {
		t.Errorf("SQLitePath = %s", cfg.SQLitePath())
	}
}

func TestFromEnv_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := FromEnv()
	if !errors.Is(err, ErrMissingDatabaseURL) {
		t.Errorf("expected ErrMissingDatabaseURL, got %v", err)
	}
}

func TestFromEnv_Channels(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/bills")
	t.Setenv("EMAIL_API_KEY", "re_123")
	t.Setenv("EMAIL_FROM", "Bills <bills@example.com>")
	t.Setenv("WHATSAPP_ACCOUNT_SID", "AC123")
	t.Setenv("WHATSAPP_AUTH_TOKEN", "secret")
	t.Setenv("WHATSAPP_FROM", "whatsapp:+14155238886")
	t.Setenv("EMAIL_API_URL", "http://localhost:9999/")
	t.Setenv("TIMEZONE", "America/Sao_Paulo")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if !cfg.IsPostgres() {
		t.Error("expected postgres URL")
	}
	if !cfg.Email.Enabled() || !cfg.WhatsApp.Enabled() {
		t.Error("expected both channels enabled")
	}
	if cfg.Email.BaseURL != "http://localhost:9999" {
		t.Errorf("trailing slash not trimmed: %s", cfg.Email.BaseURL)
	}
	if cfg.Location.String() != "America/Sao_Paulo" {
		t.Errorf("Location = %s", cfg.Location)
	}
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "eighty"},
		{"NOTIFY_TIMEOUT", "soon"},
		{"TIMEZONE", "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "sqlite://x.db")
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestValidateServer(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateServer(); err == nil {
		t.Error("expected error without AUTH_JWT_SECRET")
	}
	cfg.JWTSecret = "s3cret"
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
