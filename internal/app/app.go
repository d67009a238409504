// Package app wires configuration into the store and the dispatcher shared
// by the server and the one-shot dispatch command.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mmynk/billreminder/internal/config"
	"github.com/mmynk/billreminder/internal/dispatch"
	"github.com/mmynk/billreminder/internal/notify"
	"github.com/mmynk/billreminder/internal/storage"
	"github.com/mmynk/billreminder/internal/storage/postgres"
	"github.com/mmynk/billreminder/internal/storage/sqlite"
)

// OpenStore opens the store selected by cfg.DatabaseURL.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.IsPostgres() {
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		slog.Info("Storage initialized", "driver", "postgres")
		return store, nil
	}

	path := cfg.SQLitePath()
	store, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	slog.Info("Storage initialized", "driver", "sqlite", "database", path)
	return store, nil
}

// Dispatch bundles a dispatcher with the resources it owns.
type Dispatch struct {
	*dispatch.Dispatcher
	closers []func() error
}

// Close releases the run lock connection, if any.
func (d *Dispatch) Close() error {
	for _, c := range d.closers {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

// NewDispatch builds the dispatcher with whichever providers cfg enables.
func NewDispatch(ctx context.Context, cfg *config.Config, store storage.Store, logger *slog.Logger) (*Dispatch, error) {
	httpClient := &http.Client{Timeout: cfg.NotifyTimeout}
	opts := dispatch.Options{
		Logger:         logger,
		Location:       cfg.Location,
		CurrencySymbol: cfg.CurrencySymbol,
	}
	d := &Dispatch{}

	if cfg.Email.Enabled() {
		opts.Email = notify.NewEmailClient(cfg.Email.BaseURL, cfg.Email.APIKey, cfg.Email.From, httpClient)
	} else {
		logger.Warn("Email channel disabled: EMAIL_API_KEY or EMAIL_FROM not set")
	}

	if cfg.WhatsApp.Enabled() {
		opts.WhatsApp = notify.NewWhatsAppClient(
			cfg.WhatsApp.BaseURL,
			cfg.WhatsApp.AccountSID,
			cfg.WhatsApp.AuthToken,
			cfg.WhatsApp.From,
			cfg.WhatsApp.DefaultRegion,
			httpClient,
		)
	} else {
		logger.Warn("WhatsApp channel disabled: WHATSAPP_ACCOUNT_SID, WHATSAPP_AUTH_TOKEN or WHATSAPP_FROM not set")
	}

	if cfg.RedisURL != "" {
		locker, err := dispatch.NewRedisLockerFromURL(ctx, cfg.RedisURL, dispatch.DefaultLockTTL)
		if err != nil {
			return nil, err
		}
		opts.Locker = locker
		d.closers = append(d.closers, locker.Close)
		logger.Info("Dispatch run lock enabled")
	}

	d.Dispatcher = dispatch.New(store, opts)
	return d, nil
}
