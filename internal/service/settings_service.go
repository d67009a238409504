package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billreminder/internal/api"
	"github.com/mmynk/billreminder/internal/models"
	"github.com/mmynk/billreminder/internal/storage"
)

// maxOffsetDays bounds reminder offsets in either direction.
const maxOffsetDays = 3650

var _ api.SettingsServiceHandler = (*SettingsService)(nil)

// SettingsService implements the Connect SettingsService.
type SettingsService struct {
	store storage.Store
}

// NewSettingsService creates a new SettingsService with the given storage backend.
func NewSettingsService(store storage.Store) *SettingsService {
	return &SettingsService{store: store}
}

// GetSettings returns the caller's settings, or the defaults with
// exists=false when none are stored.
func (s *SettingsService) GetSettings(ctx context.Context, req *connect.Request[api.GetSettingsRequest]) (*connect.Response[api.GetSettingsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		slog.Error("GetSettings failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	if settings == nil {
		return connect.NewResponse(&api.GetSettingsResponse{
			Settings: toAPISettings(models.DefaultSettings(userID), false),
		}), nil
	}

	return connect.NewResponse(&api.GetSettingsResponse{
		Settings: toAPISettings(settings, true),
	}), nil
}

// UpdateSettings replaces the caller's settings. Existing reminders are not
// regenerated; new offsets and recipients apply to later bill writes.
func (s *SettingsService) UpdateSettings(ctx context.Context, req *connect.Request[api.UpdateSettingsRequest]) (*connect.Response[api.UpdateSettingsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("UpdateSettings request received",
		"user_id", userID,
		"enabled", req.Msg.NotificationsEnabled,
		"email_recipients", len(req.Msg.EmailRecipients),
		"whatsapp_recipients", len(req.Msg.WhatsAppRecipients),
	)

	emails, err := normalizeEmails(req.Msg.EmailRecipients)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if req.Msg.UpcomingWindowDays < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("upcoming_window_days must not be negative"))
	}
	for _, o := range req.Msg.ReminderOffsets {
		if o > maxOffsetDays || o < -maxOffsetDays {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("reminder offset %d out of range [-%d, %d]", o, maxOffsetDays, maxOffsetDays))
		}
	}

	settings := &models.UserSettings{
		UserID:               userID,
		NotificationsEnabled: req.Msg.NotificationsEnabled,
		EmailRecipients:      emails,
		WhatsAppRecipients:   dedupe(req.Msg.WhatsAppRecipients, strings.TrimSpace),
		ReminderOffsets:      req.Msg.ReminderOffsets,
		UpcomingWindowDays:   req.Msg.UpcomingWindowDays,
	}

	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		slog.Error("UpdateSettings failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.UpdateSettingsResponse{
		Settings: toAPISettings(settings, true),
	}), nil
}

// DeleteAccount removes every bill, reminder and setting the caller owns.
func (s *SettingsService) DeleteAccount(ctx context.Context, req *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteUserData(ctx, userID); err != nil {
		slog.Error("DeleteAccount failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Account data deleted", "user_id", userID)
	return connect.NewResponse(&api.DeleteAccountResponse{}), nil
}

// normalizeEmails parses each recipient, keeping only the bare address.
func normalizeEmails(in []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, raw := range in {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid email recipient %q", raw)
		}
		key := strings.ToLower(addr.Address)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, addr.Address)
	}
	return out, nil
}

// dedupe normalizes each entry, dropping empties and repeats while keeping order.
func dedupe(in []string, normalize func(string) string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = normalize(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
