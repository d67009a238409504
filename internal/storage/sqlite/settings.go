package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mmynk/billreminder/internal/models"
)

// GetSettings retrieves a user's settings. Returns nil, nil when the user has
// no settings row.
func (s *SQLiteStore) GetSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	query := `
		SELECT user_id, notifications_enabled, email_recipients, whatsapp_recipients,
		       reminder_offsets, upcoming_window_days, updated_at
		FROM user_settings
		WHERE user_id = ?
	`

	settings := &models.UserSettings{}
	var emails, phones, offsets, updatedAt string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.NotificationsEnabled,
		&emails,
		&phones,
		&offsets,
		&settings.UpcomingWindowDays,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Settings not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if err := json.Unmarshal([]byte(emails), &settings.EmailRecipients); err != nil {
		return nil, fmt.Errorf("invalid email_recipients: %w", err)
	}
	if err := json.Unmarshal([]byte(phones), &settings.WhatsAppRecipients); err != nil {
		return nil, fmt.Errorf("invalid whatsapp_recipients: %w", err)
	}
	if err := json.Unmarshal([]byte(offsets), &settings.ReminderOffsets); err != nil {
		return nil, fmt.Errorf("invalid reminder_offsets: %w", err)
	}
	if settings.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return settings, nil
}

// UpsertSettings inserts or replaces a user's settings row.
func (s *SQLiteStore) UpsertSettings(ctx context.Context, settings *models.UserSettings) error {
	emails, err := marshalList(settings.EmailRecipients)
	if err != nil {
		return err
	}
	phones, err := marshalList(settings.WhatsAppRecipients)
	if err != nil {
		return err
	}
	offsets, err := json.Marshal(nonNilInts(settings.ReminderOffsets))
	if err != nil {
		return fmt.Errorf("failed to encode offsets: %w", err)
	}

	settings.UpdatedAt = s.now().UTC()

	query := `
		INSERT INTO user_settings (user_id, notifications_enabled, email_recipients, whatsapp_recipients,
		                           reminder_offsets, upcoming_window_days, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			notifications_enabled = excluded.notifications_enabled,
			email_recipients = excluded.email_recipients,
			whatsapp_recipients = excluded.whatsapp_recipients,
			reminder_offsets = excluded.reminder_offsets,
			upcoming_window_days = excluded.upcoming_window_days,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		settings.UserID,
		settings.NotificationsEnabled,
		emails,
		phones,
		string(offsets),
		settings.UpcomingWindowDays,
		formatTime(settings.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	return nil
}

func marshalList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}

func nonNilInts(list []int) []int {
	if list == nil {
		return []int{}
	}
	return list
}
