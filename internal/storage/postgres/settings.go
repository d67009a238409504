package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/billreminder/internal/models"
)

// GetSettings returns the user's settings, or nil and no error when absent.
func (s *PostgresStore) GetSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	query := `
		SELECT user_id, notifications_enabled, email_recipients, whatsapp_recipients,
		       reminder_offsets, upcoming_window_days, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	settings := &models.UserSettings{}
	var offsets []int32
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.NotificationsEnabled,
		&settings.EmailRecipients,
		&settings.WhatsAppRecipients,
		&offsets,
		&settings.UpcomingWindowDays,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	for _, o := range offsets {
		settings.ReminderOffsets = append(settings.ReminderOffsets, int(o))
	}
	return settings, nil
}

// UpsertSettings creates or replaces the user's settings row.
func (s *PostgresStore) UpsertSettings(ctx context.Context, settings *models.UserSettings) error {
	offsets := make([]int32, len(settings.ReminderOffsets))
	for i, o := range settings.ReminderOffsets {
		offsets[i] = int32(o)
	}
	settings.UpdatedAt = s.now().UTC()

	query := `
		INSERT INTO user_settings (user_id, notifications_enabled, email_recipients, whatsapp_recipients,
		                           reminder_offsets, upcoming_window_days, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			notifications_enabled = EXCLUDED.notifications_enabled,
			email_recipients = EXCLUDED.email_recipients,
			whatsapp_recipients = EXCLUDED.whatsapp_recipients,
			reminder_offsets = EXCLUDED.reminder_offsets,
			upcoming_window_days = EXCLUDED.upcoming_window_days,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		settings.UserID,
		settings.NotificationsEnabled,
		nonNil(settings.EmailRecipients),
		nonNil(settings.WhatsAppRecipients),
		offsets,
		settings.UpcomingWindowDays,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}

// nonNil avoids writing NULL into NOT NULL array columns.
func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
