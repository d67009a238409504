package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/billreminder/internal/models"
)

const reminderColumns = `id::text, user_id, bill_id::text, remind_date, send_email, send_whatsapp, sent_at, created_at`

func applyReminderOps(ctx context.Context, tx pgx.Tx, billID string, ops []models.ReminderOp, now time.Time) error {
	for _, op := range ops {
		switch op.Kind {
		case models.ReminderInsert:
			r := op.Reminder
			if r.ID == "" {
				r.ID = uuid.New().String()
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO reminders (id, user_id, bill_id, remind_date, send_email, send_whatsapp, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (bill_id, remind_date) DO NOTHING`,
				r.ID, r.UserID, billID, models.Date(r.RemindDate), r.SendEmail, r.SendWhatsApp, now,
			)
			if err != nil {
				return fmt.Errorf("failed to insert reminder: %w", err)
			}

		case models.ReminderDeleteUnsentFrom:
			_, err := tx.Exec(ctx,
				"DELETE FROM reminders WHERE bill_id = $1 AND sent_at IS NULL AND remind_date >= $2",
				billID, models.Date(op.From),
			)
			if err != nil {
				return fmt.Errorf("failed to delete future reminders: %w", err)
			}

		case models.ReminderDeleteAllUnsent:
			_, err := tx.Exec(ctx, "DELETE FROM reminders WHERE bill_id = $1 AND sent_at IS NULL", billID)
			if err != nil {
				return fmt.Errorf("failed to delete unsent reminders: %w", err)
			}

		default:
			return fmt.Errorf("unknown reminder op: %d", op.Kind)
		}
	}
	return nil
}

// ListReminders returns the reminders of one of the user's bills.
func (s *PostgresStore) ListReminders(ctx context.Context, userID, billID string) ([]*models.Reminder, error) {
	if _, err := uuid.Parse(billID); err != nil {
		return nil, nil
	}
	reminders, err := s.queryReminders(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE bill_id = $1 AND user_id = $2 ORDER BY remind_date`,
		billID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// ListDueReminders returns every unsent reminder dated on day.
func (s *PostgresStore) ListDueReminders(ctx context.Context, day time.Time) ([]*models.Reminder, error) {
	reminders, err := s.queryReminders(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE remind_date = $1 AND sent_at IS NULL ORDER BY user_id, bill_id`,
		models.Date(day),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return reminders, nil
}

// MarkRemindersSent sets sent_at on the given reminders in one statement.
func (s *PostgresStore) MarkRemindersSent(ctx context.Context, ids []string, sentAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, "UPDATE reminders SET sent_at = $1 WHERE id::text = ANY($2)", sentAt, ids)
	if err != nil {
		return fmt.Errorf("failed to mark reminders sent: %w", err)
	}
	return nil
}

func (s *PostgresStore) queryReminders(ctx context.Context, query string, args ...any) ([]*models.Reminder, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		r := &models.Reminder{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.BillID, &r.RemindDate, &r.SendEmail, &r.SendWhatsApp,
			&r.SentAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		r.RemindDate = models.Date(r.RemindDate)
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}
	return reminders, nil
}
