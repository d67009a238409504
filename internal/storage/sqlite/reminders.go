package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billreminder/internal/models"
)

const reminderColumns = `id, user_id, bill_id, remind_date, send_email, send_whatsapp, sent_at, created_at`

// applyReminderOps runs the planned reminder changes inside tx, in order.
// Inserts that collide on (bill_id, remind_date) are ignored.
func applyReminderOps(ctx context.Context, tx *sql.Tx, ops []models.ReminderOp, now time.Time) error {
	for _, op := range ops {
		switch op.Kind {
		case models.ReminderInsert:
			r := op.Reminder
			if r.ID == "" {
				r.ID = uuid.New().String()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO reminders (`+reminderColumns+`) VALUES (?, ?, ?, ?, ?, ?, NULL, ?)
				 ON CONFLICT (bill_id, remind_date) DO NOTHING`,
				r.ID, r.UserID, r.BillID, models.FormatDate(r.RemindDate), r.SendEmail, r.SendWhatsApp, formatTime(now),
			)
			if err != nil {
				return fmt.Errorf("failed to insert reminder: %w", err)
			}

		case models.ReminderDeleteUnsentFrom:
			_, err := tx.ExecContext(ctx,
				"DELETE FROM reminders WHERE bill_id = ? AND sent_at IS NULL AND remind_date >= ?",
				op.BillID, models.FormatDate(op.From),
			)
			if err != nil {
				return fmt.Errorf("failed to delete future reminders: %w", err)
			}

		case models.ReminderDeleteAllUnsent:
			_, err := tx.ExecContext(ctx,
				"DELETE FROM reminders WHERE bill_id = ? AND sent_at IS NULL",
				op.BillID,
			)
			if err != nil {
				return fmt.Errorf("failed to delete unsent reminders: %w", err)
			}

		default:
			return fmt.Errorf("unknown reminder op: %d", op.Kind)
		}
	}
	return nil
}

// ListReminders retrieves the reminders of one of the user's bills.
func (s *SQLiteStore) ListReminders(ctx context.Context, userID, billID string) ([]*models.Reminder, error) {
	reminders, err := s.queryReminders(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE bill_id = ? AND user_id = ? ORDER BY remind_date`,
		billID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// ListDueReminders retrieves all unsent reminders for the given day.
func (s *SQLiteStore) ListDueReminders(ctx context.Context, day time.Time) ([]*models.Reminder, error) {
	reminders, err := s.queryReminders(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE remind_date = ? AND sent_at IS NULL ORDER BY user_id, bill_id`,
		models.FormatDate(day),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return reminders, nil
}

// MarkRemindersSent sets sent_at on all given reminders in a single statement.
func (s *SQLiteStore) MarkRemindersSent(ctx context.Context, ids []string, sentAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, formatTime(sentAt))
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET sent_at = ? WHERE id IN (?`+repeatPlaceholder(len(ids)-1)+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to mark reminders sent: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryReminders(ctx context.Context, query string, args ...interface{}) ([]*models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		r := &models.Reminder{}
		var (
			remindDate, createdAt string
			sentAt                sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.BillID, &remindDate, &r.SendEmail, &r.SendWhatsApp,
			&sentAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		if r.RemindDate, err = models.ParseDate(remindDate); err != nil {
			return nil, err
		}
		if r.SentAt, err = parseNullTime(sentAt); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}

	return reminders, nil
}
