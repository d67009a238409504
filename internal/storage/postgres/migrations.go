package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS bills (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	amount NUMERIC(14, 2) NOT NULL,
	due_date DATE NOT NULL,
	paid BOOLEAN NOT NULL DEFAULT FALSE,
	paid_at TIMESTAMPTZ,
	category TEXT NOT NULL DEFAULT '',
	payment_method TEXT NOT NULL DEFAULT '',
	discount NUMERIC(14, 2),
	barcode TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS reminders (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	bill_id UUID NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
	remind_date DATE NOT NULL,
	send_email BOOLEAN NOT NULL DEFAULT FALSE,
	send_whatsapp BOOLEAN NOT NULL DEFAULT FALSE,
	sent_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (bill_id, remind_date)
);

CREATE TABLE IF NOT EXISTS user_settings (
	user_id TEXT PRIMARY KEY,
	notifications_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	email_recipients TEXT[] NOT NULL DEFAULT '{}',
	whatsapp_recipients TEXT[] NOT NULL DEFAULT '{}',
	reminder_offsets INTEGER[] NOT NULL DEFAULT '{}',
	upcoming_window_days INTEGER NOT NULL DEFAULT 7,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bills_user_due ON bills(user_id, due_date);
CREATE INDEX IF NOT EXISTS idx_reminders_bill_id ON reminders(bill_id);
CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(remind_date) WHERE sent_at IS NULL;
`

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	return nil
}
