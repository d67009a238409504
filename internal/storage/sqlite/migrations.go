package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Amounts are stored as decimal strings, dates as YYYY-MM-DD and
// timestamps as RFC 3339 strings in UTC.
const schema = `
CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    amount TEXT NOT NULL,
    due_date TEXT NOT NULL,
    paid INTEGER NOT NULL DEFAULT 0,
    paid_at TEXT,
    category TEXT NOT NULL DEFAULT '',
    payment_method TEXT NOT NULL DEFAULT '',
    discount TEXT,
    barcode TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reminders (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    bill_id TEXT NOT NULL,
    remind_date TEXT NOT NULL,
    send_email INTEGER NOT NULL DEFAULT 0,
    send_whatsapp INTEGER NOT NULL DEFAULT 0,
    sent_at TEXT,
    created_at TEXT NOT NULL,
    UNIQUE (bill_id, remind_date),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS user_settings (
    user_id TEXT PRIMARY KEY,
    notifications_enabled INTEGER NOT NULL DEFAULT 0,
    email_recipients TEXT NOT NULL DEFAULT '[]',
    whatsapp_recipients TEXT NOT NULL DEFAULT '[]',
    reminder_offsets TEXT NOT NULL DEFAULT '[]',
    upcoming_window_days INTEGER NOT NULL DEFAULT 7,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bills_user_due ON bills(user_id, due_date);
CREATE INDEX IF NOT EXISTS idx_reminders_bill_id ON reminders(bill_id);
CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(remind_date) WHERE sent_at IS NULL;
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
