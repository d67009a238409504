// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billreminder/internal/models"
	"github.com/mmynk/billreminder/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go in the DSN so that every pooled connection gets them.
	// _txlock=immediate takes the write lock at BEGIN, which ModifyBill
	// relies on for its read-then-write.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const billColumns = `id, user_id, title, amount, due_date, paid, paid_at, category,
	payment_method, discount, barcode, created_at, updated_at`

// CreateBill persists a new bill and applies the reminder ops atomically.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill, ops []models.ReminderOp) error {
	return s.CreateBills(ctx, []storage.BillWrite{{Bill: bill, Ops: ops}})
}

// CreateBills persists every bill and its reminder ops in one transaction.
func (s *SQLiteStore) CreateBills(ctx context.Context, writes []storage.BillWrite) error {
	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, w := range writes {
		bill := w.Bill
		if bill.ID == "" {
			bill.ID = uuid.New().String()
		}
		bill.CreatedAt = now
		bill.UpdatedAt = now

		_, err = tx.ExecContext(ctx,
			`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			bill.ID, bill.UserID, bill.Title, bill.Amount.String(), models.FormatDate(bill.DueDate),
			bill.Paid, nullTime(bill.PaidAt), bill.Category, bill.PaymentMethod,
			nullDecimal(bill.Discount), bill.Barcode, formatTime(bill.CreatedAt), formatTime(bill.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill %q: %w", bill.Title, err)
		}

		if err := applyReminderOps(ctx, tx, withBillID(w.Ops, bill.ID), now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ModifyBill reads, changes and writes one of the user's bills in a single
// transaction. Transactions start with BEGIN IMMEDIATE (see New), so the
// row cannot change between the read and the write.
func (s *SQLiteStore) ModifyBill(ctx context.Context, userID, billID string, change storage.BillChange) (*models.Bill, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	prev, err := scanBill(tx.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ? AND user_id = ?`,
		billID, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	next, ops, err := change(prev)
	if err != nil {
		return nil, err
	}
	next.ID, next.UserID, next.CreatedAt = prev.ID, prev.UserID, prev.CreatedAt
	next.UpdatedAt = s.now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE bills SET title = ?, amount = ?, due_date = ?, paid = ?, paid_at = ?, category = ?,
		 payment_method = ?, discount = ?, barcode = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		next.Title, next.Amount.String(), models.FormatDate(next.DueDate), next.Paid, nullTime(next.PaidAt),
		next.Category, next.PaymentMethod, nullDecimal(next.Discount), next.Barcode, formatTime(next.UpdatedAt),
		next.ID, next.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update bill: %w", err)
	}

	if err := applyReminderOps(ctx, tx, withBillID(ops, next.ID), next.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return next, nil
}

// GetBill retrieves one of the user's bills by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, userID, billID string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ? AND user_id = ?`,
		billID, userID,
	)
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// ListBills returns the user's bills matching the filter, ordered by due date.
// Owner, category and date range are filtered in SQL; status in Go.
func (s *SQLiteStore) ListBills(ctx context.Context, userID string, filter models.BillFilter) ([]*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE user_id = ?`
	args := []interface{}{userID}

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.From != nil {
		query += ` AND due_date >= ?`
		args = append(args, models.FormatDate(*filter.From))
	}
	if filter.To != nil {
		query += ` AND due_date <= ?`
		args = append(args, models.FormatDate(*filter.To))
	}
	query += ` ORDER BY due_date, created_at`

	bills, err := s.queryBills(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	matched := bills[:0]
	for _, b := range bills {
		if filter.Matches(b) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

// GetBillsByIDs retrieves multiple bills by their IDs.
// Bills that don't exist are omitted from the result.
func (s *SQLiteStore) GetBillsByIDs(ctx context.Context, ids []string) ([]*models.Bill, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + billColumns + ` FROM bills WHERE id IN (?` + repeatPlaceholder(len(ids)-1) + `) ORDER BY due_date, title`
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	bills, err := s.queryBills(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get bills by IDs: %w", err)
	}
	return bills, nil
}

// DeleteBill removes one of the user's bills together with its reminders.
func (s *SQLiteStore) DeleteBill(ctx context.Context, userID, billID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM reminders WHERE bill_id = ? AND user_id = ?", billID, userID,
	); err != nil {
		return fmt.Errorf("failed to delete reminders: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM bills WHERE id = ? AND user_id = ?", billID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteUserData removes all rows owned by the user.
func (s *SQLiteStore) DeleteUserData(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM reminders WHERE user_id = ?",
		"DELETE FROM bills WHERE user_id = ?",
		"DELETE FROM user_settings WHERE user_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return fmt.Errorf("failed to delete user data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryBills(ctx context.Context, query string, args ...interface{}) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(row scanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var (
		amount, dueDate      string
		paidAt               sql.NullString
		discount             decimal.NullDecimal
		createdAt, updatedAt string
	)
	if err := row.Scan(&bill.ID, &bill.UserID, &bill.Title, &amount, &dueDate, &bill.Paid, &paidAt,
		&bill.Category, &bill.PaymentMethod, &discount, &bill.Barcode, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if bill.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if bill.DueDate, err = models.ParseDate(dueDate); err != nil {
		return nil, err
	}
	if bill.PaidAt, err = parseNullTime(paidAt); err != nil {
		return nil, err
	}
	if discount.Valid {
		d := discount.Decimal
		bill.Discount = &d
	}
	if bill.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if bill.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return bill, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

// withBillID fills in the bill ID on ops planned before the ID was assigned.
func withBillID(ops []models.ReminderOp, billID string) []models.ReminderOp {
	for i := range ops {
		ops[i].BillID = billID
		if ops[i].Kind == models.ReminderInsert {
			ops[i].Reminder.BillID = billID
		}
	}
	return ops
}

// repeatPlaceholder returns a string of ", ?" repeated n times.
// Used for building IN clauses with multiple placeholders.
func repeatPlaceholder(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(", ?", n)
}
