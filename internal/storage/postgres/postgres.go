// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billreminder/internal/models"
	"github.com/mmynk/billreminder/internal/storage"
)

var _ storage.Store = (*PostgresStore)(nil)

// PostgresStore implements storage.Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// New connects to databaseURL, verifies the connection and runs migrations.
func New(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool, now: time.Now}, nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const billColumns = `id::text, user_id, title, amount::text, due_date, paid, paid_at, category,
	payment_method, discount::text, barcode, created_at, updated_at`

// CreateBill inserts a bill and applies the reminder ops in one transaction.
func (s *PostgresStore) CreateBill(ctx context.Context, bill *models.Bill, ops []models.ReminderOp) error {
	return s.CreateBills(ctx, []storage.BillWrite{{Bill: bill, Ops: ops}})
}

// CreateBills inserts every bill and its reminder ops in one transaction.
func (s *PostgresStore) CreateBills(ctx context.Context, writes []storage.BillWrite) error {
	now := s.now().UTC()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, w := range writes {
		bill := w.Bill
		if bill.ID == "" {
			bill.ID = uuid.New().String()
		}
		bill.CreatedAt = now
		bill.UpdatedAt = now

		_, err = tx.Exec(ctx, `
			INSERT INTO bills (id, user_id, title, amount, due_date, paid, paid_at, category,
			                   payment_method, discount, barcode, created_at, updated_at)
			VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10::numeric, $11, $12, $13)`,
			bill.ID, bill.UserID, bill.Title, bill.Amount.String(), models.Date(bill.DueDate), bill.Paid, bill.PaidAt,
			bill.Category, bill.PaymentMethod, nullDecimal(bill.Discount), bill.Barcode, bill.CreatedAt, bill.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill %q: %w", bill.Title, err)
		}

		if err := applyReminderOps(ctx, tx, bill.ID, w.Ops, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ModifyBill locks the bill row with SELECT ... FOR UPDATE, applies change
// and writes the result in the same transaction.
func (s *PostgresStore) ModifyBill(ctx context.Context, userID, billID string, change storage.BillChange) (*models.Bill, error) {
	if _, err := uuid.Parse(billID); err != nil {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	prev, err := scanBill(tx.QueryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1 AND user_id = $2 FOR UPDATE`, billID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	next, ops, err := change(prev)
	if err != nil {
		return nil, err
	}
	next.ID, next.UserID, next.CreatedAt = prev.ID, prev.UserID, prev.CreatedAt
	next.UpdatedAt = s.now().UTC()

	_, err = tx.Exec(ctx, `
		UPDATE bills SET title = $3, amount = $4::numeric, due_date = $5, paid = $6, paid_at = $7,
		       category = $8, payment_method = $9, discount = $10::numeric, barcode = $11, updated_at = $12
		WHERE id = $1 AND user_id = $2`,
		next.ID, next.UserID, next.Title, next.Amount.String(), models.Date(next.DueDate), next.Paid, next.PaidAt,
		next.Category, next.PaymentMethod, nullDecimal(next.Discount), next.Barcode, next.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update bill: %w", err)
	}

	if err := applyReminderOps(ctx, tx, next.ID, ops, next.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return next, nil
}

// GetBill retrieves one of the user's bills.
func (s *PostgresStore) GetBill(ctx context.Context, userID, billID string) (*models.Bill, error) {
	if _, err := uuid.Parse(billID); err != nil {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}

	row := s.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = $1 AND user_id = $2`, billID, userID)
	bill, err := scanBill(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// ListBills returns the user's bills matching filter, ordered by due date.
func (s *PostgresStore) ListBills(ctx context.Context, userID string, filter models.BillFilter) ([]*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE user_id = $1`
	args := []any{userID}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, models.Date(*filter.From))
		query += fmt.Sprintf(" AND due_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, models.Date(*filter.To))
		query += fmt.Sprintf(" AND due_date <= $%d", len(args))
	}
	query += " ORDER BY due_date, created_at"

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

// GetBillsByIDs retrieves bills by ID regardless of owner.
func (s *PostgresStore) GetBillsByIDs(ctx context.Context, ids []string) ([]*models.Bill, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	bills, err := s.queryBills(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id::text = ANY($1) ORDER BY due_date, title`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get bills by IDs: %w", err)
	}
	return bills, nil
}

// DeleteBill removes one of the user's bills; reminders cascade.
func (s *PostgresStore) DeleteBill(ctx context.Context, userID, billID string) error {
	if _, err := uuid.Parse(billID); err != nil {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}

	tag, err := s.pool.Exec(ctx, "DELETE FROM bills WHERE id = $1 AND user_id = $2", billID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return nil
}

// DeleteUserData removes all rows owned by the user.
func (s *PostgresStore) DeleteUserData(ctx context.Context, userID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range []string{
		"DELETE FROM reminders WHERE user_id = $1",
		"DELETE FROM bills WHERE user_id = $1",
		"DELETE FROM user_settings WHERE user_id = $1",
	} {
		if _, err := tx.Exec(ctx, stmt, userID); err != nil {
			return fmt.Errorf("failed to delete user data: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) queryBills(ctx context.Context, query string, args ...any) ([]*models.Bill, error) {
	rows, err := s.pool.Query(ctx, query, args...)
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
		return nil, fmt.Errorf("error iterating bills: %w", err)
	}
	return bills, nil
}

func scanBill(row pgx.Row) (*models.Bill, error) {
	bill := &models.Bill{}
	var (
		amount   string
		discount *string
	)
	if err := row.Scan(&bill.ID, &bill.UserID, &bill.Title, &amount, &bill.DueDate, &bill.Paid, &bill.PaidAt,
		&bill.Category, &bill.PaymentMethod, &discount, &bill.Barcode, &bill.CreatedAt, &bill.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if bill.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if discount != nil {
		d, err := decimal.NewFromString(*discount)
		if err != nil {
			return nil, fmt.Errorf("invalid discount %q: %w", *discount, err)
		}
		bill.Discount = &d
	}
	bill.DueDate = models.Date(bill.DueDate)
	return bill, nil
}

func nullDecimal(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
