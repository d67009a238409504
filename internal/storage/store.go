// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/billreminder/internal/models"
)

// ErrNotFound is returned when a row does not exist or is not owned by the
// requesting user.
var ErrNotFound = errors.New("not found")

// BillWrite is one bill insert together with the reminder ops planned for it.
type BillWrite struct {
	Bill *models.Bill
	Ops  []models.ReminderOp
}

// BillChange derives the next state of a bill and its reminder ops from the
// stored row. It runs while the row is locked for writing. A returned error
// rolls the transaction back and is passed to the caller unchanged.
type BillChange func(prev *models.Bill) (next *models.Bill, ops []models.ReminderOp, err error)

// Store defines the interface for bill, reminder and settings persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateBill persists a new bill and applies ops in the same transaction.
	// The bill.ID, CreatedAt and UpdatedAt fields are populated by the store.
	CreateBill(ctx context.Context, bill *models.Bill, ops []models.ReminderOp) error

	// CreateBills persists every write in a single transaction. Either all
	// bills and their reminders are stored or none are.
	CreateBills(ctx context.Context, writes []BillWrite) error

	// ModifyBill locks one of the user's bills, passes it to change and
	// writes the returned bill and ops before releasing the lock. The ID,
	// owner and CreatedAt of the stored row are kept. Returns ErrNotFound if
	// the bill does not exist or is owned by another user.
	ModifyBill(ctx context.Context, userID, billID string, change BillChange) (*models.Bill, error)

	// GetBill retrieves one of the user's bills.
	GetBill(ctx context.Context, userID, billID string) (*models.Bill, error)

	// ListBills returns the user's bills matching filter, ordered by due date.
	ListBills(ctx context.Context, userID string, filter models.BillFilter) ([]*models.Bill, error)

	// GetBillsByIDs retrieves bills regardless of owner. Missing IDs are
	// omitted from the result. Used by the dispatch job.
	GetBillsByIDs(ctx context.Context, ids []string) ([]*models.Bill, error)

	// DeleteBill removes one of the user's bills and its reminders.
	DeleteBill(ctx context.Context, userID, billID string) error

	// ListReminders returns the reminders of one of the user's bills,
	// ordered by remind date.
	ListReminders(ctx context.Context, userID, billID string) ([]*models.Reminder, error)

	// ListDueReminders returns every unsent reminder dated on the given day.
	ListDueReminders(ctx context.Context, day time.Time) ([]*models.Reminder, error)

	// MarkRemindersSent sets sent_at on the given reminders in one update.
	MarkRemindersSent(ctx context.Context, ids []string, sentAt time.Time) error

	// GetSettings returns the user's settings, or nil and no error when the
	// user has no settings row.
	GetSettings(ctx context.Context, userID string) (*models.UserSettings, error)

	// UpsertSettings creates or replaces the user's settings row.
	UpsertSettings(ctx context.Context, settings *models.UserSettings) error

	// DeleteUserData removes every bill, reminder and settings row owned by
	// the user.
	DeleteUserData(ctx context.Context, userID string) error

	// Close releases any resources held by the store.
	Close() error
}
