package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill represents a payable obligation tracked for one user.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// UserID is the owner of the bill. All reads and writes are scoped to it.
	UserID string

	// Title is the human-readable name for the bill (e.g., "Electricity").
	Title string

	// Amount is the amount due.
	Amount decimal.Decimal

	// DueDate is the calendar date the bill is due (UTC midnight).
	DueDate time.Time

	// Paid reports whether the bill has been paid.
	Paid bool

	// PaidAt is set when the bill transitions to paid and cleared when it
	// transitions back to unpaid.
	PaidAt *time.Time

	// Category is an optional free-form grouping (e.g., "Utilities").
	Category string

	// PaymentMethod is an optional note on how the bill is paid.
	PaymentMethod string

	// Discount is an optional discount applied to the amount.
	Discount *decimal.Decimal

	// Barcode is the optional payment barcode captured on import.
	Barcode string

	// CreatedAt is when the bill was first stored.
	CreatedAt time.Time

	// UpdatedAt is maintained by the store on every write.
	UpdatedAt time.Time
}

// AmountDue returns the amount minus any discount, never below zero.
func (b *Bill) AmountDue() decimal.Decimal {
	if b.Discount == nil {
		return b.Amount
	}
	due := b.Amount.Sub(*b.Discount)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// IsOverdue reports whether the bill is unpaid and its due date is before today.
func (b *Bill) IsOverdue(today time.Time) bool {
	return !b.Paid && b.DueDate.Before(Date(today))
}

// BillStatus filters bills by payment state.
type BillStatus string

const (
	BillStatusAll      BillStatus = ""
	BillStatusPaid     BillStatus = "paid"
	BillStatusUnpaid   BillStatus = "unpaid"
	BillStatusOverdue  BillStatus = "overdue"
	BillStatusUpcoming BillStatus = "upcoming"
)

// BillFilter narrows a bill listing. Zero values mean "no constraint".
type BillFilter struct {
	Status   BillStatus
	Category string

	// From and To bound the due date, inclusive.
	From *time.Time
	To   *time.Time

	// Today anchors the overdue and upcoming statuses.
	Today time.Time

	// UpcomingDays is the window used by BillStatusUpcoming.
	UpcomingDays int
}

// Matches reports whether the bill passes the filter.
func (f BillFilter) Matches(b *Bill) bool {
	if f.Category != "" && b.Category != f.Category {
		return false
	}
	if f.From != nil && b.DueDate.Before(Date(*f.From)) {
		return false
	}
	if f.To != nil && b.DueDate.After(Date(*f.To)) {
		return false
	}

	today := Date(f.Today)
	switch f.Status {
	case BillStatusPaid:
		return b.Paid
	case BillStatusUnpaid:
		return !b.Paid
	case BillStatusOverdue:
		return b.IsOverdue(today)
	case BillStatusUpcoming:
		return !b.Paid && !b.DueDate.Before(today) && !b.DueDate.After(AddDays(today, f.UpcomingDays))
	}
	return true
}
