package models

import "time"

// Reminder is a scheduled notification for one bill on one calendar date.
// At most one reminder exists per (BillID, RemindDate).
type Reminder struct {
	// ID is the unique identifier for the reminder (UUID format).
	ID string

	// UserID is the owner, always equal to the owning bill's UserID.
	UserID string

	// BillID is the bill this reminder is about.
	BillID string

	// RemindDate is the calendar date the reminder fires.
	RemindDate time.Time

	// SendEmail and SendWhatsApp record which channels the owner had
	// recipients for when the reminder was generated.
	SendEmail    bool
	SendWhatsApp bool

	// SentAt is set once a dispatch run notified the owner. Sent reminders
	// are never deleted by regeneration.
	SentAt *time.Time

	// CreatedAt is when the reminder was generated.
	CreatedAt time.Time
}

// IsSent reports whether the reminder has been dispatched.
func (r *Reminder) IsSent() bool {
	return r.SentAt != nil
}

// ReminderOpKind identifies a change to a bill's reminder set.
type ReminderOpKind int

const (
	// ReminderInsert creates Reminder unless one already exists for the
	// same bill and date.
	ReminderInsert ReminderOpKind = iota + 1

	// ReminderDeleteUnsentFrom deletes unsent reminders of BillID dated on
	// or after From.
	ReminderDeleteUnsentFrom

	// ReminderDeleteAllUnsent deletes every unsent reminder of BillID.
	ReminderDeleteAllUnsent
)

func (k ReminderOpKind) String() string {
	switch k {
	case ReminderInsert:
		return "insert"
	case ReminderDeleteUnsentFrom:
		return "delete_unsent_from"
	case ReminderDeleteAllUnsent:
		return "delete_all_unsent"
	default:
		return "unknown"
	}
}

// ReminderOp is one change to apply to the reminder table. Ops are applied
// in order, in the same transaction as the bill write that produced them.
type ReminderOp struct {
	Kind     ReminderOpKind
	BillID   string
	Reminder Reminder
	From     time.Time
}
