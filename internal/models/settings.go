package models

import "time"

const (
	// DefaultReminderOffset applies when a user configured no offsets.
	DefaultReminderOffset = 1

	// DefaultUpcomingWindowDays is the dashboard window when unset.
	DefaultUpcomingWindowDays = 7
)

// UserSettings holds one user's notification preferences.
// A user without a settings row is treated as having notifications disabled.
type UserSettings struct {
	// UserID is the owner of the settings row.
	UserID string

	// NotificationsEnabled gates reminder generation for the user.
	NotificationsEnabled bool

	// EmailRecipients receive the email channel.
	EmailRecipients []string

	// WhatsAppRecipients receive the WhatsApp channel, one message each.
	WhatsAppRecipients []string

	// ReminderOffsets are days before the due date at which to remind.
	// Zero and negative values are allowed (same day, after due date).
	ReminderOffsets []int

	// UpcomingWindowDays is how far ahead the dashboard looks.
	UpcomingWindowDays int

	// UpdatedAt is maintained by the store.
	UpdatedAt time.Time
}

// Offsets returns the configured offsets, or the default when none are set.
func (s *UserSettings) Offsets() []int {
	if len(s.ReminderOffsets) == 0 {
		return []int{DefaultReminderOffset}
	}
	return s.ReminderOffsets
}

// UpcomingWindow returns the dashboard window, defaulting when unset.
func (s *UserSettings) UpcomingWindow() int {
	if s == nil || s.UpcomingWindowDays <= 0 {
		return DefaultUpcomingWindowDays
	}
	return s.UpcomingWindowDays
}

// HasEmailRecipients reports whether at least one email recipient is set.
func (s *UserSettings) HasEmailRecipients() bool {
	return len(s.EmailRecipients) > 0
}

// HasWhatsAppRecipients reports whether at least one WhatsApp recipient is set.
func (s *UserSettings) HasWhatsAppRecipients() bool {
	return len(s.WhatsAppRecipients) > 0
}

// DefaultSettings returns the settings used for a user with no stored row.
func DefaultSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID:             userID,
		ReminderOffsets:    []int{DefaultReminderOffset},
		UpcomingWindowDays: DefaultUpcomingWindowDays,
	}
}
