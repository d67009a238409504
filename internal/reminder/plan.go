// Package reminder keeps a bill's reminder set consistent with its due date,
// its paid flag and the owner's notification settings.
//
// The planner is pure: it receives the previous and next bill states plus
// the owner's settings and returns the ReminderOps the store must apply in
// the same transaction as the bill write.
package reminder

import (
	"time"

	"github.com/mmynk/billreminder/internal/models"
)

// Plan computes the reminder changes caused by a bill write.
//
// prev is nil when the bill is being created. settings is nil when the owner
// has no settings row, which counts as notifications disabled. today is the
// current calendar date in the service's time zone.
//
// On create, one insert per offset is emitted. When the due date changes,
// unsent reminders dated today or later are deleted and, unless the bill is
// paid, the offsets are regenerated against the new date. When the bill transitions to paid, every
// unsent reminder is deleted. Any other change yields no ops.
func Plan(prev, next *models.Bill, settings *models.UserSettings, today time.Time) []models.ReminderOp {
	if prev == nil {
		return Generate(next, settings)
	}

	var ops []models.ReminderOp

	if !models.Date(prev.DueDate).Equal(models.Date(next.DueDate)) {
		ops = append(ops, models.ReminderOp{
			Kind:   models.ReminderDeleteUnsentFrom,
			BillID: next.ID,
			From:   models.Date(today),
		})
		if !next.Paid {
			ops = append(ops, Generate(next, settings)...)
		}
	}

	if !prev.Paid && next.Paid {
		// Applied last so that a combined due-date and paid change leaves
		// nothing pending.
		ops = append(ops, models.ReminderOp{
			Kind:   models.ReminderDeleteAllUnsent,
			BillID: next.ID,
		})
	}

	return ops
}

// Generate returns the insert ops for a bill's current due date. It returns
// nil when settings are missing or notifications are disabled.
func Generate(bill *models.Bill, settings *models.UserSettings) []models.ReminderOp {
	if settings == nil || !settings.NotificationsEnabled {
		return nil
	}

	dates := RemindDates(bill.DueDate, settings.Offsets())
	ops := make([]models.ReminderOp, 0, len(dates))
	for _, d := range dates {
		ops = append(ops, models.ReminderOp{
			Kind:   models.ReminderInsert,
			BillID: bill.ID,
			Reminder: models.Reminder{
				UserID:       bill.UserID,
				BillID:       bill.ID,
				RemindDate:   d,
				SendEmail:    settings.HasEmailRecipients(),
				SendWhatsApp: settings.HasWhatsAppRecipients(),
			},
		})
	}
	return ops
}

// RemindDates returns due-offset for every offset, in offset order, with
// duplicate dates removed.
func RemindDates(due time.Time, offsets []int) []time.Time {
	seen := make(map[time.Time]bool, len(offsets))
	dates := make([]time.Time, 0, len(offsets))
	for _, offset := range offsets {
		d := models.AddDays(due, -offset)
		if seen[d] {
			continue
		}
		seen[d] = true
		dates = append(dates, d)
	}
	return dates
}
