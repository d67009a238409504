// Package models defines the core domain models for the bill reminder service.
//
// # Models
//
//   - Bill: a payable obligation owned by one user
//   - Reminder: a scheduled notification for one bill on one calendar date
//   - UserSettings: per-user notification preferences and dashboard window
//   - ReminderOp: a change to the reminder set, produced by the planner and
//     applied by the store in the same transaction as the bill write
//
// # Ownership
//
// Every Bill and Reminder carries the UserID of its owner. Users themselves
// live in the external auth provider; the service only ever sees their IDs.
//
// # Dates
//
// Due dates and remind dates are calendar dates. They are carried as
// time.Time values at UTC midnight (see Date) and persisted as YYYY-MM-DD.
package models
