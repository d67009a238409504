package models

import "github.com/shopspring/decimal"

// Summary is the dashboard aggregate over one user's bills.
type Summary struct {
	// TotalUnpaid is the sum of amounts due on all unpaid bills.
	TotalUnpaid decimal.Decimal

	OverdueCount  int
	OverdueAmount decimal.Decimal

	// Upcoming covers unpaid bills due between today and today+WindowDays.
	UpcomingCount  int
	UpcomingAmount decimal.Decimal
	WindowDays     int

	// PaidThisMonth sums bills whose PaidAt falls in the current month.
	PaidThisMonth decimal.Decimal

	// ByCategory sums unpaid amounts per category. Uncategorized bills are
	// reported under the empty string.
	ByCategory []CategoryTotal
}

// CategoryTotal is one row of the per-category breakdown.
type CategoryTotal struct {
	Category string
	Count    int
	Amount   decimal.Decimal
}
