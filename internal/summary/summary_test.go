package summary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billreminder/internal/models"
)

func d(s string) time.Time {
	t, _ := models.ParseDate(s)
	return t
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculate(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	paidAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	discount := amount("10")

	bills := []*models.Bill{
		{Title: "Rent", Amount: amount("1000"), DueDate: d("2026-03-10"), Category: "Housing"},
		{Title: "Power", Amount: amount("120.50"), DueDate: d("2026-03-15"), Category: "Utilities"},
		{Title: "Water", Amount: amount("60"), DueDate: d("2026-03-22"), Category: "Utilities", Discount: &discount},
		{Title: "Gym", Amount: amount("90"), DueDate: d("2026-04-30")},
		{Title: "Phone", Amount: amount("45"), DueDate: d("2026-03-01"), Paid: true, PaidAt: &paidAt},
		{Title: "Old", Amount: amount("30"), DueDate: d("2026-02-20"), Paid: true, PaidAt: &lastMonth},
	}

	s := Calculate(bills, now, 7)

	if !s.TotalUnpaid.Equal(amount("1260.50")) {
		t.Errorf("TotalUnpaid = %s, want 1260.50", s.TotalUnpaid)
	}
	if s.OverdueCount != 1 || !s.OverdueAmount.Equal(amount("1000")) {
		t.Errorf("overdue = (%d, %s), want (1, 1000)", s.OverdueCount, s.OverdueAmount)
	}
	// Power is due today, Water on the last day of the window
	if s.UpcomingCount != 2 || !s.UpcomingAmount.Equal(amount("170.50")) {
		t.Errorf("upcoming = (%d, %s), want (2, 170.50)", s.UpcomingCount, s.UpcomingAmount)
	}
	if !s.PaidThisMonth.Equal(amount("45")) {
		t.Errorf("PaidThisMonth = %s, want 45", s.PaidThisMonth)
	}
	if s.WindowDays != 7 {
		t.Errorf("WindowDays = %d, want 7", s.WindowDays)
	}

	if len(s.ByCategory) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(s.ByCategory))
	}
	if s.ByCategory[0].Category != "Housing" {
		t.Errorf("largest category = %q, want Housing", s.ByCategory[0].Category)
	}
	if s.ByCategory[1].Category != "Utilities" || s.ByCategory[1].Count != 2 {
		t.Errorf("second category = %+v, want Utilities with 2 bills", s.ByCategory[1])
	}
}

func TestCalculate_Empty(t *testing.T) {
	s := Calculate(nil, time.Now(), 7)
	if !s.TotalUnpaid.IsZero() || s.OverdueCount != 0 || s.UpcomingCount != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
	if len(s.ByCategory) != 0 {
		t.Errorf("expected no categories, got %d", len(s.ByCategory))
	}
}
