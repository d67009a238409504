// Package summary aggregates a user's bills into the dashboard view.
package summary

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billreminder/internal/models"
)

// Calculate computes the dashboard summary for bills as of now.
//
// Algorithm:
//   - Unpaid bills contribute their amount due to TotalUnpaid and to their category
//   - Unpaid bills due before today are overdue
//   - Unpaid bills due in [today, today+windowDays] are upcoming
//   - Paid bills with PaidAt in now's calendar month contribute to PaidThisMonth
func Calculate(bills []*models.Bill, now time.Time, windowDays int) *models.Summary {
	today := models.Date(now)
	windowEnd := models.AddDays(today, windowDays)

	s := &models.Summary{
		TotalUnpaid:    decimal.Zero,
		OverdueAmount:  decimal.Zero,
		UpcomingAmount: decimal.Zero,
		PaidThisMonth:  decimal.Zero,
		WindowDays:     windowDays,
	}

	// Track unpaid totals per category
	categories := make(map[string]*models.CategoryTotal)

	for _, bill := range bills {
		if bill.Paid {
			if bill.PaidAt != nil && sameMonth(bill.PaidAt.In(now.Location()), now) {
				s.PaidThisMonth = s.PaidThisMonth.Add(bill.AmountDue())
			}
			continue
		}

		due := bill.AmountDue()
		s.TotalUnpaid = s.TotalUnpaid.Add(due)

		switch {
		case bill.DueDate.Before(today):
			s.OverdueCount++
			s.OverdueAmount = s.OverdueAmount.Add(due)
		case !bill.DueDate.After(windowEnd):
			s.UpcomingCount++
			s.UpcomingAmount = s.UpcomingAmount.Add(due)
		}

		ct, exists := categories[bill.Category]
		if !exists {
			ct = &models.CategoryTotal{Category: bill.Category, Amount: decimal.Zero}
			categories[bill.Category] = ct
		}
		ct.Count++
		ct.Amount = ct.Amount.Add(due)
	}

	for _, ct := range categories {
		s.ByCategory = append(s.ByCategory, *ct)
	}
	// Largest categories first, name as tie-breaker for stable output
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if c := s.ByCategory[i].Amount.Cmp(s.ByCategory[j].Amount); c != 0 {
			return c > 0
		}
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})

	return s
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
