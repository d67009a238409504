package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billreminder/internal/api"
	"github.com/mmynk/billreminder/internal/models"
	"github.com/mmynk/billreminder/internal/storage"
)

// toAPIBill converts a stored bill for the wire. today anchors the overdue flag.
func toAPIBill(b *models.Bill, today time.Time) *api.Bill {
	out := &api.Bill{
		ID:            b.ID,
		Title:         b.Title,
		Amount:        b.Amount.StringFixed(2),
		AmountDue:     b.AmountDue().StringFixed(2),
		DueDate:       models.FormatDate(b.DueDate),
		Paid:          b.Paid,
		PaidAt:        b.PaidAt,
		Overdue:       b.IsOverdue(today),
		Category:      b.Category,
		PaymentMethod: b.PaymentMethod,
		Barcode:       b.Barcode,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.Discount != nil {
		out.Discount = b.Discount.StringFixed(2)
	}
	return out
}

func toAPIBills(bills []*models.Bill, today time.Time) []*api.Bill {
	out := make([]*api.Bill, len(bills))
	for i, b := range bills {
		out[i] = toAPIBill(b, today)
	}
	return out
}

func toAPIReminder(r *models.Reminder) *api.Reminder {
	return &api.Reminder{
		ID:           r.ID,
		BillID:       r.BillID,
		RemindDate:   models.FormatDate(r.RemindDate),
		SendEmail:    r.SendEmail,
		SendWhatsApp: r.SendWhatsApp,
		SentAt:       r.SentAt,
	}
}

func toAPISummary(s *models.Summary) *api.Summary {
	out := &api.Summary{
		TotalUnpaid:    s.TotalUnpaid.StringFixed(2),
		OverdueCount:   s.OverdueCount,
		OverdueAmount:  s.OverdueAmount.StringFixed(2),
		UpcomingCount:  s.UpcomingCount,
		UpcomingAmount: s.UpcomingAmount.StringFixed(2),
		WindowDays:     s.WindowDays,
		PaidThisMonth:  s.PaidThisMonth.StringFixed(2),
		ByCategory:     make([]api.CategoryTotal, len(s.ByCategory)),
	}
	for i, ct := range s.ByCategory {
		out.ByCategory[i] = api.CategoryTotal{
			Category: ct.Category,
			Count:    ct.Count,
			Amount:   ct.Amount.StringFixed(2),
		}
	}
	return out
}

func toAPISettings(s *models.UserSettings, exists bool) *api.Settings {
	out := &api.Settings{
		NotificationsEnabled: s.NotificationsEnabled,
		EmailRecipients:      nonNil(s.EmailRecipients),
		WhatsAppRecipients:   nonNil(s.WhatsAppRecipients),
		ReminderOffsets:      s.ReminderOffsets,
		UpcomingWindowDays:   s.UpcomingWindow(),
		Exists:               exists,
	}
	if out.ReminderOffsets == nil {
		out.ReminderOffsets = []int{}
	}
	if exists {
		updatedAt := s.UpdatedAt
		out.UpdatedAt = &updatedAt
	}
	return out
}

// billFromRequest validates a create request and builds the bill it describes.
func billFromRequest(userID string, req *api.CreateBillRequest) (*models.Bill, error) {
	if req == nil {
		return nil, fmt.Errorf("bill is required")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	dueDate, err := models.ParseDate(strings.TrimSpace(req.DueDate))
	if err != nil {
		return nil, fmt.Errorf("due_date: %w", err)
	}

	bill := &models.Bill{
		UserID:        userID,
		Title:         title,
		Amount:        amount,
		DueDate:       dueDate,
		Category:      strings.TrimSpace(req.Category),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Barcode:       strings.TrimSpace(req.Barcode),
	}

	if bill.Discount, err = parseDiscount(req.Discount); err != nil {
		return nil, err
	}

	return bill, nil
}

// Amounts are stored as NUMERIC(14, 2) in Postgres.
const amountScale = 2

var maxAmount = decimal.New(1, 12)

func parseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%s is required", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid decimal %q", field, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", field)
	}
	if !d.Equal(d.Round(amountScale)) {
		return decimal.Zero, fmt.Errorf("%s: at most %d decimal places allowed, got %q", field, amountScale, s)
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, fmt.Errorf("%s must be less than %s", field, maxAmount)
	}
	return d, nil
}

// parseDiscount returns nil for an empty string.
func parseDiscount(s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := parseAmount("discount", s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// billPatch is a validated UpdateBillRequest. Nil fields are left alone.
type billPatch struct {
	title         *string
	amount        *decimal.Decimal
	dueDate       *time.Time
	category      *string
	paymentMethod *string
	setDiscount   bool
	discount      *decimal.Decimal
	barcode       *string
	paid          *bool
	paidAt        *time.Time
}

// patchFromRequest validates every set field of an update request.
func patchFromRequest(msg *api.UpdateBillRequest) (*billPatch, error) {
	p := &billPatch{paid: msg.Paid, paidAt: msg.PaidAt}

	if msg.Title != nil {
		title := strings.TrimSpace(*msg.Title)
		if title == "" {
			return nil, fmt.Errorf("title is required")
		}
		p.title = &title
	}
	if msg.Amount != nil {
		amount, err := parseAmount("amount", *msg.Amount)
		if err != nil {
			return nil, err
		}
		p.amount = &amount
	}
	if msg.DueDate != nil {
		due, err := models.ParseDate(strings.TrimSpace(*msg.DueDate))
		if err != nil {
			return nil, fmt.Errorf("due_date: %w", err)
		}
		p.dueDate = &due
	}
	if msg.Discount != nil {
		discount, err := parseDiscount(*msg.Discount)
		if err != nil {
			return nil, err
		}
		p.setDiscount = true
		p.discount = discount
	}
	p.category = trimmed(msg.Category)
	p.paymentMethod = trimmed(msg.PaymentMethod)
	p.barcode = trimmed(msg.Barcode)

	return p, nil
}

// apply writes the patch onto b. now is used when a paid transition has no
// explicit timestamp.
func (p *billPatch) apply(b *models.Bill, now time.Time) {
	if p.title != nil {
		b.Title = *p.title
	}
	if p.amount != nil {
		b.Amount = *p.amount
	}
	if p.dueDate != nil {
		b.DueDate = *p.dueDate
	}
	if p.category != nil {
		b.Category = *p.category
	}
	if p.paymentMethod != nil {
		b.PaymentMethod = *p.paymentMethod
	}
	if p.setDiscount {
		b.Discount = p.discount
	}
	if p.barcode != nil {
		b.Barcode = *p.barcode
	}
	if p.paid != nil {
		applyPaid(b, *p.paid, p.paidAt, now)
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// applyPaid moves a bill to the requested paid state. A transition to paid
// records paidAt, or now when the caller gave none; a transition to unpaid
// clears it.
func applyPaid(b *models.Bill, paid bool, paidAt *time.Time, now time.Time) {
	switch {
	case paid && (!b.Paid || paidAt != nil):
		t := now.UTC()
		if paidAt != nil {
			t = paidAt.UTC()
		}
		b.PaidAt = &t
	case !paid:
		b.PaidAt = nil
	}
	b.Paid = paid
}

// storeError maps storage errors to Connect errors. Connect errors raised
// inside a store callback pass through unchanged.
func storeError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
