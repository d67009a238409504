package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/billreminder/internal/api"
	"github.com/mmynk/billreminder/internal/metrics"
	"github.com/mmynk/billreminder/internal/middleware"
	"github.com/mmynk/billreminder/internal/models"
	"github.com/mmynk/billreminder/internal/reminder"
	"github.com/mmynk/billreminder/internal/storage"
	"github.com/mmynk/billreminder/internal/summary"
)

var _ api.BillServiceHandler = (*BillService)(nil)

// BillService implements the Connect BillService. Every bill write runs the
// reminder planner and hands its ops to the store in the same transaction.
type BillService struct {
	store storage.Store
	loc   *time.Location
	now   func() time.Time
}

// NewBillService creates a new BillService with the given storage backend.
// loc is the time zone "today" is computed in.
func NewBillService(store storage.Store, loc *time.Location) *BillService {
	if loc == nil {
		loc = time.UTC
	}
	return &BillService{store: store, loc: loc, now: time.Now}
}

func (s *BillService) today() time.Time {
	return models.Date(s.now().In(s.loc))
}

// requireUser returns the authenticated user ID from the context.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}
	return userID, nil
}

func recordOps(ops []models.ReminderOp) {
	for _, op := range ops {
		metrics.RemindersGenerated.WithLabelValues(op.Kind.String()).Inc()
	}
}

// CreateBill validates and stores a new bill, generating its reminders.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	bill, err := billFromRequest(userID, req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if req.Msg.Paid {
		applyPaid(bill, true, req.Msg.PaidAt, s.now())
	}

	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		slog.Error("CreateBill: failed to load settings", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	if err := s.insert(ctx, bill, settings); err != nil {
		slog.Error("CreateBill failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Bill created", "bill_id", bill.ID, "user_id", userID, "due_date", models.FormatDate(bill.DueDate))

	return connect.NewResponse(&api.CreateBillResponse{
		Bill: toAPIBill(bill, s.today()),
	}), nil
}

// ImportBills creates a batch of already-extracted bills. Every bill is
// validated first, and the batch is written in one transaction, so a failed
// import stores nothing.
func (s *BillService) ImportBills(ctx context.Context, req *connect.Request[api.ImportBillsRequest]) (*connect.Response[api.ImportBillsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if len(req.Msg.Bills) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("at least one bill is required"))
	}

	now := s.now()
	bills := make([]*models.Bill, len(req.Msg.Bills))
	for i, in := range req.Msg.Bills {
		bill, err := billFromRequest(userID, in)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("bill %d: %w", i+1, err))
		}
		if in.Paid {
			applyPaid(bill, true, in.PaidAt, now)
		}
		bills[i] = bill
	}

	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		slog.Error("ImportBills: failed to load settings", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	today := s.today()
	writes := make([]storage.BillWrite, len(bills))
	for i, bill := range bills {
		bill.ID = uuid.New().String()
		writes[i] = storage.BillWrite{Bill: bill, Ops: reminder.Plan(nil, bill, settings, today)}
	}

	if err := s.store.CreateBills(ctx, writes); err != nil {
		slog.Error("ImportBills failed", "user_id", userID, "count", len(bills), "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	for _, w := range writes {
		recordOps(w.Ops)
	}

	slog.Info("Bills imported", "user_id", userID, "count", len(bills))

	return connect.NewResponse(&api.ImportBillsResponse{
		Bills: toAPIBills(bills, s.today()),
	}), nil
}

func (s *BillService) insert(ctx context.Context, bill *models.Bill, settings *models.UserSettings) error {
	bill.ID = uuid.New().String()
	ops := reminder.Plan(nil, bill, settings, s.today())
	if err := s.store.CreateBill(ctx, bill, ops); err != nil {
		return err
	}
	recordOps(ops)
	return nil
}

// GetBill retrieves one of the caller's bills.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	bill, err := s.store.GetBill(ctx, userID, req.Msg.ID)
	if err != nil {
		slog.Warn("GetBill failed", "bill_id", req.Msg.ID, "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	return connect.NewResponse(&api.GetBillResponse{
		Bill: toAPIBill(bill, s.today()),
	}), nil
}

// ListBills lists the caller's bills, ordered by due date.
func (s *BillService) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	filter := models.BillFilter{
		Category: strings.TrimSpace(req.Msg.Category),
		Today:    s.today(),
	}

	switch status := models.BillStatus(strings.ToLower(strings.TrimSpace(req.Msg.Status))); status {
	case models.BillStatusAll, models.BillStatusPaid, models.BillStatusUnpaid, models.BillStatusOverdue, models.BillStatusUpcoming:
		filter.Status = status
	case "all":
		filter.Status = models.BillStatusAll
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown status %q", req.Msg.Status))
	}

	if req.Msg.From != "" {
		from, err := models.ParseDate(req.Msg.From)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("from: %w", err))
		}
		filter.From = &from
	}
	if req.Msg.To != "" {
		to, err := models.ParseDate(req.Msg.To)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("to: %w", err))
		}
		filter.To = &to
	}

	if filter.Status == models.BillStatusUpcoming {
		settings, err := s.store.GetSettings(ctx, userID)
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		filter.UpcomingDays = settings.UpcomingWindow()
	}

	bills, err := s.store.ListBills(ctx, userID, filter)
	if err != nil {
		slog.Error("ListBills failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.ListBillsResponse{
		Bills: toAPIBills(bills, filter.Today),
	}), nil
}

// UpdateBill applies the set fields to one of the caller's bills. Reminders
// change only when the due date or the paid flag does.
func (s *BillService) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := patchFromRequest(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	bill, err := s.modify(ctx, userID, req.Msg.ID, patch)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.UpdateBillResponse{
		Bill: toAPIBill(bill, s.today()),
	}), nil
}

// SetBillPaid marks one of the caller's bills paid or unpaid.
func (s *BillService) SetBillPaid(ctx context.Context, req *connect.Request[api.SetBillPaidRequest]) (*connect.Response[api.SetBillPaidResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	paid := req.Msg.Paid
	bill, err := s.modify(ctx, userID, req.Msg.ID, &billPatch{paid: &paid, paidAt: req.Msg.PaidAt})
	if err != nil {
		return nil, err
	}

	slog.Info("Bill payment status set", "bill_id", bill.ID, "user_id", userID, "paid", bill.Paid)

	return connect.NewResponse(&api.SetBillPaidResponse{
		Bill: toAPIBill(bill, s.today()),
	}), nil
}

// modify applies patch to one of the user's bills. The stored row is read,
// planned against and written in one store transaction, so a concurrent
// write cannot be overwritten with stale fields.
func (s *BillService) modify(ctx context.Context, userID, billID string, patch *billPatch) (*models.Bill, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		slog.Error("UpdateBill: failed to load settings", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	now := s.now()
	today := s.today()

	var ops []models.ReminderOp
	bill, err := s.store.ModifyBill(ctx, userID, billID, func(prev *models.Bill) (*models.Bill, []models.ReminderOp, error) {
		next := *prev
		patch.apply(&next, now)

		ops = nil
		if !prev.DueDate.Equal(next.DueDate) || prev.Paid != next.Paid {
			ops = reminder.Plan(prev, &next, settings, today)
		}
		return &next, ops, nil
	})
	if err != nil {
		slog.Warn("UpdateBill failed", "bill_id", billID, "user_id", userID, "error", err)
		return nil, storeError(err)
	}
	recordOps(ops)

	if len(ops) > 0 {
		slog.Debug("Reminders replanned", "bill_id", billID, "ops", len(ops))
	}
	return bill, nil
}

// DeleteBill deletes one of the caller's bills and its reminders.
func (s *BillService) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("id required"))
	}

	if err := s.store.DeleteBill(ctx, userID, req.Msg.ID); err != nil {
		slog.Warn("DeleteBill failed", "bill_id", req.Msg.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Bill deleted", "bill_id", req.Msg.ID, "user_id", userID)
	return connect.NewResponse(&api.DeleteBillResponse{}), nil
}

// ListReminders lists the reminders of one of the caller's bills.
func (s *BillService) ListReminders(ctx context.Context, req *connect.Request[api.ListRemindersRequest]) (*connect.Response[api.ListRemindersResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetBill(ctx, userID, req.Msg.BillID); err != nil {
		return nil, storeError(err)
	}

	reminders, err := s.store.ListReminders(ctx, userID, req.Msg.BillID)
	if err != nil {
		slog.Error("ListReminders failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]*api.Reminder, len(reminders))
	for i, r := range reminders {
		out[i] = toAPIReminder(r)
	}
	return connect.NewResponse(&api.ListRemindersResponse{Reminders: out}), nil
}

// GetDashboard summarizes the caller's bills.
func (s *BillService) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	bills, err := s.store.ListBills(ctx, userID, models.BillFilter{})
	if err != nil {
		slog.Error("GetDashboard failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	sum := summary.Calculate(bills, s.now().In(s.loc), settings.UpcomingWindow())
	return connect.NewResponse(&api.GetDashboardResponse{
		Summary: toAPISummary(sum),
	}), nil
}
