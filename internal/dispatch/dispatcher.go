// Package dispatch sends the reminders due today and marks them sent.
//
// A run selects every unsent reminder dated today, groups them by owner and
// processes each user independently. A user's reminders are marked sent only
// when at least one channel delivered; otherwise they stay unsent and are
// picked up by the next run.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mmynk/billreminder/internal/metrics"
	"github.com/mmynk/billreminder/internal/models"
	"github.com/mmynk/billreminder/internal/notify"
)

// Store is the subset of storage the dispatcher needs.
type Store interface {
	ListDueReminders(ctx context.Context, day time.Time) ([]*models.Reminder, error)
	GetSettings(ctx context.Context, userID string) (*models.UserSettings, error)
	GetBillsByIDs(ctx context.Context, ids []string) ([]*models.Bill, error)
	MarkRemindersSent(ctx context.Context, ids []string, sentAt time.Time) error
}

// Result summarizes one dispatch run.
type Result struct {
	OK bool `json:"ok"`

	// UsersProcessed counts users whose reminders were marked sent.
	UsersProcessed int `json:"usersProcessed"`

	// EmailsSent counts email recipients successfully sent to.
	EmailsSent int `json:"emailsSent"`

	// WhatsAppsSent counts WhatsApp messages successfully sent.
	WhatsAppsSent int `json:"whatsappsSent"`

	// Date is the processed day, YYYY-MM-DD.
	Date string `json:"date"`
}

// Options configures a Dispatcher. Nil senders disable their channel.
type Options struct {
	Email    notify.EmailSender
	WhatsApp notify.MessageSender

	// Locker guards against overlapping runs. Defaults to NoopLocker.
	Locker Locker

	Logger *slog.Logger

	// Location is the time zone "today" is computed in. Defaults to UTC.
	Location *time.Location

	// Now defaults to time.Now.
	Now func() time.Time

	CurrencySymbol string
}

// Dispatcher runs reminder dispatch against a store and the configured senders.
type Dispatcher struct {
	store    Store
	email    notify.EmailSender
	whatsapp notify.MessageSender
	locker   Locker
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
	currency string
}

// New creates a Dispatcher.
func New(store Store, opts Options) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		email:    opts.Email,
		whatsapp: opts.WhatsApp,
		locker:   opts.Locker,
		logger:   opts.Logger,
		loc:      opts.Location,
		now:      opts.Now,
		currency: opts.CurrencySymbol,
	}
	if d.locker == nil {
		d.locker = NoopLocker{}
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.loc == nil {
		d.loc = time.UTC
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Run dispatches every reminder due today. Only a failure to select the due
// reminders (or a held run lock) is returned as an error; per-user and
// per-channel failures are logged and reflected in the counts.
func (d *Dispatcher) Run(ctx context.Context) (*Result, error) {
	now := d.now()
	today := models.Date(now.In(d.loc))
	date := models.FormatDate(today)
	log := d.logger.With("date", date)

	release, err := d.locker.Acquire(ctx, date)
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			metrics.DispatchRuns.WithLabelValues("locked").Inc()
			log.Warn("Dispatch run already in progress")
			return nil, err
		}
		metrics.DispatchRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	defer release()

	reminders, err := d.store.ListDueReminders(ctx, today)
	if err != nil {
		metrics.DispatchRuns.WithLabelValues("error").Inc()
		log.Error("Failed to select due reminders", "error", err)
		return nil, fmt.Errorf("failed to select due reminders: %w", err)
	}

	result := &Result{OK: true, Date: date}
	if len(reminders) == 0 {
		metrics.DispatchRuns.WithLabelValues("ok").Inc()
		log.Info("No reminders due")
		return result, nil
	}

	groups := groupByUser(reminders)
	userIDs := make([]string, 0, len(groups))
	for userID := range groups {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	log.Info("Dispatching reminders", "reminders", len(reminders), "users", len(userIDs))
	for _, userID := range userIDs {
		d.processUser(ctx, userID, groups[userID], now.UTC(), result)
	}

	metrics.DispatchRuns.WithLabelValues("ok").Inc()
	log.Info("Dispatch run completed",
		"users_processed", result.UsersProcessed,
		"emails_sent", result.EmailsSent,
		"whatsapps_sent", result.WhatsAppsSent,
	)
	return result, nil
}

func (d *Dispatcher) processUser(ctx context.Context, userID string, group []*models.Reminder, sentAt time.Time, result *Result) {
	log := d.logger.With("user_id", userID, "reminders", len(group))

	settings, err := d.store.GetSettings(ctx, userID)
	if err != nil {
		log.Error("Failed to load settings, skipping user", "error", err)
		return
	}
	if e := UserEligibility(settings); !e.Eligible {
		log.Info("Skipping user", "reason", e.Reason)
		return
	}

	bills, err := d.store.GetBillsByIDs(ctx, distinctBillIDs(group))
	if err != nil {
		log.Error("Failed to load bills, skipping user", "error", err)
		return
	}
	if len(bills) == 0 {
		log.Warn("Reminders reference no existing bills, skipping user")
		return
	}
	sort.Slice(bills, func(i, j int) bool {
		if !bills[i].DueDate.Equal(bills[j].DueDate) {
			return bills[i].DueDate.Before(bills[j].DueDate)
		}
		return bills[i].Title < bills[j].Title
	})

	content, err := notify.Render(bills, d.currency)
	if err != nil {
		log.Error("Failed to render content, skipping user", "error", err)
		return
	}

	delivered := false
	if d.sendEmail(ctx, log, group, settings, content, result) {
		delivered = true
	}
	if d.sendWhatsApp(ctx, log, group, settings, content, result) {
		delivered = true
	}

	if !delivered {
		log.Warn("No channel delivered, reminders left unsent")
		return
	}

	ids := make([]string, len(group))
	for i, r := range group {
		ids[i] = r.ID
	}
	if err := d.store.MarkRemindersSent(ctx, ids, sentAt); err != nil {
		log.Error("Failed to mark reminders sent", "error", err)
		return
	}
	result.UsersProcessed++
}

func (d *Dispatcher) sendEmail(ctx context.Context, log *slog.Logger, group []*models.Reminder, settings *models.UserSettings, content *notify.Content, result *Result) bool {
	e := ChannelEligibility(ChannelEmail, d.email != nil, group, settings)
	if !e.Eligible {
		metrics.ChannelSkips.WithLabelValues(string(ChannelEmail), string(e.Reason)).Inc()
		log.Debug("Email channel skipped", "reason", e.Reason)
		return false
	}

	err := d.email.SendEmail(ctx, notify.Email{
		To:      settings.EmailRecipients,
		Subject: content.Subject,
		HTML:    content.HTML,
		Text:    content.Text,
	})
	if err != nil {
		metrics.NotificationsSent.WithLabelValues(string(ChannelEmail), "error").Inc()
		log.Error("Failed to send email", "error", err)
		return false
	}

	metrics.NotificationsSent.WithLabelValues(string(ChannelEmail), "ok").Inc()
	result.EmailsSent += len(settings.EmailRecipients)
	log.Info("Email sent", "recipients", len(settings.EmailRecipients))
	return true
}

func (d *Dispatcher) sendWhatsApp(ctx context.Context, log *slog.Logger, group []*models.Reminder, settings *models.UserSettings, content *notify.Content, result *Result) bool {
	e := ChannelEligibility(ChannelWhatsApp, d.whatsapp != nil, group, settings)
	if !e.Eligible {
		metrics.ChannelSkips.WithLabelValues(string(ChannelWhatsApp), string(e.Reason)).Inc()
		log.Debug("WhatsApp channel skipped", "reason", e.Reason)
		return false
	}

	sent := 0
	for _, to := range settings.WhatsAppRecipients {
		if err := d.whatsapp.SendMessage(ctx, to, content.Text); err != nil {
			metrics.NotificationsSent.WithLabelValues(string(ChannelWhatsApp), "error").Inc()
			log.Error("Failed to send WhatsApp message", "recipient", to, "error", err)
			continue
		}
		metrics.NotificationsSent.WithLabelValues(string(ChannelWhatsApp), "ok").Inc()
		sent++
	}

	result.WhatsAppsSent += sent
	if sent > 0 {
		log.Info("WhatsApp messages sent", "sent", sent, "recipients", len(settings.WhatsAppRecipients))
	}
	return sent > 0
}

func groupByUser(reminders []*models.Reminder) map[string][]*models.Reminder {
	groups := make(map[string][]*models.Reminder)
	for _, r := range reminders {
		groups[r.UserID] = append(groups[r.UserID], r)
	}
	return groups
}

func distinctBillIDs(group []*models.Reminder) []string {
	seen := make(map[string]bool, len(group))
	var ids []string
	for _, r := range group {
		if seen[r.BillID] {
			continue
		}
		seen[r.BillID] = true
		ids = append(ids, r.BillID)
	}
	return ids
}
