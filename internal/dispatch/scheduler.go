package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs dispatch on a cron schedule inside the server process.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *slog.Logger
}

// NewScheduler parses spec (standard five-field cron, or descriptors such as
// "@daily") evaluated in loc.
func NewScheduler(spec string, loc *time.Location, runner Runner, logger *slog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		runner: runner,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid dispatch schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	result, err := s.runner.Run(context.Background())
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			s.logger.Info("Scheduled dispatch skipped, run in progress")
			return
		}
		s.logger.Error("Scheduled dispatch failed", "error", err)
		return
	}
	s.logger.Info("Scheduled dispatch finished",
		"date", result.Date,
		"users_processed", result.UsersProcessed,
		"emails_sent", result.EmailsSent,
		"whatsapps_sent", result.WhatsAppsSent,
	)
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job up to ctx's deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
