package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// CompletionScheduler periodically completes approved stays whose check-out
// date has passed.
type CompletionScheduler struct {
	cron    *cron.Cron
	service Service
	timeout time.Duration
}

// NewCompletionScheduler parses spec, which accepts descriptors such as
// "@every 1h" or six-field cron expressions with seconds.
func NewCompletionScheduler(service Service, spec string) (*CompletionScheduler, error) {
	s := &CompletionScheduler{
		cron:    cron.New(cron.WithSeconds()),
		service: service,
		timeout: time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return nil, fmt.Errorf("invalid completion sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the scheduler.
func (s *CompletionScheduler) Start() {
	s.cron.Start()
	slog.Info("completion scheduler started")
}

// Stop waits for a running sweep to finish.
func (s *CompletionScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("completion scheduler stopped")
}

func (s *CompletionScheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.service.CompleteEnded(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "completion sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "completed ended bookings", "count", n)
	}
}
