package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsQuiz/internal/ports"
)

type refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler wires a recurring driver with the feed refresh.
type Scheduler struct {
	driver  ports.Scheduler
	session refresher
	logger  *slog.Logger
}

// NewScheduler returns a helper to start/stop periodic feed refreshes.
func NewScheduler(driver ports.Scheduler, session refresher, log *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, session: session, logger: log}
}

// Start registers the refresh job with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.session == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.session.Refresh(ctx); err != nil && s.logger != nil {
			s.logger.Error("scheduled refresh failed", "trigger", trigger.Format(time.RFC3339), "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
