package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/ports"
)

// Scheduler wires the time-of-day driver with the monitoring cycle and reminders.
type Scheduler struct {
	driver    ports.Scheduler
	monitor   *Monitor
	reminders *Reminders
	maxBatch  int
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, monitor *Monitor, reminders *Reminders, maxBatch int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, monitor: monitor, reminders: reminders, maxBatch: maxBatch, logger: logger}
}

// Start registers the monitoring job with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.monitor == nil {
		return nil
	}
	return s.driver.Start(ctx, func(trigger time.Time) { s.runOnce(ctx, trigger) })
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}

// Serve runs until ctx is canceled so the scheduler can be supervised.
func (s *Scheduler) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		s.logger.Warn("scheduler stop", "error", err)
	}
	return ctx.Err()
}

func (s *Scheduler) String() string {
	return "scheduler"
}

func (s *Scheduler) runOnce(ctx context.Context, trigger time.Time) {
	summary, err := s.monitor.RunCycle(ctx, domain.RunOptions{
		MaxBatch:         s.maxBatch,
		Trigger:          domain.TriggerScheduled,
		RespectFrequency: true,
	})
	switch {
	case errors.Is(err, ErrNotConfigured):
		s.logger.Warn("scheduled run skipped", "reason", err)
	case err != nil:
		s.logger.Error("scheduled run failed", "run_id", summary.ID, "error", err)
	}

	if s.reminders != nil {
		if err := s.reminders.Run(ctx, trigger); err != nil {
			s.logger.Error("reminders failed", "error", err)
		}
	}
}
