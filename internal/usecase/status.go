package usecase

import (
	"context"
	"fmt"
	"time"

	"JurisMonitor/internal/domain"
)

// Status aggregates the monitoring dashboard for a workspace.
func (m *Monitor) Status(ctx context.Context, workspaceID int64) (domain.MonitoringStatus, error) {
	status := domain.MonitoringStatus{WorkspaceID: workspaceID}
	if m.status == nil {
		return status, nil
	}

	last, err := m.status.LastRunAt(ctx, workspaceID)
	if err != nil {
		return status, fmt.Errorf("last run: %w", err)
	}
	status.LastRunAt = last

	status.ProcessesMonitored, err = m.status.CountMonitored(ctx, workspaceID)
	if err != nil {
		return status, fmt.Errorf("count monitored: %w", err)
	}

	now := m.now()
	status.NewMovementsToday, err = m.status.CountMovementsSince(ctx, workspaceID, startOfDay(now, m.loc))
	if err != nil {
		return status, fmt.Errorf("count movements: %w", err)
	}

	if m.schedule != nil {
		next := m.schedule.Next(now)
		if !next.IsZero() {
			status.NextScheduledRun = &next
		}
	}
	return status, nil
}

// Consultations returns the audit history of a process, newest first.
func (m *Monitor) Consultations(ctx context.Context, processID int64, limit int) ([]domain.ConsultationLog, error) {
	if _, err := m.processes.Process(ctx, processID); err != nil {
		return nil, fmt.Errorf("load process: %w", err)
	}
	entries, err := m.consultations.Consultations(ctx, processID, limit)
	if err != nil {
		return nil, fmt.Errorf("load consultations: %w", err)
	}
	return entries, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
