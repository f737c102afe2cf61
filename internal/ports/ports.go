package ports

import (
	"context"
	"time"

	"JurisMonitor/internal/domain"
)

// JudicialClient queries a tribunal for one process number.
type JudicialClient interface {
	Query(ctx context.Context, number, acronym string) (domain.QueryResult, error)
	Ready() error
}

// ProcessRepository reads processes and keeps their monitoring state.
type ProcessRepository interface {
	Process(ctx context.Context, id int64) (domain.Process, error)
	Candidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.MonitoredProcess, error)
	UpsertMonitorConfig(ctx context.Context, processID int64, frequency domain.Frequency) (domain.MonitorConfig, error)
	DeactivateMonitor(ctx context.Context, processID int64) error
	UpdateTribunal(ctx context.Context, processID int64, ref domain.TribunalRef) error
	UpdateLastMovement(ctx context.Context, processID int64, name, occurredAt string) error
	TouchMonitor(ctx context.Context, processID int64, at time.Time, newMovements int) error
}

// MovementStore persists movements with deduplication on (process, code, timestamp).
type MovementStore interface {
	SaveMovements(ctx context.Context, processID, workspaceID int64, records []domain.MovementRecord, alertFor func(domain.Movement) domain.Alert) (domain.SaveReport, error)
	MovementsCreatedBetween(ctx context.Context, workspaceID int64, from, to time.Time) ([]domain.Movement, error)
}

// AlertStore persists in-app alerts.
type AlertStore interface {
	CreateAlerts(ctx context.Context, alerts []domain.Alert) ([]domain.Alert, error)
	ListAlerts(ctx context.Context, workspaceID int64, unreadOnly bool, limit int) ([]domain.Alert, error)
	MarkAlertRead(ctx context.Context, workspaceID, alertID int64, at time.Time) error
}

// ConsultationLogger appends the per-attempt audit trail.
type ConsultationLogger interface {
	AppendConsultation(ctx context.Context, entry domain.ConsultationLog) error
	Consultations(ctx context.Context, processID int64, limit int) ([]domain.ConsultationLog, error)
}

// NotificationLog records time-based notifications already dispatched.
type NotificationLog interface {
	NotificationSent(ctx context.Context, marker domain.NotificationMarker) (bool, error)
	RecordNotification(ctx context.Context, marker domain.NotificationMarker, at time.Time) error
}

// RecipientDirectory lists workspace members for outbound channels.
type RecipientDirectory interface {
	Recipients(ctx context.Context, workspaceID int64) ([]domain.Recipient, error)
	Workspaces(ctx context.Context) ([]int64, error)
}

// DeadlineSource lists pending deadlines in a due-date window.
type DeadlineSource interface {
	PendingDeadlines(ctx context.Context, from, to time.Time) ([]domain.Deadline, error)
}

// StatusReader aggregates the monitoring dashboard of a workspace.
type StatusReader interface {
	LastRunAt(ctx context.Context, workspaceID int64) (*time.Time, error)
	CountMonitored(ctx context.Context, workspaceID int64) (int, error)
	CountMovementsSince(ctx context.Context, workspaceID int64, since time.Time) (int, error)
}

// Notifier delivers one notification on an external channel.
type Notifier interface {
	Channel() domain.Channel
	Notify(ctx context.Context, n domain.Notification) error
}

// Scheduler controls when monitoring cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
	Next(after time.Time) time.Time
}
