package domain

import "time"

// Trigger tells how a run was started.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// RunOptions tune a single monitoring cycle.
type RunOptions struct {
	// RunID correlates logs; a new one is generated when empty.
	RunID            string
	MaxBatch         int
	Trigger          Trigger
	RespectFrequency bool
}

// ProcessResult is the per-process line in a run summary.
type ProcessResult struct {
	ProcessID      int64              `json:"process_id"`
	NPU            string             `json:"npu"`
	Tribunal       string             `json:"tribunal,omitempty"`
	Status         ConsultationStatus `json:"status"`
	MovementsFound int                `json:"movements_found"`
	MovementsNew   int                `json:"movements_new"`
	AlertsCreated  int                `json:"alerts_created"`
	Error          string             `json:"error,omitempty"`
	ResponseTimeMs int64              `json:"response_time_ms"`
}

// RunSummary reports the totals of one monitoring cycle.
type RunSummary struct {
	ID               string          `json:"id"`
	Trigger          Trigger         `json:"trigger"`
	StartedAt        time.Time       `json:"started_at"`
	FinishedAt       time.Time       `json:"finished_at"`
	Attempted        int             `json:"attempted"`
	WithNewMovements int             `json:"with_new_movements"`
	NewMovements     int             `json:"new_movements"`
	AlertsCreated    int             `json:"alerts_created"`
	Errors           int             `json:"errors"`
	DurationMs       int64           `json:"duration_ms"`
	Results          []ProcessResult `json:"results"`
}

// MonitoringStatus is the workspace-level monitoring dashboard.
type MonitoringStatus struct {
	WorkspaceID        int64      `json:"workspace_id"`
	LastRunAt          *time.Time `json:"last_run_at,omitempty"`
	ProcessesMonitored int        `json:"processes_monitored"`
	NewMovementsToday  int        `json:"new_movements_today"`
	NextScheduledRun   *time.Time `json:"next_scheduled_run,omitempty"`
}
