package domain

import "time"

// Process is a lawsuit tracked by a workspace, keyed by its NPU.
type Process struct {
	ID          int64
	WorkspaceID int64
	Number      string
	Title       string
	Tribunal    TribunalRef

	LastMovement   string
	LastMovementAt string
}

// TribunalRef holds the tribunal fields filled on first successful resolution.
type TribunalRef struct {
	Acronym string
	Name    string
	UF      string
}

// Resolved reports whether routing already ran for the process.
func (t TribunalRef) Resolved() bool {
	return t.Acronym != ""
}

// Frequency controls how often a scheduled run picks a process.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyManual Frequency = "manual"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyManual:
		return true
	default:
		return false
	}
}

// MonitorConfig is the one-per-process monitoring state.
type MonitorConfig struct {
	ProcessID      int64      `json:"process_id"`
	WorkspaceID    int64      `json:"workspace_id"`
	Enabled        bool       `json:"enabled"`
	Frequency      Frequency  `json:"frequency"`
	LastCheckedAt  *time.Time `json:"last_checked_at,omitempty"`
	TotalMovements int        `json:"total_movements"`
}

// WeeklyCutoff returns the midnight, in loc, six days before the day of at.
// A weekly config is due again once its last check happened before it, so
// the check time of day never pushes the next poll to a later run.
func WeeklyCutoff(at time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := at.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()-6, 0, 0, 0, 0, loc)
}

// CandidateFilter narrows candidate selection. Without Scheduled every enabled
// config is selected; otherwise manual configs and weekly configs checked at
// or after WeeklyCutoff are left out.
type CandidateFilter struct {
	Limit        int
	Scheduled    bool
	WeeklyCutoff time.Time
}

// MonitoredProcess is a candidate row for a monitoring run.
type MonitoredProcess struct {
	Process Process
	Config  MonitorConfig
}
