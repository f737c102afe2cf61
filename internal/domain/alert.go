package domain

import "time"

// AlertKind classifies in-app alerts.
type AlertKind string

const (
	AlertMovement AlertKind = "movement"
	AlertDeadline AlertKind = "deadline"
	AlertSummary  AlertKind = "summary"
)

// Alert is an in-app notification shown to workspace members.
type Alert struct {
	ID          int64      `json:"id"`
	WorkspaceID int64      `json:"workspace_id"`
	ProcessID   *int64     `json:"process_id,omitempty"`
	MovementID  *int64     `json:"movement_id,omitempty"`
	Kind        AlertKind  `json:"kind"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Read        bool       `json:"read"`
	CreatedAt   time.Time  `json:"created_at"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}
