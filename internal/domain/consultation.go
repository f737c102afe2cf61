package domain

import "time"

// ConsultationStatus is the outcome stored in the audit log.
type ConsultationStatus string

const (
	ConsultationSuccess ConsultationStatus = "success"
	ConsultationError   ConsultationStatus = "error"
	ConsultationEmpty   ConsultationStatus = "empty"
)

// ConsultationLog is one append-only audit row per polling attempt.
type ConsultationLog struct {
	ID             int64              `json:"id"`
	WorkspaceID    int64              `json:"workspace_id"`
	ProcessID      int64              `json:"process_id"`
	NPU            string             `json:"npu"`
	Tribunal       string             `json:"tribunal"`
	Endpoint       string             `json:"endpoint"`
	Status         ConsultationStatus `json:"status"`
	MovementsFound int                `json:"movements_found"`
	MovementsNew   int                `json:"movements_new"`
	ErrorMessage   string             `json:"error_message,omitempty"`
	ResponseTimeMs int64              `json:"response_time_ms"`
	CreatedAt      time.Time          `json:"created_at"`
}
