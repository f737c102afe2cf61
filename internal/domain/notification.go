package domain

import "time"

// Channel is an outbound delivery channel.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// Recipient is a workspace member that can receive outbound notifications.
type Recipient struct {
	ID             int64
	WorkspaceID    int64
	Name           string
	Email          string
	Phone          string
	EmailAlerts    bool
	WhatsAppAlerts bool
}

// Accepts reports whether the recipient opted in and is reachable on ch.
func (r Recipient) Accepts(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return r.EmailAlerts && r.Email != ""
	case ChannelWhatsApp:
		return r.WhatsAppAlerts && r.Phone != ""
	default:
		return false
	}
}

// Notification is a single batched outbound message.
type Notification struct {
	Kind        AlertKind
	WorkspaceID int64
	ProcessID   int64
	NPU         string
	Subject     string
	Lines       []string
	Link        string
	Recipients  []Recipient
}

// NotificationMarker identifies a time-based notification already sent.
type NotificationMarker struct {
	WorkspaceID int64
	Kind        string
	EntityID    int64
	Marker      string
}

// Deadline is a workspace deadline read for reminders.
type Deadline struct {
	ID          int64
	WorkspaceID int64
	ProcessID   *int64
	ProcessNPU  string
	Title       string
	DueAt       time.Time
	Status      string
}
