package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/metrics"
	"JurisMonitor/internal/npu"
	"JurisMonitor/internal/ports"
)

// FanoutDeps wires alert persistence and the outbound channels.
type FanoutDeps struct {
	Alerts     ports.AlertStore
	Recipients ports.RecipientDirectory
	Log        ports.NotificationLog
	Notifiers  []ports.Notifier
	AppURL     string
	Logger     *slog.Logger
	Now        func() time.Time
}

// Fanout turns new movements and reminders into in-app alerts plus at most
// one dispatch per external channel.
type Fanout struct {
	alerts     ports.AlertStore
	recipients ports.RecipientDirectory
	log        ports.NotificationLog
	notifiers  []ports.Notifier
	appURL     string
	logger     *slog.Logger
	now        func() time.Time
}

// NewFanout constructs the fan-out component.
func NewFanout(deps FanoutDeps) *Fanout {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Fanout{
		alerts:     deps.Alerts,
		recipients: deps.Recipients,
		log:        deps.Log,
		notifiers:  deps.Notifiers,
		appURL:     deps.AppURL,
		logger:     logger,
		now:        now,
	}
}

// MovementAlerts returns the builder that turns a stored movement of the
// process into its unread in-app alert.
func (f *Fanout) MovementAlerts(processID, workspaceID int64, number string) func(domain.Movement) domain.Alert {
	return func(mv domain.Movement) domain.Alert {
		return movementAlert(processID, workspaceID, number, mv)
	}
}

// Announce sends a single summary of the committed movements on each channel.
// Channel failures are logged, never returned.
func (f *Fanout) Announce(ctx context.Context, processID, workspaceID int64, number string, movements []domain.Movement) {
	if len(movements) == 0 {
		return
	}

	f.dispatch(ctx, domain.Notification{
		Kind:        domain.AlertMovement,
		WorkspaceID: workspaceID,
		ProcessID:   processID,
		NPU:         npu.Format(number),
		Subject:     movementSubject(number, len(movements)),
		Lines:       movementLines(movements),
		Link:        processLink(f.appURL, processID),
	})
}

// DispatchOnce delivers a time-based notification unless its marker was
// already recorded. The marker is written once the in-app alert is committed
// and the channels were attempted. It reports whether anything was sent.
func (f *Fanout) DispatchOnce(ctx context.Context, marker domain.NotificationMarker, alert domain.Alert, note domain.Notification) (bool, error) {
	if f.log != nil {
		sent, err := f.log.NotificationSent(ctx, marker)
		if err != nil {
			return false, fmt.Errorf("check notification log: %w", err)
		}
		if sent {
			return false, nil
		}
	}

	if _, err := f.alerts.CreateAlerts(ctx, []domain.Alert{alert}); err != nil {
		return false, fmt.Errorf("create alert: %w", err)
	}
	metrics.AlertsCreated.WithLabelValues(string(alert.Kind)).Inc()

	f.dispatch(ctx, note)

	if f.log != nil {
		if err := f.log.RecordNotification(ctx, marker, f.now()); err != nil {
			return true, fmt.Errorf("record notification: %w", err)
		}
	}
	return true, nil
}

func (f *Fanout) dispatch(ctx context.Context, note domain.Notification) {
	if len(f.notifiers) == 0 || f.recipients == nil {
		return
	}

	recipients, err := f.recipients.Recipients(ctx, note.WorkspaceID)
	if err != nil {
		f.logger.Warn("load recipients failed", "workspace", note.WorkspaceID, "error", err)
		return
	}

	for _, notifier := range f.notifiers {
		ch := notifier.Channel()
		targets := make([]domain.Recipient, 0, len(recipients))
		for _, r := range recipients {
			if r.Accepts(ch) {
				targets = append(targets, r)
			}
		}
		if len(targets) == 0 {
			metrics.Dispatches.WithLabelValues(string(ch), "skipped").Inc()
			continue
		}

		msg := note
		msg.Recipients = targets
		if err := notifier.Notify(ctx, msg); err != nil {
			metrics.Dispatches.WithLabelValues(string(ch), "failed").Inc()
			f.logger.Warn("notification dispatch failed",
				"channel", ch, "kind", note.Kind, "workspace", note.WorkspaceID, "error", err)
			continue
		}
		metrics.Dispatches.WithLabelValues(string(ch), "sent").Inc()
		f.logger.Info("notification dispatched",
			"channel", ch, "kind", note.Kind, "workspace", note.WorkspaceID, "recipients", len(targets))
	}
}
