package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/npu"
	"JurisMonitor/internal/ports"
)

// Notification log kinds.
const (
	markerDeadline = "deadline_reminder"
	markerSummary  = "daily_summary"
)

// RemindersDeps wires the time-based notifications.
type RemindersDeps struct {
	Deadlines  ports.DeadlineSource
	Movements  ports.MovementStore
	Recipients ports.RecipientDirectory
	Fanout     *Fanout
	// DaysBefore lists how many days ahead of a deadline reminders go out.
	DaysBefore []int
	AppURL     string
	Location   *time.Location
	Logger     *slog.Logger
}

// Reminders sends deadline reminders and the daily movement summary, each
// at most once per logical period.
type Reminders struct {
	deadlines  ports.DeadlineSource
	movements  ports.MovementStore
	recipients ports.RecipientDirectory
	fanout     *Fanout
	daysBefore map[int]bool
	maxDays    int
	appURL     string
	loc        *time.Location
	logger     *slog.Logger
}

// NewReminders constructs the reminder component.
func NewReminders(deps RemindersDeps) *Reminders {
	days := deps.DaysBefore
	if len(days) == 0 {
		days = []int{3, 1, 0}
	}
	set := make(map[int]bool, len(days))
	maxDays := 0
	for _, d := range days {
		if d < 0 {
			continue
		}
		set[d] = true
		if d > maxDays {
			maxDays = d
		}
	}

	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reminders{
		deadlines:  deps.Deadlines,
		movements:  deps.Movements,
		recipients: deps.Recipients,
		fanout:     deps.Fanout,
		daysBefore: set,
		maxDays:    maxDays,
		appURL:     deps.AppURL,
		loc:        loc,
		logger:     logger,
	}
}

// Run executes both reminder kinds and joins their errors.
func (r *Reminders) Run(ctx context.Context, now time.Time) error {
	sent, errDeadlines := r.DeadlineReminders(ctx, now)
	summaries, errSummary := r.DailySummary(ctx, now)
	r.logger.Info("reminders processed", "deadline_reminders", sent, "daily_summaries", summaries)
	return errors.Join(errDeadlines, errSummary)
}

// DeadlineReminders notifies pending deadlines due in one of the configured
// day offsets. The marker is the offset, so each deadline gets each reminder once.
func (r *Reminders) DeadlineReminders(ctx context.Context, now time.Time) (int, error) {
	if r.deadlines == nil || r.fanout == nil {
		return 0, nil
	}

	today := startOfDay(now, r.loc)
	deadlines, err := r.deadlines.PendingDeadlines(ctx, today, today.AddDate(0, 0, r.maxDays))
	if err != nil {
		return 0, fmt.Errorf("load deadlines: %w", err)
	}

	sent := 0
	var errs []error
	for _, d := range deadlines {
		days := daysBetween(today, d.DueAt)
		if !r.daysBefore[days] {
			continue
		}

		marker := domain.NotificationMarker{
			WorkspaceID: d.WorkspaceID,
			Kind:        markerDeadline,
			EntityID:    d.ID,
			Marker:      fmt.Sprintf("%dd", days),
		}
		alert := domain.Alert{
			WorkspaceID: d.WorkspaceID,
			ProcessID:   d.ProcessID,
			Kind:        domain.AlertDeadline,
			Title:       deadlineTitle(d, days),
			Body:        deadlineBody(d),
		}
		note := domain.Notification{
			Kind:        domain.AlertDeadline,
			WorkspaceID: d.WorkspaceID,
			Subject:     alert.Title,
			Lines:       []string{fmt.Sprintf("%s - %s", d.Title, d.DueAt.Format("02/01/2006"))},
		}
		if d.ProcessNPU != "" {
			note.NPU = npu.Format(d.ProcessNPU)
		}
		if d.ProcessID != nil {
			note.ProcessID = *d.ProcessID
			note.Link = processLink(r.appURL, *d.ProcessID)
		}

		ok, err := r.fanout.DispatchOnce(ctx, marker, alert, note)
		if err != nil {
			errs = append(errs, fmt.Errorf("deadline %d: %w", d.ID, err))
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, errors.Join(errs...)
}

// DailySummary sends one summary per workspace for the previous calendar
// day, listing the movements recorded between its midnights. Only closed
// days are summarized, so a movement saved after a summary already went out
// lands in the next one.
func (r *Reminders) DailySummary(ctx context.Context, now time.Time) (int, error) {
	if r.recipients == nil || r.movements == nil || r.fanout == nil {
		return 0, nil
	}

	workspaces, err := r.recipients.Workspaces(ctx)
	if err != nil {
		return 0, fmt.Errorf("load workspaces: %w", err)
	}

	today := startOfDay(now, r.loc)
	day := today.AddDate(0, 0, -1)
	sent := 0
	var errs []error
	for _, ws := range workspaces {
		movements, err := r.movements.MovementsCreatedBetween(ctx, ws, day, today)
		if err != nil {
			errs = append(errs, fmt.Errorf("workspace %d: %w", ws, err))
			continue
		}
		if len(movements) == 0 {
			continue
		}

		title := summaryTitle(day, len(movements))
		marker := domain.NotificationMarker{
			WorkspaceID: ws,
			Kind:        markerSummary,
			EntityID:    ws,
			Marker:      day.Format("2006-01-02"),
		}
		alert := domain.Alert{
			WorkspaceID: ws,
			Kind:        domain.AlertSummary,
			Title:       title,
			Body:        fmt.Sprintf("%d movimentações registradas em %s", len(movements), day.Format("02/01/2006")),
		}
		note := domain.Notification{
			Kind:        domain.AlertSummary,
			WorkspaceID: ws,
			Subject:     title,
			Lines:       summaryLines(movements),
		}
		if r.appURL != "" {
			note.Link = r.appURL
		}

		ok, err := r.fanout.DispatchOnce(ctx, marker, alert, note)
		if err != nil {
			errs = append(errs, fmt.Errorf("workspace %d summary: %w", ws, err))
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, errors.Join(errs...)
}

// daysBetween counts calendar days from today to the due date.
func daysBetween(today, due time.Time) int {
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, today.Location())
	return int(math.Round(dueDay.Sub(today).Hours() / 24))
}
