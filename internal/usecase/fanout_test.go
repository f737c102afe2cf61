package usecase

import (
	"context"
	"testing"

	"JurisMonitor/internal/domain"
)

func TestDispatchOnceIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	seedRecipient(t, f.store, domain.Recipient{WorkspaceID: 3, Name: "Ana", Email: "ana@example.com", EmailAlerts: true})

	marker := domain.NotificationMarker{WorkspaceID: 3, Kind: "deadline_reminder", EntityID: 9, Marker: "1d"}
	alert := domain.Alert{WorkspaceID: 3, Kind: domain.AlertDeadline, Title: "Prazo vence amanhã: Recurso"}
	note := domain.Notification{Kind: domain.AlertDeadline, WorkspaceID: 3, Subject: alert.Title}

	sent, err := f.fanout.DispatchOnce(ctx, marker, alert, note)
	if err != nil || !sent {
		t.Fatalf("first dispatch: sent=%v err=%v", sent, err)
	}
	sent, err = f.fanout.DispatchOnce(ctx, marker, alert, note)
	if err != nil || sent {
		t.Fatalf("second dispatch: sent=%v err=%v", sent, err)
	}

	other := marker
	other.Marker = "0d"
	if sent, err := f.fanout.DispatchOnce(ctx, other, alert, note); err != nil || !sent {
		t.Fatalf("different marker must dispatch: sent=%v err=%v", sent, err)
	}

	if got := len(f.email.notifications()); got != 2 {
		t.Fatalf("expected 2 emails, got %d", got)
	}
	if got := len(f.whatsapp.notifications()); got != 0 {
		t.Fatalf("no whatsapp recipients, got %d dispatches", got)
	}
}

func TestAnnounceWithoutMovementsIsNoop(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seedRecipient(t, f.store, domain.Recipient{WorkspaceID: 1, Name: "Ana", Email: "ana@example.com", EmailAlerts: true})
	f.fanout.Announce(context.Background(), 1, 1, testNPU, nil)
	if len(f.email.notifications()) != 0 {
		t.Fatal("no dispatch expected")
	}
}

func TestMovementAlertsBuilder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	build := f.fanout.MovementAlerts(7, 3, testNPU)
	a := build(domain.Movement{ID: 11, Name: "Despacho", OccurredAt: "2024-02-01 10:00:00"})
	if a.WorkspaceID != 3 || a.Kind != domain.AlertMovement || *a.ProcessID != 7 || *a.MovementID != 11 {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if a.Title != "Nova movimentação - 248260100" || a.Body != "Despacho\nData: 2024-02-01 10:00:00" {
		t.Fatalf("unexpected alert text: %+v", a)
	}
}

func TestMessages(t *testing.T) {
	t.Parallel()

	if got := displayDate("2024-03-05 13:00:00"); got != "05/03/2024 13:00" {
		t.Fatalf("displayDate = %q", got)
	}
	if got := displayDate("garbage"); got != "garbage" {
		t.Fatalf("displayDate kept = %q", got)
	}
	if got := movementSubject(testNPU, 1); got != "Nova movimentação - 248260100" {
		t.Fatalf("movementSubject = %q", got)
	}
	if got := processLink("https://app.example.com/", 7); got != "https://app.example.com/processos/7" {
		t.Fatalf("processLink = %q", got)
	}
	if got := processLink("", 7); got != "" {
		t.Fatalf("processLink without base = %q", got)
	}
}
