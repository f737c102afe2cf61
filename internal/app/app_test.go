package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"JurisMonitor/internal/config"
	"JurisMonitor/internal/usecase"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(`
database:
  dsn: ` + filepath.Join(t.TempDir(), "app.db") + `
scheduler:
  times: ["08:00"]
  timezone: UTC
http:
  addr: 127.0.0.1:0
`))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnceWithoutCredentials(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	application, err := New(ctx, testConfig(t), quiet())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = application.Close() })

	if _, err := application.RunOnce(ctx, 10); !errors.Is(err, usecase.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	application, err := New(ctx, testConfig(t), quiet())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = application.Close() })

	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}

func TestBuildNotifiers(t *testing.T) {
	t.Parallel()

	if got := buildNotifiers(config.NotificationConfig{}, quiet()); len(got) != 0 {
		t.Fatalf("expected no notifiers, got %d", len(got))
	}

	cfg := config.NotificationConfig{
		Email:    config.EmailConfig{Host: "smtp.example.com", From: "alertas@example.com"},
		WhatsApp: config.WhatsAppConfig{BaseURL: "https://evo.example.com", APIKey: "k", Instance: "escritorio"},
	}
	got := buildNotifiers(cfg, quiet())
	if len(got) != 2 || got[0].Channel() != "email" || got[1].Channel() != "whatsapp" {
		t.Fatalf("unexpected notifiers: %v", got)
	}
}
