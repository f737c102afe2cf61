package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/infrastructure/storage"
	"JurisMonitor/internal/ports"
	"JurisMonitor/internal/tribunal"
)

const testNPU = "00000012320248260100"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "monitor.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedMonitored(t *testing.T, s *storage.Store, workspaceID int64, number string, freq domain.Frequency) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := s.InsertProcess(ctx, workspaceID, number, "Ação "+number)
	if err != nil {
		t.Fatalf("insert process: %v", err)
	}
	if _, err := s.UpsertMonitorConfig(ctx, id, freq); err != nil {
		t.Fatalf("upsert config: %v", err)
	}
	return id
}

func seedRecipient(t *testing.T, s *storage.Store, r domain.Recipient) {
	t.Helper()
	if _, err := s.InsertRecipient(context.Background(), r); err != nil {
		t.Fatalf("insert recipient: %v", err)
	}
}

type fakeClient struct {
	mu        sync.Mutex
	notReady  error
	responses map[string]domain.QueryResult
	failures  map[string]error
	calls     []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{responses: map[string]domain.QueryResult{}, failures: map[string]error{}}
}

func (c *fakeClient) Ready() error { return c.notReady }

func (c *fakeClient) Query(_ context.Context, number, acronym string) (domain.QueryResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, number)

	endpoint, _ := tribunal.Endpoint(acronym)
	if err, ok := c.failures[number]; ok {
		return domain.QueryResult{Tribunal: acronym, Endpoint: endpoint, ElapsedMs: 3}, err
	}
	res, ok := c.responses[number]
	if !ok {
		return domain.QueryResult{Tribunal: acronym, Endpoint: endpoint, ElapsedMs: 3}, nil
	}
	res.Tribunal, res.Endpoint, res.ElapsedMs = acronym, endpoint, 7
	return res, nil
}

func (c *fakeClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type fakeNotifier struct {
	mu      sync.Mutex
	channel domain.Channel
	err     error
	sent    []domain.Notification
}

func (n *fakeNotifier) Channel() domain.Channel { return n.channel }

func (n *fakeNotifier) Notify(_ context.Context, note domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
	return n.err
}

func (n *fakeNotifier) notifications() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.sent...)
}

type fixture struct {
	store    *storage.Store
	client   *fakeClient
	email    *fakeNotifier
	whatsapp *fakeNotifier
	fanout   *Fanout
	monitor  *Monitor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    newStore(t),
		client:   newFakeClient(),
		email:    &fakeNotifier{channel: domain.ChannelEmail},
		whatsapp: &fakeNotifier{channel: domain.ChannelWhatsApp},
	}
	f.fanout = NewFanout(FanoutDeps{
		Alerts:     f.store,
		Recipients: f.store,
		Log:        f.store,
		Notifiers:  []ports.Notifier{f.email, f.whatsapp},
		AppURL:     "https://app.example.com",
		Logger:     quietLogger(),
	})
	f.monitor = NewMonitor(MonitorDeps{
		Processes:     f.store,
		Movements:     f.store,
		Consultations: f.store,
		Status:        f.store,
		Client:        f.client,
		Fanout:        f.fanout,
		Location:      time.UTC,
		Logger:        quietLogger(),
	})
	return f
}

var errBoom = errors.New("boom")
