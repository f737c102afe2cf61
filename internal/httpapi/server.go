// Package httpapi exposes monitoring operations over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/ports"
	"JurisMonitor/internal/tribunal"
)

// Monitoring is the use-case surface the handlers drive.
type Monitoring interface {
	Ready() error
	Activate(ctx context.Context, processID int64, frequency domain.Frequency) (domain.MonitorConfig, error)
	Deactivate(ctx context.Context, processID int64) error
	RunCycle(ctx context.Context, opts domain.RunOptions) (domain.RunSummary, error)
	Status(ctx context.Context, workspaceID int64) (domain.MonitoringStatus, error)
	Consultations(ctx context.Context, processID int64, limit int) ([]domain.ConsultationLog, error)
}

// Deps wires the handlers.
type Deps struct {
	Monitoring Monitoring
	Alerts     ports.AlertStore
	Router     *tribunal.Router
	Health     func(ctx context.Context) error
	// Background outlives requests; asynchronous runs use it.
	Background context.Context
	Logger     *slog.Logger
	Now        func() time.Time
}

// Server holds the HTTP handlers.
type Server struct {
	monitoring Monitoring
	alerts     ports.AlertStore
	router     *tribunal.Router
	health     func(ctx context.Context) error
	background context.Context
	logger     *slog.Logger
	now        func() time.Time

	runs sync.WaitGroup
}

// New builds the server.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	bg := deps.Background
	if bg == nil {
		bg = context.Background()
	}
	router := deps.Router
	if router == nil {
		router = tribunal.NewRouter(nil)
	}
	return &Server{
		monitoring: deps.Monitoring,
		alerts:     deps.Alerts,
		router:     router,
		health:     deps.Health,
		background: bg,
		logger:     logger,
		now:        now,
	}
}

// Handler returns the chi router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Put("/processes/{id}/monitoring", s.handleActivate)
		r.Delete("/processes/{id}/monitoring", s.handleDeactivate)
		r.Get("/processes/{id}/consultations", s.handleConsultations)
		r.Post("/monitoring/runs", s.handleRun)
		r.Get("/workspaces/{ws}/monitoring/status", s.handleStatus)
		r.Get("/workspaces/{ws}/alerts", s.handleAlerts)
		r.Post("/workspaces/{ws}/alerts/{id}/read", s.handleMarkRead)
		r.Get("/tribunals/{npu}", s.handleTribunal)
	})
	return r
}

// Wait blocks until asynchronous runs started by this server finish.
func (s *Server) Wait() {
	s.runs.Wait()
}
