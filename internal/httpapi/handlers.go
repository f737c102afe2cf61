package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/infrastructure/storage"
	"JurisMonitor/internal/npu"
	"JurisMonitor/internal/tribunal"
	"JurisMonitor/internal/usecase"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type activateRequest struct {
	Frequency domain.Frequency `json:"frequency"`
}

type runAccepted struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

type tribunalResponse struct {
	NPU string `json:"npu"`
	tribunal.Info
	ResolvedUF string `json:"resolved_uf,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}

	cfg, err := s.monitoring.Activate(r.Context(), id, req.Frequency)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.monitoring.Deactivate(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConsultations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entries, err := s.monitoring.Consultations(r.Context(), id, queryLimit(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.ConsultationLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleRun executes a manual cycle. With async=1 it answers 202 and keeps
// running after the request ends.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	opts := domain.RunOptions{
		RunID:   uuid.NewString(),
		Trigger: domain.TriggerManual,
	}
	if raw := r.URL.Query().Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid max %q", raw))
			return
		}
		opts.MaxBatch = n
	}

	if !queryBool(r, "async") {
		summary, err := s.monitoring.RunCycle(r.Context(), opts)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
		return
	}

	if err := s.monitoring.Ready(); err != nil {
		s.fail(w, r, err)
		return
	}

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		if _, err := s.monitoring.RunCycle(s.background, opts); err != nil {
			s.logger.Error("background run failed", "run_id", opts.RunID, "error", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, runAccepted{RunID: opts.RunID, Status: "started"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ws, ok := pathID(w, r, "ws")
	if !ok {
		return
	}
	status, err := s.monitoring.Status(r.Context(), ws)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	ws, ok := pathID(w, r, "ws")
	if !ok {
		return
	}
	alerts, err := s.alerts.ListAlerts(r.Context(), ws, queryBool(r, "unread"), queryLimit(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ws, ok := pathID(w, r, "ws")
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.alerts.MarkAlertRead(r.Context(), ws, id, s.now()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTribunal(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "npu")
	code, err := npu.Parse(number)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	info, ok := s.router.Resolve(code)
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: %s", tribunal.ErrUnknownTribunal, code))
		return
	}

	resp := tribunalResponse{NPU: npu.Format(number), Info: info}
	if queryBool(r, "lookup") {
		if uf, found := s.router.ResolveWithState(r.Context(), npu.Digits(number), code); found {
			resp.ResolvedUF = uf
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidFrequency),
		errors.Is(err, npu.ErrInvalidFormat),
		errors.Is(err, tribunal.ErrUnknownTribunal):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	raw := chi.URLParam(r, key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid %s %q", key, raw))
		return 0, false
	}
	return id, true
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}
