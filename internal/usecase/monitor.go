package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/metrics"
	"JurisMonitor/internal/ports"
	"JurisMonitor/internal/tribunal"
)

// ErrNotConfigured aborts a run when the judicial API has no credentials.
var ErrNotConfigured = errors.New("monitoring: judicial api not configured")

// Outcome is the terminal state of one process within a run.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeEmpty
	OutcomeError
)

func (o Outcome) status() domain.ConsultationStatus {
	switch o {
	case OutcomeSuccess:
		return domain.ConsultationSuccess
	case OutcomeEmpty:
		return domain.ConsultationEmpty
	default:
		return domain.ConsultationError
	}
}

// MonitorDeps wires the driven adapters into the monitoring orchestrator.
type MonitorDeps struct {
	Processes     ports.ProcessRepository
	Movements     ports.MovementStore
	Consultations ports.ConsultationLogger
	Status        ports.StatusReader
	Client        ports.JudicialClient
	Router        *tribunal.Router
	Fanout        *Fanout
	Schedule      ports.Scheduler
	// RequestDelay is the minimum gap between two judicial API calls.
	RequestDelay time.Duration
	Location     *time.Location
	Logger       *slog.Logger
	Now          func() time.Time
}

// Monitor polls monitored processes, stores new movements and fans out alerts.
// Manual and scheduled runs share one Monitor and therefore one pacing limiter.
type Monitor struct {
	processes     ports.ProcessRepository
	movements     ports.MovementStore
	consultations ports.ConsultationLogger
	status        ports.StatusReader
	client        ports.JudicialClient
	router        *tribunal.Router
	fanout        *Fanout
	schedule      ports.Scheduler
	limiter       *rate.Limiter
	loc           *time.Location
	logger        *slog.Logger
	now           func() time.Time
}

// NewMonitor constructs the orchestrator.
func NewMonitor(deps MonitorDeps) *Monitor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	router := deps.Router
	if router == nil {
		router = tribunal.NewRouter(nil)
	}

	limit := rate.Inf
	if deps.RequestDelay > 0 {
		limit = rate.Every(deps.RequestDelay)
	}

	return &Monitor{
		processes:     deps.Processes,
		movements:     deps.Movements,
		consultations: deps.Consultations,
		status:        deps.Status,
		client:        deps.Client,
		router:        router,
		fanout:        deps.Fanout,
		schedule:      deps.Schedule,
		limiter:       rate.NewLimiter(limit, 1),
		loc:           loc,
		logger:        logger,
		now:           now,
	}
}

// Ready reports ErrNotConfigured when the judicial API cannot be called.
func (m *Monitor) Ready() error {
	if err := m.client.Ready(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	return nil
}

type processReport struct {
	outcome Outcome
	result  domain.ProcessResult
}

// RunCycle processes the candidates one at a time, oldest check first. A
// failing process is recorded and skipped; only setup failures abort the run.
func (m *Monitor) RunCycle(ctx context.Context, opts domain.RunOptions) (summary domain.RunSummary, err error) {
	if opts.Trigger == "" {
		opts.Trigger = domain.TriggerManual
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	summary = domain.RunSummary{
		ID:        opts.RunID,
		Trigger:   opts.Trigger,
		StartedAt: m.now(),
		Results:   []domain.ProcessResult{},
	}
	logger := m.logger.With("run_id", opts.RunID, "trigger", opts.Trigger)

	defer func() {
		summary.FinishedAt = m.now()
		summary.DurationMs = summary.FinishedAt.Sub(summary.StartedAt).Milliseconds()
		metrics.RunDuration.WithLabelValues(string(opts.Trigger)).Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	}()

	if err := m.Ready(); err != nil {
		metrics.RunsTotal.WithLabelValues(string(opts.Trigger), "not_configured").Inc()
		return summary, err
	}

	filter := domain.CandidateFilter{Limit: opts.MaxBatch}
	if opts.RespectFrequency {
		filter.Scheduled = true
		filter.WeeklyCutoff = domain.WeeklyCutoff(summary.StartedAt, m.loc)
	}

	candidates, err := m.processes.Candidates(ctx, filter)
	if err != nil {
		metrics.RunsTotal.WithLabelValues(string(opts.Trigger), "failed").Inc()
		return summary, fmt.Errorf("load candidates: %w", err)
	}

	logger.Info("monitoring run started", "candidates", len(candidates), "max_batch", opts.MaxBatch)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			metrics.RunsTotal.WithLabelValues(string(opts.Trigger), "canceled").Inc()
			return summary, fmt.Errorf("run canceled: %w", err)
		}

		report := m.processOne(ctx, logger, candidate)

		summary.Attempted++
		summary.NewMovements += report.result.MovementsNew
		summary.AlertsCreated += report.result.AlertsCreated
		switch report.outcome {
		case OutcomeSuccess:
			if report.result.MovementsNew > 0 {
				summary.WithNewMovements++
			}
		case OutcomeEmpty:
		case OutcomeError:
			summary.Errors++
		}
		summary.Results = append(summary.Results, report.result)
	}

	metrics.RunsTotal.WithLabelValues(string(opts.Trigger), "completed").Inc()
	logger.Info("monitoring run finished",
		"attempted", summary.Attempted,
		"with_new_movements", summary.WithNewMovements,
		"new_movements", summary.NewMovements,
		"alerts", summary.AlertsCreated,
		"errors", summary.Errors,
	)
	return summary, nil
}

func (m *Monitor) processOne(ctx context.Context, logger *slog.Logger, candidate domain.MonitoredProcess) processReport {
	p := candidate.Process
	report := processReport{result: domain.ProcessResult{ProcessID: p.ID, NPU: p.Number, Tribunal: p.Tribunal.Acronym}}
	logger = logger.With("process_id", p.ID, "npu", p.Number)

	info, err := m.router.ResolveNPU(p.Number)
	if err != nil {
		return m.finish(ctx, logger, p, report, OutcomeError, "", fmt.Errorf("resolve tribunal: %w", err))
	}
	report.result.Tribunal = info.Acronym

	if err := m.limiter.Wait(ctx); err != nil {
		return m.finish(ctx, logger, p, report, OutcomeError, info.Endpoint, fmt.Errorf("pacing: %w", err))
	}

	result, err := m.client.Query(ctx, p.Number, info.Acronym)
	report.result.ResponseTimeMs = result.ElapsedMs
	if err != nil {
		return m.finish(ctx, logger, p, report, OutcomeError, info.Endpoint, fmt.Errorf("query %s: %w", info.Acronym, err))
	}

	if !p.Tribunal.Resolved() {
		m.storeTribunal(ctx, logger, p.ID, info, result)
	}

	if !result.Found {
		return m.finish(ctx, logger, p, report, OutcomeEmpty, result.Endpoint, nil)
	}
	report.result.MovementsFound = len(result.Movements)

	var alertFor func(domain.Movement) domain.Alert
	if m.fanout != nil {
		alertFor = m.fanout.MovementAlerts(p.ID, p.WorkspaceID, p.Number)
	}

	saved, err := m.movements.SaveMovements(ctx, p.ID, p.WorkspaceID, result.Movements, alertFor)
	if err != nil {
		return m.finish(ctx, logger, p, report, OutcomeError, result.Endpoint, fmt.Errorf("save movements: %w", err))
	}
	report.result.MovementsNew = saved.Inserted
	report.result.AlertsCreated = len(saved.Alerts)
	metrics.NewMovements.Add(float64(saved.Inserted))
	metrics.AlertsCreated.WithLabelValues(string(domain.AlertMovement)).Add(float64(len(saved.Alerts)))

	if saved.Inserted > 0 {
		newest := saved.NewRecords[0]
		if err := m.processes.UpdateLastMovement(ctx, p.ID, newest.Name, newest.OccurredAt); err != nil {
			logger.Warn("update last movement failed", "error", err)
		}

		if m.fanout != nil {
			m.fanout.Announce(ctx, p.ID, p.WorkspaceID, p.Number, saved.NewRecords)
		}
	}

	return m.finish(ctx, logger, p, report, OutcomeSuccess, result.Endpoint, nil)
}

// finish advances the rotation timestamp and appends the audit row for every outcome.
func (m *Monitor) finish(ctx context.Context, logger *slog.Logger, p domain.Process, report processReport, outcome Outcome, endpoint string, cause error) processReport {
	report.outcome = outcome
	report.result.Status = outcome.status()
	if cause != nil {
		report.result.Error = cause.Error()
		logger.Warn("process poll failed", "error", cause)
	} else {
		logger.Debug("process polled", "status", report.result.Status,
			"found", report.result.MovementsFound, "new", report.result.MovementsNew)
	}

	now := m.now()
	if err := m.processes.TouchMonitor(ctx, p.ID, now, report.result.MovementsNew); err != nil {
		logger.Warn("touch monitor config failed", "error", err)
	}

	entry := domain.ConsultationLog{
		WorkspaceID:    p.WorkspaceID,
		ProcessID:      p.ID,
		NPU:            p.Number,
		Tribunal:       report.result.Tribunal,
		Endpoint:       endpoint,
		Status:         report.result.Status,
		MovementsFound: report.result.MovementsFound,
		MovementsNew:   report.result.MovementsNew,
		ErrorMessage:   report.result.Error,
		ResponseTimeMs: report.result.ResponseTimeMs,
		CreatedAt:      now,
	}
	if err := m.consultations.AppendConsultation(ctx, entry); err != nil {
		logger.Warn("append consultation log failed", "error", err)
	}
	metrics.Consultations.WithLabelValues(report.result.Tribunal, string(entry.Status)).Inc()

	return report
}

func (m *Monitor) storeTribunal(ctx context.Context, logger *slog.Logger, processID int64, info tribunal.Info, result domain.QueryResult) {
	ref := domain.TribunalRef{Acronym: info.Acronym, Name: info.Name, UF: info.UF}
	if ref.UF == "" && info.Justice == tribunal.JusticeFederal && result.Found {
		if uf, ok := tribunal.StateFromJudgingBody(result.JudgingBody); ok {
			ref.UF = uf
		}
	}
	if err := m.processes.UpdateTribunal(ctx, processID, ref); err != nil {
		logger.Warn("store tribunal failed", "error", err)
	}
}
