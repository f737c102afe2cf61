package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/ports"
)

var (
	_ ports.ProcessRepository = (*Store)(nil)
	_ ports.MovementStore     = (*Store)(nil)
)

var processColumns = []string{
	"p.id",
	"p.workspace_id",
	"p.numero_processo",
	"p.titulo",
	"COALESCE(p.tribunal_sigla, '')",
	"COALESCE(p.tribunal_nome, '')",
	"COALESCE(p.uf, '')",
	"COALESCE(p.ultima_movimentacao, '')",
	"COALESCE(p.data_ultima_movimentacao, '')",
}

var configColumns = []string{
	"c.processo_id",
	"c.workspace_id",
	"c.ativo",
	"c.frequencia",
	"c.ultima_verificacao",
	"c.total_movimentacoes",
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProcess(p *domain.Process) []any {
	return []any{
		&p.ID, &p.WorkspaceID, &p.Number, &p.Title,
		&p.Tribunal.Acronym, &p.Tribunal.Name, &p.Tribunal.UF,
		&p.LastMovement, &p.LastMovementAt,
	}
}

// InsertProcess registers a process row. Processes are owned by the case
// management side; the monitoring core only needs this to seed data.
func (s *Store) InsertProcess(ctx context.Context, workspaceID int64, number, title string) (int64, error) {
	query, args, err := s.sb.Insert("processos").
		Columns("workspace_id", "numero_processo", "titulo", "created_at").
		Values(workspaceID, number, title, s.stamp(s.now())).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert process: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert process: %w", err)
	}
	return id, nil
}

// Process loads one process row.
func (s *Store) Process(ctx context.Context, id int64) (domain.Process, error) {
	query, args, err := s.sb.Select(processColumns...).
		From("processos p").
		Where(sq.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return domain.Process{}, fmt.Errorf("build select process: %w", err)
	}

	var p domain.Process
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(scanProcess(&p)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Process{}, fmt.Errorf("process %d: %w", id, ErrNotFound)
		}
		return domain.Process{}, fmt.Errorf("select process: %w", err)
	}
	return p, nil
}

// Candidates returns enabled configs, never-checked first, then oldest check.
func (s *Store) Candidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.MonitoredProcess, error) {
	q := s.sb.Select(processColumns...).
		Columns(configColumns...).
		From("processo_monitor_config c").
		Join("processos p ON p.id = c.processo_id").
		Where(sq.Eq{"c.ativo": true}).
		OrderBy("c.ultima_verificacao ASC NULLS FIRST", "c.processo_id ASC")

	if filter.Scheduled {
		q = q.Where(sq.NotEq{"c.frequencia": string(domain.FrequencyManual)}).
			Where(sq.Or{
				sq.NotEq{"c.frequencia": string(domain.FrequencyWeekly)},
				sq.Eq{"c.ultima_verificacao": nil},
				sq.Lt{"c.ultima_verificacao": s.stamp(filter.WeeklyCutoff)},
			})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build candidates: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}

	var out []domain.MonitoredProcess
	for rows.Next() {
		var (
			mp      domain.MonitoredProcess
			checked nullTime
			freq    string
		)
		dest := append(scanProcess(&mp.Process),
			&mp.Config.ProcessID, &mp.Config.WorkspaceID, &mp.Config.Enabled,
			&freq, &checked, &mp.Config.TotalMovements)
		if err := rows.Scan(dest...); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		mp.Config.Frequency = domain.Frequency(freq)
		mp.Config.LastCheckedAt = checked.ptr()
		out = append(out, mp)
	}

	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close rows: %w", err)
	}

	return out, nil
}

// UpsertMonitorConfig enables monitoring for a process, creating the config
// on first activation.
func (s *Store) UpsertMonitorConfig(ctx context.Context, processID int64, frequency domain.Frequency) (domain.MonitorConfig, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.MonitorConfig{}, fmt.Errorf("begin tx: %w", err)
	}

	query, args, err := s.sb.Select("workspace_id").From("processos").Where(sq.Eq{"id": processID}).ToSql()
	if err != nil {
		return domain.MonitorConfig{}, rollback(tx, fmt.Errorf("build select workspace: %w", err))
	}
	var workspaceID int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&workspaceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MonitorConfig{}, rollback(tx, fmt.Errorf("process %d: %w", processID, ErrNotFound))
		}
		return domain.MonitorConfig{}, rollback(tx, fmt.Errorf("select workspace: %w", err))
	}

	now := s.stamp(s.now())
	query, args, err = s.sb.Insert("processo_monitor_config").
		Columns("processo_id", "workspace_id", "ativo", "frequencia", "created_at", "updated_at").
		Values(processID, workspaceID, true, string(frequency), now, now).
		Suffix("ON CONFLICT (processo_id) DO UPDATE SET ativo = excluded.ativo, frequencia = excluded.frequencia, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return domain.MonitorConfig{}, rollback(tx, fmt.Errorf("build upsert config: %w", err))
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return domain.MonitorConfig{}, rollback(tx, fmt.Errorf("upsert config: %w", err))
	}

	cfg, err := s.monitorConfig(ctx, tx, processID)
	if err != nil {
		return domain.MonitorConfig{}, rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.MonitorConfig{}, fmt.Errorf("commit config: %w", err)
	}
	return cfg, nil
}

// MonitorConfig loads the config of a process.
func (s *Store) MonitorConfig(ctx context.Context, processID int64) (domain.MonitorConfig, error) {
	return s.monitorConfig(ctx, s.db, processID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) monitorConfig(ctx context.Context, db queryRower, processID int64) (domain.MonitorConfig, error) {
	query, args, err := s.sb.Select(configColumns...).
		From("processo_monitor_config c").
		Where(sq.Eq{"c.processo_id": processID}).
		ToSql()
	if err != nil {
		return domain.MonitorConfig{}, fmt.Errorf("build select config: %w", err)
	}

	var (
		cfg     domain.MonitorConfig
		checked nullTime
		freq    string
	)
	err = db.QueryRowContext(ctx, query, args...).Scan(
		&cfg.ProcessID, &cfg.WorkspaceID, &cfg.Enabled, &freq, &checked, &cfg.TotalMovements,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MonitorConfig{}, fmt.Errorf("monitor config %d: %w", processID, ErrNotFound)
		}
		return domain.MonitorConfig{}, fmt.Errorf("select config: %w", err)
	}
	cfg.Frequency = domain.Frequency(freq)
	cfg.LastCheckedAt = checked.ptr()
	return cfg, nil
}

// DeactivateMonitor disables monitoring; history is kept.
func (s *Store) DeactivateMonitor(ctx context.Context, processID int64) error {
	return s.execOne(ctx, s.sb.Update("processo_monitor_config").
		Set("ativo", false).
		Set("updated_at", s.stamp(s.now())).
		Where(sq.Eq{"processo_id": processID}),
		fmt.Sprintf("monitor config %d", processID))
}

// UpdateTribunal stores the resolved tribunal on the process.
func (s *Store) UpdateTribunal(ctx context.Context, processID int64, ref domain.TribunalRef) error {
	return s.execOne(ctx, s.sb.Update("processos").
		Set("tribunal_sigla", ref.Acronym).
		Set("tribunal_nome", ref.Name).
		Set("uf", ref.UF).
		Where(sq.Eq{"id": processID}),
		fmt.Sprintf("process %d", processID))
}

// UpdateLastMovement mirrors the newest movement onto the process.
func (s *Store) UpdateLastMovement(ctx context.Context, processID int64, name, occurredAt string) error {
	return s.execOne(ctx, s.sb.Update("processos").
		Set("ultima_movimentacao", name).
		Set("data_ultima_movimentacao", occurredAt).
		Where(sq.Eq{"id": processID}),
		fmt.Sprintf("process %d", processID))
}

// TouchMonitor advances the rotation timestamp and the movement counter.
func (s *Store) TouchMonitor(ctx context.Context, processID int64, at time.Time, newMovements int) error {
	stamp := s.stamp(at)
	return s.execOne(ctx, s.sb.Update("processo_monitor_config").
		Set("ultima_verificacao", stamp).
		Set("total_movimentacoes", sq.Expr("total_movimentacoes + ?", newMovements)).
		Set("updated_at", stamp).
		Where(sq.Eq{"processo_id": processID}),
		fmt.Sprintf("monitor config %d", processID))
}

func (s *Store) execOne(ctx context.Context, b sq.UpdateBuilder, what string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build update %s: %w", what, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
