package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/ports"
)

var _ ports.AlertStore = (*Store)(nil)

// CreateAlerts inserts all alerts atomically and returns them with IDs.
func (s *Store) CreateAlerts(ctx context.Context, alerts []domain.Alert) ([]domain.Alert, error) {
	if len(alerts) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	now := s.now()
	out := make([]domain.Alert, 0, len(alerts))
	for _, a := range alerts {
		created, err := s.insertAlert(ctx, tx, a, now)
		if err != nil {
			return nil, rollback(tx, err)
		}
		out = append(out, created)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit alerts: %w", err)
	}
	return out, nil
}

func (s *Store) insertAlert(ctx context.Context, db queryRower, a domain.Alert, now time.Time) (domain.Alert, error) {
	a.Read = false
	a.ReadAt = nil
	a.CreatedAt = now

	query, args, err := s.sb.Insert("alertas_notificacoes").
		Columns("workspace_id", "processo_id", "movimentacao_id", "tipo", "titulo", "mensagem", "lida", "created_at").
		Values(a.WorkspaceID, nullInt(a.ProcessID), nullInt(a.MovementID), string(a.Kind), a.Title, a.Body, false, s.stamp(now)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Alert{}, fmt.Errorf("build insert alert: %w", err)
	}
	if err := db.QueryRowContext(ctx, query, args...).Scan(&a.ID); err != nil {
		return domain.Alert{}, fmt.Errorf("insert alert: %w", err)
	}
	return a, nil
}

// ListAlerts returns the newest alerts of a workspace.
func (s *Store) ListAlerts(ctx context.Context, workspaceID int64, unreadOnly bool, limit int) ([]domain.Alert, error) {
	q := s.sb.Select("id", "workspace_id", "processo_id", "movimentacao_id", "tipo", "titulo", "mensagem", "lida", "created_at", "lida_em").
		From("alertas_notificacoes").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("created_at DESC", "id DESC")
	if unreadOnly {
		q = q.Where(sq.Eq{"lida": false})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list alerts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}

	var out []domain.Alert
	for rows.Next() {
		var (
			a                   domain.Alert
			processID, movement sql.NullInt64
			kind                string
			created, readAt     nullTime
		)
		if err := rows.Scan(&a.ID, &a.WorkspaceID, &processID, &movement, &kind, &a.Title, &a.Body, &a.Read, &created, &readAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.ProcessID = intPtr(processID)
		a.MovementID = intPtr(movement)
		a.Kind = domain.AlertKind(kind)
		a.CreatedAt = created.Time
		a.ReadAt = readAt.ptr()
		out = append(out, a)
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

// MarkAlertRead flags an alert of the workspace as read.
func (s *Store) MarkAlertRead(ctx context.Context, workspaceID, alertID int64, at time.Time) error {
	return s.execOne(ctx, s.sb.Update("alertas_notificacoes").
		Set("lida", true).
		Set("lida_em", s.stamp(at)).
		Where(sq.Eq{"id": alertID, "workspace_id": workspaceID}),
		fmt.Sprintf("alert %d", alertID))
}
