package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"JurisMonitor/internal/ports"
)

var _ ports.StatusReader = (*Store)(nil)

// LastRunAt returns the newest consultation time of the workspace.
func (s *Store) LastRunAt(ctx context.Context, workspaceID int64) (*time.Time, error) {
	query, args, err := s.sb.Select("MAX(created_at)").
		From("datajud_consulta_logs").
		Where(sq.Eq{"workspace_id": workspaceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build last run: %w", err)
	}

	var last nullTime
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	return last.ptr(), nil
}

// CountMonitored counts enabled monitor configs of the workspace.
func (s *Store) CountMonitored(ctx context.Context, workspaceID int64) (int, error) {
	return s.count(ctx, s.sb.Select("COUNT(1)").
		From("processo_monitor_config").
		Where(sq.Eq{"workspace_id": workspaceID, "ativo": true}))
}

// CountMovementsSince counts movements recorded at or after since.
func (s *Store) CountMovementsSince(ctx context.Context, workspaceID int64, since time.Time) (int, error) {
	return s.count(ctx, s.sb.Select("COUNT(1)").
		From("movimentacoes_processo").
		Where(sq.Eq{"workspace_id": workspaceID}).
		Where(sq.GtOrEq{"created_at": s.stamp(since)}))
}

func (s *Store) count(ctx context.Context, b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query count: %w", err)
	}
	return n, nil
}
