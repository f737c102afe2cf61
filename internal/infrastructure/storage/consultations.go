package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/ports"
)

var _ ports.ConsultationLogger = (*Store)(nil)

// AppendConsultation writes one audit row; rows are never updated.
func (s *Store) AppendConsultation(ctx context.Context, entry domain.ConsultationLog) error {
	created := entry.CreatedAt
	if created.IsZero() {
		created = s.now()
	}

	var errMsg sql.NullString
	if entry.ErrorMessage != "" {
		errMsg = sql.NullString{String: entry.ErrorMessage, Valid: true}
	}

	query, args, err := s.sb.Insert("datajud_consulta_logs").
		Columns("workspace_id", "processo_id", "numero_processo", "tribunal", "endpoint", "status",
			"movimentacoes_encontradas", "movimentacoes_novas", "erro", "tempo_resposta_ms", "created_at").
		Values(entry.WorkspaceID, entry.ProcessID, entry.NPU, entry.Tribunal, entry.Endpoint, string(entry.Status),
			entry.MovementsFound, entry.MovementsNew, errMsg, entry.ResponseTimeMs, s.stamp(created)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert consultation: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert consultation: %w", err)
	}
	return nil
}

// Consultations returns the newest audit rows of a process.
func (s *Store) Consultations(ctx context.Context, processID int64, limit int) ([]domain.ConsultationLog, error) {
	q := s.sb.Select("id", "workspace_id", "processo_id", "numero_processo", "tribunal", "endpoint", "status",
		"movimentacoes_encontradas", "movimentacoes_novas", "COALESCE(erro, '')", "tempo_resposta_ms", "created_at").
		From("datajud_consulta_logs").
		Where(sq.Eq{"processo_id": processID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build consultations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query consultations: %w", err)
	}

	var out []domain.ConsultationLog
	for rows.Next() {
		var (
			entry   domain.ConsultationLog
			status  string
			created nullTime
		)
		if err := rows.Scan(&entry.ID, &entry.WorkspaceID, &entry.ProcessID, &entry.NPU, &entry.Tribunal, &entry.Endpoint,
			&status, &entry.MovementsFound, &entry.MovementsNew, &entry.ErrorMessage, &entry.ResponseTimeMs, &created); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan consultation: %w", err)
		}
		entry.Status = domain.ConsultationStatus(status)
		entry.CreatedAt = created.Time
		out = append(out, entry)
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
