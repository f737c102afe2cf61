package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"JurisMonitor/internal/domain"
)

const movementConflict = "ON CONFLICT (processo_id, codigo_movimento, data_movimento) DO NOTHING RETURNING id"

// SaveMovements inserts the batch in one transaction. Rows that collide on
// (process, code, timestamp) are counted as duplicates; NewRecords keeps the
// inserted rows in input order. When alertFor is set, the alert of every
// inserted row is written in the same transaction, so a failed alert insert
// leaves the movements unsaved and the next poll sees them as new again.
func (s *Store) SaveMovements(ctx context.Context, processID, workspaceID int64, records []domain.MovementRecord, alertFor func(domain.Movement) domain.Alert) (domain.SaveReport, error) {
	var report domain.SaveReport
	if len(records) == 0 {
		return report, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("begin tx: %w", err)
	}

	now := s.now()
	createdAt := s.stamp(now)
	for _, rec := range records {
		mv := domain.Movement{
			ProcessID:   processID,
			WorkspaceID: workspaceID,
			Code:        rec.Code,
			Name:        rec.Name,
			OccurredAt:  domain.NormalizeMovementTime(rec.Timestamp, now),
			Complements: complementsText(rec.Complements),
			Source:      domain.SourceDatajud,
			CreatedAt:   now,
		}

		query, args, err := s.sb.Insert("movimentacoes_processo").
			Columns("processo_id", "workspace_id", "codigo_movimento", "nome_movimento",
				"data_movimento", "complementos", "fonte", "lida", "created_at").
			Values(mv.ProcessID, mv.WorkspaceID, mv.Code, mv.Name,
				mv.OccurredAt, mv.Complements, string(mv.Source), false, createdAt).
			Suffix(movementConflict).
			ToSql()
		if err != nil {
			return domain.SaveReport{}, rollback(tx, fmt.Errorf("build insert movement: %w", err))
		}

		if err := tx.QueryRowContext(ctx, query, args...).Scan(&mv.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				report.Duplicates++
				continue
			}
			return domain.SaveReport{}, rollback(tx, fmt.Errorf("insert movement: %w", err))
		}

		report.Inserted++
		report.NewRecords = append(report.NewRecords, mv)

		if alertFor == nil {
			continue
		}
		alert, err := s.insertAlert(ctx, tx, alertFor(mv), now)
		if err != nil {
			return domain.SaveReport{}, rollback(tx, err)
		}
		report.Alerts = append(report.Alerts, alert)
	}

	if err := tx.Commit(); err != nil {
		return domain.SaveReport{}, fmt.Errorf("commit movements: %w", err)
	}
	return report, nil
}

// MovementsCreatedBetween lists the workspace movements recorded in [from, to).
func (s *Store) MovementsCreatedBetween(ctx context.Context, workspaceID int64, from, to time.Time) ([]domain.Movement, error) {
	query, args, err := s.sb.Select(
		"m.id", "m.processo_id", "m.workspace_id", "m.codigo_movimento", "m.nome_movimento",
		"m.data_movimento", "m.complementos", "m.fonte", "m.lida", "m.created_at", "p.numero_processo",
	).
		From("movimentacoes_processo m").
		Join("processos p ON p.id = m.processo_id").
		Where(sq.Eq{"m.workspace_id": workspaceID}).
		Where(sq.GtOrEq{"m.created_at": s.stamp(from)}).
		Where(sq.Lt{"m.created_at": s.stamp(to)}).
		OrderBy("m.created_at ASC", "m.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movements between: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movements between: %w", err)
	}

	var out []domain.Movement
	for rows.Next() {
		var (
			mv      domain.Movement
			source  string
			created nullTime
		)
		if err := rows.Scan(&mv.ID, &mv.ProcessID, &mv.WorkspaceID, &mv.Code, &mv.Name,
			&mv.OccurredAt, &mv.Complements, &source, &mv.Read, &created, &mv.ProcessNumber); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		mv.Source = domain.MovementSource(source)
		mv.CreatedAt = created.Time
		out = append(out, mv)
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

func complementsText(raw []byte) string {
	if len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}
