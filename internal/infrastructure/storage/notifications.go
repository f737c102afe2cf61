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

var (
	_ ports.NotificationLog    = (*Store)(nil)
	_ ports.RecipientDirectory = (*Store)(nil)
	_ ports.DeadlineSource     = (*Store)(nil)
)

const (
	dateLayout      = "2006-01-02"
	deadlinePending = "pendente"
)

// NotificationSent reports whether the marker was already recorded.
func (s *Store) NotificationSent(ctx context.Context, m domain.NotificationMarker) (bool, error) {
	query, args, err := s.sb.Select("COUNT(1)").
		From("notificacoes_enviadas").
		Where(sq.Eq{
			"workspace_id": m.WorkspaceID,
			"tipo":         m.Kind,
			"entidade_id":  m.EntityID,
			"marcador":     m.Marker,
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build notification lookup: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("query notification log: %w", err)
	}
	return n > 0, nil
}

// RecordNotification stores the marker; recording it twice is a no-op.
func (s *Store) RecordNotification(ctx context.Context, m domain.NotificationMarker, at time.Time) error {
	query, args, err := s.sb.Insert("notificacoes_enviadas").
		Columns("workspace_id", "tipo", "entidade_id", "marcador", "enviado_em").
		Values(m.WorkspaceID, m.Kind, m.EntityID, m.Marker, s.stamp(at)).
		Suffix("ON CONFLICT (workspace_id, tipo, entidade_id, marcador) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build record notification: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}

// InsertRecipient registers a workspace member; used to seed the directory.
func (s *Store) InsertRecipient(ctx context.Context, r domain.Recipient) (int64, error) {
	query, args, err := s.sb.Insert("users").
		Columns("workspace_id", "nome", "email", "telefone", "alerta_email", "alerta_whatsapp").
		Values(r.WorkspaceID, r.Name, r.Email, r.Phone, r.EmailAlerts, r.WhatsAppAlerts).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert recipient: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert recipient: %w", err)
	}
	return id, nil
}

// Recipients lists the members of a workspace with at least one channel enabled.
func (s *Store) Recipients(ctx context.Context, workspaceID int64) ([]domain.Recipient, error) {
	query, args, err := s.sb.Select("id", "workspace_id", "nome", "email", "telefone", "alerta_email", "alerta_whatsapp").
		From("users").
		Where(sq.Eq{"workspace_id": workspaceID}).
		Where(sq.Or{sq.Eq{"alerta_email": true}, sq.Eq{"alerta_whatsapp": true}}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recipients: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}

	var out []domain.Recipient
	for rows.Next() {
		var r domain.Recipient
		if err := rows.Scan(&r.ID, &r.WorkspaceID, &r.Name, &r.Email, &r.Phone, &r.EmailAlerts, &r.WhatsAppAlerts); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		out = append(out, r)
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

// Workspaces lists every workspace that owns at least one process.
func (s *Store) Workspaces(ctx context.Context) ([]int64, error) {
	query, args, err := s.sb.Select("DISTINCT workspace_id").
		From("processos").
		OrderBy("workspace_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build workspaces: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workspaces: %w", err)
	}

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		out = append(out, id)
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

// InsertDeadline registers a pending deadline; used to seed reminders.
func (s *Store) InsertDeadline(ctx context.Context, d domain.Deadline) (int64, error) {
	status := d.Status
	if status == "" {
		status = deadlinePending
	}

	query, args, err := s.sb.Insert("prazos").
		Columns("workspace_id", "processo_id", "titulo", "data_prazo", "status").
		Values(d.WorkspaceID, nullInt(d.ProcessID), d.Title, d.DueAt.Format(dateLayout), status).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert deadline: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert deadline: %w", err)
	}
	return id, nil
}

// PendingDeadlines lists pending deadlines due between from and to, inclusive by date.
func (s *Store) PendingDeadlines(ctx context.Context, from, to time.Time) ([]domain.Deadline, error) {
	query, args, err := s.sb.Select("d.id", "d.workspace_id", "d.processo_id", "COALESCE(p.numero_processo, '')",
		"d.titulo", "d.data_prazo", "d.status").
		From("prazos d").
		LeftJoin("processos p ON p.id = d.processo_id").
		Where(sq.Eq{"d.status": deadlinePending}).
		Where(sq.GtOrEq{"d.data_prazo": from.Format(dateLayout)}).
		Where(sq.LtOrEq{"d.data_prazo": to.Format(dateLayout)}).
		OrderBy("d.data_prazo ASC", "d.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build deadlines: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deadlines: %w", err)
	}

	var out []domain.Deadline
	for rows.Next() {
		var (
			d         domain.Deadline
			processID sql.NullInt64
			due       nullTime
		)
		if err := rows.Scan(&d.ID, &d.WorkspaceID, &processID, &d.ProcessNPU, &d.Title, &due, &d.Status); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan deadline: %w", err)
		}
		d.ProcessID = intPtr(processID)
		d.DueAt = due.Time
		out = append(out, d)
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
