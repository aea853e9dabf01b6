package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.MeetingRepository = (*MeetingRepo)(nil)

// MeetingRepo store genérico de reuniones más las consultas de agenda y recordatorios.
type MeetingRepo struct {
	*ScopedStore[*entity.Meeting]
}

// NewMeetingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMeetingRepository(q Querier) *MeetingRepo {
	return &MeetingRepo{ScopedStore: NewScopedStore(q, MeetingTable)}
}

func (r *MeetingRepo) query(ctx context.Context, w *Where, suffix string) ([]*entity.Meeting, error) {
	rows, err := r.q.Query(ctx, "SELECT "+r.selectColumns()+" FROM meetings"+w.SQL()+suffix, w.Args()...)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()
	list := []*entity.Meeting{}
	for rows.Next() {
		m := &entity.Meeting{}
		if err := rows.Scan(r.scanDest(m)...); err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Busy reuniones no canceladas del owner que empiezan en [from, to).
func (r *MeetingRepo) Busy(ctx context.Context, orgID, ownerID string, from, to time.Time) ([]*entity.Meeting, error) {
	if !validID(orgID) {
		return []*entity.Meeting{}, nil
	}
	w := &Where{}
	w.Add("org_id = ?", orgID)
	w.Add("owner_id = ?", ownerID)
	w.Add("starts_at >= ? AND starts_at < ?", from, to)
	w.Add("status <> 'Cancelled'")
	return r.query(ctx, w, " ORDER BY starts_at")
}

// Overlapping reuniones no canceladas del owner que se solapan con [from, to), sin importar cuándo empiezan.
func (r *MeetingRepo) Overlapping(ctx context.Context, orgID, ownerID string, from, to time.Time) ([]*entity.Meeting, error) {
	if !validID(orgID) {
		return []*entity.Meeting{}, nil
	}
	w := &Where{}
	w.Add("org_id = ?", orgID)
	w.Add("owner_id = ?", ownerID)
	w.Add("starts_at < ?", to)
	w.Add("starts_at + make_interval(mins => GREATEST(duration_minutes, 1)) > ?", from)
	w.Add("status <> 'Cancelled'")
	return r.query(ctx, w, " ORDER BY starts_at")
}

// DueReminders reuniones de todas las orgs con recordatorio vencido.
func (r *MeetingRepo) DueReminders(ctx context.Context, until, since time.Time, limit int) ([]*entity.Meeting, error) {
	w := &Where{}
	w.Add("next_reminder_at IS NOT NULL AND next_reminder_at <= ?", until)
	w.Add("starts_at >= ?", since)
	return r.query(ctx, w, " ORDER BY next_reminder_at LIMIT "+w.Arg(limit))
}

// ClearReminder marca el recordatorio como enviado.
func (r *MeetingRepo) ClearReminder(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	_, err := r.q.Exec(ctx, `UPDATE meetings SET next_reminder_at = NULL WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clear reminder: %w", err)
	}
	return nil
}
