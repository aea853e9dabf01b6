package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo eventos de auditoría sobre PostgreSQL.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Insert persiste un evento.
func (r *AuditRepo) Insert(ctx context.Context, ev *entity.AuditEvent) error {
	meta := ev.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_events (id, org_id, actor_id, actor, action, target, meta, ip, ua, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ev.ID, ev.OrgID, ev.ActorID, ev.Actor, ev.Action, ev.Target, meta, ev.IP, ev.UA, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// List eventos de la org filtrados por texto y rango, más recientes primero.
func (r *AuditRepo) List(ctx context.Context, q repository.AuditQuery) ([]*entity.AuditEvent, error) {
	list := []*entity.AuditEvent{}
	if !validID(q.OrgID) {
		return list, nil
	}
	w := &Where{}
	w.Add("org_id = ?", q.OrgID)
	if s := strings.TrimSpace(q.Q); s != "" {
		like := likePattern(s)
		w.Add("(actor ILIKE ? OR action ILIKE ? OR target ILIKE ?)", like, like, like)
	}
	if q.From != nil {
		w.Add("created_at >= ?", *q.From)
	}
	if q.To != nil {
		w.Add("created_at <= ?", *q.To)
	}
	query := `SELECT id, org_id, actor_id, actor, action, target, meta, ip, ua, created_at FROM audit_events` +
		w.SQL() + ` ORDER BY created_at DESC LIMIT ` + w.Arg(q.Limit)
	rows, err := r.q.Query(ctx, query, w.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ev entity.AuditEvent
		if err := rows.Scan(&ev.ID, &ev.OrgID, &ev.ActorID, &ev.Actor, &ev.Action, &ev.Target, &ev.Meta,
			&ev.IP, &ev.UA, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}
