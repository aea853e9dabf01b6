package repository

import (
	"context"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// AuditQuery filtros del listado de auditoría.
type AuditQuery struct {
	OrgID string
	Q     string // actor, acción u objetivo (sin distinguir mayúsculas)
	From  *time.Time
	To    *time.Time
	Limit int
}

// AuditRepository persistencia de eventos de auditoría (solo inserción y lectura).
type AuditRepository interface {
	Insert(ctx context.Context, ev *entity.AuditEvent) error
	// List más recientes primero.
	List(ctx context.Context, q AuditQuery) ([]*entity.AuditEvent, error)
}
