package repository

import (
	"context"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// ListQuery parámetros de listado de un recurso con ACL.
// Limit 0 significa sin límite (uso interno: pronóstico, exportaciones).
type ListQuery struct {
	Scope   acl.Scope
	Page    int
	Limit   int
	Sort    string // clave de la lista permitida del recurso
	Desc    bool
	Search  string
	Filters map[string]string // filtros declarados por el recurso (status, ownerId, dueFrom...)
}

// Offset desplazamiento de la página.
func (q ListQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// ScopedRepository puerto genérico de persistencia para recursos con campos de tenant.
// Get y Delete devuelven domain.ErrNotFound si el id no existe dentro de la org.
type ScopedRepository[T entity.Scoped] interface {
	List(ctx context.Context, q ListQuery) (items []T, total int, err error)
	Count(ctx context.Context, q ListQuery) (int, error)
	Get(ctx context.Context, orgID, id string) (T, error)
	Create(ctx context.Context, item T) error
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, orgID, id string) error
}

// MeetingRepository agrega a las reuniones las consultas de agenda y recordatorios.
type MeetingRepository interface {
	ScopedRepository[*entity.Meeting]
	// Busy reuniones del owner que empiezan en [from, to) y no están canceladas.
	Busy(ctx context.Context, orgID, ownerID string, from, to time.Time) ([]*entity.Meeting, error)
	// Overlapping reuniones no canceladas del owner cuyo intervalo [when, when+duración) corta [from, to).
	Overlapping(ctx context.Context, orgID, ownerID string, from, to time.Time) ([]*entity.Meeting, error)
	// DueReminders reuniones con next_reminder_at <= until y when >= since.
	DueReminders(ctx context.Context, until, since time.Time, limit int) ([]*entity.Meeting, error)
	ClearReminder(ctx context.Context, id string) error
}
