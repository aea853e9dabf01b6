package repository

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// Los Get de configuración devuelven (nil, nil) cuando la org aún no guardó nada.

// CalendarRepository disponibilidad por usuario.
type CalendarRepository interface {
	Get(ctx context.Context, orgID, userID string) (*entity.CalendarSettings, error)
	GetBySlug(ctx context.Context, slug string) (*entity.CalendarSettings, error)
	// Upsert devuelve domain.ErrDuplicate si el slug pertenece a otro usuario.
	Upsert(ctx context.Context, s *entity.CalendarSettings) error
}

// PipelineRepository etapas de venta por org.
type PipelineRepository interface {
	Get(ctx context.Context, orgID string) (*entity.Pipeline, error)
	Save(ctx context.Context, p *entity.Pipeline) error
}

// PolicyRepository políticas de seguridad, de roles e integraciones por org.
type PolicyRepository interface {
	GetSecurity(ctx context.Context, orgID string) (*entity.SecurityPolicy, error)
	SaveSecurity(ctx context.Context, p *entity.SecurityPolicy) error
	GetRoles(ctx context.Context, orgID string) (*entity.RolePolicy, error)
	SaveRoles(ctx context.Context, p *entity.RolePolicy) error
	GetIntegrations(ctx context.Context, orgID string) (*entity.IntegrationSettings, error)
	SaveIntegrations(ctx context.Context, s *entity.IntegrationSettings) error
}
