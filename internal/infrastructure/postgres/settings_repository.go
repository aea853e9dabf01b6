package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var (
	_ repository.CalendarRepository = (*CalendarRepo)(nil)
	_ repository.PipelineRepository = (*PipelineRepo)(nil)
	_ repository.PolicyRepository   = (*PolicyRepo)(nil)
)

// CalendarRepo disponibilidad por usuario.
type CalendarRepo struct {
	q Querier
}

// NewCalendarRepository construye el adaptador.
func NewCalendarRepository(q Querier) *CalendarRepo { return &CalendarRepo{q: q} }

const calendarColumns = `org_id, user_id, slug, days, start_time, end_time, duration, updated_at`

func (r *CalendarRepo) one(ctx context.Context, where string, args ...any) (*entity.CalendarSettings, error) {
	var s entity.CalendarSettings
	err := r.q.QueryRow(ctx, `SELECT `+calendarColumns+` FROM calendar_settings WHERE `+where, args...).Scan(
		&s.OrgID, &s.UserID, &s.Slug, &s.Days, &s.Start, &s.End, &s.Duration, &s.UpdatedAt)
	if err != nil {
		if err = mapError(err, nil); err == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get calendar settings: %w", err)
	}
	return &s, nil
}

// Get configuración del usuario; nil si no guardó ninguna.
func (r *CalendarRepo) Get(ctx context.Context, orgID, userID string) (*entity.CalendarSettings, error) {
	if !validID(orgID) {
		return nil, nil
	}
	return r.one(ctx, `org_id = $1 AND user_id = $2`, orgID, userID)
}

// GetBySlug configuración pública por slug; nil si no existe.
func (r *CalendarRepo) GetBySlug(ctx context.Context, slug string) (*entity.CalendarSettings, error) {
	return r.one(ctx, `slug = $1`, slug)
}

// Upsert guarda la configuración del usuario.
func (r *CalendarRepo) Upsert(ctx context.Context, s *entity.CalendarSettings) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO calendar_settings (`+calendarColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (org_id, user_id) DO UPDATE SET slug = EXCLUDED.slug, days = EXCLUDED.days,
			start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time,
			duration = EXCLUDED.duration, updated_at = EXCLUDED.updated_at`,
		s.OrgID, s.UserID, s.Slug, s.Days, s.Start, s.End, s.Duration, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("upsert calendar settings: %w", mapError(err, domain.ErrNotFound))
	}
	return nil
}

// PipelineRepo etapas de venta por org.
type PipelineRepo struct {
	q Querier
}

// NewPipelineRepository construye el adaptador.
func NewPipelineRepository(q Querier) *PipelineRepo { return &PipelineRepo{q: q} }

// Get pipeline guardado; nil si la org usa el de por defecto.
func (r *PipelineRepo) Get(ctx context.Context, orgID string) (*entity.Pipeline, error) {
	if !validID(orgID) {
		return nil, nil
	}
	p := entity.Pipeline{OrgID: orgID}
	err := r.q.QueryRow(ctx, `SELECT stages, updated_by, updated_at FROM pipelines WHERE org_id = $1`, orgID).
		Scan(&p.Stages, &p.UpdatedBy, &p.UpdatedAt)
	if err != nil {
		if err = mapError(err, nil); err == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get pipeline: %w", err)
	}
	return &p, nil
}

// Save reemplaza las etapas de la org.
func (r *PipelineRepo) Save(ctx context.Context, p *entity.Pipeline) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO pipelines (org_id, stages, updated_by, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (org_id) DO UPDATE SET stages = EXCLUDED.stages, updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at`,
		p.OrgID, p.Stages, p.UpdatedBy, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save pipeline: %w", mapError(err, domain.ErrNotFound))
	}
	return nil
}

// PolicyRepo políticas e integraciones por org.
type PolicyRepo struct {
	q Querier
}

// NewPolicyRepository construye el adaptador.
func NewPolicyRepository(q Querier) *PolicyRepo { return &PolicyRepo{q: q} }

// GetSecurity política de seguridad guardada; nil si no hay.
func (r *PolicyRepo) GetSecurity(ctx context.Context, orgID string) (*entity.SecurityPolicy, error) {
	if !validID(orgID) {
		return nil, nil
	}
	p := entity.SecurityPolicy{OrgID: orgID}
	err := r.q.QueryRow(ctx, `
		SELECT require_mfa, session_timeout, password_min, password_rotation_days, updated_by, updated_at
		FROM security_policies WHERE org_id = $1`, orgID).
		Scan(&p.RequireMFA, &p.SessionTimeout, &p.PasswordMin, &p.PasswordRotationDays, &p.UpdatedBy, &p.UpdatedAt)
	if err != nil {
		if err = mapError(err, nil); err == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get security policy: %w", err)
	}
	return &p, nil
}

// SaveSecurity upsert de la política de seguridad.
func (r *PolicyRepo) SaveSecurity(ctx context.Context, p *entity.SecurityPolicy) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO security_policies (org_id, require_mfa, session_timeout, password_min, password_rotation_days,
			updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (org_id) DO UPDATE SET require_mfa = EXCLUDED.require_mfa,
			session_timeout = EXCLUDED.session_timeout, password_min = EXCLUDED.password_min,
			password_rotation_days = EXCLUDED.password_rotation_days,
			updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`,
		p.OrgID, p.RequireMFA, p.SessionTimeout, p.PasswordMin, p.PasswordRotationDays, p.UpdatedBy, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save security policy: %w", mapError(err, domain.ErrNotFound))
	}
	return nil
}

// GetRoles política por rol guardada; nil si no hay.
func (r *PolicyRepo) GetRoles(ctx context.Context, orgID string) (*entity.RolePolicy, error) {
	if !validID(orgID) {
		return nil, nil
	}
	p := entity.RolePolicy{OrgID: orgID}
	err := r.q.QueryRow(ctx, `SELECT permissions, updated_by, updated_at FROM role_policies WHERE org_id = $1`, orgID).
		Scan(&p.PermissionsByRole, &p.UpdatedBy, &p.UpdatedAt)
	if err != nil {
		if err = mapError(err, nil); err == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get role policy: %w", err)
	}
	return &p, nil
}

// SaveRoles upsert de la política por rol.
func (r *PolicyRepo) SaveRoles(ctx context.Context, p *entity.RolePolicy) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO role_policies (org_id, permissions, updated_by, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (org_id) DO UPDATE SET permissions = EXCLUDED.permissions,
			updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`,
		p.OrgID, p.PermissionsByRole, p.UpdatedBy, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save role policy: %w", mapError(err, domain.ErrNotFound))
	}
	return nil
}

// GetIntegrations integraciones guardadas; nil si no hay.
func (r *PolicyRepo) GetIntegrations(ctx context.Context, orgID string) (*entity.IntegrationSettings, error) {
	if !validID(orgID) {
		return nil, nil
	}
	s := entity.IntegrationSettings{OrgID: orgID}
	err := r.q.QueryRow(ctx, `
		SELECT slack, zapier, mailchimp, stripe, email_providers, updated_at
		FROM integration_settings WHERE org_id = $1`, orgID).
		Scan(&s.Slack, &s.Zapier, &s.Mailchimp, &s.Stripe, &s.EmailProviders, &s.UpdatedAt)
	if err != nil {
		if err = mapError(err, nil); err == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get integrations: %w", err)
	}
	return &s, nil
}

// SaveIntegrations upsert de integraciones.
func (r *PolicyRepo) SaveIntegrations(ctx context.Context, s *entity.IntegrationSettings) error {
	providers := s.EmailProviders
	if providers == nil {
		providers = map[string]bool{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO integration_settings (org_id, slack, zapier, mailchimp, stripe, email_providers, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (org_id) DO UPDATE SET slack = EXCLUDED.slack, zapier = EXCLUDED.zapier,
			mailchimp = EXCLUDED.mailchimp, stripe = EXCLUDED.stripe,
			email_providers = EXCLUDED.email_providers, updated_at = EXCLUDED.updated_at`,
		s.OrgID, s.Slack, s.Zapier, s.Mailchimp, s.Stripe, providers, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save integrations: %w", mapError(err, domain.ErrNotFound))
	}
	return nil
}
