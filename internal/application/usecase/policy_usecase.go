package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// PolicyUseCase política de seguridad, política por rol e integraciones de la org.
type PolicyUseCase struct {
	repo  repository.PolicyRepository
	audit Auditor
	now   func() time.Time
}

// NewPolicyUseCase construye el caso de uso.
func NewPolicyUseCase(repo repository.PolicyRepository, audit Auditor) *PolicyUseCase {
	return &PolicyUseCase{repo: repo, audit: audit, now: time.Now}
}

// Security política guardada o la de fábrica (sin persistir).
func (uc *PolicyUseCase) Security(ctx context.Context, p acl.Principal) (*entity.SecurityPolicy, error) {
	sp, err := uc.repo.GetSecurity(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		def := entity.DefaultSecurityPolicy(p.OrgID)
		return &def, nil
	}
	return sp, nil
}

// UpdateSecurity aplica body sobre la política actual, acota los valores y la guarda (admin).
func (uc *PolicyUseCase) UpdateSecurity(ctx context.Context, p acl.Principal, body []byte) (*entity.SecurityPolicy, error) {
	if !acl.IsAdmin(p) {
		return nil, domain.ErrForbidden
	}
	sp, err := uc.Security(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, sp); err != nil {
		return nil, domain.Invalid("body", "JSON inválido")
	}
	sp.OrgID = p.OrgID
	sp.Clamp()
	sp.UpdatedBy = p.UserID
	sp.UpdatedAt = uc.now().UTC()
	if err := uc.repo.SaveSecurity(ctx, sp); err != nil {
		return nil, err
	}
	uc.record(ctx, p, "policy.security.updated", nil)
	return sp, nil
}

// Roles política por rol guardada o la de fábrica.
func (uc *PolicyUseCase) Roles(ctx context.Context, p acl.Principal) (*entity.RolePolicy, error) {
	rp, err := uc.repo.GetRoles(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	if rp == nil {
		def := entity.DefaultRolePolicy(p.OrgID)
		return &def, nil
	}
	rp.Normalize()
	return rp, nil
}

// UpdateRoles normaliza la matriz recibida y la guarda (admin). A partir de aquí la org la aplica.
func (uc *PolicyUseCase) UpdateRoles(ctx context.Context, p acl.Principal, body []byte) (*entity.RolePolicy, error) {
	if !acl.IsAdmin(p) {
		return nil, domain.ErrForbidden
	}
	var in entity.RolePolicy
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, domain.Invalid("body", "JSON inválido")
	}
	rp := &entity.RolePolicy{
		OrgID:             p.OrgID,
		PermissionsByRole: in.PermissionsByRole,
		UpdatedBy:         p.UserID,
		UpdatedAt:         uc.now().UTC(),
	}
	rp.Normalize()
	if err := uc.repo.SaveRoles(ctx, rp); err != nil {
		return nil, err
	}
	uc.record(ctx, p, "policy.roles.updated", nil)
	return rp, nil
}

// Integrations integraciones de la org (todas apagadas si no hay nada guardado).
func (uc *PolicyUseCase) Integrations(ctx context.Context, p acl.Principal) (*entity.IntegrationSettings, error) {
	s, err := uc.repo.GetIntegrations(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = &entity.IntegrationSettings{OrgID: p.OrgID}
	}
	if s.EmailProviders == nil {
		s.EmailProviders = map[string]bool{}
	}
	return s, nil
}

// UpdateIntegrations reemplaza los flags de integración (admin).
func (uc *PolicyUseCase) UpdateIntegrations(ctx context.Context, p acl.Principal, body []byte) (*entity.IntegrationSettings, error) {
	if !acl.IsAdmin(p) {
		return nil, domain.ErrForbidden
	}
	s, err := uc.Integrations(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, s); err != nil {
		return nil, domain.Invalid("body", "JSON inválido")
	}
	return uc.saveIntegrations(ctx, p, s)
}

// ConnectEmail marca conectado un proveedor de correo (admin).
func (uc *PolicyUseCase) ConnectEmail(ctx context.Context, p acl.Principal, provider string) (*entity.IntegrationSettings, error) {
	if !acl.IsAdmin(p) {
		return nil, domain.ErrForbidden
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return nil, domain.Invalid("provider", "es requerido")
	}
	s, err := uc.Integrations(ctx, p)
	if err != nil {
		return nil, err
	}
	s.EmailProviders[provider] = true
	return uc.saveIntegrations(ctx, p, s)
}

func (uc *PolicyUseCase) saveIntegrations(ctx context.Context, p acl.Principal, s *entity.IntegrationSettings) (*entity.IntegrationSettings, error) {
	s.OrgID = p.OrgID
	if s.EmailProviders == nil {
		s.EmailProviders = map[string]bool{}
	}
	s.UpdatedAt = uc.now().UTC()
	if err := uc.repo.SaveIntegrations(ctx, s); err != nil {
		return nil, err
	}
	uc.record(ctx, p, "integrations.updated", nil)
	return s, nil
}

func (uc *PolicyUseCase) record(ctx context.Context, p acl.Principal, action string, meta map[string]any) {
	if uc.audit != nil {
		uc.audit.Record(ctx, p, action, "org:"+p.OrgID, meta)
	}
}
