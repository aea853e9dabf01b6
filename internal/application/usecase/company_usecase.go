package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// CompanyUseCase datos de la organización del usuario.
type CompanyUseCase struct {
	repo  repository.OrgRepository
	audit Auditor
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.OrgRepository, audit Auditor) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, audit: audit}
}

// Get org del usuario.
func (uc *CompanyUseCase) Get(ctx context.Context, p acl.Principal) (*dto.CompanyResponse, error) {
	org, err := uc.repo.GetByID(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	return entityToCompanyResponse(org), nil
}

// Update cambia nombre, dominio, zona horaria, locale y logo (admin).
func (uc *CompanyUseCase) Update(ctx context.Context, p acl.Principal, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	if !acl.IsAdmin(p) {
		return nil, domain.ErrForbidden
	}
	org, err := uc.repo.GetByID(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len([]rune(name)) < 2 {
			return nil, domain.Invalid("name", "debe tener al menos 2 caracteres")
		}
		org.Name = name
	}
	if in.Domain != nil {
		d := entity.NormalizeDomain(*in.Domain)
		if d != "" && !entity.ValidDomain(d) {
			return nil, domain.Invalid("domain", "dominio inválido")
		}
		org.Domain = d
	}
	if in.Timezone != nil {
		tz := strings.TrimSpace(*in.Timezone)
		if tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				return nil, domain.Invalid("timezone", "zona horaria desconocida")
			}
		}
		org.Timezone = tz
	}
	if in.Locale != nil {
		org.Locale = strings.TrimSpace(*in.Locale)
	}
	if in.LogoURL != nil {
		org.LogoURL = strings.TrimSpace(*in.LogoURL)
	}
	return uc.save(ctx, p, org)
}

// SetLogo guarda la URL del logo subido (admin).
func (uc *CompanyUseCase) SetLogo(ctx context.Context, p acl.Principal, url string) (*dto.CompanyResponse, error) {
	if !acl.IsAdmin(p) {
		return nil, domain.ErrForbidden
	}
	org, err := uc.repo.GetByID(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	org.LogoURL = url
	return uc.save(ctx, p, org)
}

func (uc *CompanyUseCase) save(ctx context.Context, p acl.Principal, org *entity.Org) (*dto.CompanyResponse, error) {
	org.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, org); err != nil {
		return nil, err
	}
	if uc.audit != nil {
		uc.audit.Record(ctx, p, "company.updated", "org:"+org.ID, map[string]any{"name": org.Name})
	}
	return entityToCompanyResponse(org), nil
}

func entityToCompanyResponse(o *entity.Org) *dto.CompanyResponse {
	if o == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        o.ID,
		Name:      o.Name,
		OwnerID:   o.OwnerID,
		LogoURL:   o.LogoURL,
		Domain:    o.Domain,
		Plan:      o.Plan,
		Timezone:  o.Timezone,
		Locale:    o.Locale,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
