package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// ModuleService decide si el rol del usuario puede usar un módulo del CRM.
// Es el único punto de la aplicación que conoce la política por rol.
type ModuleService struct {
	policies repository.PolicyRepository
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(policies repository.PolicyRepository) *ModuleService {
	return &ModuleService{policies: policies}
}

// HasModuleAccess informa si p puede leer (write=false) o escribir en module.
// Mientras la org no guarde una política no se restringe nada; admin siempre pasa.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
func (s *ModuleService) HasModuleAccess(ctx context.Context, p acl.Principal, module string, write bool) (bool, error) {
	if p.OrgID == "" || module == "" {
		return false, fmt.Errorf("module: orgID y module son obligatorios")
	}
	if acl.IsAdmin(p) {
		return true, nil
	}
	policy, err := s.policies.GetRoles(ctx, p.OrgID)
	if err != nil {
		return false, err
	}
	if policy == nil {
		return true, nil
	}
	return policy.Allows(p.Role, module, write), nil
}
