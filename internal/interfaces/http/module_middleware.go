package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/pkg/logger"
)

// moduleChecker es el contrato mínimo que necesita el middleware para verificar módulos.
// Lo implementa *usecase.ModuleService.
type moduleChecker interface {
	HasModuleAccess(ctx context.Context, p acl.Principal, module string, write bool) (bool, error)
}

// RequireModule verifica la política por rol del módulo: GET/HEAD piden lectura, el resto escritura.
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 403 Forbidden → el rol no tiene acceso al módulo.
//   - 503 Service Unavailable → fallo de infraestructura al consultar la política.
func RequireModule(module string, checker moduleChecker, log *logger.Logger) fiber.Handler {
	return moduleGuard(module, checker, log, func(c *fiber.Ctx) bool {
		return c.Method() != fiber.MethodGet && c.Method() != fiber.MethodHead
	})
}

// RequireModuleRead pide sólo lectura sin importar el método (p. ej. RSVP de una reunión).
func RequireModuleRead(module string, checker moduleChecker, log *logger.Logger) fiber.Handler {
	return moduleGuard(module, checker, log, func(*fiber.Ctx) bool { return false })
}

func moduleGuard(module string, checker moduleChecker, log *logger.Logger, writes func(*fiber.Ctx) bool) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p.OrgID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "org no encontrada en la sesión",
			})
		}
		ok, err := checker.HasModuleAccess(c.UserContext(), p, module, writes(c))
		if err != nil {
			log.Error().Err(err).Str("module", module).Str("org_id", p.OrgID).Msg("verificación de módulo")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DENIED",
				Message: "el rol no tiene acceso al módulo '" + module + "'",
			})
		}
		return c.Next()
	}
}
