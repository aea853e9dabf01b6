package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// Locals keys del usuario autenticado en Fiber.
const (
	LocalPrincipal = "principal"
	LocalUser      = "user"
)

// TokenCookie cookie alternativa al header Authorization.
const TokenCookie = "token"

// Authenticator valida un token y carga el usuario vigente. Lo implementa *auth.AuthUseCase.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (acl.Principal, *entity.User, error)
}

// bearer extrae el token del header "Bearer <token>" o de la cookie.
func bearer(c *fiber.Ctx) (string, string) {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", "formato: Bearer <token>"
		}
		if t := strings.TrimSpace(parts[1]); t != "" {
			return t, ""
		}
		return "", "token vacío"
	}
	if t := c.Cookies(TokenCookie); t != "" {
		return t, ""
	}
	return "", "Authorization header requerido"
}

// AuthMiddleware valida el token, carga el usuario y deja el principal en c.Locals.
// El contexto de la petición lleva IP y user agent para la auditoría.
func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, problem := bearer(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: problem})
		}
		p, user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			status, _ := errorStatus(err)
			if status != fiber.StatusUnauthorized {
				return err
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalPrincipal, p)
		c.Locals(LocalUser, user)
		c.SetUserContext(usecase.WithClient(c.UserContext(), usecase.Client{
			IP: c.IP(),
			UA: c.Get(fiber.HeaderUserAgent),
		}))
		return c.Next()
	}
}

// GetPrincipal devuelve el principal de la petición (después del middleware de auth).
func GetPrincipal(c *fiber.Ctx) acl.Principal {
	p, _ := c.Locals(LocalPrincipal).(acl.Principal)
	return p
}

// GetUser devuelve el usuario autenticado o nil.
func GetUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}

// RequireRole deja pasar sólo a los roles indicados (admin siempre pasa).
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p.UserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autenticado"})
		}
		if acl.IsAdmin(p) {
			return c.Next()
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
	}
}
