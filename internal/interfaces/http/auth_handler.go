package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/dto"
)

// AuthHandler maneja registro, login y sesión.
type AuthHandler struct {
	uc     *auth.AuthUseCase
	secure bool
}

// NewAuthHandler construye el handler de auth. secure marca la cookie del token como Secure.
func NewAuthHandler(uc *auth.AuthUseCase, secure bool) *AuthHandler {
	return &AuthHandler{uc: uc, secure: secure}
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Signup godoc
// @Summary      Registrar usuario
// @Description  Sin token crea una org nueva con el usuario como admin; con token de invitación se une a esa org.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "Datos de registro"
// @Success      201   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in dto.SignupRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badBody())
	}
	out, err := h.uc.Signup(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	h.setCookie(c, out.Token, time.Now().Add(24*time.Hour))
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Signin godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SigninRequest  true  "identificador (email, teléfono o username) y password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/signin [post]
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var in dto.SigninRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badBody())
	}
	out, err := h.uc.Signin(c.UserContext(), in)
	if err != nil {
		status, _ := errorStatus(err)
		if status == fiber.StatusUnauthorized {
			return c.Status(status).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
		}
		if status == fiber.StatusForbidden {
			return c.Status(status).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "cuenta inactiva o suspendida"})
		}
		return respondError(c, err)
	}
	h.setCookie(c, out.Token, time.Now().Add(24*time.Hour))
	return c.JSON(out)
}

// Me godoc
// @Summary      Usuario autenticado
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u := GetUser(c)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autenticado"})
	}
	return c.JSON(auth.ToUserResponse(u))
}

// Logout godoc
// @Summary      Cerrar sesión
// @Description  Sin estado en el servidor: sólo borra la cookie del token.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.OKResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.setCookie(c, "", time.Unix(0, 0))
	return c.JSON(dto.OKResponse{OK: true})
}
