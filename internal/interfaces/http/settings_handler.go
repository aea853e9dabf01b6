package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/usecase"
)

// SettingsHandler política de seguridad, política por rol e integraciones.
type SettingsHandler struct {
	uc *usecase.PolicyUseCase
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(uc *usecase.PolicyUseCase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// Security godoc
// @Summary      Política de seguridad
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.SecurityPolicy
// @Router       /api/security/policies [get]
func (h *SettingsHandler) Security(c *fiber.Ctx) error {
	out, err := h.uc.Security(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateSecurity godoc
// @Summary      Actualizar política de seguridad (admin)
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  entity.SecurityPolicy  true  "requireMfa, sessionTimeout, passwordMin, passwordRotationDays"
// @Success      200   {object}  entity.SecurityPolicy
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/security/policies [patch]
func (h *SettingsHandler) UpdateSecurity(c *fiber.Ctx) error {
	out, err := h.uc.UpdateSecurity(c.UserContext(), GetPrincipal(c), c.Body())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Roles godoc
// @Summary      Política de acceso por rol y módulo
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.RolePolicy
// @Router       /api/roles/policy [get]
func (h *SettingsHandler) Roles(c *fiber.Ctx) error {
	out, err := h.uc.Roles(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateRoles godoc
// @Summary      Actualizar política por rol (admin)
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  entity.RolePolicy  true  "modules: módulo → rol → no|ro|rw"
// @Success      200   {object}  entity.RolePolicy
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/roles/policy [patch]
func (h *SettingsHandler) UpdateRoles(c *fiber.Ctx) error {
	out, err := h.uc.UpdateRoles(c.UserContext(), GetPrincipal(c), c.Body())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Integrations godoc
// @Summary      Integraciones de la org
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.IntegrationSettings
// @Router       /api/integrations [get]
func (h *SettingsHandler) Integrations(c *fiber.Ctx) error {
	out, err := h.uc.Integrations(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateIntegrations godoc
// @Summary      Guardar integraciones (admin)
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  entity.IntegrationSettings  true  "slack, zapier, mailchimp, stripe, emailProviders"
// @Success      200   {object}  entity.IntegrationSettings
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/integrations [put]
func (h *SettingsHandler) UpdateIntegrations(c *fiber.Ctx) error {
	out, err := h.uc.UpdateIntegrations(c.UserContext(), GetPrincipal(c), c.Body())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ConnectEmail godoc
// @Summary      Conectar proveedor de correo (admin)
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "{\"provider\": \"gmail\"}"
// @Success      200   {object}  entity.IntegrationSettings
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/integrations/email/connect [post]
func (h *SettingsHandler) ConnectEmail(c *fiber.Ctx) error {
	var in struct {
		Provider string `json:"provider"`
	}
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badBody())
	}
	out, err := h.uc.ConnectEmail(c.UserContext(), GetPrincipal(c), in.Provider)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
