package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
)

// UserHandler usuarios de la org, perfil propio e invitaciones.
type UserHandler struct {
	uc *usecase.UserUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// Me godoc
// @Summary      Perfil propio
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.Me(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateMe godoc
// @Summary      Actualizar perfil propio
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateMeRequest  true  "name, phone, avatar"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/users/me [patch]
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var in dto.UpdateMeRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badBody())
	}
	out, err := h.uc.UpdateMe(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar usuarios de la org (admin)
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar usuario (admin)
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "role, active, profile, avatar, managerId"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/{id} [patch]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badBody())
	}
	out, err := h.uc.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Invite godoc
// @Summary      Invitar usuarios (admin)
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvitesRequest  true  "emails, role, profile"
// @Success      201   {object}  dto.CreateInvitesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/users/invite [post]
func (h *UserHandler) Invite(c *fiber.Ctx) error {
	var in dto.CreateInvitesRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badBody())
	}
	out, err := h.uc.CreateInvites(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Invites godoc
// @Summary      Invitaciones pendientes (admin)
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.InviteResponse
// @Router       /api/users/invites [get]
func (h *UserHandler) Invites(c *fiber.Ctx) error {
	out, err := h.uc.ListInvites(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RevokeInvite godoc
// @Summary      Revocar invitación (admin)
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la invitación"
// @Success      200  {object}  dto.OKResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/invites/{id} [delete]
func (h *UserHandler) RevokeInvite(c *fiber.Ctx) error {
	if err := h.uc.RevokeInvite(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OKResponse{OK: true})
}

// Roles godoc
// @Summary      Catálogo de roles
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RoleInfo
// @Router       /api/roles [get]
func (h *UserHandler) Roles(c *fiber.Ctx) error {
	return c.JSON(h.uc.Roles())
}
