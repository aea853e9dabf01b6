package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// MeetingHandler CRUD de reuniones más ICS, RSVP y reenvío.
type MeetingHandler struct {
	*ScopedHandler[*entity.Meeting]
	uc *usecase.MeetingUseCase
}

// NewMeetingHandler construye el handler.
func NewMeetingHandler(uc *usecase.MeetingUseCase) *MeetingHandler {
	return &MeetingHandler{ScopedHandler: NewScopedHandler(uc.ScopedUseCase), uc: uc}
}

// ICS godoc
// @Summary      Invitación iCalendar
// @Tags         meetings
// @Security     Bearer
// @Produce      text/calendar
// @Param        id   path  string  true  "ID de la reunión"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/meetings/{id}/ics [get]
func (h *MeetingHandler) ICS(c *fiber.Ctx) error {
	id := c.Params("id")
	b, err := h.uc.ICS(c.UserContext(), GetPrincipal(c), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="meeting-%s.ics"`, id))
	return c.Send(b)
}

// RSVP godoc
// @Summary      Responder a una reunión
// @Tags         meetings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID de la reunión"
// @Param        body  body  dto.RSVPRequest  true  "response: accepted|declined|tentative|needsAction"
// @Success      200   {object}  entity.Meeting
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/meetings/{id}/rsvp [post]
func (h *MeetingHandler) RSVP(c *fiber.Ctx) error {
	var in dto.RSVPRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badBody())
	}
	out, err := h.uc.RSVP(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Forward godoc
// @Summary      Agregar asistente
// @Tags         meetings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la reunión"
// @Param        body  body  dto.ForwardRequest  true  "email, name o userId"
// @Success      200   {object}  entity.Meeting
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/meetings/{id}/forward [post]
func (h *MeetingHandler) Forward(c *fiber.Ctx) error {
	var in dto.ForwardRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badBody())
	}
	out, err := h.uc.Forward(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Mount registra CRUD y extras; read es el guard de sólo lectura usado por RSVP.
func (h *MeetingHandler) Mount(r fiber.Router, guard, read fiber.Handler) {
	r.Get("/:id/ics", guard, h.ICS)
	r.Post("/:id/rsvp", read, h.RSVP)
	r.Post("/:id/forward", guard, h.Forward)
	h.ScopedHandler.Mount(r, guard)
}
