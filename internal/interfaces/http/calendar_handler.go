package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
)

// CalendarHandler disponibilidad del usuario, reservas y página pública por slug.
type CalendarHandler struct {
	uc *usecase.CalendarUseCase
}

// NewCalendarHandler construye el handler.
func NewCalendarHandler(uc *usecase.CalendarUseCase) *CalendarHandler {
	return &CalendarHandler{uc: uc}
}

// Settings godoc
// @Summary      Disponibilidad propia
// @Tags         calendar
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.CalendarSettings
// @Router       /api/calendar/settings [get]
func (h *CalendarHandler) Settings(c *fiber.Ctx) error {
	p := GetPrincipal(c)
	out, err := h.uc.Settings(c.UserContext(), p.OrgID, p.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateSettings godoc
// @Summary      Guardar disponibilidad
// @Tags         calendar
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  entity.CalendarSettings  true  "slug, days, start, end, duration"
// @Success      200   {object}  entity.CalendarSettings
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/calendar/settings [patch]
func (h *CalendarHandler) UpdateSettings(c *fiber.Ctx) error {
	out, err := h.uc.UpdateSettings(c.UserContext(), GetPrincipal(c), c.Body())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Slots godoc
// @Summary      Huecos libres de un día
// @Tags         calendar
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  true  "YYYY-MM-DD"
// @Success      200   {object}  dto.SlotsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/calendar/slots [get]
func (h *CalendarHandler) Slots(c *fiber.Ctx) error {
	p := GetPrincipal(c)
	out, err := h.uc.Slots(c.UserContext(), p.OrgID, p.UserID, c.Query("date"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Book godoc
// @Summary      Reservar reunión propia
// @Tags         calendar
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BookRequest  true  "when, durationMinutes, title..."
// @Success      201   {object}  entity.Meeting
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/calendar/book [post]
func (h *CalendarHandler) Book(c *fiber.Ctx) error {
	var in dto.BookRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badBody())
	}
	out, err := h.uc.Book(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PublicSettings godoc
// @Summary      Página pública de reservas
// @Tags         calendar
// @Produce      json
// @Param        slug  path  string  true  "Slug"
// @Success      200   {object}  entity.CalendarSettings
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/calendar/public/{slug} [get]
func (h *CalendarHandler) PublicSettings(c *fiber.Ctx) error {
	out, err := h.uc.PublicSettings(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PublicSlots godoc
// @Summary      Huecos libres públicos
// @Tags         calendar
// @Produce      json
// @Param        slug  path   string  true  "Slug"
// @Param        date  query  string  true  "YYYY-MM-DD"
// @Success      200   {object}  dto.SlotsResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/calendar/public/{slug}/slots [get]
func (h *CalendarHandler) PublicSlots(c *fiber.Ctx) error {
	out, err := h.uc.PublicSlots(c.UserContext(), c.Params("slug"), c.Query("date"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PublicBook godoc
// @Summary      Reserva pública
// @Tags         calendar
// @Accept       json
// @Produce      json
// @Param        slug  path  string           true  "Slug"
// @Param        body  body  dto.BookRequest  true  "when, name, email, notes"
// @Success      201   {object}  entity.Meeting
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/calendar/public/{slug}/book [post]
func (h *CalendarHandler) PublicBook(c *fiber.Ctx) error {
	var in dto.BookRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badBody())
	}
	out, err := h.uc.PublicBook(c.UserContext(), c.Params("slug"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
