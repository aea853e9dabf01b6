package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/analytics"
)

// DashboardHandler contadores del inicio y búsqueda global.
type DashboardHandler struct {
	uc     *analytics.DashboardUseCase
	search *analytics.SearchUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *analytics.DashboardUseCase, search *analytics.SearchUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc, search: search}
}

// mine ?scope=mine limita los contadores a los registros propios.
func mine(c *fiber.Ctx) bool {
	return c.Query("scope") == "mine"
}

// Stats godoc
// @Summary      Contadores planos
// @Tags         stats
// @Security     Bearer
// @Produce      json
// @Param        scope  query  string  false  "mine para sólo lo propio"
// @Success      200    {object}  dto.StatsFlatDTO
// @Router       /api/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), GetPrincipal(c), mine(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out.Flat())
}

// Summary godoc
// @Summary      Resumen de leads, deals y actividades
// @Tags         stats
// @Security     Bearer
// @Produce      json
// @Param        scope  query  string  false  "mine para sólo lo propio"
// @Success      200    {object}  dto.StatsSummaryDTO
// @Router       /api/stats/summary [get]
// @Router       /api/stats/home [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), GetPrincipal(c), mine(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Leads godoc
// @Summary      Contadores de leads
// @Tags         stats
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LeadStats
// @Router       /api/leads/stats [get]
func (h *DashboardHandler) Leads(c *fiber.Ctx) error {
	out, err := h.uc.Leads(c.UserContext(), GetPrincipal(c), mine(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Deals godoc
// @Summary      Contadores de oportunidades
// @Tags         stats
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DealStats
// @Router       /api/deals/stats [get]
func (h *DashboardHandler) Deals(c *fiber.Ctx) error {
	out, err := h.uc.Deals(c.UserContext(), GetPrincipal(c), mine(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Activities godoc
// @Summary      Contadores de actividades
// @Tags         stats
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ActivityStats
// @Router       /api/activities/stats [get]
func (h *DashboardHandler) Activities(c *fiber.Ctx) error {
	out, err := h.uc.Activities(c.UserContext(), GetPrincipal(c), mine(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Búsqueda global
// @Tags         search
// @Security     Bearer
// @Produce      json
// @Param        q    query  string  false  "Texto a buscar"
// @Success      200  {object}  dto.SearchResponse
// @Router       /api/search [get]
func (h *DashboardHandler) Search(c *fiber.Ctx) error {
	out, err := h.search.Search(c.UserContext(), GetPrincipal(c), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
