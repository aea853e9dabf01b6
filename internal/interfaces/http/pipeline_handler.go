package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/usecase"
)

// PipelineHandler etapas del embudo y pronóstico.
type PipelineHandler struct {
	uc *usecase.PipelineUseCase
}

// NewPipelineHandler construye el handler.
func NewPipelineHandler(uc *usecase.PipelineUseCase) *PipelineHandler {
	return &PipelineHandler{uc: uc}
}

// Get godoc
// @Summary      Pipeline de la org (o el de fábrica)
// @Tags         pipeline
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.Pipeline
// @Router       /api/pipeline [get]
func (h *PipelineHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetPrincipal(c).OrgID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Replace godoc
// @Summary      Reemplazar etapas (admin o manager)
// @Description  stages acepta nombres o objetos {key, name, probability, order}.
// @Tags         pipeline
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "{\"stages\": [...]}"
// @Success      200   {object}  entity.Pipeline
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/pipeline [post]
func (h *PipelineHandler) Replace(c *fiber.Ctx) error {
	out, err := h.uc.Replace(c.UserContext(), GetPrincipal(c), c.Body())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Stages godoc
// @Summary      Etapas para el selector de deals
// @Tags         pipeline
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StageLabel
// @Router       /api/deals/stages [get]
func (h *PipelineHandler) Stages(c *fiber.Ctx) error {
	out, err := h.uc.Labels(c.UserContext(), GetPrincipal(c).OrgID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Forecast godoc
// @Summary      Pronóstico ponderado por etapa y mes
// @Tags         pipeline
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  pipeline.Forecast
// @Router       /api/forecasts/summary [get]
func (h *PipelineHandler) Forecast(c *fiber.Ctx) error {
	out, err := h.uc.Forecast(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
