package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain"
)

// AuditHandler consulta del registro de auditoría (admin).
type AuditHandler struct {
	uc *usecase.AuditUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// parseWhen acepta RFC3339 o fecha YYYY-MM-DD; vacío devuelve nil.
func parseWhen(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Invalid(field, "fecha inválida")
}

// List godoc
// @Summary      Eventos de auditoría (admin)
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        q      query  string  false  "Actor, acción u objetivo"
// @Param        from   query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to     query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit  query  int     false  "1 a 500"  default(100)
// @Success      200    {array}   dto.AuditRow
// @Failure      403    {object}  dto.ErrorResponse
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	from, err := parseWhen("from", c.Query("from"))
	if err != nil {
		return respondError(c, err)
	}
	to, err := parseWhen("to", c.Query("to"))
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c), c.Query("q"), from, to, c.QueryInt("limit", 100))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
