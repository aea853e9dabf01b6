package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain"
)

// MaxLogoBytes tamaño máximo del logo de la org.
const MaxLogoBytes = 2 << 20

// CompanyHandler maneja la org del usuario autenticado.
type CompanyHandler struct {
	uc      *usecase.CompanyUseCase
	uploads Uploads
}

// NewCompanyHandler construye el handler inyectando el caso de uso.
func NewCompanyHandler(uc *usecase.CompanyUseCase, uploads Uploads) *CompanyHandler {
	return &CompanyHandler{uc: uc, uploads: uploads}
}

// Get godoc
// @Summary      Org del usuario
// @Tags         company
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CompanyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/company [get]
func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar org (admin)
// @Tags         company
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateCompanyRequest  true  "name, domain, timezone, locale, logoUrl"
// @Success      200   {object}  dto.CompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/company [patch]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badBody())
	}
	out, err := h.uc.Update(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Logo godoc
// @Summary      Subir logo (admin, imagen hasta 2MB)
// @Tags         company
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file  true  "Imagen"
// @Success      200   {object}  dto.CompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      413   {object}  dto.ErrorResponse
// @Router       /api/company/logo [post]
func (h *CompanyHandler) Logo(c *fiber.Ctx) error {
	if fh, err := c.FormFile("file"); err == nil {
		if !strings.HasPrefix(mimeOf(fh), "image/") {
			return respondError(c, domain.Invalid("file", "el logo debe ser una imagen"))
		}
	}
	f, err := h.uploads.save(c, "file", MaxLogoBytes)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.SetLogo(c.UserContext(), GetPrincipal(c), f.URL)
	if err != nil {
		h.uploads.remove(f.Path)
		return respondError(c, err)
	}
	return c.JSON(out)
}
