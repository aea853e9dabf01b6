package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
)

// ImportHandler importación de CSV/XLSX a un módulo.
type ImportHandler struct {
	uc      *usecase.ImportUseCase
	modules moduleChecker
}

// NewImportHandler construye el handler; modules verifica escritura sobre el módulo destino.
func NewImportHandler(uc *usecase.ImportUseCase, modules moduleChecker) *ImportHandler {
	return &ImportHandler{uc: uc, modules: modules}
}

// Import godoc
// @Summary      Importar registros
// @Description  CSV (UTF-8, UTF-8 con BOM o Windows-1252) o XLSX (primera hoja). Las filas inválidas se omiten.
// @Tags         import
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        file    formData  file    true  "Archivo"
// @Param        module  formData  string  true  "leads, contacts, accounts, deals o activities"
// @Success      200     {object}  dto.ImportResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/import [post]
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	p := GetPrincipal(c)
	module := c.FormValue("module", c.Query("module"))
	target, ok := h.uc.Target(module)
	if !ok {
		return respondError(c, domain.Invalid("module", "módulo no soportado"))
	}
	if err := h.allowed(c, p, target); err != nil {
		return respondError(c, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, domain.Invalid("file", "archivo requerido"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	out, err := h.uc.Import(c.UserContext(), p, module, fh.Filename, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *ImportHandler) allowed(c *fiber.Ctx, p acl.Principal, module string) error {
	if h.modules == nil {
		return nil
	}
	ok, err := h.modules.HasModuleAccess(c.UserContext(), p, module, true)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}
