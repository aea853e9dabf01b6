package http

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// DocumentHandler documentos subidos: listado, subida multipart y borrado con su archivo.
type DocumentHandler struct {
	*ScopedHandler[*entity.Document]
	uc      *usecase.ScopedUseCase[*entity.Document]
	uploads Uploads
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc *usecase.ScopedUseCase[*entity.Document], uploads Uploads) *DocumentHandler {
	return &DocumentHandler{ScopedHandler: NewScopedHandler(uc), uc: uc, uploads: uploads}
}

// Upload godoc
// @Summary      Subir documento
// @Tags         documents
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        file   formData  file    true   "Archivo"
// @Param        title  formData  string  false  "Título (por defecto el nombre del archivo)"
// @Success      201    {object}  entity.Document
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      413    {object}  dto.ErrorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	f, err := h.uploads.save(c, "file", 0)
	if err != nil {
		return respondError(c, err)
	}
	doc := &entity.Document{
		Title:    strings.TrimSpace(c.FormValue("title")),
		Filename: f.Name,
		Mime:     f.Mime,
		Size:     f.Size,
		Ext:      f.Ext,
		Path:     f.URL,
	}
	if err := h.uc.Add(c.UserContext(), GetPrincipal(c), doc); err != nil {
		h.uploads.remove(f.Path)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Delete godoc
// @Summary      Eliminar documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.OKResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	ctx, p, id := c.UserContext(), GetPrincipal(c), c.Params("id")
	doc, err := h.uc.Get(ctx, p, id)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.Remove(ctx, p, id); err != nil {
		return respondError(c, err)
	}
	if strings.HasPrefix(doc.Path, UploadsPrefix+"/") {
		h.uploads.remove(filepath.Join(h.uploads.Dir, filepath.Base(doc.Path)))
	}
	return c.JSON(dto.OKResponse{OK: true})
}

// Mount registra listado, detalle, subida y borrado.
func (h *DocumentHandler) Mount(r fiber.Router, guard fiber.Handler) {
	r.Get("/", guard, h.List)
	r.Post("/", guard, h.Upload)
	r.Get("/:id", guard, h.Get)
	r.Delete("/:id", guard, h.Delete)
}
