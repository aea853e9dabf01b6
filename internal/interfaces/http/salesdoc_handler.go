package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// DigestHeader header con el digest (sha256, base64) de la forma canónica del XML.
const DigestHeader = "X-Content-Digest"

// SalesDocHandler cotizaciones, facturas y órdenes de venta: CRUD, estadísticas, PDF y XML.
type SalesDocHandler struct {
	*ScopedHandler[*entity.SalesDoc]
	uc *usecase.SalesDocUseCase
}

// NewSalesDocHandler construye el handler de un tipo de documento.
func NewSalesDocHandler(uc *usecase.SalesDocUseCase) *SalesDocHandler {
	return &SalesDocHandler{ScopedHandler: NewScopedHandler(uc.ScopedUseCase), uc: uc}
}

// Stats godoc
// @Summary      Totales de documentos (visibles y últimos 7 días)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DocStatsDTO
// @Router       /api/invoices/stats [get]
// @Router       /api/quotes/stats [get]
// @Router       /api/salesorders/stats [get]
func (h *SalesDocHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      PDF del documento
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
// @Router       /api/quotes/{id}/pdf [get]
// @Router       /api/salesorders/{id}/pdf [get]
func (h *SalesDocHandler) PDF(c *fiber.Ctx) error {
	b, doc, err := h.uc.PDF(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s.pdf"`, fileName(doc)))
	return c.Send(b)
}

// XML godoc
// @Summary      XML UBL de la factura
// @Description  El header X-Content-Digest lleva el sha256 (base64) de la forma canónica C14N.
// @Tags         sales
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/xml [get]
func (h *SalesDocHandler) XML(c *fiber.Ctx) error {
	b, digest, err := h.uc.XML(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(DigestHeader, digest)
	return c.Send(b)
}

// Mount registra las extras antes del CRUD para que /stats no caiga en /:id.
func (h *SalesDocHandler) Mount(r fiber.Router, guard fiber.Handler) {
	r.Get("/stats", guard, h.Stats)
	r.Get("/:id/pdf", guard, h.PDF)
	if h.uc.DocType() == entity.DocInvoice {
		r.Get("/:id/xml", guard, h.XML)
	}
	h.ScopedHandler.Mount(r, guard)
}

func fileName(doc *entity.SalesDoc) string {
	if doc == nil || doc.Number == "" {
		return "documento"
	}
	return doc.Number
}
