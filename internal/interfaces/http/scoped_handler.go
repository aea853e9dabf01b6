package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// reservedQuery parámetros de listado que no son filtros.
var reservedQuery = map[string]bool{
	"page": true, "limit": true, "sort": true, "dir": true, "order": true, "q": true, "search": true,
}

// listParams lee page, limit, sort, dir y q/search; el resto del query string pasa como filtro.
func listParams(c *fiber.Ctx) dto.ListParams {
	p := dto.ListParams{
		Page:    c.QueryInt("page", 1),
		Limit:   c.QueryInt("limit", dto.DefaultLimit),
		Sort:    c.Query("sort"),
		Dir:     strings.ToLower(c.Query("dir", c.Query("order"))),
		Search:  strings.TrimSpace(c.Query("q", c.Query("search"))),
		Filters: map[string]string{},
	}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		if reservedQuery[key] || len(v) == 0 {
			return
		}
		p.Filters[key] = string(v)
	})
	return p
}

// ScopedHandler CRUD HTTP de un recurso con ACL (leads, contacts, deals, tasks...).
type ScopedHandler[T entity.Scoped] struct {
	uc *usecase.ScopedUseCase[T]
}

// NewScopedHandler construye el handler.
func NewScopedHandler[T entity.Scoped](uc *usecase.ScopedUseCase[T]) *ScopedHandler[T] {
	return &ScopedHandler[T]{uc: uc}
}

// List GET /api/<recurso>?page=&limit=&sort=&dir=&q=&<filtro>=
func (h *ScopedHandler[T]) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c), listParams(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get GET /api/<recurso>/:id
func (h *ScopedHandler[T]) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create POST /api/<recurso>
func (h *ScopedHandler[T]) Create(c *fiber.Ctx) error {
	out, err := h.uc.Create(c.UserContext(), GetPrincipal(c), c.Body())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update PATCH/PUT /api/<recurso>/:id
func (h *ScopedHandler[T]) Update(c *fiber.Ctx) error {
	out, err := h.uc.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), c.Body())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Remove DELETE /api/<recurso>/:id
func (h *ScopedHandler[T]) Remove(c *fiber.Ctx) error {
	if err := h.uc.Remove(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OKResponse{OK: true})
}

// Mount registra las rutas CRUD en r detrás de guard (política del módulo).
func (h *ScopedHandler[T]) Mount(r fiber.Router, guard fiber.Handler) {
	r.Get("/", guard, h.List)
	r.Post("/", guard, h.Create)
	r.Get("/:id", guard, h.Get)
	r.Patch("/:id", guard, h.Update)
	r.Put("/:id", guard, h.Update)
	r.Delete("/:id", guard, h.Remove)
}
