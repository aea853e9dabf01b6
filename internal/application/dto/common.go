package dto

import "math"

// Límites de paginación de los listados.
const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// ListParams parámetros de listado (query string).
type ListParams struct {
	Page    int
	Limit   int
	Sort    string
	Dir     string // asc | desc
	Search  string
	Filters map[string]string
}

// Normalize aplica los valores por defecto: page >= 1, limit en [1, 100], sort createdAt desc.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	if p.Sort == "" {
		p.Sort = "createdAt"
	}
	if p.Dir != "asc" {
		p.Dir = "desc"
	}
}

// ListResponse página de resultados.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

// NewListResponse calcula pages = ceil(total/limit).
func NewListResponse[T any](items []T, total, page, limit int) *ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &ListResponse[T]{Items: items, Total: total, Page: page, Pages: pages, Limit: limit}
}

// OKResponse respuesta de operaciones sin cuerpo (remove, logout...).
type OKResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
