package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la organización.
// SKU es único por org; no está sujeto a ACL de registros.
type Product struct {
	ID          string
	OrgID       string
	CreatedBy   string
	SKU         string // código único por org
	Name        string
	Description string
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Stock       int
	Active      bool
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
