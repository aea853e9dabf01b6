package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain"
)

// Tipos de documento comercial.
const (
	DocQuote      = "Quote"
	DocInvoice    = "Invoice"
	DocSalesOrder = "SalesOrder"
)

// DocKind reglas por tipo de documento: prefijo de numeración y estados permitidos.
type DocKind struct {
	Type     string
	Prefix   string
	Statuses []string // el primero es el estado por defecto
}

var docKinds = map[string]DocKind{
	DocQuote:      {Type: DocQuote, Prefix: "Q-", Statuses: []string{"Draft", "Sent", "Accepted", "Declined"}},
	DocInvoice:    {Type: DocInvoice, Prefix: "INV-", Statuses: []string{"Open", "Paid", "Cancelled"}},
	DocSalesOrder: {Type: DocSalesOrder, Prefix: "SO-", Statuses: []string{"Open", "Fulfilled", "Cancelled"}},
}

// KindOf devuelve las reglas del tipo; ok=false si no existe.
func KindOf(docType string) (DocKind, bool) {
	k, ok := docKinds[docType]
	return k, ok
}

// LineItem línea de un documento.
type LineItem struct {
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Qty       decimal.Decimal `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

// SalesDoc cotización, factura u orden de venta.
type SalesDoc struct {
	Tenant
	DocType  string          `json:"docType"`
	Number   string          `json:"number"`
	Account  string          `json:"account"`
	Date     time.Time       `json:"date"`
	Status   string          `json:"status"`
	Items    []LineItem      `json:"items"`
	TaxRate  decimal.Decimal `json:"taxRate"` // porcentaje
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Notes    string          `json:"notes"`
}

var hundred = decimal.NewFromInt(100)

// Totals subtotal = Σ qty×price; tax = subtotal×taxRate/100; total = subtotal+tax.
func Totals(items []LineItem, taxRate decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Qty.Mul(it.Price))
	}
	tax = subtotal.Mul(taxRate).Div(hundred)
	return subtotal, tax, subtotal.Add(tax)
}

// NewDocNumber genera un número "INV-2026-3FA9C1".
func NewDocNumber(docType string, now time.Time) string {
	prefix := "DOC-"
	if k, ok := KindOf(docType); ok {
		prefix = k.Prefix
	}
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s%d-%s", prefix, now.Year(), code)
}

// Normalize valida el documento, asigna número y estado por defecto y recalcula totales.
func (d *SalesDoc) Normalize(now time.Time) error {
	kind, ok := KindOf(d.DocType)
	if !ok {
		return domain.Invalid("docType", "tipo de documento desconocido")
	}
	d.Account = strings.TrimSpace(d.Account)
	if d.Account == "" {
		return domain.Invalid("account", "es requerido")
	}
	d.Number = strings.TrimSpace(d.Number)
	if d.Number == "" {
		d.Number = NewDocNumber(d.DocType, now)
	}
	if d.Date.IsZero() {
		d.Date = now
	}
	var err error
	if d.Status, err = oneOf("status", d.Status, kind.Statuses, kind.Statuses[0]); err != nil {
		return err
	}
	if d.TaxRate.IsNegative() {
		return domain.Invalid("taxRate", "debe ser >= 0")
	}
	for i := range d.Items {
		it := &d.Items[i]
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			return domain.Invalid(fmt.Sprintf("items[%d].name", i), "es requerido")
		}
		if it.Qty.IsNegative() || it.Price.IsNegative() {
			return domain.Invalid(fmt.Sprintf("items[%d]", i), "qty y price deben ser >= 0")
		}
	}
	if d.Items == nil {
		d.Items = []LineItem{}
	}
	d.Subtotal, d.Tax, d.Total = Totals(d.Items, d.TaxRate)
	return nil
}
