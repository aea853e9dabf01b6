package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain"
)

// DefaultDealName nombre usado cuando el deal llega sin nombre.
const DefaultDealName = "Untitled Deal"

// Deal oportunidad de venta dentro del pipeline.
type Deal struct {
	Tenant
	Name        string          `json:"name"`
	Stage       string          `json:"stage"` // etiqueta de la etapa del pipeline
	Amount      decimal.Decimal `json:"amount"`
	Probability *float64        `json:"probability"`
	AccountID   string          `json:"accountId"`
	Account     string          `json:"account"`
	CloseDate   *time.Time      `json:"closeDate"`
}

// Normalize valida los campos independientes del pipeline.
// La etapa y la probabilidad por defecto se resuelven contra el pipeline de la org.
func (d *Deal) Normalize() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		d.Name = DefaultDealName
	}
	d.Account = strings.TrimSpace(d.Account)
	if d.Amount.IsNegative() {
		return domain.Invalid("amount", "debe ser >= 0")
	}
	if d.Probability != nil && (*d.Probability < 0 || *d.Probability > 1) {
		return domain.Invalid("probability", "debe estar entre 0 y 1")
	}
	return nil
}

// IsClosed etapa ganada o perdida.
func (d *Deal) IsClosed() bool {
	return strings.Contains(strings.ToLower(d.Stage), "closed")
}
