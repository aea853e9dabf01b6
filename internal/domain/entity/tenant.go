package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Montos como números JSON, no como strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Visibilidad de un registro dentro de la organización.
const (
	VisibilityPrivate = "private"
	VisibilityShared  = "shared"
	VisibilityOrg     = "org"
)

// ValidVisibility indica si v es una visibilidad conocida.
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPrivate, VisibilityShared, VisibilityOrg:
		return true
	}
	return false
}

// Tenant identidad, organización y propiedad de un registro.
// Todos los recursos del CRM sujetos a ACL lo embeben.
type Tenant struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"orgId"`
	OwnerID    string    `json:"ownerId"`
	AssignedTo []string  `json:"assignedTo"`
	Visibility string    `json:"visibility"`
	SharedWith []string  `json:"sharedWith"`
	CreatedBy  string    `json:"createdBy"`
	UpdatedBy  string    `json:"updatedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Tenancy devuelve el propio Tenant; satisface Scoped para cualquier struct que lo embeba.
func (t *Tenant) Tenancy() *Tenant { return t }

// IsAssigned indica si userID está en AssignedTo.
func (t *Tenant) IsAssigned(userID string) bool { return contains(t.AssignedTo, userID) }

// IsSharedWith indica si userID está en SharedWith.
func (t *Tenant) IsSharedWith(userID string) bool { return contains(t.SharedWith, userID) }

// Scoped es cualquier recurso con campos de tenant.
type Scoped interface {
	Tenancy() *Tenant
}

func contains(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
