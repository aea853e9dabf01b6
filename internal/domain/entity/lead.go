package entity

import (
	"strings"

	"github.com/jhoicas/crm-api/internal/domain"
)

// Orígenes y estados de un lead.
var (
	LeadSources  = []string{"Web", "Referral", "Event", "Ads", "Email"}
	LeadStatuses = []string{"New", "Contacted", "Qualified", "Unqualified"}
)

// Lead prospecto comercial.
type Lead struct {
	Tenant
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Source    string `json:"source"`
	Status    string `json:"status"`
}

// Normalize recorta campos, deriva el nombre y valida los enums.
func (l *Lead) Normalize() error {
	l.FirstName = strings.TrimSpace(l.FirstName)
	l.LastName = strings.TrimSpace(l.LastName)
	l.Name = strings.TrimSpace(l.Name)
	l.Email = strings.ToLower(strings.TrimSpace(l.Email))
	l.Phone = strings.TrimSpace(l.Phone)
	l.Company = strings.TrimSpace(l.Company)
	if l.Name == "" {
		l.Name = strings.TrimSpace(l.FirstName + " " + l.LastName)
	}
	var err error
	if l.Source, err = oneOf("source", l.Source, LeadSources, "Web"); err != nil {
		return err
	}
	if l.Status, err = oneOf("status", l.Status, LeadStatuses, "New"); err != nil {
		return err
	}
	return nil
}

// oneOf acepta v (sin distinguir mayúsculas) si está en allowed y devuelve la forma canónica.
func oneOf(field, v string, allowed []string, def string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	for _, a := range allowed {
		if strings.EqualFold(a, v) {
			return a, nil
		}
	}
	return "", domain.Invalid(field, "valor no permitido: "+v)
}
