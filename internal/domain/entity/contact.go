package entity

import (
	"strings"

	"github.com/jhoicas/crm-api/internal/domain"
)

// Contact persona de contacto, opcionalmente ligada a un Account.
type Contact struct {
	Tenant
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Title     string `json:"title"`
	AccountID string `json:"accountId"`
	Address   string `json:"address"`
	Notes     string `json:"notes"`
}

// FullName nombre y apellido.
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c *Contact) Normalize() error {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Title = strings.TrimSpace(c.Title)
	if c.FirstName == "" && c.LastName == "" && c.Email == "" {
		return domain.Invalid("firstName", "se requiere nombre o email")
	}
	return nil
}

// Account empresa cliente.
type Account struct {
	Tenant
	Name      string `json:"name"`
	NameLower string `json:"-"`
	Industry  string `json:"industry"`
	Phone     string `json:"phone"`
	Website   string `json:"website"`
	Notes     string `json:"notes"`
}

func (a *Account) Normalize() error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return domain.Invalid("name", "es requerido")
	}
	a.NameLower = strings.ToLower(a.Name)
	a.Industry = strings.TrimSpace(a.Industry)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Website = strings.TrimSpace(a.Website)
	return nil
}
