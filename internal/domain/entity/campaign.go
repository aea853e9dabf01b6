package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain"
)

var CampaignStatuses = []string{"Draft", "Planned", "Running", "Paused", "Completed", "Cancelled"}

// Campaign campaña de marketing.
type Campaign struct {
	Tenant
	Name       string          `json:"name"`
	Channel    string          `json:"channel"` // Email, Ads, Social, Event...
	Status     string          `json:"status"`
	StartDate  *time.Time      `json:"startDate"`
	EndDate    *time.Time      `json:"endDate"`
	Budget     decimal.Decimal `json:"budget"`
	ActualCost decimal.Decimal `json:"actualCost"`
	Notes      string          `json:"notes"`
}

func (c *Campaign) Normalize() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return domain.Invalid("name", "es requerido")
	}
	switch strings.ToLower(strings.TrimSpace(c.Status)) {
	case "active":
		c.Status = "Running"
	case "planning":
		c.Status = "Planned"
	}
	var err error
	if c.Status, err = oneOf("status", c.Status, CampaignStatuses, "Draft"); err != nil {
		return err
	}
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		return domain.Invalid("endDate", "no puede ser anterior a startDate")
	}
	if c.Budget.IsNegative() || c.ActualCost.IsNegative() {
		return domain.Invalid("budget", "debe ser >= 0")
	}
	return nil
}

// Document archivo subido por un usuario.
type Document struct {
	Tenant
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Mime     string `json:"mime"`
	Size     int64  `json:"size"`
	Ext      string `json:"ext"`
	Path     string `json:"path"` // /uploads/<filename>
}

func (d *Document) Normalize() error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Filename == "" {
		return domain.Invalid("filename", "es requerido")
	}
	if d.Title == "" {
		d.Title = d.Filename
	}
	return nil
}
