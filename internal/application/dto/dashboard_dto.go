package dto

import "time"

// LeadStats leads totales y creados hoy.
type LeadStats struct {
	Total int `json:"total"`
	Today int `json:"today"`
}

// DealStats deals abiertos y creados esta semana (domingo a sábado, UTC).
type DealStats struct {
	Open int `json:"open"`
	Week int `json:"week"`
}

// ActivityStats tareas+reuniones+llamadas y las que vencen u ocurren hoy.
type ActivityStats struct {
	Total    int `json:"total"`
	DueToday int `json:"dueToday"`
}

// StatsSummaryDTO respuesta de GET /api/stats/home y /api/stats/summary.
type StatsSummaryDTO struct {
	Leads      LeadStats     `json:"leads"`
	Deals      DealStats     `json:"deals"`
	Activities ActivityStats `json:"activities"`
}

// StatsFlatDTO respuesta de GET /api/stats.
type StatsFlatDTO struct {
	LeadsTotal         int `json:"leadsTotal"`
	LeadsToday         int `json:"leadsToday"`
	DealsOpen          int `json:"dealsOpen"`
	DealsThisWeek      int `json:"dealsThisWeek"`
	ActivitiesTotal    int `json:"activitiesTotal"`
	ActivitiesDueToday int `json:"activitiesDueToday"`
}

// Flat versión plana del resumen.
func (s StatsSummaryDTO) Flat() StatsFlatDTO {
	return StatsFlatDTO{
		LeadsTotal:         s.Leads.Total,
		LeadsToday:         s.Leads.Today,
		DealsOpen:          s.Deals.Open,
		DealsThisWeek:      s.Deals.Week,
		ActivitiesTotal:    s.Activities.Total,
		ActivitiesDueToday: s.Activities.DueToday,
	}
}

// DocStatsDTO respuesta de GET /api/<quotes|invoices|salesorders>/stats.
type DocStatsDTO struct {
	Total  int `json:"total"`
	Last7d int `json:"last7d"`
}

// SearchHit resultado resumido de la búsqueda global.
type SearchHit struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle,omitempty"`
	Status   string     `json:"status,omitempty"`
	When     *time.Time `json:"when,omitempty"`
}

// SearchResponse respuesta de GET /api/search.
type SearchResponse struct {
	Leads      []SearchHit `json:"leads"`
	Contacts   []SearchHit `json:"contacts"`
	Deals      []SearchHit `json:"deals"`
	Activities []SearchHit `json:"activities"`
}

// AuditRow fila de GET /api/audit.
type AuditRow struct {
	ID     string         `json:"id"`
	When   time.Time      `json:"when"`
	Actor  string         `json:"actor"`
	Action string         `json:"action"`
	Target string         `json:"target"`
	Meta   map[string]any `json:"meta"`
}

// ImportResponse resultado de POST /api/import.
type ImportResponse struct {
	OK      bool `json:"ok"`
	Count   int  `json:"count"`
	Skipped int  `json:"skipped"`
}
