package entity

import "time"

// Días de la semana en el formato de CalendarSettings.
var WeekDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// CalendarSettings disponibilidad pública de un usuario para reservas.
type CalendarSettings struct {
	OrgID     string    `json:"-"`
	UserID    string    `json:"-"`
	Slug      string    `json:"slug"` // único global
	Days      []string  `json:"days"`
	Start     string    `json:"start"` // HH:MM 24h
	End       string    `json:"end"`
	Duration  int       `json:"duration"` // minutos
	UpdatedAt time.Time `json:"-"`
}

// DefaultCalendarSettings lunes a viernes 09:00-17:00, 30 minutos.
func DefaultCalendarSettings(orgID, userID string) CalendarSettings {
	return CalendarSettings{
		OrgID:    orgID,
		UserID:   userID,
		Slug:     "meet",
		Days:     []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
		Start:    "09:00",
		End:      "17:00",
		Duration: 30,
	}
}

// Stage etapa del pipeline de ventas.
type Stage struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	Order       int     `json:"order"`
}

// Pipeline etapas de venta de una org.
type Pipeline struct {
	OrgID     string    `json:"orgId"`
	Stages    []Stage   `json:"stages"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
