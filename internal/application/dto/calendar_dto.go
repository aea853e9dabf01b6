package dto

import "time"

// SlotsResponse huecos libres de un día.
type SlotsResponse struct {
	Date     string      `json:"date"`
	Duration int         `json:"duration"`
	Timezone string      `json:"timezone"`
	Slots    []time.Time `json:"slots"`
}

// BookRequest reserva de una reunión.
type BookRequest struct {
	When            time.Time `json:"when"`
	DurationMinutes int       `json:"durationMinutes"`
	Title           string    `json:"title"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Notes           string    `json:"notes"`
	Location        string    `json:"location"`
}

// RSVPRequest respuesta de un asistente.
type RSVPRequest struct {
	Response string `json:"response"`
	Email    string `json:"email"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
}

// ForwardRequest invitar a otra persona a la reunión.
type ForwardRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	UserID string `json:"userId"`
}

// StageLabel etapa resumida (GET /api/deals/stages).
type StageLabel struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}
