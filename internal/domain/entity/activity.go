package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/domain"
)

// Estados y prioridades de tareas.
const (
	TaskOpen       = "Open"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
)

var TaskPriorities = []string{"Low", "Normal", "High"}

// Task tarea pendiente.
type Task struct {
	Tenant
	Title    string     `json:"title"`
	With     string     `json:"with"`
	Status   string     `json:"status"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"dueDate"`
	Notes    string     `json:"notes"`
}

func (t *Task) Normalize() error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return domain.Invalid("title", "es requerido")
	}
	switch strings.ToLower(strings.TrimSpace(t.Status)) {
	case "done", "completed":
		t.Status = TaskCompleted
	case "in-progress", "progress", "in progress":
		t.Status = TaskInProgress
	case "", "open":
		t.Status = TaskOpen
	default:
		return domain.Invalid("status", "valor no permitido: "+t.Status)
	}
	var err error
	t.Priority, err = oneOf("priority", t.Priority, TaskPriorities, "Normal")
	return err
}

// Overdue vencida y no completada.
func (t *Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskCompleted
}

// Respuestas de asistentes a reuniones.
var RSVPResponses = []string{"accepted", "declined", "tentative", "needsAction"}

var MeetingStatuses = []string{"Scheduled", "Completed", "Cancelled"}

// DefaultMeetingMinutes duración por defecto de una reunión.
const DefaultMeetingMinutes = 30

// Attendee asistente de una reunión.
type Attendee struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Response string `json:"response"`
}

// Meeting reunión agendada.
type Meeting struct {
	Tenant
	Title           string     `json:"title"`
	When            time.Time  `json:"when"`
	DurationMinutes int        `json:"durationMinutes"`
	With            string     `json:"with"`
	Location        string     `json:"location"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes"`
	Attendees       []Attendee `json:"attendees"`
	ReminderMinutes *int       `json:"reminderMinutes"`
	NextReminderAt  *time.Time `json:"nextReminderAt"`
}

func (m *Meeting) Normalize() error {
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return domain.Invalid("title", "es requerido")
	}
	if m.When.IsZero() {
		return domain.Invalid("when", "es requerido")
	}
	if m.DurationMinutes < 0 {
		return domain.Invalid("durationMinutes", "debe ser >= 0")
	}
	if m.DurationMinutes == 0 {
		m.DurationMinutes = DefaultMeetingMinutes
	}
	var err error
	if m.Status, err = oneOf("status", m.Status, MeetingStatuses, "Scheduled"); err != nil {
		return err
	}
	for i := range m.Attendees {
		a := &m.Attendees[i]
		a.Email = strings.ToLower(strings.TrimSpace(a.Email))
		if a.Response, err = oneOf("attendees.response", a.Response, RSVPResponses, "needsAction"); err != nil {
			return err
		}
	}
	return nil
}

// Reschedule recalcula NextReminderAt en altas (prev nil) o cuando cambian when, reminderMinutes
// o status respecto de prev. Si no cambió nada conserva el valor guardado, aunque sea nil
// (recordatorio ya enviado).
func (m *Meeting) Reschedule(prev *Meeting) {
	if prev != nil && prev.reminderBasis() == m.reminderBasis() {
		return
	}
	m.NextReminderAt = nil
	if m.ReminderMinutes != nil && *m.ReminderMinutes >= 0 && m.Status == "Scheduled" {
		at := m.When.Add(-time.Duration(*m.ReminderMinutes) * time.Minute)
		m.NextReminderAt = &at
	}
}

type reminderBasis struct {
	when    int64
	minutes int
	status  string
}

func (m *Meeting) reminderBasis() reminderBasis {
	b := reminderBasis{when: m.When.UnixNano(), minutes: -1, status: m.Status}
	if m.ReminderMinutes != nil {
		b.minutes = *m.ReminderMinutes
	}
	return b
}

// End instante de fin de la reunión.
func (m *Meeting) End() time.Time {
	d := m.DurationMinutes
	if d <= 0 {
		d = DefaultMeetingMinutes
	}
	return m.When.Add(time.Duration(d) * time.Minute)
}

// Respond registra la respuesta de un asistente identificado por email o userId;
// si no existe se agrega.
func (m *Meeting) Respond(a Attendee) error {
	resp, err := oneOf("response", a.Response, RSVPResponses, "")
	if err != nil {
		return err
	}
	if resp == "" {
		return domain.Invalid("response", "es requerido")
	}
	a.Response = resp
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	if i := m.attendeeIndex(a); i >= 0 {
		m.Attendees[i].Response = resp
		return nil
	}
	m.Attendees = append(m.Attendees, a)
	return nil
}

// AddAttendee agrega un asistente si no estaba; devuelve false si ya existía.
func (m *Meeting) AddAttendee(a Attendee) (bool, error) {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	if a.Email == "" && a.UserID == "" {
		return false, domain.Invalid("email", "se requiere email o userId")
	}
	if m.attendeeIndex(a) >= 0 {
		return false, nil
	}
	a.Response = "needsAction"
	m.Attendees = append(m.Attendees, a)
	return true, nil
}

func (m *Meeting) attendeeIndex(a Attendee) int {
	for i, x := range m.Attendees {
		if (a.Email != "" && x.Email == a.Email) || (a.UserID != "" && x.UserID == a.UserID) {
			return i
		}
	}
	return -1
}

var CallRelatedModels = []string{"Lead", "Contact", "Deal", "Account"}

// Call llamada registrada.
type Call struct {
	Tenant
	Subject      string    `json:"subject"`
	CallDate     time.Time `json:"callDate"`
	Duration     int       `json:"duration"` // segundos
	Outcome      string    `json:"outcome"`
	RelatedTo    string    `json:"relatedTo"`
	RelatedModel string    `json:"relatedModel"`
	Notes        string    `json:"notes"`
}

func (c *Call) Normalize(now time.Time) error {
	c.Subject = strings.TrimSpace(c.Subject)
	if c.CallDate.IsZero() {
		c.CallDate = now
	}
	if c.Duration < 0 {
		return domain.Invalid("duration", "debe ser >= 0")
	}
	var err error
	c.RelatedModel, err = oneOf("relatedModel", c.RelatedModel, CallRelatedModels, "Contact")
	return err
}
