package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/calendar"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// CalendarUseCase disponibilidad, huecos libres y reservas (autenticadas y públicas por slug).
type CalendarUseCase struct {
	settings repository.CalendarRepository
	meetings *MeetingUseCase
	orgs     repository.OrgRepository
	users    repository.UserRepository
	now      func() time.Time
}

// NewCalendarUseCase construye el caso de uso.
func NewCalendarUseCase(settings repository.CalendarRepository, meetings *MeetingUseCase, orgs repository.OrgRepository, users repository.UserRepository) *CalendarUseCase {
	return &CalendarUseCase{settings: settings, meetings: meetings, orgs: orgs, users: users, now: time.Now}
}

// Settings configuración del usuario o la de fábrica si no guardó ninguna.
func (uc *CalendarUseCase) Settings(ctx context.Context, orgID, userID string) (entity.CalendarSettings, error) {
	s, err := uc.settings.Get(ctx, orgID, userID)
	if err != nil {
		return entity.CalendarSettings{}, err
	}
	if s == nil {
		return entity.DefaultCalendarSettings(orgID, userID), nil
	}
	return *s, nil
}

// UpdateSettings aplica body sobre la configuración actual, la valida y la guarda.
// Un slug de otro usuario devuelve conflicto.
func (uc *CalendarUseCase) UpdateSettings(ctx context.Context, p acl.Principal, body []byte) (entity.CalendarSettings, error) {
	s, err := uc.Settings(ctx, p.OrgID, p.UserID)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(body, &s); err != nil {
		return s, domain.Invalid("body", "JSON inválido")
	}
	s.OrgID, s.UserID = p.OrgID, p.UserID
	if err := calendar.Normalize(&s); err != nil {
		return s, err
	}
	s.UpdatedAt = uc.now().UTC()
	if err := uc.settings.Upsert(ctx, &s); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return s, domain.Conflict("el slug ya está en uso")
		}
		return s, err
	}
	return s, nil
}

func (uc *CalendarUseCase) location(ctx context.Context, orgID string) *time.Location {
	org, err := uc.orgs.GetByID(ctx, orgID)
	if err != nil {
		return time.UTC
	}
	return org.Location()
}

// Slots huecos libres de date ("YYYY-MM-DD") para el usuario.
func (uc *CalendarUseCase) Slots(ctx context.Context, orgID, userID, date string) (*dto.SlotsResponse, error) {
	s, err := uc.Settings(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	return uc.slots(ctx, s, date)
}

func (uc *CalendarUseCase) slots(ctx context.Context, s entity.CalendarSettings, date string) (*dto.SlotsResponse, error) {
	loc := uc.location(ctx, s.OrgID)
	day, err := calendar.ParseDate(date, loc)
	if err != nil {
		return nil, err
	}
	resp := &dto.SlotsResponse{Date: date, Duration: s.Duration, Timezone: loc.String(), Slots: []time.Time{}}
	win, ok := calendar.Window(s, day)
	if !ok {
		return resp, nil
	}
	meetings, err := uc.meetings.meetings.Overlapping(ctx, s.OrgID, s.UserID, win.From, win.To)
	if err != nil {
		return nil, err
	}
	resp.Slots = calendar.Slots(s, day, calendar.Busy(meetings, s.Duration))
	return resp, nil
}

// Book agenda una reunión del usuario en when. Si otra reunión suya empieza dentro del rango hay conflicto.
func (uc *CalendarUseCase) Book(ctx context.Context, p acl.Principal, in dto.BookRequest) (*entity.Meeting, error) {
	s, err := uc.Settings(ctx, p.OrgID, p.UserID)
	if err != nil {
		return nil, err
	}
	duration := in.DurationMinutes
	if duration <= 0 {
		duration = s.Duration
	}
	m := &entity.Meeting{
		Title:           strings.TrimSpace(in.Title),
		When:            in.When,
		DurationMinutes: duration,
		With:            in.Name,
		Location:        in.Location,
		Notes:           in.Notes,
		Status:          "Scheduled",
	}
	if in.Email != "" {
		m.Attendees = []entity.Attendee{{Name: in.Name, Email: in.Email, Response: "needsAction"}}
	}
	if err := uc.book(ctx, p, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (uc *CalendarUseCase) book(ctx context.Context, p acl.Principal, m *entity.Meeting) error {
	if m.When.IsZero() {
		return domain.Invalid("when", "es requerido")
	}
	if m.Title == "" {
		m.Title = "Meeting"
		if m.With != "" {
			m.Title = "Meeting with " + m.With
		}
	}
	end := m.When.Add(time.Duration(m.DurationMinutes) * time.Minute)
	busy, err := uc.meetings.meetings.Busy(ctx, p.OrgID, p.UserID, m.When.Add(-time.Millisecond), end)
	if err != nil {
		return err
	}
	if len(busy) > 0 {
		return domain.Conflict("el horario ya está ocupado")
	}
	return uc.meetings.Add(ctx, p, m)
}

// PublicSettings configuración pública por slug.
func (uc *CalendarUseCase) PublicSettings(ctx context.Context, slug string) (entity.CalendarSettings, error) {
	s, err := uc.settings.GetBySlug(ctx, calendar.NormalizeSlug(slug))
	if err != nil {
		return entity.CalendarSettings{}, err
	}
	if s == nil {
		return entity.CalendarSettings{}, domain.ErrNotFound
	}
	return *s, nil
}

// PublicSlots huecos libres por slug.
func (uc *CalendarUseCase) PublicSlots(ctx context.Context, slug, date string) (*dto.SlotsResponse, error) {
	s, err := uc.PublicSettings(ctx, slug)
	if err != nil {
		return nil, err
	}
	return uc.slots(ctx, s, date)
}

// PublicBook reserva anónima: usa la duración configurada; con email registra al visitante como asistente.
func (uc *CalendarUseCase) PublicBook(ctx context.Context, slug string, in dto.BookRequest) (*entity.Meeting, error) {
	s, err := uc.PublicSettings(ctx, slug)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	owner, err := uc.users.GetByID(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p := acl.Principal{UserID: owner.ID, OrgID: owner.OrgID, Role: entity.RoleUser, Name: owner.Name, Email: owner.Email}
	m := &entity.Meeting{
		Title:           strings.TrimSpace(in.Title),
		When:            in.When,
		DurationMinutes: s.Duration,
		With:            strings.TrimSpace(strings.Join([]string{in.Name, email}, " ")),
		Location:        in.Location,
		Notes:           in.Notes,
		Status:          "Scheduled",
	}
	if email != "" {
		m.Attendees = []entity.Attendee{{Name: in.Name, Email: email, Response: "accepted"}}
	}
	if err := uc.book(ctx, p, m); err != nil {
		return nil, err
	}
	return m, nil
}
