package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/calendar"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// MeetingUseCase CRUD de reuniones más ICS, RSVP y reenvío.
type MeetingUseCase struct {
	*ScopedUseCase[*entity.Meeting]
	meetings repository.MeetingRepository
	users    repository.UserRepository
}

// NewMeetingUseCase construye el caso de uso.
func NewMeetingUseCase(repo repository.MeetingRepository, users repository.UserRepository, audit Auditor) *MeetingUseCase {
	return &MeetingUseCase{
		ScopedUseCase: NewScopedUseCase[*entity.Meeting](repo, meetingResource(), audit),
		meetings:      repo,
		users:         users,
	}
}

func meetingResource() Resource[*entity.Meeting] {
	return Resource[*entity.Meeting]{
		Kind:    "meeting",
		Module:  entity.ModuleActivities,
		New:     func() *entity.Meeting { return &entity.Meeting{} },
		Aliases: map[string]string{"subject": "title", "start": "when", "startAt": "when"},
		Dates:   []string{"when"},
		Rewrite: meetingEndToDuration,
		Label:   func(m *entity.Meeting) string { return m.Title },
		Prepare: func(_ context.Context, m *entity.Meeting, _ time.Time) error { return m.Normalize() },
		Settle:  func(prev, m *entity.Meeting) { m.Reschedule(prev) },
	}
}

// meetingEndToDuration convierte end/endAt en durationMinutes cuando no viene explícita.
// nextReminderAt lo calcula el servidor.
func meetingEndToDuration(raw map[string]any) {
	delete(raw, "nextReminderAt")
	var end string
	for _, k := range []string{"end", "endAt"} {
		if s, ok := raw[k].(string); ok && end == "" {
			end = s
		}
		delete(raw, k)
	}
	if end == "" {
		return
	}
	if _, set := raw["durationMinutes"]; set {
		return
	}
	start, _ := raw["when"].(string)
	from, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return
	}
	to, err := time.Parse(time.RFC3339, end)
	if err != nil || !to.After(from) {
		return
	}
	raw["durationMinutes"] = int(to.Sub(from).Minutes())
}

// ICS invitación iCalendar de la reunión; el organizador es el owner.
func (uc *MeetingUseCase) ICS(ctx context.Context, p acl.Principal, id string) ([]byte, error) {
	m, err := uc.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	org := calendar.Organizer{Name: p.Name, Email: p.Email}
	if m.OwnerID != p.UserID {
		if owner, err := uc.users.GetByID(ctx, m.OwnerID); err == nil {
			org = calendar.Organizer{Name: owner.Name, Email: owner.Email}
		}
	}
	return calendar.BuildICS(m, org, uc.now()), nil
}

// RSVP registra la respuesta de un asistente; sin email ni userId responde el propio usuario.
// Basta con poder ver la reunión.
func (uc *MeetingUseCase) RSVP(ctx context.Context, p acl.Principal, id string, in dto.RSVPRequest) (*entity.Meeting, error) {
	if !acl.CanMutate(p) {
		return nil, domain.ErrForbidden
	}
	m, err := uc.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	a := entity.Attendee{Name: in.Name, Email: in.Email, UserID: in.UserID, Response: in.Response}
	if a.Email == "" && a.UserID == "" {
		a.UserID, a.Email, a.Name = p.UserID, p.Email, p.Name
	}
	if err := m.Respond(a); err != nil {
		return nil, err
	}
	if err := uc.Save(ctx, p, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Forward agrega un asistente si no estaba (requiere permiso de escritura).
func (uc *MeetingUseCase) Forward(ctx context.Context, p acl.Principal, id string, in dto.ForwardRequest) (*entity.Meeting, error) {
	m, err := uc.meetings.Get(ctx, p.OrgID, id)
	if err != nil {
		return nil, err
	}
	if !acl.CanWrite(p, m.Tenancy()) {
		return nil, domain.ErrForbidden
	}
	added, err := m.AddAttendee(entity.Attendee{Name: in.Name, Email: in.Email, UserID: in.UserID})
	if err != nil {
		return nil, err
	}
	if !added {
		return m, nil
	}
	if err := uc.Save(ctx, p, m); err != nil {
		return nil, err
	}
	return m, nil
}
