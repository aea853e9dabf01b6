package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

func timeOf(t time.Time) *time.Time { return &t }

// Leads repositorio de leads.
func Leads() *Store[*entity.Lead] {
	return NewStore(Spec[*entity.Lead]{
		New:    func() *entity.Lead { return &entity.Lead{} },
		Search: func(l *entity.Lead) []string { return []string{l.Name, l.Email, l.Phone, l.Company} },
		Filters: map[string]Filter[*entity.Lead]{
			"status": Eq(func(l *entity.Lead) string { return l.Status }),
			"source": Eq(func(l *entity.Lead) string { return l.Source }),
		},
	})
}

// Contacts repositorio de contactos.
func Contacts() *Store[*entity.Contact] {
	return NewStore(Spec[*entity.Contact]{
		New:    func() *entity.Contact { return &entity.Contact{} },
		Search: func(c *entity.Contact) []string { return []string{c.FullName(), c.Email, c.Phone, c.Title} },
		Filters: map[string]Filter[*entity.Contact]{
			"accountId": Eq(func(c *entity.Contact) string { return c.AccountID }),
		},
	})
}

// Accounts repositorio de cuentas.
func Accounts() *Store[*entity.Account] {
	return NewStore(Spec[*entity.Account]{
		New:    func() *entity.Account { return &entity.Account{} },
		Search: func(a *entity.Account) []string { return []string{a.Name, a.Industry, a.Website} },
		Filters: map[string]Filter[*entity.Account]{
			"industry": Eq(func(a *entity.Account) string { return a.Industry }),
		},
	})
}

// Deals repositorio de deals.
func Deals() *Store[*entity.Deal] {
	return NewStore(Spec[*entity.Deal]{
		New:    func() *entity.Deal { return &entity.Deal{} },
		Search: func(d *entity.Deal) []string { return []string{d.Name, d.Account, d.Stage} },
		Filters: map[string]Filter[*entity.Deal]{
			"stage":     Eq(func(d *entity.Deal) string { return d.Stage }),
			"accountId": Eq(func(d *entity.Deal) string { return d.AccountID }),
			"open": Flag(func(d *entity.Deal) bool {
				return !strings.Contains(strings.ToLower(d.Stage), "closed")
			}),
		},
	})
}

// Tasks repositorio de tareas.
func Tasks() *Store[*entity.Task] {
	due := func(t *entity.Task) *time.Time { return t.DueDate }
	return NewStore(Spec[*entity.Task]{
		New:    func() *entity.Task { return &entity.Task{} },
		Search: func(t *entity.Task) []string { return []string{t.Title, t.With, t.Notes} },
		Filters: map[string]Filter[*entity.Task]{
			"status":   Eq(func(t *entity.Task) string { return t.Status }),
			"priority": Eq(func(t *entity.Task) string { return t.Priority }),
			"dueFrom":  Since(due),
			"dueTo":    Until(due),
			"overdue":  Flag(func(t *entity.Task) bool { return t.Overdue(time.Now()) }),
		},
	})
}

// Calls repositorio de llamadas.
func Calls() *Store[*entity.Call] {
	at := func(c *entity.Call) *time.Time { return timeOf(c.CallDate) }
	return NewStore(Spec[*entity.Call]{
		New:    func() *entity.Call { return &entity.Call{} },
		Search: func(c *entity.Call) []string { return []string{c.Subject, c.Outcome, c.Notes} },
		Filters: map[string]Filter[*entity.Call]{
			"relatedTo":    Eq(func(c *entity.Call) string { return c.RelatedTo }),
			"relatedModel": Eq(func(c *entity.Call) string { return c.RelatedModel }),
			"from":         Since(at),
			"to":           Until(at),
		},
	})
}

// Campaigns repositorio de campañas.
func Campaigns() *Store[*entity.Campaign] {
	return NewStore(Spec[*entity.Campaign]{
		New:    func() *entity.Campaign { return &entity.Campaign{} },
		Search: func(c *entity.Campaign) []string { return []string{c.Name, c.Channel, c.Notes} },
		Filters: map[string]Filter[*entity.Campaign]{
			"status":  Eq(func(c *entity.Campaign) string { return c.Status }),
			"channel": Eq(func(c *entity.Campaign) string { return c.Channel }),
		},
	})
}

// Documents repositorio de archivos subidos.
func Documents() *Store[*entity.Document] {
	return NewStore(Spec[*entity.Document]{
		New:    func() *entity.Document { return &entity.Document{} },
		Search: func(d *entity.Document) []string { return []string{d.Title, d.Filename} },
		Filters: map[string]Filter[*entity.Document]{
			"ext": Eq(func(d *entity.Document) string { return d.Ext }),
		},
	})
}

// SalesDocs repositorio de un tipo de documento comercial.
func SalesDocs(docType string) *Store[*entity.SalesDoc] {
	return NewStore(Spec[*entity.SalesDoc]{
		New:    func() *entity.SalesDoc { return &entity.SalesDoc{DocType: docType} },
		Search: func(d *entity.SalesDoc) []string { return []string{d.Number, d.Account, d.Notes} },
		Filters: map[string]Filter[*entity.SalesDoc]{
			"status":  Eq(func(d *entity.SalesDoc) string { return d.Status }),
			"account": Eq(func(d *entity.SalesDoc) string { return d.Account }),
		},
		Unique: func(d *entity.SalesDoc) string { return d.Number },
	})
}

// MeetingStore reuniones con consultas de agenda y recordatorios.
type MeetingStore struct {
	*Store[*entity.Meeting]
}

var _ repository.MeetingRepository = (*MeetingStore)(nil)

// Meetings repositorio de reuniones.
func Meetings() *MeetingStore {
	at := func(m *entity.Meeting) *time.Time { return timeOf(m.When) }
	return &MeetingStore{NewStore(Spec[*entity.Meeting]{
		New:    func() *entity.Meeting { return &entity.Meeting{} },
		Search: func(m *entity.Meeting) []string { return []string{m.Title, m.With, m.Location} },
		Filters: map[string]Filter[*entity.Meeting]{
			"status": Eq(func(m *entity.Meeting) string { return m.Status }),
			"from":   Since(at),
			"to":     Until(at),
		},
	})}
}

func (s *MeetingStore) each(fn func(m *entity.Meeting) bool) []*entity.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Meeting
	for _, m := range s.items {
		if fn(m) {
			out = append(out, s.copy(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].When.Before(out[j].When) })
	return out
}

func (s *MeetingStore) Busy(_ context.Context, orgID, ownerID string, from, to time.Time) ([]*entity.Meeting, error) {
	return s.each(func(m *entity.Meeting) bool {
		return m.OrgID == orgID && m.OwnerID == ownerID && m.Status != "Cancelled" &&
			!m.When.Before(from) && m.When.Before(to)
	}), nil
}

func (s *MeetingStore) Overlapping(_ context.Context, orgID, ownerID string, from, to time.Time) ([]*entity.Meeting, error) {
	return s.each(func(m *entity.Meeting) bool {
		return m.OrgID == orgID && m.OwnerID == ownerID && m.Status != "Cancelled" &&
			m.When.Before(to) && m.End().After(from)
	}), nil
}

func (s *MeetingStore) DueReminders(_ context.Context, until, since time.Time, limit int) ([]*entity.Meeting, error) {
	out := s.each(func(m *entity.Meeting) bool {
		return m.NextReminderAt != nil && !m.NextReminderAt.After(until) && !m.When.Before(since)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MeetingStore) ClearReminder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.items[id]; ok {
		m.NextReminderAt = nil
	}
	return nil
}

// Reset borra todos los registros (pruebas con varias fases).
func (s *Store[T]) Reset() {
	s.mu.Lock()
	s.items = map[string]T{}
	s.mu.Unlock()
}
