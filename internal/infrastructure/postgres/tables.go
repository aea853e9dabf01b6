package postgres

import (
	"strconv"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// Ordenamientos comunes a todos los recursos.
func sorts(extra map[string]string) map[string]string {
	m := map[string]string{"createdAt": "created_at", "updatedAt": "updated_at"}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// LeadTable tabla leads.
var LeadTable = Table[*entity.Lead]{
	Name:    "leads",
	Columns: []string{"name", "first_name", "last_name", "email", "phone", "company", "source", "status"},
	Values: func(l *entity.Lead) []any {
		return []any{l.Name, l.FirstName, l.LastName, l.Email, l.Phone, l.Company, l.Source, l.Status}
	},
	Scan: func(l *entity.Lead) []any {
		return []any{&l.Name, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Company, &l.Source, &l.Status}
	},
	New:    func() *entity.Lead { return &entity.Lead{} },
	Search: []string{"name", "email", "phone", "company"},
	Sorts:  sorts(map[string]string{"name": "name", "status": "status", "source": "source"}),
	Filters: map[string]FilterFunc{
		"status": eq("status"),
		"source": eq("source"),
	},
}

// ContactTable tabla contacts.
var ContactTable = Table[*entity.Contact]{
	Name:    "contacts",
	Columns: []string{"first_name", "last_name", "email", "phone", "title", "account_id", "address", "notes"},
	Values: func(c *entity.Contact) []any {
		return []any{c.FirstName, c.LastName, c.Email, c.Phone, c.Title, c.AccountID, c.Address, c.Notes}
	},
	Scan: func(c *entity.Contact) []any {
		return []any{&c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Title, &c.AccountID, &c.Address, &c.Notes}
	},
	New:    func() *entity.Contact { return &entity.Contact{} },
	Search: []string{"(first_name || ' ' || last_name)", "email", "phone", "title"},
	Sorts:  sorts(map[string]string{"firstName": "first_name", "lastName": "last_name", "email": "email"}),
	Filters: map[string]FilterFunc{
		"accountId": eq("account_id"),
	},
}

// AccountTable tabla accounts.
var AccountTable = Table[*entity.Account]{
	Name:    "accounts",
	Columns: []string{"name", "name_lower", "industry", "phone", "website", "notes"},
	Values: func(a *entity.Account) []any {
		return []any{a.Name, a.NameLower, a.Industry, a.Phone, a.Website, a.Notes}
	},
	Scan: func(a *entity.Account) []any {
		return []any{&a.Name, &a.NameLower, &a.Industry, &a.Phone, &a.Website, &a.Notes}
	},
	New:    func() *entity.Account { return &entity.Account{} },
	Search: []string{"name", "industry", "website"},
	Sorts:  sorts(map[string]string{"name": "name_lower", "industry": "industry"}),
	Filters: map[string]FilterFunc{
		"industry": eq("industry"),
	},
}

// DealTable tabla deals.
var DealTable = Table[*entity.Deal]{
	Name:    "deals",
	Columns: []string{"name", "stage", "amount", "probability", "account_id", "account", "close_date"},
	Values: func(d *entity.Deal) []any {
		return []any{d.Name, d.Stage, d.Amount, d.Probability, d.AccountID, d.Account, d.CloseDate}
	},
	Scan: func(d *entity.Deal) []any {
		return []any{&d.Name, &d.Stage, &d.Amount, &d.Probability, &d.AccountID, &d.Account, &d.CloseDate}
	},
	New:    func() *entity.Deal { return &entity.Deal{} },
	Search: []string{"name", "account", "stage"},
	Sorts:  sorts(map[string]string{"name": "name", "amount": "amount", "stage": "stage", "closeDate": "close_date"}),
	Filters: map[string]FilterFunc{
		"stage":     eq("stage"),
		"accountId": eq("account_id"),
		"open": func(w *Where, v string) error {
			if on, _ := strconv.ParseBool(v); on {
				w.Add("stage NOT ILIKE '%closed%'")
			}
			return nil
		},
	},
}

// TaskTable tabla tasks.
var TaskTable = Table[*entity.Task]{
	Name:    "tasks",
	Columns: []string{"title", "with_name", "status", "priority", "due_date", "notes"},
	Values: func(t *entity.Task) []any {
		return []any{t.Title, t.With, t.Status, t.Priority, t.DueDate, t.Notes}
	},
	Scan: func(t *entity.Task) []any {
		return []any{&t.Title, &t.With, &t.Status, &t.Priority, &t.DueDate, &t.Notes}
	},
	New:    func() *entity.Task { return &entity.Task{} },
	Search: []string{"title", "with_name", "notes"},
	Sorts:  sorts(map[string]string{"title": "title", "dueDate": "due_date", "priority": "priority", "status": "status"}),
	Filters: map[string]FilterFunc{
		"status":   eq("status"),
		"priority": eq("priority"),
		"dueFrom":  since("due_date"),
		"dueTo":    until("due_date"),
		"overdue": func(w *Where, v string) error {
			if on, _ := strconv.ParseBool(v); on {
				w.Add("due_date < now() AND status <> ?", entity.TaskCompleted)
			}
			return nil
		},
	},
}

// MeetingTable tabla meetings.
var MeetingTable = Table[*entity.Meeting]{
	Name: "meetings",
	Columns: []string{"title", "starts_at", "duration_minutes", "with_name", "location", "status", "notes",
		"attendees", "reminder_minutes", "next_reminder_at"},
	Values: func(m *entity.Meeting) []any {
		attendees := m.Attendees
		if attendees == nil {
			attendees = []entity.Attendee{}
		}
		return []any{m.Title, m.When, m.DurationMinutes, m.With, m.Location, m.Status, m.Notes,
			attendees, m.ReminderMinutes, m.NextReminderAt}
	},
	Scan: func(m *entity.Meeting) []any {
		return []any{&m.Title, &m.When, &m.DurationMinutes, &m.With, &m.Location, &m.Status, &m.Notes,
			&m.Attendees, &m.ReminderMinutes, &m.NextReminderAt}
	},
	New:    func() *entity.Meeting { return &entity.Meeting{} },
	Search: []string{"title", "with_name", "location"},
	Sorts:  sorts(map[string]string{"title": "title", "when": "starts_at", "status": "status"}),
	Filters: map[string]FilterFunc{
		"status": eq("status"),
		"from":   since("starts_at"),
		"to":     until("starts_at"),
	},
}

// CallTable tabla calls.
var CallTable = Table[*entity.Call]{
	Name:    "calls",
	Columns: []string{"subject", "call_date", "duration", "outcome", "related_to", "related_model", "notes"},
	Values: func(c *entity.Call) []any {
		return []any{c.Subject, c.CallDate, c.Duration, c.Outcome, c.RelatedTo, c.RelatedModel, c.Notes}
	},
	Scan: func(c *entity.Call) []any {
		return []any{&c.Subject, &c.CallDate, &c.Duration, &c.Outcome, &c.RelatedTo, &c.RelatedModel, &c.Notes}
	},
	New:    func() *entity.Call { return &entity.Call{} },
	Search: []string{"subject", "outcome", "notes"},
	Sorts:  sorts(map[string]string{"callDate": "call_date", "duration": "duration"}),
	Filters: map[string]FilterFunc{
		"relatedTo":    eq("related_to"),
		"relatedModel": eq("related_model"),
		"from":         since("call_date"),
		"to":           until("call_date"),
	},
}

// CampaignTable tabla campaigns.
var CampaignTable = Table[*entity.Campaign]{
	Name:    "campaigns",
	Columns: []string{"name", "channel", "status", "start_date", "end_date", "budget", "actual_cost", "notes"},
	Values: func(c *entity.Campaign) []any {
		return []any{c.Name, c.Channel, c.Status, c.StartDate, c.EndDate, c.Budget, c.ActualCost, c.Notes}
	},
	Scan: func(c *entity.Campaign) []any {
		return []any{&c.Name, &c.Channel, &c.Status, &c.StartDate, &c.EndDate, &c.Budget, &c.ActualCost, &c.Notes}
	},
	New:    func() *entity.Campaign { return &entity.Campaign{} },
	Search: []string{"name", "channel", "notes"},
	Sorts:  sorts(map[string]string{"name": "name", "startDate": "start_date", "budget": "budget", "status": "status"}),
	Filters: map[string]FilterFunc{
		"status":  eq("status"),
		"channel": eq("channel"),
	},
}

// DocumentTable tabla documents.
var DocumentTable = Table[*entity.Document]{
	Name:    "documents",
	Columns: []string{"title", "filename", "mime", "size", "ext", "path"},
	Values: func(d *entity.Document) []any {
		return []any{d.Title, d.Filename, d.Mime, d.Size, d.Ext, d.Path}
	},
	Scan: func(d *entity.Document) []any {
		return []any{&d.Title, &d.Filename, &d.Mime, &d.Size, &d.Ext, &d.Path}
	},
	New:    func() *entity.Document { return &entity.Document{} },
	Search: []string{"title", "filename"},
	Sorts:  sorts(map[string]string{"title": "title", "size": "size"}),
	Filters: map[string]FilterFunc{
		"ext": eq("ext"),
	},
}

// SalesDocTable tabla sales_docs restringida a un tipo (Quote, Invoice, SalesOrder).
func SalesDocTable(docType string) Table[*entity.SalesDoc] {
	return Table[*entity.SalesDoc]{
		Name: "sales_docs",
		// docType sale de constantes del dominio, nunca de la petición.
		Base: "doc_type = '" + docType + "'",
		Columns: []string{"doc_type", "number", "account", "doc_date", "status", "items", "tax_rate",
			"subtotal", "tax", "total", "notes"},
		Values: func(d *entity.SalesDoc) []any {
			items := d.Items
			if items == nil {
				items = []entity.LineItem{}
			}
			return []any{docType, d.Number, d.Account, d.Date, d.Status, items, d.TaxRate,
				d.Subtotal, d.Tax, d.Total, d.Notes}
		},
		Scan: func(d *entity.SalesDoc) []any {
			return []any{&d.DocType, &d.Number, &d.Account, &d.Date, &d.Status, &d.Items, &d.TaxRate,
				&d.Subtotal, &d.Tax, &d.Total, &d.Notes}
		},
		New:    func() *entity.SalesDoc { return &entity.SalesDoc{DocType: docType} },
		Search: []string{"number", "account", "notes"},
		Sorts:  sorts(map[string]string{"number": "number", "date": "doc_date", "total": "total", "status": "status"}),
		Filters: map[string]FilterFunc{
			"status":  eq("status"),
			"account": eq("account"),
		},
	}
}
