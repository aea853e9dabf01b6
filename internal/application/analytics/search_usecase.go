package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Límites de la búsqueda global.
const (
	searchLimit   = 10
	activityLimit = 5
)

// SearchUseCase búsqueda libre sobre leads, contactos, deals y actividades visibles.
type SearchUseCase struct {
	src Sources
}

// NewSearchUseCase construye el caso de uso.
func NewSearchUseCase(src Sources) *SearchUseCase {
	return &SearchUseCase{src: src}
}

// Search q vacío devuelve listas vacías.
func (uc *SearchUseCase) Search(ctx context.Context, p acl.Principal, q string) (*dto.SearchResponse, error) {
	out := &dto.SearchResponse{
		Leads: []dto.SearchHit{}, Contacts: []dto.SearchHit{}, Deals: []dto.SearchHit{}, Activities: []dto.SearchHit{},
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return out, nil
	}
	query := func(limit int) repository.ListQuery {
		return repository.ListQuery{Scope: acl.ReadScope(p), Page: 1, Limit: limit, Desc: true, Search: q}
	}

	leads, _, err := uc.src.Leads.List(ctx, query(searchLimit))
	if err != nil {
		return nil, err
	}
	for _, l := range leads {
		out.Leads = append(out.Leads, dto.SearchHit{ID: l.ID, Type: "lead", Title: l.Name, Subtitle: firstOf(l.Email, l.Company), Status: l.Status})
	}

	contacts, _, err := uc.src.Contacts.List(ctx, query(searchLimit))
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		out.Contacts = append(out.Contacts, dto.SearchHit{ID: c.ID, Type: "contact", Title: c.FullName(), Subtitle: firstOf(c.Email, c.Phone)})
	}

	deals, _, err := uc.src.Deals.List(ctx, query(searchLimit))
	if err != nil {
		return nil, err
	}
	for _, d := range deals {
		out.Deals = append(out.Deals, dto.SearchHit{ID: d.ID, Type: "deal", Title: d.Name, Subtitle: d.Account, Status: d.Stage, When: d.CloseDate})
	}

	type dated struct {
		hit     dto.SearchHit
		created time.Time
	}
	var acts []dated
	tasks, _, err := uc.src.Tasks.List(ctx, query(activityLimit))
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		acts = append(acts, dated{dto.SearchHit{ID: t.ID, Type: "task", Title: t.Title, Subtitle: t.With, Status: t.Status, When: t.DueDate}, t.CreatedAt})
	}
	meetings, _, err := uc.src.Meetings.List(ctx, query(activityLimit))
	if err != nil {
		return nil, err
	}
	for _, m := range meetings {
		when := m.When
		acts = append(acts, dated{dto.SearchHit{ID: m.ID, Type: "meeting", Title: m.Title, Subtitle: m.With, Status: m.Status, When: &when}, m.CreatedAt})
	}
	calls, _, err := uc.src.Calls.List(ctx, query(activityLimit))
	if err != nil {
		return nil, err
	}
	for _, c := range calls {
		when := c.CallDate
		acts = append(acts, dated{dto.SearchHit{ID: c.ID, Type: "call", Title: c.Subject, Subtitle: c.Outcome, When: &when}, c.CreatedAt})
	}
	sort.SliceStable(acts, func(i, j int) bool { return acts[i].created.After(acts[j].created) })
	for i := 0; i < len(acts) && i < searchLimit; i++ {
		out.Activities = append(out.Activities, acts[i].hit)
	}
	return out, nil
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
