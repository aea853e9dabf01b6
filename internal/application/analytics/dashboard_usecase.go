// Package analytics contiene los indicadores del tablero y la búsqueda global del CRM.
package analytics

import (
	"context"
	"time"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Sources repositorios consultados por los indicadores y la búsqueda.
type Sources struct {
	Leads    repository.ScopedRepository[*entity.Lead]
	Contacts repository.ScopedRepository[*entity.Contact]
	Deals    repository.ScopedRepository[*entity.Deal]
	Tasks    repository.ScopedRepository[*entity.Task]
	Meetings repository.ScopedRepository[*entity.Meeting]
	Calls    repository.ScopedRepository[*entity.Call]
}

// DashboardUseCase cuenta leads, deals y actividades visibles para el usuario.
//
// Días en UTC; la semana empieza el domingo. Con mine=true sólo cuenta registros propios.
type DashboardUseCase struct {
	src Sources
	now func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(src Sources) *DashboardUseCase {
	return &DashboardUseCase{src: src, now: time.Now}
}

type counter func(ctx context.Context, q repository.ListQuery) (int, error)

// countJob un conteo con sus filtros; el resultado se escribe en dst.
type countJob struct {
	dst     *int
	count   counter
	filters map[string]string
}

// run ejecuta los conteos en paralelo y devuelve el primer error.
func (uc *DashboardUseCase) run(ctx context.Context, p acl.Principal, mine bool, jobs ...countJob) error {
	scope := acl.ReadScope(p)
	errs := make(chan error, len(jobs))
	for _, j := range jobs {
		filters := map[string]string{}
		for k, v := range j.filters {
			filters[k] = v
		}
		if mine {
			filters["ownerId"] = p.UserID
		}
		go func(j countJob, q repository.ListQuery) {
			n, err := j.count(ctx, q)
			*j.dst = n
			errs <- err
		}(j, repository.ListQuery{Scope: scope, Filters: filters})
	}
	var first error
	for range jobs {
		if err := <-errs; err != nil && first == nil {
			first = err
		}
	}
	return first
}

// dayStart medianoche UTC de hoy.
func (uc *DashboardUseCase) dayStart() time.Time {
	n := uc.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// weekStart domingo 00:00 UTC de la semana en curso.
func (uc *DashboardUseCase) weekStart() time.Time {
	d := uc.dayStart()
	return d.AddDate(0, 0, -int(d.Weekday()))
}

func (uc *DashboardUseCase) leadJobs(s *dto.LeadStats) []countJob {
	today := uc.dayStart().Format(time.RFC3339)
	return []countJob{
		{dst: &s.Total, count: uc.src.Leads.Count},
		{dst: &s.Today, count: uc.src.Leads.Count, filters: map[string]string{"createdFrom": today}},
	}
}

func (uc *DashboardUseCase) dealJobs(s *dto.DealStats) []countJob {
	week := uc.weekStart().Format(time.RFC3339)
	return []countJob{
		{dst: &s.Open, count: uc.src.Deals.Count, filters: map[string]string{"open": "1"}},
		{dst: &s.Week, count: uc.src.Deals.Count, filters: map[string]string{"createdFrom": week}},
	}
}

// activityJobs el total suma tareas, reuniones y llamadas; dueToday cuenta tareas que vencen hoy
// y reuniones de hoy.
func (uc *DashboardUseCase) activityJobs(tasks, meetings, calls, dueTasks, todayMeetings *int) []countJob {
	today := uc.dayStart().Format(time.DateOnly)
	return []countJob{
		{dst: tasks, count: uc.src.Tasks.Count},
		{dst: meetings, count: uc.src.Meetings.Count},
		{dst: calls, count: uc.src.Calls.Count},
		{dst: dueTasks, count: uc.src.Tasks.Count, filters: map[string]string{"dueFrom": today, "dueTo": today}},
		{dst: todayMeetings, count: uc.src.Meetings.Count, filters: map[string]string{"from": today, "to": today}},
	}
}

// Summary indicadores agrupados (GET /stats/home, /stats/summary y, aplanado, /stats).
func (uc *DashboardUseCase) Summary(ctx context.Context, p acl.Principal, mine bool) (*dto.StatsSummaryDTO, error) {
	var (
		out                                           dto.StatsSummaryDTO
		tasks, meetings, calls, dueTasks, dueMeetings int
	)
	jobs := append(uc.leadJobs(&out.Leads), uc.dealJobs(&out.Deals)...)
	jobs = append(jobs, uc.activityJobs(&tasks, &meetings, &calls, &dueTasks, &dueMeetings)...)
	if err := uc.run(ctx, p, mine, jobs...); err != nil {
		return nil, err
	}
	out.Activities = dto.ActivityStats{Total: tasks + meetings + calls, DueToday: dueTasks + dueMeetings}
	return &out, nil
}

// Leads indicadores de leads.
func (uc *DashboardUseCase) Leads(ctx context.Context, p acl.Principal, mine bool) (*dto.LeadStats, error) {
	var s dto.LeadStats
	if err := uc.run(ctx, p, mine, uc.leadJobs(&s)...); err != nil {
		return nil, err
	}
	return &s, nil
}

// Deals indicadores de deals.
func (uc *DashboardUseCase) Deals(ctx context.Context, p acl.Principal, mine bool) (*dto.DealStats, error) {
	var s dto.DealStats
	if err := uc.run(ctx, p, mine, uc.dealJobs(&s)...); err != nil {
		return nil, err
	}
	return &s, nil
}

// Activities indicadores de actividades.
func (uc *DashboardUseCase) Activities(ctx context.Context, p acl.Principal, mine bool) (*dto.ActivityStats, error) {
	var tasks, meetings, calls, dueTasks, dueMeetings int
	if err := uc.run(ctx, p, mine, uc.activityJobs(&tasks, &meetings, &calls, &dueTasks, &dueMeetings)...); err != nil {
		return nil, err
	}
	return &dto.ActivityStats{Total: tasks + meetings + calls, DueToday: dueTasks + dueMeetings}, nil
}
