package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/analytics"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/infrastructure/memory"
)

const org = "org-1"

var (
	admin = acl.Principal{UserID: "u-admin", OrgID: org, Role: entity.RoleAdmin}
	ana   = acl.Principal{UserID: "u-ana", OrgID: org, Role: entity.RoleUser}
	luis  = acl.Principal{UserID: "u-luis", OrgID: org, Role: entity.RoleUser}
)

type fixture struct {
	ctx context.Context
	src analytics.Sources
	seq int

	leads    *memory.Store[*entity.Lead]
	contacts *memory.Store[*entity.Contact]
	deals    *memory.Store[*entity.Deal]
	tasks    *memory.Store[*entity.Task]
	meetings *memory.MeetingStore
	calls    *memory.Store[*entity.Call]
}

func newFixture() *fixture {
	f := &fixture{
		ctx:      context.Background(),
		leads:    memory.Leads(),
		contacts: memory.Contacts(),
		deals:    memory.Deals(),
		tasks:    memory.Tasks(),
		meetings: memory.Meetings(),
		calls:    memory.Calls(),
	}
	f.src = analytics.Sources{
		Leads: f.leads, Contacts: f.contacts, Deals: f.deals,
		Tasks: f.tasks, Meetings: f.meetings, Calls: f.calls,
	}
	return f
}

// tenant registro de owner creado en created, con visibilidad vis.
func (f *fixture) tenant(owner acl.Principal, vis string, created time.Time) entity.Tenant {
	f.seq++
	return entity.Tenant{
		ID: owner.UserID + "-" + string(rune('a'+f.seq)), OrgID: owner.OrgID, OwnerID: owner.UserID,
		Visibility: vis, CreatedAt: created, UpdatedAt: created,
	}
}

func TestDashboard_Summary(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	lastMonth := today.AddDate(0, -1, -8)
	tomorrow := today.AddDate(0, 0, 1)

	require.NoError(t, f.leads.Create(f.ctx, &entity.Lead{Tenant: f.tenant(ana, entity.VisibilityOrg, today.Add(time.Minute)), Name: "Hoy"}))
	require.NoError(t, f.leads.Create(f.ctx, &entity.Lead{Tenant: f.tenant(ana, entity.VisibilityOrg, lastMonth), Name: "Viejo"}))
	require.NoError(t, f.leads.Create(f.ctx, &entity.Lead{Tenant: f.tenant(luis, entity.VisibilityPrivate, today.Add(time.Minute)), Name: "Privado"}))

	require.NoError(t, f.deals.Create(f.ctx, &entity.Deal{Tenant: f.tenant(ana, entity.VisibilityOrg, today.Add(time.Minute)), Name: "Abierto", Stage: "Proposal", Amount: decimal.NewFromInt(10)}))
	require.NoError(t, f.deals.Create(f.ctx, &entity.Deal{Tenant: f.tenant(ana, entity.VisibilityOrg, lastMonth), Name: "Ganado", Stage: "Closed Won", Amount: decimal.NewFromInt(5)}))

	require.NoError(t, f.tasks.Create(f.ctx, &entity.Task{Tenant: f.tenant(ana, entity.VisibilityOrg, lastMonth), Title: "Vence hoy", DueDate: ptrTime(today.Add(15 * time.Hour))}))
	require.NoError(t, f.tasks.Create(f.ctx, &entity.Task{Tenant: f.tenant(ana, entity.VisibilityOrg, lastMonth), Title: "Mañana", DueDate: &tomorrow}))
	require.NoError(t, f.meetings.Create(f.ctx, &entity.Meeting{Tenant: f.tenant(luis, entity.VisibilityOrg, lastMonth), Title: "Hoy", When: today.Add(10 * time.Hour)}))
	require.NoError(t, f.calls.Create(f.ctx, &entity.Call{Tenant: f.tenant(ana, entity.VisibilityOrg, lastMonth), Subject: "Llamada", CallDate: lastMonth}))

	uc := analytics.NewDashboardUseCase(f.src)

	s, err := uc.Summary(f.ctx, ana, false)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Leads.Total, "el lead privado de otro no cuenta")
	assert.Equal(t, 1, s.Leads.Today)
	assert.Equal(t, 1, s.Deals.Open, "los cerrados no cuentan como abiertos")
	assert.Equal(t, 4, s.Activities.Total)
	assert.Equal(t, 2, s.Activities.DueToday, "tarea que vence hoy y reunión de hoy")

	mine, err := uc.Summary(f.ctx, ana, true)
	require.NoError(t, err)
	assert.Equal(t, 3, mine.Activities.Total, "la reunión es de luis")
	assert.Equal(t, 1, mine.Activities.DueToday)

	all, err := uc.Leads(f.ctx, admin, false)
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, 2, all.Today)

	deals, err := uc.Deals(f.ctx, admin, false)
	require.NoError(t, err)
	assert.Equal(t, 1, deals.Open)
	assert.Equal(t, 1, deals.Week)
}

func ptrTime(t time.Time) *time.Time { return &t }
