package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/infrastructure/memory"
	"github.com/jhoicas/crm-api/pkg/logger"
)

const (
	orgA = "org-a"
	orgB = "org-b"
)

var (
	adminA   = acl.Principal{UserID: "u-admin", OrgID: orgA, Role: entity.RoleAdmin, Name: "Ada", Email: "ada@acme.test"}
	userA    = acl.Principal{UserID: "u-user", OrgID: orgA, Role: entity.RoleUser, Name: "Bob", Email: "bob@acme.test"}
	otherA   = acl.Principal{UserID: "u-otro", OrgID: orgA, Role: entity.RoleUser, Name: "Cleo", Email: "cleo@acme.test"}
	managerA = acl.Principal{UserID: "u-mgr", OrgID: orgA, Role: entity.RoleManager, Name: "Max", Email: "max@acme.test"}
	readerA  = acl.Principal{UserID: "u-ro", OrgID: orgA, Role: entity.RoleReadOnly}
	adminB   = acl.Principal{UserID: "u-admin-b", OrgID: orgB, Role: entity.RoleAdmin}
)

// env casos de uso sobre repositorios en memoria.
type env struct {
	ctx context.Context

	auditRepo *memory.Audit
	users     *memory.Users
	invites   *memory.Invites
	orgs      *memory.Orgs
	settings  *memory.Settings
	meetRepo  *memory.MeetingStore
	dealRepo  *memory.Store[*entity.Deal]

	audit     *usecase.AuditUseCase
	leads     *usecase.ScopedUseCase[*entity.Lead]
	contacts  *usecase.ScopedUseCase[*entity.Contact]
	accounts  *usecase.ScopedUseCase[*entity.Account]
	tasks     *usecase.ScopedUseCase[*entity.Task]
	campaigns *usecase.ScopedUseCase[*entity.Campaign]
	pipeline  *usecase.PipelineUseCase
	deals     *usecase.ScopedUseCase[*entity.Deal]
	meetings  *usecase.MeetingUseCase
	calendar  *usecase.CalendarUseCase
	userUC    *usecase.UserUseCase
	policies  *usecase.PolicyUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		ctx:       context.Background(),
		auditRepo: &memory.Audit{},
		users:     memory.NewUsers(),
		invites:   memory.NewInvites(),
		orgs:      memory.NewOrgs(),
		settings:  memory.NewSettings(),
		meetRepo:  memory.Meetings(),
		dealRepo:  memory.Deals(),
	}
	e.audit = usecase.NewAuditUseCase(e.auditRepo, logger.Nop())
	e.leads = usecase.NewLeadUseCase(memory.Leads(), e.audit)
	e.contacts = usecase.NewContactUseCase(memory.Contacts(), e.audit)
	e.accounts = usecase.NewAccountUseCase(memory.Accounts(), e.audit)
	e.tasks = usecase.NewTaskUseCase(memory.Tasks(), e.audit)
	e.campaigns = usecase.NewCampaignUseCase(memory.Campaigns(), e.audit)
	e.pipeline = usecase.NewPipelineUseCase(e.settings.Pipelines(), e.audit)
	e.deals = usecase.NewDealUseCase(e.dealRepo, e.pipeline, e.audit)
	e.meetings = usecase.NewMeetingUseCase(e.meetRepo, e.users, e.audit)
	e.calendar = usecase.NewCalendarUseCase(e.settings, e.meetings, e.orgs, e.users)
	e.userUC = usecase.NewUserUseCase(e.users, e.invites, e.audit, logger.Nop(),
		usecase.InviteConfig{AppURL: "https://crm.test/", Validity: 72 * time.Hour})
	e.policies = usecase.NewPolicyUseCase(e.settings, e.audit)

	now := time.Now().UTC()
	require.NoError(t, e.orgs.Create(e.ctx, &entity.Org{ID: orgA, Name: "Acme", Timezone: "UTC", CreatedAt: now}))
	require.NoError(t, e.orgs.Create(e.ctx, &entity.Org{ID: orgB, Name: "Other", Timezone: "UTC", CreatedAt: now}))
	for _, p := range []acl.Principal{adminA, userA, otherA, managerA, readerA, adminB} {
		require.NoError(t, e.users.Create(e.ctx, &entity.User{
			ID: p.UserID, OrgID: p.OrgID, Role: p.Role, Name: p.Name, Email: p.Email,
			Status: entity.UserActive, CreatedAt: now,
		}))
	}
	return e
}

func body(s string) []byte { return []byte(s) }
