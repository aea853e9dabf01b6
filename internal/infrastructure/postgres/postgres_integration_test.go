//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
	"github.com/jhoicas/crm-api/internal/infrastructure/postgres"
	"github.com/jhoicas/crm-api/pkg/config"
	"github.com/jhoicas/crm-api/pkg/logger"
)

func setupPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "crm",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pool, err := postgres.Connect(ctx, config.DBConfig{
		DatabaseURL:    fmt.Sprintf("postgres://test:test@%s:%s/crm?sslmode=disable", host, port.Port()),
		ConnectRetries: 5,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type stack struct {
	auth     *auth.AuthUseCase
	leads    *usecase.ScopedUseCase[*entity.Lead]
	meetings *usecase.MeetingUseCase
	invoices *usecase.SalesDocUseCase
	quotes   *usecase.SalesDocUseCase
	policies *usecase.PolicyUseCase
	modules  *usecase.ModuleService
	audit    repository.AuditRepository
}

func newStack(pool *pgxpool.Pool) stack {
	auditRepo := postgres.NewAuditRepository(pool)
	audit := usecase.NewAuditUseCase(auditRepo, logger.Nop())
	users := postgres.NewUserRepository(pool)
	orgs := postgres.NewOrgRepository(pool)
	policies := postgres.NewPolicyRepository(pool)
	docs := func(docType string) *usecase.SalesDocUseCase {
		return usecase.NewSalesDocUseCase(docType, postgres.NewScopedStore(pool, postgres.SalesDocTable(docType)), orgs, nil, nil, audit)
	}
	return stack{
		auth: auth.NewAuthUseCase(users, postgres.NewInviteRepository(pool), policies, postgres.NewTxRunner(pool), audit,
			auth.JWTConfig{Secret: "integration-secret", ExpMinutes: 10, Issuer: "crm-test"}),
		leads:    usecase.NewLeadUseCase(postgres.NewScopedStore(pool, postgres.LeadTable), audit),
		meetings: usecase.NewMeetingUseCase(postgres.NewMeetingRepository(pool), users, audit),
		invoices: docs(entity.DocInvoice),
		quotes:   docs(entity.DocQuote),
		policies: usecase.NewPolicyUseCase(policies, audit),
		modules:  usecase.NewModuleService(policies),
		audit:    auditRepo,
	}
}

func (s stack) signup(t *testing.T, ctx context.Context, name, email string) acl.Principal {
	t.Helper()
	out, err := s.auth.Signup(ctx, dto.SignupRequest{Name: name, Email: email, Password: "secret123"})
	require.NoError(t, err)
	p, _, err := s.auth.Authenticate(ctx, out.Token)
	require.NoError(t, err)
	return p
}

func TestIntegration_Postgres(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	s := newStack(pool)

	ada := s.signup(t, ctx, "Ada", "ada@acme.test")
	zed := s.signup(t, ctx, "Zed", "zed@other.test")
	require.NotEqual(t, ada.OrgID, zed.OrgID)

	t.Run("signup duplicado", func(t *testing.T) {
		_, err := s.auth.Signup(ctx, dto.SignupRequest{Name: "Ada", Email: "ADA@acme.test", Password: "secret123"})
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("migraciones idempotentes", func(t *testing.T) {
		n, err := postgres.MigrateCount(ctx, pool)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("leads por org y visibilidad", func(t *testing.T) {
		pub, err := s.leads.Create(ctx, ada, []byte(`{"firstName":"Ana","lastName":"López","email":"ana@x.com"}`))
		require.NoError(t, err)
		_, err = s.leads.Create(ctx, ada, []byte(`{"name":"Privado","visibility":"private"}`))
		require.NoError(t, err)

		got, err := s.leads.Get(ctx, ada, pub.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana López", got.Name)
		assert.Equal(t, entity.VisibilityOrg, got.Visibility)

		_, err = s.leads.Get(ctx, zed, pub.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		page, err := s.leads.List(ctx, ada, dto.ListParams{Search: "lóp"})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)

		updated, err := s.leads.Update(ctx, ada, pub.ID, []byte(`{"status":"qualified"}`))
		require.NoError(t, err)
		assert.Equal(t, "Qualified", updated.Status)

		require.NoError(t, s.leads.Remove(ctx, ada, pub.ID))
		_, err = s.leads.Get(ctx, ada, pub.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("facturas numeradas por org", func(t *testing.T) {
		inv, err := s.invoices.Create(ctx, ada, []byte(`{"account":"Globex","items":[{"name":"Plan","qty":2,"price":"50.25"}],"taxRate":"19"}`))
		require.NoError(t, err)
		assert.Equal(t, "100.5", inv.Subtotal.String())

		got, err := s.invoices.Get(ctx, ada, inv.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.True(t, got.Total.Equal(inv.Total))

		_, err = s.invoices.Create(ctx, ada, []byte(`{"account":"Otro","number":"`+inv.Number+`"}`))
		assert.True(t, errors.Is(err, domain.ErrDuplicate) || errors.Is(err, domain.ErrConflict), "número repetido: %v", err)

		_, err = s.quotes.Get(ctx, ada, inv.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound, "las cotizaciones no ven facturas")

		_, err = s.invoices.Create(ctx, zed, []byte(`{"account":"Otro","number":"`+inv.Number+`"}`))
		assert.NoError(t, err, "otra org puede repetir el número")
	})

	t.Run("agenda y recordatorios", func(t *testing.T) {
		when := time.Date(2030, 3, 4, 15, 0, 0, 0, time.UTC)
		m, err := s.meetings.Create(ctx, ada, []byte(`{"title":"Demo","when":"2030-03-04T15:00:00Z","durationMinutes":45,"reminderMinutes":10}`))
		require.NoError(t, err)
		require.NotNil(t, m.NextReminderAt)

		repo := s.meetings.Repo().(repository.MeetingRepository)
		busy, err := repo.Busy(ctx, ada.OrgID, ada.UserID, when.Add(-time.Hour), when.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, busy, 1)
		assert.Equal(t, 45, busy[0].DurationMinutes)

		// empezó antes de la ventana pero sigue en curso
		over, err := repo.Overlapping(ctx, ada.OrgID, ada.UserID, when.Add(30*time.Minute), when.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Len(t, over, 1)
		over, err = repo.Overlapping(ctx, ada.OrgID, ada.UserID, when.Add(45*time.Minute), when.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, over, "contiguo no se solapa")

		due, err := repo.DueReminders(ctx, when, when.Add(-time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, due, 1)
		require.NoError(t, repo.ClearReminder(ctx, m.ID))
		due, err = repo.DueReminders(ctx, when, when.Add(-time.Hour), 10)
		require.NoError(t, err)
		assert.Empty(t, due)
	})

	t.Run("política de módulos", func(t *testing.T) {
		_, err := s.policies.UpdateRoles(ctx, ada, []byte(`{"permissionsByRole":{"user":{"Leads":"no"}}}`))
		require.NoError(t, err)
		user := acl.Principal{UserID: "u", OrgID: ada.OrgID, Role: entity.RoleUser}
		ok, err := s.modules.HasModuleAccess(ctx, user, entity.ModuleLeads, false)
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = s.modules.HasModuleAccess(ctx, user, entity.ModuleContacts, false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("auditoría", func(t *testing.T) {
		events, err := s.audit.List(ctx, repository.AuditQuery{OrgID: ada.OrgID, Q: "lead.created", Limit: 10})
		require.NoError(t, err)
		assert.Len(t, events, 2)
		other, err := s.audit.List(ctx, repository.AuditQuery{OrgID: zed.OrgID, Q: "lead", Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}
