package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

func TestPolicy_SecurityAcotada(t *testing.T) {
	e := newEnv(t)

	sp, err := e.policies.Security(e.ctx, userA)
	require.NoError(t, err)
	assert.Equal(t, 8, sp.PasswordMin, "valores de fábrica")

	_, err = e.policies.UpdateSecurity(e.ctx, userA, body(`{"passwordMin":10}`))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	sp, err = e.policies.UpdateSecurity(e.ctx, adminA, body(`{"passwordMin":2,"sessionTimeout":99999,"requireMfa":true}`))
	require.NoError(t, err)
	assert.Equal(t, 6, sp.PasswordMin)
	assert.Equal(t, 1440, sp.SessionTimeout)
	assert.True(t, sp.RequireMFA)
	assert.Equal(t, adminA.UserID, sp.UpdatedBy)
}

func TestPolicy_RolesYAccesoPorModulo(t *testing.T) {
	e := newEnv(t)
	modules := usecase.NewModuleService(e.settings)

	ok, err := modules.HasModuleAccess(e.ctx, readerA, entity.ModuleDeals, true)
	require.NoError(t, err)
	assert.True(t, ok, "sin política guardada no se restringe por módulo")

	rp, err := e.policies.UpdateRoles(e.ctx, adminA, body(`{"permissionsByRole":{"user":{"Deals":"no","Leads":"rw"},"manager":{"Deals":"xx"}}}`))
	require.NoError(t, err)
	assert.Equal(t, entity.PermNone, rp.PermissionsByRole[entity.RoleUser][entity.ModuleDeals])
	assert.Equal(t, entity.PermReadWrite, rp.PermissionsByRole[entity.RoleManager][entity.ModuleDeals], "valor inválido vuelve al de fábrica")
	assert.Equal(t, entity.PermReadOnly, rp.PermissionsByRole[entity.RoleUser][entity.ModuleContacts])

	ok, err = modules.HasModuleAccess(e.ctx, userA, entity.ModuleDeals, false)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = modules.HasModuleAccess(e.ctx, userA, entity.ModuleLeads, true)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = modules.HasModuleAccess(e.ctx, userA, entity.ModuleContacts, true)
	require.NoError(t, err)
	assert.False(t, ok, "ro no escribe")

	ok, err = modules.HasModuleAccess(e.ctx, adminA, entity.ModuleDeals, true)
	require.NoError(t, err)
	assert.True(t, ok, "admin siempre pasa")
}

func TestPolicy_Integraciones(t *testing.T) {
	e := newEnv(t)

	s, err := e.policies.Integrations(e.ctx, userA)
	require.NoError(t, err)
	assert.False(t, s.Slack)
	assert.NotNil(t, s.EmailProviders)

	_, err = e.policies.ConnectEmail(e.ctx, adminA, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.policies.UpdateIntegrations(e.ctx, adminA, body(`{"slack":true}`))
	require.NoError(t, err)
	s, err = e.policies.ConnectEmail(e.ctx, adminA, "Gmail")
	require.NoError(t, err)
	assert.True(t, s.Slack, "conectar correo conserva el resto")
	assert.True(t, s.EmailProviders["gmail"])
}

func TestAudit_SoloAdminYFiltro(t *testing.T) {
	e := newEnv(t)
	_, err := e.leads.Create(e.ctx, userA, body(`{"name":"L"}`))
	require.NoError(t, err)
	_, err = e.tasks.Create(e.ctx, userA, body(`{"title":"T"}`))
	require.NoError(t, err)

	_, err = e.audit.List(e.ctx, userA, "", nil, nil, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	rows, err := e.audit.List(e.ctx, adminA, "task", nil, nil, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "task.created", rows[0].Action)
	assert.Equal(t, "Bob <bob@acme.test>", rows[0].Actor)

	future := time.Now().Add(time.Hour)
	rows, err = e.audit.List(e.ctx, adminA, "", &future, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = e.audit.List(e.ctx, adminB, "", nil, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, rows, "cada org ve su bitácora")
}
