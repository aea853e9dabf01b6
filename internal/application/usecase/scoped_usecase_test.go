package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

func TestCreate_FijaTenantYValoresPorDefecto(t *testing.T) {
	e := newEnv(t)

	lead, err := e.leads.Create(e.ctx, userA, body(`{"firstName":" Ana ","lastName":"Gómez","email":"ANA@X.COM","orgId":"otra","id":"x"}`))
	require.NoError(t, err)

	assert.NotEmpty(t, lead.ID)
	assert.NotEqual(t, "x", lead.ID, "el id lo asigna el servidor")
	assert.Equal(t, orgA, lead.OrgID)
	assert.Equal(t, userA.UserID, lead.OwnerID)
	assert.Equal(t, userA.UserID, lead.CreatedBy)
	assert.Equal(t, entity.VisibilityOrg, lead.Visibility)
	assert.Equal(t, "Ana Gómez", lead.Name)
	assert.Equal(t, "ana@x.com", lead.Email)
	assert.Equal(t, "New", lead.Status)
	assert.Equal(t, "Web", lead.Source)
	assert.Contains(t, e.auditRepo.Actions(), "lead.created")
}

func TestCreate_SoloAdminEligePropiedad(t *testing.T) {
	e := newEnv(t)
	own := `{"name":"X","ownerId":"u-otro","visibility":"private","sharedWith":["u-mgr","u-mgr"]}`

	byUser, err := e.leads.Create(e.ctx, userA, body(own))
	require.NoError(t, err)
	assert.Equal(t, userA.UserID, byUser.OwnerID, "un usuario no puede regalar el registro")
	assert.Equal(t, entity.VisibilityOrg, byUser.Visibility)
	assert.Empty(t, byUser.SharedWith)

	byAdmin, err := e.leads.Create(e.ctx, adminA, body(own))
	require.NoError(t, err)
	assert.Equal(t, otherA.UserID, byAdmin.OwnerID)
	assert.Equal(t, entity.VisibilityPrivate, byAdmin.Visibility)
	assert.Equal(t, []string{"u-mgr"}, byAdmin.SharedWith)
}

func TestCreate_ReadOnlyNoEscribe(t *testing.T) {
	e := newEnv(t)
	_, err := e.leads.Create(e.ctx, readerA, body(`{"name":"X"}`))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreate_ValidacionYCuerpoInvalido(t *testing.T) {
	e := newEnv(t)

	_, err := e.leads.Create(e.ctx, userA, body(`{"name":"X","status":"Perdido"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.leads.Create(e.ctx, userA, body(`{"name":`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.leads.Create(e.ctx, userA, body(`{"name":"X","visibility":"todos"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGet_VisibilidadYOrg(t *testing.T) {
	e := newEnv(t)
	lead, err := e.leads.Create(e.ctx, adminA, body(`{"name":"Privado","ownerId":"u-user","visibility":"private"}`))
	require.NoError(t, err)

	_, err = e.leads.Get(e.ctx, userA, lead.ID)
	assert.NoError(t, err, "el owner lo ve")

	_, err = e.leads.Get(e.ctx, otherA, lead.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "privado no es visible para terceros")

	_, err = e.leads.Get(e.ctx, adminB, lead.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "otra org nunca lo encuentra")
}

func TestList_FiltraPorScopeYPagina(t *testing.T) {
	e := newEnv(t)
	for i := 0; i < 3; i++ {
		_, err := e.leads.Create(e.ctx, userA, body(`{"name":"Visible"}`))
		require.NoError(t, err)
	}
	_, err := e.leads.Create(e.ctx, adminA, body(`{"name":"Oculto","visibility":"private"}`))
	require.NoError(t, err)
	_, err = e.leads.Create(e.ctx, adminB, body(`{"name":"Ajeno"}`))
	require.NoError(t, err)

	page, err := e.leads.List(e.ctx, otherA, dto.ListParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Items, 2)

	all, err := e.leads.List(e.ctx, adminA, dto.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total, "admin ve todo lo de su org y nada de la otra")

	found, err := e.leads.List(e.ctx, adminA, dto.ListParams{Search: "ocul"})
	require.NoError(t, err)
	assert.Equal(t, 1, found.Total)
}

func TestUpdate_PermisosYPropiedad(t *testing.T) {
	e := newEnv(t)
	lead, err := e.leads.Create(e.ctx, userA, body(`{"name":"Original"}`))
	require.NoError(t, err)

	_, err = e.leads.Update(e.ctx, otherA, lead.ID, body(`{"name":"Hack"}`))
	assert.ErrorIs(t, err, domain.ErrForbidden, "visible no implica editable")

	upd, err := e.leads.Update(e.ctx, userA, lead.ID, body(`{"name":"Nuevo","createdBy":"x","visibility":"private","assignedTo":["u-otro"]}`))
	require.NoError(t, err)
	assert.Equal(t, "Nuevo", upd.Name)
	assert.Equal(t, userA.UserID, upd.CreatedBy)
	assert.Equal(t, entity.VisibilityPrivate, upd.Visibility, "el owner puede cambiar la visibilidad")
	assert.Equal(t, []string{"u-otro"}, upd.AssignedTo)

	// asignado: puede editar pero no cambiar la propiedad
	upd, err = e.leads.Update(e.ctx, otherA, lead.ID, body(`{"company":"Acme","ownerId":"u-otro","visibility":"org"}`))
	require.NoError(t, err)
	assert.Equal(t, "Acme", upd.Company)
	assert.Equal(t, userA.UserID, upd.OwnerID)
	assert.Equal(t, entity.VisibilityPrivate, upd.Visibility)
	assert.Equal(t, otherA.UserID, upd.UpdatedBy)
}

func TestRemove(t *testing.T) {
	e := newEnv(t)
	lead, err := e.leads.Create(e.ctx, userA, body(`{"name":"Borrar"}`))
	require.NoError(t, err)

	assert.ErrorIs(t, e.leads.Remove(e.ctx, otherA, lead.ID), domain.ErrForbidden)
	assert.ErrorIs(t, e.leads.Remove(e.ctx, adminB, lead.ID), domain.ErrNotFound)
	require.NoError(t, e.leads.Remove(e.ctx, adminA, lead.ID))

	_, err = e.leads.Get(e.ctx, adminA, lead.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, e.auditRepo.Actions(), "lead.deleted")
}

func TestAlias_TareasYCampanias(t *testing.T) {
	e := newEnv(t)

	task, err := e.tasks.Create(e.ctx, userA, body(`{"subject":"Llamar","dueDate":"2026-10-20","status":"done"}`))
	require.NoError(t, err)
	assert.Equal(t, "Llamar", task.Title)
	assert.Equal(t, entity.TaskCompleted, task.Status)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2026-10-20", task.DueDate.UTC().Format("2006-01-02"))

	camp, err := e.campaigns.Create(e.ctx, userA, body(`{"name":"Q4","type":"Email","status":"active","budget":"1,500.50","startAt":"2026-11-01"}`))
	require.NoError(t, err)
	assert.Equal(t, "Email", camp.Channel)
	assert.Equal(t, "Running", camp.Status)
	assert.Equal(t, "1500.5", camp.Budget.String())
	require.NotNil(t, camp.StartDate)
}

func TestContactoRequiereNombreOEmail(t *testing.T) {
	e := newEnv(t)
	_, err := e.contacts.Create(e.ctx, userA, body(`{"phone":"123"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := e.contacts.Create(e.ctx, userA, body(`{"email":"x@y.com"}`))
	require.NoError(t, err)
	assert.Equal(t, "x@y.com", c.Email)
}
