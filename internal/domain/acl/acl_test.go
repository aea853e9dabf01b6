package acl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

const (
	org1 = "org-1"
	org2 = "org-2"
)

var (
	admin    = acl.Principal{UserID: "u-admin", OrgID: org1, Role: entity.RoleAdmin}
	owner    = acl.Principal{UserID: "u-owner", OrgID: org1, Role: entity.RoleUser}
	assigned = acl.Principal{UserID: "u-asig", OrgID: org1, Role: entity.RoleUser}
	shared   = acl.Principal{UserID: "u-shared", OrgID: org1, Role: entity.RoleManager}
	stranger = acl.Principal{UserID: "u-otro", OrgID: org1, Role: entity.RoleUser}
	reader   = acl.Principal{UserID: "u-owner", OrgID: org1, Role: entity.RoleReadOnly}
	foreign  = acl.Principal{UserID: "u-admin2", OrgID: org2, Role: entity.RoleAdmin}
)

func record(vis string) *entity.Tenant {
	return &entity.Tenant{
		ID:         "r1",
		OrgID:      org1,
		OwnerID:    owner.UserID,
		AssignedTo: []string{assigned.UserID},
		SharedWith: []string{shared.UserID},
		Visibility: vis,
	}
}

func TestCanRead_Privado(t *testing.T) {
	r := record(entity.VisibilityPrivate)

	assert.True(t, acl.CanRead(admin, r), "admin ve todo en su org")
	assert.True(t, acl.CanRead(owner, r))
	assert.True(t, acl.CanRead(assigned, r))
	assert.True(t, acl.CanRead(shared, r))
	assert.False(t, acl.CanRead(stranger, r), "privado no es visible para terceros")
	assert.False(t, acl.CanRead(foreign, r), "admin de otra org nunca ve el registro")
}

func TestCanRead_VisibilidadOrg(t *testing.T) {
	r := record(entity.VisibilityOrg)
	assert.True(t, acl.CanRead(stranger, r))
	assert.False(t, acl.CanRead(foreign, r))
}

func TestCanWrite(t *testing.T) {
	r := record(entity.VisibilityOrg)

	assert.True(t, acl.CanWrite(admin, r))
	assert.True(t, acl.CanWrite(owner, r))
	assert.True(t, acl.CanWrite(assigned, r))
	assert.False(t, acl.CanWrite(shared, r), "compartido es sólo lectura")
	assert.False(t, acl.CanWrite(stranger, r), "visibility=org no otorga escritura")
	assert.False(t, acl.CanWrite(reader, r), "read_only no escribe aunque sea owner")
	assert.False(t, acl.CanWrite(foreign, r))
}

func TestApplyCreate_NoAdminIgnoraPropiedad(t *testing.T) {
	other := "u-otro"
	vis := entity.VisibilityPrivate
	var tn entity.Tenant
	acl.ApplyCreate(owner, &tn, acl.Ownership{OwnerID: &other, Visibility: &vis})

	assert.Equal(t, org1, tn.OrgID)
	assert.Equal(t, owner.UserID, tn.OwnerID)
	assert.Equal(t, owner.UserID, tn.CreatedBy)
	assert.Equal(t, owner.UserID, tn.UpdatedBy)
	assert.Equal(t, entity.VisibilityOrg, tn.Visibility, "visibilidad por defecto org")
	assert.Empty(t, tn.AssignedTo)
}

func TestApplyCreate_AdminEligeOwner(t *testing.T) {
	other := "u-otro"
	vis := entity.VisibilityShared
	assignees := []string{"a", "a", "", "b"}
	var tn entity.Tenant
	acl.ApplyCreate(admin, &tn, acl.Ownership{OwnerID: &other, Visibility: &vis, AssignedTo: &assignees})

	assert.Equal(t, other, tn.OwnerID)
	assert.Equal(t, admin.UserID, tn.CreatedBy)
	assert.Equal(t, entity.VisibilityShared, tn.Visibility)
	assert.Equal(t, []string{"a", "b"}, tn.AssignedTo)
}

func TestApplyUpdate_CamposProtegidos(t *testing.T) {
	prev := *record(entity.VisibilityOrg)
	prev.CreatedBy = owner.UserID

	// el cuerpo intentó cambiar org, creador y visibilidad
	patched := prev
	patched.OrgID = org2
	patched.CreatedBy = "hacker"
	vis := entity.VisibilityPrivate

	acl.ApplyUpdate(assigned, prev, &patched, acl.Ownership{Visibility: &vis})
	assert.Equal(t, org1, patched.OrgID)
	assert.Equal(t, owner.UserID, patched.CreatedBy)
	assert.Equal(t, entity.VisibilityOrg, patched.Visibility, "asignado no puede cambiar visibilidad")
	assert.Equal(t, assigned.UserID, patched.UpdatedBy)

	acl.ApplyUpdate(owner, prev, &patched, acl.Ownership{Visibility: &vis})
	assert.Equal(t, entity.VisibilityPrivate, patched.Visibility, "owner sí puede")
}

func TestScopeAllows_SinOrg(t *testing.T) {
	assert.False(t, acl.Scope{All: true}.Allows(record(entity.VisibilityOrg)))
}
