// Package acl decide qué registros puede ver y modificar un usuario dentro de su organización.
package acl

import (
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// Principal usuario autenticado que ejecuta una operación.
type Principal struct {
	UserID string
	OrgID  string
	Role   string
	Name   string
	Email  string
}

// IsAdmin rol admin de la org.
func IsAdmin(p Principal) bool { return p.Role == entity.RoleAdmin }

// CanMutate indica si el rol permite crear o modificar registros. read_only nunca escribe.
func CanMutate(p Principal) bool { return p.Role != entity.RoleReadOnly && p.Role != "" }

// Scope filtro de lectura: org obligatoria y, salvo admin, visibilidad del usuario.
type Scope struct {
	OrgID  string
	UserID string
	All    bool // admin: sin restricción dentro de la org
}

// ReadScope construye el filtro de lectura del principal.
// Un no-admin ve un registro si es owner, está asignado, está en sharedWith o visibility=org.
func ReadScope(p Principal) Scope {
	return Scope{OrgID: p.OrgID, UserID: p.UserID, All: IsAdmin(p)}
}

// Allows evalúa el scope en memoria sobre un registro.
func (s Scope) Allows(t *entity.Tenant) bool {
	if t == nil || s.OrgID == "" || t.OrgID != s.OrgID {
		return false
	}
	if s.All {
		return true
	}
	return Visible(s.UserID, t)
}

// Visible reglas de visibilidad para un usuario no admin (la org ya fue verificada).
func Visible(userID string, t *entity.Tenant) bool {
	if t.Visibility == entity.VisibilityOrg {
		return true
	}
	return userID != "" && (t.OwnerID == userID || t.IsAssigned(userID) || t.IsSharedWith(userID))
}

// CanRead la org coincide y el registro es visible para p.
func CanRead(p Principal, t *entity.Tenant) bool { return ReadScope(p).Allows(t) }

// CanWrite admin, owner o asignado (dentro de la misma org). read_only nunca escribe.
func CanWrite(p Principal, t *entity.Tenant) bool {
	if t == nil || t.OrgID != p.OrgID || !CanMutate(p) {
		return false
	}
	if IsAdmin(p) {
		return true
	}
	return t.OwnerID == p.UserID || t.IsAssigned(p.UserID)
}

// CanChangeOwnership admin u owner pueden cambiar ownerId, assignedTo, sharedWith y visibility.
func CanChangeOwnership(p Principal, t *entity.Tenant) bool {
	return IsAdmin(p) || (t != nil && t.OwnerID == p.UserID)
}

// Ownership campos de propiedad solicitados en un create/update. nil = no enviado.
type Ownership struct {
	OwnerID    *string
	AssignedTo *[]string
	SharedWith *[]string
	Visibility *string
}

// ApplyCreate fija los campos de tenant de un registro nuevo.
// Sólo un admin puede elegir owner, asignados, compartidos y visibilidad; el resto recibe los valores por defecto.
func ApplyCreate(p Principal, t *entity.Tenant, req Ownership) {
	t.OrgID = p.OrgID
	t.OwnerID = p.UserID
	t.CreatedBy = p.UserID
	t.UpdatedBy = p.UserID
	t.AssignedTo = []string{}
	t.SharedWith = []string{}
	t.Visibility = entity.VisibilityOrg
	if !IsAdmin(p) {
		return
	}
	applyOwnership(t, req)
}

// ApplyUpdate restaura los campos protegidos desde prev y aplica los de propiedad sólo si p puede cambiarlos.
func ApplyUpdate(p Principal, prev entity.Tenant, t *entity.Tenant, req Ownership) {
	next := prev
	next.UpdatedBy = p.UserID
	if CanChangeOwnership(p, &prev) {
		applyOwnership(&next, req)
	}
	*t = next
}

func applyOwnership(t *entity.Tenant, req Ownership) {
	if req.OwnerID != nil && *req.OwnerID != "" {
		t.OwnerID = *req.OwnerID
	}
	if req.AssignedTo != nil {
		t.AssignedTo = dedup(*req.AssignedTo)
	}
	if req.SharedWith != nil {
		t.SharedWith = dedup(*req.SharedWith)
	}
	if req.Visibility != nil && entity.ValidVisibility(*req.Visibility) {
		t.Visibility = *req.Visibility
	}
}

func dedup(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
