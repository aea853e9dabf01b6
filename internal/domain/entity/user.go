package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleUser     = "user"
	RoleReadOnly = "read_only"
)

// Roles en orden de privilegio.
var Roles = []string{RoleAdmin, RoleManager, RoleUser, RoleReadOnly}

// ValidRole indica si r es un rol conocido.
func ValidRole(r string) bool {
	for _, x := range Roles {
		if x == r {
			return true
		}
	}
	return false
}

// Estados de un usuario.
const (
	UserActive    = "active"
	UserSuspended = "suspended"
)

// User representa un usuario del sistema (pertenece a una Org).
type User struct {
	ID           string
	OrgID        string
	Name         string
	Email        string // único global, en minúsculas
	Username     string // único global, en minúsculas
	Phone        string // único global
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // admin, manager, user, read_only
	Profile      string
	ManagerID    string
	Avatar       string
	Status       string // active, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive indica si el usuario puede autenticarse.
func (u *User) IsActive() bool { return u.Status == "" || u.Status == UserActive }

// DisplayName "Nombre <email>" para auditoría.
func (u *User) DisplayName() string {
	switch {
	case u.Name != "" && u.Email != "":
		return u.Name + " <" + u.Email + ">"
	case u.Email != "":
		return u.Email
	case u.Name != "":
		return u.Name
	}
	return u.Username
}
