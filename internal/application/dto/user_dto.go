package dto

import "time"

// SignupRequest registro propio (crea org) o por invitación (token).
type SignupRequest struct {
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	OrgName   string `json:"orgName"`
	Token     string `json:"token"`
}

// SigninRequest login por email, teléfono o username.
type SigninRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
}

// Login devuelve el primer identificador no vacío.
func (r SigninRequest) Login() string {
	for _, v := range []string{r.Identifier, r.Email, r.Username, r.Phone} {
		if v != "" {
			return v
		}
	}
	return ""
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Profile   string    `json:"profile,omitempty"`
	ManagerID string    `json:"managerId,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Status    string    `json:"status"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UpdateUserRequest cambios de un admin sobre un usuario (campos opcionales).
type UpdateUserRequest struct {
	Role      *string `json:"role"`
	Active    *bool   `json:"active"`
	Profile   *string `json:"profile"`
	Avatar    *string `json:"avatar"`
	ManagerID *string `json:"managerId"`
}

// UpdateMeRequest campos del propio perfil.
type UpdateMeRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Avatar *string `json:"avatar"`
}

// CreateInvitesRequest invitaciones a varios emails.
type CreateInvitesRequest struct {
	Emails  []string `json:"emails"`
	Role    string   `json:"role"`
	Profile string   `json:"profile"`
}

// InviteResponse invitación pendiente.
type InviteResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Profile   string    `json:"profile,omitempty"`
	Status    string    `json:"status"`
	Link      string    `json:"link,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateInvitesResponse invitaciones creadas y emails omitidos (ya eran usuarios de la org).
type CreateInvitesResponse struct {
	Invites []InviteResponse `json:"invites"`
	Skipped []string         `json:"skipped"`
}

// RoleInfo entrada del catálogo de roles.
type RoleInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
