package entity

import "time"

// Estados de una invitación.
const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteRevoked  = "revoked"
)

// Invite invitación a unirse a una org.
type Invite struct {
	ID         string
	OrgID      string
	Email      string
	Role       string
	Profile    string
	Token      string
	InvitedBy  string
	Status     string
	AcceptedAt *time.Time
	AcceptedBy string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Usable pendiente y no vencida.
func (i *Invite) Usable(now time.Time) bool {
	return i.Status == InvitePending && now.Before(i.ExpiresAt)
}

// AuditEvent registro de auditoría.
type AuditEvent struct {
	ID        string
	OrgID     string
	ActorID   string
	Actor     string // "Nombre <email>"
	Action    string // "lead.created", "user.updated"...
	Target    string
	Meta      map[string]any
	IP        string
	UA        string
	CreatedAt time.Time
}

// SecurityPolicy política de seguridad de una org.
type SecurityPolicy struct {
	OrgID                string    `json:"orgId"`
	RequireMFA           bool      `json:"requireMfa"`
	SessionTimeout       int       `json:"sessionTimeout"` // minutos
	PasswordMin          int       `json:"passwordMin"`
	PasswordRotationDays int       `json:"passwordRotationDays"`
	UpdatedBy            string    `json:"updatedBy,omitempty"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// DefaultSecurityPolicy valores por defecto (no persistidos).
func DefaultSecurityPolicy(orgID string) SecurityPolicy {
	return SecurityPolicy{OrgID: orgID, SessionTimeout: 60, PasswordMin: 8, PasswordRotationDays: 90}
}

// Clamp lleva cada valor numérico a su rango permitido.
func (p *SecurityPolicy) Clamp() {
	p.SessionTimeout = clamp(p.SessionTimeout, 10, 1440)
	p.PasswordMin = clamp(p.PasswordMin, 6, 128)
	p.PasswordRotationDays = clamp(p.PasswordRotationDays, 0, 3650)
}

// Módulos y permisos de la política por rol.
const (
	PermNone      = "no"
	PermReadOnly  = "ro"
	PermReadWrite = "rw"
)

const (
	ModuleLeads      = "Leads"
	ModuleContacts   = "Contacts"
	ModuleAccounts   = "Accounts"
	ModuleDeals      = "Deals"
	ModuleActivities = "Activities"
	ModuleDocuments  = "Documents"
	ModuleCampaigns  = "Campaigns"
)

var PolicyModules = []string{
	ModuleLeads, ModuleContacts, ModuleAccounts, ModuleDeals,
	ModuleActivities, ModuleDocuments, ModuleCampaigns,
}

// RolePolicy matriz rol -> módulo -> permiso.
type RolePolicy struct {
	OrgID             string                       `json:"orgId"`
	PermissionsByRole map[string]map[string]string `json:"permissionsByRole"`
	UpdatedBy         string                       `json:"updatedBy,omitempty"`
	UpdatedAt         time.Time                    `json:"updatedAt"`
}

func defaultPerm(role string) string {
	switch role {
	case RoleAdmin, RoleManager:
		return PermReadWrite
	case RoleUser:
		return PermReadOnly
	}
	return PermNone
}

// DefaultRolePolicy admin/manager rw, user ro, read_only no.
func DefaultRolePolicy(orgID string) RolePolicy {
	p := RolePolicy{OrgID: orgID}
	p.Normalize()
	return p
}

// Normalize completa roles y módulos faltantes o inválidos con los valores por defecto
// y descarta roles y módulos desconocidos.
func (p *RolePolicy) Normalize() {
	out := make(map[string]map[string]string, len(Roles))
	for _, role := range Roles {
		in := p.PermissionsByRole[role]
		perms := make(map[string]string, len(PolicyModules))
		for _, mod := range PolicyModules {
			v := in[mod]
			switch v {
			case PermNone, PermReadOnly, PermReadWrite:
				perms[mod] = v
			default:
				perms[mod] = defaultPerm(role)
			}
		}
		out[role] = perms
	}
	p.PermissionsByRole = out
}

// Allows indica si role puede leer (write=false) o escribir (write=true) en module.
// admin siempre puede.
func (p *RolePolicy) Allows(role, module string, write bool) bool {
	if role == RoleAdmin {
		return true
	}
	perm, ok := p.PermissionsByRole[role][module]
	if !ok {
		perm = defaultPerm(role)
	}
	if write {
		return perm == PermReadWrite
	}
	return perm == PermReadOnly || perm == PermReadWrite
}

// IntegrationSettings integraciones habilitadas por org.
type IntegrationSettings struct {
	OrgID          string          `json:"orgId"`
	Slack          bool            `json:"slack"`
	Zapier         bool            `json:"zapier"`
	Mailchimp      bool            `json:"mailchimp"`
	Stripe         bool            `json:"stripe"`
	EmailProviders map[string]bool `json:"emailProviders"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
