package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
	"github.com/jhoicas/crm-api/pkg/logger"
)

// InviteConfig base de los links de invitación y su vigencia.
type InviteConfig struct {
	AppURL   string
	Validity time.Duration
}

// UserUseCase administración de usuarios de la org e invitaciones.
type UserUseCase struct {
	repo    repository.UserRepository
	invites repository.InviteRepository
	audit   Auditor
	log     *logger.Logger
	cfg     InviteConfig
	now     func() time.Time
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, invites repository.InviteRepository, audit Auditor, log *logger.Logger, cfg InviteConfig) *UserUseCase {
	if cfg.Validity <= 0 {
		cfg.Validity = 7 * 24 * time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UserUseCase{repo: repo, invites: invites, audit: audit, log: log.Component("users"), cfg: cfg, now: time.Now}
}

// Me usuario autenticado.
func (uc *UserUseCase) Me(ctx context.Context, p acl.Principal) (*dto.UserResponse, error) {
	u, err := uc.repo.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return auth.ToUserResponse(u), nil
}

// UpdateMe cambia nombre, teléfono y avatar del propio usuario.
func (uc *UserUseCase) UpdateMe(ctx context.Context, p acl.Principal, in dto.UpdateMeRequest) (*dto.UserResponse, error) {
	u, err := uc.repo.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "es requerido")
		}
		u.Name = name
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone != "" && phone != u.Phone {
			taken, err := uc.repo.Taken(ctx, "", "", phone)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, domain.Conflict("el teléfono ya está registrado")
			}
		}
		u.Phone = phone
	}
	if in.Avatar != nil {
		u.Avatar = strings.TrimSpace(*in.Avatar)
	}
	u.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return auth.ToUserResponse(u), nil
}

// List usuarios de la org (admin).
func (uc *UserUseCase) List(ctx context.Context, p acl.Principal) ([]dto.UserResponse, error) {
	if !acl.IsAdmin(p) {
		return nil, domain.ErrForbidden
	}
	users, err := uc.repo.ListByOrg(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *auth.ToUserResponse(u))
	}
	return out, nil
}

func (uc *UserUseCase) inOrg(ctx context.Context, orgID, id string) (*entity.User, error) {
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if u.OrgID != orgID {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// Update cambios de un admin sobre un usuario de su org.
// Nadie cambia su propio rol o estado y la org conserva al menos un admin activo.
func (uc *UserUseCase) Update(ctx context.Context, p acl.Principal, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !acl.IsAdmin(p) {
		return nil, domain.ErrForbidden
	}
	u, err := uc.inOrg(ctx, p.OrgID, id)
	if err != nil {
		return nil, err
	}
	role, status := u.Role, u.Status
	if in.Role != nil {
		role = strings.TrimSpace(*in.Role)
		if !entity.ValidRole(role) {
			return nil, domain.Invalid("role", "rol desconocido")
		}
	}
	if in.Active != nil {
		status = entity.UserSuspended
		if *in.Active {
			status = entity.UserActive
		}
	}
	changed := role != u.Role || status != u.Status
	if changed && u.ID == p.UserID {
		return nil, domain.Invalid("role", "no puedes cambiar tu propio rol o estado")
	}
	wasActiveAdmin := u.Role == entity.RoleAdmin && u.IsActive()
	staysActiveAdmin := role == entity.RoleAdmin && status == entity.UserActive
	if wasActiveAdmin && !staysActiveAdmin {
		n, err := uc.repo.CountActiveAdmins(ctx, p.OrgID)
		if err != nil {
			return nil, err
		}
		if n <= 1 {
			return nil, domain.ErrLastAdmin
		}
	}
	if in.ManagerID != nil {
		mgr := strings.TrimSpace(*in.ManagerID)
		if mgr == u.ID {
			return nil, domain.Invalid("managerId", "un usuario no puede ser su propio manager")
		}
		if mgr != "" {
			if _, err := uc.inOrg(ctx, p.OrgID, mgr); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, domain.Invalid("managerId", "no pertenece a la organización")
				}
				return nil, err
			}
		}
		u.ManagerID = mgr
	}
	if in.Profile != nil {
		u.Profile = strings.TrimSpace(*in.Profile)
	}
	if in.Avatar != nil {
		u.Avatar = strings.TrimSpace(*in.Avatar)
	}
	u.Role, u.Status = role, status
	u.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	uc.record(ctx, p, "user.updated", "user:"+u.ID, map[string]any{"role": u.Role, "status": u.Status})
	return auth.ToUserResponse(u), nil
}

// CreateInvites invita emails a la org; omite los que ya son usuarios de ella.
func (uc *UserUseCase) CreateInvites(ctx context.Context, p acl.Principal, in dto.CreateInvitesRequest) (*dto.CreateInvitesResponse, error) {
	if !acl.IsAdmin(p) {
		return nil, domain.ErrForbidden
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = entity.RoleUser
	}
	if !entity.ValidRole(role) {
		return nil, domain.Invalid("role", "rol desconocido")
	}
	emails := normalizeEmails(in.Emails)
	if len(emails) == 0 {
		return nil, domain.Invalid("emails", "se requiere al menos un email válido")
	}
	now := uc.now().UTC()
	resp := &dto.CreateInvitesResponse{Invites: []dto.InviteResponse{}, Skipped: []string{}}
	for _, email := range emails {
		existing, err := uc.repo.GetByIdentifier(ctx, email)
		if err == nil && existing.OrgID == p.OrgID {
			resp.Skipped = append(resp.Skipped, email)
			continue
		}
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		inv := &entity.Invite{
			ID:        uuid.New().String(),
			OrgID:     p.OrgID,
			Email:     email,
			Role:      role,
			Profile:   strings.TrimSpace(in.Profile),
			Token:     uuid.New().String(),
			InvitedBy: p.UserID,
			Status:    entity.InvitePending,
			ExpiresAt: now.Add(uc.cfg.Validity),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.invites.Create(ctx, inv); err != nil {
			return nil, err
		}
		out := uc.toInvite(inv)
		uc.log.Info().Str("org_id", p.OrgID).Str("email", email).Str("link", out.Link).Msg("invitación creada")
		resp.Invites = append(resp.Invites, out)
	}
	uc.record(ctx, p, "invite.created", "org:"+p.OrgID, map[string]any{"count": len(resp.Invites), "role": role})
	return resp, nil
}

// ListInvites invitaciones pendientes (admin).
func (uc *UserUseCase) ListInvites(ctx context.Context, p acl.Principal) ([]dto.InviteResponse, error) {
	if !acl.IsAdmin(p) {
		return nil, domain.ErrForbidden
	}
	list, err := uc.invites.ListPending(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InviteResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, uc.toInvite(inv))
	}
	return out, nil
}

// RevokeInvite revoca una invitación pendiente (admin).
func (uc *UserUseCase) RevokeInvite(ctx context.Context, p acl.Principal, id string) error {
	if !acl.IsAdmin(p) {
		return domain.ErrForbidden
	}
	if err := uc.invites.Revoke(ctx, p.OrgID, id); err != nil {
		return err
	}
	uc.record(ctx, p, "invite.revoked", "invite:"+id, nil)
	return nil
}

// Roles catálogo estático de roles.
func (uc *UserUseCase) Roles() []dto.RoleInfo {
	return []dto.RoleInfo{
		{Key: entity.RoleAdmin, Name: "Admin", Description: "Acceso total a la organización y su configuración"},
		{Key: entity.RoleManager, Name: "Manager", Description: "Gestiona registros y el pipeline del equipo"},
		{Key: entity.RoleUser, Name: "User", Description: "Trabaja sus propios registros y los compartidos"},
		{Key: entity.RoleReadOnly, Name: "Read only", Description: "Sólo lectura"},
	}
}

func (uc *UserUseCase) toInvite(inv *entity.Invite) dto.InviteResponse {
	return dto.InviteResponse{
		ID:        inv.ID,
		Email:     inv.Email,
		Role:      inv.Role,
		Profile:   inv.Profile,
		Status:    inv.Status,
		Link:      strings.TrimRight(uc.cfg.AppURL, "/") + "/signup?token=" + inv.Token,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	}
}

func (uc *UserUseCase) record(ctx context.Context, p acl.Principal, action, target string, meta map[string]any) {
	if uc.audit != nil {
		uc.audit.Record(ctx, p, action, target, meta)
	}
}

// normalizeEmails minúsculas, sin duplicados ni inválidos.
func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || seen[e] {
			continue
		}
		if _, err := mail.ParseAddress(e); err != nil {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
