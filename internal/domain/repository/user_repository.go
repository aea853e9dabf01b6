package repository

import (
	"context"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// GetByID y GetByIdentifier devuelven domain.ErrUserNotFound si no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByIdentifier busca por email, username o teléfono.
	GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
	// Taken indica si email, username o phone (los no vacíos) ya pertenecen a otro usuario.
	Taken(ctx context.Context, email, username, phone string) (bool, error)
	Update(ctx context.Context, user *entity.User) error
	ListByOrg(ctx context.Context, orgID string) ([]*entity.User, error)
	CountActiveAdmins(ctx context.Context, orgID string) (int, error)
}

// InviteRepository persistencia de invitaciones.
type InviteRepository interface {
	Create(ctx context.Context, inv *entity.Invite) error
	// GetByToken devuelve domain.ErrNotFound si el token no existe.
	GetByToken(ctx context.Context, token string) (*entity.Invite, error)
	ListPending(ctx context.Context, orgID string) ([]*entity.Invite, error)
	// Revoke marca revocada una invitación pendiente; domain.ErrNotFound si no existe.
	Revoke(ctx context.Context, orgID, id string) error
	Accept(ctx context.Context, id, userID string, at time.Time) error
}
