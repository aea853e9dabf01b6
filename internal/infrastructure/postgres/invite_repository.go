package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.InviteRepository = (*InviteRepo)(nil)

// InviteRepo invitaciones sobre PostgreSQL (usable con pool o tx).
type InviteRepo struct {
	q Querier
}

// NewInviteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInviteRepository(q Querier) *InviteRepo {
	return &InviteRepo{q: q}
}

const inviteColumns = `id, org_id, email, role, profile, token, invited_by, status, accepted_at, accepted_by,
	expires_at, created_at, updated_at`

func scanInvite(row interface{ Scan(...any) error }) (*entity.Invite, error) {
	var i entity.Invite
	err := row.Scan(&i.ID, &i.OrgID, &i.Email, &i.Role, &i.Profile, &i.Token, &i.InvitedBy, &i.Status,
		&i.AcceptedAt, &i.AcceptedBy, &i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create persiste una invitación.
func (r *InviteRepo) Create(ctx context.Context, inv *entity.Invite) error {
	_, err := r.q.Exec(ctx, `INSERT INTO invites (`+inviteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		inv.ID, inv.OrgID, inv.Email, inv.Role, inv.Profile, inv.Token, inv.InvitedBy, inv.Status,
		inv.AcceptedAt, inv.AcceptedBy, inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invite: %w", mapError(err, domain.ErrNotFound))
	}
	return nil
}

// GetByToken obtiene la invitación del token.
func (r *InviteRepo) GetByToken(ctx context.Context, token string) (*entity.Invite, error) {
	inv, err := scanInvite(r.q.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invites WHERE token = $1`, token))
	if err != nil {
		return nil, mapError(err, domain.ErrNotFound)
	}
	return inv, nil
}

// ListPending invitaciones pendientes de la org, más recientes primero.
func (r *InviteRepo) ListPending(ctx context.Context, orgID string) ([]*entity.Invite, error) {
	list := []*entity.Invite{}
	if !validID(orgID) {
		return list, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+inviteColumns+` FROM invites
		WHERE org_id = $1 AND status = $2 ORDER BY created_at DESC`, orgID, entity.InvitePending)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invite: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Revoke marca como revocada una invitación pendiente.
func (r *InviteRepo) Revoke(ctx context.Context, orgID, id string) error {
	if !validID(orgID) || !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `UPDATE invites SET status = $3, updated_at = now()
		WHERE org_id = $1 AND id = $2 AND status = $4`, orgID, id, entity.InviteRevoked, entity.InvitePending)
	if err != nil {
		return fmt.Errorf("revoke invite: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Accept marca la invitación como aceptada por userID.
func (r *InviteRepo) Accept(ctx context.Context, id, userID string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE invites SET status = $2, accepted_by = $3, accepted_at = $4, updated_at = $4
		WHERE id = $1 AND status = $5`, id, entity.InviteAccepted, userID, at, entity.InvitePending)
	if err != nil {
		return fmt.Errorf("accept invite: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInviteInvalid
	}
	return nil
}
