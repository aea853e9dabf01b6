package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Asegura que OrgRepo implementa repository.OrgRepository.
var _ repository.OrgRepository = (*OrgRepo)(nil)

// OrgRepo implementación del puerto OrgRepository sobre PostgreSQL (usable con pool o tx).
type OrgRepo struct {
	q Querier
}

// NewOrgRepository construye el adaptador de persistencia para organizaciones.
func NewOrgRepository(q Querier) *OrgRepo {
	return &OrgRepo{q: q}
}

const orgColumns = `id, name, owner_id, logo_url, domain, plan, timezone, locale, created_at, updated_at`

// Create persiste una nueva organización.
func (r *OrgRepo) Create(ctx context.Context, org *entity.Org) error {
	query := `INSERT INTO orgs (` + orgColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		org.ID, org.Name, org.OwnerID, org.LogoURL, org.Domain, org.Plan,
		org.Timezone, org.Locale, org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert org: %w", mapError(err, domain.ErrNotFound))
	}
	return nil
}

// GetByID obtiene una organización por ID; domain.ErrNotFound si no existe.
func (r *OrgRepo) GetByID(ctx context.Context, id string) (*entity.Org, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	var o entity.Org
	err := r.q.QueryRow(ctx, `SELECT `+orgColumns+` FROM orgs WHERE id = $1`, id).Scan(
		&o.ID, &o.Name, &o.OwnerID, &o.LogoURL, &o.Domain, &o.Plan,
		&o.Timezone, &o.Locale, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, domain.ErrNotFound)
	}
	return &o, nil
}

// Update actualiza los datos editables de la organización.
func (r *OrgRepo) Update(ctx context.Context, org *entity.Org) error {
	query := `
		UPDATE orgs SET name = $2, owner_id = $3, logo_url = $4, domain = $5, plan = $6,
			timezone = $7, locale = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		org.ID, org.Name, org.OwnerID, org.LogoURL, org.Domain, org.Plan,
		org.Timezone, org.Locale, org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update org: %w", mapError(err, domain.ErrNotFound))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
