package repository

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// OrgRepository define el puerto de persistencia para Org (DIP).
// La implementación vive en infrastructure.
type OrgRepository interface {
	Create(ctx context.Context, org *entity.Org) error
	GetByID(ctx context.Context, id string) (*entity.Org, error)
	Update(ctx context.Context, org *entity.Org) error
}
