package repository

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los productos son de la org, sin ACL por registro.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, orgID, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// List filtra por nombre/SKU/descripción (search vacío = todos) y devuelve el total sin paginar.
	List(ctx context.Context, orgID, search string, limit, offset int) ([]*entity.Product, int, error)
	Delete(ctx context.Context, orgID, id string) error
}
