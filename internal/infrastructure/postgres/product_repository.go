package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, org_id, created_by, sku, name, description, price, cost, stock, active, image_url,
	created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.OrgID, &p.CreatedBy, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Cost,
		&p.Stock, &p.Active, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. SKU repetido en la org -> domain.ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.OrgID, product.CreatedBy, product.SKU, product.Name, product.Description,
		product.Price, product.Cost, product.Stock, product.Active, product.ImageURL,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", mapError(err, domain.ErrNotFound))
	}
	return nil
}

// GetByID obtiene un producto de la org.
func (r *ProductRepo) GetByID(ctx context.Context, orgID, id string) (*entity.Product, error) {
	if !validID(orgID) || !validID(id) {
		return nil, domain.ErrNotFound
	}
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE org_id = $1 AND id = $2`, orgID, id))
	if err != nil {
		return nil, mapError(err, domain.ErrNotFound)
	}
	return p, nil
}

// Update actualiza un producto existente.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET sku = $3, name = $4, description = $5, price = $6, cost = $7, stock = $8,
			active = $9, image_url = $10, updated_at = $11
		WHERE org_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		product.OrgID, product.ID, product.SKU, product.Name, product.Description, product.Price,
		product.Cost, product.Stock, product.Active, product.ImageURL, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", mapError(err, domain.ErrNotFound))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos de la org con búsqueda y paginación, más recientes primero.
func (r *ProductRepo) List(ctx context.Context, orgID, search string, limit, offset int) ([]*entity.Product, int, error) {
	list := []*entity.Product{}
	if !validID(orgID) {
		return list, 0, nil
	}
	w := &Where{}
	w.Add("org_id = ?", orgID)
	if s := strings.TrimSpace(search); s != "" {
		like := likePattern(s)
		w.Add("(name ILIKE ? OR sku ILIKE ? OR description ILIKE ?)", like, like, like)
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`+w.SQL(), w.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	query := `SELECT ` + productColumns + ` FROM products` + w.SQL() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + w.Arg(limit) + ` OFFSET ` + w.Arg(offset)
	rows, err := r.q.Query(ctx, query, w.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// Delete elimina un producto de la org; domain.ErrNotFound si no existe.
func (r *ProductRepo) Delete(ctx context.Context, orgID, id string) error {
	if !validID(orgID) || !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
