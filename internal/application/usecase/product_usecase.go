package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// ProductUseCase catálogo de productos de la org. SKU único por org.
type ProductUseCase struct {
	repo  repository.ProductRepository
	audit Auditor
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, audit Auditor) *ProductUseCase {
	return &ProductUseCase{repo: repo, audit: audit}
}

// Create crea un nuevo producto. Devuelve domain.ErrDuplicate si el SKU ya existe en la org.
func (uc *ProductUseCase) Create(ctx context.Context, p acl.Principal, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !acl.CanMutate(p) {
		return nil, domain.ErrForbidden
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:          uuid.New().String(),
		OrgID:       p.OrgID,
		CreatedBy:   p.UserID,
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Cost:        in.Cost,
		Stock:       in.Stock,
		Active:      in.Active == nil || *in.Active,
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, skuConflict(err)
	}
	uc.record(ctx, p, "product.created", product)
	return toProductResponse(product), nil
}

// GetByID obtiene un producto de la org.
func (uc *ProductUseCase) GetByID(ctx context.Context, p acl.Principal, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, p.OrgID, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza los campos enviados.
func (uc *ProductUseCase) Update(ctx context.Context, p acl.Principal, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if !acl.CanMutate(p) {
		return nil, domain.ErrForbidden
	}
	product, err := uc.repo.GetByID(ctx, p.OrgID, id)
	if err != nil {
		return nil, err
	}
	if in.SKU != nil {
		product.SKU = *in.SKU
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Cost != nil {
		product.Cost = *in.Cost
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, skuConflict(err)
	}
	uc.record(ctx, p, "product.updated", product)
	return toProductResponse(product), nil
}

// List lista productos de la org con búsqueda y paginación.
func (uc *ProductUseCase) List(ctx context.Context, p acl.Principal, params dto.ListParams) (*dto.ListResponse[dto.ProductResponse], error) {
	params.Normalize()
	list, total, err := uc.repo.List(ctx, p.OrgID, strings.TrimSpace(params.Search), params.Limit, (params.Page-1)*params.Limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, pr := range list {
		items = append(items, *toProductResponse(pr))
	}
	return dto.NewListResponse(items, total, params.Page, params.Limit), nil
}

// Delete elimina un producto; domain.ErrNotFound si no existe en la org.
func (uc *ProductUseCase) Delete(ctx context.Context, p acl.Principal, id string) error {
	if !acl.CanMutate(p) {
		return domain.ErrForbidden
	}
	if err := uc.repo.Delete(ctx, p.OrgID, id); err != nil {
		return err
	}
	if uc.audit != nil {
		uc.audit.Record(ctx, p, "product.deleted", "product:"+id, nil)
	}
	return nil
}

func validateProduct(p *entity.Product) error {
	p.SKU = strings.TrimSpace(p.SKU)
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return domain.Invalid("name", "es requerido")
	case p.SKU == "":
		return domain.Invalid("sku", "es requerido")
	case p.Price.LessThan(decimal.Zero):
		return domain.Invalid("price", "debe ser >= 0")
	case p.Cost.LessThan(decimal.Zero):
		return domain.Invalid("cost", "debe ser >= 0")
	case p.Stock < 0:
		return domain.Invalid("stock", "debe ser >= 0")
	}
	return nil
}

func skuConflict(err error) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.Conflict("el SKU ya existe en la organización")
	}
	return err
}

func (uc *ProductUseCase) record(ctx context.Context, p acl.Principal, action string, pr *entity.Product) {
	if uc.audit != nil {
		uc.audit.Record(ctx, p, action, "product:"+pr.ID, map[string]any{"sku": pr.SKU})
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		OrgID:       p.OrgID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Cost:        p.Cost,
		Stock:       p.Stock,
		Active:      p.Active,
		ImageURL:    p.ImageURL,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
