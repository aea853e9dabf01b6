package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// DocRenderer genera el PDF de un documento comercial.
type DocRenderer interface {
	Render(org *entity.Org, doc *entity.SalesDoc) ([]byte, error)
}

// InvoiceExporter genera el XML de una factura y el digest de su forma canónica.
type InvoiceExporter interface {
	Export(org *entity.Org, doc *entity.SalesDoc) (xml []byte, digest string, err error)
}

// SalesDocUseCase cotizaciones, facturas u órdenes de venta (un caso de uso por tipo).
type SalesDocUseCase struct {
	*ScopedUseCase[*entity.SalesDoc]
	docType  string
	orgs     repository.OrgRepository
	renderer DocRenderer
	exporter InvoiceExporter
}

// NewSalesDocUseCase construye el caso de uso de docType (entity.DocQuote, DocInvoice o DocSalesOrder).
// renderer y exporter pueden ser nil.
func NewSalesDocUseCase(docType string, repo repository.ScopedRepository[*entity.SalesDoc], orgs repository.OrgRepository,
	renderer DocRenderer, exporter InvoiceExporter, audit Auditor) *SalesDocUseCase {
	res := Resource[*entity.SalesDoc]{
		Kind:     kindOf(docType),
		New:      func() *entity.SalesDoc { return &entity.SalesDoc{DocType: docType} },
		Dates:    []string{"date"},
		Decimals: []string{"taxRate"},
		Rewrite:  func(raw map[string]any) { delete(raw, "docType") },
		Label:    func(d *entity.SalesDoc) string { return d.Number },
		Prepare: func(_ context.Context, d *entity.SalesDoc, now time.Time) error {
			d.DocType = docType
			return d.Normalize(now)
		},
	}
	return &SalesDocUseCase{
		ScopedUseCase: NewScopedUseCase(repo, res, audit),
		docType:       docType,
		orgs:          orgs,
		renderer:      renderer,
		exporter:      exporter,
	}
}

func kindOf(docType string) string {
	switch docType {
	case entity.DocInvoice:
		return "invoice"
	case entity.DocSalesOrder:
		return "salesorder"
	}
	return "quote"
}

// DocType tipo de documento que maneja.
func (uc *SalesDocUseCase) DocType() string { return uc.docType }

// Stats total visible y creados en los últimos 7 días.
func (uc *SalesDocUseCase) Stats(ctx context.Context, p acl.Principal) (*dto.DocStatsDTO, error) {
	q := repository.ListQuery{Scope: acl.ReadScope(p)}
	total, err := uc.repo.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	q.Filters = map[string]string{"createdFrom": uc.now().UTC().AddDate(0, 0, -7).Format(time.RFC3339)}
	last, err := uc.repo.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	return &dto.DocStatsDTO{Total: total, Last7d: last}, nil
}

func (uc *SalesDocUseCase) withOrg(ctx context.Context, p acl.Principal, id string) (*entity.Org, *entity.SalesDoc, error) {
	doc, err := uc.Get(ctx, p, id)
	if err != nil {
		return nil, nil, err
	}
	org, err := uc.orgs.GetByID(ctx, p.OrgID)
	if err != nil {
		return nil, nil, err
	}
	return org, doc, nil
}

// PDF documento imprimible.
func (uc *SalesDocUseCase) PDF(ctx context.Context, p acl.Principal, id string) ([]byte, *entity.SalesDoc, error) {
	if uc.renderer == nil {
		return nil, nil, domain.ErrNotFound
	}
	org, doc, err := uc.withOrg(ctx, p, id)
	if err != nil {
		return nil, nil, err
	}
	b, err := uc.renderer.Render(org, doc)
	return b, doc, err
}

// XML exportación de una factura con su digest.
func (uc *SalesDocUseCase) XML(ctx context.Context, p acl.Principal, id string) ([]byte, string, error) {
	if uc.exporter == nil || uc.docType != entity.DocInvoice {
		return nil, "", domain.ErrNotFound
	}
	org, doc, err := uc.withOrg(ctx, p, id)
	if err != nil {
		return nil, "", err
	}
	return uc.exporter.Export(org, doc)
}
