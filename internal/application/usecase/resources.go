package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Recursos del CRM sobre ScopedUseCase. Cada uno declara alias legados y su normalización.

// NewLeadUseCase leads.
func NewLeadUseCase(repo repository.ScopedRepository[*entity.Lead], audit Auditor) *ScopedUseCase[*entity.Lead] {
	return NewScopedUseCase(repo, Resource[*entity.Lead]{
		Kind:    "lead",
		Module:  entity.ModuleLeads,
		New:     func() *entity.Lead { return &entity.Lead{} },
		Label:   func(l *entity.Lead) string { return l.Name },
		Prepare: func(_ context.Context, l *entity.Lead, _ time.Time) error { return l.Normalize() },
	}, audit)
}

// NewContactUseCase contactos.
func NewContactUseCase(repo repository.ScopedRepository[*entity.Contact], audit Auditor) *ScopedUseCase[*entity.Contact] {
	return NewScopedUseCase(repo, Resource[*entity.Contact]{
		Kind:    "contact",
		Module:  entity.ModuleContacts,
		New:     func() *entity.Contact { return &entity.Contact{} },
		Label:   func(c *entity.Contact) string { return c.FullName() },
		Prepare: func(_ context.Context, c *entity.Contact, _ time.Time) error { return c.Normalize() },
	}, audit)
}

// NewAccountUseCase cuentas.
func NewAccountUseCase(repo repository.ScopedRepository[*entity.Account], audit Auditor) *ScopedUseCase[*entity.Account] {
	return NewScopedUseCase(repo, Resource[*entity.Account]{
		Kind:    "account",
		Module:  entity.ModuleAccounts,
		New:     func() *entity.Account { return &entity.Account{} },
		Label:   func(a *entity.Account) string { return a.Name },
		Prepare: func(_ context.Context, a *entity.Account, _ time.Time) error { return a.Normalize() },
	}, audit)
}

// NewDealUseCase deals; la etapa se valida contra el pipeline de la org.
func NewDealUseCase(repo repository.ScopedRepository[*entity.Deal], pipelines *PipelineUseCase, audit Auditor) *ScopedUseCase[*entity.Deal] {
	pipelines.SetDeals(repo)
	return NewScopedUseCase(repo, dealResource(pipelines), audit)
}

// NewTaskUseCase tareas (acepta subject como título).
func NewTaskUseCase(repo repository.ScopedRepository[*entity.Task], audit Auditor) *ScopedUseCase[*entity.Task] {
	return NewScopedUseCase(repo, Resource[*entity.Task]{
		Kind:    "task",
		Module:  entity.ModuleActivities,
		New:     func() *entity.Task { return &entity.Task{} },
		Aliases: map[string]string{"subject": "title"},
		Dates:   []string{"dueDate"},
		Label:   func(t *entity.Task) string { return t.Title },
		Prepare: func(_ context.Context, t *entity.Task, _ time.Time) error { return t.Normalize() },
	}, audit)
}

// NewCallUseCase llamadas.
func NewCallUseCase(repo repository.ScopedRepository[*entity.Call], audit Auditor) *ScopedUseCase[*entity.Call] {
	return NewScopedUseCase(repo, Resource[*entity.Call]{
		Kind:    "call",
		Module:  entity.ModuleActivities,
		New:     func() *entity.Call { return &entity.Call{} },
		Dates:   []string{"callDate"},
		Label:   func(c *entity.Call) string { return c.Subject },
		Prepare: func(_ context.Context, c *entity.Call, now time.Time) error { return c.Normalize(now) },
	}, audit)
}

// NewCampaignUseCase campañas (type, startAt y endAt son los nombres legados).
func NewCampaignUseCase(repo repository.ScopedRepository[*entity.Campaign], audit Auditor) *ScopedUseCase[*entity.Campaign] {
	return NewScopedUseCase(repo, Resource[*entity.Campaign]{
		Kind:     "campaign",
		Module:   entity.ModuleCampaigns,
		New:      func() *entity.Campaign { return &entity.Campaign{} },
		Aliases:  map[string]string{"type": "channel", "startAt": "startDate", "endAt": "endDate"},
		Dates:    []string{"startDate", "endDate"},
		Decimals: []string{"budget", "actualCost"},
		Label:    func(c *entity.Campaign) string { return c.Name },
		Prepare:  func(_ context.Context, c *entity.Campaign, _ time.Time) error { return c.Normalize() },
	}, audit)
}

// NewDocumentUseCase metadatos de archivos subidos.
func NewDocumentUseCase(repo repository.ScopedRepository[*entity.Document], audit Auditor) *ScopedUseCase[*entity.Document] {
	return NewScopedUseCase(repo, Resource[*entity.Document]{
		Kind:    "document",
		Module:  entity.ModuleDocuments,
		New:     func() *entity.Document { return &entity.Document{} },
		Label:   func(d *entity.Document) string { return d.Title },
		Prepare: func(_ context.Context, d *entity.Document, _ time.Time) error { return d.Normalize() },
	}, audit)
}
