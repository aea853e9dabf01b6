package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/pipeline"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// PipelineUseCase etapas de venta por org y pronóstico.
type PipelineUseCase struct {
	repo  repository.PipelineRepository
	deals repository.ScopedRepository[*entity.Deal]
	audit Auditor
}

// NewPipelineUseCase construye el caso de uso. deals puede ser nil hasta SetDeals.
func NewPipelineUseCase(repo repository.PipelineRepository, audit Auditor) *PipelineUseCase {
	return &PipelineUseCase{repo: repo, audit: audit}
}

// SetDeals conecta el repositorio de deals (se crea después porque el deal depende del pipeline).
func (uc *PipelineUseCase) SetDeals(deals repository.ScopedRepository[*entity.Deal]) {
	uc.deals = deals
}

// Get pipeline guardado o el de fábrica (no persistido).
func (uc *PipelineUseCase) Get(ctx context.Context, orgID string) (*entity.Pipeline, error) {
	p, err := uc.repo.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if p == nil || len(p.Stages) == 0 {
		return &entity.Pipeline{OrgID: orgID, Stages: pipeline.DefaultStages()}, nil
	}
	p.Stages = pipeline.Sorted(p.Stages)
	return p, nil
}

// Stages etapas efectivas de la org.
func (uc *PipelineUseCase) Stages(ctx context.Context, orgID string) ([]entity.Stage, error) {
	p, err := uc.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return p.Stages, nil
}

// Labels clave y etiqueta de cada etapa (GET /deals/stages).
func (uc *PipelineUseCase) Labels(ctx context.Context, orgID string) ([]dto.StageLabel, error) {
	stages, err := uc.Stages(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StageLabel, 0, len(stages))
	for _, s := range stages {
		out = append(out, dto.StageLabel{Key: s.Key, Name: s.Name})
	}
	return out, nil
}

// stageInput acepta "Nombre" o {"key","name","probability","order"}.
type stageInput pipeline.StageInput

func (s *stageInput) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*s = stageInput{Name: name}
		return nil
	}
	var obj struct {
		Key         string   `json:"key"`
		Name        string   `json:"name"`
		Probability *float64 `json:"probability"`
		Order       *int     `json:"order"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*s = stageInput{Key: obj.Key, Name: obj.Name, Probability: obj.Probability, Order: obj.Order}
	return nil
}

// Replace reemplaza las etapas de la org (admin o manager). body: {"stages": [...]}.
func (uc *PipelineUseCase) Replace(ctx context.Context, p acl.Principal, body []byte) (*entity.Pipeline, error) {
	if p.Role != entity.RoleAdmin && p.Role != entity.RoleManager {
		return nil, domain.ErrForbidden
	}
	var req struct {
		Stages []stageInput `json:"stages"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, domain.Invalid("stages", "debe ser una lista de etapas")
	}
	in := make([]pipeline.StageInput, len(req.Stages))
	for i, s := range req.Stages {
		in[i] = pipeline.StageInput(s)
	}
	stages, err := pipeline.Normalize(in)
	if err != nil {
		return nil, err
	}
	pl := &entity.Pipeline{OrgID: p.OrgID, Stages: stages, UpdatedBy: p.UserID, UpdatedAt: time.Now().UTC()}
	if err := uc.repo.Save(ctx, pl); err != nil {
		return nil, err
	}
	if uc.audit != nil {
		uc.audit.Record(ctx, p, "pipeline.updated", "pipeline:"+p.OrgID, map[string]any{"stages": len(stages)})
	}
	return pl, nil
}

// Forecast resumen de deals de la org; un no-admin sólo ve los propios.
func (uc *PipelineUseCase) Forecast(ctx context.Context, p acl.Principal) (*pipeline.Forecast, error) {
	stages, err := uc.Stages(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	q := repository.ListQuery{Scope: acl.Scope{OrgID: p.OrgID, UserID: p.UserID, All: true}}
	if !acl.IsAdmin(p) {
		q.Filters = map[string]string{"ownerId": p.UserID}
	}
	deals, _, err := uc.deals.List(ctx, q)
	if err != nil {
		return nil, err
	}
	f := pipeline.Summarize(deals, stages)
	return &f, nil
}

// dealResource deal con etapa y probabilidad resueltas contra el pipeline de la org.
func dealResource(pipelines *PipelineUseCase) Resource[*entity.Deal] {
	return Resource[*entity.Deal]{
		Kind:     "deal",
		Module:   entity.ModuleDeals,
		New:      func() *entity.Deal { return &entity.Deal{} },
		Dates:    []string{"closeDate"},
		Decimals: []string{"amount"},
		Label:    func(d *entity.Deal) string { return d.Name },
		Prepare: func(ctx context.Context, d *entity.Deal, _ time.Time) error {
			if err := d.Normalize(); err != nil {
				return err
			}
			stages, err := pipelines.Stages(ctx, d.OrgID)
			if err != nil {
				return err
			}
			if d.Stage, err = pipeline.ResolveStage(stages, d.Stage); err != nil {
				return err
			}
			if d.Probability == nil {
				prob := pipeline.DefaultProbability(stages, d.Stage)
				d.Probability = &prob
			}
			return nil
		},
	}
}
