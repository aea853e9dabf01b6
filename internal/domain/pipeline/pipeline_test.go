package pipeline_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/pipeline"
)

func ptrF(f float64) *float64 { return &f }

func TestSlug(t *testing.T) {
	assert.Equal(t, "needs_analysis", pipeline.Slug("Needs Analysis"))
	assert.Equal(t, "closed_won", pipeline.Slug("  Closed -- Won! "))
	assert.Equal(t, "", pipeline.Slug("***"))
}

func TestNormalize(t *testing.T) {
	out, err := pipeline.Normalize([]pipeline.StageInput{
		{Name: "Nuevo"},
		{Key: "Demo Agendada", Probability: ptrF(1.7)},
		{Name: "nuevo"}, // duplicado por clave
		{Name: "  "},
		{Name: "Perdido", Probability: ptrF(-1)},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, entity.Stage{Key: "nuevo", Name: "Nuevo", Order: 0}, out[0])
	assert.Equal(t, "demo_agendada", out[1].Key)
	assert.Equal(t, "Demo Agendada", out[1].Name)
	assert.Equal(t, 1.0, out[1].Probability)
	assert.Equal(t, 0.0, out[2].Probability)
	assert.Equal(t, 4, out[2].Order, "orden por defecto es el índice original")
}

func TestNormalize_Errores(t *testing.T) {
	_, err := pipeline.Normalize(nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = pipeline.Normalize([]pipeline.StageInput{{Name: ""}, {Key: "!!"}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestResolveStage(t *testing.T) {
	stages := pipeline.DefaultStages()

	label, err := pipeline.ResolveStage(stages, "")
	require.NoError(t, err)
	assert.Equal(t, "Qualification", label)

	label, err = pipeline.ResolveStage(stages, "needs_analysis")
	require.NoError(t, err)
	assert.Equal(t, "Needs Analysis", label)

	label, err = pipeline.ResolveStage(stages, "closed won")
	require.NoError(t, err)
	assert.Equal(t, "Closed Won", label)

	_, err = pipeline.ResolveStage(stages, "Inventada")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestDefaultProbability(t *testing.T) {
	stages := []entity.Stage{{Key: "demo", Name: "Demo", Probability: 0.45}}
	assert.Equal(t, 0.35, pipeline.DefaultProbability(stages, "Needs Analysis"))
	assert.Equal(t, 0.45, pipeline.DefaultProbability(stages, "Demo"))
	assert.Equal(t, 0.3, pipeline.DefaultProbability(stages, "Otra"))
}

func TestBoard_OrdenaYUsaDefault(t *testing.T) {
	assert.Len(t, pipeline.Board(nil), 6)

	p := &entity.Pipeline{Stages: []entity.Stage{{Key: "b", Name: "B", Order: 2}, {Key: "a", Name: "A", Order: 1}}}
	board := pipeline.Board(p)
	assert.Equal(t, "a", board[0].Key)
	assert.Equal(t, "b", p.Stages[0].Key, "no modifica el original")
}

func TestSummarize(t *testing.T) {
	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	deal := func(stage string, amount int64, created time.Time, closeAt *time.Time) *entity.Deal {
		d := &entity.Deal{Stage: stage, Amount: decimal.NewFromInt(amount), CloseDate: closeAt}
		d.CreatedAt = created
		return d
	}

	f := pipeline.Summarize([]*entity.Deal{
		deal("Proposal", 1000, jan, nil),
		deal("Closed Won", 500, jan, &mar),
		deal("Closed Lost", 200, mar, nil),
		deal("Proposal", 300, mar, nil),
	}, pipeline.DefaultStages())

	assert.Equal(t, 4, f.Totals.Count)
	assert.True(t, decimal.NewFromInt(2000).Equal(f.Totals.Pipeline))
	assert.True(t, decimal.NewFromInt(500).Equal(f.Totals.Won))
	assert.True(t, decimal.NewFromInt(200).Equal(f.Totals.Lost))
	// 1300*0.6 + 500*1 + 200*0
	assert.True(t, decimal.NewFromInt(1280).Equal(f.Totals.Weighted), f.Totals.Weighted.String())

	require.Len(t, f.Pipeline, 3)
	assert.Equal(t, "closed_lost", f.Pipeline[0].Stage)
	assert.Equal(t, "proposal", f.Pipeline[2].Stage)
	assert.True(t, decimal.NewFromInt(1300).Equal(f.Pipeline[2].Amount))

	require.Len(t, f.Monthly, 2)
	assert.Equal(t, "2026-01", f.Monthly[0].Month)
	assert.True(t, decimal.NewFromInt(1000).Equal(f.Monthly[0].Amount))
	assert.Equal(t, "2026-03", f.Monthly[1].Month)
	assert.True(t, decimal.NewFromInt(1000).Equal(f.Monthly[1].Amount))
}

func TestSummarize_Vacio(t *testing.T) {
	f := pipeline.Summarize(nil, pipeline.DefaultStages())
	assert.NotNil(t, f.Pipeline)
	assert.NotNil(t, f.Monthly)
	assert.Equal(t, 0, f.Totals.Count)
	assert.True(t, f.Totals.Pipeline.IsZero())
}
