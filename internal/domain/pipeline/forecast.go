package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// StageAmount monto acumulado por clave de etapa.
type StageAmount struct {
	Stage  string          `json:"stage"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthAmount monto acumulado por mes "YYYY-MM".
type MonthAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// Totals totales del pronóstico.
type Totals struct {
	Pipeline decimal.Decimal `json:"pipeline"`
	Weighted decimal.Decimal `json:"weighted"`
	Won      decimal.Decimal `json:"won"`
	Lost     decimal.Decimal `json:"lost"`
	Count    int             `json:"count"`
}

// Forecast resumen de deals por etapa y por mes.
type Forecast struct {
	Pipeline []StageAmount `json:"pipeline"`
	Monthly  []MonthAmount `json:"monthly"`
	Totals   Totals        `json:"totals"`
}

// Summarize agrupa los deals por etapa (clave) y por mes de cierre (o de creación)
// y pondera el monto con la probabilidad de la etapa en stages.
func Summarize(deals []*entity.Deal, stages []entity.Stage) Forecast {
	prob := make(map[string]decimal.Decimal, len(stages))
	for _, s := range stages {
		prob[s.Key] = decimal.NewFromFloat(s.Probability)
	}

	byStage := map[string]decimal.Decimal{}
	byMonth := map[string]decimal.Decimal{}
	t := Totals{Pipeline: decimal.Zero, Weighted: decimal.Zero, Won: decimal.Zero, Lost: decimal.Zero}

	for _, d := range deals {
		key := Slug(d.Stage)
		if key == "" {
			key = "qualification"
		}
		amount := d.Amount

		t.Pipeline = t.Pipeline.Add(amount)
		t.Weighted = t.Weighted.Add(amount.Mul(prob[key]))
		switch key {
		case KeyClosedWon:
			t.Won = t.Won.Add(amount)
		case KeyClosedLost:
			t.Lost = t.Lost.Add(amount)
		}
		byStage[key] = byStage[key].Add(amount)

		month := d.CreatedAt.Format("2006-01")
		if d.CloseDate != nil && !d.CloseDate.IsZero() {
			month = d.CloseDate.Format("2006-01")
		}
		byMonth[month] = byMonth[month].Add(amount)
	}
	t.Count = len(deals)

	f := Forecast{Pipeline: []StageAmount{}, Monthly: []MonthAmount{}, Totals: t}
	for k, v := range byStage {
		f.Pipeline = append(f.Pipeline, StageAmount{Stage: k, Amount: v})
	}
	for k, v := range byMonth {
		f.Monthly = append(f.Monthly, MonthAmount{Month: k, Amount: v})
	}
	sort.Slice(f.Pipeline, func(i, j int) bool { return f.Pipeline[i].Stage < f.Pipeline[j].Stage })
	sort.Slice(f.Monthly, func(i, j int) bool { return f.Monthly[i].Month < f.Monthly[j].Month })
	return f
}
