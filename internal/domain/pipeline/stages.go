// Package pipeline contiene las etapas de venta por org y el pronóstico de deals.
package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// Claves de las etapas cerradas.
const (
	KeyClosedWon  = "closed_won"
	KeyClosedLost = "closed_lost"
)

// DefaultStages pipeline usado mientras la org no guarde uno propio.
func DefaultStages() []entity.Stage {
	return []entity.Stage{
		{Key: "qualification", Name: "Qualification", Probability: 0.10, Order: 0},
		{Key: "needs_analysis", Name: "Needs Analysis", Probability: 0.30, Order: 1},
		{Key: "proposal", Name: "Proposal", Probability: 0.60, Order: 2},
		{Key: "negotiation", Name: "Negotiation", Probability: 0.80, Order: 3},
		{Key: KeyClosedWon, Name: "Closed Won", Probability: 1.00, Order: 4},
		{Key: KeyClosedLost, Name: "Closed Lost", Probability: 0.00, Order: 5},
	}
}

// Probabilidad inicial de un deal según la etiqueta de su etapa.
var dealProbability = map[string]float64{
	"Qualification":  0.2,
	"Needs Analysis": 0.35,
	"Proposal":       0.55,
	"Negotiation":    0.75,
	"Closed Won":     1,
	"Closed Lost":    0,
}

const fallbackProbability = 0.3

var reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug "Needs Analysis" -> "needs_analysis".
func Slug(s string) string {
	s = reNonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
	return strings.Trim(s, "_")
}

// StageInput etapa recibida al reemplazar el pipeline; Name o Key pueden venir vacíos.
type StageInput struct {
	Key         string
	Name        string
	Probability *float64
	Order       *int
}

// Normalize convierte las etapas recibidas: clave = slug(key o name), descarta vacías y duplicadas,
// acota la probabilidad a [0,1] y usa el índice como orden por defecto.
func Normalize(in []StageInput) ([]entity.Stage, error) {
	if len(in) == 0 {
		return nil, domain.Invalid("stages", "se requiere al menos una etapa")
	}
	out := make([]entity.Stage, 0, len(in))
	used := make(map[string]bool, len(in))
	for idx, s := range in {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = strings.TrimSpace(s.Key)
		}
		key := Slug(s.Key)
		if key == "" {
			key = Slug(name)
		}
		if name == "" || key == "" || used[key] {
			continue
		}
		used[key] = true
		st := entity.Stage{Key: key, Name: name, Order: idx}
		if s.Probability != nil {
			st.Probability = min(1, max(0, *s.Probability))
		}
		if s.Order != nil {
			st.Order = *s.Order
		}
		out = append(out, st)
	}
	if len(out) == 0 {
		return nil, domain.Invalid("stages", "ninguna etapa válida")
	}
	return out, nil
}

// Sorted copia de las etapas ordenadas por Order.
func Sorted(stages []entity.Stage) []entity.Stage {
	out := append([]entity.Stage(nil), stages...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Board etapas efectivas de una org: las guardadas o las por defecto, ordenadas.
func Board(p *entity.Pipeline) []entity.Stage {
	if p == nil || len(p.Stages) == 0 {
		return DefaultStages()
	}
	return Sorted(p.Stages)
}

// ResolveStage acepta la etapa como clave o etiqueta y devuelve la etiqueta.
// Vacío devuelve la primera etapa; desconocida es error de validación.
func ResolveStage(stages []entity.Stage, v string) (string, error) {
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return stages[0].Name, nil
	}
	key := Slug(v)
	for _, s := range stages {
		if strings.EqualFold(s.Name, v) || s.Key == key {
			return s.Name, nil
		}
	}
	return "", domain.Invalid("stage", "etapa desconocida: "+v)
}

// DefaultProbability probabilidad inicial de un deal en la etapa label.
func DefaultProbability(stages []entity.Stage, label string) float64 {
	if p, ok := dealProbability[label]; ok {
		return p
	}
	for _, s := range stages {
		if s.Name == label {
			return s.Probability
		}
	}
	return fallbackProbability
}
