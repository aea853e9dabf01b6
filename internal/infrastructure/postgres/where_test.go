package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhere_NumeraPlaceholders(t *testing.T) {
	var w Where
	w.Add("org_id = ?", "o1")
	w.Add("(owner_id = ? OR ? = ANY(assigned_to))", "u1", "u1")
	w.Add("visibility = 'org'")
	limit := w.Arg(25)

	assert.Equal(t, " WHERE org_id = $1 AND (owner_id = $2 OR $3 = ANY(assigned_to)) AND visibility = 'org'", w.SQL())
	assert.Equal(t, "$4", limit)
	assert.Equal(t, []any{"o1", "u1", "u1", 25}, w.Args())
}

func TestWhere_Vacio(t *testing.T) {
	var w Where
	assert.Equal(t, "", w.SQL())
	assert.Empty(t, w.Args())
}

func TestLikePattern_EscapaComodines(t *testing.T) {
	assert.Equal(t, `%50\% off\_x%`, likePattern("50% off_x"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}
