package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0.00", money(decimal.Zero))
	assert.Equal(t, "$999.90", money(decimal.RequireFromString("999.9")))
	assert.Equal(t, "$1,234,567.50", money(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "-$25,000.00", money(decimal.NewFromInt(-25000)))
}

func TestRender(t *testing.T) {
	doc := &entity.SalesDoc{
		DocType: entity.DocQuote,
		Account: "Acme",
		Items: []entity.LineItem{
			{Name: "Licencia", Qty: decimal.NewFromInt(2), Price: decimal.NewFromInt(150)},
		},
		TaxRate: decimal.NewFromInt(16),
		Notes:   "Válida por 30 días",
	}
	require.NoError(t, doc.Normalize(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	out, err := NewMarotoPDFGenerator().Render(&entity.Org{Name: "Acme CRM", Timezone: "UTC"}, doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
