package ubl

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

func invoice(t *testing.T, price int64) *entity.SalesDoc {
	t.Helper()
	doc := &entity.SalesDoc{
		DocType: entity.DocInvoice,
		Number:  "INV-2026-ABC123",
		Account: "Globex",
		Date:    time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC),
		Items: []entity.LineItem{
			{ProductID: "p-1", Name: "Soporte", Qty: decimal.NewFromInt(3), Price: decimal.NewFromInt(price)},
		},
		TaxRate: decimal.NewFromInt(10),
	}
	require.NoError(t, doc.Normalize(time.Now()))
	return doc
}

func TestExport_Estructura(t *testing.T) {
	org := &entity.Org{Name: "Acme", Domain: "acme.com", Timezone: "UTC"}
	out, digest, err := NewExporter("").Export(org, invoice(t, 100))
	require.NoError(t, err)
	assert.NotEmpty(t, digest)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "Invoice", root.Tag)
	assert.Equal(t, "INV-2026-ABC123", root.FindElement("cbc:ID").Text())
	assert.Equal(t, "2026-05-04", root.FindElement("cbc:IssueDate").Text())
	assert.Equal(t, "USD", root.FindElement("cbc:DocumentCurrencyCode").Text())

	payable := root.FindElement("cac:LegalMonetaryTotal/cbc:PayableAmount")
	require.NotNil(t, payable)
	assert.Equal(t, "330.00", payable.Text())
	assert.Equal(t, "USD", payable.SelectAttrValue("currencyID", ""))

	lines := root.FindElements("cac:InvoiceLine")
	require.Len(t, lines, 1)
	assert.Equal(t, "Soporte", lines[0].FindElement("cac:Item/cbc:Name").Text())
	assert.Equal(t, "300.00", lines[0].FindElement("cbc:LineExtensionAmount").Text())
}

func TestExport_DigestDeterministico(t *testing.T) {
	org := &entity.Org{Name: "Acme", Timezone: "UTC"}
	e := NewExporter("cop")

	_, d1, err := e.Export(org, invoice(t, 100))
	require.NoError(t, err)
	_, d2, err := e.Export(org, invoice(t, 100))
	require.NoError(t, err)
	_, d3, err := e.Export(org, invoice(t, 101))
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.NotEqual(t, d1, d3)
	assert.Len(t, d1, 44, "sha256 en base64")
}

func TestDigest_IgnoraFormato(t *testing.T) {
	a, err := Digest([]byte(`<a x="1"  y="2"><b/></a>`))
	require.NoError(t, err)
	b, err := Digest([]byte(`<a y="2" x="1"><b></b></a>`))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
