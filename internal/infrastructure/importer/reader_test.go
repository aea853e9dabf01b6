package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/crm-api/internal/domain"
)

func TestRead_CSVConBOM(t *testing.T) {
	data := "\xef\xbb\xbfName,Email\nAna,ana@x.com\n,\n"
	rows, err := Reader{}.Read("leads.csv", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ana", rows[0]["Name"], "el BOM no ensucia el primer encabezado")
	assert.Empty(t, rows[1], "celdas vacías no se incluyen")
}

func TestRead_CSVWindows1252(t *testing.T) {
	data := []byte("Name;City\nJos\xe9;Bogot\xe1\n")
	rows, err := Reader{}.Read("x.CSV", bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "José", rows[0]["Name"])
	assert.Equal(t, "Bogotá", rows[0]["City"])
}

func TestRead_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Title", "Amount"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Renovación", 2500}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Reader{}.Read("deals.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Renovación", rows[0]["Title"])
	assert.Equal(t, "2500", rows[0]["Amount"])
}

func TestRead_FormatoNoSoportado(t *testing.T) {
	_, err := Reader{}.Read("viejo.xls", strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Reader{}.Read("roto.xlsx", strings.NewReader("no es zip"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
