// Package importer lee archivos CSV y XLSX como filas encabezado → valor.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain"
)

// MaxRows filas de datos aceptadas por archivo.
const MaxRows = 10000

// Reader implementa usecase.SheetReader.
type Reader struct{}

var _ usecase.SheetReader = Reader{}

// Read decide el formato por la extensión; .xls no está soportado.
func (Reader) Read(filename string, r io.Reader) ([]map[string]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", "":
		return readCSV(r)
	case ".xlsx", ".xlsm":
		return readXLSX(r)
	}
	return nil, domain.Invalid("file", "formato no soportado: use CSV o XLSX")
}

// decode UTF-8 (con o sin BOM) se deja igual; cualquier otra cosa se trata como Windows-1252.
func decode(raw []byte) io.Reader {
	if utf8.Valid(raw) {
		return transform.NewReader(bytes.NewReader(raw), unicode.BOMOverride(transform.Nop))
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.Windows1252.NewDecoder())
}

func readCSV(r io.Reader) ([]map[string]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("importer: leer archivo: %w", err)
	}
	cr := csv.NewReader(decode(raw))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	if sep := sniffComma(raw); sep != ',' {
		cr.Comma = sep
	}
	records, err := cr.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, domain.Invalid("file", fmt.Sprintf("CSV inválido en línea %d", perr.Line))
		}
		return nil, fmt.Errorf("importer: leer CSV: %w", err)
	}
	return toRows(records)
}

// sniffComma ';' si la primera línea tiene más ';' que ','.
func sniffComma(raw []byte) rune {
	first, _, _ := bytes.Cut(raw, []byte("\n"))
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}

// readXLSX lee la primera hoja.
func readXLSX(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.Invalid("file", "XLSX inválido")
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []map[string]string{}, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("importer: leer hoja %q: %w", sheets[0], err)
	}
	return toRows(records)
}

// toRows usa la primera fila como encabezados; columnas sin encabezado se ignoran.
func toRows(records [][]string) ([]map[string]string, error) {
	if len(records) == 0 {
		return []map[string]string{}, nil
	}
	if len(records)-1 > MaxRows {
		return nil, domain.Invalid("file", fmt.Sprintf("máximo %d filas", MaxRows))
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, v := range rec {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			if v = strings.TrimSpace(v); v != "" {
				row[headers[i]] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
