package usecase_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/pkg/logger"
)

// rowsReader devuelve filas fijas sin leer el archivo.
type rowsReader []map[string]string

func (r rowsReader) Read(string, io.Reader) ([]map[string]string, error) { return r, nil }

func newImport(e *env, rows rowsReader) *usecase.ImportUseCase {
	return usecase.NewImportUseCase(rows, e.leads, e.contacts, e.accounts, e.deals, e.tasks, logger.Nop())
}

func TestImport_LeadsConEncabezadosAlternativos(t *testing.T) {
	e := newEnv(t)
	uc := newImport(e, rowsReader{
		{"Full Name": "Ana Gómez", "Email": "ANA@x.com"},
		{"Lead Name": "Luis", "Status": "Contacted"},
		{"Name": "Malo", "Status": "Perdido"},
		{"Otro": "sin datos"},
	})

	resp, err := uc.Import(e.ctx, userA, "Leads", "leads.csv", strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 2, resp.Skipped, "estado inválido y fila vacía")

	page, err := e.leads.List(e.ctx, userA, dto.ListParams{Search: "ana"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ana@x.com", page.Items[0].Email)
	assert.Equal(t, userA.UserID, page.Items[0].OwnerID)
}

func TestImport_ContactosDividenNombre(t *testing.T) {
	e := newEnv(t)
	uc := newImport(e, rowsReader{{"Contact Name": "María José Pérez", "Email": "mj@x.com"}})

	resp, err := uc.Import(e.ctx, userA, "contacts", "c.xlsx", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)

	page, err := e.contacts.List(e.ctx, userA, dto.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "María", page.Items[0].FirstName)
	assert.Equal(t, "José Pérez", page.Items[0].LastName)
}

func TestImport_DealsYActividades(t *testing.T) {
	e := newEnv(t)
	uc := newImport(e, rowsReader{{"Title": "Renovación", "Amount": "2,500", "Stage": "Negotiation"}})
	resp, err := uc.Import(e.ctx, userA, "deals", "d.csv", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)

	deals, err := e.deals.List(e.ctx, userA, dto.ListParams{})
	require.NoError(t, err)
	require.Len(t, deals.Items, 1)
	assert.Equal(t, "Renovación", deals.Items[0].Name)
	assert.Equal(t, "2500", deals.Items[0].Amount.String())

	uc = newImport(e, rowsReader{{"Subject": "Seguimiento", "Due": "2026-11-02"}})
	resp, err = uc.Import(e.ctx, userA, "activities", "a.csv", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)

	tasks, err := e.tasks.List(e.ctx, userA, dto.ListParams{})
	require.NoError(t, err)
	require.Len(t, tasks.Items, 1)
	assert.Equal(t, entity.TaskOpen, tasks.Items[0].Status)
	require.NotNil(t, tasks.Items[0].DueDate)
}

func TestImport_ModuloYPermisos(t *testing.T) {
	e := newEnv(t)
	uc := newImport(e, rowsReader{{"Name": "X"}})

	_, err := uc.Import(e.ctx, userA, "facturas", "x.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Import(e.ctx, readerA, "leads", "x.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	mod, ok := uc.Target("activities")
	assert.True(t, ok)
	assert.Equal(t, entity.ModuleActivities, mod)
}
