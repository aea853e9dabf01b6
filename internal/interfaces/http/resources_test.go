package http_test

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/pipeline"
	apphttp "github.com/jhoicas/crm-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// CRUD con ACL
// ──────────────────────────────────────────────────────────────────────────────

func TestLeads_CRUD(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")

	resp, raw := e.call(http.MethodPost, "/api/leads", admin, `{"firstName":"Ana","lastName":"López","email":"ANA@X.COM"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	lead := decode[entity.Lead](t, raw)
	assert.Equal(t, "Ana López", lead.Name)
	assert.Equal(t, "ana@x.com", lead.Email)
	assert.Equal(t, "New", lead.Status)

	resp, raw = e.call(http.MethodGet, "/api/leads?q=ana&limit=500", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[dto.ListResponse[entity.Lead]](t, raw)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 100, page.Limit, "limit acotado a 100")

	resp, raw = e.call(http.MethodPatch, "/api/leads/"+lead.ID, admin, `{"status":"Qualified"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "Qualified", decode[entity.Lead](t, raw).Status)

	resp, _ = e.call(http.MethodPatch, "/api/leads/"+lead.ID, admin, `{"status":"Perdido"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = e.call(http.MethodDelete, "/api/leads/"+lead.ID, admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(raw))

	resp, _ = e.call(http.MethodGet, "/api/leads/"+lead.ID, admin, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLeads_AislamientoYVisibilidad(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")
	bob := e.join(admin, "bob@acme.test", entity.RoleUser)
	other := e.signup("Zed", "zed@other.test")

	resp, raw := e.call(http.MethodPost, "/api/leads", admin, `{"name":"Privado","visibility":"private"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	private := decode[entity.Lead](t, raw)

	resp, _ = e.call(http.MethodGet, "/api/leads/"+private.ID, bob, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "no visible para otro usuario de la org")

	resp, _ = e.call(http.MethodGet, "/api/leads/"+private.ID, other, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "otra org no lo encuentra")

	resp, raw = e.call(http.MethodPost, "/api/leads", bob, `{"name":"De Bob","ownerId":"alguien"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	own := decode[entity.Lead](t, raw)
	assert.NotEqual(t, "alguien", own.OwnerID, "sólo admin fija el owner")

	resp, raw = e.call(http.MethodGet, "/api/leads", bob, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.ListResponse[entity.Lead]](t, raw).Total)

	resp, raw = e.call(http.MethodGet, "/api/leads", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[dto.ListResponse[entity.Lead]](t, raw).Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Política por rol
// ──────────────────────────────────────────────────────────────────────────────

func TestModulePolicy(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")
	bob := e.join(admin, "bob@acme.test", entity.RoleUser)

	resp, _ := e.call(http.MethodPost, "/api/contacts", bob, `{"firstName":"Carla"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "sin política guardada no se restringe")

	resp, raw := e.call(http.MethodPatch, "/api/roles/policy", admin, `{"permissionsByRole":{"user":{"Leads":"no"}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, raw = e.call(http.MethodGet, "/api/leads", bob, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(raw), "MODULE_DENIED")

	resp, _ = e.call(http.MethodGet, "/api/contacts", bob, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "user lee por defecto")

	resp, _ = e.call(http.MethodPost, "/api/contacts", bob, `{"firstName":"Dora"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "user no escribe por defecto")

	resp, _ = e.call(http.MethodGet, "/api/leads", admin, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "admin siempre pasa")

	resp, _ = e.call(http.MethodPatch, "/api/roles/policy", bob, `{}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reuniones
// ──────────────────────────────────────────────────────────────────────────────

func TestMeetings_ExtrasYRSVP(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")
	bob := e.join(admin, "bob@acme.test", entity.RoleUser)

	resp, raw := e.call(http.MethodPost, "/api/meetings", admin,
		`{"subject":"Demo","start":"2026-11-02T15:00:00Z","end":"2026-11-02T16:00:00Z"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	m := decode[entity.Meeting](t, raw)
	assert.Equal(t, "Demo", m.Title)
	assert.Equal(t, 60, m.DurationMinutes)

	resp, raw = e.call(http.MethodGet, "/api/meetings/"+m.ID+"/ics", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(raw), "BEGIN:VCALENDAR"))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/calendar")

	resp, _ = e.call(http.MethodPatch, "/api/roles/policy", admin, `{"permissionsByRole":{"user":{"Activities":"ro"}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = e.call(http.MethodPost, "/api/meetings/"+m.ID+"/rsvp", bob, `{"response":"accepted"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	updated := decode[entity.Meeting](t, raw)
	require.Len(t, updated.Attendees, 1)
	assert.Equal(t, "bob@acme.test", updated.Attendees[0].Email)
	assert.Equal(t, "accepted", updated.Attendees[0].Response)

	resp, _ = e.call(http.MethodPost, "/api/meetings/"+m.ID+"/forward", bob, `{"email":"x@y.com"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "reenviar pide escritura")

	resp, raw = e.call(http.MethodPost, "/api/meetings/"+m.ID+"/forward", admin, `{"email":"x@y.com","name":"X"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Len(t, decode[entity.Meeting](t, raw).Attendees, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Calendario
// ──────────────────────────────────────────────────────────────────────────────

func TestCalendar_ReservaPublica(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")

	resp, raw := e.call(http.MethodGet, "/api/calendar/settings", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"slug":"meet"`)

	resp, raw = e.call(http.MethodPatch, "/api/calendar/settings", admin,
		`{"slug":"Ada Demo","days":["Mon"],"start":"09:00","end":"10:00","duration":30}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"slug":"ada-demo"`)

	resp, _ = e.call(http.MethodGet, "/api/calendar/public/ada-demo", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "sin token")
	resp, _ = e.call(http.MethodGet, "/api/calendar/public/nadie", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// 2026-11-02 es lunes
	resp, raw = e.call(http.MethodGet, "/api/calendar/public/ada-demo/slots?date=2026-11-02", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	slots := decode[dto.SlotsResponse](t, raw)
	require.Len(t, slots.Slots, 2)

	book := `{"when":"` + slots.Slots[0].Format("2006-01-02T15:04:05Z07:00") + `","title":"Llamada","name":"Vera","email":"vera@x.com"}`
	resp, raw = e.call(http.MethodPost, "/api/calendar/public/ada-demo/book", "", book)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.Equal(t, "vera@x.com", decode[entity.Meeting](t, raw).Attendees[0].Email)

	resp, _ = e.call(http.MethodPost, "/api/calendar/public/ada-demo/book", "", book)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, raw = e.call(http.MethodGet, "/api/calendar/slots?date=2026-11-02", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.SlotsResponse](t, raw).Slots, 1)

	resp, raw = e.call(http.MethodGet, "/api/calendar/slots?date=2026-11-03", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[dto.SlotsResponse](t, raw).Slots, "martes no está en days")
}

// ──────────────────────────────────────────────────────────────────────────────
// Pipeline, deals y estadísticas
// ──────────────────────────────────────────────────────────────────────────────

func TestPipelineDealsYForecast(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")
	bob := e.join(admin, "bob@acme.test", entity.RoleUser)

	resp, raw := e.call(http.MethodGet, "/api/deals/stages", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.StageLabel](t, raw), 6, "pipeline de fábrica")

	resp, _ = e.call(http.MethodPost, "/api/pipeline", bob, `{"stages":["A"]}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = e.call(http.MethodPost, "/api/pipeline", admin,
		`{"stages":["Prospect",{"name":"Won","probability":1},"prospect",""]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	pl := decode[entity.Pipeline](t, raw)
	require.Len(t, pl.Stages, 2, "vacías y duplicadas se descartan")

	resp, raw = e.call(http.MethodPost, "/api/deals", admin, `{"name":"Renovación","amount":"1,000","stage":"prospect"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	deal := decode[entity.Deal](t, raw)
	assert.Equal(t, "Prospect", deal.Stage)

	resp, raw = e.call(http.MethodGet, "/api/forecasts/summary", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	f := decode[pipeline.Forecast](t, raw)
	assert.Equal(t, 1, f.Totals.Count)
	assert.Equal(t, "1000", f.Totals.Pipeline.String())

	resp, raw = e.call(http.MethodGet, "/api/deals/stats", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, "/deals/stats no cae en /deals/:id")
	assert.Equal(t, 1, decode[dto.DealStats](t, raw).Open)

	resp, raw = e.call(http.MethodGet, "/api/stats", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.StatsFlatDTO](t, raw).DealsOpen)

	resp, raw = e.call(http.MethodGet, "/api/stats/summary?scope=mine", bob, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, decode[dto.StatsSummaryDTO](t, raw).Deals.Open)

	resp, raw = e.call(http.MethodGet, "/api/search?q=renov", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "Renovación")
}

// ──────────────────────────────────────────────────────────────────────────────
// Documentos comerciales
// ──────────────────────────────────────────────────────────────────────────────

func TestInvoices_PDFyXML(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")

	resp, raw := e.call(http.MethodPost, "/api/invoices", admin,
		`{"account":"Globex","items":[{"name":"Plan","qty":3,"price":100}],"taxRate":10}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	inv := decode[entity.SalesDoc](t, raw)
	assert.True(t, strings.HasPrefix(inv.Number, "INV-"))
	assert.Equal(t, "330", inv.Total.String())
	assert.Equal(t, "Open", inv.Status)

	resp, raw = e.call(http.MethodGet, "/api/invoices/stats", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, dto.DocStatsDTO{Total: 1, Last7d: 1}, decode[dto.DocStatsDTO](t, raw))

	resp, raw = e.call(http.MethodGet, "/api/invoices/"+inv.ID+"/pdf", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(raw), "%PDF"))

	resp, raw = e.call(http.MethodGet, "/api/invoices/"+inv.ID+"/xml", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "PayableAmount")
	assert.Len(t, resp.Header.Get(apphttp.DigestHeader), 44, "sha256 en base64")

	resp, _ = e.call(http.MethodPost, "/api/invoices", admin, `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "account requerido")
}

func TestInvoices_NumeroUnicoPorOrg(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")
	other := e.signup("Zed", "zed@other.test")

	resp, raw := e.call(http.MethodPost, "/api/invoices", admin, `{"account":"Globex","number":"F-100"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = e.call(http.MethodPost, "/api/invoices", admin, `{"account":"Initech","number":"F-100"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = e.call(http.MethodPost, "/api/invoices", admin, `{"account":"Initech","number":"F-101"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	second := decode[entity.SalesDoc](t, raw)
	resp, _ = e.call(http.MethodPatch, "/api/invoices/"+second.ID, admin, `{"number":"F-100"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "renumerar a uno existente")
	resp, _ = e.call(http.MethodPatch, "/api/invoices/"+second.ID, admin, `{"notes":"ok"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "guardar sin cambiar el número no choca consigo mismo")

	resp, raw = e.call(http.MethodPost, "/api/invoices", other, `{"account":"Globex","number":"F-100"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "otra org puede repetir el número: %s", raw)
}

func TestQuotes_SinXML(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")

	resp, raw := e.call(http.MethodPost, "/api/quotes", admin, `{"account":"Globex"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	q := decode[entity.SalesDoc](t, raw)
	assert.True(t, strings.HasPrefix(q.Number, "Q-"))
	assert.Equal(t, "Draft", q.Status)

	resp, _ = e.call(http.MethodGet, "/api/quotes/"+q.ID+"/xml", admin, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.call(http.MethodGet, "/api/invoices/"+q.ID, admin, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "cada tipo ve sólo sus documentos")
}

// ──────────────────────────────────────────────────────────────────────────────
// Archivos e importación
// ──────────────────────────────────────────────────────────────────────────────

func TestDocuments_SubidaYBorrado(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")

	resp, raw := e.upload("/api/documents", admin, "contrato.txt", "text/plain", []byte("firmado"),
		map[string]string{"title": "Contrato"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	doc := decode[entity.Document](t, raw)
	assert.Equal(t, "Contrato", doc.Title)
	assert.Equal(t, "contrato.txt", doc.Filename)
	assert.Equal(t, "txt", doc.Ext)
	assert.EqualValues(t, 7, doc.Size)

	onDisk := filepath.Join(e.uploads, filepath.Base(doc.Path))
	_, err := os.Stat(onDisk)
	require.NoError(t, err, "archivo guardado")

	resp, raw = e.call(http.MethodGet, "/api/documents", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.ListResponse[entity.Document]](t, raw).Total)

	resp, _ = e.call(http.MethodDelete, "/api/documents/"+doc.ID, admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err), "el archivo se borra con el registro")
}

func TestImport_CSV(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")

	csv := "Full Name,Email,Status\nAna Gómez,ana@x.com,New\nBeto Ruiz,beto@x.com,Inventado\nCarla Díaz,carla@x.com,\n"
	resp, raw := e.upload("/api/import", admin, "leads.csv", "text/csv", []byte(csv), map[string]string{"module": "leads"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	out := decode[dto.ImportResponse](t, raw)
	assert.True(t, out.OK)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, 1, out.Skipped, "estado inválido")

	resp, raw = e.call(http.MethodGet, "/api/leads", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[dto.ListResponse[entity.Lead]](t, raw).Total)

	resp, _ = e.upload("/api/import", admin, "x.csv", "text/csv", []byte(csv), map[string]string{"module": "products"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos y auditoría
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")

	resp, raw := e.call(http.MethodPost, "/api/products", admin, `{"sku":"P-1","name":"Plan","price":"10.50"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	p := decode[dto.ProductResponse](t, raw)

	resp, _ = e.call(http.MethodPost, "/api/products", admin, `{"sku":"P-1","name":"Otro"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, raw = e.call(http.MethodGet, "/api/products?q=plan", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.ListResponse[dto.ProductResponse]](t, raw).Total)

	resp, _ = e.call(http.MethodDelete, "/api/products/"+p.ID, admin, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.call(http.MethodDelete, "/api/products/"+p.ID, admin, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAudit(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup("Ada", "ada@acme.test")
	bob := e.join(admin, "bob@acme.test", entity.RoleUser)

	resp, _ := e.call(http.MethodPost, "/api/leads", admin, `{"name":"Auditado"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := e.call(http.MethodGet, "/api/audit?q=lead.created", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	rows := decode[[]dto.AuditRow](t, raw)
	require.Len(t, rows, 1)
	assert.Equal(t, "lead.created", rows[0].Action)

	resp, _ = e.call(http.MethodGet, "/api/audit", bob, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.call(http.MethodGet, "/api/audit?from=ayer", admin, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
