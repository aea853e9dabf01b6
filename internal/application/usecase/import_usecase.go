package usecase

import (
	"context"
	"io"
	"strings"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/pkg/logger"
)

// SheetReader lee un CSV o XLSX como filas encabezado -> valor.
type SheetReader interface {
	Read(filename string, r io.Reader) ([]map[string]string, error)
}

// rawInserter destino de una importación.
type rawInserter interface {
	InsertRaw(ctx context.Context, p acl.Principal, raw map[string]any) error
	Module() string
}

// column campo destino y encabezados aceptados, en orden de preferencia.
type column struct {
	field   string
	headers []string
}

// importColumns encabezados reconocidos por módulo.
var importColumns = map[string][]column{
	"leads": {
		{"name", []string{"Name", "Full Name", "Lead Name", "name"}},
		{"email", []string{"Email", "email"}},
		{"phone", []string{"Phone", "phone"}},
		{"company", []string{"Company", "company"}},
		{"source", []string{"Source", "source"}},
		{"status", []string{"Status", "status"}},
	},
	"contacts": {
		{"name", []string{"Name", "Full Name", "Contact Name", "name"}},
		{"firstName", []string{"First Name", "firstName"}},
		{"lastName", []string{"Last Name", "lastName"}},
		{"email", []string{"Email", "email"}},
		{"phone", []string{"Phone", "phone"}},
		{"title", []string{"Title", "Job Title", "title"}},
	},
	"accounts": {
		{"name", []string{"Company", "Account Name", "Name", "name"}},
		{"website", []string{"Website", "website"}},
		{"phone", []string{"Phone", "phone"}},
		{"industry", []string{"Industry", "industry"}},
		{"notes", []string{"Notes", "notes"}},
	},
	"deals": {
		{"name", []string{"Title", "Deal Name", "Subject", "Name", "title"}},
		{"amount", []string{"Amount", "amount"}},
		{"stage", []string{"Stage", "stage"}},
		{"account", []string{"Account", "Company", "account"}},
		{"closeDate", []string{"Close Date", "CloseDate", "closeDate"}},
	},
	"activities": {
		{"title", []string{"Subject", "Title", "subject"}},
		{"dueDate", []string{"DueDate", "Due", "Due Date", "dueDate"}},
		{"status", []string{"Status", "status"}},
		{"priority", []string{"Priority", "priority"}},
		{"with", []string{"With", "Contact", "with"}},
	},
}

// ImportUseCase carga masiva de registros desde una planilla.
type ImportUseCase struct {
	reader  SheetReader
	targets map[string]rawInserter
	log     *logger.Logger
}

// NewImportUseCase construye el caso de uso. Las actividades se importan como tareas.
func NewImportUseCase(reader SheetReader, leads, contacts, accounts, deals, tasks rawInserter, log *logger.Logger) *ImportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ImportUseCase{
		reader: reader,
		targets: map[string]rawInserter{
			"leads": leads, "contacts": contacts, "accounts": accounts, "deals": deals, "activities": tasks,
		},
		log: log.Component("import"),
	}
}

// Target módulo de política del destino; ok=false si el módulo no se importa.
func (uc *ImportUseCase) Target(module string) (string, bool) {
	t, ok := uc.targets[strings.ToLower(strings.TrimSpace(module))]
	if !ok {
		return "", false
	}
	return t.Module(), true
}

// Import inserta cada fila válida con p como owner; las inválidas se cuentan como omitidas.
func (uc *ImportUseCase) Import(ctx context.Context, p acl.Principal, module, filename string, r io.Reader) (*dto.ImportResponse, error) {
	module = strings.ToLower(strings.TrimSpace(module))
	target, ok := uc.targets[module]
	if !ok {
		return nil, domain.Invalid("module", "módulo inválido")
	}
	if !acl.CanMutate(p) {
		return nil, domain.ErrForbidden
	}
	rows, err := uc.reader.Read(filename, r)
	if err != nil {
		return nil, err
	}
	resp := &dto.ImportResponse{OK: true}
	for _, row := range rows {
		raw := mapRow(module, row)
		if len(raw) == 0 {
			resp.Skipped++
			continue
		}
		if err := target.InsertRaw(ctx, p, raw); err != nil {
			if !isClientError(err) {
				return nil, err
			}
			resp.Skipped++
			continue
		}
		resp.Count++
	}
	uc.log.Info().Str("org_id", p.OrgID).Str("module", module).Int("count", resp.Count).Int("skipped", resp.Skipped).Msg("importación terminada")
	return resp, nil
}

// mapRow traduce una fila a campos del recurso; devuelve nil si no trae ningún dato.
func mapRow(module string, row map[string]string) map[string]any {
	raw := map[string]any{}
	for _, col := range importColumns[module] {
		for _, h := range col.headers {
			if v := strings.TrimSpace(row[h]); v != "" {
				raw[col.field] = v
				break
			}
		}
	}
	if len(raw) == 0 {
		return nil
	}
	// contactos: "Name" se divide en nombre y apellido
	if module == "contacts" {
		if name, ok := raw["name"].(string); ok {
			delete(raw, "name")
			first, last, _ := strings.Cut(name, " ")
			if _, set := raw["firstName"]; !set {
				raw["firstName"] = first
			}
			if _, set := raw["lastName"]; !set {
				raw["lastName"] = strings.TrimSpace(last)
			}
		}
	}
	return raw
}
