package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// FilterFunc agrega a w la condición de un filtro de listado. v nunca llega vacío.
type FilterFunc func(w *Where, v string) error

// Table describe cómo persistir un recurso con campos de tenant.
// Columns/Values/Scan cubren sólo las columnas propias; las de tenant las maneja ScopedStore.
type Table[T entity.Scoped] struct {
	Name    string
	Base    string // condición fija opcional (ej. doc_type = 'Quote')
	Columns []string
	Values  func(T) []any
	Scan    func(T) []any
	New     func() T
	Search  []string          // columnas o expresiones para búsqueda libre
	Sorts   map[string]string // clave de API -> columna
	Filters map[string]FilterFunc
}

var tenantColumns = []string{
	"id", "org_id", "owner_id", "assigned_to", "visibility", "shared_with",
	"created_by", "updated_by", "created_at", "updated_at",
}

// ScopedStore implementación genérica de repository.ScopedRepository sobre PostgreSQL (usable con pool o tx).
type ScopedStore[T entity.Scoped] struct {
	q     Querier
	table Table[T]
}

// NewScopedStore construye el store de una tabla.
func NewScopedStore[T entity.Scoped](q Querier, table Table[T]) *ScopedStore[T] {
	return &ScopedStore[T]{q: q, table: table}
}

func (s *ScopedStore[T]) selectColumns() string {
	return strings.Join(append(append([]string{}, tenantColumns...), s.table.Columns...), ", ")
}

func (s *ScopedStore[T]) scanDest(item T) []any {
	t := item.Tenancy()
	dest := []any{
		&t.ID, &t.OrgID, &t.OwnerID, &t.AssignedTo, &t.Visibility, &t.SharedWith,
		&t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt,
	}
	return append(dest, s.table.Scan(item)...)
}

// where condición de org, scope de lectura, búsqueda y filtros.
func (s *ScopedStore[T]) where(q repository.ListQuery) (*Where, error) {
	w := &Where{}
	w.Add("org_id = ?", q.Scope.OrgID)
	if s.table.Base != "" {
		w.Add(s.table.Base)
	}
	if !q.Scope.All {
		w.Add("(owner_id = ? OR ? = ANY(assigned_to) OR ? = ANY(shared_with) OR visibility = 'org')",
			q.Scope.UserID, q.Scope.UserID, q.Scope.UserID)
	}
	if term := strings.TrimSpace(q.Search); term != "" && len(s.table.Search) > 0 {
		like := likePattern(term)
		parts := make([]string, len(s.table.Search))
		args := make([]any, len(s.table.Search))
		for i, col := range s.table.Search {
			parts[i] = col + " ILIKE ?"
			args[i] = like
		}
		w.Add("("+strings.Join(parts, " OR ")+")", args...)
	}
	for key, v := range q.Filters {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		f, ok := s.table.Filters[key]
		if !ok {
			f, ok = commonFilters[key]
		}
		if !ok {
			continue
		}
		if err := f(w, v); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (s *ScopedStore[T]) orderBy(q repository.ListQuery) string {
	col, ok := s.table.Sorts[q.Sort]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir)
}

// List devuelve la página pedida y el total sin paginar.
func (s *ScopedStore[T]) List(ctx context.Context, q repository.ListQuery) ([]T, int, error) {
	items := []T{}
	if !validID(q.Scope.OrgID) {
		return items, 0, nil
	}
	total, err := s.Count(ctx, q)
	if err != nil || total == 0 {
		return items, total, err
	}
	w, err := s.where(q)
	if err != nil {
		return nil, 0, err
	}
	query := "SELECT " + s.selectColumns() + " FROM " + s.table.Name + w.SQL() + s.orderBy(q)
	if q.Limit > 0 {
		query += " LIMIT " + w.Arg(q.Limit) + " OFFSET " + w.Arg(q.Offset())
	}
	rows, err := s.q.Query(ctx, query, w.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", s.table.Name, mapError(err, domain.ErrNotFound))
	}
	defer rows.Close()
	for rows.Next() {
		item := s.table.New()
		if err := rows.Scan(s.scanDest(item)...); err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", s.table.Name, err)
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

// Count total de registros visibles que cumplen los filtros.
func (s *ScopedStore[T]) Count(ctx context.Context, q repository.ListQuery) (int, error) {
	if !validID(q.Scope.OrgID) {
		return 0, nil
	}
	w, err := s.where(q)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.q.QueryRow(ctx, "SELECT count(*) FROM "+s.table.Name+w.SQL(), w.Args()...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table.Name, mapError(err, domain.ErrNotFound))
	}
	return n, nil
}

// Get obtiene un registro de la org sin aplicar visibilidad (la decide el caso de uso).
func (s *ScopedStore[T]) Get(ctx context.Context, orgID, id string) (T, error) {
	var zero T
	if !validID(orgID) || !validID(id) {
		return zero, domain.ErrNotFound
	}
	w := &Where{}
	w.Add("org_id = ?", orgID)
	w.Add("id = ?", id)
	if s.table.Base != "" {
		w.Add(s.table.Base)
	}
	item := s.table.New()
	query := "SELECT " + s.selectColumns() + " FROM " + s.table.Name + w.SQL()
	if err := s.q.QueryRow(ctx, query, w.Args()...).Scan(s.scanDest(item)...); err != nil {
		return zero, mapError(err, domain.ErrNotFound)
	}
	return item, nil
}

// Create inserta el registro; ID y fechas los asigna el caso de uso.
func (s *ScopedStore[T]) Create(ctx context.Context, item T) error {
	t := item.Tenancy()
	cols := append(append([]string{}, tenantColumns...), s.table.Columns...)
	args := []any{
		t.ID, t.OrgID, t.OwnerID, nonNil(t.AssignedTo), t.Visibility, nonNil(t.SharedWith),
		t.CreatedBy, t.UpdatedBy, t.CreatedAt, t.UpdatedAt,
	}
	args = append(args, s.table.Values(item)...)
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.table.Name, strings.Join(cols, ", "), strings.Join(ph, ", "))
	if _, err := s.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", s.table.Name, mapError(err, domain.ErrNotFound))
	}
	return nil
}

// Update reescribe propiedad y columnas propias. org_id, created_by y created_at no cambian.
func (s *ScopedStore[T]) Update(ctx context.Context, item T) error {
	t := item.Tenancy()
	if !validID(t.OrgID) || !validID(t.ID) {
		return domain.ErrNotFound
	}
	w := &Where{}
	sets := []string{
		"owner_id = " + w.Arg(t.OwnerID),
		"assigned_to = " + w.Arg(nonNil(t.AssignedTo)),
		"visibility = " + w.Arg(t.Visibility),
		"shared_with = " + w.Arg(nonNil(t.SharedWith)),
		"updated_by = " + w.Arg(t.UpdatedBy),
		"updated_at = " + w.Arg(t.UpdatedAt),
	}
	for i, v := range s.table.Values(item) {
		sets = append(sets, s.table.Columns[i]+" = "+w.Arg(v))
	}
	w.Add("org_id = ?", t.OrgID)
	w.Add("id = ?", t.ID)
	query := "UPDATE " + s.table.Name + " SET " + strings.Join(sets, ", ") + w.SQL()
	cmd, err := s.q.Exec(ctx, query, w.Args()...)
	if err != nil {
		return fmt.Errorf("update %s: %w", s.table.Name, mapError(err, domain.ErrNotFound))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el registro de la org.
func (s *ScopedStore[T]) Delete(ctx context.Context, orgID, id string) error {
	if !validID(orgID) || !validID(id) {
		return domain.ErrNotFound
	}
	w := &Where{}
	w.Add("org_id = ?", orgID)
	w.Add("id = ?", id)
	if s.table.Base != "" {
		w.Add(s.table.Base)
	}
	cmd, err := s.q.Exec(ctx, "DELETE FROM "+s.table.Name+w.SQL(), w.Args()...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.table.Name, mapError(err, domain.ErrNotFound))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// commonFilters filtros disponibles en todos los recursos.
var commonFilters = map[string]FilterFunc{
	"ownerId":     eq("owner_id"),
	"createdFrom": since("created_at"),
	"createdTo":   until("created_at"),
}

func eq(col string) FilterFunc {
	return func(w *Where, v string) error {
		w.Add(col+" = ?", v)
		return nil
	}
}

// since col >= v (RFC3339 o YYYY-MM-DD).
func since(col string) FilterFunc {
	return func(w *Where, v string) error {
		t, err := parseTime(v)
		if err != nil {
			return err
		}
		w.Add(col+" >= ?", t)
		return nil
	}
}

// until col < v; una fecha sin hora incluye el día completo.
func until(col string) FilterFunc {
	return func(w *Where, v string) error {
		t, err := parseTime(v)
		if err != nil {
			return err
		}
		if len(v) == len(time.DateOnly) {
			t = t.AddDate(0, 0, 1)
		}
		w.Add(col+" < ?", t)
		return nil
	}
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, domain.Invalid("date", "formato inválido: "+v)
	}
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Los stores genéricos cumplen el puerto.
var _ repository.ScopedRepository[*entity.Lead] = (*ScopedStore[*entity.Lead])(nil)
