// Package memory implementa los puertos de persistencia en memoria.
// Lo usan las pruebas de casos de uso y de handlers; no hay transacciones ni índices.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Filter decide si item cumple el filtro con valor v.
type Filter[T entity.Scoped] func(item T, v string) (bool, error)

// Spec textos buscables y filtros propios de un recurso.
type Spec[T entity.Scoped] struct {
	New     func() T
	Search  func(item T) []string
	Filters map[string]Filter[T]
	// Unique clave única por org ("" no participa), como los UNIQUE (org_id, ...) de Postgres.
	Unique func(item T) string
}

// Store repositorio genérico de recursos con ACL.
type Store[T entity.Scoped] struct {
	mu    sync.RWMutex
	items map[string]T
	spec  Spec[T]
}

// NewStore construye un Store vacío.
func NewStore[T entity.Scoped](spec Spec[T]) *Store[T] {
	return &Store[T]{items: map[string]T{}, spec: spec}
}

var _ repository.ScopedRepository[*entity.Lead] = (*Store[*entity.Lead])(nil)

// copy desacopla el valor guardado del que recibe el llamador.
func (s *Store[T]) copy(item T) T {
	out := s.spec.New()
	b, _ := json.Marshal(item)
	_ = json.Unmarshal(b, out)
	return out
}

func (s *Store[T]) match(item T, q repository.ListQuery) (bool, error) {
	t := item.Tenancy()
	if !q.Scope.Allows(t) {
		return false, nil
	}
	if q.Search != "" && s.spec.Search != nil {
		needle := strings.ToLower(q.Search)
		found := false
		for _, h := range s.spec.Search(item) {
			if strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	for k, v := range q.Filters {
		if v == "" {
			continue
		}
		f, ok := s.spec.Filters[k]
		if !ok {
			f, ok = commonFilter[T](k)
		}
		if !ok {
			continue
		}
		hit, err := f(item, v)
		if err != nil || !hit {
			return false, err
		}
	}
	return true, nil
}

func (s *Store[T]) filter(q repository.ListQuery) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []T
	for _, item := range s.items {
		ok, err := s.match(item, q)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s.copy(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Tenancy(), out[j].Tenancy()
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		if q.Desc {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out, nil
}

// List ordena por createdAt; Sort se ignora.
func (s *Store[T]) List(_ context.Context, q repository.ListQuery) ([]T, int, error) {
	all, err := s.filter(q)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	from := q.Offset()
	if from > total {
		from = total
	}
	to := total
	if q.Limit > 0 && from+q.Limit < total {
		to = from + q.Limit
	}
	return all[from:to], total, nil
}

func (s *Store[T]) Count(ctx context.Context, q repository.ListQuery) (int, error) {
	_, total, err := s.List(ctx, repository.ListQuery{Scope: q.Scope, Search: q.Search, Filters: q.Filters})
	return total, err
}

func (s *Store[T]) Get(_ context.Context, orgID, id string) (T, error) {
	var zero T
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok || item.Tenancy().OrgID != orgID {
		return zero, domain.ErrNotFound
	}
	return s.copy(item), nil
}

func (s *Store[T]) Create(_ context.Context, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := item.Tenancy().ID
	if _, ok := s.items[id]; ok {
		return domain.ErrDuplicate
	}
	if err := s.checkUnique(item); err != nil {
		return err
	}
	s.items[id] = s.copy(item)
	return nil
}

// checkUnique se llama con el lock tomado.
func (s *Store[T]) checkUnique(item T) error {
	if s.spec.Unique == nil {
		return nil
	}
	key := s.spec.Unique(item)
	if key == "" {
		return nil
	}
	t := item.Tenancy()
	for id, other := range s.items {
		if id != t.ID && other.Tenancy().OrgID == t.OrgID && s.spec.Unique(other) == key {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func (s *Store[T]) Update(_ context.Context, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := item.Tenancy()
	prev, ok := s.items[t.ID]
	if !ok || prev.Tenancy().OrgID != t.OrgID {
		return domain.ErrNotFound
	}
	if err := s.checkUnique(item); err != nil {
		return err
	}
	s.items[t.ID] = s.copy(item)
	return nil
}

func (s *Store[T]) Delete(_ context.Context, orgID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.Tenancy().OrgID != orgID {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Len cantidad de registros de todas las orgs.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func commonFilter[T entity.Scoped](key string) (Filter[T], bool) {
	switch key {
	case "ownerId":
		return func(item T, v string) (bool, error) { return item.Tenancy().OwnerID == v, nil }, true
	case "createdFrom":
		return Since(func(item T) *time.Time { c := item.Tenancy().CreatedAt; return &c }), true
	case "createdTo":
		return Until(func(item T) *time.Time { c := item.Tenancy().CreatedAt; return &c }), true
	}
	return nil, false
}

// Eq compara un campo de texto sin distinguir mayúsculas.
func Eq[T entity.Scoped](field func(T) string) Filter[T] {
	return func(item T, v string) (bool, error) { return strings.EqualFold(field(item), v), nil }
}

// Since campo >= v (RFC3339 o YYYY-MM-DD); un campo nulo no cumple.
func Since[T entity.Scoped](field func(T) *time.Time) Filter[T] {
	return func(item T, v string) (bool, error) {
		at, err := parseTime(v)
		if err != nil {
			return false, err
		}
		f := field(item)
		return f != nil && !f.Before(at), nil
	}
}

// Until campo < v; una fecha sin hora incluye el día completo.
func Until[T entity.Scoped](field func(T) *time.Time) Filter[T] {
	return func(item T, v string) (bool, error) {
		at, err := parseTime(v)
		if err != nil {
			return false, err
		}
		if len(v) == len(time.DateOnly) {
			at = at.AddDate(0, 0, 1)
		}
		f := field(item)
		return f != nil && f.Before(at), nil
	}
}

// Flag aplica pred sólo si v es verdadero.
func Flag[T entity.Scoped](pred func(T) bool) Filter[T] {
	return func(item T, v string) (bool, error) {
		if on, _ := strconv.ParseBool(v); !on {
			return true, nil
		}
		return pred(item), nil
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
