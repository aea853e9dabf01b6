package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Resource describe un recurso con ACL: cómo construirlo, qué claves legadas acepta y cómo normalizarlo.
type Resource[T entity.Scoped] struct {
	Kind     string // "lead", "deal"... prefijo de las acciones de auditoría
	Module   string // módulo de la política por rol ("" = sin política)
	New      func() T
	Aliases  map[string]string // clave legada -> clave canónica
	Dates    []string          // claves que aceptan "YYYY-MM-DD"
	Decimals []string          // claves que aceptan "1,000"
	// Rewrite ajusta el cuerpo crudo antes de decodificarlo (campos derivados de otros).
	Rewrite func(raw map[string]any)
	// Prepare valida y normaliza el registro antes de guardarlo.
	Prepare func(ctx context.Context, item T, now time.Time) error
	// Settle recalcula, tras Prepare, los campos que dependen de qué cambió; prev es nil en altas
	// y el estado previo al patch en Update.
	Settle func(prev, item T)
	// Label texto corto para auditoría y búsqueda.
	Label func(item T) string
}

// Campos que el cliente nunca fija directamente.
var protectedKeys = []string{"id", "_id", "orgId", "createdBy", "updatedBy", "createdAt", "updatedAt"}

// ScopedUseCase CRUD genérico con org, visibilidad y permisos de escritura.
type ScopedUseCase[T entity.Scoped] struct {
	repo  repository.ScopedRepository[T]
	res   Resource[T]
	audit Auditor
	now   func() time.Time
}

// NewScopedUseCase construye el caso de uso de un recurso.
func NewScopedUseCase[T entity.Scoped](repo repository.ScopedRepository[T], res Resource[T], audit Auditor) *ScopedUseCase[T] {
	return &ScopedUseCase[T]{repo: repo, res: res, audit: audit, now: time.Now}
}

// Kind nombre del recurso.
func (uc *ScopedUseCase[T]) Kind() string { return uc.res.Kind }

// Module módulo de la política por rol.
func (uc *ScopedUseCase[T]) Module() string { return uc.res.Module }

// Repo puerto de persistencia (consultas internas: estadísticas, búsqueda, pronóstico).
func (uc *ScopedUseCase[T]) Repo() repository.ScopedRepository[T] { return uc.repo }

// List página de registros visibles para p.
func (uc *ScopedUseCase[T]) List(ctx context.Context, p acl.Principal, params dto.ListParams) (*dto.ListResponse[T], error) {
	params.Normalize()
	items, total, err := uc.repo.List(ctx, repository.ListQuery{
		Scope:   acl.ReadScope(p),
		Page:    params.Page,
		Limit:   params.Limit,
		Sort:    params.Sort,
		Desc:    params.Dir == "desc",
		Search:  params.Search,
		Filters: params.Filters,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewListResponse(items, total, params.Page, params.Limit), nil
}

// Get registro por id: 404 fuera de la org, 403 si no es visible.
func (uc *ScopedUseCase[T]) Get(ctx context.Context, p acl.Principal, id string) (T, error) {
	var zero T
	item, err := uc.repo.Get(ctx, p.OrgID, id)
	if err != nil {
		return zero, err
	}
	if !acl.CanRead(p, item.Tenancy()) {
		return zero, domain.ErrForbidden
	}
	return item, nil
}

// Create decodifica body como un registro nuevo del recurso.
// Sólo un admin puede fijar ownerId, assignedTo, sharedWith y visibility.
func (uc *ScopedUseCase[T]) Create(ctx context.Context, p acl.Principal, body []byte) (T, error) {
	var zero T
	if !acl.CanMutate(p) {
		return zero, domain.ErrForbidden
	}
	raw, own, err := uc.decodeRaw(body)
	if err != nil {
		return zero, err
	}
	item := uc.res.New()
	if err := mergeInto(raw, item); err != nil {
		return zero, err
	}
	acl.ApplyCreate(p, item.Tenancy(), own)
	if err := uc.insert(ctx, item); err != nil {
		return zero, err
	}
	uc.record(ctx, p, "created", item)
	return item, nil
}

// Insert guarda un registro ya construido con p como owner (importaciones). No audita.
func (uc *ScopedUseCase[T]) Insert(ctx context.Context, p acl.Principal, item T) error {
	if !acl.CanMutate(p) {
		return domain.ErrForbidden
	}
	acl.ApplyCreate(p, item.Tenancy(), acl.Ownership{})
	return uc.insert(ctx, item)
}

// Add guarda un registro construido por el servidor (subidas, reservas) y lo audita.
func (uc *ScopedUseCase[T]) Add(ctx context.Context, p acl.Principal, item T) error {
	if err := uc.Insert(ctx, p, item); err != nil {
		return err
	}
	uc.record(ctx, p, "created", item)
	return nil
}

func (uc *ScopedUseCase[T]) insert(ctx context.Context, item T) error {
	now := uc.now().UTC()
	t := item.Tenancy()
	t.ID = uuid.New().String()
	t.CreatedAt = now
	t.UpdatedAt = now
	if uc.res.Prepare != nil {
		if err := uc.res.Prepare(ctx, item, now); err != nil {
			return err
		}
	}
	if uc.res.Settle != nil {
		var none T
		uc.res.Settle(none, item)
	}
	return uc.repo.Create(ctx, item)
}

// Update aplica body sobre el registro existente: 404 fuera de la org, 403 sin permiso de escritura.
// Los campos de propiedad sólo cambian si p es admin u owner.
func (uc *ScopedUseCase[T]) Update(ctx context.Context, p acl.Principal, id string, body []byte) (T, error) {
	var zero T
	item, err := uc.repo.Get(ctx, p.OrgID, id)
	if err != nil {
		return zero, err
	}
	if !acl.CanWrite(p, item.Tenancy()) {
		return zero, domain.ErrForbidden
	}
	raw, own, err := uc.decodeRaw(body)
	if err != nil {
		return zero, err
	}
	before := item
	if uc.res.Settle != nil {
		if before, err = uc.snapshot(item); err != nil {
			return zero, err
		}
	}
	prev := *item.Tenancy()
	if err := mergeInto(raw, item); err != nil {
		return zero, err
	}
	acl.ApplyUpdate(p, prev, item.Tenancy(), own)
	if err := uc.save(ctx, p, before, item); err != nil {
		return zero, err
	}
	return item, nil
}

// Save normaliza y persiste un registro ya autorizado (acciones como RSVP o cambio de etapa).
// Los campos derivados de Settle se conservan.
func (uc *ScopedUseCase[T]) Save(ctx context.Context, p acl.Principal, item T) error {
	return uc.save(ctx, p, item, item)
}

func (uc *ScopedUseCase[T]) save(ctx context.Context, p acl.Principal, before, item T) error {
	now := uc.now().UTC()
	item.Tenancy().UpdatedAt = now
	item.Tenancy().UpdatedBy = p.UserID
	if uc.res.Prepare != nil {
		if err := uc.res.Prepare(ctx, item, now); err != nil {
			return err
		}
	}
	if uc.res.Settle != nil {
		uc.res.Settle(before, item)
	}
	if err := uc.repo.Update(ctx, item); err != nil {
		return err
	}
	uc.record(ctx, p, "updated", item)
	return nil
}

// Remove elimina el registro: 404 fuera de la org, 403 sin permiso de escritura.
func (uc *ScopedUseCase[T]) Remove(ctx context.Context, p acl.Principal, id string) error {
	item, err := uc.repo.Get(ctx, p.OrgID, id)
	if err != nil {
		return err
	}
	if !acl.CanWrite(p, item.Tenancy()) {
		return domain.ErrForbidden
	}
	if err := uc.repo.Delete(ctx, p.OrgID, id); err != nil {
		return err
	}
	uc.record(ctx, p, "deleted", item)
	return nil
}

func (uc *ScopedUseCase[T]) record(ctx context.Context, p acl.Principal, verb string, item T) {
	if uc.audit == nil {
		return
	}
	meta := map[string]any{"id": item.Tenancy().ID}
	if uc.res.Label != nil {
		if l := uc.res.Label(item); l != "" {
			meta["label"] = l
		}
	}
	uc.audit.Record(ctx, p, uc.res.Kind+"."+verb, uc.res.Kind+":"+item.Tenancy().ID, meta)
}

// decodeRaw interpreta el cuerpo, separa los campos de propiedad y aplica alias y conversiones.
func (uc *ScopedUseCase[T]) decodeRaw(body []byte) (map[string]any, acl.Ownership, error) {
	raw := map[string]any{}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, acl.Ownership{}, domain.Invalid("body", "JSON inválido")
		}
	}
	own, err := ownershipFrom(raw)
	if err != nil {
		return nil, acl.Ownership{}, err
	}
	uc.clean(raw)
	return raw, own, nil
}

// InsertRaw crea un registro desde un mapa de campos (importaciones): sin propiedad explícita ni auditoría.
func (uc *ScopedUseCase[T]) InsertRaw(ctx context.Context, p acl.Principal, raw map[string]any) error {
	if _, err := ownershipFrom(raw); err != nil {
		return err
	}
	uc.clean(raw)
	item := uc.res.New()
	if err := mergeInto(raw, item); err != nil {
		return err
	}
	return uc.Insert(ctx, p, item)
}

// clean quita campos protegidos y aplica alias, fechas y decimales.
func (uc *ScopedUseCase[T]) clean(raw map[string]any) {
	for _, k := range protectedKeys {
		delete(raw, k)
	}
	for legacy, canonical := range uc.res.Aliases {
		v, ok := raw[legacy]
		if !ok {
			continue
		}
		if _, set := raw[canonical]; !set {
			raw[canonical] = v
		}
		delete(raw, legacy)
	}
	if uc.res.Rewrite != nil {
		uc.res.Rewrite(raw)
	}
	for _, k := range uc.res.Dates {
		expandDate(raw, k)
	}
	for _, k := range uc.res.Decimals {
		cleanDecimal(raw, k)
	}
}

// mergeInto vuelca raw sobre item; las claves ausentes conservan su valor.
func mergeInto(raw map[string]any, item any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return domain.Invalid("body", err.Error())
	}
	if err := json.Unmarshal(b, item); err != nil {
		return domain.Invalid(jsonField(err), "tipo de dato inválido")
	}
	return nil
}

// snapshot copia item antes de aplicar un patch.
func (uc *ScopedUseCase[T]) snapshot(item T) (T, error) {
	var zero T
	b, err := json.Marshal(item)
	if err != nil {
		return zero, err
	}
	c := uc.res.New()
	if err := json.Unmarshal(b, c); err != nil {
		return zero, err
	}
	return c, nil
}

func jsonField(err error) string {
	if te, ok := err.(*json.UnmarshalTypeError); ok && te.Field != "" {
		return te.Field
	}
	return "body"
}

// ownershipFrom extrae y quita de raw los campos de propiedad.
func ownershipFrom(raw map[string]any) (acl.Ownership, error) {
	var own acl.Ownership
	if v, ok := raw["ownerId"]; ok {
		s, _ := v.(string)
		own.OwnerID = &s
	}
	if v, ok := raw["visibility"]; ok {
		s, _ := v.(string)
		if s != "" && !entity.ValidVisibility(s) {
			return own, domain.Invalid("visibility", "debe ser private, shared u org")
		}
		own.Visibility = &s
	}
	for key, dst := range map[string]**[]string{"assignedTo": &own.AssignedTo, "sharedWith": &own.SharedWith} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		list, err := stringList(key, v)
		if err != nil {
			return own, err
		}
		*dst = &list
	}
	for _, k := range []string{"ownerId", "visibility", "assignedTo", "sharedWith"} {
		delete(raw, k)
	}
	return own, nil
}

func stringList(field string, v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		if x == "" {
			return []string{}, nil
		}
		return []string{x}, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, domain.Invalid(field, "debe ser una lista de ids")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, domain.Invalid(field, "debe ser una lista de ids")
}

var reDateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// expandDate "2026-10-19" -> "2026-10-19T00:00:00Z"; "" -> null.
func expandDate(raw map[string]any, key string) {
	s, ok := raw[key].(string)
	if !ok {
		return
	}
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		raw[key] = nil
	case reDateOnly.MatchString(s):
		raw[key] = s + "T00:00:00Z"
	}
}

// cleanDecimal "1,000.50" -> "1000.50"; "" se descarta.
func cleanDecimal(raw map[string]any, key string) {
	s, ok := raw[key].(string)
	if !ok {
		return
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		delete(raw, key)
		return
	}
	raw[key] = s
}

// isClientError errores atribuibles a los datos recibidos (validación, duplicado, conflicto).
func isClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrDuplicate) || errors.Is(err, domain.ErrConflict)
}
