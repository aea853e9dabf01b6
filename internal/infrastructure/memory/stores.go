package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Users usuarios indexados por id.
type Users struct {
	mu    sync.RWMutex
	items map[string]entity.User
}

var _ repository.UserRepository = (*Users)(nil)

func NewUsers() *Users { return &Users{items: map[string]entity.User{}} }

func (r *Users) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.items {
		if clash(x, u.Email, u.Username, u.Phone) {
			return domain.ErrDuplicate
		}
	}
	r.items[u.ID] = *u
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *Users) GetByIdentifier(_ context.Context, identifier string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id := strings.ToLower(strings.TrimSpace(identifier))
	for _, u := range r.items {
		if (u.Email != "" && u.Email == id) || (u.Username != "" && u.Username == id) || (u.Phone != "" && u.Phone == identifier) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *Users) Taken(_ context.Context, email, username, phone string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if clash(u, email, username, phone) {
			return true, nil
		}
	}
	return false, nil
}

func clash(u entity.User, email, username, phone string) bool {
	return (email != "" && u.Email == email) || (username != "" && u.Username == username) || (phone != "" && u.Phone == phone)
}

func (r *Users) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, x := range r.items {
		if id != u.ID && clash(x, u.Email, u.Username, u.Phone) {
			return domain.ErrDuplicate
		}
	}
	r.items[u.ID] = *u
	return nil
}

func (r *Users) ListByOrg(_ context.Context, orgID string) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entity.User{}
	for _, u := range r.items {
		if u.OrgID == orgID {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Users) CountActiveAdmins(_ context.Context, orgID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, u := range r.items {
		if u.OrgID == orgID && u.Role == entity.RoleAdmin && u.IsActive() {
			n++
		}
	}
	return n, nil
}

// Invites invitaciones indexadas por id.
type Invites struct {
	mu    sync.RWMutex
	items map[string]entity.Invite
}

var _ repository.InviteRepository = (*Invites)(nil)

func NewInvites() *Invites { return &Invites{items: map[string]entity.Invite{}} }

func (r *Invites) Create(_ context.Context, inv *entity.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[inv.ID] = *inv
	return nil
}

func (r *Invites) GetByToken(_ context.Context, token string) (*entity.Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.items {
		if inv.Token == token {
			return &inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *Invites) ListPending(_ context.Context, orgID string) ([]*entity.Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entity.Invite{}
	for _, inv := range r.items {
		if inv.OrgID == orgID && inv.Status == entity.InvitePending {
			inv := inv
			out = append(out, &inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Invites) Revoke(_ context.Context, orgID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.items[id]
	if !ok || inv.OrgID != orgID || inv.Status != entity.InvitePending {
		return domain.ErrNotFound
	}
	inv.Status = entity.InviteRevoked
	r.items[id] = inv
	return nil
}

func (r *Invites) Accept(_ context.Context, id, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = entity.InviteAccepted
	inv.AcceptedBy = userID
	inv.AcceptedAt = &at
	inv.UpdatedAt = at
	r.items[id] = inv
	return nil
}

// Orgs organizaciones indexadas por id.
type Orgs struct {
	mu    sync.RWMutex
	items map[string]entity.Org
}

var _ repository.OrgRepository = (*Orgs)(nil)

func NewOrgs() *Orgs { return &Orgs{items: map[string]entity.Org{}} }

func (r *Orgs) Create(_ context.Context, o *entity.Org) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[o.ID] = *o
	return nil
}

func (r *Orgs) GetByID(_ context.Context, id string) (*entity.Org, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (r *Orgs) Update(_ context.Context, o *entity.Org) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[o.ID]; !ok {
		return domain.ErrNotFound
	}
	r.items[o.ID] = *o
	return nil
}

// TxRunner ejecuta el alta sin transacción real: un fallo no deshace lo escrito.
type TxRunner struct {
	Orgs    *Orgs
	Users   *Users
	Invites *Invites
}

func (t *TxRunner) RunSignup(_ context.Context, fn func(repository.OrgRepository, repository.UserRepository, repository.InviteRepository) error) error {
	return fn(t.Orgs, t.Users, t.Invites)
}

// Settings calendario, pipeline y políticas por org.
type Settings struct {
	mu           sync.RWMutex
	calendars    map[string]entity.CalendarSettings // orgID/userID
	pipelines    map[string]entity.Pipeline
	security     map[string]entity.SecurityPolicy
	roles        map[string]entity.RolePolicy
	integrations map[string]entity.IntegrationSettings
}

var (
	_ repository.CalendarRepository = (*Settings)(nil)
	_ repository.PipelineRepository = (*PipelineSettings)(nil)
	_ repository.PolicyRepository   = (*Settings)(nil)
)

func NewSettings() *Settings {
	return &Settings{
		calendars:    map[string]entity.CalendarSettings{},
		pipelines:    map[string]entity.Pipeline{},
		security:     map[string]entity.SecurityPolicy{},
		roles:        map[string]entity.RolePolicy{},
		integrations: map[string]entity.IntegrationSettings{},
	}
}

func (r *Settings) Get(_ context.Context, orgID, userID string) (*entity.CalendarSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.calendars[orgID+"/"+userID]
	if !ok {
		return nil, nil
	}
	s.Days = append([]string(nil), s.Days...)
	return &s, nil
}

func (r *Settings) GetBySlug(_ context.Context, slug string) (*entity.CalendarSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.calendars {
		if s.Slug == slug {
			s.Days = append([]string(nil), s.Days...)
			return &s, nil
		}
	}
	return nil, nil
}

func (r *Settings) Upsert(_ context.Context, s *entity.CalendarSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := s.OrgID + "/" + s.UserID
	for k, x := range r.calendars {
		if k != key && x.Slug == s.Slug {
			return domain.ErrDuplicate
		}
	}
	r.calendars[key] = *s
	return nil
}

// Pipelines vista de Settings como PipelineRepository (Get choca con el de calendario).
func (r *Settings) Pipelines() *PipelineSettings { return &PipelineSettings{r} }

// PipelineSettings etapas por org.
type PipelineSettings struct{ s *Settings }

func (p *PipelineSettings) Get(_ context.Context, orgID string) (*entity.Pipeline, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	pl, ok := p.s.pipelines[orgID]
	if !ok {
		return nil, nil
	}
	pl.Stages = append([]entity.Stage(nil), pl.Stages...)
	return &pl, nil
}

func (p *PipelineSettings) Save(_ context.Context, pl *entity.Pipeline) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.pipelines[pl.OrgID] = *pl
	return nil
}

func (r *Settings) GetSecurity(_ context.Context, orgID string) (*entity.SecurityPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sp, ok := r.security[orgID]
	if !ok {
		return nil, nil
	}
	return &sp, nil
}

func (r *Settings) SaveSecurity(_ context.Context, sp *entity.SecurityPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.security[sp.OrgID] = *sp
	return nil
}

func (r *Settings) GetRoles(_ context.Context, orgID string) (*entity.RolePolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rp, ok := r.roles[orgID]
	if !ok {
		return nil, nil
	}
	return &rp, nil
}

func (r *Settings) SaveRoles(_ context.Context, rp *entity.RolePolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[rp.OrgID] = *rp
	return nil
}

func (r *Settings) GetIntegrations(_ context.Context, orgID string) (*entity.IntegrationSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.integrations[orgID]
	if !ok {
		return nil, nil
	}
	providers := make(map[string]bool, len(s.EmailProviders))
	for k, v := range s.EmailProviders {
		providers[k] = v
	}
	s.EmailProviders = providers
	return &s, nil
}

func (r *Settings) SaveIntegrations(_ context.Context, s *entity.IntegrationSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.integrations[s.OrgID] = *s
	return nil
}

// Audit eventos en orden de inserción.
type Audit struct {
	mu     sync.RWMutex
	events []entity.AuditEvent
}

var _ repository.AuditRepository = (*Audit)(nil)

func (r *Audit) Insert(_ context.Context, ev *entity.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *ev)
	return nil
}

func (r *Audit) List(_ context.Context, q repository.AuditQuery) ([]*entity.AuditEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(q.Q)
	out := []*entity.AuditEvent{}
	for i := len(r.events) - 1; i >= 0; i-- {
		ev := r.events[i]
		if ev.OrgID != q.OrgID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(ev.Actor+" "+ev.Action+" "+ev.Target), needle) {
			continue
		}
		if (q.From != nil && ev.CreatedAt.Before(*q.From)) || (q.To != nil && !ev.CreatedAt.Before(*q.To)) {
			continue
		}
		out = append(out, &ev)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// Actions acciones registradas, en orden.
func (r *Audit) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

// Products catálogo por org.
type Products struct {
	mu    sync.RWMutex
	items map[string]entity.Product
}

var _ repository.ProductRepository = (*Products)(nil)

func NewProducts() *Products { return &Products{items: map[string]entity.Product{}} }

func (r *Products) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.items {
		if x.OrgID == p.OrgID && strings.EqualFold(x.SKU, p.SKU) {
			return domain.ErrDuplicate
		}
	}
	r.items[p.ID] = *p
	return nil
}

func (r *Products) GetByID(_ context.Context, orgID, id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok || p.OrgID != orgID {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *Products) Update(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.items[p.ID]
	if !ok || prev.OrgID != p.OrgID {
		return domain.ErrNotFound
	}
	for id, x := range r.items {
		if id != p.ID && x.OrgID == p.OrgID && strings.EqualFold(x.SKU, p.SKU) {
			return domain.ErrDuplicate
		}
	}
	r.items[p.ID] = *p
	return nil
}

func (r *Products) List(_ context.Context, orgID, search string, limit, offset int) ([]*entity.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(search)
	var all []*entity.Product
	for _, p := range r.items {
		if p.OrgID != orgID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.SKU+" "+p.Description), needle) {
			continue
		}
		p := p
		all = append(all, &p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r *Products) Delete(_ context.Context, orgID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.OrgID != orgID {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
