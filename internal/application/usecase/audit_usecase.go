package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
	"github.com/jhoicas/crm-api/pkg/logger"
)

// Auditor registra eventos de auditoría; nunca falla la operación que lo invoca.
type Auditor interface {
	Record(ctx context.Context, p acl.Principal, action, target string, meta map[string]any)
}

type clientKey struct{}

// Client origen de la petición (IP y user agent) para auditoría.
type Client struct {
	IP string
	UA string
}

// WithClient guarda el origen de la petición en el contexto.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFrom origen guardado con WithClient (vacío si no hay).
func ClientFrom(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}

// AuditUseCase escribe y consulta la bitácora de la org.
type AuditUseCase struct {
	repo repository.AuditRepository
	log  *logger.Logger
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repo repository.AuditRepository, log *logger.Logger) *AuditUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditUseCase{repo: repo, log: log.Component("audit")}
}

// Record persiste el evento. Sin org no registra; los errores sólo se loguean.
func (uc *AuditUseCase) Record(ctx context.Context, p acl.Principal, action, target string, meta map[string]any) {
	if p.OrgID == "" {
		return
	}
	c := ClientFrom(ctx)
	actor := (&entity.User{Name: p.Name, Email: p.Email, Username: p.UserID}).DisplayName()
	ev := &entity.AuditEvent{
		ID:        uuid.New().String(),
		OrgID:     p.OrgID,
		ActorID:   p.UserID,
		Actor:     actor,
		Action:    action,
		Target:    target,
		Meta:      meta,
		IP:        c.IP,
		UA:        c.UA,
		CreatedAt: time.Now().UTC(),
	}
	// sobrevive a la cancelación de la petición
	if err := uc.repo.Insert(context.WithoutCancel(ctx), ev); err != nil {
		uc.log.Warn().Err(err).Str("action", action).Str("org_id", p.OrgID).Msg("no se pudo registrar auditoría")
	}
}

// Límites de GET /api/audit.
const (
	auditDefaultLimit = 100
	auditMaxLimit     = 500
)

// List eventos de la org (más recientes primero, sólo admin); limit acotado a [1, 500].
func (uc *AuditUseCase) List(ctx context.Context, p acl.Principal, q string, from, to *time.Time, limit int) ([]dto.AuditRow, error) {
	if !acl.IsAdmin(p) {
		return nil, domain.ErrForbidden
	}
	switch {
	case limit <= 0:
		limit = auditDefaultLimit
	case limit > auditMaxLimit:
		limit = auditMaxLimit
	}
	events, err := uc.repo.List(ctx, repository.AuditQuery{
		OrgID: p.OrgID,
		Q:     strings.TrimSpace(q),
		From:  from,
		To:    to,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	rows := make([]dto.AuditRow, 0, len(events))
	for _, ev := range events {
		meta := ev.Meta
		if meta == nil {
			meta = map[string]any{}
		}
		rows = append(rows, dto.AuditRow{
			ID: ev.ID, When: ev.CreatedAt, Actor: ev.Actor, Action: ev.Action, Target: ev.Target, Meta: meta,
		})
	}
	return rows, nil
}
