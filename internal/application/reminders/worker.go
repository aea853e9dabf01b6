// Package reminders despacha los recordatorios de reuniones vencidos.
package reminders

import (
	"context"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/repository"
	"github.com/jhoicas/crm-api/pkg/logger"
)

// Ventanas de la consulta de recordatorios.
const (
	Lookahead = 15 * time.Second
	Grace     = 5 * time.Minute
	BatchSize = 50
)

// Notifier recibe un aviso por destinatario; nil = sólo log.
type Notifier interface {
	ReminderSent()
}

// Worker consulta periódicamente las reuniones con recordatorio pendiente.
type Worker struct {
	meetings repository.MeetingRepository
	interval time.Duration
	log      *logger.Logger
	notify   Notifier
	now      func() time.Time
}

// NewWorker interval <= 0 usa un minuto.
func NewWorker(meetings repository.MeetingRepository, interval time.Duration, log *logger.Logger, notify Notifier) *Worker {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Worker{
		meetings: meetings,
		interval: interval,
		log:      log.Component("reminders"),
		notify:   notify,
		now:      time.Now,
	}
}

// Run bloquea hasta que ctx se cancela.
func (w *Worker) Run(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	w.log.Info().Dur("interval", w.interval).Msg("worker de recordatorios iniciado")
	for {
		if _, err := w.Tick(ctx); err != nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("recordatorios: consulta fallida")
		}
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker de recordatorios detenido")
			return
		case <-t.C:
		}
	}
}

// Tick procesa un lote y devuelve cuántos avisos registró.
func (w *Worker) Tick(ctx context.Context) (int, error) {
	now := w.now().UTC()
	due, err := w.meetings.DueReminders(ctx, now.Add(Lookahead), now.Add(-Grace), BatchSize)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, m := range due {
		for _, a := range m.Attendees {
			if a.Email == "" {
				continue
			}
			w.log.Info().
				Str("meeting_id", m.ID).
				Str("org_id", m.OrgID).
				Str("to", a.Email).
				Time("when", m.When).
				Str("title", m.Title).
				Msg("recordatorio de reunión")
			if w.notify != nil {
				w.notify.ReminderSent()
			}
			sent++
		}
		if err := w.meetings.ClearReminder(ctx, m.ID); err != nil {
			w.log.Warn().Err(err).Str("meeting_id", m.ID).Msg("recordatorios: no se pudo limpiar")
		}
	}
	return sent, nil
}
