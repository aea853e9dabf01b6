// Package metrics expone contadores Prometheus del API en /metrics.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics registro propio (no el global) con las métricas del proceso.
type Metrics struct {
	reg       *prometheus.Registry
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	reminders prometheus.Counter
}

// New prefix se antepone a cada nombre ("crm_" -> crm_http_requests_total).
func New(prefix string) *Metrics {
	prefix = strings.TrimSuffix(prefix, "_")
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y estado.",
		}, []string{"method", "route", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reminders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "meeting_reminders_total",
			Help:      "Recordatorios de reuniones despachados.",
		}),
	}
	m.reg.MustRegister(
		m.requests, m.durations, m.reminders,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry para pruebas o registrar colectores adicionales.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Middleware cuenta cada petición con la ruta declarada (no la URL) para acotar la cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < 400 {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		}
		method := c.Method()
		m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.durations.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone el registro en formato de texto.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))
}

// ReminderSent lo llama el worker de recordatorios.
func (m *Metrics) ReminderSent() { m.reminders.Inc() }
