package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/pkg/logger"
)

// RequestLogger registra método, ruta, estado, latencia y, si hay sesión, org y usuario.
func RequestLogger(log *logger.Logger) fiber.Handler {
	log = log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _ = errorStatus(err)
		}
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev = ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP())
		if p := GetPrincipal(c); p.UserID != "" {
			ev = ev.Str("org_id", p.OrgID).Str("user_id", p.UserID)
		}
		ev.Msg("request")
		return err
	}
}
