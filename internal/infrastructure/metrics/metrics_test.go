package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CuentaPorRuta(t *testing.T) {
	m := New("crm_")
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/leads/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/api/boom", func(c *fiber.Ctx) error { return fiber.ErrConflict })
	app.Get("/metrics", m.Handler())

	for _, path := range []string{"/api/leads/1", "/api/leads/2", "/api/boom"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/leads/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/boom", "409")))

	m.ReminderSent()
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `crm_http_requests_total{method="GET",route="/api/leads/:id",status="200"} 2`)
	assert.Contains(t, string(body), "crm_meeting_reminders_total 1")
}
