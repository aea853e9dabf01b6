package calendar_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/calendar"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

func TestNormalizeSlug(t *testing.T) {
	assert.Equal(t, "mi-agenda", calendar.NormalizeSlug("  Mi   Agenda! "))
	assert.Equal(t, "ana2", calendar.NormalizeSlug("Ana_2"))
	assert.Len(t, calendar.NormalizeSlug(strings.Repeat("a", 80)), 48)
	assert.Equal(t, "", calendar.NormalizeSlug("¡¿!!"))
}

func TestNormalize_ValidaYAcota(t *testing.T) {
	s := entity.CalendarSettings{Slug: "Demo Slot", Days: []string{"Fri", "Mon", "Xyz"}, Start: "08:00", End: "12:30", Duration: 1000}
	require.NoError(t, calendar.Normalize(&s))
	assert.Equal(t, "demo-slot", s.Slug)
	assert.Equal(t, []string{"Mon", "Fri"}, s.Days, "días desconocidos se descartan y se ordenan")
	assert.Equal(t, calendar.MaxDuration, s.Duration)

	s.Duration = 1
	require.NoError(t, calendar.Normalize(&s))
	assert.Equal(t, calendar.MinDuration, s.Duration)
}

func TestNormalize_Errores(t *testing.T) {
	cases := map[string]entity.CalendarSettings{
		"slug vacío":     {Slug: "!!", Days: []string{"Mon"}, Start: "09:00", End: "10:00"},
		"sin días":       {Slug: "x", Days: nil, Start: "09:00", End: "10:00"},
		"hora inválida":  {Slug: "x", Days: []string{"Mon"}, Start: "9:00", End: "10:00"},
		"fin antes":      {Slug: "x", Days: []string{"Mon"}, Start: "10:00", End: "10:00"},
		"hora fuera 24h": {Slug: "x", Days: []string{"Mon"}, Start: "09:00", End: "24:00"},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			err := calendar.Normalize(&s)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSlots_DiaNoHabilitado(t *testing.T) {
	s := entity.DefaultCalendarSettings("o", "u")
	sat, err := calendar.ParseDate("2026-10-17", time.UTC) // sábado
	require.NoError(t, err)
	slots := calendar.Slots(s, sat, nil)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestSlots_ExcluyeOcupadosYTerminaEnFin(t *testing.T) {
	s := entity.CalendarSettings{Days: []string{"Mon"}, Start: "09:00", End: "11:10", Duration: 30}
	day, err := calendar.ParseDate("2026-10-19", time.UTC) // lunes
	require.NoError(t, err)

	at := func(hm string) time.Time {
		ts, err := time.Parse("2006-01-02 15:04", "2026-10-19 "+hm)
		require.NoError(t, err)
		return ts
	}
	meetings := []*entity.Meeting{
		{When: at("09:30"), DurationMinutes: 30},
		{When: at("10:15")}, // sin duración: usa 30
	}
	got := calendar.Slots(s, day, calendar.Busy(meetings, s.Duration))

	// 09:00 libre; 09:30 ocupado; 10:00 choca con 10:15-10:45; 10:30 choca; 11:00 no cabe antes de 11:10
	require.Len(t, got, 1)
	assert.Equal(t, at("09:00"), got[0])
}

func TestSlots_ContiguoNoEsConflicto(t *testing.T) {
	s := entity.CalendarSettings{Days: []string{"Mon"}, Start: "09:00", End: "10:00", Duration: 30}
	day, _ := calendar.ParseDate("2026-10-19", time.UTC)
	busy := []calendar.Interval{{From: day.Add(9 * time.Hour), To: day.Add(9*time.Hour + 30*time.Minute)}}
	got := calendar.Slots(s, day, busy)
	require.Len(t, got, 1)
	assert.Equal(t, day.Add(9*time.Hour+30*time.Minute), got[0])
}

func TestSlots_RespetaZonaHoraria(t *testing.T) {
	lagos, err := time.LoadLocation("Africa/Lagos")
	require.NoError(t, err)
	s := entity.CalendarSettings{Days: []string{"Mon"}, Start: "09:00", End: "09:30", Duration: 30}
	day, err := calendar.ParseDate("2026-10-19", lagos)
	require.NoError(t, err)
	got := calendar.Slots(s, day, nil)
	require.Len(t, got, 1)
	assert.Equal(t, 8, got[0].UTC().Hour(), "09:00 en Lagos (UTC+1) son las 08:00 UTC")
}

func TestBuildICS(t *testing.T) {
	when := time.Date(2026, 10, 20, 14, 0, 0, 0, time.UTC)
	m := &entity.Meeting{
		Tenant:          entity.Tenant{ID: "m1"},
		Title:           "Demo, producto; v2",
		When:            when,
		DurationMinutes: 45,
		Status:          "Scheduled",
		Notes:           "línea 1\nlínea 2",
		Attendees: []entity.Attendee{
			{Name: "Ada", Email: "ada@example.com", Response: "accepted"},
			{Email: "bob@example.com", Response: "needsAction"},
		},
	}
	ics := string(calendar.BuildICS(m, calendar.Organizer{Name: "Org", Email: "org@example.com"}, when))

	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, ics, "DTSTART:20261020T140000Z\r\n")
	assert.Contains(t, ics, "DTEND:20261020T144500Z\r\n")
	assert.Contains(t, ics, `SUMMARY:Demo\, producto\; v2`)
	assert.Contains(t, ics, `DESCRIPTION:línea 1\nlínea 2`)
	assert.Contains(t, ics, "ORGANIZER;CN=Org:MAILTO:org@example.com")
	assert.Contains(t, ics, "ATTENDEE;ROLE=REQ-PARTICIPANT;CN=Ada;PARTSTAT=ACCEPTED:MAILTO:ada@example.com")
	assert.Contains(t, ics, "PARTSTAT=NEEDS-ACTION;RSVP=TRUE:MAILTO:bob@example.com")
	assert.True(t, strings.HasSuffix(ics, "END:VCALENDAR\r\n"))
}
