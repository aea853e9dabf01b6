// Package calendar calcula disponibilidad y valida la configuración de reservas.
package calendar

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// Límites de duración de un slot en minutos.
const (
	MinDuration = 5
	MaxDuration = 240
	maxSlugLen  = 48
)

var (
	reHHMM     = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	reSpaces   = regexp.MustCompile(`\s+`)
	reSlugJunk = regexp.MustCompile(`[^a-z0-9-]`)
)

// Interval rango semiabierto [From, To).
type Interval struct {
	From time.Time
	To   time.Time
}

// Overlaps indica si dos intervalos se solapan; los que sólo se tocan no cuentan.
func (i Interval) Overlaps(o Interval) bool {
	return i.From.Before(o.To) && o.From.Before(i.To)
}

// NormalizeSlug "  Mi Agenda! " -> "mi-agenda".
func NormalizeSlug(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = reSpaces.ReplaceAllString(s, "-")
	s = reSlugJunk.ReplaceAllString(s, "")
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}
	return s
}

// ValidHHMM hora 24h "HH:MM".
func ValidHHMM(s string) bool { return reHHMM.MatchString(s) }

func minutes(hm string) int {
	h, _ := strconv.Atoi(hm[:2])
	m, _ := strconv.Atoi(hm[3:])
	return h*60 + m
}

// Normalize valida y normaliza s en sitio: slug, días, horario y duración (acotada a [5,240]).
func Normalize(s *entity.CalendarSettings) error {
	s.Slug = NormalizeSlug(s.Slug)
	if s.Slug == "" {
		return domain.Invalid("slug", "es requerido (letras, números y guiones)")
	}
	days := make([]string, 0, len(s.Days))
	for _, d := range entity.WeekDays {
		if slices.Contains(s.Days, d) {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return domain.Invalid("days", "elige al menos un día")
	}
	s.Days = days
	if !ValidHHMM(s.Start) || !ValidHHMM(s.End) {
		return domain.Invalid("start", "las horas deben tener formato HH:MM (24h)")
	}
	if minutes(s.Start) >= minutes(s.End) {
		return domain.Invalid("end", "la hora de fin debe ser posterior al inicio")
	}
	s.Duration = max(MinDuration, min(MaxDuration, s.Duration))
	return nil
}

func weekDay(t time.Time) string {
	return [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}[t.Weekday()]
}

// ParseDate interpreta "YYYY-MM-DD" como medianoche en loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, domain.Invalid("date", "es requerido (YYYY-MM-DD)")
	}
	return d, nil
}

// Window ventana de atención del día; ok=false si el día no está habilitado.
func Window(s entity.CalendarSettings, day time.Time) (Interval, bool) {
	if !slices.Contains(s.Days, weekDay(day)) {
		return Interval{}, false
	}
	y, m, d := day.Date()
	base := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return Interval{
		From: base.Add(time.Duration(minutes(s.Start)) * time.Minute),
		To:   base.Add(time.Duration(minutes(s.End)) * time.Minute),
	}, true
}

// Slots devuelve los inicios libres del día: pasos de s.Duration desde el inicio de la ventana,
// sin solaparse con busy y terminando dentro de la ventana.
func Slots(s entity.CalendarSettings, day time.Time, busy []Interval) []time.Time {
	out := []time.Time{}
	win, ok := Window(s, day)
	if !ok || s.Duration <= 0 {
		return out
	}
	step := time.Duration(s.Duration) * time.Minute
	for t := win.From; t.Before(win.To); t = t.Add(step) {
		slot := Interval{From: t, To: t.Add(step)}
		if slot.To.After(win.To) {
			break
		}
		free := true
		for _, b := range busy {
			if slot.Overlaps(b) {
				free = false
				break
			}
		}
		if free {
			out = append(out, t)
		}
	}
	return out
}

// Busy convierte reuniones en intervalos ocupados; sin duración usa fallback minutos.
func Busy(meetings []*entity.Meeting, fallback int) []Interval {
	if fallback <= 0 {
		fallback = entity.DefaultMeetingMinutes
	}
	out := make([]Interval, 0, len(meetings))
	for _, m := range meetings {
		d := m.DurationMinutes
		if d <= 0 {
			d = fallback
		}
		out = append(out, Interval{From: m.When, To: m.When.Add(time.Duration(d) * time.Minute)})
	}
	return out
}
