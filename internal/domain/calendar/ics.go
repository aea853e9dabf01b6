package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

const crlf = "\r\n"

var icsEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`, ";", `\;`, "\n", `\n`)

func icsEscape(s string) string { return icsEscaper.Replace(s) }

func icsTime(t time.Time) string { return t.UTC().Format("20060102T150405Z") }

// Organizer datos del organizador del evento.
type Organizer struct {
	Name  string
	Email string
}

// BuildICS genera un VCALENDAR con un VEVENT para la reunión (METHOD:REQUEST).
func BuildICS(m *entity.Meeting, org Organizer, now time.Time) []byte {
	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(fmt.Sprintf(format, args...))
		b.WriteString(crlf)
	}
	line("BEGIN:VCALENDAR")
	line("PRODID:-//CRM API//Meeting//EN")
	line("VERSION:2.0")
	line("METHOD:REQUEST")
	line("CALSCALE:GREGORIAN")
	line("BEGIN:VEVENT")
	line("UID:%s", icsEscape(m.ID+"@crm"))
	line("DTSTAMP:%s", icsTime(now))
	line("DTSTART:%s", icsTime(m.When))
	line("DTEND:%s", icsTime(m.End()))
	line("SUMMARY:%s", icsEscape(m.Title))
	if m.Location != "" {
		line("LOCATION:%s", icsEscape(m.Location))
	}
	if m.Notes != "" {
		line("DESCRIPTION:%s", icsEscape(m.Notes))
	}
	line("STATUS:%s", icsStatus(m.Status))
	if org.Email != "" {
		cn := ""
		if org.Name != "" {
			cn = ";CN=" + icsEscape(org.Name)
		}
		line("ORGANIZER%s:MAILTO:%s", cn, icsEscape(org.Email))
	}
	for _, a := range m.Attendees {
		if a.Email == "" {
			continue
		}
		cn := ""
		if a.Name != "" {
			cn = ";CN=" + icsEscape(a.Name)
		}
		ps := partStat(a.Response)
		rsvp := ""
		if ps == "NEEDS-ACTION" {
			rsvp = ";RSVP=TRUE"
		}
		line("ATTENDEE;ROLE=REQ-PARTICIPANT%s;PARTSTAT=%s%s:MAILTO:%s", cn, ps, rsvp, icsEscape(a.Email))
	}
	line("END:VEVENT")
	line("END:VCALENDAR")
	return []byte(b.String())
}

func partStat(resp string) string {
	switch resp {
	case "accepted":
		return "ACCEPTED"
	case "declined":
		return "DECLINED"
	case "tentative":
		return "TENTATIVE"
	}
	return "NEEDS-ACTION"
}

func icsStatus(s string) string {
	if s == "Cancelled" {
		return "CANCELLED"
	}
	return "CONFIRMED"
}
