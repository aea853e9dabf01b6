package entity

import (
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"
)

// Valores por defecto de una organización nueva.
const (
	DefaultTimezone = "Africa/Lagos"
	DefaultLocale   = "en-NG"
)

// Org representa una organización/tenant del CRM.
type Org struct {
	ID        string
	Name      string
	OwnerID   string
	LogoURL   string
	Domain    string // normalizado: sin protocolo, ruta, puerto ni www.
	Plan      string // free, pro, enterprise
	Timezone  string
	Locale    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	reScheme  = regexp.MustCompile(`^https?://`)
	reDomain  = regexp.MustCompile(`^[a-z0-9-]+(\.[a-z0-9-]+)+$`)
	rePathEtc = regexp.MustCompile(`[/:].*$`)
)

// NormalizeDomain "https://www.Acme.com:8080/x" -> "acme.com".
func NormalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = reScheme.ReplaceAllString(d, "")
	d = rePathEtc.ReplaceAllString(d, "")
	return strings.TrimPrefix(d, "www.")
}

// ValidDomain valida un dominio ya normalizado.
func ValidDomain(d string) bool { return reDomain.MatchString(d) }

// Location devuelve la zona horaria de la org; UTC si no se reconoce.
func (o *Org) Location() *time.Location {
	if o == nil || o.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
