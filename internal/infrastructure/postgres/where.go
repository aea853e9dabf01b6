package postgres

import (
	"strconv"
	"strings"
)

// Where acumula condiciones AND con placeholders "?" que se numeran como $n al generar el SQL.
type Where struct {
	conds []string
	args  []any
}

// Add agrega una condición; cada "?" consume un argumento en orden.
func (w *Where) Add(cond string, args ...any) {
	var b strings.Builder
	i := 0
	for _, r := range cond {
		if r == '?' && i < len(args) {
			w.args = append(w.args, args[i])
			b.WriteString("$" + strconv.Itoa(len(w.args)))
			i++
			continue
		}
		b.WriteRune(r)
	}
	w.conds = append(w.conds, b.String())
}

// Arg registra un argumento suelto (LIMIT, OFFSET, SET...) y devuelve su placeholder.
func (w *Where) Arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

// SQL " WHERE a AND b" o "" si no hay condiciones.
func (w *Where) SQL() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// Args argumentos en el orden de los placeholders.
func (w *Where) Args() []any { return w.args }

// likePattern "%texto%" con los comodines de LIKE escapados.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
