package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/crm-api/internal/domain"
)

// mapError traduce errores de PostgreSQL a errores de dominio.
// notFound se devuelve cuando la consulta no produjo filas.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, pgErr.ConstraintName)
	case pgerrcode.ForeignKeyViolation, pgerrcode.CheckViolation, pgerrcode.NotNullViolation,
		pgerrcode.InvalidTextRepresentation, pgerrcode.StringDataRightTruncationDataException:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.Message)
	}
	return fmt.Errorf("postgres error [%s]: %s: %w", pgErr.Code, pgErr.Message, err)
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// validID evita enviar a columnas UUID valores que PostgreSQL rechazaría.
func validID(id string) bool { return uuid.Validate(id) == nil }
