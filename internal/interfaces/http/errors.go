package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/pkg/logger"
)

// errorStatus código HTTP y código de error de un error de dominio.
func errorStatus(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, codeFor(fe.Code)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInviteInvalid):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrLastAdmin):
		return fiber.StatusBadRequest, "LAST_ADMIN"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, "EMAIL_EXISTS"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

func codeFor(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusRequestEntityTooLarge:
		return "TOO_LARGE"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	if status >= 500 {
		return "INTERNAL"
	}
	return "ERROR"
}

// respondError escribe dto.ErrorResponse con el estado que corresponde a err.
// Los 500 no exponen el mensaje interno.
func respondError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno del servidor"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// ErrorHandler manejador central de Fiber: registra los 5xx y responde con dto.ErrorResponse.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		if status, _ := errorStatus(err); status >= 500 {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("error no controlado")
		}
		return respondError(c, err)
	}
}

func badBody() error {
	return domain.Invalid("body", "cuerpo inválido")
}
