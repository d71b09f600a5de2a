package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// Errores propios de la capa HTTP.
var (
	errInvalidBody = errors.New("cuerpo inválido")
	errForbidden   = errors.New("acceso denegado al recurso")
)

// publicError traduce un error del motor al esquema de la API pública.
// Todo lo que el canal puede corregir es BAD_REQUEST.
func publicError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL", "error interno"
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status, code, msg = fiber.StatusUnauthorized, "UNAUTHORIZED", err.Error()
	case errors.Is(err, domain.ErrRateLimited):
		status, code, msg = fiber.StatusTooManyRequests, "TOO_MANY_REQUESTS", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, code, msg = fiber.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, errInvalidBody),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrReservationExpired),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrDuplicate):
		status, code, msg = fiber.StatusBadRequest, "BAD_REQUEST", err.Error()
	default:
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// adminError traduce un error del motor al esquema del panel. movementID viaja en la
// respuesta cuando el inventario ya quedó confirmado y falló un servicio externo.
func adminError(c *fiber.Ctx, log *logger.Logger, err error, movementID string) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, errInvalidBody):
		status, code = fiber.StatusBadRequest, "INVALID_BODY"
	case errors.Is(err, domain.ErrConfirmationRequired):
		status, code = fiber.StatusBadRequest, "CONFIRMATION_REQUIRED"
	case errors.Is(err, domain.ErrValidation):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, errForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrReservationExpired):
		status, code = fiber.StatusConflict, "INVALID_STATE"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrExternalDependency):
		status, code = fiber.StatusBadGateway, "EXTERNAL_DEPENDENCY"
		log.Warn().Err(err).Str("movement_id", movementID).Str("path", c.Path()).Msg("servicio externo falló tras confirmar inventario")
	}
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg, MovementID: movementID})
}
