package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio del motor de inventario (sin dependencias externas).
var (
	ErrValidation         = errors.New("entrada inválida")
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidState       = errors.New("estado inválido para la operación")
	ErrReservationExpired = errors.New("la reserva expiró")
	ErrConflict           = errors.New("conflicto con una operación concurrente")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrExternalDependency = errors.New("falla en un servicio externo")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrRateLimited        = errors.New("demasiadas solicitudes")

	// ErrConfirmationRequired es un error de validación: el ajuste supera el umbral y no fue confirmado.
	ErrConfirmationRequired = fmt.Errorf("%w: ajuste grande requiere confirmación", ErrValidation)
)

// Validation envuelve ErrValidation con el detalle del campo.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
