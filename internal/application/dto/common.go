package dto

import (
	"github.com/jhoicas/inventory-ledger/internal/domain"
)

// Límites de paginación del panel.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	MovementID string `json:"movement_id,omitempty"` // movimiento ya confirmado cuando falla un servicio externo
}

func required(name, v string) error {
	if v == "" {
		return domain.Validation("%s es obligatorio", name)
	}
	return nil
}

func validation(format string, args ...any) error {
	return domain.Validation(format, args...)
}
