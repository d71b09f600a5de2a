package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva. Todos salvo active son terminales.
const (
	ReservationActive    = "active"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationExpired   = "expired"
)

// Reservation retiene stock disponible para un canal externo durante un TTL fijo.
type Reservation struct {
	ID              string
	ProductID       string
	StoreID         string
	Quantity        decimal.Decimal
	ExternalOrderID string
	Channel         string // huella de la clave del canal que la creó
	State           string
	CreatedAt       time.Time
	ExpiresAt       time.Time
	ResolvedAt      *time.Time
	MovementID      string // venta generada al confirmar
}

// IsActive indica si la reserva sigue reteniendo stock.
func (r *Reservation) IsActive() bool { return r.State == ReservationActive }

// Overdue indica si una reserva activa ya pasó su expiresAt.
func (r *Reservation) Overdue(now time.Time) bool {
	return r.IsActive() && !now.Before(r.ExpiresAt)
}
