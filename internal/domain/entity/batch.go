package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados de un lote.
const (
	BatchStatusActive   = "active"
	BatchStatusDepleted = "depleted"
	BatchStatusExpired  = "expired"
)

// Batch representa un lote recibido: cantidad restante, costo unitario y fechas.
// Nunca se elimina; se agota o se lee como vencido por fecha.
type Batch struct {
	ID              string
	ProductID       string
	StoreID         string
	BatchNumber     string
	Quantity        decimal.Decimal // restante, 0 <= Quantity <= InitialQuantity
	InitialQuantity decimal.Decimal
	UnitCost        decimal.Decimal
	EntryDate       time.Time
	ExpiryDate      *time.Time
	Supplier        string
	MovementID      string // movimiento de entrada que lo creó
	CreatedAt       time.Time
}

// HasStock indica si el lote aún tiene cantidad consumible.
func (b *Batch) HasStock() bool {
	return b.Quantity.GreaterThan(decimal.Zero)
}
