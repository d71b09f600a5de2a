package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementEntry       = "entry"
	MovementExit        = "exit"
	MovementAdjustment  = "adjustment"
	MovementSale        = "sale"
	MovementTransferIn  = "transfer_in"
	MovementTransferOut = "transfer_out"
)

// ValidMovementType indica si el tipo es conocido.
func ValidMovementType(t string) bool {
	switch t {
	case MovementEntry, MovementExit, MovementAdjustment, MovementSale, MovementTransferIn, MovementTransferOut:
		return true
	}
	return false
}

// StockMovement es una entrada inmutable del libro: nunca se edita ni se borra.
type StockMovement struct {
	ID              string
	ProductID       string
	StoreID         string
	Type            string
	Quantity        decimal.Decimal  // con signo: positivo entra, negativo sale
	UnitCost        *decimal.Decimal // costo unitario realizado o de entrada
	TotalCost       decimal.Decimal
	ValuationMethod string // método vigente al crear el movimiento
	Reason          string
	Notes           string
	Actor           string
	Reference       string // reserva, pedido, traslado o ajuste que lo originó
	CreatedAt       time.Time
	Allocations     []Allocation
}

// Allocation registra cuánto se tomó de un lote en una salida.
type Allocation struct {
	MovementID string
	BatchID    string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
}

// AllocationTrace es una asignación con los datos del movimiento, para trazabilidad de lotes.
type AllocationTrace struct {
	Allocation
	MovementType string
	Reference    string
	Actor        string
	CreatedAt    time.Time
}
