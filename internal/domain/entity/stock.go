package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock representa el saldo materializado de un producto en una tienda.
// Quantity == suma de lotes con cantidad; Reserved == suma de reservas activas.
type Stock struct {
	ProductID   string
	StoreID     string
	Quantity    decimal.Decimal
	Reserved    decimal.Decimal
	AverageCost decimal.Decimal // solo significativo en tiendas average_cost
	MinStock    decimal.Decimal
	MaxStock    decimal.Decimal
	UpdatedAt   time.Time
}

// Available devuelve stock - reservado.
func (s *Stock) Available() decimal.Decimal {
	return s.Quantity.Sub(s.Reserved)
}

// IsLow indica si hay mínimo configurado y el stock quedó por debajo.
func (s *Stock) IsLow() bool {
	return s.MinStock.GreaterThan(decimal.Zero) && s.Quantity.LessThan(s.MinStock)
}
