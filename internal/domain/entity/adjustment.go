package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de ajuste manual.
const (
	ReasonInventory  = "inventory"
	ReasonLoss       = "loss"
	ReasonDamage     = "damage"
	ReasonExpiry     = "expiry"
	ReasonReturn     = "return"
	ReasonCorrection = "correction"
	ReasonTransfer   = "transfer"
	ReasonSample     = "sample"
	ReasonTheft      = "theft"
	ReasonOther      = "other"
)

var adjustmentReasons = map[string]struct{}{
	ReasonInventory: {}, ReasonLoss: {}, ReasonDamage: {}, ReasonExpiry: {}, ReasonReturn: {},
	ReasonCorrection: {}, ReasonTransfer: {}, ReasonSample: {}, ReasonTheft: {}, ReasonOther: {},
}

// ValidAdjustmentReason indica si el motivo pertenece al enumerado.
func ValidAdjustmentReason(r string) bool {
	_, ok := adjustmentReasons[r]
	return ok
}

// Adjustment envuelve el movimiento de ajuste con su justificación y el porcentaje auditado.
type Adjustment struct {
	ID            string
	MovementID    string
	ProductID     string
	StoreID       string
	Quantity      decimal.Decimal // con signo
	Reason        string
	Notes         string
	UnitCost      *decimal.Decimal
	PreviousStock decimal.Decimal
	Percentage    decimal.Decimal
	IsLarge       bool
	Confirmed     bool
	Actor         string
	CreatedAt     time.Time
}
