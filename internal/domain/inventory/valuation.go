package inventory

import (
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ValuationPolicy decide el costo reportado de una salida y cómo una entrada mueve el costo base.
// La asignación física es siempre FIFO; solo cambia el costo.
type ValuationPolicy interface {
	Method() string
	// RealizedCost devuelve costo unitario y total de una salida ya asignada.
	RealizedCost(allocs []entity.Allocation, qty, average decimal.Decimal) (unit, total decimal.Decimal)
	// OnReceipt devuelve el nuevo costo promedio tras una entrada.
	OnReceipt(stockQty, average, inQty, inCost decimal.Decimal) decimal.Decimal
}

// FIFOPolicy costea cada salida con los lotes efectivamente consumidos.
type FIFOPolicy struct{}

func (FIFOPolicy) Method() string { return entity.ValuationFIFO }

func (FIFOPolicy) RealizedCost(allocs []entity.Allocation, qty, _ decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	total := AllocatedCost(allocs)
	if qty.IsZero() {
		return decimal.Zero, total
	}
	return total.Div(qty).Round(CostScale), total
}

// OnReceipt no mantiene promedio en FIFO; se siembra al cambiar de método.
func (FIFOPolicy) OnReceipt(_, average, _, _ decimal.Decimal) decimal.Decimal { return average }

// AverageCostPolicy costea cada salida al promedio vigente de la tienda.
type AverageCostPolicy struct{}

func (AverageCostPolicy) Method() string { return entity.ValuationAverageCost }

func (AverageCostPolicy) RealizedCost(_ []entity.Allocation, qty, average decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	return average, qty.Mul(average)
}

func (AverageCostPolicy) OnReceipt(stockQty, average, inQty, inCost decimal.Decimal) decimal.Decimal {
	return WeightedAverage(stockQty, average, inQty, inCost)
}

// PolicyFor devuelve la política del método; valores desconocidos caen en FIFO.
func PolicyFor(method string) ValuationPolicy {
	if method == entity.ValuationAverageCost {
		return AverageCostPolicy{}
	}
	return FIFOPolicy{}
}
