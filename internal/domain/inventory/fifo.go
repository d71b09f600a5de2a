package inventory

import (
	"sort"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SortFIFO ordena los lotes por fecha de entrada ascendente; empates por ID.
func SortFIFO(batches []*entity.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		return a.ID < b.ID
	})
}

// AllocateFIFO reparte qty entre los lotes con saldo, agotando el más antiguo antes del siguiente.
// Descuenta Quantity en los lotes recibidos; si el total no alcanza no toca ningún lote.
func AllocateFIFO(batches []*entity.Batch, qty decimal.Decimal) ([]entity.Allocation, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return nil, domain.Validation("cantidad debe ser positiva")
	}
	ordered := make([]*entity.Batch, 0, len(batches))
	total := decimal.Zero
	for _, b := range batches {
		if b.HasStock() {
			ordered = append(ordered, b)
			total = total.Add(b.Quantity)
		}
	}
	if total.LessThan(qty) {
		return nil, domain.ErrInsufficientStock
	}
	SortFIFO(ordered)

	remaining := qty
	allocs := make([]entity.Allocation, 0, 2)
	for _, b := range ordered {
		if remaining.IsZero() {
			break
		}
		take := decimal.Min(b.Quantity, remaining)
		b.Quantity = b.Quantity.Sub(take)
		remaining = remaining.Sub(take)
		allocs = append(allocs, entity.Allocation{BatchID: b.ID, Quantity: take, UnitCost: b.UnitCost})
	}
	return allocs, nil
}

// AllocatedCost suma qty·costo de las asignaciones.
func AllocatedCost(allocs []entity.Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		total = total.Add(a.Quantity.Mul(a.UnitCost))
	}
	return total
}
