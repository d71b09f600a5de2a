package inventory

import (
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CostScale decimales usados para costos unitarios derivados.
const CostScale = 4

// WeightedAverage implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Un stock actual negativo o nulo se trata como cero: el promedio arranca en el costo de entrada.
func WeightedAverage(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	if stockActual.LessThan(decimal.Zero) {
		stockActual = decimal.Zero
	}
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(CostScale)
}

// AverageOfBatches calcula el costo medio de los lotes con saldo (Σqty·costo / Σqty).
// Se usa al pasar una tienda a average_cost.
func AverageOfBatches(batches []*entity.Batch) decimal.Decimal {
	qty := decimal.Zero
	value := decimal.Zero
	for _, b := range batches {
		if !b.HasStock() {
			continue
		}
		qty = qty.Add(b.Quantity)
		value = value.Add(b.Quantity.Mul(b.UnitCost))
	}
	if qty.IsZero() {
		return decimal.Zero
	}
	return value.Div(qty).Round(CostScale)
}
