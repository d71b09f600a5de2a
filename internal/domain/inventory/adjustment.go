package inventory

import "github.com/shopspring/decimal"

// LargeAdjustmentPct umbral (en %) a partir del cual un ajuste exige confirmación explícita.
var LargeAdjustmentPct = decimal.NewFromInt(10)

var hundred = decimal.NewFromInt(100)

// AdjustmentPercentage devuelve |qty| / stock * 100 con dos decimales.
// Con stock cero o negativo cualquier ajuste vale 100%.
func AdjustmentPercentage(qty, currentStock decimal.Decimal) decimal.Decimal {
	if !currentStock.GreaterThan(decimal.Zero) {
		return hundred
	}
	return qty.Abs().Div(currentStock).Mul(hundred).Round(2)
}

// IsLargeAdjustment indica si el porcentaje supera el umbral.
func IsLargeAdjustment(pct decimal.Decimal) bool {
	return pct.GreaterThan(LargeAdjustmentPct)
}
