package entity

import "time"

// Métodos de valoración de inventario por tienda.
const (
	ValuationFIFO        = "fifo"
	ValuationAverageCost = "average_cost"
)

// Regímenes tributarios admitidos (código CRT del emisor).
const (
	TaxRegimeSimples        = "simples_nacional"
	TaxRegimeSimplesExcesso = "simples_nacional_excesso"
	TaxRegimeNormal         = "regime_normal"
)

// Store representa una tienda con stock, lotes y política de valoración propios.
type Store struct {
	ID                string
	Name              string
	TaxID             string // CNPJ
	StateRegistration string
	ValuationMethod   string
	TaxRegime         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ValidValuationMethod indica si el método es conocido.
func ValidValuationMethod(m string) bool {
	return m == ValuationFIFO || m == ValuationAverageCost
}

// ValidTaxRegime indica si el régimen es conocido.
func ValidTaxRegime(r string) bool {
	switch r {
	case TaxRegimeSimples, TaxRegimeSimplesExcesso, TaxRegimeNormal:
		return true
	}
	return false
}
