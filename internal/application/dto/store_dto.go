package dto

import (
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// UpsertStoreRequest alta o reemplazo de una tienda.
type UpsertStoreRequest struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	TaxID             string `json:"tax_id"`
	StateRegistration string `json:"state_registration"`
	ValuationMethod   string `json:"valuation_method"`
	TaxRegime         string `json:"tax_regime"`
}

// Validate valida la entrada; método y régimen vacíos toman el valor por defecto.
func (r UpsertStoreRequest) Validate() error {
	if err := required("id", r.ID); err != nil {
		return err
	}
	if err := required("name", r.Name); err != nil {
		return err
	}
	if r.ValuationMethod != "" && !entity.ValidValuationMethod(r.ValuationMethod) {
		return validation("valuation_method desconocido %q", r.ValuationMethod)
	}
	if r.TaxRegime != "" && !entity.ValidTaxRegime(r.TaxRegime) {
		return validation("tax_regime desconocido %q", r.TaxRegime)
	}
	return nil
}

// UpdateStoreSettingsRequest body de PUT /api/admin/stores/:id/settings.
type UpdateStoreSettingsRequest struct {
	ValuationMethod *string `json:"valuation_method"`
	TaxRegime       *string `json:"tax_regime"`
}

// Validate exige al menos un campo.
func (r UpdateStoreSettingsRequest) Validate() error {
	if r.ValuationMethod == nil && r.TaxRegime == nil {
		return validation("sin cambios: valuation_method o tax_regime")
	}
	return nil
}

// StoreResponse salida de una tienda.
type StoreResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	TaxID             string    `json:"tax_id"`
	StateRegistration string    `json:"state_registration"`
	ValuationMethod   string    `json:"valuation_method"`
	TaxRegime         string    `json:"tax_regime"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// StoreListResponse lista de tiendas.
type StoreListResponse struct {
	Items []StoreResponse `json:"items"`
}

// ToStoreResponse mapea la entidad.
func ToStoreResponse(s *entity.Store) *StoreResponse {
	if s == nil {
		return nil
	}
	return &StoreResponse{
		ID:                s.ID,
		Name:              s.Name,
		TaxID:             s.TaxID,
		StateRegistration: s.StateRegistration,
		ValuationMethod:   s.ValuationMethod,
		TaxRegime:         s.TaxRegime,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
