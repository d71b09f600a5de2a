package dto

import (
	"time"
	"unicode/utf8"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/shopspring/decimal"
)

// Esquema v1 de la API pública de canales. Los nombres JSON van en camelCase.

// MaxOrderIDLength largo máximo del identificador de pedido del canal.
const MaxOrderIDLength = 100

// StoreAvailabilityResponse disponibilidad en una tienda.
type StoreAvailabilityResponse struct {
	StoreID   string          `json:"storeId"`
	StoreName string          `json:"storeName"`
	Stock     decimal.Decimal `json:"stock"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
}

// AvailabilityResponse respuesta de GET /api/public/v1/availability/:product_id.
type AvailabilityResponse struct {
	ProductID   string                      `json:"productId"`
	ProductName string                      `json:"productName"`
	Stock       decimal.Decimal             `json:"stock"`
	Reserved    decimal.Decimal             `json:"reserved"`
	Available   decimal.Decimal             `json:"available"`
	IsAvailable bool                        `json:"isAvailable"`
	Stores      []StoreAvailabilityResponse `json:"stores"`
}

// ToAvailabilityResponse mapea la foto de disponibilidad.
func ToAvailabilityResponse(a *inventory.Availability) AvailabilityResponse {
	out := AvailabilityResponse{
		ProductID:   a.Product.ID,
		ProductName: a.Product.Name,
		Stock:       a.Stock,
		Reserved:    a.Reserved,
		Available:   a.Available,
		IsAvailable: a.IsAvailable,
		Stores:      make([]StoreAvailabilityResponse, 0, len(a.Stores)),
	}
	for _, s := range a.Stores {
		out.Stores = append(out.Stores, StoreAvailabilityResponse{
			StoreID:   s.StoreID,
			StoreName: s.StoreName,
			Stock:     s.Stock,
			Reserved:  s.Reserved,
			Available: s.Available,
		})
	}
	return out
}

// CreateReservationRequest body de POST /api/public/v1/reservations.
type CreateReservationRequest struct {
	ProductID       string          `json:"productId"`
	StoreID         string          `json:"storeId"`
	Quantity        decimal.Decimal `json:"quantity"`
	ExternalOrderID string          `json:"externalOrderId,omitempty"`
}

// Validate valida la entrada.
func (r CreateReservationRequest) Validate() error {
	if err := required("productId", r.ProductID); err != nil {
		return err
	}
	if err := required("storeId", r.StoreID); err != nil {
		return err
	}
	if !r.Quantity.GreaterThan(decimal.Zero) {
		return validation("quantity debe ser mayor que cero")
	}
	return orderID("externalOrderId", r.ExternalOrderID)
}

// ReservationResponse reserva creada. expiresIn en segundos.
type ReservationResponse struct {
	ReservationID string    `json:"reservationId"`
	ExpiresAt     time.Time `json:"expiresAt"`
	ExpiresIn     int       `json:"expiresIn"`
}

// ConfirmSaleRequest body opcional de POST /api/public/v1/reservations/:id/confirm.
type ConfirmSaleRequest struct {
	OrderID string `json:"orderId,omitempty"`
}

// Validate valida la entrada; el cuerpo vacío es válido.
func (r ConfirmSaleRequest) Validate() error {
	return orderID("orderId", r.OrderID)
}

func orderID(name, v string) error {
	if utf8.RuneCountInString(v) > MaxOrderIDLength {
		return validation("%s admite hasta %d caracteres", name, MaxOrderIDLength)
	}
	return nil
}

// ConfirmSaleResponse venta confirmada.
type ConfirmSaleResponse struct {
	Success    bool   `json:"success"`
	MovementID string `json:"movementId"`
}

// SuccessResponse respuesta sin datos.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ProductListResponse listado público de productos con stock por tienda.
type ProductListResponse struct {
	Items []ProductStockResponse `json:"items"`
	Total int                    `json:"total"`
}
