package dto

import (
	"github.com/shopspring/decimal"
)

// MaxCatalogLimit tope del listado público de productos.
const MaxCatalogLimit = 100

// ProductStockResponse foto de stock de un producto en una tienda.
type ProductStockResponse struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	Price     int64           `json:"price"`
	Barcode   string          `json:"barcode,omitempty"`
	StoreID   string          `json:"storeId"`
	StoreName string          `json:"storeName"`
	Stock     decimal.Decimal `json:"stock"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
}

// UpsertProductRequest alta o reemplazo de un producto (seed y sincronización del catálogo).
type UpsertProductRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	Price    int64  `json:"price"`
	Active   *bool  `json:"active"`
	Barcode  string `json:"barcode"`
}

// Validate valida la entrada.
func (r UpsertProductRequest) Validate() error {
	if err := required("id", r.ID); err != nil {
		return err
	}
	if err := required("name", r.Name); err != nil {
		return err
	}
	if r.Price < 0 {
		return validation("price no puede ser negativo")
	}
	return nil
}
