package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// StockFilter criterios para listar saldos.
type StockFilter struct {
	ProductID string
	StoreID   string
	OnlyLow   bool // solo filas con MinStock > 0 y Quantity < MinStock
}

// StockRepository define el puerto para consultar/actualizar el saldo por producto+tienda.
// Get y GetForUpdate devuelven un saldo en cero si la fila no existe.
type StockRepository interface {
	Get(ctx context.Context, productID, storeID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila (creándola si hace falta) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, productID, storeID string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	List(ctx context.Context, f StockFilter) ([]*entity.Stock, error)
}
