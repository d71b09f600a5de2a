package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BatchFilter criterios de listado de lotes.
type BatchFilter struct {
	ProductID      string
	StoreID        string
	OnlyActive     bool       // solo lotes con saldo
	ExpiringBefore *time.Time // solo lotes con vencimiento <= fecha
}

// BatchRepository define el puerto de persistencia de lotes.
// GetByID devuelve (nil, nil) si no existe.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	// ListAvailableForUpdate devuelve los lotes con saldo del par en orden FIFO, bloqueados.
	ListAvailableForUpdate(ctx context.Context, productID, storeID string) ([]*entity.Batch, error)
	UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal) error
	List(ctx context.Context, f BatchFilter) ([]*entity.Batch, error)
	ExistsNumber(ctx context.Context, productID, storeID, batchNumber string) (bool, error)
}
