package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// AdjustmentFilter criterios de listado de ajustes.
type AdjustmentFilter struct {
	ProductID string
	StoreID   string
	Reason    string
	Actor     string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// AdjustmentRepository define el puerto de persistencia de ajustes.
type AdjustmentRepository interface {
	Create(ctx context.Context, a *entity.Adjustment) error
	List(ctx context.Context, f AdjustmentFilter) ([]*entity.Adjustment, error)
}
