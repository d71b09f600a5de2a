package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReservationRepository define el puerto de persistencia de reservas.
// GetByID y GetForUpdate devuelven (nil, nil) si no existe.
type ReservationRepository interface {
	Create(ctx context.Context, r *entity.Reservation) error
	GetByID(ctx context.Context, id string) (*entity.Reservation, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Reservation, error)
	// UpdateState persiste estado, resolvedAt y movementId.
	UpdateState(ctx context.Context, r *entity.Reservation) error
	// ListOverdue devuelve reservas activas con expiresAt <= now, opcionalmente de un par.
	ListOverdue(ctx context.Context, now time.Time, productID, storeID string, limit int) ([]*entity.Reservation, error)
	// SumActive suma reservas activas y no vencidas a la fecha; storeID vacío agrega todas las tiendas.
	SumActive(ctx context.Context, productID, storeID string, now time.Time) (decimal.Decimal, error)
}
