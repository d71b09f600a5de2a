package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// MovementFilter criterios de consulta del libro.
type MovementFilter struct {
	ProductID string
	StoreID   string
	Type      string
	From      *time.Time
	To        *time.Time
	Limit     int // 0 = sin límite
	Offset    int
}

// MovementRepository define el puerto del libro de movimientos: solo inserción y lectura.
type MovementRepository interface {
	// Create inserta el movimiento y sus asignaciones por lote.
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// List devuelve la página pedida (más reciente primero) y el total sin paginar.
	List(ctx context.Context, f MovementFilter) ([]*entity.StockMovement, int, error)
	ListAllocationsByBatch(ctx context.Context, batchID string) ([]entity.AllocationTrace, error)
}
