package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Límites de paginación del libro.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// MovementQuery filtros del libro. Limit 0 aplica DefaultPageSize.
type MovementQuery struct {
	ProductID string
	StoreID   string
	Type      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// MovementPage página del libro con el total filtrado.
type MovementPage struct {
	Items  []*entity.StockMovement
	Total  int
	Limit  int
	Offset int
}

func (q MovementQuery) filter() (repository.MovementFilter, error) {
	if q.Type != "" && !entity.ValidMovementType(q.Type) {
		return repository.MovementFilter{}, domain.Validation("tipo de movimiento desconocido %q", q.Type)
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return repository.MovementFilter{}, domain.Validation("rango de fechas invertido")
	}
	if q.Offset < 0 {
		return repository.MovementFilter{}, domain.Validation("offset negativo")
	}
	return repository.MovementFilter{
		ProductID: q.ProductID,
		StoreID:   q.StoreID,
		Type:      q.Type,
		From:      q.From,
		To:        q.To,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}, nil
}

// ListMovements consulta el libro (solo lectura, más reciente primero).
func (uc *LedgerUseCase) ListMovements(ctx context.Context, q MovementQuery) (*MovementPage, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	items, total, err := uc.d.Repos.Movements.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &MovementPage{Items: items, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

// ExportMovements devuelve todos los movimientos que cumplen el filtro, sin paginar.
func (uc *LedgerUseCase) ExportMovements(ctx context.Context, q MovementQuery) ([]*entity.StockMovement, error) {
	q.Limit, q.Offset = 0, 0
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	items, _, err := uc.d.Repos.Movements.List(ctx, f)
	return items, err
}

// GetMovement devuelve un movimiento con sus asignaciones.
func (uc *LedgerUseCase) GetMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := uc.d.Repos.Movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("movimiento %s: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

// BatchQuery filtros de lotes. ExpiringInDays nil no filtra por vencimiento.
type BatchQuery struct {
	ProductID      string
	StoreID        string
	OnlyActive     bool
	ExpiringInDays *int
}

// BatchView lote con su estado derivado a la fecha de consulta.
type BatchView struct {
	*entity.Batch
	Status       string
	ExpiryStatus string
	DaysToExpiry *int
}

func (uc *LedgerUseCase) view(b *entity.Batch, now time.Time) BatchView {
	st := inventory.ClassifyExpiry(b, now)
	return BatchView{Batch: b, Status: inventory.BatchStatus(b, now), ExpiryStatus: st.Status, DaysToExpiry: st.DaysLeft}
}

// ListBatches lista lotes en orden FIFO con estado y días a vencimiento.
func (uc *LedgerUseCase) ListBatches(ctx context.Context, q BatchQuery) ([]BatchView, error) {
	now := uc.d.Now()
	f := repository.BatchFilter{ProductID: q.ProductID, StoreID: q.StoreID, OnlyActive: q.OnlyActive}
	if q.ExpiringInDays != nil {
		if *q.ExpiringInDays < 0 {
			return nil, domain.Validation("expiringInDays negativo")
		}
		limit := now.AddDate(0, 0, *q.ExpiringInDays)
		f.ExpiringBefore = &limit
	}
	list, err := uc.d.Repos.Batches.List(ctx, f)
	if err != nil {
		return nil, err
	}
	inventory.SortFIFO(list)
	out := make([]BatchView, 0, len(list))
	for _, b := range list {
		out = append(out, uc.view(b, now))
	}
	return out, nil
}

// GetBatch devuelve un lote con su estado.
func (uc *LedgerUseCase) GetBatch(ctx context.Context, id string) (*BatchView, error) {
	b, err := uc.d.Repos.Batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("lote %s: %w", id, domain.ErrNotFound)
	}
	v := uc.view(b, uc.d.Now())
	return &v, nil
}

// BatchTrace trazabilidad de un lote: de dónde salió cada unidad consumida.
type BatchTrace struct {
	Batch       BatchView
	Allocations []entity.AllocationTrace
	TotalIn     decimal.Decimal
	TotalOut    decimal.Decimal
	Utilization decimal.Decimal // % consumido sobre la cantidad inicial
}

// TraceBatch reúne las asignaciones que consumieron el lote.
func (uc *LedgerUseCase) TraceBatch(ctx context.Context, id string) (*BatchTrace, error) {
	v, err := uc.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	allocs, err := uc.d.Repos.Movements.ListAllocationsByBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	out := decimal.Zero
	for _, a := range allocs {
		out = out.Add(a.Quantity)
	}
	util := decimal.Zero
	if v.InitialQuantity.GreaterThan(decimal.Zero) {
		util = out.Div(v.InitialQuantity).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return &BatchTrace{
		Batch:       *v,
		Allocations: allocs,
		TotalIn:     v.InitialQuantity,
		TotalOut:    out,
		Utilization: util,
	}, nil
}
