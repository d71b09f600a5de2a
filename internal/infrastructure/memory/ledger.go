package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockRepo implementa repository.StockRepository.
type StockRepo struct{ base }

var _ repository.StockRepository = (*StockRepo)(nil)

func (r *StockRepo) Get(_ context.Context, productID, storeID string) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.with(func(st *state) error {
		if v, ok := st.stocks[stockKey{productID, storeID}]; ok {
			out = copyStock(v)
			return nil
		}
		out = &entity.Stock{ProductID: productID, StoreID: storeID}
		return nil
	})
	return out, err
}

// GetForUpdate crea la fila si falta; el bloqueo ya lo da el mutex de la tx.
func (r *StockRepo) GetForUpdate(_ context.Context, productID, storeID string) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.with(func(st *state) error {
		k := stockKey{productID, storeID}
		v, ok := st.stocks[k]
		if !ok {
			v = &entity.Stock{ProductID: productID, StoreID: storeID}
			st.stocks[k] = v
		}
		out = copyStock(v)
		return nil
	})
	return out, err
}

func (r *StockRepo) Upsert(_ context.Context, stock *entity.Stock) error {
	return r.with(func(st *state) error {
		st.stocks[stockKey{stock.ProductID, stock.StoreID}] = copyStock(stock)
		return nil
	})
}

func (r *StockRepo) List(_ context.Context, f repository.StockFilter) ([]*entity.Stock, error) {
	var out []*entity.Stock
	err := r.with(func(st *state) error {
		for k, v := range st.stocks {
			if f.ProductID != "" && k.productID != f.ProductID {
				continue
			}
			if f.StoreID != "" && k.storeID != f.StoreID {
				continue
			}
			if f.OnlyLow && !v.IsLow() {
				continue
			}
			out = append(out, copyStock(v))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].StoreID < out[j].StoreID
	})
	return out, err
}

// BatchRepo implementa repository.BatchRepository.
type BatchRepo struct{ base }

var _ repository.BatchRepository = (*BatchRepo)(nil)

func (r *BatchRepo) Create(_ context.Context, batch *entity.Batch) error {
	return r.with(func(st *state) error {
		if _, ok := st.batches[batch.ID]; ok {
			return fmt.Errorf("lote %s: %w", batch.ID, domain.ErrDuplicate)
		}
		st.batches[batch.ID] = copyBatch(batch)
		return nil
	})
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	var out *entity.Batch
	err := r.with(func(st *state) error {
		if v, ok := st.batches[id]; ok {
			out = copyBatch(v)
		}
		return nil
	})
	return out, err
}

func (r *BatchRepo) ListAvailableForUpdate(ctx context.Context, productID, storeID string) ([]*entity.Batch, error) {
	return r.List(ctx, repository.BatchFilter{ProductID: productID, StoreID: storeID, OnlyActive: true})
}

func (r *BatchRepo) UpdateQuantity(_ context.Context, id string, quantity decimal.Decimal) error {
	return r.with(func(st *state) error {
		v, ok := st.batches[id]
		if !ok {
			return fmt.Errorf("lote %s: %w", id, domain.ErrNotFound)
		}
		if quantity.IsNegative() || quantity.GreaterThan(v.InitialQuantity) {
			return domain.Validation("cantidad %s fuera de rango para el lote %s", quantity, id)
		}
		v.Quantity = quantity
		return nil
	})
}

func (r *BatchRepo) List(_ context.Context, f repository.BatchFilter) ([]*entity.Batch, error) {
	var out []*entity.Batch
	err := r.with(func(st *state) error {
		for _, v := range st.batches {
			if f.ProductID != "" && v.ProductID != f.ProductID {
				continue
			}
			if f.StoreID != "" && v.StoreID != f.StoreID {
				continue
			}
			if f.OnlyActive && !v.HasStock() {
				continue
			}
			if f.ExpiringBefore != nil && (v.ExpiryDate == nil || v.ExpiryDate.After(*f.ExpiringBefore)) {
				continue
			}
			out = append(out, copyBatch(v))
		}
		return nil
	})
	inventory.SortFIFO(out)
	return out, err
}

func (r *BatchRepo) ExistsNumber(_ context.Context, productID, storeID, batchNumber string) (bool, error) {
	var found bool
	err := r.with(func(st *state) error {
		for _, v := range st.batches {
			if v.ProductID == productID && v.StoreID == storeID && v.BatchNumber == batchNumber {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

// MovementRepo implementa repository.MovementRepository. Solo agrega al final.
type MovementRepo struct{ base }

var _ repository.MovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	return r.with(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == movement.ID {
				return fmt.Errorf("movimiento %s: %w", movement.ID, domain.ErrDuplicate)
			}
		}
		st.movements = append(st.movements, copyMovement(movement))
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.with(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				out = copyMovement(m)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	var out []*entity.StockMovement
	err := r.with(func(st *state) error {
		// más reciente primero; a igual fecha, el último insertado primero
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.StoreID != "" && m.StoreID != f.StoreID {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			out = append(out, copyMovement(m))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), len(out), err
}

func (r *MovementRepo) ListAllocationsByBatch(_ context.Context, batchID string) ([]entity.AllocationTrace, error) {
	var out []entity.AllocationTrace
	err := r.with(func(st *state) error {
		for _, m := range st.movements {
			for _, a := range m.Allocations {
				if a.BatchID != batchID {
					continue
				}
				out = append(out, entity.AllocationTrace{
					Allocation:   a,
					MovementType: m.Type,
					Reference:    m.Reference,
					Actor:        m.Actor,
					CreatedAt:    m.CreatedAt,
				})
			}
		}
		return nil
	})
	return out, err
}
