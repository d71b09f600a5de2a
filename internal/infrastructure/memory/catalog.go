package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// StoreRepo implementa repository.StoreRepository.
type StoreRepo struct{ base }

var _ repository.StoreRepository = (*StoreRepo)(nil)

func (r *StoreRepo) Upsert(_ context.Context, store *entity.Store) error {
	return r.with(func(st *state) error {
		c := copyStore(store)
		if prev, ok := st.stores[store.ID]; ok {
			c.CreatedAt = prev.CreatedAt
		}
		st.stores[store.ID] = c
		return nil
	})
}

func (r *StoreRepo) GetByID(_ context.Context, id string) (*entity.Store, error) {
	var out *entity.Store
	err := r.with(func(st *state) error {
		if v, ok := st.stores[id]; ok {
			out = copyStore(v)
		}
		return nil
	})
	return out, err
}

// GetForShare igual que GetByID; el bloqueo ya lo da el mutex de la tx.
func (r *StoreRepo) GetForShare(ctx context.Context, id string) (*entity.Store, error) {
	return r.GetByID(ctx, id)
}

// GetForUpdate igual que GetByID; el bloqueo ya lo da el mutex de la tx.
func (r *StoreRepo) GetForUpdate(ctx context.Context, id string) (*entity.Store, error) {
	return r.GetByID(ctx, id)
}

func (r *StoreRepo) List(_ context.Context) ([]*entity.Store, error) {
	var out []*entity.Store
	err := r.with(func(st *state) error {
		for _, v := range st.stores {
			out = append(out, copyStore(v))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *StoreRepo) UpdateSettings(_ context.Context, id, valuationMethod, taxRegime string) error {
	return r.with(func(st *state) error {
		v, ok := st.stores[id]
		if !ok {
			return fmt.Errorf("tienda %s: %w", id, domain.ErrNotFound)
		}
		v.ValuationMethod, v.TaxRegime = valuationMethod, taxRegime
		return nil
	})
}

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ base }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Upsert(_ context.Context, product *entity.Product) error {
	return r.with(func(st *state) error {
		c := copyProduct(product)
		if prev, ok := st.products[product.ID]; ok {
			c.CreatedAt = prev.CreatedAt
		}
		st.products[product.ID] = c
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(func(st *state) error {
		if v, ok := st.products[id]; ok {
			out = copyProduct(v)
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.with(func(st *state) error {
		for _, v := range st.products {
			if f.OnlyActive && !v.Active {
				continue
			}
			if f.Category != "" && v.Category != f.Category {
				continue
			}
			out = append(out, copyProduct(v))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), err
}
