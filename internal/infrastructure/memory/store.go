// Package memory implementa los repositorios del motor en memoria, con transacciones
// serializadas por un mutex global. Sirve para tests y para DB_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

type state struct {
	stores       map[string]*entity.Store
	products     map[string]*entity.Product
	stocks       map[stockKey]*entity.Stock
	batches      map[string]*entity.Batch
	movements    []*entity.StockMovement
	reservations map[string]*entity.Reservation
	adjustments  []*entity.Adjustment
}

type stockKey struct {
	productID string
	storeID   string
}

func newState() *state {
	return &state{
		stores:       map[string]*entity.Store{},
		products:     map[string]*entity.Product{},
		stocks:       map[stockKey]*entity.Stock{},
		batches:      map[string]*entity.Batch{},
		reservations: map[string]*entity.Reservation{},
	}
}

// clone copia profunda para poder deshacer una tx fallida.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.stores {
		c.stores[k] = copyStore(v)
	}
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.stocks {
		c.stocks[k] = copyStock(v)
	}
	for k, v := range s.batches {
		c.batches[k] = copyBatch(v)
	}
	c.movements = make([]*entity.StockMovement, len(s.movements))
	for i, m := range s.movements {
		c.movements[i] = copyMovement(m)
	}
	for k, v := range s.reservations {
		c.reservations[k] = copyReservation(v)
	}
	c.adjustments = make([]*entity.Adjustment, len(s.adjustments))
	for i, a := range s.adjustments {
		c.adjustments[i] = copyAdjustment(a)
	}
	return c
}

// Store base en memoria: datos y mutex compartidos por todos los repositorios.
type Store struct {
	mu   sync.Mutex
	data *state
}

// New crea una base vacía.
func New() *Store {
	return &Store{data: newState()}
}

// Repos devuelve repositorios que toman el lock en cada llamada (lecturas fuera de tx).
func (s *Store) Repos() inventory.Repos {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) inventory.Repos {
	b := base{store: s, inTx: inTx}
	return inventory.Repos{
		Stores:       &StoreRepo{b},
		Products:     &ProductRepo{b},
		Stocks:       &StockRepo{b},
		Batches:      &BatchRepo{b},
		Movements:    &MovementRepo{b},
		Reservations: &ReservationRepo{b},
		Adjustments:  &AdjustmentRepo{b},
	}
}

// TxRunner ejecuta fn con el lock global tomado; si fn falla restaura la foto previa.
type TxRunner struct {
	store *Store
}

var _ inventory.TxRunner = (*TxRunner)(nil)

// NewTxRunner construye el runner sobre la misma base.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{store: s}
}

// Run implementa inventory.TxRunner.
func (t *TxRunner) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	if err := fn(s.repos(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// base comparte el acceso a los datos; dentro de una tx el lock ya está tomado.
type base struct {
	store *Store
	inTx  bool
}

func (b base) with(fn func(st *state) error) error {
	if !b.inTx {
		b.store.mu.Lock()
		defer b.store.mu.Unlock()
	}
	return fn(b.store.data)
}

func copyStore(v *entity.Store) *entity.Store {
	c := *v
	return &c
}

func copyProduct(v *entity.Product) *entity.Product {
	c := *v
	return &c
}

func copyStock(v *entity.Stock) *entity.Stock {
	c := *v
	return &c
}

func copyBatch(v *entity.Batch) *entity.Batch {
	c := *v
	if v.ExpiryDate != nil {
		d := *v.ExpiryDate
		c.ExpiryDate = &d
	}
	return &c
}

func copyMovement(v *entity.StockMovement) *entity.StockMovement {
	c := *v
	if v.UnitCost != nil {
		u := *v.UnitCost
		c.UnitCost = &u
	}
	c.Allocations = append([]entity.Allocation(nil), v.Allocations...)
	return &c
}

func copyReservation(v *entity.Reservation) *entity.Reservation {
	c := *v
	if v.ResolvedAt != nil {
		t := *v.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}

func copyAdjustment(v *entity.Adjustment) *entity.Adjustment {
	c := *v
	if v.UnitCost != nil {
		u := *v.UnitCost
		c.UnitCost = &u
	}
	return &c
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
