package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/memory"
)

const (
	storeFIFO = "S"
	storeAvg  = "S-AVG"
	storeB    = "S2"
	productP  = "P"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(dur time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(dur)
	c.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	events []inventory.Event
}

func (r *recorder) Publish(_ context.Context, e inventory.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	ctx      context.Context
	db       *memory.Store
	clock    *clock
	events   *recorder
	deps     inventory.Deps
	ledger   *inventory.LedgerUseCase
	res      *inventory.ReservationUseCase
	adj      *inventory.AdjustmentUseCase
	alerts   *inventory.AlertUseCase
	settings *inventory.SettingsUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := memory.New()
	repos := db.Repos()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	for _, s := range []*entity.Store{
		{ID: storeFIFO, Name: "Centro", ValuationMethod: entity.ValuationFIFO, TaxRegime: entity.TaxRegimeSimples},
		{ID: storeAvg, Name: "Norte", ValuationMethod: entity.ValuationAverageCost, TaxRegime: entity.TaxRegimeNormal},
		{ID: storeB, Name: "Sur", ValuationMethod: entity.ValuationFIFO, TaxRegime: entity.TaxRegimeSimples},
	} {
		s.CreatedAt, s.UpdatedAt = now, now
		require.NoError(t, repos.Stores.Upsert(ctx, s))
	}
	require.NoError(t, repos.Products.Upsert(ctx, &entity.Product{
		ID: productP, Name: "Leche entera 1L", Brand: "Colanta", Category: "Lácteos", Unit: "un", Price: 4500, Active: true,
	}))

	f := &fixture{ctx: ctx, db: db, clock: &clock{now: now}, events: &recorder{}}
	f.deps = inventory.Deps{
		Tx:       memory.NewTxRunner(db),
		Repos:    repos,
		Events:   f.events,
		Now:      f.clock.Now,
		Settings: inventory.Settings{MinNotesLength: 10},
	}
	f.ledger = inventory.NewLedgerUseCase(f.deps)
	f.res = inventory.NewReservationUseCase(f.deps)
	f.adj = inventory.NewAdjustmentUseCase(f.deps)
	f.alerts = inventory.NewAlertUseCase(f.deps)
	f.settings = inventory.NewSettingsUseCase(f.deps)
	return f
}

func (f *fixture) receive(t *testing.T, storeID, number, qty, cost string, entry time.Time) *entity.Batch {
	t.Helper()
	b, err := f.ledger.ReceiveBatch(f.ctx, inventory.ReceiveBatchInput{
		ProductID:   productP,
		StoreID:     storeID,
		Quantity:    d(qty),
		UnitCost:    d(cost),
		EntryDate:   entry,
		BatchNumber: number,
		Actor:       "bodeguero-1",
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) stock(t *testing.T, storeID string) *entity.Stock {
	t.Helper()
	s, err := f.deps.Repos.Stocks.Get(f.ctx, productP, storeID)
	require.NoError(t, err)
	return s
}

func (f *fixture) movements(t *testing.T, storeID string) []*entity.StockMovement {
	t.Helper()
	items, _, err := f.deps.Repos.Movements.List(f.ctx, repository.MovementFilter{ProductID: productP, StoreID: storeID})
	require.NoError(t, err)
	return items
}

// assertInvariants stock == suma de lotes y disponible >= 0 en el par.
func (f *fixture) assertInvariants(t *testing.T, storeID string) {
	t.Helper()
	s := f.stock(t, storeID)
	batches, err := f.deps.Repos.Batches.List(f.ctx, repository.BatchFilter{ProductID: productP, StoreID: storeID})
	require.NoError(t, err)
	sum := decimal.Zero
	for _, b := range batches {
		assert.False(t, b.Quantity.IsNegative(), "lote %s negativo", b.BatchNumber)
		assert.False(t, b.Quantity.GreaterThan(b.InitialQuantity), "lote %s sobre su inicial", b.BatchNumber)
		sum = sum.Add(b.Quantity)
	}
	assert.True(t, s.Quantity.Equal(sum), "stock %s != suma de lotes %s", s.Quantity, sum)

	active, err := f.deps.Repos.Reservations.SumActive(f.ctx, productP, storeID, f.clock.Now())
	require.NoError(t, err)
	assert.False(t, s.Quantity.Sub(active).IsNegative(), "disponible negativo")
	assert.False(t, s.Reserved.LessThan(active), "reservado %s menor que reservas activas %s", s.Reserved, active)
	assert.False(t, s.Available().IsNegative(), "disponible del saldo negativo")
}

func day(n int) time.Time { return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC) }
