package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// lockLog registra los bloqueos pedidos dentro de cada tx.
type lockLog struct{ calls []string }

type lockingTx struct {
	inner inventory.TxRunner
	log   *lockLog
}

func (t lockingTx) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	return t.inner.Run(ctx, func(r inventory.Repos) error {
		r.Stores = lockingStores{StoreRepository: r.Stores, log: t.log}
		r.Stocks = lockingStocks{StockRepository: r.Stocks, log: t.log}
		return fn(r)
	})
}

type lockingStores struct {
	repository.StoreRepository
	log *lockLog
}

func (s lockingStores) GetForShare(ctx context.Context, id string) (*entity.Store, error) {
	s.log.calls = append(s.log.calls, "share:"+id)
	return s.StoreRepository.GetForShare(ctx, id)
}

func (s lockingStores) GetForUpdate(ctx context.Context, id string) (*entity.Store, error) {
	s.log.calls = append(s.log.calls, "update:"+id)
	return s.StoreRepository.GetForUpdate(ctx, id)
}

type lockingStocks struct {
	repository.StockRepository
	log *lockLog
}

func (s lockingStocks) GetForUpdate(ctx context.Context, productID, storeID string) (*entity.Stock, error) {
	s.log.calls = append(s.log.calls, "stock:"+productID+"/"+storeID)
	return s.StockRepository.GetForUpdate(ctx, productID, storeID)
}

// withLockLog rearma los casos de uso del fixture sobre una tx que registra bloqueos.
func withLockLog(f *fixture) *lockLog {
	log := &lockLog{}
	f.deps.Tx = lockingTx{inner: f.deps.Tx, log: log}
	f.ledger = inventory.NewLedgerUseCase(f.deps)
	f.settings = inventory.NewSettingsUseCase(f.deps)
	return log
}

func TestLockOrder_EscriturasBloqueanTiendaAntesQueSaldo(t *testing.T) {
	f := newFixture(t)
	log := withLockLog(f)

	f.receive(t, storeFIFO, "L1", "10", "10", day(1))
	assert.Equal(t, []string{"share:S", "stock:P/S"}, log.calls)

	log.calls = nil
	_, err := f.ledger.RegisterSale(f.ctx, inventory.SaleInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("2")})
	require.NoError(t, err)
	assert.Equal(t, []string{"share:S", "stock:P/S"}, log.calls)

	// Ambos sentidos bloquean las tiendas en orden de id
	for _, dir := range [][2]string{{storeFIFO, storeB}, {storeB, storeFIFO}} {
		log.calls = nil
		_, err = f.ledger.Transfer(f.ctx, inventory.TransferInput{
			ProductID: productP, FromStoreID: dir[0], ToStoreID: dir[1], Quantity: d("1"), Notes: "reposición de góndola",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"share:S", "stock:P/S", "share:S2", "stock:P/S2"}, log.calls)
	}
}

func TestLockOrder_SiembraDePromedioBloqueaTiendaEnExclusiva(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "10", "10", day(1))
	f.receive(t, storeFIFO, "L2", "10", "20", day(2))
	log := withLockLog(f)

	method := entity.ValuationAverageCost
	_, err := f.settings.UpdateStoreSettings(f.ctx, storeFIFO, inventory.StoreSettingsInput{ValuationMethod: &method})
	require.NoError(t, err)
	require.NotEmpty(t, log.calls)
	assert.Equal(t, "update:S", log.calls[0], "la tienda se bloquea antes de leer sus saldos")
	assert.Equal(t, []string{"update:S", "stock:P/S"}, log.calls)
	assert.Equal(t, "15", f.stock(t, storeFIFO).AverageCost.String())
}
