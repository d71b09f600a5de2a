package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// Tienda S, producto P, mínimo 20; lotes 15 @ 10 y 10 @ 12; se reservan y confirman 20.
func TestEscenario_ReservaConfirmadaYStockBajo(t *testing.T) {
	f := newFixture(t)
	_, err := f.settings.SetThresholds(f.ctx, productP, storeFIFO, d("20"), d("0"))
	require.NoError(t, err)
	b1 := f.receive(t, storeFIFO, "BATCH-1", "15", "10", day(1))
	b2 := f.receive(t, storeFIFO, "BATCH-2", "10", "12", day(5))
	f.assertInvariants(t, storeFIFO)

	rv := f.reserve(t, "20")
	f.assertInvariants(t, storeFIFO)
	out, err := f.res.Confirm(f.ctx, rv.ID, "ORD-1", "web")
	require.NoError(t, err)

	require.Len(t, out.Movement.Allocations, 2)
	assert.Equal(t, b1.ID, out.Movement.Allocations[0].BatchID)
	assert.Equal(t, "15", out.Movement.Allocations[0].Quantity.String())
	assert.Equal(t, b2.ID, out.Movement.Allocations[1].BatchID)
	assert.Equal(t, "5", out.Movement.Allocations[1].Quantity.String())
	assert.Equal(t, "210", out.Movement.TotalCost.String())
	assert.Equal(t, "5", f.stock(t, storeFIFO).Quantity.String())
	f.assertInvariants(t, storeFIFO)

	report, err := f.alerts.LowStockReport(f.ctx, storeFIFO)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, productP, report[0].Product.ID)
	assert.Equal(t, storeFIFO, report[0].Store.ID)
	assert.Equal(t, "5", report[0].CurrentStock.String())
	assert.Equal(t, "15", report[0].Deficit.String())
	assert.Equal(t, "15", report[0].SuggestedQty.String())
	assert.Contains(t, f.events.types(), inventory.EventStockLow)
}

func TestLowStockReport_SinMinimoNoAlerta(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "1", "1", day(1))
	report, err := f.alerts.LowStockReport(f.ctx, "")
	require.NoError(t, err)
	assert.Empty(t, report)

	_, err = f.settings.SetThresholds(f.ctx, productP, storeFIFO, d("5"), d("12"))
	require.NoError(t, err)
	report, err = f.alerts.LowStockReport(f.ctx, "")
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "11", report[0].SuggestedQty.String())
}

func TestSetThresholds_Validaciones(t *testing.T) {
	f := newFixture(t)
	_, err := f.settings.SetThresholds(f.ctx, productP, storeFIFO, d("-1"), d("0"))
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.settings.SetThresholds(f.ctx, productP, storeFIFO, d("10"), d("5"))
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.settings.SetThresholds(f.ctx, "nope", storeFIFO, d("1"), d("0"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpiryAlerts_Agrupa(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	lots := []struct {
		number string
		expiry time.Time
	}{
		{"VENCIDO", now.AddDate(0, 0, -2)},
		{"PRONTO", now.AddDate(0, 0, 7)},
		{"LUEGO", now.AddDate(0, 0, 20)},
		{"LEJOS", now.AddDate(0, 0, 90)},
	}
	for _, l := range lots {
		exp := l.expiry
		_, err := f.ledger.ReceiveBatch(f.ctx, inventory.ReceiveBatchInput{
			ProductID: productP, StoreID: storeFIFO, Quantity: d("2"), UnitCost: d("1"),
			EntryDate: day(1), ExpiryDate: &exp, BatchNumber: l.number,
		})
		require.NoError(t, err)
	}

	report, err := f.alerts.ExpiryAlerts(f.ctx, storeFIFO, 30)
	require.NoError(t, err)
	require.Len(t, report.Expired, 1)
	assert.Equal(t, "VENCIDO", report.Expired[0].Batch.BatchNumber)
	assert.Equal(t, inventory.SeverityCritical, report.Expired[0].Severity)
	require.Len(t, report.ExpiringSoon, 1)
	assert.Equal(t, 7, report.ExpiringSoon[0].DaysToExpiry)
	require.Len(t, report.ExpiringLater, 1)
	assert.Equal(t, "Leche entera 1L", report.ExpiringLater[0].ProductName)
	assert.Equal(t, "Centro", report.ExpiringLater[0].StoreName)
	assert.Equal(t, 3, report.Total())

	_, err = f.alerts.ExpiryAlerts(f.ctx, storeFIFO, -1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateStoreSettings_SiembraPromedio(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "10", "10", day(1))
	f.receive(t, storeFIFO, "L2", "10", "20", day(2))
	assert.True(t, f.stock(t, storeFIFO).AverageCost.IsZero())

	method := entity.ValuationAverageCost
	store, err := f.settings.UpdateStoreSettings(f.ctx, storeFIFO, inventory.StoreSettingsInput{ValuationMethod: &method})
	require.NoError(t, err)
	assert.Equal(t, entity.ValuationAverageCost, store.ValuationMethod)
	assert.Equal(t, entity.TaxRegimeSimples, store.TaxRegime)
	assert.Equal(t, "15", f.stock(t, storeFIFO).AverageCost.String())

	// El histórico conserva el método con que se creó
	for _, m := range f.movements(t, storeFIFO) {
		assert.Equal(t, entity.ValuationFIFO, m.ValuationMethod)
	}
	mov, err := f.ledger.RegisterSale(f.ctx, inventory.SaleInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("2")})
	require.NoError(t, err)
	assert.Equal(t, entity.ValuationAverageCost, mov.ValuationMethod)
	assert.Equal(t, "30", mov.TotalCost.String())

	bad := "lifo"
	_, err = f.settings.UpdateStoreSettings(f.ctx, storeFIFO, inventory.StoreSettingsInput{ValuationMethod: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.settings.UpdateStoreSettings(f.ctx, "nope", inventory.StoreSettingsInput{ValuationMethod: &method})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
