package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entradas y ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestReceiveBatch_CreaLoteYMovimiento(t *testing.T) {
	f := newFixture(t)
	b := f.receive(t, storeFIFO, "L-001", "12", "3.5", day(2))

	assert.Equal(t, "L-001", b.BatchNumber)
	assert.True(t, d("12").Equal(b.Quantity))
	assert.True(t, d("12").Equal(f.stock(t, storeFIFO).Quantity))

	movs := f.movements(t, storeFIFO)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementEntry, movs[0].Type)
	assert.Equal(t, b.MovementID, movs[0].ID)
	assert.True(t, d("42").Equal(movs[0].TotalCost))
	assert.Equal(t, entity.ValuationFIFO, movs[0].ValuationMethod)
	assert.Contains(t, f.events.types(), inventory.EventMovementRecorded)
	f.assertInvariants(t, storeFIFO)
}

func TestReceiveBatch_Validaciones(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		in   inventory.ReceiveBatchInput
		want error
	}{
		{"cantidad cero", inventory.ReceiveBatchInput{ProductID: productP, StoreID: storeFIFO, BatchNumber: "X"}, domain.ErrValidation},
		{"costo negativo", inventory.ReceiveBatchInput{ProductID: productP, StoreID: storeFIFO, BatchNumber: "X", Quantity: d("1"), UnitCost: d("-1")}, domain.ErrValidation},
		{"sin número", inventory.ReceiveBatchInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("1")}, domain.ErrValidation},
		{"producto inexistente", inventory.ReceiveBatchInput{ProductID: "nope", StoreID: storeFIFO, BatchNumber: "X", Quantity: d("1")}, domain.ErrNotFound},
		{"tienda inexistente", inventory.ReceiveBatchInput{ProductID: productP, StoreID: "nope", BatchNumber: "X", Quantity: d("1")}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.ReceiveBatch(f.ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Empty(t, f.movements(t, storeFIFO))
}

func TestReceiveBatch_NumeroDuplicado(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L-001", "5", "1", day(1))
	_, err := f.ledger.ReceiveBatch(f.ctx, inventory.ReceiveBatchInput{
		ProductID: productP, StoreID: storeFIFO, Quantity: d("5"), UnitCost: d("1"), BatchNumber: "L-001",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.True(t, d("5").Equal(f.stock(t, storeFIFO).Quantity))
}

func TestRegisterSale_FIFO(t *testing.T) {
	f := newFixture(t)
	b2 := f.receive(t, storeFIFO, "B2", "5", "20", day(2))
	b1 := f.receive(t, storeFIFO, "B1", "5", "10", day(1))

	mov, err := f.ledger.RegisterSale(f.ctx, inventory.SaleInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("7"), OrderID: "POS-1"})
	require.NoError(t, err)

	require.Len(t, mov.Allocations, 2)
	assert.Equal(t, b1.ID, mov.Allocations[0].BatchID)
	assert.True(t, d("5").Equal(mov.Allocations[0].Quantity))
	assert.Equal(t, b2.ID, mov.Allocations[1].BatchID)
	assert.True(t, d("2").Equal(mov.Allocations[1].Quantity))
	assert.True(t, d("-7").Equal(mov.Quantity))
	assert.True(t, d("90").Equal(mov.TotalCost))

	got1, _ := f.deps.Repos.Batches.GetByID(f.ctx, b1.ID)
	got2, _ := f.deps.Repos.Batches.GetByID(f.ctx, b2.ID)
	assert.True(t, got1.Quantity.IsZero())
	assert.True(t, d("3").Equal(got2.Quantity))
	f.assertInvariants(t, storeFIFO)
}

func TestRegisterSale_PromedioPonderado(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeAvg, "A1", "10", "200", day(1))
	f.receive(t, storeAvg, "A2", "10", "100", day(2))
	assert.True(t, d("150").Equal(f.stock(t, storeAvg).AverageCost))

	mov, err := f.ledger.RegisterSale(f.ctx, inventory.SaleInput{ProductID: productP, StoreID: storeAvg, Quantity: d("4")})
	require.NoError(t, err)
	assert.True(t, d("150").Equal(*mov.UnitCost))
	assert.True(t, d("600").Equal(mov.TotalCost))
	assert.Equal(t, entity.ValuationAverageCost, mov.ValuationMethod)
	// El orden físico sigue siendo FIFO aunque el costo sea el promedio
	require.Len(t, mov.Allocations, 1)
	f.assertInvariants(t, storeAvg)
}

func TestRegisterSale_RespetaReservado(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "10", "1", day(1))
	_, err := f.res.Create(f.ctx, inventory.CreateReservationInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("8")})
	require.NoError(t, err)

	_, err = f.ledger.RegisterSale(f.ctx, inventory.SaleInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("3")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Len(t, f.movements(t, storeFIFO), 1)
	f.assertInvariants(t, storeFIFO)
}

type failingFiscal struct{ calls int }

func (f *failingFiscal) NotifySale(context.Context, inventory.SaleNotice) error {
	f.calls++
	return errors.New("emisor fuera de servicio")
}

func TestRegisterSale_FallaFiscalNoRevierteInventario(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "10", "2", day(1))
	fiscal := &failingFiscal{}
	deps := f.deps
	deps.Fiscal = fiscal
	uc := inventory.NewLedgerUseCase(deps)

	mov, err := uc.RegisterSale(f.ctx, inventory.SaleInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("4"), OrderID: "POS-9"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalDependency)
	require.NotNil(t, mov)
	assert.Equal(t, 1, fiscal.calls)
	assert.True(t, d("6").Equal(f.stock(t, storeFIFO).Quantity))
	f.assertInvariants(t, storeFIFO)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_ConservaLotesYCosto(t *testing.T) {
	f := newFixture(t)
	exp := day(28)
	_, err := f.ledger.ReceiveBatch(f.ctx, inventory.ReceiveBatchInput{
		ProductID: productP, StoreID: storeFIFO, Quantity: d("5"), UnitCost: d("10"), EntryDate: day(1), ExpiryDate: &exp, BatchNumber: "B1",
	})
	require.NoError(t, err)
	f.receive(t, storeFIFO, "B2", "5", "20", day(2))

	res, err := f.ledger.Transfer(f.ctx, inventory.TransferInput{ProductID: productP, FromStoreID: storeFIFO, ToStoreID: storeB, Quantity: d("7"), Actor: "admin"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTransferOut, res.Out.Type)
	assert.Equal(t, entity.MovementTransferIn, res.In.Type)
	assert.True(t, res.Out.TotalCost.Equal(res.In.TotalCost))
	assert.Equal(t, res.Out.ID, res.In.Reference)

	assert.True(t, d("3").Equal(f.stock(t, storeFIFO).Quantity))
	assert.True(t, d("7").Equal(f.stock(t, storeB).Quantity))

	dest, err := f.deps.Repos.Batches.List(f.ctx, repository.BatchFilter{ProductID: productP, StoreID: storeB})
	require.NoError(t, err)
	require.Len(t, dest, 2)
	assert.Equal(t, "B1", dest[0].BatchNumber)
	require.NotNil(t, dest[0].ExpiryDate)
	assert.True(t, exp.Equal(*dest[0].ExpiryDate))
	assert.Equal(t, "B2", dest[1].BatchNumber)
	assert.True(t, d("2").Equal(dest[1].Quantity))

	f.assertInvariants(t, storeFIFO)
	f.assertInvariants(t, storeB)
}

func TestTransfer_MismaTiendaOInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "B1", "5", "10", day(1))

	_, err := f.ledger.Transfer(f.ctx, inventory.TransferInput{ProductID: productP, FromStoreID: storeFIFO, ToStoreID: storeFIFO, Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.ledger.Transfer(f.ctx, inventory.TransferInput{ProductID: productP, FromStoreID: storeFIFO, ToStoreID: storeB, Quantity: d("6")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.stock(t, storeB).Quantity.IsZero())
	assert.Len(t, f.movements(t, ""), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas del libro
// ──────────────────────────────────────────────────────────────────────────────

func TestListMovements_FiltrosYPaginacion(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "B1", "5", "10", day(1))
	f.receive(t, storeFIFO, "B2", "5", "10", day(2))
	_, err := f.ledger.RegisterSale(f.ctx, inventory.SaleInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("1")})
	require.NoError(t, err)

	page, err := f.ledger.ListMovements(f.ctx, inventory.MovementQuery{StoreID: storeFIFO, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 2)

	sales, err := f.ledger.ListMovements(f.ctx, inventory.MovementQuery{Type: entity.MovementSale})
	require.NoError(t, err)
	require.Len(t, sales.Items, 1)

	_, err = f.ledger.ListMovements(f.ctx, inventory.MovementQuery{Type: "robo"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	all, err := f.ledger.ExportMovements(f.ctx, inventory.MovementQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTraceBatch(t *testing.T) {
	f := newFixture(t)
	b := f.receive(t, storeFIFO, "B1", "10", "10", day(1))
	_, err := f.ledger.RegisterSale(f.ctx, inventory.SaleInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("4"), OrderID: "POS-1"})
	require.NoError(t, err)
	_, err = f.ledger.RegisterSale(f.ctx, inventory.SaleInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("1"), OrderID: "POS-2"})
	require.NoError(t, err)

	tr, err := f.ledger.TraceBatch(f.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, tr.Allocations, 2)
	assert.Equal(t, "POS-1", tr.Allocations[0].Reference)
	assert.True(t, d("5").Equal(tr.TotalOut))
	assert.True(t, d("50").Equal(tr.Utilization))

	_, err = f.ledger.TraceBatch(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListBatches_EstadoYVencimiento(t *testing.T) {
	f := newFixture(t)
	soon := f.clock.Now().AddDate(0, 0, 3)
	late := f.clock.Now().AddDate(0, 0, 60)
	for _, in := range []inventory.ReceiveBatchInput{
		{ProductID: productP, StoreID: storeFIFO, Quantity: d("1"), BatchNumber: "SOON", EntryDate: day(1), ExpiryDate: &soon},
		{ProductID: productP, StoreID: storeFIFO, Quantity: d("1"), BatchNumber: "LATE", EntryDate: day(2), ExpiryDate: &late},
	} {
		_, err := f.ledger.ReceiveBatch(f.ctx, in)
		require.NoError(t, err)
	}
	days := 30
	list, err := f.ledger.ListBatches(f.ctx, inventory.BatchQuery{StoreID: storeFIFO, ExpiringInDays: &days})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "SOON", list[0].BatchNumber)
	assert.Equal(t, "expiring", list[0].ExpiryStatus)
	require.NotNil(t, list[0].DaysToExpiry)
	assert.Equal(t, 3, *list[0].DaysToExpiry)

	all, err := f.ledger.ListBatches(f.ctx, inventory.BatchQuery{StoreID: storeFIFO})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
