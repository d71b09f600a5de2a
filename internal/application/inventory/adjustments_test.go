package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

const notes = "conteo físico de fin de mes"

func TestCreateAdjustment_NegativoMayorQueStock(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "5", "1", day(1))

	_, err := f.adj.CreateAdjustment(f.ctx, inventory.AdjustmentInput{
		ProductID: productP, StoreID: storeFIFO, Quantity: d("-6"), Reason: entity.ReasonLoss, Notes: notes, Confirmed: true,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Len(t, f.movements(t, storeFIFO), 1)
	list, err := f.adj.ListAdjustments(f.ctx, inventory.AdjustmentQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
	f.assertInvariants(t, storeFIFO)
}

func TestCreateAdjustment_GrandeRequiereConfirmacion(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "100", "2", day(1))
	in := inventory.AdjustmentInput{
		ProductID: productP, StoreID: storeFIFO, Quantity: d("-20"), Reason: entity.ReasonDamage, Notes: notes, Actor: "admin",
	}

	_, err := f.adj.CreateAdjustment(f.ctx, in)
	assert.ErrorIs(t, err, domain.ErrConfirmationRequired)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "100", f.stock(t, storeFIFO).Quantity.String())

	in.Confirmed = true
	adj, err := f.adj.CreateAdjustment(f.ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "20", adj.Percentage.String())
	assert.True(t, adj.IsLarge)
	assert.Equal(t, "100", adj.PreviousStock.String())
	assert.Equal(t, "80", f.stock(t, storeFIFO).Quantity.String())

	mov, err := f.ledger.GetMovement(f.ctx, adj.MovementID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementAdjustment, mov.Type)
	assert.Equal(t, entity.ReasonDamage, mov.Reason)
	assert.Equal(t, "-20", mov.Quantity.String())
	f.assertInvariants(t, storeFIFO)
}

func TestCreateAdjustment_PequenoSeRegistraSinConfirmar(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "100", "2", day(1))
	adj, err := f.adj.CreateAdjustment(f.ctx, inventory.AdjustmentInput{
		ProductID: productP, StoreID: storeFIFO, Quantity: d("-10"), Reason: entity.ReasonSample, Notes: notes,
	})
	require.NoError(t, err)
	assert.False(t, adj.IsLarge)
	assert.Equal(t, "10", adj.Percentage.String())
}

func TestCreateAdjustment_PositivoCreaLote(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeAvg, "A1", "10", "8", day(1))

	adj, err := f.adj.CreateAdjustment(f.ctx, inventory.AdjustmentInput{
		ProductID: productP, StoreID: storeAvg, Quantity: d("1"), Reason: entity.ReasonReturn, Notes: notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "11", f.stock(t, storeAvg).Quantity.String())
	assert.Equal(t, "8", f.stock(t, storeAvg).AverageCost.String())

	batches, err := f.ledger.ListBatches(f.ctx, inventory.BatchQuery{StoreID: storeAvg})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "ADJ-"+adj.ID[:8], batches[1].BatchNumber)
	f.assertInvariants(t, storeAvg)
}

func TestCreateAdjustment_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "10", "1", day(1))
	cases := []struct {
		name string
		in   inventory.AdjustmentInput
	}{
		{"cantidad cero", inventory.AdjustmentInput{ProductID: productP, StoreID: storeFIFO, Reason: entity.ReasonLoss, Notes: notes}},
		{"motivo desconocido", inventory.AdjustmentInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("1"), Reason: "robo", Notes: notes}},
		{"notas cortas", inventory.AdjustmentInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("1"), Reason: entity.ReasonLoss, Notes: "   corto   "}},
		{"costo en negativo", inventory.AdjustmentInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("-1"), Reason: entity.ReasonLoss, Notes: notes, UnitCost: dp("1")}},
		{"sin tienda", inventory.AdjustmentInput{ProductID: productP, Quantity: d("1"), Reason: entity.ReasonLoss, Notes: notes}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.adj.CreateAdjustment(f.ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Len(t, f.movements(t, storeFIFO), 1)
}

func TestCreateAdjustment_TiendaPorDefecto(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "10", "1", day(1))
	deps := f.deps
	deps.Settings.DefaultStoreID = storeFIFO
	uc := inventory.NewAdjustmentUseCase(deps)

	adj, err := uc.CreateAdjustment(f.ctx, inventory.AdjustmentInput{ProductID: productP, Quantity: d("-1"), Reason: entity.ReasonInventory, Notes: notes})
	require.NoError(t, err)
	assert.Equal(t, storeFIFO, adj.StoreID)

	list, err := uc.ListAdjustments(f.ctx, inventory.AdjustmentQuery{Reason: entity.ReasonInventory})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = uc.ListAdjustments(f.ctx, inventory.AdjustmentQuery{Reason: "robo"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateAdjustment_NoTocaReservado(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "10", "1", day(1))
	f.reserve(t, "9")

	_, err := f.adj.CreateAdjustment(f.ctx, inventory.AdjustmentInput{
		ProductID: productP, StoreID: storeFIFO, Quantity: d("-1"), Reason: entity.ReasonLoss, Notes: notes, Confirmed: true,
	})
	require.NoError(t, err)
	_, err = f.adj.CreateAdjustment(f.ctx, inventory.AdjustmentInput{
		ProductID: productP, StoreID: storeFIFO, Quantity: d("-1"), Reason: entity.ReasonLoss, Notes: notes, Confirmed: true,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	f.assertInvariants(t, storeFIFO)
}
