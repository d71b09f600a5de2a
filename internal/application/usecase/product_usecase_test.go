package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/memory"
)

func TestListProducts_CategoriaSinTildes(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	repos := db.Repos()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	stores := usecase.NewStoreUseCase(repos.Stores)
	_, err := stores.Upsert(ctx, dto.UpsertStoreRequest{ID: "S", Name: "Centro"})
	require.NoError(t, err)

	products := usecase.NewProductUseCase(repos.Products, repos.Stores, repos.Stocks, repos.Reservations, func() time.Time { return now })
	require.NoError(t, products.Upsert(ctx, dto.UpsertProductRequest{ID: "P1", Name: "Leche", Category: "Lácteos"}))
	require.NoError(t, products.Upsert(ctx, dto.UpsertProductRequest{ID: "P2", Name: "Pan", Category: "Panadería"}))
	off := false
	require.NoError(t, products.Upsert(ctx, dto.UpsertProductRequest{ID: "P3", Name: "Queso", Category: "lacteos", Active: &off}))

	require.NoError(t, repos.Stocks.Upsert(ctx, &entity.Stock{ProductID: "P1", StoreID: "S", Quantity: decimal.NewFromInt(8)}))
	require.NoError(t, repos.Stocks.Upsert(ctx, &entity.Stock{ProductID: "P2", StoreID: "S", Quantity: decimal.NewFromInt(2)}))
	require.NoError(t, repos.Stocks.Upsert(ctx, &entity.Stock{ProductID: "P3", StoreID: "S", Quantity: decimal.NewFromInt(2)}))
	require.NoError(t, repos.Reservations.Create(ctx, &entity.Reservation{
		ID: "r1", ProductID: "P1", StoreID: "S", Quantity: decimal.NewFromInt(3),
		State: entity.ReservationActive, CreatedAt: now, ExpiresAt: now.Add(15 * time.Minute),
	}))

	list, err := products.ListProducts(ctx, "", "LACTEOS", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "P1", list[0].ProductID)
	assert.Equal(t, "Centro", list[0].StoreName)
	assert.Equal(t, "3", list[0].Reserved.String())
	assert.Equal(t, "5", list[0].Available.String())

	all, err := products.ListProducts(ctx, "S", "", 1)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = products.ListProducts(ctx, "", "", 101)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = products.ListProducts(ctx, "nope", "", 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreUseCase_Defaults(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewStoreUseCase(memory.New().Repos().Stores)

	s, err := uc.Upsert(ctx, dto.UpsertStoreRequest{ID: "S", Name: "Centro"})
	require.NoError(t, err)
	assert.Equal(t, entity.ValuationFIFO, s.ValuationMethod)
	assert.Equal(t, entity.TaxRegimeSimples, s.TaxRegime)

	_, err = uc.Upsert(ctx, dto.UpsertStoreRequest{ID: "X", Name: "X", ValuationMethod: "lifo"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	missing, err := uc.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}
