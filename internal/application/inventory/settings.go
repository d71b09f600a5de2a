package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// SettingsUseCase configuración por tienda (valoración, régimen) y umbrales por producto.
type SettingsUseCase struct {
	d Deps
}

// NewSettingsUseCase construye el caso de uso.
func NewSettingsUseCase(d Deps) *SettingsUseCase {
	return &SettingsUseCase{d: d.withDefaults()}
}

// StoreSettingsInput cambios de configuración; nil deja el valor actual.
type StoreSettingsInput struct {
	ValuationMethod *string
	TaxRegime       *string
}

// UpdateStoreSettings cambia método de valoración y régimen tributario.
// El cambio solo afecta movimientos futuros; al pasar a average_cost el promedio
// de cada producto se siembra con el costo medio de sus lotes con saldo.
// La tienda queda bloqueada en exclusiva: ninguna entrada o salida corre en ella
// mientras se siembra.
func (uc *SettingsUseCase) UpdateStoreSettings(ctx context.Context, storeID string, in StoreSettingsInput) (*entity.Store, error) {
	if err := requireID("storeId", storeID); err != nil {
		return nil, err
	}
	if in.ValuationMethod != nil && !entity.ValidValuationMethod(*in.ValuationMethod) {
		return nil, domain.Validation("método de valoración desconocido %q", *in.ValuationMethod)
	}
	if in.TaxRegime != nil && !entity.ValidTaxRegime(*in.TaxRegime) {
		return nil, domain.Validation("régimen tributario desconocido %q", *in.TaxRegime)
	}
	now := uc.d.Now()
	var out *entity.Store
	err := uc.d.Tx.Run(ctx, func(r Repos) error {
		store, err := r.Stores.GetForUpdate(ctx, storeID)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("tienda %s: %w", storeID, domain.ErrNotFound)
		}
		method, regime := store.ValuationMethod, store.TaxRegime
		if in.ValuationMethod != nil {
			method = *in.ValuationMethod
		}
		if in.TaxRegime != nil {
			regime = *in.TaxRegime
		}
		if method == entity.ValuationAverageCost && store.ValuationMethod != entity.ValuationAverageCost {
			if err := seedAverages(ctx, r, storeID); err != nil {
				return err
			}
		}
		if err := r.Stores.UpdateSettings(ctx, storeID, method, regime); err != nil {
			return err
		}
		cp := *store
		cp.ValuationMethod, cp.TaxRegime, cp.UpdatedAt = method, regime, now
		out = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// seedAverages recorre los saldos de la tienda en orden de producto y fija el promedio inicial.
func seedAverages(ctx context.Context, r Repos, storeID string) error {
	rows, err := r.Stocks.List(ctx, repository.StockFilter{StoreID: storeID})
	if err != nil {
		return err
	}
	for _, row := range rows {
		stock, err := r.Stocks.GetForUpdate(ctx, row.ProductID, storeID)
		if err != nil {
			return err
		}
		batches, err := r.Batches.ListAvailableForUpdate(ctx, row.ProductID, storeID)
		if err != nil {
			return err
		}
		stock.AverageCost = inventory.AverageOfBatches(batches)
		if err := r.Stocks.Upsert(ctx, stock); err != nil {
			return err
		}
	}
	return nil
}

// SetThresholds configura mínimo y máximo de un producto en una tienda. MaxStock 0 = sin máximo.
func (uc *SettingsUseCase) SetThresholds(ctx context.Context, productID, storeID string, minStock, maxStock decimal.Decimal) (*entity.Stock, error) {
	if err := requireID("productId", productID); err != nil {
		return nil, err
	}
	if err := requireID("storeId", storeID); err != nil {
		return nil, err
	}
	if minStock.IsNegative() || maxStock.IsNegative() {
		return nil, domain.Validation("umbrales no pueden ser negativos")
	}
	if !maxStock.IsZero() && maxStock.LessThan(minStock) {
		return nil, domain.Validation("maxStock menor que minStock")
	}
	var out *entity.Stock
	err := uc.d.Tx.Run(ctx, func(r Repos) error {
		p, err := lockPair(ctx, r, productID, storeID)
		if err != nil {
			return err
		}
		p.stock.MinStock, p.stock.MaxStock = minStock, maxStock
		p.stock.UpdatedAt = uc.d.Now()
		if err := r.Stocks.Upsert(ctx, p.stock); err != nil {
			return err
		}
		out = p.stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
