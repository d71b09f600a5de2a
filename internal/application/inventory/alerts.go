package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// AlertUseCase calcula alertas de stock bajo y de vencimiento bajo demanda.
// No guarda estado de "ya alertado".
type AlertUseCase struct {
	d Deps
}

// NewAlertUseCase construye el caso de uso de alertas.
func NewAlertUseCase(d Deps) *AlertUseCase {
	return &AlertUseCase{d: d.withDefaults()}
}

// LowStockItem producto bajo su mínimo en una tienda, con sugerencia de reposición.
type LowStockItem struct {
	Product      *entity.Product
	Store        *entity.Store
	CurrentStock decimal.Decimal
	MinStock     decimal.Decimal
	MaxStock     decimal.Decimal
	Deficit      decimal.Decimal
	SuggestedQty decimal.Decimal // hasta MaxStock si está configurado, si no hasta MinStock
}

// LowStockReport lista los pares con stock < mínimo, ordenados por mayor déficit.
func (uc *AlertUseCase) LowStockReport(ctx context.Context, storeID string) ([]LowStockItem, error) {
	rows, err := uc.d.Repos.Stocks.List(ctx, repository.StockFilter{StoreID: storeID, OnlyLow: true})
	if err != nil {
		return nil, err
	}
	items := make([]LowStockItem, 0, len(rows))
	for _, s := range rows {
		if !s.IsLow() {
			continue
		}
		product, err := uc.d.Repos.Products.GetByID(ctx, s.ProductID)
		if err != nil {
			return nil, err
		}
		store, err := uc.d.Repos.Stores.GetByID(ctx, s.StoreID)
		if err != nil {
			return nil, err
		}
		if product == nil || store == nil {
			continue
		}
		target := s.MinStock
		if s.MaxStock.GreaterThan(s.MinStock) {
			target = s.MaxStock
		}
		items = append(items, LowStockItem{
			Product:      product,
			Store:        store,
			CurrentStock: s.Quantity,
			MinStock:     s.MinStock,
			MaxStock:     s.MaxStock,
			Deficit:      s.MinStock.Sub(s.Quantity),
			SuggestedQty: target.Sub(s.Quantity),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Deficit.GreaterThan(items[j].Deficit)
	})
	return items, nil
}

// Severidad de una alerta de vencimiento.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
)

// ExpiryAlert lote vencido o por vencer.
type ExpiryAlert struct {
	Batch        *entity.Batch
	ProductName  string
	StoreName    string
	DaysToExpiry int
	Severity     string
}

// ExpiryReport alertas agrupadas: vencidos, <= 7 días y hasta el umbral pedido.
type ExpiryReport struct {
	Expired       []ExpiryAlert
	ExpiringSoon  []ExpiryAlert
	ExpiringLater []ExpiryAlert
}

// Total cantidad de lotes en el reporte.
func (r *ExpiryReport) Total() int {
	return len(r.Expired) + len(r.ExpiringSoon) + len(r.ExpiringLater)
}

// ExpiryAlerts lee los lotes con saldo que vencen dentro de daysThreshold días (incluye vencidos).
func (uc *AlertUseCase) ExpiryAlerts(ctx context.Context, storeID string, daysThreshold int) (*ExpiryReport, error) {
	if daysThreshold < 0 {
		return nil, domain.Validation("daysThreshold negativo")
	}
	if daysThreshold == 0 {
		daysThreshold = inventory.ExpiringWindowDays
	}
	now := uc.d.Now()
	limit := now.AddDate(0, 0, daysThreshold)
	batches, err := uc.d.Repos.Batches.List(ctx, repository.BatchFilter{StoreID: storeID, OnlyActive: true, ExpiringBefore: &limit})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].ExpiryDate.Before(*batches[j].ExpiryDate)
	})

	names := map[string]string{}
	stores := map[string]string{}
	report := &ExpiryReport{Expired: []ExpiryAlert{}, ExpiringSoon: []ExpiryAlert{}, ExpiringLater: []ExpiryAlert{}}
	for _, b := range batches {
		if b.ExpiryDate == nil {
			continue
		}
		days := inventory.DaysToExpiry(*b.ExpiryDate, now)
		if days > daysThreshold {
			continue
		}
		alert := ExpiryAlert{Batch: b, DaysToExpiry: days}
		if alert.ProductName, err = uc.productName(ctx, names, b.ProductID); err != nil {
			return nil, err
		}
		if alert.StoreName, err = uc.storeName(ctx, stores, b.StoreID); err != nil {
			return nil, err
		}
		switch {
		case days < 0:
			alert.Severity = SeverityCritical
			report.Expired = append(report.Expired, alert)
		case days <= inventory.UrgentWindowDays:
			alert.Severity = SeverityHigh
			report.ExpiringSoon = append(report.ExpiringSoon, alert)
		default:
			alert.Severity = SeverityMedium
			report.ExpiringLater = append(report.ExpiringLater, alert)
		}
	}
	return report, nil
}

func (uc *AlertUseCase) productName(ctx context.Context, cache map[string]string, id string) (string, error) {
	if n, ok := cache[id]; ok {
		return n, nil
	}
	p, err := uc.d.Repos.Products.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if p != nil {
		cache[id] = p.Name
	}
	return cache[id], nil
}

func (uc *AlertUseCase) storeName(ctx context.Context, cache map[string]string, id string) (string, error) {
	if n, ok := cache[id]; ok {
		return n, nil
	}
	s, err := uc.d.Repos.Stores.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if s != nil {
		cache[id] = s.Name
	}
	return cache[id], nil
}
