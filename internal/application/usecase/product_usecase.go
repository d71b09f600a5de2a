package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ProductUseCase lecturas del catálogo con la foto de stock por tienda.
// El alta de productos pertenece al catálogo externo; Upsert solo sincroniza.
type ProductUseCase struct {
	products     repository.ProductRepository
	stores       repository.StoreRepository
	stocks       repository.StockRepository
	reservations repository.ReservationRepository
	now          func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(products repository.ProductRepository, stores repository.StoreRepository, stocks repository.StockRepository, reservations repository.ReservationRepository, now func() time.Time) *ProductUseCase {
	if now == nil {
		now = time.Now
	}
	return &ProductUseCase{products: products, stores: stores, stocks: stocks, reservations: reservations, now: now}
}

// Upsert crea o reemplaza un producto.
func (uc *ProductUseCase) Upsert(ctx context.Context, in dto.UpsertProductRequest) error {
	if err := in.Validate(); err != nil {
		return err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	now := uc.now()
	return uc.products.Upsert(ctx, &entity.Product{
		ID:        in.ID,
		Name:      strings.TrimSpace(in.Name),
		Brand:     in.Brand,
		Category:  in.Category,
		Unit:      in.Unit,
		Price:     in.Price,
		Active:    active,
		Barcode:   in.Barcode,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// ListProducts devuelve una fila por producto activo y tienda con stock, reservado y disponible.
// category compara sin mayúsculas ni tildes ("Lácteos" == "lacteos"). limit por defecto 50, máximo 100.
func (uc *ProductUseCase) ListProducts(ctx context.Context, storeID, category string, limit int) ([]dto.ProductStockResponse, error) {
	if limit == 0 {
		limit = dto.DefaultLimit
	}
	if limit < 1 || limit > dto.MaxCatalogLimit {
		return nil, domain.Validation("limit debe estar entre 1 y %d", dto.MaxCatalogLimit)
	}
	stores, err := uc.stores.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(stores))
	for _, s := range stores {
		names[s.ID] = s.Name
	}
	if storeID != "" {
		if _, ok := names[storeID]; !ok {
			return nil, fmt.Errorf("tienda %s: %w", storeID, domain.ErrNotFound)
		}
	}

	products, err := uc.products.List(ctx, repository.ProductFilter{OnlyActive: true})
	if err != nil {
		return nil, err
	}
	want := normalizeCategory(category)
	now := uc.now()
	out := make([]dto.ProductStockResponse, 0, limit)
	for _, p := range products {
		if want != "" && normalizeCategory(p.Category) != want {
			continue
		}
		rows, err := uc.stocks.List(ctx, repository.StockFilter{ProductID: p.ID, StoreID: storeID})
		if err != nil {
			return nil, err
		}
		for _, s := range rows {
			reserved, err := uc.reservations.SumActive(ctx, p.ID, s.StoreID, now)
			if err != nil {
				return nil, err
			}
			out = append(out, dto.ProductStockResponse{
				ProductID: p.ID,
				Name:      p.Name,
				Brand:     p.Brand,
				Category:  p.Category,
				Unit:      p.Unit,
				Price:     p.Price,
				Barcode:   p.Barcode,
				StoreID:   s.StoreID,
				StoreName: names[s.StoreID],
				Stock:     s.Quantity,
				Reserved:  reserved,
				Available: decimal.Max(s.Quantity.Sub(reserved), decimal.Zero),
			})
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// normalizeCategory quita tildes y pliega mayúsculas. El transformer no es seguro
// para uso concurrente, se crea en cada llamada.
func normalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	return cases.Fold().String(plain)
}
