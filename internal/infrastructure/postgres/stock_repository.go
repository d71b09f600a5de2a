package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `product_id, store_id, quantity, reserved, average_cost, min_stock, max_stock, updated_at`

// Get obtiene el saldo de un producto en una tienda; en cero si no hay fila.
func (r *StockRepo) Get(ctx context.Context, productID, storeID string) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1 AND store_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ProductID: productID, StoreID: storeID}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetForUpdate crea la fila si falta y la bloquea (SELECT FOR UPDATE) hasta el fin de la tx.
// Así el primer ingreso de un par también queda serializado.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, storeID string) (*entity.Stock, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, store_id) VALUES ($1, $2)
		ON CONFLICT (product_id, store_id) DO NOTHING`, productID, storeID); err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1 AND store_id = $2 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, storeID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// Upsert inserta o actualiza el saldo completo del par.
func (r *StockRepo) Upsert(ctx context.Context, s *entity.Stock) error {
	query := `
		INSERT INTO stock (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (product_id, store_id) DO UPDATE SET
			quantity = EXCLUDED.quantity, reserved = EXCLUDED.reserved, average_cost = EXCLUDED.average_cost,
			min_stock = EXCLUDED.min_stock, max_stock = EXCLUDED.max_stock, updated_at = now()`
	_, err := r.q.Exec(ctx, query, s.ProductID, s.StoreID, s.Quantity, s.Reserved, s.AverageCost, s.MinStock, s.MaxStock)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// List lista saldos por producto y tienda.
func (r *StockRepo) List(ctx context.Context, f repository.StockFilter) ([]*entity.Stock, error) {
	var w where
	if f.ProductID != "" {
		w.add("product_id = $%d", f.ProductID)
	}
	if f.StoreID != "" {
		w.add("store_id = $%d", f.StoreID)
	}
	if f.OnlyLow {
		w.conds = append(w.conds, "min_stock > 0 AND quantity < min_stock")
	}
	rows, err := r.q.Query(ctx, `SELECT `+stockColumns+` FROM stock`+w.String()+` ORDER BY product_id, store_id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var out []*entity.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(&s.ProductID, &s.StoreID, &s.Quantity, &s.Reserved, &s.AverageCost, &s.MinStock, &s.MaxStock, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
