package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, product_id, store_id, batch_number, quantity, initial_quantity, unit_cost,
	entry_date, expiry_date, supplier, movement_id, created_at`

// Create inserta un lote.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query, b.ID, b.ProductID, b.StoreID, b.BatchNumber, b.Quantity, b.InitialQuantity, b.UnitCost,
		b.EntryDate, b.ExpiryDate, b.Supplier, b.MovementID, b.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lote %s: %w", b.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote; (nil, nil) si no existe.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// ListAvailableForUpdate lotes con saldo en orden FIFO, bloqueados hasta el fin de la tx.
func (r *BatchRepo) ListAvailableForUpdate(ctx context.Context, productID, storeID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + ` FROM batches
		WHERE product_id = $1 AND store_id = $2 AND quantity > 0
		ORDER BY entry_date, id
		FOR UPDATE`
	return r.query(ctx, query, productID, storeID)
}

// UpdateQuantity fija la cantidad restante del lote.
func (r *BatchRepo) UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE batches SET quantity = $2 WHERE id = $1`, id, quantity)
	if err != nil {
		return fmt.Errorf("update batch quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lote %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List lotes filtrados en orden FIFO.
func (r *BatchRepo) List(ctx context.Context, f repository.BatchFilter) ([]*entity.Batch, error) {
	var w where
	if f.ProductID != "" {
		w.add("product_id = $%d", f.ProductID)
	}
	if f.StoreID != "" {
		w.add("store_id = $%d", f.StoreID)
	}
	if f.OnlyActive {
		w.conds = append(w.conds, "quantity > 0")
	}
	if f.ExpiringBefore != nil {
		w.add("expiry_date IS NOT NULL AND expiry_date <= $%d", *f.ExpiringBefore)
	}
	return r.query(ctx, `SELECT `+batchColumns+` FROM batches`+w.String()+` ORDER BY entry_date, id`, w.args...)
}

// ExistsNumber indica si el número de lote ya existe para el par.
func (r *BatchRepo) ExistsNumber(ctx context.Context, productID, storeID, batchNumber string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM batches WHERE product_id = $1 AND store_id = $2 AND batch_number = $3)`,
		productID, storeID, batchNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists batch number: %w", err)
	}
	return exists, nil
}

func (r *BatchRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var out []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(&b.ID, &b.ProductID, &b.StoreID, &b.BatchNumber, &b.Quantity, &b.InitialQuantity, &b.UnitCost,
		&b.EntryDate, &b.ExpiryDate, &b.Supplier, &b.MovementID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
