package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo implementación de AdjustmentRepository sobre PostgreSQL.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador de ajustes. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

const adjustmentColumns = `id, movement_id, product_id, store_id, quantity, reason, notes, unit_cost,
	previous_stock, percentage, is_large, confirmed, actor, created_at`

// Create inserta el ajuste; el movimiento ya debe existir en la misma tx.
func (r *AdjustmentRepo) Create(ctx context.Context, a *entity.Adjustment) error {
	query := `
		INSERT INTO adjustments (` + adjustmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query, a.ID, a.MovementID, a.ProductID, a.StoreID, a.Quantity, a.Reason, a.Notes, a.UnitCost,
		a.PreviousStock, a.Percentage, a.IsLarge, a.Confirmed, a.Actor, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create adjustment: %w", err)
	}
	return nil
}

// List ajustes filtrados, más reciente primero.
func (r *AdjustmentRepo) List(ctx context.Context, f repository.AdjustmentFilter) ([]*entity.Adjustment, error) {
	var w where
	if f.ProductID != "" {
		w.add("product_id = $%d", f.ProductID)
	}
	if f.StoreID != "" {
		w.add("store_id = $%d", f.StoreID)
	}
	if f.Reason != "" {
		w.add("reason = $%d", f.Reason)
	}
	if f.Actor != "" {
		w.add("actor = $%d", f.Actor)
	}
	if f.From != nil {
		w.add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= $%d", *f.To)
	}
	query := `SELECT ` + adjustmentColumns + ` FROM adjustments` + w.String() + ` ORDER BY created_at DESC, id DESC`
	query += w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()
	var out []*entity.Adjustment
	for rows.Next() {
		var a entity.Adjustment
		if err := rows.Scan(&a.ID, &a.MovementID, &a.ProductID, &a.StoreID, &a.Quantity, &a.Reason, &a.Notes, &a.UnitCost,
			&a.PreviousStock, &a.Percentage, &a.IsLarge, &a.Confirmed, &a.Actor, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
