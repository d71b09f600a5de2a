package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre PostgreSQL. Solo INSERT y SELECT;
// la tabla además rechaza UPDATE y DELETE por trigger.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, product_id, store_id, movement_type, quantity, unit_cost, total_cost,
	valuation_method, reason, notes, actor, reference, created_at`

// Create inserta el movimiento y sus asignaciones por lote.
func (r *MovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query, m.ID, m.ProductID, m.StoreID, m.Type, m.Quantity, m.UnitCost, m.TotalCost,
		m.ValuationMethod, m.Reason, m.Notes, m.Actor, m.Reference, m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	for _, a := range m.Allocations {
		_, err := r.q.Exec(ctx, `
			INSERT INTO movement_allocations (movement_id, batch_id, quantity, unit_cost)
			VALUES ($1, $2, $3, $4)`, m.ID, a.BatchID, a.Quantity, a.UnitCost)
		if err != nil {
			return fmt.Errorf("create allocation: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un movimiento con sus asignaciones; (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if err := r.loadAllocations(ctx, []*entity.StockMovement{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// List página del libro filtrada, más reciente primero, y el total sin paginar.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	var w where
	if f.ProductID != "" {
		w.add("product_id = $%d", f.ProductID)
	}
	if f.StoreID != "" {
		w.add("store_id = $%d", f.StoreID)
	}
	if f.Type != "" {
		w.add("movement_type = $%d", f.Type)
	}
	if f.From != nil {
		w.add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= $%d", *f.To)
	}
	filter := w.String()

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements`+filter, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements` + filter + ` ORDER BY created_at DESC, id DESC`
	query += w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()
	if err := r.loadAllocations(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListAllocationsByBatch asignaciones que consumieron el lote, en orden cronológico.
func (r *MovementRepo) ListAllocationsByBatch(ctx context.Context, batchID string) ([]entity.AllocationTrace, error) {
	rows, err := r.q.Query(ctx, `
		SELECT a.movement_id, a.batch_id, a.quantity, a.unit_cost, m.movement_type, m.reference, m.actor, m.created_at
		FROM movement_allocations a
		JOIN stock_movements m ON m.id = a.movement_id
		WHERE a.batch_id = $1
		ORDER BY m.created_at, m.id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()
	var out []entity.AllocationTrace
	for rows.Next() {
		var t entity.AllocationTrace
		if err := rows.Scan(&t.MovementID, &t.BatchID, &t.Quantity, &t.UnitCost, &t.MovementType, &t.Reference, &t.Actor, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *MovementRepo) loadAllocations(ctx context.Context, movs []*entity.StockMovement) error {
	if len(movs) == 0 {
		return nil
	}
	ids := make([]string, len(movs))
	byID := make(map[string]*entity.StockMovement, len(movs))
	for i, m := range movs {
		ids[i] = m.ID
		byID[m.ID] = m
	}
	rows, err := r.q.Query(ctx, `
		SELECT a.movement_id, a.batch_id, a.quantity, a.unit_cost
		FROM movement_allocations a
		JOIN batches b ON b.id = a.batch_id
		WHERE a.movement_id = ANY($1)
		ORDER BY b.entry_date, b.id`, ids)
	if err != nil {
		return fmt.Errorf("load allocations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a entity.Allocation
		if err := rows.Scan(&a.MovementID, &a.BatchID, &a.Quantity, &a.UnitCost); err != nil {
			return fmt.Errorf("scan allocation: %w", err)
		}
		if m := byID[a.MovementID]; m != nil {
			m.Allocations = append(m.Allocations, a)
		}
	}
	return rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(&m.ID, &m.ProductID, &m.StoreID, &m.Type, &m.Quantity, &m.UnitCost, &m.TotalCost,
		&m.ValuationMethod, &m.Reason, &m.Notes, &m.Actor, &m.Reference, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
