package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador de reservas. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, product_id, store_id, quantity, external_order_id, channel, state,
	created_at, expires_at, resolved_at, movement_id`

// Create inserta una reserva.
func (r *ReservationRepo) Create(ctx context.Context, rv *entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query, rv.ID, rv.ProductID, rv.StoreID, rv.Quantity, rv.ExternalOrderID, rv.Channel, rv.State,
		rv.CreatedAt, rv.ExpiresAt, rv.ResolvedAt, rv.MovementID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("reserva %s: %w", rv.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// GetByID obtiene una reserva; (nil, nil) si no existe.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.get(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea la reserva. Llamar después de bloquear el saldo del par.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.get(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
}

func (r *ReservationRepo) get(ctx context.Context, query, id string) (*entity.Reservation, error) {
	rv, err := scanReservation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return rv, nil
}

// UpdateState persiste estado, resolved_at, movement_id y el pedido externo.
func (r *ReservationRepo) UpdateState(ctx context.Context, rv *entity.Reservation) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE reservations SET state = $2, resolved_at = $3, movement_id = $4, external_order_id = $5
		WHERE id = $1`, rv.ID, rv.State, rv.ResolvedAt, rv.MovementID, rv.ExternalOrderID)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reserva %s: %w", rv.ID, domain.ErrNotFound)
	}
	return nil
}

// ListOverdue reservas activas con expires_at <= now, las más viejas primero. limit 0 no limita.
func (r *ReservationRepo) ListOverdue(ctx context.Context, now time.Time, productID, storeID string, limit int) ([]*entity.Reservation, error) {
	var w where
	w.conds = append(w.conds, "state = 'active'")
	w.add("expires_at <= $%d", now)
	if productID != "" {
		w.add("product_id = $%d", productID)
	}
	if storeID != "" {
		w.add("store_id = $%d", storeID)
	}
	query := `SELECT ` + reservationColumns + ` FROM reservations` + w.String() + ` ORDER BY expires_at, id`
	query += w.page(limit, 0)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list overdue reservations: %w", err)
	}
	defer rows.Close()
	var out []*entity.Reservation
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// SumActive suma las reservas activas y vigentes a la fecha; storeID vacío agrega todas las tiendas.
func (r *ReservationRepo) SumActive(ctx context.Context, productID, storeID string, now time.Time) (decimal.Decimal, error) {
	var w where
	w.conds = append(w.conds, "state = 'active'")
	w.add("product_id = $%d", productID)
	w.add("expires_at > $%d", now)
	if storeID != "" {
		w.add("store_id = $%d", storeID)
	}
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM reservations`+w.String(), w.args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum reservations: %w", err)
	}
	return sum, nil
}

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var rv entity.Reservation
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.StoreID, &rv.Quantity, &rv.ExternalOrderID, &rv.Channel, &rv.State,
		&rv.CreatedAt, &rv.ExpiresAt, &rv.ResolvedAt, &rv.MovementID)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}
