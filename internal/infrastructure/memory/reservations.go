package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReservationRepo implementa repository.ReservationRepository.
type ReservationRepo struct{ base }

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

func (r *ReservationRepo) Create(_ context.Context, rv *entity.Reservation) error {
	return r.with(func(st *state) error {
		if _, ok := st.reservations[rv.ID]; ok {
			return fmt.Errorf("reserva %s: %w", rv.ID, domain.ErrDuplicate)
		}
		st.reservations[rv.ID] = copyReservation(rv)
		return nil
	})
}

func (r *ReservationRepo) GetByID(_ context.Context, id string) (*entity.Reservation, error) {
	var out *entity.Reservation
	err := r.with(func(st *state) error {
		if v, ok := st.reservations[id]; ok {
			out = copyReservation(v)
		}
		return nil
	})
	return out, err
}

func (r *ReservationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *ReservationRepo) UpdateState(_ context.Context, rv *entity.Reservation) error {
	return r.with(func(st *state) error {
		v, ok := st.reservations[rv.ID]
		if !ok {
			return fmt.Errorf("reserva %s: %w", rv.ID, domain.ErrNotFound)
		}
		c := copyReservation(rv)
		v.State, v.ResolvedAt, v.MovementID, v.ExternalOrderID = c.State, c.ResolvedAt, c.MovementID, c.ExternalOrderID
		return nil
	})
}

func (r *ReservationRepo) ListOverdue(_ context.Context, now time.Time, productID, storeID string, limit int) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	err := r.with(func(st *state) error {
		for _, v := range st.reservations {
			if !v.Overdue(now) {
				continue
			}
			if productID != "" && v.ProductID != productID {
				continue
			}
			if storeID != "" && v.StoreID != storeID {
				continue
			}
			out = append(out, copyReservation(v))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiresAt.Equal(out[j].ExpiresAt) {
			return out[i].ExpiresAt.Before(out[j].ExpiresAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, 0), err
}

func (r *ReservationRepo) SumActive(_ context.Context, productID, storeID string, now time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.with(func(st *state) error {
		for _, v := range st.reservations {
			if !v.IsActive() || !now.Before(v.ExpiresAt) || v.ProductID != productID {
				continue
			}
			if storeID != "" && v.StoreID != storeID {
				continue
			}
			sum = sum.Add(v.Quantity)
		}
		return nil
	})
	return sum, err
}

// AdjustmentRepo implementa repository.AdjustmentRepository.
type AdjustmentRepo struct{ base }

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

func (r *AdjustmentRepo) Create(_ context.Context, a *entity.Adjustment) error {
	return r.with(func(st *state) error {
		st.adjustments = append(st.adjustments, copyAdjustment(a))
		return nil
	})
}

func (r *AdjustmentRepo) List(_ context.Context, f repository.AdjustmentFilter) ([]*entity.Adjustment, error) {
	var out []*entity.Adjustment
	err := r.with(func(st *state) error {
		for i := len(st.adjustments) - 1; i >= 0; i-- {
			a := st.adjustments[i]
			switch {
			case f.ProductID != "" && a.ProductID != f.ProductID,
				f.StoreID != "" && a.StoreID != f.StoreID,
				f.Reason != "" && a.Reason != f.Reason,
				f.Actor != "" && a.Actor != f.Actor,
				f.From != nil && a.CreatedAt.Before(*f.From),
				f.To != nil && a.CreatedAt.After(*f.To):
				continue
			}
			out = append(out, copyAdjustment(a))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), err
}
