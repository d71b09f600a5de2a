package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReservationUseCase gestiona retenciones temporales de stock para canales externos.
// expiresAt manda: las lecturas ignoran reservas vencidas aunque el barrido aún no las haya marcado.
type ReservationUseCase struct {
	d Deps
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(d Deps) *ReservationUseCase {
	return &ReservationUseCase{d: d.withDefaults()}
}

// TTL devuelve la duración de una reserva.
func (uc *ReservationUseCase) TTL() time.Duration { return uc.d.Settings.ReservationTTL }

// StoreAvailability desglose por tienda.
type StoreAvailability struct {
	StoreID   string
	StoreName string
	Stock     decimal.Decimal
	Reserved  decimal.Decimal
	Available decimal.Decimal
}

// Availability foto de disponibilidad de un producto.
type Availability struct {
	Product     *entity.Product
	Stock       decimal.Decimal
	Reserved    decimal.Decimal
	Available   decimal.Decimal
	IsAvailable bool
	Stores      []StoreAvailability
}

// CheckAvailability calcula stock, reservado y disponible; sin storeID agrega todas las tiendas.
// Con quantity, isAvailable indica si alcanza; sin ella, si queda algo disponible.
func (uc *ReservationUseCase) CheckAvailability(ctx context.Context, productID, storeID string, quantity *decimal.Decimal) (*Availability, error) {
	if err := requireID("productId", productID); err != nil {
		return nil, err
	}
	if quantity != nil {
		if err := requirePositive("quantity", *quantity); err != nil {
			return nil, err
		}
	}
	product, err := uc.d.Repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	if storeID != "" {
		store, err := uc.d.Repos.Stores.GetByID(ctx, storeID)
		if err != nil {
			return nil, err
		}
		if store == nil {
			return nil, fmt.Errorf("tienda %s: %w", storeID, domain.ErrNotFound)
		}
	}
	now := uc.d.Now()
	rows, err := uc.d.Repos.Stocks.List(ctx, repository.StockFilter{ProductID: productID, StoreID: storeID})
	if err != nil {
		return nil, err
	}
	names, err := uc.storeNames(ctx)
	if err != nil {
		return nil, err
	}

	out := &Availability{Product: product, Stock: decimal.Zero, Reserved: decimal.Zero}
	for _, s := range rows {
		reserved, err := uc.d.Repos.Reservations.SumActive(ctx, productID, s.StoreID, now)
		if err != nil {
			return nil, err
		}
		out.Stock = out.Stock.Add(s.Quantity)
		out.Reserved = out.Reserved.Add(reserved)
		out.Stores = append(out.Stores, StoreAvailability{
			StoreID:   s.StoreID,
			StoreName: names[s.StoreID],
			Stock:     s.Quantity,
			Reserved:  reserved,
			Available: s.Quantity.Sub(reserved),
		})
	}
	out.Available = out.Stock.Sub(out.Reserved)
	if quantity != nil {
		out.IsAvailable = out.Available.GreaterThanOrEqual(*quantity)
	} else {
		out.IsAvailable = out.Available.GreaterThan(decimal.Zero)
	}
	return out, nil
}

func (uc *ReservationUseCase) storeNames(ctx context.Context) (map[string]string, error) {
	stores, err := uc.d.Repos.Stores.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(stores))
	for _, s := range stores {
		names[s.ID] = s.Name
	}
	return names, nil
}

// CreateReservationInput entrada de una reserva.
type CreateReservationInput struct {
	ProductID       string
	StoreID         string
	Quantity        decimal.Decimal
	ExternalOrderID string
	Channel         string
}

// Create retiene quantity si hay disponible. Dentro de la misma tx primero vence
// las reservas atrasadas del par para que el disponible sea exacto.
func (uc *ReservationUseCase) Create(ctx context.Context, in CreateReservationInput) (*entity.Reservation, error) {
	if err := requireID("productId", in.ProductID); err != nil {
		return nil, err
	}
	if err := requireID("storeId", in.StoreID); err != nil {
		return nil, err
	}
	if err := requirePositive("quantity", in.Quantity); err != nil {
		return nil, err
	}
	now := uc.d.Now()
	var (
		res *entity.Reservation
		box outbox
	)
	err := uc.d.Tx.Run(ctx, func(r Repos) error {
		box.reset()
		p, err := lockPair(ctx, r, in.ProductID, in.StoreID)
		if err != nil {
			return err
		}
		if err := releaseOverdue(ctx, r, p, now, &box); err != nil {
			return err
		}
		if p.stock.Available().LessThan(in.Quantity) {
			return fmt.Errorf("disponible %s, solicitado %s: %w", p.stock.Available(), in.Quantity, domain.ErrInsufficientStock)
		}
		p.stock.Reserved = p.stock.Reserved.Add(in.Quantity)
		p.stock.UpdatedAt = now
		if err := r.Stocks.Upsert(ctx, p.stock); err != nil {
			return err
		}
		res = &entity.Reservation{
			ID:              uuid.New().String(),
			ProductID:       in.ProductID,
			StoreID:         in.StoreID,
			Quantity:        in.Quantity,
			ExternalOrderID: in.ExternalOrderID,
			Channel:         in.Channel,
			State:           entity.ReservationActive,
			CreatedAt:       now,
			ExpiresAt:       now.Add(uc.d.Settings.ReservationTTL),
		}
		if err := r.Reservations.Create(ctx, res); err != nil {
			return err
		}
		box.add(reservationEvent(EventReservationCreated, res, now))
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.d.Events)
	return res, nil
}

// ConfirmResult resultado de confirmar una reserva.
type ConfirmResult struct {
	Reservation *entity.Reservation
	Movement    *entity.StockMovement
}

// Confirm convierte la retención en una venta: consume por FIFO, registra el movimiento
// y cierra la reserva. Si el TTL ya pasó, deja la reserva vencida y devuelve ErrReservationExpired.
func (uc *ReservationUseCase) Confirm(ctx context.Context, reservationID, orderID, actor string) (*ConfirmResult, error) {
	var (
		res     *ConfirmResult
		expired bool
		box     outbox
	)
	err := uc.locked(ctx, reservationID, func(r Repos, p *pair, rv *entity.Reservation, now time.Time) error {
		box.reset()
		expired = false
		switch {
		case rv.State == entity.ReservationExpired:
			return fmt.Errorf("reserva %s: %w", rv.ID, domain.ErrReservationExpired)
		case !rv.IsActive():
			return fmt.Errorf("reserva %s en estado %s: %w", rv.ID, rv.State, domain.ErrInvalidState)
		case rv.Overdue(now):
			expired = true
			return expireReservation(ctx, r, p.stock, rv, now, &box)
		}

		// La retención se libera y se reemplaza por la baja definitiva.
		p.stock.Reserved = p.stock.Reserved.Sub(rv.Quantity)
		ref := orderID
		if ref == "" {
			ref = rv.ExternalOrderID
		}
		mov, err := applyOutflow(ctx, r, p, outflow{
			movementType: entity.MovementSale,
			quantity:     rv.Quantity,
			reason:       ReasonReservationConfirmed,
			notes:        "reserva " + rv.ID,
			actor:        actor,
			reference:    ref,
		}, now)
		if err != nil {
			return err
		}
		rv.State = entity.ReservationConfirmed
		rv.ResolvedAt = &now
		rv.MovementID = mov.ID
		if orderID != "" {
			rv.ExternalOrderID = orderID
		}
		if err := r.Reservations.UpdateState(ctx, rv); err != nil {
			return err
		}
		res = &ConfirmResult{Reservation: rv, Movement: mov}
		box.add(reservationEvent(EventReservationConfirmed, rv, now))
		for _, e := range movementEvents(mov, p.stock) {
			box.add(e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.d.Events)
	if expired {
		return nil, fmt.Errorf("reserva %s: %w", reservationID, domain.ErrReservationExpired)
	}
	return res, nil
}

// Cancel libera la retención de inmediato. Solo una reserva activa puede cancelarse;
// si el TTL ya pasó se marca vencida y la cancelación falla con ErrInvalidState.
func (uc *ReservationUseCase) Cancel(ctx context.Context, reservationID string) (*entity.Reservation, error) {
	var (
		res     *entity.Reservation
		expired bool
		box     outbox
	)
	err := uc.locked(ctx, reservationID, func(r Repos, p *pair, rv *entity.Reservation, now time.Time) error {
		box.reset()
		expired = false
		if !rv.IsActive() {
			return fmt.Errorf("reserva %s en estado %s: %w", rv.ID, rv.State, domain.ErrInvalidState)
		}
		if rv.Overdue(now) {
			expired = true
			return expireReservation(ctx, r, p.stock, rv, now, &box)
		}
		p.stock.Reserved = p.stock.Reserved.Sub(rv.Quantity)
		p.stock.UpdatedAt = now
		if err := r.Stocks.Upsert(ctx, p.stock); err != nil {
			return err
		}
		rv.State = entity.ReservationCancelled
		rv.ResolvedAt = &now
		if err := r.Reservations.UpdateState(ctx, rv); err != nil {
			return err
		}
		res = rv
		box.add(reservationEvent(EventReservationCancelled, rv, now))
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.d.Events)
	if expired {
		return nil, fmt.Errorf("reserva %s vencida: %w", reservationID, domain.ErrInvalidState)
	}
	return res, nil
}

// Expire vence una reserva atrasada. Es idempotente: si otra operación ya la resolvió
// o aún no venció devuelve ErrInvalidState sin tocar nada.
func (uc *ReservationUseCase) Expire(ctx context.Context, reservationID string) error {
	var box outbox
	err := uc.locked(ctx, reservationID, func(r Repos, p *pair, rv *entity.Reservation, now time.Time) error {
		box.reset()
		if !rv.Overdue(now) {
			return fmt.Errorf("reserva %s en estado %s: %w", rv.ID, rv.State, domain.ErrInvalidState)
		}
		return expireReservation(ctx, r, p.stock, rv, now, &box)
	})
	if err != nil {
		return err
	}
	box.flush(ctx, uc.d.Events)
	return nil
}

// SweepResult resumen de un barrido.
type SweepResult struct {
	Expired  int
	Skipped  int // resueltas por otra operación antes del barrido
	Failures map[string]error
}

// ExpireOverdue vence hasta limit reservas atrasadas, una tx por reserva.
func (uc *ReservationUseCase) ExpireOverdue(ctx context.Context, limit int) (SweepResult, error) {
	res := SweepResult{Failures: map[string]error{}}
	list, err := uc.d.Repos.Reservations.ListOverdue(ctx, uc.d.Now(), "", "", limit)
	if err != nil {
		return res, err
	}
	for _, rv := range list {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		err := uc.Expire(ctx, rv.ID)
		switch {
		case err == nil:
			res.Expired++
		case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrNotFound):
			res.Skipped++
		default:
			res.Failures[rv.ID] = err
		}
	}
	return res, nil
}

// Get devuelve una reserva con su estado efectivo a la fecha.
func (uc *ReservationUseCase) Get(ctx context.Context, id string) (*entity.Reservation, error) {
	rv, err := uc.d.Repos.Reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, fmt.Errorf("reserva %s: %w", id, domain.ErrNotFound)
	}
	if rv.Overdue(uc.d.Now()) {
		rv.State = entity.ReservationExpired
	}
	return rv, nil
}

// locked abre una tx, bloquea el saldo del par y después la reserva (siempre en ese orden).
func (uc *ReservationUseCase) locked(ctx context.Context, reservationID string, fn func(r Repos, p *pair, rv *entity.Reservation, now time.Time) error) error {
	if err := requireID("reservationId", reservationID); err != nil {
		return err
	}
	probe, err := uc.d.Repos.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if probe == nil {
		return fmt.Errorf("reserva %s: %w", reservationID, domain.ErrNotFound)
	}
	return uc.d.Tx.Run(ctx, func(r Repos) error {
		p, err := lockPair(ctx, r, probe.ProductID, probe.StoreID)
		if err != nil {
			return err
		}
		rv, err := r.Reservations.GetForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if rv == nil {
			return fmt.Errorf("reserva %s: %w", reservationID, domain.ErrNotFound)
		}
		return fn(r, p, rv, uc.d.Now())
	})
}

func reservationEvent(t string, rv *entity.Reservation, now time.Time) Event {
	return Event{
		Type:          t,
		ProductID:     rv.ProductID,
		StoreID:       rv.StoreID,
		ReservationID: rv.ID,
		MovementID:    rv.MovementID,
		Quantity:      rv.Quantity,
		OccurredAt:    now,
	}
}
