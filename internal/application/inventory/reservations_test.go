package inventory_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

func (f *fixture) reserve(t *testing.T, qty string) *entity.Reservation {
	t.Helper()
	rv, err := f.res.Create(f.ctx, inventory.CreateReservationInput{ProductID: productP, StoreID: storeFIFO, Quantity: d(qty), ExternalOrderID: "WEB-1", Channel: "web"})
	require.NoError(t, err)
	return rv
}

func (f *fixture) available(t *testing.T) string {
	t.Helper()
	a, err := f.res.CheckAvailability(f.ctx, productP, storeFIFO, nil)
	require.NoError(t, err)
	return a.Available.String()
}

// ──────────────────────────────────────────────────────────────────────────────
// Disponibilidad y alta
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckAvailability_AgregaTiendas(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "10", "1", day(1))
	f.receive(t, storeB, "L1", "4", "1", day(1))
	f.reserve(t, "3")

	a, err := f.res.CheckAvailability(f.ctx, productP, "", dp("11"))
	require.NoError(t, err)
	assert.Equal(t, "14", a.Stock.String())
	assert.Equal(t, "3", a.Reserved.String())
	assert.Equal(t, "11", a.Available.String())
	assert.True(t, a.IsAvailable)
	require.Len(t, a.Stores, 2)

	a, err = f.res.CheckAvailability(f.ctx, productP, storeFIFO, dp("8"))
	require.NoError(t, err)
	assert.False(t, a.IsAvailable)

	_, err = f.res.CheckAvailability(f.ctx, "nope", "", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateReservation_Insuficiente(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "5", "1", day(1))
	f.reserve(t, "4")

	_, err := f.res.Create(f.ctx, inventory.CreateReservationInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("2")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.res.Create(f.ctx, inventory.CreateReservationInput{ProductID: productP, StoreID: storeFIFO, Quantity: d("0")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	f.assertInvariants(t, storeFIFO)
}

func TestCreateReservation_ExpiresAtFijo(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "5", "1", day(1))
	rv := f.reserve(t, "1")
	assert.Equal(t, entity.ReservationActive, rv.State)
	assert.Equal(t, 15*time.Minute, rv.ExpiresAt.Sub(rv.CreatedAt))
	assert.Equal(t, 15*time.Minute, f.res.TTL())
	assert.Contains(t, f.events.types(), inventory.EventReservationCreated)
}

// ──────────────────────────────────────────────────────────────────────────────
// Confirmación, cancelación y TTL
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirm_ConsumeYCierra(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "10", "3", day(1))
	rv := f.reserve(t, "4")

	out, err := f.res.Confirm(f.ctx, rv.ID, "ORD-77", "partner")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationConfirmed, out.Reservation.State)
	assert.Equal(t, out.Movement.ID, out.Reservation.MovementID)
	assert.Equal(t, "ORD-77", out.Movement.Reference)
	assert.Equal(t, inventory.ReasonReservationConfirmed, out.Movement.Reason)

	s := f.stock(t, storeFIFO)
	assert.Equal(t, "6", s.Quantity.String())
	assert.True(t, s.Reserved.IsZero())

	_, err = f.res.Confirm(f.ctx, rv.ID, "", "partner")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.res.Cancel(f.ctx, rv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	f.assertInvariants(t, storeFIFO)
}

func TestCancel_LiberaDeInmediato(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "10", "1", day(1))
	rv := f.reserve(t, "6")
	assert.Equal(t, "4", f.available(t))

	got, err := f.res.Cancel(f.ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationCancelled, got.State)
	assert.Equal(t, "10", f.available(t))
	assert.Len(t, f.movements(t, storeFIFO), 1)

	_, err = f.res.Cancel(f.ctx, rv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.res.Cancel(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.assertInvariants(t, storeFIFO)
}

func TestReservationTTL_ConfirmTardio(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "20", "1", day(1))
	before := f.available(t)
	rv := f.reserve(t, "10")
	assert.Equal(t, "10", f.available(t))

	// Al cumplirse el TTL el disponible vuelve aunque nadie haya barrido
	f.clock.Advance(15 * time.Minute)
	assert.Equal(t, before, f.available(t))
	got, err := f.res.Get(f.ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationExpired, got.State)

	f.clock.Advance(time.Minute)
	_, err = f.res.Confirm(f.ctx, rv.ID, "", "partner")
	assert.ErrorIs(t, err, domain.ErrReservationExpired)

	stored, err := f.deps.Repos.Reservations.GetByID(f.ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationExpired, stored.State)
	s := f.stock(t, storeFIFO)
	assert.Equal(t, "20", s.Quantity.String())
	assert.True(t, s.Reserved.IsZero())
	assert.Len(t, f.movements(t, storeFIFO), 1)
	f.assertInvariants(t, storeFIFO)
}

func TestCancel_Vencida(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "5", "1", day(1))
	rv := f.reserve(t, "5")
	f.clock.Advance(20 * time.Minute)

	_, err := f.res.Cancel(f.ctx, rv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.True(t, f.stock(t, storeFIFO).Reserved.IsZero())
}

func TestCreate_VenceAtrasadasDelPar(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "5", "1", day(1))
	old := f.reserve(t, "5")
	f.clock.Advance(16 * time.Minute)

	f.reserve(t, "5")
	stored, err := f.deps.Repos.Reservations.GetByID(f.ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationExpired, stored.State)
	assert.Equal(t, "5", f.stock(t, storeFIFO).Reserved.String())
	f.assertInvariants(t, storeFIFO)
}

func TestExpire_NoVencidaEsInvalidState(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "5", "1", day(1))
	rv := f.reserve(t, "2")

	err := f.res.Expire(f.ctx, rv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	f.clock.Advance(15 * time.Minute)
	require.NoError(t, f.res.Expire(f.ctx, rv.ID))
	assert.ErrorIs(t, f.res.Expire(f.ctx, rv.ID), domain.ErrInvalidState)
}

// ──────────────────────────────────────────────────────────────────────────────
// Carrera confirmación / barrido
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirmVsExpire_UnSoloGanador(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		f.receive(t, storeFIFO, "L1", "20", "1", day(1))
		rv := f.reserve(t, "10")

		// El confirm ve la reserva vigente y el barrido la ve vencida.
		confirmClock := &clock{now: f.clock.Now().Add(10 * time.Minute)}
		sweepClock := &clock{now: f.clock.Now().Add(16 * time.Minute)}
		cdeps, sdeps := f.deps, f.deps
		cdeps.Now, sdeps.Now = confirmClock.Now, sweepClock.Now
		confirmer := inventory.NewReservationUseCase(cdeps)
		sweeper := inventory.NewReservationUseCase(sdeps)

		var (
			wg                   sync.WaitGroup
			confirmErr, sweepErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, confirmErr = confirmer.Confirm(f.ctx, rv.ID, "", "partner")
		}()
		go func() {
			defer wg.Done()
			sweepErr = sweeper.Expire(f.ctx, rv.ID)
		}()
		wg.Wait()

		s := f.stock(t, storeFIFO)
		switch {
		case confirmErr == nil:
			assert.ErrorIs(t, sweepErr, domain.ErrInvalidState)
			assert.Equal(t, "10", s.Quantity.String())
		case sweepErr == nil:
			assert.True(t, errors.Is(confirmErr, domain.ErrReservationExpired) || errors.Is(confirmErr, domain.ErrInvalidState), confirmErr)
			assert.Equal(t, "20", s.Quantity.String())
		default:
			t.Fatalf("ninguna operación ganó: confirm=%v expire=%v", confirmErr, sweepErr)
		}
		assert.True(t, s.Reserved.IsZero())
		f.assertInvariants(t, storeFIFO)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Barrido
// ──────────────────────────────────────────────────────────────────────────────

func TestExpireOverdue_Barrido(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "10", "1", day(1))
	a := f.reserve(t, "2")
	f.reserve(t, "3")
	f.clock.Advance(5 * time.Minute)
	fresh := f.reserve(t, "1")
	f.clock.Advance(11 * time.Minute)

	sw := inventory.NewExpirySweeper(f.res, logger.Nop(), time.Hour, 10)
	res := sw.RunNow(f.ctx)
	assert.Equal(t, 2, res.Expired)
	assert.Empty(t, res.Failures)

	left, err := f.deps.Repos.Reservations.GetByID(f.ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationActive, left.State)
	gone, err := f.deps.Repos.Reservations.GetByID(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationExpired, gone.State)
	assert.Equal(t, "1", f.stock(t, storeFIFO).Reserved.String())

	res = sw.RunNow(f.ctx)
	assert.Zero(t, res.Expired)
	assert.Contains(t, f.events.types(), inventory.EventReservationExpired)
	f.assertInvariants(t, storeFIFO)
}

func TestExpirySweeper_StartStop(t *testing.T) {
	f := newFixture(t)
	f.receive(t, storeFIFO, "L1", "10", "1", day(1))
	f.reserve(t, "4")
	f.clock.Advance(time.Hour)

	sw := inventory.NewExpirySweeper(f.res, logger.Nop(), 10*time.Millisecond, 0)
	sw.Start(f.ctx)
	require.Eventually(t, func() bool {
		s, err := f.deps.Repos.Stocks.Get(f.ctx, productP, storeFIFO)
		return err == nil && s.Reserved.IsZero()
	}, time.Second, 10*time.Millisecond)
	sw.Stop()
	sw.Stop()
}
