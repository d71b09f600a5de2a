package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// Valores por defecto del barrido de reservas.
const (
	DefaultSweepInterval = 30 * time.Second
	DefaultSweepBatch    = 200
)

// ExpirySweeper libera periódicamente las reservas vencidas. Las lecturas ya ignoran
// reservas atrasadas; el barrido solo devuelve el stock retenido a tiempo.
// Expire es idempotente, así que una falla se reintenta en el siguiente tick.
type ExpirySweeper struct {
	reservations *ReservationUseCase
	log          *logger.Logger
	interval     time.Duration
	batch        int

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewExpirySweeper construye el barrido. interval y batch <= 0 usan los valores por defecto.
func NewExpirySweeper(reservations *ReservationUseCase, log *logger.Logger, interval time.Duration, batch int) *ExpirySweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if batch <= 0 {
		batch = DefaultSweepBatch
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ExpirySweeper{
		reservations: reservations,
		log:          log.Component("expiry_sweeper"),
		interval:     interval,
		batch:        batch,
	}
}

// Start lanza el barrido en segundo plano. Corre una vez de inmediato y luego en cada tick
// hasta Stop o hasta que ctx termine.
func (s *ExpirySweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.loop(ctx, s.stop)
	s.log.Info().Dur("interval", s.interval).Int("batch", s.batch).Msg("barrido de reservas iniciado")
}

// Stop detiene el barrido y espera a que termine la pasada en curso.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()
	s.wg.Wait()
	s.log.Info().Msg("barrido de reservas detenido")
}

// Run bloquea hasta que ctx termine; pensado para errgroup.
func (s *ExpirySweeper) Run(ctx context.Context) error {
	s.Start(ctx)
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *ExpirySweeper) loop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunNow(ctx)
	for {
		select {
		case <-ticker.C:
			s.RunNow(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunNow ejecuta una pasada. Si hay más atrasadas que batch, sigue en el próximo tick.
func (s *ExpirySweeper) RunNow(ctx context.Context) SweepResult {
	res, err := s.reservations.ExpireOverdue(ctx, s.batch)
	if err != nil && ctx.Err() == nil {
		s.log.Error().Err(err).Msg("no se pudieron listar reservas vencidas")
	}
	for id, ferr := range res.Failures {
		s.log.Warn().Err(ferr).Str("reservation_id", id).Msg("no se pudo vencer la reserva")
	}
	if res.Expired > 0 || len(res.Failures) > 0 {
		s.log.Info().
			Int("expired", res.Expired).
			Int("skipped", res.Skipped).
			Int("failed", len(res.Failures)).
			Msg("barrido de reservas")
	}
	return res
}
