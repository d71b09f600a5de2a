package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// maxTxAttempts intentos ante serialization_failure / deadlock antes de devolver ErrConflict.
const maxTxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, log *logger.Logger) *TxRunner {
	if log == nil {
		log = logger.Nop()
	}
	return &TxRunner{pool: pool, log: log.Component("tx")}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Si la tx pierde una carrera (40001, 40P01, 55P03) se repite con espera lineal.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt*100) * time.Millisecond):
			}
		}
		if err = r.runOnce(ctx, fn); err == nil || !isRetryable(err) {
			return err
		}
		r.log.Warn().Err(err).Int("attempt", attempt+1).Msg("transacción en conflicto, reintentando")
	}
	return fmt.Errorf("%d intentos: %v: %w", maxTxAttempts, err, domain.ErrConflict)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(repos inventory.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.log.Debug().Err(rbErr).Msg("rollback")
		}
	}()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepos arma el set de repositorios sobre un pool o una tx.
func NewRepos(q Querier) inventory.Repos {
	return inventory.Repos{
		Stores:       NewStoreRepository(q),
		Products:     NewProductRepository(q),
		Stocks:       NewStockRepository(q),
		Batches:      NewBatchRepository(q),
		Movements:    NewMovementRepository(q),
		Reservations: NewReservationRepository(q),
		Adjustments:  NewAdjustmentRepository(q),
	}
}
