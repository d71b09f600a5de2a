package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jhoicas/inventory-ledger/pkg/config"
)

const (
	defaultMaxConns    = 25
	defaultMinConns    = 2
	defaultLockTimeout = 5 * time.Second
)

// NewPool crea el pool de conexiones y verifica la conexión con un ping.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := poolConfigFor(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// poolConfigFor arma la configuración del pool sin conectar.
// lock_timeout acota la espera por FOR UPDATE sobre filas de stock y reservas; al vencer
// PostgreSQL devuelve 55P03 y el TxRunner lo trata como conflicto reintentable.
func poolConfigFor(cfg config.DBConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MinConns = defaultMinConns
	if cfg.MinConns > 0 && int32(cfg.MinConns) <= poolConfig.MaxConns {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	lockTimeout := defaultLockTimeout
	if cfg.LockTimeoutMs > 0 {
		lockTimeout = time.Duration(cfg.LockTimeoutMs) * time.Millisecond
	}
	rp := poolConfig.ConnConfig.RuntimeParams
	rp["lock_timeout"] = strconv.FormatInt(lockTimeout.Milliseconds(), 10)
	if _, ok := rp["application_name"]; !ok {
		rp["application_name"] = "inventory-ledger"
	}

	// Codec NUMERIC -> shopspring/decimal en todas las conexiones del pool.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	return poolConfig, nil
}
