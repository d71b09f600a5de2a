package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhere_Placeholders(t *testing.T) {
	var w where
	assert.Equal(t, "", w.String())
	w.add("product_id = $%d", "P")
	w.conds = append(w.conds, "quantity > 0")
	w.add("store_id = $%d", "S")
	assert.Equal(t, " WHERE product_id = $1 AND quantity > 0 AND store_id = $2", w.String())
	assert.Equal(t, " LIMIT $3 OFFSET $4", w.page(10, 20))
	assert.Equal(t, []any{"P", "S", 10, 20}, w.args)

	var empty where
	assert.Equal(t, "", empty.page(0, 0))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"})))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "55P03"}))
	assert.False(t, isRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isRetryable(errors.New("40001")))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
}

func TestSchemaEmbebido(t *testing.T) {
	for _, table := range []string{"stores", "products", "stock", "stock_movements", "batches", "movement_allocations", "reservations", "adjustments"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}

func TestPoolConfigFor(t *testing.T) {
	cfg := config.DBConfig{DatabaseURL: "postgres://app:secret@db:5432/inv?sslmode=disable", MaxConns: 10, MinConns: 4, LockTimeoutMs: 1500}
	pc, err := poolConfigFor(cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 10, pc.MaxConns)
	assert.EqualValues(t, 4, pc.MinConns)
	assert.Equal(t, "1500", pc.ConnConfig.RuntimeParams["lock_timeout"])
	assert.Equal(t, "inventory-ledger", pc.ConnConfig.RuntimeParams["application_name"])
	assert.NotNil(t, pc.AfterConnect)

	t.Run("valores por defecto", func(t *testing.T) {
		pc, err := poolConfigFor(config.DBConfig{DatabaseURL: "postgres://app@db/inv?application_name=seed", MinConns: 99})
		require.NoError(t, err)
		assert.EqualValues(t, defaultMaxConns, pc.MaxConns)
		assert.EqualValues(t, defaultMinConns, pc.MinConns)
		assert.Equal(t, "5000", pc.ConnConfig.RuntimeParams["lock_timeout"])
		assert.Equal(t, "seed", pc.ConnConfig.RuntimeParams["application_name"])
	})

	t.Run("DSN inválido", func(t *testing.T) {
		_, err := poolConfigFor(config.DBConfig{DatabaseURL: "postgres://%zz"})
		assert.Error(t, err)
	})
}
