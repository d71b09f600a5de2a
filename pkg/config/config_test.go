package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Reservation.TTL())
	assert.Equal(t, 30*time.Second, cfg.Reservation.SweepInterval())
	assert.Equal(t, 10, cfg.Inventory.MinNotesLength)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.NATS.Enabled())
	assert.Equal(t, "inventory", cfg.NATS.SubjectPrefix)
	assert.False(t, cfg.Fiscal.Enabled())
	assert.Equal(t, 15*time.Second, cfg.Fiscal.Timeout())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("PUBLIC_API_KEYS", "k1, k2 ,,k3")
	t.Setenv("RESERVATION_SWEEP_INTERVAL_SECONDS", "5")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("INVENTORY_DEFAULT_STORE_ID", "store-1")
	t.Setenv("FISCAL_URL", "http://fiscal:9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.DB.Driver)
	assert.Equal(t, []string{"k1", "k2", "k3"}, cfg.PublicAPI.Keys)
	assert.Equal(t, 5*time.Second, cfg.Reservation.SweepInterval())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "store-1", cfg.Inventory.DefaultStoreID)
	assert.True(t, cfg.Fiscal.Enabled())
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/w", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fw@db:5432/inv?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
