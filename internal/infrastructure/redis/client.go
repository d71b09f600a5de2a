// Package redis contiene los adaptadores de Redis del servicio.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-ledger/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

const (
	maxRetries      = 3
	minRetryBackoff = 100 * time.Millisecond
	maxRetryBackoff = 300 * time.Millisecond
	dialTimeout     = 5 * time.Second
	readTimeout     = 3 * time.Second
	writeTimeout    = 3 * time.Second
	pingTimeout     = 5 * time.Second
)

// Connect abre el cliente y verifica la conexión con PING.
func Connect(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      maxRetries,
		MinRetryBackoff: minRetryBackoff,
		MaxRetryBackoff: maxRetryBackoff,
		DialTimeout:     dialTimeout,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
	})
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
