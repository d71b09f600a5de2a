package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ConfiguracionInvalidaDevuelveError(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestRun_DependenciaCaidaDevuelveError(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")
	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conexión a Redis")
}
