package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *goredis.IntCmd {
	if f.err != nil {
		return goredis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return goredis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, d time.Duration) *goredis.BoolCmd {
	f.expires[key] = d
	return goredis.NewBoolResult(true, nil)
}

func TestRateLimiter_VentanaFija(t *testing.T) {
	ctx := context.Background()
	fc := newFakeCounter()
	l := NewRateLimiter(fc, "rl", 2, time.Minute)
	base := time.Date(2024, 1, 10, 12, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return base }

	d, err := l.Allow(ctx, "key-a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, 50*time.Second, d.ResetIn)

	d, _ = l.Allow(ctx, "key-a")
	assert.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "key-a")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	// otra clave tiene su propio contador
	d, _ = l.Allow(ctx, "key-b")
	assert.True(t, d.Allowed)

	// la ventana siguiente reinicia
	l.now = func() time.Time { return base.Add(time.Minute) }
	d, _ = l.Allow(ctx, "key-a")
	assert.True(t, d.Allowed)

	assert.Len(t, fc.expires, 3)
	for _, ttl := range fc.expires {
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestRateLimiter_SinLimite(t *testing.T) {
	l := NewRateLimiter(newFakeCounter(), "rl", 0, time.Minute)
	d, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRateLimiter_ErrorRedis(t *testing.T) {
	fc := newFakeCounter()
	fc.err = errors.New("connection refused")
	l := NewRateLimiter(fc, "rl", 5, time.Minute)
	_, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
}
