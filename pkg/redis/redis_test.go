package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (IRedis, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	t.Setenv("REDIS_ADDRESS", srv.Addr())
	t.Setenv("REDIS_PASSWORD", "")
	t.Setenv("REDIS_DB", "")

	r := New()
	t.Cleanup(func() { _ = r.Close() })
	return r, srv
}

func TestIncrementAttemptsStartsWindowOnFirstHit(t *testing.T) {
	r, srv := newTestRedis(t)
	ctx := context.Background()

	n, err := r.IncrementAttempts(ctx, "login:a@b.c", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, srv.TTL("login:a@b.c"))

	// later hits keep the original window
	srv.FastForward(20 * time.Second)
	n, err = r.IncrementAttempts(ctx, "login:a@b.c", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 40*time.Second, srv.TTL("login:a@b.c"))

	srv.FastForward(41 * time.Second)
	got, err := r.GetAttempts(ctx, "login:a@b.c")
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestGetAttemptsMissingKeyIsZero(t *testing.T) {
	r, _ := newTestRedis(t)

	got, err := r.GetAttempts(context.Background(), "login:nobody")
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestResetAttempts(t *testing.T) {
	r, srv := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.IncrementAttempts(ctx, "login:a@b.c", time.Minute)
		require.NoError(t, err)
	}

	require.NoError(t, r.ResetAttempts(ctx, "login:a@b.c"))
	assert.False(t, srv.Exists("login:a@b.c"))

	got, err := r.GetAttempts(ctx, "login:a@b.c")
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestGetAttemptsSurfacesServerErrors(t *testing.T) {
	r, srv := newTestRedis(t)
	srv.Close()

	_, err := r.GetAttempts(context.Background(), "login:a@b.c")
	assert.Error(t, err)
}
