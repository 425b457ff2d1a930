package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, c Client) {
	t.Helper()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	require.True(t, IsNotFound(err))

	buf := []byte("v1")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'X'
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v1", string(got))

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, c.Ping(ctx))
}

func TestMemory(t *testing.T) {
	m := NewMemory("ml", time.Minute)
	exercise(t, m)
	require.Equal(t, "memory", m.Driver())

	require.NoError(t, m.Set(context.Background(), "short", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, err := m.Get(context.Background(), "short")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), Config{Driver: "redis", Addr: mr.Addr(), Prefix: "ml", DefaultTTL: time.Minute})
	require.NoError(t, err)
	defer c.Close()
	exercise(t, c)

	require.NoError(t, c.Set(context.Background(), "ttl", []byte("x"), 0))
	require.True(t, mr.Exists("ml:ttl"))
	require.Equal(t, time.Minute, mr.TTL("ml:ttl"))

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(context.Background(), "ttl")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Config{Driver: "memcached"})
	require.Error(t, err)
}
