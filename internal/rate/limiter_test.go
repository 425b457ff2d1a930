package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisLimiter(client, "", 2, time.Minute)
	fixed := time.Date(2026, 5, 1, 12, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	ctx := context.Background()

	r1, err := l.Allow(ctx, "ip 1.2.3.4")
	require.NoError(t, err)
	require.True(t, r1.Allowed)
	require.EqualValues(t, 1, r1.Remaining)

	r2, err := l.Allow(ctx, "ip 1.2.3.4")
	require.NoError(t, err)
	require.True(t, r2.Allowed)

	r3, err := l.Allow(ctx, "ip 1.2.3.4")
	require.NoError(t, err)
	require.False(t, r3.Allowed)
	require.EqualValues(t, 0, r3.Remaining)
	require.Greater(t, r3.RetryAfter, time.Duration(0))

	key := "rl:ip_1.2.3.4:" + "1777636800"
	require.True(t, mr.Exists(key))
	require.Equal(t, time.Minute, mr.TTL(key))

	// otra key tiene su propio contador
	other, err := l.Allow(ctx, "ip 5.6.7.8")
	require.NoError(t, err)
	require.True(t, other.Allowed)
}

func TestRedisLimiter_Error(t *testing.T) {
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	_, err := NewRedisLimiter(client, "x:", 1, time.Second).Allow(context.Background(), "k")
	require.Error(t, err)
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	now := time.Date(2026, 5, 1, 12, 0, 50, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	r, _ := l.Allow(ctx, "k")
	require.True(t, r.Allowed)
	r, _ = l.Allow(ctx, "k")
	require.False(t, r.Allowed)
	require.Equal(t, 10*time.Second, r.RetryAfter)

	// ventana siguiente
	now = now.Add(15 * time.Second)
	r, _ = l.Allow(ctx, "k")
	require.True(t, r.Allowed)
}
