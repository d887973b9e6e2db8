//go:build integration

package infra

import (
	"context"
	"testing"
	"time"

	"portfolio-contact/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestRedisWindowLimiter_TimelineThreePerHour(t *testing.T) {
	rdb := newRedisClient(t)
	clock := newFakeClock()
	start := clock.Now()
	l := NewRedisWindowLimiter(rdb, domain.Policy{Max: 3, Window: time.Hour},
		WithRedisPrefix("test:window:"), WithRedisClock(clock.Now))
	ctx := context.Background()

	for _, minute := range []int{0, 1, 2} {
		clock.Set(start, time.Duration(minute)*time.Minute)
		dec, err := l.Admit(ctx, "A")
		require.NoError(t, err)
		require.True(t, dec.Allowed, "t=%dm", minute)
	}

	clock.Set(start, 3*time.Minute)
	dec, err := l.Admit(ctx, "A")
	require.NoError(t, err)
	require.False(t, dec.Allowed)
	require.Equal(t, 0, dec.Remaining)

	clock.Set(start, 61*time.Minute)
	dec, err = l.Admit(ctx, "A")
	require.NoError(t, err)
	require.True(t, dec.Allowed)

	ttl, err := rdb.PTTL(ctx, "test:window:A").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
}

func TestRedisWindowLimiter_SharedAcrossInstances(t *testing.T) {
	rdb := newRedisClient(t)
	policy := domain.Policy{Max: 2, Window: time.Hour}
	a := NewRedisWindowLimiter(rdb, policy)
	b := NewRedisWindowLimiter(rdb, policy)
	ctx := context.Background()

	dec, err := a.Admit(ctx, "ip")
	require.NoError(t, err)
	require.True(t, dec.Allowed)

	dec, err = b.Admit(ctx, "ip")
	require.NoError(t, err)
	require.True(t, dec.Allowed)

	dec, err = a.Admit(ctx, "ip")
	require.NoError(t, err)
	require.False(t, dec.Allowed, "global limit must hold across instances")
}

func TestRedisStatsStore_RecordsCounters(t *testing.T) {
	rdb := newRedisClient(t)
	s := NewRedisStatsStore(rdb, WithStatsPrefix("test:stats"), WithStatsTrackKeys(true))
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "1.2.3.4", Allowed: true, Method: "POST", Path: "/api/contact", At: at}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "1.2.3.4", Allowed: false, Method: "POST", Path: "/api/contact", At: at}))

	total, err := rdb.HGetAll(ctx, "test:stats:total").Result()
	require.NoError(t, err)
	require.Equal(t, map[string]string{"allowed": "1", "denied": "1"}, total)

	hour, err := rdb.HGet(ctx, "test:stats:hour:2026030110", "denied").Result()
	require.NoError(t, err)
	require.Equal(t, "1", hour)

	route, err := rdb.HGet(ctx, "test:stats:route", "POST /api/contact:allowed").Result()
	require.NoError(t, err)
	require.Equal(t, "1", route)

	perKey, err := rdb.HGetAll(ctx, "test:stats:key:1.2.3.4").Result()
	require.NoError(t, err)
	require.Len(t, perKey, 2)
}
