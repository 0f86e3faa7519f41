package cache_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripwizard/internal/cache"
	"github.com/pkordes/tripwizard/testutil"
)

type query struct {
	City  string `json:"city"`
	Rooms int    `json:"rooms"`
}

func TestKey_EqualQueriesShareKey(t *testing.T) {
	a, err := cache.Key("hotels", query{City: "Kyoto", Rooms: 1})
	require.NoError(t, err)
	b, err := cache.Key("hotels", query{City: "Kyoto", Rooms: 1})
	require.NoError(t, err)
	c, err := cache.Key("hotels", query{City: "Kyoto", Rooms: 2})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "search:hotels:"))
}

func TestNoop_AlwaysMisses(t *testing.T) {
	var c cache.Noop
	require.NoError(t, c.Set(context.Background(), "k", 1))

	var got int
	hit, err := c.Get(context.Background(), "k", &got)

	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedis_RoundTrip(t *testing.T) {
	client := testutil.NewRedis(t)
	c := cache.NewRedis(client, time.Minute)
	ctx := context.Background()

	key, err := cache.Key("test", query{City: t.Name()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Del(context.Background(), key) })

	var got query
	hit, err := c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit, "fresh key is a miss")

	require.NoError(t, c.Set(ctx, key, query{City: "Lisbon", Rooms: 2}))

	hit, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, query{City: "Lisbon", Rooms: 2}, got)

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
