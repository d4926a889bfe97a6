package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Open(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestNilClientDegradesGracefully(t *testing.T) {
	var c *Client
	ctx := context.Background()

	c.Set(ctx, MaterialStatsKey, []byte("x"), time.Minute)
	c.SetJSON(ctx, StockValueKey, map[string]int{"a": 1}, time.Minute)
	c.InvalidatePattern(ctx, MaterialPattern)

	_, ok := c.Get(ctx, MaterialStatsKey)
	assert.False(t, ok)

	var dest map[string]int
	assert.False(t, c.GetJSON(ctx, StockValueKey, &dest))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
	assert.Nil(t, c.Redis())
	assert.False(t, c.Enabled())
}

func TestOpenWithoutURLDisablesCache(t *testing.T) {
	c, err := Open(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open(context.Background(), "http://not-redis")
	assert.Error(t, err)
}

func TestJSONRoundTripAndExpiry(t *testing.T) {
	c, mr := newMiniClient(t)
	ctx := context.Background()
	require.True(t, c.Enabled())
	require.NoError(t, c.Ping(ctx))

	c.SetJSON(ctx, StockValueKey, map[string]int{"itens": 3}, time.Minute)

	var got map[string]int
	require.True(t, c.GetJSON(ctx, StockValueKey, &got))
	assert.Equal(t, 3, got["itens"])

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.GetJSON(ctx, StockValueKey, &got))
}

func TestInvalidatePatternDropsDatedStats(t *testing.T) {
	c, mr := newMiniClient(t)
	ctx := context.Background()

	statsKey := MaterialStatsKey + ":2026-03-10"
	c.Set(ctx, statsKey, []byte(`{"total":3}`), time.Hour)
	c.Set(ctx, StockValueKey, []byte(`{"total":"345"}`), time.Hour)
	require.NoError(t, mr.Set("emails:historico", "x"))

	c.InvalidatePattern(ctx, MaterialPattern)

	_, ok := c.Get(ctx, statsKey)
	assert.False(t, ok)
	_, ok = c.Get(ctx, StockValueKey)
	assert.False(t, ok)
	assert.True(t, mr.Exists("emails:historico"))
}

func TestInvalidatePatternWalksEveryScanPage(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := New(rdb)
	t.Cleanup(func() { c.Close() })
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set(MaterialStatsKey+":"+time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02"), "{}"))
	}
	c.InvalidatePattern(ctx, MaterialPattern)
	assert.Empty(t, mr.Keys())
}
