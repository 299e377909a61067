package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestStockSummaryCache_SetGetInvalidate(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	c := NewStockSummaryCache(client, time.Minute)
	scope := "item:test-" + time.Now().Format("150405.000000")
	client.Del(ctx, summaryKeyPrefix+scope, generationKeyPrefix+scope)

	_, ok, err := c.Get(ctx, scope, "all")
	require.NoError(t, err)
	assert.False(t, ok)

	in := &dto.StockSummaryResponse{
		ItemID: 7,
		Total:  decimal.RequireFromString("12.50"),
		Balances: []dto.StockBalanceResponse{
			{WarehouseID: 1, ItemID: 7, Quantity: decimal.RequireFromString("12.50")},
		},
	}
	gen, err := c.Generation(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)
	require.NoError(t, c.Set(ctx, scope, "all", gen, in))

	got, ok, err := c.Get(ctx, scope, "all")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Total.Equal(in.Total))
	require.Len(t, got.Balances, 1)

	ttl, err := client.PTTL(ctx, summaryKeyPrefix+scope).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, scope))
	_, ok, err = c.Get(ctx, scope, "all")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStockSummaryCache_SetConGeneracionVencidaNoEscribe(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	c := NewStockSummaryCache(client, time.Minute)
	scope := "warehouse:test-" + time.Now().Format("150405.000000")
	client.Del(ctx, summaryKeyPrefix+scope, generationKeyPrefix+scope)
	t.Cleanup(func() { client.Del(ctx, summaryKeyPrefix+scope, generationKeyPrefix+scope) })

	gen, err := c.Generation(ctx, scope)
	require.NoError(t, err)

	// una transición invalida el scope entre la lectura del store y el Set
	require.NoError(t, c.Invalidate(ctx, scope))
	stale := &dto.StockSummaryResponse{WarehouseID: 3, Total: decimal.NewFromInt(10)}
	require.NoError(t, c.Set(ctx, scope, "20:0", gen, stale))

	_, ok, err := c.Get(ctx, scope, "20:0")
	require.NoError(t, err)
	assert.False(t, ok, "un resumen leído antes de invalidar no se guarda")

	next, err := c.Generation(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)
	require.NoError(t, c.Set(ctx, scope, "20:0", next, stale))
	_, ok, err = c.Get(ctx, scope, "20:0")
	require.NoError(t, err)
	assert.True(t, ok)
}
