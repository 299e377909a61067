package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/redis/go-redis/v9"
)

var _ inventory.SummaryCache = (*StockSummaryCache)(nil)

const (
	summaryKeyPrefix    = "stock:summary:"
	generationKeyPrefix = "stock:summary:ver:"
)

// setSummaryScript guarda la página y renueva el TTL del hash en un solo paso, solo si la
// generación del scope sigue siendo ARGV[4]. Devuelve 0 si el scope fue invalidado.
var setSummaryScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[2]) or '0')
if current ~= tonumber(ARGV[4]) then
  return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// StockSummaryCache resúmenes de stock en Redis. Cada scope (artículo o bodega) es un hash
// cuyos campos son las páginas; invalidar un scope borra todas sus páginas de una vez.
type StockSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStockSummaryCache construye el caché. ttl acota cuánto puede vivir un resumen obsoleto
// si una invalidación se pierde.
func NewStockSummaryCache(client *redis.Client, ttl time.Duration) *StockSummaryCache {
	return &StockSummaryCache{client: client, ttl: ttl}
}

// Get devuelve el resumen cacheado; ok=false si no existe.
func (c *StockSummaryCache) Get(ctx context.Context, scope, field string) (*dto.StockSummaryResponse, bool, error) {
	raw, err := c.client.HGet(ctx, summaryKeyPrefix+scope, field).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("hget %s: %w", scope, err)
	}
	var out dto.StockSummaryResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode summary %s: %w", scope, err)
	}
	return &out, true, nil
}

// Generation generación actual del scope; 0 si nunca se ha invalidado.
func (c *StockSummaryCache) Generation(ctx context.Context, scope string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKeyPrefix+scope).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get generation %s: %w", scope, err)
	}
	return gen, nil
}

// Set guarda el resumen con el TTL configurado si la generación no cambió desde que se leyó.
func (c *StockSummaryCache) Set(ctx context.Context, scope, field string, generation int64, summary *dto.StockSummaryResponse) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary %s: %w", scope, err)
	}
	keys := []string{summaryKeyPrefix + scope, generationKeyPrefix + scope}
	return setSummaryScript.Run(ctx, c.client, keys, field, raw, c.ttl.Milliseconds(), generation).Err()
}

// Invalidate incrementa la generación y borra todas las páginas de los scopes indicados.
func (c *StockSummaryCache) Invalidate(ctx context.Context, scopes ...string) error {
	if len(scopes) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, s := range scopes {
			pipe.Incr(ctx, generationKeyPrefix+s)
			pipe.Del(ctx, summaryKeyPrefix+s)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate summaries: %w", err)
	}
	return nil
}
