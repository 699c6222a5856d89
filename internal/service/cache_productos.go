package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nycamas/club/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const productoCacheTTL = 10 * time.Minute

// CacheProductos keeps product lookups by código in Redis. A nil
// *CacheProductos (or one without client) is a cache that always misses.
// Every write path that changes price or stock calls invalidar.
type CacheProductos struct {
	rdb *redis.Client
}

func NewCacheProductos(rdb *redis.Client) *CacheProductos {
	return &CacheProductos{rdb: rdb}
}

func productoKey(codigo string) string { return "producto:" + codigo }

func (c *CacheProductos) get(ctx context.Context, codigo string) (dto.ProductoResponse, bool) {
	if c == nil || c.rdb == nil {
		return dto.ProductoResponse{}, false
	}
	b, err := c.rdb.Get(ctx, productoKey(codigo)).Bytes()
	if err != nil {
		return dto.ProductoResponse{}, false
	}
	var resp dto.ProductoResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return dto.ProductoResponse{}, false
	}
	return resp, true
}

// set is best effort; a failed write only costs a later miss.
func (c *CacheProductos) set(ctx context.Context, resp dto.ProductoResponse) {
	if c == nil || c.rdb == nil {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productoKey(resp.Codigo), b, productoCacheTTL).Err(); err != nil {
		log.Debug().Err(err).Str("codigo", resp.Codigo).Msg("cache: set failed")
	}
}

func (c *CacheProductos) invalidar(ctx context.Context, codigos ...string) {
	if c == nil || c.rdb == nil || len(codigos) == 0 {
		return
	}
	keys := make([]string, 0, len(codigos))
	for _, cod := range codigos {
		keys = append(keys, productoKey(cod))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("codigos", codigos).Msg("cache: invalidation failed")
	}
}
