package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

var _ usecase.ProductCache = (*ProductCache)(nil)

// ProductCache cachea productos en Redis con TTL. Cualquier error de Redis se
// trata como cache miss: el cache nunca debe tumbar una lectura.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewProductCache conecta a Redis y construye el cache. Devuelve el error de
// ping para que el main decida si arranca sin cache.
func NewProductCache(addr string, ttl time.Duration, log zerolog.Logger) (*ProductCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &ProductCache{rdb: rdb, ttl: ttl, log: log}, nil
}

func productKey(id string) string {
	return "product:" + id
}

// Get recupera un producto del cache; el segundo valor indica hit.
func (c *ProductCache) Get(ctx context.Context, id string) (*entity.Product, bool) {
	val, err := c.rdb.Get(ctx, productKey(id)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug().Err(err).Str("product_id", id).Msg("cache get falló, se trata como miss")
		}
		return nil, false
	}
	var p entity.Product
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		c.log.Debug().Err(err).Str("product_id", id).Msg("cache con payload inválido, se descarta")
		_ = c.rdb.Del(ctx, productKey(id)).Err()
		return nil, false
	}
	return &p, true
}

// Set guarda un producto en el cache.
func (c *ProductCache) Set(ctx context.Context, product *entity.Product) {
	payload, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productKey(product.ID), payload, c.ttl).Err(); err != nil {
		c.log.Debug().Err(err).Str("product_id", product.ID).Msg("cache set falló")
	}
}

// Delete invalida un producto del cache. Se llama después de cualquier
// mutación de stock o del catálogo.
func (c *ProductCache) Delete(ctx context.Context, id string) {
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		c.log.Debug().Err(err).Str("product_id", id).Msg("cache delete falló")
	}
}
