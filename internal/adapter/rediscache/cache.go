// Package rediscache decorates the query service with a Redis cache-aside
// layer. The core itself keeps no mutable cache; this adapter is optional and
// degrades gracefully — any Redis failure falls through to the live query.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/flood-claims-service/internal/observability"
	"github.com/couchcryptid/flood-claims-service/internal/query"
)

// CachedQuerier wraps a Querier with a Redis cache.
type CachedQuerier struct {
	inner   query.Querier
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates the cache decorator around a querier.
func New(inner query.Querier, client *redis.Client, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics) *CachedQuerier {
	return &CachedQuerier{inner: inner, client: client, ttl: ttl, logger: logger, metrics: metrics}
}

// Query serves from cache when possible and falls through to the inner
// querier otherwise, writing the fresh result back best-effort.
func (c *CachedQuerier) Query(ctx context.Context, req query.Request) (query.Result, error) {
	key := cacheKey(req)

	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var res query.Result
		if err := json.Unmarshal(payload, &res); err == nil {
			c.metrics.CacheLookups.WithLabelValues("hit").Inc()
			return res, nil
		}
		// Unreadable entry: treat as a miss and overwrite below.
		c.metrics.CacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		c.metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		c.metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("query cache read failed", "error", err)
	}

	res, err := c.inner.Query(ctx, req)
	if err != nil {
		return res, err
	}

	if payload, err := json.Marshal(res); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("query cache write failed", "error", err)
		}
	}
	return res, nil
}

// cacheKey rounds the target to ~11 m so nearby repeat queries share entries.
func cacheKey(req query.Request) string {
	return fmt.Sprintf("nearby:%.4f,%.4f:%g", req.Target.Lat, req.Target.Lon, req.MaxDistanceKm)
}

// OpenClient creates a Redis client from address, password, and DB number.
func OpenClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}
