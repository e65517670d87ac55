package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fmcg-admin-api/internal/metrics"
	"fmcg-admin-api/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	overlapKeyFmt     = "overlaps:%d:%d"
	overlapKeyPattern = "overlaps:*"
	overlapTTL        = 5 * time.Minute
)

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// OverlapCache stores overlap summaries per product. With a nil client every
// call is a miss and writes are dropped.
type OverlapCache struct {
	client *redis.Client
}

func NewOverlapCache(client *redis.Client) *OverlapCache {
	return &OverlapCache{client: client}
}

func overlapKey(productID uint, excludeID *uint) string {
	var exclude uint
	if excludeID != nil {
		exclude = *excludeID
	}
	return fmt.Sprintf(overlapKeyFmt, productID, exclude)
}

func (c *OverlapCache) Get(ctx context.Context, productID uint, excludeID *uint) ([]model.OfferSummary, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, overlapKey(productID, excludeID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			metrics.OverlapCache.WithLabelValues("error").Inc()
			log.Ctx(ctx).Debug().Err(err).Msg("overlap cache read failed")
		} else {
			metrics.OverlapCache.WithLabelValues("miss").Inc()
		}
		return nil, false
	}
	var out []model.OfferSummary
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	metrics.OverlapCache.WithLabelValues("hit").Inc()
	return out, true
}

func (c *OverlapCache) Set(ctx context.Context, productID uint, excludeID *uint, overlaps []model.OfferSummary) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(overlaps)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, overlapKey(productID, excludeID), data, overlapTTL).Err(); err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("overlap cache write failed")
	}
}

// Invalidate drops every cached overlap. Any offer change can affect any product
// through free_item_product_id, so per-product eviction is not enough.
func (c *OverlapCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, overlapKeyPattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("overlap cache scan failed")
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("overlap cache invalidation failed")
		}
	}
}

// Ping reports whether redis answers. A cache without a client is healthy.
func (c *OverlapCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
