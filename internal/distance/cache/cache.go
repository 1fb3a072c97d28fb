package cache

import (
	"context"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const distanceKeyPrefix = "courier:distance:"

// DistanceCache is a best-effort Redis mirror of the per-courier running
// total. Every failure is swallowed at this boundary: a broken cache must
// never fail or block a request, only degrade it to a database read.
type DistanceCache struct {
	client *redis.Client
	log    *zap.Logger
	cfg    *config.TrackingConfigHolder
}

func New(client *redis.Client, log *zap.Logger, cfg *config.TrackingConfigHolder) *DistanceCache {
	return &DistanceCache{
		client: client,
		log:    log.Named("distance.cache"),
		cfg:    cfg,
	}
}

// Enabled reports whether a Redis client is configured.
func (c *DistanceCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached total. Any failure, including unparsable payloads,
// is reported as a miss.
func (c *DistanceCache) Get(ctx context.Context, courierID snowflake.ID) (float64, bool) {
	if !c.Enabled() {
		return 0, false
	}

	value, err := c.client.Get(ctx, key(courierID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read failed", zap.String("courier_id", courierID.String()), zap.Error(err))
		}
		return 0, false
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		c.log.Warn("cache entry unparsable", zap.String("courier_id", courierID.String()), zap.Error(err))
		return 0, false
	}
	return parsed, true
}

// Set writes the total with the configured TTL. Failures are logged only.
func (c *DistanceCache) Set(ctx context.Context, courierID snowflake.ID, totalKm float64) {
	if !c.Enabled() {
		return
	}

	ttl := c.cfg.Current().CacheTTL
	value := strconv.FormatFloat(totalKm, 'f', -1, 64)
	if err := c.client.Set(ctx, key(courierID), value, ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.String("courier_id", courierID.String()), zap.Error(err))
	}
}

// Evict removes the entry, best-effort.
func (c *DistanceCache) Evict(ctx context.Context, courierID snowflake.ID) {
	if !c.Enabled() {
		return
	}

	if err := c.client.Del(ctx, key(courierID)).Err(); err != nil {
		c.log.Warn("cache evict failed", zap.String("courier_id", courierID.String()), zap.Error(err))
	}
}

func key(courierID snowflake.ID) string {
	return distanceKeyPrefix + courierID.String()
}
