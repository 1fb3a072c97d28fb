package redisclient

import (
	"context"
	"strings"

	"github.com/fleetops/couriertrack/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New builds the shared redis client. A nil client is a valid result: when
// no address is configured, the distance cache and entrance locks degrade to
// database-only behavior.
func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		log.Info("redis not configured, caching disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	log.Info("redis client configured", zap.String("addr", addr))
	return client
}

var Module = fx.Module("redis", fx.Provide(New))
