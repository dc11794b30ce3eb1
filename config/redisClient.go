package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis returns a Redis client, or nil when Redis is not configured or unreachable.
// Callers treat a nil client as "feature disabled".
func ConnectRedis(ctx context.Context, cfg RedisConfig, logger *zap.Logger) *redis.Client {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDRESS not set; rate limiting, view dedupe and token revocation disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return nil
	}

	logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	return client
}
