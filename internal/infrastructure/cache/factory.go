package cache

import (
	"context"
	"fmt"

	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns the Redis store when Redis is enabled and the
// in-memory store otherwise. With fallback set, an unreachable Redis degrades
// to memory with a warning instead of failing startup.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, fallback bool, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("using in-memory idempotency store")
		return NewMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(ctx, cfg)
	if err == nil {
		logger.Info("using Redis idempotency store", zap.String("addr", cfg.RedisAddr()))
		return store, nil
	}
	if !fallback {
		return nil, fmt.Errorf("redis idempotency store unavailable: %w", err)
	}

	logger.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
	return NewMemoryIdempotencyStore(), nil
}
