package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event deliveries were already handled,
// so a redelivered event does not notify a customer twice.
type IdempotencyStore interface {
	// MarkProcessed atomically claims key for ttl.
	// It reports false when the key was already claimed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}

// IdempotencyConfig controls de-duplication of event handlers
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig keeps keys for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
