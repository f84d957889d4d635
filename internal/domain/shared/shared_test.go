package shared

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	specific := NewDomainError("NOT_FOUND", "order 42 not found")

	assert.ErrorIs(t, specific, ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("load order: %w", specific), ErrNotFound)
	assert.NotErrorIs(t, specific, ErrInvalidInput)
	assert.Equal(t, "order 42 not found", specific.Error())
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "CONCURRENT_MODIFICATION", ErrorCode(fmt.Errorf("save: %w", ErrConcurrentModification)))
	assert.Empty(t, ErrorCode(fmt.Errorf("plain")))
	assert.Empty(t, ErrorCode(nil))
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	root := NewBaseAggregateRoot()
	assert.Equal(t, 1, root.GetVersion())
	assert.NotEqual(t, uuid.Nil, root.GetID())

	evt := NewBaseDomainEvent("OrderTouched", "Order", root.ID)
	root.AddDomainEvent(&evt)
	require.Len(t, root.GetDomainEvents(), 1)
	assert.Equal(t, "OrderTouched", root.GetDomainEvents()[0].EventType())

	pulled := root.PullDomainEvents()
	require.Len(t, pulled, 1)
	assert.Empty(t, root.GetDomainEvents())
	assert.Empty(t, root.PullDomainEvents())
}

func TestDefaultIdempotencyConfig(t *testing.T) {
	cfg := DefaultIdempotencyConfig()
	assert.True(t, cfg.Enabled)
	assert.Positive(t, cfg.TTL)
}
