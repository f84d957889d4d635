package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	inner := newRecordingHandler(fulfillment.EventTypeShippingStatusChanged)
	h := NewIdempotentHandler("email", inner, cache.NewMemoryIdempotencyStore(), shared.DefaultIdempotencyConfig(), nil)

	evt := newTestEvent(fulfillment.EventTypeShippingStatusChanged)
	ctx := context.Background()
	require.NoError(t, h.Handle(ctx, evt))
	require.NoError(t, h.Handle(ctx, evt))

	assert.Equal(t, 1, inner.count())
	assert.Equal(t, IdempotencyStats{Processed: 1, Duplicate: 1}, h.Stats())
	assert.Equal(t, []string{fulfillment.EventTypeShippingStatusChanged}, h.EventTypes())
}

func TestIdempotentHandler_KeysScopedByName(t *testing.T) {
	store := cache.NewMemoryIdempotencyStore()
	email := newRecordingHandler()
	sms := newRecordingHandler()
	cfg := shared.DefaultIdempotencyConfig()
	he := NewIdempotentHandler("email", email, store, cfg, nil)
	hs := NewIdempotentHandler("sms", sms, store, cfg, nil)

	evt := newTestEvent(fulfillment.EventTypePaymentStatusChanged)
	require.NoError(t, he.Handle(context.Background(), evt))
	require.NoError(t, hs.Handle(context.Background(), evt))

	assert.Equal(t, 1, email.count())
	assert.Equal(t, 1, sms.count())
}

func TestIdempotentHandler_HandlerError(t *testing.T) {
	inner := newRecordingHandler()
	inner.err = errors.New("rejected by provider")
	h := NewIdempotentHandler("sms", inner, cache.NewMemoryIdempotencyStore(), shared.DefaultIdempotencyConfig(), nil)

	err := h.Handle(context.Background(), newTestEvent(fulfillment.EventTypeReturnItemApproved))
	assert.EqualError(t, err, "rejected by provider")
	assert.Equal(t, int64(1), h.Stats().Failed)
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	store := new(mockIdempotencyStore)
	store.On("MarkProcessed", mock.Anything, mock.Anything, time.Hour).Return(false, errors.New("redis timeout"))
	inner := newRecordingHandler()
	h := NewIdempotentHandler("email", inner, store, shared.IdempotencyConfig{TTL: time.Hour, Enabled: true}, nil)

	require.NoError(t, h.Handle(context.Background(), newTestEvent(fulfillment.EventTypeReturnRequestCreated)))
	assert.Equal(t, 1, inner.count())
	store.AssertExpectations(t)
}

func TestIdempotentHandler_KeyAndDefaultTTL(t *testing.T) {
	store := new(mockIdempotencyStore)
	evt := newTestEvent(fulfillment.EventTypeReturnRequestApproved)
	store.On("MarkProcessed", mock.Anything, "email:"+evt.EventID().String(), 24*time.Hour).Return(true, nil)
	h := NewIdempotentHandler("email", newRecordingHandler(), store, shared.IdempotencyConfig{Enabled: true}, nil)

	require.NoError(t, h.Handle(context.Background(), evt))
	store.AssertExpectations(t)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	store := new(mockIdempotencyStore)
	inner := newRecordingHandler()
	h := NewIdempotentHandler("email", inner, store, shared.IdempotencyConfig{Enabled: false}, nil)

	evt := newTestEvent(fulfillment.EventTypeShippingStatusChanged)
	require.NoError(t, h.Handle(context.Background(), evt))
	require.NoError(t, h.Handle(context.Background(), evt))
	assert.Equal(t, 2, inner.count())
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdempotentHandler_ConcurrentDuplicates(t *testing.T) {
	inner := newRecordingHandler()
	h := NewIdempotentHandler("email", inner, cache.NewMemoryIdempotencyStore(), shared.DefaultIdempotencyConfig(), nil)
	evt := newTestEvent(fulfillment.EventTypeReturnRequestCompleted)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Handle(context.Background(), evt)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inner.count())
	stats := h.Stats()
	assert.Equal(t, int64(1), stats.Processed)
	assert.Equal(t, int64(19), stats.Duplicate)
}
