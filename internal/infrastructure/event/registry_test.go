package event

import (
	"testing"

	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_TypedAndWildcard(t *testing.T) {
	r := NewHandlerRegistry()
	shipping := newRecordingHandler()
	all := newRecordingHandler()
	r.Register(shipping, fulfillment.EventTypeShippingStatusChanged, fulfillment.EventTypePaymentStatusChanged)
	r.Register(all)

	hs := r.HandlersFor(fulfillment.EventTypeShippingStatusChanged)
	assert.Len(t, hs, 2)
	assert.Same(t, shipping, hs[0])
	assert.Same(t, all, hs[1])

	assert.Len(t, r.HandlersFor(fulfillment.EventTypePaymentStatusChanged), 2)
	assert.Len(t, r.HandlersFor(fulfillment.EventTypeReturnRequestCreated), 1)
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	r := NewHandlerRegistry()
	a := newRecordingHandler()
	b := newRecordingHandler()
	r.Register(a, fulfillment.EventTypeReturnItemApproved)
	r.Register(b, fulfillment.EventTypeReturnItemApproved)
	r.Register(a)

	r.Unregister(a)

	hs := r.HandlersFor(fulfillment.EventTypeReturnItemApproved)
	assert.Len(t, hs, 1)
	assert.Same(t, b, hs[0])

	r.Unregister(b)
	assert.Empty(t, r.HandlersFor(fulfillment.EventTypeReturnItemApproved))
	assert.Empty(t, r.byType)
}

func TestHandlerRegistry_HandlersForReturnsCopy(t *testing.T) {
	r := NewHandlerRegistry()
	h := newRecordingHandler()
	r.Register(h, fulfillment.EventTypeReturnRequestCompleted)

	hs := r.HandlersFor(fulfillment.EventTypeReturnRequestCompleted)
	hs[0] = nil
	assert.Same(t, h, r.HandlersFor(fulfillment.EventTypeReturnRequestCompleted)[0])
}
