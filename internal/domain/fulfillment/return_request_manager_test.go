package fulfillment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestReturn opens a return request and clears the events it emitted
func openTestReturn(t *testing.T, engine *Engine, order *Order, lines ...ReturnLine) uuid.UUID {
	t.Helper()
	req, err := engine.Requests.Open(order, "does not fit", lines)
	require.NoError(t, err)
	order.ClearDomainEvents()
	return req.ID
}

func TestReturnRequestManager_Open(t *testing.T) {
	engine := NewEngine(testFeePolicy)

	t.Run("creates a pending request with estimates", func(t *testing.T) {
		order := createTestOrder(t)

		req, err := engine.Requests.Open(order, " does not fit ", []ReturnLine{{OrderItemID: shirt(order).ID, Quantity: 1}})
		require.NoError(t, err)

		assert.Equal(t, ReturnRequestStatusPending, req.Status)
		assert.Equal(t, "does not fit", req.Reason)
		require.Len(t, req.Items, 1)
		assert.Equal(t, ReturnItemStatusPending, req.Items[0].Status)
		assert.True(t, req.TotalReturnAmount.Equal(vnd(400000)))
		assert.True(t, req.EstimatedRefund.IsZero())
		assert.Equal(t, []string{EventTypeReturnRequestCreated}, eventTypes(order))
	})

	t.Run("requires a shipping status that accepts returns", func(t *testing.T) {
		order := createTestOrder(t)
		order.Shipping.Status = ShippingStatusInTransit

		_, err := engine.Requests.Open(order, "", []ReturnLine{{OrderItemID: shirt(order).ID, Quantity: 1}})
		assert.Equal(t, CodeValidation, shared.ErrorCode(err))
	})

	t.Run("validates lines", func(t *testing.T) {
		order := createTestOrder(t)

		_, err := engine.Requests.Open(order, "", nil)
		assert.Equal(t, CodeValidation, shared.ErrorCode(err))

		_, err = engine.Requests.Open(order, "", []ReturnLine{{OrderItemID: shirt(order).ID, Quantity: 3}})
		assert.Equal(t, CodeInvalidQuantity, shared.ErrorCode(err))

		_, err = engine.Requests.Open(order, "", []ReturnLine{{OrderItemID: shirt(order).ID, Quantity: 0}})
		assert.Equal(t, CodeInvalidQuantity, shared.ErrorCode(err))

		_, err = engine.Requests.Open(order, "", []ReturnLine{
			{OrderItemID: shirt(order).ID, Quantity: 1},
			{OrderItemID: shirt(order).ID, Quantity: 1},
		})
		assert.Equal(t, CodeValidation, shared.ErrorCode(err))

		_, err = engine.Requests.Open(order, "", []ReturnLine{{OrderItemID: uuid.New(), Quantity: 1}})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Empty(t, order.ReturnRequests)
	})
}

func TestReturnRequestManager_ItemDecisions(t *testing.T) {
	engine := NewEngine(testFeePolicy)

	t.Run("approving the last pending item auto-promotes the request", func(t *testing.T) {
		order := createTestOrder(t)
		requestID := openTestReturn(t, engine, order, ReturnLine{OrderItemID: shirt(order).ID, Quantity: 1})
		itemID := order.ReturnRequests[0].Items[0].ID

		req, err := engine.Requests.ApproveItem(order, requestID, itemID, "looks fine")
		require.NoError(t, err)

		assert.Equal(t, ReturnRequestStatusApproved, req.Status)
		assert.NotNil(t, req.ProcessedAt)
		assert.Equal(t, ShippingStatusReturnProcessing, order.Shipping.Status)
		assert.Equal(t, defaultReturnReason, order.Shipping.ReasonAdmin)

		item, err := req.FindItem(itemID)
		require.NoError(t, err)
		assert.Equal(t, "looks fine", item.AdminResponse)
		assert.True(t, item.RefundAmount.Equal(vnd(400000)))

		promoted := eventsOfType(order, EventTypeReturnRequestApproved)
		require.Len(t, promoted, 1)
		assert.True(t, promoted[0].(*ReturnRequestStatusChangedEvent).AutoPromoted)
	})

	t.Run("a decided item cannot be decided again", func(t *testing.T) {
		order := createTestOrder(t)
		requestID := openTestReturn(t, engine, order,
			ReturnLine{OrderItemID: shirt(order).ID, Quantity: 1},
			ReturnLine{OrderItemID: capItem(order).ID, Quantity: 1},
		)
		itemID := order.ReturnRequests[0].Items[0].ID

		_, err := engine.Requests.ApproveItem(order, requestID, itemID, "")
		require.NoError(t, err)

		_, err = engine.Requests.ApproveItem(order, requestID, itemID, "")
		assert.Equal(t, CodeInvalidTransition, shared.ErrorCode(err))

		_, err = engine.Requests.RejectItem(order, requestID, itemID, "changed mind")
		assert.Equal(t, CodeInvalidTransition, shared.ErrorCode(err))
		assert.Equal(t, ReturnRequestStatusPending, order.ReturnRequests[0].Status)
	})

	t.Run("rejecting an item needs a reason", func(t *testing.T) {
		order := createTestOrder(t)
		requestID := openTestReturn(t, engine, order, ReturnLine{OrderItemID: shirt(order).ID, Quantity: 1})
		itemID := order.ReturnRequests[0].Items[0].ID

		_, err := engine.Requests.RejectItem(order, requestID, itemID, " ")
		assert.Equal(t, CodeReasonRequired, shared.ErrorCode(err))
	})

	t.Run("rejecting every item still promotes", func(t *testing.T) {
		order := createTestOrder(t)
		requestID := openTestReturn(t, engine, order, ReturnLine{OrderItemID: shirt(order).ID, Quantity: 1})
		itemID := order.ReturnRequests[0].Items[0].ID

		req, err := engine.Requests.RejectItem(order, requestID, itemID, "worn")
		require.NoError(t, err)
		assert.Equal(t, ReturnRequestStatusApproved, req.Status)
		assert.True(t, req.EstimatedRefund.IsZero())
	})

	t.Run("unknown ids", func(t *testing.T) {
		order := createTestOrder(t)
		requestID := openTestReturn(t, engine, order, ReturnLine{OrderItemID: shirt(order).ID, Quantity: 1})

		_, err := engine.Requests.ApproveItem(order, uuid.New(), uuid.New(), "")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = engine.Requests.ApproveItem(order, requestID, uuid.New(), "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestReturnRequestManager_UpdateStatus(t *testing.T) {
	engine := NewEngine(testFeePolicy)

	t.Run("approve bulk-approves pending items", func(t *testing.T) {
		order := createTestOrder(t)
		requestID := openTestReturn(t, engine, order,
			ReturnLine{OrderItemID: shirt(order).ID, Quantity: 1},
			ReturnLine{OrderItemID: capItem(order).ID, Quantity: 1},
		)

		req, err := engine.Requests.UpdateStatus(order, requestID, ReturnRequestStatusApproved, "")
		require.NoError(t, err)
		assert.Equal(t, ReturnRequestStatusApproved, req.Status)
		for _, item := range req.Items {
			assert.Equal(t, ReturnItemStatusApproved, item.Status)
			assert.Equal(t, ApprovedByAdminNote, item.AdminResponse)
		}
		assert.Equal(t, ShippingStatusReturnProcessing, order.Shipping.Status)

		approved := eventsOfType(order, EventTypeReturnRequestApproved)
		require.Len(t, approved, 1)
		assert.False(t, approved[0].(*ReturnRequestStatusChangedEvent).AutoPromoted)
	})

	t.Run("reject needs a reason and fails the return", func(t *testing.T) {
		order := createTestOrder(t)
		requestID := openTestReturn(t, engine, order, ReturnLine{OrderItemID: shirt(order).ID, Quantity: 1})

		_, err := engine.Requests.UpdateStatus(order, requestID, ReturnRequestStatusRejected, "")
		assert.Equal(t, CodeReasonRequired, shared.ErrorCode(err))

		req, err := engine.Requests.UpdateStatus(order, requestID, ReturnRequestStatusRejected, "outside return window")
		require.NoError(t, err)
		assert.Equal(t, ReturnRequestStatusRejected, req.Status)
		assert.NotNil(t, req.RejectedAt)
		assert.Equal(t, ReturnItemStatusRejected, req.Items[0].Status)
		assert.Equal(t, ShippingStatusReturnFail, order.Shipping.Status)
		assert.Equal(t, "outside return window", order.Shipping.ReasonAdmin)
		assert.Equal(t, PaymentStatusPaid, order.PaymentStatus)
	})

	t.Run("reject keeps shipping while another request is approved", func(t *testing.T) {
		order := createTestOrder(t)
		first := openTestReturn(t, engine, order, ReturnLine{OrderItemID: shirt(order).ID, Quantity: 1})
		_, err := engine.Requests.UpdateStatus(order, first, ReturnRequestStatusApproved, "")
		require.NoError(t, err)

		order.Shipping.Status = ShippingStatusReceived
		second := openTestReturn(t, engine, order, ReturnLine{OrderItemID: capItem(order).ID, Quantity: 1})
		order.Shipping.Status = ShippingStatusReturnProcessing

		_, err = engine.Requests.UpdateStatus(order, second, ReturnRequestStatusRejected, "worn")
		require.NoError(t, err)
		assert.Equal(t, ShippingStatusReturnProcessing, order.Shipping.Status)
	})

	t.Run("complete refuses pending items", func(t *testing.T) {
		order := createTestOrder(t)
		requestID := openTestReturn(t, engine, order, ReturnLine{OrderItemID: shirt(order).ID, Quantity: 1})

		_, err := engine.Requests.UpdateStatus(order, requestID, ReturnRequestStatusCompleted, "")
		assert.ErrorIs(t, err, ErrItemsStillPending)
	})

	t.Run("illegal request transitions", func(t *testing.T) {
		order := createTestOrder(t)
		requestID := openTestReturn(t, engine, order, ReturnLine{OrderItemID: shirt(order).ID, Quantity: 1})
		_, err := engine.Requests.UpdateStatus(order, requestID, ReturnRequestStatusApproved, "")
		require.NoError(t, err)

		_, err = engine.Requests.UpdateStatus(order, requestID, ReturnRequestStatusPending, "")
		assert.Equal(t, CodeInvalidTransition, shared.ErrorCode(err))

		_, err = engine.Requests.UpdateStatus(order, requestID, ReturnRequestStatusRejected, "late")
		assert.Equal(t, CodeInvalidTransition, shared.ErrorCode(err))

		_, err = engine.Requests.UpdateStatus(order, requestID, ReturnRequestStatus("archived"), "")
		assert.Equal(t, CodeInvalidStatus, shared.ErrorCode(err))
	})
}

func TestReturnRequestManager_SequentialRequests(t *testing.T) {
	engine := NewEngine(testFeePolicy)

	// openBoth opens a request for both shirts and one for the cap, then completes the first
	openBoth := func(t *testing.T) (*Order, uuid.UUID) {
		t.Helper()
		order := createTestOrder(t)
		first := openTestReturn(t, engine, order, ReturnLine{OrderItemID: shirt(order).ID, Quantity: 2})
		second := openTestReturn(t, engine, order, ReturnLine{OrderItemID: capItem(order).ID, Quantity: 1})

		_, err := engine.Requests.UpdateStatus(order, first, ReturnRequestStatusApproved, "")
		require.NoError(t, err)
		_, err = engine.Requests.UpdateStatus(order, first, ReturnRequestStatusCompleted, "")
		require.NoError(t, err)
		require.Equal(t, ShippingStatusReturned, order.Shipping.Status)
		require.True(t, order.ShippingFee.Equal(vnd(30000)))
		return order, second
	}

	t.Run("later request is approved and completed after the parcel returned", func(t *testing.T) {
		order, second := openBoth(t)
		logs := len(order.ShippingLogs)

		req, err := engine.Requests.UpdateStatus(order, second, ReturnRequestStatusApproved, "")
		require.NoError(t, err)
		assert.Equal(t, ReturnRequestStatusApproved, req.Status)
		assert.Equal(t, ShippingStatusReturned, order.Shipping.Status)
		assert.Len(t, order.ShippingLogs, logs)

		// The fee charged after the first return is the baseline for the second
		assert.True(t, req.OldShippingFee.Equal(vnd(30000)))
		assert.True(t, req.NewShippingFee.IsZero())
		assert.True(t, req.ShippingDiff.Equal(vnd(-30000)))

		req, err = engine.Requests.UpdateStatus(order, second, ReturnRequestStatusCompleted, "")
		require.NoError(t, err)
		assert.Equal(t, ReturnRequestStatusCompleted, req.Status)
		assert.Equal(t, PaymentStatusRefunded, order.PaymentStatus)
		assert.True(t, order.TotalAmount.IsZero())
		assert.True(t, order.FinalAmount.IsZero())
	})

	t.Run("later request is rejected after the parcel returned", func(t *testing.T) {
		order, second := openBoth(t)

		req, err := engine.Requests.UpdateStatus(order, second, ReturnRequestStatusRejected, "worn")
		require.NoError(t, err)
		assert.Equal(t, ReturnRequestStatusRejected, req.Status)
		assert.Equal(t, ShippingStatusReturned, order.Shipping.Status)
	})

	t.Run("item decision on a later request auto-promotes it", func(t *testing.T) {
		order, second := openBoth(t)
		itemID := order.ReturnRequests[1].Items[0].ID

		req, err := engine.Requests.ApproveItem(order, second, itemID, "ok")
		require.NoError(t, err)
		assert.Equal(t, ReturnRequestStatusApproved, req.Status)
		assert.NotNil(t, req.ProcessedAt)
	})

	t.Run("rejecting one request keeps shipping while another is pending", func(t *testing.T) {
		order := createTestOrder(t)
		first := openTestReturn(t, engine, order, ReturnLine{OrderItemID: shirt(order).ID, Quantity: 1})
		second := openTestReturn(t, engine, order, ReturnLine{OrderItemID: capItem(order).ID, Quantity: 1})

		_, err := engine.Requests.UpdateStatus(order, first, ReturnRequestStatusRejected, "worn")
		require.NoError(t, err)
		assert.Equal(t, ShippingStatusReceived, order.Shipping.Status)

		_, err = engine.Requests.UpdateStatus(order, second, ReturnRequestStatusApproved, "")
		require.NoError(t, err)
		assert.Equal(t, ShippingStatusReturnProcessing, order.Shipping.Status)
	})
}

func TestReturnRequestManager_FailedPromotionLeavesRequestPending(t *testing.T) {
	engine := NewEngine(testFeePolicy)
	order := createTestOrder(t)
	requestID := openTestReturn(t, engine, order, ReturnLine{OrderItemID: shirt(order).ID, Quantity: 1})
	order.Shipping.Status = ShippingStatusEvaluated

	_, err := engine.Requests.UpdateStatus(order, requestID, ReturnRequestStatusApproved, "")
	assert.Equal(t, CodeInvalidTransition, shared.ErrorCode(err))

	req := &order.ReturnRequests[0]
	assert.Equal(t, ReturnRequestStatusPending, req.Status)
	assert.Nil(t, req.ProcessedAt)
}
