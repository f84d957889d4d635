package fulfillment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderService_UpdateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("applies shipping then payment and publishes after save", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)
		order.Shipping.Status = fulfillment.ShippingStatusReturnProcessing
		order.Shipping.ReasonAdmin = "wrong size"

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.orders.On("Save", mock.Anything, order).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.UpdateOrder(ctx, order.ID, UpdateOrderRequest{
			ShippingStatus: strPtr("returned"),
			PaymentStatus:  strPtr("refunded"),
		})
		require.NoError(t, err)

		assert.Equal(t, "returned", resp.Shipping.Status)
		assert.Equal(t, "refunded", resp.PaymentStatus)
		f.orders.AssertExpectations(t)

		published := f.publisher.Calls[0].Arguments.Get(1).([]shared.DomainEvent)
		require.Len(t, published, 3)
		assert.Equal(t, fulfillment.EventTypeShippingStatusChanged, published[0].EventType())
		assert.Empty(t, order.GetDomainEvents())
	})

	t.Run("payment equal to the initial status is unchanged", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)
		order.Shipping.Status = fulfillment.ShippingStatusReturnProcessing
		order.Shipping.ReasonAdmin = "wrong size"

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.orders.On("Save", mock.Anything, order).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.UpdateOrder(ctx, order.ID, UpdateOrderRequest{
			ShippingStatus: strPtr("returned"),
			PaymentStatus:  strPtr("paid"),
		})
		require.NoError(t, err)
		assert.Equal(t, "refund_processing", resp.PaymentStatus)
	})

	t.Run("illegal shipping edge is a validation error and nothing is saved", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)
		order.Shipping.Status = fulfillment.ShippingStatusDelivered

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := f.service.UpdateOrder(ctx, order.ID, UpdateOrderRequest{ShippingStatus: strPtr("in_transit")})
		require.Error(t, err)
		assert.Equal(t, fulfillment.CodeInvalidTransition, shared.ErrorCode(err))
		assert.Contains(t, err.Error(), "delivered")
		assert.Contains(t, err.Error(), "in_transit")
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("locked while refund is processing", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)
		order.Shipping.Status = fulfillment.ShippingStatusReturnProcessing
		order.PaymentStatus = fulfillment.PaymentStatusRefundProcessing

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := f.service.UpdateOrder(ctx, order.ID, UpdateOrderRequest{ShippingStatus: strPtr("in_transit")})
		assert.Equal(t, fulfillment.CodeLockedForRefund, shared.ErrorCode(err))
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newServiceFixture()
		id := uuid.New()
		f.orders.On("FindByID", mock.Anything, id).Return(nil, fulfillment.NewNotFoundError("order", id))

		_, err := f.service.UpdateOrder(ctx, id, UpdateOrderRequest{ShippingStatus: strPtr("pending")})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("promotes the transfer image and deletes the replaced one", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)
		order.Shipping.TransferImage = "transfer-images/old.png"

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.orders.On("Save", mock.Anything, order).Return(nil)
		f.images.On("Promote", mock.Anything, "staging/01HX.png", order.ID).Return("transfer-images/new.png", nil)
		f.images.On("Delete", mock.Anything, "transfer-images/old.png").Return(nil)

		resp, err := f.service.UpdateOrder(ctx, order.ID, UpdateOrderRequest{TransferImage: strPtr("staging/01HX.png")})
		require.NoError(t, err)
		assert.Equal(t, "transfer-images/new.png", resp.Shipping.TransferImage)
		f.images.AssertExpectations(t)
	})

	t.Run("discards the promoted image when the unit of work aborts", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.orders.On("Save", mock.Anything, order).Return(errors.New("connection reset"))
		f.images.On("Promote", mock.Anything, "staging/01HX.png", order.ID).Return("transfer-images/new.png", nil)
		f.images.On("Delete", mock.Anything, "transfer-images/new.png").Return(nil)

		_, err := f.service.UpdateOrder(ctx, order.ID, UpdateOrderRequest{TransferImage: strPtr("staging/01HX.png")})
		require.Error(t, err)
		f.images.AssertCalled(t, "Delete", mock.Anything, "transfer-images/new.png")
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("reason only is stored on shipping", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.orders.On("Save", mock.Anything, order).Return(nil)

		resp, err := f.service.UpdateOrder(ctx, order.ID, UpdateOrderRequest{ReasonAdmin: strPtr("customer called")})
		require.NoError(t, err)
		assert.Equal(t, "customer called", resp.Shipping.ReasonAdmin)
		assert.Equal(t, "received", resp.Shipping.Status)
	})
}

func TestOrderService_ReturnFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("approving the only item promotes and estimates the refund", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)
		requestID := openReturn(t, order, fulfillment.ReturnLine{OrderItemID: order.Items[0].ID, Quantity: 1})
		itemID := order.ReturnRequests[0].Items[0].ID

		f.orders.On("FindByReturnRequestID", mock.Anything, requestID).Return(order, nil)
		f.orders.On("Save", mock.Anything, order).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.ApproveReturnItem(ctx, requestID, itemID, ReturnItemDecisionRequest{OrderID: order.ID, AdminResponse: "ok"})
		require.NoError(t, err)
		assert.Equal(t, "approved", resp.Status)
		assert.True(t, resp.EstimatedRefund.Equal(decimal.NewFromInt(300000)))
		assert.Equal(t, fulfillment.ShippingStatusReturnProcessing, order.Shipping.Status)
	})

	t.Run("request scoped to another order is not found", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)
		requestID := openReturn(t, order, fulfillment.ReturnLine{OrderItemID: order.Items[0].ID, Quantity: 1})

		f.orders.On("FindByReturnRequestID", mock.Anything, requestID).Return(order, nil)

		_, err := f.service.RejectReturnItem(ctx, requestID, uuid.New(), ReturnItemDecisionRequest{OrderID: uuid.New(), AdminResponse: "worn"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("completion restores stock and settles the order", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)
		requestID := openReturn(t, order, fulfillment.ReturnLine{OrderItemID: order.Items[0].ID, Quantity: 1})
		_, err := fulfillment.NewEngine(testFeePolicy).Requests.UpdateStatus(order, requestID, fulfillment.ReturnRequestStatusApproved, "")
		require.NoError(t, err)
		order.ClearDomainEvents()

		f.orders.On("FindByReturnRequestID", mock.Anything, requestID).Return(order, nil)
		f.orders.On("Save", mock.Anything, order).Return(nil)
		f.variants.On("IncrementStock", mock.Anything, order.Items[0].VariantID, 1).Return(nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.UpdateReturnRequestStatus(ctx, requestID, UpdateReturnRequestStatusRequest{Status: "completed"})
		require.NoError(t, err)

		assert.Equal(t, "completed", resp.Status)
		assert.True(t, resp.ActualRefund.Equal(decimal.NewFromInt(300000)))
		assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(600000)))
		assert.True(t, order.DiscountAmount.Equal(decimal.NewFromInt(60000)))
		assert.True(t, order.FinalAmount.Equal(decimal.NewFromInt(540000)))
		assert.Equal(t, fulfillment.PaymentStatusRefunded, order.PaymentStatus)
		f.variants.AssertExpectations(t)
	})

	t.Run("missing variant does not block completion", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)
		requestID := openReturn(t, order, fulfillment.ReturnLine{OrderItemID: order.Items[1].ID, Quantity: 1})
		_, err := fulfillment.NewEngine(testFeePolicy).Requests.UpdateStatus(order, requestID, fulfillment.ReturnRequestStatusApproved, "")
		require.NoError(t, err)
		order.ClearDomainEvents()

		f.orders.On("FindByReturnRequestID", mock.Anything, requestID).Return(order, nil)
		f.orders.On("Save", mock.Anything, order).Return(nil)
		f.variants.On("IncrementStock", mock.Anything, order.Items[1].VariantID, 1).Return(shared.ErrNotFound)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.UpdateReturnRequestStatus(ctx, requestID, UpdateReturnRequestStatusRequest{Status: "completed"})
		require.NoError(t, err)
		assert.Equal(t, "completed", resp.Status)
		f.orders.AssertCalled(t, "Save", mock.Anything, order)
	})

	t.Run("completing a request with pending items is refused", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)
		requestID := openReturn(t, order, fulfillment.ReturnLine{OrderItemID: order.Items[0].ID, Quantity: 1})

		f.orders.On("FindByReturnRequestID", mock.Anything, requestID).Return(order, nil)

		_, err := f.service.UpdateReturnRequestStatus(ctx, requestID, UpdateReturnRequestStatusRequest{Status: "completed"})
		assert.ErrorIs(t, err, fulfillment.ErrItemsStillPending)
		assert.Equal(t, fulfillment.CodeItemsStillPending, shared.ErrorCode(err))
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("stock failure aborts the completion", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)
		requestID := openReturn(t, order, fulfillment.ReturnLine{OrderItemID: order.Items[1].ID, Quantity: 1})
		_, err := fulfillment.NewEngine(testFeePolicy).Requests.UpdateStatus(order, requestID, fulfillment.ReturnRequestStatusApproved, "")
		require.NoError(t, err)

		f.orders.On("FindByReturnRequestID", mock.Anything, requestID).Return(order, nil)
		f.variants.On("IncrementStock", mock.Anything, order.Items[1].VariantID, 1).Return(errors.New("deadlock detected"))

		_, err = f.service.UpdateReturnRequestStatus(ctx, requestID, UpdateReturnRequestStatusRequest{Status: "completed"})
		require.Error(t, err)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("create return request", func(t *testing.T) {
		f := newServiceFixture()
		order := createTestOrder(t)

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.orders.On("Save", mock.Anything, order).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.CreateReturnRequest(ctx, order.ID, CreateReturnRequestRequest{
			Reason: "too small",
			Items:  []CreateReturnItemInput{{OrderItemID: order.Items[0].ID, Quantity: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, "pending", resp.Status)
		assert.True(t, resp.TotalReturnAmount.Equal(decimal.NewFromInt(800000)))
		require.Len(t, resp.Items, 1)
	})
}

func TestOrderService_Reads(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	order := createTestOrder(t)
	order.Shipping.Status = fulfillment.ShippingStatusDelivered
	require.NoError(t, fulfillment.NewEngine(testFeePolicy).Shipping.Transition(order, fulfillment.ShippingStatusReceived, ""))
	requestID := openReturn(t, order, fulfillment.ReturnLine{OrderItemID: order.Items[0].ID, Quantity: 1})

	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	t.Run("get order", func(t *testing.T) {
		resp, err := f.service.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "ORD-1001", resp.SKU)
		assert.Equal(t, "WELCOME", resp.CouponCode)
		assert.Len(t, resp.Items, 2)
		assert.Len(t, resp.ReturnRequests, 1)
	})

	t.Run("shipping logs", func(t *testing.T) {
		logs, err := f.service.ListShippingLogs(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "delivered", logs[0].OldStatus)
		assert.Equal(t, "received", logs[0].NewStatus)
	})

	t.Run("return request", func(t *testing.T) {
		resp, err := f.service.GetReturnRequest(ctx, order.ID, requestID)
		require.NoError(t, err)
		assert.Equal(t, requestID, resp.ID)

		_, err = f.service.GetReturnRequest(ctx, order.ID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("settlement export", func(t *testing.T) {
		file, err := f.service.ExportSettlement(ctx, order.ID, requestID)
		require.NoError(t, err)
		assert.Contains(t, file.Filename, "ORD-1001")
		// xlsx files are zip archives
		require.Greater(t, len(file.Content), 4)
		assert.Equal(t, []byte("PK"), file.Content[:2])
	})
}
