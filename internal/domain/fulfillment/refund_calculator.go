package fulfillment

import (
	"fmt"

	"github.com/shopdesk/backend/internal/domain/shared/valueobject"
)

// RefundCalculator derives the monetary fields of a return request.
// Results are written onto the request eagerly so reads never recompute them.
type RefundCalculator struct {
	fees ShippingFeePolicy
}

// NewRefundCalculator creates a new RefundCalculator
func NewRefundCalculator(fees ShippingFeePolicy) *RefundCalculator {
	return &RefundCalculator{fees: fees}
}

// RefundBreakdown is the result of one calculation
type RefundBreakdown struct {
	TotalReturnAmount valueobject.Money
	ApprovedAmount    valueobject.Money
	RefundedDiscount  valueobject.Money
	OldShippingFee    valueobject.Money
	NewShippingFee    valueobject.Money
	ShippingDiff      valueobject.Money
	EstimatedRefund   valueobject.Money
	RemainingAmount   valueobject.Money
}

// Calculate computes the refund breakdown for req without mutating it
func (c *RefundCalculator) Calculate(order *Order, req *ReturnRequest) (RefundBreakdown, error) {
	requested := valueobject.Zero(order.Currency)
	approved := valueobject.Zero(order.Currency)
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return RefundBreakdown{}, fmt.Errorf("return item %s has non-positive quantity %d", item.ID, item.Quantity)
		}
		orderItem, err := order.FindItem(item.OrderItemID)
		if err != nil {
			return RefundBreakdown{}, fmt.Errorf("return item %s: %w", item.ID, err)
		}
		requested = requested.MustAdd(order.Money(orderItem.UnitPrice).MultiplyByInt(int64(item.Quantity)))
		if item.Status.CountsTowardRefund() {
			approved = approved.MustAdd(order.Money(item.RefundAmount))
		}
	}

	// Claw back the discount in proportion to the approved share of the requested value
	refundedDiscount := valueobject.Zero(order.Currency)
	if requested.IsPositive() {
		ratio, err := approved.Ratio(requested)
		if err != nil {
			return RefundBreakdown{}, err
		}
		refundedDiscount = order.Money(order.OriginalDiscountAmount).Multiply(ratio).Rounded()
	}

	subtotal, err := order.RemainingSubtotal(req.ID)
	if err != nil {
		return RefundBreakdown{}, err
	}
	remainingSubtotal := order.Money(subtotal).MustSubtract(approved)
	// The fee currently charged already accounts for returns completed earlier,
	// so each request only settles its own change in shipping.
	oldFee := order.Money(order.ShippingFee)
	newFee := order.Money(c.fees.FeeFor(remainingSubtotal.Amount()))
	shippingDiff := newFee.MustSubtract(oldFee)

	estimated := approved.
		MustSubtract(refundedDiscount).
		MustSubtract(shippingDiff).
		NonNegative().
		Cap(requested).
		Rounded()
	remaining := order.Money(order.FinalAmount).MustSubtract(estimated).NonNegative()

	return RefundBreakdown{
		TotalReturnAmount: requested.Rounded(),
		ApprovedAmount:    approved.Rounded(),
		RefundedDiscount:  refundedDiscount,
		OldShippingFee:    oldFee,
		NewShippingFee:    newFee,
		ShippingDiff:      shippingDiff,
		EstimatedRefund:   estimated,
		RemainingAmount:   remaining.Rounded(),
	}, nil
}

// Recalculate recomputes and stores the monetary fields of req.
// Completed requests are frozen and left untouched.
func (c *RefundCalculator) Recalculate(order *Order, req *ReturnRequest) error {
	if req.Status == ReturnRequestStatusCompleted {
		return nil
	}
	b, err := c.Calculate(order, req)
	if err != nil {
		return fmt.Errorf("recalculate return request %s: %w", req.ID, err)
	}
	req.TotalReturnAmount = b.TotalReturnAmount.Amount()
	req.RefundedDiscount = b.RefundedDiscount.Amount()
	req.OldShippingFee = b.OldShippingFee.Amount()
	req.NewShippingFee = b.NewShippingFee.Amount()
	req.ShippingDiff = b.ShippingDiff.Amount()
	req.EstimatedRefund = b.EstimatedRefund.Amount()
	req.RemainingAmount = b.RemainingAmount.Amount()
	return nil
}
