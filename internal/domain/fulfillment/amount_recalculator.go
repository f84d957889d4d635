package fulfillment

import (
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderAmountRecalculator rewrites order totals after a return completes,
// keeping the checkout discount ratio and re-evaluating the free-shipping threshold.
type OrderAmountRecalculator struct {
	fees ShippingFeePolicy
}

// NewOrderAmountRecalculator creates a new OrderAmountRecalculator
func NewOrderAmountRecalculator(fees ShippingFeePolicy) *OrderAmountRecalculator {
	return &OrderAmountRecalculator{fees: fees}
}

// Recalculate overwrites total, shipping fee, discount and final amount
func (r *OrderAmountRecalculator) Recalculate(order *Order) error {
	total, err := order.RemainingSubtotal(uuid.Nil)
	if err != nil {
		return err
	}
	fee := r.fees.FeeFor(total)

	discount := decimal.Zero
	base := order.OriginalTotalAmount.Add(order.OriginalShippingFee)
	if base.IsPositive() {
		discount = order.Money(total.Add(fee).Mul(order.OriginalDiscountAmount).DivRound(base, 16)).Rounded().Amount()
	}

	order.TotalAmount = total
	order.ShippingFee = fee
	order.DiscountAmount = discount
	order.FinalAmount = FinalAmount(total, fee, discount)
	order.touch(shared.Now())
	order.AddDomainEvent(NewOrderAmountsRecalculatedEvent(order))
	return nil
}
