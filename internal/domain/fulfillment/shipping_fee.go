package fulfillment

import "github.com/shopspring/decimal"

// ShippingFeePolicy decides the shipping fee for a subtotal.
// Subtotals at or above FreeShippingThreshold ship free; a zero threshold makes every order free.
type ShippingFeePolicy struct {
	FreeShippingThreshold decimal.Decimal
	FlatFee               decimal.Decimal
}

// FeeFor returns the shipping fee charged for the given subtotal.
// Nothing left to ship costs nothing.
func (p ShippingFeePolicy) FeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	if subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.FlatFee
}
