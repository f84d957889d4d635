package fulfillment

// Engine bundles the state machines, managers and calculators wired together
// around one shipping fee policy.
type Engine struct {
	Shipping *ShippingStateMachine
	Payment  *PaymentStateMachine
	Items    *ReturnItemManager
	Requests *ReturnRequestManager
	Refunds  *RefundCalculator
	Amounts  *OrderAmountRecalculator
}

// NewEngine creates a fully wired Engine
func NewEngine(fees ShippingFeePolicy) *Engine {
	payments := NewPaymentStateMachine()
	items := NewReturnItemManager()
	refunds := NewRefundCalculator(fees)
	amounts := NewOrderAmountRecalculator(fees)
	shipping := NewShippingStateMachine(payments, items, refunds)
	return &Engine{
		Shipping: shipping,
		Payment:  payments,
		Items:    items,
		Requests: NewReturnRequestManager(items, shipping, payments, refunds, amounts),
		Refunds:  refunds,
		Amounts:  amounts,
	}
}
