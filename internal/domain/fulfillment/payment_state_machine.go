package fulfillment

import (
	"github.com/shopdesk/backend/internal/domain/shared"
)

// PaymentStateMachine validates and applies payment status transitions,
// constrained by the payment method and the current shipping status.
type PaymentStateMachine struct{}

// NewPaymentStateMachine creates a new PaymentStateMachine
func NewPaymentStateMachine() *PaymentStateMachine {
	return &PaymentStateMachine{}
}

// Validate checks whether the order may move to target without mutating it
func (m *PaymentStateMachine) Validate(order *Order, target PaymentStatus) error {
	if !target.IsValid() {
		return NewInvalidStatusError("payment", string(target))
	}
	current := order.PaymentStatus
	if !current.CanTransitionTo(target) {
		return NewInvalidTransitionError("payment", current, target)
	}

	shipping := order.Shipping.Status
	switch {
	case current == PaymentStatusUnpaid && target == PaymentStatusPaid:
		if order.PaymentMethod == PaymentMethodCOD && shipping != ShippingStatusDelivered {
			return shared.NewDomainError(CodeInvalidTransition,
				"Cash on delivery orders can only be marked paid once shipping status is delivered")
		}
		if order.PaymentMethod != PaymentMethodCOD && order.PaymentMethod != PaymentMethodGateway {
			return NewInvalidTransitionError("payment", current, target)
		}
	case current == PaymentStatusPaid && target == PaymentStatusRefundProcessing:
		if shipping != ShippingStatusReturnProcessing && shipping != ShippingStatusReturned {
			return shared.NewDomainError(CodeInvalidTransition,
				"Refund can only start while shipping status is return_processing or returned")
		}
	}
	return nil
}

// Transition moves the order's payment status to target.
// A self-transition is a no-op.
func (m *PaymentStateMachine) Transition(order *Order, target PaymentStatus) error {
	if err := m.Validate(order, target); err != nil {
		return err
	}
	current := order.PaymentStatus
	if current == target {
		return nil
	}

	order.PaymentStatus = target
	order.touch(shared.Now())
	if target == PaymentStatusPaid {
		order.recordTransaction(TransactionKindPayment, order.FinalAmount, nil)
	}
	order.AddDomainEvent(NewPaymentStatusChangedEvent(order, current, target))
	return nil
}
