package fulfillment

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// ShippingStateMachine validates and applies shipping status transitions.
// Every change appends a ShippingLog entry to the order.
type ShippingStateMachine struct {
	payments *PaymentStateMachine
	items    *ReturnItemManager
	refunds  *RefundCalculator
}

// NewShippingStateMachine creates a new ShippingStateMachine
func NewShippingStateMachine(payments *PaymentStateMachine, items *ReturnItemManager, refunds *RefundCalculator) *ShippingStateMachine {
	return &ShippingStateMachine{
		payments: payments,
		items:    items,
		refunds:  refunds,
	}
}

// Validate checks whether the order may move to target without mutating it.
// reasonAdmin is the reason supplied with this call, if any.
func (m *ShippingStateMachine) Validate(order *Order, target ShippingStatus, reasonAdmin string) error {
	if !target.IsValid() {
		return NewInvalidStatusError("shipping", string(target))
	}
	current := order.Shipping.Status

	// While a refund is processing only the refund outcome may be recorded
	if order.PaymentStatus == PaymentStatusRefundProcessing &&
		target != current &&
		target != ShippingStatusReturnFail &&
		target != ShippingStatusReturned {
		return NewLockedForRefundError(current, target)
	}

	if !current.CanTransitionTo(target) {
		return NewInvalidTransitionError("shipping", current, target)
	}

	if target != current && target.IsReturnFamily() && effectiveReason(order, reasonAdmin) == "" {
		return NewReasonRequiredError("reason_admin is required when moving shipping to " + target.String())
	}
	return nil
}

// Transition moves the order's shipping status to target.
// A self-transition only records a newly supplied reason.
func (m *ShippingStateMachine) Transition(order *Order, target ShippingStatus, reasonAdmin string) error {
	if err := m.Validate(order, target, reasonAdmin); err != nil {
		return err
	}

	now := shared.Now()
	if reason := strings.TrimSpace(reasonAdmin); reason != "" {
		order.Shipping.ReasonAdmin = reason
		order.Shipping.UpdatedAt = now
	}

	current := order.Shipping.Status
	if current == target {
		return nil
	}

	order.Shipping.Status = target
	order.Shipping.UpdatedAt = now
	order.ShippingLogs = append(order.ShippingLogs, ShippingLog{
		ID:        uuid.New(),
		OrderID:   order.ID,
		OldStatus: current,
		NewStatus: target,
		CreatedAt: now,
	})
	order.touch(now)
	order.AddDomainEvent(NewShippingStatusChangedEvent(order, current, target))

	switch target {
	case ShippingStatusReceived:
		if order.Shipping.ReceivedAt == nil {
			order.Shipping.ReceivedAt = &now
		}
		if err := m.completeApprovedItems(order); err != nil {
			return err
		}
	case ShippingStatusReturned:
		if order.PaymentStatus == PaymentStatusPaid {
			if err := m.payments.Transition(order, PaymentStatusRefundProcessing); err != nil {
				return err
			}
		}
	}
	return nil
}

// DriveTo moves shipping to target through the shortest chain of legal transitions.
// Each hop is a regular Transition with its own log entry and side effects.
func (m *ShippingStateMachine) DriveTo(order *Order, target ShippingStatus, reasonAdmin string) error {
	path, ok := shippingPath(order.Shipping.Status, target)
	if !ok {
		if !target.IsValid() {
			return NewInvalidStatusError("shipping", string(target))
		}
		return NewInvalidTransitionError("shipping", order.Shipping.Status, target)
	}
	for _, next := range path {
		if err := m.Transition(order, next, reasonAdmin); err != nil {
			return err
		}
	}
	return nil
}

// completeApprovedItems completes every approved item of approved or pending requests
func (m *ShippingStateMachine) completeApprovedItems(order *Order) error {
	for idx := range order.ReturnRequests {
		req := &order.ReturnRequests[idx]
		if req.Status != ReturnRequestStatusApproved && req.Status != ReturnRequestStatusPending {
			continue
		}
		changed := false
		for _, item := range req.ItemsWithStatus(ReturnItemStatusApproved) {
			completed, err := m.items.Complete(order, req, item)
			if err != nil {
				return err
			}
			changed = changed || completed
		}
		if changed {
			if err := m.refunds.Recalculate(order, req); err != nil {
				return err
			}
		}
	}
	return nil
}

// effectiveReason returns the reason supplied with the call, or the one already stored
func effectiveReason(order *Order, supplied string) string {
	if reason := strings.TrimSpace(supplied); reason != "" {
		return reason
	}
	return strings.TrimSpace(order.Shipping.ReasonAdmin)
}
