package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer pays for an order
type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodGateway PaymentMethod = "gateway"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodGateway
}

// PaymentStatus represents the money-facing lifecycle of an order
type PaymentStatus string

const (
	PaymentStatusUnpaid           PaymentStatus = "unpaid"
	PaymentStatusPaid             PaymentStatus = "paid"
	PaymentStatusRefundProcessing PaymentStatus = "refund_processing"
	PaymentStatusRefunded         PaymentStatus = "refunded"
	PaymentStatusFailed           PaymentStatus = "failed"
)

// IsValid checks if the status is a known PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefundProcessing, PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Cross-axis rules are enforced by PaymentStateMachine.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	if s == target {
		return true
	}
	switch s {
	case PaymentStatusUnpaid:
		return target == PaymentStatusPaid || target == PaymentStatusFailed
	case PaymentStatusPaid:
		return target == PaymentStatusRefundProcessing
	case PaymentStatusRefundProcessing:
		return target == PaymentStatusRefunded || target == PaymentStatusFailed
	case PaymentStatusRefunded, PaymentStatusFailed:
		return false // Terminal states
	}
	return false
}

// TransactionKind distinguishes money collected from money paid back
type TransactionKind string

const (
	TransactionKindPayment TransactionKind = "payment"
	TransactionKindRefund  TransactionKind = "refund"
)

// PaymentTransaction is a ledger entry recorded when money moves
type PaymentTransaction struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ReturnRequestID *uuid.UUID
	Kind            TransactionKind
	Amount          decimal.Decimal
	CreatedAt       time.Time
}
