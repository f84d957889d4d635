package fulfillment

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// Error codes raised by the fulfillment engine
const (
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeReasonRequired    = "REASON_REQUIRED"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidStatus     = "INVALID_STATUS"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeLockedForRefund   = "LOCKED_FOR_REFUND"
	CodeItemsStillPending = "ITEMS_STILL_PENDING"
)

// ErrItemsStillPending is returned when completing a request that still has undecided items
var ErrItemsStillPending = shared.NewDomainError(CodeItemsStillPending, "Return request still has pending items")

// NewInvalidTransitionError reports an illegal move on one status axis
func NewInvalidTransitionError(axis string, from, to fmt.Stringer) *shared.DomainError {
	return shared.NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("Cannot change %s status from %s to %s", axis, from, to))
}

// NewLockedForRefundError reports a shipping change attempted while a refund is processing
func NewLockedForRefundError(from, to ShippingStatus) *shared.DomainError {
	return shared.NewDomainError(CodeLockedForRefund,
		fmt.Sprintf("Order is locked for refund: shipping status cannot change from %s to %s", from, to))
}

// NewReasonRequiredError reports a missing mandatory reason
func NewReasonRequiredError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeReasonRequired, message)
}

// NewInvalidStatusError reports an unknown status value
func NewInvalidStatusError(axis, value string) *shared.DomainError {
	return shared.NewDomainError(CodeInvalidStatus, fmt.Sprintf("Unknown %s status %q", axis, value))
}

// NewNotFoundError reports an unknown order, return request or item
func NewNotFoundError(resource string, id uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("%s %s not found", resource, id))
}

// IsValidationError reports whether err belongs to the caller-correctable family
func IsValidationError(err error) bool {
	switch shared.ErrorCode(err) {
	case CodeInvalidTransition, CodeReasonRequired, CodeValidation, CodeInvalidStatus, CodeInvalidQuantity:
		return true
	}
	return false
}
