package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnRequestStatus represents the status of a return request
type ReturnRequestStatus string

const (
	ReturnRequestStatusPending   ReturnRequestStatus = "pending"
	ReturnRequestStatusApproved  ReturnRequestStatus = "approved"
	ReturnRequestStatusRejected  ReturnRequestStatus = "rejected"
	ReturnRequestStatusCompleted ReturnRequestStatus = "completed"
)

// IsValid checks if the status is a valid ReturnRequestStatus
func (s ReturnRequestStatus) IsValid() bool {
	switch s {
	case ReturnRequestStatusPending, ReturnRequestStatusApproved, ReturnRequestStatusRejected, ReturnRequestStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of ReturnRequestStatus
func (s ReturnRequestStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnRequestStatus) CanTransitionTo(target ReturnRequestStatus) bool {
	switch s {
	case ReturnRequestStatusPending:
		return target == ReturnRequestStatusApproved || target == ReturnRequestStatusRejected
	case ReturnRequestStatusApproved:
		return target == ReturnRequestStatusCompleted
	case ReturnRequestStatusRejected, ReturnRequestStatusCompleted:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if no further transitions are possible
func (s ReturnRequestStatus) IsTerminal() bool {
	return s == ReturnRequestStatusRejected || s == ReturnRequestStatusCompleted
}

// ReturnItemStatus represents the status of a single return line
type ReturnItemStatus string

const (
	ReturnItemStatusPending   ReturnItemStatus = "pending"
	ReturnItemStatusApproved  ReturnItemStatus = "approved"
	ReturnItemStatusRejected  ReturnItemStatus = "rejected"
	ReturnItemStatusCompleted ReturnItemStatus = "completed"
)

// IsValid checks if the status is a valid ReturnItemStatus
func (s ReturnItemStatus) IsValid() bool {
	switch s {
	case ReturnItemStatusPending, ReturnItemStatusApproved, ReturnItemStatusRejected, ReturnItemStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of ReturnItemStatus
func (s ReturnItemStatus) String() string {
	return string(s)
}

// CountsTowardRefund reports whether the item's refund amount is owed
func (s ReturnItemStatus) CountsTowardRefund() bool {
	return s == ReturnItemStatusApproved || s == ReturnItemStatusCompleted
}

// ReturnItem is one line within a return request
type ReturnItem struct {
	ID              uuid.UUID
	ReturnRequestID uuid.UUID
	OrderItemID     uuid.UUID
	Quantity        int
	Status          ReturnItemStatus
	RefundAmount    decimal.Decimal // Quantity * order item unit price, fixed at approval
	AdminResponse   string
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReturnRequest is a customer-initiated bundle of order items proposed for return
type ReturnRequest struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Status      ReturnRequestStatus
	Reason      string
	RequestedAt time.Time
	ProcessedAt *time.Time
	RejectedAt  *time.Time
	CompletedAt *time.Time

	TotalReturnAmount decimal.Decimal
	RefundedDiscount  decimal.Decimal
	OldShippingFee    decimal.Decimal
	NewShippingFee    decimal.Decimal
	ShippingDiff      decimal.Decimal
	EstimatedRefund   decimal.Decimal
	ActualRefund      decimal.Decimal
	RemainingAmount   decimal.Decimal

	Items     []ReturnItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FindItem returns the return item with the given ID
func (r *ReturnRequest) FindItem(itemID uuid.UUID) (*ReturnItem, error) {
	for idx := range r.Items {
		if r.Items[idx].ID == itemID {
			return &r.Items[idx], nil
		}
	}
	return nil, NewNotFoundError("return item", itemID)
}

// HasPendingItems reports whether any item still awaits a decision
func (r *ReturnRequest) HasPendingItems() bool {
	for _, item := range r.Items {
		if item.Status == ReturnItemStatusPending {
			return true
		}
	}
	return false
}

// ItemsWithStatus returns pointers to the items currently in the given status
func (r *ReturnRequest) ItemsWithStatus(status ReturnItemStatus) []*ReturnItem {
	items := make([]*ReturnItem, 0, len(r.Items))
	for idx := range r.Items {
		if r.Items[idx].Status == status {
			items = append(items, &r.Items[idx])
		}
	}
	return items
}

// ReturnLine is the customer's request to return a quantity of one order item
type ReturnLine struct {
	OrderItemID uuid.UUID
	Quantity    int
}
