package fulfillment

import (
	"strings"

	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReturnItemManager applies per-line decisions on return items
type ReturnItemManager struct{}

// NewReturnItemManager creates a new ReturnItemManager
func NewReturnItemManager() *ReturnItemManager {
	return &ReturnItemManager{}
}

// Approve approves a pending item and fixes its refund amount at quantity × unit price
func (m *ReturnItemManager) Approve(order *Order, req *ReturnRequest, item *ReturnItem, note string) error {
	if item.Status != ReturnItemStatusPending {
		return NewInvalidTransitionError("return item", item.Status, ReturnItemStatusApproved)
	}
	orderItem, err := order.FindItem(item.OrderItemID)
	if err != nil {
		return err
	}

	now := shared.Now()
	item.Status = ReturnItemStatusApproved
	item.AdminResponse = strings.TrimSpace(note)
	item.RefundAmount = orderItem.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	item.UpdatedAt = now
	req.UpdatedAt = now

	order.AddDomainEvent(NewReturnItemDecidedEvent(order, req, item, orderItem.ProductName))
	return nil
}

// Reject rejects a pending item. A reason is mandatory.
func (m *ReturnItemManager) Reject(order *Order, req *ReturnRequest, item *ReturnItem, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewReasonRequiredError("A reason is required to reject a return item")
	}
	if item.Status != ReturnItemStatusPending {
		return NewInvalidTransitionError("return item", item.Status, ReturnItemStatusRejected)
	}

	now := shared.Now()
	item.Status = ReturnItemStatusRejected
	item.AdminResponse = reason
	item.RefundAmount = decimal.Zero
	item.UpdatedAt = now
	req.UpdatedAt = now

	productName := ""
	if orderItem, err := order.FindItem(item.OrderItemID); err == nil {
		productName = orderItem.ProductName
	}
	order.AddDomainEvent(NewReturnItemDecidedEvent(order, req, item, productName))
	return nil
}

// Complete moves an approved item to completed. It returns false, nil when the item
// is already completed so stock is restored exactly once per item.
func (m *ReturnItemManager) Complete(order *Order, req *ReturnRequest, item *ReturnItem) (bool, error) {
	if item.Status == ReturnItemStatusCompleted {
		return false, nil
	}
	if item.Status != ReturnItemStatusApproved {
		return false, NewInvalidTransitionError("return item", item.Status, ReturnItemStatusCompleted)
	}
	orderItem, err := order.FindItem(item.OrderItemID)
	if err != nil {
		return false, err
	}

	now := shared.Now()
	item.Status = ReturnItemStatusCompleted
	item.CompletedAt = &now
	item.UpdatedAt = now
	req.UpdatedAt = now

	order.AddDomainEvent(NewReturnItemCompletedEvent(order, req, item, orderItem.VariantID))
	return true, nil
}
