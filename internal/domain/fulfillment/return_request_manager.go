package fulfillment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ApprovedByAdminNote is recorded on items approved in bulk with their request
const ApprovedByAdminNote = "approved by admin"

// defaultReturnReason is used when a return-family shipping change is driven
// automatically and no admin reason was ever recorded
const defaultReturnReason = "return request approved"

// ReturnRequestManager aggregates item decisions into a request-level status
// and drives the shipping and payment axes as a consequence.
type ReturnRequestManager struct {
	items    *ReturnItemManager
	shipping *ShippingStateMachine
	payments *PaymentStateMachine
	refunds  *RefundCalculator
	amounts  *OrderAmountRecalculator
}

// NewReturnRequestManager creates a new ReturnRequestManager
func NewReturnRequestManager(
	items *ReturnItemManager,
	shipping *ShippingStateMachine,
	payments *PaymentStateMachine,
	refunds *RefundCalculator,
	amounts *OrderAmountRecalculator,
) *ReturnRequestManager {
	return &ReturnRequestManager{
		items:    items,
		shipping: shipping,
		payments: payments,
		refunds:  refunds,
		amounts:  amounts,
	}
}

// Open creates a pending return request with pending items
func (m *ReturnRequestManager) Open(order *Order, reason string, lines []ReturnLine) (*ReturnRequest, error) {
	if !order.Shipping.Status.AcceptsReturnRequests() {
		return nil, shared.NewDomainError(CodeValidation,
			fmt.Sprintf("Returns cannot be requested while shipping status is %s", order.Shipping.Status))
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(CodeValidation, "A return request needs at least one item")
	}

	now := shared.Now()
	req := ReturnRequest{
		ID:          uuid.New(),
		OrderID:     order.ID,
		Status:      ReturnRequestStatusPending,
		Reason:      strings.TrimSpace(reason),
		RequestedAt: now,
		Items:       make([]ReturnItem, 0, len(lines)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if seen[line.OrderItemID] {
			return nil, shared.NewDomainError(CodeValidation, fmt.Sprintf("Order item %s is listed more than once", line.OrderItemID))
		}
		seen[line.OrderItemID] = true

		if line.Quantity <= 0 {
			return nil, shared.NewDomainError(CodeInvalidQuantity, "Return quantity must be positive")
		}
		returnable, err := order.ReturnableQuantity(line.OrderItemID)
		if err != nil {
			return nil, err
		}
		if line.Quantity > returnable {
			return nil, shared.NewDomainError(CodeInvalidQuantity,
				fmt.Sprintf("Only %d unit(s) of order item %s can be returned", returnable, line.OrderItemID))
		}
		req.Items = append(req.Items, ReturnItem{
			ID:              uuid.New(),
			ReturnRequestID: req.ID,
			OrderItemID:     line.OrderItemID,
			Quantity:        line.Quantity,
			Status:          ReturnItemStatusPending,
			RefundAmount:    decimal.Zero,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	order.ReturnRequests = append(order.ReturnRequests, req)
	created := &order.ReturnRequests[len(order.ReturnRequests)-1]
	if err := m.refunds.Recalculate(order, created); err != nil {
		return nil, err
	}
	order.touch(now)
	order.AddDomainEvent(NewReturnRequestCreatedEvent(order, created))
	return created, nil
}

// ApproveItem approves one item and auto-promotes the request when nothing is left pending
func (m *ReturnRequestManager) ApproveItem(order *Order, requestID, itemID uuid.UUID, note string) (*ReturnRequest, error) {
	req, item, err := m.find(order, requestID, itemID)
	if err != nil {
		return nil, err
	}
	if err := m.items.Approve(order, req, item, note); err != nil {
		return nil, err
	}
	return req, m.afterItemDecision(order, req)
}

// RejectItem rejects one item and auto-promotes the request when nothing is left pending
func (m *ReturnRequestManager) RejectItem(order *Order, requestID, itemID uuid.UUID, reason string) (*ReturnRequest, error) {
	req, item, err := m.find(order, requestID, itemID)
	if err != nil {
		return nil, err
	}
	if err := m.items.Reject(order, req, item, reason); err != nil {
		return nil, err
	}
	return req, m.afterItemDecision(order, req)
}

// UpdateStatus performs an explicit admin-driven request transition
func (m *ReturnRequestManager) UpdateStatus(order *Order, requestID uuid.UUID, target ReturnRequestStatus, reason string) (*ReturnRequest, error) {
	if !target.IsValid() {
		return nil, NewInvalidStatusError("return request", string(target))
	}
	req, err := order.FindReturnRequest(requestID)
	if err != nil {
		return nil, err
	}
	if target == ReturnRequestStatusCompleted && req.HasPendingItems() {
		return nil, ErrItemsStillPending
	}
	if !req.Status.CanTransitionTo(target) {
		return nil, NewInvalidTransitionError("return request", req.Status, target)
	}

	switch target {
	case ReturnRequestStatusApproved:
		err = m.Approve(order, req)
	case ReturnRequestStatusRejected:
		err = m.Reject(order, req, reason)
	case ReturnRequestStatusCompleted:
		err = m.Complete(order, req)
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Approve bulk-approves pending items and moves shipping to return_processing
func (m *ReturnRequestManager) Approve(order *Order, req *ReturnRequest) error {
	if req.Status != ReturnRequestStatusPending {
		return NewInvalidTransitionError("return request", req.Status, ReturnRequestStatusApproved)
	}
	for _, item := range req.ItemsWithStatus(ReturnItemStatusPending) {
		if err := m.items.Approve(order, req, item, ApprovedByAdminNote); err != nil {
			return err
		}
	}
	return m.promote(order, req, false)
}

// Reject bulk-rejects pending items and moves shipping to return_fail
func (m *ReturnRequestManager) Reject(order *Order, req *ReturnRequest, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewReasonRequiredError("A reason is required to reject a return request")
	}
	if req.Status != ReturnRequestStatusPending {
		return NewInvalidTransitionError("return request", req.Status, ReturnRequestStatusRejected)
	}
	for _, item := range req.ItemsWithStatus(ReturnItemStatusPending) {
		if err := m.items.Reject(order, req, item, reason); err != nil {
			return err
		}
	}

	// Another open request keeps the parcel in the return flow
	if !hasOtherOpenRequest(order, req.ID) {
		if err := m.driveShipping(order, ShippingStatusReturnFail, reason); err != nil {
			return err
		}
	}
	now := shared.Now()
	req.Status = ReturnRequestStatusRejected
	req.RejectedAt = &now
	req.UpdatedAt = now
	if err := m.refunds.Recalculate(order, req); err != nil {
		return err
	}
	order.AddDomainEvent(NewReturnRequestStatusChangedEvent(order, req, false, reason))
	return nil
}

// Complete completes approved items, moves shipping to returned, settles the refund
// and rewrites the order amounts.
func (m *ReturnRequestManager) Complete(order *Order, req *ReturnRequest) error {
	if req.HasPendingItems() {
		return ErrItemsStillPending
	}
	if req.Status != ReturnRequestStatusApproved {
		return NewInvalidTransitionError("return request", req.Status, ReturnRequestStatusCompleted)
	}

	for _, item := range req.ItemsWithStatus(ReturnItemStatusApproved) {
		if _, err := m.items.Complete(order, req, item); err != nil {
			return err
		}
	}
	if err := m.driveShipping(order, ShippingStatusReturned, m.reasonFor(order)); err != nil {
		return err
	}
	if err := m.refunds.Recalculate(order, req); err != nil {
		return err
	}

	now := shared.Now()
	req.ActualRefund = req.EstimatedRefund
	req.Status = ReturnRequestStatusCompleted
	req.CompletedAt = &now
	req.UpdatedAt = now

	if order.PaymentStatus == PaymentStatusPaid {
		if err := m.payments.Transition(order, PaymentStatusRefundProcessing); err != nil {
			return err
		}
	}
	if order.PaymentStatus == PaymentStatusRefundProcessing {
		if err := m.payments.Transition(order, PaymentStatusRefunded); err != nil {
			return err
		}
	}
	if order.PaymentStatus == PaymentStatusRefunded && req.ActualRefund.IsPositive() {
		requestID := req.ID
		order.recordTransaction(TransactionKindRefund, req.ActualRefund, &requestID)
	}

	if err := m.amounts.Recalculate(order); err != nil {
		return err
	}
	order.AddDomainEvent(NewReturnRequestStatusChangedEvent(order, req, false, ""))
	return nil
}

// afterItemDecision recalculates amounts and auto-promotes the request once no item is pending
func (m *ReturnRequestManager) afterItemDecision(order *Order, req *ReturnRequest) error {
	if req.Status == ReturnRequestStatusPending && !req.HasPendingItems() {
		return m.promote(order, req, true)
	}
	return m.refunds.Recalculate(order, req)
}

// promote marks the request approved and moves shipping to return_processing
func (m *ReturnRequestManager) promote(order *Order, req *ReturnRequest, auto bool) error {
	if err := m.driveShipping(order, ShippingStatusReturnProcessing, m.reasonFor(order)); err != nil {
		return err
	}
	now := shared.Now()
	req.Status = ReturnRequestStatusApproved
	req.ProcessedAt = &now
	req.UpdatedAt = now
	if err := m.refunds.Recalculate(order, req); err != nil {
		return err
	}
	order.AddDomainEvent(NewReturnRequestStatusChangedEvent(order, req, auto, ""))
	return nil
}

// reasonFor picks the admin reason for automatically driven shipping changes
func (m *ReturnRequestManager) reasonFor(order *Order) string {
	if strings.TrimSpace(order.Shipping.ReasonAdmin) != "" {
		return ""
	}
	return defaultReturnReason
}

// driveShipping moves shipping along the return flow. Once an earlier request has
// brought the parcel back, shipping stays returned for the requests settled after it.
func (m *ReturnRequestManager) driveShipping(order *Order, target ShippingStatus, reason string) error {
	if order.Shipping.Status == ShippingStatusReturned {
		return nil
	}
	return m.shipping.DriveTo(order, target, reason)
}

// hasOtherOpenRequest reports whether a request other than excluded is pending or approved
func hasOtherOpenRequest(order *Order, excluded uuid.UUID) bool {
	for _, other := range order.ReturnRequests {
		if other.ID == excluded {
			continue
		}
		if other.Status == ReturnRequestStatusPending || other.Status == ReturnRequestStatusApproved {
			return true
		}
	}
	return false
}

func (m *ReturnRequestManager) find(order *Order, requestID, itemID uuid.UUID) (*ReturnRequest, *ReturnItem, error) {
	req, err := order.FindReturnRequest(requestID)
	if err != nil {
		return nil, nil, err
	}
	item, err := req.FindItem(itemID)
	if err != nil {
		return nil, nil, err
	}
	return req, item, nil
}
