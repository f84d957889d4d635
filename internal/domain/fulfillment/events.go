package fulfillment

import (
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type for order events
const AggregateTypeOrder = "Order"

// Event type constants for the fulfillment context
const (
	EventTypeShippingStatusChanged    = "ShippingStatusChanged"
	EventTypePaymentStatusChanged     = "PaymentStatusChanged"
	EventTypeReturnRequestCreated     = "ReturnRequestCreated"
	EventTypeReturnItemApproved       = "ReturnItemApproved"
	EventTypeReturnItemRejected       = "ReturnItemRejected"
	EventTypeReturnItemCompleted      = "ReturnItemCompleted"
	EventTypeReturnRequestApproved    = "ReturnRequestApproved"
	EventTypeReturnRequestRejected    = "ReturnRequestRejected"
	EventTypeReturnRequestCompleted   = "ReturnRequestCompleted"
	EventTypeOrderAmountsRecalculated = "OrderAmountsRecalculated"
)

// CustomerContact is the recipient snapshot carried by customer-facing events
type CustomerContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ShippingStatusChangedEvent is raised on every shipping status change
type ShippingStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	SKU         string          `json:"sku"`
	OldStatus   ShippingStatus  `json:"old_status"`
	NewStatus   ShippingStatus  `json:"new_status"`
	ReasonAdmin string          `json:"reason_admin"`
	Customer    CustomerContact `json:"customer"`
}

// NewShippingStatusChangedEvent creates a new ShippingStatusChangedEvent
func NewShippingStatusChangedEvent(o *Order, from, to ShippingStatus) *ShippingStatusChangedEvent {
	return &ShippingStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShippingStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		SKU:             o.SKU,
		OldStatus:       from,
		NewStatus:       to,
		ReasonAdmin:     o.Shipping.ReasonAdmin,
		Customer:        o.Customer,
	}
}

// PaymentStatusChangedEvent is raised on every payment status change
type PaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID       `json:"order_id"`
	SKU       string          `json:"sku"`
	OldStatus PaymentStatus   `json:"old_status"`
	NewStatus PaymentStatus   `json:"new_status"`
	Method    PaymentMethod   `json:"method"`
	Customer  CustomerContact `json:"customer"`
}

// NewPaymentStatusChangedEvent creates a new PaymentStatusChangedEvent
func NewPaymentStatusChangedEvent(o *Order, from, to PaymentStatus) *PaymentStatusChangedEvent {
	return &PaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		SKU:             o.SKU,
		OldStatus:       from,
		NewStatus:       to,
		Method:          o.PaymentMethod,
		Customer:        o.Customer,
	}
}

// ReturnRequestCreatedEvent is raised when a customer opens a return
type ReturnRequestCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID           uuid.UUID       `json:"order_id"`
	SKU               string          `json:"sku"`
	ReturnRequestID   uuid.UUID       `json:"return_request_id"`
	TotalReturnAmount decimal.Decimal `json:"total_return_amount"`
	ItemCount         int             `json:"item_count"`
}

// NewReturnRequestCreatedEvent creates a new ReturnRequestCreatedEvent
func NewReturnRequestCreatedEvent(o *Order, r *ReturnRequest) *ReturnRequestCreatedEvent {
	return &ReturnRequestCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeReturnRequestCreated, AggregateTypeOrder, o.ID),
		OrderID:           o.ID,
		SKU:               o.SKU,
		ReturnRequestID:   r.ID,
		TotalReturnAmount: r.TotalReturnAmount,
		ItemCount:         len(r.Items),
	}
}

// ReturnItemDecidedEvent is raised when an admin approves or rejects a return item
type ReturnItemDecidedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID        `json:"order_id"`
	SKU             string           `json:"sku"`
	ReturnRequestID uuid.UUID        `json:"return_request_id"`
	ReturnItemID    uuid.UUID        `json:"return_item_id"`
	ProductName     string           `json:"product_name"`
	Quantity        int              `json:"quantity"`
	Status          ReturnItemStatus `json:"status"`
	RefundAmount    decimal.Decimal  `json:"refund_amount"`
	AdminResponse   string           `json:"admin_response"`
	Customer        CustomerContact  `json:"customer"`
}

// NewReturnItemDecidedEvent creates the approved or rejected event depending on the item status
func NewReturnItemDecidedEvent(o *Order, r *ReturnRequest, item *ReturnItem, productName string) *ReturnItemDecidedEvent {
	eventType := EventTypeReturnItemApproved
	if item.Status == ReturnItemStatusRejected {
		eventType = EventTypeReturnItemRejected
	}
	return &ReturnItemDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		SKU:             o.SKU,
		ReturnRequestID: r.ID,
		ReturnItemID:    item.ID,
		ProductName:     productName,
		Quantity:        item.Quantity,
		Status:          item.Status,
		RefundAmount:    item.RefundAmount,
		AdminResponse:   item.AdminResponse,
		Customer:        o.Customer,
	}
}

// ReturnItemCompletedEvent is raised exactly once per item entering completed.
// It drives stock restoration inside the same unit of work.
type ReturnItemCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID `json:"order_id"`
	ReturnRequestID uuid.UUID `json:"return_request_id"`
	ReturnItemID    uuid.UUID `json:"return_item_id"`
	OrderItemID     uuid.UUID `json:"order_item_id"`
	VariantID       uuid.UUID `json:"variant_id"`
	Quantity        int       `json:"quantity"`
}

// NewReturnItemCompletedEvent creates a new ReturnItemCompletedEvent
func NewReturnItemCompletedEvent(o *Order, r *ReturnRequest, item *ReturnItem, variantID uuid.UUID) *ReturnItemCompletedEvent {
	return &ReturnItemCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnItemCompleted, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		ReturnRequestID: r.ID,
		ReturnItemID:    item.ID,
		OrderItemID:     item.OrderItemID,
		VariantID:       variantID,
		Quantity:        item.Quantity,
	}
}

// ReturnRequestStatusChangedEvent is raised when a request is approved, rejected or completed
type ReturnRequestStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID           `json:"order_id"`
	SKU             string              `json:"sku"`
	ReturnRequestID uuid.UUID           `json:"return_request_id"`
	Status          ReturnRequestStatus `json:"status"`
	AutoPromoted    bool                `json:"auto_promoted"`
	Reason          string              `json:"reason,omitempty"`
	EstimatedRefund decimal.Decimal     `json:"estimated_refund"`
	ActualRefund    decimal.Decimal     `json:"actual_refund"`
	Currency        string              `json:"currency"`
	Customer        CustomerContact     `json:"customer"`
}

// NewReturnRequestStatusChangedEvent creates the event matching the request's current status
func NewReturnRequestStatusChangedEvent(o *Order, r *ReturnRequest, autoPromoted bool, reason string) *ReturnRequestStatusChangedEvent {
	var eventType string
	switch r.Status {
	case ReturnRequestStatusApproved:
		eventType = EventTypeReturnRequestApproved
	case ReturnRequestStatusRejected:
		eventType = EventTypeReturnRequestRejected
	default:
		eventType = EventTypeReturnRequestCompleted
	}
	return &ReturnRequestStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		SKU:             o.SKU,
		ReturnRequestID: r.ID,
		Status:          r.Status,
		AutoPromoted:    autoPromoted,
		Reason:          reason,
		EstimatedRefund: r.EstimatedRefund,
		ActualRefund:    r.ActualRefund,
		Currency:        string(o.Currency),
		Customer:        o.Customer,
	}
}

// OrderAmountsRecalculatedEvent is raised after a completed return rewrites the order amounts
type OrderAmountsRecalculatedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

// NewOrderAmountsRecalculatedEvent creates a new OrderAmountsRecalculatedEvent
func NewOrderAmountsRecalculatedEvent(o *Order) *OrderAmountsRecalculatedEvent {
	return &OrderAmountsRecalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderAmountsRecalculated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		TotalAmount:     o.TotalAmount,
		DiscountAmount:  o.DiscountAmount,
		ShippingFee:     o.ShippingFee,
		FinalAmount:     o.FinalAmount,
	}
}
