package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopspring/decimal"
)

// ==================== Order DTOs ====================

// UpdateOrderRequest represents an admin update of the shipping and payment axes.
// Nil fields are left unchanged.
type UpdateOrderRequest struct {
	ShippingStatus *string `json:"shipping_status"`
	PaymentStatus  *string `json:"payment_status"`
	ReasonAdmin    *string `json:"reason_admin" binding:"omitempty,max=500"`
	TransferImage  *string `json:"transfer_image" binding:"omitempty,max=500"`
}

// OrderResponse represents an order with its shipping, items and return requests
type OrderResponse struct {
	ID                     uuid.UUID                    `json:"id"`
	SKU                    string                       `json:"sku"`
	Currency               string                       `json:"currency"`
	PaymentMethod          string                       `json:"payment_method"`
	PaymentStatus          string                       `json:"payment_status"`
	TotalAmount            decimal.Decimal              `json:"total_amount"`
	DiscountAmount         decimal.Decimal              `json:"discount_amount"`
	ShippingFee            decimal.Decimal              `json:"shipping_fee"`
	FinalAmount            decimal.Decimal              `json:"final_amount"`
	OriginalTotalAmount    decimal.Decimal              `json:"original_total_amount"`
	OriginalDiscountAmount decimal.Decimal              `json:"original_discount_amount"`
	OriginalShippingFee    decimal.Decimal              `json:"original_shipping_fee"`
	CouponCode             string                       `json:"coupon_code,omitempty"`
	Customer               fulfillment.CustomerContact  `json:"customer"`
	Shipping               ShippingResponse             `json:"shipping"`
	Items                  []OrderItemResponse          `json:"items"`
	ReturnRequests         []ReturnRequestResponse      `json:"return_requests"`
	Transactions           []PaymentTransactionResponse `json:"transactions"`
	Version                int                          `json:"version"`
	CreatedAt              time.Time                    `json:"created_at"`
	UpdatedAt              time.Time                    `json:"updated_at"`
}

// OrderItemResponse represents an order line
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	VariantID   uuid.UUID       `json:"variant_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// ShippingResponse represents the shipping record of an order
type ShippingResponse struct {
	Status        string     `json:"status"`
	Reason        string     `json:"reason,omitempty"`
	ReasonAdmin   string     `json:"reason_admin,omitempty"`
	TransferImage string     `json:"transfer_image,omitempty"`
	ReceivedAt    *time.Time `json:"received_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ShippingLogResponse represents one shipping status change
type ShippingLogResponse struct {
	ID        uuid.UUID `json:"id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentTransactionResponse represents a ledger entry
type PaymentTransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	ReturnRequestID *uuid.UUID      `json:"return_request_id,omitempty"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ==================== Return Request DTOs ====================

// CreateReturnRequestRequest represents a customer return request
type CreateReturnRequestRequest struct {
	Reason string                  `json:"reason" binding:"max=1000"`
	Items  []CreateReturnItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreateReturnItemInput represents one line of a return request
type CreateReturnItemInput struct {
	OrderItemID uuid.UUID `json:"order_item_id" binding:"required"`
	Quantity    int       `json:"quantity" binding:"required,min=1"`
}

// ReturnItemDecisionRequest carries the admin response for an item decision.
// OrderID scopes the request to an order when set.
type ReturnItemDecisionRequest struct {
	OrderID       uuid.UUID `json:"-"`
	AdminResponse string    `json:"admin_response" binding:"max=1000"`
}

// UpdateReturnRequestStatusRequest represents an explicit request-level transition
type UpdateReturnRequestStatusRequest struct {
	OrderID uuid.UUID `json:"-"`
	Status  string    `json:"status" binding:"required,oneof=approved rejected completed"`
	Reason  string    `json:"reason" binding:"max=1000"`
}

// ReturnRequestResponse represents a return request with its persisted amounts
type ReturnRequestResponse struct {
	ID                uuid.UUID            `json:"id"`
	OrderID           uuid.UUID            `json:"order_id"`
	Status            string               `json:"status"`
	Reason            string               `json:"reason,omitempty"`
	Items             []ReturnItemResponse `json:"items"`
	TotalReturnAmount decimal.Decimal      `json:"total_return_amount"`
	RefundedDiscount  decimal.Decimal      `json:"refunded_discount"`
	OldShippingFee    decimal.Decimal      `json:"old_shipping_fee"`
	NewShippingFee    decimal.Decimal      `json:"new_shipping_fee"`
	ShippingDiff      decimal.Decimal      `json:"shipping_diff"`
	EstimatedRefund   decimal.Decimal      `json:"estimated_refund"`
	ActualRefund      decimal.Decimal      `json:"actual_refund"`
	RemainingAmount   decimal.Decimal      `json:"remaining_amount"`
	RequestedAt       time.Time            `json:"requested_at"`
	ProcessedAt       *time.Time           `json:"processed_at,omitempty"`
	RejectedAt        *time.Time           `json:"rejected_at,omitempty"`
	CompletedAt       *time.Time           `json:"completed_at,omitempty"`
}

// ReturnItemResponse represents one return line
type ReturnItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderItemID   uuid.UUID       `json:"order_item_id"`
	Quantity      int             `json:"quantity"`
	Status        string          `json:"status"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
	AdminResponse string          `json:"admin_response,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// ==================== Converters ====================

// ToOrderResponse converts an Order aggregate to its response
func ToOrderResponse(o *fulfillment.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i := range o.Items {
		items[i] = ToOrderItemResponse(&o.Items[i])
	}
	requests := make([]ReturnRequestResponse, len(o.ReturnRequests))
	for i := range o.ReturnRequests {
		requests[i] = ToReturnRequestResponse(&o.ReturnRequests[i])
	}
	transactions := make([]PaymentTransactionResponse, len(o.Transactions))
	for i, tx := range o.Transactions {
		transactions[i] = PaymentTransactionResponse{
			ID:              tx.ID,
			ReturnRequestID: tx.ReturnRequestID,
			Kind:            string(tx.Kind),
			Amount:          tx.Amount,
			CreatedAt:       tx.CreatedAt,
		}
	}

	resp := OrderResponse{
		ID:                     o.ID,
		SKU:                    o.SKU,
		Currency:               string(o.Currency),
		PaymentMethod:          string(o.PaymentMethod),
		PaymentStatus:          string(o.PaymentStatus),
		TotalAmount:            o.TotalAmount,
		DiscountAmount:         o.DiscountAmount,
		ShippingFee:            o.ShippingFee,
		FinalAmount:            o.FinalAmount,
		OriginalTotalAmount:    o.OriginalTotalAmount,
		OriginalDiscountAmount: o.OriginalDiscountAmount,
		OriginalShippingFee:    o.OriginalShippingFee,
		Customer:               o.Customer,
		Shipping: ShippingResponse{
			Status:        string(o.Shipping.Status),
			Reason:        o.Shipping.Reason,
			ReasonAdmin:   o.Shipping.ReasonAdmin,
			TransferImage: o.Shipping.TransferImage,
			ReceivedAt:    o.Shipping.ReceivedAt,
			UpdatedAt:     o.Shipping.UpdatedAt,
		},
		Items:          items,
		ReturnRequests: requests,
		Transactions:   transactions,
		Version:        o.Version,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.Coupon != nil {
		resp.CouponCode = o.Coupon.Code
	}
	return resp
}

// ToOrderItemResponse converts an OrderItem to its response
func ToOrderItemResponse(item *fulfillment.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:          item.ID,
		VariantID:   item.VariantID,
		ProductName: item.ProductName,
		Size:        item.Size,
		Color:       item.Color,
		UnitPrice:   item.UnitPrice,
		Quantity:    item.Quantity,
		LineTotal:   item.LineTotal(),
	}
}

// ToShippingLogResponses converts shipping logs to responses
func ToShippingLogResponses(logs []fulfillment.ShippingLog) []ShippingLogResponse {
	responses := make([]ShippingLogResponse, len(logs))
	for i, l := range logs {
		responses[i] = ShippingLogResponse{
			ID:        l.ID,
			OldStatus: string(l.OldStatus),
			NewStatus: string(l.NewStatus),
			CreatedAt: l.CreatedAt,
		}
	}
	return responses
}

// ToReturnRequestResponse converts a ReturnRequest to its response
func ToReturnRequestResponse(r *fulfillment.ReturnRequest) ReturnRequestResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = ReturnItemResponse{
			ID:            item.ID,
			OrderItemID:   item.OrderItemID,
			Quantity:      item.Quantity,
			Status:        string(item.Status),
			RefundAmount:  item.RefundAmount,
			AdminResponse: item.AdminResponse,
			CompletedAt:   item.CompletedAt,
		}
	}
	return ReturnRequestResponse{
		ID:                r.ID,
		OrderID:           r.OrderID,
		Status:            string(r.Status),
		Reason:            r.Reason,
		Items:             items,
		TotalReturnAmount: r.TotalReturnAmount,
		RefundedDiscount:  r.RefundedDiscount,
		OldShippingFee:    r.OldShippingFee,
		NewShippingFee:    r.NewShippingFee,
		ShippingDiff:      r.ShippingDiff,
		EstimatedRefund:   r.EstimatedRefund,
		ActualRefund:      r.ActualRefund,
		RemainingAmount:   r.RemainingAmount,
		RequestedAt:       r.RequestedAt,
		ProcessedAt:       r.ProcessedAt,
		RejectedAt:        r.RejectedAt,
		CompletedAt:       r.CompletedAt,
	}
}
