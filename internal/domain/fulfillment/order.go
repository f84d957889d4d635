package fulfillment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderItem is a line item snapshot taken at order time. It is immutable.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	VariantID   uuid.UUID
	ProductName string
	Size        string
	Color       string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// LineTotal returns UnitPrice * Quantity
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Coupon is the snapshot of the coupon applied at checkout
type Coupon struct {
	Code           string
	DiscountAmount decimal.Decimal
}

var _ shared.AggregateRoot = (*Order)(nil)

// Order is the aggregate root of the fulfillment context.
// It owns items, shipping, the shipping log, return requests and the payment ledger.
type Order struct {
	shared.BaseAggregateRoot
	SKU           string // display code
	Customer      CustomerContact
	Currency      valueobject.Currency
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus

	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingFee    decimal.Decimal
	FinalAmount    decimal.Decimal // TotalAmount + ShippingFee - DiscountAmount, never negative

	// Snapshot of the amounts at checkout; never overwritten
	OriginalTotalAmount    decimal.Decimal
	OriginalDiscountAmount decimal.Decimal
	OriginalShippingFee    decimal.Decimal

	Coupon         *Coupon
	Items          []OrderItem
	Shipping       Shipping
	ShippingLogs   []ShippingLog
	ReturnRequests []ReturnRequest
	Transactions   []PaymentTransaction
}

// OrderLine describes an item when placing an order
type OrderLine struct {
	VariantID   uuid.UUID
	ProductName string
	Size        string
	Color       string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// NewOrder creates a placed order with shipping status none and payment unpaid.
// Placement itself belongs to checkout; this constructor exists for seeding and tests.
func NewOrder(sku string, method PaymentMethod, currency valueobject.Currency, lines []OrderLine, coupon *Coupon, shippingFee decimal.Decimal) (*Order, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, shared.NewDomainError(CodeValidation, "Order SKU cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(CodeValidation, fmt.Sprintf("Unknown payment method %q", method))
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError(CodeValidation, fmt.Sprintf("Unsupported currency %q", currency))
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(CodeValidation, "Order must have at least one item")
	}
	if shippingFee.IsNegative() {
		return nil, shared.NewDomainError(CodeValidation, "Shipping fee cannot be negative")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Currency:          currency,
		PaymentMethod:     method,
		PaymentStatus:     PaymentStatusUnpaid,
		ShippingFee:       shippingFee,
		Coupon:            coupon,
		Items:             make([]OrderItem, 0, len(lines)),
		ShippingLogs:      make([]ShippingLog, 0),
		ReturnRequests:    make([]ReturnRequest, 0),
		Transactions:      make([]PaymentTransaction, 0),
	}

	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError(CodeInvalidQuantity, "Quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError(CodeValidation, "Unit price cannot be negative")
		}
		item := OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			VariantID:   line.VariantID,
			ProductName: line.ProductName,
			Size:        line.Size,
			Color:       line.Color,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		}
		total = total.Add(item.LineTotal())
		order.Items = append(order.Items, item)
	}

	discount := decimal.Zero
	if coupon != nil {
		discount = coupon.DiscountAmount
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError(CodeValidation, "Discount cannot be negative")
	}

	order.TotalAmount = total
	order.DiscountAmount = discount
	order.FinalAmount = FinalAmount(total, shippingFee, discount)
	order.OriginalTotalAmount = total
	order.OriginalDiscountAmount = discount
	order.OriginalShippingFee = shippingFee
	order.Shipping = Shipping{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Status:    ShippingStatusNone,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.CreatedAt,
	}

	return order, nil
}

// FinalAmount computes max(0, total + shippingFee - discount)
func FinalAmount(total, shippingFee, discount decimal.Decimal) decimal.Decimal {
	final := total.Add(shippingFee).Sub(discount)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

// Money wraps a decimal amount in the order's currency
func (o *Order) Money(amount decimal.Decimal) valueobject.Money {
	return valueobject.MoneyOf(amount, o.Currency)
}

// FindItem returns the order item with the given ID
func (o *Order) FindItem(orderItemID uuid.UUID) (*OrderItem, error) {
	for idx := range o.Items {
		if o.Items[idx].ID == orderItemID {
			return &o.Items[idx], nil
		}
	}
	return nil, NewNotFoundError("order item", orderItemID)
}

// FindReturnRequest returns the return request with the given ID
func (o *Order) FindReturnRequest(requestID uuid.UUID) (*ReturnRequest, error) {
	for idx := range o.ReturnRequests {
		if o.ReturnRequests[idx].ID == requestID {
			return &o.ReturnRequests[idx], nil
		}
	}
	return nil, NewNotFoundError("return request", requestID)
}

// CompletedReturnQuantity sums completed returned quantities of an order item,
// across every request except the one identified by exclude (uuid.Nil excludes none).
func (o *Order) CompletedReturnQuantity(orderItemID, exclude uuid.UUID) int {
	qty := 0
	for _, req := range o.ReturnRequests {
		if req.ID == exclude {
			continue
		}
		for _, item := range req.Items {
			if item.OrderItemID == orderItemID && item.Status == ReturnItemStatusCompleted {
				qty += item.Quantity
			}
		}
	}
	return qty
}

// ReturnableQuantity returns how many units of an order item can still be requested.
// Units held by pending or approved items of open requests are not returnable again.
func (o *Order) ReturnableQuantity(orderItemID uuid.UUID) (int, error) {
	orderItem, err := o.FindItem(orderItemID)
	if err != nil {
		return 0, err
	}
	held := 0
	for _, req := range o.ReturnRequests {
		for _, item := range req.Items {
			if item.OrderItemID != orderItemID {
				continue
			}
			switch item.Status {
			case ReturnItemStatusPending, ReturnItemStatusApproved, ReturnItemStatusCompleted:
				held += item.Quantity
			}
		}
	}
	remaining := orderItem.Quantity - held
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// RemainingSubtotal is Σ unit_price × (quantity − completed returns), ignoring the excluded request
func (o *Order) RemainingSubtotal(exclude uuid.UUID) (decimal.Decimal, error) {
	subtotal := decimal.Zero
	for idx := range o.Items {
		item := &o.Items[idx]
		remaining := item.Quantity - o.CompletedReturnQuantity(item.ID, exclude)
		if remaining < 0 {
			return decimal.Zero, fmt.Errorf("order item %s has %d units returned out of %d", item.ID, item.Quantity-remaining, item.Quantity)
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(remaining))))
	}
	return subtotal, nil
}

// recordTransaction appends a ledger entry
func (o *Order) recordTransaction(kind TransactionKind, amount decimal.Decimal, requestID *uuid.UUID) {
	o.Transactions = append(o.Transactions, PaymentTransaction{
		ID:              uuid.New(),
		OrderID:         o.ID,
		ReturnRequestID: requestID,
		Kind:            kind,
		Amount:          amount,
		CreatedAt:       shared.Now(),
	})
}

// touch marks the aggregate as modified
func (o *Order) touch(now time.Time) {
	o.UpdatedAt = now
}
