package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	SKU                    string                    `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerName           string                    `gorm:"type:varchar(200)"`
	CustomerEmail          string                    `gorm:"type:varchar(200)"`
	CustomerPhone          string                    `gorm:"type:varchar(50)"`
	Currency               string                    `gorm:"type:varchar(3);not null"`
	PaymentMethod          string                    `gorm:"type:varchar(20);not null"`
	PaymentStatus          string                    `gorm:"type:varchar(20);not null;index"`
	TotalAmount            decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount         decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingFee            decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	FinalAmount            decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	OriginalTotalAmount    decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	OriginalDiscountAmount decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	OriginalShippingFee    decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	CouponCode             *string                   `gorm:"type:varchar(50)"`
	CouponDiscount         decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Items                  []OrderItemModel          `gorm:"foreignKey:OrderID;references:ID"`
	Shipping               *ShippingModel            `gorm:"foreignKey:OrderID;references:ID"`
	ShippingLogs           []ShippingLogModel        `gorm:"foreignKey:OrderID;references:ID"`
	ReturnRequests         []ReturnRequestModel      `gorm:"foreignKey:OrderID;references:ID"`
	Transactions           []PaymentTransactionModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// HeaderColumns returns the mutable order columns written on update.
func (m *OrderModel) HeaderColumns() map[string]any {
	return map[string]any{
		"customer_name":            m.CustomerName,
		"customer_email":           m.CustomerEmail,
		"customer_phone":           m.CustomerPhone,
		"payment_status":           m.PaymentStatus,
		"total_amount":             m.TotalAmount,
		"discount_amount":          m.DiscountAmount,
		"shipping_fee":             m.ShippingFee,
		"final_amount":             m.FinalAmount,
		"original_total_amount":    m.OriginalTotalAmount,
		"original_discount_amount": m.OriginalDiscountAmount,
		"original_shipping_fee":    m.OriginalShippingFee,
		"updated_at":               m.UpdatedAt,
	}
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *fulfillment.Order {
	order := &fulfillment.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SKU:               m.SKU,
		Customer: fulfillment.CustomerContact{
			Name:  m.CustomerName,
			Email: m.CustomerEmail,
			Phone: m.CustomerPhone,
		},
		Currency:               valueobject.Currency(m.Currency),
		PaymentMethod:          fulfillment.PaymentMethod(m.PaymentMethod),
		PaymentStatus:          fulfillment.PaymentStatus(m.PaymentStatus),
		TotalAmount:            m.TotalAmount,
		DiscountAmount:         m.DiscountAmount,
		ShippingFee:            m.ShippingFee,
		FinalAmount:            m.FinalAmount,
		OriginalTotalAmount:    m.OriginalTotalAmount,
		OriginalDiscountAmount: m.OriginalDiscountAmount,
		OriginalShippingFee:    m.OriginalShippingFee,
		Items:                  make([]fulfillment.OrderItem, len(m.Items)),
		ShippingLogs:           make([]fulfillment.ShippingLog, len(m.ShippingLogs)),
		ReturnRequests:         make([]fulfillment.ReturnRequest, len(m.ReturnRequests)),
		Transactions:           make([]fulfillment.PaymentTransaction, len(m.Transactions)),
	}
	if m.CouponCode != nil {
		order.Coupon = &fulfillment.Coupon{Code: *m.CouponCode, DiscountAmount: m.CouponDiscount}
	}
	if m.Shipping != nil {
		order.Shipping = m.Shipping.ToDomain()
	} else {
		order.Shipping = fulfillment.Shipping{OrderID: m.ID, Status: fulfillment.ShippingStatusNone}
	}
	for i := range m.Items {
		order.Items[i] = m.Items[i].ToDomain()
	}
	for i := range m.ShippingLogs {
		order.ShippingLogs[i] = m.ShippingLogs[i].ToDomain()
	}
	for i := range m.ReturnRequests {
		order.ReturnRequests[i] = m.ReturnRequests[i].ToDomain()
	}
	for i := range m.Transactions {
		order.Transactions[i] = m.Transactions[i].ToDomain()
	}
	return order
}

// OrderModelFromDomain creates a persistence model from a domain Order.
// Child rows carry their slice position so reloads keep the aggregate's ordering.
func OrderModelFromDomain(o *fulfillment.Order) *OrderModel {
	m := &OrderModel{
		SKU:                    o.SKU,
		CustomerName:           o.Customer.Name,
		CustomerEmail:          o.Customer.Email,
		CustomerPhone:          o.Customer.Phone,
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
		Items:                  make([]OrderItemModel, len(o.Items)),
		ShippingLogs:           make([]ShippingLogModel, len(o.ShippingLogs)),
		ReturnRequests:         make([]ReturnRequestModel, len(o.ReturnRequests)),
		Transactions:           make([]PaymentTransactionModel, len(o.Transactions)),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	if o.Coupon != nil {
		code := o.Coupon.Code
		m.CouponCode = &code
		m.CouponDiscount = o.Coupon.DiscountAmount
	}
	m.Shipping = ShippingModelFromDomain(o.ID, &o.Shipping)
	for i := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(o.ID, i, &o.Items[i])
	}
	for i := range o.ShippingLogs {
		m.ShippingLogs[i] = ShippingLogModelFromDomain(o.ID, i, &o.ShippingLogs[i])
	}
	for i := range o.ReturnRequests {
		m.ReturnRequests[i] = ReturnRequestModelFromDomain(o.ID, i, &o.ReturnRequests[i])
	}
	for i := range o.Transactions {
		m.Transactions[i] = PaymentTransactionModelFromDomain(o.ID, i, &o.Transactions[i])
	}
	return m
}

// OrderItemModel is the persistence model for an immutable order line.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null;default:0"`
	VariantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Size        string          `gorm:"type:varchar(20)"`
	Color       string          `gorm:"type:varchar(50)"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity    int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() fulfillment.OrderItem {
	return fulfillment.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		VariantID:   m.VariantID,
		ProductName: m.ProductName,
		Size:        m.Size,
		Color:       m.Color,
		UnitPrice:   m.UnitPrice,
		Quantity:    m.Quantity,
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain OrderItem.
func OrderItemModelFromDomain(orderID uuid.UUID, position int, i *fulfillment.OrderItem) OrderItemModel {
	return OrderItemModel{
		ID:          i.ID,
		OrderID:     orderID,
		Position:    position,
		VariantID:   i.VariantID,
		ProductName: i.ProductName,
		Size:        i.Size,
		Color:       i.Color,
		UnitPrice:   i.UnitPrice,
		Quantity:    i.Quantity,
	}
}

// ShippingModel is the persistence model for the order's single shipping record.
type ShippingModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Status        string     `gorm:"type:varchar(30);not null;index"`
	Reason        string     `gorm:"type:text"`
	ReasonAdmin   string     `gorm:"type:text"`
	TransferImage string     `gorm:"type:varchar(500)"`
	ReceivedAt    *time.Time `gorm:"index"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShippingModel) TableName() string {
	return "shippings"
}

// ToDomain converts the persistence model to a domain Shipping.
func (m *ShippingModel) ToDomain() fulfillment.Shipping {
	return fulfillment.Shipping{
		ID:            m.ID,
		OrderID:       m.OrderID,
		Status:        fulfillment.ShippingStatus(m.Status),
		Reason:        m.Reason,
		ReasonAdmin:   m.ReasonAdmin,
		TransferImage: m.TransferImage,
		ReceivedAt:    m.ReceivedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ShippingModelFromDomain creates a persistence model from a domain Shipping.
func ShippingModelFromDomain(orderID uuid.UUID, s *fulfillment.Shipping) *ShippingModel {
	status := s.Status
	if status == "" {
		status = fulfillment.ShippingStatusNone
	}
	return &ShippingModel{
		ID:            s.ID,
		OrderID:       orderID,
		Status:        string(status),
		Reason:        s.Reason,
		ReasonAdmin:   s.ReasonAdmin,
		TransferImage: s.TransferImage,
		ReceivedAt:    s.ReceivedAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// ShippingLogModel is an append-only shipping status history row.
type ShippingLogModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Position  int       `gorm:"not null;default:0"`
	OldStatus string    `gorm:"type:varchar(30);not null"`
	NewStatus string    `gorm:"type:varchar(30);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShippingLogModel) TableName() string {
	return "shipping_logs"
}

// ToDomain converts the persistence model to a domain ShippingLog.
func (m *ShippingLogModel) ToDomain() fulfillment.ShippingLog {
	return fulfillment.ShippingLog{
		ID:        m.ID,
		OrderID:   m.OrderID,
		OldStatus: fulfillment.ShippingStatus(m.OldStatus),
		NewStatus: fulfillment.ShippingStatus(m.NewStatus),
		CreatedAt: m.CreatedAt,
	}
}

// ShippingLogModelFromDomain creates a persistence model from a domain ShippingLog.
func ShippingLogModelFromDomain(orderID uuid.UUID, position int, l *fulfillment.ShippingLog) ShippingLogModel {
	return ShippingLogModel{
		ID:        l.ID,
		OrderID:   orderID,
		Position:  position,
		OldStatus: string(l.OldStatus),
		NewStatus: string(l.NewStatus),
		CreatedAt: l.CreatedAt,
	}
}

// ReturnRequestModel is the persistence model for a return request.
// Monetary fields are stored as computed and never derived at read time.
type ReturnRequestModel struct {
	ID                uuid.UUID         `gorm:"type:uuid;primary_key"`
	OrderID           uuid.UUID         `gorm:"type:uuid;not null;index"`
	Position          int               `gorm:"not null;default:0"`
	Status            string            `gorm:"type:varchar(20);not null;index"`
	Reason            string            `gorm:"type:text"`
	RequestedAt       time.Time         `gorm:"not null"`
	ProcessedAt       *time.Time
	RejectedAt        *time.Time
	CompletedAt       *time.Time
	TotalReturnAmount decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	RefundedDiscount  decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	OldShippingFee    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	NewShippingFee    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingDiff      decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	EstimatedRefund   decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	ActualRefund      decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	RemainingAmount   decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Items             []ReturnItemModel `gorm:"foreignKey:ReturnRequestID;references:ID"`
	CreatedAt         time.Time         `gorm:"not null"`
	UpdatedAt         time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnRequestModel) TableName() string {
	return "return_requests"
}

// ToDomain converts the persistence model to a domain ReturnRequest.
func (m *ReturnRequestModel) ToDomain() fulfillment.ReturnRequest {
	rr := fulfillment.ReturnRequest{
		ID:                m.ID,
		OrderID:           m.OrderID,
		Status:            fulfillment.ReturnRequestStatus(m.Status),
		Reason:            m.Reason,
		RequestedAt:       m.RequestedAt,
		ProcessedAt:       m.ProcessedAt,
		RejectedAt:        m.RejectedAt,
		CompletedAt:       m.CompletedAt,
		TotalReturnAmount: m.TotalReturnAmount,
		RefundedDiscount:  m.RefundedDiscount,
		OldShippingFee:    m.OldShippingFee,
		NewShippingFee:    m.NewShippingFee,
		ShippingDiff:      m.ShippingDiff,
		EstimatedRefund:   m.EstimatedRefund,
		ActualRefund:      m.ActualRefund,
		RemainingAmount:   m.RemainingAmount,
		Items:             make([]fulfillment.ReturnItem, len(m.Items)),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for i := range m.Items {
		rr.Items[i] = m.Items[i].ToDomain()
	}
	return rr
}

// ReturnRequestModelFromDomain creates a persistence model from a domain ReturnRequest.
func ReturnRequestModelFromDomain(orderID uuid.UUID, position int, r *fulfillment.ReturnRequest) ReturnRequestModel {
	m := ReturnRequestModel{
		ID:                r.ID,
		OrderID:           orderID,
		Position:          position,
		Status:            string(r.Status),
		Reason:            r.Reason,
		RequestedAt:       r.RequestedAt,
		ProcessedAt:       r.ProcessedAt,
		RejectedAt:        r.RejectedAt,
		CompletedAt:       r.CompletedAt,
		TotalReturnAmount: r.TotalReturnAmount,
		RefundedDiscount:  r.RefundedDiscount,
		OldShippingFee:    r.OldShippingFee,
		NewShippingFee:    r.NewShippingFee,
		ShippingDiff:      r.ShippingDiff,
		EstimatedRefund:   r.EstimatedRefund,
		ActualRefund:      r.ActualRefund,
		RemainingAmount:   r.RemainingAmount,
		Items:             make([]ReturnItemModel, len(r.Items)),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	for i := range r.Items {
		m.Items[i] = ReturnItemModelFromDomain(r.ID, i, &r.Items[i])
	}
	return m
}

// ReturnItemModel is the persistence model for one line of a return request.
type ReturnItemModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReturnRequestID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position        int             `gorm:"not null;default:0"`
	OrderItemID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity        int             `gorm:"not null"`
	Status          string          `gorm:"type:varchar(20);not null"`
	RefundAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AdminResponse   string          `gorm:"type:text"`
	CompletedAt     *time.Time
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnItemModel) TableName() string {
	return "return_items"
}

// ToDomain converts the persistence model to a domain ReturnItem.
func (m *ReturnItemModel) ToDomain() fulfillment.ReturnItem {
	return fulfillment.ReturnItem{
		ID:              m.ID,
		ReturnRequestID: m.ReturnRequestID,
		OrderItemID:     m.OrderItemID,
		Quantity:        m.Quantity,
		Status:          fulfillment.ReturnItemStatus(m.Status),
		RefundAmount:    m.RefundAmount,
		AdminResponse:   m.AdminResponse,
		CompletedAt:     m.CompletedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ReturnItemModelFromDomain creates a persistence model from a domain ReturnItem.
func ReturnItemModelFromDomain(requestID uuid.UUID, position int, i *fulfillment.ReturnItem) ReturnItemModel {
	return ReturnItemModel{
		ID:              i.ID,
		ReturnRequestID: requestID,
		Position:        position,
		OrderItemID:     i.OrderItemID,
		Quantity:        i.Quantity,
		Status:          string(i.Status),
		RefundAmount:    i.RefundAmount,
		AdminResponse:   i.AdminResponse,
		CompletedAt:     i.CompletedAt,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

// PaymentTransactionModel is an append-only payment ledger row.
type PaymentTransactionModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position        int             `gorm:"not null;default:0"`
	ReturnRequestID *uuid.UUID      `gorm:"type:uuid;index"`
	Kind            string          `gorm:"type:varchar(20);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentTransactionModel) TableName() string {
	return "payment_transactions"
}

// ToDomain converts the persistence model to a domain PaymentTransaction.
func (m *PaymentTransactionModel) ToDomain() fulfillment.PaymentTransaction {
	return fulfillment.PaymentTransaction{
		ID:              m.ID,
		OrderID:         m.OrderID,
		ReturnRequestID: m.ReturnRequestID,
		Kind:            fulfillment.TransactionKind(m.Kind),
		Amount:          m.Amount,
		CreatedAt:       m.CreatedAt,
	}
}

// PaymentTransactionModelFromDomain creates a persistence model from a domain PaymentTransaction.
func PaymentTransactionModelFromDomain(orderID uuid.UUID, position int, t *fulfillment.PaymentTransaction) PaymentTransactionModel {
	return PaymentTransactionModel{
		ID:              t.ID,
		OrderID:         orderID,
		Position:        position,
		ReturnRequestID: t.ReturnRequestID,
		Kind:            string(t.Kind),
		Amount:          t.Amount,
		CreatedAt:       t.CreatedAt,
	}
}
