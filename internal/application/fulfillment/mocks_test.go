package fulfillment

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOrderRepository is a mock implementation of fulfillment.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByReturnRequestID(ctx context.Context, requestID uuid.UUID) (*fulfillment.Order, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockVariantRepository is a mock implementation of catalog.VariantRepository
type MockVariantRepository struct {
	mock.Mock
}

func (m *MockVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Variant), args.Error(1)
}

func (m *MockVariantRepository) Save(ctx context.Context, variant *catalog.Variant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockVariantRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockTransferImageStore is a mock implementation of TransferImageStore
type MockTransferImageStore struct {
	mock.Mock
}

func (m *MockTransferImageStore) Stage(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, filename, contentType, body)
	return args.String(0), args.Error(1)
}

func (m *MockTransferImageStore) Promote(ctx context.Context, stagedKey string, orderID uuid.UUID) (string, error) {
	args := m.Called(ctx, stagedKey, orderID)
	return args.String(0), args.Error(1)
}

func (m *MockTransferImageStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockNotificationSink records notifications
type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) Name() string {
	return "mock"
}

func (m *MockNotificationSink) Send(ctx context.Context, n Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

var testFeePolicy = fulfillment.ShippingFeePolicy{
	FreeShippingThreshold: decimal.NewFromInt(500000),
	FlatFee:               decimal.NewFromInt(30000),
}

// createTestOrder builds a received, paid order of 2 x 400,000 and 1 x 200,000 with a 100,000 coupon
func createTestOrder(t *testing.T) *fulfillment.Order {
	t.Helper()
	order, err := fulfillment.NewOrder("ORD-1001", fulfillment.PaymentMethodGateway, valueobject.VND, []fulfillment.OrderLine{
		{VariantID: uuid.New(), ProductName: "Linen shirt", Size: "M", Color: "white", UnitPrice: decimal.NewFromInt(400000), Quantity: 2},
		{VariantID: uuid.New(), ProductName: "Bucket cap", Size: "F", Color: "black", UnitPrice: decimal.NewFromInt(200000), Quantity: 1},
	}, &fulfillment.Coupon{Code: "WELCOME", DiscountAmount: decimal.NewFromInt(100000)}, decimal.Zero)
	require.NoError(t, err)
	order.Customer = fulfillment.CustomerContact{Name: "Tran Binh", Email: "binh@example.com", Phone: "+84911111111"}
	order.Shipping.Status = fulfillment.ShippingStatusReceived
	order.PaymentStatus = fulfillment.PaymentStatusPaid
	order.ClearDomainEvents()
	return order
}

// openReturn opens a return request on the order through the engine
func openReturn(t *testing.T, order *fulfillment.Order, lines ...fulfillment.ReturnLine) uuid.UUID {
	t.Helper()
	req, err := fulfillment.NewEngine(testFeePolicy).Requests.Open(order, "does not fit", lines)
	require.NoError(t, err)
	order.ClearDomainEvents()
	return req.ID
}

type serviceFixture struct {
	orders    *MockOrderRepository
	variants  *MockVariantRepository
	publisher *MockEventPublisher
	images    *MockTransferImageStore
	service   *OrderService
}

func newServiceFixture() *serviceFixture {
	orders := new(MockOrderRepository)
	variants := new(MockVariantRepository)
	publisher := new(MockEventPublisher)
	images := new(MockTransferImageStore)
	logger := zap.NewNop()

	service := NewOrderService(
		NewNoOpUnitOfWork(orders, variants),
		orders,
		fulfillment.NewEngine(testFeePolicy),
		NewStockReconciler(logger),
		logger,
	)
	service.SetEventPublisher(publisher)
	service.SetTransferImageStore(images)

	return &serviceFixture{
		orders:    orders,
		variants:  variants,
		publisher: publisher,
		images:    images,
		service:   service,
	}
}

func strPtr(s string) *string {
	return &s
}
