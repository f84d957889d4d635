package fulfillment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"github.com/shopdesk/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OrderService orchestrates the fulfillment engine. Every mutating operation loads
// the order once, applies the engine inside one unit of work, restores stock for
// completed return items and publishes the collected events after commit.
type OrderService struct {
	uow            UnitOfWork
	orders         fulfillment.OrderRepository
	engine         *fulfillment.Engine
	stock          *StockReconciler
	images         TransferImageStore
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	uow UnitOfWork,
	orders fulfillment.OrderRepository,
	engine *fulfillment.Engine,
	stock *StockReconciler,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		uow:    uow,
		orders: orders,
		engine: engine,
		stock:  stock,
		logger: logger,
	}
}

// SetEventPublisher sets the publisher that receives events after commit
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetTransferImageStore sets the store used for transfer proof images
func (s *OrderService) SetTransferImageStore(images TransferImageStore) {
	s.images = images
}

// UpdateOrder applies an admin change of shipping status, payment status, admin
// reason and transfer image. Shipping is applied first; payment is then validated
// against the resulting state. A payment status equal to the one the order had
// when the call began is treated as unchanged.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	var image *stagedImage
	if req.TransferImage != nil {
		promoted, err := s.promoteImage(ctx, orderID, *req.TransferImage)
		if err != nil {
			return nil, err
		}
		image = promoted
	}

	var previousImage string
	order, err := s.mutate(ctx, "update_order",
		func(ctx context.Context, orders fulfillment.OrderRepository) (*fulfillment.Order, error) {
			return orders.FindByID(ctx, orderID)
		},
		func(order *fulfillment.Order) error {
			initialPayment := order.PaymentStatus
			reason := ""
			if req.ReasonAdmin != nil {
				reason = *req.ReasonAdmin
			}

			target := order.Shipping.Status
			if req.ShippingStatus != nil {
				target = fulfillment.ShippingStatus(*req.ShippingStatus)
			}
			if req.ShippingStatus != nil || strings.TrimSpace(reason) != "" {
				if err := s.engine.Shipping.Transition(order, target, reason); err != nil {
					return err
				}
			}

			if req.PaymentStatus != nil {
				payment := fulfillment.PaymentStatus(*req.PaymentStatus)
				if payment != initialPayment {
					if err := s.engine.Payment.Transition(order, payment); err != nil {
						return err
					}
				}
			}

			if image != nil {
				previousImage = order.Shipping.TransferImage
				order.Shipping.TransferImage = image.key
				order.Shipping.UpdatedAt = shared.Now()
			}
			return nil
		},
	)
	if err != nil {
		s.discardImage(ctx, orderID, image)
		return nil, err
	}

	if image != nil && s.images != nil && previousImage != "" && previousImage != image.key {
		if err := s.images.Delete(ctx, previousImage); err != nil {
			s.logger.Warn("failed to delete replaced transfer image",
				zap.String("order_id", orderID.String()),
				zap.String("key", previousImage),
				zap.Error(err),
			)
		}
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// CreateReturnRequest opens a pending return request for the order
func (s *OrderService) CreateReturnRequest(ctx context.Context, orderID uuid.UUID, req CreateReturnRequestRequest) (*ReturnRequestResponse, error) {
	lines := make([]fulfillment.ReturnLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = fulfillment.ReturnLine{OrderItemID: item.OrderItemID, Quantity: item.Quantity}
	}

	var requestID uuid.UUID
	order, err := s.mutate(ctx, "create_return_request",
		func(ctx context.Context, orders fulfillment.OrderRepository) (*fulfillment.Order, error) {
			return orders.FindByID(ctx, orderID)
		},
		func(order *fulfillment.Order) error {
			created, err := s.engine.Requests.Open(order, req.Reason, lines)
			if err != nil {
				return err
			}
			requestID = created.ID
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return s.returnRequestResponse(order, requestID)
}

// ApproveReturnItem approves one return item. The request is promoted to approved
// once no item is left pending.
func (s *OrderService) ApproveReturnItem(ctx context.Context, requestID, itemID uuid.UUID, req ReturnItemDecisionRequest) (*ReturnRequestResponse, error) {
	order, err := s.mutate(ctx, "approve_return_item",
		s.loadByRequest(requestID, req.OrderID),
		func(order *fulfillment.Order) error {
			_, err := s.engine.Requests.ApproveItem(order, requestID, itemID, req.AdminResponse)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return s.returnRequestResponse(order, requestID)
}

// RejectReturnItem rejects one return item. The admin response is the mandatory reason.
func (s *OrderService) RejectReturnItem(ctx context.Context, requestID, itemID uuid.UUID, req ReturnItemDecisionRequest) (*ReturnRequestResponse, error) {
	order, err := s.mutate(ctx, "reject_return_item",
		s.loadByRequest(requestID, req.OrderID),
		func(order *fulfillment.Order) error {
			_, err := s.engine.Requests.RejectItem(order, requestID, itemID, req.AdminResponse)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return s.returnRequestResponse(order, requestID)
}

// UpdateReturnRequestStatus performs an explicit admin transition of a return request
func (s *OrderService) UpdateReturnRequestStatus(ctx context.Context, requestID uuid.UUID, req UpdateReturnRequestStatusRequest) (*ReturnRequestResponse, error) {
	order, err := s.mutate(ctx, "update_return_request_status",
		s.loadByRequest(requestID, req.OrderID),
		func(order *fulfillment.Order) error {
			_, err := s.engine.Requests.UpdateStatus(order, requestID, fulfillment.ReturnRequestStatus(req.Status), req.Reason)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return s.returnRequestResponse(order, requestID)
}

// GetOrder retrieves an order with its items, shipping and return requests
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// ListShippingLogs retrieves the shipping log of an order, oldest first
func (s *OrderService) ListShippingLogs(ctx context.Context, orderID uuid.UUID) ([]ShippingLogResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToShippingLogResponses(order.ShippingLogs), nil
}

// GetReturnRequest retrieves a return request of an order with its persisted amounts
func (s *OrderService) GetReturnRequest(ctx context.Context, orderID, requestID uuid.UUID) (*ReturnRequestResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.returnRequestResponse(order, requestID)
}

type loadFunc func(ctx context.Context, orders fulfillment.OrderRepository) (*fulfillment.Order, error)

// mutate runs load and apply inside one unit of work, restores stock for completed
// return items, saves the order and publishes its events after commit.
func (s *OrderService) mutate(ctx context.Context, operation string, load loadFunc, apply func(order *fulfillment.Order) error) (*fulfillment.Order, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", operation)
	defer span.End()
	log := logger.FromContext(ctx, s.logger)

	var order *fulfillment.Order
	err := s.uow.Execute(ctx, func(repos TransactionalRepositories) error {
		loaded, err := load(ctx, repos.Orders())
		if err != nil {
			return err
		}
		if err := apply(loaded); err != nil {
			return err
		}
		if _, err := s.stock.Reconcile(ctx, repos.Variants(), loaded.GetDomainEvents()); err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, loaded); err != nil {
			return err
		}
		order = loaded
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		log.Info("fulfillment operation rejected",
			zap.String("operation", operation),
			zap.String("code", shared.ErrorCode(err)),
			zap.Error(err),
		)
		return nil, err
	}

	events := order.PullDomainEvents()
	span.SetAttributes(attribute.String("order_id", order.ID.String()))
	log.Info("fulfillment operation committed",
		zap.String("operation", operation),
		zap.String("order_id", order.ID.String()),
		zap.String("shipping_status", order.Shipping.Status.String()),
		zap.String("payment_status", order.PaymentStatus.String()),
		zap.Int("events", len(events)),
	)
	s.publish(ctx, events)
	return order, nil
}

// publish hands events to the publisher; failures never affect the committed operation
func (s *OrderService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish fulfillment events",
			zap.Int("events", len(events)),
			zap.Error(err),
		)
	}
}

// loadByRequest loads the order owning a return request, optionally scoped to orderID
func (s *OrderService) loadByRequest(requestID, orderID uuid.UUID) loadFunc {
	return func(ctx context.Context, orders fulfillment.OrderRepository) (*fulfillment.Order, error) {
		order, err := orders.FindByReturnRequestID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if orderID != uuid.Nil && order.ID != orderID {
			return nil, fulfillment.NewNotFoundError("return request", requestID)
		}
		return order, nil
	}
}

func (s *OrderService) returnRequestResponse(order *fulfillment.Order, requestID uuid.UUID) (*ReturnRequestResponse, error) {
	req, err := order.FindReturnRequest(requestID)
	if err != nil {
		return nil, err
	}
	response := ToReturnRequestResponse(req)
	return &response, nil
}

// stagedImage is a transfer image promoted ahead of the unit of work
type stagedImage struct {
	key   string
	moved bool
}

func (s *OrderService) promoteImage(ctx context.Context, orderID uuid.UUID, key string) (*stagedImage, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return &stagedImage{}, nil
	}
	if s.images == nil {
		return nil, shared.NewDomainError(fulfillment.CodeValidation, "Transfer image uploads are not configured")
	}
	promoted, err := s.images.Promote(ctx, key, orderID)
	if err != nil {
		return nil, err
	}
	return &stagedImage{key: promoted, moved: promoted != key}, nil
}

// discardImage deletes an image promoted for a unit of work that aborted
func (s *OrderService) discardImage(ctx context.Context, orderID uuid.UUID, image *stagedImage) {
	if image == nil || !image.moved {
		return
	}
	if err := s.images.Delete(ctx, image.key); err != nil {
		s.logger.Warn("failed to discard transfer image of aborted update",
			zap.String("order_id", orderID.String()),
			zap.String("key", image.key),
			zap.Error(err),
		)
	}
}
