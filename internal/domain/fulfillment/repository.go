package fulfillment

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository loads and persists the Order aggregate with everything it owns:
// items, shipping, shipping log, return requests with their items, and the payment ledger.
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByReturnRequestID finds the order owning the given return request
	FindByReturnRequestID(ctx context.Context, requestID uuid.UUID) (*Order, error)

	// Save creates or updates the order aggregate.
	// Shipping logs and payment transactions are append-only and never rewritten.
	Save(ctx context.Context, order *Order) error
}
