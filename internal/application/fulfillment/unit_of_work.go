package fulfillment

import (
	"context"

	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
)

// UnitOfWork provides transactional access to the repositories touched by one
// fulfillment operation. Order, shipping, return request, return item and stock
// writes made through the repositories commit together or not at all.
type UnitOfWork interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories scoped to the current transaction
type TransactionalRepositories interface {
	// Orders returns the order repository scoped to the current transaction
	Orders() fulfillment.OrderRepository
	// Variants returns the variant repository scoped to the current transaction
	Variants() catalog.VariantRepository
}

// NoOpUnitOfWork runs operations against the given repositories without a transaction.
// It is useful for tests and for stores that have no transaction support.
type NoOpUnitOfWork struct {
	orders   fulfillment.OrderRepository
	variants catalog.VariantRepository
}

// NewNoOpUnitOfWork creates a NoOpUnitOfWork with the given repositories
func NewNoOpUnitOfWork(orders fulfillment.OrderRepository, variants catalog.VariantRepository) *NoOpUnitOfWork {
	return &NoOpUnitOfWork{
		orders:   orders,
		variants: variants,
	}
}

// Execute runs fn without a real transaction
func (u *NoOpUnitOfWork) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(u)
}

// Orders returns the order repository
func (u *NoOpUnitOfWork) Orders() fulfillment.OrderRepository {
	return u.orders
}

// Variants returns the variant repository
func (u *NoOpUnitOfWork) Variants() catalog.VariantRepository {
	return u.variants
}

var _ UnitOfWork = (*NoOpUnitOfWork)(nil)
var _ TransactionalRepositories = (*NoOpUnitOfWork)(nil)
