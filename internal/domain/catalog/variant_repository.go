package catalog

import (
	"context"

	"github.com/google/uuid"
)

// VariantRepository defines stock access for product variants
type VariantRepository interface {
	// FindByID finds a variant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Variant, error)

	// Save creates or updates a variant
	Save(ctx context.Context, variant *Variant) error

	// IncrementStock atomically adds quantity to the variant's stock.
	// Returns shared.ErrNotFound when the variant does not exist.
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}
