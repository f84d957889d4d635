package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// Variant is a purchasable size/color combination of a product.
// Only its stock level is managed here; catalog CRUD lives elsewhere.
type Variant struct {
	ID          uuid.UUID
	ProductName string
	Size        string
	Color       string
	Stock       int
	UpdatedAt   time.Time
}

// NewVariant creates a variant with an initial stock level
func NewVariant(productName, size, color string, stock int) (*Variant, error) {
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	return &Variant{
		ID:          uuid.New(),
		ProductName: productName,
		Size:        size,
		Color:       color,
		Stock:       stock,
		UpdatedAt:   shared.Now(),
	}, nil
}

// Restock adds returned units back to stock
func (v *Variant) Restock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Restock quantity must be positive, got %d", quantity))
	}
	v.Stock += quantity
	v.UpdatedAt = shared.Now()
	return nil
}
