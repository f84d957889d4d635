package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormVariantRepository implements catalog.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindByID finds a variant by ID
func (r *GormVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	var model models.VariantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fulfillment.NewNotFoundError("variant", id)
		}
		return nil, fmt.Errorf("find variant %s: %w", id, err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a variant
func (r *GormVariantRepository) Save(ctx context.Context, variant *catalog.Variant) error {
	if err := r.db.WithContext(ctx).Save(models.VariantModelFromDomain(variant)).Error; err != nil {
		return fmt.Errorf("save variant %s: %w", variant.ID, err)
	}
	return nil
}

// IncrementStock adds quantity to the stock column in a single UPDATE so
// concurrent restocks never lose an increment.
func (r *GormVariantRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError(fulfillment.CodeInvalidQuantity,
			fmt.Sprintf("Restock quantity must be positive, got %d", quantity))
	}

	result := r.db.WithContext(ctx).
		Model(&models.VariantModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_at": shared.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("increment stock of variant %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fulfillment.NewNotFoundError("variant", id)
	}
	return nil
}

var _ catalog.VariantRepository = (*GormVariantRepository)(nil)
