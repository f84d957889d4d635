package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements fulfillment.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID loads the full order aggregate
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	var model models.OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items", byPosition).
		Preload("Shipping").
		Preload("ShippingLogs", byPosition).
		Preload("ReturnRequests", byPosition).
		Preload("ReturnRequests.Items", byPosition).
		Preload("Transactions", byPosition).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fulfillment.NewNotFoundError("order", id)
		}
		return nil, fmt.Errorf("find order %s: %w", id, err)
	}
	return model.ToDomain(), nil
}

// FindByReturnRequestID loads the order owning the given return request
func (r *GormOrderRepository) FindByReturnRequestID(ctx context.Context, requestID uuid.UUID) (*fulfillment.Order, error) {
	var rr models.ReturnRequestModel
	err := r.db.WithContext(ctx).
		Select("id", "order_id").
		First(&rr, "id = ?", requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fulfillment.NewNotFoundError("return request", requestID)
		}
		return nil, fmt.Errorf("find return request %s: %w", requestID, err)
	}
	return r.FindByID(ctx, rr.OrderID)
}

// Save inserts a new order or updates an existing one under optimistic locking.
// Items, shipping logs and payment transactions are inserted once and never rewritten.
func (r *GormOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.OrderModelFromDomain(order)

		var existing int64
		if err := tx.Model(&models.OrderModel{}).Where("id = ?", order.ID).Count(&existing).Error; err != nil {
			return fmt.Errorf("check order %s: %w", order.ID, err)
		}

		if existing == 0 {
			if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
				return fmt.Errorf("create order %s: %w", order.ID, err)
			}
		} else {
			model.UpdatedAt = shared.Now()
			columns := model.HeaderColumns()
			columns["version"] = order.Version + 1

			result := tx.Model(&models.OrderModel{}).
				Where("id = ? AND version = ?", order.ID, order.Version).
				Updates(columns)
			if result.Error != nil {
				return fmt.Errorf("update order %s: %w", order.ID, result.Error)
			}
			if result.RowsAffected == 0 {
				return shared.ErrConcurrentModification
			}
			order.Version++
			order.UpdatedAt = model.UpdatedAt
		}

		return r.saveChildren(tx, model)
	})
}

func (r *GormOrderRepository) saveChildren(tx *gorm.DB, model *models.OrderModel) error {
	insertOnce := func() *gorm.DB {
		return tx.Clauses(clause.OnConflict{DoNothing: true})
	}
	upsert := func() *gorm.DB {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		})
	}

	if len(model.Items) > 0 {
		if err := insertOnce().Create(&model.Items).Error; err != nil {
			return fmt.Errorf("save order items: %w", err)
		}
	}
	if model.Shipping != nil {
		if err := upsert().Create(model.Shipping).Error; err != nil {
			return fmt.Errorf("save shipping: %w", err)
		}
	}
	if len(model.ShippingLogs) > 0 {
		if err := insertOnce().Create(&model.ShippingLogs).Error; err != nil {
			return fmt.Errorf("append shipping logs: %w", err)
		}
	}
	for i := range model.ReturnRequests {
		rr := &model.ReturnRequests[i]
		if err := upsert().Omit(clause.Associations).Create(rr).Error; err != nil {
			return fmt.Errorf("save return request %s: %w", rr.ID, err)
		}
		if len(rr.Items) > 0 {
			if err := upsert().Create(&rr.Items).Error; err != nil {
				return fmt.Errorf("save return items of %s: %w", rr.ID, err)
			}
		}
	}
	if len(model.Transactions) > 0 {
		if err := insertOnce().Create(&model.Transactions).Error; err != nil {
			return fmt.Errorf("append payment transactions: %w", err)
		}
	}
	return nil
}

var _ fulfillment.OrderRepository = (*GormOrderRepository)(nil)
