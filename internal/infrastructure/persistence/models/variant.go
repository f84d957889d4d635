package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
)

// VariantModel is the persistence model for a product variant's stock row.
type VariantModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductName string    `gorm:"type:varchar(200);not null"`
	Size        string    `gorm:"type:varchar(20)"`
	Color       string    `gorm:"type:varchar(50)"`
	Stock       int       `gorm:"not null;default:0"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VariantModel) TableName() string {
	return "variants"
}

// ToDomain converts the persistence model to a domain Variant.
func (m *VariantModel) ToDomain() *catalog.Variant {
	return &catalog.Variant{
		ID:          m.ID,
		ProductName: m.ProductName,
		Size:        m.Size,
		Color:       m.Color,
		Stock:       m.Stock,
		UpdatedAt:   m.UpdatedAt,
	}
}

// VariantModelFromDomain creates a persistence model from a domain Variant.
func VariantModelFromDomain(v *catalog.Variant) *VariantModel {
	return &VariantModel{
		ID:          v.ID,
		ProductName: v.ProductName,
		Size:        v.Size,
		Color:       v.Color,
		Stock:       v.Stock,
		UpdatedAt:   v.UpdatedAt,
	}
}
