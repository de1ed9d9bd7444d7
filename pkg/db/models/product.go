package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog listing. Stock is only changed by order placement,
// cancellation and approved returns.
type Product struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	Description        *string         `gorm:"column:description"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Stock              int             `gorm:"column:stock;not null;default:0;check:products_stock_check,stock >= 0"`
	Brand              *string         `gorm:"column:brand"`
	Category           *string         `gorm:"column:category"`
	Thumbnail          *string         `gorm:"column:thumbnail"`
	DiscountPercentage decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2);not null;default:0"`
	Rating             decimal.Decimal `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
