package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
)

// Order is a committed purchase. TotalPrice is written once at creation.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	AddressID        *uuid.UUID          `gorm:"column:address_id;type:uuid"`
	TotalPrice       decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'Pending'"`
	OrderStatus      enums.OrderStatus   `gorm:"column:order_status;type:text;not null;default:'Processing';index"`
	PaymentReference *string             `gorm:"column:payment_reference"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem carries the price frozen at checkout; it is never recomputed.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity     int             `gorm:"column:quantity;not null;check:order_items_quantity_check,quantity >= 1"`
	PriceAtOrder decimal.Decimal `gorm:"column:price_at_order;type:numeric(10,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// LineTotal is the frozen price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtOrder.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
