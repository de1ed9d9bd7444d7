package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
)

// ProductReturn is a customer's request to send back part of a delivered order.
type ProductReturn struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID          `gorm:"column:order_id;type:uuid;not null;uniqueIndex:product_returns_order_product_key,priority:1"`
	ProductID       uuid.UUID          `gorm:"column:product_id;type:uuid;not null;uniqueIndex:product_returns_order_product_key,priority:2"`
	OrderItemID     uuid.UUID          `gorm:"column:order_item_id;type:uuid;not null"`
	UserID          uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Quantity        int                `gorm:"column:quantity;not null;check:product_returns_quantity_check,quantity >= 1"`
	Reason          string             `gorm:"column:reason;not null"`
	Status          enums.ReturnStatus `gorm:"column:status;type:text;not null;default:'Requested'"`
	AdminComment    *string            `gorm:"column:admin_comment"`
	RefundReference *string            `gorm:"column:refund_reference"`
	RequestedAt     time.Time          `gorm:"column:requested_at;autoCreateTime;index"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// UniqueOrderProductConstraint names the index guarding one return per order line.
const UniqueOrderProductConstraint = "product_returns_order_product_key"
