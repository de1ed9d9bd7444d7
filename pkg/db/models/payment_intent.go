package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
)

// PaymentIntent records a gateway order created for online checkout. The
// amount is computed server-side from the cart, never taken from the client.
type PaymentIntent struct {
	ID             uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	UserID         uuid.UUID                 `gorm:"column:user_id;type:uuid;not null;index"`
	GatewayOrderID string                    `gorm:"column:gateway_order_id;not null;uniqueIndex:payment_intents_gateway_order_id_key"`
	AmountMinor    int64                     `gorm:"column:amount_minor;not null"`
	Currency       string                    `gorm:"column:currency;not null;default:'INR'"`
	Receipt        string                    `gorm:"column:receipt;not null"`
	Status         enums.PaymentIntentStatus `gorm:"column:status;type:text;not null;default:'created';index"`
	OrderID        *uuid.UUID                `gorm:"column:order_id;type:uuid"`
	ConsumedAt     *time.Time                `gorm:"column:consumed_at"`
	FailureCode    *string                   `gorm:"column:failure_code"`
	RefundID       *string                   `gorm:"column:refund_id"`
	FailedAt       *time.Time                `gorm:"column:failed_at"`
	CreatedAt      time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
