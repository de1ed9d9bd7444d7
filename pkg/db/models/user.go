package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
)

// User is the customer or admin account. Account management lives elsewhere;
// the order core only reads names and emails for notifications.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	FullName  string         `gorm:"column:full_name;not null"`
	Email     string         `gorm:"column:email;not null;uniqueIndex:users_email_key"`
	Mobile    *string        `gorm:"column:mobile"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'user'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// Address is a saved shipping address.
type Address struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	AddressLine1 string    `gorm:"column:address_line1;not null"`
	AddressLine2 *string   `gorm:"column:address_line2"`
	City         string    `gorm:"column:city;not null"`
	State        string    `gorm:"column:state;not null"`
	PostalCode   string    `gorm:"column:postal_code;not null"`
	Country      string    `gorm:"column:country;not null;default:'India'"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Address) TableName() string { return "user_addresses" }
