package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID fills a zero primary key so rows get ids on every dialect.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *User) BeforeCreate(*gorm.DB) error          { assignID(&m.ID); return nil }
func (m *Address) BeforeCreate(*gorm.DB) error       { assignID(&m.ID); return nil }
func (m *Product) BeforeCreate(*gorm.DB) error       { assignID(&m.ID); return nil }
func (m *Cart) BeforeCreate(*gorm.DB) error          { assignID(&m.ID); return nil }
func (m *CartItem) BeforeCreate(*gorm.DB) error      { assignID(&m.ID); return nil }
func (m *Order) BeforeCreate(*gorm.DB) error         { assignID(&m.ID); return nil }
func (m *OrderItem) BeforeCreate(*gorm.DB) error     { assignID(&m.ID); return nil }
func (m *ProductReturn) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *PaymentIntent) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }

// All lists every persisted model; tests use it to AutoMigrate sqlite databases.
func All() []any {
	return []any{
		&User{},
		&Address{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&ProductReturn{},
		&PaymentIntent{},
	}
}
