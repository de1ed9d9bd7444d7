package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
)

// FinalizeFunc runs inside the checkout transaction after the order, its
// items and the stock reservations are written. Returning an error rolls the
// whole checkout back.
type FinalizeFunc func(ctx context.Context, tx *gorm.DB, order *models.Order) error

// PlaceOrderInput captures a checkout request.
type PlaceOrderInput struct {
	UserID           uuid.UUID
	AddressID        uuid.UUID
	PaymentMethod    enums.PaymentMethod
	PaymentReference *string
	Finalize         FinalizeFunc
}

// ItemRow is an order item joined with its product for read views.
type ItemRow struct {
	ID           uuid.UUID       `gorm:"column:id"`
	OrderID      uuid.UUID       `gorm:"column:order_id"`
	ProductID    uuid.UUID       `gorm:"column:product_id"`
	ProductName  string          `gorm:"column:product_name"`
	Thumbnail    *string         `gorm:"column:thumbnail"`
	Quantity     int             `gorm:"column:quantity"`
	PriceAtOrder decimal.Decimal `gorm:"column:price_at_order"`
}

// AdminOrderRow is an order joined with its customer.
type AdminOrderRow struct {
	ID            uuid.UUID           `gorm:"column:id"`
	UserID        uuid.UUID           `gorm:"column:user_id"`
	CustomerName  string              `gorm:"column:customer_name"`
	CustomerEmail string              `gorm:"column:customer_email"`
	TotalPrice    decimal.Decimal     `gorm:"column:total_price"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status"`
	OrderStatus   enums.OrderStatus   `gorm:"column:order_status"`
	CreatedAt     time.Time           `gorm:"column:created_at"`
}

type ItemView struct {
	OrderItemID  uuid.UUID       `json:"orderItemId"`
	ProductID    uuid.UUID       `json:"productId"`
	ProductName  string          `json:"productName"`
	Thumbnail    *string         `json:"thumbnail,omitempty"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price"`
}

type AddressView struct {
	AddressID    uuid.UUID `json:"addressId"`
	AddressLine1 string    `json:"addressLine1"`
	AddressLine2 *string   `json:"addressLine2,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postalCode"`
	Country      string    `json:"country"`
}

// OrderView is an order as returned to its owner.
type OrderView struct {
	OrderID          uuid.UUID           `json:"orderId"`
	OrderDate        time.Time           `json:"orderDate"`
	TotalPrice       decimal.Decimal     `json:"totalPrice"`
	PaymentMethod    enums.PaymentMethod `json:"paymentMethod"`
	PaymentStatus    enums.PaymentStatus `json:"paymentStatus"`
	OrderStatus      enums.OrderStatus   `json:"orderStatus"`
	PaymentReference *string             `json:"paymentReference,omitempty"`
	ShippingAddress  *AddressView        `json:"shippingAddress"`
	Items            []ItemView          `json:"items"`
}

// AdminOrderView adds the customer to an order for the admin console.
type AdminOrderView struct {
	OrderID       uuid.UUID           `json:"orderId"`
	OrderDate     time.Time           `json:"orderDate"`
	TotalPrice    decimal.Decimal     `json:"totalPrice"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	PaymentStatus enums.PaymentStatus `json:"paymentStatus"`
	OrderStatus   enums.OrderStatus   `json:"orderStatus"`
	CustomerName  string              `json:"username"`
	CustomerEmail string              `json:"email"`
	Items         []ItemView          `json:"items"`
}

type AdminOrderList struct {
	Orders      []AdminOrderView `json:"orders"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	TotalOrders int64            `json:"totalOrders"`
}

func newAdminOrderList(rows []AdminOrderView, meta pagination.Meta) *AdminOrderList {
	if rows == nil {
		rows = []AdminOrderView{}
	}
	return &AdminOrderList{
		Orders:      rows,
		TotalPages:  meta.TotalPages,
		CurrentPage: meta.CurrentPage,
		TotalOrders: meta.TotalItems,
	}
}

func itemView(row ItemRow) ItemView {
	return ItemView{
		OrderItemID:  row.ID,
		ProductID:    row.ProductID,
		ProductName:  row.ProductName,
		Thumbnail:    row.Thumbnail,
		Quantity:     row.Quantity,
		PriceAtOrder: row.PriceAtOrder,
	}
}

func addressView(a models.Address) *AddressView {
	return &AddressView{
		AddressID:    a.ID,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
}
