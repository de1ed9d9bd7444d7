package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
)

type orderItemResponse struct {
	OrderItemID  uuid.UUID       `json:"orderItemId"`
	ProductID    uuid.UUID       `json:"productId"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price"`
}

// orderResponse is the order as returned by write endpoints.
type orderResponse struct {
	OrderID          uuid.UUID           `json:"orderId"`
	OrderDate        time.Time           `json:"orderDate"`
	TotalPrice       decimal.Decimal     `json:"totalPrice"`
	PaymentMethod    enums.PaymentMethod `json:"paymentMethod"`
	PaymentStatus    enums.PaymentStatus `json:"paymentStatus"`
	OrderStatus      enums.OrderStatus   `json:"orderStatus"`
	PaymentReference *string             `json:"paymentReference,omitempty"`
	Items            []orderItemResponse `json:"items,omitempty"`
}

func newOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		OrderID:          order.ID,
		OrderDate:        order.CreatedAt,
		TotalPrice:       order.TotalPrice,
		PaymentMethod:    order.PaymentMethod,
		PaymentStatus:    order.PaymentStatus,
		OrderStatus:      order.OrderStatus,
		PaymentReference: order.PaymentReference,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			OrderItemID:  item.ID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			PriceAtOrder: item.PriceAtOrder,
		})
	}
	return resp
}
