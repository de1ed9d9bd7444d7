package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
)

// RequestInput is a customer's return request for one order line.
type RequestInput struct {
	OrderItemID uuid.UUID
	Reason      string
	Quantity    int
}

// ResolveInput is the admin decision on a pending return.
type ResolveInput struct {
	ReturnID     uuid.UUID
	Decision     enums.ReturnDecision
	AdminComment string
}

// resolution is everything ResolveReturn needs about a return, loaded in one join.
type resolution struct {
	ProductName      string              `gorm:"column:product_name"`
	CustomerName     string              `gorm:"column:customer_name"`
	CustomerEmail    string              `gorm:"column:customer_email"`
	PriceAtOrder     decimal.Decimal     `gorm:"column:price_at_order"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method"`
	PaymentReference *string             `gorm:"column:payment_reference"`
}

// refundable reports whether the order was paid through the gateway.
func (r resolution) refundable() bool {
	return r.PaymentMethod == enums.PaymentMethodOnline && r.PaymentReference != nil && *r.PaymentReference != ""
}

// AdminReturnRow is one line of the admin returns console.
type AdminReturnRow struct {
	ID           uuid.UUID          `gorm:"column:id" json:"returnId"`
	OrderID      uuid.UUID          `gorm:"column:order_id" json:"orderId"`
	ProductName  string             `gorm:"column:product_name" json:"productName"`
	CustomerName string             `gorm:"column:customer_name" json:"customerName"`
	Quantity     int                `gorm:"column:quantity" json:"quantity"`
	Reason       string             `gorm:"column:reason" json:"reason"`
	Status       enums.ReturnStatus `gorm:"column:status" json:"returnStatus"`
	AdminComment *string            `gorm:"column:admin_comment" json:"adminComment"`
	RequestedAt  time.Time          `gorm:"column:requested_at" json:"requestedAt"`
}

type AdminReturnList struct {
	Returns      []AdminReturnRow `json:"returns"`
	TotalPages   int              `json:"totalPages"`
	CurrentPage  int              `json:"currentPage"`
	TotalReturns int64            `json:"totalReturns"`
}

func newAdminReturnList(rows []AdminReturnRow, meta pagination.Meta) *AdminReturnList {
	if rows == nil {
		rows = []AdminReturnRow{}
	}
	return &AdminReturnList{
		Returns:      rows,
		TotalPages:   meta.TotalPages,
		CurrentPage:  meta.CurrentPage,
		TotalReturns: meta.TotalItems,
	}
}
