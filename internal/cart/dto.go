package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotLine is one cart line resolved against live product data.
type SnapshotLine struct {
	ProductID uuid.UUID       `gorm:"column:product_id"`
	Name      string          `gorm:"column:name"`
	Quantity  int             `gorm:"column:quantity"`
	UnitPrice decimal.Decimal `gorm:"column:price"`
	Stock     int             `gorm:"column:stock"`
}

// LineTotal is unit price times quantity.
func (l SnapshotLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is the priced content of a user's cart at a single instant.
// CartID is uuid.Nil when the user has never created a cart.
type Snapshot struct {
	CartID uuid.UUID
	Lines  []SnapshotLine
}

// IsEmpty reports whether there is nothing to check out.
func (s Snapshot) IsEmpty() bool {
	return s.CartID == uuid.Nil || len(s.Lines) == 0
}

// Total sums every line at its snapshot price.
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// ProductIDs lists the products referenced by the snapshot.
func (s Snapshot) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Lines))
	for _, line := range s.Lines {
		ids = append(ids, line.ProductID)
	}
	return ids
}

// ItemView is a cart line as returned to the storefront.
type ItemView struct {
	ProductID          uuid.UUID       `json:"productId" gorm:"column:product_id"`
	Name               string          `json:"name" gorm:"column:name"`
	Price              decimal.Decimal `json:"price" gorm:"column:price"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage" gorm:"column:discount_percentage"`
	Thumbnail          *string         `json:"thumbnail,omitempty" gorm:"column:thumbnail"`
	Stock              int             `json:"stock" gorm:"column:stock"`
	Quantity           int             `json:"quantity" gorm:"column:quantity"`
}

// View is the cart payload returned by every cart endpoint.
type View struct {
	Items    []ItemView      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func newView(items []ItemView) *View {
	if items == nil {
		items = []ItemView{}
	}
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return &View{Items: items, Subtotal: subtotal}
}
