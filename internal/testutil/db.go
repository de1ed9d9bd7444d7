// Package testutil holds sqlite fixtures shared by repository and service tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/pkg/db"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
)

// NewDB opens an isolated in-memory sqlite database with every model migrated.
func NewDB(t *testing.T, name string) (*gorm.DB, *db.Client) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn, db.FromConn(conn)
}

// SeedUser inserts a customer.
func SeedUser(t *testing.T, conn *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{
		FullName: name,
		Email:    fmt.Sprintf("%s+%s@example.com", name, uuid.NewString()[:8]),
		Role:     enums.UserRoleUser,
	}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedAddress inserts a shipping address for the user.
func SeedAddress(t *testing.T, conn *gorm.DB, userID uuid.UUID) models.Address {
	t.Helper()
	addr := models.Address{
		UserID:       userID,
		AddressLine1: "12 Temple Street",
		City:         "Coimbatore",
		State:        "Tamil Nadu",
		PostalCode:   "641001",
		Country:      "India",
	}
	if err := conn.Create(&addr).Error; err != nil {
		t.Fatalf("seed address: %v", err)
	}
	return addr
}

// SeedProduct inserts a product with the given price and stock.
func SeedProduct(t *testing.T, conn *gorm.DB, name, price string, stock int) models.Product {
	t.Helper()
	product := models.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

// SeedCart fills the user's cart with product quantities.
func SeedCart(t *testing.T, conn *gorm.DB, userID uuid.UUID, lines map[uuid.UUID]int) models.Cart {
	t.Helper()
	cart := models.Cart{UserID: userID}
	if err := conn.Where("user_id = ?", userID).FirstOrCreate(&cart).Error; err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	for productID, qty := range lines {
		item := models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: qty}
		if err := conn.Create(&item).Error; err != nil {
			t.Fatalf("seed cart item: %v", err)
		}
	}
	return cart
}

// Stock reads the current stock of a product.
func Stock(t *testing.T, conn *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	if err := conn.Select("stock").First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return product.Stock
}

// Count returns the number of rows for a model.
func Count(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := conn.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// SeedOrder inserts an order with one item per product at the given price and
// quantity. Stock is not touched.
func SeedOrder(t *testing.T, conn *gorm.DB, userID uuid.UUID, method enums.PaymentMethod, status enums.OrderStatus, items ...models.OrderItem) models.Order {
	t.Helper()
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	order := models.Order{
		UserID:        userID,
		TotalPrice:    total,
		PaymentMethod: method,
		PaymentStatus: method.InitialPaymentStatus(),
		OrderStatus:   status,
	}
	if method == enums.PaymentMethodOnline {
		ref := "pay_" + uuid.NewString()[:12]
		order.PaymentReference = &ref
	}
	if err := conn.Omit("Items").Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	for i := range items {
		items[i].OrderID = order.ID
		if err := conn.Create(&items[i]).Error; err != nil {
			t.Fatalf("seed order item: %v", err)
		}
	}
	order.Items = items
	return order
}
