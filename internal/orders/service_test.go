package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/internal/inventory"
	"github.com/Ramchandran06/E-commerce-backend/internal/testutil"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
)

type serviceFixture struct {
	builderFixture
	svc Service
}

func newServiceFixture(t *testing.T, name string) serviceFixture {
	t.Helper()
	f := newBuilderFixture(t, name)
	svc, err := NewService(ServiceDeps{
		Repo:      NewRepository(f.conn),
		Tx:        f.client,
		Ledger:    inventory.NewLedger(),
		Notifier:  f.notifier,
		Logger:    logger.Nop(),
		OrdersURL: "https://shop.example.com",
	})
	require.NoError(t, err)
	return serviceFixture{builderFixture: f, svc: svc}
}

func (f serviceFixture) placeOrder(t *testing.T, product models.Product, qty int) *models.Order {
	t.Helper()
	testutil.SeedCart(t, f.conn, f.user.ID, map[uuid.UUID]int{product.ID: qty})
	order, err := f.builder.PlaceOrder(context.Background(), f.codInput())
	require.NoError(t, err)
	return order
}

func setStatus(t *testing.T, conn *gorm.DB, orderID uuid.UUID, status enums.OrderStatus) {
	t.Helper()
	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", orderID).Update("order_status", status).Error)
}

func TestCancelRestoresStock(t *testing.T) {
	f := newServiceFixture(t, "orders_cancel")
	product := testutil.SeedProduct(t, f.conn, "Silk Saree", "500", 5)
	order := f.placeOrder(t, product, 2)
	require.Equal(t, 3, testutil.Stock(t, f.conn, product.ID))

	cancelled, err := f.svc.Cancel(context.Background(), f.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.OrderStatus)
	assert.Equal(t, 5, testutil.Stock(t, f.conn, product.ID))

	_, err = f.svc.Cancel(context.Background(), f.user.ID, order.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition), "got %v", err)
	assert.Equal(t, 5, testutil.Stock(t, f.conn, product.ID), "second cancel must not release again")
}

func TestCancelIsStateGated(t *testing.T) {
	for _, status := range []enums.OrderStatus{enums.OrderStatusShipped, enums.OrderStatusDelivered, enums.OrderStatusCancelled} {
		t.Run(status.String(), func(t *testing.T) {
			f := newServiceFixture(t, "orders_cancel_gate")
			product := testutil.SeedProduct(t, f.conn, "Silk Saree", "500", 5)
			order := f.placeOrder(t, product, 1)
			setStatus(t, f.conn, order.ID, status)

			_, err := f.svc.Cancel(context.Background(), f.user.ID, order.ID)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition), "got %v", err)
			details := pkgerrors.As(err).Details().(map[string]any)
			assert.Equal(t, status.String(), details["current_status"])
			assert.Equal(t, 4, testutil.Stock(t, f.conn, product.ID))
		})
	}
}

func TestCancelOwnership(t *testing.T) {
	f := newServiceFixture(t, "orders_cancel_owner")
	product := testutil.SeedProduct(t, f.conn, "Silk Saree", "500", 5)
	order := f.placeOrder(t, product, 1)
	intruder := testutil.SeedUser(t, f.conn, "ravi")

	_, err := f.svc.Cancel(context.Background(), intruder.ID, order.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	_, err = f.svc.Cancel(context.Background(), f.user.ID, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
	assert.Equal(t, 4, testutil.Stock(t, f.conn, product.ID))
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newServiceFixture(t, "orders_update_status")
	product := testutil.SeedProduct(t, f.conn, "Silk Saree", "500", 5)
	order := f.placeOrder(t, product, 1)
	confirmations := f.notifier.Count()

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, updated.OrderStatus)
	require.Equal(t, confirmations+1, f.notifier.Count())
	assert.Contains(t, f.notifier.Last().Subject, "has been Shipped!")
	assert.Contains(t, f.notifier.Last().Text, "https://shop.example.com/my-orders")

	_, err = f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusCancelled)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition), "admin cannot cancel: %v", err)

	_, err = f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition), "got %v", err)

	_, err = f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusReturned)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition), "returns flow only: %v", err)

	_, err = f.svc.UpdateStatus(context.Background(), order.ID, "Lost")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = f.svc.UpdateStatus(context.Background(), uuid.New(), enums.OrderStatusShipped)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestUpdateStatusProcessingToDelivered(t *testing.T) {
	f := newServiceFixture(t, "orders_skip_ship")
	product := testutil.SeedProduct(t, f.conn, "Silk Saree", "500", 5)
	order := f.placeOrder(t, product, 1)

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.OrderStatus)
}

func TestListForUserIncludesItemsAndAddress(t *testing.T) {
	f := newServiceFixture(t, "orders_list_user")
	saree := testutil.SeedProduct(t, f.conn, "Silk Saree", "500", 5)
	kurta := testutil.SeedProduct(t, f.conn, "Cotton Kurta", "300", 5)
	testutil.SeedCart(t, f.conn, f.user.ID, map[uuid.UUID]int{saree.ID: 1, kurta.ID: 2})
	_, err := f.builder.PlaceOrder(context.Background(), f.codInput())
	require.NoError(t, err)
	f.placeOrder(t, saree, 1)

	other := testutil.SeedUser(t, f.conn, "ravi")
	testutil.SeedOrder(t, f.conn, other.ID, enums.PaymentMethodCOD, enums.OrderStatusProcessing,
		models.OrderItem{ProductID: saree.ID, Quantity: 1, PriceAtOrder: decimal.NewFromInt(500)})

	views, err := f.svc.ListForUser(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	var twoLine *OrderView
	for i := range views {
		if len(views[i].Items) == 2 {
			twoLine = &views[i]
		}
	}
	require.NotNil(t, twoLine)
	assert.True(t, twoLine.TotalPrice.Equal(decimal.NewFromInt(1100)))
	require.NotNil(t, twoLine.ShippingAddress)
	assert.Equal(t, "Coimbatore", twoLine.ShippingAddress.City)

	got, err := f.svc.GetForUser(context.Background(), f.user.ID, twoLine.OrderID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)

	_, err = f.svc.GetForUser(context.Background(), other.ID, twoLine.OrderID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestListAllPaginates(t *testing.T) {
	f := newServiceFixture(t, "orders_list_all")
	product := testutil.SeedProduct(t, f.conn, "Silk Saree", "500", 100)
	for i := 0; i < 3; i++ {
		testutil.SeedOrder(t, f.conn, f.user.ID, enums.PaymentMethodCOD, enums.OrderStatusProcessing,
			models.OrderItem{ProductID: product.ID, Quantity: 1, PriceAtOrder: decimal.NewFromInt(500)})
	}

	page, err := f.svc.ListAll(context.Background(), pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, int64(3), page.TotalOrders)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "asha", page.Orders[0].CustomerName)
	require.Len(t, page.Orders[0].Items, 1)
	assert.Equal(t, "Silk Saree", page.Orders[0].Items[0].ProductName)

	empty, err := f.svc.ListAll(context.Background(), pagination.Params{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, empty.Orders)
	assert.NotNil(t, empty.Orders)
}

func TestStockConservationPlaceThenCancel(t *testing.T) {
	f := newServiceFixture(t, "orders_conservation")
	a := testutil.SeedProduct(t, f.conn, "A", "100", 7)
	b := testutil.SeedProduct(t, f.conn, "B", "200", 3)
	testutil.SeedCart(t, f.conn, f.user.ID, map[uuid.UUID]int{a.ID: 4, b.ID: 3})

	order, err := f.builder.PlaceOrder(context.Background(), f.codInput())
	require.NoError(t, err)
	assert.Equal(t, 0, testutil.Stock(t, f.conn, b.ID))

	_, err = f.svc.Cancel(context.Background(), f.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, testutil.Stock(t, f.conn, a.ID))
	assert.Equal(t, 3, testutil.Stock(t, f.conn, b.ID))
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(ServiceDeps{})
	require.Error(t, err)
	_, err = NewService(ServiceDeps{Repo: NewRepository(nil)})
	require.Error(t, err)
}
