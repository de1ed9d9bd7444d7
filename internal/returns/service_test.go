package returns

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/internal/cart"
	"github.com/Ramchandran06/E-commerce-backend/internal/inventory"
	"github.com/Ramchandran06/E-commerce-backend/internal/orders"
	"github.com/Ramchandran06/E-commerce-backend/internal/testutil"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
	"github.com/Ramchandran06/E-commerce-backend/pkg/razorpay"
)

type refundCall struct {
	paymentID string
	amount    int64
}

type stubRefunder struct {
	mu    sync.Mutex
	calls []refundCall
	err   error
}

func (s *stubRefunder) Refund(_ context.Context, paymentID string, amountMinor int64) (*razorpay.Refund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, refundCall{paymentID: paymentID, amount: amountMinor})
	if s.err != nil {
		return nil, s.err
	}
	return &razorpay.Refund{ID: "rfnd_1", PaymentID: paymentID, Amount: amountMinor, Status: "processed"}, nil
}

type returnsFixture struct {
	conn     *gorm.DB
	svc      Service
	refunder *stubRefunder
	notifier *testutil.RecordingNotifier
	user     models.User
	product  models.Product
}

func newReturnsFixture(t *testing.T, name string) returnsFixture {
	t.Helper()
	conn, client := testutil.NewDB(t, name)
	refunder := &stubRefunder{}
	notifier := &testutil.RecordingNotifier{}
	svc, err := NewService(ServiceDeps{
		Repo:     NewRepository(conn),
		Orders:   orders.NewRepository(conn),
		Tx:       client,
		Ledger:   inventory.NewLedger(),
		Refunder: refunder,
		Notifier: notifier,
		Logger:   logger.Nop(),
	})
	require.NoError(t, err)
	return returnsFixture{
		conn:     conn,
		svc:      svc,
		refunder: refunder,
		notifier: notifier,
		user:     testutil.SeedUser(t, conn, "kavya"),
		product:  testutil.SeedProduct(t, conn, "Linen Kurta", "200", 10),
	}
}

func (f returnsFixture) deliveredOrder(t *testing.T, method enums.PaymentMethod, qty int) models.Order {
	t.Helper()
	return testutil.SeedOrder(t, f.conn, f.user.ID, method, enums.OrderStatusDelivered,
		models.OrderItem{ProductID: f.product.ID, Quantity: qty, PriceAtOrder: decimal.NewFromInt(200)})
}

func cartReader(conn *gorm.DB) cart.SnapshotReader {
	return cart.NewSnapshotReader(cart.NewRepository(conn))
}

func orderStatus(t *testing.T, conn *gorm.DB, id uuid.UUID) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, conn.First(&order, "id = ?", id).Error)
	return order
}

func loadReturn(t *testing.T, conn *gorm.DB, id uuid.UUID) models.ProductReturn {
	t.Helper()
	var ret models.ProductReturn
	require.NoError(t, conn.First(&ret, "id = ?", id).Error)
	return ret
}

func TestOnlineReturnRefundsFrozenPrice(t *testing.T) {
	f := newReturnsFixture(t, "returns_online")
	order := f.deliveredOrder(t, enums.PaymentMethodOnline, 1)
	ctx := context.Background()

	ret, err := f.svc.RequestReturn(ctx, f.user.ID, RequestInput{OrderItemID: order.Items[0].ID, Reason: "Too small", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusRequested, ret.Status)
	assert.Equal(t, enums.OrderStatusReturnRequested, orderStatus(t, f.conn, order.ID).OrderStatus)

	// Price changes after checkout must not affect the refund.
	require.NoError(t, f.conn.Model(&models.Product{}).Where("id = ?", f.product.ID).Update("price", decimal.NewFromInt(999)).Error)

	resolved, err := f.svc.ResolveReturn(ctx, ResolveInput{ReturnID: ret.ID, Decision: enums.ReturnDecisionApproved, AdminComment: "ok"})
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusRefunded, resolved.Status)

	require.Len(t, f.refunder.calls, 1)
	assert.Equal(t, *order.PaymentReference, f.refunder.calls[0].paymentID)
	assert.Equal(t, int64(20000), f.refunder.calls[0].amount)

	assert.Equal(t, 11, testutil.Stock(t, f.conn, f.product.ID))
	stored := orderStatus(t, f.conn, order.ID)
	assert.Equal(t, enums.OrderStatusReturned, stored.OrderStatus)
	assert.Equal(t, enums.PaymentStatusRefunded, stored.PaymentStatus)

	saved := loadReturn(t, f.conn, ret.ID)
	assert.Equal(t, enums.ReturnStatusRefunded, saved.Status)
	require.NotNil(t, saved.RefundReference)
	assert.Equal(t, "rfnd_1", *saved.RefundReference)
	require.NotNil(t, saved.AdminComment)
	assert.Equal(t, "ok", *saved.AdminComment)

	require.Equal(t, 1, f.notifier.Count())
	assert.Contains(t, f.notifier.Last().Text, "REFUNDED")
	assert.Equal(t, f.user.Email, f.notifier.Last().To)
}

func TestResolveTwiceIsAlreadyProcessed(t *testing.T) {
	f := newReturnsFixture(t, "returns_twice")
	order := f.deliveredOrder(t, enums.PaymentMethodOnline, 2)
	ctx := context.Background()
	ret, err := f.svc.RequestReturn(ctx, f.user.ID, RequestInput{OrderItemID: order.Items[0].ID, Reason: "Faded", Quantity: 2})
	require.NoError(t, err)

	_, err = f.svc.ResolveReturn(ctx, ResolveInput{ReturnID: ret.ID, Decision: enums.ReturnDecisionApproved})
	require.NoError(t, err)
	_, err = f.svc.ResolveReturn(ctx, ResolveInput{ReturnID: ret.ID, Decision: enums.ReturnDecisionApproved})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAlreadyProcessed), "got %v", err)

	assert.Len(t, f.refunder.calls, 1)
	assert.Equal(t, int64(40000), f.refunder.calls[0].amount)
	assert.Equal(t, 12, testutil.Stock(t, f.conn, f.product.ID))
}

func TestCODApprovalSkipsRefund(t *testing.T) {
	f := newReturnsFixture(t, "returns_cod")
	order := f.deliveredOrder(t, enums.PaymentMethodCOD, 3)
	ctx := context.Background()
	ret, err := f.svc.RequestReturn(ctx, f.user.ID, RequestInput{OrderItemID: order.Items[0].ID, Reason: "Wrong colour", Quantity: 2})
	require.NoError(t, err)

	resolved, err := f.svc.ResolveReturn(ctx, ResolveInput{ReturnID: ret.ID, Decision: enums.ReturnDecisionApproved})
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusApproved, resolved.Status)
	assert.Empty(t, f.refunder.calls)
	assert.Equal(t, 12, testutil.Stock(t, f.conn, f.product.ID))
	assert.Contains(t, f.notifier.Last().Text, "No comments.")
}

func TestRefundFailureKeepsApprovedAndStock(t *testing.T) {
	f := newReturnsFixture(t, "returns_refund_fail")
	f.refunder.err = pkgerrors.Gateway(errors.New("400"), "The payment has been fully refunded already")
	order := f.deliveredOrder(t, enums.PaymentMethodOnline, 1)
	ctx := context.Background()
	ret, err := f.svc.RequestReturn(ctx, f.user.ID, RequestInput{OrderItemID: order.Items[0].ID, Reason: "Torn", Quantity: 1})
	require.NoError(t, err)

	_, err = f.svc.ResolveReturn(ctx, ResolveInput{ReturnID: ret.ID, Decision: enums.ReturnDecisionApproved})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeGateway), "got %v", err)
	assert.Contains(t, pkgerrors.As(err).Message(), "fully refunded already")

	assert.Equal(t, enums.ReturnStatusApproved, loadReturn(t, f.conn, ret.ID).Status)
	assert.Equal(t, 11, testutil.Stock(t, f.conn, f.product.ID), "stock release is not undone")
	stored := orderStatus(t, f.conn, order.ID)
	assert.Equal(t, enums.OrderStatusReturned, stored.OrderStatus)
	assert.Equal(t, enums.PaymentStatusPaid, stored.PaymentStatus)
	require.Equal(t, 1, f.notifier.Count())
	assert.Contains(t, f.notifier.Last().Text, "APPROVED")
}

func TestRejectLeavesStockAndOrder(t *testing.T) {
	f := newReturnsFixture(t, "returns_reject")
	order := f.deliveredOrder(t, enums.PaymentMethodOnline, 1)
	ctx := context.Background()
	ret, err := f.svc.RequestReturn(ctx, f.user.ID, RequestInput{OrderItemID: order.Items[0].ID, Reason: "Changed mind", Quantity: 1})
	require.NoError(t, err)

	resolved, err := f.svc.ResolveReturn(ctx, ResolveInput{ReturnID: ret.ID, Decision: enums.ReturnDecisionRejected, AdminComment: "Worn item"})
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusRejected, resolved.Status)
	assert.Empty(t, f.refunder.calls)
	assert.Equal(t, 10, testutil.Stock(t, f.conn, f.product.ID))
	assert.Equal(t, enums.OrderStatusReturnRequested, orderStatus(t, f.conn, order.ID).OrderStatus)
	assert.Contains(t, f.notifier.Last().Text, "Worn item")
}

func TestRequestReturnEligibility(t *testing.T) {
	f := newReturnsFixture(t, "returns_eligibility")
	ctx := context.Background()

	processing := testutil.SeedOrder(t, f.conn, f.user.ID, enums.PaymentMethodCOD, enums.OrderStatusProcessing,
		models.OrderItem{ProductID: f.product.ID, Quantity: 1, PriceAtOrder: decimal.NewFromInt(200)})
	_, err := f.svc.RequestReturn(ctx, f.user.ID, RequestInput{OrderItemID: processing.Items[0].ID, Reason: "x", Quantity: 1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotEligible), "got %v", err)

	delivered := f.deliveredOrder(t, enums.PaymentMethodCOD, 1)
	other := testutil.SeedUser(t, f.conn, "arun")
	_, err = f.svc.RequestReturn(ctx, other.ID, RequestInput{OrderItemID: delivered.Items[0].ID, Reason: "x", Quantity: 1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotEligible), "got %v", err)

	_, err = f.svc.RequestReturn(ctx, f.user.ID, RequestInput{OrderItemID: uuid.New(), Reason: "x", Quantity: 1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = f.svc.RequestReturn(ctx, f.user.ID, RequestInput{OrderItemID: delivered.Items[0].ID, Reason: "x", Quantity: 2})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	assert.Equal(t, int64(0), testutil.Count(t, f.conn, &models.ProductReturn{}))
	assert.Equal(t, enums.OrderStatusDelivered, orderStatus(t, f.conn, delivered.ID).OrderStatus)
}

func TestRequestReturnValidation(t *testing.T) {
	f := newReturnsFixture(t, "returns_validation")
	cases := map[string]RequestInput{
		"missing item":   {Reason: "x", Quantity: 1},
		"blank reason":   {OrderItemID: uuid.New(), Reason: "   ", Quantity: 1},
		"zero quantity":  {OrderItemID: uuid.New(), Reason: "x", Quantity: 0},
		"negative count": {OrderItemID: uuid.New(), Reason: "x", Quantity: -1},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.RequestReturn(context.Background(), f.user.ID, input)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestRequestReturnDuplicate(t *testing.T) {
	f := newReturnsFixture(t, "returns_duplicate")
	order := f.deliveredOrder(t, enums.PaymentMethodCOD, 2)
	existing := models.ProductReturn{
		OrderID:     order.ID,
		ProductID:   f.product.ID,
		OrderItemID: order.Items[0].ID,
		UserID:      f.user.ID,
		Quantity:    1,
		Reason:      "first",
		Status:      enums.ReturnStatusRejected,
	}
	require.NoError(t, f.conn.Create(&existing).Error)

	_, err := f.svc.RequestReturn(context.Background(), f.user.ID, RequestInput{OrderItemID: order.Items[0].ID, Reason: "again", Quantity: 1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDuplicateReturn), "got %v", err)
	assert.Equal(t, enums.OrderStatusDelivered, orderStatus(t, f.conn, order.ID).OrderStatus)
}

func TestResolveValidationAndNotFound(t *testing.T) {
	f := newReturnsFixture(t, "returns_resolve_errors")
	_, err := f.svc.ResolveReturn(context.Background(), ResolveInput{ReturnID: uuid.New(), Decision: "Maybe"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = f.svc.ResolveReturn(context.Background(), ResolveInput{ReturnID: uuid.New(), Decision: enums.ReturnDecisionApproved})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestStockConservationThroughReturn(t *testing.T) {
	conn, client := testutil.NewDB(t, "returns_conservation")
	user := testutil.SeedUser(t, conn, "kavya")
	addr := testutil.SeedAddress(t, conn, user.ID)
	product := testutil.SeedProduct(t, conn, "Cotton Dupatta", "150", 6)
	orderRepo := orders.NewRepository(conn)
	ledger := inventory.NewLedger()

	builder, err := orders.NewBuilder(orderRepo, client, cartReader(conn), ledger, nil, logger.Nop(), nil)
	require.NoError(t, err)
	orderSvc, err := orders.NewService(orders.ServiceDeps{Repo: orderRepo, Tx: client, Ledger: ledger, Logger: logger.Nop()})
	require.NoError(t, err)
	svc, err := NewService(ServiceDeps{
		Repo: NewRepository(conn), Orders: orderRepo, Tx: client, Ledger: ledger,
		Refunder: &stubRefunder{}, Logger: logger.Nop(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	testutil.SeedCart(t, conn, user.ID, map[uuid.UUID]int{product.ID: 4})
	order, err := builder.PlaceOrder(ctx, orders.PlaceOrderInput{UserID: user.ID, AddressID: addr.ID, PaymentMethod: enums.PaymentMethodCOD})
	require.NoError(t, err)
	assert.Equal(t, 2, testutil.Stock(t, conn, product.ID))

	_, err = orderSvc.UpdateStatus(ctx, order.ID, enums.OrderStatusDelivered)
	require.NoError(t, err)
	ret, err := svc.RequestReturn(ctx, user.ID, RequestInput{OrderItemID: order.Items[0].ID, Reason: "Too long", Quantity: 4})
	require.NoError(t, err)
	_, err = svc.ResolveReturn(ctx, ResolveInput{ReturnID: ret.ID, Decision: enums.ReturnDecisionApproved})
	require.NoError(t, err)

	assert.Equal(t, 6, testutil.Stock(t, conn, product.ID))
}

func TestListAllNewestFirst(t *testing.T) {
	f := newReturnsFixture(t, "returns_list")
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		order := f.deliveredOrder(t, enums.PaymentMethodCOD, 1)
		_, err := f.svc.RequestReturn(ctx, f.user.ID, RequestInput{OrderItemID: order.Items[0].ID, Reason: "reason", Quantity: 1})
		require.NoError(t, err)
	}

	page, err := f.svc.ListAll(ctx, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, int64(3), page.TotalReturns)
	require.Len(t, page.Returns, 2)
	assert.Equal(t, "Linen Kurta", page.Returns[0].ProductName)
	assert.Equal(t, "kavya", page.Returns[0].CustomerName)
	assert.Equal(t, enums.ReturnStatusRequested, page.Returns[0].Status)
	assert.False(t, page.Returns[0].RequestedAt.Before(page.Returns[1].RequestedAt))
}
