package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramchandran06/E-commerce-backend/api/middleware"
	internalorders "github.com/Ramchandran06/E-commerce-backend/internal/orders"
	internalpayments "github.com/Ramchandran06/E-commerce-backend/internal/payments"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
)

type stubPlacer struct {
	got   internalorders.PlaceOrderInput
	order *models.Order
	err   error
}

func (s *stubPlacer) PlaceOrder(_ context.Context, input internalorders.PlaceOrderInput) (*models.Order, error) {
	s.got = input
	return s.order, s.err
}

type stubOrders struct {
	views     []internalorders.OrderView
	list      *internalorders.AdminOrderList
	order     *models.Order
	err       error
	gotUser   uuid.UUID
	gotOrder  uuid.UUID
	gotStatus enums.OrderStatus
	gotParams pagination.Params
}

func (s *stubOrders) ListForUser(_ context.Context, userID uuid.UUID) ([]internalorders.OrderView, error) {
	s.gotUser = userID
	return s.views, s.err
}

func (s *stubOrders) GetForUser(_ context.Context, userID, orderID uuid.UUID) (*internalorders.OrderView, error) {
	return nil, s.err
}

func (s *stubOrders) ListAll(_ context.Context, params pagination.Params) (*internalorders.AdminOrderList, error) {
	s.gotParams = params
	return s.list, s.err
}

func (s *stubOrders) Cancel(_ context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	s.gotUser, s.gotOrder = userID, orderID
	return s.order, s.err
}

func (s *stubOrders) UpdateStatus(_ context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	s.gotOrder, s.gotStatus = orderID, status
	return s.order, s.err
}

type stubPayments struct {
	intent   *internalpayments.IntentView
	order    *models.Order
	err      error
	gotInput internalpayments.VerifyInput
}

func (s *stubPayments) CreateIntent(context.Context, uuid.UUID) (*internalpayments.IntentView, error) {
	return s.intent, s.err
}

func (s *stubPayments) VerifyAndPlaceOrder(_ context.Context, _ uuid.UUID, input internalpayments.VerifyInput) (*models.Order, error) {
	s.gotInput = input
	return s.order, s.err
}

func authed(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleOrder(method enums.PaymentMethod) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		TotalPrice:    decimal.RequireFromString("1998.00"),
		PaymentMethod: method,
		PaymentStatus: method.InitialPaymentStatus(),
		OrderStatus:   enums.OrderStatusProcessing,
	}
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestCheckoutPlacesCODOrder(t *testing.T) {
	userID, addressID := uuid.New(), uuid.New()
	placer := &stubPlacer{order: sampleOrder(enums.PaymentMethodCOD)}

	body := `{"addressId":"` + addressID.String() + `","paymentMethod":"COD"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)), userID)
	resp := httptest.NewRecorder()
	Checkout(placer, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	env := decode(t, resp)
	assert.Equal(t, "Order placed successfully!", env.Message)
	assert.Equal(t, userID, placer.got.UserID)
	assert.Equal(t, addressID, placer.got.AddressID)
	assert.Equal(t, enums.PaymentMethodCOD, placer.got.PaymentMethod)

	var data orderResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, placer.order.ID, data.OrderID)
}

func TestCheckoutRejectsOtherPaymentMethods(t *testing.T) {
	placer := &stubPlacer{}
	body := `{"addressId":"` + uuid.NewString() + `","paymentMethod":"Online"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	Checkout(placer, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, uuid.Nil, placer.got.UserID, "builder must not run")
}

func TestCheckoutSurfacesBuilderErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{pkgerrors.New(pkgerrors.CodeEmptyCart, "your cart is empty"), http.StatusBadRequest},
		{pkgerrors.InsufficientStock("Silk Saree", 3, 1), http.StatusConflict},
		{pkgerrors.New(pkgerrors.CodeForbidden, "address does not belong to user"), http.StatusForbidden},
	}
	for _, tc := range cases {
		placer := &stubPlacer{err: tc.err}
		body := `{"addressId":"` + uuid.NewString() + `"}`
		req := authed(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)), uuid.New())
		resp := httptest.NewRecorder()
		Checkout(placer, nil).ServeHTTP(resp, req)
		require.Equal(t, tc.status, resp.Code, tc.err.Error())
		assert.Equal(t, string(pkgerrors.As(tc.err).Code()), decode(t, resp).Error.Code)
	}
}

func TestCheckoutRequiresAuthenticatedUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	Checkout(&stubPlacer{}, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestListReturnsCallerOrders(t *testing.T) {
	userID := uuid.New()
	svc := &stubOrders{views: []internalorders.OrderView{{OrderID: uuid.New()}}}

	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodGet, "/api/orders", nil), userID))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, userID, svc.gotUser)
	var views []internalorders.OrderView
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &views))
	assert.Len(t, views, 1)
}

func TestCancelPassesOrderID(t *testing.T) {
	userID, orderID := uuid.New(), uuid.New()
	order := sampleOrder(enums.PaymentMethodCOD)
	order.OrderStatus = enums.OrderStatusCancelled
	svc := &stubOrders{order: order}

	req := authed(httptest.NewRequest(http.MethodPost, "/api/orders/"+orderID.String()+"/cancel", nil), userID)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	Cancel(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, orderID, svc.gotOrder)
	assert.Equal(t, userID, svc.gotUser)
}

func TestCancelInvalidTransitionIs409(t *testing.T) {
	svc := &stubOrders{err: pkgerrors.InvalidTransition("order", "Shipped", "Cancelled")}
	orderID := uuid.New()
	req := authed(httptest.NewRequest(http.MethodPost, "/", nil), uuid.New())
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	Cancel(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), `"current_status":"Shipped"`)
}

func TestCancelRejectsMalformedID(t *testing.T) {
	req := authed(httptest.NewRequest(http.MethodPost, "/", nil), uuid.New())
	req = withURLParam(req, "orderId", "42")
	resp := httptest.NewRecorder()
	Cancel(&stubOrders{}, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdminListParsesPage(t *testing.T) {
	svc := &stubOrders{list: &internalorders.AdminOrderList{Orders: []internalorders.AdminOrderView{}, CurrentPage: 2}}
	resp := httptest.NewRecorder()
	AdminList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/orders/admin/all?page=2&limit=5", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, pagination.Params{Page: 2, Limit: 5}, svc.gotParams)
}

func TestAdminUpdateStatus(t *testing.T) {
	orderID := uuid.New()
	order := sampleOrder(enums.PaymentMethodCOD)
	order.OrderStatus = enums.OrderStatusShipped
	svc := &stubOrders{order: order}

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"status":"Shipped"}`))
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	AdminUpdateStatus(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, enums.OrderStatusShipped, svc.gotStatus)
	assert.Equal(t, "Order status updated successfully.", decode(t, resp).Message)
}

func TestAdminUpdateStatusRequiresStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`))
	req = withURLParam(req, "orderId", uuid.NewString())
	resp := httptest.NewRecorder()
	AdminUpdateStatus(&stubOrders{}, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreatePaymentIntent(t *testing.T) {
	svc := &stubPayments{intent: &internalpayments.IntentView{ID: "order_abc", Amount: 99900, Currency: "INR"}}
	req := authed(httptest.NewRequest(http.MethodPost, "/api/orders/razorpay/create-order", strings.NewReader(`{"amount":1}`)), uuid.New())
	resp := httptest.NewRecorder()
	CreatePaymentIntent(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var intent internalpayments.IntentView
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &intent))
	assert.Equal(t, int64(99900), intent.Amount)
}

func TestVerifyPayment(t *testing.T) {
	addressID := uuid.New()
	svc := &stubPayments{order: sampleOrder(enums.PaymentMethodOnline)}
	body := `{"razorpay_order_id":"order_abc","razorpay_payment_id":"pay_1","razorpay_signature":"sig","addressId":"` + addressID.String() + `"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/orders/razorpay/verify-payment", strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	VerifyPayment(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, internalpayments.VerifyInput{
		GatewayOrderID: "order_abc",
		PaymentID:      "pay_1",
		Signature:      "sig",
		AddressID:      addressID,
	}, svc.gotInput)
}

func TestVerifyPaymentSignatureFailure(t *testing.T) {
	svc := &stubPayments{err: pkgerrors.New(pkgerrors.CodePaymentVerification, "payment signature mismatch")}
	body := `{"razorpay_order_id":"o","razorpay_payment_id":"p","razorpay_signature":"bad","addressId":"` + uuid.NewString() + `"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	VerifyPayment(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, string(pkgerrors.CodePaymentVerification), decode(t, resp).Error.Code)
}
