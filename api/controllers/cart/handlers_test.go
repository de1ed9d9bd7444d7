package cart

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
	cartsvc "github.com/Ramchandran06/E-commerce-backend/internal/cart"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
)

type stubCart struct {
	view    *cartsvc.View
	err     error
	calls   []string
	product uuid.UUID
	qty     int
}

func (s *stubCart) Get(context.Context, uuid.UUID) (*cartsvc.View, error) {
	s.calls = append(s.calls, "get")
	return s.view, s.err
}

func (s *stubCart) Add(_ context.Context, _ uuid.UUID, productID uuid.UUID, qty int) (*cartsvc.View, error) {
	s.calls = append(s.calls, "add")
	s.product, s.qty = productID, qty
	return s.view, s.err
}

func (s *stubCart) UpdateQuantity(_ context.Context, _ uuid.UUID, productID uuid.UUID, qty int) (*cartsvc.View, error) {
	s.calls = append(s.calls, "update")
	s.product, s.qty = productID, qty
	return s.view, s.err
}

func (s *stubCart) Remove(_ context.Context, _ uuid.UUID, productID uuid.UUID) (*cartsvc.View, error) {
	s.calls = append(s.calls, "remove")
	s.product = productID
	return s.view, s.err
}

func (s *stubCart) Clear(context.Context, uuid.UUID) (*cartsvc.View, error) {
	s.calls = append(s.calls, "clear")
	return s.view, s.err
}

func userRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func sampleView() *cartsvc.View {
	return &cartsvc.View{
		Items:    []cartsvc.ItemView{{ProductID: uuid.New(), Name: "Cotton Kurti", Price: decimal.RequireFromString("499.00"), Quantity: 2}},
		Subtotal: decimal.RequireFromString("998.00"),
	}
}

func TestGetCart(t *testing.T) {
	svc := &stubCart{view: sampleView()}
	resp := httptest.NewRecorder()
	Get(svc, nil).ServeHTTP(resp, userRequest(http.MethodGet, "/api/cart", ""))

	require.Equal(t, http.StatusOK, resp.Code)
	var env struct {
		Data cartsvc.View `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.True(t, env.Data.Subtotal.Equal(decimal.RequireFromString("998")))
}

func TestAddItem(t *testing.T) {
	productID := uuid.New()
	svc := &stubCart{view: sampleView()}
	resp := httptest.NewRecorder()
	Add(svc, nil).ServeHTTP(resp, userRequest(http.MethodPost, "/api/cart/add", `{"productId":"`+productID.String()+`","quantity":2}`))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, productID, svc.product)
	assert.Equal(t, 2, svc.qty)
}

func TestAddItemValidation(t *testing.T) {
	svc := &stubCart{}
	resp := httptest.NewRecorder()
	Add(svc, nil).ServeHTTP(resp, userRequest(http.MethodPost, "/api/cart/add", `{"productId":"`+uuid.NewString()+`","quantity":0}`))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, svc.calls)
}

func TestAddUnknownProduct(t *testing.T) {
	svc := &stubCart{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	resp := httptest.NewRecorder()
	Add(svc, nil).ServeHTTP(resp, userRequest(http.MethodPost, "/api/cart/add", `{"productId":"`+uuid.NewString()+`","quantity":1}`))
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateAllowsZero(t *testing.T) {
	svc := &stubCart{view: &cartsvc.View{Items: []cartsvc.ItemView{}}}
	resp := httptest.NewRecorder()
	Update(svc, nil).ServeHTTP(resp, userRequest(http.MethodPut, "/api/cart/update", `{"productId":"`+uuid.NewString()+`","quantity":0}`))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, svc.qty)
}

func TestRemoveAndClear(t *testing.T) {
	productID := uuid.New()
	svc := &stubCart{view: &cartsvc.View{Items: []cartsvc.ItemView{}}}

	req := userRequest(http.MethodDelete, "/api/cart/remove/"+productID.String(), "")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", productID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	resp := httptest.NewRecorder()
	Remove(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, productID, svc.product)

	resp = httptest.NewRecorder()
	Clear(svc, nil).ServeHTTP(resp, userRequest(http.MethodDelete, "/api/cart/clear", ""))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"remove", "clear"}, svc.calls)
	assert.Contains(t, resp.Body.String(), "Cart cleared successfully.")
}
