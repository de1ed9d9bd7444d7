package returns

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramchandran06/E-commerce-backend/api/middleware"
	internalreturns "github.com/Ramchandran06/E-commerce-backend/internal/returns"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
)

type stubReturns struct {
	ret        *models.ProductReturn
	list       *internalreturns.AdminReturnList
	err        error
	gotUser    uuid.UUID
	gotRequest internalreturns.RequestInput
	gotResolve internalreturns.ResolveInput
	gotParams  pagination.Params
}

func (s *stubReturns) RequestReturn(_ context.Context, userID uuid.UUID, input internalreturns.RequestInput) (*models.ProductReturn, error) {
	s.gotUser, s.gotRequest = userID, input
	return s.ret, s.err
}

func (s *stubReturns) ResolveReturn(_ context.Context, input internalreturns.ResolveInput) (*models.ProductReturn, error) {
	s.gotResolve = input
	return s.ret, s.err
}

func (s *stubReturns) ListAll(_ context.Context, params pagination.Params) (*internalreturns.AdminReturnList, error) {
	s.gotParams = params
	return s.list, s.err
}

func withReturnID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("returnId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestRequestReturn(t *testing.T) {
	userID, itemID := uuid.New(), uuid.New()
	svc := &stubReturns{ret: &models.ProductReturn{ID: uuid.New(), OrderItemID: itemID, Quantity: 1, Status: enums.ReturnStatusRequested}}

	body := `{"orderItemId":"` + itemID.String() + `","reason":"Wrong size","quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/returns/request", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	Request(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, userID, svc.gotUser)
	assert.Equal(t, internalreturns.RequestInput{OrderItemID: itemID, Reason: "Wrong size", Quantity: 1}, svc.gotRequest)

	var env struct {
		Message string         `json:"message"`
		Data    returnResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "Return request submitted successfully.", env.Message)
	assert.Equal(t, enums.ReturnStatusRequested, env.Data.Status)
}

func TestRequestReturnMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{pkgerrors.New(pkgerrors.CodeNotEligible, "You can only request returns for delivered items."), http.StatusForbidden},
		{pkgerrors.New(pkgerrors.CodeDuplicateReturn, "A return request for this item already exists."), http.StatusConflict},
		{pkgerrors.New(pkgerrors.CodeNotFound, "order item not found"), http.StatusNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		body := `{"orderItemId":"` + uuid.NewString() + `","reason":"x","quantity":1}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
		resp := httptest.NewRecorder()
		Request(&stubReturns{err: tc.err}, nil).ServeHTTP(resp, req)
		require.Equal(t, tc.status, resp.Code, tc.err.Error())
	}
}

func TestRequestReturnValidatesBody(t *testing.T) {
	svc := &stubReturns{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"orderItemId":"x","quantity":0}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	Request(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, uuid.Nil, svc.gotUser)
}

func TestAdminResolve(t *testing.T) {
	returnID := uuid.New()
	ref := "rfnd_1"
	svc := &stubReturns{ret: &models.ProductReturn{ID: returnID, Status: enums.ReturnStatusRefunded, RefundReference: &ref}}

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"status":"Approved","adminComment":"  ok  "}`))
	req = withReturnID(req, returnID.String())
	resp := httptest.NewRecorder()
	AdminResolve(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, internalreturns.ResolveInput{
		ReturnID:     returnID,
		Decision:     enums.ReturnDecisionApproved,
		AdminComment: "ok",
	}, svc.gotResolve)
	assert.Contains(t, resp.Body.String(), `"refundId":"rfnd_1"`)
}

func TestAdminResolveAlreadyProcessed(t *testing.T) {
	svc := &stubReturns{err: pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "This return request has already been processed.")}
	req := withReturnID(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"status":"Rejected"}`)), uuid.NewString())
	resp := httptest.NewRecorder()
	AdminResolve(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "already been processed")
}

func TestAdminResolveGatewayFailure(t *testing.T) {
	svc := &stubReturns{err: pkgerrors.Gateway(errors.New("400"), "BAD_REQUEST_ERROR: refund amount exceeds")}
	req := withReturnID(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"status":"Approved"}`)), uuid.NewString())
	resp := httptest.NewRecorder()
	AdminResolve(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "refund amount exceeds")
}

func TestAdminList(t *testing.T) {
	svc := &stubReturns{list: &internalreturns.AdminReturnList{Returns: []internalreturns.AdminReturnRow{}}}
	resp := httptest.NewRecorder()
	AdminList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/returns/admin/all?page=1&limit=20", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, pagination.Params{Page: 1, Limit: 20}, svc.gotParams)
}
