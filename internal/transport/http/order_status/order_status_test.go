package orderstatus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigbuilders/settlement-svc/internal/service/models/order"
)

type stubService struct {
	status order.Status
	err    error
}

func (s *stubService) GetOrderStatus(_ context.Context, _ int64) (order.Status, error) {
	return s.status, s.err
}

func doGetStatus(t *testing.T, svc *stubService, id string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/orders/"+id+"/status", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	GetOrderStatus(rec, req, svc)
	return rec
}

func TestGetOrderStatusSuccess(t *testing.T) {
	svc := &stubService{status: order.StatusPaymentReceived}

	rec := doGetStatus(t, svc, "7")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"orderId":7,"status":"payment_received"}`, rec.Body.String())
}

func TestGetOrderStatusNotFound(t *testing.T) {
	svc := &stubService{err: order.ErrNotFound}

	rec := doGetStatus(t, svc, "99")

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrderStatusRejectsBadID(t *testing.T) {
	svc := &stubService{}

	rec := doGetStatus(t, svc, "not-a-number")

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderStatusMapsErrorTo500(t *testing.T) {
	svc := &stubService{err: assert.AnError}

	rec := doGetStatus(t, svc, "7")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
