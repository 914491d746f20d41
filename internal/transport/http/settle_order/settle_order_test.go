package settleorder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigbuilders/settlement-svc/internal/service/models/settlement"
)

type stubService struct {
	result settlement.Result
	err    error
	got    *settlement.Request
}

func (s *stubService) Settle(_ context.Context, req settlement.Request) (settlement.Result, error) {
	s.got = &req
	return s.result, s.err
}

func doSettle(t *testing.T, svc *stubService, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/settle", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Settle(rec, req, svc)
	return rec
}

const validBody = `{
	"orderReferenceId": "order_abc",
	"paymentReferenceId": "pay_xyz",
	"claimedSignature": "deadbeef",
	"cartItems": [
		{"id": "sku-1", "name": "980 Pro 1TB", "category": "storage", "kind": "discrete"},
		{"id": "pb-1", "name": "Starter Rig", "category": "prebuilt", "kind": "prebuilt"}
	],
	"customerRef": "cust-42",
	"totalAmount": 1499.99,
	"shippingInfo": {"city": "Pune"}
}`

func TestSettleSuccess(t *testing.T) {
	svc := &stubService{result: settlement.Result{OrderID: 7, DisplayID: "RB-2026-0007"}}

	rec := doSettle(t, svc, validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"status":"ok","orderId":7,"displayId":"RB-2026-0007"}`,
		rec.Body.String(),
	)

	require.NotNil(t, svc.got)
	assert.Equal(t, "pay_xyz", svc.got.Claim.PaymentReferenceID)
	assert.Len(t, svc.got.CartItems, 2)
}

func TestSettleInvalidSignatureMapsTo400(t *testing.T) {
	svc := &stubService{err: settlement.ErrInvalidSignature}

	rec := doSettle(t, svc, validBody)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"rejected","reason":"invalid_signature"}`, rec.Body.String())
}

func TestSettleProcurementFailureMapsTo500Distinctly(t *testing.T) {
	svc := &stubService{err: settlement.ErrProcurementPersist}

	rec := doSettle(t, svc, validBody)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"error","reason":"procurement_persist_failed"}`, rec.Body.String())
}

func TestSettleUnexpectedErrorMapsTo500(t *testing.T) {
	svc := &stubService{err: assert.AnError}

	rec := doSettle(t, svc, validBody)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"error","reason":"internal_error"}`, rec.Body.String())
}

func TestSettleRejectsMalformedJSON(t *testing.T) {
	svc := &stubService{}

	rec := doSettle(t, svc, "{not json")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.got, "the service must not be called for malformed input")
}

func TestSettleRejectsMissingClaim(t *testing.T) {
	svc := &stubService{}

	rec := doSettle(t, svc, `{"orderReferenceId": "order_abc"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_payment_claim")
	assert.Nil(t, svc.got)
}

func TestSettleRejectsUnknownCartKind(t *testing.T) {
	svc := &stubService{}

	body := strings.Replace(validBody, `"kind": "discrete"`, `"kind": "bundle"`, 1)
	rec := doSettle(t, svc, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_cart_item")
	assert.Nil(t, svc.got)
}

func TestSettleIncludesGaps(t *testing.T) {
	svc := &stubService{result: settlement.Result{
		OrderID:   9,
		DisplayID: "RB-2026-0009",
		Gaps: []settlement.Gap{
			{ProductID: "pb-ghost", ProductName: "Vanished Rig", Reason: "spec not found"},
		},
	}}

	rec := doSettle(t, svc, validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spec not found")
}
