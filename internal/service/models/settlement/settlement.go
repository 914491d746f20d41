package settlement

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/rigbuilders/settlement-svc/internal/service/models/cartitem"
)

var (
	// ErrInvalidSignature means the claimed gateway signature did not match.
	// Treated as a security event: the whole call aborts with zero writes.
	ErrInvalidSignature = errors.New("payment signature mismatch")

	// ErrProcurementPersist means the order was durably created but the
	// procurement batch could not be written. Surfaced distinctly so
	// operators can re-run procurement generation against the order.
	ErrProcurementPersist = errors.New("procurement batch persist failed")
)

// PaymentClaim is the gateway's assertion that a payment completed.
type PaymentClaim struct {
	OrderReferenceID   string `json:"orderReferenceId"`
	PaymentReferenceID string `json:"paymentReferenceId"`
	ClaimedSignature   string `json:"claimedSignature"`
}

// Request is everything a settlement call needs: the claim to verify plus
// the cart snapshot to explode.
type Request struct {
	Claim        PaymentClaim
	CartItems    []cartitem.CartItem
	CustomerRef  string
	TotalAmount  decimal.Decimal
	ShippingInfo json.RawMessage
}

// Gap is a non-fatal reconciliation gap: a cart item whose procurement rows
// could not be generated. The order still settles; the gap is an operational
// signal, not a customer-facing error.
type Gap struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Reason      string `json:"reason"`
}

// Result is returned on successful settlement. Reused is true when the call
// was an idempotent retry that matched an already-settled payment reference.
type Result struct {
	OrderID   int64  `json:"orderId"`
	DisplayID string `json:"displayId"`
	Gaps      []Gap  `json:"gaps,omitempty"`
	Reused    bool   `json:"reused,omitempty"`
}
