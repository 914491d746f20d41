package order

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the fulfillment status of an order.
type Status string

const (
	StatusPaymentReceived Status = "payment_received"
	StatusProcessing      Status = "processing"
	StatusShipped         Status = "shipped"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
)

// PaymentStatus is the settlement status of the payment behind an order.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusFailed  PaymentStatus = "failed"
)

var (
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")

	// ErrDuplicatePaymentRef means an order for this gateway payment
	// reference already exists; the caller should reuse it.
	ErrDuplicatePaymentRef = errors.New("payment reference already settled")

	// ErrNotFound means no order exists for the requested id.
	ErrNotFound = errors.New("order not found")
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPaymentReceived, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

func (s PaymentStatus) String() string {
	return string(s)
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusPaid, PaymentStatusPending, PaymentStatusFailed:
		return PaymentStatus(s), nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}

// Order represents one commissioned purchase. CustomerRef is nil for guest
// checkout. PaymentRef is the gateway payment token the order was settled
// against; it carries a uniqueness constraint so a retried settlement can
// never mint a second order for the same payment.
type Order struct {
	ID            int64           `json:"id"`
	DisplayID     string          `json:"displayId"`
	InvoiceNo     string          `json:"invoiceNo"`
	CustomerRef   *string         `json:"customerRef"`
	PaymentRef    string          `json:"paymentRef"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	ShippingInfo  json.RawMessage `json:"shippingInfo"`
	Note          string          `json:"note"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
