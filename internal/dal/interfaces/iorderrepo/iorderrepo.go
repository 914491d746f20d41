package iorderrepo

import (
	"context"

	"github.com/rigbuilders/settlement-svc/internal/service/models/order"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	// Insert persists a new order and returns it with its storage id.
	// Returns order.ErrDuplicatePaymentRef when the payment reference has
	// already been settled.
	Insert(ctx context.Context, o order.Order) (order.Order, error)

	// GetByPaymentRef returns the order settled against the given gateway
	// payment reference, or nil when none exists.
	GetByPaymentRef(ctx context.Context, paymentRef string) (*order.Order, error)

	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
