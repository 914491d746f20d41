package listorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/rigbuilders/settlement-svc/internal/service/models/order"
)

type service interface {
	GetOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
}

type queryOrdersRequest struct {
	Ids          []int64  `schema:"ids,omitempty"`
	CustomerRefs []string `schema:"customerRefs,omitempty"`
	PaymentRef   string   `schema:"paymentRef,omitempty"`
	Limit        int      `schema:"limit,omitempty"`
	Offset       int      `schema:"offset,omitempty"`
}

func (q *queryOrdersRequest) toModel() order.QueryOrdersModel {
	return order.QueryOrdersModel{
		Ids:          q.Ids,
		CustomerRefs: q.CustomerRefs,
		PaymentRef:   q.PaymentRef,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
}

// ListOrders handles the admin order listing.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryOrdersRequest{}
	err := decoder.Decode(query, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	orders, err := service.GetOrders(r.Context(), query.toModel())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting orders", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(orders); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
