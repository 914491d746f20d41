package orderstatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rigbuilders/settlement-svc/internal/service/models/order"
)

type service interface {
	GetOrderStatus(ctx context.Context, orderID int64) (order.Status, error)
}

type statusResponse struct {
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
}

// GetOrderStatus handles the order status polling endpoint.
func GetOrderStatus(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)

		return
	}

	status, err := service.GetOrderStatus(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)

			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting order status", "error", err, "order_id", orderID)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statusResponse{OrderID: orderID, Status: status.String()}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
