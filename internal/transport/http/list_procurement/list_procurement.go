package listprocurement

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rigbuilders/settlement-svc/internal/service/models/procurementitem"
)

type service interface {
	GetProcurementItems(ctx context.Context, orderID int64) ([]procurementitem.ProcurementItem, error)
}

// ListProcurement handles the per-order procurement listing.
func ListProcurement(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)

		return
	}

	items, err := service.GetProcurementItems(r.Context(), orderID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting procurement items", "error", err, "order_id", orderID)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(items); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
