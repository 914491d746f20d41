package settleorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rigbuilders/settlement-svc/internal/service/models/cartitem"
	"github.com/rigbuilders/settlement-svc/internal/service/models/settlement"
)

// service is an interface for the service layer.
type service interface {
	Settle(ctx context.Context, req settlement.Request) (settlement.Result, error)
}

type settleRequest struct {
	OrderReferenceID   string            `json:"orderReferenceId"`
	PaymentReferenceID string            `json:"paymentReferenceId"`
	ClaimedSignature   string            `json:"claimedSignature"`
	CartItems          []cartItemRequest `json:"cartItems"`
	CustomerRef        string            `json:"customerRef"`
	TotalAmount        decimal.Decimal   `json:"totalAmount"`
	ShippingInfo       json.RawMessage   `json:"shippingInfo"`
}

type cartItemRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Kind     string `json:"kind"`
}

type settleResponse struct {
	Status    string           `json:"status"`
	Reason    string           `json:"reason,omitempty"`
	OrderID   int64            `json:"orderId,omitempty"`
	DisplayID string           `json:"displayId,omitempty"`
	Gaps      []settlement.Gap `json:"gaps,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error writing settle response", "error", err)
	}
}

func (r *settleRequest) toModel() (settlement.Request, error) {
	items := make([]cartitem.CartItem, 0, len(r.CartItems))
	for _, item := range r.CartItems {
		kind, err := cartitem.ParseKind(item.Kind)
		if err != nil {
			return settlement.Request{}, err
		}
		items = append(items, cartitem.CartItem{
			ID:       item.ID,
			Name:     item.Name,
			Category: item.Category,
			Kind:     kind,
		})
	}

	return settlement.Request{
		Claim: settlement.PaymentClaim{
			OrderReferenceID:   r.OrderReferenceID,
			PaymentReferenceID: r.PaymentReferenceID,
			ClaimedSignature:   r.ClaimedSignature,
		},
		CartItems:    items,
		CustomerRef:  r.CustomerRef,
		TotalAmount:  r.TotalAmount,
		ShippingInfo: r.ShippingInfo,
	}, nil
}

// Settle handles the settlement webhook from the payment gateway.
func Settle(w http.ResponseWriter, r *http.Request, service service) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, settleResponse{
			Status: "error",
			Reason: "invalid_json",
		})
		slog.Error("Error decoding settle request", "error", err)

		return
	}

	if req.OrderReferenceID == "" || req.PaymentReferenceID == "" || req.ClaimedSignature == "" {
		writeJSON(w, http.StatusBadRequest, settleResponse{
			Status: "error",
			Reason: "missing_payment_claim",
		})

		return
	}

	model, err := req.toModel()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, settleResponse{
			Status: "error",
			Reason: "invalid_cart_item",
		})
		slog.Error("Error converting settle request", "error", err)

		return
	}

	result, err := service.Settle(r.Context(), model)
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrInvalidSignature):
			writeJSON(w, http.StatusBadRequest, settleResponse{
				Status: "rejected",
				Reason: "invalid_signature",
			})
		case errors.Is(err, settlement.ErrProcurementPersist):
			writeJSON(w, http.StatusInternalServerError, settleResponse{
				Status: "error",
				Reason: "procurement_persist_failed",
			})
			slog.Error("Procurement batch failed after order creation", "error", err)
		default:
			writeJSON(w, http.StatusInternalServerError, settleResponse{
				Status: "error",
				Reason: "internal_error",
			})
			slog.Error("Error settling order", "error", err)
		}

		return
	}

	writeJSON(w, http.StatusOK, settleResponse{
		Status:    "ok",
		OrderID:   result.OrderID,
		DisplayID: result.DisplayID,
		Gaps:      result.Gaps,
	})
}
