package validatecoupon

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rigbuilders/settlement-svc/internal/coupon"
)

// ValidateCoupon proxies a coupon check to the external discount service.
// The verdict passes through untouched; this service never recomputes
// discount logic.
func ValidateCoupon(w http.ResponseWriter, r *http.Request, validator coupon.Validator) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing coupon code", http.StatusBadRequest)

		return
	}

	subtotal := decimal.Zero
	if raw := r.URL.Query().Get("subtotal"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			http.Error(w, "invalid subtotal", http.StatusBadRequest)

			return
		}
		subtotal = parsed
	}

	verdict, err := validator.Validate(r.Context(), code, subtotal, r.URL.Query().Get("customerRef"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		slog.Error("Error validating coupon", "error", err, "code", code)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(verdict); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
