package coupon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType is the shape of a discount as the validator reports it.
type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFlat    DiscountType = "FLAT"
)

// Validation is the validator's verdict on a coupon code. This service never
// recomputes discount logic; it only passes the verdict through.
type Validation struct {
	Valid   bool            `json:"valid"`
	Type    DiscountType    `json:"type,omitempty"`
	Value   decimal.Decimal `json:"value,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Validator checks coupon codes against the external discount service.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal, customerRef string) (Validation, error)
}

// HTTPValidator talks to the discount service over HTTP.
type HTTPValidator struct {
	baseURL string
	client  *http.Client
}

func NewHTTPValidator(baseURL string, timeout time.Duration) *HTTPValidator {
	return &HTTPValidator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (v *HTTPValidator) Validate(
	ctx context.Context,
	code string,
	subtotal decimal.Decimal,
	customerRef string,
) (Validation, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("subtotal", subtotal.String())
	q.Set("customerRef", customerRef)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		v.baseURL+"/coupons/validate?"+q.Encode(),
		nil,
	)
	if err != nil {
		return Validation{}, fmt.Errorf("build coupon request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return Validation{}, fmt.Errorf("coupon validation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Validation{}, fmt.Errorf("coupon validation: unexpected status %d", resp.StatusCode)
	}

	var out Validation
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Validation{}, fmt.Errorf("decode coupon validation: %w", err)
	}

	return out, nil
}
