package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rigbuilders/settlement-svc/internal/service/models/prebuilt"
)

// ErrSpecNotFound means the catalog has no build sheet for the product,
// either because the entry was deleted or never was a pre-built.
var ErrSpecNotFound = errors.New("pre-built spec not found")

// Client reads pre-built specifications from the catalog service.
type Client interface {
	GetSpec(ctx context.Context, productID string) (*prebuilt.Spec, error)
}

// HTTPClient talks to the catalog service over HTTP with a bounded timeout.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetSpec fetches the build sheet for a pre-built product.
func (c *HTTPClient) GetSpec(ctx context.Context, productID string) (*prebuilt.Spec, error) {
	u := fmt.Sprintf("%s/products/%s/spec", c.baseURL, url.PathEscape(productID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrSpecNotFound
	default:
		return nil, fmt.Errorf("catalog lookup: unexpected status %d", resp.StatusCode)
	}

	var spec prebuilt.Spec
	if err := json.NewDecoder(resp.Body).Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode catalog spec: %w", err)
	}

	return &spec, nil
}
