package sentiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketPulse/internal/domain/errs"
	xhttp "MarketPulse/pkg/http"
)

// HTTPServiceBase centralizes client construction and JSON POST handling for LLM providers.
type HTTPServiceBase struct {
	name    string
	baseURL string
	client  *xhttp.Client
}

// NewHTTPServiceBase builds an HTTP client with timeout and base URL.
func NewHTTPServiceBase(name, baseURL string, timeout time.Duration) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &HTTPServiceBase{
		name:    name,
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// PostJSON posts payload to path under baseURL and decodes JSON into dest.
// Non-2xx responses come back as *errs.UpstreamError.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, query map[string][]string, headers map[string]string, payload, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("%s http client not initialized", b.name)
	}
	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodPost,
		URL:         b.baseURL + path,
		Headers:     h,
		QueryParams: query,
		Body:        payload,
	}, dest)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			return &errs.UpstreamError{Op: b.name, Status: se.Status, Body: se.Body}
		}
		return fmt.Errorf("%s post %s: %w", b.name, path, err)
	}
	return nil
}
