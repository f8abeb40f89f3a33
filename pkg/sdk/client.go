package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to a cartwright API server.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// New creates a Client for the given server base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("cartwright: base URL required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("cartwright: invalid base URL: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c, nil
}

// do performs a request and decodes a JSON response into out (when non-nil).
// Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &body) == nil && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	} else {
		apiErr.Code = "internal_error"
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}

// Recommend asks the server for products matching the request.
func (c *Client) Recommend(ctx context.Context, req RecommendationRequest) (Recommendation, error) {
	var out Recommendation
	if err := c.do(ctx, http.MethodPost, "/v1/recommendations", req, &out); err != nil {
		return Recommendation{}, err
	}
	return out, nil
}

// Cart returns a handle on one cart session.
func (c *Client) Cart(cartID string) *CartService {
	return &CartService{client: c, base: "/v1/carts/" + url.PathEscape(cartID)}
}

// Usage fetches the assistant token usage report. Period is "day" or
// "month"; anything else reads as month.
func (c *Client) Usage(ctx context.Context, period string) (UsageReport, error) {
	path := "/v1/usage"
	if period != "" {
		path += "?period=" + url.QueryEscape(period)
	}
	var out UsageReport
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return UsageReport{}, err
	}
	return out, nil
}

// Health fetches the server health report. A degraded or failing server
// answers 503 but still carries the report, so the Status field conveys
// the outcome instead of an error.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthReport{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return HealthReport{}, fmt.Errorf("GET /health: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthReport{}, decodeError(resp)
	}

	var out HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return HealthReport{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
