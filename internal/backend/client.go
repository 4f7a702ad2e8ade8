package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pos-terminal/internal/model"

	"github.com/rs/zerolog"
)

// Client is a thin wrapper around the order backend's REST API. Every
// response uses the `{success, data}` envelope; a transport error or a 5xx
// is a connectivity failure, a 4xx (or an explicit success=false) is a
// definitive rejection carried as *model.RejectionError.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base URL %q: %w", baseURL, err)
	}

	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "backend-client").Logger(),
	}, nil
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Layouts fetches the menu categories for a location.
func (c *Client) Layouts(ctx context.Context, locationID int) ([]model.MenuCategory, error) {
	q := url.Values{"locationId": {strconv.Itoa(locationID)}}

	var categories []model.MenuCategory
	if err := c.get(ctx, "/layouts", q, &categories); err != nil {
		return nil, fmt.Errorf("fetch layouts: %w", err)
	}

	return categories, nil
}

// LayoutItems fetches the item assignments for one category at one location.
func (c *Client) LayoutItems(ctx context.Context, layoutID, locationID int) ([]model.MenuItemAssignment, error) {
	q := url.Values{
		"layoutId":   {strconv.Itoa(layoutID)},
		"locationId": {strconv.Itoa(locationID)},
	}

	var assignments []model.MenuItemAssignment
	if err := c.get(ctx, "/layout-pos-terminal", q, &assignments); err != nil {
		return nil, fmt.Errorf("fetch layout items: %w", err)
	}

	// The item body does not carry the layout id; stamp it from the query.
	for i := range assignments {
		assignments[i].CategoryID = layoutID
	}

	return assignments, nil
}

// CreateOrder submits an order directly from checkout.
func (c *Client) CreateOrder(ctx context.Context, payload *model.OrderPayload) (*model.OrderAck, error) {
	var ack model.OrderAck
	if err := c.post(ctx, "/orders", payload, &ack); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	c.logger.Debug().
		Str("offline_uuid", payload.OfflineUUID).
		Str("order_number", ack.OrderNumber).
		Msg("order accepted by backend")

	return &ack, nil
}

// SyncOrder resubmits a queued order. The backend deduplicates on the
// payload's offline UUID, so a retry after a false failure is harmless.
func (c *Client) SyncOrder(ctx context.Context, payload *model.OrderPayload) (*model.OrderAck, error) {
	var ack model.OrderAck
	if err := c.post(ctx, "/orders/sync", payload, &ack); err != nil {
		return nil, fmt.Errorf("sync order: %w", err)
	}

	return &ack, nil
}

// Health issues the liveness probe. Callers bound it with their own probe
// timeout via ctx; the client's default timeout still applies as a ceiling.
func (c *Client) Health(ctx context.Context) error {
	if err := c.get(ctx, "/system/health", nil, nil); err != nil {
		return fmt.Errorf("health probe: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	rawQuery := ""
	if query != nil {
		rawQuery = query.Encode()
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, rawQuery, nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, "", bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path, rawQuery string, body io.Reader) (*http.Request, error) {
	rel := &url.URL{Path: path, RawQuery: rawQuery}
	u := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	return req, nil
}

// do executes the request and decodes the envelope. out may be nil when the
// caller only cares about success/failure (the health probe).
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Msg("backend request failed")
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &model.RejectionError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%s %s: backend returned status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	// The health probe has no body semantics beyond 2xx.
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response envelope: %w", err)
	}

	if !env.Success {
		return &model.RejectionError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}

	return nil
}
