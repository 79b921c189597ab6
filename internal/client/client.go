// Package client talks to the remote order API. Every request carries the
// caller's identity; a missing identity fails before anything is sent.
package client

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

	"orderwarden/internal/identity"
	"orderwarden/internal/model"
)

var ErrUnauthenticated = errors.New("not signed in")

// APIError is a non-2xx response other than an auth failure.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status: %d, body: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL  string
	identity identity.Provider
	client   *http.Client
}

func New(baseURL string, id identity.Provider, timeout time.Duration) *Client {
	if id == nil {
		id = identity.Anonymous
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		identity: id,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	var res model.OrderList
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &res); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return res.Orders, nil
}

func (c *Client) CreateOrder(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	var res model.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", in, &res); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &res, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/orders/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	return nil
}

func (c *Client) CheckTracking(ctx context.Context, id string) (*model.CheckResult, error) {
	var res model.CheckResult
	if err := c.do(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(id)+"/check", nil, &res); err != nil {
		return nil, fmt.Errorf("check tracking %s: %w", id, err)
	}
	return &res, nil
}

func (c *Client) EtsyStatus(ctx context.Context) (*model.EtsyStatus, error) {
	var res model.EtsyStatus
	if err := c.do(ctx, http.MethodGet, "/api/etsy/status", nil, &res); err != nil {
		return nil, fmt.Errorf("etsy status: %w", err)
	}
	return &res, nil
}

// EtsyAuthURL builds the browser destination that starts the Etsy connect
// flow. The backend sends the browser back to returnTo with one-time params.
// A browser cannot send headers, so the token rides in the query.
func (c *Client) EtsyAuthURL(returnTo string) (string, error) {
	userID, ok := c.identity.UserID()
	if !ok {
		return "", ErrUnauthenticated
	}
	q := url.Values{}
	q.Set("user_id", userID)
	if token := c.identity.Token(); token != "" {
		q.Set("token", token)
	}
	if returnTo != "" {
		q.Set("return_to", returnTo)
	}
	return c.baseURL + "/api/etsy/auth?" + q.Encode(), nil
}

// SyncEtsy returns the server's result as is. A result with Success=false is
// not an error at this layer.
func (c *Client) SyncEtsy(ctx context.Context) (*model.SyncResult, error) {
	var res model.SyncResult
	if err := c.do(ctx, http.MethodPost, "/api/etsy/sync", nil, &res); err != nil {
		return nil, fmt.Errorf("etsy sync: %w", err)
	}
	return &res, nil
}

func (c *Client) DisconnectEtsy(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/etsy/disconnect", nil, nil); err != nil {
		return fmt.Errorf("etsy disconnect: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	userID, ok := c.identity.UserID()
	if !ok {
		return ErrUnauthenticated
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(identity.Header, userID)
	if token := c.identity.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthenticated
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
