package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderwarden/internal/identity"
	"orderwarden/internal/model"
)

type tokenIdentity struct{}

func (tokenIdentity) UserID() (string, bool) { return "user-1", true }
func (tokenIdentity) Token() string          { return "session-token" }

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", identity.Static{ID: "user-1"}, 5*time.Second)
}

func TestListOrders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "user-1", r.Header.Get(identity.Header))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orders":[{"id":"a","orderId":"ETSY-1","trackingNumber":"1Z","carrier":null,"riskLevel":"red","createdAt":"2025-03-01T10:00:00Z"}]}`))
	})

	orders, err := c.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ETSY-1", orders[0].OrderID)
	assert.Equal(t, model.RiskHigh, orders[0].RiskLevel)
}

func TestCreateOrderSendsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in model.NewOrder
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, model.NewOrder{OrderID: "ETSY-2", TrackingNumber: "9400", Carrier: ""}, in)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(model.Order{ID: "new", OrderID: in.OrderID, TrackingNumber: in.TrackingNumber, Carrier: "USPS"})
	})

	o, err := c.CreateOrder(context.Background(), model.NewOrder{OrderID: "ETSY-2", TrackingNumber: "9400"})
	require.NoError(t, err)
	assert.Equal(t, "new", o.ID)
	assert.Equal(t, "USPS", o.Carrier)
}

func TestDeleteAndCheckPaths(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.EscapedPath())
		mu.Unlock()
		if r.URL.Path == "/api/orders/a b/check" {
			_ = json.NewEncoder(w).Encode(model.CheckResult{
				Order:              model.Order{ID: "a b", LastStatus: model.StatusException, RiskLevel: model.RiskHigh},
				RecommendedMessage: "Contact the carrier",
			})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteOrder(context.Background(), "a b"))
	res, err := c.CheckTracking(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, model.RiskHigh, res.Order.RiskLevel)
	assert.Equal(t, "Contact the carrier", res.RecommendedMessage)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"DELETE /api/orders/a%20b", "POST /api/orders/a%20b/check"}, seen)
}

func TestEtsyEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/etsy/status":
			_, _ = w.Write([]byte(`{"connected":true,"shopName":"PaperCraneCo"}`))
		case "/api/etsy/sync":
			_, _ = w.Write([]byte(`{"success":false,"imported":0,"error":"token expired"}`))
		case "/api/etsy/disconnect":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	})

	st, err := c.EtsyStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Connected)
	assert.Equal(t, "PaperCraneCo", st.ShopName)

	res, err := c.SyncEtsy(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "token expired", res.Error)

	require.NoError(t, c.DisconnectEtsy(context.Background()))
}

func TestEtsyAuthURL(t *testing.T) {
	c := New("http://api.local", identity.Static{ID: "user 1"}, time.Second)

	raw, err := c.EtsyAuthURL("http://localhost/dashboard")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/api/etsy/auth", u.Path)
	assert.Equal(t, "user 1", u.Query().Get("user_id"))
	assert.Equal(t, "http://localhost/dashboard", u.Query().Get("return_to"))

	_, err = New("http://api.local", identity.Anonymous, time.Second).EtsyAuthURL("")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestErrors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
		_, err := c.ListOrders(context.Background())
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		err := c.DeleteOrder(context.Background(), "x")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "boom", apiErr.Body)
	})

	t.Run("bad json", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"orders":`))
		})
		_, err := c.ListOrders(context.Background())
		assert.ErrorContains(t, err, "decode response")
	})

	t.Run("no identity sends nothing", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
		defer srv.Close()

		_, err := New(srv.URL, nil, time.Second).ListOrders(context.Background())
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.False(t, called)
	})

	t.Run("timeout", func(t *testing.T) {
		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-block:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(block)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := New(srv.URL, identity.Static{ID: "u"}, time.Minute).ListOrders(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestForwardsSessionToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		assert.Equal(t, "user-1", r.Header.Get(identity.Header))
		_, _ = w.Write([]byte(`{"orders":[]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, tokenIdentity{}, time.Second).ListOrders(context.Background())
	require.NoError(t, err)
}
