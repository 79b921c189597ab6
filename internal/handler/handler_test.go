package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderwarden/internal/client"
	"orderwarden/internal/identity"
	"orderwarden/internal/model"
	"orderwarden/internal/service"
	"orderwarden/internal/store"
)

const dashboardURL = "http://localhost:3000/dashboard"

func newTestRouter(t *testing.T) (http.Handler, *store.MemoryStore) {
	t.Helper()
	return newTestRouterWithSecret(t, "")
}

func newTestRouterWithSecret(t *testing.T, jwtSecret string) (http.Handler, *store.MemoryStore) {
	t.Helper()
	now := func() time.Time { return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC) }
	st := store.NewMemoryStore(now)
	svc := Services{
		Orders:   service.NewOrderService(st),
		Tracking: service.NewTrackingService(st, service.NewSimulator(now), now),
		Etsy:     service.NewEtsyService(st, service.NewFixtureMarketplace("KnotsAndBolts"), now),
	}
	return NewRouter(svc, jwtSecret, dashboardURL), st
}

func do(t *testing.T, h http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if userID != "" {
		req.Header.Set(identity.Header, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestOrdersRequireIdentity(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListOrdersEmpty(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/orders", "u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"orders":[]}`, rec.Body.String())
}

func TestCreateOrderResponses(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/orders", "u1", `{"orderId":"A-1","trackingNumber":"1Z999AA10123456784"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"carrier":"ups"`)

	rec = do(t, h, http.MethodPost, "/api/orders", "u1", `{"orderId":"A-1","trackingNumber":"1Z1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/orders", "u1", `{"orderId":"A-2"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/orders", "u1", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAndCheckUnknownOrder(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodDelete, "/api/orders/missing", "u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/orders/missing/check", "u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrdersAreScopedToUser(t *testing.T) {
	h, st := newTestRouter(t)

	o, err := st.CreateOrder(context.Background(), "u1", model.NewOrder{OrderID: "A-1", TrackingNumber: "1"})
	require.NoError(t, err)

	rec := do(t, h, http.MethodDelete, "/api/orders/"+o.ID, "u2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/orders", "u2", "")
	assert.JSONEq(t, `{"orders":[]}`, rec.Body.String())
}

func TestEtsyAuthRedirects(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/etsy/auth?user_id=u1&return_to="+url.QueryEscape("http://localhost:3000/dashboard/orders?tab=open"), "", "")
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:3000", loc.Host)
	assert.Equal(t, "/dashboard/orders", loc.Path)
	assert.Equal(t, "open", loc.Query().Get("tab"))
	assert.Equal(t, "true", loc.Query().Get("etsy_connected"))
	assert.Equal(t, "KnotsAndBolts", loc.Query().Get("shop"))

	rec = do(t, h, http.MethodGet, "/api/etsy/auth?user_id=u1&return_to=javascript:alert(1)", "", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), dashboardURL+"?"))

	rec = do(t, h, http.MethodGet, "/api/etsy/auth", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEtsyAuthRejectsForeignReturnTo(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, returnTo := range []string{
		"http://evil.test/dashboard",
		"https://localhost:3000/dashboard",
		"//evil.test/dashboard",
		"http://localhost:3001/dashboard",
	} {
		rec := do(t, h, http.MethodGet, "/api/etsy/auth?user_id=u1&return_to="+url.QueryEscape(returnTo), "", "")
		require.Equal(t, http.StatusFound, rec.Code, returnTo)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), dashboardURL+"?"), returnTo)
	}
}

func TestEtsyAuthRequiresTokenWithSecret(t *testing.T) {
	const secret = "test-secret"
	h, st := newTestRouterWithSecret(t, secret)

	rec := do(t, h, http.MethodGet, "/api/etsy/auth?user_id=u1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/etsy/auth?user_id=u1&token=garbage", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := sign(t, secret, jwt.MapClaims{"sub": "u2", "exp": time.Now().Add(time.Hour).Unix()})
	rec = do(t, h, http.MethodGet, "/api/etsy/auth?user_id=u1&token="+url.QueryEscape(other), "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, err := st.GetEtsyConnection(context.Background(), "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	own := sign(t, secret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	rec = do(t, h, http.MethodGet, "/api/etsy/auth?user_id=u1&token="+url.QueryEscape(own), "", "")
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "true", loc.Query().Get("etsy_connected"))
}

func TestClientEtsyAuthURLCarriesToken(t *testing.T) {
	const secret = "test-secret"
	h, _ := newTestRouterWithSecret(t, secret)
	srv := httptest.NewServer(h)
	defer srv.Close()

	token := sign(t, secret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	c := client.New(srv.URL, identity.NewSession("u1", token), 5*time.Second)

	authURL, err := c.EtsyAuthURL(dashboardURL)
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, token, u.Query().Get("token"))

	noFollow := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := noFollow.Get(authURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	status, err := c.EtsyStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Connected)
}

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// The dashboard client and the handlers agree on the wire format.
func TestClientRoundTrip(t *testing.T) {
	h, _ := newTestRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx := context.Background()
	c := client.New(srv.URL, identity.Static{ID: "u1"}, 5*time.Second)

	created, err := c.CreateOrder(ctx, model.NewOrder{OrderID: "A-1", TrackingNumber: "1234567890"})
	require.NoError(t, err)
	assert.Equal(t, "dhl", created.Carrier)

	_, err = c.CreateOrder(ctx, model.NewOrder{OrderID: "A-1", TrackingNumber: "1234567890"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

	checked, err := c.CheckTracking(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, checked.Order.ID)
	assert.NotNil(t, checked.Order.LastUpdateAt)
	assert.True(t, checked.Order.RiskLevel.Known())

	status, err := c.EtsyStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.Connected)

	res, err := c.SyncEtsy(ctx)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)

	authURL, err := c.EtsyAuthURL(dashboardURL)
	require.NoError(t, err)
	noFollow := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := noFollow.Get(authURL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	res, err = c.SyncEtsy(ctx)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 4, res.Imported)

	orders, err := c.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 5)

	require.NoError(t, c.DeleteOrder(ctx, created.ID))
	require.NoError(t, c.DisconnectEtsy(ctx))

	status, err = c.EtsyStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.Connected)

	anon := client.New(srv.URL, identity.Anonymous, time.Second)
	_, err = anon.ListOrders(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthenticated)
}
