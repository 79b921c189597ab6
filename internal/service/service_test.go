package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderwarden/internal/model"
	"orderwarden/internal/store"
)

var testNow = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

type stubCarrier struct {
	info  TrackingInfo
	err   error
	calls []string
}

func (c *stubCarrier) Track(_ context.Context, carrier, number string) (TrackingInfo, error) {
	c.calls = append(c.calls, carrier+":"+number)
	return c.info, c.err
}

func TestOrderServiceCreate(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(store.NewMemoryStore(fixedNow))

	o, err := svc.Create(ctx, "u1", model.NewOrder{OrderID: " A-1 ", TrackingNumber: "1Z999AA10123456784"})
	require.NoError(t, err)
	assert.Equal(t, "A-1", o.OrderID)
	assert.Equal(t, CarrierUPS, o.Carrier)

	o, err = svc.Create(ctx, "u1", model.NewOrder{OrderID: "A-2", TrackingNumber: "1234567890", Carrier: " FedEx "})
	require.NoError(t, err)
	assert.Equal(t, "fedex", o.Carrier, "explicit carrier wins over detection")

	_, err = svc.Create(ctx, "u1", model.NewOrder{OrderID: "A-1", TrackingNumber: "x"})
	assert.ErrorIs(t, err, store.ErrOrderExists)

	_, err = svc.Create(ctx, "u1", model.NewOrder{OrderID: "A-3"})
	require.ErrorIs(t, err, ErrInvalidOrder)
	assert.Contains(t, err.Error(), "TrackingNumber is required")

	orders, err := svc.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestOrderServiceDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(store.NewMemoryStore(fixedNow))

	o, err := svc.Create(ctx, "u1", model.NewOrder{OrderID: "A-1", TrackingNumber: "1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", o.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", o.ID), store.ErrNotFound)
}

func TestTrackingServiceCheck(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(fixedNow)
	carrier := &stubCarrier{info: TrackingInfo{Status: model.StatusInTransit, EventAt: testNow.Add(-8 * day)}}
	svc := NewTrackingService(st, carrier, fixedNow)

	o, err := st.CreateOrder(ctx, "u1", model.NewOrder{OrderID: "A-1", TrackingNumber: "1234567890"})
	require.NoError(t, err)

	res, err := svc.Check(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"dhl:1234567890"}, carrier.calls)
	assert.Equal(t, model.StatusInTransit, res.Order.LastStatus)
	assert.Equal(t, model.RiskHigh, res.Order.RiskLevel)
	assert.Equal(t, CarrierDHL, res.Order.Carrier)
	assert.NotEmpty(t, res.RecommendedMessage)

	_, err = svc.Check(ctx, "u2", o.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTrackingServiceNotRegistered(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(fixedNow)
	svc := NewTrackingService(st, &stubCarrier{err: ErrNotRegistered}, fixedNow)

	o, err := st.CreateOrder(ctx, "u1", model.NewOrder{OrderID: "A-1", TrackingNumber: "1Z1", Carrier: "ups"})
	require.NoError(t, err)

	res, err := svc.Check(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnknown, res.Order.LastStatus)
	assert.Equal(t, model.RiskAttention, res.Order.RiskLevel)
}

func TestTrackingServiceCarrierFailure(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(fixedNow)
	svc := NewTrackingService(st, &stubCarrier{err: errors.New("carrier down")}, fixedNow)

	o, err := st.CreateOrder(ctx, "u1", model.NewOrder{OrderID: "A-1", TrackingNumber: "1Z1", Carrier: "ups"})
	require.NoError(t, err)

	_, err = svc.Check(ctx, "u1", o.ID)
	require.Error(t, err)

	got, err := st.GetOrder(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastUpdateAt, "failed lookups leave the order untouched")
}

func TestEtsyServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(fixedNow)
	market := NewFixtureMarketplace("KnotsAndBolts")
	svc := NewEtsyService(st, market, fixedNow)

	status, err := svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, status.Connected)

	res, err := svc.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrEtsyNotConnected.Error(), res.Error)

	shop, err := svc.Connect(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "KnotsAndBolts", shop)

	res, err = svc.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, len(market.Orders), res.Imported)

	res, err = svc.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Zero(t, res.Imported, "second sync skips known order ids")

	status, err = svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, "KnotsAndBolts", status.ShopName)
	require.NotNil(t, status.LastSyncAt)
	assert.True(t, testNow.Equal(*status.LastSyncAt))

	orders, err := st.ListOrders(ctx, "u1")
	require.NoError(t, err)
	for _, o := range orders {
		assert.NotEqual(t, CarrierUnknown, o.Carrier, o.TrackingNumber)
	}

	require.NoError(t, svc.Disconnect(ctx, "u1"))
	status, err = svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, status.Connected)
}

func TestEtsyServiceSyncMarketplaceFailure(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(fixedNow)
	require.NoError(t, st.SaveEtsyConnection(ctx, "u1", store.EtsyConnection{ShopName: "Other", ConnectedAt: testNow}))

	svc := NewEtsyService(st, NewFixtureMarketplace("KnotsAndBolts"), fixedNow)
	res, err := svc.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Other")
}
