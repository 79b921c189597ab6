package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderwarden/internal/model"
	"orderwarden/internal/store"
)

var ErrEtsyNotConnected = errors.New("etsy shop not connected")

// Marketplace is the shop side of the Etsy integration.
type Marketplace interface {
	// Authorize completes the OAuth handshake for the user and returns the
	// connected shop name.
	Authorize(ctx context.Context, userID string) (string, error)
	Receipts(ctx context.Context, shop string, since *time.Time) ([]model.NewOrder, error)
}

type EtsyService struct {
	store  store.Store
	market Marketplace
	now    func() time.Time
}

func NewEtsyService(s store.Store, market Marketplace, now func() time.Time) *EtsyService {
	if now == nil {
		now = time.Now
	}
	return &EtsyService{store: s, market: market, now: now}
}

func (s *EtsyService) Status(ctx context.Context, userID string) (model.EtsyStatus, error) {
	conn, err := s.store.GetEtsyConnection(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return model.EtsyStatus{Connected: false}, nil
	}
	if err != nil {
		return model.EtsyStatus{}, fmt.Errorf("get etsy connection: %w", err)
	}
	return model.EtsyStatus{Connected: true, ShopName: conn.ShopName, LastSyncAt: conn.LastSyncAt}, nil
}

func (s *EtsyService) Connect(ctx context.Context, userID string) (string, error) {
	shop, err := s.market.Authorize(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("authorize: %w", err)
	}
	conn := store.EtsyConnection{ShopName: shop, ConnectedAt: s.now()}
	if err := s.store.SaveEtsyConnection(ctx, userID, conn); err != nil {
		return "", fmt.Errorf("save etsy connection: %w", err)
	}
	return shop, nil
}

// Sync imports receipts from the connected shop. Failures the user can act
// on are reported in the result, not as an error.
func (s *EtsyService) Sync(ctx context.Context, userID string) (model.SyncResult, error) {
	conn, err := s.store.GetEtsyConnection(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return model.SyncResult{Success: false, Error: ErrEtsyNotConnected.Error()}, nil
	}
	if err != nil {
		return model.SyncResult{}, fmt.Errorf("get etsy connection: %w", err)
	}

	receipts, err := s.market.Receipts(ctx, conn.ShopName, conn.LastSyncAt)
	if err != nil {
		return model.SyncResult{Success: false, Error: err.Error()}, nil
	}
	for i := range receipts {
		if receipts[i].Carrier == "" {
			receipts[i].Carrier = DetectCarrier(receipts[i].TrackingNumber)
		}
	}

	imported, err := s.store.ImportOrders(ctx, userID, receipts)
	if err != nil {
		return model.SyncResult{}, fmt.Errorf("import orders: %w", err)
	}

	now := s.now()
	conn.LastSyncAt = &now
	if err := s.store.SaveEtsyConnection(ctx, userID, conn); err != nil {
		return model.SyncResult{}, fmt.Errorf("save etsy connection: %w", err)
	}
	return model.SyncResult{Success: true, Imported: imported}, nil
}

func (s *EtsyService) Disconnect(ctx context.Context, userID string) error {
	if err := s.store.DeleteEtsyConnection(ctx, userID); err != nil {
		return fmt.Errorf("delete etsy connection: %w", err)
	}
	return nil
}

// FixtureMarketplace stands in for Etsy during development. Every shop has
// the same receipts, so repeated syncs import nothing new.
type FixtureMarketplace struct {
	Shop   string
	Orders []model.NewOrder
}

func NewFixtureMarketplace(shop string) *FixtureMarketplace {
	return &FixtureMarketplace{
		Shop: shop,
		Orders: []model.NewOrder{
			{OrderID: "ETSY-3108842211", TrackingNumber: "1Z999AA10123456784"},
			{OrderID: "ETSY-3108842987", TrackingNumber: "9400111899223344556677"},
			{OrderID: "ETSY-3108843150", TrackingNumber: "771234567890"},
			{OrderID: "ETSY-3108843402", TrackingNumber: "1234567890"},
		},
	}
}

func (f *FixtureMarketplace) Authorize(ctx context.Context, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.Shop, nil
}

func (f *FixtureMarketplace) Receipts(ctx context.Context, shop string, since *time.Time) ([]model.NewOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if shop != f.Shop {
		return nil, fmt.Errorf("shop %q not found", shop)
	}
	out := make([]model.NewOrder, len(f.Orders))
	copy(out, f.Orders)
	return out, nil
}
