// Package store persists orders and Etsy connections for the development
// order API.
package store

import (
	"context"
	"errors"
	"time"

	"orderwarden/internal/model"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrOrderExists = errors.New("order already exists")
)

// TrackingUpdate is the outcome of one carrier lookup.
type TrackingUpdate struct {
	Carrier      string
	Status       model.Status
	LastUpdateAt time.Time
	RiskLevel    model.RiskLevel
}

// OwnedOrder is an order with the user it belongs to, for background work.
type OwnedOrder struct {
	UserID string
	Order  model.Order
}

type EtsyConnection struct {
	ShopName    string
	ConnectedAt time.Time
	LastSyncAt  *time.Time
}

type Store interface {
	ListOrders(ctx context.Context, userID string) ([]model.Order, error)
	GetOrder(ctx context.Context, userID, id string) (model.Order, error)
	// CreateOrder fails with ErrOrderExists when the user already has an
	// order with the same marketplace order id.
	CreateOrder(ctx context.Context, userID string, in model.NewOrder) (model.Order, error)
	DeleteOrder(ctx context.Context, userID, id string) error
	UpdateTracking(ctx context.Context, userID, id string, u TrackingUpdate) (model.Order, error)
	// ListStale returns non-terminal orders not checked since before.
	// Never-checked orders come first, then the least recently checked.
	ListStale(ctx context.Context, before time.Time, limit int) ([]OwnedOrder, error)
	// ImportOrders inserts the orders whose marketplace id the user does not
	// have yet and reports how many were inserted.
	ImportOrders(ctx context.Context, userID string, orders []model.NewOrder) (int, error)

	GetEtsyConnection(ctx context.Context, userID string) (EtsyConnection, error)
	SaveEtsyConnection(ctx context.Context, userID string, conn EtsyConnection) error
	DeleteEtsyConnection(ctx context.Context, userID string) error
}
