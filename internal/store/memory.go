package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"orderwarden/internal/model"
)

type MemoryStore struct {
	mu     sync.RWMutex
	now    func() time.Time
	orders map[string]memoryOrder
	etsy   map[string]EtsyConnection
}

type memoryOrder struct {
	userID string
	order  model.Order
}

func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		now:    now,
		orders: make(map[string]memoryOrder),
		etsy:   make(map[string]EtsyConnection),
	}
}

func (s *MemoryStore) ListOrders(ctx context.Context, userID string) ([]model.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Order, 0)
	for _, o := range s.orders {
		if o.userID == userID {
			out = append(out, o.order)
		}
	}
	slices.SortFunc(out, func(a, b model.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, userID, id string) (model.Order, error) {
	if err := ctx.Err(); err != nil {
		return model.Order{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok || o.userID != userID {
		return model.Order{}, ErrNotFound
	}
	return o.order, nil
}

func (s *MemoryStore) CreateOrder(ctx context.Context, userID string, in model.NewOrder) (model.Order, error) {
	if err := ctx.Err(); err != nil {
		return model.Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasOrderIDLocked(userID, in.OrderID) {
		return model.Order{}, ErrOrderExists
	}
	return s.insertLocked(userID, in), nil
}

func (s *MemoryStore) DeleteOrder(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok || o.userID != userID {
		return ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *MemoryStore) UpdateTracking(ctx context.Context, userID, id string, u TrackingUpdate) (model.Order, error) {
	if err := ctx.Err(); err != nil {
		return model.Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok || o.userID != userID {
		return model.Order{}, ErrNotFound
	}
	at := u.LastUpdateAt
	if u.Carrier != "" {
		o.order.Carrier = u.Carrier
	}
	o.order.LastStatus = u.Status
	o.order.LastUpdateAt = &at
	o.order.RiskLevel = u.RiskLevel
	o.order.UpdatedAt = s.now()
	s.orders[id] = o
	return o.order, nil
}

func (s *MemoryStore) ListStale(ctx context.Context, before time.Time, limit int) ([]OwnedOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []OwnedOrder
	for _, o := range s.orders {
		if o.order.LastStatus.Terminal() {
			continue
		}
		if o.order.LastUpdateAt != nil && !o.order.UpdatedAt.Before(before) {
			continue
		}
		out = append(out, OwnedOrder{UserID: o.userID, Order: o.order})
	}
	slices.SortFunc(out, func(a, b OwnedOrder) int {
		an, bn := a.Order.LastUpdateAt == nil, b.Order.LastUpdateAt == nil
		switch {
		case an && bn:
			return a.Order.CreatedAt.Compare(b.Order.CreatedAt)
		case an:
			return -1
		case bn:
			return 1
		}
		return a.Order.UpdatedAt.Compare(b.Order.UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ImportOrders(ctx context.Context, userID string, orders []model.NewOrder) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	imported := 0
	for _, in := range orders {
		if s.hasOrderIDLocked(userID, in.OrderID) {
			continue
		}
		s.insertLocked(userID, in)
		imported++
	}
	return imported, nil
}

func (s *MemoryStore) GetEtsyConnection(ctx context.Context, userID string) (EtsyConnection, error) {
	if err := ctx.Err(); err != nil {
		return EtsyConnection{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.etsy[userID]
	if !ok {
		return EtsyConnection{}, ErrNotFound
	}
	return conn, nil
}

func (s *MemoryStore) SaveEtsyConnection(ctx context.Context, userID string, conn EtsyConnection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.etsy[userID] = conn
	return nil
}

func (s *MemoryStore) DeleteEtsyConnection(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.etsy, userID)
	return nil
}

func (s *MemoryStore) hasOrderIDLocked(userID, orderID string) bool {
	for _, o := range s.orders {
		if o.userID == userID && o.order.OrderID == orderID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) insertLocked(userID string, in model.NewOrder) model.Order {
	now := s.now()
	o := model.Order{
		ID:             uuid.NewString(),
		OrderID:        in.OrderID,
		TrackingNumber: in.TrackingNumber,
		Carrier:        in.Carrier,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.orders[o.ID] = memoryOrder{userID: userID, order: o}
	return o
}
