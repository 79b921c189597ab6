package dashboard

import (
	"context"
	"errors"
	"sync"

	"orderwarden/internal/model"
)

type fakeAPI struct {
	mu sync.Mutex

	orders     []model.Order
	etsy       model.EtsyStatus
	syncResult model.SyncResult
	check      map[string]model.CheckResult

	failDelete map[string]error
	listErr    error
	etsyErr    error

	// block, when set, parks CheckTracking and ListOrders until it is closed
	// or the request context ends.
	block   chan struct{}
	entered chan struct{}

	// blockDelete parks DeleteOrder for that id the same way.
	blockDelete string

	listCalls   int
	createCalls int
	deleted     []string
}

var errNetwork = errors.New("connection reset by peer")

func (f *fakeAPI) wait(ctx context.Context) error {
	f.mu.Lock()
	block, entered := f.block, f.entered
	f.mu.Unlock()
	if block == nil {
		return nil
	}
	if entered != nil {
		entered <- struct{}{}
	}
	select {
	case <-block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAPI) ListOrders(ctx context.Context) ([]model.Order, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Order(nil), f.orders...), nil
}

func (f *fakeAPI) CreateOrder(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	o := model.Order{ID: "created-" + in.OrderID, OrderID: in.OrderID, TrackingNumber: in.TrackingNumber, Carrier: in.Carrier}
	f.orders = append(f.orders, o)
	return &o, nil
}

func (f *fakeAPI) DeleteOrder(ctx context.Context, id string) error {
	f.mu.Lock()
	parked := id == f.blockDelete
	f.mu.Unlock()
	if parked {
		if err := f.wait(ctx); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failDelete[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) CheckTracking(ctx context.Context, id string) (*model.CheckResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.check[id]
	if !ok {
		return nil, errors.New("order not found")
	}
	return &res, nil
}

func (f *fakeAPI) EtsyStatus(ctx context.Context) (*model.EtsyStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.etsyErr != nil {
		return nil, f.etsyErr
	}
	st := f.etsy
	return &st, nil
}

func (f *fakeAPI) EtsyAuthURL(returnTo string) (string, error) {
	return "http://api.local/api/etsy/auth?user_id=user-1&return_to=" + returnTo, nil
}

func (f *fakeAPI) SyncEtsy(ctx context.Context) (*model.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := f.syncResult
	if res.Success {
		for i := 0; i < res.Imported; i++ {
			f.orders = append(f.orders, model.Order{ID: "etsy-" + string(rune('a'+i))})
		}
	}
	return &res, nil
}

func (f *fakeAPI) DisconnectEtsy(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.etsy = model.EtsyStatus{}
	return nil
}
