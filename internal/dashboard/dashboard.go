// Package dashboard is the controller behind the order dashboard. It owns
// the view model, runs API calls with timeouts, guards against re-entrant
// actions and turns outcomes into notifications.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"orderwarden/internal/identity"
	"orderwarden/internal/model"
	"orderwarden/internal/navigation"
	"orderwarden/internal/notify"
	"orderwarden/internal/viewmodel"
)

// OrderAPI is the remote order service as the dashboard uses it.
type OrderAPI interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
	CreateOrder(ctx context.Context, in model.NewOrder) (*model.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	CheckTracking(ctx context.Context, id string) (*model.CheckResult, error)
	EtsyStatus(ctx context.Context) (*model.EtsyStatus, error)
	EtsyAuthURL(returnTo string) (string, error)
	SyncEtsy(ctx context.Context) (*model.SyncResult, error)
	DisconnectEtsy(ctx context.Context) error
}

const DefaultRequestTimeout = 15 * time.Second

type Config struct {
	// RequestTimeout bounds every API call. Zero uses DefaultRequestTimeout.
	RequestTimeout time.Duration
	// SignInURL is where an unauthenticated user is sent.
	SignInURL string
	// ReturnURL is where the Etsy connect flow sends the user back.
	ReturnURL string
	Logger    *slog.Logger
	Now       func() time.Time
}

type Dashboard struct {
	api   OrderAPI
	id    identity.Provider
	nav   navigation.Navigator
	notes *notify.Center
	cfg   Config
	log   *slog.Logger

	refresh singleflight.Group

	mu      sync.Mutex
	vm      *viewmodel.ViewModel
	etsy    model.EtsyStatus
	user    string
	loaded  bool
	pending map[string]struct{}
}

func New(api OrderAPI, id identity.Provider, nav navigation.Navigator, notes *notify.Center, cfg Config) *Dashboard {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if id == nil {
		id = identity.Anonymous
	}
	if notes == nil {
		notes = notify.New(0, nil)
	}
	return &Dashboard{
		api:     api,
		id:      id,
		nav:     nav,
		notes:   notes,
		cfg:     cfg,
		log:     cfg.Logger,
		vm:      viewmodel.New(viewmodel.WithClock(cfg.Now)),
		pending: make(map[string]struct{}),
	}
}

func (d *Dashboard) Notifications() *notify.Center {
	return d.notes
}

// Load runs on start: it checks identity, consumes the one-time landing
// params, and fetches orders and the Etsy connection.
func (d *Dashboard) Load(ctx context.Context) error {
	if _, ok := d.id.UserID(); !ok {
		d.signIn()
		return ErrUnauthenticated
	}

	d.consumeParams()

	if err := d.Refresh(ctx); err != nil {
		return err
	}
	if _, err := d.RefreshEtsy(ctx); err != nil && errors.Is(err, ErrUnauthenticated) {
		return err
	}
	return nil
}

func (d *Dashboard) consumeParams() {
	if d.nav == nil {
		return
	}
	p := d.nav.ReadOneTimeParams()
	if p.Empty() {
		return
	}
	switch {
	case p.EtsyError != "":
		d.notes.Error("Etsy connection failed: " + p.EtsyError)
	case p.EtsyConnected:
		shop := p.Shop
		if shop == "" {
			shop = "your shop"
		}
		d.notes.Success("Connected to Etsy shop " + shop)
	}
	d.nav.ClearParams()
}

// Refresh replaces the order collection wholesale. Calls made while a
// refresh is already running share its result.
func (d *Dashboard) Refresh(ctx context.Context) error {
	_, err, _ := d.refresh.Do("orders", func() (any, error) {
		userID, ok := d.id.UserID()
		if !ok {
			d.signIn()
			return nil, ErrUnauthenticated
		}

		ctx, cancel := d.withTimeout(ctx)
		defer cancel()

		orders, err := d.api.ListOrders(ctx)
		if err != nil {
			return nil, d.fail("Loading orders", err)
		}

		d.mu.Lock()
		if d.loaded && d.user != userID {
			d.vm.ClearSelection()
		}
		d.vm.SetOrders(orders)
		d.user = userID
		d.loaded = true
		d.mu.Unlock()

		d.log.Debug("orders loaded", "count", len(orders))
		return nil, nil
	})
	return err
}

// Update applies view state changes (search, filters, sort, selection)
// under the dashboard lock.
func (d *Dashboard) Update(fn func(vm *viewmodel.ViewModel)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.vm)
}

// Snapshot is a consistent copy of everything a view renders.
type Snapshot struct {
	Loaded       bool
	Visible      []model.Order
	Selected     []string
	AllSelected  bool
	Summary      viewmodel.Summary
	Search       string
	RiskFilter   string
	StatusFilter string
	DateFilter   viewmodel.DateWindow
	SortField    viewmodel.SortField
	SortDir      viewmodel.SortDirection
	Etsy         model.EtsyStatus
	Busy         map[string]bool
	Deleting     map[string]bool
}

func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	field, dir := d.vm.Sort()
	visible := d.vm.Visible()
	busy := make(map[string]bool)
	deleting := make(map[string]bool)
	for _, o := range visible {
		if d.orderBusyLocked(o.ID) {
			busy[o.ID] = true
		}
		if _, ok := d.pending[deleteKey(o.ID)]; ok {
			deleting[o.ID] = true
		}
	}
	return Snapshot{
		Loaded:       d.loaded,
		Visible:      visible,
		Selected:     d.vm.Selected(),
		AllSelected:  d.vm.AllVisibleSelected(),
		Summary:      d.vm.Summary(),
		Search:       d.vm.Search(),
		RiskFilter:   d.vm.RiskFilter(),
		StatusFilter: d.vm.StatusFilter(),
		DateFilter:   d.vm.DateFilter(),
		SortField:    field,
		SortDir:      dir,
		Etsy:         d.etsy,
		Busy:         busy,
		Deleting:     deleting,
	}
}

// Busy reports whether a check or delete for the order is in flight, so the
// UI can render its controls disabled.
func (d *Dashboard) Busy(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.orderBusyLocked(id)
}

// Pending reports whether a global action ("sync", "refresh", ...) runs.
func (d *Dashboard) Pending(action string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[action]
	return ok
}

func (d *Dashboard) orderBusyLocked(id string) bool {
	_, checking := d.pending[checkKey(id)]
	_, deleting := d.pending[deleteKey(id)]
	return checking || deleting
}

// begin marks key in flight. The returned func clears it.
func (d *Dashboard) begin(key string) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pending[key]; ok {
		return nil, ErrBusy
	}
	d.pending[key] = struct{}{}
	return func() {
		d.mu.Lock()
		delete(d.pending, key)
		d.mu.Unlock()
	}, nil
}

func (d *Dashboard) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.cfg.RequestTimeout)
}

// fail reports err to the user and returns it. Auth failures redirect to
// sign-in instead of showing an error.
func (d *Dashboard) fail(action string, err error) error {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		d.signIn()
		return ErrUnauthenticated
	case errors.Is(err, context.DeadlineExceeded):
		d.notes.Error(fmt.Sprintf("%s timed out after %s", action, d.cfg.RequestTimeout))
	case errors.Is(err, context.Canceled):
		// user navigated away, nothing to show
	default:
		d.notes.Error(fmt.Sprintf("%s failed: %v", action, err))
	}
	d.log.Error("dashboard action failed", "action", action, "error", err)
	return err
}

func (d *Dashboard) signIn() {
	if d.nav == nil || d.cfg.SignInURL == "" {
		return
	}
	if err := d.nav.Redirect(d.cfg.SignInURL); err != nil {
		d.log.Error("sign-in redirect failed", "error", err)
	}
}

func checkKey(id string) string  { return "check:" + id }
func deleteKey(id string) string { return "delete:" + id }
