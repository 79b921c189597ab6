// Package viewmodel derives the visible, ordered order list from the loaded
// collection and the user's search, filter, sort and selection state. It does
// no I/O; callers feed it orders and read back what to display.
package viewmodel

import (
	"slices"
	"time"

	"orderwarden/internal/model"
)

type ViewModel struct {
	orders []model.Order
	now    func() time.Time

	search       string
	riskFilter   string
	statusFilter string
	dateFilter   DateWindow

	sortField SortField
	sortDir   SortDirection

	selected map[string]struct{}
}

type Option func(*ViewModel)

// WithClock overrides the clock used for the date window cutoff.
func WithClock(now func() time.Time) Option {
	return func(vm *ViewModel) {
		vm.now = now
	}
}

func New(opts ...Option) *ViewModel {
	vm := &ViewModel{
		now:          time.Now,
		riskFilter:   FilterAll,
		statusFilter: FilterAll,
		dateFilter:   DateAll,
		sortField:    SortCreatedAt,
		sortDir:      Desc,
		selected:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// SetOrders replaces the collection wholesale. The selection is kept; ids
// that no longer exist simply never show up as visible.
func (vm *ViewModel) SetOrders(orders []model.Order) {
	vm.orders = slices.Clone(orders)
}

func (vm *ViewModel) Orders() []model.Order {
	return slices.Clone(vm.orders)
}

func (vm *ViewModel) Len() int {
	return len(vm.orders)
}

func (vm *ViewModel) Order(id string) (model.Order, bool) {
	i := vm.index(id)
	if i < 0 {
		return model.Order{}, false
	}
	return vm.orders[i], true
}

// AddOrder inserts a newly created order at the front, or replaces the
// existing entry with the same id.
func (vm *ViewModel) AddOrder(o model.Order) {
	if vm.ReplaceOrder(o) {
		return
	}
	vm.orders = slices.Insert(vm.orders, 0, o)
}

// ReplaceOrder swaps the order with the same id in place. It reports false if
// no such order is loaded.
func (vm *ViewModel) ReplaceOrder(o model.Order) bool {
	i := vm.index(o.ID)
	if i < 0 {
		return false
	}
	vm.orders[i] = o
	return true
}

// Remove drops the ids from the collection and from the selection.
func (vm *ViewModel) Remove(ids ...string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
		delete(vm.selected, id)
	}
	vm.orders = slices.DeleteFunc(vm.orders, func(o model.Order) bool {
		_, ok := drop[o.ID]
		return ok
	})
}

// Visible filters and sorts the collection. It is recomputed on every call.
func (vm *ViewModel) Visible() []model.Order {
	out := vm.filter(vm.now())
	vm.sort(out)
	return out
}

// VisibleIDs returns the ids of Visible in display order.
func (vm *ViewModel) VisibleIDs() []string {
	visible := vm.Visible()
	ids := make([]string, len(visible))
	for i, o := range visible {
		ids[i] = o.ID
	}
	return ids
}

// Summary counts the loaded orders by risk level, ignoring filters.
type Summary struct {
	Total     int
	Healthy   int
	Attention int
	HighRisk  int
	Unknown   int
}

func (vm *ViewModel) Summary() Summary {
	s := Summary{Total: len(vm.orders)}
	for _, o := range vm.orders {
		switch o.RiskLevel {
		case model.RiskHealthy:
			s.Healthy++
		case model.RiskAttention:
			s.Attention++
		case model.RiskHigh:
			s.HighRisk++
		default:
			s.Unknown++
		}
	}
	return s
}

func (vm *ViewModel) index(id string) int {
	return slices.IndexFunc(vm.orders, func(o model.Order) bool {
		return o.ID == id
	})
}
