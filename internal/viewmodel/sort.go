package viewmodel

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"orderwarden/internal/model"
)

type SortField string

const (
	SortCreatedAt      SortField = "createdAt"
	SortOrderID        SortField = "orderId"
	SortTrackingNumber SortField = "trackingNumber"
	SortLastStatus     SortField = "lastStatus"
	SortRiskLevel      SortField = "riskLevel"
	SortLastUpdateAt   SortField = "lastUpdateAt"
)

var SortFields = []SortField{
	SortCreatedAt,
	SortOrderID,
	SortTrackingNumber,
	SortLastStatus,
	SortRiskLevel,
	SortLastUpdateAt,
}

func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return SortCreatedAt, nil
	}
	for _, f := range SortFields {
		if string(f) == s {
			return f, nil
		}
	}
	return SortCreatedAt, fmt.Errorf("unknown sort field %q", s)
}

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SetSort activates field. Choosing the active field again flips the
// direction; a new field starts ascending, except createdAt which starts
// newest first.
func (vm *ViewModel) SetSort(field SortField) {
	if field == vm.sortField {
		vm.sortDir = vm.sortDir.flip()
		return
	}
	vm.sortField = field
	if field == SortCreatedAt {
		vm.sortDir = Desc
	} else {
		vm.sortDir = Asc
	}
}

func (vm *ViewModel) SetSortDirection(dir SortDirection) {
	if dir != Asc {
		dir = Desc
	}
	vm.sortDir = dir
}

func (vm *ViewModel) Sort() (SortField, SortDirection) {
	return vm.sortField, vm.sortDir
}

func (d SortDirection) flip() SortDirection {
	if d == Asc {
		return Desc
	}
	return Asc
}

// sort orders in place by the active field. Ties are broken by id ascending
// regardless of direction so the order is total.
func (vm *ViewModel) sort(orders []model.Order) {
	compare := comparator(vm.sortField)
	desc := vm.sortDir == Desc
	slices.SortStableFunc(orders, func(a, b model.Order) int {
		c := compare(a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func comparator(field SortField) func(a, b model.Order) int {
	switch field {
	case SortOrderID:
		return func(a, b model.Order) int { return cmp.Compare(a.OrderID, b.OrderID) }
	case SortTrackingNumber:
		return func(a, b model.Order) int { return cmp.Compare(a.TrackingNumber, b.TrackingNumber) }
	case SortLastStatus:
		return func(a, b model.Order) int { return cmp.Compare(a.LastStatus, b.LastStatus) }
	case SortRiskLevel:
		return func(a, b model.Order) int { return cmp.Compare(a.RiskLevel.Rank(), b.RiskLevel.Rank()) }
	case SortLastUpdateAt:
		return func(a, b model.Order) int { return lastUpdate(a).Compare(lastUpdate(b)) }
	default:
		return func(a, b model.Order) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

// lastUpdate ranks never-checked orders at the epoch.
func lastUpdate(o model.Order) time.Time {
	if o.LastUpdateAt == nil {
		return time.Unix(0, 0)
	}
	return *o.LastUpdateAt
}
