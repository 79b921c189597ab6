package viewmodel

import (
	"fmt"
	"strings"
	"time"

	"orderwarden/internal/model"
)

// FilterAll disables the risk or status filter.
const FilterAll = "all"

type DateWindow string

const (
	DateAll    DateWindow = "all"
	Date7Days  DateWindow = "7days"
	Date30Days DateWindow = "30days"
	Date90Days DateWindow = "90days"
)

var DateWindows = []DateWindow{DateAll, Date7Days, Date30Days, Date90Days}

// Duration is the window length, zero for DateAll.
func (w DateWindow) Duration() time.Duration {
	switch w {
	case Date7Days:
		return 7 * 24 * time.Hour
	case Date30Days:
		return 30 * 24 * time.Hour
	case Date90Days:
		return 90 * 24 * time.Hour
	default:
		return 0
	}
}

func (w DateWindow) Label() string {
	switch w {
	case Date7Days:
		return "Last 7 days"
	case Date30Days:
		return "Last 30 days"
	case Date90Days:
		return "Last 90 days"
	default:
		return "All time"
	}
}

func ParseDateWindow(s string) (DateWindow, error) {
	if s == "" {
		return DateAll, nil
	}
	for _, w := range DateWindows {
		if string(w) == s {
			return w, nil
		}
	}
	return DateAll, fmt.Errorf("unknown date window %q", s)
}

func (vm *ViewModel) SetSearch(s string) {
	vm.search = s
}

func (vm *ViewModel) Search() string {
	return vm.search
}

// SetRiskFilter sets an exact risk level to match, or FilterAll. An empty
// string is treated as FilterAll.
func (vm *ViewModel) SetRiskFilter(r string) {
	if r == "" {
		r = FilterAll
	}
	vm.riskFilter = r
}

func (vm *ViewModel) RiskFilter() string {
	return vm.riskFilter
}

func (vm *ViewModel) SetStatusFilter(s string) {
	if s == "" {
		s = FilterAll
	}
	vm.statusFilter = s
}

func (vm *ViewModel) StatusFilter() string {
	return vm.statusFilter
}

func (vm *ViewModel) SetDateFilter(w DateWindow) {
	if w == "" {
		w = DateAll
	}
	vm.dateFilter = w
}

func (vm *ViewModel) DateFilter() DateWindow {
	return vm.dateFilter
}

// filter applies search, risk, status and date predicates in that order.
// The date cutoff is fixed for the whole pass.
func (vm *ViewModel) filter(now time.Time) []model.Order {
	needle := strings.ToLower(vm.search)

	var cutoff time.Time
	window := vm.dateFilter.Duration()
	if window > 0 {
		cutoff = now.Add(-window)
	}

	out := make([]model.Order, 0, len(vm.orders))
	for _, o := range vm.orders {
		if needle != "" && !matchesSearch(o, needle) {
			continue
		}
		if vm.riskFilter != FilterAll && string(o.RiskLevel) != vm.riskFilter {
			continue
		}
		if vm.statusFilter != FilterAll && string(o.LastStatus) != vm.statusFilter {
			continue
		}
		if window > 0 && o.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func matchesSearch(o model.Order, needle string) bool {
	if strings.Contains(strings.ToLower(o.OrderID), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(o.TrackingNumber), needle) {
		return true
	}
	return o.Carrier != "" && strings.Contains(strings.ToLower(o.Carrier), needle)
}
