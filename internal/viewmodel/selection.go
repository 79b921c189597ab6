package viewmodel

import "slices"

// Toggle adds id to the selection or removes it if already selected.
func (vm *ViewModel) Toggle(id string) {
	if _, ok := vm.selected[id]; ok {
		delete(vm.selected, id)
		return
	}
	vm.selected[id] = struct{}{}
}

// ToggleAll clears the selection when it already equals the visible set,
// otherwise it replaces the selection with exactly the visible set. Hidden
// ids selected earlier are not kept.
func (vm *ViewModel) ToggleAll() {
	visible := vm.VisibleIDs()
	if vm.equalsSelection(visible) {
		vm.ClearSelection()
		return
	}
	vm.selected = make(map[string]struct{}, len(visible))
	for _, id := range visible {
		vm.selected[id] = struct{}{}
	}
}

// AllVisibleSelected reports whether the selection equals the visible set.
func (vm *ViewModel) AllVisibleSelected() bool {
	return vm.equalsSelection(vm.VisibleIDs())
}

// Deselect drops ids from the selection and leaves the collection alone.
func (vm *ViewModel) Deselect(ids ...string) {
	for _, id := range ids {
		delete(vm.selected, id)
	}
}

func (vm *ViewModel) ClearSelection() {
	vm.selected = make(map[string]struct{})
}

func (vm *ViewModel) IsSelected(id string) bool {
	_, ok := vm.selected[id]
	return ok
}

// Selected returns the selected ids sorted, including ids that are
// currently hidden by filters.
func (vm *ViewModel) Selected() []string {
	ids := make([]string, 0, len(vm.selected))
	for id := range vm.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (vm *ViewModel) equalsSelection(visible []string) bool {
	if len(visible) == 0 || len(visible) != len(vm.selected) {
		return false
	}
	for _, id := range visible {
		if _, ok := vm.selected[id]; !ok {
			return false
		}
	}
	return true
}
