package sky

import (
	"slices"
	"strconv"
)

// FilterState summarises a filter selection.
type FilterState int

const (
	FilterAll FilterState = iota
	FilterNone
	FilterPartial
)

// Filter is a set of selected tiers. Edits are staged with Toggle,
// SelectAll and SelectNone and take effect on Apply, the way the filter
// panel's confirm button works. A nil *Filter selects everything.
type Filter struct {
	tiers   []string
	applied map[string]bool
	pending map[string]bool
}

// NewFilter returns a filter over tiers with every tier selected.
func NewFilter(tiers []string) *Filter {
	f := &Filter{
		tiers:   slices.Clone(tiers),
		applied: make(map[string]bool, len(tiers)),
		pending: make(map[string]bool, len(tiers)),
	}
	for _, t := range tiers {
		f.applied[t] = true
		f.pending[t] = true
	}
	return f
}

// Tiers returns the tier names in order.
func (f *Filter) Tiers() []string { return slices.Clone(f.tiers) }

// Selected reports whether tier is visible under the applied selection.
func (f *Filter) Selected(tier string) bool {
	if f == nil {
		return true
	}
	return f.applied[tier]
}

// Pending reports whether tier is checked in the staged selection.
func (f *Filter) Pending(tier string) bool { return f.pending[tier] }

// Toggle flips tier in the staged selection.
func (f *Filter) Toggle(tier string) {
	if !slices.Contains(f.tiers, tier) {
		return
	}
	f.pending[tier] = !f.pending[tier]
}

// SelectAll stages every tier.
func (f *Filter) SelectAll() {
	for _, t := range f.tiers {
		f.pending[t] = true
	}
}

// SelectNone clears the staged selection.
func (f *Filter) SelectNone() {
	for _, t := range f.tiers {
		f.pending[t] = false
	}
}

// Apply makes the staged selection visible.
func (f *Filter) Apply() {
	for _, t := range f.tiers {
		f.applied[t] = f.pending[t]
	}
}

// Reset discards staged edits.
func (f *Filter) Reset() {
	for _, t := range f.tiers {
		f.pending[t] = f.applied[t]
	}
}

// Count returns the number of applied tiers.
func (f *Filter) Count() int {
	n := 0
	for _, t := range f.tiers {
		if f.applied[t] {
			n++
		}
	}
	return n
}

// State summarises the applied selection.
func (f *Filter) State() FilterState {
	switch f.Count() {
	case len(f.tiers):
		return FilterAll
	case 0:
		return FilterNone
	default:
		return FilterPartial
	}
}

// Icon returns the filter toggle label: a magnifier when every tier is
// shown, a prohibition sign when none is, otherwise a bolt and the count.
func (f *Filter) Icon() string {
	switch f.State() {
	case FilterAll:
		return "🔍"
	case FilterNone:
		return "🚫"
	default:
		return "⚡" + strconv.Itoa(f.Count())
	}
}
