// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package observer

import (
	"slices"

	"github.com/dacapoday/slot"
)

// Set is an insertion-ordered set of dependents compared by identity.
// The zero value is empty and ready to use.
//
// Callbacks invoked through Each may add or remove dependents of the
// same Set; removed dependents that were not yet visited are skipped.
type Set struct {
	deps []slot.Dependent
}

func (set *Set) Len() int {
	return len(set.deps)
}

func (set *Set) Has(d slot.Dependent) bool {
	return slices.Contains(set.deps, d)
}

// Add appends d and reports whether it was absent.
func (set *Set) Add(d slot.Dependent) bool {
	if set.Has(d) {
		return false
	}
	set.deps = append(set.deps, d)
	return true
}

// Remove deletes d and reports whether it was present.
func (set *Set) Remove(d slot.Dependent) bool {
	i := slices.Index(set.deps, d)
	if i < 0 {
		return false
	}
	set.deps = slices.Delete(set.deps, i, i+1)
	return true
}

// Each calls fn for a snapshot of the dependents, skipping any that
// were removed by an earlier call.
func (set *Set) Each(fn func(d slot.Dependent)) {
	if len(set.deps) == 0 {
		return
	}
	for _, d := range slices.Clone(set.deps) {
		if set.Has(d) {
			fn(d)
		}
	}
}

// Any reports whether fn returns true for some dependent.
func (set *Set) Any(fn func(d slot.Dependent) bool) bool {
	return slices.ContainsFunc(set.deps, fn)
}

// Drain repeatedly takes the first dependent, calls fn, and removes the
// dependent if fn did not. It returns the number of forced removals.
// Drain terminates even if fn never removes anything.
func (set *Set) Drain(fn func(d slot.Dependent)) (forced int) {
	for len(set.deps) > 0 {
		d := set.deps[0]
		fn(d)
		if set.Remove(d) {
			forced++
		}
	}
	return
}
