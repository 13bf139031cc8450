// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package value implements scalar cells.
//
// A Cell caches one value. An unwired cell is authoritative: its value
// is either stored (New) or produced by a recomputation function
// (Computed). A wired cell mirrors its controller and pulls the
// controller's value lazily on the next read.
//
// Invalidation only propagates out of a cell whose cache is valid, so a
// diamond or cyclic notification graph visits each cell at most once per
// dirty transition.
//
// Example usage:
//
//	radius := value.New(1.0)
//	volume := value.Computed(func() float64 {
//		r := radius.Value()
//		return 4 * math.Pi * r * r * r / 3
//	}, value.DependsOn(radius), value.NoInput())
//
//	radius.SetValue(2)
//	volume.Value() // recomputed
package value

import (
	"fmt"

	"github.com/dacapoday/slot"
	"github.com/dacapoday/slot/internal/observer"
	"go.uber.org/zap"
)

var (
	ErrIncompatibleTypes = slot.ErrIncompatibleTypes
	ErrNoSuchConnection  = slot.ErrNoSuchConnection
	ErrUnknownDependent  = slot.ErrUnknownDependent
)

// Cell is a reactive scalar value. Not thread-safe.
type Cell[T comparable] struct {
	val        T
	valid      bool
	noInput    bool
	compute    func() T
	controller *Cell[T]
	sources    []slot.Source
	deps       observer.Set
}

var (
	_ slot.Value     = (*Cell[int])(nil)
	_ slot.Dependent = (*Cell[int])(nil)
)

// New returns an unwired cell holding initial.
func New[T comparable](initial T, opts ...Option) *Cell[T] {
	cell := &Cell[T]{val: initial, valid: true}
	cell.apply(opts)
	return cell
}

// Computed returns an unwired cell whose value is fn's result. The
// result is cached until the cell is invalidated, typically by one of
// the sources given with DependsOn.
func Computed[T comparable](fn func() T, opts ...Option) *Cell[T] {
	cell := &Cell[T]{compute: fn}
	cell.apply(opts)
	return cell
}

func (cell *Cell[T]) apply(opts []Option) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	cell.noInput = cfg.noInput
	for _, src := range cfg.sources {
		cell.sources = append(cell.sources, src)
		src.AddDependent(cell)
	}
}

// Value returns the current value, refreshing the cache if needed.
func (cell *Cell[T]) Value() T {
	if cell.valid {
		return cell.val
	}
	switch {
	case cell.controller != nil:
		cell.val = cell.controller.Value()
	case cell.compute != nil:
		cell.val = cell.compute()
	}
	cell.valid = true
	return cell.val
}

// SetValue sets the value, writing through to the controller if wired.
// Ignored on cells built with NoInput, and when v equals the cached value.
func (cell *Cell[T]) SetValue(v T) {
	if cell.noInput {
		return
	}
	if cell.valid && cell.val == v {
		return
	}
	if cell.controller != nil {
		cell.controller.SetValue(v)
		cell.valid = false
		return
	}
	cell.val = v
	cell.valid = true
	cell.NotifyDependents()
}

// Valid reports whether the cached value is current.
func (cell *Cell[T]) Valid() bool {
	return cell.valid
}

// NoInput reports whether SetValue is ignored.
func (cell *Cell[T]) NoInput() bool {
	return cell.noInput
}

func (cell *Cell[T]) TypeName() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

func (cell *Cell[T]) IsCompatible(other slot.Value) bool {
	_, ok := other.(*Cell[T])
	return ok
}

func (cell *Cell[T]) Any() any {
	return cell.Value()
}

func (cell *Cell[T]) SetAny(v any) error {
	val, ok := v.(T)
	if !ok {
		return fmt.Errorf("%w: %T into %s", ErrIncompatibleTypes, v, cell.TypeName())
	}
	cell.SetValue(val)
	return nil
}

func (cell *Cell[T]) Connect(target slot.Value) error {
	return target.SetController(cell)
}

func (cell *Cell[T]) Disconnect(target slot.Value) error {
	if ctrl, ok := target.Controller().(*Cell[T]); !ok || ctrl != cell {
		return ErrNoSuchConnection
	}
	return target.SetController(nil)
}

func (cell *Cell[T]) Controller() slot.Value {
	if cell.controller == nil {
		return nil
	}
	return cell.controller
}

// SetController wires the cell to ctrl, which must be a *Cell[T].
// A nil ctrl unwires the cell, keeping the controller's current value.
// On error nothing changes.
func (cell *Cell[T]) SetController(ctrl slot.Value) error {
	if ctrl == nil {
		cell.Bind(nil)
		return nil
	}
	typed, ok := ctrl.(*Cell[T])
	if !ok {
		return fmt.Errorf("%w: %s to %s", ErrIncompatibleTypes, ctrl.TypeName(), cell.TypeName())
	}
	cell.Bind(typed)
	return nil
}

// Bind is the typed form of SetController.
//
// Controller chains must be acyclic: wiring a cell to a controller that
// it already drives is a caller error, and the next Value on the loop
// recurses without end. Notification cycles through DependsOn are safe.
func (cell *Cell[T]) Bind(ctrl *Cell[T]) {
	old := cell.controller
	if ctrl == old {
		return
	}
	if ctrl == nil {
		cell.val = old.Value()
		cell.controller = nil
		old.deps.Remove(cell)
		cell.valid = true
		return
	}
	if old != nil {
		old.deps.Remove(cell)
	}
	cell.controller = ctrl
	cell.valid = false
	ctrl.AddDependent(cell)
	cell.NotifyDependents()
}

// AddDependent registers d and calls d.ValueChanged so it picks up the
// current value.
func (cell *Cell[T]) AddDependent(d slot.Dependent) {
	if cell.deps.Add(d) {
		d.ValueChanged()
	}
}

func (cell *Cell[T]) RemoveDependent(d slot.Dependent) error {
	if !cell.deps.Remove(d) {
		return ErrUnknownDependent
	}
	return nil
}

func (cell *Cell[T]) HasDependent(d slot.Dependent) bool {
	return cell.deps.Has(d)
}

// Dependents returns the number of registered dependents.
func (cell *Cell[T]) Dependents() int {
	return cell.deps.Len()
}

func (cell *Cell[T]) NotifyDependents() {
	cell.deps.Each(func(d slot.Dependent) {
		d.ValueChanged()
	})
}

// ValueChanged invalidates the cache and notifies dependents, but only
// if the cache is currently valid.
func (cell *Cell[T]) ValueChanged() {
	if !cell.valid {
		return
	}
	cell.valid = false
	cell.NotifyDependents()
}

func (cell *Cell[T]) RangeChanged(start, end int) {
	cell.ValueChanged()
}

func (cell *Cell[T]) Resized(size int) error {
	cell.ValueChanged()
	return nil
}

func (cell *Cell[T]) VetoResize(size int) bool {
	return false
}

// ControllerDeleted unwires the cell if src is its controller, and
// otherwise drops src from the sources given with DependsOn.
func (cell *Cell[T]) ControllerDeleted(src slot.Source) {
	if cell.controller != nil && src == slot.Source(cell.controller) {
		cell.Bind(nil)
		return
	}
	for i, s := range cell.sources {
		if s == src {
			cell.sources = append(cell.sources[:i], cell.sources[i+1:]...)
			_ = src.RemoveDependent(cell)
			return
		}
	}
}

// Close detaches the cell from its controller and sources, then tells
// every dependent it is going away. Dependents that do not unregister
// themselves are removed.
func (cell *Cell[T]) Close() {
	cell.Value()
	if ctrl := cell.controller; ctrl != nil {
		cell.controller = nil
		ctrl.deps.Remove(cell)
	}
	for _, src := range cell.sources {
		_ = src.RemoveDependent(cell)
	}
	cell.sources = nil

	forced := cell.deps.Drain(func(d slot.Dependent) {
		d.ControllerDeleted(cell)
	})
	if forced > 0 {
		slot.Logger().Debug("value: removed dependents on close",
			zap.String("type", cell.TypeName()),
			zap.Int("forced", forced))
	}
}
