// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package array implements array cells.
//
// A Cell is a sequence of elements of Multiplicity components each,
// stored in a reference-counted shared buffer. A wired cell aliases its
// controller's buffer, so every cell along a controller chain reads the
// same storage; only the unwired root of the chain writes to it, and
// writes or resizes issued anywhere in the chain are forwarded to the
// root. Unwiring forks the buffer, giving the cell an exclusive copy.
//
// A cell may be bound to a slot.Constraint, in which case its size must
// always equal the constraint's size.
package array

import (
	"errors"
	"fmt"

	"github.com/dacapoday/slot"
	"github.com/dacapoday/slot/internal/observer"
	"github.com/dacapoday/slot/internal/shared"
	"go.uber.org/zap"
)

var (
	ErrClosed            = slot.ErrClosed
	ErrCycle             = slot.ErrCycle
	ErrDependentVetoed   = slot.ErrDependentVetoed
	ErrIncompatibleTypes = slot.ErrIncompatibleTypes
	ErrIndexOutOfRange   = slot.ErrIndexOutOfRange
	ErrInvalidSize       = slot.ErrInvalidSize
	ErrNoSuchConnection  = slot.ErrNoSuchConnection
	ErrSelfConstrained   = slot.ErrSelfConstrained
	ErrSizeMismatch      = slot.ErrSizeMismatch
	ErrUnknownDependent  = slot.ErrUnknownDependent
)

// Cell is a reactive array. Not thread-safe.
type Cell[T any] struct {
	buf        *shared.Buffer[T]
	mult       int
	controller *Cell[T]
	constraint slot.Constraint
	deps       observer.Set
}

var (
	_ slot.Array     = (*Cell[int])(nil)
	_ slot.Dependent = (*Cell[int])(nil)
)

// New returns an empty unwired cell. A multiplicity below 1 is treated as 1.
func New[T any](mult int) *Cell[T] {
	buf := shared.New[T](mult)
	buf.Retain()
	return &Cell[T]{buf: buf, mult: buf.Multiplicity()}
}

// Of returns an unwired cell of multiplicity 1 holding a copy of vals.
func Of[T any](vals ...T) *Cell[T] {
	buf := shared.Of(vals)
	buf.Retain()
	return &Cell[T]{buf: buf, mult: 1}
}

// NewConstrained returns an empty cell bound to c and resized to c.Size().
func NewConstrained[T any](mult int, c slot.Constraint) (*Cell[T], error) {
	cell := New[T](mult)
	if err := cell.SetConstraint(c); err != nil {
		cell.Close()
		return nil, err
	}
	return cell, nil
}

func (cell *Cell[T]) Size() int {
	if cell.buf == nil {
		return 0
	}
	return cell.buf.Len()
}

func (cell *Cell[T]) Multiplicity() int {
	return cell.mult
}

func (cell *Cell[T]) TypeName() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// IsCompatible reports whether other is a *Cell[T] of the same multiplicity.
func (cell *Cell[T]) IsCompatible(other slot.Array) bool {
	typed, ok := other.(*Cell[T])
	return ok && typed.mult == cell.mult
}

func (cell *Cell[T]) Constraint() slot.Constraint {
	return cell.constraint
}

// Refs returns the reference count of the backing buffer.
func (cell *Cell[T]) Refs() int {
	if cell.buf == nil {
		return 0
	}
	return cell.buf.Refs()
}

// Shares reports whether cell and other read the same buffer.
func (cell *Cell[T]) Shares(other *Cell[T]) bool {
	return cell.buf != nil && cell.buf == other.buf
}

func (cell *Cell[T]) root() *Cell[T] {
	root := cell
	for root.controller != nil {
		root = root.controller
	}
	return root
}

func (cell *Cell[T]) reaches(target *Cell[T]) bool {
	for c := cell; c != nil; c = c.controller {
		if c == target {
			return true
		}
	}
	return false
}

func (cell *Cell[T]) resizable(n int, ignoreLocal bool) error {
	if n == cell.Size() {
		return nil
	}
	if cell.constraint != nil && !ignoreLocal && n != cell.constraint.Size() {
		return ErrSelfConstrained
	}
	if cell.deps.Any(func(d slot.Dependent) bool { return d.VetoResize(n) }) {
		return ErrDependentVetoed
	}
	return nil
}

func (cell *Cell[T]) Resizable(n int, ignoreLocal bool) bool {
	return cell.resizable(n, ignoreLocal) == nil
}

// Resize changes the size to n elements. Existing elements are kept and
// new ones are zero. A wired cell forwards the resize to its root.
//
// Resize fails with ErrSelfConstrained if the cell's own constraint
// forbids n, and with ErrDependentVetoed if a dependent refuses it. If a
// dependent fails while reacting to the new size, the root is restored
// to its previous storage and the error is returned.
func (cell *Cell[T]) Resize(n int) error {
	if cell.buf == nil {
		return ErrClosed
	}
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	size := cell.Size()
	if n == size {
		return nil
	}
	if err := cell.resizable(n, false); err != nil {
		return fmt.Errorf("%w: %d to %d", err, size, n)
	}
	if cell.controller != nil {
		return cell.controller.Resize(n)
	}
	return cell.resizeRoot(size, n)
}

func (cell *Cell[T]) resizeRoot(size, n int) (err error) {
	old := cell.buf.Data()
	if err = cell.buf.Resize(n); err != nil {
		return
	}
	log := slot.Logger()
	log.Debug("array: resize", zap.String("type", cell.TypeName()), zap.Int("from", size), zap.Int("to", n))

	if err = cell.notifyResize(n); err == nil {
		return
	}
	cell.buf.Swap(old)
	if rerr := cell.notifyResize(size); rerr != nil {
		log.Error("array: resize rollback failed", zap.Int("size", size), zap.Error(rerr))
		return errors.Join(err, rerr)
	}
	log.Warn("array: resize rolled back", zap.Int("size", size), zap.Int("refused", n), zap.Error(err))
	return
}

func (cell *Cell[T]) notifyResize(n int) error {
	var errs []error
	cell.deps.Each(func(d slot.Dependent) {
		if err := d.Resized(n); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

func (cell *Cell[T]) notifyRange(start, end int) {
	cell.deps.Each(func(d slot.Dependent) {
		d.RangeChanged(start, end)
	})
}

func (cell *Cell[T]) NotifyDependents() {
	cell.deps.Each(func(d slot.Dependent) {
		d.ValueChanged()
	})
}

// index normalizes an element index; negative i counts from the end.
func (cell *Cell[T]) index(i int) (int, error) {
	n := cell.Size()
	j := i
	if j < 0 {
		j += n
	}
	if j < 0 || j >= n {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, n)
	}
	return j, nil
}

// position is like index but also accepts the end position, Size().
func (cell *Cell[T]) position(i int) (int, error) {
	n := cell.Size()
	j := i
	if j < 0 {
		j += n
	}
	if j < 0 || j > n {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, n)
	}
	return j, nil
}

func (cell *Cell[T]) scalar() error {
	if cell.mult != 1 {
		return fmt.Errorf("%w: scalar access to multiplicity %d", ErrIncompatibleTypes, cell.mult)
	}
	return nil
}

// Value returns element i of a cell of multiplicity 1.
func (cell *Cell[T]) Value(i int) (val T, err error) {
	if err = cell.scalar(); err != nil {
		return
	}
	if i, err = cell.index(i); err != nil {
		return
	}
	return cell.buf.Data()[i], nil
}

// Values returns a copy of the components of element i.
func (cell *Cell[T]) Values(i int) ([]T, error) {
	i, err := cell.index(i)
	if err != nil {
		return nil, err
	}
	return append([]T(nil), cell.buf.Element(i)...), nil
}

// SetValue sets element i of a cell of multiplicity 1.
func (cell *Cell[T]) SetValue(i int, v T) error {
	if err := cell.scalar(); err != nil {
		return err
	}
	j, err := cell.index(i)
	if err != nil {
		return err
	}
	if cell.controller != nil {
		return cell.controller.SetValue(j, v)
	}
	cell.buf.Data()[j] = v
	cell.notifyRange(j, j+1)
	return nil
}

// SetValues sets the components of element i; vals must hold exactly
// Multiplicity components.
func (cell *Cell[T]) SetValues(i int, vals []T) error {
	if len(vals) != cell.mult {
		return fmt.Errorf("%w: %d components for multiplicity %d", ErrIncompatibleTypes, len(vals), cell.mult)
	}
	j, err := cell.index(i)
	if err != nil {
		return err
	}
	if cell.controller != nil {
		return cell.controller.SetValues(j, vals)
	}
	copy(cell.buf.Element(j), vals)
	cell.notifyRange(j, j+1)
	return nil
}

// Slice returns a copy of all components, Size()*Multiplicity() long.
func (cell *Cell[T]) Slice() []T {
	if cell.buf == nil {
		return nil
	}
	return append([]T(nil), cell.buf.Data()...)
}

// Assign replaces the contents with data, resizing to
// len(data)/Multiplicity() elements first.
func (cell *Cell[T]) Assign(data []T) error {
	if len(data)%cell.mult != 0 {
		return fmt.Errorf("%w: %d components for multiplicity %d", ErrIncompatibleTypes, len(data), cell.mult)
	}
	n := len(data) / cell.mult
	if err := cell.Resize(n); err != nil {
		return err
	}
	root := cell.root()
	copy(root.buf.Data(), data)
	root.notifyRange(0, n)
	return nil
}

// CopyValues copies elements [begin, end) into target starting at
// index. Negative positions count from the end of their own cell.
// If target is cell the ranges must not overlap.
func (cell *Cell[T]) CopyValues(begin, end int, target slot.Array, index int) error {
	dst, ok := target.(*Cell[T])
	if !ok || dst.mult != cell.mult {
		return fmt.Errorf("%w: copy %s to %s", ErrIncompatibleTypes, cell.TypeName(), target.TypeName())
	}
	b, err := cell.position(begin)
	if err != nil {
		return err
	}
	e, err := cell.position(end)
	if err != nil {
		return err
	}
	if e < b {
		return fmt.Errorf("%w: range [%d, %d)", ErrIndexOutOfRange, begin, end)
	}
	at, err := dst.position(index)
	if err != nil {
		return err
	}
	count := e - b
	if at+count > dst.Size() {
		return fmt.Errorf("%w: %d elements at %d of %d", ErrIndexOutOfRange, count, at, dst.Size())
	}
	if count == 0 {
		return nil
	}
	m := cell.mult
	root := dst.root()
	copy(root.buf.Data()[at*m:], cell.buf.Data()[b*m:e*m])
	root.notifyRange(at, at+count)
	return nil
}

// Format renders the elements, grouping components per element when
// the multiplicity is above 1.
func (cell *Cell[T]) Format() string {
	if cell.mult == 1 {
		return fmt.Sprint(cell.Slice())
	}
	elems := make([][]T, cell.Size())
	for i := range elems {
		elems[i] = cell.buf.Element(i)
	}
	return fmt.Sprint(elems)
}
