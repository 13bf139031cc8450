// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package constraint

import (
	"fmt"

	"github.com/dacapoday/slot"
)

// Linear is a constraint whose size is a*driver.Size()+b. It depends on
// its driver: a resize of the driver is refused if any registered cell
// would refuse the derived size, and otherwise cascades to every
// registered cell.
//
// When the driver is closed the constraint becomes inert: it keeps its
// size and cells but no longer follows any array.
type Linear struct {
	slot.Nop
	registry
	driver slot.Array
	a, b   int
}

var (
	_ slot.Constraint = (*Linear)(nil)
	_ slot.Dependent  = (*Linear)(nil)
)

// NewLinear returns a constraint following driver.
// Fails with ErrInvalidSize if the derived size is negative.
func NewLinear(driver slot.Array, a, b int) (*Linear, error) {
	l := &Linear{driver: driver, a: a, b: b}
	size := l.derive(driver.Size())
	if size < 0 {
		return nil, fmt.Errorf("%w: %d*%d%+d", ErrInvalidSize, a, driver.Size(), b)
	}
	l.size = size
	driver.AddDependent(l)
	return l, nil
}

func (l *Linear) derive(n int) int {
	return l.a*n + l.b
}

// Driver returns the driving array, or nil once it was closed.
func (l *Linear) Driver() slot.Array {
	return l.driver
}

func (l *Linear) Coeffs() (a, b int) {
	return l.a, l.b
}

// SetCoeffs changes the coefficients and resizes the registry. On
// failure the previous coefficients and size are restored. An inert
// constraint only stores the coefficients.
func (l *Linear) SetCoeffs(a, b int) error {
	pa, pb := l.a, l.b
	l.a, l.b = a, b
	if l.driver == nil {
		return nil
	}
	if err := l.apply(l.derive(l.driver.Size())); err != nil {
		l.a, l.b = pa, pb
		return err
	}
	return nil
}

// Resized cascades a resize of the driver to the registered cells.
func (l *Linear) Resized(size int) error {
	if l.driver == nil {
		return nil
	}
	return l.apply(l.derive(size))
}

// VetoResize refuses a driver size if any registered cell would refuse
// the derived size.
func (l *Linear) VetoResize(size int) bool {
	if l.driver == nil {
		return false
	}
	n := l.derive(size)
	if n < 0 {
		return true
	}
	for _, cell := range l.cells {
		if !cell.Resizable(n, true) {
			return true
		}
	}
	return false
}

func (l *Linear) ControllerDeleted(src slot.Source) {
	if l.driver == nil || src != slot.Source(l.driver) {
		return
	}
	l.driver = nil
	_ = src.RemoveDependent(l)
}

// Close stops following the driver.
func (l *Linear) Close() {
	if l.driver == nil {
		return
	}
	_ = l.driver.RemoveDependent(l)
	l.driver = nil
}
