// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package constraint implements size constraints for array cells.
//
// A constraint owns an authoritative size and a registry of array cells
// that must match it. Changing the size resizes every registered cell;
// if any cell refuses, the cells already resized are brought back to
// the previous size and the error is returned, so the registry is never
// left split between two sizes.
//
// Constraints must outlive the cells registered with them: close or
// unregister every cell before dropping a constraint.
package constraint

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dacapoday/slot"
	"go.uber.org/zap"
)

var (
	ErrDuplicateRegistration = slot.ErrDuplicateRegistration
	ErrUnknownRegistration   = slot.ErrUnknownRegistration
	ErrInvalidSize           = slot.ErrInvalidSize
)

type registry struct {
	size  int
	cells []slot.Array
}

func (r *registry) Size() int {
	return r.size
}

func (r *registry) Registered(cell slot.Array) bool {
	return slices.Contains(r.cells, cell)
}

// Cells returns the registered cells in registration order.
func (r *registry) Cells() []slot.Array {
	return slices.Clone(r.cells)
}

// Register adds cell and resizes it to Size. If the cell refuses the
// size it is not registered.
func (r *registry) Register(cell slot.Array) error {
	if r.Registered(cell) {
		return ErrDuplicateRegistration
	}
	r.cells = append(r.cells, cell)
	if err := cell.Resize(r.size); err != nil {
		r.remove(cell)
		return err
	}
	return nil
}

// Unregister removes cell. Its size is left as is.
func (r *registry) Unregister(cell slot.Array) error {
	if !r.remove(cell) {
		return ErrUnknownRegistration
	}
	return nil
}

func (r *registry) remove(cell slot.Array) bool {
	i := slices.Index(r.cells, cell)
	if i < 0 {
		return false
	}
	r.cells = slices.Delete(r.cells, i, i+1)
	return true
}

// exec resizes every registered cell to Size. It stops at the first
// failure unless all is set, in which case it tries every cell. Cells
// closed while registered are dropped.
func (r *registry) exec(all bool) error {
	var errs []error
	for _, cell := range slices.Clone(r.cells) {
		err := cell.Resize(r.size)
		if errors.Is(err, slot.ErrClosed) {
			r.remove(cell)
			slot.Logger().Debug("constraint: dropped closed cell", zap.Int("size", r.size))
			continue
		}
		if err != nil {
			if !all {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// apply sets the size and resizes the registry, restoring the previous
// size on failure.
func (r *registry) apply(size int) error {
	if size < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	prev := r.size
	r.size = size
	err := r.exec(false)
	if err == nil {
		return nil
	}

	log := slot.Logger()
	r.size = prev
	if rerr := r.exec(true); rerr != nil {
		log.Error("constraint: rollback failed", zap.Int("size", prev), zap.Error(rerr))
		return errors.Join(err, rerr)
	}
	log.Warn("constraint: resize rolled back",
		zap.Int("size", prev), zap.Int("refused", size), zap.Error(err))
	return err
}
