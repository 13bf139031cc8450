// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package array

import (
	"errors"
	"fmt"

	"github.com/dacapoday/slot"
	"go.uber.org/zap"
)

func (cell *Cell[T]) Connect(target slot.Array) error {
	return target.SetController(cell)
}

func (cell *Cell[T]) Disconnect(target slot.Array) error {
	if ctrl, ok := target.Controller().(*Cell[T]); !ok || ctrl != cell {
		return ErrNoSuchConnection
	}
	return target.SetController(nil)
}

func (cell *Cell[T]) Controller() slot.Array {
	if cell.controller == nil {
		return nil
	}
	return cell.controller
}

// SetController wires the cell to ctrl, which must be a *Cell[T] of the
// same multiplicity, or unwires it when ctrl is nil. On error nothing
// changes.
func (cell *Cell[T]) SetController(ctrl slot.Array) error {
	if ctrl == nil {
		return cell.Bind(nil)
	}
	typed, ok := ctrl.(*Cell[T])
	if !ok {
		return fmt.Errorf("%w: %s to %s", ErrIncompatibleTypes, ctrl.TypeName(), cell.TypeName())
	}
	return cell.Bind(typed)
}

// Bind is the typed form of SetController.
//
// Wiring aliases the controller's buffer. It fails with ErrSizeMismatch
// if the cell is constrained to a size the controller does not have,
// with ErrDependentVetoed if a dependent refuses the controller's size,
// and with ErrCycle if the controller is already driven by the cell.
//
// If a dependent fails while reacting to the new size, the cell is put
// back on its previous controller and buffer, the previous size is
// re-notified and the error is returned.
//
// Unwiring forks the buffer so the cell owns an exclusive copy.
func (cell *Cell[T]) Bind(ctrl *Cell[T]) error {
	if cell.buf == nil {
		return ErrClosed
	}
	old := cell.controller
	if ctrl == old {
		return nil
	}
	if ctrl == nil {
		cell.detach()
		return nil
	}
	if ctrl.buf == nil {
		return ErrClosed
	}
	if ctrl.mult != cell.mult {
		return fmt.Errorf("%w: multiplicity %d to %d", ErrIncompatibleTypes, ctrl.mult, cell.mult)
	}
	if ctrl.reaches(cell) {
		return ErrCycle
	}
	n := ctrl.Size()
	if cell.constraint != nil && n != cell.constraint.Size() {
		return fmt.Errorf("%w: controller has %d, constraint %d", ErrSizeMismatch, n, cell.constraint.Size())
	}
	if err := cell.resizable(n, true); err != nil {
		return fmt.Errorf("%w: %d to %d", err, cell.Size(), n)
	}

	size := cell.Size()
	prev := cell.buf
	prev.Retain()
	if old != nil {
		old.deps.Remove(cell)
	}
	cell.controller = ctrl
	cell.alias()
	ctrl.AddDependent(cell)

	err := cell.notifyResize(n)
	if err == nil {
		prev.Release()
		return nil
	}

	ctrl.deps.Remove(cell)
	cell.controller = old
	if old != nil {
		old.deps.Add(cell)
	}
	cell.buf.Release()
	cell.buf = prev
	// dependents follow the restored buffer
	cell.NotifyDependents()

	log := slot.Logger()
	if rerr := cell.notifyResize(size); rerr != nil {
		log.Error("array: bind rollback failed", zap.Int("size", size), zap.Error(rerr))
		return errors.Join(err, rerr)
	}
	log.Warn("array: bind rolled back", zap.Int("size", size), zap.Int("refused", n), zap.Error(err))
	return err
}

// alias points the cell at its controller's buffer.
func (cell *Cell[T]) alias() {
	buf := cell.controller.buf
	if buf == nil || buf == cell.buf {
		return
	}
	buf.Retain()
	cell.buf.Release()
	cell.buf = buf
}

func (cell *Cell[T]) detach() {
	old := cell.controller
	cell.controller = nil
	old.deps.Remove(cell)

	buf := cell.buf.Unique()
	if buf == cell.buf {
		return
	}
	cell.buf = buf
	slot.Logger().Debug("array: fork", zap.String("type", cell.TypeName()), zap.Int("size", cell.Size()))
	// cells wired to this one still alias the old buffer
	cell.NotifyDependents()
}

// SetConstraint binds c as the local constraint and registers the cell
// with it, which resizes the cell to c.Size(). The previous constraint,
// if any, is left. A nil c only unbinds. On error nothing changes.
func (cell *Cell[T]) SetConstraint(c slot.Constraint) error {
	old := cell.constraint
	if c == old {
		return nil
	}
	if c != nil {
		cell.constraint = c
		var err error
		if c.Registered(cell) {
			err = cell.Resize(c.Size())
		} else {
			err = c.Register(cell)
		}
		if err != nil {
			cell.constraint = old
			return err
		}
	} else {
		cell.constraint = nil
	}
	if old != nil && old.Registered(cell) {
		return old.Unregister(cell)
	}
	return nil
}

// AddDependent registers d and calls d.ValueChanged.
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

// ValueChanged re-aliases the controller's buffer if it was replaced
// and forwards the notification.
func (cell *Cell[T]) ValueChanged() {
	if cell.controller != nil && cell.buf != nil {
		cell.alias()
	}
	cell.NotifyDependents()
}

func (cell *Cell[T]) RangeChanged(start, end int) {
	cell.notifyRange(start, end)
}

func (cell *Cell[T]) Resized(size int) error {
	return cell.notifyResize(size)
}

// VetoResize refuses sizes the cell itself could not take.
func (cell *Cell[T]) VetoResize(size int) bool {
	return cell.resizable(size, false) != nil
}

func (cell *Cell[T]) ControllerDeleted(src slot.Source) {
	if cell.controller != nil && src == slot.Source(cell.controller) {
		cell.detach()
	}
}

// Close detaches the cell from its controller and constraint, tells
// every dependent it is going away, and releases the buffer. Dependents
// that do not unregister themselves are removed. Close is idempotent.
func (cell *Cell[T]) Close() {
	if cell.buf == nil {
		return
	}
	if ctrl := cell.controller; ctrl != nil {
		cell.controller = nil
		ctrl.deps.Remove(cell)
	}
	if c := cell.constraint; c != nil {
		cell.constraint = nil
		if c.Registered(cell) {
			_ = c.Unregister(cell)
		}
	}

	forced := cell.deps.Drain(func(d slot.Dependent) {
		d.ControllerDeleted(cell)
	})
	if forced > 0 {
		slot.Logger().Debug("array: removed dependents on close",
			zap.String("type", cell.TypeName()),
			zap.Int("forced", forced))
	}

	cell.buf.Release()
	cell.buf = nil
}
