// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package shared implements the reference-counted, copy-on-write
// storage behind array cells.
package shared

import (
	"math"
	"unsafe"

	"github.com/dacapoday/slot"
)

var (
	ErrOutOfMemory = slot.ErrOutOfMemory
	ErrInvalidSize = slot.ErrInvalidSize
)

// Buffer is a resizable array of Len elements of Multiplicity
// components each, stored contiguously.
//
// A new Buffer has a reference count of zero; owners call Retain when
// they take a handle and Release when they drop it. Storage is dropped
// when the count returns to zero. Not thread-safe.
type Buffer[T any] struct {
	data []T
	mult int
	refs int
}

// New returns an empty buffer. A multiplicity below 1 is treated as 1.
func New[T any](mult int) *Buffer[T] {
	return &Buffer[T]{mult: max(mult, 1)}
}

// Of returns a buffer of multiplicity 1 holding a copy of vals. It
// cannot fail: the storage already exists, so the size limit of Resize
// does not apply.
func Of[T any](vals []T) *Buffer[T] {
	return &Buffer[T]{data: append([]T(nil), vals...), mult: 1}
}

func (buf *Buffer[T]) Len() int {
	return len(buf.data) / buf.mult
}

func (buf *Buffer[T]) Multiplicity() int {
	return buf.mult
}

// Data returns the physical storage, Len()*Multiplicity() components.
// The slice aliases the buffer until the next Resize.
func (buf *Buffer[T]) Data() []T {
	return buf.data
}

// Element returns the components of element i.
func (buf *Buffer[T]) Element(i int) []T {
	return buf.data[i*buf.mult : (i+1)*buf.mult : (i+1)*buf.mult]
}

func (buf *Buffer[T]) Refs() int {
	return buf.refs
}

func (buf *Buffer[T]) Retain() {
	buf.refs++
}

// Release drops one reference and frees the storage at zero.
// It reports whether the storage was freed.
func (buf *Buffer[T]) Release() bool {
	if buf.refs > 0 {
		buf.refs--
	}
	if buf.refs == 0 {
		buf.data = nil
		return true
	}
	return false
}

// Resize replaces the storage with a block of n elements, keeping the
// first min(Len, n) and zero-filling the rest.
func (buf *Buffer[T]) Resize(n int) error {
	if n < 0 {
		return ErrInvalidSize
	}
	if n > maxLen[T](buf.mult) {
		return ErrOutOfMemory
	}
	data := make([]T, n*buf.mult)
	copy(data, buf.data)
	buf.data = data
	return nil
}

// Swap installs data as the storage and returns the previous block.
// Used to restore a block saved before a failed resize.
func (buf *Buffer[T]) Swap(data []T) (old []T) {
	old, buf.data = buf.data, data
	return
}

// Clone returns a deep copy with a reference count of zero.
func (buf *Buffer[T]) Clone() *Buffer[T] {
	data := make([]T, len(buf.data))
	copy(data, buf.data)
	return &Buffer[T]{data: data, mult: buf.mult}
}

// Unique returns a buffer the caller owns exclusively.
// If the caller holds the only reference, buf itself is returned;
// otherwise a retained deep copy is returned and buf is released.
func (buf *Buffer[T]) Unique() *Buffer[T] {
	if buf.refs <= 1 {
		return buf
	}
	clone := buf.Clone()
	clone.Retain()
	buf.Release()
	return clone
}

func maxLen[T any](mult int) int {
	var zero T
	size := max(int(unsafe.Sizeof(zero)), 1)
	return math.MaxInt32 / size / mult
}
