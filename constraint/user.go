// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package constraint

import "github.com/dacapoday/slot"

// User is a constraint whose size is set directly.
type User struct {
	registry
}

var _ slot.Constraint = (*User)(nil)

// NewUser returns a constraint of the given size with no cells.
func NewUser(size int) *User {
	return &User{registry{size: max(size, 0)}}
}

// SetSize resizes every registered cell to n. On failure every cell is
// returned to the previous size and the error is returned.
func (u *User) SetSize(n int) error {
	return u.apply(n)
}
