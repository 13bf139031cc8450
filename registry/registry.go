// Package registry implements a named container of cells and
// constraints.
//
// A Registry owns what is added to it: Remove and Close close the
// cells. Components are wired by name.
package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dacapoday/slot"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDuplicateName     = errors.New("duplicate name")
	ErrNotFound          = errors.New("not found")
	ErrInvalidName       = errors.New("invalid name")
	ErrInUse             = errors.New("constraint in use")
	ErrIncompatibleTypes = slot.ErrIncompatibleTypes
)

// Kind is the kind of a component.
type Kind uint8

const (
	KindValue Kind = iota + 1
	KindArray
	KindConstraint
)

func (kind Kind) String() string {
	switch kind {
	case KindValue:
		return "value"
	case KindArray:
		return "array"
	case KindConstraint:
		return "constraint"
	default:
		return fmt.Sprintf("kind(%d)", uint8(kind))
	}
}

// Component describes a registered component.
type Component struct {
	ID   uuid.UUID
	Name string
	Kind Kind
}

type entry struct {
	Component
	value      slot.Value
	array      slot.Array
	constraint slot.Constraint
}

// Registry is a named container. Not thread-safe.
// The zero value is not usable; call New.
type Registry struct {
	order   []string
	entries map[string]*entry
}

func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

func (reg *Registry) add(e *entry) (uuid.UUID, error) {
	if e.Name == "" {
		return uuid.Nil, ErrInvalidName
	}
	if _, ok := reg.entries[e.Name]; ok {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrDuplicateName, e.Name)
	}
	e.ID = uuid.New()
	reg.entries[e.Name] = e
	reg.order = append(reg.order, e.Name)
	slot.Logger().Debug("registry: add",
		zap.String("name", e.Name), zap.Stringer("kind", e.Kind), zap.Stringer("id", e.ID))
	return e.ID, nil
}

func (reg *Registry) AddValue(name string, v slot.Value) (uuid.UUID, error) {
	return reg.add(&entry{Component: Component{Name: name, Kind: KindValue}, value: v})
}

func (reg *Registry) AddArray(name string, a slot.Array) (uuid.UUID, error) {
	return reg.add(&entry{Component: Component{Name: name, Kind: KindArray}, array: a})
}

func (reg *Registry) AddConstraint(name string, c slot.Constraint) (uuid.UUID, error) {
	return reg.add(&entry{Component: Component{Name: name, Kind: KindConstraint}, constraint: c})
}

func (reg *Registry) lookup(name string, kind Kind) (*entry, error) {
	e, ok := reg.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if kind != 0 && e.Kind != kind {
		return nil, fmt.Errorf("%w: %q is a %s, not a %s", ErrNotFound, name, e.Kind, kind)
	}
	return e, nil
}

func (reg *Registry) Value(name string) (slot.Value, error) {
	e, err := reg.lookup(name, KindValue)
	if err != nil {
		return nil, err
	}
	return e.value, nil
}

func (reg *Registry) Array(name string) (slot.Array, error) {
	e, err := reg.lookup(name, KindArray)
	if err != nil {
		return nil, err
	}
	return e.array, nil
}

func (reg *Registry) Constraint(name string) (slot.Constraint, error) {
	e, err := reg.lookup(name, KindConstraint)
	if err != nil {
		return nil, err
	}
	return e.constraint, nil
}

func (reg *Registry) Component(name string) (Component, error) {
	e, err := reg.lookup(name, 0)
	if err != nil {
		return Component{}, err
	}
	return e.Component, nil
}

// Components returns every component in insertion order.
func (reg *Registry) Components() []Component {
	comps := make([]Component, 0, len(reg.order))
	for _, name := range reg.order {
		comps = append(comps, reg.entries[name].Component)
	}
	return comps
}

// Names returns the component names in sorted order.
func (reg *Registry) Names() []string {
	names := slices.Clone(reg.order)
	slices.Sort(names)
	return names
}

func (reg *Registry) Len() int {
	return len(reg.order)
}

// Connect makes src the controller of dst. Both must be values or both
// arrays.
func (reg *Registry) Connect(src, dst string) error {
	s, d, err := reg.pair(src, dst)
	if err != nil {
		return err
	}
	if s.Kind == KindValue {
		err = s.value.Connect(d.value)
	} else {
		err = s.array.Connect(d.array)
	}
	if err != nil {
		return fmt.Errorf("connect %q to %q: %w", src, dst, err)
	}
	return nil
}

// Disconnect undoes Connect.
func (reg *Registry) Disconnect(src, dst string) error {
	s, d, err := reg.pair(src, dst)
	if err != nil {
		return err
	}
	if s.Kind == KindValue {
		err = s.value.Disconnect(d.value)
	} else {
		err = s.array.Disconnect(d.array)
	}
	if err != nil {
		return fmt.Errorf("disconnect %q from %q: %w", dst, src, err)
	}
	return nil
}

func (reg *Registry) pair(src, dst string) (s, d *entry, err error) {
	if s, err = reg.lookup(src, 0); err != nil {
		return
	}
	if d, err = reg.lookup(dst, 0); err != nil {
		return
	}
	if s.Kind != d.Kind || s.Kind == KindConstraint {
		err = fmt.Errorf("%w: %s %q and %s %q", ErrIncompatibleTypes, s.Kind, src, d.Kind, dst)
	}
	return
}

// Remove closes the named component and drops it. A constraint that
// still has registered arrays of this registry is refused with ErrInUse.
func (reg *Registry) Remove(name string) error {
	e, err := reg.lookup(name, 0)
	if err != nil {
		return err
	}
	if e.Kind == KindConstraint {
		for _, other := range reg.entries {
			if other.Kind == KindArray && e.constraint.Registered(other.array) {
				return fmt.Errorf("%w: %q has %q", ErrInUse, name, other.Name)
			}
		}
	}
	reg.close(e)
	delete(reg.entries, name)
	reg.order = slices.DeleteFunc(reg.order, func(n string) bool { return n == name })
	return nil
}

func (reg *Registry) close(e *entry) {
	switch e.Kind {
	case KindValue:
		e.value.Close()
	case KindArray:
		e.array.Close()
	case KindConstraint:
		if closer, ok := e.constraint.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

// Close closes every cell in reverse insertion order, then every
// constraint, and empties the registry.
func (reg *Registry) Close() {
	for _, kind := range []Kind{KindValue, KindArray, KindConstraint} {
		for _, name := range slices.Backward(reg.order) {
			if e := reg.entries[name]; e.Kind == kind {
				reg.close(e)
			}
		}
	}
	reg.order = nil
	clear(reg.entries)
}
