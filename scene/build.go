package scene

import (
	"fmt"

	"github.com/dacapoday/slot"
	"github.com/dacapoday/slot/array"
	"github.com/dacapoday/slot/constraint"
	"github.com/dacapoday/slot/registry"
	"github.com/dacapoday/slot/value"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Build creates every component of the scene in a new registry and
// wires it. On error the partial registry is closed.
//
// Arrays are created first with their literal contents, then the
// constraints (a linear driver must exist), then the arrays are bound
// to their constraints, then values are created and finally
// controllers are wired.
func (sc *Scene) Build() (_ *registry.Registry, err error) {
	reg := registry.New()
	defer func() {
		if err != nil {
			reg.Close()
		}
	}()

	literal := make(map[string]int)
	for _, a := range sc.Arrays {
		cell, n, err := newArray(a)
		if err != nil {
			return nil, err
		}
		if _, err = reg.AddArray(a.Name, cell); err != nil {
			cell.Close()
			return nil, err
		}
		if n >= 0 {
			literal[a.Name] = n
		}
	}

	for _, c := range sc.Constraints {
		var con slot.Constraint
		switch c.Kind {
		case KindUser:
			con = constraint.NewUser(c.Size)
		case KindLinear:
			driver, err := reg.Array(c.Driver)
			if err != nil {
				return nil, err
			}
			l, err := constraint.NewLinear(driver, c.A, c.B)
			if err != nil {
				return nil, fmt.Errorf("%w: constraint %q: %w", ErrInvalidScene, c.Name, err)
			}
			con = l
		}
		if _, err = reg.AddConstraint(c.Name, con); err != nil {
			return nil, err
		}
	}

	for _, a := range sc.Arrays {
		if a.Constraint == "" {
			continue
		}
		cell, _ := reg.Array(a.Name)
		con, _ := reg.Constraint(a.Constraint)
		if n, ok := literal[a.Name]; ok && n != con.Size() {
			return nil, invalid("array %q: %d elements under constraint %q of size %d",
				a.Name, n, a.Constraint, con.Size())
		}
		if err = cell.SetConstraint(con); err != nil {
			return nil, fmt.Errorf("array %q: %w", a.Name, err)
		}
	}

	for _, v := range sc.Values {
		cell, err := newValue(v)
		if err != nil {
			return nil, err
		}
		if _, err = reg.AddValue(v.Name, cell); err != nil {
			cell.Close()
			return nil, err
		}
	}

	for _, v := range sc.Values {
		if v.Controller != "" {
			if err = reg.Connect(v.Controller, v.Name); err != nil {
				return nil, err
			}
		}
	}
	for _, a := range sc.Arrays {
		if a.Controller != "" {
			if err = reg.Connect(a.Controller, a.Name); err != nil {
				return nil, err
			}
		}
	}

	slot.Logger().Debug("scene: built",
		zap.Int("constraints", len(sc.Constraints)),
		zap.Int("values", len(sc.Values)),
		zap.Int("arrays", len(sc.Arrays)))
	return reg, nil
}

func newValue(v Value) (slot.Value, error) {
	switch v.Type {
	case "float":
		return buildValue[float64](v)
	case "int":
		return buildValue[int](v)
	case "bool":
		return buildValue[bool](v)
	case "string":
		return buildValue[string](v)
	case "vec3":
		return buildValue[[3]float64](v)
	}
	return nil, invalid("value %q: unknown type %q", v.Name, v.Type)
}

func buildValue[T comparable](v Value) (slot.Value, error) {
	var initial T
	if !v.Value.IsZero() {
		if err := v.Value.Decode(&initial); err != nil {
			return nil, fmt.Errorf("%w: value %q: %w", ErrInvalidScene, v.Name, err)
		}
	}
	var opts []value.Option
	if v.Output {
		opts = append(opts, value.NoInput())
	}
	return value.New(initial, opts...), nil
}

// newArray returns the cell and the element count of its literal
// contents, or -1 without one.
func newArray(a Array) (slot.Array, int, error) {
	switch a.Type {
	case "float":
		return buildArray[float64](a)
	case "int":
		return buildArray[int](a)
	case "bool":
		return buildArray[bool](a)
	}
	return nil, 0, invalid("array %q: unknown type %q", a.Name, a.Type)
}

func buildArray[T any](a Array) (slot.Array, int, error) {
	cell := array.New[T](a.Multiplicity)
	n := -1
	switch {
	case !a.Values.IsZero():
		data, err := decodeComponents[T](&a.Values)
		if err == nil {
			err = cell.Assign(data)
		}
		if err != nil {
			cell.Close()
			return nil, 0, fmt.Errorf("%w: array %q: %w", ErrInvalidScene, a.Name, err)
		}
		n = cell.Size()
	case a.Size != nil:
		if err := cell.Resize(*a.Size); err != nil {
			cell.Close()
			return nil, 0, fmt.Errorf("%w: array %q: %w", ErrInvalidScene, a.Name, err)
		}
	}
	return cell, n, nil
}

// decodeComponents accepts a flat list or a list of per-element lists.
func decodeComponents[T any](node *yaml.Node) ([]T, error) {
	var flat []T
	if err := node.Decode(&flat); err == nil {
		return flat, nil
	}
	var nested [][]T
	if err := node.Decode(&nested); err != nil {
		return nil, err
	}
	for _, elem := range nested {
		flat = append(flat, elem...)
	}
	return flat, nil
}
