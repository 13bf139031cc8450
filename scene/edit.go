package scene

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dacapoday/slot"
	"github.com/dacapoday/slot/array"
	"github.com/dacapoday/slot/constraint"
	"github.com/dacapoday/slot/registry"
	"gopkg.in/yaml.v3"
)

var ErrInvalidEdit = errors.New("invalid edit")

func splitEdit(edit string) (name, raw string, err error) {
	name, raw, ok := strings.Cut(edit, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("%w: %q is not name=value", ErrInvalidEdit, edit)
	}
	return name, strings.TrimSpace(raw), nil
}

func decodeAs[T any](raw string) (v T, err error) {
	err = yaml.Unmarshal([]byte(raw), &v)
	return
}

// ApplySet applies an edit of the form name=value. A value cell takes a
// YAML scalar (or [x, y, z] for vec3); an array takes a YAML list that
// replaces its contents.
func ApplySet(reg *registry.Registry, edit string) error {
	name, raw, err := splitEdit(edit)
	if err != nil {
		return err
	}
	comp, err := reg.Component(name)
	if err != nil {
		return err
	}
	switch comp.Kind {
	case registry.KindValue:
		v, _ := reg.Value(name)
		err = setValue(v, raw)
	case registry.KindArray:
		a, _ := reg.Array(name)
		err = setArray(a, raw)
	default:
		err = fmt.Errorf("%w: %s %q cannot be set, resize it", ErrInvalidEdit, comp.Kind, name)
	}
	if err != nil {
		return fmt.Errorf("set %q: %w", name, err)
	}
	return nil
}

func setValue(v slot.Value, raw string) error {
	var (
		val any
		err error
	)
	switch v.Any().(type) {
	case float64:
		val, err = decodeAs[float64](raw)
	case int:
		val, err = decodeAs[int](raw)
	case bool:
		val, err = decodeAs[bool](raw)
	case string:
		val, err = decodeAs[string](raw)
	case [3]float64:
		val, err = decodeAs[[3]float64](raw)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidEdit, v.TypeName())
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEdit, err)
	}
	return v.SetAny(val)
}

func setArray(a slot.Array, raw string) error {
	switch cell := a.(type) {
	case *array.Cell[float64]:
		return assign(cell, raw)
	case *array.Cell[int]:
		return assign(cell, raw)
	case *array.Cell[bool]:
		return assign(cell, raw)
	}
	return fmt.Errorf("%w: %s", ErrInvalidEdit, a.TypeName())
}

func assign[T any](cell *array.Cell[T], raw string) error {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &node); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEdit, err)
	}
	if len(node.Content) == 0 {
		return cell.Assign(nil)
	}
	data, err := decodeComponents[T](node.Content[0])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEdit, err)
	}
	return cell.Assign(data)
}

// ApplyResize applies an edit of the form name=n. An array is resized
// directly, a user constraint resizes everything registered with it.
func ApplyResize(reg *registry.Registry, edit string) error {
	name, raw, err := splitEdit(edit)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: size %q", ErrInvalidEdit, raw)
	}
	comp, err := reg.Component(name)
	if err != nil {
		return err
	}
	switch comp.Kind {
	case registry.KindArray:
		a, _ := reg.Array(name)
		err = a.Resize(n)
	case registry.KindConstraint:
		c, _ := reg.Constraint(name)
		u, ok := c.(*constraint.User)
		if !ok {
			return fmt.Errorf("%w: constraint %q is derived", ErrInvalidEdit, name)
		}
		err = u.SetSize(n)
	default:
		return fmt.Errorf("%w: value %q has no size", ErrInvalidEdit, name)
	}
	if err != nil {
		return fmt.Errorf("resize %q: %w", name, err)
	}
	return nil
}
