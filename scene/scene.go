// Package scene loads a YAML description of a cell graph and builds it
// into a registry.
//
//	constraints:
//	  - {name: faces, kind: user, size: 2}
//	  - {name: corners, kind: linear, driver: tris, a: 3}
//	values:
//	  - {name: radius, type: float, value: 1.5}
//	  - {name: mirror, type: float, controller: radius}
//	arrays:
//	  - {name: tris, type: int, constraint: faces}
//	  - {name: points, type: float, multiplicity: 3, constraint: corners}
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidScene = errors.New("invalid scene")

// Scene is the decoded form of a scene file.
type Scene struct {
	Constraints []Constraint `yaml:"constraints"`
	Values      []Value      `yaml:"values"`
	Arrays      []Array      `yaml:"arrays"`
}

// Constraint declares a user or linear constraint.
type Constraint struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Size   int    `yaml:"size"`
	Driver string `yaml:"driver"`
	A      int    `yaml:"a"`
	B      int    `yaml:"b"`
}

// Value declares a scalar cell. Value and Controller are exclusive.
type Value struct {
	Name       string    `yaml:"name"`
	Type       string    `yaml:"type"`
	Value      yaml.Node `yaml:"value"`
	Controller string    `yaml:"controller"`
	Output     bool      `yaml:"output"`
}

// Array declares an array cell. Values lists the components flat,
// Multiplicity per element. Size and Values are exclusive, and neither
// may be given with Controller.
type Array struct {
	Name         string    `yaml:"name"`
	Type         string    `yaml:"type"`
	Multiplicity int       `yaml:"multiplicity"`
	Size         *int      `yaml:"size"`
	Values       yaml.Node `yaml:"values"`
	Constraint   string    `yaml:"constraint"`
	Controller   string    `yaml:"controller"`
}

const (
	KindUser   = "user"
	KindLinear = "linear"
)

var (
	valueTypes = []string{"float", "int", "bool", "string", "vec3"}
	arrayTypes = []string{"float", "int", "bool"}
)

// Load reads and parses the scene file at path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene load failed (%s): %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene parse failed (%s): %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scene. Unknown fields are rejected.
func Parse(data []byte) (*Scene, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scene
	if err := dec.Decode(&sc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidScene, fmt.Sprintf(format, args...))
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Validate checks names, types and references, and fills defaults.
func (sc *Scene) Validate() error {
	kinds := make(map[string]string)
	declare := func(name, kind string) error {
		if name == "" {
			return invalid("%s without a name", kind)
		}
		if prev, ok := kinds[name]; ok {
			return invalid("%q declared as %s and %s", name, prev, kind)
		}
		kinds[name] = kind
		return nil
	}
	for _, c := range sc.Constraints {
		if err := declare(c.Name, "constraint"); err != nil {
			return err
		}
	}
	for _, v := range sc.Values {
		if err := declare(v.Name, "value"); err != nil {
			return err
		}
	}
	for _, a := range sc.Arrays {
		if err := declare(a.Name, "array"); err != nil {
			return err
		}
	}

	for _, c := range sc.Constraints {
		switch c.Kind {
		case KindUser:
			if c.Size < 0 {
				return invalid("constraint %q: negative size %d", c.Name, c.Size)
			}
		case KindLinear:
			if kinds[c.Driver] != "array" {
				return invalid("constraint %q: driver %q is not an array", c.Name, c.Driver)
			}
		default:
			return invalid("constraint %q: unknown kind %q", c.Name, c.Kind)
		}
	}
	for _, v := range sc.Values {
		if !oneOf(v.Type, valueTypes) {
			return invalid("value %q: unknown type %q", v.Name, v.Type)
		}
		if v.Controller != "" {
			if kinds[v.Controller] != "value" {
				return invalid("value %q: controller %q is not a value", v.Name, v.Controller)
			}
			if !v.Value.IsZero() {
				return invalid("value %q: value and controller are exclusive", v.Name)
			}
		}
	}
	for i := range sc.Arrays {
		a := &sc.Arrays[i]
		if !oneOf(a.Type, arrayTypes) {
			return invalid("array %q: unknown type %q", a.Name, a.Type)
		}
		if a.Multiplicity == 0 {
			a.Multiplicity = 1
		}
		if a.Multiplicity < 0 {
			return invalid("array %q: multiplicity %d", a.Name, a.Multiplicity)
		}
		if a.Size != nil && *a.Size < 0 {
			return invalid("array %q: negative size %d", a.Name, *a.Size)
		}
		if a.Size != nil && !a.Values.IsZero() {
			return invalid("array %q: size and values are exclusive", a.Name)
		}
		if a.Constraint != "" && kinds[a.Constraint] != "constraint" {
			return invalid("array %q: constraint %q is not a constraint", a.Name, a.Constraint)
		}
		if a.Controller != "" {
			if kinds[a.Controller] != "array" {
				return invalid("array %q: controller %q is not an array", a.Name, a.Controller)
			}
			if a.Size != nil || !a.Values.IsZero() {
				return invalid("array %q: size or values given with a controller", a.Name)
			}
		}
	}
	return nil
}
