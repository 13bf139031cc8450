package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dacapoday/slot"
	"github.com/dacapoday/slot/array"
	"github.com/dacapoday/slot/registry"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const mesh = `
constraints:
  - {name: faces, kind: user, size: 2}
  - {name: corners, kind: linear, driver: tris, a: 3}
values:
  - {name: radius, type: float, value: 1.5}
  - {name: mirror, type: float, controller: radius}
  - {name: origin, type: vec3, value: [1, 2, 3]}
  - {name: label, type: string, value: cube}
  - {name: area, type: float, output: true, value: 2}
arrays:
  - {name: tris, type: int, constraint: faces}
  - {name: points, type: float, multiplicity: 3, constraint: corners}
  - {name: weights, type: float, values: [0.5, 1]}
  - {name: shadow, type: float, controller: weights}
  - name: normals
    type: float
    multiplicity: 3
    values:
      - [0, 0, 1]
      - [0, 1, 0]
`

func build(t *testing.T, doc string) *registry.Registry {
	t.Helper()
	sc, err := Parse([]byte(doc))
	require.NoError(t, err)
	reg, err := sc.Build()
	require.NoError(t, err)
	t.Cleanup(reg.Close)
	return reg
}

func floats(t *testing.T, reg *registry.Registry, name string) []float64 {
	t.Helper()
	a, err := reg.Array(name)
	require.NoError(t, err)
	return a.(*array.Cell[float64]).Slice()
}

func size(t *testing.T, reg *registry.Registry, name string) int {
	t.Helper()
	a, err := reg.Array(name)
	require.NoError(t, err)
	return a.Size()
}

func valueOf(t *testing.T, reg *registry.Registry, name string) any {
	t.Helper()
	v, err := reg.Value(name)
	require.NoError(t, err)
	return v.Any()
}

func TestBuild(t *testing.T) {
	reg := build(t, mesh)
	require.Equal(t, 12, reg.Len())

	require.Equal(t, 2, size(t, reg, "tris"))
	require.Equal(t, 6, size(t, reg, "points"))
	require.Equal(t, 2, size(t, reg, "shadow"))
	require.Equal(t, 2, size(t, reg, "normals"))
	if diff := cmp.Diff([]float64{0, 0, 1, 0, 1, 0}, floats(t, reg, "normals")); diff != "" {
		t.Fatalf("normals (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.5, 1}, floats(t, reg, "shadow")); diff != "" {
		t.Fatalf("shadow (-want +got):\n%s", diff)
	}

	require.Equal(t, 1.5, valueOf(t, reg, "mirror"))
	require.Equal(t, [3]float64{1, 2, 3}, valueOf(t, reg, "origin"))
	require.Equal(t, "cube", valueOf(t, reg, "label"))
	require.Equal(t, 2.0, valueOf(t, reg, "area"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(mesh), 0o644))

	sc, err := Load(path)
	require.NoError(t, err)
	require.Len(t, sc.Arrays, 5)
	require.Equal(t, 1, sc.Arrays[0].Multiplicity)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseEmpty(t *testing.T) {
	sc, err := Parse(nil)
	require.NoError(t, err)
	reg, err := sc.Build()
	require.NoError(t, err)
	defer reg.Close()
	require.Equal(t, 0, reg.Len())
}

func TestParseInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field":    "values: [{name: a, type: float, colour: red}]",
		"duplicate":        "values: [{name: a, type: int}]\narrays: [{name: a, type: int}]",
		"unnamed":          "values: [{type: int}]",
		"value type":       "values: [{name: a, type: quat}]",
		"array type":       "arrays: [{name: a, type: string}]",
		"constraint kind":  "constraints: [{name: c, kind: quadratic}]",
		"negative size":    "constraints: [{name: c, kind: user, size: -1}]",
		"missing driver":   "constraints: [{name: c, kind: linear, driver: nope}]",
		"value controller": "values: [{name: a, type: int, controller: b}]\narrays: [{name: b, type: int}]",
		"array controller": "arrays: [{name: a, type: int, controller: nope}]",
		"value and wire":   "values: [{name: a, type: int}, {name: b, type: int, value: 1, controller: a}]",
		"size and values":  "arrays: [{name: a, type: int, size: 2, values: [1, 2]}]",
		"wired with size":  "arrays: [{name: a, type: int}, {name: b, type: int, size: 1, controller: a}]",
		"array constraint": "arrays: [{name: a, type: int, constraint: nope}]",
		"negative array":   "arrays: [{name: a, type: int, size: -2}]",
		"multiplicity":     "arrays: [{name: a, type: int, multiplicity: -3}]",
		"not yaml":         "values: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.ErrorIs(t, err, ErrInvalidScene)
		})
	}
}

func TestBuildInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"literal type":    "values: [{name: a, type: int, value: hello}]",
		"array literal":   "arrays: [{name: a, type: float, multiplicity: 2, values: [1, 2, 3]}]",
		"literal count":   "constraints: [{name: c, kind: user, size: 3}]\narrays: [{name: a, type: int, constraint: c, values: [1, 2]}]",
		"negative linear": "constraints: [{name: c, kind: linear, driver: d, a: 1, b: -1}]\narrays: [{name: d, type: int}]",
	} {
		t.Run(name, func(t *testing.T) {
			sc, err := Parse([]byte(doc))
			require.NoError(t, err)
			reg, err := sc.Build()
			require.ErrorIs(t, err, ErrInvalidScene)
			require.Nil(t, reg)
		})
	}
}

func TestBuildWireMismatch(t *testing.T) {
	sc, err := Parse([]byte(`
constraints: [{name: c, kind: user, size: 3}]
arrays:
  - {name: src, type: int, values: [1, 2]}
  - {name: dst, type: int, constraint: c, controller: src}
`))
	require.NoError(t, err)
	_, err = sc.Build()
	require.ErrorIs(t, err, slot.ErrSizeMismatch)

	sc, err = Parse([]byte(`
values:
  - {name: a, type: int}
  - {name: b, type: float, controller: a}
`))
	require.NoError(t, err)
	_, err = sc.Build()
	require.ErrorIs(t, err, registry.ErrIncompatibleTypes)
}

func TestApplySet(t *testing.T) {
	reg := build(t, mesh)

	require.NoError(t, ApplySet(reg, "radius=2"))
	require.Equal(t, 2.0, valueOf(t, reg, "mirror"))
	require.NoError(t, ApplySet(reg, "origin = [0, 0, 1]"))
	require.Equal(t, [3]float64{0, 0, 1}, valueOf(t, reg, "origin"))
	require.NoError(t, ApplySet(reg, "label=sphere"))
	require.Equal(t, "sphere", valueOf(t, reg, "label"))

	// output values ignore writes
	require.NoError(t, ApplySet(reg, "area=5"))
	require.Equal(t, 2.0, valueOf(t, reg, "area"))

	require.NoError(t, ApplySet(reg, "weights=[1, 2, 3]"))
	if diff := cmp.Diff([]float64{1, 2, 3}, floats(t, reg, "shadow")); diff != "" {
		t.Fatalf("shadow (-want +got):\n%s", diff)
	}
	require.NoError(t, ApplySet(reg, "normals=[[1, 0, 0]]"))
	require.Equal(t, 1, size(t, reg, "normals"))

	require.ErrorIs(t, ApplySet(reg, "radius=abc"), ErrInvalidEdit)
	require.ErrorIs(t, ApplySet(reg, "radius"), ErrInvalidEdit)
	require.ErrorIs(t, ApplySet(reg, "faces=2"), ErrInvalidEdit)
	require.ErrorIs(t, ApplySet(reg, "nope=2"), registry.ErrNotFound)
	require.ErrorIs(t, ApplySet(reg, "points=[[1, 2, 3]]"), slot.ErrSelfConstrained)
}

func TestApplyResize(t *testing.T) {
	reg := build(t, mesh)

	require.NoError(t, ApplyResize(reg, "faces=3"))
	require.Equal(t, 3, size(t, reg, "tris"))
	require.Equal(t, 9, size(t, reg, "points"))

	require.NoError(t, ApplyResize(reg, "shadow=4"))
	require.Equal(t, 4, size(t, reg, "weights"))

	require.ErrorIs(t, ApplyResize(reg, "points=4"), slot.ErrSelfConstrained)
	require.ErrorIs(t, ApplyResize(reg, "corners=1"), ErrInvalidEdit)
	require.ErrorIs(t, ApplyResize(reg, "radius=1"), ErrInvalidEdit)
	require.ErrorIs(t, ApplyResize(reg, "faces=x"), ErrInvalidEdit)
	require.ErrorIs(t, ApplyResize(reg, "faces=-1"), slot.ErrInvalidSize)
	require.Equal(t, 9, size(t, reg, "points"))
}
