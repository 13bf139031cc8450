package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dacapoday/slot/scene"
	"github.com/stretchr/testify/require"
)

const doc = `
constraints:
  - {name: faces, kind: user, size: 1}
  - {name: corners, kind: linear, driver: tris, a: 3}
values:
  - {name: radius, type: float, value: 1}
  - {name: label, type: string}
arrays:
  - {name: tris, type: int, constraint: faces}
  - {name: points, type: float, multiplicity: 3, constraint: corners}
`

func TestEvalListing(t *testing.T) {
	sc, err := scene.Parse([]byte(doc))
	require.NoError(t, err)
	reg, err := sc.Build()
	require.NoError(t, err)
	defer reg.Close()

	require.NoError(t, edit(reg, []string{"faces=2"}, []string{"radius=2.5"}))

	var buf bytes.Buffer
	require.NoError(t, list(&buf, reg, 40))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)

	want := [][]string{
		{"tris", "array", "int", "2", "[0", "0]"},
		{"points", "array", "float64", "6"},
		{"faces", "constraint", "user", "2", "-"},
		{"corners", "constraint", "linear(3,+0)", "6", "-"},
		{"radius", "value", "float64", "-", "2.5"},
		{"label", "value", "string", "-", "(empty)"},
	}
	for i, fields := range want {
		got := strings.Fields(lines[i])
		require.GreaterOrEqual(t, len(got), len(fields), lines[i])
		require.Equal(t, fields, got[:len(fields)], lines[i])
	}
	require.True(t, strings.HasSuffix(lines[1], "..."), lines[1])
}

func TestEditFailure(t *testing.T) {
	sc, err := scene.Parse([]byte(doc))
	require.NoError(t, err)
	reg, err := sc.Build()
	require.NoError(t, err)
	defer reg.Close()

	require.ErrorIs(t, edit(reg, []string{"points=two"}, nil), scene.ErrInvalidEdit)
	require.ErrorIs(t, edit(reg, nil, []string{"radius=x"}), scene.ErrInvalidEdit)
}

func TestDisplay(t *testing.T) {
	require.Equal(t, "(empty)", display("", 10))
	require.Equal(t, "short", display("short", 10))
	require.Equal(t, "abcdefg...", display("abcdefghijklmnop", 10))
}
