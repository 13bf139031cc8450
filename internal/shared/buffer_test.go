package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func fill(buf *Buffer[int]) {
	for i := range buf.Data() {
		buf.Data()[i] = i
	}
}

func TestBufferResize(t *testing.T) {
	buf := New[int](1)
	require.NoError(t, buf.Resize(5))
	fill(buf)

	require.NoError(t, buf.Resize(3))
	require.Equal(t, []int{0, 1, 2}, buf.Data())

	require.NoError(t, buf.Resize(7))
	require.Equal(t, []int{0, 1, 2, 0, 0, 0, 0}, buf.Data())
	require.Equal(t, 7, buf.Len())
}

func TestBufferMultiplicity(t *testing.T) {
	buf := New[float64](3)
	require.NoError(t, buf.Resize(2))
	require.Equal(t, 2, buf.Len())
	require.Len(t, buf.Data(), 6)

	copy(buf.Element(1), []float64{1, 2, 3})
	require.Equal(t, []float64{0, 0, 0, 1, 2, 3}, buf.Data())

	// element slices are capped so append cannot spill into a neighbour
	require.Equal(t, 3, cap(buf.Element(0)))

	require.Equal(t, 1, New[int](0).Multiplicity())
}

func TestBufferResizeInvalid(t *testing.T) {
	buf := New[int](1)
	require.ErrorIs(t, buf.Resize(-1), ErrInvalidSize)
	require.ErrorIs(t, buf.Resize(math.MaxInt32), ErrOutOfMemory)
	require.Equal(t, 0, buf.Len())
}

func TestBufferRefs(t *testing.T) {
	buf := New[int](1)
	require.Equal(t, 0, buf.Refs())
	require.NoError(t, buf.Resize(2))

	buf.Retain()
	buf.Retain()
	require.False(t, buf.Release())
	require.Equal(t, 2, buf.Len())
	require.True(t, buf.Release())
	require.Equal(t, 0, buf.Len())
}

func TestBufferClone(t *testing.T) {
	buf := New[int](1)
	require.NoError(t, buf.Resize(3))
	fill(buf)
	buf.Retain()

	clone := buf.Clone()
	require.Equal(t, 0, clone.Refs())
	require.Equal(t, buf.Data(), clone.Data())

	clone.Data()[0] = 42
	require.Equal(t, 0, buf.Data()[0])
}

func TestBufferUnique(t *testing.T) {
	buf := New[int](1)
	require.NoError(t, buf.Resize(3))
	fill(buf)
	buf.Retain()

	// sole owner keeps the same storage
	require.Same(t, buf, buf.Unique())

	buf.Retain()
	fork := buf.Unique()
	require.NotSame(t, buf, fork)
	require.Equal(t, 1, fork.Refs())
	require.Equal(t, 1, buf.Refs())
	require.Equal(t, []int{0, 1, 2}, fork.Data())

	fork.Data()[1] = 99
	require.Equal(t, 1, buf.Data()[1])
}

func TestBufferSwap(t *testing.T) {
	buf := New[int](1)
	require.NoError(t, buf.Resize(2))
	fill(buf)

	old := buf.Data()
	require.NoError(t, buf.Resize(4))
	buf.Swap(old)
	require.Equal(t, []int{0, 1}, buf.Data())
}

func TestBufferOf(t *testing.T) {
	vals := []int{4, 5, 6}
	buf := Of(vals)
	require.Equal(t, 3, buf.Len())
	require.Equal(t, 1, buf.Multiplicity())
	require.Equal(t, 0, buf.Refs())

	vals[0] = 9
	require.Equal(t, []int{4, 5, 6}, buf.Data())

	empty := Of[int](nil)
	require.Equal(t, 0, empty.Len())
	require.NoError(t, empty.Resize(2))
	require.Equal(t, []int{0, 0}, empty.Data())
}
