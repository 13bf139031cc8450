package observer

import (
	"testing"

	"github.com/dacapoday/slot"
	"github.com/stretchr/testify/require"
)

func TestSetAddRemove(t *testing.T) {
	var set Set
	a, b := &slot.Forward{}, &slot.Forward{}

	require.True(t, set.Add(a))
	require.False(t, set.Add(a))
	require.True(t, set.Add(b))
	require.Equal(t, 2, set.Len())

	require.True(t, set.Remove(a))
	require.False(t, set.Remove(a))
	require.False(t, set.Has(a))
	require.True(t, set.Has(b))
}

func TestSetEachSkipsRemoved(t *testing.T) {
	var set Set
	var visited []int
	var second *slot.Forward

	first := &slot.Forward{Value: func() {
		visited = append(visited, 1)
		set.Remove(second)
	}}
	second = &slot.Forward{Value: func() { visited = append(visited, 2) }}
	third := &slot.Forward{Value: func() { visited = append(visited, 3) }}
	set.Add(first)
	set.Add(second)
	set.Add(third)

	set.Each(func(d slot.Dependent) { d.ValueChanged() })
	require.Equal(t, []int{1, 3}, visited)
}

func TestSetEachIgnoresAdded(t *testing.T) {
	var set Set
	calls := 0
	late := &slot.Forward{Value: func() { calls++ }}
	set.Add(&slot.Forward{Value: func() { set.Add(late) }})

	set.Each(func(d slot.Dependent) { d.ValueChanged() })
	require.Equal(t, 0, calls)
	require.True(t, set.Has(late))
}

func TestSetDrain(t *testing.T) {
	var set Set
	polite := &slot.Forward{}
	polite.Deleted = func(slot.Source) { set.Remove(polite) }
	stubborn := &slot.Forward{}
	set.Add(polite)
	set.Add(stubborn)

	forced := set.Drain(func(d slot.Dependent) { d.ControllerDeleted(nil) })
	require.Equal(t, 1, forced)
	require.Equal(t, 0, set.Len())
}

func TestSetAny(t *testing.T) {
	var set Set
	set.Add(&slot.Forward{})
	set.Add(&slot.Forward{Veto: func(n int) bool { return n > 2 }})

	veto := func(n int) func(slot.Dependent) bool {
		return func(d slot.Dependent) bool { return d.VetoResize(n) }
	}
	require.False(t, set.Any(veto(2)))
	require.True(t, set.Any(veto(3)))
}
