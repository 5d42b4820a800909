package patcher

import (
	"errors"
	"testing"

	"github.com/erraggy/patchkit/patch"
	"github.com/erraggy/patchkit/patcherrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGraph_Order(t *testing.T) {
	c := patch.MustNew(patch.WithName("C"))
	d := patch.MustNew(patch.WithName("D"))
	b := patch.MustNew(patch.WithName("B"), patch.DependsOn(c, d))
	a := patch.MustNew(patch.WithName("A"))

	g, err := NewGraph(a, b, a)
	require.NoError(t, err)

	assert.Equal(t, []*patch.Patch{a, b}, g.Roots(), "duplicate roots are dropped")
	assert.Equal(t, []*patch.Patch{a, c, d, b}, g.Patches())
	assert.Equal(t, []*patch.Patch{c, d}, g.Dependencies(b))
	assert.Empty(t, g.Dependencies(a))
	assert.Equal(t, 4, g.Len())
}

func TestNewGraph_Empty(t *testing.T) {
	g, err := NewGraph()
	require.NoError(t, err)
	assert.Zero(t, g.Len())
	assert.Empty(t, NewExecutor(g).RunAll())
}

func TestNewGraph_NilPatches(t *testing.T) {
	t.Run("nil root", func(t *testing.T) {
		_, err := NewGraph(patch.MustNew(patch.WithName("ok")), nil)
		require.Error(t, err)
		var ce *patcherrors.ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "roots", ce.Option)
		assert.Contains(t, ce.Message, "root patch 1 is nil")
		assert.False(t, errors.Is(err, patcherrors.ErrCyclicDependency))
	})

	t.Run("nil lazy dependency", func(t *testing.T) {
		p := patch.MustNew(patch.WithName("p"), patch.DependsOnLazy(func() []*patch.Patch {
			return []*patch.Patch{nil}
		}))
		_, err := NewGraph(p)
		require.ErrorIs(t, err, patcherrors.ErrConfig)
		assert.ErrorContains(t, err, "dependency 0 of p is nil")
	})
}

func TestNewGraph_Cycle(t *testing.T) {
	var cycleA, cycleB, cycleC *patch.Patch
	lazy := func(p **patch.Patch) patch.Option {
		return patch.DependsOnLazy(func() []*patch.Patch { return []*patch.Patch{*p} })
	}
	cycleA = patch.MustNew(patch.WithName("cycle-a"), lazy(&cycleB))
	cycleB = patch.MustNew(patch.WithName("cycle-b"), lazy(&cycleC))
	cycleC = patch.MustNew(patch.WithName("cycle-c"), lazy(&cycleA))

	executed := false
	entry := patch.MustNew(
		patch.WithName("entry"),
		patch.DependsOn(cycleB),
		patch.Execute(func(patch.Context) error {
			executed = true
			return nil
		}),
	)

	_, err := NewGraph(entry)
	require.Error(t, err)
	assert.False(t, executed)

	assert.True(t, errors.Is(err, patcherrors.ErrCyclicDependency))
	assert.True(t, errors.Is(err, patcherrors.ErrConfig))

	var ce *patcherrors.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.IsCycle)
	assert.Equal(t, []string{"cycle-b", "cycle-c", "cycle-a", "cycle-b"}, ce.Cycle)
	assert.EqualError(t, err, "cyclic dependency for dependencies: cycle-b -> cycle-c -> cycle-a -> cycle-b")
}

func TestNewGraph_SelfCycle(t *testing.T) {
	var selfLoop *patch.Patch
	selfLoop = patch.MustNew(patch.WithName("self"), patch.DependsOnLazy(func() []*patch.Patch {
		return []*patch.Patch{selfLoop}
	}))
	_, err := NewGraph(selfLoop)
	var ce *patcherrors.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"self", "self"}, ce.Cycle)
}

func TestNewGraph_DiamondIsNotACycle(t *testing.T) {
	base := patch.MustNew(patch.WithName("base"))
	left := patch.MustNew(patch.WithName("left"), patch.DependsOn(base))
	right := patch.MustNew(patch.WithName("right"), patch.DependsOn(base))
	top := patch.MustNew(patch.WithName("top"), patch.DependsOn(left, right))

	g, err := NewGraph(top)
	require.NoError(t, err)
	assert.Equal(t, []*patch.Patch{base, left, right, top}, g.Patches())
}
