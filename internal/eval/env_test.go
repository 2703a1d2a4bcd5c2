package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseEnv is the {true, false, a=0, b=1, c=2} starting environment of the
// chain-length scenario: five SubEnvironment layers over the empty root.
func baseEnv() *Environment {
	var e *Environment
	e = e.Extend("true", VBool(true))
	e = e.Extend("false", VBool(false))
	e = e.Extend("a", VInt(0))
	e = e.Extend("b", VInt(1))
	e = e.Extend("c", VInt(2))
	return e
}

func TestLookupReturnsInnermostBinding(t *testing.T) {
	e := baseEnv().Extend("a", VInt(10))
	v, ok := e.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, VInt(10), v)

	v, ok = e.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, VInt(1), v)

	_, ok = e.Lookup("zzz")
	assert.False(t, ok)
}

// TestEnvironmentChainScenario pins the exact distinct-count and
// chain-length sequence of successively binding true, true, foo, true over
// {a=0,b=1,c=2}: counts 5,5,6,6 and lengths 6,6,7,8. Rebinding the head's
// own name replaces the head layer; rebinding a name bound below a newer
// one appends.
func TestEnvironmentChainScenario(t *testing.T) {
	e := baseEnv()
	require.Equal(t, 5, e.DistinctCount())
	require.Equal(t, 5, e.Depth())

	type step struct {
		name     string
		distinct int
		depth    int
	}
	steps := []step{
		{"true", 5, 6},
		{"true", 5, 6},
		{"foo", 6, 7},
		{"true", 6, 8},
	}
	for _, st := range steps {
		e = e.Extend(st.name, VBool(true))
		assert.Equal(t, st.distinct, e.DistinctCount(), "distinct after binding %s", st.name)
		assert.Equal(t, st.depth, e.Depth(), "depth after binding %s", st.name)
	}
}

func TestRebindingDoesNotIncreaseDistinctCount(t *testing.T) {
	e := baseEnv()
	n := e.DistinctCount()
	e = e.Extend("b", VInt(99))
	assert.Equal(t, n, e.DistinctCount())
}

func TestVisitAllInnermostFirstNoDuplicates(t *testing.T) {
	e := baseEnv().Extend("a", VInt(10))
	var names []string
	seen := map[string]Value{}
	e.VisitAll(func(name string, v Value) {
		names = append(names, name)
		seen[name] = v
	})
	assert.Len(t, names, 5)
	assert.Equal(t, "a", names[0])
	assert.Equal(t, VInt(10), seen["a"])
}

func TestBindAllFlattens(t *testing.T) {
	e := baseEnv().Extend("x", VInt(7))
	flat := e.BindAll()
	assert.Equal(t, 0, flat.Depth())
	assert.Equal(t, e.DistinctCount(), flat.DistinctCount())

	v, ok := flat.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, VInt(7), v)
	v, ok = flat.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, VInt(2), v)
}
