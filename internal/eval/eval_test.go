package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/errs"
)

func intLit(n int64) *core.Lit { return &core.Lit{Kind: core.LitInt, Val: n} }

func TestHandleMatchingArm(t *testing.T) {
	ev := New()
	h := &core.Handle{
		Body: &core.Raise{Ctor: "Boom", Payload: intLit(7)},
		Tree: &core.Switch{
			Cases: []core.Case{{
				Ctor:  "Boom",
				Arity: 1,
				Next:  &core.Leaf{Bindings: []core.Bind{{Name: "n", Path: core.Path{{Index: 0}}}}, Body: &core.Var{Name: "n"}},
			}},
		},
	}
	v, err := ev.Eval(NewMapEnvironment(nil), h)
	require.NoError(t, err)
	assert.Equal(t, VInt(7), v)
}

// TestHandleReRaisesUnmatched pins the fall-through rule: an exception no
// arm covers keeps propagating as the original packet, not as a fresh
// match failure.
func TestHandleReRaisesUnmatched(t *testing.T) {
	ev := New()
	h := &core.Handle{
		Body: &core.Raise{Ctor: "Boom"},
		Tree: &core.Switch{
			Cases: []core.Case{{Ctor: "Other", Next: &core.Leaf{Body: intLit(0)}}},
		},
	}
	_, err := ev.Eval(NewMapEnvironment(nil), h)
	require.Error(t, err)
	exc, ok := err.(*Exception)
	require.True(t, ok)
	assert.Equal(t, "Boom", exc.Val.Name)
}

func TestHandlerSkippedOnSuccess(t *testing.T) {
	ev := New()
	h := &core.Handle{
		Body: intLit(5),
		Tree: &core.Switch{Cases: []core.Case{{Ctor: "Boom", Next: &core.Leaf{Body: intLit(0)}}}},
	}
	v, err := ev.Eval(NewMapEnvironment(nil), h)
	require.NoError(t, err)
	assert.Equal(t, VInt(5), v)
}

func TestDivisionByZero(t *testing.T) {
	_, err := EvalBinOp("/", VInt(1), VInt(0))
	require.Error(t, err)
	rep, ok := errs.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errs.EvalDiv, rep.Code)

	_, err = EvalBinOp("/", VReal(1), VReal(0))
	require.Error(t, err)
}

func TestIntegerOverflow(t *testing.T) {
	const maxInt = int64(^uint64(0) >> 1)
	_, err := EvalBinOp("+", VInt(maxInt), VInt(1))
	require.Error(t, err)
	rep, ok := errs.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errs.EvalOverflow, rep.Code)
}

func TestEvaluationOrderLeftToRight(t *testing.T) {
	// (raise Boom) + (raise Other) must raise Boom.
	ev := New()
	e := &core.BinOp{Op: "+", Left: &core.Raise{Ctor: "Boom"}, Right: &core.Raise{Ctor: "Other"}}
	_, err := ev.Eval(NewMapEnvironment(nil), e)
	exc, ok := err.(*Exception)
	require.True(t, ok)
	assert.Equal(t, "Boom", exc.Val.Name)
}

func TestListValuesShareConstructorShape(t *testing.T) {
	xs := FromSlice([]Value{VInt(1), VInt(2)})
	elems, ok := ListElems(xs)
	require.True(t, ok)
	assert.Equal(t, []Value{VInt(1), VInt(2)}, elems)
	assert.Equal(t, "[1, 2]", xs.String())

	con, ok := xs.(*VCon)
	require.True(t, ok)
	assert.Equal(t, "::", con.Name)
}
