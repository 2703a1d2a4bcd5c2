package inline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlcore-lang/mlcore/internal/core"
)

func lit(n int64) *core.Lit { return &core.Lit{Kind: core.LitInt, Val: n} }

func v(name string) *core.Var { return &core.Var{Name: name} }

func add(l, r core.Expr) *core.BinOp { return &core.BinOp{Op: "+", Left: l, Right: r} }

func TestDeadBindingDropped(t *testing.T) {
	e := &core.Let{Name: "x", Value: lit(1), Body: lit(2)}
	got := New().Pass(e)
	assert.True(t, core.Equal(got, lit(2)))
}

func TestDeadBindingWithEffectKept(t *testing.T) {
	e := &core.Let{Name: "x", Value: &core.Raise{Ctor: "Boom"}, Body: lit(2)}
	got := New().Pass(e)
	_, isLet := got.(*core.Let)
	assert.True(t, isLet, "a dead binding whose RHS may raise must stay")
}

func TestOnceBindingSubstituted(t *testing.T) {
	e := &core.Let{Name: "x", Value: add(lit(1), lit(2)), Body: add(v("x"), lit(3))}
	got := New().Pass(e)
	assert.True(t, core.Equal(got, add(add(lit(1), lit(2)), lit(3))))
}

func TestMultiSafeSmallSubstituted(t *testing.T) {
	e := &core.Let{Name: "x", Value: lit(1), Body: add(v("x"), v("x"))}
	got := New().Pass(e)
	assert.True(t, core.Equal(got, add(lit(1), lit(1))))
}

func TestMultiSafeLargeKept(t *testing.T) {
	big := &core.Tuple{Elems: []core.Expr{add(lit(1), lit(2)), lit(3)}}
	e := &core.Let{Name: "x", Value: big, Body: &core.Tuple{Elems: []core.Expr{v("x"), v("x")}}}
	got := New().Pass(e)
	_, isLet := got.(*core.Let)
	assert.True(t, isLet, "a large RHS used twice must not be duplicated")
}

func TestLambdaInCallPositionSubstituted(t *testing.T) {
	lam := &core.Lambda{Param: "y", Body: v("y")}
	body := add(
		&core.App{Func: v("f"), Arg: lit(1)},
		&core.App{Func: v("f"), Arg: lit(2)},
	)
	e := &core.Let{Name: "f", Value: lam, Body: body}
	got := New().Pass(e)
	b, ok := got.(*core.BinOp)
	require.True(t, ok)
	_, ok = b.Left.(*core.App).Func.(*core.Lambda)
	assert.True(t, ok)
}

func TestLambdaEscapingKept(t *testing.T) {
	lam := &core.Lambda{Param: "y", Body: v("y")}
	body := &core.Tuple{Elems: []core.Expr{v("f"), &core.App{Func: v("f"), Arg: lit(1)}}}
	e := &core.Let{Name: "f", Value: lam, Body: body}
	got := New().Pass(e)
	_, isLet := got.(*core.Let)
	assert.True(t, isLet, "a lambda referenced outside call position must stay bound")
}

func TestRecursiveBindingNeverInlined(t *testing.T) {
	lam := &core.Lambda{Param: "n", Body: &core.App{Func: v("f"), Arg: v("n")}}
	e := &core.LetRec{Name: "f", Value: lam, Body: &core.App{Func: v("f"), Arg: lit(1)}}
	got := New().Pass(e)
	_, isRec := got.(*core.LetRec)
	assert.True(t, isRec)
}

func TestDeadRecursiveBindingDropped(t *testing.T) {
	lam := &core.Lambda{Param: "n", Body: &core.App{Func: v("f"), Arg: v("n")}}
	e := &core.LetRec{Name: "f", Value: lam, Body: lit(7)}
	got := New().Pass(e)
	assert.True(t, core.Equal(got, lit(7)))
}

func TestCaptureAvoidingSubstitution(t *testing.T) {
	// let x = y in fn y => x + y end: substituting y for x must not let the
	// lambda's own y capture it.
	e := &core.Let{
		Name:  "x",
		Value: v("y"),
		Body:  &core.Lambda{Param: "y", Body: add(v("x"), v("y"))},
	}
	got := New().Pass(e)
	lam, ok := got.(*core.Lambda)
	require.True(t, ok)
	assert.NotEqual(t, "y", lam.Param)

	b, ok := lam.Body.(*core.BinOp)
	require.True(t, ok)
	left, ok := b.Left.(*core.Var)
	require.True(t, ok)
	assert.Equal(t, "y", left.Name, "the substituted occurrence still names the outer y")
	right, ok := b.Right.(*core.Var)
	require.True(t, ok)
	assert.Equal(t, lam.Param, right.Name)
}

// TestFixedPointIdempotent pins the convergence invariant: once Run has
// converged, a further Run returns a structurally identical tree.
func TestFixedPointIdempotent(t *testing.T) {
	e := core.Expr(&core.Let{
		Name:  "a",
		Value: lit(1),
		Body: &core.Let{
			Name:  "b",
			Value: add(v("a"), lit(2)),
			Body: &core.LetRec{
				Name:  "f",
				Value: &core.Lambda{Param: "n", Body: add(&core.App{Func: v("f"), Arg: v("n")}, v("b"))},
				Body:  &core.App{Func: v("f"), Arg: v("b")},
			},
		},
	})
	in := New()
	once := in.Run(e)
	twice := in.Run(once)
	require.True(t, core.Equal(once, twice), "diff: %s", cmp.Diff(describe(once), describe(twice)))
}

// describe renders a Core tree to a comparable shape for cmp diffs without
// dragging types (which Equal ignores) into the comparison.
func describe(e core.Expr) string {
	switch e := e.(type) {
	case *core.Var:
		return e.Name
	case *core.Lit:
		return "lit"
	case *core.Lambda:
		return "(fn " + e.Param + " => " + describe(e.Body) + ")"
	case *core.App:
		return "(" + describe(e.Func) + " " + describe(e.Arg) + ")"
	case *core.Let:
		return "(let " + e.Name + " = " + describe(e.Value) + " in " + describe(e.Body) + ")"
	case *core.LetRec:
		return "(letrec " + e.Name + " = " + describe(e.Value) + " in " + describe(e.Body) + ")"
	case *core.BinOp:
		return "(" + describe(e.Left) + " " + e.Op + " " + describe(e.Right) + ")"
	default:
		out := "(node"
		for _, c := range core.Children(e) {
			out += " " + describe(c)
		}
		return out + ")"
	}
}
