package compile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/eval"
)

func lit(n int64) *core.Lit { return &core.Lit{Kind: core.LitInt, Val: n} }

func v(name string) *core.Var { return &core.Var{Name: name} }

func binop(op string, l, r core.Expr) *core.BinOp { return &core.BinOp{Op: op, Left: l, Right: r} }

func app2(f core.Expr, a, b core.Expr) core.Expr {
	return &core.App{Func: &core.App{Func: f, Arg: a}, Arg: b}
}

func compileAndRun(t *testing.T, e core.Expr) (eval.Value, *Code) {
	t.Helper()
	code := New(eval.New()).Compile(e)
	val, err := code.Run(eval.NewMapEnvironment(nil))
	require.NoError(t, err)
	return val, code
}

func TestDescribePlans(t *testing.T) {
	c := New(eval.New())
	assert.Equal(t, "lit", c.Compile(lit(1)).Describe())
	assert.Equal(t, "var x", c.Compile(v("x")).Describe())

	let := &core.Let{Name: "x", Value: lit(1), Body: binop("+", v("x"), lit(2))}
	plan := c.Compile(let).Describe()
	assert.Contains(t, plan, "let x =")
	assert.Contains(t, plan, "binop +")
}

func TestLetEvaluates(t *testing.T) {
	val, _ := compileAndRun(t, &core.Let{Name: "x", Value: lit(1), Body: binop("+", v("x"), lit(2))})
	assert.Equal(t, eval.VInt(3), val)
}

func TestIfShortCircuitsBranches(t *testing.T) {
	// The untaken branch would raise Div if evaluated.
	e := &core.If{
		Cond: binop("<", lit(1), lit(2)),
		Then: lit(10),
		Else: binop("/", lit(1), lit(0)),
	}
	val, _ := compileAndRun(t, e)
	assert.Equal(t, eval.VInt(10), val)
}

// TestTailRecursionCompilesToLoop pins the loop rewrite: a self-recursive tail
// call must iterate, not recurse, so a depth far beyond any Go stack
// completes.
func TestTailRecursionCompilesToLoop(t *testing.T) {
	// fun rec loop n acc = if n <= 0 then acc else loop (n - 1) (acc + 1)
	body := &core.If{
		Cond: binop("<=", v("n"), lit(0)),
		Then: v("acc"),
		Else: app2(v("loop"), binop("-", v("n"), lit(1)), binop("+", v("acc"), lit(1))),
	}
	lam := &core.Lambda{Param: "n", Body: &core.Lambda{Param: "acc", Body: body}}
	e := &core.LetRec{Name: "loop", Value: lam, Body: app2(v("loop"), lit(500000), lit(0))}

	val, code := compileAndRun(t, e)
	assert.True(t, strings.Contains(code.Describe(), "letrec-loop loop/2"), "plan: %s", code.Describe())
	assert.Equal(t, eval.VInt(500000), val)
}

func TestNonTailRecursionDelegates(t *testing.T) {
	// fun rec fact n = if n <= 1 then 1 else n * fact (n - 1)
	body := &core.If{
		Cond: binop("<=", v("n"), lit(1)),
		Then: lit(1),
		Else: binop("*", v("n"), &core.App{Func: v("fact"), Arg: binop("-", v("n"), lit(1))}),
	}
	lam := &core.Lambda{Param: "n", Body: body}
	e := &core.LetRec{Name: "fact", Value: lam, Body: &core.App{Func: v("fact"), Arg: lit(10)}}

	val, code := compileAndRun(t, e)
	assert.Equal(t, "letrec fact", code.Describe())
	assert.Equal(t, eval.VInt(3628800), val)
}

func TestPartialApplicationOfLoopedFunction(t *testing.T) {
	body := &core.If{
		Cond: binop("<=", v("n"), lit(0)),
		Then: v("acc"),
		Else: app2(v("sum"), binop("-", v("n"), lit(1)), binop("+", v("acc"), v("n"))),
	}
	lam := &core.Lambda{Param: "n", Body: &core.Lambda{Param: "acc", Body: body}}
	// let g = sum 3 in g 0 end -- partial application still curries.
	e := &core.LetRec{
		Name:  "sum",
		Value: lam,
		Body: &core.Let{
			Name:  "g",
			Value: &core.App{Func: v("sum"), Arg: lit(3)},
			Body:  &core.App{Func: v("g"), Arg: lit(0)},
		},
	}
	val, _ := compileAndRun(t, e)
	assert.Equal(t, eval.VInt(6), val)
}
