package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mlcore-lang/mlcore/internal/core"
)

func lit(n int64) *core.Lit { return &core.Lit{Kind: core.LitInt, Val: n} }

func v(name string) *core.Var { return &core.Var{Name: name} }

func add(l, r core.Expr) *core.BinOp { return &core.BinOp{Op: "+", Left: l, Right: r} }

func TestUsageLattice(t *testing.T) {
	cases := []struct {
		name string
		body core.Expr
		want Usage
	}{
		{"dead", lit(1), Dead},
		{"once", add(v("x"), lit(1)), Once},
		{"once under lambda", &core.Lambda{Param: "y", Body: v("x")}, OnceSafe},
		{"multi safe", add(v("x"), v("x")), MultiSafe},
		{"multi", add(v("x"), &core.Lambda{Param: "y", Body: v("x")}), Multi},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, UsageOf("x", c.body))
		})
	}
}

func TestShadowingStopsCounting(t *testing.T) {
	// let x = x in x end: the RHS use is free, the body use is the inner x.
	e := &core.Let{Name: "x", Value: v("x"), Body: v("x")}
	n, _ := Occurrences("x", e)
	assert.Equal(t, 1, n)

	// fn x => x does not use an outer x at all.
	n, _ = Occurrences("x", &core.Lambda{Param: "x", Body: v("x")})
	assert.Equal(t, 0, n)
}

func TestLeafBindingsShadow(t *testing.T) {
	m := &core.Match{
		Scrut: v("x"),
		Tree: &core.Leaf{
			Bindings: []core.Bind{{Name: "x", Path: core.Path{{Index: 0}}}},
			Body:     v("x"),
		},
	}
	n, _ := Occurrences("x", m)
	assert.Equal(t, 1, n) // the scrutinee only
}

func TestOnlyCallPosition(t *testing.T) {
	call := &core.App{Func: v("f"), Arg: lit(1)}
	assert.True(t, OnlyCallPosition("f", call))
	assert.True(t, OnlyCallPosition("f", add(call, &core.App{Func: v("f"), Arg: lit(2)})))
	assert.False(t, OnlyCallPosition("f", &core.Tuple{Elems: []core.Expr{v("f")}}))
	assert.False(t, OnlyCallPosition("f", &core.App{Func: v("g"), Arg: v("f")}))
}

func TestSmall(t *testing.T) {
	assert.True(t, Small(lit(1)))
	assert.True(t, Small(v("x")))
	assert.True(t, Small(&core.Con{Name: "Some", Args: []core.Expr{v("x")}}))
	assert.False(t, Small(&core.Con{Name: "Some", Args: []core.Expr{add(v("x"), lit(1))}}))
	assert.False(t, Small(&core.Lambda{Param: "x", Body: v("x")}))
}

func TestSizeCountsNodes(t *testing.T) {
	assert.Equal(t, 1, Size(lit(1)))
	assert.Equal(t, 3, Size(add(lit(1), lit(2))))
}

func TestAnalyzeCollectsBindings(t *testing.T) {
	e := &core.Let{
		Name:  "dead",
		Value: lit(1),
		Body: &core.Let{
			Name:  "live",
			Value: add(lit(1), lit(2)),
			Body:  add(v("live"), v("live")),
		},
	}
	a := Analyze(e)

	info, ok := a.Info("dead")
	assert.True(t, ok)
	assert.Equal(t, Dead, info.Usage)

	info, ok = a.Info("live")
	assert.True(t, ok)
	assert.Equal(t, MultiSafe, info.Usage)
	assert.Equal(t, 3, info.Size)

	assert.Equal(t, []string{"dead"}, a.Dead())
}
