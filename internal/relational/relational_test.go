package relational

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/types"
)

func personRow(ts *types.TypeSystem) types.Type {
	return ts.Record(map[string]types.Type{
		"age":  ts.PrimInt(),
		"name": ts.PrimString(),
	})
}

// concatMap (fn x => body) src, the shape internal/lower's query desugaring
// produces.
func query(ts *types.TypeSystem, param string, rowT types.Type, src, body core.Expr, resultT types.Type) core.Expr {
	lam := &core.Lambda{Param: param, ParamType: rowT, Body: body, Typ: ts.Func(rowT, resultT)}
	return &core.App{
		Func: &core.App{
			Func: &core.Var{Name: "concatMap", Typ: ts.Func(lam.Typ, ts.Func(src.Type(), resultT))},
			Arg:  lam,
			Typ:  ts.Func(src.Type(), resultT),
		},
		Arg: src,
		Typ: resultT,
	}
}

func TestIdentityYieldBecomesScan(t *testing.T) {
	ts := types.NewTypeSystem()
	rowT := personRow(ts)
	listT := ts.List(rowT)
	src := &core.Var{Name: "people", Typ: listT}

	e := query(ts, "p", rowT, src, &core.ListLit{Elems: []core.Expr{&core.Var{Name: "p", Typ: rowT}}, Typ: listT}, listT)
	got := Rewrite(e)

	scan, ok := got.(*core.RelScan)
	require.True(t, ok, "expected RelScan, got %T", got)
	assert.True(t, core.Equal(scan.Source, src))
}

func TestWhereAndYieldBecomeFilterProject(t *testing.T) {
	ts := types.NewTypeSystem()
	rowT := personRow(ts)
	listT := ts.List(rowT)
	src := &core.Var{Name: "people", Typ: listT}
	p := &core.Var{Name: "p", Typ: rowT}

	cond := &core.BinOp{Op: ">",
		Left:  &core.RecordAccess{Rec: p, Field: "age", Typ: ts.PrimInt()},
		Right: &core.Lit{Kind: core.LitInt, Val: int64(18), Typ: ts.PrimInt()},
		Typ:   ts.PrimBool()}
	resultT := ts.List(ts.PrimString())
	body := &core.If{
		Cond: cond,
		Then: &core.ListLit{Elems: []core.Expr{&core.RecordAccess{Rec: p, Field: "name", Typ: ts.PrimString()}}, Typ: resultT},
		Else: &core.ListLit{Typ: resultT},
		Typ:  resultT,
	}
	got := Rewrite(query(ts, "p", rowT, src, body, resultT))

	proj, ok := got.(*core.RelProject)
	require.True(t, ok, "expected RelProject, got %T", got)
	filter, ok := proj.Source.(*core.RelFilter)
	require.True(t, ok, "expected RelFilter below the projection, got %T", proj.Source)
	scan, ok := filter.Source.(*core.RelScan)
	require.True(t, ok)
	assert.True(t, core.Equal(scan.Source, src))

	pred, ok := filter.Pred.(*core.Lambda)
	require.True(t, ok)
	assert.Equal(t, "p", pred.Param)
	assert.True(t, core.Equal(pred.Body, cond))
}

func TestImpurePredicateLeftAlone(t *testing.T) {
	ts := types.NewTypeSystem()
	rowT := personRow(ts)
	listT := ts.List(rowT)
	src := &core.Var{Name: "people", Typ: listT}

	body := &core.If{
		Cond: &core.Raise{Ctor: "Boom", Typ: ts.PrimBool()},
		Then: &core.ListLit{Elems: []core.Expr{&core.Var{Name: "p", Typ: rowT}}, Typ: listT},
		Else: &core.ListLit{Typ: listT},
		Typ:  listT,
	}
	e := query(ts, "p", rowT, src, body, listT)
	got := Rewrite(e)
	assert.True(t, core.Equal(got, e), "a raising predicate must not be relationalized")
}

func TestNonRowElementLeftAlone(t *testing.T) {
	ts := types.NewTypeSystem()
	listT := ts.List(ts.PrimInt())
	src := &core.Var{Name: "xs", Typ: listT}
	e := query(ts, "x", ts.PrimInt(), src, &core.ListLit{Elems: []core.Expr{&core.Var{Name: "x", Typ: ts.PrimInt()}}, Typ: listT}, listT)
	got := Rewrite(e)
	assert.True(t, core.Equal(got, e), "an int-element query is not relational")
}

func TestIndependentNestedClauseBecomesJoin(t *testing.T) {
	ts := types.NewTypeSystem()
	rowT := personRow(ts)
	listT := ts.List(rowT)
	left := &core.Var{Name: "emps", Typ: listT}
	right := &core.Var{Name: "depts", Typ: listT}
	resultT := ts.List(ts.PrimString())

	x := &core.Var{Name: "x", Typ: rowT}
	y := &core.Var{Name: "y", Typ: rowT}
	cond := &core.BinOp{Op: "==",
		Left:  &core.RecordAccess{Rec: x, Field: "name", Typ: ts.PrimString()},
		Right: &core.RecordAccess{Rec: y, Field: "name", Typ: ts.PrimString()},
		Typ:   ts.PrimBool()}
	innerBody := &core.If{
		Cond: cond,
		Then: &core.ListLit{Elems: []core.Expr{&core.RecordAccess{Rec: y, Field: "name", Typ: ts.PrimString()}}, Typ: resultT},
		Else: &core.ListLit{Typ: resultT},
		Typ:  resultT,
	}
	inner := query(ts, "y", rowT, right, innerBody, resultT)
	e := query(ts, "x", rowT, left, inner, resultT)

	got := Rewrite(e)
	proj, ok := got.(*core.RelProject)
	require.True(t, ok, "expected RelProject over a join, got %T", got)
	join, ok := proj.Source.(*core.RelJoin)
	require.True(t, ok, "expected RelJoin, got %T", proj.Source)

	lscan, ok := join.Left.(*core.RelScan)
	require.True(t, ok)
	assert.True(t, core.Equal(lscan.Source, left))
	rscan, ok := join.Right.(*core.RelScan)
	require.True(t, ok)
	assert.True(t, core.Equal(rscan.Source, right))

	pred, ok := join.Pred.(*core.Lambda)
	require.True(t, ok)
	assert.Equal(t, "x", pred.Param)
}

func TestCorrelatedNestedClauseLeftAlone(t *testing.T) {
	ts := types.NewTypeSystem()
	rowT := personRow(ts)
	listT := ts.List(rowT)
	outer := &core.Var{Name: "emps", Typ: listT}
	resultT := ts.List(rowT)

	// The inner source mentions the outer row: not a join.
	innerSrc := &core.RecordAccess{Rec: &core.Var{Name: "x", Typ: rowT}, Field: "name", Typ: listT}
	inner := query(ts, "y", rowT, innerSrc, &core.ListLit{Elems: []core.Expr{&core.Var{Name: "y", Typ: rowT}}, Typ: resultT}, resultT)
	e := query(ts, "x", rowT, outer, inner, resultT)

	got := Rewrite(e)
	_, isApp := got.(*core.App)
	assert.True(t, isApp, "a correlated nested clause stays a concatMap, got %T", got)
}
