// Package relational implements the relationalizer: it recognises the
// concatMap pipelines internal/lower's query desugaring produces and
// rewrites the relational ones
// into RelScan/RelFilter/RelProject/RelJoin Core nodes. A rewrite fires only
// when the scanned element type is row-shaped (a record type) and the
// predicates and projections are pure; anything else is left alone for the
// tree-walking evaluator. The rewritten form is consumed by an external
// RelBuilder when one is configured on the Session, and otherwise by
// internal/eval's in-memory row-list operators.
package relational

import (
	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/eval"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// Builder is the optional external relational-engine boundary:
// it receives a relational-algebra subtree and materialises its rows. A nil
// Builder on the Session selects the evaluator's built-in operators.
type Builder = eval.RelBuilder

// Rewrite walks e and rewrites every recognisable query pipeline into
// relational form, leaving unrecognised subtrees untouched.
func Rewrite(e core.Expr) core.Expr {
	if r, ok := rewriteQuery(e); ok {
		return core.MapChildren(r, Rewrite)
	}
	return core.MapChildren(e, Rewrite)
}

// concatMapParts deconstructs `concatMap (fn x => body) source`.
func concatMapParts(e core.Expr) (lam *core.Lambda, source core.Expr, ok bool) {
	outer, ok := e.(*core.App)
	if !ok {
		return nil, nil, false
	}
	inner, ok := outer.Func.(*core.App)
	if !ok {
		return nil, nil, false
	}
	v, ok := inner.Func.(*core.Var)
	if !ok || v.Name != "concatMap" {
		return nil, nil, false
	}
	lam, ok = inner.Arg.(*core.Lambda)
	if !ok {
		return nil, nil, false
	}
	return lam, outer.Arg, true
}

// rowShaped reports whether t is a record type.
func rowShaped(t types.Type) bool {
	_, ok := t.(*types.TRecord)
	return ok
}

func emptyList(e core.Expr) bool {
	l, ok := e.(*core.ListLit)
	return ok && len(l.Elems) == 0
}

func singleton(e core.Expr) (core.Expr, bool) {
	l, ok := e.(*core.ListLit)
	if !ok || len(l.Elems) != 1 {
		return nil, false
	}
	return l.Elems[0], true
}

// rewriteQuery recognises one clause of a desugared query over e. The shapes
// handled, from the inside of the desugaring out:
//
//	concatMap (fn x => [x]) src                      -> Scan src
//	concatMap (fn x => [y]) src                      -> Project (Scan src)
//	concatMap (fn x => if p then ... else []) src    -> Filter before either
//	concatMap (fn x => concatMap (fn y => ...) s2) s -> Join when s2 is
//	                                                    independent of x
func rewriteQuery(e core.Expr) (core.Expr, bool) {
	lam, source, ok := concatMapParts(e)
	if !ok || !rowShaped(lam.ParamType) {
		return nil, false
	}

	var rel core.Expr = &core.RelScan{Source: source, RowT: source.Type()}
	body := lam.Body

	if iff, isIf := body.(*core.If); isIf && emptyList(iff.Else) {
		if !pure(iff.Cond) {
			return nil, false
		}
		pred := &core.Lambda{Param: lam.Param, ParamType: lam.ParamType, Body: iff.Cond,
			Typ: &types.TFunc{From: lam.ParamType, To: iff.Cond.Type()}}
		rel = &core.RelFilter{Source: rel, Pred: pred, RowT: rel.Type()}
		body = iff.Then
	}

	if yield, isYield := singleton(body); isYield {
		if !pure(yield) {
			return nil, false
		}
		if v, isVar := yield.(*core.Var); isVar && v.Name == lam.Param {
			return rel, true
		}
		proj := &core.Lambda{Param: lam.Param, ParamType: lam.ParamType, Body: yield,
			Typ: &types.TFunc{From: lam.ParamType, To: yield.Type()}}
		return &core.RelProject{Source: rel, Proj: proj, RowT: &types.TList{Elem: yield.Type()}}, true
	}

	return rewriteJoin(lam, rel, body)
}

// rewriteJoin handles a nested clause over a second, independent source: the
// classic `from x in s1, y in s2 where p yield e` shape. The inner where
// becomes the join predicate; the yield becomes a projection over the
// (left, right) row pair the join produces.
func rewriteJoin(outer *core.Lambda, left core.Expr, body core.Expr) (core.Expr, bool) {
	lam, source, ok := concatMapParts(body)
	if !ok || !rowShaped(lam.ParamType) {
		return nil, false
	}
	if free, _ := occurrencesOf(outer.Param, source); free > 0 {
		// The inner source depends on the outer row: a correlated scan, not
		// a join. Left for the tree-walker.
		return nil, false
	}

	inner := lam.Body
	cond := core.Expr(&core.Lit{Kind: core.LitBool, Val: true, Typ: &types.TPrim{Name: types.Bool}})
	if iff, isIf := inner.(*core.If); isIf && emptyList(iff.Else) {
		if !pure(iff.Cond) {
			return nil, false
		}
		cond = iff.Cond
		inner = iff.Then
	}
	yield, isYield := singleton(inner)
	if !isYield || !pure(yield) {
		return nil, false
	}

	pairT := &types.TTuple{Elems: []types.Type{outer.ParamType, lam.ParamType}}
	pred := &core.Lambda{Param: outer.Param, ParamType: outer.ParamType,
		Body: &core.Lambda{Param: lam.Param, ParamType: lam.ParamType, Body: cond,
			Typ: &types.TFunc{From: lam.ParamType, To: cond.Type()}},
		Typ: &types.TFunc{From: outer.ParamType, To: &types.TFunc{From: lam.ParamType, To: cond.Type()}}}

	join := &core.RelJoin{
		Left:  left,
		Right: &core.RelScan{Source: source, RowT: source.Type()},
		Pred:  pred,
		RowT:  &types.TList{Elem: pairT},
	}

	// Project each (left, right) pair through the yield, rebinding the two
	// clause variables by position.
	pairParam := outer.Param + "&" + lam.Param
	proj := &core.Lambda{Param: pairParam, ParamType: pairT,
		Body: &core.Match{
			Scrut: &core.Var{Name: pairParam, Typ: pairT},
			Tree: &core.Leaf{
				Bindings: []core.Bind{
					{Name: outer.Param, Path: core.Path{{Index: 0}}},
					{Name: lam.Param, Path: core.Path{{Index: 1}}},
				},
				Body: yield,
			},
			Typ: yield.Type(),
		},
		Typ: &types.TFunc{From: pairT, To: yield.Type()}}
	return &core.RelProject{Source: join, Proj: proj, RowT: &types.TList{Elem: yield.Type()}}, true
}

func occurrencesOf(name string, e core.Expr) (int, bool) {
	n := 0
	var walk func(core.Expr)
	walk = func(e core.Expr) {
		if v, ok := e.(*core.Var); ok && v.Name == name {
			n++
			return
		}
		if lam, ok := e.(*core.Lambda); ok && lam.Param == name {
			return
		}
		for _, c := range core.Children(e) {
			walk(c)
		}
	}
	walk(e)
	return n, n > 0
}

// pure approximates the rewrite's purity requirement: no raise, no handler,
// no call of an arbitrary function, no partial match, no integer division
// (which raises Div). Everything else in this language is effect-free.
func pure(e core.Expr) bool {
	switch e := e.(type) {
	case *core.Raise, *core.Handle, *core.App:
		return false
	case *core.BinOp:
		if e.Op == "/" {
			return false
		}
	case *core.Match:
		if treeCanFail(e.Tree) {
			return false
		}
	}
	for _, c := range core.Children(e) {
		if !pure(c) {
			return false
		}
	}
	return true
}

func treeCanFail(t core.DecisionTree) bool {
	switch t := t.(type) {
	case *core.Fail:
		return true
	case *core.Leaf:
		if t.Guard != nil && t.Fallback == nil {
			return true
		}
		return t.Fallback != nil && treeCanFail(t.Fallback)
	case *core.Switch:
		for _, c := range t.Cases {
			if treeCanFail(c.Next) {
				return true
			}
		}
		return t.Default != nil && treeCanFail(t.Default)
	}
	return false
}
