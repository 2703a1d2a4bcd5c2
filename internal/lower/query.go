package lower

import (
	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// lowerQuery desugars `from x1 in s1 [where w1] from x2 in s2 [where w2] ...
// yield y` into ordinary list-producing Core built from the builtin
// `concatMap : (a -> b list) -> a list -> b list`: each
// clause becomes one concatMap application over the rest of the pipeline, a
// `where` becomes an `if` guarding the recursive step with an empty list on
// the failing branch. This keeps every query directly evaluable by the
// tree-walker without a dedicated relational evaluation mode, while leaving
// internal/relational a concrete, recognisable Core shape to rewrite into
// RelScan/RelFilter/RelProject/RelJoin chains when the source element type
// and predicates are relational.
func (l *Lowerer) lowerQuery(sc *Scope, clauses []ast.QueryClause, yield ast.Expr, resultT types.Type) (core.Expr, error) {
	return l.lowerQueryClauses(sc, clauses, yield, resultT)
}

func (l *Lowerer) lowerQueryClauses(sc *Scope, clauses []ast.QueryClause, yield ast.Expr, resultT types.Type) (core.Expr, error) {
	if len(clauses) == 0 {
		y, err := l.LowerExpr(sc, yield)
		if err != nil {
			return nil, err
		}
		return &core.ListLit{Elems: []core.Expr{y}, Typ: resultT}, nil
	}

	c := clauses[0]
	source, err := l.LowerExpr(sc, c.Source)
	if err != nil {
		return nil, err
	}
	elemT := elemTypeOf(l.TS, source.Type())
	nsc := sc.extend(c.Var, c.Var)

	inner, err := l.lowerQueryClauses(nsc, clauses[1:], yield, resultT)
	if err != nil {
		return nil, err
	}

	body := inner
	if c.Where != nil {
		cond, err := l.LowerExpr(nsc, c.Where)
		if err != nil {
			return nil, err
		}
		body = &core.If{Cond: cond, Then: inner, Else: &core.ListLit{Elems: nil, Typ: resultT}, Typ: resultT}
	}

	lambda := &core.Lambda{Param: c.Var, ParamType: elemT, Body: body, Typ: l.TS.Func(elemT, resultT)}
	return l.curryApp(&core.Var{Name: "concatMap", Typ: l.TS.Func(lambda.Typ, l.TS.Func(source.Type(), resultT))},
		[]core.Expr{lambda, source}, resultT), nil
}

// elemTypeOf returns t's list element type, or a fresh variable if t is not
// (yet) resolved to a list -- which only happens when a query clause's
// source type could not be fully determined, a situation internal/resolve's
// unification already prevents from reaching here with a genuine type error.
func elemTypeOf(ts *types.TypeSystem, t types.Type) types.Type {
	t = ts.Apply(t)
	if lt, ok := t.(*types.TList); ok {
		return lt.Elem
	}
	return ts.FreshVar(false)
}
