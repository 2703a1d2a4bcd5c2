package lower

import (
	"fmt"

	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/dtree"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// Stmt is one lowered top-level statement, as LowerFile produces it.
type Stmt struct {
	// Decl is set when the source statement was a declaration; Names lists
	// every name it binds at top level.
	Decl  bool
	Names []string
	// Expr is the Core form: for a declaration, a complete expression that
	// evaluates to the value(s) it binds (see lowerTopDecl; a unit literal
	// for type and exception declarations); for a bare expression, the
	// lowered expression itself.
	Expr core.Expr
}

// LowerFile lowers every statement of f against sc, returning the extended
// scope after all top-level bindings (for REPL-style incremental sessions)
// and, for each statement, the Core expression that computes it -- a
// declaration's Core form evaluates to its bound value(s) via a trailing
// Tuple/Var so the caller (internal/session, internal/replcore) can bind it
// into the running Environment without re-running the whole file.
func (l *Lowerer) LowerFile(sc *Scope, f *ast.File) ([]Stmt, *Scope, error) {
	if sc == nil {
		sc = &Scope{}
	}
	var out []Stmt
	for _, n := range f.Stmts {
		switch n := n.(type) {
		case ast.Decl:
			names, expr, nsc, err := l.lowerTopDecl(sc, n)
			if err != nil {
				return nil, nil, err
			}
			sc = nsc
			out = append(out, Stmt{Decl: true, Names: names, Expr: expr})
		case ast.Expr:
			e, err := l.LowerExpr(sc, n)
			if err != nil {
				return nil, nil, err
			}
			out = append(out, Stmt{Decl: false, Expr: e})
		default:
			return nil, nil, fmt.Errorf("lower: unknown top-level statement %T", n)
		}
	}
	return out, sc, nil
}

// lowerTopDecl lowers a single top-level declaration to a Core expression
// that evaluates to the value(s) it binds (a bare Var for a single name, a
// Tuple for a destructuring val), without threading a Body continuation
// (there is none at top level: the REPL evaluates one statement at a time
// and folds its bindings into the running Environment).
func (l *Lowerer) lowerTopDecl(sc *Scope, d ast.Decl) (names []string, expr core.Expr, nsc *Scope, err error) {
	switch d := d.(type) {
	case *ast.ValDecl:
		rhs, err := l.LowerExpr(sc, d.Rhs)
		if err != nil {
			return nil, nil, nil, err
		}
		if name, ok := simpleVarName(d.Pattern); ok {
			bound := sc.extend(name, name)
			return []string{name}, &core.Let{Name: name, Value: rhs, Body: &core.Var{Name: name, Typ: rhs.Type()}, Typ: rhs.Type()}, bound, nil
		}
		vars := patternVars(d.Pattern)
		bound := sc
		for _, v := range vars {
			bound = bound.extend(v, v)
		}
		tmp := l.fresh("let")
		resultTyp := l.destructureResultType(vars)
		leaf := l.destructureLeaf(vars, resultTyp)
		tree, err := l.compileMatch(rhs.Type(), []dtree.Arm{{Pattern: d.Pattern, Body: leaf, Pos: d.Pos}})
		if err != nil {
			return nil, nil, nil, err
		}
		matchExpr := &core.Match{Scrut: &core.Var{Name: tmp, Typ: rhs.Type()}, Tree: tree, Typ: resultTyp}
		return vars, &core.Let{Name: tmp, Value: rhs, Body: matchExpr, Typ: matchExpr.Typ}, bound, nil

	case *ast.FunDecl:
		fnT := l.typeOf(d)
		bound := sc.extend(d.Name, d.Name)
		var fnExpr core.Expr
		var err error
		if d.Rec {
			fnExpr, err = l.lowerCurriedFn(bound, d.Params, fnT, func(bsc *Scope) (core.Expr, error) {
				return l.LowerExpr(bsc, d.Body)
			})
		} else {
			fnExpr, err = l.lowerCurriedFn(sc, d.Params, fnT, func(bsc *Scope) (core.Expr, error) {
				return l.LowerExpr(bsc, d.Body)
			})
		}
		if err != nil {
			return nil, nil, nil, err
		}
		if d.Rec {
			return []string{d.Name}, &core.LetRec{Name: d.Name, Value: fnExpr, Body: &core.Var{Name: d.Name, Typ: fnT}, Typ: fnT}, bound, nil
		}
		return []string{d.Name}, &core.Let{Name: d.Name, Value: fnExpr, Body: &core.Var{Name: d.Name, Typ: fnT}, Typ: fnT}, bound, nil

	case *ast.TypeDecl:
		// Every constructor is a curried primitive closure seeded directly
		// into the evaluator's global environment (internal/eval), so a
		// type declaration introduces no Core value of its own, only the
		// DataRegistry entry resolve.InferDecl already registered.
		names := make([]string, len(d.Ctors))
		for i, c := range d.Ctors {
			names[i] = c.Name
		}
		return names, &core.Lit{Kind: core.LitUnit, Typ: l.TS.PrimUnit()}, sc, nil

	case *ast.ExceptionDecl:
		return []string{d.Name}, &core.Lit{Kind: core.LitUnit, Typ: l.TS.PrimUnit()}, sc, nil
	}
	return nil, nil, nil, fmt.Errorf("lower: unhandled top-level declaration %T", d)
}

// destructureResultType builds the Tuple type of a destructuring val's bound
// names, in pattern order, matching destructureLeaf's Tuple value below.
func (l *Lowerer) destructureResultType(vars []string) types.Type {
	if len(vars) == 0 {
		return l.TS.PrimUnit()
	}
	if len(vars) == 1 {
		return l.TS.FreshVar(false)
	}
	elems := make([]types.Type, len(vars))
	for i := range vars {
		elems[i] = l.TS.FreshVar(false)
	}
	return l.TS.Tuple(elems...)
}

// destructureLeaf is the match arm body for a destructuring `val pat = rhs`:
// a Tuple gathering every name the pattern binds, in pattern order, so the
// single post-match binding (internal/session) can re-project each name.
func (l *Lowerer) destructureLeaf(vars []string, resultTyp types.Type) core.Expr {
	if len(vars) == 0 {
		return &core.Lit{Kind: core.LitUnit, Typ: l.TS.PrimUnit()}
	}
	if len(vars) == 1 {
		return &core.Var{Name: vars[0], Typ: resultTyp}
	}
	tt := resultTyp.(*types.TTuple)
	elems := make([]core.Expr, len(vars))
	for i, v := range vars {
		elems[i] = &core.Var{Name: v, Typ: tt.Elems[i]}
	}
	return &core.Tuple{Elems: elems, Typ: resultTyp}
}

// lowerCurriedFn builds the nested-Lambda form of a multi-parameter surface
// function, elaborating any non-trivial parameter pattern
// through the match compiler.
func (l *Lowerer) lowerCurriedFn(sc *Scope, params []ast.Pattern, fnType types.Type, body func(*Scope) (core.Expr, error)) (core.Expr, error) {
	if len(params) == 0 {
		return body(sc)
	}
	paramT, restT := splitFunc(l.TS, fnType)
	rest := func(nsc *Scope) (core.Expr, error) {
		return l.lowerCurriedFn(nsc, params[1:], restT, body)
	}
	return l.lowerSingleParam(sc, params[0], paramT, rest)
}

func splitFunc(ts *types.TypeSystem, t types.Type) (from, to types.Type) {
	if ft, ok := t.(*types.TFunc); ok {
		return ft.From, ft.To
	}
	return ts.FreshVar(false), ts.FreshVar(false)
}

// lowerSingleParam lowers one curried parameter into a Lambda, rewriting a
// non-trivial pattern into a single-arm match over a synthetic scrutinee
// variable.
func (l *Lowerer) lowerSingleParam(sc *Scope, p ast.Pattern, paramT types.Type, rest func(*Scope) (core.Expr, error)) (core.Expr, error) {
	switch p := p.(type) {
	case *ast.VarPattern:
		nsc := sc.extend(p.Name, p.Name)
		bodyExpr, err := rest(nsc)
		if err != nil {
			return nil, err
		}
		return &core.Lambda{Param: p.Name, ParamType: paramT, Body: bodyExpr, Typ: l.TS.Func(paramT, bodyExpr.Type())}, nil

	case *ast.WildcardPattern:
		synth := l.fresh("_")
		bodyExpr, err := rest(sc)
		if err != nil {
			return nil, err
		}
		return &core.Lambda{Param: synth, ParamType: paramT, Body: bodyExpr, Typ: l.TS.Func(paramT, bodyExpr.Type())}, nil
	}

	synth := l.fresh("arg")
	nsc := sc
	for _, v := range patternVars(p) {
		nsc = nsc.extend(v, v)
	}
	bodyExpr, err := rest(nsc)
	if err != nil {
		return nil, err
	}
	tree, err := l.compileMatch(paramT, []dtree.Arm{{Pattern: p, Body: bodyExpr, Pos: p.Position()}})
	if err != nil {
		return nil, err
	}
	matchExpr := &core.Match{Scrut: &core.Var{Name: synth, Typ: paramT}, Tree: tree, Typ: bodyExpr.Type()}
	return &core.Lambda{Param: synth, ParamType: paramT, Body: matchExpr, Typ: l.TS.Func(paramT, bodyExpr.Type())}, nil
}

// lowerLetChain lowers `let d1; d2; ... in body end`, folding each
// declaration into a Let/LetRec wrapping the rest, and elaborating any
// destructuring val through the
// match compiler exactly as lowerSingleParam does for fn parameters.
func (l *Lowerer) lowerLetChain(sc *Scope, decls []ast.Decl, body func(*Scope) (core.Expr, error)) (core.Expr, error) {
	if len(decls) == 0 {
		return body(sc)
	}
	d, rest := decls[0], decls[1:]
	continuation := func(nsc *Scope) (core.Expr, error) {
		return l.lowerLetChain(nsc, rest, body)
	}

	switch d := d.(type) {
	case *ast.ValDecl:
		rhs, err := l.LowerExpr(sc, d.Rhs)
		if err != nil {
			return nil, err
		}
		if name, ok := simpleVarName(d.Pattern); ok {
			nsc := sc.extend(name, name)
			bodyExpr, err := continuation(nsc)
			if err != nil {
				return nil, err
			}
			return &core.Let{Name: name, Value: rhs, Body: bodyExpr, Typ: bodyExpr.Type()}, nil
		}
		tmp := l.fresh("let")
		nsc := sc
		for _, v := range patternVars(d.Pattern) {
			nsc = nsc.extend(v, v)
		}
		innerBody, err := continuation(nsc)
		if err != nil {
			return nil, err
		}
		tree, err := l.compileMatch(rhs.Type(), []dtree.Arm{{Pattern: d.Pattern, Body: innerBody, Pos: d.Pos}})
		if err != nil {
			return nil, err
		}
		matchExpr := &core.Match{Scrut: &core.Var{Name: tmp, Typ: rhs.Type()}, Tree: tree, Typ: innerBody.Type()}
		return &core.Let{Name: tmp, Value: rhs, Body: matchExpr, Typ: matchExpr.Typ}, nil

	case *ast.FunDecl:
		fnT := l.typeOf(d)
		if d.Rec {
			nsc := sc.extend(d.Name, d.Name)
			fnExpr, err := l.lowerCurriedFn(nsc, d.Params, fnT, func(bsc *Scope) (core.Expr, error) {
				return l.LowerExpr(bsc, d.Body)
			})
			if err != nil {
				return nil, err
			}
			bodyExpr, err := continuation(nsc)
			if err != nil {
				return nil, err
			}
			return &core.LetRec{Name: d.Name, Value: fnExpr, Body: bodyExpr, Typ: bodyExpr.Type()}, nil
		}
		fnExpr, err := l.lowerCurriedFn(sc, d.Params, fnT, func(bsc *Scope) (core.Expr, error) {
			return l.LowerExpr(bsc, d.Body)
		})
		if err != nil {
			return nil, err
		}
		nsc := sc.extend(d.Name, d.Name)
		bodyExpr, err := continuation(nsc)
		if err != nil {
			return nil, err
		}
		return &core.Let{Name: d.Name, Value: fnExpr, Body: bodyExpr, Typ: bodyExpr.Type()}, nil

	case *ast.TypeDecl, *ast.ExceptionDecl:
		// Pure declarations: resolve.Resolver already registered the
		// DataRegistry entry; no Core binding is introduced.
		return continuation(sc)
	}
	return nil, fmt.Errorf("lower: unhandled let-bound declaration %T", d)
}

// lowerCase elaborates `case e of arm | ...` into a Match over e's Core
// form, compiling the arms through internal/dtree.
func (l *Lowerer) lowerCase(sc *Scope, e *ast.CaseExpr) (core.Expr, error) {
	scrut, err := l.LowerExpr(sc, e.Scrut)
	if err != nil {
		return nil, err
	}
	arms := make([]dtree.Arm, len(e.Arms))
	for i, a := range e.Arms {
		nsc := sc
		for _, v := range patternVars(a.Pattern) {
			nsc = nsc.extend(v, v)
		}
		var guard core.Expr
		if a.Guard != nil {
			guard, err = l.LowerExpr(nsc, a.Guard)
			if err != nil {
				return nil, err
			}
		}
		bodyExpr, err := l.LowerExpr(nsc, a.Body)
		if err != nil {
			return nil, err
		}
		arms[i] = dtree.Arm{Pattern: a.Pattern, Guard: guard, Body: bodyExpr, Pos: a.Body.Position()}
	}
	tree, err := l.compileMatch(scrut.Type(), arms)
	if err != nil {
		return nil, err
	}
	return &core.Match{Scrut: scrut, Tree: tree, Typ: l.typeOf(e)}, nil
}

// lowerHandle elaborates `e handle pat => h | ...` into a Handle node over
// a decision tree keyed on the builtin exn type. An arm set that
// does not cover every raised exception compiles successfully (the
// evaluator re-raises the original packet on fall-through, rather than
// the decision tree's usual `Match` default -- see internal/eval).
func (l *Lowerer) lowerHandle(sc *Scope, e *ast.HandleExpr) (core.Expr, error) {
	bodyExpr, err := l.LowerExpr(sc, e.Body)
	if err != nil {
		return nil, err
	}
	exnT := l.TS.Data("exn")
	arms := make([]dtree.Arm, len(e.Arms))
	for i, a := range e.Arms {
		nsc := sc
		for _, v := range patternVars(a.Pattern) {
			nsc = nsc.extend(v, v)
		}
		armBody, err := l.LowerExpr(nsc, a.Body)
		if err != nil {
			return nil, err
		}
		arms[i] = dtree.Arm{Pattern: a.Pattern, Body: armBody, Pos: a.Body.Position()}
	}
	tree, err := l.compileMatch(exnT, arms)
	if err != nil {
		return nil, err
	}
	return &core.Handle{Body: bodyExpr, Tree: tree, Typ: l.typeOf(e)}, nil
}
