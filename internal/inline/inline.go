// Package inline implements the substitution-based inliner,
// guided by internal/analyze: Dead bindings are dropped, Once bindings are
// substituted, OnceSafe/MultiSafe bindings are substituted when the RHS is
// small or a lambda referenced only in call position, and recursive bindings
// are never inlined across their own edge. Substitution is capture-avoiding;
// the lowering pass already freshens synthetic names, but user-written
// binders can still collide, so the inliner alpha-renames on the fly.
package inline

import (
	"fmt"

	"github.com/mlcore-lang/mlcore/internal/analyze"
	"github.com/mlcore-lang/mlcore/internal/core"
)

// MaxPasses bounds the fixed-point loop.
const MaxPasses = 10

// Inliner carries the fresh-name counter used for on-the-fly alpha renaming.
type Inliner struct {
	renames int
}

// New creates an Inliner.
func New() *Inliner { return &Inliner{} }

// Run applies passes until convergence or MaxPasses. A converged result is a
// fixed point: running Pass on it again returns a structurally equal tree.
// internal/session uses Pass directly when it interleaves the relationalizer
// between passes.
func (in *Inliner) Run(e core.Expr) core.Expr {
	for i := 0; i < MaxPasses; i++ {
		next := in.Pass(e)
		if core.Equal(next, e) {
			return next
		}
		e = next
	}
	return e
}

// Pass performs one bottom-up inlining pass.
func (in *Inliner) Pass(e core.Expr) core.Expr {
	switch e := e.(type) {
	case *core.Let:
		value := in.Pass(e.Value)
		body := in.Pass(e.Body)
		switch analyze.UsageOf(e.Name, body) {
		case analyze.Dead:
			if effectFree(value) {
				return body
			}
		case analyze.Once:
			return in.subst(e.Name, value, body)
		case analyze.OnceSafe, analyze.MultiSafe:
			if in.duplicable(e.Name, value, body) {
				return in.subst(e.Name, value, body)
			}
		}
		return &core.Let{Name: e.Name, Value: value, Body: body, Typ: e.Typ}

	case *core.LetRec:
		// Never inlined across its own edge; still droppable
		// when the body never reaches it.
		value := in.Pass(e.Value)
		body := in.Pass(e.Body)
		if analyze.UsageOf(e.Name, body) == analyze.Dead {
			return body
		}
		return &core.LetRec{Name: e.Name, Value: value, Body: body, Typ: e.Typ}

	default:
		return core.MapChildren(e, in.Pass)
	}
}

// duplicable decides the OnceSafe/MultiSafe substitution rule: small RHSs
// always move; a lambda moves only when every reference is in call position.
func (in *Inliner) duplicable(name string, rhs, body core.Expr) bool {
	if analyze.Small(rhs) {
		return true
	}
	if _, ok := rhs.(*core.Lambda); ok {
		return analyze.OnlyCallPosition(name, body)
	}
	return false
}

// effectFree approximates "dropping this cannot change observable
// behaviour": anything that may raise (applications of unknown functions,
// raise itself, a match that can fail, integer division) pins its binding
// in place even when dead.
func effectFree(e core.Expr) bool {
	switch e := e.(type) {
	case *core.App, *core.Raise, *core.Handle:
		return false
	case *core.BinOp:
		if e.Op == "/" {
			return false
		}
	case *core.UnOp:
		// negation cannot raise
	case *core.Match:
		if treeCanFail(e.Tree) {
			return false
		}
	case *core.LetRec:
		return effectFree(e.Body)
	}
	for _, c := range core.Children(e) {
		if !effectFree(c) {
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

func (in *Inliner) fresh(base string) string {
	in.renames++
	return fmt.Sprintf("%s'%d", base, in.renames)
}

func freeIn(name string, e core.Expr) bool {
	n, _ := analyze.Occurrences(name, e)
	return n > 0
}

// subst replaces every free occurrence of name in e with val, alpha-renaming
// binders that would capture a free variable of val.
func (in *Inliner) subst(name string, val core.Expr, e core.Expr) core.Expr {
	switch e := e.(type) {
	case *core.Var:
		if e.Name == name {
			return val
		}
		return e

	case *core.Lambda:
		if e.Param == name {
			return e
		}
		param, body := e.Param, e.Body
		if freeIn(param, val) {
			param = in.fresh(param)
			body = rename(e.Param, param, body)
		}
		return &core.Lambda{Param: param, ParamType: e.ParamType, Body: in.subst(name, val, body), Typ: e.Typ}

	case *core.Let:
		value := in.subst(name, val, e.Value)
		if e.Name == name {
			return &core.Let{Name: e.Name, Value: value, Body: e.Body, Typ: e.Typ}
		}
		bound, body := e.Name, e.Body
		if freeIn(bound, val) {
			bound = in.fresh(bound)
			body = rename(e.Name, bound, body)
		}
		return &core.Let{Name: bound, Value: value, Body: in.subst(name, val, body), Typ: e.Typ}

	case *core.LetRec:
		if e.Name == name {
			return e
		}
		bound, value, body := e.Name, e.Value, e.Body
		if freeIn(bound, val) {
			bound = in.fresh(bound)
			value = rename(e.Name, bound, value)
			body = rename(e.Name, bound, body)
		}
		return &core.LetRec{Name: bound, Value: in.subst(name, val, value), Body: in.subst(name, val, body), Typ: e.Typ}

	case *core.Match:
		return &core.Match{Scrut: in.subst(name, val, e.Scrut), Tree: in.substTree(name, val, e.Tree), Typ: e.Typ}

	case *core.Handle:
		return &core.Handle{Body: in.subst(name, val, e.Body), Tree: in.substTree(name, val, e.Tree), Typ: e.Typ}

	default:
		return core.MapChildren(e, func(c core.Expr) core.Expr {
			return in.subst(name, val, c)
		})
	}
}

func (in *Inliner) substTree(name string, val core.Expr, t core.DecisionTree) core.DecisionTree {
	switch t := t.(type) {
	case *core.Leaf:
		shadowed := false
		bindings := append([]core.Bind(nil), t.Bindings...)
		guard, body := t.Guard, t.Body
		for i, b := range bindings {
			if b.Name == name {
				shadowed = true
				continue
			}
			if freeIn(b.Name, val) {
				renamed := in.fresh(b.Name)
				if guard != nil {
					guard = rename(b.Name, renamed, guard)
				}
				body = rename(b.Name, renamed, body)
				bindings[i] = core.Bind{Name: renamed, Path: b.Path}
			}
		}
		if !shadowed {
			if guard != nil {
				guard = in.subst(name, val, guard)
			}
			body = in.subst(name, val, body)
		}
		var fallback core.DecisionTree
		if t.Fallback != nil {
			fallback = in.substTree(name, val, t.Fallback)
		}
		return &core.Leaf{Bindings: bindings, Guard: guard, Fallback: fallback, Body: body}

	case *core.Switch:
		cases := make([]core.Case, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = core.Case{Ctor: c.Ctor, Lit: c.Lit, IsLit: c.IsLit, Arity: c.Arity, Next: in.substTree(name, val, c.Next)}
		}
		var def core.DecisionTree
		if t.Default != nil {
			def = in.substTree(name, val, t.Default)
		}
		return &core.Switch{Path: t.Path, Cases: cases, Default: def}
	}
	return t
}

// rename rewrites free occurrences of old in e to a fresh name that is, by
// construction, free nowhere else, so no further capture check is needed.
func rename(old, new string, e core.Expr) core.Expr {
	switch e := e.(type) {
	case *core.Var:
		if e.Name == old {
			return &core.Var{Name: new, Typ: e.Typ}
		}
		return e
	case *core.Lambda:
		if e.Param == old {
			return e
		}
		return &core.Lambda{Param: e.Param, ParamType: e.ParamType, Body: rename(old, new, e.Body), Typ: e.Typ}
	case *core.Let:
		value := rename(old, new, e.Value)
		if e.Name == old {
			return &core.Let{Name: e.Name, Value: value, Body: e.Body, Typ: e.Typ}
		}
		return &core.Let{Name: e.Name, Value: value, Body: rename(old, new, e.Body), Typ: e.Typ}
	case *core.LetRec:
		if e.Name == old {
			return e
		}
		return &core.LetRec{Name: e.Name, Value: rename(old, new, e.Value), Body: rename(old, new, e.Body), Typ: e.Typ}
	case *core.Match:
		return &core.Match{Scrut: rename(old, new, e.Scrut), Tree: renameTree(old, new, e.Tree), Typ: e.Typ}
	case *core.Handle:
		return &core.Handle{Body: rename(old, new, e.Body), Tree: renameTree(old, new, e.Tree), Typ: e.Typ}
	default:
		return core.MapChildren(e, func(c core.Expr) core.Expr {
			return rename(old, new, c)
		})
	}
}

func renameTree(old, new string, t core.DecisionTree) core.DecisionTree {
	switch t := t.(type) {
	case *core.Leaf:
		shadowed := false
		for _, b := range t.Bindings {
			if b.Name == old {
				shadowed = true
			}
		}
		guard, body := t.Guard, t.Body
		if !shadowed {
			if guard != nil {
				guard = rename(old, new, guard)
			}
			body = rename(old, new, body)
		}
		var fallback core.DecisionTree
		if t.Fallback != nil {
			fallback = renameTree(old, new, t.Fallback)
		}
		return &core.Leaf{Bindings: t.Bindings, Guard: guard, Fallback: fallback, Body: body}
	case *core.Switch:
		cases := make([]core.Case, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = core.Case{Ctor: c.Ctor, Lit: c.Lit, IsLit: c.IsLit, Arity: c.Arity, Next: renameTree(old, new, c.Next)}
		}
		var def core.DecisionTree
		if t.Default != nil {
			def = renameTree(old, new, t.Default)
		}
		return &core.Switch{Path: t.Path, Cases: cases, Default: def}
	}
	return t
}
