// Package analyze implements the usage analysis pass: for each
// bound identifier in a Core declaration it computes a five-way Usage plus a
// small size estimate of the right-hand side. internal/inline consumes the
// result to decide what to drop and what to substitute. The walk reuses
// internal/core's Children traversal and is hand-rolled only where binder
// shadowing forces it to stop recursing.
package analyze

import "github.com/mlcore-lang/mlcore/internal/core"

// Usage classifies how a bound identifier is used in its scope.
type Usage int

const (
	// Dead: no uses at all.
	Dead Usage = iota
	// Once: exactly one use, not under a lambda. Substitution neither
	// duplicates nor repeats the bound computation.
	Once
	// OnceSafe: exactly one use, but under a lambda; the computation may run
	// any number of times after substitution, so only duplicable RHSs move.
	OnceSafe
	// Multi: several uses, at least one under a lambda.
	Multi
	// MultiSafe: several uses, none under a lambda; substitution duplicates
	// code but never moves work inside a closure.
	MultiSafe
)

func (u Usage) String() string {
	switch u {
	case Dead:
		return "Dead"
	case Once:
		return "Once"
	case OnceSafe:
		return "OnceSafe"
	case Multi:
		return "Multi"
	case MultiSafe:
		return "MultiSafe"
	}
	return "Unknown"
}

// UsageOf classifies name's usage within e, respecting shadowing binders.
func UsageOf(name string, e core.Expr) Usage {
	count, under := Occurrences(name, e)
	switch {
	case count == 0:
		return Dead
	case count == 1 && !under:
		return Once
	case count == 1:
		return OnceSafe
	case under:
		return Multi
	default:
		return MultiSafe
	}
}

// Occurrences counts free uses of name in e; underLambda reports whether any
// use sits inside a Lambda body.
func Occurrences(name string, e core.Expr) (count int, underLambda bool) {
	var c counter
	countUses(name, e, false, &c)
	return c.n, c.under
}

type counter struct {
	n     int
	under bool
}

func countUses(name string, e core.Expr, inLambda bool, c *counter) {
	switch e := e.(type) {
	case *core.Var:
		if e.Name == name {
			c.n++
			if inLambda {
				c.under = true
			}
		}

	case *core.Lambda:
		if e.Param == name {
			return
		}
		countUses(name, e.Body, true, c)

	case *core.Let:
		countUses(name, e.Value, inLambda, c)
		if e.Name != name {
			countUses(name, e.Body, inLambda, c)
		}

	case *core.LetRec:
		if e.Name == name {
			return
		}
		countUses(name, e.Value, inLambda, c)
		countUses(name, e.Body, inLambda, c)

	case *core.Match:
		countUses(name, e.Scrut, inLambda, c)
		countTreeUses(name, e.Tree, inLambda, c)

	case *core.Handle:
		countUses(name, e.Body, inLambda, c)
		countTreeUses(name, e.Tree, inLambda, c)

	default:
		for _, ch := range core.Children(e) {
			countUses(name, ch, inLambda, c)
		}
	}
}

// countTreeUses walks a decision tree; a Leaf whose Bindings rebind name
// shadows it for that leaf's guard and body.
func countTreeUses(name string, t core.DecisionTree, inLambda bool, c *counter) {
	switch t := t.(type) {
	case *core.Leaf:
		shadowed := false
		for _, b := range t.Bindings {
			if b.Name == name {
				shadowed = true
			}
		}
		if !shadowed {
			if t.Guard != nil {
				countUses(name, t.Guard, inLambda, c)
			}
			countUses(name, t.Body, inLambda, c)
		}
		if t.Fallback != nil {
			countTreeUses(name, t.Fallback, inLambda, c)
		}
	case *core.Switch:
		for _, cs := range t.Cases {
			countTreeUses(name, cs.Next, inLambda, c)
		}
		if t.Default != nil {
			countTreeUses(name, t.Default, inLambda, c)
		}
	}
}

// Size is the node-count estimate the inliner consults per RHS.
func Size(e core.Expr) int {
	n := 1
	for _, c := range core.Children(e) {
		n += Size(c)
	}
	return n
}

// Atomic reports whether e is a constant or a variable.
func Atomic(e core.Expr) bool {
	switch e.(type) {
	case *core.Lit, *core.Var:
		return true
	}
	return false
}

// Small reports whether e is duplicable under the "small" rule:
// constants, variables, or a constructor of atoms. Lambdas are handled
// separately by the inliner (they are small only when every reference is in
// call position).
func Small(e core.Expr) bool {
	switch e := e.(type) {
	case *core.Lit, *core.Var:
		return true
	case *core.Con:
		for _, a := range e.Args {
			if !Atomic(a) {
				return false
			}
		}
		return true
	}
	return false
}

// OnlyCallPosition reports whether every free use of name in e appears
// directly as the function of an application (the position in which
// substituting a lambda cannot duplicate an allocation).
func OnlyCallPosition(name string, e core.Expr) bool {
	switch e := e.(type) {
	case *core.Var:
		return e.Name != name

	case *core.App:
		if f, ok := e.Func.(*core.Var); ok && f.Name == name {
			return OnlyCallPosition(name, e.Arg)
		}
		return OnlyCallPosition(name, e.Func) && OnlyCallPosition(name, e.Arg)

	case *core.Lambda:
		if e.Param == name {
			return true
		}
		return OnlyCallPosition(name, e.Body)

	case *core.Let:
		if !OnlyCallPosition(name, e.Value) {
			return false
		}
		return e.Name == name || OnlyCallPosition(name, e.Body)

	case *core.LetRec:
		if e.Name == name {
			return true
		}
		return OnlyCallPosition(name, e.Value) && OnlyCallPosition(name, e.Body)

	case *core.Match:
		return OnlyCallPosition(name, e.Scrut) && treeOnlyCallPosition(name, e.Tree)

	case *core.Handle:
		return OnlyCallPosition(name, e.Body) && treeOnlyCallPosition(name, e.Tree)

	default:
		for _, c := range core.Children(e) {
			if !OnlyCallPosition(name, c) {
				return false
			}
		}
		return true
	}
}

func treeOnlyCallPosition(name string, t core.DecisionTree) bool {
	switch t := t.(type) {
	case *core.Leaf:
		shadowed := false
		for _, b := range t.Bindings {
			if b.Name == name {
				shadowed = true
			}
		}
		if !shadowed {
			if t.Guard != nil && !OnlyCallPosition(name, t.Guard) {
				return false
			}
			if !OnlyCallPosition(name, t.Body) {
				return false
			}
		}
		return t.Fallback == nil || treeOnlyCallPosition(name, t.Fallback)
	case *core.Switch:
		for _, c := range t.Cases {
			if !treeOnlyCallPosition(name, c.Next) {
				return false
			}
		}
		return t.Default == nil || treeOnlyCallPosition(name, t.Default)
	}
	return true
}

// Info is the per-binding analysis result.
type Info struct {
	Usage Usage
	Size  int
}

// Analysis maps each Let/LetRec-bound name in a Core declaration to its
// usage and RHS size estimate.
type Analysis struct {
	infos map[string]Info
	dead  []string
}

// Analyze walks e bottom-up collecting one Info per Let/LetRec binding.
func Analyze(e core.Expr) *Analysis {
	a := &Analysis{infos: map[string]Info{}}
	a.walk(e)
	return a
}

func (a *Analysis) walk(e core.Expr) {
	switch e := e.(type) {
	case *core.Let:
		info := Info{Usage: UsageOf(e.Name, e.Body), Size: Size(e.Value)}
		a.infos[e.Name] = info
		if info.Usage == Dead {
			a.dead = append(a.dead, e.Name)
		}
	case *core.LetRec:
		a.infos[e.Name] = Info{Usage: UsageOf(e.Name, e.Body), Size: Size(e.Value)}
	}
	for _, c := range core.Children(e) {
		a.walk(c)
	}
}

// Info returns the analysis result for a bound name.
func (a *Analysis) Info(name string) (Info, bool) {
	i, ok := a.infos[name]
	return i, ok
}

// Dead lists bound names with zero uses, in traversal order; internal/session
// turns user-written ones into UnusedBinding warnings.
func (a *Analysis) Dead() []string { return a.dead }
