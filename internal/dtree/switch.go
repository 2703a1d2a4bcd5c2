package dtree

import (
	"sort"

	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// groupKey identifies one runtime-tag group at the chosen column: either a
// named constructor (data/exception/synthetic list cons/nil) or a literal
// value.
type groupKey struct {
	isLit  bool
	ctor   string
	arity  int
	litVal interface{}
}

// compileSwitch builds a Switch node over the chosen column, grouping rows
// by runtime tag and recursing into each group's specialised sub-matrix,
// plus a default branch of wildcard-only rows when the tag set isn't known
// to be exhaustive.
func compileSwitch(rows []row, cols []types.Type, occ []core.Path, col int, dreg *types.DataRegistry, reached []bool) core.DecisionTree {
	type group struct {
		key      groupKey
		rows     []row
		subTypes []types.Type
	}
	var order []groupKey
	groups := map[groupKey]*group{}
	var wildcardRows []row

	addGroup := func(k groupKey, subTypes []types.Type) *group {
		if g, ok := groups[k]; ok {
			return g
		}
		g := &group{key: k, subTypes: subTypes}
		groups[k] = g
		order = append(order, k)
		return g
	}

	for _, r := range rows {
		inner, binds := peelBindings(r.pats[col], occ[col])
		rWithBinds := r
		rWithBinds.binds = append(append([]core.Bind(nil), r.binds...), binds...)

		if inner == nil {
			wildcardRows = append(wildcardRows, rWithBinds)
			continue
		}

		switch p := inner.(type) {
		case *ast.LitPattern:
			k := groupKey{isLit: true, litVal: p.Val}
			g := addGroup(k, nil)
			g.rows = append(g.rows, rWithBinds)

		case *ast.ConPattern:
			owner, _ := dreg.OwnerOf(p.Name)
			subTypes := ctorFieldTypes(owner, cols[col], p.Name)
			k := groupKey{ctor: p.Name, arity: len(p.Args)}
			g := addGroup(k, subTypes)
			nr := rWithBinds
			nr.pats = spliceArgs(r.pats, col, p.Args)
			g.rows = append(g.rows, nr)

		case *ast.ListPattern:
			if len(p.Elems) == 0 {
				// Tail == nil here (a non-nil Tail was already peeled off
				// as irrefutable); this is a literal "[]" test.
				k := groupKey{ctor: "[]", arity: 0}
				g := addGroup(k, nil)
				g.rows = append(g.rows, rWithBinds)
				continue
			}
			head := p.Elems[0]
			tail := &ast.ListPattern{Pos: p.Pos, Elems: p.Elems[1:], Tail: p.Tail}
			k := groupKey{ctor: "::", arity: 2}
			g := addGroup(k, []types.Type{listElemType(cols[col]), cols[col]})
			nr := rWithBinds
			nr.pats = spliceArgs(r.pats, col, []ast.Pattern{head, tail})
			g.rows = append(g.rows, nr)
		}
	}

	// every group also inherits the wildcard rows, padded with wildcard
	// sub-patterns, in their original source order relative to the group's
	// own rows (a wildcard arm written first still takes priority).
	for _, k := range order {
		g := groups[k]
		for _, wr := range wildcardRows {
			nr := wr
			nr.pats = spliceArgs(wr.pats, col, wildcards(len(g.subTypes), wr.pos))
			g.rows = append(g.rows, nr)
		}
		sort.SliceStable(g.rows, func(i, j int) bool { return g.rows[i].armIdx < g.rows[j].armIdx })
	}

	exhaustive, _ := isClosedTagSet(cols[col], dreg, order)

	cases := make([]core.Case, 0, len(order))
	for _, k := range order {
		g := groups[k]
		newCols := concatTypes(cols[:col], g.subTypes, cols[col+1:])
		newOcc := concatPaths(occ[:col], subOccFor(occ[col], k, g.subTypes), occ[col+1:])
		next := compileMatrix(g.rows, newCols, newOcc, dreg, reached)
		c := core.Case{Ctor: k.ctor, Lit: k.litVal, IsLit: k.isLit, Arity: k.arity, Next: next}
		cases = append(cases, c)
	}

	var def core.DecisionTree
	if !exhaustive {
		if len(wildcardRows) > 0 {
			newCols := concatTypes(cols[:col], nil, cols[col+1:])
			newOcc := concatPaths(occ[:col], nil, occ[col+1:])
			trimmed := make([]row, len(wildcardRows))
			for i, wr := range wildcardRows {
				trimmed[i] = wr
				trimmed[i].pats = concatPatterns(wr.pats[:col], wr.pats[col+1:])
			}
			def = compileMatrix(trimmed, newCols, newOcc, dreg, reached)
		} else {
			def = &core.Fail{}
		}
	}

	if len(cases) == 0 {
		// no row tests this column: the default subtree is the whole match.
		return def
	}
	return &core.Switch{Path: occ[col], Cases: cases, Default: def}
}

func spliceArgs(pats []ast.Pattern, col int, args []ast.Pattern) []ast.Pattern {
	out := make([]ast.Pattern, 0, len(pats)-1+len(args))
	out = append(out, pats[:col]...)
	out = append(out, args...)
	out = append(out, pats[col+1:]...)
	return out
}

func concatPatterns(a, b []ast.Pattern) []ast.Pattern {
	out := make([]ast.Pattern, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func subOccFor(base core.Path, k groupKey, subTypes []types.Type) []core.Path {
	out := make([]core.Path, len(subTypes))
	for i := range out {
		out[i] = extend(base, core.PathStep{Index: i})
	}
	return out
}

// ctorFieldTypes substitutes a constructor's declared field types (in terms
// of its owning type's parameter ids) for the concrete type arguments of
// scrutT, a specific instantiation of that data type.
func ctorFieldTypes(owner *types.DataDef, scrutT types.Type, ctorName string) []types.Type {
	var ctor *types.CtorDef
	for i := range owner.Ctors {
		if owner.Ctors[i].Name == ctorName {
			ctor = &owner.Ctors[i]
		}
	}
	if ctor == nil {
		return nil
	}
	dt, ok := scrutT.(*types.TData)
	if !ok || len(owner.Params) != len(dt.Args) {
		return ctor.Fields
	}
	sub := map[int]types.Type{}
	for i, p := range owner.Params {
		sub[p] = dt.Args[i]
	}
	out := make([]types.Type, len(ctor.Fields))
	for i, f := range ctor.Fields {
		out[i] = substVars(f, sub)
	}
	return out
}

func substVars(t types.Type, sub map[int]types.Type) types.Type {
	switch t := t.(type) {
	case *types.TVar:
		if r, ok := sub[t.ID]; ok {
			return r
		}
		return t
	case *types.TFunc:
		return &types.TFunc{From: substVars(t.From, sub), To: substVars(t.To, sub)}
	case *types.TTuple:
		elems := make([]types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = substVars(e, sub)
		}
		return &types.TTuple{Elems: elems}
	case *types.TRecord:
		fields := make(map[string]types.Type, len(t.Fields))
		for k, v := range t.Fields {
			fields[k] = substVars(v, sub)
		}
		return &types.TRecord{Fields: fields}
	case *types.TList:
		return &types.TList{Elem: substVars(t.Elem, sub)}
	case *types.TData:
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = substVars(a, sub)
		}
		return &types.TData{Name: t.Name, Args: args}
	default:
		return t
	}
}

func listElemType(t types.Type) types.Type {
	if lt, ok := t.(*types.TList); ok {
		return lt.Elem
	}
	return t
}

// isClosedTagSet reports whether found covers every tag of t's type (so no
// default branch is needed).
func isClosedTagSet(t types.Type, dreg *types.DataRegistry, found []groupKey) (bool, int) {
	switch t := t.(type) {
	case *types.TPrim:
		switch t.Name {
		case types.Bool:
			seen := map[bool]bool{}
			for _, k := range found {
				if b, ok := k.litVal.(bool); ok {
					seen[b] = true
				}
			}
			return seen[true] && seen[false], 2
		case types.Unit:
			return len(found) > 0, 1
		}
		return false, 0
	case *types.TData:
		owner, ok := dreg.Lookup(t.Name)
		if !ok || len(owner.Ctors) == 0 {
			return false, 0
		}
		seen := map[string]bool{}
		for _, k := range found {
			seen[k.ctor] = true
		}
		for _, c := range owner.Ctors {
			if !seen[c.Name] {
				return false, len(owner.Ctors)
			}
		}
		return true, len(owner.Ctors)
	case *types.TList:
		seen := map[string]bool{}
		for _, k := range found {
			seen[k.ctor] = true
		}
		return seen["[]"] && seen["::"], 2
	}
	return false, 0
}
