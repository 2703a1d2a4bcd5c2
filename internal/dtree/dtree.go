// Package dtree implements the match compiler: a
// Maranget-style decision-tree builder over pattern matrices, reporting
// exhaustiveness and redundancy facts against a scrutinee's declared
// constructor set.
package dtree

import (
	"sort"

	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// Verdict is one of the four coverage outcomes.
type Verdict int

const (
	OK Verdict = iota
	Redundant
	NonExhaustive
	NonExhaustiveAndRedundant
)

// Facts reports the match compiler's coverage analysis for one match
// construct.
type Facts struct {
	Verdict      Verdict
	RedundantArm []ast.Pos // positions of shadowed rows, in row order
}

// Arm is one pattern-matching arm to compile, abstracted over case/fn/let
// and handle arms alike. Guard and Body are already lowered to Core by the
// caller (internal/lower): the match compiler only ever inspects the
// surface Pattern.
type Arm struct {
	Pattern ast.Pattern
	Guard   core.Expr // nil if the arm is unguarded
	Body    core.Expr
	Pos     ast.Pos
}

// row is a matrix row during compilation: Pats has one entry per column in
// cols (below), in the same order; Binds accumulates bindings gathered from
// columns already consumed by structural (tuple/record/list) expansion.
type row struct {
	pats   []ast.Pattern
	guard  core.Expr
	body   core.Expr
	pos    ast.Pos
	binds  []core.Bind
	armIdx int
}

// Compile builds a decision tree over a scrutinee of type scrutT out of
// arms, consulting dreg for constructor arity/ownership.
func Compile(scrutT types.Type, arms []Arm, dreg *types.DataRegistry) (core.DecisionTree, *Facts) {
	rows := make([]row, len(arms))
	for i, a := range arms {
		rows[i] = row{pats: []ast.Pattern{a.Pattern}, guard: a.Guard, body: a.Body, pos: a.Pos, armIdx: i}
	}
	reached := make([]bool, len(arms))
	tree := compileMatrix(rows, []types.Type{scrutT}, []core.Path{{}}, dreg, reached)

	facts := &Facts{Verdict: OK}
	for i, ok := range reached {
		if !ok {
			facts.RedundantArm = append(facts.RedundantArm, arms[i].Pos)
		}
	}
	exhaustive := treeIsExhaustive(tree)
	switch {
	case !exhaustive && len(facts.RedundantArm) > 0:
		facts.Verdict = NonExhaustiveAndRedundant
	case !exhaustive:
		facts.Verdict = NonExhaustive
	case len(facts.RedundantArm) > 0:
		facts.Verdict = Redundant
	}
	return tree, facts
}

func treeIsExhaustive(t core.DecisionTree) bool {
	switch t := t.(type) {
	case *core.Fail:
		return false
	case *core.Leaf:
		if t.Guard != nil {
			// a guarded leaf may fall through; exhaustiveness needs the
			// fallback to also be exhaustive.
			if t.Fallback == nil {
				return false
			}
			return treeIsExhaustive(t.Fallback)
		}
		return true
	case *core.Switch:
		if t.Default != nil {
			if !treeIsExhaustive(t.Default) {
				return false
			}
		}
		for _, c := range t.Cases {
			if !treeIsExhaustive(c.Next) {
				return false
			}
		}
		return true
	}
	return false
}

// compileMatrix is the core recursive step. rows all share the same column
// layout described by cols (types) and occ (the path each column projects
// from the original scrutinee). reached is marked per arm index the first
// time that arm contributes a leaf.
func compileMatrix(rows []row, cols []types.Type, occ []core.Path, dreg *types.DataRegistry, reached []bool) core.DecisionTree {
	rows = flattenLayered(rows, cols)

	if len(rows) == 0 {
		return &core.Fail{}
	}
	if len(cols) == 0 {
		r := rows[0]
		reached[r.armIdx] = true
		if r.guard == nil {
			// A terminal, unguarded leaf: rows after it in this exact
			// matrix state are shadowed here (they may still be reached
			// via a different branch earlier in the tree).
			return &core.Leaf{Bindings: r.binds, Body: r.body}
		}
		fallback := compileMatrix(rows[1:], cols, occ, dreg, reached)
		return &core.Leaf{Bindings: r.binds, Guard: r.guard, Body: r.body, Fallback: fallback}
	}

	col := chooseColumn(rows, cols)

	// Structural (always-matching) shapes decompose without a runtime test.
	if _, _, _, ok := structuralShape(cols[col]); ok {
		newRows, newCols, newOcc := expandStructural(rows, cols, occ, col, dreg)
		return compileMatrix(newRows, newCols, newOcc, dreg, reached)
	}

	return compileSwitch(rows, cols, occ, col, dreg, reached)
}

// chooseColumn implements the "leftmost-first-refinable heuristic" of
// the leftmost-first-refinable heuristic: the first column containing a
// refutable pattern in at
// least one row; if every column is irrefutable everywhere, column 0 is
// used (the matrix will resolve via the first row at the next step).
func chooseColumn(rows []row, cols []types.Type) int {
	for c := range cols {
		for _, r := range rows {
			if isRefutable(r.pats[c]) {
				return c
			}
		}
	}
	return 0
}

func isRefutable(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPattern, *ast.VarPattern:
		return false
	case *ast.AsPattern:
		return isRefutable(p.(*ast.AsPattern).Inner)
	case *ast.AnnotPattern:
		return isRefutable(p.(*ast.AnnotPattern).Inner)
	}
	return true
}

// flattenLayered expands every row whose pattern in any column is a
// LayeredPattern (`p1 | p2`) into one row per alternative, repeating until
// no layered patterns remain.
func flattenLayered(rows []row, cols []types.Type) []row {
	changed := true
	for changed {
		changed = false
		var out []row
		for _, r := range rows {
			expandedHere := false
			for c := range cols {
				if lay, ok := r.pats[c].(*ast.LayeredPattern); ok {
					for _, alt := range lay.Alt {
						nr := r
						nr.pats = append([]ast.Pattern(nil), r.pats...)
						nr.pats[c] = alt
						out = append(out, nr)
					}
					expandedHere = true
					changed = true
					break
				}
			}
			if !expandedHere {
				out = append(out, r)
			}
		}
		rows = out
	}
	return rows
}

func sortedStringKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
