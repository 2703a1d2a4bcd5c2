package dtree

import (
	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// structuralShape reports whether t decomposes without a runtime test
// (tuples and records always have exactly one shape).
func structuralShape(t types.Type) (kind string, labels []string, arity int, ok bool) {
	switch t := t.(type) {
	case *types.TTuple:
		return "tuple", nil, len(t.Elems), true
	case *types.TRecord:
		return "record", t.SortedLabels(), 0, true
	}
	return "", nil, 0, false
}

func expandStructural(rows []row, cols []types.Type, occ []core.Path, col int, dreg *types.DataRegistry) ([]row, []types.Type, []core.Path) {
	kind, labels, arity, _ := structuralShape(cols[col])

	var subTypes []types.Type
	var subOcc []core.Path
	switch kind {
	case "tuple":
		tt := cols[col].(*types.TTuple)
		subTypes = tt.Elems
		subOcc = make([]core.Path, arity)
		for i := range subOcc {
			subOcc[i] = extend(occ[col], core.PathStep{Index: i})
		}
	case "record":
		rt := cols[col].(*types.TRecord)
		subTypes = make([]types.Type, len(labels))
		subOcc = make([]core.Path, len(labels))
		for i, l := range labels {
			subTypes[i] = rt.Fields[l]
			subOcc[i] = extend(occ[col], core.PathStep{Field: l})
		}
	}

	newCols := concatTypes(cols[:col], subTypes, cols[col+1:])
	newOcc := concatPaths(occ[:col], subOcc, occ[col+1:])

	newRows := make([]row, len(rows))
	for i, r := range rows {
		inner, binds := peelBindings(r.pats[col], occ[col])
		var subPats []ast.Pattern
		switch kind {
		case "tuple":
			if tp, ok := inner.(*ast.TuplePattern); ok {
				subPats = tp.Elems
			} else {
				subPats = wildcards(arity, r.pos)
			}
		case "record":
			rp, ok := inner.(*ast.RecordPattern)
			subPats = make([]ast.Pattern, len(labels))
			fieldByLabel := map[string]ast.Pattern{}
			if ok {
				for _, f := range rp.Fields {
					fieldByLabel[f.Label] = f.Pattern
				}
			}
			for j, l := range labels {
				if p, found := fieldByLabel[l]; found {
					subPats[j] = p
				} else {
					subPats[j] = &ast.WildcardPattern{Pos: r.pos}
				}
			}
		}
		newPats := make([]ast.Pattern, 0, len(r.pats)-1+len(subPats))
		newPats = append(newPats, r.pats[:col]...)
		newPats = append(newPats, subPats...)
		newPats = append(newPats, r.pats[col+1:]...)
		newRows[i] = row{pats: newPats, guard: r.guard, body: r.body, pos: r.pos, armIdx: r.armIdx, binds: append(append([]core.Bind(nil), r.binds...), binds...)}
	}
	return newRows, newCols, newOcc
}

func concatTypes(a, b, c []types.Type) []types.Type {
	out := make([]types.Type, 0, len(a)+len(b)+len(c))
	out = append(out, a...)
	out = append(out, b...)
	out = append(out, c...)
	return out
}

func concatPaths(a, b, c []core.Path) []core.Path {
	out := make([]core.Path, 0, len(a)+len(b)+len(c))
	out = append(out, a...)
	out = append(out, b...)
	out = append(out, c...)
	return out
}
