package dtree

import (
	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/core"
)

// peelBindings strips wrapper patterns (var/wildcard/as/annot) that bind
// names to the whole value at path without themselves constraining its
// shape, returning the first genuinely structural/refutable pattern
// underneath (or nil if the pattern never constrains the shape at all) plus
// every binding collected along the way.
func peelBindings(p ast.Pattern, path core.Path) (ast.Pattern, []core.Bind) {
	switch p := p.(type) {
	case *ast.VarPattern:
		return nil, []core.Bind{{Name: p.Name, Path: clonePath(path)}}
	case *ast.WildcardPattern:
		return nil, nil
	case *ast.AsPattern:
		inner, binds := peelBindings(p.Inner, path)
		return inner, append([]core.Bind{{Name: p.Name, Path: clonePath(path)}}, binds...)
	case *ast.AnnotPattern:
		return peelBindings(p.Inner, path)
	case *ast.ListPattern:
		if len(p.Elems) == 0 && p.Tail != nil {
			return peelBindings(p.Tail, path)
		}
		return p, nil
	default:
		return p, nil
	}
}

func clonePath(p core.Path) core.Path {
	out := make(core.Path, len(p))
	copy(out, p)
	return out
}

func extend(p core.Path, step core.PathStep) core.Path {
	out := make(core.Path, len(p)+1)
	copy(out, p)
	out[len(p)] = step
	return out
}

func wildcards(n int, pos ast.Pos) []ast.Pattern {
	out := make([]ast.Pattern, n)
	for i := range out {
		out[i] = &ast.WildcardPattern{Pos: pos}
	}
	return out
}
