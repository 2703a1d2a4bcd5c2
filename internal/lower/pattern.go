package lower

import "github.com/mlcore-lang/mlcore/internal/ast"

// patternVars collects every name a pattern binds. The match compiler
// (internal/dtree) produces core.Bind entries named after these same
// surface names, so lowering keeps pattern-bound variables unrenamed and
// simply brings them into scope as their own lowered identity.
func patternVars(p ast.Pattern) []string {
	switch p := p.(type) {
	case *ast.VarPattern:
		return []string{p.Name}
	case *ast.WildcardPattern, *ast.LitPattern:
		return nil
	case *ast.ConPattern:
		var out []string
		for _, a := range p.Args {
			out = append(out, patternVars(a)...)
		}
		return out
	case *ast.TuplePattern:
		var out []string
		for _, e := range p.Elems {
			out = append(out, patternVars(e)...)
		}
		return out
	case *ast.RecordPattern:
		var out []string
		for _, f := range p.Fields {
			out = append(out, patternVars(f.Pattern)...)
		}
		return out
	case *ast.ListPattern:
		var out []string
		for _, e := range p.Elems {
			out = append(out, patternVars(e)...)
		}
		if p.Tail != nil {
			out = append(out, patternVars(p.Tail)...)
		}
		return out
	case *ast.AsPattern:
		return append([]string{p.Name}, patternVars(p.Inner)...)
	case *ast.LayeredPattern:
		// every alternative must bind the same names; the first suffices.
		if len(p.Alt) == 0 {
			return nil
		}
		return patternVars(p.Alt[0])
	case *ast.AnnotPattern:
		return patternVars(p.Inner)
	}
	return nil
}

// simpleVarName reports whether p is a bare variable pattern, the only
// shape that binds without going through the match compiler.
func simpleVarName(p ast.Pattern) (string, bool) {
	if v, ok := p.(*ast.VarPattern); ok {
		return v.Name, true
	}
	return "", false
}
