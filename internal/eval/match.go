package eval

import "github.com/mlcore-lang/mlcore/internal/core"

// projectPath follows path from root through the value tree: tuples and
// data/list constructors project by position, records project by label
// (internal/dtree's Path/Bind contract).
func projectPath(root Value, path core.Path) Value {
	v := root
	for _, step := range path {
		switch vv := v.(type) {
		case *VTuple:
			v = vv.Elems[step.Index]
		case *VRecord:
			v = vv.Fields[step.Field]
		case *VCon:
			v = vv.Args[step.Index]
		default:
			return v
		}
	}
	return v
}

// tagOf reports the runtime discriminant at v for Switch-case comparison:
// either a constructor name (ctor, arity) or a literal value.
func tagOf(v Value) (ctor string, lit interface{}, isLit bool, arity int) {
	switch v := v.(type) {
	case *VCon:
		return v.Name, nil, false, len(v.Args)
	case VInt:
		return "", int64(v), true, 0
	case VReal:
		return "", float64(v), true, 0
	case VString:
		return "", string(v), true, 0
	case VChar:
		return "", rune(v), true, 0
	case VBool:
		return "", bool(v), true, 0
	}
	return "", nil, false, 0
}

func caseMatches(c core.Case, ctor string, lit interface{}, isLit bool) bool {
	if c.IsLit != isLit {
		return false
	}
	if isLit {
		return c.Lit == lit
	}
	return c.Ctor == ctor
}

// matchTree runs a compiled decision tree against root, extending env with
// every binding reached along the successful path, and evaluating the
// matched leaf's (possibly guarded) body. ok is false when the tree reaches
// Fail: a Match turns that into the Match error, a Handle into a re-raise
// of the original packet.
func (ev *Evaluator) matchTree(env *Environment, root Value, tree core.DecisionTree) (Value, error, bool) {
	switch t := tree.(type) {
	case *core.Fail:
		return nil, nil, false

	case *core.Leaf:
		nenv := env
		for _, b := range t.Bindings {
			nenv = nenv.Extend(b.Name, projectPath(root, b.Path))
		}
		if t.Guard != nil {
			gv, err := ev.Eval(nenv, t.Guard)
			if err != nil {
				return nil, err, true
			}
			if !AsBool(gv) {
				if t.Fallback != nil {
					return ev.matchTree(env, root, t.Fallback)
				}
				return nil, nil, false
			}
		}
		v, err := ev.Eval(nenv, t.Body)
		return v, err, true

	case *core.Switch:
		scrut := projectPath(root, t.Path)
		ctor, lit, isLit, _ := tagOf(scrut)
		for _, c := range t.Cases {
			if caseMatches(c, ctor, lit, isLit) {
				return ev.matchTree(env, root, c.Next)
			}
		}
		if t.Default != nil {
			return ev.matchTree(env, root, t.Default)
		}
		return nil, nil, false
	}
	return nil, nil, false
}
