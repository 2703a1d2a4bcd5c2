package eval

import (
	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/errs"
)

// evalRelational is the evaluator's own row-list implementation of the
// Rel* Core nodes, used whenever no external RelBuilder is
// configured on the Session -- the default and only shipped path
//. Every relation is represented
// at runtime exactly like any other list value: a "[]"/"::" VCon chain of
// row values, so a relational result composes with ordinary list builtins
// with no further conversion.
func (ev *Evaluator) evalRelational(env *Environment, e core.Expr) (Value, error) {
	switch e := e.(type) {
	case *core.RelScan:
		return ev.Eval(env, e.Source)

	case *core.RelFilter:
		rows, err := ev.evalRows(env, e.Source)
		if err != nil {
			return nil, err
		}
		pred, err := ev.Eval(env, e.Pred)
		if err != nil {
			return nil, err
		}
		var out []Value
		for _, row := range rows {
			keep, err := ev.Apply(pred, row)
			if err != nil {
				return nil, err
			}
			if AsBool(keep) {
				out = append(out, row)
			}
		}
		return FromSlice(out), nil

	case *core.RelProject:
		rows, err := ev.evalRows(env, e.Source)
		if err != nil {
			return nil, err
		}
		proj, err := ev.Eval(env, e.Proj)
		if err != nil {
			return nil, err
		}
		out := make([]Value, len(rows))
		for i, row := range rows {
			v, err := ev.Apply(proj, row)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return FromSlice(out), nil

	case *core.RelJoin:
		lrows, err := ev.evalRows(env, e.Left)
		if err != nil {
			return nil, err
		}
		rrows, err := ev.evalRows(env, e.Right)
		if err != nil {
			return nil, err
		}
		pred, err := ev.Eval(env, e.Pred)
		if err != nil {
			return nil, err
		}
		var out []Value
		for _, l := range lrows {
			for _, r := range rrows {
				pl, err := ev.Apply(pred, l)
				if err != nil {
					return nil, err
				}
				keep, err := ev.Apply(pl, r)
				if err != nil {
					return nil, err
				}
				if AsBool(keep) {
					out = append(out, &VTuple{Elems: []Value{l, r}})
				}
			}
		}
		return FromSlice(out), nil

	case *core.RelGroupBy:
		rows, err := ev.evalRows(env, e.Source)
		if err != nil {
			return nil, err
		}
		keyFn, err := ev.Eval(env, e.KeyFn)
		if err != nil {
			return nil, err
		}
		var keys []Value
		groups := map[string][]Value{}
		keyOf := map[string]Value{}
		for _, row := range rows {
			k, err := ev.Apply(keyFn, row)
			if err != nil {
				return nil, err
			}
			kk := k.String()
			if _, ok := keyOf[kk]; !ok {
				keys = append(keys, k)
				keyOf[kk] = k
			}
			groups[kk] = append(groups[kk], row)
		}
		out := make([]Value, len(keys))
		for i, k := range keys {
			kk := k.String()
			out[i] = &VRecord{Fields: map[string]Value{
				"key":     k,
				"members": FromSlice(groups[kk]),
			}}
		}
		return FromSlice(out), nil

	case *core.RelUnion:
		lrows, err := ev.evalRows(env, e.Left)
		if err != nil {
			return nil, err
		}
		rrows, err := ev.evalRows(env, e.Right)
		if err != nil {
			return nil, err
		}
		return FromSlice(append(append([]Value(nil), lrows...), rrows...)), nil

	case *core.RelAggregate:
		rows, err := ev.evalRows(env, e.Source)
		if err != nil {
			return nil, err
		}
		aggFn, err := ev.Eval(env, e.AggFn)
		if err != nil {
			return nil, err
		}
		return ev.Apply(aggFn, FromSlice(rows))
	}
	return nil, evalErr(errs.EvalMatch, "unevaluable relational node")
}

func (ev *Evaluator) evalRows(env *Environment, e core.Expr) ([]Value, error) {
	v, err := ev.Eval(env, e)
	if err != nil {
		return nil, err
	}
	rows, ok := ListElems(v)
	if !ok {
		return nil, evalErr(errs.EvalBind, "relational operator applied to a non-list value")
	}
	return rows, nil
}
