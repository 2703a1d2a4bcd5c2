package eval

import (
	"github.com/mlcore-lang/mlcore/internal/errs"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// concatMapBuiltin implements the list monad's bind, the sole operation
// internal/lower's query desugaring compiles
// `from x in src where c yield y` down to: `concatMap (\x -> if c then [y]
// else []) src`. A successful relationalizer rewrite replaces this shape
// with a RelFilter/RelProject chain before internal/compile ever sees it;
// whatever concatMap application survives still evaluates correctly here.
func concatMapBuiltin(ev *Evaluator) *VBuiltin {
	return &VBuiltin{
		Name:  "concatMap",
		Arity: 2,
		Fn: func(args []Value) (Value, error) {
			fn, xs := args[0], args[1]
			elems, ok := ListElems(xs)
			if !ok {
				return nil, evalErr(errs.EvalType, "concatMap applied to a non-list value")
			}
			var out []Value
			for _, x := range elems {
				r, err := ev.Apply(fn, x)
				if err != nil {
					return nil, err
				}
				rs, ok := ListElems(r)
				if !ok {
					return nil, evalErr(errs.EvalType, "concatMap function did not return a list")
				}
				out = append(out, rs...)
			}
			return FromSlice(out), nil
		},
	}
}

// groupByBuiltin, unionBuiltin and aggregateBuiltin expose the three Rel*
// operations with no surface query syntax:
// they build the corresponding Core node's runtime behaviour directly over
// list values, without going through internal/relational at all.
func groupByBuiltin(ev *Evaluator) *VBuiltin {
	return &VBuiltin{
		Name:  "groupBy",
		Arity: 2,
		Fn: func(args []Value) (Value, error) {
			keyFn, xs := args[0], args[1]
			rows, ok := ListElems(xs)
			if !ok {
				return nil, evalErr(errs.EvalType, "groupBy applied to a non-list value")
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
				if _, seen := keyOf[kk]; !seen {
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
		},
	}
}

func unionBuiltin() *VBuiltin {
	return &VBuiltin{
		Name:  "union",
		Arity: 2,
		Fn: func(args []Value) (Value, error) {
			l, ok := ListElems(args[0])
			if !ok {
				return nil, evalErr(errs.EvalType, "union applied to a non-list value")
			}
			r, ok := ListElems(args[1])
			if !ok {
				return nil, evalErr(errs.EvalType, "union applied to a non-list value")
			}
			return FromSlice(append(append([]Value(nil), l...), r...)), nil
		},
	}
}

func aggregateBuiltin(ev *Evaluator) *VBuiltin {
	return &VBuiltin{
		Name:  "aggregate",
		Arity: 2,
		Fn: func(args []Value) (Value, error) {
			aggFn, xs := args[0], args[1]
			return ev.Apply(aggFn, xs)
		},
	}
}

// CtorBuiltin wraps an arity > 0 constructor as a curried primitive so a
// bare reference to it (not a saturated application, which internal/lower
// already lowers directly to a core.Con) still denotes a usable function.
// internal/session calls it again for constructors declared after the
// global environment was seeded.
func CtorBuiltin(name string, arity int) Value {
	if arity == 0 {
		return &VCon{Name: name}
	}
	return &VBuiltin{
		Name:  name,
		Arity: arity,
		Fn: func(args []Value) (Value, error) {
			return &VCon{Name: name, Args: append([]Value(nil), args...)}, nil
		},
	}
}

// GlobalEnv builds the Session-wide environment every program runs against:
// one curried primitive per declared data/exception constructor plus the
// fixed builtin table (arithmetic and comparison
// operators are BinOp/UnOp Core nodes, not environment entries, so only the
// operations with no dedicated Core node are seeded here).
func GlobalEnv(ev *Evaluator, dreg *types.DataRegistry) *Environment {
	bindings := map[string]Value{
		"concatMap": concatMapBuiltin(ev),
		"groupBy":   groupByBuiltin(ev),
		"union":     unionBuiltin(),
		"aggregate": aggregateBuiltin(ev),
	}
	for _, d := range dreg.All() {
		for _, c := range d.Ctors {
			bindings[c.Name] = CtorBuiltin(c.Name, len(c.Fields))
		}
	}
	return NewMapEnvironment(bindings)
}
