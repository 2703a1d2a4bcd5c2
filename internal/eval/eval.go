package eval

import (
	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/errs"
)

// Exception is the runtime form of a user-raised exception:
// an explicit result threaded back up the call stack rather than a
// host-language panic.
// It satisfies error so it composes with ordinary Go error propagation
// through Eval, and is recognised and unwrapped specifically by Handle.
type Exception struct {
	Val *VCon
}

func (e *Exception) Error() string { return "uncaught exception " + e.Val.String() }

// RelBuilder is the optional external relational-engine boundary: when set
// on an Evaluator, every Rel* Core node is delegated
// to it instead of the evaluator's in-memory row-list fallback.
type RelBuilder interface {
	Execute(node core.Expr, env *Environment, ev *Evaluator) (Value, error)
}

// Evaluator tree-walks compiled Core. It is stateless besides its optional
// relational backend -- a Session owns one Evaluator plus its own global
// Environment, so nothing here is shared across sessions.
type Evaluator struct {
	Rel RelBuilder
}

// New creates an Evaluator with no relational backend configured (the
// evaluator's own row-list implementation is used for every Rel* node).
func New() *Evaluator { return &Evaluator{} }

func evalErr(code, msg string) error {
	return errs.Wrap(errs.New(errs.PhaseEval, code, msg, nil))
}

// Eval walks e under env, evaluation order left-to-right for tuples,
// records, applications, and operator operands.
func (ev *Evaluator) Eval(env *Environment, e core.Expr) (Value, error) {
	switch e := e.(type) {
	case *core.Lit:
		return litValue(e), nil

	case *core.Var:
		if v, ok := env.Lookup(e.Name); ok {
			return v, nil
		}
		return nil, evalErr(errs.EvalBind, "unbound identifier "+e.Name)

	case *core.Lambda:
		return &VClosure{Param: e.Param, Body: e.Body, Env: env}, nil

	case *core.App:
		fn, err := ev.Eval(env, e.Func)
		if err != nil {
			return nil, err
		}
		arg, err := ev.Eval(env, e.Arg)
		if err != nil {
			return nil, err
		}
		return ev.Apply(fn, arg)

	case *core.Let:
		v, err := ev.Eval(env, e.Value)
		if err != nil {
			return nil, err
		}
		return ev.Eval(env.Extend(e.Name, v), e.Body)

	case *core.LetRec:
		// The closure captures an environment that already contains its own
		// binding, so a self-call resolves e.Name back to itself: a plain
		// lexical-environment fixed point, no separate thunk/cell machinery.
		placeholder := env.Extend(e.Name, VUnit{})
		v, err := ev.Eval(placeholder, e.Value)
		if err != nil {
			return nil, err
		}
		if cl, ok := v.(*VClosure); ok {
			cl.Env = cl.Env.Extend(e.Name, cl)
		}
		return ev.Eval(env.Extend(e.Name, v), e.Body)

	case *core.If:
		c, err := ev.Eval(env, e.Cond)
		if err != nil {
			return nil, err
		}
		if AsBool(c) {
			return ev.Eval(env, e.Then)
		}
		return ev.Eval(env, e.Else)

	case *core.Match:
		scrut, err := ev.Eval(env, e.Scrut)
		if err != nil {
			return nil, err
		}
		v, err, ok := ev.matchTree(env, scrut, e.Tree)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, evalErr(errs.EvalMatch, "no pattern matched")
		}
		return v, nil

	case *core.Tuple:
		elems := make([]Value, len(e.Elems))
		for i, el := range e.Elems {
			v, err := ev.Eval(env, el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &VTuple{Elems: elems}, nil

	case *core.Record:
		fields := make(map[string]Value, len(e.Labels))
		for _, l := range e.Labels {
			v, err := ev.Eval(env, e.Fields[l])
			if err != nil {
				return nil, err
			}
			fields[l] = v
		}
		return &VRecord{Fields: fields}, nil

	case *core.RecordAccess:
		rv, err := ev.Eval(env, e.Rec)
		if err != nil {
			return nil, err
		}
		rec, ok := rv.(*VRecord)
		if !ok {
			return nil, evalErr(errs.EvalBind, "record access on non-record value")
		}
		return rec.Fields[e.Field], nil

	case *core.ListLit:
		elems := make([]Value, len(e.Elems))
		for i, el := range e.Elems {
			v, err := ev.Eval(env, el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return FromSlice(elems), nil

	case *core.BinOp:
		l, err := ev.Eval(env, e.Left)
		if err != nil {
			return nil, err
		}
		r, err := ev.Eval(env, e.Right)
		if err != nil {
			return nil, err
		}
		return evalBinOp(e.Op, l, r)

	case *core.UnOp:
		v, err := ev.Eval(env, e.Operand)
		if err != nil {
			return nil, err
		}
		return evalUnOp(e.Op, v)

	case *core.Con:
		args := make([]Value, len(e.Args))
		for i, a := range e.Args {
			v, err := ev.Eval(env, a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return &VCon{Name: e.Name, Args: args}, nil

	case *core.Raise:
		var args []Value
		if e.Payload != nil {
			v, err := ev.Eval(env, e.Payload)
			if err != nil {
				return nil, err
			}
			args = []Value{v}
		}
		return nil, &Exception{Val: &VCon{Name: e.Ctor, Args: args}}

	case *core.Handle:
		v, err := ev.Eval(env, e.Body)
		if err == nil {
			return v, nil
		}
		exc, ok := err.(*Exception)
		if !ok {
			return nil, err
		}
		hv, herr, matched := ev.matchTree(env, exc.Val, e.Tree)
		if !matched {
			// no arm covers this constructor: the original exception keeps
			// propagating past the handler.
			return nil, exc
		}
		return hv, herr

	case *core.RelScan, *core.RelFilter, *core.RelProject, *core.RelJoin,
		*core.RelGroupBy, *core.RelUnion, *core.RelAggregate:
		if ev.Rel != nil {
			return ev.Rel.Execute(e, env, ev)
		}
		return ev.evalRelational(env, e)
	}
	return nil, evalErr(errs.EvalMatch, "unevaluable core node")
}

func litValue(l *core.Lit) Value {
	switch l.Kind {
	case core.LitInt:
		return VInt(l.Val.(int64))
	case core.LitFloat:
		return VReal(l.Val.(float64))
	case core.LitString:
		return VString(l.Val.(string))
	case core.LitChar:
		return VChar(l.Val.(rune))
	case core.LitBool:
		return VBool(l.Val.(bool))
	}
	return VUnit{}
}

// Apply applies fn to one argument, used both for ordinary App evaluation
// and by builtins (e.g. concatMap) that need to invoke a closure value.
func (ev *Evaluator) Apply(fn, arg Value) (Value, error) {
	switch fn := fn.(type) {
	case *VClosure:
		return ev.Eval(fn.Env.Extend(fn.Param, arg), fn.Body)
	case *VBuiltin:
		args := append(append([]Value(nil), fn.Args...), arg)
		if len(args) < fn.Arity {
			return &VBuiltin{Name: fn.Name, Arity: fn.Arity, Args: args, Fn: fn.Fn}, nil
		}
		return fn.Fn(args)
	}
	return nil, evalErr(errs.EvalBind, "cannot apply a non-function value")
}
