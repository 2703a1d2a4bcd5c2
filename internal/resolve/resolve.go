// Package resolve implements the TypeResolver: a single bidirectional
// Hindley–Milner pass over the surface AST producing a TypeMap (node
// identity -> Type) and a Resolved bundle. The constraint surface is kept
// deliberately small: no row polymorphism, no user type classes — just the
// two builtin Num/Eq constraints behind the overloaded operators.
package resolve

import (
	"fmt"

	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/errs"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// TypeMap records the resolved type of every surface node visited during
// inference.
type TypeMap map[ast.Node]types.Type

// Resolved is the bundle the TypeResolver hands to the next stage:
// the (unmodified) surface node, the final compile-time
// environment, and the TypeMap.
type Resolved struct {
	Node    ast.Node
	Env     *types.Env
	TypeMap TypeMap
}

// Resolver carries the per-session state needed across an inference pass.
type Resolver struct {
	TS        *types.TypeSystem
	Data      *types.DataRegistry
	Overloads *OverloadTable
	typeMap   TypeMap
}

// New creates a Resolver over a fresh or existing TypeSystem/DataRegistry.
func New(ts *types.TypeSystem, dreg *types.DataRegistry) *Resolver {
	return &Resolver{TS: ts, Data: dreg, Overloads: NewOverloadTable(), typeMap: TypeMap{}}
}

func (r *Resolver) record(n ast.Node, t types.Type) types.Type {
	r.typeMap[n] = t
	return t
}

// ResolveFile runs inference over every top-level statement in order,
// threading the environment left to right, and returns one Resolved bundle
// per statement plus the final environment.
func (r *Resolver) ResolveFile(env *types.Env, f *ast.File) ([]*Resolved, *types.Env, error) {
	var out []*Resolved
	for _, stmt := range f.Stmts {
		switch n := stmt.(type) {
		case ast.Decl:
			newEnv, err := r.InferDecl(env, n)
			if err != nil {
				return nil, nil, err
			}
			env = newEnv
			out = append(out, &Resolved{Node: n, Env: env, TypeMap: r.typeMap})
		case ast.Expr:
			t, err := r.InferExpr(env, n)
			if err != nil {
				return nil, nil, err
			}
			_ = t
			out = append(out, &Resolved{Node: n, Env: env, TypeMap: r.typeMap})
		default:
			return nil, nil, fmt.Errorf("unknown top-level statement %T", n)
		}
	}
	return out, env, nil
}

func typeErr(code, msg string, pos ast.Pos) error {
	p := pos
	return errs.Wrap(errs.New(errs.PhaseTypecheck, code, msg, &p))
}

func (r *Resolver) unify(t1, t2 types.Type, pos ast.Pos) error {
	if err := r.TS.Unifier.Unify(t1, t2); err != nil {
		switch e := err.(type) {
		case *types.MismatchError:
			return typeErr(errs.TypeMismatch, e.Error(), pos)
		case *types.OccursCheckError:
			return typeErr(errs.TypeOccursCheck, e.Error(), pos)
		case *types.EqualityRequiredError:
			return typeErr(errs.TypeEqualityRequired, e.Error(), pos)
		default:
			return typeErr(errs.TypeMismatch, err.Error(), pos)
		}
	}
	return nil
}

// InferExpr infers the type of e under env.
func (r *Resolver) InferExpr(env *types.Env, e ast.Expr) (types.Type, error) {
	switch e := e.(type) {
	case *ast.Lit:
		return r.record(e, r.litType(e)), nil

	case *ast.Ident:
		s, ok := env.Lookup(e.Name)
		if !ok {
			if t, ok := r.Overloads.Lookup(r.TS, e.Name); ok {
				return r.record(e, t), nil
			}
			return nil, typeErr(errs.TypeUnboundIdent, "unbound identifier "+e.Name, e.Pos)
		}
		return r.record(e, r.TS.Instantiate(s)), nil

	case *ast.TupleExpr:
		elems := make([]types.Type, len(e.Elems))
		for i, el := range e.Elems {
			t, err := r.InferExpr(env, el)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return r.record(e, r.TS.Tuple(elems...)), nil

	case *ast.RecordExpr:
		fields := map[string]types.Type{}
		for _, f := range e.Fields {
			t, err := r.InferExpr(env, f.Value)
			if err != nil {
				return nil, err
			}
			fields[f.Label] = t
		}
		return r.record(e, r.TS.Record(fields)), nil

	case *ast.ListExpr:
		elem := r.TS.FreshVar(false)
		for _, el := range e.Elems {
			t, err := r.InferExpr(env, el)
			if err != nil {
				return nil, err
			}
			if err := r.unify(elem, t, el.Position()); err != nil {
				return nil, err
			}
		}
		return r.record(e, r.TS.List(elem)), nil

	case *ast.AppExpr:
		fnT, err := r.InferExpr(env, e.Func)
		if err != nil {
			return nil, err
		}
		for _, arg := range e.Args {
			argT, err := r.InferExpr(env, arg)
			if err != nil {
				return nil, err
			}
			result := r.TS.FreshVar(false)
			if err := r.unify(fnT, r.TS.Func(argT, result), e.Pos); err != nil {
				return nil, err
			}
			fnT = result
		}
		return r.record(e, fnT), nil

	case *ast.InfixExpr:
		fnT, ok := r.Overloads.Lookup(r.TS, e.Op)
		if !ok {
			return nil, typeErr(errs.TypeUnboundIdent, "unknown operator "+e.Op, e.Pos)
		}
		lt, err := r.InferExpr(env, e.Left)
		if err != nil {
			return nil, err
		}
		rt, err := r.InferExpr(env, e.Right)
		if err != nil {
			return nil, err
		}
		result := r.TS.FreshVar(false)
		want := r.TS.Func(r.TS.Func(lt, rt), result)
		if err := r.unify(fnT, want, e.Pos); err != nil {
			return nil, err
		}
		return r.record(e, result), nil

	case *ast.RecordAccessExpr:
		rt, err := r.InferExpr(env, e.Expr)
		if err != nil {
			return nil, err
		}
		rec, ok := r.TS.Apply(rt).(*types.TRecord)
		if !ok {
			return nil, typeErr(errs.TypeMismatch, "record access requires a record type, got "+r.TS.Apply(rt).Moniker(), e.Pos)
		}
		ft, ok := rec.Fields[e.Field]
		if !ok {
			return nil, typeErr(errs.TypeMismatch, "record has no field "+e.Field, e.Pos)
		}
		return r.record(e, ft), nil

	case *ast.FnExpr:
		inner := env
		paramTypes := make([]types.Type, len(e.Params))
		for i, p := range e.Params {
			pv := r.TS.FreshVar(false)
			paramTypes[i] = pv
			var err error
			inner, err = r.InferPattern(inner, p, pv)
			if err != nil {
				return nil, err
			}
		}
		bodyT, err := r.InferExpr(inner, e.Body)
		if err != nil {
			return nil, err
		}
		result := bodyT
		for i := len(paramTypes) - 1; i >= 0; i-- {
			result = r.TS.Func(paramTypes[i], result)
		}
		return r.record(e, result), nil

	case *ast.LetExpr:
		inner := env
		for _, d := range e.Decls {
			var err error
			inner, err = r.InferDecl(inner, d)
			if err != nil {
				return nil, err
			}
		}
		bodyT, err := r.InferExpr(inner, e.Body)
		if err != nil {
			return nil, err
		}
		return r.record(e, bodyT), nil

	case *ast.CaseExpr:
		scrutT, err := r.InferExpr(env, e.Scrut)
		if err != nil {
			return nil, err
		}
		result := r.TS.FreshVar(false)
		for _, arm := range e.Arms {
			armEnv, err := r.InferPattern(env, arm.Pattern, scrutT)
			if err != nil {
				return nil, err
			}
			if arm.Guard != nil {
				gt, err := r.InferExpr(armEnv, arm.Guard)
				if err != nil {
					return nil, err
				}
				if err := r.unify(gt, r.TS.PrimBool(), arm.Guard.Position()); err != nil {
					return nil, err
				}
			}
			bt, err := r.InferExpr(armEnv, arm.Body)
			if err != nil {
				return nil, err
			}
			if err := r.unify(result, bt, arm.Body.Position()); err != nil {
				return nil, err
			}
		}
		return r.record(e, result), nil

	case *ast.IfExpr:
		ct, err := r.InferExpr(env, e.Cond)
		if err != nil {
			return nil, err
		}
		if err := r.unify(ct, r.TS.PrimBool(), e.Cond.Position()); err != nil {
			return nil, err
		}
		tt, err := r.InferExpr(env, e.Then)
		if err != nil {
			return nil, err
		}
		et, err := r.InferExpr(env, e.Else)
		if err != nil {
			return nil, err
		}
		if err := r.unify(tt, et, e.Pos); err != nil {
			return nil, err
		}
		return r.record(e, tt), nil

	case *ast.HandleExpr:
		bodyT, err := r.InferExpr(env, e.Body)
		if err != nil {
			return nil, err
		}
		exnT := r.TS.Data("exn")
		for _, arm := range e.Arms {
			armEnv, err := r.InferPattern(env, arm.Pattern, exnT)
			if err != nil {
				return nil, err
			}
			at, err := r.InferExpr(armEnv, arm.Body)
			if err != nil {
				return nil, err
			}
			if err := r.unify(bodyT, at, arm.Body.Position()); err != nil {
				return nil, err
			}
		}
		return r.record(e, bodyT), nil

	case *ast.RaiseExpr:
		owner, ok := r.Data.OwnerOf(e.Ctor)
		if !ok || owner.Name != "exn" {
			return nil, typeErr(errs.TypeUnboundIdent, "unbound exception constructor "+e.Ctor, e.Pos)
		}
		var ctor *types.CtorDef
		for i := range owner.Ctors {
			if owner.Ctors[i].Name == e.Ctor {
				ctor = &owner.Ctors[i]
			}
		}
		if len(ctor.Fields) == 1 {
			if e.Payload == nil {
				return nil, typeErr(errs.TypeArityMismatch, "exception "+e.Ctor+" requires a payload", e.Pos)
			}
			pt, err := r.InferExpr(env, e.Payload)
			if err != nil {
				return nil, err
			}
			if err := r.unify(pt, ctor.Fields[0], e.Pos); err != nil {
				return nil, err
			}
		} else if e.Payload != nil {
			return nil, typeErr(errs.TypeArityMismatch, "exception "+e.Ctor+" takes no payload", e.Pos)
		}
		return r.record(e, r.TS.FreshVar(false)), nil

	case *ast.QueryExpr:
		inner := env
		for _, c := range e.Clauses {
			srcT, err := r.InferExpr(inner, c.Source)
			if err != nil {
				return nil, err
			}
			lst, ok := r.TS.Apply(srcT).(*types.TList)
			if !ok {
				return nil, typeErr(errs.TypeMismatch, "query source must be a list", c.Source.Position())
			}
			inner = inner.Extend(c.Var, types.Mono(lst.Elem))
			if c.Where != nil {
				wt, err := r.InferExpr(inner, c.Where)
				if err != nil {
					return nil, err
				}
				if err := r.unify(wt, r.TS.PrimBool(), c.Where.Position()); err != nil {
					return nil, err
				}
			}
		}
		yt, err := r.InferExpr(inner, e.Yield)
		if err != nil {
			return nil, err
		}
		return r.record(e, r.TS.List(yt)), nil

	case *ast.AnnotExpr:
		t, err := r.InferExpr(env, e.Expr)
		if err != nil {
			return nil, err
		}
		annot := r.convertTypeExpr(e.Type, map[string]*types.TVar{})
		if err := r.unify(t, annot, e.Pos); err != nil {
			return nil, err
		}
		return r.record(e, annot), nil
	}
	return nil, fmt.Errorf("resolve: unhandled expression %T", e)
}

func (r *Resolver) litType(l *ast.Lit) types.Type {
	switch l.Kind {
	case ast.LitInt:
		return r.TS.PrimInt()
	case ast.LitFloat:
		return r.TS.PrimReal()
	case ast.LitString:
		return r.TS.PrimString()
	case ast.LitChar:
		return r.TS.PrimChar()
	case ast.LitBool:
		return r.TS.PrimBool()
	default:
		return r.TS.PrimUnit()
	}
}
