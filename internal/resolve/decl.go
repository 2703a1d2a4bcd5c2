package resolve

import (
	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// InferDecl infers a single declaration under env and returns the
// environment extended with whatever it binds.
func (r *Resolver) InferDecl(env *types.Env, d ast.Decl) (*types.Env, error) {
	switch d := d.(type) {
	case *ast.ValDecl:
		rhsT, err := r.InferExpr(env, d.Rhs)
		if err != nil {
			return nil, err
		}
		if name, ok := simpleVarName(d.Pattern); ok && r.isSyntacticValue(d.Rhs) {
			r.defaultNumVars(rhsT)
			scheme := r.TS.Generalize(env, rhsT)
			return env.Extend(name, scheme), nil
		}
		// Complex patterns and non-values bind monomorphically (Mini-ML's
		// value restriction): destructuring or evaluating
		// an effectful-looking expression never introduces polymorphism.
		return r.InferPattern(env, d.Pattern, rhsT)

	case *ast.FunDecl:
		return r.inferFunDecl(env, d)

	case *ast.TypeDecl:
		return r.inferTypeDecl(env, d)

	case *ast.ExceptionDecl:
		var payload types.Type
		if d.Arg != nil {
			payload = r.convertTypeExpr(d.Arg, map[string]*types.TVar{})
		}
		r.Data.AddException(d.Name, payload)
		var scheme *types.Scheme
		if payload == nil {
			scheme = types.Mono(r.TS.Data("exn"))
		} else {
			scheme = types.Mono(r.TS.Func(payload, r.TS.Data("exn")))
		}
		return env.Extend(d.Name, scheme), nil
	}
	return env, nil
}

func (r *Resolver) inferFunDecl(env *types.Env, d *ast.FunDecl) (*types.Env, error) {
	placeholder := r.TS.FreshVar(false)
	bodyEnv := env
	if d.Rec {
		bodyEnv = bodyEnv.Extend(d.Name, types.Mono(placeholder))
	}
	paramTypes := make([]types.Type, len(d.Params))
	inner := bodyEnv
	for i, p := range d.Params {
		pv := r.TS.FreshVar(false)
		paramTypes[i] = pv
		var err error
		inner, err = r.InferPattern(inner, p, pv)
		if err != nil {
			return nil, err
		}
	}
	bodyT, err := r.InferExpr(inner, d.Body)
	if err != nil {
		return nil, err
	}
	fnT := bodyT
	for i := len(paramTypes) - 1; i >= 0; i-- {
		fnT = r.TS.Func(paramTypes[i], fnT)
	}
	if d.Rec {
		if err := r.unify(placeholder, fnT, d.Pos); err != nil {
			return nil, err
		}
		fnT = r.TS.Apply(placeholder)
	}
	r.defaultNumVars(fnT)
	r.record(d, fnT)
	scheme := r.TS.Generalize(env, fnT)
	return env.Extend(d.Name, scheme), nil
}

func (r *Resolver) inferTypeDecl(env *types.Env, d *ast.TypeDecl) (*types.Env, error) {
	tvEnv := map[string]*types.TVar{}
	paramIDs := make([]int, len(d.Params))
	for i, name := range d.Params {
		v := r.TS.FreshVar(false)
		tvEnv[name] = v
		paramIDs[i] = v.ID
	}
	dataT := r.TS.Data(d.Name, paramArgs(paramIDs)...)

	def := &types.DataDef{Name: d.Name, Params: paramIDs}
	for _, c := range d.Ctors {
		argTypes := make([]types.Type, len(c.Args))
		for i, a := range c.Args {
			argTypes[i] = r.convertTypeExpr(a, tvEnv)
		}
		def.Ctors = append(def.Ctors, types.CtorDef{Name: c.Name, Fields: argTypes, DataName: d.Name})
	}
	r.Data.Register(def)

	for _, c := range def.Ctors {
		var body types.Type = dataT
		for i := len(c.Fields) - 1; i >= 0; i-- {
			body = r.TS.Func(c.Fields[i], body)
		}
		env = env.Extend(c.Name, &types.Scheme{Vars: paramIDs, Body: body})
	}
	return env, nil
}

func paramArgs(ids []int) []types.Type {
	out := make([]types.Type, len(ids))
	for i, id := range ids {
		out[i] = &types.TVar{ID: id}
	}
	return out
}

// simpleVarName reports whether p is a bare variable pattern, the only
// pattern shape eligible for generalisation.
func simpleVarName(p ast.Pattern) (string, bool) {
	if v, ok := p.(*ast.VarPattern); ok {
		return v.Name, true
	}
	return "", false
}

// isSyntacticValue decides the Mini-ML value restriction: only literals,
// variables, lambdas, and
// tuples/records/lists/fully-applied constructors built entirely from
// syntactic values may be generalised.
func (r *Resolver) isSyntacticValue(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Lit, *ast.Ident, *ast.FnExpr:
		return true
	case *ast.TupleExpr:
		for _, el := range e.Elems {
			if !r.isSyntacticValue(el) {
				return false
			}
		}
		return true
	case *ast.RecordExpr:
		for _, f := range e.Fields {
			if !r.isSyntacticValue(f.Value) {
				return false
			}
		}
		return true
	case *ast.ListExpr:
		for _, el := range e.Elems {
			if !r.isSyntacticValue(el) {
				return false
			}
		}
		return true
	case *ast.AnnotExpr:
		return r.isSyntacticValue(e.Expr)
	case *ast.AppExpr:
		name, ok := e.Func.(*ast.Ident)
		if !ok {
			return false
		}
		if _, ok := r.Data.OwnerOf(name.Name); !ok {
			return false // ordinary function application may have effects
		}
		for _, a := range e.Args {
			if !r.isSyntacticValue(a) {
				return false
			}
		}
		return true
	}
	return false
}

// defaultNumVars binds every still-unresolved numeric-constrained variable
// reachable in t to int.
func (r *Resolver) defaultNumVars(t types.Type) {
	t = r.TS.Apply(t)
	for _, id := range r.TS.Unifier.NumVarIDs(t) {
		r.TS.Unifier.BindDefault(id, r.TS.PrimInt())
	}
}
