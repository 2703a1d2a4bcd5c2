package resolve

import (
	"strconv"

	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/errs"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// InferPattern matches pattern p against scrutT, extending env with every
// name p binds and unifying p's shape with scrutT.
func (r *Resolver) InferPattern(env *types.Env, p ast.Pattern, scrutT types.Type) (*types.Env, error) {
	switch p := p.(type) {
	case *ast.WildcardPattern:
		return env, nil

	case *ast.VarPattern:
		return env.Extend(p.Name, types.Mono(scrutT)), nil

	case *ast.LitPattern:
		lt := r.litPatternType(p)
		if err := r.unify(lt, scrutT, p.Pos); err != nil {
			return nil, err
		}
		return env, nil

	case *ast.ConPattern:
		owner, ok := r.Data.OwnerOf(p.Name)
		if !ok {
			return nil, typeErr(errs.TypeUnboundIdent, "unbound constructor "+p.Name, p.Pos)
		}
		var ctor *types.CtorDef
		for i := range owner.Ctors {
			if owner.Ctors[i].Name == p.Name {
				ctor = &owner.Ctors[i]
			}
		}
		if len(ctor.Fields) != len(p.Args) {
			return nil, typeErr(errs.TypeArityMismatch, "constructor "+p.Name+" expects "+strconv.Itoa(len(ctor.Fields))+" argument(s)", p.Pos)
		}
		sub := freshSubst(r.TS, owner.Params)
		dataT := r.TS.Data(owner.Name, instArgs(owner.Params, sub)...)
		if err := r.unify(dataT, scrutT, p.Pos); err != nil {
			return nil, err
		}
		for i, argPat := range p.Args {
			fieldT := substVars(ctor.Fields[i], sub)
			var err error
			env, err = r.InferPattern(env, argPat, fieldT)
			if err != nil {
				return nil, err
			}
		}
		return env, nil

	case *ast.TuplePattern:
		elemTs := make([]types.Type, len(p.Elems))
		for i := range elemTs {
			elemTs[i] = r.TS.FreshVar(false)
		}
		if err := r.unify(r.TS.Tuple(elemTs...), scrutT, p.Pos); err != nil {
			return nil, err
		}
		for i, sub := range p.Elems {
			var err error
			env, err = r.InferPattern(env, sub, elemTs[i])
			if err != nil {
				return nil, err
			}
		}
		return env, nil

	case *ast.RecordPattern:
		fields := map[string]types.Type{}
		fieldVars := map[string]types.Type{}
		for _, f := range p.Fields {
			fv := r.TS.FreshVar(false)
			fields[f.Label] = fv
			fieldVars[f.Label] = fv
		}
		if !p.Open {
			if err := r.unify(r.TS.Record(fields), scrutT, p.Pos); err != nil {
				return nil, err
			}
		} else {
			// Open record patterns only constrain the named fields; the
			// scrutinee must resolve to a concrete record carrying at least
			// those labels (no row polymorphism in this type system).
			rec, ok := r.TS.Apply(scrutT).(*types.TRecord)
			if !ok {
				return nil, typeErr(errs.TypeMismatch, "record pattern requires a known record type", p.Pos)
			}
			for label, fv := range fieldVars {
				rt, ok := rec.Fields[label]
				if !ok {
					return nil, typeErr(errs.TypeMismatch, "record has no field "+label, p.Pos)
				}
				if err := r.unify(fv, rt, p.Pos); err != nil {
					return nil, err
				}
			}
		}
		for _, f := range p.Fields {
			var err error
			env, err = r.InferPattern(env, f.Pattern, fieldVars[f.Label])
			if err != nil {
				return nil, err
			}
		}
		return env, nil

	case *ast.ListPattern:
		elem := r.TS.FreshVar(false)
		if err := r.unify(r.TS.List(elem), scrutT, p.Pos); err != nil {
			return nil, err
		}
		for _, sub := range p.Elems {
			var err error
			env, err = r.InferPattern(env, sub, elem)
			if err != nil {
				return nil, err
			}
		}
		if p.Tail != nil {
			var err error
			env, err = r.InferPattern(env, p.Tail, r.TS.List(elem))
			if err != nil {
				return nil, err
			}
		}
		return env, nil

	case *ast.AsPattern:
		env = env.Extend(p.Name, types.Mono(scrutT))
		return r.InferPattern(env, p.Inner, scrutT)

	case *ast.LayeredPattern:
		for _, alt := range p.Alt {
			var err error
			env, err = r.InferPattern(env, alt, scrutT)
			if err != nil {
				return nil, err
			}
		}
		return env, nil

	case *ast.AnnotPattern:
		annot := r.convertTypeExpr(p.Type, map[string]*types.TVar{})
		if err := r.unify(annot, scrutT, p.Pos); err != nil {
			return nil, err
		}
		return r.InferPattern(env, p.Inner, annot)
	}
	return nil, typeErr(errs.TypeMismatch, "unhandled pattern form", p.Position())
}

func (r *Resolver) litPatternType(l *ast.LitPattern) types.Type {
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

// freshSubst allocates one fresh type variable per declared type parameter,
// used to instantiate a data type's constructor schemes at each use site.
func freshSubst(ts *types.TypeSystem, params []int) map[int]types.Type {
	sub := map[int]types.Type{}
	for _, p := range params {
		sub[p] = ts.FreshVar(false)
	}
	return sub
}

func instArgs(params []int, sub map[int]types.Type) []types.Type {
	out := make([]types.Type, len(params))
	for i, p := range params {
		out[i] = sub[p]
	}
	return out
}

// substVars replaces each TVar id found in sub with its mapped type,
// leaving everything else in t intact.
func substVars(t types.Type, sub map[int]types.Type) types.Type {
	switch t := t.(type) {
	case *types.TVar:
		if r, ok := sub[t.ID]; ok {
			return r
		}
		return t
	case *types.TFunc:
		return &types.TFunc{From: substVars(t.From, sub), To: substVars(t.To, sub)}
	case *types.TTuple:
		elems := make([]types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = substVars(e, sub)
		}
		return &types.TTuple{Elems: elems}
	case *types.TRecord:
		fields := make(map[string]types.Type, len(t.Fields))
		for k, v := range t.Fields {
			fields[k] = substVars(v, sub)
		}
		return &types.TRecord{Fields: fields}
	case *types.TList:
		return &types.TList{Elem: substVars(t.Elem, sub)}
	case *types.TData:
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = substVars(a, sub)
		}
		return &types.TData{Name: t.Name, Args: args}
	default:
		return t
	}
}
