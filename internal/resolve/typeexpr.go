package resolve

import (
	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// convertTypeExpr turns a parsed surface type expression into a Type,
// resolving named data types against the DataRegistry and reusing one
// type variable per distinct quoted name within a single declaration.
func (r *Resolver) convertTypeExpr(te ast.TypeExpr, tvEnv map[string]*types.TVar) types.Type {
	switch te := te.(type) {
	case *ast.TypeVarExpr:
		if v, ok := tvEnv[te.Name]; ok {
			return v
		}
		v := r.TS.FreshVar(false)
		tvEnv[te.Name] = v
		return v

	case *ast.TypeName:
		switch te.Name {
		case "int":
			return r.TS.PrimInt()
		case "real":
			return r.TS.PrimReal()
		case "string":
			return r.TS.PrimString()
		case "char":
			return r.TS.PrimChar()
		case "bool":
			return r.TS.PrimBool()
		case "unit":
			return r.TS.PrimUnit()
		case "list":
			if len(te.Args) == 1 {
				return r.TS.List(r.convertTypeExpr(te.Args[0], tvEnv))
			}
		}
		args := make([]types.Type, len(te.Args))
		for i, a := range te.Args {
			args[i] = r.convertTypeExpr(a, tvEnv)
		}
		return r.TS.Data(te.Name, args...)

	case *ast.TypeFunExpr:
		return r.TS.Func(r.convertTypeExpr(te.From, tvEnv), r.convertTypeExpr(te.To, tvEnv))

	case *ast.TypeTupleExpr:
		elems := make([]types.Type, len(te.Elems))
		for i, e := range te.Elems {
			elems[i] = r.convertTypeExpr(e, tvEnv)
		}
		return r.TS.Tuple(elems...)

	case *ast.TypeRecordExpr:
		fields := map[string]types.Type{}
		for _, f := range te.Fields {
			fields[f.Label] = r.convertTypeExpr(f.Type, tvEnv)
		}
		return r.TS.Record(fields)

	case *ast.TypeListExpr:
		return r.TS.List(r.convertTypeExpr(te.Elem, tvEnv))
	}
	return r.TS.FreshVar(false)
}
