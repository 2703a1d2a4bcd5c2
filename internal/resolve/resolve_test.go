package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/types"
)

func freshResolver() (*Resolver, *types.Env) {
	ts := types.NewTypeSystem()
	dreg := types.NewDataRegistry()
	return New(ts, dreg), types.NewEnv()
}

func pos() ast.Pos { return ast.Pos{File: "t.ml", Line: 1, Col: 1} }

func TestInferLiteralInt(t *testing.T) {
	r, env := freshResolver()
	lit := &ast.Lit{Pos: pos(), Kind: ast.LitInt, Val: 3}
	typ, err := r.InferExpr(env, lit)
	require.NoError(t, err)
	require.Equal(t, "int", typ.Moniker())
}

func TestInferArithOverload(t *testing.T) {
	r, env := freshResolver()
	e := &ast.InfixExpr{
		Pos: pos(), Op: "+",
		Left:  &ast.Lit{Pos: pos(), Kind: ast.LitInt, Val: 1},
		Right: &ast.Lit{Pos: pos(), Kind: ast.LitInt, Val: 2},
	}
	typ, err := r.InferExpr(env, e)
	require.NoError(t, err)
	require.Equal(t, "int", r.TS.Apply(typ).Moniker())
}

func TestLetGeneralisation(t *testing.T) {
	r, env := freshResolver()
	// let id = fn x => x in (id 1, id true) -- id must be polymorphic.
	idFn := &ast.FnExpr{Pos: pos(), Params: []ast.Pattern{&ast.VarPattern{Pos: pos(), Name: "x"}}, Body: &ast.Ident{Pos: pos(), Name: "x"}}
	body := &ast.TupleExpr{Pos: pos(), Elems: []ast.Expr{
		&ast.AppExpr{Pos: pos(), Func: &ast.Ident{Pos: pos(), Name: "id"}, Args: []ast.Expr{&ast.Lit{Pos: pos(), Kind: ast.LitInt, Val: 1}}},
		&ast.AppExpr{Pos: pos(), Func: &ast.Ident{Pos: pos(), Name: "id"}, Args: []ast.Expr{&ast.Lit{Pos: pos(), Kind: ast.LitBool, Val: true}}},
	}}
	letE := &ast.LetExpr{Pos: pos(), Decls: []ast.Decl{&ast.ValDecl{Pos: pos(), Pattern: &ast.VarPattern{Pos: pos(), Name: "id"}, Rhs: idFn}}, Body: body}
	typ, err := r.InferExpr(env, letE)
	require.NoError(t, err)
	require.Equal(t, "(int * bool)", r.TS.Apply(typ).Moniker())
}

func TestOccursCheckRejectsInfiniteType(t *testing.T) {
	r, _ := freshResolver()
	v := r.TS.FreshVar(false)
	err := r.TS.Unifier.Unify(v, r.TS.Func(v, r.TS.PrimInt()))
	require.Error(t, err)
	_, ok := err.(*types.OccursCheckError)
	require.True(t, ok)
}

func TestEqualityRequiredRejectsFunctionCompare(t *testing.T) {
	r, env := freshResolver()
	fn := &ast.FnExpr{Pos: pos(), Params: []ast.Pattern{&ast.VarPattern{Pos: pos(), Name: "x"}}, Body: &ast.Ident{Pos: pos(), Name: "x"}}
	e := &ast.InfixExpr{Pos: pos(), Op: "==", Left: fn, Right: fn}
	_, err := r.InferExpr(env, e)
	require.Error(t, err)
}

func TestConstructorPatternAndExhaustiveTypeFlow(t *testing.T) {
	r, env := freshResolver()
	td := &ast.TypeDecl{
		Pos: pos(), Name: "option", Params: []string{"a"},
		Ctors: []ast.ConDef{
			{Name: "None"},
			{Name: "Some", Args: []ast.TypeExpr{&ast.TypeVarExpr{Pos: pos(), Name: "a"}}},
		},
	}
	env, err := r.InferDecl(env, td)
	require.NoError(t, err)

	some := &ast.AppExpr{Pos: pos(), Func: &ast.Ident{Pos: pos(), Name: "Some"}, Args: []ast.Expr{&ast.Lit{Pos: pos(), Kind: ast.LitInt, Val: 5}}}
	typ, err := r.InferExpr(env, some)
	require.NoError(t, err)
	require.Equal(t, "(int) option", r.TS.Apply(typ).Moniker())

	caseE := &ast.CaseExpr{
		Pos: pos(), Scrut: some,
		Arms: []ast.CaseArm{
			{Pattern: &ast.ConPattern{Pos: pos(), Name: "None"}, Body: &ast.Lit{Pos: pos(), Kind: ast.LitInt, Val: 0}},
			{Pattern: &ast.ConPattern{Pos: pos(), Name: "Some", Args: []ast.Pattern{&ast.VarPattern{Pos: pos(), Name: "v"}}}, Body: &ast.Ident{Pos: pos(), Name: "v"}},
		},
	}
	typ, err = r.InferExpr(env, caseE)
	require.NoError(t, err)
	require.Equal(t, "int", r.TS.Apply(typ).Moniker())
}

func TestRaiseAndHandle(t *testing.T) {
	r, env := freshResolver()
	env, err := r.InferDecl(env, &ast.ExceptionDecl{Pos: pos(), Name: "NotFound"})
	require.NoError(t, err)

	body := &ast.RaiseExpr{Pos: pos(), Ctor: "NotFound"}
	handled := &ast.HandleExpr{
		Pos: pos(), Body: body,
		Arms: []ast.CaseArm{
			{Pattern: &ast.ConPattern{Pos: pos(), Name: "NotFound"}, Body: &ast.Lit{Pos: pos(), Kind: ast.LitInt, Val: 0}},
		},
	}
	typ, err := r.InferExpr(env, handled)
	require.NoError(t, err)
	require.Equal(t, "int", r.TS.Apply(typ).Moniker())
}

func TestQueryExprInfersListOfYield(t *testing.T) {
	r, env := freshResolver()
	env = env.Extend("people", types.Mono(r.TS.List(r.TS.Record(map[string]types.Type{"age": r.TS.PrimInt(), "name": r.TS.PrimString()}))))
	q := &ast.QueryExpr{
		Pos: pos(),
		Clauses: []ast.QueryClause{
			{Var: "p", Source: &ast.Ident{Pos: pos(), Name: "people"}, Where: &ast.InfixExpr{Pos: pos(), Op: ">", Left: &ast.RecordAccessExpr{Pos: pos(), Expr: &ast.Ident{Pos: pos(), Name: "p"}, Field: "age"}, Right: &ast.Lit{Pos: pos(), Kind: ast.LitInt, Val: 18}}},
		},
		Yield: &ast.RecordAccessExpr{Pos: pos(), Expr: &ast.Ident{Pos: pos(), Name: "p"}, Field: "name"},
	}
	typ, err := r.InferExpr(env, q)
	require.NoError(t, err)
	require.Equal(t, "string", r.TS.Apply(typ).(*types.TList).Elem.Moniker())
}
