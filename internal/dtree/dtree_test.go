package dtree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/types"
)

func pos() ast.Pos { return ast.Pos{File: "t.ml", Line: 1, Col: 1} }

func lit(v interface{}) core.Expr { return &core.Lit{Val: v} }

func optionRegistry(ts *types.TypeSystem) (*types.DataRegistry, types.Type) {
	dreg := types.NewDataRegistry()
	a := ts.FreshVar(false)
	dreg.Register(&types.DataDef{
		Name:   "option",
		Params: []int{a.ID},
		Ctors: []types.CtorDef{
			{Name: "None", DataName: "option"},
			{Name: "Some", Fields: []types.Type{a}, DataName: "option"},
		},
	})
	return dreg, ts.Data("option", ts.PrimInt())
}

func TestExhaustiveBoolMatch(t *testing.T) {
	dreg := types.NewDataRegistry()
	arms := []Arm{
		{Pattern: &ast.LitPattern{Pos: pos(), Kind: ast.LitBool, Val: true}, Body: lit(1), Pos: pos()},
		{Pattern: &ast.LitPattern{Pos: pos(), Kind: ast.LitBool, Val: false}, Body: lit(0), Pos: pos()},
	}
	_, facts := Compile(&types.TPrim{Name: types.Bool}, arms, dreg)
	require.Equal(t, OK, facts.Verdict)
}

func TestNonExhaustiveBoolMatch(t *testing.T) {
	dreg := types.NewDataRegistry()
	arms := []Arm{
		{Pattern: &ast.LitPattern{Pos: pos(), Kind: ast.LitBool, Val: true}, Body: lit(1), Pos: pos()},
	}
	_, facts := Compile(&types.TPrim{Name: types.Bool}, arms, dreg)
	require.Equal(t, NonExhaustive, facts.Verdict)
}

func TestOptionMatchExhaustiveWithWildcard(t *testing.T) {
	ts := types.NewTypeSystem()
	dreg, optT := optionRegistry(ts)
	arms := []Arm{
		{Pattern: &ast.ConPattern{Pos: pos(), Name: "Some", Args: []ast.Pattern{&ast.VarPattern{Pos: pos(), Name: "v"}}}, Body: lit("some"), Pos: pos()},
		{Pattern: &ast.WildcardPattern{Pos: pos()}, Body: lit("none"), Pos: pos()},
	}
	_, facts := Compile(optT, arms, dreg)
	require.Equal(t, OK, facts.Verdict)
}

func TestOptionMatchRedundantArm(t *testing.T) {
	ts := types.NewTypeSystem()
	dreg, optT := optionRegistry(ts)
	shadowedPos := ast.Pos{File: "t.ml", Line: 3, Col: 1}
	arms := []Arm{
		{Pattern: &ast.WildcardPattern{Pos: pos()}, Body: lit("any"), Pos: pos()},
		{Pattern: &ast.ConPattern{Pos: shadowedPos, Name: "Some", Args: []ast.Pattern{&ast.WildcardPattern{Pos: shadowedPos}}}, Body: lit("some"), Pos: shadowedPos},
	}
	_, facts := Compile(optT, arms, dreg)
	require.Equal(t, Redundant, facts.Verdict)
	require.Equal(t, []ast.Pos{shadowedPos}, facts.RedundantArm)
}

func TestOptionMatchNonExhaustiveMissingCtor(t *testing.T) {
	ts := types.NewTypeSystem()
	dreg, optT := optionRegistry(ts)
	arms := []Arm{
		{Pattern: &ast.ConPattern{Pos: pos(), Name: "Some", Args: []ast.Pattern{&ast.VarPattern{Pos: pos(), Name: "v"}}}, Body: lit("some"), Pos: pos()},
	}
	_, facts := Compile(optT, arms, dreg)
	require.Equal(t, NonExhaustive, facts.Verdict)
}

func TestTuplePatternDecomposesWithoutSwitch(t *testing.T) {
	ts := types.NewTypeSystem()
	dreg := types.NewDataRegistry()
	tupT := ts.Tuple(ts.PrimInt(), ts.PrimBool())
	arms := []Arm{
		{Pattern: &ast.TuplePattern{Pos: pos(), Elems: []ast.Pattern{
			&ast.VarPattern{Pos: pos(), Name: "a"},
			&ast.VarPattern{Pos: pos(), Name: "b"},
		}}, Body: lit("pair"), Pos: pos()},
	}
	tree, facts := Compile(tupT, arms, dreg)
	require.Equal(t, OK, facts.Verdict)
	leaf, ok := tree.(*core.Leaf)
	require.True(t, ok)
	require.Len(t, leaf.Bindings, 2)
}

func TestListPatternConsNilExhaustive(t *testing.T) {
	ts := types.NewTypeSystem()
	dreg := types.NewDataRegistry()
	listT := ts.List(ts.PrimInt())
	arms := []Arm{
		{Pattern: &ast.ListPattern{Pos: pos()}, Body: lit("empty"), Pos: pos()},
		{Pattern: &ast.ListPattern{Pos: pos(), Elems: []ast.Pattern{&ast.VarPattern{Pos: pos(), Name: "h"}}, Tail: &ast.VarPattern{Pos: pos(), Name: "t"}}, Body: lit("cons"), Pos: pos()},
	}
	_, facts := Compile(listT, arms, dreg)
	require.Equal(t, OK, facts.Verdict)
}
