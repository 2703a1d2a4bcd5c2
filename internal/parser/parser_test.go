package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlcore-lang/mlcore/internal/ast"
)

// TestRoundTrip pins spec invariant 1: unparsing a parsed tree and parsing
// the result reaches a fixed point (equality modulo whitespace and the
// redundant parens the unparser inserts).
func TestRoundTrip(t *testing.T) {
	srcs := []string{
		"2 + 3",
		"1 + 2 * 3",
		"~2",
		"let val x = 1 in x + 2 end",
		"let val x = 1 in let val x = 2 in x * 3 end + x end",
		"fn x => x + 1",
		"if 1 < 2 then 10 else 20",
		"case x of 1 => true | _ => false",
		"(1, true, [1, 2])",
		"from p in people where p.age > 18 yield p.name",
		"f 1 2",
	}
	for _, src := range srcs {
		t.Run(src, func(t *testing.T) {
			a, err := ExpressionEof("t.ml", []byte(src))
			require.NoError(t, err)
			b, err := ExpressionEof("t.ml", []byte(ast.Unparse(a)))
			require.NoError(t, err, "unparsed form must reparse: %q", ast.Unparse(a))
			assert.Equal(t, ast.Unparse(a), ast.Unparse(b))
		})
	}
}

func TestLetComposesWithInfix(t *testing.T) {
	e, err := ExpressionEof("t.ml", []byte("let val x = 2 in x * 3 end + 1"))
	require.NoError(t, err)
	inf, ok := e.(*ast.InfixExpr)
	require.True(t, ok)
	assert.Equal(t, "+", inf.Op)
	_, ok = inf.Left.(*ast.LetExpr)
	assert.True(t, ok)
}

func TestEntryPointsRequireEof(t *testing.T) {
	_, err := ExpressionEof("t.ml", []byte("1 2 ;"))
	require.Error(t, err)

	_, err = LiteralEof("t.ml", []byte("42"))
	require.NoError(t, err)
	_, err = LiteralEof("t.ml", []byte("42 43"))
	require.Error(t, err)

	d, err := DeclEof("t.ml", []byte("val x = 5"))
	require.NoError(t, err)
	_, ok := d.(*ast.ValDecl)
	assert.True(t, ok)

	n, err := StatementEof("t.ml", []byte("x + 1"))
	require.NoError(t, err)
	_, ok = n.(*ast.InfixExpr)
	assert.True(t, ok)
}

func TestParseFileSplitsStatements(t *testing.T) {
	f, err := ParseFile("t.ml", []byte("val x = 5;\nx;\nit + 1;\n"))
	require.NoError(t, err)
	require.Len(t, f.Stmts, 3)
	_, ok := f.Stmts[0].(*ast.ValDecl)
	assert.True(t, ok)

	f, err = ParseFile("t.ml", []byte(""))
	require.NoError(t, err)
	assert.Empty(t, f.Stmts)
}

func TestParseErrorCarriesPosition(t *testing.T) {
	_, err := ExpressionEof("t.ml", []byte("1 +"))
	require.Error(t, err)
	pe, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, "t.ml", pe.Pos.File)
	assert.Equal(t, 1, pe.Pos.Line)
}

func TestExceptionDeclPayload(t *testing.T) {
	d, err := DeclEof("t.ml", []byte("exception Boom of int"))
	require.NoError(t, err)
	ed, ok := d.(*ast.ExceptionDecl)
	require.True(t, ok)
	assert.Equal(t, "Boom", ed.Name)
	require.NotNil(t, ed.Arg)
}
