package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestTokenizeStatement(t *testing.T) {
	toks := Tokenize("t.ml", []byte("val x = 5;"))
	assert.Equal(t, []TokenType{VAL, IDENT, EQ, INT, SEMI, EOF}, kinds(toks))
	assert.Equal(t, "x", toks[1].Lit)
	assert.Equal(t, "5", toks[3].Lit)
}

func TestTokenizeOperators(t *testing.T) {
	toks := Tokenize("t.ml", []byte("a == b <> c -> d => ~e"))
	assert.Equal(t, []TokenType{IDENT, EQEQ, IDENT, NEQ, IDENT, ARROW, IDENT, FARROW, TILDE, IDENT, EOF}, kinds(toks))
}

func TestPositionsAreOneBased(t *testing.T) {
	toks := Tokenize("t.ml", []byte("x;\ny;"))
	require.Len(t, toks, 5)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Col)
	assert.Equal(t, 2, toks[2].Line)
	assert.Equal(t, 1, toks[2].Col)
}

// TestNormalizeNFC pins the lexer-boundary normalization: the same
// identifier written precomposed (U+00E9) and decomposed (e + U+0301) must
// produce identical token streams.
func TestNormalizeNFC(t *testing.T) {
	precomposed := []byte("café")
	decomposed := []byte("café")
	assert.Equal(t, Normalize(precomposed), Normalize(decomposed))

	a := Tokenize("t.ml", precomposed)
	b := Tokenize("t.ml", decomposed)
	require.Len(t, b, len(a))
	assert.Equal(t, a[0].Lit, b[0].Lit)
}

func TestNormalizeStripsBOM(t *testing.T) {
	toks := Tokenize("t.ml", append([]byte{0xEF, 0xBB, 0xBF}, []byte("1")...))
	assert.Equal(t, []TokenType{INT, EOF}, kinds(toks))
	assert.Equal(t, 1, toks[0].Col)
}
