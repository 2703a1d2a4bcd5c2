// Package parser implements the concrete-syntax-to-surface-AST boundary
// for the surface language. This implementation exists so the rest of
// the pipeline (and its tests, and the CLI/REPL) has something concrete to
// drive end to end: a recursive-descent, precedence-climbing parser.
package parser

import (
	"fmt"

	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/errs"
	"github.com/mlcore-lang/mlcore/internal/lexer"
)

// ParseError is raised on syntactic failure.
type ParseError struct {
	Message string
	Pos     ast.Pos
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ParseError: %s at %s", e.Message, e.Pos.String())
}

// AsReport renders a ParseError as a structured errs.Report.
func (e *ParseError) AsReport() *errs.Report {
	return errs.New(errs.PhaseParse, errs.ParseUnexpectedToken, e.Message, &e.Pos)
}

// Parser consumes a token stream and produces surface AST nodes.
type Parser struct {
	file string
	toks []lexer.Token
	pos  int
}

// New constructs a Parser over already-tokenized input.
func New(file string, toks []lexer.Token) *Parser {
	return &Parser{file: file, toks: toks}
}

// NewFromSource tokenizes src and constructs a Parser.
func NewFromSource(file string, src []byte) *Parser {
	return New(file, lexer.Tokenize(file, src))
}

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) peekN(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) atPos() ast.Pos {
	t := p.cur()
	return ast.Pos{File: p.file, Line: t.Line, Col: t.Col}
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(tt lexer.TokenType) bool { return p.cur().Type == tt }

func (p *Parser) expect(tt lexer.TokenType, what string) (lexer.Token, error) {
	if !p.at(tt) {
		return lexer.Token{}, &ParseError{
			Message: fmt.Sprintf("expected %s, found %q", what, p.cur().Lit),
			Pos:     p.atPos(),
		}
	}
	return p.advance(), nil
}

// ---- Entry points ----

// ExpressionEof parses a single expression and requires EOF to follow.
func ExpressionEof(file string, src []byte) (ast.Expr, error) {
	p := NewFromSource(file, src)
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.EOF) {
		return nil, &ParseError{Message: "expected end of input", Pos: p.atPos()}
	}
	return e, nil
}

// DeclEof parses a single declaration and requires EOF to follow.
func DeclEof(file string, src []byte) (ast.Decl, error) {
	p := NewFromSource(file, src)
	d, err := p.parseDecl()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.EOF) {
		return nil, &ParseError{Message: "expected end of input", Pos: p.atPos()}
	}
	return d, nil
}

// StatementEof parses one top-level statement (a declaration or a bare
// expression) and requires EOF to follow.
func StatementEof(file string, src []byte) (ast.Node, error) {
	p := NewFromSource(file, src)
	n, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.EOF) {
		return nil, &ParseError{Message: "expected end of input", Pos: p.atPos()}
	}
	return n, nil
}

// LiteralEof parses a single literal and requires EOF to follow.
func LiteralEof(file string, src []byte) (*ast.Lit, error) {
	p := NewFromSource(file, src)
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.EOF) {
		return nil, &ParseError{Message: "expected end of input", Pos: p.atPos()}
	}
	return lit, nil
}

// ParseFile parses a `;`-terminated sequence of top-level statements
//, stopping at EOF.
func ParseFile(path string, src []byte) (*ast.File, error) {
	p := NewFromSource(path, src)
	f := &ast.File{Path: path}
	for !p.at(lexer.EOF) {
		n, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		f.Stmts = append(f.Stmts, n)
		if p.at(lexer.SEMI) {
			p.advance()
		}
	}
	return f, nil
}

func (p *Parser) parseStatement() (ast.Node, error) {
	switch p.cur().Type {
	case lexer.VAL, lexer.FUN, lexer.TYPE, lexer.EXCEPTION:
		return p.parseDecl()
	default:
		return p.parseExpr()
	}
}
