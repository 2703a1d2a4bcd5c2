package parser

import (
	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/lexer"
)

// Operator precedence table, loosest to tightest. No user-definable
// fixity.
var precedence = map[lexer.TokenType]int{
	lexer.OROR:   1,
	lexer.ANDAND: 2,
	lexer.EQEQ:   3, lexer.NEQ: 3, lexer.LT: 3, lexer.GT: 3, lexer.LE: 3, lexer.GE: 3,
	lexer.PLUS: 4, lexer.MINUS: 4,
	lexer.STAR: 5, lexer.SLASH: 5, lexer.PERCENT: 5,
}

func opLit(tt lexer.TokenType, lit string) string {
	return lit
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseLet()
}

// parseLet handles `if`, `fn`, `case`, `raise`, and `from` at the top of the
// expression grammar, then falls through to the infix/binop ladder. `let ...
// end` is an atom (it is self-delimiting, so `let ... end + x` composes with
// operators the way SML's atexp grammar allows) and lives in parseAtom.
func (p *Parser) parseLet() (ast.Expr, error) {
	switch p.cur().Type {
	case lexer.FN:
		return p.parseFnExpr()
	case lexer.IF:
		return p.parseIfExpr()
	case lexer.CASE:
		return p.parseCaseExpr()
	case lexer.RAISE:
		return p.parseRaiseExpr()
	case lexer.FROM:
		return p.parseQueryExpr()
	}
	e, err := p.parseBinop(0)
	if err != nil {
		return nil, err
	}
	return p.parseHandleSuffix(e)
}

func (p *Parser) parseHandleSuffix(e ast.Expr) (ast.Expr, error) {
	if !p.at(lexer.HANDLE) {
		return e, nil
	}
	pos := p.atPos()
	p.advance()
	arms, err := p.parseCaseArms()
	if err != nil {
		return nil, err
	}
	return &ast.HandleExpr{Pos: pos, Body: e, Arms: arms}, nil
}

func (p *Parser) parseBinop(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.cur().Type
		prec, ok := precedence[tt]
		if !ok || prec < minPrec {
			return left, nil
		}
		opTok := p.advance()
		right, err := p.parseBinop(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.InfixExpr{Pos: left.Position(), Op: opLit(opTok.Type, opTok.Lit), Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.at(lexer.TILDE) {
		pos := p.atPos()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.AppExpr{Pos: pos, Func: &ast.Ident{Pos: pos, Name: "~"}, Args: []ast.Expr{operand}}, nil
	}
	if p.at(lexer.NOT) {
		pos := p.atPos()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.AppExpr{Pos: pos, Func: &ast.Ident{Pos: pos, Name: "not"}, Args: []ast.Expr{operand}}, nil
	}
	return p.parseApp()
}

// parseApp parses left-associative function application of atoms:
// `f x y` == `(f x) y`.
func (p *Parser) parseApp() (ast.Expr, error) {
	fn, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	var args []ast.Expr
	for p.startsAtom() {
		a, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	if len(args) == 0 {
		return fn, nil
	}
	return &ast.AppExpr{Pos: fn.Position(), Func: fn, Args: args}, nil
}

func (p *Parser) startsAtom() bool {
	switch p.cur().Type {
	case lexer.IDENT, lexer.CTOR, lexer.INT, lexer.FLOAT, lexer.STRING, lexer.CHAR,
		lexer.TRUE, lexer.FALSE, lexer.LPAREN, lexer.LBRACK, lexer.LBRACE, lexer.LET:
		return true
	}
	return false
}

// parsePostfix parses an atom followed by zero or more `.field` projections.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.DOT) {
		pos := p.atPos()
		p.advance()
		fieldTok, err := p.expect(lexer.IDENT, "field name")
		if err != nil {
			return nil, err
		}
		e = &ast.RecordAccessExpr{Pos: pos, Expr: e, Field: fieldTok.Lit}
	}
	return e, nil
}

func (p *Parser) parseAtom() (ast.Expr, error) {
	pos := p.atPos()
	switch p.cur().Type {
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.CHAR, lexer.TRUE, lexer.FALSE:
		return p.parseLiteral()
	case lexer.LET:
		return p.parseLetExpr()
	case lexer.IDENT:
		name := p.advance().Lit
		return &ast.Ident{Pos: pos, Name: name}, nil
	case lexer.CTOR:
		name := p.advance().Lit
		return &ast.Ident{Pos: pos, Name: name}, nil
	case lexer.LPAREN:
		if p.peekN(1).Type == lexer.RPAREN {
			p.advance()
			p.advance()
			return &ast.Lit{Pos: pos, Kind: ast.LitUnit, Val: nil}, nil
		}
		p.advance()
		first, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(lexer.COLON) {
			p.advance()
			t, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
				return nil, err
			}
			return &ast.AnnotExpr{Pos: pos, Expr: first, Type: t}, nil
		}
		if p.at(lexer.COMMA) {
			elems := []ast.Expr{first}
			for p.at(lexer.COMMA) {
				p.advance()
				next, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				elems = append(elems, next)
			}
			if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
				return nil, err
			}
			return &ast.TupleExpr{Pos: pos, Elems: elems}, nil
		}
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return first, nil
	case lexer.LBRACK:
		p.advance()
		var elems []ast.Expr
		for !p.at(lexer.RBRACK) {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		if _, err := p.expect(lexer.RBRACK, "']'"); err != nil {
			return nil, err
		}
		return &ast.ListExpr{Pos: pos, Elems: elems}, nil
	case lexer.LBRACE:
		p.advance()
		var fields []ast.RecordField
		for !p.at(lexer.RBRACE) {
			nameTok, err := p.expect(lexer.IDENT, "field name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.EQ, "'='"); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.RecordField{Label: nameTok.Lit, Value: v})
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
			return nil, err
		}
		return &ast.RecordExpr{Pos: pos, Fields: fields}, nil
	}
	return nil, &ParseError{Message: "expected expression", Pos: pos}
}

func (p *Parser) parseLetExpr() (ast.Expr, error) {
	pos := p.atPos()
	p.advance() // let
	var decls []ast.Decl
	for !p.at(lexer.IN) {
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
		if p.at(lexer.SEMI) {
			p.advance()
		}
	}
	if _, err := p.expect(lexer.IN, "'in'"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END, "'end'"); err != nil {
		return nil, err
	}
	return &ast.LetExpr{Pos: pos, Decls: decls, Body: body}, nil
}

func (p *Parser) parseFnExpr() (ast.Expr, error) {
	pos := p.atPos()
	p.advance() // fn
	var params []ast.Pattern
	for !p.at(lexer.FARROW) {
		pat, err := p.parseAtomPattern()
		if err != nil {
			return nil, err
		}
		params = append(params, pat)
	}
	if _, err := p.expect(lexer.FARROW, "'=>'"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.FnExpr{Pos: pos, Params: params, Body: body}, nil
}

func (p *Parser) parseIfExpr() (ast.Expr, error) {
	pos := p.atPos()
	p.advance() // if
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.THEN, "'then'"); err != nil {
		return nil, err
	}
	thenE, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ELSE, "'else'"); err != nil {
		return nil, err
	}
	elseE, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.IfExpr{Pos: pos, Cond: cond, Then: thenE, Else: elseE}, nil
}

func (p *Parser) parseCaseArms() ([]ast.CaseArm, error) {
	if p.at(lexer.PIPE) {
		p.advance()
	}
	var arms []ast.CaseArm
	for {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		var guard ast.Expr
		if p.at(lexer.WHERE) {
			p.advance()
			guard, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(lexer.FARROW, "'=>'"); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.CaseArm{Pattern: pat, Guard: guard, Body: body})
		if p.at(lexer.PIPE) {
			p.advance()
			continue
		}
		break
	}
	return arms, nil
}

func (p *Parser) parseCaseExpr() (ast.Expr, error) {
	pos := p.atPos()
	p.advance() // case
	scrut, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.OF, "'of'"); err != nil {
		return nil, err
	}
	arms, err := p.parseCaseArms()
	if err != nil {
		return nil, err
	}
	return &ast.CaseExpr{Pos: pos, Scrut: scrut, Arms: arms}, nil
}

func (p *Parser) parseRaiseExpr() (ast.Expr, error) {
	pos := p.atPos()
	p.advance() // raise
	ctorTok, err := p.expect(lexer.CTOR, "exception constructor")
	if err != nil {
		return nil, err
	}
	var payload ast.Expr
	if p.startsAtom() {
		payload, err = p.parsePostfix()
		if err != nil {
			return nil, err
		}
	}
	return &ast.RaiseExpr{Pos: pos, Ctor: ctorTok.Lit, Payload: payload}, nil
}

func (p *Parser) parseQueryExpr() (ast.Expr, error) {
	pos := p.atPos()
	var clauses []ast.QueryClause
	for p.at(lexer.FROM) {
		p.advance()
		varTok, err := p.expect(lexer.IDENT, "binding name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.IN, "'in'"); err != nil {
			return nil, err
		}
		src, err := p.parseBinop(0)
		if err != nil {
			return nil, err
		}
		var where ast.Expr
		if p.at(lexer.WHERE) {
			p.advance()
			where, err = p.parseBinop(0)
			if err != nil {
				return nil, err
			}
		}
		clauses = append(clauses, ast.QueryClause{Var: varTok.Lit, Source: src, Where: where})
	}
	if _, err := p.expect(lexer.YIELD, "'yield'"); err != nil {
		return nil, err
	}
	yieldE, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.QueryExpr{Pos: pos, Clauses: clauses, Yield: yieldE}, nil
}
