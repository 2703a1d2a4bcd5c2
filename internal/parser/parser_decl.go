package parser

import (
	"strconv"

	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/lexer"
)

func (p *Parser) parseLiteral() (*ast.Lit, error) {
	pos := p.atPos()
	switch p.cur().Type {
	case lexer.INT:
		t := p.advance()
		n, err := strconv.ParseInt(t.Lit, 10, 64)
		if err != nil {
			return nil, &ParseError{Message: "invalid integer literal", Pos: pos}
		}
		return &ast.Lit{Pos: pos, Kind: ast.LitInt, Val: n}, nil
	case lexer.FLOAT:
		t := p.advance()
		f, err := strconv.ParseFloat(t.Lit, 64)
		if err != nil {
			return nil, &ParseError{Message: "invalid float literal", Pos: pos}
		}
		return &ast.Lit{Pos: pos, Kind: ast.LitFloat, Val: f}, nil
	case lexer.STRING:
		t := p.advance()
		return &ast.Lit{Pos: pos, Kind: ast.LitString, Val: t.Lit}, nil
	case lexer.CHAR:
		t := p.advance()
		var r rune
		if len(t.Lit) > 0 {
			r = rune(t.Lit[0])
		}
		return &ast.Lit{Pos: pos, Kind: ast.LitChar, Val: r}, nil
	case lexer.TRUE:
		p.advance()
		return &ast.Lit{Pos: pos, Kind: ast.LitBool, Val: true}, nil
	case lexer.FALSE:
		p.advance()
		return &ast.Lit{Pos: pos, Kind: ast.LitBool, Val: false}, nil
	case lexer.LPAREN:
		if p.peekN(1).Type == lexer.RPAREN {
			p.advance()
			p.advance()
			return &ast.Lit{Pos: pos, Kind: ast.LitUnit, Val: nil}, nil
		}
	}
	return nil, &ParseError{Message: "expected literal", Pos: pos}
}

func (p *Parser) parseDecl() (ast.Decl, error) {
	pos := p.atPos()
	switch p.cur().Type {
	case lexer.VAL:
		p.advance()
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.EQ, "'='"); err != nil {
			return nil, err
		}
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ValDecl{Pos: pos, Pattern: pat, Rhs: rhs}, nil

	case lexer.FUN:
		p.advance()
		rec := false
		if p.at(lexer.REC) {
			rec = true
			p.advance()
		}
		nameTok, err := p.expect(lexer.IDENT, "function name")
		if err != nil {
			return nil, err
		}
		var params []ast.Pattern
		for !p.at(lexer.EQ) && !p.at(lexer.EOF) {
			pat, err := p.parseAtomPattern()
			if err != nil {
				return nil, err
			}
			params = append(params, pat)
		}
		if _, err := p.expect(lexer.EQ, "'='"); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.FunDecl{Pos: pos, Name: nameTok.Lit, Params: params, Body: body, Rec: rec}, nil

	case lexer.TYPE:
		return p.parseTypeDecl()

	case lexer.EXCEPTION:
		p.advance()
		nameTok, err := p.expect(lexer.CTOR, "exception name")
		if err != nil {
			return nil, err
		}
		var argT ast.TypeExpr
		if p.at(lexer.OF) {
			p.advance()
			argT, err = p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
		}
		return &ast.ExceptionDecl{Pos: pos, Name: nameTok.Lit, Arg: argT}, nil
	}
	return nil, &ParseError{Message: "expected declaration", Pos: pos}
}

func (p *Parser) parseTypeDecl() (ast.Decl, error) {
	pos := p.atPos()
	p.advance() // 'type'
	nameTok, err := p.expect(lexer.CTOR, "type name")
	if err != nil {
		return nil, err
	}
	var params []string
	for p.at(lexer.QUOTE) {
		params = append(params, p.advance().Lit)
	}
	if _, err := p.expect(lexer.EQ, "'='"); err != nil {
		return nil, err
	}
	var ctors []ast.ConDef
	for {
		ctorTok, err := p.expect(lexer.CTOR, "constructor name")
		if err != nil {
			return nil, err
		}
		var args []ast.TypeExpr
		for !p.at(lexer.PIPE) && !p.at(lexer.SEMI) && !p.at(lexer.EOF) {
			t, err := p.parseAtomTypeExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, t)
		}
		ctors = append(ctors, ast.ConDef{Name: ctorTok.Lit, Args: args})
		if p.at(lexer.PIPE) {
			p.advance()
			continue
		}
		break
	}
	return &ast.TypeDecl{Pos: pos, Name: nameTok.Lit, Params: params, Ctors: ctors}, nil
}
