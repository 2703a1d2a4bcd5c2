package parser

import (
	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/lexer"
)

// parseTypeExpr parses a full type expression: tuple/function level.
func (p *Parser) parseTypeExpr() (ast.TypeExpr, error) {
	left, err := p.parseTupleTypeExpr()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.ARROW) {
		pos := p.atPos()
		p.advance()
		right, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		return &ast.TypeFunExpr{Pos: pos, From: left, To: right}, nil
	}
	return left, nil
}

func (p *Parser) parseTupleTypeExpr() (ast.TypeExpr, error) {
	pos := p.atPos()
	first, err := p.parseAppTypeExpr()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.STAR) {
		return first, nil
	}
	elems := []ast.TypeExpr{first}
	for p.at(lexer.STAR) {
		p.advance()
		next, err := p.parseAppTypeExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, next)
	}
	return &ast.TypeTupleExpr{Pos: pos, Elems: elems}, nil
}

// parseAppTypeExpr handles `T list`, `T1 T2 name` style application and
// postfix `list`.
func (p *Parser) parseAppTypeExpr() (ast.TypeExpr, error) {
	t, err := p.parseAtomTypeExpr()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.IDENT) && p.cur().Lit == "list" {
		pos := p.atPos()
		p.advance()
		t = &ast.TypeListExpr{Pos: pos, Elem: t}
	}
	return t, nil
}

func (p *Parser) parseAtomTypeExpr() (ast.TypeExpr, error) {
	pos := p.atPos()
	switch p.cur().Type {
	case lexer.QUOTE:
		name := p.advance().Lit
		return &ast.TypeVarExpr{Pos: pos, Name: name}, nil
	case lexer.CTOR, lexer.IDENT:
		name := p.advance().Lit
		return &ast.TypeName{Pos: pos, Name: name}, nil
	case lexer.LPAREN:
		p.advance()
		t, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return t, nil
	case lexer.LBRACE:
		p.advance()
		var fields []ast.TypeRecordField
		for !p.at(lexer.RBRACE) {
			nameTok, err := p.expect(lexer.IDENT, "field name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.COLON, "':'"); err != nil {
				return nil, err
			}
			ft, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.TypeRecordField{Label: nameTok.Lit, Type: ft})
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
			return nil, err
		}
		return &ast.TypeRecordExpr{Pos: pos, Fields: fields}, nil
	}
	return nil, &ParseError{Message: "expected type expression", Pos: pos}
}
