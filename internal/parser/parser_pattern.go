package parser

import (
	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/lexer"
)

// parsePattern parses a full pattern including `as`-binding and
// type-annotation suffixes.
func (p *Parser) parsePattern() (ast.Pattern, error) {
	pat, err := p.parseConPattern()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.AS) {
		pos := p.atPos()
		p.advance()
		nameTok, err := p.expect(lexer.IDENT, "identifier")
		if err != nil {
			return nil, err
		}
		pat = &ast.AsPattern{Pos: pos, Name: nameTok.Lit, Inner: pat}
	}
	if p.at(lexer.PIPE) {
		pos := pat.Position()
		alts := []ast.Pattern{pat}
		for p.at(lexer.PIPE) {
			p.advance()
			next, err := p.parseConPattern()
			if err != nil {
				return nil, err
			}
			alts = append(alts, next)
		}
		pat = &ast.LayeredPattern{Pos: pos, Alt: alts}
	}
	return pat, nil
}

// parseConPattern parses a constructor applied to a parenthesised,
// comma-separated argument list (`Cons (h, t)`) or to one atomic pattern
// (`Some x`), or a single atomic pattern.
func (p *Parser) parseConPattern() (ast.Pattern, error) {
	if p.at(lexer.CTOR) {
		pos := p.atPos()
		name := p.advance().Lit
		var args []ast.Pattern
		switch p.cur().Type {
		case lexer.WILDCARD_KW, lexer.IDENT, lexer.CTOR, lexer.INT, lexer.FLOAT, lexer.STRING,
			lexer.CHAR, lexer.TRUE, lexer.FALSE, lexer.LBRACK, lexer.LBRACE:
			a, err := p.parseAtomPattern()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		if len(args) == 0 && p.at(lexer.LPAREN) && p.peekN(1).Type != lexer.RPAREN {
			p.advance()
			for {
				a, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.at(lexer.COMMA) {
					p.advance()
					continue
				}
				break
			}
			if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
				return nil, err
			}
		}
		return &ast.ConPattern{Pos: pos, Name: name, Args: args}, nil
	}
	return p.parseAtomPattern()
}

func (p *Parser) parseAtomPattern() (ast.Pattern, error) {
	pos := p.atPos()
	switch p.cur().Type {
	case lexer.WILDCARD_KW:
		p.advance()
		return &ast.WildcardPattern{Pos: pos}, nil
	case lexer.IDENT:
		name := p.advance().Lit
		return &ast.VarPattern{Pos: pos, Name: name}, nil
	case lexer.CTOR:
		name := p.advance().Lit
		return &ast.ConPattern{Pos: pos, Name: name}, nil
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.CHAR, lexer.TRUE, lexer.FALSE:
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &ast.LitPattern{Pos: pos, Kind: lit.Kind, Val: lit.Val}, nil
	case lexer.MINUS:
		p.advance()
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &ast.LitPattern{Pos: pos, Kind: lit.Kind, Val: negate(lit)}, nil
	case lexer.LPAREN:
		if p.peekN(1).Type == lexer.RPAREN {
			p.advance()
			p.advance()
			return &ast.LitPattern{Pos: pos, Kind: ast.LitUnit, Val: nil}, nil
		}
		p.advance()
		first, err := p.parsePattern()
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
			return &ast.AnnotPattern{Pos: pos, Inner: first, Type: t}, nil
		}
		if p.at(lexer.COMMA) {
			elems := []ast.Pattern{first}
			for p.at(lexer.COMMA) {
				p.advance()
				next, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				elems = append(elems, next)
			}
			if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
				return nil, err
			}
			return &ast.TuplePattern{Pos: pos, Elems: elems}, nil
		}
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return first, nil
	case lexer.LBRACK:
		p.advance()
		var elems []ast.Pattern
		var tail ast.Pattern
		for !p.at(lexer.RBRACK) {
			if p.at(lexer.DOTS) {
				p.advance()
				t, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				tail = t
				break
			}
			e, err := p.parsePattern()
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
		return &ast.ListPattern{Pos: pos, Elems: elems, Tail: tail}, nil
	case lexer.LBRACE:
		p.advance()
		var fields []ast.RecordPatternField
		open := false
		for !p.at(lexer.RBRACE) {
			if p.at(lexer.DOTS) {
				p.advance()
				open = true
				break
			}
			nameTok, err := p.expect(lexer.IDENT, "field name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.EQ, "'='"); err != nil {
				return nil, err
			}
			fp, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.RecordPatternField{Label: nameTok.Lit, Pattern: fp})
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
			return nil, err
		}
		return &ast.RecordPattern{Pos: pos, Fields: fields, Open: open}, nil
	}
	return nil, &ParseError{Message: "expected pattern", Pos: pos}
}

func negate(lit *ast.Lit) interface{} {
	switch lit.Kind {
	case ast.LitInt:
		return -lit.Val.(int64)
	case ast.LitFloat:
		return -lit.Val.(float64)
	}
	return lit.Val
}
