package parser

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/token"
)

// parsePattern parses one full pattern, including top-level `|` alternation.
func (p *Parser) parsePattern() ast.Pattern {
	start := p.cur().Span
	first := p.parsePrimaryPattern()
	if !p.curIs(token.PIPE) {
		return first
	}
	alts := []ast.Pattern{first}
	for p.curIs(token.PIPE) {
		p.advance()
		alts = append(alts, p.parsePrimaryPattern())
	}
	return &ast.OrPattern{Span: start.Join(p.prevSpan()), Alternatives: alts}
}

func (p *Parser) parsePrimaryPattern() ast.Pattern {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.IDENT:
		if p.cur().Lexeme == "_" {
			p.advance()
			return &ast.WildcardPattern{Span: start}
		}
		path := p.parseDottedPath()
		if p.curIs(token.LPAREN) {
			p.advance()
			var fields []ast.Pattern
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				fields = append(fields, p.parsePattern())
				if p.curIs(token.COMMA) {
					p.advance()
				} else {
					break
				}
			}
			p.expect(token.RPAREN)
			return &ast.ConstructorPattern{Span: start.Join(p.prevSpan()), Path: path, Fields: fields}
		}
		if p.curIs(token.LBRACE) {
			return p.parseStructPattern(start, path)
		}
		if len(path) == 1 {
			mutable := false
			return &ast.IdentPattern{Span: start.Join(p.prevSpan()), Name: path[0], Mutable: mutable}
		}
		return &ast.ConstructorPattern{Span: start.Join(p.prevSpan()), Path: path}
	case token.MUTATE:
		p.advance()
		name := ""
		if p.curIs(token.IDENT) {
			name = p.advance().Lexeme
		}
		return &ast.IdentPattern{Span: start.Join(p.prevSpan()), Name: name, Mutable: true}
	case token.LPAREN:
		p.advance()
		var elems []ast.Pattern
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			elems = append(elems, p.parsePattern())
			if p.curIs(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
		return &ast.TuplePattern{Span: start.Join(p.prevSpan()), Elems: elems}
	case token.INT, token.FLOAT, token.STRING, token.CHAR, token.TRUE, token.FALSE, token.MINUS:
		if p.curIs(token.MINUS) {
			return &ast.LiteralPattern{Span: start, Value: p.parseUnaryExpr()}
		}
		return &ast.LiteralPattern{Span: start, Value: p.parsePrimary()}
	default:
		p.advance()
		return &ast.WildcardPattern{Span: start}
	}
}

func (p *Parser) parseStructPattern(start token.Span, path []string) ast.Pattern {
	p.advance() // '{'
	var fields []*ast.StructFieldPattern
	rest := false
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.DOT_DOT) {
			p.advance()
			rest = true
			p.skipNewlines()
			break
		}
		name := ""
		if p.curIs(token.IDENT) {
			name = p.advance().Lexeme
		}
		var pat ast.Pattern
		if p.curIs(token.COLON) {
			p.advance()
			pat = p.parsePattern()
		}
		fields = append(fields, &ast.StructFieldPattern{Name: name, Pattern: pat})
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.advance()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return &ast.StructPattern{Span: start.Join(p.prevSpan()), Path: path, Fields: fields, Rest: rest}
}
