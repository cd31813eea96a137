package parser

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/token"
)

// parseTypeExpr parses one type annotation, including the postfix `?`
// (Option) and infix `or` (Result) and `|` (union) combinators, which bind
// looser than the named/compound type forms themselves.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	t := p.parseUnionTypeExpr()
	return t
}

func (p *Parser) parseUnionTypeExpr() ast.TypeExpr {
	start := p.cur().Span
	first := p.parseResultTypeExpr()
	if !p.curIs(token.PIPE) {
		return first
	}
	members := []ast.TypeExpr{first}
	for p.curIs(token.PIPE) {
		p.advance()
		members = append(members, p.parseResultTypeExpr())
	}
	return &ast.UnionTypeExpr{Span: start.Join(p.prevSpan()), Members: members}
}

func (p *Parser) parseResultTypeExpr() ast.TypeExpr {
	start := p.cur().Span
	ok := p.parseOptionTypeExpr()
	// `T or E` is spelled with the contextual keyword "or" (identifier).
	if p.curIs(token.IDENT) && p.cur().Lexeme == "or" {
		p.advance()
		errTy := p.parseOptionTypeExpr()
		return &ast.ResultTypeExpr{Span: start.Join(p.prevSpan()), Ok: ok, Err: errTy}
	}
	return ok
}

func (p *Parser) parseOptionTypeExpr() ast.TypeExpr {
	start := p.cur().Span
	inner := p.parsePrimaryTypeExpr()
	for p.curIs(token.QUESTION) {
		p.advance()
		inner = &ast.OptionTypeExpr{Span: start.Join(p.prevSpan()), Inner: inner}
	}
	return inner
}

func (p *Parser) parsePrimaryTypeExpr() ast.TypeExpr {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.LBRACKET:
		p.advance()
		elem := p.parseTypeExpr()
		if p.curIs(token.SEMI) {
			p.advance()
			lenExpr := p.parseExpression(LOWEST)
			p.expect(token.RBRACKET)
			return &ast.ArrayTypeExpr{Span: start.Join(p.prevSpan()), Elem: elem, Len: lenExpr}
		}
		p.expect(token.RBRACKET)
		return &ast.SliceTypeExpr{Span: start.Join(p.prevSpan()), Elem: elem}
	case token.LPAREN:
		p.advance()
		var elems []ast.TypeExpr
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			elems = append(elems, p.parseTypeExpr())
			if p.curIs(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
		if len(elems) == 1 {
			return elems[0]
		}
		return &ast.TupleTypeExpr{Span: start.Join(p.prevSpan()), Elems: elems}
	case token.FUNC:
		p.advance()
		p.expect(token.LPAREN)
		var params []ast.TypeExpr
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			params = append(params, p.parseTypeExpr())
			if p.curIs(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
		var ret ast.TypeExpr
		if p.curIs(token.ARROW) {
			p.advance()
			ret = p.parseTypeExpr()
		}
		return &ast.FnTypeExpr{Span: start.Join(p.prevSpan()), Params: params, Ret: ret}
	default:
		return p.parseNamedTypeExpr()
	}
}

func (p *Parser) parseNamedTypeExpr() ast.TypeExpr {
	start := p.cur().Span
	path := p.parseDottedPath()
	n := &ast.NamedTypeExpr{Span: start.Join(p.prevSpan()), Path: path}
	if p.curIs(token.LT) {
		if args, ok := p.tryParseTypeArgList(); ok {
			n.Args = args
			n.Span = start.Join(p.prevSpan())
		}
	}
	return n
}

// tryParseTypeArgList speculatively parses a `<...>` type-argument list,
// backtracking if what follows doesn't look like a closed, well-formed type
// argument list — the parser's generic-angle-bracket-vs-comparison
// disambiguation (spec §4.2, left implementation-defined by spec §9's open
// question: we fix it here as one-token lookahead plus speculative re-lex).
func (p *Parser) tryParseTypeArgList() ([]ast.TypeExpr, bool) {
	save := p.pos
	saveErrLine, saveHaveErr := p.lastErrorLine, p.haveLastLine
	savedErrs := len(p.errors)
	p.advance() // '<'
	var args []ast.TypeExpr
	ok := true
	for !p.curIs(token.GT) {
		if p.curIs(token.EOF) || p.curIs(token.SEMI) || p.curIs(token.NEWLINE) {
			ok = false
			break
		}
		if p.curIs(token.INT) {
			args = append(args, &ast.ConstArgExpr{Span: p.cur().Span, Value: p.parseExpression(LOWEST)})
		} else {
			args = append(args, p.parseTypeExpr())
		}
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if ok && p.curIs(token.GT) {
		p.advance()
	} else {
		ok = false
	}
	if !ok {
		p.pos = save
		p.lastErrorLine, p.haveLastLine = saveErrLine, saveHaveErr
		p.errors = p.errors[:savedErrs]
		return nil, false
	}
	return args, true
}
