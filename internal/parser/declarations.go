package parser

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/token"
)

// parseDecl parses one top-level declaration, handling `public`/`@attr`
// prefixes uniformly before dispatching on the declaration keyword.
func (p *Parser) parseDecl() ast.Decl {
	isPublic := false
	noAlloc := false
	isResource := false
	for {
		if p.curIs(token.PUBLIC) {
			isPublic = true
			p.advance()
			continue
		}
		if p.curIs(token.AT) {
			p.advance()
			if p.curIs(token.IDENT) {
				switch p.cur().Lexeme {
				case "no_alloc":
					noAlloc = true
				case "resource":
					isResource = true
				}
				p.advance()
			}
			p.skipNewlines()
			continue
		}
		break
	}

	switch p.cur().Kind {
	case token.FUNC:
		fn := p.parseFnDecl()
		if fn != nil {
			fn.IsPublic = isPublic
			fn.NoAlloc = noAlloc
		}
		return fn
	case token.STRUCT:
		s := p.parseStructDecl()
		if s != nil {
			s.IsPublic = isPublic
			s.IsResource = isResource
		}
		return s
	case token.ENUM:
		e := p.parseEnumDecl()
		if e != nil {
			e.IsPublic = isPublic
		}
		return e
	case token.UNION:
		u := p.parseUnionDecl()
		if u != nil {
			u.IsPublic = isPublic
		}
		return u
	case token.TRAIT:
		t := p.parseTraitDecl()
		if t != nil {
			t.IsPublic = isPublic
		}
		return t
	case token.EXTEND:
		return p.parseExtendDecl()
	case token.CONST:
		c := p.parseConstDecl()
		if c != nil {
			c.IsPublic = isPublic
		}
		return c
	case token.TYPE:
		t := p.parseTypeAliasDecl()
		if t != nil {
			t.IsPublic = isPublic
		}
		return t
	case token.EXTERN:
		return p.parseExternDecl()
	case token.TEST:
		return p.parseTestDecl()
	case token.BENCHMARK:
		return p.parseBenchmarkDecl()
	case token.EXPORT:
		return p.parseExportDecl()
	case token.IMPORT:
		decls := p.parseImportDecls()
		if len(decls) == 0 {
			return nil
		}
		// parseDecl returns one Decl, so an import reached here (one that
		// follows a declaration) keeps only its first ImportDecl; the other
		// members of a grouped import are dropped. Leading imports are parsed
		// by parseProgram's own loop, which keeps every member.
		return decls[0]
	default:
		p.errorHere(diagnostics.CodeParseUnexpectedToken, "expected a declaration, found "+p.cur().Kind.DisplayName())
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseTypeParams() []ast.TypeParam {
	if !p.curIs(token.LT) {
		return nil
	}
	p.advance()
	var params []ast.TypeParam
	for !p.curIs(token.GT) && !p.curIs(token.EOF) {
		if p.curIs(token.CONST) {
			p.advance()
			name := ""
			if p.curIs(token.IDENT) {
				name = p.advance().Lexeme
			}
			constTy := ""
			if p.curIs(token.COLON) {
				p.advance()
				if p.curIs(token.IDENT) {
					constTy = p.advance().Lexeme
				}
			}
			params = append(params, ast.TypeParam{Name: name, IsConst: true, ConstType: constTy})
		} else if p.curIs(token.IDENT) {
			params = append(params, ast.TypeParam{Name: p.advance().Lexeme})
		} else {
			break
		}
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.GT)
	return params
}

func (p *Parser) parseFnDecl() *ast.FnDecl {
	start := p.cur().Span
	p.advance() // 'func'
	name := ""
	if p.curIs(token.IDENT) {
		name = p.advance().Lexeme
	} else {
		p.errorHere(diagnostics.CodeParseUnexpectedToken, "expected a function name")
	}
	typeParams := p.parseTypeParams()
	params := p.parseParamList(true)
	var ret ast.TypeExpr
	if p.curIs(token.ARROW) {
		p.advance()
		ret = p.parseTypeExpr()
	}
	var body *ast.BlockExpr
	isExtern := false
	if p.curIs(token.LBRACE) {
		body = p.parseBlockExpr()
	} else {
		isExtern = true // signature-only (trait method / extern decl body)
	}
	return &ast.FnDecl{
		Span: start.Join(p.prevSpan()), Name: name, TypeParams: typeParams,
		Params: params, Ret: ret, Body: body, IsExtern: isExtern,
	}
}

// parseParamList parses `(self?, name: T, mutate name: T, take name: T, ...)`.
// allowSelf controls whether a leading bare `self`/`take self`/`mutate self`
// is recognized (methods inside `extend`/`trait`).
func (p *Parser) parseParamList(allowSelf bool) []*ast.Param {
	p.expect(token.LPAREN)
	var params []*ast.Param
	p.skipNewlines()
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		params = append(params, p.parseParam(allowSelf && len(params) == 0))
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.advance()
			p.skipNewlines()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseParam(allowSelf bool) *ast.Param {
	start := p.cur().Span
	take, mutate, own := false, false, false
	for {
		switch p.cur().Kind {
		case token.TAKE:
			take = true
			p.advance()
			continue
		case token.MUTATE:
			mutate = true
			p.advance()
			continue
		case token.OWN:
			own = true
			p.advance()
			continue
		}
		break
	}
	if allowSelf && p.curIs(token.IDENT) && p.cur().Lexeme == "self" {
		p.advance()
		return &ast.Param{Span: start.Join(p.prevSpan()), Name: "self", IsSelf: true, TakeSelf: take, MutateSelf: mutate, OwnSelf: own}
	}
	name := ""
	if p.curIs(token.IDENT) {
		name = p.advance().Lexeme
	} else {
		p.errorHere(diagnostics.CodeParseBadPattern, "expected a parameter name")
	}
	var ty ast.TypeExpr
	if p.curIs(token.COLON) {
		p.advance()
		ty = p.parseTypeExpr()
	}
	return &ast.Param{Span: start.Join(p.prevSpan()), Name: name, Type: ty, Take: take, Mutable: mutate}
}

func (p *Parser) parseStructDecl() *ast.StructDecl {
	start := p.cur().Span
	p.advance() // 'struct'
	name := ""
	if p.curIs(token.IDENT) {
		name = p.advance().Lexeme
	}
	typeParams := p.parseTypeParams()
	var fields []*ast.FieldDecl
	p.expect(token.LBRACE)
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		fieldPublic := false
		if p.curIs(token.PUBLIC) {
			fieldPublic = true
			p.advance()
		}
		fstart := p.cur().Span
		fname := ""
		if p.curIs(token.IDENT) {
			fname = p.advance().Lexeme
		}
		var fty ast.TypeExpr
		if p.curIs(token.COLON) {
			p.advance()
			fty = p.parseTypeExpr()
		}
		fields = append(fields, &ast.FieldDecl{Span: fstart.Join(p.prevSpan()), Name: fname, Type: fty, IsPublic: fieldPublic})
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.advance()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return &ast.StructDecl{Span: start.Join(p.prevSpan()), Name: name, TypeParams: typeParams, Fields: fields}
}

func (p *Parser) parseEnumDecl() *ast.EnumDecl {
	start := p.cur().Span
	p.advance() // 'enum'
	name := ""
	if p.curIs(token.IDENT) {
		name = p.advance().Lexeme
	}
	typeParams := p.parseTypeParams()
	var variants []*ast.EnumVariantDecl
	p.expect(token.LBRACE)
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		vstart := p.cur().Span
		vname := ""
		if p.curIs(token.IDENT) || p.curIs(token.NONE) {
			vname = p.advance().Lexeme
		}
		v := &ast.EnumVariantDecl{Name: vname}
		if p.curIs(token.LPAREN) {
			p.advance()
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				v.Fields = append(v.Fields, p.parseTypeExpr())
				if p.curIs(token.COMMA) {
					p.advance()
				} else {
					break
				}
			}
			p.expect(token.RPAREN)
		} else if p.curIs(token.LBRACE) {
			p.advance()
			p.skipNewlines()
			for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
				fstart := p.cur().Span
				fname := ""
				if p.curIs(token.IDENT) {
					fname = p.advance().Lexeme
				}
				var fty ast.TypeExpr
				if p.curIs(token.COLON) {
					p.advance()
					fty = p.parseTypeExpr()
				}
				v.Named = append(v.Named, &ast.FieldDecl{Span: fstart.Join(p.prevSpan()), Name: fname, Type: fty})
				p.skipNewlines()
				if p.curIs(token.COMMA) {
					p.advance()
					p.skipNewlines()
				}
			}
			p.expect(token.RBRACE)
		}
		v.Span = vstart.Join(p.prevSpan())
		variants = append(variants, v)
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.advance()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return &ast.EnumDecl{Span: start.Join(p.prevSpan()), Name: name, TypeParams: typeParams, Variants: variants}
}

func (p *Parser) parseUnionDecl() *ast.UnionDecl {
	start := p.cur().Span
	p.advance() // 'union'
	name := ""
	if p.curIs(token.IDENT) {
		name = p.advance().Lexeme
	}
	var members []ast.TypeExpr
	p.expect(token.LBRACE)
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		members = append(members, p.parseTypeExpr())
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.advance()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return &ast.UnionDecl{Span: start.Join(p.prevSpan()), Name: name, Members: members}
}

func (p *Parser) parseTraitDecl() *ast.TraitDecl {
	start := p.cur().Span
	p.advance() // 'trait'
	name := ""
	if p.curIs(token.IDENT) {
		name = p.advance().Lexeme
	}
	typeParams := p.parseTypeParams()
	var methods []*ast.TraitMethodSig
	p.expect(token.LBRACE)
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		fn := p.parseFnDecl()
		if fn != nil {
			methods = append(methods, &ast.TraitMethodSig{Span: fn.Span, Name: fn.Name, Params: fn.Params, Ret: fn.Ret, Body: fn.Body})
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return &ast.TraitDecl{Span: start.Join(p.prevSpan()), Name: name, TypeParams: typeParams, Methods: methods}
}

func (p *Parser) parseExtendDecl() *ast.ExtendDecl {
	start := p.cur().Span
	p.advance() // 'extend'
	typeParams := p.parseTypeParams()
	target := p.parseTypeExpr()
	var trait ast.TypeExpr
	if p.curIs(token.WITH) {
		p.advance()
		trait = p.parseTypeExpr()
	}
	var methods []*ast.FnDecl
	p.expect(token.LBRACE)
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		isPublic := false
		noAlloc := false
		for {
			if p.curIs(token.PUBLIC) {
				isPublic = true
				p.advance()
				continue
			}
			if p.curIs(token.AT) {
				p.advance()
				if p.curIs(token.IDENT) && p.cur().Lexeme == "no_alloc" {
					noAlloc = true
				}
				p.advance()
				continue
			}
			break
		}
		fn := p.parseFnDecl()
		if fn != nil {
			fn.IsPublic = isPublic
			fn.NoAlloc = noAlloc
			methods = append(methods, fn)
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return &ast.ExtendDecl{Span: start.Join(p.prevSpan()), TypeParams: typeParams, Target: target, Trait: trait, Methods: methods}
}

func (p *Parser) parseConstDecl() *ast.ConstDecl {
	start := p.cur().Span
	p.advance() // 'const'
	name := ""
	if p.curIs(token.IDENT) {
		name = p.advance().Lexeme
	}
	var ty ast.TypeExpr
	if p.curIs(token.COLON) {
		p.advance()
		ty = p.parseTypeExpr()
	}
	var val ast.Expr
	if _, ok := p.expect(token.ASSIGN); ok {
		val = p.parseExpression(LOWEST)
	}
	return &ast.ConstDecl{Span: start.Join(p.prevSpan()), Name: name, Type: ty, Value: val}
}

func (p *Parser) parseTypeAliasDecl() *ast.TypeAliasDecl {
	start := p.cur().Span
	p.advance() // 'type'
	name := ""
	if p.curIs(token.IDENT) {
		name = p.advance().Lexeme
	}
	typeParams := p.parseTypeParams()
	var target ast.TypeExpr
	if _, ok := p.expect(token.ASSIGN); ok {
		target = p.parseTypeExpr()
	}
	return &ast.TypeAliasDecl{Span: start.Join(p.prevSpan()), Name: name, TypeParams: typeParams, Target: target}
}

func (p *Parser) parseExternDecl() *ast.ExternDecl {
	start := p.cur().Span
	p.advance() // 'extern'
	abi := ""
	if p.curIs(token.STRING) {
		abi = p.advance().StringVal
	}
	var fns []*ast.FnDecl
	p.expect(token.LBRACE)
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		fn := p.parseFnDecl()
		if fn != nil {
			fn.IsExtern = true
			fns = append(fns, fn)
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return &ast.ExternDecl{Span: start.Join(p.prevSpan()), ABI: abi, Fns: fns}
}

func (p *Parser) parseTestDecl() *ast.TestDecl {
	start := p.cur().Span
	p.advance() // 'test'
	name := ""
	if p.curIs(token.STRING) {
		name = p.advance().StringVal
	}
	body := p.parseBlockExpr()
	return &ast.TestDecl{Span: start.Join(p.prevSpan()), Name: name, Body: body}
}

func (p *Parser) parseBenchmarkDecl() *ast.BenchmarkDecl {
	start := p.cur().Span
	p.advance() // 'benchmark'
	name := ""
	if p.curIs(token.STRING) {
		name = p.advance().StringVal
	}
	body := p.parseBlockExpr()
	return &ast.BenchmarkDecl{Span: start.Join(p.prevSpan()), Name: name, Body: body}
}

func (p *Parser) parseExportDecl() *ast.ExportDecl {
	start := p.cur().Span
	p.advance() // 'export'
	path := p.parseDottedPath()
	as := ""
	if p.curIs(token.AS) {
		p.advance()
		if p.curIs(token.IDENT) {
			as = p.advance().Lexeme
		}
	}
	return &ast.ExportDecl{Span: start.Join(p.prevSpan()), Path: path, As: as}
}
