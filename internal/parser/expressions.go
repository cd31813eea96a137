package parser

import (
	"strconv"
	"strings"

	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/token"
)

// Precedence levels, per spec §4.2, lowest to highest. RANGE binds the
// loosest of all binary forms so `a + 1 .. b * 2` groups as `(a+1)..(b*2)`.
const (
	LOWEST = iota
	RANGE
	NULLCOALESCE
	LOGICOR
	LOGICAND
	BITOR
	BITXOR
	BITAND
	EQUALITY
	RELATIONAL
	SHIFT
	ADDITIVE
	MULTIPLICATIVE
	CAST
	UNARY
	POSTFIX
)

func precedenceOf(k token.Kind) int {
	switch k {
	case token.DOT_DOT, token.DOT_DOT_EQ:
		return RANGE
	case token.QUESTION_QUESTION:
		return NULLCOALESCE
	case token.OR_OR:
		return LOGICOR
	case token.AND_AND:
		return LOGICAND
	case token.PIPE:
		return BITOR
	case token.CARET:
		return BITXOR
	case token.AMP:
		return BITAND
	case token.EQ, token.NOT_EQ:
		return EQUALITY
	case token.LT, token.GT, token.LT_EQ, token.GT_EQ:
		return RELATIONAL
	case token.SHL, token.SHR:
		return SHIFT
	case token.PLUS, token.MINUS:
		return ADDITIVE
	case token.STAR, token.SLASH, token.PERCENT:
		return MULTIPLICATIVE
	case token.AS:
		return CAST
	}
	return LOWEST
}

// parseExpression is the Pratt entry point: parse a prefix expression, then
// repeatedly fold in infix/postfix operators whose precedence exceeds min.
func (p *Parser) parseExpression(min int) ast.Expr {
	left := p.parsePrefix()
	left = p.parsePostfixChain(left)
	for {
		prec := precedenceOf(p.cur().Kind)
		if prec <= min || prec == LOWEST {
			break
		}
		left = p.parseInfix(left, prec)
		left = p.parsePostfixChain(left)
	}
	return left
}

func (p *Parser) parseRange(left ast.Expr, prec int) ast.Expr {
	start := left.GetSpan()
	inclusive := p.curIs(token.DOT_DOT_EQ)
	p.advance()
	var end ast.Expr
	if !isRangeEndTerminator(p.cur().Kind) {
		end = p.parseExpression(prec)
	}
	return &ast.RangeExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Start: left, End: end, Inclusive: inclusive}
}

func isRangeEndTerminator(k token.Kind) bool {
	switch k {
	case token.RBRACE, token.RPAREN, token.RBRACKET, token.COMMA, token.NEWLINE, token.SEMI, token.EOF, token.LBRACE:
		return true
	}
	return false
}

func (p *Parser) parseInfix(left ast.Expr, prec int) ast.Expr {
	switch p.cur().Kind {
	case token.DOT_DOT, token.DOT_DOT_EQ:
		return p.parseRange(left, prec)
	case token.AS:
		p.advance()
		ty := p.parseTypeExpr()
		return &ast.CastExpr{ID: p.nodeID(), Span: left.GetSpan().Join(p.prevSpan()), Value: left, Type: ty}
	case token.QUESTION_QUESTION:
		p.advance()
		right := p.parseExpression(prec)
		return &ast.NullCoalesceExpr{ID: p.nodeID(), Span: left.GetSpan().Join(p.prevSpan()), Left: left, Right: right}
	}
	op := p.advance()
	right := p.parseExpression(prec)
	return &ast.BinaryExpr{ID: p.nodeID(), Span: left.GetSpan().Join(right.GetSpan()), Op: op.Lexeme, Left: left, Right: right}
}

// parsePrefix dispatches on the current token for a unary/primary expression.
func (p *Parser) parsePrefix() ast.Expr {
	switch p.cur().Kind {
	case token.MINUS, token.BANG, token.TILDE, token.AMP, token.STAR:
		return p.parseUnaryExpr()
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	start := p.cur().Span
	op := p.advance()
	operand := p.parseExpression(UNARY)
	return &ast.UnaryExpr{ID: p.nodeID(), Span: start.Join(operand.GetSpan()), Op: op.Lexeme, Operand: operand}
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.INT:
		t := p.advance()
		return &ast.IntLiteral{ID: p.nodeID(), Span: start, Value: t.IntVal, Suffix: t.IntSuffix, HasSuffix: t.HasSuffix}
	case token.FLOAT:
		t := p.advance()
		return &ast.FloatLiteral{ID: p.nodeID(), Span: start, Value: t.FloatVal, Suffix: t.FloatSufx, HasSuffix: t.HasSuffix}
	case token.STRING:
		t := p.advance()
		return &ast.StringLiteral{ID: p.nodeID(), Span: start, Value: t.StringVal}
	case token.CHAR:
		t := p.advance()
		r := rune(0)
		if len(t.StringVal) > 0 {
			r = []rune(t.StringVal)[0]
		}
		return &ast.CharLiteral{ID: p.nodeID(), Span: start, Value: r}
	case token.TRUE:
		p.advance()
		return &ast.BoolLiteral{ID: p.nodeID(), Span: start, Value: true}
	case token.FALSE:
		p.advance()
		return &ast.BoolLiteral{ID: p.nodeID(), Span: start, Value: false}
	case token.NONE:
		p.advance()
		return &ast.NoneLiteral{ID: p.nodeID(), Span: start}
	case token.NULL:
		p.advance()
		return &ast.NullLiteral{ID: p.nodeID(), Span: start}
	case token.IDENT:
		return p.parseIdentOrStructLit()
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.LBRACKET:
		return p.parseArrayExpr()
	case token.LBRACE:
		return p.parseBlockExpr()
	case token.IF:
		return p.parseIfExpr()
	case token.MATCH:
		return p.parseMatchExpr()
	case token.WITH:
		return p.parseWithExpr(false)
	case token.USING:
		return p.parseWithExpr(true)
	case token.SPAWN:
		p.advance()
		body := p.parseBlockExpr()
		return &ast.SpawnExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Body: body}
	case token.RAW_THREAD:
		p.advance()
		body := p.parseBlockExpr()
		return &ast.RawThreadExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Body: body}
	case token.SELECT:
		return p.parseSelectExpr()
	case token.TIMEOUT:
		return p.parseTimeoutExpr()
	case token.DELIVER:
		p.advance()
		var val ast.Expr
		if !isRangeEndTerminator(p.cur().Kind) {
			val = p.parseExpression(LOWEST)
		}
		return &ast.DeliverExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Value: val}
	case token.STEP:
		p.advance()
		target := p.parseExpression(UNARY)
		return &ast.StepExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Target: target}
	case token.UNSAFE:
		p.advance()
		body := p.parseBlockExpr()
		return &ast.UnsafeExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Body: body}
	case token.COMPTIME:
		p.advance()
		body := p.parseBlockExpr()
		return &ast.ComptimeExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Body: body}
	case token.ASM:
		p.advance()
		p.expect(token.LBRACE)
		text := p.collectRawUntilRBrace()
		return &ast.AsmExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Text: text}
	case token.ASSERT:
		return p.parseAssertLike(true)
	case token.CHECK:
		return p.parseAssertLike(false)
	case token.PIPE:
		return p.parseClosureExpr()
	default:
		d := p.errorHere(diagnostics.CodeParseExpectedExpr, "expected an expression, found "+p.cur().Kind.DisplayName())
		withHint(d, "")
		p.advance()
		return &ast.IntLiteral{ID: p.nodeID(), Span: start}
	}
}

func (p *Parser) collectRawUntilRBrace() string {
	var sb strings.Builder
	depth := 1
	for !p.curIs(token.EOF) {
		if p.curIs(token.LBRACE) {
			depth++
		}
		if p.curIs(token.RBRACE) {
			depth--
			if depth == 0 {
				p.advance()
				break
			}
		}
		sb.WriteString(p.cur().Lexeme)
		sb.WriteByte(' ')
		p.advance()
	}
	return strings.TrimSpace(sb.String())
}

func (p *Parser) parseAssertLike(isAssert bool) ast.Expr {
	start := p.cur().Span
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpression(LOWEST)
	var msg ast.Expr
	if p.curIs(token.COMMA) {
		p.advance()
		msg = p.parseExpression(LOWEST)
	}
	p.expect(token.RPAREN)
	if isAssert {
		return &ast.AssertExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Cond: cond, Message: msg}
	}
	return &ast.CheckExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Cond: cond, Message: msg}
}

// parseIdentOrStructLit parses a (possibly dotted) identifier path, folding
// it into a struct literal when immediately followed by `{` — unless the
// path is being used where a block is expected instead (callers that don't
// want this, e.g. `if cond { ... }`, parse the condition at a precedence
// that stops before `{` would be reached; see parseIfExpr/parseMatchExpr
// passing noStructLit).
func (p *Parser) parseIdentOrStructLit() ast.Expr {
	start := p.cur().Span
	path := p.parseDottedPath()
	var base ast.Expr
	if len(path) == 1 {
		base = &ast.Identifier{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Value: path[0]}
	} else {
		base = &ast.PathExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Segments: path}
	}
	if p.curIs(token.LBRACE) && p.allowStructLit {
		return p.parseStructLitBody(start, pathToTypeExpr(start, path))
	}
	return base
}

func pathToTypeExpr(span token.Span, path []string) ast.TypeExpr {
	return &ast.NamedTypeExpr{Span: span, Path: path}
}

// enterBracketed re-enables struct literals for a sub-parse delimited by its
// own closing token (parens, brackets, struct-lit braces) even when the
// enclosing expression is in a no-struct-lit context (an `if`/`match`/`while`
// condition) — only the condition's own top level is ambiguous with the
// block that follows it.
func (p *Parser) enterBracketed() func() {
	save := p.allowStructLit
	p.allowStructLit = true
	return func() { p.allowStructLit = save }
}

func (p *Parser) parseStructLitBody(start token.Span, ty ast.TypeExpr) ast.Expr {
	defer p.enterBracketed()()
	p.advance() // '{'
	var fields []*ast.StructLitField
	var spread ast.Expr
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.DOT_DOT) {
			p.advance()
			spread = p.parseExpression(LOWEST)
			p.skipNewlines()
			break
		}
		name := ""
		if p.curIs(token.IDENT) {
			name = p.advance().Lexeme
		}
		var val ast.Expr
		if p.curIs(token.COLON) {
			p.advance()
			val = p.parseExpression(LOWEST)
		} else {
			val = &ast.Identifier{ID: p.nodeID(), Span: p.prevSpan(), Value: name}
		}
		fields = append(fields, &ast.StructLitField{Name: name, Value: val})
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.advance()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return &ast.StructLitExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Type: ty, Fields: fields, Spread: spread}
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	defer p.enterBracketed()()
	start := p.cur().Span
	p.advance() // '('
	p.skipNewlines()
	if p.curIs(token.RPAREN) {
		p.advance()
		return &ast.TupleExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan())}
	}
	first := p.parseExpression(LOWEST)
	p.skipNewlines()
	if p.curIs(token.COMMA) {
		elems := []ast.Expr{first}
		for p.curIs(token.COMMA) {
			p.advance()
			p.skipNewlines()
			if p.curIs(token.RPAREN) {
				break
			}
			elems = append(elems, p.parseExpression(LOWEST))
			p.skipNewlines()
		}
		p.expect(token.RPAREN)
		return &ast.TupleExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Elems: elems}
	}
	p.expect(token.RPAREN)
	return first
}

func (p *Parser) parseArrayExpr() ast.Expr {
	defer p.enterBracketed()()
	start := p.cur().Span
	p.advance() // '['
	p.skipNewlines()
	if p.curIs(token.RBRACKET) {
		p.advance()
		return &ast.ArrayLitExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan())}
	}
	first := p.parseExpression(LOWEST)
	p.skipNewlines()
	if p.curIs(token.SEMI) {
		p.advance()
		count := p.parseExpression(LOWEST)
		p.expect(token.RBRACKET)
		return &ast.ArrayRepeatExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Value: first, Count: count}
	}
	elems := []ast.Expr{first}
	for p.curIs(token.COMMA) {
		p.advance()
		p.skipNewlines()
		if p.curIs(token.RBRACKET) {
			break
		}
		elems = append(elems, p.parseExpression(LOWEST))
		p.skipNewlines()
	}
	p.expect(token.RBRACKET)
	return &ast.ArrayLitExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Elems: elems}
}

func (p *Parser) parseClosureExpr() ast.Expr {
	start := p.cur().Span
	p.advance() // '|'
	var params []*ast.Param
	for !p.curIs(token.PIPE) && !p.curIs(token.EOF) {
		pstart := p.cur().Span
		name := ""
		if p.curIs(token.IDENT) {
			name = p.advance().Lexeme
		}
		var ty ast.TypeExpr
		if p.curIs(token.COLON) {
			p.advance()
			ty = p.parseTypeExpr()
		}
		params = append(params, &ast.Param{Span: pstart.Join(p.prevSpan()), Name: name, Type: ty})
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.PIPE)
	var ret ast.TypeExpr
	if p.curIs(token.ARROW) {
		p.advance()
		ret = p.parseTypeExpr()
	}
	body := p.parseExpression(LOWEST)
	return &ast.ClosureExpr{ID: p.nodeID(), Span: start.Join(body.GetSpan()), Params: params, Ret: ret, Body: body}
}

func (p *Parser) parseWithExpr(isUsing bool) ast.Expr {
	start := p.cur().Span
	p.advance() // 'with' or 'using'
	var bindings []*ast.WithBinding
	for {
		bstart := p.cur().Span
		name := ""
		if p.curIs(token.IDENT) {
			name = p.advance().Lexeme
		}
		p.expect(token.ASSIGN)
		val := p.parseExpressionNoStructLit(LOWEST)
		bindings = append(bindings, &ast.WithBinding{Span: bstart.Join(p.prevSpan()), Name: name, Value: val})
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	body := p.parseBlockExpr()
	if isUsing {
		return &ast.UsingExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Bindings: bindings, Body: body}
	}
	return &ast.WithExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Bindings: bindings, Body: body}
}

func (p *Parser) parseSelectExpr() ast.Expr {
	start := p.cur().Span
	p.advance() // 'select'
	p.expect(token.LBRACE)
	p.skipNewlines()
	var arms []*ast.SelectArm
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		astart := p.cur().Span
		binding := ""
		var chanExpr ast.Expr
		if p.curIs(token.IDENT) && p.peek().Kind == token.ASSIGN {
			binding = p.advance().Lexeme
			p.advance() // '='
			chanExpr = p.parseExpressionNoStructLit(LOWEST)
		} else {
			chanExpr = p.parseExpressionNoStructLit(LOWEST)
		}
		p.expect(token.FAT_ARROW)
		body := p.parseExpression(LOWEST)
		arms = append(arms, &ast.SelectArm{Span: astart.Join(p.prevSpan()), Binding: binding, Channel: chanExpr, Body: body})
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.advance()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return &ast.SelectExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Arms: arms}
}

func (p *Parser) parseTimeoutExpr() ast.Expr {
	start := p.cur().Span
	p.advance() // 'timeout'
	p.expect(token.LPAREN)
	dur := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	body := p.parseBlockExpr()
	return &ast.TimeoutExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Duration: dur, Body: body}
}

func (p *Parser) parseBlockExpr() *ast.BlockExpr {
	start := p.cur().Span
	p.expect(token.LBRACE)
	blk := &ast.BlockExpr{ID: p.nodeID(), Span: start}
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt, tailExpr := p.parseStatementOrTail()
		if tailExpr != nil {
			p.skipNewlines()
			if p.curIs(token.RBRACE) {
				blk.Tail = tailExpr
				break
			}
			blk.Stmts = append(blk.Stmts, &ast.ExprStmt{ID: p.nodeID(), Span: tailExpr.GetSpan(), X: tailExpr})
		} else if stmt != nil {
			blk.Stmts = append(blk.Stmts, stmt)
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	blk.Span = start.Join(p.prevSpan())
	return blk
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.cur().Span
	p.advance() // 'if'
	scrutinee := p.parseExpressionNoStructLit(LOWEST)
	if p.curIs(token.IS) {
		p.advance()
		pat := p.parsePattern()
		then := p.parseBlockExpr()
		var elseExpr ast.Expr
		if p.curIs(token.ELSE) {
			p.advance()
			elseExpr = p.parseElseBranch()
		}
		return &ast.IfIsExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Scrutinee: scrutinee, Pattern: pat, Then: then, Else: elseExpr}
	}
	then := p.parseBlockExpr()
	var elseExpr ast.Expr
	if p.curIs(token.ELSE) {
		p.advance()
		elseExpr = p.parseElseBranch()
	}
	return &ast.IfExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Cond: scrutinee, Then: then, Else: elseExpr}
}

func (p *Parser) parseElseBranch() ast.Expr {
	if p.curIs(token.IF) {
		return p.parseIfExpr()
	}
	return p.parseBlockExpr()
}

func (p *Parser) parseMatchExpr() ast.Expr {
	start := p.cur().Span
	p.advance() // 'match'
	scrutinee := p.parseExpressionNoStructLit(LOWEST)
	p.expect(token.LBRACE)
	p.skipNewlines()
	var arms []*ast.MatchArm
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		astart := p.cur().Span
		pat := p.parsePattern()
		var guard ast.Expr
		if p.curIs(token.IF) {
			p.advance()
			guard = p.parseExpressionNoStructLit(LOWEST)
		}
		p.expect(token.FAT_ARROW)
		body := p.parseExpression(LOWEST)
		arms = append(arms, &ast.MatchArm{Span: astart.Join(p.prevSpan()), Pattern: pat, Guard: guard, Body: body})
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.advance()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return &ast.MatchExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Scrutinee: scrutinee, Arms: arms}
}

// allowStructLit is false while parsing a condition expression that is
// immediately followed by a block (`if cond { }`, `match x { }`, `while
// cond { }`) so that `{` is never misread as the start of a struct literal.
func (p *Parser) parseExpressionNoStructLit(min int) ast.Expr {
	save := p.allowStructLit
	p.allowStructLit = false
	e := p.parseExpression(min)
	p.allowStructLit = save
	return e
}

// parsePostfixChain folds call/method-call/field/index/try/optional-chain
// postfix operators onto left, left-to-right, at POSTFIX precedence.
func (p *Parser) parsePostfixChain(left ast.Expr) ast.Expr {
	for {
		switch p.cur().Kind {
		case token.LPAREN:
			left = p.parseCall(left)
		case token.DOT:
			left = p.parseFieldOrMethod(left)
		case token.QUESTION_DOT:
			left = p.parseOptionalField(left)
		case token.LBRACKET:
			left = p.parseIndex(left)
		case token.QUESTION:
			p.advance()
			left = &ast.TryExpr{ID: p.nodeID(), Span: left.GetSpan().Join(p.prevSpan()), Inner: left}
		default:
			return left
		}
	}
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	defer p.enterBracketed()()
	start := callee.GetSpan()
	p.advance() // '('
	var args []ast.Expr
	p.skipNewlines()
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		args = append(args, p.parseExpression(LOWEST))
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.advance()
			p.skipNewlines()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return &ast.CallExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Callee: callee, Args: args}
}

func (p *Parser) parseFieldOrMethod(recv ast.Expr) ast.Expr {
	start := recv.GetSpan()
	p.advance() // '.'
	name := ""
	if p.curIs(token.IDENT) {
		name = p.advance().Lexeme
	} else {
		p.errorHere(diagnostics.CodeParseUnexpectedToken, "expected a field or method name after '.'")
	}
	var typeArgs []ast.TypeExpr
	if p.curIs(token.COLON_COLON) && p.peek().Kind == token.LT {
		p.advance() // '::'
	}
	if p.curIs(token.LT) {
		if args, ok := p.tryParseTypeArgList(); ok {
			typeArgs = args
		}
	}
	if p.curIs(token.LPAREN) {
		restore := p.enterBracketed()
		p.advance()
		var args []ast.Expr
		p.skipNewlines()
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			args = append(args, p.parseExpression(LOWEST))
			p.skipNewlines()
			if p.curIs(token.COMMA) {
				p.advance()
				p.skipNewlines()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
		restore()
		return &ast.MethodCallExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Receiver: recv, Method: name, TypeArgs: typeArgs, Args: args}
	}
	return &ast.FieldExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Receiver: recv, Field: name}
}

func (p *Parser) parseOptionalField(recv ast.Expr) ast.Expr {
	start := recv.GetSpan()
	p.advance() // '?.'
	name := ""
	if p.curIs(token.IDENT) {
		name = p.advance().Lexeme
	}
	return &ast.OptionalFieldExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Receiver: recv, Field: name}
}

func (p *Parser) parseIndex(recv ast.Expr) ast.Expr {
	defer p.enterBracketed()()
	start := recv.GetSpan()
	p.advance() // '['
	idx := p.parseExpression(LOWEST)
	p.expect(token.RBRACKET)
	return &ast.IndexExpr{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Receiver: recv, Index: idx}
}

// parseIntLiteralValue converts a bare digit string to an int64 without
// going through the full expression parser.
func parseIntLiteralValue(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, 64)
}
