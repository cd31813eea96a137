package parser

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/token"
)

var assignOps = map[token.Kind]string{
	token.ASSIGN:         "=",
	token.PLUS_ASSIGN:    "+=",
	token.MINUS_ASSIGN:   "-=",
	token.STAR_ASSIGN:    "*=",
	token.SLASH_ASSIGN:   "/=",
	token.PERCENT_ASSIGN: "%=",
	token.AMP_ASSIGN:     "&=",
	token.PIPE_ASSIGN:    "|=",
	token.CARET_ASSIGN:   "^=",
	token.SHL_ASSIGN:     "<<=",
	token.SHR_ASSIGN:     ">>=",
}

// parseStatementOrTail parses one block element. When the element is a bare
// expression not followed by a statement terminator, it is returned as a
// tail candidate instead of wrapped in an ExprStmt, so parseBlockExpr can
// decide whether it is the block's trailing value.
func (p *Parser) parseStatementOrTail() (ast.Stmt, ast.Expr) {
	switch p.cur().Kind {
	case token.LET:
		return p.parseLetStmt(), nil
	case token.CONST:
		return p.parseConstStmt(), nil
	case token.RETURN:
		return p.parseReturnStmt(), nil
	case token.WHILE:
		return p.parseWhileStmt(""), nil
	case token.FOR:
		return p.parseForStmt(""), nil
	case token.LOOP:
		return p.parseLoopStmt(""), nil
	case token.BREAK:
		return p.parseBreakStmt(), nil
	case token.CONTINUE:
		return p.parseContinueStmt(), nil
	case token.ENSURE:
		return p.parseEnsureStmt(), nil
	case token.COMPTIME:
		if p.peek().Kind == token.LBRACE {
			start := p.cur().Span
			p.advance()
			body := p.parseBlockExpr()
			return &ast.ComptimeStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Body: body}, nil
		}
	case token.IDENT:
		if isLabelStart(p) {
			return p.parseLabeledStmt(), nil
		}
	}
	return p.parseExprOrAssignStmt()
}

// isLabelStart reports whether the cursor is at `label: while/for/loop`.
func isLabelStart(p *Parser) bool {
	if p.peek().Kind != token.COLON {
		return false
	}
	k := p.peekAt(2).Kind
	return k == token.WHILE || k == token.FOR || k == token.LOOP
}

func (p *Parser) parseLabeledStmt() ast.Stmt {
	label := p.advance().Lexeme
	p.advance() // ':'
	switch p.cur().Kind {
	case token.WHILE:
		return p.parseWhileStmt(label)
	case token.FOR:
		return p.parseForStmt(label)
	case token.LOOP:
		return p.parseLoopStmt(label)
	}
	p.errorHere(diagnostics.CodeParseUnexpectedToken, "expected 'while', 'for', or 'loop' after label")
	return nil
}

func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // 'let'
	mutable := false
	if p.curIs(token.MUTATE) {
		mutable = true
		p.advance()
	}
	if p.curIs(token.LPAREN) {
		p.advance()
		var names []string
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			if p.curIs(token.IDENT) {
				names = append(names, p.advance().Lexeme)
			}
			if p.curIs(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
		var val ast.Expr
		if _, ok := p.expect(token.ASSIGN); ok {
			val = p.parseExpression(LOWEST)
		}
		return &ast.LetTupleStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Names: names, Value: val, Mutable: mutable}
	}
	name := ""
	if p.curIs(token.IDENT) {
		name = p.advance().Lexeme
	} else {
		p.errorHere(diagnostics.CodeParseUnexpectedToken, "expected a binding name after 'let'")
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
	return &ast.LetStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Name: name, Type: ty, Value: val, Mutable: mutable}
}

func (p *Parser) parseConstStmt() ast.Stmt {
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
	return &ast.ConstStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Name: name, Type: ty, Value: val}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // 'return'
	var val ast.Expr
	if !isRangeEndTerminator(p.cur().Kind) && !p.curIs(token.RBRACE) {
		val = p.parseExpression(LOWEST)
	}
	return &ast.ReturnStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Value: val}
}

func (p *Parser) parseWhileStmt(label string) ast.Stmt {
	start := p.cur().Span
	p.advance() // 'while'
	cond := p.parseExpressionNoStructLit(LOWEST)
	if p.curIs(token.IS) {
		p.advance()
		pat := p.parsePattern()
		body := p.parseBlockExpr()
		return &ast.WhileLetStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Label: label, Scrutinee: cond, Pattern: pat, Body: body}
	}
	body := p.parseBlockExpr()
	return &ast.WhileStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Label: label, Cond: cond, Body: body}
}

func (p *Parser) parseForStmt(label string) ast.Stmt {
	start := p.cur().Span
	p.advance() // 'for'
	pat := p.parsePattern()
	p.expect(token.IN)
	iterable := p.parseExpressionNoStructLit(LOWEST)
	body := p.parseBlockExpr()
	return &ast.ForStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Label: label, Pattern: pat, Iterable: iterable, Body: body}
}

func (p *Parser) parseLoopStmt(label string) ast.Stmt {
	start := p.cur().Span
	p.advance() // 'loop'
	body := p.parseBlockExpr()
	return &ast.LoopStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Label: label, Body: body}
}

func (p *Parser) parseBreakStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // 'break'
	label := ""
	if p.curIs(token.IDENT) && isLikelyLabelRef(p) {
		label = p.advance().Lexeme
	}
	var val ast.Expr
	if !isRangeEndTerminator(p.cur().Kind) && !p.curIs(token.RBRACE) {
		val = p.parseExpression(LOWEST)
	}
	return &ast.BreakStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Label: label, Value: val}
}

func (p *Parser) parseContinueStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // 'continue'
	label := ""
	if p.curIs(token.IDENT) && isLikelyLabelRef(p) {
		label = p.advance().Lexeme
	}
	return &ast.ContinueStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Label: label}
}

// isLikelyLabelRef distinguishes `break outer` (label reference) from
// `break someExpr` by requiring the following token to terminate the
// statement — a label is never followed by an operator or call.
func isLikelyLabelRef(p *Parser) bool {
	switch p.peek().Kind {
	case token.NEWLINE, token.SEMI, token.RBRACE, token.EOF:
		return true
	}
	return false
}

func (p *Parser) parseEnsureStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // 'ensure'
	body := p.parseBlockExpr()
	catchName := ""
	var catchBody *ast.BlockExpr
	if p.curIs(token.CATCH) {
		p.advance()
		if p.curIs(token.IDENT) {
			catchName = p.advance().Lexeme
		}
		catchBody = p.parseBlockExpr()
	}
	return &ast.EnsureStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Body: body, CatchName: catchName, CatchBody: catchBody}
}

// parseExprOrAssignStmt parses a bare expression, folding it into an
// AssignStmt if followed by `=` or a compound-assignment operator;
// otherwise the expression is returned as a tail candidate.
func (p *Parser) parseExprOrAssignStmt() (ast.Stmt, ast.Expr) {
	start := p.cur().Span
	expr := p.parseExpression(LOWEST)
	if opText, ok := assignOps[p.cur().Kind]; ok {
		p.advance()
		val := p.parseExpression(LOWEST)
		return &ast.AssignStmt{ID: p.nodeID(), Span: start.Join(p.prevSpan()), Target: expr, Op: opText, Value: val}, nil
	}
	return nil, expr
}
