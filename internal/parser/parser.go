// Package parser implements the Pratt expression parser and recursive
// descent declaration/statement parser described in spec §4.2. It turns a
// pre-lexed token stream into an AST with densely-allocated NodeIds,
// recovering from a bad parse by skipping to the next statement boundary
// so one mistake never aborts the whole file (spec §7).
package parser

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/lexer"
	"github.com/rask-lang/raskc/internal/token"
)

// Parser holds the buffered token stream and parse state for one file.
type Parser struct {
	src  string
	toks []token.Token
	pos  int
	ids  *ast.IdGen

	errors        []*diagnostics.DiagnosticError
	haveLastLine  bool
	lastErrorLine int

	// allowStructLit is false while parsing the condition of an
	// if/match/while that is immediately followed by a block, so `{` is
	// never misread as a struct literal's opening brace.
	allowStructLit bool
}

// Parse lexes and parses src, returning the resulting Program (always
// non-nil, possibly partial) and the accumulated lex+parse diagnostics.
func Parse(file, src string) (*ast.Program, []*diagnostics.DiagnosticError) {
	toks, lexErrs := lexer.Lex(src)
	p := &Parser{src: src, toks: toks, ids: ast.NewIdGen(), allowStructLit: true}
	for _, d := range lexer.ToDiagnostics(lexErrs) {
		p.errors = append(p.errors, d)
	}
	prog := p.parseProgram(file)
	return prog, p.errors
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek() token.Token {
	return p.peekAt(1)
}

func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) curIs(k token.Kind) bool { return p.cur().Kind == k }

// skipNewlines consumes zero or more NEWLINE tokens; most grammar positions
// tolerate blank lines except the point between statements where a newline
// is itself a terminator.
func (p *Parser) skipNewlines() {
	for p.curIs(token.NEWLINE) {
		p.advance()
	}
}

// expect consumes the current token if it matches k, else records an error
// and leaves the cursor in place (caller decides recovery).
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.curIs(k) {
		return p.advance(), true
	}
	p.errorHere(diagnostics.CodeParseUnexpectedToken,
		"expected "+k.DisplayName()+", found "+p.cur().Kind.DisplayName())
	return token.Token{}, false
}

func (p *Parser) nodeID() ast.NodeId { return p.ids.Next() }

func (p *Parser) errorHere(code diagnostics.ErrorCode, msg string) *diagnostics.DiagnosticError {
	return p.errorAt(p.cur().Span, code, msg)
}

func (p *Parser) errorAt(span token.Span, code diagnostics.ErrorCode, msg string) *diagnostics.DiagnosticError {
	line := token.LineColAt(p.src, span.Start).Line
	if p.haveLastLine && line == p.lastErrorLine {
		return nil
	}
	p.haveLastLine = true
	p.lastErrorLine = line
	d := diagnostics.NewError(diagnostics.PhaseParse, code, span, msg)
	p.errors = append(p.errors, d)
	return d
}

// withHint attaches a contextual hint to d, the diagnostic errorHere/errorAt
// just returned; it does nothing when d is nil (errorAt returns nil for an
// error on a line that already has one).
func withHint(d *diagnostics.DiagnosticError, hint string) {
	if d != nil {
		d.WithHint(hint)
	}
}

// synchronize implements the recovery contract: skip to the next statement
// boundary (newline at statement level, ';', or a brace that closes the
// enclosing block), per spec §4.2.
func (p *Parser) synchronize() {
	depth := 0
	for !p.curIs(token.EOF) {
		switch p.cur().Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth == 0 {
				return
			}
			depth--
		case token.SEMI, token.NEWLINE:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) parseProgram(file string) *ast.Program {
	prog := &ast.Program{File: file}
	p.skipNewlines()
	if p.curIs(token.PACKAGE) {
		prog.Package = p.parsePackageDecl()
		p.skipNewlines()
	}
	for p.curIs(token.IMPORT) {
		prog.Imports = append(prog.Imports, p.parseImportDecls()...)
		p.skipNewlines()
	}
	for !p.curIs(token.EOF) {
		p.skipNewlines()
		if p.curIs(token.EOF) {
			break
		}
		startPos := p.pos
		d := p.parseDecl()
		if d != nil {
			prog.Decls = append(prog.Decls, d)
		}
		if p.pos == startPos {
			// Parser made no progress; force advancement to avoid looping.
			p.errorHere(diagnostics.CodeParseUnexpectedToken, "unexpected token '"+p.cur().Lexeme+"' at top level")
			p.synchronize()
		}
		p.skipNewlines()
	}
	return prog
}

func (p *Parser) parsePackageDecl() *ast.PackageDecl {
	start := p.cur().Span
	p.advance() // 'package'
	path := p.parseDottedPath()
	return &ast.PackageDecl{Span: start.Join(p.prevSpan()), Path: path}
}

func (p *Parser) prevSpan() token.Span {
	if p.pos == 0 {
		return token.Span{}
	}
	return p.toks[p.pos-1].Span
}

func (p *Parser) parseDottedPath() []string {
	var segs []string
	if p.curIs(token.IDENT) {
		segs = append(segs, p.advance().Lexeme)
	}
	for p.curIs(token.DOT) && p.peek().Kind == token.IDENT {
		p.advance()
		segs = append(segs, p.advance().Lexeme)
	}
	return segs
}

// parseImportDecls parses `import a.b` or the grouped form
// `import a.b.{X as Y, Z}`, expanding the grouped form into one ImportDecl
// per member (spec §4.2 "Grouped imports").
func (p *Parser) parseImportDecls() []*ast.ImportDecl {
	start := p.cur().Span
	p.advance() // 'import'
	path := p.parseDottedPath()
	if p.curIs(token.DOT) && p.peek().Kind == token.LBRACE {
		p.advance() // .
		p.advance() // {
		var decls []*ast.ImportDecl
		p.skipNewlines()
		for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			memberStart := p.cur().Span
			name := ""
			if p.curIs(token.IDENT) {
				name = p.advance().Lexeme
			}
			alias := ""
			if p.curIs(token.AS) {
				p.advance()
				if p.curIs(token.IDENT) {
					alias = p.advance().Lexeme
				}
			}
			decls = append(decls, &ast.ImportDecl{
				Span: memberStart.Join(p.prevSpan()), Path: path, Members: []string{name}, Alias: alias,
			})
			p.skipNewlines()
			if p.curIs(token.COMMA) {
				p.advance()
				p.skipNewlines()
			}
		}
		p.expect(token.RBRACE)
		return decls
	}
	alias := ""
	if p.curIs(token.AS) {
		p.advance()
		if p.curIs(token.IDENT) {
			alias = p.advance().Lexeme
		}
	}
	return []*ast.ImportDecl{{Span: start.Join(p.prevSpan()), Path: path, Alias: alias}}
}
