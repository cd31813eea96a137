// Package lexer implements the hand-written scanner that turns a UTF-8
// source buffer into a token stream, per spec §4.1. It never stops at the
// first bad character: on an illegal byte or unterminated literal it
// records a LexError and resynchronizes at the next whitespace/newline,
// so the parser downstream always has a best-effort token stream to work
// with (spec §7 "tries to make maximum progress").
package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/token"
)

// LexError is a recoverable lexical error with an optional hint.
type LexError struct {
	Span    token.Span
	Message string
	Hint    string
}

// Lexer scans one source buffer and yields tokens plus accumulated errors.
type Lexer struct {
	src    string
	pos    int // current byte offset
	errors []LexError
	// lastErrorLine de-duplicates errors so only the first error on a given
	// source line is surfaced (spec §4.1 "one error per distinguishable
	// source line").
	lastErrorLine int
	haveLastLine  bool
}

// New constructs a Lexer over src.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Lex scans the whole buffer and returns every token (including a trailing
// Eof) plus whatever lex errors were recorded.
func Lex(src string) ([]token.Token, []LexError) {
	l := New(src)
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return toks, l.errors
}

func (l *Lexer) recordError(span token.Span, message, hint string) {
	line := 0
	for i := 0; i < span.Start && i < len(l.src); i++ {
		if l.src[i] == '\n' {
			line++
		}
	}
	if l.haveLastLine && line == l.lastErrorLine {
		return
	}
	l.lastErrorLine = line
	l.haveLastLine = true
	l.errors = append(l.errors, LexError{Span: span, Message: message, Hint: hint})
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) peekRune() (rune, int) {
	if l.pos >= len(l.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

// skipWhitespace skips spaces, tabs, carriage returns, and comments, but
// never newlines — those are emitted as NEWLINE tokens since the parser
// decides when they terminate a statement (spec §4.1).
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) {
		switch l.peekByte() {
		case ' ', '\t', '\r':
			l.pos++
		case '/':
			if l.peekByteAt(1) == '/' {
				for l.pos < len(l.src) && l.peekByte() != '\n' {
					l.pos++
				}
				continue
			}
			if l.peekByteAt(1) == '*' {
				l.pos += 2
				for l.pos < len(l.src) && !(l.peekByte() == '*' && l.peekByteAt(1) == '/') {
					l.pos++
				}
				if l.pos < len(l.src) {
					l.pos += 2
				}
				continue
			}
			return
		default:
			return
		}
	}
}

// resyncToWhitespace advances past the offending rune to the next
// whitespace or newline, per the lexer's recovery contract.
func (l *Lexer) resyncToWhitespace() {
	for l.pos < len(l.src) {
		b := l.peekByte()
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
			return
		}
		l.pos++
	}
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentCont(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

// Next scans and returns the next token.
func (l *Lexer) Next() token.Token {
	l.skipWhitespace()
	start := l.pos

	if l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Span: token.Span{Start: start, End: start}, Lexeme: ""}
	}

	r, w := l.peekRune()

	switch {
	case r == '\n':
		l.pos++
		return l.tok(token.NEWLINE, start)
	case r == '"':
		return l.lexString(start)
	case r == '\'':
		return l.lexChar(start)
	case unicode.IsDigit(r):
		return l.lexNumber(start)
	case isIdentStart(r):
		return l.lexIdent(start)
	}

	// Multi-character and single-character operators/delimiters.
	if tok, ok := l.lexOperator(start); ok {
		return tok
	}

	// Unrecognized byte: record error and resynchronize.
	l.pos += w
	l.recordError(token.Span{Start: start, End: l.pos}, "unexpected character '"+string(r)+"'", "")
	l.resyncToWhitespace()
	return l.tok(token.ILLEGAL, start)
}

func (l *Lexer) tok(kind token.Kind, start int) token.Token {
	return token.Token{Kind: kind, Span: token.Span{Start: start, End: l.pos}, Lexeme: l.src[start:l.pos]}
}

func (l *Lexer) lexIdent(start int) token.Token {
	for l.pos < len(l.src) {
		r, w := l.peekRune()
		if !isIdentCont(r) {
			break
		}
		l.pos += w
	}
	lexeme := l.src[start:l.pos]
	kind := token.LookupIdent(lexeme)
	return l.tok(kind, start)
}

func (l *Lexer) lexNumber(start int) token.Token {
	isFloat := false
	for l.pos < len(l.src) && (unicode.IsDigit(rune(l.peekByte())) || (l.peekByte() == '_' && unicode.IsDigit(rune(l.peekByteAt(1))))) {
		l.pos++
	}
	if l.peekByte() == '.' && unicode.IsDigit(rune(l.peekByteAt(1))) {
		isFloat = true
		l.pos++
		for l.pos < len(l.src) && (unicode.IsDigit(rune(l.peekByte())) || (l.peekByte() == '_' && unicode.IsDigit(rune(l.peekByteAt(1))))) {
			l.pos++
		}
	}
	if l.peekByte() == 'e' || l.peekByte() == 'E' {
		save := l.pos
		l.pos++
		if l.peekByte() == '+' || l.peekByte() == '-' {
			l.pos++
		}
		if unicode.IsDigit(rune(l.peekByte())) {
			isFloat = true
			for l.pos < len(l.src) && unicode.IsDigit(rune(l.peekByte())) {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}
	litEnd := l.pos
	digits := strings.ReplaceAll(l.src[start:litEnd], "_", "")

	// Optional numeric suffix: _i32, _u64, _f64, ...
	var intSuffix token.IntSuffix
	var floatSuffix token.FloatSuffix
	hasSuffix := false
	if l.peekByte() == '_' {
		save := l.pos
		l.pos++
		sufStart := l.pos
		for l.pos < len(l.src) {
			r, w := l.peekRune()
			if !isIdentCont(r) {
				break
			}
			l.pos += w
		}
		suf := l.src[sufStart:l.pos]
		if s, ok := token.LookupIntSuffix(suf); ok && !isFloat {
			intSuffix = s
			hasSuffix = true
		} else if s, ok := token.LookupFloatSuffix(suf); ok {
			floatSuffix = s
			hasSuffix = true
			isFloat = true
		} else {
			l.pos = save // not a suffix, leave for next token (e.g. a following ident)
		}
	}

	tok := token.Token{Span: token.Span{Start: start, End: l.pos}, Lexeme: l.src[start:l.pos], HasSuffix: hasSuffix}
	if isFloat {
		tok.Kind = token.FLOAT
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			l.recordError(tok.Span, "invalid float literal", "")
		}
		tok.FloatVal = v
		tok.FloatSufx = floatSuffix
	} else {
		tok.Kind = token.INT
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			l.recordError(tok.Span, "invalid integer literal", "value out of range for i64")
		}
		tok.IntVal = v
		tok.IntSuffix = intSuffix
	}
	return tok
}

func (l *Lexer) lexString(start int) token.Token {
	l.pos++ // opening quote
	var sb strings.Builder
	terminated := false
	for l.pos < len(l.src) {
		b := l.peekByte()
		if b == '"' {
			l.pos++
			terminated = true
			break
		}
		if b == '\n' {
			break
		}
		if b == '\\' {
			l.pos++
			sb.WriteRune(l.decodeEscape())
			continue
		}
		r, w := l.peekRune()
		sb.WriteRune(r)
		l.pos += w
	}
	if !terminated {
		l.recordError(token.Span{Start: start, End: l.pos}, "unterminated string literal", "add a closing '\"'")
	}
	return token.Token{Kind: token.STRING, Span: token.Span{Start: start, End: l.pos}, Lexeme: l.src[start:l.pos], StringVal: sb.String()}
}

func (l *Lexer) lexChar(start int) token.Token {
	l.pos++ // opening quote
	var v rune
	if l.peekByte() == '\\' {
		l.pos++
		v = l.decodeEscape()
	} else {
		r, w := l.peekRune()
		v = r
		l.pos += w
	}
	terminated := false
	if l.peekByte() == '\'' {
		l.pos++
		terminated = true
	}
	if !terminated {
		l.recordError(token.Span{Start: start, End: l.pos}, "unterminated character literal", "add a closing \"'\"")
	}
	return token.Token{Kind: token.CHAR, Span: token.Span{Start: start, End: l.pos}, Lexeme: l.src[start:l.pos], StringVal: string(v)}
}

func (l *Lexer) decodeEscape() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	b := l.peekByte()
	l.pos++
	switch b {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case '\\':
		return '\\'
	case '\'':
		return '\''
	case '"':
		return '"'
	default:
		return rune(b)
	}
}

// operator table, ordered longest-match-first within each leading byte.
type opEntry struct {
	text string
	kind token.Kind
}

var opTable = []opEntry{
	{"<<=", token.SHL_ASSIGN}, {">>=", token.SHR_ASSIGN},
	{"..=", token.DOT_DOT_EQ}, {"::", token.COLON_COLON},
	{"??", token.QUESTION_QUESTION}, {"?.", token.QUESTION_DOT},
	{"..", token.DOT_DOT}, {"->", token.ARROW}, {"=>", token.FAT_ARROW},
	{"==", token.EQ}, {"!=", token.NOT_EQ}, {"<=", token.LT_EQ}, {">=", token.GT_EQ},
	{"&&", token.AND_AND}, {"||", token.OR_OR}, {"<<", token.SHL}, {">>", token.SHR},
	{"+=", token.PLUS_ASSIGN}, {"-=", token.MINUS_ASSIGN}, {"*=", token.STAR_ASSIGN},
	{"/=", token.SLASH_ASSIGN}, {"%=", token.PERCENT_ASSIGN}, {"&=", token.AMP_ASSIGN},
	{"|=", token.PIPE_ASSIGN}, {"^=", token.CARET_ASSIGN},
	{"+", token.PLUS}, {"-", token.MINUS}, {"*", token.STAR}, {"/", token.SLASH},
	{"%", token.PERCENT}, {"=", token.ASSIGN}, {"<", token.LT}, {">", token.GT},
	{"!", token.BANG}, {"?", token.QUESTION}, {"&", token.AMP}, {"|", token.PIPE},
	{"^", token.CARET}, {"~", token.TILDE}, {".", token.DOT}, {"@", token.AT},
	{"{", token.LBRACE}, {"}", token.RBRACE}, {"(", token.LPAREN}, {")", token.RPAREN},
	{"[", token.LBRACKET}, {"]", token.RBRACKET}, {":", token.COLON}, {";", token.SEMI},
	{",", token.COMMA},
}

func (l *Lexer) lexOperator(start int) (token.Token, bool) {
	for _, e := range opTable {
		if strings.HasPrefix(l.src[l.pos:], e.text) {
			l.pos += len(e.text)
			return l.tok(e.kind, start), true
		}
	}
	return token.Token{}, false
}

// ToDiagnostics converts accumulated LexErrors into diagnostics.
func ToDiagnostics(errs []LexError) []*diagnostics.DiagnosticError {
	out := make([]*diagnostics.DiagnosticError, 0, len(errs))
	for _, e := range errs {
		d := diagnostics.NewError(diagnostics.PhaseLex, diagnostics.CodeLexIllegalChar, e.Span, e.Message)
		if e.Hint != "" {
			d.WithHint(e.Hint)
		}
		out = append(out, d)
	}
	return out
}
