package lexer

import (
	"testing"

	"github.com/rask-lang/raskc/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestLexKeywordsAndIdents(t *testing.T) {
	toks, errs := Lex("func main() -> i32 { 1 }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Kind{token.FUNC, token.IDENT, token.LPAREN, token.RPAREN, token.ARROW, token.IDENT, token.LBRACE, token.INT, token.RBRACE, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestLexIntSuffix(t *testing.T) {
	toks, errs := Lex("42_i64")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Kind != token.INT || toks[0].IntVal != 42 || !toks[0].HasSuffix || toks[0].IntSuffix != token.SuffixI64 {
		t.Errorf("got %+v", toks[0])
	}
}

func TestLexFloat(t *testing.T) {
	toks, _ := Lex("3.14_f32")
	if toks[0].Kind != token.FLOAT || toks[0].FloatSufx != token.SuffixF32 {
		t.Errorf("got %+v", toks[0])
	}
}

func TestLexStringEscape(t *testing.T) {
	toks, errs := Lex(`"hi\n"`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].StringVal != "hi\n" {
		t.Errorf("got %q", toks[0].StringVal)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, errs := Lex(`"oops`)
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %d", len(errs))
	}
}

func TestLexOperators(t *testing.T) {
	toks, _ := Lex("a?.b ?? c ..= d <<= 1")
	want := []token.Kind{token.IDENT, token.QUESTION_DOT, token.IDENT, token.QUESTION_QUESTION, token.IDENT, token.DOT_DOT_EQ, token.IDENT, token.SHL_ASSIGN, token.INT, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestLexIllegalCharRecovers(t *testing.T) {
	toks, errs := Lex("let x = 1 ` let y = 2")
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %d: %v", len(errs), errs)
	}
	// lexing continues past the bad byte
	last := toks[len(toks)-1]
	if last.Kind != token.EOF {
		t.Fatalf("expected to reach EOF, got %v", last.Kind)
	}
}

func TestLexOneErrorPerLine(t *testing.T) {
	_, errs := Lex("let x = ` ` `\nlet y = 1")
	if len(errs) != 1 {
		t.Fatalf("want 1 coalesced error for the first line, got %d", len(errs))
	}
}

func TestSpansWithinSource(t *testing.T) {
	src := "func f() { }"
	toks, _ := Lex(src)
	for _, tk := range toks {
		if tk.Span.Start < 0 || tk.Span.End > len(src) || tk.Span.Start > tk.Span.End {
			t.Fatalf("span out of range: %+v", tk.Span)
		}
	}
}
