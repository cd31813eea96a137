package ast

import (
	"github.com/rask-lang/raskc/internal/token"
)

// Pattern is the match/destructuring pattern grammar used by match arms,
// if-is, while-let, and for bindings.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern is `_`.
type WildcardPattern struct {
	Span token.Span
}

func (p *WildcardPattern) TokenLiteral() string { return "_" }
func (p *WildcardPattern) GetSpan() token.Span  { return p.Span }
func (p *WildcardPattern) patternNode()         {}

// IdentPattern binds the matched value to Name; Mutable marks a `mutate`
// binding.
type IdentPattern struct {
	Span    token.Span
	Name    string
	Mutable bool
}

func (p *IdentPattern) TokenLiteral() string { return p.Name }
func (p *IdentPattern) GetSpan() token.Span  { return p.Span }
func (p *IdentPattern) patternNode()         {}

// LiteralPattern matches an exact literal value.
type LiteralPattern struct {
	Span  token.Span
	Value Expr // one of IntLiteral, FloatLiteral, StringLiteral, CharLiteral, BoolLiteral
}

func (p *LiteralPattern) TokenLiteral() string { return "literal-pattern" }
func (p *LiteralPattern) GetSpan() token.Span  { return p.Span }
func (p *LiteralPattern) patternNode()         {}

// ConstructorPattern matches an enum variant with positional payload
// bindings, e.g. `Some(x)`, `Ok(value)`.
type ConstructorPattern struct {
	Span   token.Span
	Path   []string
	Fields []Pattern
}

func (p *ConstructorPattern) TokenLiteral() string { return "constructor-pattern" }
func (p *ConstructorPattern) GetSpan() token.Span  { return p.Span }
func (p *ConstructorPattern) patternNode()         {}

// StructFieldPattern is one `name: pattern` entry in a StructPattern; when
// Pattern is nil it is shorthand for an IdentPattern of the same name.
type StructFieldPattern struct {
	Name    string
	Pattern Pattern
}

// StructPattern matches a struct (or struct-shaped enum variant) by field,
// e.g. `Point { x, y: 0 }`. Rest marks a trailing `..` accepting unlisted
// fields.
type StructPattern struct {
	Span   token.Span
	Path   []string
	Fields []*StructFieldPattern
	Rest   bool
}

func (p *StructPattern) TokenLiteral() string { return "struct-pattern" }
func (p *StructPattern) GetSpan() token.Span  { return p.Span }
func (p *StructPattern) patternNode()         {}

// TuplePattern matches a tuple value element-wise.
type TuplePattern struct {
	Span  token.Span
	Elems []Pattern
}

func (p *TuplePattern) TokenLiteral() string { return "tuple-pattern" }
func (p *TuplePattern) GetSpan() token.Span  { return p.Span }
func (p *TuplePattern) patternNode()         {}

// OrPattern matches if any of Alternatives matches, e.g. `1 | 2 | 3`. All
// alternatives must bind the same set of names with the same types.
type OrPattern struct {
	Span         token.Span
	Alternatives []Pattern
}

func (p *OrPattern) TokenLiteral() string { return "or-pattern" }
func (p *OrPattern) GetSpan() token.Span  { return p.Span }
func (p *OrPattern) patternNode()         {}
