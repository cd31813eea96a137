package ast

import (
	"strings"

	"github.com/rask-lang/raskc/internal/token"
)

// TypeExpr is the syntactic (pre-resolution) representation of a type
// annotation as written in source. The type checker (internal/typesystem,
// internal/typecheck) turns these into resolved typesystem.Type values.
type TypeExpr interface {
	Node
	typeExprNode()
}

// NamedTypeExpr is a possibly-generic named type: `i32`, `Vec<T>`, `Foo.Bar`.
type NamedTypeExpr struct {
	Span Span1
	Path []string
	Args []TypeExpr // type or const-usize arguments
}

// Span1 avoids a name collision with the token.Span field name used
// elsewhere; it is exactly a token.Span.
type Span1 = token.Span

func (n *NamedTypeExpr) TokenLiteral() string { return strings.Join(n.Path, ".") }
func (n *NamedTypeExpr) GetSpan() token.Span  { return n.Span }
func (n *NamedTypeExpr) typeExprNode()        {}

// ConstArgExpr is a const-generic argument appearing among NamedTypeExpr.Args,
// e.g. the `4` in `Array<i32, 4>`.
type ConstArgExpr struct {
	Span  token.Span
	Value Expr
}

func (c *ConstArgExpr) TokenLiteral() string { return "const-arg" }
func (c *ConstArgExpr) GetSpan() token.Span  { return c.Span }
func (c *ConstArgExpr) typeExprNode()        {}

// OptionTypeExpr is `T?`.
type OptionTypeExpr struct {
	Span  token.Span
	Inner TypeExpr
}

func (o *OptionTypeExpr) TokenLiteral() string { return "?" }
func (o *OptionTypeExpr) GetSpan() token.Span  { return o.Span }
func (o *OptionTypeExpr) typeExprNode()        {}

// ResultTypeExpr is `T or E`.
type ResultTypeExpr struct {
	Span token.Span
	Ok   TypeExpr
	Err  TypeExpr
}

func (r *ResultTypeExpr) TokenLiteral() string { return "or" }
func (r *ResultTypeExpr) GetSpan() token.Span  { return r.Span }
func (r *ResultTypeExpr) typeExprNode()        {}

// ArrayTypeExpr is `[T; n]`; Len is nil when the length is
// comptime-dependent (spec §3, Array.len == 0 meaning).
type ArrayTypeExpr struct {
	Span token.Span
	Elem TypeExpr
	Len  Expr
}

func (a *ArrayTypeExpr) TokenLiteral() string { return "[;]" }
func (a *ArrayTypeExpr) GetSpan() token.Span  { return a.Span }
func (a *ArrayTypeExpr) typeExprNode()        {}

// SliceTypeExpr is `[T]`.
type SliceTypeExpr struct {
	Span token.Span
	Elem TypeExpr
}

func (s *SliceTypeExpr) TokenLiteral() string { return "[]" }
func (s *SliceTypeExpr) GetSpan() token.Span  { return s.Span }
func (s *SliceTypeExpr) typeExprNode()        {}

// TupleTypeExpr is `(A, B, C)`.
type TupleTypeExpr struct {
	Span  token.Span
	Elems []TypeExpr
}

func (t *TupleTypeExpr) TokenLiteral() string { return "(,)" }
func (t *TupleTypeExpr) GetSpan() token.Span  { return t.Span }
func (t *TupleTypeExpr) typeExprNode()        {}

// FnTypeExpr is `fn(A, B) -> R`.
type FnTypeExpr struct {
	Span   token.Span
	Params []TypeExpr
	Ret    TypeExpr
}

func (f *FnTypeExpr) TokenLiteral() string { return "fn" }
func (f *FnTypeExpr) GetSpan() token.Span  { return f.Span }
func (f *FnTypeExpr) typeExprNode()        {}

// UnionTypeExpr is `A | B | C`.
type UnionTypeExpr struct {
	Span    token.Span
	Members []TypeExpr
}

func (u *UnionTypeExpr) TokenLiteral() string { return "|" }
func (u *UnionTypeExpr) GetSpan() token.Span  { return u.Span }
func (u *UnionTypeExpr) typeExprNode()        {}

// TypeParam is a generic type or const parameter on a declaration.
type TypeParam struct {
	Name      string
	IsConst   bool   // true for `const N: usize` style const-generic params
	ConstType string // underlying primitive for const params, e.g. "usize"
}
