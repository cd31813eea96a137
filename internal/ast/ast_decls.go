package ast

import (
	"github.com/rask-lang/raskc/internal/token"
)

// PackageDecl is the `package foo.bar` header of a source file.
type PackageDecl struct {
	Span token.Span
	Path []string
}

func (p *PackageDecl) TokenLiteral() string { return "package" }
func (p *PackageDecl) GetSpan() token.Span  { return p.Span }
func (p *PackageDecl) declNode()            {}

// ImportDecl is one `import foo.bar` or `import foo.{bar, baz}` statement,
// already expanded so each ImportDecl names exactly one imported symbol or
// package (grouped-import expansion happens in the parser).
type ImportDecl struct {
	Span    token.Span
	Path    []string
	Alias   string // non-empty when `as` was used
	Members []string // non-empty for `import foo.{a, b}` member imports
}

func (i *ImportDecl) TokenLiteral() string { return "import" }
func (i *ImportDecl) GetSpan() token.Span  { return i.Span }
func (i *ImportDecl) declNode()            {}

// Param is a function or closure parameter. A `self` receiver is encoded as
// the first Param of a method's Params with IsSelf set; its consumption
// mode is TakeSelf / MutateSelf / neither (read-only, the default — spec
// §4.5 "self_param = Take / Mutate / Value"). Ordinary parameters use Take
// and Mutable the same way: read-only unless one of those is set.
type Param struct {
	Span     token.Span
	Name     string
	Type     TypeExpr
	IsSelf   bool
	TakeSelf bool // `take self` receiver form
	OwnSelf  bool // `own self` receiver form
	MutateSelf bool // `mutate self` receiver form
	Take     bool // `take name: T` — ownership checker marks the arg consumed
	Mutable  bool // `mutate name: T` — writable place, else read-only
}

// FnDecl is a `func name(...) -> T { ... }` declaration, also used for
// methods inside `extend` blocks.
type FnDecl struct {
	Span       token.Span
	Name       string
	TypeParams []TypeParam
	Params     []*Param
	Ret        TypeExpr
	Body       *BlockExpr
	IsPublic   bool
	IsExtern   bool // `extern func` — no body, linked from outside
	IsNative   bool
	NoAlloc    bool // `@no_alloc` annotation present
}

func (f *FnDecl) TokenLiteral() string { return "func" }
func (f *FnDecl) GetSpan() token.Span  { return f.Span }
func (f *FnDecl) declNode()            {}

// FieldDecl is one struct field.
type FieldDecl struct {
	Span     token.Span
	Name     string
	Type     TypeExpr
	IsPublic bool
}

// StructDecl is `struct Name<T> { fields... }`.
type StructDecl struct {
	Span       token.Span
	Name       string
	TypeParams []TypeParam
	Fields     []*FieldDecl
	IsPublic   bool
	IsResource bool // `@resource` annotation present (spec §3 "is_resource")
}

func (s *StructDecl) TokenLiteral() string { return "struct" }
func (s *StructDecl) GetSpan() token.Span  { return s.Span }
func (s *StructDecl) declNode()            {}

// EnumVariantDecl is one `enum` variant, with positional payload types,
// named fields, or neither (a unit variant).
type EnumVariantDecl struct {
	Span   token.Span
	Name   string
	Fields []TypeExpr  // positional payload, e.g. `Some(T)`
	Named  []*FieldDecl // named payload, e.g. `Circle { radius: f64 }`
}

// EnumDecl is `enum Name<T> { Variant, Variant(T), ... }`.
type EnumDecl struct {
	Span       token.Span
	Name       string
	TypeParams []TypeParam
	Variants   []*EnumVariantDecl
	IsPublic   bool
}

func (e *EnumDecl) TokenLiteral() string { return "enum" }
func (e *EnumDecl) GetSpan() token.Span  { return e.Span }
func (e *EnumDecl) declNode()            {}

// UnionDecl is `union Name { A, B, C }` — a syntactic sum of existing types
// (distinct from enum; no payload, members are pre-existing named types).
type UnionDecl struct {
	Span     token.Span
	Name     string
	Members  []TypeExpr
	IsPublic bool
}

func (u *UnionDecl) TokenLiteral() string { return "union" }
func (u *UnionDecl) GetSpan() token.Span  { return u.Span }
func (u *UnionDecl) declNode()            {}

// TraitMethodSig is one method signature inside a `trait` block, with an
// optional default body.
type TraitMethodSig struct {
	Span   token.Span
	Name   string
	Params []*Param
	Ret    TypeExpr
	Body   *BlockExpr // nil when the trait only declares the signature
}

// TraitDecl is `trait Name<T> { func m(...) -> T ... }`.
type TraitDecl struct {
	Span       token.Span
	Name       string
	TypeParams []TypeParam
	Methods    []*TraitMethodSig
	IsPublic   bool
}

func (t *TraitDecl) TokenLiteral() string { return "trait" }
func (t *TraitDecl) GetSpan() token.Span  { return t.Span }
func (t *TraitDecl) declNode()            {}

// ExtendDecl is `extend Type (with Trait)? { func ... }`, attaching methods
// (and optionally a trait implementation) to a type.
type ExtendDecl struct {
	Span       token.Span
	TypeParams []TypeParam
	Target     TypeExpr
	Trait      TypeExpr // nil for an inherent `extend`
	Methods    []*FnDecl
}

func (e *ExtendDecl) TokenLiteral() string { return "extend" }
func (e *ExtendDecl) GetSpan() token.Span  { return e.Span }
func (e *ExtendDecl) declNode()            {}

// ConstDecl is a top-level `const NAME: T = expr`.
type ConstDecl struct {
	Span     token.Span
	Name     string
	Type     TypeExpr
	Value    Expr
	IsPublic bool
}

func (c *ConstDecl) TokenLiteral() string { return "const" }
func (c *ConstDecl) GetSpan() token.Span  { return c.Span }
func (c *ConstDecl) declNode()            {}

// TypeAliasDecl is `type Name<T> = T2`.
type TypeAliasDecl struct {
	Span       token.Span
	Name       string
	TypeParams []TypeParam
	Target     TypeExpr
	IsPublic   bool
}

func (t *TypeAliasDecl) TokenLiteral() string { return "type" }
func (t *TypeAliasDecl) GetSpan() token.Span  { return t.Span }
func (t *TypeAliasDecl) declNode()            {}

// ExternDecl is an `extern "C" { func ... }` foreign-function block.
type ExternDecl struct {
	Span  token.Span
	ABI   string
	Fns   []*FnDecl
}

func (e *ExternDecl) TokenLiteral() string { return "extern" }
func (e *ExternDecl) GetSpan() token.Span  { return e.Span }
func (e *ExternDecl) declNode()            {}

// TestDecl is a `test "name" { ... }` declaration.
type TestDecl struct {
	Span token.Span
	Name string
	Body *BlockExpr
}

func (t *TestDecl) TokenLiteral() string { return "test" }
func (t *TestDecl) GetSpan() token.Span  { return t.Span }
func (t *TestDecl) declNode()            {}

// BenchmarkDecl is a `benchmark "name" { ... }` declaration.
type BenchmarkDecl struct {
	Span token.Span
	Name string
	Body *BlockExpr
}

func (b *BenchmarkDecl) TokenLiteral() string { return "benchmark" }
func (b *BenchmarkDecl) GetSpan() token.Span  { return b.Span }
func (b *BenchmarkDecl) declNode()            {}

// ExportDecl re-exports an already-imported or locally-declared name.
type ExportDecl struct {
	Span token.Span
	Path []string
	As   string
}

func (e *ExportDecl) TokenLiteral() string { return "export" }
func (e *ExportDecl) GetSpan() token.Span  { return e.Span }
func (e *ExportDecl) declNode()            {}
