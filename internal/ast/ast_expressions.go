package ast

import (
	"github.com/rask-lang/raskc/internal/token"
)

// literal and compound expression kinds, grounded on rask-ast/src/expr.rs's
// ExprKind enum. Every node implements Expr (Node + exprNode + GetID).

type IntLiteral struct {
	ID        NodeId
	Span      token.Span
	Value     int64
	Suffix    token.IntSuffix
	HasSuffix bool
}

func (n *IntLiteral) TokenLiteral() string { return "int-literal" }
func (n *IntLiteral) GetSpan() token.Span  { return n.Span }
func (n *IntLiteral) GetID() NodeId        { return n.ID }
func (n *IntLiteral) exprNode()            {}

type FloatLiteral struct {
	ID        NodeId
	Span      token.Span
	Value     float64
	Suffix    token.FloatSuffix
	HasSuffix bool
}

func (n *FloatLiteral) TokenLiteral() string { return "float-literal" }
func (n *FloatLiteral) GetSpan() token.Span  { return n.Span }
func (n *FloatLiteral) GetID() NodeId        { return n.ID }
func (n *FloatLiteral) exprNode()            {}

type StringLiteral struct {
	ID    NodeId
	Span  token.Span
	Value string
}

func (n *StringLiteral) TokenLiteral() string { return n.Value }
func (n *StringLiteral) GetSpan() token.Span  { return n.Span }
func (n *StringLiteral) GetID() NodeId        { return n.ID }
func (n *StringLiteral) exprNode()            {}

type CharLiteral struct {
	ID    NodeId
	Span  token.Span
	Value rune
}

func (n *CharLiteral) TokenLiteral() string { return string(n.Value) }
func (n *CharLiteral) GetSpan() token.Span  { return n.Span }
func (n *CharLiteral) GetID() NodeId        { return n.ID }
func (n *CharLiteral) exprNode()            {}

type BoolLiteral struct {
	ID    NodeId
	Span  token.Span
	Value bool
}

func (n *BoolLiteral) TokenLiteral() string { return "bool-literal" }
func (n *BoolLiteral) GetSpan() token.Span  { return n.Span }
func (n *BoolLiteral) GetID() NodeId        { return n.ID }
func (n *BoolLiteral) exprNode()            {}

// NoneLiteral is the `none` Option literal.
type NoneLiteral struct {
	ID   NodeId
	Span token.Span
}

func (n *NoneLiteral) TokenLiteral() string { return "none" }
func (n *NoneLiteral) GetSpan() token.Span  { return n.Span }
func (n *NoneLiteral) GetID() NodeId        { return n.ID }
func (n *NoneLiteral) exprNode()            {}

// NullLiteral is the `null` raw-pointer literal, only valid in unsafe context.
type NullLiteral struct {
	ID   NodeId
	Span token.Span
}

func (n *NullLiteral) TokenLiteral() string { return "null" }
func (n *NullLiteral) GetSpan() token.Span  { return n.Span }
func (n *NullLiteral) GetID() NodeId        { return n.ID }
func (n *NullLiteral) exprNode()            {}

type BinaryExpr struct {
	ID    NodeId
	Span  token.Span
	Op    string
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) TokenLiteral() string { return n.Op }
func (n *BinaryExpr) GetSpan() token.Span  { return n.Span }
func (n *BinaryExpr) GetID() NodeId        { return n.ID }
func (n *BinaryExpr) exprNode()            {}

type UnaryExpr struct {
	ID      NodeId
	Span    token.Span
	Op      string
	Operand Expr
}

func (n *UnaryExpr) TokenLiteral() string { return n.Op }
func (n *UnaryExpr) GetSpan() token.Span  { return n.Span }
func (n *UnaryExpr) GetID() NodeId        { return n.ID }
func (n *UnaryExpr) exprNode()            {}

type CallExpr struct {
	ID     NodeId
	Span   token.Span
	Callee Expr
	Args   []Expr
}

func (n *CallExpr) TokenLiteral() string { return "call" }
func (n *CallExpr) GetSpan() token.Span  { return n.Span }
func (n *CallExpr) GetID() NodeId        { return n.ID }
func (n *CallExpr) exprNode()            {}

// MethodCallExpr is `recv.method::<T>(args)`; TypeArgs is non-nil only when
// explicit turbofish-style type arguments were written (spec §3's
// call_type_args side table is keyed by this node's ID).
type MethodCallExpr struct {
	ID       NodeId
	Span     token.Span
	Receiver Expr
	Method   string
	TypeArgs []TypeExpr
	Args     []Expr
}

func (n *MethodCallExpr) TokenLiteral() string { return n.Method }
func (n *MethodCallExpr) GetSpan() token.Span  { return n.Span }
func (n *MethodCallExpr) GetID() NodeId        { return n.ID }
func (n *MethodCallExpr) exprNode()            {}

type FieldExpr struct {
	ID       NodeId
	Span     token.Span
	Receiver Expr
	Field    string
}

func (n *FieldExpr) TokenLiteral() string { return n.Field }
func (n *FieldExpr) GetSpan() token.Span  { return n.Span }
func (n *FieldExpr) GetID() NodeId        { return n.ID }
func (n *FieldExpr) exprNode()            {}

// OptionalFieldExpr is `recv?.field`, short-circuiting to None on a nil
// receiver Option chain.
type OptionalFieldExpr struct {
	ID       NodeId
	Span     token.Span
	Receiver Expr
	Field    string
}

func (n *OptionalFieldExpr) TokenLiteral() string { return n.Field }
func (n *OptionalFieldExpr) GetSpan() token.Span  { return n.Span }
func (n *OptionalFieldExpr) GetID() NodeId        { return n.ID }
func (n *OptionalFieldExpr) exprNode()            {}

type IndexExpr struct {
	ID       NodeId
	Span     token.Span
	Receiver Expr
	Index    Expr
}

func (n *IndexExpr) TokenLiteral() string { return "index" }
func (n *IndexExpr) GetSpan() token.Span  { return n.Span }
func (n *IndexExpr) GetID() NodeId        { return n.ID }
func (n *IndexExpr) exprNode()            {}

// BlockExpr is `{ stmts...; tail }`; Tail is nil when the block has no
// trailing expression (evaluates to unit).
type BlockExpr struct {
	ID    NodeId
	Span  token.Span
	Stmts []Stmt
	Tail  Expr
}

func (n *BlockExpr) TokenLiteral() string { return "block" }
func (n *BlockExpr) GetSpan() token.Span  { return n.Span }
func (n *BlockExpr) GetID() NodeId        { return n.ID }
func (n *BlockExpr) exprNode()            {}

// IfExpr's Else is nil, a *BlockExpr, or another *IfExpr (else-if chaining).
type IfExpr struct {
	ID   NodeId
	Span token.Span
	Cond Expr
	Then *BlockExpr
	Else Expr
}

func (n *IfExpr) TokenLiteral() string { return "if" }
func (n *IfExpr) GetSpan() token.Span  { return n.Span }
func (n *IfExpr) GetID() NodeId        { return n.ID }
func (n *IfExpr) exprNode()            {}

// IfIsExpr is `if scrutinee is Pattern { ... } else { ... }`, binding the
// pattern's captures inside Then.
type IfIsExpr struct {
	ID        NodeId
	Span      token.Span
	Scrutinee Expr
	Pattern   Pattern
	Then      *BlockExpr
	Else      Expr
}

func (n *IfIsExpr) TokenLiteral() string { return "if-is" }
func (n *IfIsExpr) GetSpan() token.Span  { return n.Span }
func (n *IfIsExpr) GetID() NodeId        { return n.ID }
func (n *IfIsExpr) exprNode()            {}

// MatchArm is one `Pattern (if Guard)? => Body` arm.
type MatchArm struct {
	Span    token.Span
	Pattern Pattern
	Guard   Expr
	Body    Expr
}

type MatchExpr struct {
	ID        NodeId
	Span      token.Span
	Scrutinee Expr
	Arms      []*MatchArm
}

func (n *MatchExpr) TokenLiteral() string { return "match" }
func (n *MatchExpr) GetSpan() token.Span  { return n.Span }
func (n *MatchExpr) GetID() NodeId        { return n.ID }
func (n *MatchExpr) exprNode()            {}

// TryExpr is the postfix `expr?` operator. The parser emits it directly
// (spec §4.3's "postfix `?` → explicit `Try` expression" normalization is
// already satisfied at parse time); internal/desugar leaves it untouched
// and internal/mir lowers it into the Ok/Err-or-Some/None branch once the
// operand's type is known.
type TryExpr struct {
	ID    NodeId
	Span  token.Span
	Inner Expr
}

func (n *TryExpr) TokenLiteral() string { return "?" }
func (n *TryExpr) GetSpan() token.Span  { return n.Span }
func (n *TryExpr) GetID() NodeId        { return n.ID }
func (n *TryExpr) exprNode()            {}

// NullCoalesceExpr is `left ?? right`.
type NullCoalesceExpr struct {
	ID    NodeId
	Span  token.Span
	Left  Expr
	Right Expr
}

func (n *NullCoalesceExpr) TokenLiteral() string { return "??" }
func (n *NullCoalesceExpr) GetSpan() token.Span  { return n.Span }
func (n *NullCoalesceExpr) GetID() NodeId        { return n.ID }
func (n *NullCoalesceExpr) exprNode()            {}

// RangeExpr is `start..end` or `start..=end`; Start/End are nil for open
// ranges (`..end`, `start..`).
type RangeExpr struct {
	ID        NodeId
	Span      token.Span
	Start     Expr
	End       Expr
	Inclusive bool
}

func (n *RangeExpr) TokenLiteral() string { return ".." }
func (n *RangeExpr) GetSpan() token.Span  { return n.Span }
func (n *RangeExpr) GetID() NodeId        { return n.ID }
func (n *RangeExpr) exprNode()            {}

// StructLitField is one `name: value` entry in a struct literal.
type StructLitField struct {
	Name  string
	Value Expr
}

// StructLitExpr is `Type { field: value, ..spread }`.
type StructLitExpr struct {
	ID     NodeId
	Span   token.Span
	Type   TypeExpr
	Fields []*StructLitField
	Spread Expr // non-nil for `..rest` functional update
}

func (n *StructLitExpr) TokenLiteral() string { return "struct-lit" }
func (n *StructLitExpr) GetSpan() token.Span  { return n.Span }
func (n *StructLitExpr) GetID() NodeId        { return n.ID }
func (n *StructLitExpr) exprNode()            {}

type ArrayLitExpr struct {
	ID    NodeId
	Span  token.Span
	Elems []Expr
}

func (n *ArrayLitExpr) TokenLiteral() string { return "array-lit" }
func (n *ArrayLitExpr) GetSpan() token.Span  { return n.Span }
func (n *ArrayLitExpr) GetID() NodeId        { return n.ID }
func (n *ArrayLitExpr) exprNode()            {}

// ArrayRepeatExpr is `[value; count]`.
type ArrayRepeatExpr struct {
	ID    NodeId
	Span  token.Span
	Value Expr
	Count Expr
}

func (n *ArrayRepeatExpr) TokenLiteral() string { return "array-repeat" }
func (n *ArrayRepeatExpr) GetSpan() token.Span  { return n.Span }
func (n *ArrayRepeatExpr) GetID() NodeId        { return n.ID }
func (n *ArrayRepeatExpr) exprNode()            {}

type TupleExpr struct {
	ID    NodeId
	Span  token.Span
	Elems []Expr
}

func (n *TupleExpr) TokenLiteral() string { return "tuple" }
func (n *TupleExpr) GetSpan() token.Span  { return n.Span }
func (n *TupleExpr) GetID() NodeId        { return n.ID }
func (n *TupleExpr) exprNode()            {}

// WithBinding is one `name = value` binding introduced by a `with`/`using`
// block.
type WithBinding struct {
	Span  token.Span
	Name  string
	Value Expr
}

// WithExpr is `with a = expr, b = expr2 { body }` — scoped resource binding
// whose bindings are registered/consumed by the ownership checker at block
// exit (spec §5's ESAD scope-exit checks).
type WithExpr struct {
	ID       NodeId
	Span     token.Span
	Bindings []*WithBinding
	Body     *BlockExpr
}

func (n *WithExpr) TokenLiteral() string { return "with" }
func (n *WithExpr) GetSpan() token.Span  { return n.Span }
func (n *WithExpr) GetID() NodeId        { return n.ID }
func (n *WithExpr) exprNode()            {}

// UsingExpr is `using a = expr, b = expr2 { body }`, front-end syntax for
// scoped capability acquisition; shares WithExpr's shape.
type UsingExpr struct {
	ID       NodeId
	Span     token.Span
	Bindings []*WithBinding
	Body     *BlockExpr
}

func (n *UsingExpr) TokenLiteral() string { return "using" }
func (n *UsingExpr) GetSpan() token.Span  { return n.Span }
func (n *UsingExpr) GetID() NodeId        { return n.ID }
func (n *UsingExpr) exprNode()            {}

// ClosureExpr is `|params| -> Ret body` or `|params| body`. Captures are
// computed later (internal/mir) from free-variable analysis, not parsed.
type ClosureExpr struct {
	ID     NodeId
	Span   token.Span
	Params []*Param
	Ret    TypeExpr
	Body   Expr
}

func (n *ClosureExpr) TokenLiteral() string { return "closure" }
func (n *ClosureExpr) GetSpan() token.Span  { return n.Span }
func (n *ClosureExpr) GetID() NodeId        { return n.ID }
func (n *ClosureExpr) exprNode()            {}

type CastExpr struct {
	ID    NodeId
	Span  token.Span
	Value Expr
	Type  TypeExpr
}

func (n *CastExpr) TokenLiteral() string { return "as" }
func (n *CastExpr) GetSpan() token.Span  { return n.Span }
func (n *CastExpr) GetID() NodeId        { return n.ID }
func (n *CastExpr) exprNode()            {}

// SpawnExpr is `spawn { body }`, front-end syntax for the (external) green
// thread scheduler; parses to a node but schedules nothing here.
type SpawnExpr struct {
	ID   NodeId
	Span token.Span
	Body *BlockExpr
}

func (n *SpawnExpr) TokenLiteral() string { return "spawn" }
func (n *SpawnExpr) GetSpan() token.Span  { return n.Span }
func (n *SpawnExpr) GetID() NodeId        { return n.ID }
func (n *SpawnExpr) exprNode()            {}

// RawThreadExpr is `raw_thread { body }`, front-end syntax for an OS-thread
// spawn handled by the (external) runtime.
type RawThreadExpr struct {
	ID   NodeId
	Span token.Span
	Body *BlockExpr
}

func (n *RawThreadExpr) TokenLiteral() string { return "raw_thread" }
func (n *RawThreadExpr) GetSpan() token.Span  { return n.Span }
func (n *RawThreadExpr) GetID() NodeId        { return n.ID }
func (n *RawThreadExpr) exprNode()            {}

// SelectArm is one `channel_expr => body` or `binding = channel_expr => body`
// arm of a select block.
type SelectArm struct {
	Span    token.Span
	Binding string
	Channel Expr
	Body    Expr
}

// SelectExpr is `select { arm, arm, ... }`, front-end syntax for the
// (external) async reactor's channel multiplexing.
type SelectExpr struct {
	ID   NodeId
	Span token.Span
	Arms []*SelectArm
}

func (n *SelectExpr) TokenLiteral() string { return "select" }
func (n *SelectExpr) GetSpan() token.Span  { return n.Span }
func (n *SelectExpr) GetID() NodeId        { return n.ID }
func (n *SelectExpr) exprNode()            {}

// TimeoutExpr is `timeout(duration) { body }`.
type TimeoutExpr struct {
	ID       NodeId
	Span     token.Span
	Duration Expr
	Body     *BlockExpr
}

func (n *TimeoutExpr) TokenLiteral() string { return "timeout" }
func (n *TimeoutExpr) GetSpan() token.Span  { return n.Span }
func (n *TimeoutExpr) GetID() NodeId        { return n.ID }
func (n *TimeoutExpr) exprNode()            {}

// DeliverExpr is `deliver expr`, yielding a value from a generator-like
// raw_thread/step body to its caller.
type DeliverExpr struct {
	ID    NodeId
	Span  token.Span
	Value Expr
}

func (n *DeliverExpr) TokenLiteral() string { return "deliver" }
func (n *DeliverExpr) GetSpan() token.Span  { return n.Span }
func (n *DeliverExpr) GetID() NodeId        { return n.ID }
func (n *DeliverExpr) exprNode()            {}

// StepExpr is `step target`, advancing a generator-like value one step.
type StepExpr struct {
	ID     NodeId
	Span   token.Span
	Target Expr
}

func (n *StepExpr) TokenLiteral() string { return "step" }
func (n *StepExpr) GetSpan() token.Span  { return n.Span }
func (n *StepExpr) GetID() NodeId        { return n.ID }
func (n *StepExpr) exprNode()            {}

// UnsafeExpr is `unsafe { body }`, the only context allowing raw-pointer
// dereference, extern calls, and `asm` blocks (spec §5 invariant).
type UnsafeExpr struct {
	ID   NodeId
	Span token.Span
	Body *BlockExpr
}

func (n *UnsafeExpr) TokenLiteral() string { return "unsafe" }
func (n *UnsafeExpr) GetSpan() token.Span  { return n.Span }
func (n *UnsafeExpr) GetID() NodeId        { return n.ID }
func (n *UnsafeExpr) exprNode()            {}

// AsmExpr is an inline `asm { ... }` block; its body is opaque text handed
// to the (external) codegen backend.
type AsmExpr struct {
	ID   NodeId
	Span token.Span
	Text string
}

func (n *AsmExpr) TokenLiteral() string { return "asm" }
func (n *AsmExpr) GetSpan() token.Span  { return n.Span }
func (n *AsmExpr) GetID() NodeId        { return n.ID }
func (n *AsmExpr) exprNode()            {}

// ComptimeExpr is `comptime { body }`, evaluated by the (external)
// compile-time interpreter; the front end only parses it.
type ComptimeExpr struct {
	ID   NodeId
	Span token.Span
	Body *BlockExpr
}

func (n *ComptimeExpr) TokenLiteral() string { return "comptime" }
func (n *ComptimeExpr) GetSpan() token.Span  { return n.Span }
func (n *ComptimeExpr) GetID() NodeId        { return n.ID }
func (n *ComptimeExpr) exprNode()            {}

// AssertExpr is `assert(cond, message?)`.
type AssertExpr struct {
	ID      NodeId
	Span    token.Span
	Cond    Expr
	Message Expr
}

func (n *AssertExpr) TokenLiteral() string { return "assert" }
func (n *AssertExpr) GetSpan() token.Span  { return n.Span }
func (n *AssertExpr) GetID() NodeId        { return n.ID }
func (n *AssertExpr) exprNode()            {}

// CheckExpr is `check(cond, message?)`, a non-fatal assertion variant.
type CheckExpr struct {
	ID      NodeId
	Span    token.Span
	Cond    Expr
	Message Expr
}

func (n *CheckExpr) TokenLiteral() string { return "check" }
func (n *CheckExpr) GetSpan() token.Span  { return n.Span }
func (n *CheckExpr) GetID() NodeId        { return n.ID }
func (n *CheckExpr) exprNode()            {}

// PathExpr is a qualified reference like `Color.Red` or `std.io.println`
// that hasn't yet been resolved to a field access, enum constructor, or
// module member (the resolver disambiguates using the symbol table).
type PathExpr struct {
	ID       NodeId
	Span     token.Span
	Segments []string
}

func (n *PathExpr) TokenLiteral() string { return "path" }
func (n *PathExpr) GetSpan() token.Span  { return n.Span }
func (n *PathExpr) GetID() NodeId        { return n.ID }
func (n *PathExpr) exprNode()            {}
