package ast

import (
	"github.com/rask-lang/raskc/internal/token"
)

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	ID   NodeId
	Span token.Span
	X    Expr
}

func (s *ExprStmt) TokenLiteral() string { return "expr-stmt" }
func (s *ExprStmt) GetSpan() token.Span  { return s.Span }
func (s *ExprStmt) GetID() NodeId        { return s.ID }
func (s *ExprStmt) stmtNode()            {}

// LetStmt is `let name: T = value` or `let mutate name: T = value`.
type LetStmt struct {
	ID      NodeId
	Span    token.Span
	Name    string
	Type    TypeExpr // nil when the annotation is omitted (inferred)
	Value   Expr
	Mutable bool
}

func (s *LetStmt) TokenLiteral() string { return "let" }
func (s *LetStmt) GetSpan() token.Span  { return s.Span }
func (s *LetStmt) GetID() NodeId        { return s.ID }
func (s *LetStmt) stmtNode()            {}

// LetTupleStmt is `let (a, b, c) = value`, destructuring a tuple binding.
type LetTupleStmt struct {
	ID      NodeId
	Span    token.Span
	Names   []string
	Value   Expr
	Mutable bool
}

func (s *LetTupleStmt) TokenLiteral() string { return "let-tuple" }
func (s *LetTupleStmt) GetSpan() token.Span  { return s.Span }
func (s *LetTupleStmt) GetID() NodeId        { return s.ID }
func (s *LetTupleStmt) stmtNode()            {}

// ConstStmt is a block-local `const NAME: T = value`.
type ConstStmt struct {
	ID    NodeId
	Span  token.Span
	Name  string
	Type  TypeExpr
	Value Expr
}

func (s *ConstStmt) TokenLiteral() string { return "const" }
func (s *ConstStmt) GetSpan() token.Span  { return s.Span }
func (s *ConstStmt) GetID() NodeId        { return s.ID }
func (s *ConstStmt) stmtNode()            {}

// AssignStmt is `target op= value` for `=` and every compound-assignment
// operator; the desugar pass rewrites `target op= value` into
// `target = target op value` for op != "=" (spec §4.3).
type AssignStmt struct {
	ID     NodeId
	Span   token.Span
	Target Expr
	Op     string // "=", "+=", "-=", ...
	Value  Expr
}

func (s *AssignStmt) TokenLiteral() string { return s.Op }
func (s *AssignStmt) GetSpan() token.Span  { return s.Span }
func (s *AssignStmt) GetID() NodeId        { return s.ID }
func (s *AssignStmt) stmtNode()            {}

// ReturnStmt is `return expr?`.
type ReturnStmt struct {
	ID    NodeId
	Span  token.Span
	Value Expr // nil for a bare `return`
}

func (s *ReturnStmt) TokenLiteral() string { return "return" }
func (s *ReturnStmt) GetSpan() token.Span  { return s.Span }
func (s *ReturnStmt) GetID() NodeId        { return s.ID }
func (s *ReturnStmt) stmtNode()            {}

// WhileStmt is `label? while cond { body }`.
type WhileStmt struct {
	ID    NodeId
	Span  token.Span
	Label string
	Cond  Expr
	Body  *BlockExpr
}

func (s *WhileStmt) TokenLiteral() string { return "while" }
func (s *WhileStmt) GetSpan() token.Span  { return s.Span }
func (s *WhileStmt) GetID() NodeId        { return s.ID }
func (s *WhileStmt) stmtNode()            {}

// WhileLetStmt is `label? while scrutinee is Pattern { body }`, looping
// while the pattern keeps matching; every `for` loop desugars into this
// form (spec §4.3).
type WhileLetStmt struct {
	ID        NodeId
	Span      token.Span
	Label     string
	Scrutinee Expr
	Pattern   Pattern
	Body      *BlockExpr
}

func (s *WhileLetStmt) TokenLiteral() string { return "while-let" }
func (s *WhileLetStmt) GetSpan() token.Span  { return s.Span }
func (s *WhileLetStmt) GetID() NodeId        { return s.ID }
func (s *WhileLetStmt) stmtNode()            {}

// ForStmt is `label? for pattern in iterable { body }`, parsed as its own
// node and desugared to WhileLetStmt over an iterator-producing call
// (spec §4.3); kept distinct pre-desugar so the parser's output mirrors
// source syntax one-to-one.
type ForStmt struct {
	ID       NodeId
	Span     token.Span
	Label    string
	Pattern  Pattern
	Iterable Expr
	Body     *BlockExpr
}

func (s *ForStmt) TokenLiteral() string { return "for" }
func (s *ForStmt) GetSpan() token.Span  { return s.Span }
func (s *ForStmt) GetID() NodeId        { return s.ID }
func (s *ForStmt) stmtNode()            {}

// LoopStmt is `label? loop { body }`, an unconditional loop exited only via
// `break`/`return`.
type LoopStmt struct {
	ID    NodeId
	Span  token.Span
	Label string
	Body  *BlockExpr
}

func (s *LoopStmt) TokenLiteral() string { return "loop" }
func (s *LoopStmt) GetSpan() token.Span  { return s.Span }
func (s *LoopStmt) GetID() NodeId        { return s.ID }
func (s *LoopStmt) stmtNode()            {}

// BreakStmt is `break label? value?`.
type BreakStmt struct {
	ID    NodeId
	Span  token.Span
	Label string
	Value Expr
}

func (s *BreakStmt) TokenLiteral() string { return "break" }
func (s *BreakStmt) GetSpan() token.Span  { return s.Span }
func (s *BreakStmt) GetID() NodeId        { return s.ID }
func (s *BreakStmt) stmtNode()            {}

// ContinueStmt is `continue label?`.
type ContinueStmt struct {
	ID    NodeId
	Span  token.Span
	Label string
}

func (s *ContinueStmt) TokenLiteral() string { return "continue" }
func (s *ContinueStmt) GetSpan() token.Span  { return s.Span }
func (s *ContinueStmt) GetID() NodeId        { return s.ID }
func (s *ContinueStmt) stmtNode()            {}

// EnsureStmt is `ensure { body } catch name? { handler }?`, registering a
// cleanup/handler block that MIR lowering threads onto the function's
// cleanup chain (spec §4.8).
type EnsureStmt struct {
	ID         NodeId
	Span       token.Span
	Body       *BlockExpr
	CatchName  string // non-empty when `catch err` binds the failure
	CatchBody  *BlockExpr
}

func (s *EnsureStmt) TokenLiteral() string { return "ensure" }
func (s *EnsureStmt) GetSpan() token.Span  { return s.Span }
func (s *EnsureStmt) GetID() NodeId        { return s.ID }
func (s *EnsureStmt) stmtNode()            {}

// ComptimeStmt is a top-level-in-block `comptime { body }` used as a
// statement rather than a value-producing expression.
type ComptimeStmt struct {
	ID   NodeId
	Span token.Span
	Body *BlockExpr
}

func (s *ComptimeStmt) TokenLiteral() string { return "comptime" }
func (s *ComptimeStmt) GetSpan() token.Span  { return s.Span }
func (s *ComptimeStmt) GetID() NodeId        { return s.ID }
func (s *ComptimeStmt) stmtNode()            {}
