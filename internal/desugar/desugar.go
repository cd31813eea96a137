// Package desugar implements the pure AST→AST normalization pass described
// in spec §4.3: it runs once between the parser and the resolver, rewriting
// compound assignment into its explicit binary form and every `for` loop
// into `while`-over-`next()` form. The pass never allocates a NodeId that
// aliases an existing one — new nodes introduced by a rewrite get fresh ids
// from an offset counter of their own, and running the pass twice on
// already-desugared input is a no-op (idempotent, per spec §4.3).
package desugar

import (
	"fmt"

	"github.com/rask-lang/raskc/internal/ast"
)

// synthIDBase is the first NodeId a Desugarer mints for a node it
// introduces (the iterator temporary, its `next()` call). Parser output for
// a single source file is dense starting at 1 and never remotely
// approaches this offset, so synthesized ids can't alias a parsed one
// without a second tree walk to find the real maximum.
const synthIDBase ast.NodeId = 1 << 24

// Desugarer mints fresh NodeIds, starting at synthIDBase, for every node a
// rewrite introduces.
type Desugarer struct {
	next    ast.NodeId
	tmpNext int
}

// New returns a ready Desugarer.
func New() *Desugarer {
	return &Desugarer{next: synthIDBase}
}

// Desugar runs the normalization pass over prog and returns it. It is the
// entry point the pipeline calls between the parser and the resolver.
func Desugar(prog *ast.Program) *ast.Program {
	return New().Run(prog)
}

// Run desugars every declaration body in prog in place and returns it.
func (d *Desugarer) Run(prog *ast.Program) *ast.Program {
	for _, decl := range prog.Decls {
		d.decl(decl)
	}
	return prog
}

func (d *Desugarer) decl(decl ast.Decl) {
	switch n := decl.(type) {
	case *ast.FnDecl:
		if n.Body != nil {
			n.Body = d.block(n.Body)
		}
	case *ast.ExtendDecl:
		for _, m := range n.Methods {
			if m.Body != nil {
				m.Body = d.block(m.Body)
			}
		}
	case *ast.TraitDecl:
		for _, m := range n.Methods {
			if m.Body != nil {
				m.Body = d.block(m.Body)
			}
		}
	case *ast.ExternDecl:
		// extern fns have no body; nothing to desugar.
	case *ast.TestDecl:
		if n.Body != nil {
			n.Body = d.block(n.Body)
		}
	case *ast.BenchmarkDecl:
		if n.Body != nil {
			n.Body = d.block(n.Body)
		}
	case *ast.ConstDecl:
		if n.Value != nil {
			n.Value = d.expr(n.Value)
		}
	}
}

func (d *Desugarer) nextID() ast.NodeId {
	id := d.next
	d.next++
	return id
}

func (d *Desugarer) tmpName() string {
	d.tmpNext++
	return fmt.Sprintf("__iter%d", d.tmpNext)
}

// block rewrites every statement of blk in place, expanding any statement
// that desugars into more than one (the `for` rewrite introduces a
// preceding `let`) and recursing into the tail expression.
func (d *Desugarer) block(blk *ast.BlockExpr) *ast.BlockExpr {
	if blk == nil {
		return nil
	}
	var out []ast.Stmt
	for _, s := range blk.Stmts {
		out = append(out, d.stmt(s)...)
	}
	blk.Stmts = out
	if blk.Tail != nil {
		blk.Tail = d.expr(blk.Tail)
	}
	return blk
}

// stmt rewrites one statement, returning the (possibly multi-statement)
// replacement.
func (d *Desugarer) stmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.ExprStmt:
		n.X = d.expr(n.X)
		return []ast.Stmt{n}
	case *ast.LetStmt:
		if n.Value != nil {
			n.Value = d.expr(n.Value)
		}
		return []ast.Stmt{n}
	case *ast.LetTupleStmt:
		if n.Value != nil {
			n.Value = d.expr(n.Value)
		}
		return []ast.Stmt{n}
	case *ast.ConstStmt:
		if n.Value != nil {
			n.Value = d.expr(n.Value)
		}
		return []ast.Stmt{n}
	case *ast.AssignStmt:
		return []ast.Stmt{d.assign(n)}
	case *ast.ReturnStmt:
		if n.Value != nil {
			n.Value = d.expr(n.Value)
		}
		return []ast.Stmt{n}
	case *ast.WhileStmt:
		n.Cond = d.expr(n.Cond)
		n.Body = d.block(n.Body)
		return []ast.Stmt{n}
	case *ast.WhileLetStmt:
		n.Scrutinee = d.expr(n.Scrutinee)
		n.Body = d.block(n.Body)
		return []ast.Stmt{n}
	case *ast.ForStmt:
		return d.forStmt(n)
	case *ast.LoopStmt:
		n.Body = d.block(n.Body)
		return []ast.Stmt{n}
	case *ast.BreakStmt:
		if n.Value != nil {
			n.Value = d.expr(n.Value)
		}
		return []ast.Stmt{n}
	case *ast.ContinueStmt:
		return []ast.Stmt{n}
	case *ast.EnsureStmt:
		n.Body = d.block(n.Body)
		if n.CatchBody != nil {
			n.CatchBody = d.block(n.CatchBody)
		}
		return []ast.Stmt{n}
	case *ast.ComptimeStmt:
		n.Body = d.block(n.Body)
		return []ast.Stmt{n}
	}
	return []ast.Stmt{s}
}

// assign rewrites `target op= value` into `target = target op value` for
// every compound operator; a plain `=` is left untouched (spec §4.3).
func (d *Desugarer) assign(n *ast.AssignStmt) ast.Stmt {
	n.Target = d.expr(n.Target)
	n.Value = d.expr(n.Value)
	if n.Op == "=" {
		return n
	}
	binOp, ok := compoundToBinary[n.Op]
	if !ok {
		return n
	}
	n.Value = &ast.BinaryExpr{
		ID:    d.nextID(),
		Span:  n.Span,
		Op:    binOp,
		Left:  n.Target,
		Right: n.Value,
	}
	n.Op = "="
	return n
}

var compoundToBinary = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%",
	"&=": "&", "|=": "|", "^=": "^", "<<=": "<<", ">>=": ">>",
}

// forStmt rewrites `for pattern in iterable { body }` into
//
//	let mutate __iterN = iterable
//	while __iterN.next() is Some(pattern) { body }
//
// unconditionally — desugar runs before the resolver/type checker, so it
// has no way to confirm iterable actually produces an iterator (spec §4.3
// "only where iter is known to produce an iterator"). The rewrite is
// applied eagerly for every `for`; a non-iterator operand surfaces instead
// as an ordinary method-resolution diagnostic on the synthesized `.next()`
// call once the type checker runs.
func (d *Desugarer) forStmt(n *ast.ForStmt) []ast.Stmt {
	iterable := d.expr(n.Iterable)
	body := d.block(n.Body)
	name := d.tmpName()
	letStmt := &ast.LetStmt{
		ID:      d.nextID(),
		Span:    n.Span,
		Name:    name,
		Mutable: true,
		Value:   iterable,
	}
	nextCall := &ast.MethodCallExpr{
		ID:       d.nextID(),
		Span:     n.Span,
		Receiver: &ast.Identifier{ID: d.nextID(), Span: n.Span, Value: name},
		Method:   "next",
	}
	whileLet := &ast.WhileLetStmt{
		ID:        d.nextID(),
		Span:      n.Span,
		Label:     n.Label,
		Scrutinee: nextCall,
		Pattern:   &ast.ConstructorPattern{Span: n.Pattern.GetSpan(), Path: []string{"Some"}, Fields: []ast.Pattern{n.Pattern}},
		Body:      body,
	}
	return []ast.Stmt{letStmt, whileLet}
}
