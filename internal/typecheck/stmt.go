package typecheck

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/resolver"
	"github.com/rask-lang/raskc/internal/typesystem"
)

// noExpected marks "no bidirectional hint" for checkExpr: a real hint is
// always a non-empty primitive name or a composite Kind, so the zero Type
// value never collides with one in practice.
var noExpected = typesystem.Type{}

func hasHint(t typesystem.Type) bool {
	return t.Kind != typesystem.KPrimitive || t.Prim != ""
}

// checkBlockExpr checks a block's statements and tail expression in a fresh
// nested scope, returning the block's value type (Unit when there is no
// tail expression).
func (c *Checker) checkBlockExpr(blk *ast.BlockExpr) typesystem.Type {
	if blk == nil {
		return typesystem.Unit
	}
	c.pushScope()
	for _, s := range blk.Stmts {
		c.checkStmt(s)
	}
	var tailTy typesystem.Type
	if blk.Tail != nil {
		tailTy = c.checkExpr(blk.Tail, noExpected)
	} else {
		tailTy = typesystem.Unit
	}
	c.popScope()
	c.setType(blk.GetID(), tailTy)
	return tailTy
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		c.checkExpr(n.X, noExpected)
	case *ast.LetStmt:
		c.checkLetStmt(n)
	case *ast.LetTupleStmt:
		c.checkLetTupleStmt(n)
	case *ast.ConstStmt:
		c.checkConstStmt(n)
	case *ast.AssignStmt:
		c.checkAssignStmt(n)
	case *ast.ReturnStmt:
		c.checkReturnStmt(n)
	case *ast.WhileStmt:
		condTy := c.checkExpr(n.Cond, typesystem.Bool)
		c.equal(typesystem.Bool, condTy, n.Cond.GetSpan())
		c.checkBlockExpr(n.Body)
	case *ast.WhileLetStmt:
		scrutTy := c.checkExpr(n.Scrutinee, noExpected)
		c.pushScope()
		c.bindPattern(n.Pattern, scrutTy)
		c.checkBlockExpr(n.Body)
		c.popScope()
	case *ast.ForStmt:
		c.checkForStmt(n)
	case *ast.LoopStmt:
		c.checkBlockExpr(n.Body)
	case *ast.BreakStmt:
		if n.Value != nil {
			c.checkExpr(n.Value, noExpected)
		}
	case *ast.ContinueStmt:
	case *ast.EnsureStmt:
		c.checkBlockExpr(n.Body)
		if n.CatchBody != nil {
			c.pushScope()
			if n.CatchName != "" {
				c.define(n.CatchName, typesystem.UnresolvedNamed([]string{"Error"}))
			}
			c.checkBlockExpr(n.CatchBody)
			c.popScope()
		}
	case *ast.ComptimeStmt:
		// Front-end only (spec's comptime non-goal); still type its body
		// permissively so references inside resolve, but nothing from it
		// feeds the enclosing function's return/tail type.
		c.checkBlockExpr(n.Body)
	}
}

func (c *Checker) checkLetStmt(n *ast.LetStmt) {
	var declared typesystem.Type
	if n.Type != nil {
		declared = c.convertType(n.Type, c.curFn().typeParams)
	}
	hint := noExpected
	if n.Type != nil {
		hint = declared
	}
	valTy := c.checkExpr(n.Value, hint)
	finalTy := valTy
	if n.Type != nil {
		c.equal(declared, valTy, n.Span)
		finalTy = declared
	}
	c.define(n.Name, finalTy)
	c.setType(n.ID, finalTy)
}

func (c *Checker) checkLetTupleStmt(n *ast.LetTupleStmt) {
	valTy := c.checkExpr(n.Value, noExpected)
	elemVars := make([]typesystem.Type, len(n.Names))
	for i := range elemVars {
		elemVars[i] = c.ic.Fresh()
	}
	c.equal(valTy, typesystem.Tuple(elemVars...), n.Span)
	for i, name := range n.Names {
		c.define(name, elemVars[i])
	}
}

func (c *Checker) checkConstStmt(n *ast.ConstStmt) {
	var declared typesystem.Type
	if n.Type != nil {
		declared = c.convertType(n.Type, c.curFn().typeParams)
	}
	hint := noExpected
	if n.Type != nil {
		hint = declared
	}
	valTy := c.checkExpr(n.Value, hint)
	finalTy := valTy
	if n.Type != nil {
		c.equal(declared, valTy, n.Span)
		finalTy = declared
	}
	c.define(n.Name, finalTy)
	c.setType(n.ID, finalTy)
}

func (c *Checker) checkAssignStmt(n *ast.AssignStmt) {
	targetTy := c.checkExpr(n.Target, noExpected)
	valTy := c.checkExpr(n.Value, targetTy)
	c.equal(targetTy, valTy, n.Span)
	c.checkMutateTarget(n.Target)
}

// checkMutateTarget enforces spec §4.5's read-only-parameter rule at the
// type-checking layer (E0594); the deeper per-borrow ESAD enforcement
// (O004/O005) belongs to the ownership checker over the same AST.
func (c *Checker) checkMutateTarget(target ast.Expr) {
	switch t := target.(type) {
	case *ast.Identifier:
		sym, ok := c.symbolOf(t.ID)
		if !ok || sym.Kind != resolver.SymParam || sym.Name == "self" {
			return
		}
		if !sym.Mutable {
			c.errorf(t.Span, diagnostics.CodeMutateReadOnlyParam, "cannot assign to '%s': parameter is read-only (missing 'mutate')", sym.Name)
		}
	case *ast.FieldExpr:
		if id, ok := t.Receiver.(*ast.Identifier); ok && id.Value == "self" {
			if ctx := c.curFn(); ctx.hasSelf && ctx.selfMode() == typesystem.SelfValue {
				c.errorf(t.Span, diagnostics.CodeMutateReadOnlyParam, "cannot mutate field '%s' of a read-only 'self' (method needs 'mutate self')", t.Field)
			}
		}
	}
}

func (c *Checker) checkReturnStmt(n *ast.ReturnStmt) {
	retType := c.curFn().retType
	var valTy typesystem.Type = typesystem.Unit
	if n.Value != nil {
		valTy = c.checkExpr(n.Value, retType)
	}
	c.equal(retType, valTy, n.Span)
}

func (c *Checker) checkForStmt(n *ast.ForStmt) {
	// Reachable only when typecheck runs ahead of desugar (e.g. direct unit
	// tests); the pipeline always desugars `for` into WhileLetStmt first
	// (spec §4.3), so production input never hits this arm.
	elemTy := c.ic.Fresh()
	c.checkExpr(n.Iterable, noExpected)
	c.pushScope()
	c.bindPattern(n.Pattern, elemTy)
	c.checkBlockExpr(n.Body)
	c.popScope()
}
