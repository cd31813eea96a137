package typecheck

import "github.com/rask-lang/raskc/internal/ast"

// blockAlwaysReturns reports whether every path through blk's statement list
// reaches a `return` (or an unconditional loop with no `break`) — used to
// decide whether a function whose body has no tail expression satisfies its
// declared return type (spec §4.5 "explicit-return-on-all-paths").
func blockAlwaysReturns(blk *ast.BlockExpr) bool {
	if blk == nil {
		return false
	}
	for _, s := range blk.Stmts {
		if stmtAlwaysReturns(s) {
			return true
		}
	}
	return blk.Tail != nil && exprAlwaysReturns(blk.Tail)
}

func stmtAlwaysReturns(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.ExprStmt:
		return exprAlwaysReturns(n.X)
	case *ast.LoopStmt:
		return !containsBreak(n.Body, n.Label)
	case *ast.EnsureStmt:
		return blockAlwaysReturns(n.Body)
	}
	return false
}

func exprAlwaysReturns(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.IfExpr:
		if n.Else == nil {
			return false
		}
		return blockAlwaysReturns(n.Then) && elseAlwaysReturns(n.Else)
	case *ast.IfIsExpr:
		if n.Else == nil {
			return false
		}
		return blockAlwaysReturns(n.Then) && elseAlwaysReturns(n.Else)
	case *ast.MatchExpr:
		if len(n.Arms) == 0 {
			return false
		}
		for _, arm := range n.Arms {
			if !exprAlwaysReturns(arm.Body) {
				return false
			}
		}
		return true
	case *ast.BlockExpr:
		return blockAlwaysReturns(n)
	}
	return false
}

func elseAlwaysReturns(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.BlockExpr:
		return blockAlwaysReturns(n)
	case *ast.IfExpr, *ast.IfIsExpr:
		return exprAlwaysReturns(n)
	}
	return false
}

// containsBreak reports whether body has a `break` targeting this loop
// (unlabeled, or labeled matching label) anywhere within it, not crossing
// into a nested loop with its own distinct label.
func containsBreak(body *ast.BlockExpr, label string) bool {
	found := false
	nested := 0
	var walkExpr func(ast.Expr)
	var walkStmt func(ast.Stmt)
	var walkBlock func(*ast.BlockExpr)
	walkNested := func(b *ast.BlockExpr) {
		nested++
		walkBlock(b)
		nested--
	}

	walkBlock = func(b *ast.BlockExpr) {
		if b == nil || found {
			return
		}
		for _, s := range b.Stmts {
			walkStmt(s)
		}
		if b.Tail != nil {
			walkExpr(b.Tail)
		}
	}
	walkStmt = func(s ast.Stmt) {
		if found {
			return
		}
		switch n := s.(type) {
		case *ast.ExprStmt:
			walkExpr(n.X)
		case *ast.BreakStmt:
			if (n.Label == "" && nested == 0) || (label != "" && n.Label == label) {
				found = true
			}
		case *ast.EnsureStmt:
			walkBlock(n.Body)
			walkBlock(n.CatchBody)
		// Inside a nested loop an unlabeled break targets the inner loop,
		// so only a break labeled for this loop counts there.
		case *ast.WhileStmt:
			walkNested(n.Body)
		case *ast.WhileLetStmt:
			walkNested(n.Body)
		case *ast.LoopStmt:
			walkNested(n.Body)
		case *ast.ForStmt:
			walkNested(n.Body)
		}
	}
	walkExpr = func(e ast.Expr) {
		if found || e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.IfExpr:
			walkBlock(n.Then)
			walkExpr(n.Else)
		case *ast.IfIsExpr:
			walkBlock(n.Then)
			walkExpr(n.Else)
		case *ast.MatchExpr:
			for _, arm := range n.Arms {
				walkExpr(arm.Body)
			}
		case *ast.BlockExpr:
			walkBlock(n)
		}
	}
	walkBlock(body)
	return found
}
