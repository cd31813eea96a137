package resolver

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
)

// expr resolves every name use-site reachable from e, recording
// NodeId → SymbolId in r.resolutions and recursing into every nested
// sub-expression and block.
func (r *Resolver) expr(sc *scope, e ast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Identifier:
		if id, ok := sc.lookup(n.Value); ok {
			r.resolutions[n.ID] = id
		} else {
			r.errorf(n.Span, diagnostics.CodeResolveUndefinedName, "undefined name '%s'", n.Value)
		}
	case *ast.PathExpr:
		// Qualified paths (`std.io.println`, `Color.Red`) are disambiguated
		// by the type checker once module/enum member sets are known; the
		// resolver only confirms the head segment names something in scope.
		if len(n.Segments) > 0 {
			if id, ok := sc.lookup(n.Segments[0]); ok {
				r.resolutions[n.ID] = id
			} else {
				r.errorf(n.Span, diagnostics.CodeResolveUndefinedName, "undefined name '%s'", n.Segments[0])
			}
		}
	case *ast.BinaryExpr:
		r.expr(sc, n.Left)
		r.expr(sc, n.Right)
	case *ast.UnaryExpr:
		r.expr(sc, n.Operand)
	case *ast.CallExpr:
		r.expr(sc, n.Callee)
		r.exprSlice(sc, n.Args)
	case *ast.MethodCallExpr:
		r.expr(sc, n.Receiver)
		r.exprSlice(sc, n.Args)
	case *ast.FieldExpr:
		r.expr(sc, n.Receiver)
	case *ast.OptionalFieldExpr:
		r.expr(sc, n.Receiver)
	case *ast.IndexExpr:
		r.expr(sc, n.Receiver)
		r.expr(sc, n.Index)
	case *ast.BlockExpr:
		r.block(sc, n)
	case *ast.IfExpr:
		r.expr(sc, n.Cond)
		r.block(sc, n.Then)
		r.expr(sc, n.Else)
	case *ast.IfIsExpr:
		r.expr(sc, n.Scrutinee)
		ifSc := newScope(ScopeBlock, sc)
		r.pattern(ifSc, n.Pattern)
		r.block(ifSc, n.Then)
		r.expr(sc, n.Else)
	case *ast.MatchExpr:
		r.expr(sc, n.Scrutinee)
		for _, arm := range n.Arms {
			armSc := newScope(ScopeBlock, sc)
			r.pattern(armSc, arm.Pattern)
			if arm.Guard != nil {
				r.expr(armSc, arm.Guard)
			}
			r.expr(armSc, arm.Body)
		}
	case *ast.TryExpr:
		r.expr(sc, n.Inner)
	case *ast.NullCoalesceExpr:
		r.expr(sc, n.Left)
		r.expr(sc, n.Right)
	case *ast.RangeExpr:
		r.expr(sc, n.Start)
		r.expr(sc, n.End)
	case *ast.StructLitExpr:
		for _, f := range n.Fields {
			r.expr(sc, f.Value)
		}
		r.expr(sc, n.Spread)
	case *ast.ArrayLitExpr:
		r.exprSlice(sc, n.Elems)
	case *ast.ArrayRepeatExpr:
		r.expr(sc, n.Value)
		r.expr(sc, n.Count)
	case *ast.TupleExpr:
		r.exprSlice(sc, n.Elems)
	case *ast.WithExpr:
		withSc := newScope(ScopeBlock, sc)
		for _, b := range n.Bindings {
			r.expr(withSc, b.Value)
			id := r.table.add(b.Name, SymLocal, false, nil)
			withSc.define(b.Name, id)
		}
		r.block(withSc, n.Body)
	case *ast.UsingExpr:
		usingSc := newScope(ScopeBlock, sc)
		for _, b := range n.Bindings {
			r.expr(usingSc, b.Value)
			id := r.table.add(b.Name, SymLocal, false, nil)
			usingSc.define(b.Name, id)
		}
		r.block(usingSc, n.Body)
	case *ast.ClosureExpr:
		closureSc := newScope(ScopeClosure, sc)
		r.bindParams(closureSc, n.Params)
		r.expr(closureSc, n.Body)
	case *ast.CastExpr:
		r.expr(sc, n.Value)
	case *ast.SpawnExpr:
		r.block(sc, n.Body)
	case *ast.RawThreadExpr:
		r.block(sc, n.Body)
	case *ast.SelectExpr:
		for _, arm := range n.Arms {
			r.expr(sc, arm.Channel)
			armSc := sc
			if arm.Binding != "" {
				armSc = newScope(ScopeBlock, sc)
				id := r.table.add(arm.Binding, SymLocal, false, nil)
				armSc.define(arm.Binding, id)
			}
			r.expr(armSc, arm.Body)
		}
	case *ast.TimeoutExpr:
		r.expr(sc, n.Duration)
		r.block(sc, n.Body)
	case *ast.DeliverExpr:
		r.expr(sc, n.Value)
	case *ast.StepExpr:
		r.expr(sc, n.Target)
	case *ast.UnsafeExpr:
		r.block(sc, n.Body)
	case *ast.ComptimeExpr:
		r.block(sc, n.Body)
	case *ast.AssertExpr:
		r.expr(sc, n.Cond)
		r.expr(sc, n.Message)
	case *ast.CheckExpr:
		r.expr(sc, n.Cond)
		r.expr(sc, n.Message)
	}
}

func (r *Resolver) exprSlice(sc *scope, xs []ast.Expr) {
	for _, x := range xs {
		r.expr(sc, x)
	}
}
