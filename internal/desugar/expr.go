package desugar

import "github.com/rask-lang/raskc/internal/ast"

// expr recurses into every expression shape that can contain a statement
// block or a nested expression, so compound assignment and `for` loops
// buried inside closures, match arms, if/else branches, etc. are also
// desugared. Leaf expressions (literals, identifiers, paths) are returned
// unchanged.
func (d *Desugarer) expr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.BinaryExpr:
		n.Left = d.expr(n.Left)
		n.Right = d.expr(n.Right)
	case *ast.UnaryExpr:
		n.Operand = d.expr(n.Operand)
	case *ast.CallExpr:
		n.Callee = d.expr(n.Callee)
		d.exprSlice(n.Args)
	case *ast.MethodCallExpr:
		n.Receiver = d.expr(n.Receiver)
		d.exprSlice(n.Args)
	case *ast.FieldExpr:
		n.Receiver = d.expr(n.Receiver)
	case *ast.OptionalFieldExpr:
		n.Receiver = d.expr(n.Receiver)
	case *ast.IndexExpr:
		n.Receiver = d.expr(n.Receiver)
		n.Index = d.expr(n.Index)
	case *ast.BlockExpr:
		d.block(n)
	case *ast.IfExpr:
		n.Cond = d.expr(n.Cond)
		d.block(n.Then)
		n.Else = d.expr(n.Else)
	case *ast.IfIsExpr:
		n.Scrutinee = d.expr(n.Scrutinee)
		d.block(n.Then)
		n.Else = d.expr(n.Else)
	case *ast.MatchExpr:
		n.Scrutinee = d.expr(n.Scrutinee)
		for _, arm := range n.Arms {
			arm.Guard = d.expr(arm.Guard)
			arm.Body = d.expr(arm.Body)
		}
	case *ast.TryExpr:
		n.Inner = d.expr(n.Inner)
	case *ast.NullCoalesceExpr:
		n.Left = d.expr(n.Left)
		n.Right = d.expr(n.Right)
	case *ast.RangeExpr:
		n.Start = d.expr(n.Start)
		n.End = d.expr(n.End)
	case *ast.StructLitExpr:
		for _, f := range n.Fields {
			f.Value = d.expr(f.Value)
		}
		n.Spread = d.expr(n.Spread)
	case *ast.ArrayLitExpr:
		d.exprSlice(n.Elems)
	case *ast.ArrayRepeatExpr:
		n.Value = d.expr(n.Value)
		n.Count = d.expr(n.Count)
	case *ast.TupleExpr:
		d.exprSlice(n.Elems)
	case *ast.WithExpr:
		for _, b := range n.Bindings {
			b.Value = d.expr(b.Value)
		}
		d.block(n.Body)
	case *ast.UsingExpr:
		for _, b := range n.Bindings {
			b.Value = d.expr(b.Value)
		}
		d.block(n.Body)
	case *ast.ClosureExpr:
		n.Body = d.expr(n.Body)
	case *ast.CastExpr:
		n.Value = d.expr(n.Value)
	case *ast.SpawnExpr:
		d.block(n.Body)
	case *ast.RawThreadExpr:
		d.block(n.Body)
	case *ast.SelectExpr:
		for _, arm := range n.Arms {
			arm.Channel = d.expr(arm.Channel)
			arm.Body = d.expr(arm.Body)
		}
	case *ast.TimeoutExpr:
		n.Duration = d.expr(n.Duration)
		d.block(n.Body)
	case *ast.DeliverExpr:
		n.Value = d.expr(n.Value)
	case *ast.StepExpr:
		n.Target = d.expr(n.Target)
	case *ast.UnsafeExpr:
		d.block(n.Body)
	case *ast.ComptimeExpr:
		d.block(n.Body)
	case *ast.AssertExpr:
		n.Cond = d.expr(n.Cond)
		n.Message = d.expr(n.Message)
	case *ast.CheckExpr:
		n.Cond = d.expr(n.Cond)
		n.Message = d.expr(n.Message)
	}
	return e
}

func (d *Desugarer) exprSlice(xs []ast.Expr) {
	for i, x := range xs {
		xs[i] = d.expr(x)
	}
}
