package mono

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/config"
	"github.com/rask-lang/raskc/internal/resolver"
	"github.com/rask-lang/raskc/internal/typesystem"
)

// workItem is one entry of the BFS work queue (spec §4.7 "breadth-first walk
// function bodies, recording every (callee SymbolId, concrete type arg
// tuple) seen"), grounded on rask-mono/src/reachability.rs's
// ReachabilityWalker: a discovered map plus FIFO queue, draining until
// empty and returning every key seen along the way.
type workItem struct {
	decl *ast.FnDecl
	sym  resolver.SymbolId
	key  InstanceKey
	args []typesystem.Type
}

type enqueueFn func(decl *ast.FnDecl, sym resolver.SymbolId, args []typesystem.Type)

// walkReachable seeds the queue from every entry point (spec §4.7: "main"
// if present, else every public top-level function in library mode), then
// drains it breadth-first, discovering call sites and their concrete type
// arguments from the already-typed program, and instantiating each newly
// discovered (symbol, args) pair exactly once.
func (m *monomorphizer) walkReachable() {
	var queue []workItem
	discovered := map[InstanceKey]bool{}

	enqueue := enqueueFn(func(decl *ast.FnDecl, sym resolver.SymbolId, args []typesystem.Type) {
		if decl == nil {
			return
		}
		key := keyOf(sym, args)
		if discovered[key] {
			return
		}
		discovered[key] = true
		queue = append(queue, workItem{decl: decl, sym: sym, key: key, args: args})
	})

	hasMain := false
	for _, d := range m.prog.Decls {
		if fn, ok := d.(*ast.FnDecl); ok && fn.Name == config.EntryPointName {
			hasMain = true
			enqueue(fn, m.declByPtr[fn], nil)
		}
	}
	if !hasMain {
		for _, d := range m.prog.Decls {
			if fn, ok := d.(*ast.FnDecl); ok && fn.IsPublic {
				enqueue(fn, m.declByPtr[fn], nil)
			}
		}
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		m.instantiate(item)
		m.visitBody(item, enqueue)
	}
}

// typeParamSub builds the substitution this instance's body should apply to
// any CallTypeArgs recorded against its (still-generic) original NodeTypes,
// from the original FnDecl's own type-parameter names zipped with args.
func typeParamSub(decl *ast.FnDecl, args []typesystem.Type) typesystem.Substitution {
	if len(args) == 0 {
		return nil
	}
	sub := make(typesystem.Substitution, len(decl.TypeParams))
	for i, tp := range decl.TypeParams {
		if i < len(args) {
			sub[tp.Name] = args[i]
		}
	}
	return sub
}

// visitBody walks item's original (unsubstituted) body looking for call and
// method-call sites, substituting item's own type-parameter bindings into
// whatever concrete or still-abstract type arguments the type checker
// recorded for each, and enqueues every one reached.
func (m *monomorphizer) visitBody(item workItem, enqueue enqueueFn) {
	sub := typeParamSub(item.decl, item.args)
	var walkExpr func(e ast.Expr)
	var walkStmt func(s ast.Stmt)
	var walkBlock func(b *ast.BlockExpr)

	resolveArgs := func(id ast.NodeId) []typesystem.Type {
		raw := m.tc.CallTypeArgs[id]
		if len(raw) == 0 || sub == nil {
			return raw
		}
		out := make([]typesystem.Type, len(raw))
		for i, t := range raw {
			out[i] = typesystem.ApplyNamed(t, sub)
		}
		return out
	}

	walkBlock = func(b *ast.BlockExpr) {
		if b == nil {
			return
		}
		for _, s := range b.Stmts {
			walkStmt(s)
		}
		walkExpr(b.Tail)
	}
	walkStmt = func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.ExprStmt:
			walkExpr(n.X)
		case *ast.LetStmt:
			walkExpr(n.Value)
		case *ast.LetTupleStmt:
			walkExpr(n.Value)
		case *ast.ConstStmt:
			walkExpr(n.Value)
		case *ast.AssignStmt:
			walkExpr(n.Target)
			walkExpr(n.Value)
		case *ast.ReturnStmt:
			walkExpr(n.Value)
		case *ast.WhileStmt:
			walkExpr(n.Cond)
			walkBlock(n.Body)
		case *ast.WhileLetStmt:
			walkExpr(n.Scrutinee)
			walkBlock(n.Body)
		case *ast.ForStmt:
			walkExpr(n.Iterable)
			walkBlock(n.Body)
		case *ast.LoopStmt:
			walkBlock(n.Body)
		case *ast.BreakStmt:
			walkExpr(n.Value)
		case *ast.EnsureStmt:
			walkBlock(n.Body)
			walkBlock(n.CatchBody)
		case *ast.ComptimeStmt:
			walkBlock(n.Body)
		}
	}
	walkExpr = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.BinaryExpr:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.UnaryExpr:
			walkExpr(n.Operand)
		case *ast.CallExpr:
			walkExpr(n.Callee)
			for _, a := range n.Args {
				walkExpr(a)
			}
			m.visitCall(n, resolveArgs(n.GetID()), enqueue)
		case *ast.MethodCallExpr:
			walkExpr(n.Receiver)
			for _, a := range n.Args {
				walkExpr(a)
			}
			m.visitMethodCall(n, resolveArgs(n.GetID()), enqueue)
		case *ast.FieldExpr:
			walkExpr(n.Receiver)
		case *ast.OptionalFieldExpr:
			walkExpr(n.Receiver)
		case *ast.IndexExpr:
			walkExpr(n.Receiver)
			walkExpr(n.Index)
		case *ast.BlockExpr:
			walkBlock(n)
		case *ast.IfExpr:
			walkExpr(n.Cond)
			walkBlock(n.Then)
			walkExpr(n.Else)
		case *ast.IfIsExpr:
			walkExpr(n.Scrutinee)
			walkBlock(n.Then)
			walkExpr(n.Else)
		case *ast.MatchExpr:
			walkExpr(n.Scrutinee)
			for _, arm := range n.Arms {
				walkExpr(arm.Guard)
				walkExpr(arm.Body)
			}
		case *ast.TryExpr:
			walkExpr(n.Inner)
		case *ast.NullCoalesceExpr:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.RangeExpr:
			walkExpr(n.Start)
			walkExpr(n.End)
		case *ast.StructLitExpr:
			for _, f := range n.Fields {
				walkExpr(f.Value)
			}
			walkExpr(n.Spread)
		case *ast.ArrayLitExpr:
			for _, el := range n.Elems {
				walkExpr(el)
			}
		case *ast.ArrayRepeatExpr:
			walkExpr(n.Value)
			walkExpr(n.Count)
		case *ast.TupleExpr:
			for _, el := range n.Elems {
				walkExpr(el)
			}
		case *ast.WithExpr:
			for _, b := range n.Bindings {
				walkExpr(b.Value)
			}
			walkBlock(n.Body)
		case *ast.UsingExpr:
			for _, b := range n.Bindings {
				walkExpr(b.Value)
			}
			walkBlock(n.Body)
		case *ast.ClosureExpr:
			if blk, ok := n.Body.(*ast.BlockExpr); ok {
				walkBlock(blk)
			} else {
				walkExpr(n.Body)
			}
		case *ast.CastExpr:
			walkExpr(n.Value)
		case *ast.SpawnExpr:
			walkBlock(n.Body)
		case *ast.RawThreadExpr:
			walkBlock(n.Body)
		case *ast.SelectExpr:
			for _, arm := range n.Arms {
				walkExpr(arm.Channel)
				walkExpr(arm.Body)
			}
		case *ast.TimeoutExpr:
			walkExpr(n.Duration)
			walkBlock(n.Body)
		case *ast.DeliverExpr:
			walkExpr(n.Value)
		case *ast.StepExpr:
			walkExpr(n.Target)
		case *ast.UnsafeExpr:
			walkBlock(n.Body)
		case *ast.ComptimeExpr:
			walkBlock(n.Body)
		case *ast.AssertExpr:
			walkExpr(n.Cond)
			walkExpr(n.Message)
		case *ast.CheckExpr:
			walkExpr(n.Cond)
			walkExpr(n.Message)
		}
	}

	walkBlock(item.decl.Body)
}

func (m *monomorphizer) visitCall(n *ast.CallExpr, args []typesystem.Type, enqueue enqueueFn) {
	ident, ok := n.Callee.(*ast.Identifier)
	if !ok {
		return
	}
	sid, ok := m.res.Resolutions[ident.ID]
	if !ok {
		return
	}
	decl, ok := m.declBySymbol[sid]
	if !ok {
		return
	}
	enqueue(decl, sid, args)
}

func (m *monomorphizer) visitMethodCall(n *ast.MethodCallExpr, args []typesystem.Type, enqueue enqueueFn) {
	recvType := m.tc.NodeTypes[n.Receiver.GetID()]
	var recvID typesystem.TypeId
	switch recvType.Kind {
	case typesystem.KNamed:
		recvID = recvType.Named
	case typesystem.KGeneric:
		recvID = recvType.Base
	default:
		return
	}
	def := m.tc.Table.Get(recvID)
	if def == nil {
		return
	}
	method, ok := def.Method(n.Method)
	if !ok || method.Decl == nil {
		return
	}
	sid, ok := m.declByPtr[method.Decl]
	if !ok {
		return
	}
	enqueue(method.Decl, sid, args)
}
