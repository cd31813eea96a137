package ownership

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/resolver"
	"github.com/rask-lang/raskc/internal/token"
	"github.com/rask-lang/raskc/internal/typesystem"
)

// block walks blk's statements and tail expression directly in sc (the
// caller decides whether sc is a fresh child scope or the function's top
// scope), then runs the scope-exit check (spec §4.6 "Scope-exit check").
func (c *Checker) block(sc *funcScope, blk *ast.BlockExpr) {
	if blk == nil {
		return
	}
	for _, st := range blk.Stmts {
		if _, ok := st.(*ast.EnsureStmt); ok {
			sc.hasEnsure = true
		}
	}
	for _, st := range blk.Stmts {
		c.stmt(sc, st)
	}
	if blk.Tail != nil {
		c.exprWalk(sc, blk.Tail)
	}
	c.scopeExitCheck(sc)
}

// nestedBlock runs block in a fresh child scope of parent.
func (c *Checker) nestedBlock(parent *funcScope, blk *ast.BlockExpr) {
	c.block(newFuncScope(parent), blk)
}

func (c *Checker) scopeExitCheck(sc *funcScope) {
	for _, b := range sc.bindings {
		if b.isResource && !b.consumed && !b.transferred && !sc.hasEnsure {
			c.errorf(b.declSpan, diagnostics.CodeUnreleasedResource,
				"resource '%s' is never consumed or released before its scope ends", b.name)
		}
	}
}

func (c *Checker) stmt(sc *funcScope, st ast.Stmt) {
	defer c.clearBorrowLog()
	switch n := st.(type) {
	case *ast.ExprStmt:
		c.exprWalk(sc, n.X)
	case *ast.LetStmt:
		c.letBinding(sc, n.Name, n.Value, n.Span)
	case *ast.LetTupleStmt:
		c.exprWalk(sc, n.Value)
		// Destructuring consumes the scrutinee by value; the individual
		// bound names are plain (non-resource) locals in this pass since
		// nested resource-in-tuple tracking is out of scope here.
		if name, ok := identName(n.Value); ok {
			c.consumeIdent(sc, name, n.Span)
		}
	case *ast.ConstStmt:
		c.exprWalk(sc, n.Value)
	case *ast.AssignStmt:
		c.assign(sc, n)
	case *ast.ReturnStmt:
		if n.Value != nil {
			c.exprWalk(sc, n.Value)
			if name, ok := identName(n.Value); ok {
				if _, b := sc.lookup(name); b != nil && b.isResource {
					b.transferred = true
					b.consumed = true
				}
			}
		}
	case *ast.WhileStmt:
		c.exprWalk(sc, n.Cond)
		c.nestedBlock(sc, n.Body)
	case *ast.WhileLetStmt:
		c.exprWalk(sc, n.Scrutinee)
		c.nestedBlock(sc, n.Body)
	case *ast.ForStmt:
		c.exprWalk(sc, n.Iterable)
		c.nestedBlock(sc, n.Body)
	case *ast.LoopStmt:
		c.nestedBlock(sc, n.Body)
	case *ast.BreakStmt:
		c.exprWalk(sc, n.Value)
	case *ast.EnsureStmt:
		c.nestedBlock(sc, n.Body)
		c.nestedBlock(sc, n.CatchBody)
	case *ast.ComptimeStmt:
		c.nestedBlock(sc, n.Body)
	}
}

func (c *Checker) letBinding(sc *funcScope, name string, value ast.Expr, span token.Span) {
	c.exprWalk(sc, value)
	if srcName, ok := identName(value); ok {
		// `let h2 = h` moves a resource binding.
		if _, b := sc.lookup(srcName); b != nil && b.isResource {
			c.consumeIdent(sc, srcName, span)
		}
	}
	// Persistent borrow: `let v = &place`.
	if u, ok := value.(*ast.UnaryExpr); ok && u.Op == "&" {
		if place := placeOf(u.Operand); place != "" {
			root := place
			for i := 0; i < len(place); i++ {
				if place[i] == '.' {
					root = place[:i]
					break
				}
			}
			sc.borrows = append(sc.borrows, persistentBorrow{source: root, viewVar: name, span: span})
		}
	}
	t := c.typeOf(value)
	if c.isResourceType(t) {
		sc.bindings[name] = &binding{name: name, isResource: true, id: c.allocID(), declSpan: span, createdDepth: sc.depth}
	}
}

func (c *Checker) assign(sc *funcScope, n *ast.AssignStmt) {
	place := placeOf(n.Target)
	root := place
	for i := 0; i < len(place); i++ {
		if place[i] == '.' {
			root = place[:i]
			break
		}
	}
	if root != "" {
		if bw, ok := c.findLiveBorrow(sc, root); ok {
			c.errorf(n.Span, diagnostics.CodeMutateBorrowedSrc,
				"cannot assign to '%s' while it is borrowed by '%s'", root, bw.viewVar).
				WithNote("borrow taken here").WithLabel(bw.span, "borrow of '"+bw.source+"' starts here")
		}
	}
	if name, ok := identName(n.Target); ok {
		if symID, ok2 := c.res.Resolutions[n.Target.GetID()]; ok2 {
			if sym, ok3 := c.res.Table.Get(symID); ok3 && isReadOnlyParam(sym) {
				c.errorf(n.Span, diagnostics.CodeMutateReadOnlyParm,
					"cannot assign to read-only parameter '%s' (mark it 'mutate' to allow writes)", name)
			}
		}
		// Reassigning a resource local marks its binding transferred and
		// consumed whatever the new value is, so neither the old nor the
		// new value is reported as unreleased at scope exit (codegen-level
		// drop is out of scope).
		if _, b := sc.lookup(name); b != nil && b.isResource {
			b.transferred = true
			b.consumed = true
		}
	} else {
		c.exprWalk(sc, n.Target)
	}
	c.exprWalk(sc, n.Value)
	c.checkBorrowConflicts(n.Span)
}

// isReadOnlyParam reports whether sym is a parameter binding not marked
// `mutate` (spec §4.6 "Read-only parameters").
func isReadOnlyParam(sym resolver.Symbol) bool {
	return sym.Kind == resolver.SymParam && !sym.Mutable
}

// findLiveBorrow walks sc's scope chain outward for a persistent borrow
// whose source is name.
func (c *Checker) findLiveBorrow(sc *funcScope, name string) (persistentBorrow, bool) {
	for s := sc; s != nil; s = s.parent {
		for _, b := range s.borrows {
			if b.source == name {
				return b, true
			}
		}
	}
	return persistentBorrow{}, false
}

func (c *Checker) clearBorrowLog() { c.borrowLog = nil }

// checkBorrowConflicts applies ESAD phase 1 over the borrows logged while
// evaluating the statement at span: any write-mode place that overlaps
// another borrow of the same statement is a conflict (spec §4.6 "no two
// borrows of overlapping places may coexist in conflicting modes").
func (c *Checker) checkBorrowConflicts(span token.Span) {
	for i, a := range c.borrowLog {
		if a.mode != borrowWrite || a.place == "" {
			continue
		}
		for j, b := range c.borrowLog {
			if i == j || b.place == "" {
				continue
			}
			if overlaps(a.place, b.place) {
				c.errorf(span, diagnostics.CodeConflictingBorrows,
					"conflicting borrows of '%s' within one expression", a.place)
				return
			}
		}
	}
}

func overlaps(a, b string) bool {
	if a == b {
		return true
	}
	return isPrefixPlace(a, b) || isPrefixPlace(b, a)
}

func isPrefixPlace(prefix, full string) bool {
	if len(full) <= len(prefix) {
		return false
	}
	return full[:len(prefix)] == prefix && full[len(prefix)] == '.'
}

// consumeIdent marks name's binding (wherever in the scope chain it was
// declared) as consumed, reporting UseAfterMove if it already was (spec
// §4.6 "Consumption"/"any later use is UseAfterMove").
func (c *Checker) consumeIdent(sc *funcScope, name string, span token.Span) {
	_, b := sc.lookup(name)
	if b == nil || !b.isResource {
		return
	}
	if b.consumed {
		c.errorf(span, diagnostics.CodeUseAfterMove,
			"use of '%s' after it was already moved", name).
			WithLabel(b.consumedAt, "value moved here")
		return
	}
	b.consumed = true
	b.consumedAt = span
}

// argExpr walks one call/method-call argument, consuming it if take is set
// and it's a bare identifier naming a resource local.
func (c *Checker) argExpr(sc *funcScope, e ast.Expr, take bool) {
	if take {
		if name, ok := identName(e); ok {
			c.consumeIdent(sc, name, e.GetSpan())
			return
		}
	}
	c.exprWalk(sc, e)
}

// exprWalk is the generic expression traversal: it recurses into every
// subexpression, flags UseAfterMove on a bare read of an already-consumed
// resource local, and special-cases Call/MethodCall to apply the
// function/method signature's `take`/`mutate` parameter modes.
func (c *Checker) exprWalk(sc *funcScope, e ast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Identifier:
		if _, b := sc.lookup(n.Value); b != nil && b.isResource && b.consumed {
			c.errorf(n.Span, diagnostics.CodeUseAfterMove,
				"use of '%s' after it was already moved", n.Value).
				WithLabel(b.consumedAt, "value moved here")
		}
	case *ast.BinaryExpr:
		c.exprWalk(sc, n.Left)
		c.exprWalk(sc, n.Right)
	case *ast.UnaryExpr:
		if n.Op == "&" {
			if place := placeOf(n.Operand); place != "" {
				c.borrowLog = append(c.borrowLog, activeBorrow{place: place, mode: borrowRead, span: n.Span})
			}
			return
		}
		c.exprWalk(sc, n.Operand)
	case *ast.CallExpr:
		c.call(sc, n)
	case *ast.MethodCallExpr:
		c.methodCall(sc, n)
	case *ast.FieldExpr:
		c.exprWalk(sc, n.Receiver)
		if place := placeOf(n); place != "" {
			c.borrowLog = append(c.borrowLog, activeBorrow{place: place, mode: borrowRead, span: n.Span})
		}
	case *ast.OptionalFieldExpr:
		c.exprWalk(sc, n.Receiver)
	case *ast.IndexExpr:
		c.exprWalk(sc, n.Receiver)
		c.exprWalk(sc, n.Index)
	case *ast.BlockExpr:
		c.nestedBlock(sc, n)
	case *ast.IfExpr:
		c.exprWalk(sc, n.Cond)
		c.nestedBlock(sc, n.Then)
		c.exprWalk(sc, n.Else)
	case *ast.IfIsExpr:
		c.exprWalk(sc, n.Scrutinee)
		c.consumeScrutinee(sc, n.Scrutinee, n.Span)
		c.nestedBlock(sc, n.Then)
		c.exprWalk(sc, n.Else)
	case *ast.MatchExpr:
		c.exprWalk(sc, n.Scrutinee)
		c.consumeScrutinee(sc, n.Scrutinee, n.Span)
		for _, arm := range n.Arms {
			c.exprWalk(sc, arm.Guard)
			c.exprWalk(sc, arm.Body)
		}
	case *ast.TryExpr:
		c.exprWalk(sc, n.Inner)
	case *ast.NullCoalesceExpr:
		c.exprWalk(sc, n.Left)
		c.exprWalk(sc, n.Right)
	case *ast.RangeExpr:
		c.exprWalk(sc, n.Start)
		c.exprWalk(sc, n.End)
	case *ast.StructLitExpr:
		for _, f := range n.Fields {
			c.exprWalk(sc, f.Value)
		}
		c.exprWalk(sc, n.Spread)
	case *ast.ArrayLitExpr:
		for _, el := range n.Elems {
			c.exprWalk(sc, el)
		}
	case *ast.ArrayRepeatExpr:
		c.exprWalk(sc, n.Value)
		c.exprWalk(sc, n.Count)
	case *ast.TupleExpr:
		for _, el := range n.Elems {
			c.exprWalk(sc, el)
		}
	case *ast.WithExpr:
		for _, b := range n.Bindings {
			c.exprWalk(sc, b.Value)
		}
		c.nestedBlock(sc, n.Body)
	case *ast.UsingExpr:
		for _, b := range n.Bindings {
			c.exprWalk(sc, b.Value)
		}
		c.nestedBlock(sc, n.Body)
	case *ast.ClosureExpr:
		inner := newFuncScope(sc)
		for _, p := range n.Params {
			if c.isResourceTypeExpr(p.Type) {
				inner.bindings[p.Name] = &binding{name: p.Name, isResource: true, id: c.allocID(), declSpan: p.Span}
			}
		}
		if blk, ok := n.Body.(*ast.BlockExpr); ok {
			c.block(inner, blk)
		} else {
			c.exprWalk(inner, n.Body)
			c.scopeExitCheck(inner)
		}
	case *ast.CastExpr:
		c.exprWalk(sc, n.Value)
	case *ast.SpawnExpr:
		c.nestedBlock(sc, n.Body)
	case *ast.RawThreadExpr:
		c.nestedBlock(sc, n.Body)
	case *ast.SelectExpr:
		for _, arm := range n.Arms {
			c.exprWalk(sc, arm.Channel)
			c.exprWalk(sc, arm.Body)
		}
	case *ast.TimeoutExpr:
		c.exprWalk(sc, n.Duration)
		c.nestedBlock(sc, n.Body)
	case *ast.DeliverExpr:
		c.exprWalk(sc, n.Value)
	case *ast.StepExpr:
		c.exprWalk(sc, n.Target)
	case *ast.UnsafeExpr:
		c.nestedBlock(sc, n.Body)
	case *ast.ComptimeExpr:
		c.nestedBlock(sc, n.Body)
	case *ast.AssertExpr:
		c.exprWalk(sc, n.Cond)
		c.exprWalk(sc, n.Message)
	case *ast.CheckExpr:
		c.exprWalk(sc, n.Cond)
		c.exprWalk(sc, n.Message)
	}
}

// consumeScrutinee treats a `match`/`if-is` over a bare resource-local
// identifier as destructuring it by value.
func (c *Checker) consumeScrutinee(sc *funcScope, e ast.Expr, span token.Span) {
	if name, ok := identName(e); ok {
		if _, b := sc.lookup(name); b != nil && b.isResource {
			c.consumeIdent(sc, name, span)
		}
	}
}

func (c *Checker) call(sc *funcScope, n *ast.CallExpr) {
	var params []typesystem.ParamDef
	if symID, ok := c.res.Resolutions[n.Callee.GetID()]; ok {
		if sig, ok := c.tc.Funcs[symID]; ok {
			params = sig.Params
		}
	}
	c.exprWalk(sc, n.Callee)
	for i, arg := range n.Args {
		take := i < len(params) && params[i].Take
		if i < len(params) && params[i].Mutable {
			if place := placeOf(arg); place != "" {
				c.borrowLog = append(c.borrowLog, activeBorrow{place: place, mode: borrowWrite, span: arg.GetSpan()})
			}
		}
		c.argExpr(sc, arg, take)
	}
}

func (c *Checker) methodCall(sc *funcScope, n *ast.MethodCallExpr) {
	recvType := c.typeOf(n.Receiver)
	var method typesystem.MethodDef
	var hasMethod bool
	var recvID typesystem.TypeId
	switch recvType.Kind {
	case typesystem.KNamed:
		recvID = recvType.Named
		hasMethod = true
	case typesystem.KGeneric:
		recvID = recvType.Base
		hasMethod = true
	}
	if hasMethod {
		if def := c.tc.Table.Get(recvID); def != nil {
			method, hasMethod = def.Method(n.Method)
		} else {
			hasMethod = false
		}
	}
	if hasMethod && method.Self == typesystem.SelfTake {
		if name, ok := identName(n.Receiver); ok {
			c.consumeIdent(sc, name, n.Span)
		} else {
			c.exprWalk(sc, n.Receiver)
		}
	} else {
		if hasMethod && method.Self == typesystem.SelfMutate {
			if place := placeOf(n.Receiver); place != "" {
				c.borrowLog = append(c.borrowLog, activeBorrow{place: place, mode: borrowWrite, span: n.Span})
			}
		}
		c.exprWalk(sc, n.Receiver)
	}
	for i, arg := range n.Args {
		take := hasMethod && i < len(method.Params) && method.Params[i].Take
		if hasMethod && i < len(method.Params) && method.Params[i].Mutable {
			if place := placeOf(arg); place != "" {
				c.borrowLog = append(c.borrowLog, activeBorrow{place: place, mode: borrowWrite, span: arg.GetSpan()})
			}
		}
		c.argExpr(sc, arg, take)
	}
}
