package typecheck

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/config"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/token"
	"github.com/rask-lang/raskc/internal/typesystem"
)

// checkPass is spec §4.5 pass 2: check every declaration body against the
// signatures declarePass already registered.
func (c *Checker) checkPass(prog *ast.Program) {
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FnDecl:
			c.checkFnBody(decl)
		case *ast.ExtendDecl:
			for _, m := range decl.Methods {
				c.checkFnBody(m)
			}
		case *ast.TraitDecl:
			tp := declSet(decl.TypeParams)
			for _, m := range decl.Methods {
				if m.Body != nil {
					c.checkDefaultTraitMethod(decl, m, tp)
				}
			}
		case *ast.TestDecl:
			c.checkTestBody(decl)
		case *ast.BenchmarkDecl:
			c.checkBenchBody(decl)
		case *ast.ConstDecl:
			c.checkConstDecl(decl)
		case *ast.ExternDecl:
			// No body to check (spec §3 "extern func — no body").
		}
	}
}

func (c *Checker) checkFnBody(fn *ast.FnDecl) {
	sig, ok := c.sigByFn[fn]
	if !ok || fn.Body == nil {
		return
	}
	ctx := &fnContext{
		typeParams: sig.BodyTypeParams,
		retType:    sig.Ret,
		selfType:   sig.SelfType,
		hasSelf:    sig.Self != typesystem.SelfNone,
		self:       sig.Self,
		noAlloc:    sig.NoAlloc,
		noAllocFn:  sig.Name,
	}
	c.pushFn(ctx)
	c.pushScope()
	if ctx.hasSelf {
		c.define("self", sig.SelfType)
	}
	for _, p := range sig.Params {
		c.define(p.Name, p.Type)
	}
	bodyTy := c.checkBlockExpr(fn.Body)
	c.checkReturnCoverage(fn.Body, bodyTy, sig.Ret, fn.Span)
	if sig.NoAlloc {
		c.checkNoAlloc(fn.Body, sig.Name)
	}
	c.popScope()
	c.popFn()
}

func (c *Checker) checkDefaultTraitMethod(trait *ast.TraitDecl, m *ast.TraitMethodSig, tp map[string]bool) {
	ctx := &fnContext{typeParams: tp, retType: c.convertType(m.Ret, tp), hasSelf: true, selfType: typesystem.UnresolvedNamed([]string{trait.Name})}
	start := 0
	if len(m.Params) > 0 && m.Params[0].IsSelf {
		start = 1
	}
	c.pushFn(ctx)
	c.pushScope()
	c.define("self", ctx.selfType)
	for _, p := range m.Params[start:] {
		c.define(p.Name, c.convertType(p.Type, tp))
	}
	bodyTy := c.checkBlockExpr(m.Body)
	c.checkReturnCoverage(m.Body, bodyTy, ctx.retType, m.Span)
	c.popScope()
	c.popFn()
}

func (c *Checker) checkTestBody(t *ast.TestDecl) {
	if t.Body == nil {
		return
	}
	c.pushFn(&fnContext{typeParams: map[string]bool{}, retType: typesystem.Unit})
	c.pushScope()
	c.checkBlockExpr(t.Body)
	c.popScope()
	c.popFn()
}

func (c *Checker) checkBenchBody(b *ast.BenchmarkDecl) {
	if b.Body == nil {
		return
	}
	c.pushFn(&fnContext{typeParams: map[string]bool{}, retType: typesystem.Unit})
	c.pushScope()
	c.checkBlockExpr(b.Body)
	c.popScope()
	c.popFn()
}

func (c *Checker) checkConstDecl(cd *ast.ConstDecl) {
	if cd.Value == nil {
		return
	}
	c.pushFn(&fnContext{typeParams: map[string]bool{}, retType: typesystem.Unit})
	declared := c.convertType(cd.Type, map[string]bool{})
	valTy := c.checkExpr(cd.Value, declared)
	if cd.Type != nil {
		c.equal(declared, valTy, cd.Span)
	}
	c.popFn()
}

// checkReturnCoverage implements spec §4.5's structural return-coverage
// rule. A Unit/Never-returning function never needs an explicit return. A
// function whose body ends in a tail expression is already covered by the
// Equal constraint checkBlockExpr queued between the tail's type and
// retType. A function with a non-unit, non-never return type and no tail
// expression must return explicitly on every path through its statements.
func (c *Checker) checkReturnCoverage(body *ast.BlockExpr, bodyTy, retType typesystem.Type, span token.Span) {
	if body == nil || body.Tail != nil {
		return
	}
	resolved := c.ic.Apply(retType)
	if resolved.IsError() || resolved.IsNever() || isUnitLike(resolved) {
		return
	}
	if !blockAlwaysReturns(body) {
		c.errorf(span, diagnostics.CodeMissingReturn, "function does not return a value of type %s on all paths", resolved)
	}
}

func isUnitLike(t typesystem.Type) bool {
	return t.Kind == typesystem.KPrimitive && t.Prim == "unit"
}

func (c *Checker) checkNoAlloc(body *ast.BlockExpr, fnName string) {
	var walk func(e ast.Expr)
	var walkStmt func(s ast.Stmt)
	var walkBlock func(b *ast.BlockExpr)

	isBanned := func(name string) bool {
		for _, n := range config.NoAllocPrimitives {
			if n == name {
				return true
			}
		}
		return false
	}

	walkBlock = func(b *ast.BlockExpr) {
		if b == nil {
			return
		}
		for _, s := range b.Stmts {
			walkStmt(s)
		}
		if b.Tail != nil {
			walk(b.Tail)
		}
	}
	walkStmt = func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.ExprStmt:
			walk(n.X)
		case *ast.LetStmt:
			walk(n.Value)
		case *ast.LetTupleStmt:
			walk(n.Value)
		case *ast.AssignStmt:
			walk(n.Target)
			walk(n.Value)
		case *ast.ReturnStmt:
			walk(n.Value)
		case *ast.WhileStmt:
			walk(n.Cond)
			walkBlock(n.Body)
		case *ast.WhileLetStmt:
			walk(n.Scrutinee)
			walkBlock(n.Body)
		case *ast.LoopStmt:
			walkBlock(n.Body)
		case *ast.EnsureStmt:
			walkBlock(n.Body)
			walkBlock(n.CatchBody)
		}
	}
	walk = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.CallExpr:
			if id, ok := n.Callee.(*ast.Identifier); ok && isBanned(id.Value) {
				c.errorf(n.Span, diagnostics.CodeNoAllocViolation, "'%s' allocates and cannot be called from @no_alloc function '%s'", id.Value, fnName)
			}
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.MethodCallExpr:
			if head, ok := c.nodeTypeHead(n.Receiver); ok && isBanned(head+"."+n.Method) {
				c.errorf(n.Span, diagnostics.CodeNoAllocViolation, "'%s.%s' allocates and cannot be called from @no_alloc function '%s'", head, n.Method, fnName)
			}
			walk(n.Receiver)
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.BinaryExpr:
			walk(n.Left)
			walk(n.Right)
		case *ast.UnaryExpr:
			walk(n.Operand)
		case *ast.FieldExpr:
			walk(n.Receiver)
		case *ast.IndexExpr:
			walk(n.Receiver)
			walk(n.Index)
		case *ast.BlockExpr:
			walkBlock(n)
		case *ast.IfExpr:
			walk(n.Cond)
			walkBlock(n.Then)
			walk(n.Else)
		case *ast.MatchExpr:
			walk(n.Scrutinee)
			for _, arm := range n.Arms {
				walk(arm.Body)
			}
		case *ast.StructLitExpr:
			for _, f := range n.Fields {
				walk(f.Value)
			}
		case *ast.ArrayLitExpr:
			for _, el := range n.Elems {
				walk(el)
			}
		case *ast.TupleExpr:
			for _, el := range n.Elems {
				walk(el)
			}
		}
	}
	walkBlock(body)
}

// nodeTypeHead returns the builtin-registry head name of a receiver
// expression's already-inferred type, used only by the @no_alloc scanner.
func (c *Checker) nodeTypeHead(e ast.Expr) (string, bool) {
	t, ok := c.nodeTypes[e.GetID()]
	if !ok {
		return "", false
	}
	t = c.ic.Apply(t)
	switch t.Kind {
	case typesystem.KUnresolvedNamed:
		if len(t.UnresolvedPath) > 0 {
			return t.UnresolvedPath[len(t.UnresolvedPath)-1], true
		}
	case typesystem.KUnresolvedGeneric:
		if len(t.UnresolvedPath) > 0 {
			return t.UnresolvedPath[len(t.UnresolvedPath)-1], true
		}
	case typesystem.KNamed:
		if def := c.table.Get(t.Named); def != nil {
			return def.Name, true
		}
	}
	return "", false
}
