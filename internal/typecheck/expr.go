package typecheck

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/builtins"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/resolver"
	"github.com/rask-lang/raskc/internal/token"
	"github.com/rask-lang/raskc/internal/typesystem"
)

// checkExpr is spec §4.5's bidirectional entry point: it infers e's natural
// type, records it in the NodeTypes side table, and — when the caller
// supplies a concrete expected type — queues an Equal constraint tying the
// two together rather than comparing directly, so the constraint can be
// deferred until any inference variables involved settle.
func (c *Checker) checkExpr(e ast.Expr, expected typesystem.Type) typesystem.Type {
	if e == nil {
		return typesystem.Unit
	}
	var ty typesystem.Type
	switch n := e.(type) {
	case *ast.IntLiteral:
		ty = c.checkIntLiteral(n)
	case *ast.FloatLiteral:
		ty = c.checkFloatLiteral(n)
	case *ast.StringLiteral:
		ty = typesystem.Str
	case *ast.CharLiteral:
		ty = typesystem.Char
	case *ast.BoolLiteral:
		ty = typesystem.Bool
	case *ast.NoneLiteral:
		ty = typesystem.Option(c.ic.Fresh())
	case *ast.NullLiteral:
		if !c.inUnsafe() {
			c.errorf(n.Span, diagnostics.CodeUnsafeRequired, "'null' requires an unsafe block")
		}
		ty = typesystem.UnresolvedNamed([]string{"RawPtr"})
	case *ast.Identifier:
		ty = c.checkIdentifierExpr(n)
	case *ast.BinaryExpr:
		ty = c.checkBinaryExpr(n)
	case *ast.UnaryExpr:
		ty = c.checkUnaryExpr(n)
	case *ast.CallExpr:
		ty = c.checkCallExpr(n)
	case *ast.MethodCallExpr:
		ty = c.checkMethodCallExpr(n)
	case *ast.FieldExpr:
		ty = c.checkFieldExprNode(n)
	case *ast.OptionalFieldExpr:
		ty = c.checkOptionalFieldExpr(n)
	case *ast.IndexExpr:
		ty = c.checkIndexExpr(n)
	case *ast.BlockExpr:
		ty = c.checkBlockExpr(n)
	case *ast.IfExpr:
		ty = c.checkIfExpr(n)
	case *ast.IfIsExpr:
		ty = c.checkIfIsExpr(n)
	case *ast.MatchExpr:
		ty = c.checkMatchExpr(n)
	case *ast.TryExpr:
		ty = c.checkTryExpr(n)
	case *ast.NullCoalesceExpr:
		ty = c.checkNullCoalesceExpr(n)
	case *ast.RangeExpr:
		ty = c.checkRangeExpr(n)
	case *ast.StructLitExpr:
		ty = c.checkStructLitExpr(n)
	case *ast.ArrayLitExpr:
		ty = c.checkArrayLitExpr(n, expected)
	case *ast.ArrayRepeatExpr:
		ty = c.checkArrayRepeatExpr(n)
	case *ast.TupleExpr:
		ty = c.checkTupleExpr(n)
	case *ast.WithExpr:
		ty = c.checkWithExpr(n)
	case *ast.UsingExpr:
		ty = c.checkUsingExpr(n)
	case *ast.ClosureExpr:
		ty = c.checkClosureExpr(n)
	case *ast.CastExpr:
		ty = c.checkCastExpr(n)
	case *ast.SpawnExpr:
		c.checkBlockExpr(n.Body)
		ty = typesystem.UnresolvedNamed([]string{"ThreadHandle"})
	case *ast.RawThreadExpr:
		c.checkBlockExpr(n.Body)
		ty = typesystem.UnresolvedNamed([]string{"ThreadHandle"})
	case *ast.SelectExpr:
		ty = c.checkSelectExpr(n)
	case *ast.TimeoutExpr:
		c.checkExpr(n.Duration, noExpected)
		ty = c.checkBlockExpr(n.Body)
	case *ast.DeliverExpr:
		if n.Value != nil {
			c.checkExpr(n.Value, noExpected)
		}
		ty = typesystem.Unit
	case *ast.StepExpr:
		c.checkExpr(n.Target, noExpected)
		ty = c.ic.Fresh()
	case *ast.UnsafeExpr:
		c.curFn().unsafeDepth++
		ty = c.checkBlockExpr(n.Body)
		c.curFn().unsafeDepth--
	case *ast.AsmExpr:
		if !c.inUnsafe() {
			c.errorf(n.Span, diagnostics.CodeUnsafeRequired, "inline asm requires an unsafe block")
		}
		ty = typesystem.Unit
	case *ast.ComptimeExpr:
		ty = c.checkBlockExpr(n.Body)
	case *ast.AssertExpr:
		condTy := c.checkExpr(n.Cond, typesystem.Bool)
		c.equal(typesystem.Bool, condTy, n.Cond.GetSpan())
		if n.Message != nil {
			c.checkExpr(n.Message, typesystem.Str)
		}
		ty = typesystem.Unit
	case *ast.CheckExpr:
		condTy := c.checkExpr(n.Cond, typesystem.Bool)
		c.equal(typesystem.Bool, condTy, n.Cond.GetSpan())
		if n.Message != nil {
			c.checkExpr(n.Message, typesystem.Str)
		}
		ty = typesystem.Unit
	case *ast.PathExpr:
		ty = c.checkPathExpr(n)
	default:
		ty = typesystem.Err
	}
	c.setType(e.GetID(), ty)
	if hasHint(expected) {
		c.equal(expected, ty, e.GetSpan())
	}
	return ty
}

var intSuffixNames = map[token.IntSuffix]string{
	token.SuffixI8: "i8", token.SuffixI16: "i16", token.SuffixI32: "i32", token.SuffixI64: "i64", token.SuffixI128: "i128",
	token.SuffixU8: "u8", token.SuffixU16: "u16", token.SuffixU32: "u32", token.SuffixU64: "u64", token.SuffixU128: "u128",
}

var floatSuffixNames = map[token.FloatSuffix]string{
	token.SuffixF32: "f32", token.SuffixF64: "f64",
}

func (c *Checker) checkIntLiteral(n *ast.IntLiteral) typesystem.Type {
	if n.HasSuffix {
		if name, ok := intSuffixNames[n.Suffix]; ok {
			return typesystem.Prim(name)
		}
	}
	v := c.ic.Fresh()
	c.intLitVars = append(c.intLitVars, v.Var)
	return v
}

func (c *Checker) checkFloatLiteral(n *ast.FloatLiteral) typesystem.Type {
	if n.HasSuffix {
		if name, ok := floatSuffixNames[n.Suffix]; ok {
			return typesystem.Prim(name)
		}
	}
	v := c.ic.Fresh()
	c.floatLitVars = append(c.floatLitVars, v.Var)
	return v
}

func (c *Checker) checkIdentifierExpr(n *ast.Identifier) typesystem.Type {
	sym, ok := c.symbolOf(n.ID)
	if !ok {
		return c.ic.Fresh()
	}
	switch sym.Kind {
	case resolver.SymParam, resolver.SymLocal:
		if t, ok := c.lookupVar(sym.Name); ok {
			return t
		}
		return c.ic.Fresh()
	case resolver.SymFunction:
		if sig, ok := c.funcs[sym.ID]; ok {
			sub := typesystem.Substitution{}
			for _, tp := range sig.TypeParams {
				sub[tp] = c.ic.Fresh()
			}
			params := make([]typesystem.Type, len(sig.Params))
			for i, p := range sig.Params {
				params[i] = resolveUnresolved(c, typesystem.ApplyNamed(p.Type, sub))
			}
			ret := resolveUnresolved(c, typesystem.ApplyNamed(sig.Ret, sub))
			return typesystem.Fn(params, ret)
		}
		return c.ic.Fresh()
	case resolver.SymConst:
		return c.constType(sym)
	default:
		return c.ic.Fresh()
	}
}

// constType lazily computes and memoizes a top-level const's type (spec §3:
// a const's annotation, when present, is authoritative). Without an
// annotation the type is a fresh inference variable fixed by the const's
// uses; the value expression is not consulted here.
func (c *Checker) constType(sym resolver.Symbol) typesystem.Type {
	if t, ok := c.constTypes[sym.ID]; ok {
		return t
	}
	cd, ok := sym.Decl.(*ast.ConstDecl)
	if !ok {
		return c.ic.Fresh()
	}
	var t typesystem.Type
	if cd.Type != nil {
		t = c.convertType(cd.Type, map[string]bool{})
	} else {
		t = c.ic.Fresh()
	}
	c.constTypes[sym.ID] = t
	return t
}

func lastSegment(te ast.TypeExpr) string {
	if named, ok := te.(*ast.NamedTypeExpr); ok && len(named.Path) > 0 {
		return named.Path[len(named.Path)-1]
	}
	return ""
}

func fieldIndexByName(fields []typesystem.FieldDef, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (c *Checker) checkFieldExprNode(n *ast.FieldExpr) typesystem.Type {
	recvTy := c.checkExpr(n.Receiver, noExpected)
	retVar := c.ic.Fresh()
	c.push(&hasFieldConstraint{ty: recvTy, field: n.Field, expected: retVar, span: n.Span})
	return retVar
}

func (c *Checker) checkOptionalFieldExpr(n *ast.OptionalFieldExpr) typesystem.Type {
	recvTy := c.checkExpr(n.Receiver, noExpected)
	inner := c.ic.Fresh()
	c.equal(recvTy, typesystem.Option(inner), n.Span)
	fieldVar := c.ic.Fresh()
	c.push(&hasFieldConstraint{ty: inner, field: n.Field, expected: fieldVar, span: n.Span})
	return typesystem.Option(fieldVar)
}

// indexConstraint implements `recv[index]` once recv's shape is known
// (spec §4.5 HasField-style deferred resolution): Array and Slice receivers
// yield their element type, and a builtin receiver with a `get` method is
// typed as a call to that method.
type indexConstraint struct {
	recv     typesystem.Type
	index    typesystem.Type
	expected typesystem.Type
	span     token.Span
}

func (ix *indexConstraint) try(c *Checker) bool {
	recv := c.ic.Apply(ix.recv)
	if recv.IsVar() {
		return false
	}
	if recv.IsError() {
		return true
	}
	switch recv.Kind {
	case typesystem.KArray:
		c.equal(ix.expected, *recv.Elem, ix.span)
	case typesystem.KSlice:
		c.equal(ix.expected, *recv.Elem, ix.span)
	default:
		if head, ok := builtins.ReceiverHead(recv); ok {
			if bm, ok := c.reg.Lookup(head, "get"); ok {
				c.instantiateBuiltinMethod(recv, head, bm, &hasMethodConstraint{
					ty: recv, method: "get", args: []typesystem.Type{ix.index}, ret: ix.expected, span: ix.span,
				})
				return true
			}
		}
		c.errorf(ix.span, diagnostics.CodeNoSuchMethod, "type %s cannot be indexed", recv)
	}
	return true
}

func (c *Checker) checkIndexExpr(n *ast.IndexExpr) typesystem.Type {
	recvTy := c.checkExpr(n.Receiver, noExpected)
	idxTy := c.checkExpr(n.Index, noExpected)
	elemVar := c.ic.Fresh()
	c.push(&indexConstraint{recv: recvTy, index: idxTy, expected: elemVar, span: n.Span})
	return elemVar
}

func (c *Checker) checkIfExpr(n *ast.IfExpr) typesystem.Type {
	condTy := c.checkExpr(n.Cond, typesystem.Bool)
	c.equal(typesystem.Bool, condTy, n.Cond.GetSpan())
	thenTy := c.checkBlockExpr(n.Then)
	if n.Else == nil {
		return typesystem.Unit
	}
	elseTy := c.checkExpr(n.Else, noExpected)
	c.equal(thenTy, elseTy, n.Span)
	return thenTy
}

func (c *Checker) checkIfIsExpr(n *ast.IfIsExpr) typesystem.Type {
	scrutTy := c.checkExpr(n.Scrutinee, noExpected)
	c.pushScope()
	c.bindPattern(n.Pattern, scrutTy)
	thenTy := c.checkBlockExpr(n.Then)
	c.popScope()
	if n.Else == nil {
		return typesystem.Unit
	}
	elseTy := c.checkExpr(n.Else, noExpected)
	c.equal(thenTy, elseTy, n.Span)
	return thenTy
}

func (c *Checker) checkMatchExpr(n *ast.MatchExpr) typesystem.Type {
	scrutTy := c.checkExpr(n.Scrutinee, noExpected)
	resultVar := c.ic.Fresh()
	for _, arm := range n.Arms {
		c.pushScope()
		c.bindPattern(arm.Pattern, scrutTy)
		if arm.Guard != nil {
			guardTy := c.checkExpr(arm.Guard, typesystem.Bool)
			c.equal(typesystem.Bool, guardTy, arm.Guard.GetSpan())
		}
		bodyTy := c.checkExpr(arm.Body, noExpected)
		c.equal(resultVar, bodyTy, arm.Span)
		c.popScope()
	}
	return resultVar
}

// tryConstraint resolves the postfix `?` operator once its operand's shape
// is known: Result propagates its Err into the enclosing function's return
// type, Option propagates None directly (spec §4.5/§4.8).
type tryConstraint struct {
	inner   typesystem.Type
	retType typesystem.Type
	okOut   typesystem.Type
	span    token.Span
}

func (t *tryConstraint) try(c *Checker) bool {
	inner := c.ic.Apply(t.inner)
	if inner.IsVar() {
		return false
	}
	if inner.IsError() {
		return true
	}
	switch inner.Kind {
	case typesystem.KResult:
		c.equal(t.okOut, *inner.Ok, t.span)
		if t.retType.Kind == typesystem.KResult {
			c.equal(*t.retType.Err, *inner.Err, t.span)
		}
	case typesystem.KOption:
		c.equal(t.okOut, *inner.Elem, t.span)
	default:
		c.errorf(t.span, diagnostics.CodeTryOnNonResult, "'?' applied to non-Result/Option type %s", inner)
	}
	return true
}

func (c *Checker) checkTryExpr(n *ast.TryExpr) typesystem.Type {
	innerTy := c.checkExpr(n.Inner, noExpected)
	retType := c.curFn().retType
	if retType.Kind != typesystem.KResult && retType.Kind != typesystem.KOption {
		c.errorf(n.Span, diagnostics.CodeTryInNonPropagatingContext, "'?' used in a function whose return type is not Result or Option")
	}
	okVar := c.ic.Fresh()
	c.push(&tryConstraint{inner: innerTy, retType: retType, okOut: okVar, span: n.Span})
	return okVar
}

func (c *Checker) checkNullCoalesceExpr(n *ast.NullCoalesceExpr) typesystem.Type {
	leftTy := c.checkExpr(n.Left, noExpected)
	inner := c.ic.Fresh()
	c.equal(leftTy, typesystem.Option(inner), n.Left.GetSpan())
	rightTy := c.checkExpr(n.Right, inner)
	c.equal(inner, rightTy, n.Span)
	return inner
}

func (c *Checker) checkRangeExpr(n *ast.RangeExpr) typesystem.Type {
	elemTy := typesystem.I32
	if n.Start != nil {
		elemTy = c.checkExpr(n.Start, noExpected)
	}
	if n.End != nil {
		endTy := c.checkExpr(n.End, elemTy)
		c.equal(elemTy, endTy, n.Span)
	}
	return typesystem.UnresolvedGeneric([]string{"Range"}, []typesystem.Type{elemTy})
}

func (c *Checker) checkStructLitExpr(n *ast.StructLitExpr) typesystem.Type {
	ty := c.convertType(n.Type, c.curFn().typeParams)
	var def *typesystem.TypeDef
	var args []typesystem.Type
	switch ty.Kind {
	case typesystem.KNamed:
		def = c.table.Get(ty.Named)
	case typesystem.KGeneric:
		def = c.table.Get(ty.Base)
		args = ty.Args
	}
	if def == nil {
		for _, f := range n.Fields {
			c.checkExpr(f.Value, noExpected)
		}
		if n.Spread != nil {
			c.checkExpr(n.Spread, noExpected)
		}
		c.errorf(n.Span, diagnostics.CodeResolveUndefinedName, "undefined struct type '%s'", lastSegment(n.Type))
		return typesystem.Err
	}
	if len(args) == 0 && len(def.TypeParams) > 0 {
		args = make([]typesystem.Type, len(def.TypeParams))
		for i := range args {
			args[i] = c.ic.Fresh()
		}
		ty = typesystem.Generic(def.ID, args...)
	}
	sub := typesystem.Substitution{}
	for i, pname := range def.TypeParams {
		if i < len(args) {
			sub[pname] = args[i]
		}
	}
	fields := def.Fields
	if def.Kind == typesystem.DefEnum {
		if vd, ok := def.VariantByName(lastSegment(n.Type)); ok {
			fields = vd.Named
		}
	}
	for _, f := range n.Fields {
		idx := fieldIndexByName(fields, f.Name)
		var fieldTy typesystem.Type
		if idx >= 0 {
			fieldTy = resolveUnresolved(c, typesystem.ApplyNamed(fields[idx].Type, sub))
		} else {
			c.errorf(n.Span, diagnostics.CodeNoSuchField, "'%s' has no field '%s'", def.Name, f.Name)
			fieldTy = typesystem.Err
		}
		valTy := c.checkExpr(f.Value, fieldTy)
		c.equal(fieldTy, valTy, f.Value.GetSpan())
	}
	if n.Spread != nil {
		spreadTy := c.checkExpr(n.Spread, ty)
		c.equal(ty, spreadTy, n.Spread.GetSpan())
	}
	return ty
}

func (c *Checker) checkArrayLitExpr(n *ast.ArrayLitExpr, expected typesystem.Type) typesystem.Type {
	elemVar := c.ic.Fresh()
	if hasHint(expected) {
		switch expected.Kind {
		case typesystem.KArray, typesystem.KSlice:
			elemVar = *expected.Elem
		}
	}
	for _, el := range n.Elems {
		t := c.checkExpr(el, elemVar)
		c.equal(elemVar, t, el.GetSpan())
	}
	return typesystem.Array(elemVar, len(n.Elems))
}

func (c *Checker) checkArrayRepeatExpr(n *ast.ArrayRepeatExpr) typesystem.Type {
	valTy := c.checkExpr(n.Value, noExpected)
	c.checkExpr(n.Count, typesystem.UnresolvedNamed([]string{"usize"}))
	length := 0
	if v, ok := c.evalConstInt(n.Count); ok {
		length = v
	}
	return typesystem.Array(valTy, length)
}

func (c *Checker) checkTupleExpr(n *ast.TupleExpr) typesystem.Type {
	elems := make([]typesystem.Type, len(n.Elems))
	for i, el := range n.Elems {
		elems[i] = c.checkExpr(el, noExpected)
	}
	return typesystem.Tuple(elems...)
}

func (c *Checker) checkWithExpr(n *ast.WithExpr) typesystem.Type {
	c.pushScope()
	for _, b := range n.Bindings {
		t := c.checkExpr(b.Value, noExpected)
		c.define(b.Name, t)
	}
	bodyTy := c.checkBlockExpr(n.Body)
	c.popScope()
	return bodyTy
}

func (c *Checker) checkUsingExpr(n *ast.UsingExpr) typesystem.Type {
	c.pushScope()
	for _, b := range n.Bindings {
		t := c.checkExpr(b.Value, noExpected)
		c.define(b.Name, t)
	}
	bodyTy := c.checkBlockExpr(n.Body)
	c.popScope()
	return bodyTy
}

func (c *Checker) checkClosureExpr(n *ast.ClosureExpr) typesystem.Type {
	tp := c.curFn().typeParams
	var retTy typesystem.Type
	if n.Ret != nil {
		retTy = c.convertType(n.Ret, tp)
	} else {
		retTy = c.ic.Fresh()
	}
	ctx := &fnContext{typeParams: tp, retType: retTy}
	c.pushFn(ctx)
	c.pushScope()
	paramTys := make([]typesystem.Type, len(n.Params))
	for i, p := range n.Params {
		var pty typesystem.Type
		if p.Type != nil {
			pty = c.convertType(p.Type, tp)
		} else {
			pty = c.ic.Fresh()
		}
		paramTys[i] = pty
		c.define(p.Name, pty)
	}
	bodyTy := c.checkExpr(n.Body, retTy)
	c.equal(retTy, bodyTy, n.Span)
	c.popScope()
	c.popFn()
	return typesystem.Fn(paramTys, retTy)
}

func (c *Checker) checkCastExpr(n *ast.CastExpr) typesystem.Type {
	c.checkExpr(n.Value, noExpected)
	return c.convertType(n.Type, c.curFn().typeParams)
}

func (c *Checker) checkSelectExpr(n *ast.SelectExpr) typesystem.Type {
	resultVar := c.ic.Fresh()
	for _, arm := range n.Arms {
		c.checkExpr(arm.Channel, noExpected)
		c.pushScope()
		if arm.Binding != "" {
			c.define(arm.Binding, c.ic.Fresh())
		}
		bodyTy := c.checkExpr(arm.Body, noExpected)
		c.equal(resultVar, bodyTy, arm.Body.GetSpan())
		c.popScope()
	}
	return resultVar
}

func (c *Checker) checkPathExpr(n *ast.PathExpr) typesystem.Type {
	if len(n.Segments) >= 2 {
		last := n.Segments[len(n.Segments)-1]
		ownerName := n.Segments[len(n.Segments)-2]
		if id, ok := c.table.Lookup(ownerName); ok {
			if def := c.table.Get(id); def != nil && def.Kind == typesystem.DefEnum {
				if _, ok := def.VariantByName(last); ok {
					if len(def.TypeParams) == 0 {
						return typesystem.Named(def.ID)
					}
					args := make([]typesystem.Type, len(def.TypeParams))
					for i := range args {
						args[i] = c.ic.Fresh()
					}
					return typesystem.Generic(def.ID, args...)
				}
			}
		}
		if bm, ok := c.reg.LookupModule(ownerName, last); ok {
			binder := builtins.NewBinder(nil, c.ic.Fresh)
			params := make([]typesystem.Type, len(bm.Params))
			for i, p := range bm.Params {
				params[i] = binder.Instantiate(p.Type)
			}
			return typesystem.Fn(params, binder.Instantiate(bm.Ret))
		}
	}
	return c.ic.Fresh()
}
