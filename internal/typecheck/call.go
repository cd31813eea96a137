package typecheck

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/resolver"
	"github.com/rask-lang/raskc/internal/token"
	"github.com/rask-lang/raskc/internal/typesystem"
)

var comparisonOps = map[string]bool{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}
var logicalOps = map[string]bool{"and": true, "or": true, "&&": true, "||": true}

// checkBinaryExpr types `left op right` (spec §4.5's operator rules): logical
// connectives force both sides to Bool; comparisons unify the operands with
// each other and always yield Bool; every other operator (arithmetic,
// bitwise) unifies both operands together and yields that common type.
func (c *Checker) checkBinaryExpr(n *ast.BinaryExpr) typesystem.Type {
	if logicalOps[n.Op] {
		lt := c.checkExpr(n.Left, typesystem.Bool)
		rt := c.checkExpr(n.Right, typesystem.Bool)
		c.equal(typesystem.Bool, lt, n.Left.GetSpan())
		c.equal(typesystem.Bool, rt, n.Right.GetSpan())
		return typesystem.Bool
	}
	lt := c.checkExpr(n.Left, noExpected)
	rt := c.checkExpr(n.Right, noExpected)
	c.equal(lt, rt, n.Span)
	if comparisonOps[n.Op] {
		return typesystem.Bool
	}
	return lt
}

func (c *Checker) checkUnaryExpr(n *ast.UnaryExpr) typesystem.Type {
	switch n.Op {
	case "!":
		t := c.checkExpr(n.Operand, typesystem.Bool)
		c.equal(typesystem.Bool, t, n.Span)
		return typesystem.Bool
	case "&":
		inner := c.checkExpr(n.Operand, noExpected)
		return typesystem.UnresolvedGeneric([]string{"Ref"}, []typesystem.Type{inner})
	case "*":
		if !c.inUnsafe() {
			c.errorf(n.Span, diagnostics.CodeUnsafeRequired, "raw pointer dereference requires an unsafe block")
		}
		return c.checkExpr(n.Operand, noExpected)
	default: // "-", "~"
		return c.checkExpr(n.Operand, noExpected)
	}
}

// checkCallExpr handles three callee shapes: a named free function (direct
// instantiation, recording call_type_args), a bare enum-variant constructor
// reference (`Some(x)`, `Ok(y)`), and the general case of calling whatever
// expression value results (a closure, or a field holding a Fn type).
func (c *Checker) checkCallExpr(n *ast.CallExpr) typesystem.Type {
	if ident, ok := n.Callee.(*ast.Identifier); ok {
		if sym, ok := c.symbolOf(ident.ID); ok {
			switch sym.Kind {
			case resolver.SymFunction:
				if sig, ok := c.funcs[sym.ID]; ok {
					return c.instantiateCall(sig, n.Args, n.Span, n.ID)
				}
			case resolver.SymEnumVariant:
				return c.checkVariantCall(sym.Name, n)
			}
		}
	}
	calleeTy := c.checkExpr(n.Callee, noExpected)
	argTys := make([]typesystem.Type, len(n.Args))
	for i, a := range n.Args {
		argTys[i] = c.checkExpr(a, noExpected)
	}
	resolved := c.ic.Apply(calleeTy)
	retVar := c.ic.Fresh()
	switch resolved.Kind {
	case typesystem.KFn:
		m := len(argTys)
		if m > len(resolved.Params) {
			m = len(resolved.Params)
		}
		for i := 0; i < m; i++ {
			c.equal(resolved.Params[i], argTys[i], n.Args[i].GetSpan())
		}
		c.equal(retVar, *resolved.Ret, n.Span)
	case typesystem.KVar:
		c.equal(resolved, typesystem.Fn(argTys, retVar), n.Span)
	case typesystem.KError:
		return typesystem.Err
	default:
		c.errorf(n.Span, diagnostics.CodeNotCallable, "type %s is not callable", resolved)
		return typesystem.Err
	}
	return retVar
}

// instantiateCall instantiates sig's own type parameters with fresh
// inference variables (or, later, explicit turbofish args once the parser
// surfaces them on CallExpr), unifies each argument against its substituted
// parameter type, and records the discovered type arguments in pendingArgs
// for finalizeCallTypeArgs to read back once the solver settles.
func (c *Checker) instantiateCall(sig *FnSig, args []ast.Expr, span token.Span, callID ast.NodeId) typesystem.Type {
	sub := typesystem.Substitution{}
	for _, tp := range sig.TypeParams {
		sub[tp] = c.ic.Fresh()
	}
	n := len(args)
	if n > len(sig.Params) {
		n = len(sig.Params)
	}
	if len(args) != len(sig.Params) {
		c.errorf(span, diagnostics.CodeGenericError, "function '%s' expects %d arguments, got %d", sig.Name, len(sig.Params), len(args))
	}
	for i := 0; i < n; i++ {
		paramTy := resolveUnresolved(c, typesystem.ApplyNamed(sig.Params[i].Type, sub))
		argTy := c.checkExpr(args[i], paramTy)
		c.equal(paramTy, argTy, args[i].GetSpan())
	}
	for i := n; i < len(args); i++ {
		c.checkExpr(args[i], noExpected)
	}
	retTy := resolveUnresolved(c, typesystem.ApplyNamed(sig.Ret, sub))
	if len(sig.TypeParams) > 0 && callID != ast.NoNodeId {
		argsList := make([]typesystem.Type, len(sig.TypeParams))
		for i, tp := range sig.TypeParams {
			argsList[i] = sub[tp]
		}
		c.pendingArgs[callID] = argsList
	}
	return retTy
}

// checkVariantCall types a bare tuple-style enum constructor call such as
// `Some(x)` or a user enum's `Circle(4.0)`.
func (c *Checker) checkVariantCall(variantName string, n *ast.CallExpr) typesystem.Type {
	def, ok := c.variantOwner(variantName, typesystem.Type{})
	if !ok {
		c.errorf(n.Span, diagnostics.CodeResolveUndefinedName, "undefined variant '%s'", variantName)
		for _, a := range n.Args {
			c.checkExpr(a, noExpected)
		}
		return typesystem.Err
	}
	vd, ok := def.VariantByName(variantName)
	if !ok {
		c.errorf(n.Span, diagnostics.CodeNoSuchField, "enum '%s' has no variant '%s'", def.Name, variantName)
		return typesystem.Err
	}
	args := make([]typesystem.Type, len(def.TypeParams))
	for i := range args {
		args[i] = c.ic.Fresh()
	}
	sub := typesystem.Substitution{}
	for i, pname := range def.TypeParams {
		sub[pname] = args[i]
	}
	m := len(n.Args)
	if m > len(vd.Positional) {
		m = len(vd.Positional)
	}
	for i := 0; i < m; i++ {
		fieldTy := resolveUnresolved(c, typesystem.ApplyNamed(vd.Positional[i], sub))
		argTy := c.checkExpr(n.Args[i], fieldTy)
		c.equal(fieldTy, argTy, n.Args[i].GetSpan())
	}
	for i := m; i < len(n.Args); i++ {
		c.checkExpr(n.Args[i], noExpected)
	}
	if len(args) == 0 {
		return typesystem.Named(def.ID)
	}
	return typesystem.Generic(def.ID, args...)
}

// checkMethodCallExpr pushes a deferred HasMethod constraint (spec §4.5):
// arguments are checked in their natural (unhinted) type first, and tied to
// the resolved method's declared parameter types once dispatch completes.
func (c *Checker) checkMethodCallExpr(n *ast.MethodCallExpr) typesystem.Type {
	recvTy := c.checkExpr(n.Receiver, noExpected)
	argTys := make([]typesystem.Type, len(n.Args))
	for i, a := range n.Args {
		argTys[i] = c.checkExpr(a, noExpected)
	}
	var explicit []typesystem.Type
	if n.TypeArgs != nil {
		explicit = make([]typesystem.Type, len(n.TypeArgs))
		for i, te := range n.TypeArgs {
			explicit[i] = c.convertType(te, c.curFn().typeParams)
		}
	}
	retVar := c.ic.Fresh()
	c.push(&hasMethodConstraint{ty: recvTy, method: n.Method, args: argTys, ret: retVar, span: n.Span, explicit: explicit})
	if len(explicit) > 0 {
		c.callTypeArgs[n.ID] = explicit
	}
	return retVar
}
