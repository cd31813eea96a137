package typecheck

import (
	"github.com/rask-lang/raskc/internal/builtins"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/token"
	"github.com/rask-lang/raskc/internal/typesystem"
)

// constraint is one item of spec §4.5's InferenceContext constraint queue:
// Equal, HasField, or HasMethod.
type constraint interface {
	// try attempts to solve the constraint against the checker's current
	// substitution. solved=true means remove from the queue (success or a
	// reported failure); solved=false means re-queue for the next pass
	// (some operand is still an unresolved placeholder or variable).
	try(c *Checker) (solved bool)
}

func (c *Checker) push(ct constraint) { c.queue = append(c.queue, ct) }

// solve drains the constraint queue to a fixpoint, up to 100 iterations
// (spec §4.5 "Solver. Up to 100 fixpoint iterations over the queue").
// Constraints still blocked on an unresolved inference variable when the
// fixpoint dries up are left in the queue rather than reported: they may yet
// settle once applyLiteralDefaults pins default types and a second solve
// pass runs (see Check). reportUnresolved is the one place that turns a
// truly-stuck constraint into a diagnostic.
func (c *Checker) solve() {
	for iter := 0; iter < 100 && len(c.queue) > 0; iter++ {
		next := c.queue[:0]
		progressed := false
		for _, ct := range c.queue {
			if ct.try(c) {
				progressed = true
				continue
			}
			next = append(next, ct)
		}
		c.queue = next
		if !progressed {
			break
		}
	}
}

// reportUnresolved is called once, after literal defaulting and the second
// solve pass, to turn whatever constraints never settled into diagnostics
// (spec §7 cascade suppression still applies: an Error-typed operand drops
// the report rather than compounding it).
func (c *Checker) reportUnresolved() {
	for _, ct := range c.queue {
		switch t := ct.(type) {
		case *equalConstraint:
			a, b := c.ic.Apply(t.a), c.ic.Apply(t.b)
			if a.IsError() || b.IsError() {
				continue
			}
			if a.IsVar() || b.IsVar() {
				c.errorf(t.span, diagnostics.CodeAmbiguousType, "cannot infer type: need more context to resolve %s / %s", a, b)
				continue
			}
			c.errorf(t.span, diagnostics.CodeMismatch, "type mismatch: expected %s, found %s", a, b)
		case *hasFieldConstraint:
			c.errorf(t.span, diagnostics.CodeAmbiguousType, "cannot infer receiver type for field '%s'", t.field)
		case *hasMethodConstraint:
			c.errorf(t.span, diagnostics.CodeAmbiguousType, "cannot infer receiver type for method '%s'", t.method)
		case *tryConstraint:
			c.errorf(t.span, diagnostics.CodeAmbiguousType, "cannot infer type of '?' operand")
		case *indexConstraint:
			c.errorf(t.span, diagnostics.CodeAmbiguousType, "cannot infer type of indexed receiver")
		}
	}
	c.queue = nil
}

// equalConstraint is spec §4.5's `Equal(t1, t2, span)`.
type equalConstraint struct {
	a, b typesystem.Type
	span token.Span
}

func (e *equalConstraint) try(c *Checker) bool {
	err := c.ic.Unify(e.a, e.b)
	if err == nil {
		return true
	}
	if typesystem.IsDeferred(err) {
		return false
	}
	a, b := c.ic.Apply(e.a), c.ic.Apply(e.b)
	if a.IsError() || b.IsError() {
		return true // cascade suppression (spec §7)
	}
	c.errorf(e.span, diagnostics.CodeMismatch, "type mismatch: expected %s, found %s", a, b)
	return true
}

// equal queues an Equal constraint and is the workhorse every bidirectional
// check site calls.
func (c *Checker) equal(a, b typesystem.Type, span token.Span) {
	c.push(&equalConstraint{a: a, b: b, span: span})
}

// hasFieldConstraint is spec §4.5's `HasField { ty, field, expected, span }`.
type hasFieldConstraint struct {
	ty       typesystem.Type
	field    string
	expected typesystem.Type
	span     token.Span
}

func (h *hasFieldConstraint) try(c *Checker) bool {
	ty := c.ic.Apply(h.ty)
	if ty.IsVar() {
		return false
	}
	if ty.IsError() {
		return true
	}
	var defID typesystem.TypeId
	var args []typesystem.Type
	switch ty.Kind {
	case typesystem.KNamed:
		defID = ty.Named
	case typesystem.KGeneric:
		defID = ty.Base
		args = ty.Args
	default:
		c.errorf(h.span, diagnostics.CodeNoSuchField, "type %s has no field '%s'", ty, h.field)
		return true
	}
	def := c.table.Get(defID)
	if def == nil || def.Kind != typesystem.DefStruct {
		c.errorf(h.span, diagnostics.CodeNoSuchField, "type %s has no field '%s'", ty, h.field)
		return true
	}
	idx := def.FieldIndex(h.field)
	if idx < 0 {
		c.errorf(h.span, diagnostics.CodeNoSuchField, "struct '%s' has no field '%s'", def.Name, h.field)
		return true
	}
	fieldTy := def.Fields[idx].Type
	if len(args) > 0 {
		sub := typesystem.Substitution{}
		for i, pname := range def.TypeParams {
			if i < len(args) {
				sub[pname] = args[i]
			}
		}
		fieldTy = typesystem.ApplyNamed(fieldTy, sub)
	}
	c.equal(h.expected, resolveUnresolved(c, fieldTy), h.span)
	return true
}

// hasMethodConstraint is spec §4.5's `HasMethod { ty, method, args, ret,
// span }`, implementing the two-path method resolution protocol.
type hasMethodConstraint struct {
	ty        typesystem.Type
	method    string
	args      []typesystem.Type
	ret       typesystem.Type
	span      token.Span
	explicit  []typesystem.Type // explicit `recv.m<T, U>(...)` type args, if any
	callNode  uint32
	isBuiltin bool
}

func (h *hasMethodConstraint) try(c *Checker) bool {
	ty := c.ic.Apply(h.ty)
	if ty.IsVar() {
		return false
	}
	if ty.IsError() {
		return true
	}

	// Path 1: built-in primitive/collection/Option/Result/module-handle
	// dispatch (spec §4.5 "If the receiver type is a built-in...").
	if head, ok := builtins.ReceiverHead(ty); ok {
		if bm, ok := c.reg.Lookup(head, h.method); ok {
			c.instantiateBuiltinMethod(ty, head, bm, h)
			return true
		}
		if _, isTypeTable := c.typeTableReceiver(ty); !isTypeTable {
			// A recognized builtin head with no such method, and not also
			// a user type: definitely NoSuchMethod.
			c.errorf(h.span, diagnostics.CodeNoSuchMethod, "no method '%s' on %s", h.method, ty)
			return true
		}
	}

	// Path 2: user TypeDef.methods, substituting generic receiver args.
	defID, args, ok := c.typeTableReceiver(ty)
	if !ok {
		c.errorf(h.span, diagnostics.CodeNoSuchMethod, "no method '%s' on %s", h.method, ty)
		return true
	}
	def := c.table.Get(defID)
	md, ok := def.Method(h.method)
	if !ok {
		c.errorf(h.span, diagnostics.CodeNoSuchMethod, "no method '%s' on type '%s'", h.method, def.Name)
		return true
	}
	sub := typesystem.Substitution{}
	for i, pname := range def.TypeParams {
		if i < len(args) {
			sub[pname] = args[i]
		}
	}
	// Explicit type arguments freeze the method's own generics before
	// unification (spec §4.5 "Explicit type arguments ... freeze those
	// parameters").
	for i, pname := range md.TypeParams {
		if i < len(h.explicit) {
			sub[pname] = h.explicit[i]
		} else if _, bound := sub[pname]; !bound {
			sub[pname] = c.ic.Fresh()
		}
	}
	if len(h.args) != len(md.Params) {
		c.errorf(h.span, diagnostics.CodeGenericError, "method '%s' expects %d arguments, got %d", h.method, len(md.Params), len(h.args))
		return true
	}
	for i, param := range md.Params {
		pt := typesystem.ApplyNamed(param.Type, sub)
		c.equal(h.args[i], resolveUnresolved(c, pt), h.span)
	}
	retTy := typesystem.ApplyNamed(md.Ret, sub)
	c.equal(h.ret, resolveUnresolved(c, retTy), h.span)
	return true
}

// typeTableReceiver reports whether ty refers to a user-registered
// struct/enum and returns its TypeId and generic args.
func (c *Checker) typeTableReceiver(ty typesystem.Type) (typesystem.TypeId, []typesystem.Type, bool) {
	switch ty.Kind {
	case typesystem.KNamed:
		return ty.Named, nil, true
	case typesystem.KGeneric:
		return ty.Base, ty.Args, true
	}
	return 0, nil, false
}

// instantiateBuiltinMethod unifies a call's arguments/return against a
// builtins.Method stub, binding the receiver's own type arguments (spec §6
// registry's "single uppercase letters -> fresh type var per call site").
func (c *Checker) instantiateBuiltinMethod(ty typesystem.Type, head string, bm builtins.Method, h *hasMethodConstraint) {
	known := builtins.ReceiverArgs(ty, bm.TypeParams)
	binder := builtins.NewBinder(known, c.ic.Fresh)
	if len(h.args) != len(bm.Params) {
		c.errorf(h.span, diagnostics.CodeGenericError, "method '%s.%s' expects %d arguments, got %d", head, bm.Name, len(bm.Params), len(h.args))
		return
	}
	for i, param := range bm.Params {
		c.equal(h.args[i], binder.Instantiate(param.Type), h.span)
	}
	c.equal(h.ret, binder.Instantiate(bm.Ret), h.span)
}

// resolveUnresolved replaces any UnresolvedNamed/UnresolvedGeneric leaf
// whose head is now a registered TypeTable name with its Named/Generic
// form — substituted generic struct fields reference other declared types
// by name before the whole table is known, same placeholder discipline as
// convertType.
func resolveUnresolved(c *Checker, t typesystem.Type) typesystem.Type {
	switch t.Kind {
	case typesystem.KUnresolvedNamed:
		if len(t.UnresolvedPath) == 1 {
			if id, ok := c.table.Lookup(t.UnresolvedPath[0]); ok {
				return typesystem.Named(id)
			}
		}
		return t
	case typesystem.KUnresolvedGeneric:
		args := make([]typesystem.Type, len(t.UnresolvedArgs))
		for i, a := range t.UnresolvedArgs {
			args[i] = resolveUnresolved(c, a)
		}
		if len(t.UnresolvedPath) == 1 {
			if id, ok := c.table.Lookup(t.UnresolvedPath[0]); ok {
				return typesystem.Generic(id, args...)
			}
		}
		return typesystem.UnresolvedGeneric(t.UnresolvedPath, args)
	case typesystem.KOption:
		inner := resolveUnresolved(c, *t.Elem)
		return typesystem.Option(inner)
	case typesystem.KResult:
		return typesystem.Result(resolveUnresolved(c, *t.Ok), resolveUnresolved(c, *t.Err))
	case typesystem.KArray:
		return typesystem.Array(resolveUnresolved(c, *t.Elem), t.Len)
	case typesystem.KSlice:
		return typesystem.Slice(resolveUnresolved(c, *t.Elem))
	case typesystem.KTuple:
		elems := make([]typesystem.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = resolveUnresolved(c, e)
		}
		return typesystem.Tuple(elems...)
	default:
		return t
	}
}
