package typesystem

import "fmt"

// InferenceContext owns the three pieces spec §4.5 names: a fresh
// type-variable supplier, a substitution map, and (held by the caller,
// internal/typecheck) a constraint queue. Splitting the queue out of this
// struct lets the queue's constraint kinds (which need ast/diagnostics
// types) live in internal/typecheck without this package importing them.
type InferenceContext struct {
	nextVar TypeVarId
	Subst   VarSubst
}

// NewInferenceContext returns an empty context, variable ids starting at 1
// (0 is reserved the same way NodeId/SymbolId reserve their zero values).
func NewInferenceContext() *InferenceContext {
	return &InferenceContext{nextVar: 1, Subst: make(VarSubst)}
}

// Fresh allocates a new unbound inference variable.
func (ic *InferenceContext) Fresh() Type {
	id := ic.nextVar
	ic.nextVar++
	return Var(id)
}

// Apply fully resolves t through the current substitution.
func (ic *InferenceContext) Apply(t Type) Type { return ic.Subst.Apply(t) }

// UnifyError describes a structural mismatch found during unification.
type UnifyError struct {
	Expected Type
	Found    Type
	Reason   string
}

func (e *UnifyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("expected %s, found %s: %s", e.Expected, e.Found, e.Reason)
	}
	return fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
}

// Unify structurally unifies a and b, recording new variable bindings into
// ic.Subst and returning a *UnifyError on mismatch (spec §4.5
// "Unification"). Error is absorbing (always succeeds); Never unifies with
// anything (bottom); empty tuple and Unit are interchangeable; KVar binds
// (with an occurs-check) unless already bound, in which case its bound
// value is unified instead.
func (ic *InferenceContext) Unify(a, b Type) error {
	a = ic.Subst.Apply(a)
	b = ic.Subst.Apply(b)

	if a.IsError() || b.IsError() {
		return nil
	}
	if a.IsNever() || b.IsNever() {
		return nil
	}
	if a.Kind == KVar {
		return ic.bind(a.Var, b)
	}
	if b.Kind == KVar {
		return ic.bind(b.Var, a)
	}
	// Unresolved placeholders defer: spec §4.5 "Unresolved named/generic
	// types defer unification (re-queued)" — the caller (typecheck's
	// solver) re-queues the owning constraint rather than treating this as
	// success or failure.
	if a.Kind == KUnresolvedNamed || a.Kind == KUnresolvedGeneric ||
		b.Kind == KUnresolvedNamed || b.Kind == KUnresolvedGeneric {
		return errDeferred
	}

	// Empty tuple / unit interchange (spec §4.5).
	if isUnitLike(a) && isUnitLike(b) {
		return nil
	}

	if a.Kind != b.Kind {
		return &UnifyError{Expected: a, Found: b}
	}

	switch a.Kind {
	case KPrimitive:
		if a.Prim != b.Prim {
			return &UnifyError{Expected: a, Found: b}
		}
		return nil
	case KNamed:
		if a.Named != b.Named {
			return &UnifyError{Expected: a, Found: b}
		}
		return nil
	case KOption:
		return ic.Unify(*a.Elem, *b.Elem)
	case KResult:
		if err := ic.Unify(*a.Ok, *b.Ok); err != nil {
			return err
		}
		return ic.Unify(*a.Err, *b.Err)
	case KArray:
		if a.Len != 0 && b.Len != 0 && a.Len != b.Len {
			return &UnifyError{Expected: a, Found: b, Reason: "array length mismatch"}
		}
		return ic.Unify(*a.Elem, *b.Elem)
	case KSlice:
		return ic.Unify(*a.Elem, *b.Elem)
	case KTuple:
		if len(a.Elems) != len(b.Elems) {
			return &UnifyError{Expected: a, Found: b, Reason: "tuple arity mismatch"}
		}
		for i := range a.Elems {
			if err := ic.Unify(a.Elems[i], b.Elems[i]); err != nil {
				return err
			}
		}
		return nil
	case KFn:
		if len(a.Params) != len(b.Params) {
			return &UnifyError{Expected: a, Found: b, Reason: "parameter count mismatch"}
		}
		for i := range a.Params {
			if err := ic.Unify(a.Params[i], b.Params[i]); err != nil {
				return err
			}
		}
		return ic.Unify(*a.Ret, *b.Ret)
	case KGeneric:
		if a.Base != b.Base || len(a.Args) != len(b.Args) {
			return &UnifyError{Expected: a, Found: b}
		}
		for i := range a.Args {
			if err := ic.Unify(a.Args[i], b.Args[i]); err != nil {
				return err
			}
		}
		return nil
	case KConst:
		if a.ConstValue != b.ConstValue {
			return &UnifyError{Expected: a, Found: b, Reason: "const value mismatch"}
		}
		return nil
	case KUnion:
		// A value of a single member type assigns to the union (spec
		// §4.5); full union-to-union unification requires every member of
		// b to match some member of a.
		for _, bm := range b.Members {
			ok := false
			for _, am := range a.Members {
				if ic.Unify(am, bm) == nil {
					ok = true
					break
				}
			}
			if !ok {
				return &UnifyError{Expected: a, Found: b, Reason: "union member not covered"}
			}
		}
		return nil
	}
	return &UnifyError{Expected: a, Found: b}
}

// AssignableToUnion reports whether value unifies with at least one member
// of union (spec §4.5 "a value of type A assigns to A | B").
func (ic *InferenceContext) AssignableToUnion(union, value Type) bool {
	union = ic.Subst.Apply(union)
	if union.Kind != KUnion {
		return ic.Unify(union, value) == nil
	}
	for _, m := range union.Members {
		snapshot := ic.snapshot()
		if ic.Unify(m, value) == nil {
			return true
		}
		ic.restore(snapshot)
	}
	return false
}

func isUnitLike(t Type) bool {
	if t.Kind == KPrimitive && t.Prim == "unit" {
		return true
	}
	if t.Kind == KTuple && len(t.Elems) == 0 {
		return true
	}
	return false
}

func (ic *InferenceContext) bind(v TypeVarId, t Type) error {
	if t.Kind == KVar && t.Var == v {
		return nil
	}
	if occurs(ic.Subst, v, t) {
		return &UnifyError{Expected: Var(v), Found: t, Reason: "infinite type"}
	}
	ic.Subst[v] = t
	return nil
}

// errDeferred is a sentinel distinguishing "retry later" from a genuine
// mismatch; internal/typecheck's solver checks for it through IsDeferred
// below, so callers don't need to import this package's unexported sentinel
// type.
var errDeferred = &deferredError{}

type deferredError struct{}

func (*deferredError) Error() string { return "unification deferred: unresolved placeholder" }

// IsDeferred reports whether err is the "retry this constraint later"
// sentinel produced when either operand is still an unresolved placeholder.
func IsDeferred(err error) bool {
	_, ok := err.(*deferredError)
	return ok
}

func (ic *InferenceContext) snapshot() VarSubst {
	cp := make(VarSubst, len(ic.Subst))
	for k, v := range ic.Subst {
		cp[k] = v
	}
	return cp
}

func (ic *InferenceContext) restore(s VarSubst) { ic.Subst = s }
