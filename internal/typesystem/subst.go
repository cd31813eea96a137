package typesystem

// Substitution maps generic type-parameter names (as written on a
// FnDecl/StructDecl/EnumDecl) to concrete Types, used both by method/call
// generic instantiation (spec §4.5) and by the monomorphizer (spec §4.7).
type Substitution map[string]Type

// ApplyNamed substitutes named (by-parameter-name) generics into t. It
// recurses through every composite Type shape; KUnresolvedNamed/
// KUnresolvedGeneric with a single-segment path matching a substitution key
// are replaced directly (this is how generic struct/enum field types and
// method signatures get instantiated before unification).
func ApplyNamed(t Type, sub Substitution) Type {
	switch t.Kind {
	case KUnresolvedNamed:
		if len(t.UnresolvedPath) == 1 {
			if repl, ok := sub[t.UnresolvedPath[0]]; ok {
				return repl
			}
		}
		return t
	case KUnresolvedGeneric:
		args := make([]Type, len(t.UnresolvedArgs))
		for i, a := range t.UnresolvedArgs {
			args[i] = ApplyNamed(a, sub)
		}
		if len(t.UnresolvedPath) == 1 {
			if repl, ok := sub[t.UnresolvedPath[0]]; ok {
				return repl
			}
		}
		return UnresolvedGeneric(t.UnresolvedPath, args)
	case KOption:
		inner := ApplyNamed(*t.Elem, sub)
		return Option(inner)
	case KResult:
		ok := ApplyNamed(*t.Ok, sub)
		err := ApplyNamed(*t.Err, sub)
		return Result(ok, err)
	case KArray:
		elem := ApplyNamed(*t.Elem, sub)
		return Array(elem, t.Len)
	case KSlice:
		elem := ApplyNamed(*t.Elem, sub)
		return Slice(elem)
	case KTuple:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = ApplyNamed(e, sub)
		}
		return Tuple(elems...)
	case KFn:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = ApplyNamed(p, sub)
		}
		ret := ApplyNamed(*t.Ret, sub)
		return Fn(params, ret)
	case KGeneric:
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = ApplyNamed(a, sub)
		}
		return Generic(t.Base, args...)
	case KUnion:
		members := make([]Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = ApplyNamed(m, sub)
		}
		return Union(members...)
	default:
		return t
	}
}

// VarSubst maps inference-variable ids to their resolved Type, the
// InferenceContext's substitution map (spec §4.5 "(b) a substitution map
// TypeVarId -> Type").
type VarSubst map[TypeVarId]Type

// Apply recursively resolves every KVar in t through sub, following chains
// of variable-to-variable bindings until a concrete type or an unbound
// variable is reached.
func (sub VarSubst) Apply(t Type) Type {
	switch t.Kind {
	case KVar:
		if repl, ok := sub[t.Var]; ok {
			return sub.Apply(repl)
		}
		return t
	case KOption:
		inner := sub.Apply(*t.Elem)
		return Option(inner)
	case KResult:
		return Result(sub.Apply(*t.Ok), sub.Apply(*t.Err))
	case KArray:
		return Array(sub.Apply(*t.Elem), t.Len)
	case KSlice:
		return Slice(sub.Apply(*t.Elem))
	case KTuple:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = sub.Apply(e)
		}
		return Tuple(elems...)
	case KFn:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = sub.Apply(p)
		}
		return Fn(params, sub.Apply(*t.Ret))
	case KGeneric:
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = sub.Apply(a)
		}
		return Generic(t.Base, args...)
	case KUnion:
		members := make([]Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = sub.Apply(m)
		}
		return Union(members...)
	default:
		return t
	}
}

// occurs reports whether v appears free anywhere within t, after applying
// sub — the occurs-check that prevents building an infinite type via
// unification (spec §4.5 "occurs-check on variable-to-type").
func occurs(sub VarSubst, v TypeVarId, t Type) bool {
	t = sub.Apply(t)
	switch t.Kind {
	case KVar:
		return t.Var == v
	case KOption:
		return occurs(sub, v, *t.Elem)
	case KResult:
		return occurs(sub, v, *t.Ok) || occurs(sub, v, *t.Err)
	case KArray, KSlice:
		return occurs(sub, v, *t.Elem)
	case KTuple:
		for _, e := range t.Elems {
			if occurs(sub, v, e) {
				return true
			}
		}
		return false
	case KFn:
		for _, p := range t.Params {
			if occurs(sub, v, p) {
				return true
			}
		}
		return occurs(sub, v, *t.Ret)
	case KGeneric:
		for _, a := range t.Args {
			if occurs(sub, v, a) {
				return true
			}
		}
		return false
	case KUnion:
		for _, m := range t.Members {
			if occurs(sub, v, m) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
