// Package typesystem implements spec §3's Type sum and §4.5's unification:
// the resolved, post-checking type representation shared by the type
// checker, ownership checker, monomorphizer, and MIR lowerer.
package typesystem

import (
	"fmt"
	"strings"
)

// TypeVarId names an inference variable allocated by an InferenceContext.
type TypeVarId uint32

// TypeId addresses one entry of a TypeTable (spec §3 "TypeId -> TypeDef").
type TypeId uint32

// Kind discriminates the Type sum (spec §3).
type Kind int

const (
	KPrimitive Kind = iota
	KVar
	KNamed
	KUnresolvedNamed
	KUnresolvedGeneric
	KOption
	KResult
	KArray
	KSlice
	KTuple
	KFn
	KGeneric
	KUnion
	KError
	KConst // a const-generic argument value, e.g. the `4` in Array<i32, 4>
)

// Type is an immutable value type; composite variants carry pointers to
// sub-Types so zero-value Type (KPrimitive, Prim="") never aliases a real
// type accidentally.
type Type struct {
	Kind Kind

	Prim string // KPrimitive: "i32", "bool", "string", "unit", "never", ...

	Var TypeVarId // KVar

	Named TypeId // KNamed

	UnresolvedPath []string // KUnresolvedNamed / KUnresolvedGeneric
	UnresolvedArgs []Type   // KUnresolvedGeneric

	Elem *Type // KOption inner / KArray elem / KSlice elem
	Len  int   // KArray: 0 means comptime-dependent (spec §3)

	Ok  *Type // KResult
	Err *Type // KResult

	Elems []Type // KTuple

	Params []Type // KFn
	Ret    *Type  // KFn

	Base TypeId // KGeneric base type
	Args []Type // KGeneric type/const-usize args

	Members []Type // KUnion, flattened + deduplicated

	ConstValue int // KConst
}

// Primitive constructors.
func Prim(name string) Type { return Type{Kind: KPrimitive, Prim: name} }

var (
	Unit  = Prim("unit")
	Never = Prim("never")
	Bool  = Prim("bool")
	Char  = Prim("char")
	Str   = Prim("string")
	I32   = Prim("i32")
	F64   = Prim("f64")
	Err   = Type{Kind: KError}
)

func Var(id TypeVarId) Type    { return Type{Kind: KVar, Var: id} }
func Named(id TypeId) Type     { return Type{Kind: KNamed, Named: id} }
func Option(inner Type) Type   { return Type{Kind: KOption, Elem: &inner} }
func Result(ok, err Type) Type { return Type{Kind: KResult, Ok: &ok, Err: &err} }
func Array(elem Type, length int) Type {
	return Type{Kind: KArray, Elem: &elem, Len: length}
}
func Slice(elem Type) Type { return Type{Kind: KSlice, Elem: &elem} }
func Tuple(elems ...Type) Type {
	return Type{Kind: KTuple, Elems: elems}
}
func Fn(params []Type, ret Type) Type {
	return Type{Kind: KFn, Params: params, Ret: &ret}
}
func Generic(base TypeId, args ...Type) Type {
	return Type{Kind: KGeneric, Base: base, Args: args}
}
func UnresolvedNamed(path []string) Type {
	return Type{Kind: KUnresolvedNamed, UnresolvedPath: path}
}
func UnresolvedGeneric(path []string, args []Type) Type {
	return Type{Kind: KUnresolvedGeneric, UnresolvedPath: path, UnresolvedArgs: args}
}

// Const builds a const-generic argument value (spec §3 "Generic { base,
// args } where args may be types or const-usize").
func Const(v int) Type { return Type{Kind: KConst, ConstValue: v} }

// Union builds a normalized union: flattens nested unions, deduplicates by
// String() representation, and collapses a singleton set to its one member
// (spec §4.5 "Union types").
func Union(members ...Type) Type {
	var flat []Type
	seen := map[string]bool{}
	var walk func(t Type)
	walk = func(t Type) {
		if t.Kind == KUnion {
			for _, m := range t.Members {
				walk(m)
			}
			return
		}
		key := t.String()
		if seen[key] {
			return
		}
		seen[key] = true
		flat = append(flat, t)
	}
	for _, m := range members {
		walk(m)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Type{Kind: KUnion, Members: flat}
}

// IsError reports whether t is the absorbing Error sentinel (spec §9).
func (t Type) IsError() bool { return t.Kind == KError }

// IsNever reports whether t is the bottom type, which unifies with anything.
func (t Type) IsNever() bool { return t.Kind == KPrimitive && t.Prim == "never" }

// IsVar reports whether t is an unresolved inference variable.
func (t Type) IsVar() bool { return t.Kind == KVar }

// IsIntPrimitive / IsFloatPrimitive classify numeric primitives for literal
// defaulting and cast checking.
func (t Type) IsIntPrimitive() bool {
	switch t.Prim {
	case "i8", "i16", "i32", "i64", "i128", "u8", "u16", "u32", "u64", "u128":
		return t.Kind == KPrimitive
	}
	return false
}

func (t Type) IsFloatPrimitive() bool {
	return t.Kind == KPrimitive && (t.Prim == "f32" || t.Prim == "f64")
}

// String renders t for diagnostics; it is not a parser round-trip format.
func (t Type) String() string {
	switch t.Kind {
	case KPrimitive:
		return t.Prim
	case KVar:
		return fmt.Sprintf("?%d", t.Var)
	case KNamed:
		return fmt.Sprintf("#%d", t.Named)
	case KUnresolvedNamed:
		return strings.Join(t.UnresolvedPath, ".")
	case KUnresolvedGeneric:
		args := make([]string, len(t.UnresolvedArgs))
		for i, a := range t.UnresolvedArgs {
			args[i] = a.String()
		}
		return strings.Join(t.UnresolvedPath, ".") + "<" + strings.Join(args, ", ") + ">"
	case KOption:
		return t.Elem.String() + "?"
	case KResult:
		return t.Ok.String() + " or " + t.Err.String()
	case KArray:
		if t.Len == 0 {
			return "[" + t.Elem.String() + "; _]"
		}
		return fmt.Sprintf("[%s; %d]", t.Elem.String(), t.Len)
	case KSlice:
		return "[" + t.Elem.String() + "]"
	case KTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KFn:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + t.Ret.String()
	case KGeneric:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("#%d<%s>", t.Base, strings.Join(parts, ", "))
	case KUnion:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = m.String()
		}
		return strings.Join(parts, " | ")
	case KError:
		return "<error>"
	case KConst:
		return fmt.Sprintf("%d", t.ConstValue)
	}
	return "<?>"
}

// Equal reports structural equality after substitution; used for union
// deduplication and exhaustiveness comparisons. Inference variables compare
// equal only by identical Var id (callers should substitute first).
func (t Type) Equal(o Type) bool { return t.String() == o.String() }
