package mir

import "github.com/rask-lang/raskc/internal/typesystem"

// Operand is an Rvalue operand: either a constant or a read of a Local.
type Operand struct {
	IsConst bool

	// Local form.
	Local LocalId

	// Const form (spec §3's literal kinds, pre-reduced to Go values).
	ConstKind ConstKind
	IntConst  int64
	FloatConst float64
	BoolConst bool
	CharConst rune
	StrConst  string
	Type      typesystem.Type
}

// ConstKind discriminates Operand's constant payload.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstChar
	ConstString
	ConstUnit
	ConstNone // the `none` Option literal, pre-canonicalization
	ConstNull // the `null` raw-pointer literal (unsafe-only, spec §4.5)
)

// UseLocal builds an Operand reading local l.
func UseLocal(l LocalId) Operand { return Operand{IsConst: false, Local: l} }

// ConstIntOp / ConstFloatOp / ... build literal operands.
func ConstIntOp(v int64, t typesystem.Type) Operand {
	return Operand{IsConst: true, ConstKind: ConstInt, IntConst: v, Type: t}
}
func ConstFloatOp(v float64, t typesystem.Type) Operand {
	return Operand{IsConst: true, ConstKind: ConstFloat, FloatConst: v, Type: t}
}
func ConstBoolOp(v bool) Operand {
	return Operand{IsConst: true, ConstKind: ConstBool, BoolConst: v, Type: typesystem.Bool}
}
func ConstCharOp(v rune) Operand {
	return Operand{IsConst: true, ConstKind: ConstChar, CharConst: v, Type: typesystem.Char}
}
func ConstStringOp(v string) Operand {
	return Operand{IsConst: true, ConstKind: ConstString, StrConst: v, Type: typesystem.Str}
}
func ConstUnitOp() Operand {
	return Operand{IsConst: true, ConstKind: ConstUnit, Type: typesystem.Unit}
}
func ConstNoneOp(t typesystem.Type) Operand {
	return Operand{IsConst: true, ConstKind: ConstNone, Type: t}
}
func ConstNullOp() Operand {
	return Operand{IsConst: true, ConstKind: ConstNull}
}

// RvalueKind discriminates the Rvalue sum (spec §4.8 "Rvalues").
type RvalueKind int

const (
	RUse RvalueKind = iota
	RRef
	RDeref
	RBinaryOp
	RUnaryOp
	RCast
	RField
	REnumTag
	RAggregate // struct/array/tuple construction; not named in spec's prose list but required to lower struct/array/tuple literals into a single rvalue rather than N separate Store statements into an unaddressed temporary
)

// Rvalue is the right-hand side of an Assign statement.
type Rvalue struct {
	Kind RvalueKind

	// RUse
	Operand Operand

	// RRef / RDeref
	Base LocalId

	// RBinaryOp
	Op    string
	Left  Operand
	Right Operand

	// RUnaryOp / RCast
	UnaryOp string
	Operand1 Operand
	CastTo   typesystem.Type

	// RField
	FieldBase  Operand
	FieldIndex int
	FieldName  string

	// REnumTag
	TagValue Operand

	// RAggregate
	AggregateType typesystem.Type
	AggregateElems []Operand
}
