package mir

import "github.com/rask-lang/raskc/internal/typesystem"

// ClosureFuncOffset is the byte offset of the function pointer within a
// closure's heap block; ClosureEnvOffset is where captured variables begin
// (spec §4.8 "Closures" / SPEC_FULL §12, grounded on the original's
// rask-codegen/src/closures.rs). Codegen itself (the cranelift emission in
// the original) is out of scope — internal/mir only computes the layout
// MIR's ClosureCreate/LoadCapture statements need.
const (
	ClosureFuncOffset = 0
	ClosureEnvOffset  = 8
)

// ClosureEnvLayout tracks captured variables and their placement within one
// closure's heap environment block, mirroring the original's
// ClosureEnvLayout/add_capture exactly (8-byte aligned offsets, a running
// size total).
type ClosureEnvLayout struct {
	Size     int
	Captures []Capture
}

// NewClosureEnvLayout returns an empty layout.
func NewClosureEnvLayout() *ClosureEnvLayout { return &ClosureEnvLayout{} }

// AddCapture appends a captured local to the layout, aligning its offset to
// the widest natural alignment (8 bytes, matching every MIR-representable
// scalar/pointer width) and returns the assigned offset.
func (l *ClosureEnvLayout) AddCapture(name string, local LocalId, t typesystem.Type) int {
	size := sizeOf(t)
	offset := (l.Size + 7) &^ 7
	l.Captures = append(l.Captures, Capture{Name: name, Local: local, Offset: offset, Type: t})
	l.Size = offset + size
	return offset
}

// TotalSize is the full heap-block allocation size including the 8-byte
// function-pointer header (spec/original: "total_size = 8 + layout.size").
func (l *ClosureEnvLayout) TotalSize() int { return ClosureEnvOffset + l.Size }

// sizeOf is MIR's own narrow notion of a type's storage size — just enough
// to lay out closure captures and struct/enum fields (spec §4.7 "Layout").
// It does not need to match a real ABI since codegen is out of scope; it
// only needs to be internally consistent.
func sizeOf(t typesystem.Type) int {
	switch t.Kind {
	case typesystem.KPrimitive:
		switch t.Prim {
		case "i8", "u8", "bool":
			return 1
		case "i16", "u16":
			return 2
		case "i32", "u32", "f32", "char":
			return 4
		case "i64", "u64", "f64":
			return 8
		case "i128", "u128":
			return 16
		case "unit", "never":
			return 0
		}
		return 8
	case typesystem.KOption, typesystem.KResult, typesystem.KNamed, typesystem.KGeneric,
		typesystem.KFn, typesystem.KSlice, typesystem.KUnion:
		return 8 // pointer/tagged-handle sized; exact layout is a TypeTable/mono concern
	case typesystem.KArray:
		return sizeOf(*t.Elem) * t.Len
	case typesystem.KTuple:
		total := 0
		for _, e := range t.Elems {
			total += sizeOf(e)
		}
		return total
	default:
		return 8
	}
}
