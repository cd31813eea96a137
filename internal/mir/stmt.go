package mir

import "github.com/rask-lang/raskc/internal/typesystem"

// StmtKind discriminates Stmt (spec §4.8 "Statements").
type StmtKind int

const (
	SAssign StmtKind = iota
	SStore
	SCall
	SResourceRegister
	SResourceConsume
	SResourceScopeCheck
	SEnsurePush
	SEnsurePop
	SPoolCheckedAccess
	SSourceLocation
	SClosureCreate
	SClosureCall
	SLoadCapture
)

// Capture is one free variable closed over by a ClosureCreate, recorded
// with its byte offset inside the closure's heap environment block
// (spec §4.8 / SPEC_FULL §12 closure layout).
type Capture struct {
	Name   string
	Local  LocalId // the enclosing function's local holding the captured value
	Offset int
	Type   typesystem.Type
}

// Stmt is one MIR statement (spec §4.8).
type Stmt struct {
	Kind StmtKind

	// SAssign
	Dst    LocalId
	Rvalue Rvalue

	// SStore
	Addr      LocalId
	Offset    int
	FieldName string
	Value     Operand

	// SCall (Dst reused; Dst == InvalidLocal for a discarded/unit result)
	Func string
	Args []Operand

	// SResourceRegister / SResourceConsume / SResourceScopeCheck
	ResourceID   int
	TypeName     string
	ScopeDepth   int

	// SEnsurePush
	CleanupBlock BlockId

	// SPoolCheckedAccess
	Pool   Operand
	Handle Operand

	// SSourceLocation
	Line int
	Col  int

	// SClosureCreate (Dst reused)
	ClosureFunc string
	Captures    []Capture
	EnvSize     int

	// SClosureCall (Dst reused)
	Closure Operand

	// SLoadCapture (Dst reused)
	EnvPtr       LocalId
	CaptureOffset int
}

// InvalidLocal marks "no destination" for a Call/ClosureCall whose result
// is discarded (a unit-typed statement expression).
const InvalidLocal LocalId = ^LocalId(0)

// Assign builds an SAssign statement.
func Assign(dst LocalId, rv Rvalue) Stmt { return Stmt{Kind: SAssign, Dst: dst, Rvalue: rv} }

// Store builds an SStore statement (field/element write-through-address).
// Offset is -1 when only FieldName is known; a downstream layout pass
// resolves the numeric offset from the addressed struct's StructLayout.
func Store(addr LocalId, offset int, fieldName string, value Operand) Stmt {
	return Stmt{Kind: SStore, Addr: addr, Offset: offset, FieldName: fieldName, Value: value}
}

// Call builds an SCall statement.
func Call(dst LocalId, fn string, args []Operand) Stmt {
	return Stmt{Kind: SCall, Dst: dst, Func: fn, Args: args}
}

// ResourceRegister marks dst as a freshly created resource of the named
// type at the given lexical scope depth (spec §4.6 "resource tracking").
func ResourceRegister(dst LocalId, resourceID int, typeName string, scopeDepth int) Stmt {
	return Stmt{Kind: SResourceRegister, Dst: dst, ResourceID: resourceID, TypeName: typeName, ScopeDepth: scopeDepth}
}

// ResourceConsume marks a resource ID as consumed.
func ResourceConsume(resourceID int) Stmt {
	return Stmt{Kind: SResourceConsume, ResourceID: resourceID}
}

// ResourceScopeCheck asserts every resource registered at scopeDepth has
// been consumed or transferred by this point (spec §4.6 "scope-exit
// check"); the ownership checker has already proven this statically, so at
// MIR level it is a cheap runtime assertion, not a new analysis.
func ResourceScopeCheck(scopeDepth int) Stmt {
	return Stmt{Kind: SResourceScopeCheck, ScopeDepth: scopeDepth}
}

// EnsurePush/EnsurePop bracket an `ensure` block's cleanup chain entry
// (spec §4.8 "Ensure semantics").
func EnsurePush(cleanup BlockId) Stmt { return Stmt{Kind: SEnsurePush, CleanupBlock: cleanup} }
func EnsurePop() Stmt                 { return Stmt{Kind: SEnsurePop} }

// SourceLocation records a line/col marker for debug-info-adjacent tooling
// (golden MIR dumps, §SPEC_FULL §12 "MIR textual display").
func SourceLocation(line, col int) Stmt { return Stmt{Kind: SSourceLocation, Line: line, Col: col} }

// ClosureCreate builds an SClosureCreate statement (spec §4.8 "Closures").
func ClosureCreate(dst LocalId, funcName string, captures []Capture, envSize int) Stmt {
	return Stmt{Kind: SClosureCreate, Dst: dst, ClosureFunc: funcName, Captures: captures, EnvSize: envSize}
}

// ClosureCall builds an SClosureCall statement.
func ClosureCall(dst LocalId, closure Operand, args []Operand) Stmt {
	return Stmt{Kind: SClosureCall, Dst: dst, Closure: closure, Args: args}
}

// LoadCapture builds an SLoadCapture statement.
func LoadCapture(dst, envPtr LocalId, offset int) Stmt {
	return Stmt{Kind: SLoadCapture, Dst: dst, EnvPtr: envPtr, CaptureOffset: offset}
}
