// Package mir implements spec §4.8: lowering a monomorphized AST function
// into an explicit-control-flow, SSA-ish CFG with cleanup frames, resource
// lifecycle statements, and closure environments. This is the hand-off
// artifact to the (external, non-goal) codegen collaborator — internal/mir
// stops at producing MirFunction values (SPEC_FULL §13).
package mir

import (
	"github.com/rask-lang/raskc/internal/typesystem"
)

// LocalId addresses one typed slot within a Function. Parameters are the
// first N locals, in declaration order (spec §4.8 "parameters are the
// first N locals").
type LocalId uint32

// BlockId addresses one Block within a Function.
type BlockId uint32

// Local is one typed slot.
type Local struct {
	ID   LocalId
	Type typesystem.Type
	Name string // empty for a compiler-synthesized temporary
}

// Block is one CFG node: a straight-line list of statements ending in
// exactly one Terminator.
type Block struct {
	ID         BlockId
	Stmts      []Stmt
	Terminator Terminator
	terminated bool // true once setTerm has run; distinguishes an explicit ReturnVoid from a never-terminated block
}

// Param is one function parameter's MIR-level shape (spec §4.8 "params:
// [{ id, ty, name? }]").
type Param struct {
	ID   LocalId
	Type typesystem.Type
	Name string
}

// Function is spec §4.8's MIR function: "{ name, params, ret_ty, locals,
// blocks, entry_block }".
type Function struct {
	Name       string
	Params     []Param
	RetTy      typesystem.Type
	Locals     []Local
	Blocks     []*Block
	EntryBlock BlockId
}

// NewLocal appends a fresh Local of the given type (and optional name) and
// returns its ID.
func (f *Function) NewLocal(t typesystem.Type, name string) LocalId {
	id := LocalId(len(f.Locals))
	f.Locals = append(f.Locals, Local{ID: id, Type: t, Name: name})
	return id
}

// NewBlock appends a fresh, terminator-less Block and returns its ID.
func (f *Function) NewBlock() BlockId {
	id := BlockId(len(f.Blocks))
	f.Blocks = append(f.Blocks, &Block{ID: id})
	return id
}

// Block looks up a block by ID; panics on an out-of-range ID since every
// BlockId in a finished Function must resolve (a lowering bug, not a user
// error).
func (f *Function) Block(id BlockId) *Block { return f.Blocks[id] }

// Program is the full lowered output: one MirFunction per monomorphized
// instance, in the order the monomorphizer produced them (spec §4.7/§4.8's
// "Output to codegen collaborator: MonoProgram + MirFunction stream").
type Program struct {
	Functions []*Function
}
