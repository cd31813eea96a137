// Package resolver implements spec §4.4: building a scope tree and flat
// symbol arena over a parsed (and desugared) package, and recording a
// NodeId → SymbolId resolution for every name use-site.
package resolver

import "github.com/rask-lang/raskc/internal/ast"

// SymbolId addresses one entry of the resolver's flat symbol arena.
type SymbolId uint32

// SymbolKind distinguishes what a Symbol names.
type SymbolKind int

const (
	SymFunction SymbolKind = iota
	SymParam
	SymLocal
	SymStruct
	SymEnum
	SymEnumVariant
	SymUnion
	SymTrait
	SymConst
	SymTypeAlias
	SymTypeParam
	SymPackage
	SymExternalPackage
)

func (k SymbolKind) String() string {
	switch k {
	case SymFunction:
		return "function"
	case SymParam:
		return "parameter"
	case SymLocal:
		return "local binding"
	case SymStruct:
		return "struct"
	case SymEnum:
		return "enum"
	case SymEnumVariant:
		return "enum variant"
	case SymUnion:
		return "union"
	case SymTrait:
		return "trait"
	case SymConst:
		return "const"
	case SymTypeAlias:
		return "type alias"
	case SymTypeParam:
		return "type parameter"
	case SymPackage:
		return "package"
	case SymExternalPackage:
		return "external package"
	}
	return "symbol"
}

// Symbol is one flat-arena entry. Decl is the symbol's declaration node when
// it has one; params/locals/patterns have no ast.Decl, so Decl is nil for
// those, and their binding site is tracked informally through the scope
// they were Define'd in.
type Symbol struct {
	ID      SymbolId
	Name    string
	Kind    SymbolKind
	Mutable bool
	Decl    ast.Decl
}

// Table is the flat, append-only symbol arena (spec §4.4 "Flat arena of
// symbols addressed by SymbolId").
type Table struct {
	symbols []Symbol
}

func newTable() *Table {
	return &Table{}
}

func (t *Table) add(name string, kind SymbolKind, mutable bool, decl ast.Decl) SymbolId {
	id := SymbolId(len(t.symbols) + 1)
	t.symbols = append(t.symbols, Symbol{ID: id, Name: name, Kind: kind, Mutable: mutable, Decl: decl})
	return id
}

// Get returns the symbol for id, or the zero Symbol and false if id is out
// of range (id 0 is never assigned, mirroring ast.NoNodeId).
func (t *Table) Get(id SymbolId) (Symbol, bool) {
	if id == 0 || int(id) > len(t.symbols) {
		return Symbol{}, false
	}
	return t.symbols[id-1], true
}

// All returns every symbol in the flat arena, in registration order. Later
// passes (internal/typecheck's declaration collector) use this to
// correlate a declaration node back to the SymbolId the resolver assigned
// it, since Decl nodes themselves are never NodeId-keyed (spec §3).
func (t *Table) All() []Symbol { return t.symbols }

