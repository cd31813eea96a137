// Package mono implements spec §4.7: a reachability-driven walk of the call
// graph from the program's entry points, cloning each reachable generic
// function's body once per concrete type-argument tuple it's called with,
// and computing the struct/enum layouts the cloned program's types need.
package mono

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/resolver"
	"github.com/rask-lang/raskc/internal/token"
	"github.com/rask-lang/raskc/internal/typecheck"
	"github.com/rask-lang/raskc/internal/typesystem"
)

// InstanceKey identifies one monomorphic instantiation: a function symbol
// plus the concrete type arguments it was reached with (spec §4.7
// "identity is by SymbolId + args"). Empty Args names a non-generic
// function's single (trivial) instance.
type InstanceKey struct {
	Symbol resolver.SymbolId
	Args   string // typesystem.Type.String() of each arg, joined with ", "
}

func keyOf(sym resolver.SymbolId, args []typesystem.Type) InstanceKey {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return InstanceKey{Symbol: sym, Args: strings.Join(parts, ", ")}
}

// MonoFn is one monomorphized function (spec §4.7 "MonoFn { name, type_args,
// body: Decl }"). For a generic instance, Decl is a clone of the original
// FnDecl with fresh NodeIds and TypeParams cleared; NodeTypes carries the
// same clone's per-node types, derived from the original typed program by
// substituting TypeArgs for the body's free type-parameter placeholders. A
// non-generic instance reuses the original FnDecl and its NodeTypes as is.
type MonoFn struct {
	Key       InstanceKey
	Name      string // mangled display name, e.g. "identity$i32"
	TypeArgs  []typesystem.Type
	Decl      *ast.FnDecl
	NodeTypes map[ast.NodeId]typesystem.Type
	Original  *ast.FnDecl

	// Params/Ret are the instance's concrete signature (the checker's
	// FnSig for the original symbol, with TypeArgs substituted for any
	// free type parameters) — internal/mir reads these directly instead
	// of re-deriving parameter/return types from NodeTypes.
	Params []typesystem.ParamDef
	Ret    typesystem.Type
}

// StructField is one field of a computed StructLayout.
type StructField struct {
	Name   string
	Type   typesystem.Type
	Offset int
	Size   int
}

// StructLayout is spec §4.7's per-struct layout record.
type StructLayout struct {
	TypeID typesystem.TypeId
	Name   string
	Size   int
	Align  int
	Fields []StructField
}

// EnumVariantLayout is one variant's payload placement within an
// EnumLayout.
type EnumVariantLayout struct {
	Name          string
	Tag           int
	PayloadOffset int
	PayloadSize   int
}

// EnumLayout is spec §4.7's per-enum layout record. TagType is "u8" for up
// to 256 variants, else "u16".
type EnumLayout struct {
	TypeID   typesystem.TypeId
	Name     string
	Size     int
	Align    int
	TagType  string
	Variants []EnumVariantLayout
}

// Program is spec §4.7's MonoProgram output.
type Program struct {
	Functions     []*MonoFn
	StructLayouts []*StructLayout
	EnumLayouts   []*EnumLayout
	Errors        []*diagnostics.DiagnosticError
}

// monomorphizer carries the shared state for one Monomorphize run.
type monomorphizer struct {
	prog *ast.Program
	res  *resolver.Result
	tc   *typecheck.Result

	declBySymbol map[resolver.SymbolId]*ast.FnDecl
	declByPtr    map[*ast.FnDecl]resolver.SymbolId

	instances  map[InstanceKey]*MonoFn
	order      []InstanceKey
	structSeen map[typesystem.TypeId]bool
	enumSeen   map[typesystem.TypeId]bool
	errors     []*diagnostics.DiagnosticError
}

// Monomorphize runs spec §4.7 over prog, given the resolver and type-checker
// results for the same compilation unit.
func Monomorphize(prog *ast.Program, res *resolver.Result, tc *typecheck.Result) *Program {
	m := &monomorphizer{
		prog:         prog,
		res:          res,
		tc:           tc,
		declBySymbol: map[resolver.SymbolId]*ast.FnDecl{},
		declByPtr:    map[*ast.FnDecl]resolver.SymbolId{},
		instances:    map[InstanceKey]*MonoFn{},
		structSeen:   map[typesystem.TypeId]bool{},
		enumSeen:     map[typesystem.TypeId]bool{},
	}
	m.indexDecls()
	m.walkReachable()

	out := &Program{Errors: m.errors}
	for _, k := range m.order {
		out.Functions = append(out.Functions, m.instances[k])
	}
	m.collectLayouts(out)
	return out
}

// indexDecls builds the SymbolId <-> *ast.FnDecl correlation the resolver's
// flat arena doesn't carry directly (mirrors internal/typecheck/declare.go's
// declToSym construction).
func (m *monomorphizer) indexDecls() {
	declToSym := make(map[ast.Decl]resolver.SymbolId)
	for _, sym := range m.res.Table.All() {
		if sym.Decl != nil {
			declToSym[sym.Decl] = sym.ID
		}
	}
	for _, d := range m.prog.Decls {
		switch decl := d.(type) {
		case *ast.FnDecl:
			if sid, ok := declToSym[decl]; ok {
				m.declBySymbol[sid] = decl
				m.declByPtr[decl] = sid
			}
		case *ast.ExtendDecl:
			for _, fn := range decl.Methods {
				if sid, ok := declToSym[fn]; ok {
					m.declBySymbol[sid] = fn
					m.declByPtr[fn] = sid
				}
			}
		}
	}
}

func (m *monomorphizer) errorf(span token.Span, code diagnostics.ErrorCode, format string, args ...any) {
	m.errors = append(m.errors, diagnostics.NewError(diagnostics.PhaseMonomorphize, code, span, fmt.Sprintf(format, args...)))
}

// mangledName renders InstanceKey's args into a display-only suffix (spec
// §4.7 "a name mangling of the instantiation (for display only)").
func mangledName(baseName string, args []typesystem.Type) string {
	if len(args) == 0 {
		return baseName
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = mangleOne(a)
	}
	return baseName + "$" + strings.Join(parts, "_")
}

func mangleOne(t typesystem.Type) string {
	s := t.String()
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
	return s
}

// sortedTypeIDs is a small helper so layout collection visits types in a
// deterministic order regardless of map iteration.
func sortedTypeIDs(ids map[typesystem.TypeId]bool) []typesystem.TypeId {
	out := make([]typesystem.TypeId, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
