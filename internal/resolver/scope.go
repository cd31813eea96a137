package resolver

// ScopeKind distinguishes the scope-tree node kinds of spec §4.4.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeFunction
	ScopeBlock
	ScopeLoop
	ScopeClosure
)

// scope is one node of the nested scope tree. Shadowing is permitted — a
// new Define for a name already present in this scope replaces it, the
// same as the teacher's chained symbol tables
// (funvibe-funxy/internal/symbols' outer-pointer SymbolTable), generalized
// here to carry a numeric SymbolId instead of a Symbol value so use-sites
// can record a stable NodeId → SymbolId edge.
type scope struct {
	kind   ScopeKind
	label  string // non-empty for a labeled ScopeLoop
	outer  *scope
	names  map[string]SymbolId
	fnSym  SymbolId // owning function's SymbolId, set for ScopeFunction
}

func newScope(kind ScopeKind, outer *scope) *scope {
	return &scope{kind: kind, outer: outer, names: make(map[string]SymbolId)}
}

// define binds name to id in this scope, shadowing any outer (or same-scope)
// binding of the same name.
func (s *scope) define(name string, id SymbolId) {
	s.names[name] = id
}

// lookup walks the parent chain for name.
func (s *scope) lookup(name string) (SymbolId, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if id, ok := sc.names[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// enclosingLoop walks outward for the nearest ScopeLoop, optionally matching
// a specific label; it stops at a ScopeFunction/ScopeClosure boundary since
// break/continue never cross a function body (spec §4.4).
func (s *scope) enclosingLoop(label string) (*scope, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if sc.kind == ScopeFunction || sc.kind == ScopeClosure {
			return nil, false
		}
		if sc.kind == ScopeLoop {
			if label == "" || sc.label == label {
				return sc, true
			}
		}
	}
	return nil, false
}

// anyLabelExists reports whether any enclosing loop scope carries label,
// crossing function boundaries.
func (s *scope) anyLabelExists(label string) bool {
	for sc := s; sc != nil; sc = sc.outer {
		if sc.kind == ScopeLoop && sc.label == label {
			return true
		}
	}
	return false
}
