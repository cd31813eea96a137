package typesystem

import "github.com/rask-lang/raskc/internal/ast"

// TypeDefKind distinguishes a TypeTable entry's declaration form (spec §3).
type TypeDefKind int

const (
	DefStruct TypeDefKind = iota
	DefEnum
	DefTrait
	DefUnion
)

// FieldDef is one struct field's resolved type.
type FieldDef struct {
	Name string
	Type Type
}

// SelfMode distinguishes a method's receiver consumption mode (spec §4.5
// "self_param = Take / Mutate / Value").
type SelfMode int

const (
	SelfValue SelfMode = iota // read-only, the default
	SelfTake
	SelfMutate
	SelfNone // no receiver (an associated/static function)
)

// ParamDef is one resolved parameter (or receiver) of a MethodDef/FnSig.
type ParamDef struct {
	Name    string
	Type    Type
	Take    bool
	Mutable bool
}

// MethodDef is one method attached to a TypeDef via an `extend` block.
type MethodDef struct {
	Name       string
	TypeParams []string
	Self       SelfMode
	Params     []ParamDef
	Ret        Type
	Decl       *ast.FnDecl
}

// VariantDef is one enum variant's resolved payload shape.
type VariantDef struct {
	Name  string
	Index int
	Positional []Type    // `Some(T)`-style payload
	Named      []FieldDef // `Circle { radius: f64 }`-style payload
}

// TypeDef is one TypeTable entry (spec §3).
type TypeDef struct {
	ID         TypeId
	Name       string
	Kind       TypeDefKind
	TypeParams []string
	Fields     []FieldDef   // DefStruct
	Variants   []VariantDef // DefEnum
	Methods    []MethodDef  // DefStruct / DefEnum
	SuperTraits []TypeId    // DefTrait
	TraitMethods []MethodDef // DefTrait method signatures (may have default bodies)
	UnionMembers []Type     // DefUnion
	IsResource bool
	Decl       ast.Decl
}

// FieldIndex returns the declaration order index of a named field, or -1.
func (d *TypeDef) FieldIndex(name string) int {
	for i, f := range d.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Method looks up a method by name, reporting whether it exists.
func (d *TypeDef) Method(name string) (MethodDef, bool) {
	for _, m := range d.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodDef{}, false
}

// VariantByName looks up an enum variant by name.
func (d *TypeDef) VariantByName(name string) (VariantDef, bool) {
	for _, v := range d.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return VariantDef{}, false
}

// Table is the dense TypeId -> TypeDef arena plus its name index (spec §3
// "a dense vector of TypeDef entries plus a name->id map").
type Table struct {
	defs     []TypeDef
	byName   map[string]TypeId
	OptionID TypeId
	ResultID TypeId
}

// NewTable builds a table with Option and Result pre-registered as enums
// (spec §3 "Option and Result are pre-registered enums whose IDs are
// remembered for canonicalization").
func NewTable() *Table {
	t := &Table{byName: make(map[string]TypeId)}
	t.OptionID = t.Register(TypeDef{
		Name:       "Option",
		Kind:       DefEnum,
		TypeParams: []string{"T"},
		Variants: []VariantDef{
			{Name: "Some", Index: 0, Positional: []Type{Var(0)}},
			{Name: "None", Index: 1},
		},
	})
	t.ResultID = t.Register(TypeDef{
		Name:       "Result",
		Kind:       DefEnum,
		TypeParams: []string{"T", "E"},
		Variants: []VariantDef{
			{Name: "Ok", Index: 0, Positional: []Type{Var(0)}},
			{Name: "Err", Index: 1, Positional: []Type{Var(1)}},
		},
	})
	return t
}

// Register appends def to the table, assigns its ID, and indexes it by
// name (if non-empty and not already present — the caller reports
// duplicate-declaration diagnostics, not this table).
func (t *Table) Register(def TypeDef) TypeId {
	id := TypeId(len(t.defs))
	def.ID = id
	t.defs = append(t.defs, def)
	if def.Name != "" {
		if _, exists := t.byName[def.Name]; !exists {
			t.byName[def.Name] = id
		}
	}
	return id
}

// Get returns the def for id.
func (t *Table) Get(id TypeId) *TypeDef {
	if int(id) >= len(t.defs) {
		return nil
	}
	return &t.defs[id]
}

// Lookup finds a TypeId by declared name.
func (t *Table) Lookup(name string) (TypeId, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// AddMethod attaches or replaces a method on the type registered as id
// (spec §4.5 pass 1 "For every extend block, attach methods to the already
// registered target type").
func (t *Table) AddMethod(id TypeId, m MethodDef) {
	def := t.Get(id)
	if def == nil {
		return
	}
	for i, existing := range def.Methods {
		if existing.Name == m.Name {
			def.Methods[i] = m
			return
		}
	}
	def.Methods = append(def.Methods, m)
}

// All returns every registered TypeDef, in registration order.
func (t *Table) All() []TypeDef { return t.defs }
