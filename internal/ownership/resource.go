package ownership

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/typesystem"
)

// isResourceType reports whether t names an `@resource`-marked struct
// (spec §3 "is_resource"), looking through KNamed/KGeneric to the
// underlying TypeDef.
func (c *Checker) isResourceType(t typesystem.Type) bool {
	var id typesystem.TypeId
	switch t.Kind {
	case typesystem.KNamed:
		id = t.Named
	case typesystem.KGeneric:
		id = t.Base
	default:
		return false
	}
	def := c.tc.Table.Get(id)
	return def != nil && def.IsResource
}

// isResourceTypeExpr resolves a syntactic type annotation (as written on a
// parameter) to the same judgment, by name only — sufficient for the
// ownership pass, which never needs the annotation's full generic shape.
func (c *Checker) isResourceTypeExpr(te ast.TypeExpr) bool {
	named, ok := te.(*ast.NamedTypeExpr)
	if !ok || len(named.Path) == 0 {
		return false
	}
	id, ok := c.tc.Table.Lookup(named.Path[len(named.Path)-1])
	if !ok {
		return false
	}
	def := c.tc.Table.Get(id)
	return def != nil && def.IsResource
}

// typeOf returns the checked type of expression node e, or the zero Type
// (Kind == KPrimitive, Prim == "") if the type checker never recorded one
// (e.g. a node from a phase-skipped branch).
func (c *Checker) typeOf(e ast.Expr) typesystem.Type {
	if e == nil {
		return typesystem.Type{}
	}
	return c.tc.NodeTypes[e.GetID()]
}

// identName returns e's bare identifier name, if e is one (a move/consume
// site is only tracked when it's a direct name reference — `take(h)`, not
// `take(compute())`).
func identName(e ast.Expr) (string, bool) {
	id, ok := e.(*ast.Identifier)
	if !ok {
		return "", false
	}
	return id.Value, true
}

// placeOf renders a simple dotted "name.field.field" place string for ESAD
// conflict comparisons; returns "" for a place it can't express this simply
// (an index, a call result, ...) — those never participate in the
// overlap check, so only identifiers and field-access chains are tracked as
// borrowed places; index and method-call places are not.
func placeOf(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Value
	case *ast.FieldExpr:
		base := placeOf(n.Receiver)
		if base == "" {
			return ""
		}
		return base + "." + n.Field
	default:
		return ""
	}
}
