package typecheck

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/typesystem"
)

// bindPattern checks p against scrutinee type ty, defining every capture the
// pattern introduces into the current scope (spec §4.5's pattern-binding
// rules for match/if-is/while-let/for).
func (c *Checker) bindPattern(p ast.Pattern, ty typesystem.Type) {
	switch n := p.(type) {
	case *ast.WildcardPattern:
	case *ast.IdentPattern:
		c.define(n.Name, ty)
	case *ast.LiteralPattern:
		litTy := c.checkExpr(n.Value, ty)
		c.equal(ty, litTy, n.Span)
	case *ast.TuplePattern:
		elemVars := make([]typesystem.Type, len(n.Elems))
		for i := range elemVars {
			elemVars[i] = c.ic.Fresh()
		}
		c.equal(ty, typesystem.Tuple(elemVars...), n.Span)
		for i, sub := range n.Elems {
			c.bindPattern(sub, elemVars[i])
		}
	case *ast.OrPattern:
		for _, alt := range n.Alternatives {
			c.bindPattern(alt, ty)
		}
	case *ast.ConstructorPattern:
		c.bindConstructorPattern(n, ty)
	case *ast.StructPattern:
		c.bindStructPattern(n, ty)
	}
}

// variantOwner resolves a variant name to its owning enum TypeDef, preferring
// the hint type's own definition when ty already names a specific enum
// (spec §4.5 dispatch: Option/None and Result/Ok/Err are pre-registered,
// everything else is looked up by name across the TypeTable since a bare
// variant name doesn't carry its enum in the syntax).
func (c *Checker) variantOwner(name string, ty typesystem.Type) (*typesystem.TypeDef, bool) {
	if ty.Kind == typesystem.KNamed {
		if def := c.table.Get(ty.Named); def != nil {
			if _, ok := def.VariantByName(name); ok {
				return def, true
			}
		}
	}
	if ty.Kind == typesystem.KGeneric {
		if def := c.table.Get(ty.Base); def != nil {
			if _, ok := def.VariantByName(name); ok {
				return def, true
			}
		}
	}
	switch name {
	case "Some", "None":
		return c.table.Get(c.table.OptionID), true
	case "Ok", "Err":
		return c.table.Get(c.table.ResultID), true
	}
	for _, def := range c.table.All() {
		d := def
		if d.Kind == typesystem.DefEnum {
			if _, ok := d.VariantByName(name); ok {
				return &d, true
			}
		}
	}
	return nil, false
}

func (c *Checker) bindConstructorPattern(n *ast.ConstructorPattern, ty typesystem.Type) {
	if len(n.Path) == 0 {
		return
	}
	variantName := n.Path[len(n.Path)-1]
	def, ok := c.variantOwner(variantName, ty)
	if !ok {
		c.errorf(n.Span, diagnostics.CodeResolveUndefinedName, "undefined variant '%s'", variantName)
		for _, f := range n.Fields {
			c.bindPattern(f, typesystem.Err)
		}
		return
	}
	vd, ok := def.VariantByName(variantName)
	if !ok {
		c.errorf(n.Span, diagnostics.CodeNoSuchField, "enum '%s' has no variant '%s'", def.Name, variantName)
		return
	}
	var args []typesystem.Type
	if ty.Kind == typesystem.KGeneric && ty.Base == def.ID {
		args = ty.Args
	} else {
		args = make([]typesystem.Type, len(def.TypeParams))
		for i := range args {
			args[i] = c.ic.Fresh()
		}
	}
	ownTy := typesystem.Named(def.ID)
	if len(args) > 0 {
		ownTy = typesystem.Generic(def.ID, args...)
	}
	c.equal(ty, ownTy, n.Span)
	sub := typesystem.Substitution{}
	for i, pname := range def.TypeParams {
		if i < len(args) {
			sub[pname] = args[i]
		}
	}
	for i, sub2 := range n.Fields {
		var fieldTy typesystem.Type
		if i < len(vd.Positional) {
			fieldTy = resolveUnresolved(c, typesystem.ApplyNamed(vd.Positional[i], sub))
		} else {
			fieldTy = c.ic.Fresh()
		}
		c.bindPattern(sub2, fieldTy)
	}
}

func (c *Checker) bindStructPattern(n *ast.StructPattern, ty typesystem.Type) {
	if len(n.Path) == 0 {
		return
	}
	name := n.Path[len(n.Path)-1]
	var def *typesystem.TypeDef
	var args []typesystem.Type
	if id, ok := c.table.Lookup(name); ok {
		def = c.table.Get(id)
	}
	if def == nil {
		if ownerDef, ok := c.variantOwner(name, ty); ok {
			def = ownerDef
		}
	}
	if def == nil {
		c.errorf(n.Span, diagnostics.CodeResolveUndefinedName, "undefined type '%s'", name)
		for _, f := range n.Fields {
			if f.Pattern != nil {
				c.bindPattern(f.Pattern, typesystem.Err)
			} else {
				c.define(f.Name, typesystem.Err)
			}
		}
		return
	}
	if ty.Kind == typesystem.KGeneric && ty.Base == def.ID {
		args = ty.Args
	} else {
		args = make([]typesystem.Type, len(def.TypeParams))
		for i := range args {
			args[i] = c.ic.Fresh()
		}
	}
	ownTy := typesystem.Named(def.ID)
	if len(args) > 0 {
		ownTy = typesystem.Generic(def.ID, args...)
	}
	c.equal(ty, ownTy, n.Span)
	sub := typesystem.Substitution{}
	for i, pname := range def.TypeParams {
		if i < len(args) {
			sub[pname] = args[i]
		}
	}
	fields := def.Fields
	if def.Kind == typesystem.DefEnum {
		if vd, ok := def.VariantByName(name); ok {
			fields = vd.Named
		}
	}
	for _, f := range n.Fields {
		idx := -1
		for i, fd := range fields {
			if fd.Name == f.Name {
				idx = i
				break
			}
		}
		var fieldTy typesystem.Type
		if idx >= 0 {
			fieldTy = resolveUnresolved(c, typesystem.ApplyNamed(fields[idx].Type, sub))
		} else {
			c.errorf(n.Span, diagnostics.CodeNoSuchField, "'%s' has no field '%s'", name, f.Name)
			fieldTy = typesystem.Err
		}
		if f.Pattern != nil {
			c.bindPattern(f.Pattern, fieldTy)
		} else {
			c.define(f.Name, fieldTy)
		}
	}
}
