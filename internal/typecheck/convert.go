package typecheck

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/config"
	"github.com/rask-lang/raskc/internal/resolver"
	"github.com/rask-lang/raskc/internal/typesystem"
)

var primitiveNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true,
	"f32": true, "f64": true, "bool": true, "char": true, "string": true,
	"unit": true, "never": true,
}

// convertType turns a parsed TypeExpr into a typesystem.Type. typeParams
// names the generic parameters in scope (function + enclosing struct/enum);
// any single-segment name in that set becomes an UnresolvedNamed
// placeholder carrying just that name, which ApplyNamed substitutes once a
// concrete instantiation is known (spec §3 "Unresolved named / unresolved
// generic (pre-resolution placeholders)").
func (c *Checker) convertType(te ast.TypeExpr, typeParams map[string]bool) typesystem.Type {
	if te == nil {
		return typesystem.Unit
	}
	switch t := te.(type) {
	case *ast.NamedTypeExpr:
		return c.convertNamed(t, typeParams)
	case *ast.OptionTypeExpr:
		return typesystem.Option(c.convertType(t.Inner, typeParams))
	case *ast.ResultTypeExpr:
		return typesystem.Result(c.convertType(t.Ok, typeParams), c.convertType(t.Err, typeParams))
	case *ast.ArrayTypeExpr:
		length := 0
		if t.Len != nil {
			if v, ok := c.evalConstInt(t.Len); ok {
				length = v
			}
		}
		return typesystem.Array(c.convertType(t.Elem, typeParams), length)
	case *ast.SliceTypeExpr:
		return typesystem.Slice(c.convertType(t.Elem, typeParams))
	case *ast.TupleTypeExpr:
		elems := make([]typesystem.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = c.convertType(e, typeParams)
		}
		return typesystem.Tuple(elems...)
	case *ast.FnTypeExpr:
		params := make([]typesystem.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.convertType(p, typeParams)
		}
		return typesystem.Fn(params, c.convertType(t.Ret, typeParams))
	case *ast.UnionTypeExpr:
		members := make([]typesystem.Type, len(t.Members))
		for i, mem := range t.Members {
			members[i] = c.convertType(mem, typeParams)
		}
		return typesystem.Union(members...)
	case *ast.ConstArgExpr:
		if v, ok := c.evalConstInt(t.Value); ok {
			return typesystem.Const(v)
		}
		return typesystem.Const(0)
	}
	return typesystem.Err
}

func (c *Checker) convertNamed(t *ast.NamedTypeExpr, typeParams map[string]bool) typesystem.Type {
	if len(t.Path) == 1 {
		name := t.Path[0]
		if typeParams[name] {
			return typesystem.UnresolvedNamed([]string{name})
		}
		if primitiveNames[name] {
			return typesystem.Prim(name)
		}
		if name == config.OptionTypeName && len(t.Args) == 1 {
			return typesystem.Option(c.convertType(t.Args[0], typeParams))
		}
		if name == config.ResultTypeName && len(t.Args) == 2 {
			return typesystem.Result(c.convertType(t.Args[0], typeParams), c.convertType(t.Args[1], typeParams))
		}
		if id, ok := c.table.Lookup(name); ok {
			if len(t.Args) == 0 {
				def := c.table.Get(id)
				if def != nil && len(def.TypeParams) > 0 {
					return typesystem.Named(id) // bare generic name, args implicit/inferred
				}
				return typesystem.Named(id)
			}
			args := make([]typesystem.Type, len(t.Args))
			for i, a := range t.Args {
				args[i] = c.convertType(a, typeParams)
			}
			return typesystem.Generic(id, args...)
		}
		// Not a locally declared type: either a builtin handle (Vec, Map,
		// Pool, Handle, File, ...) or a genuinely undefined name, which the
		// method/field resolution constraints report lazily when something
		// actually tries to use it (spec §4.5 dispatch path 1 is keyed by
		// name, not by a registered TypeId).
		if len(t.Args) == 0 {
			return typesystem.UnresolvedNamed([]string{name})
		}
		args := make([]typesystem.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = c.convertType(a, typeParams)
		}
		return typesystem.UnresolvedGeneric([]string{name}, args)
	}
	// Qualified path (std.io.File, Color.Red used as a type): best-effort,
	// keep the full path so builtins.ReceiverHead (last segment) still
	// matches a module-qualified handle type.
	args := make([]typesystem.Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = c.convertType(a, typeParams)
	}
	if len(args) == 0 {
		return typesystem.UnresolvedNamed(t.Path)
	}
	return typesystem.UnresolvedGeneric(t.Path, args)
}

// evalConstInt folds a small constant-integer expression — spec §3's
// Array.len / const-generic args — for the cases the syntax allows: a bare
// int literal, or a reference to a previously-checked top-level const.
// Anything else reports len=0 ("comptime-dependent"), matching the
// spec-assigned meaning for an unresolvable size rather than guessing.
func (c *Checker) evalConstInt(e ast.Expr) (int, bool) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return int(n.Value), true
	case *ast.Identifier:
		if sym, ok := c.symbolOf(n.ID); ok && sym.Kind == resolver.SymConst {
			if cd, ok := sym.Decl.(*ast.ConstDecl); ok {
				return c.evalConstInt(cd.Value)
			}
		}
	case *ast.UnaryExpr:
		if n.Op == "-" {
			if v, ok := c.evalConstInt(n.Operand); ok {
				return -v, true
			}
		}
	}
	return 0, false
}
