package typecheck

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/resolver"
	"github.com/rask-lang/raskc/internal/typesystem"
)

func declSet(params []ast.TypeParam) map[string]bool {
	out := make(map[string]bool, len(params))
	for _, p := range params {
		out[p.Name] = true
	}
	return out
}

func typeParamNames(params []ast.TypeParam) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

// declarePass is spec §4.5 pass 1: register every struct/enum/trait/union
// shell (so mutually-referencing types resolve), then fill in field/variant
// types, then attach `extend` methods and collect free-function signatures.
func (c *Checker) declarePass(prog *ast.Program) {
	declToSym := make(map[ast.Decl]resolver.SymbolId)
	for _, sym := range c.res.Table.All() {
		if sym.Decl != nil {
			declToSym[sym.Decl] = sym.ID
		}
	}

	type pending struct {
		decl ast.Decl
		id   typesystem.TypeId
	}
	var pendings []pending

	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.StructDecl:
			id := c.table.Register(typesystem.TypeDef{
				Name: decl.Name, Kind: typesystem.DefStruct,
				TypeParams: typeParamNames(decl.TypeParams), IsResource: decl.IsResource, Decl: decl,
			})
			c.registerTypeSym(declToSym, decl, id)
			pendings = append(pendings, pending{decl, id})
		case *ast.EnumDecl:
			id := c.table.Register(typesystem.TypeDef{
				Name: decl.Name, Kind: typesystem.DefEnum,
				TypeParams: typeParamNames(decl.TypeParams), Decl: decl,
			})
			c.registerTypeSym(declToSym, decl, id)
			pendings = append(pendings, pending{decl, id})
		case *ast.UnionDecl:
			id := c.table.Register(typesystem.TypeDef{Name: decl.Name, Kind: typesystem.DefUnion, Decl: decl})
			c.registerTypeSym(declToSym, decl, id)
			pendings = append(pendings, pending{decl, id})
		case *ast.TraitDecl:
			id := c.table.Register(typesystem.TypeDef{
				Name: decl.Name, Kind: typesystem.DefTrait,
				TypeParams: typeParamNames(decl.TypeParams), Decl: decl,
			})
			c.registerTypeSym(declToSym, decl, id)
			pendings = append(pendings, pending{decl, id})
		}
	}

	for _, pend := range pendings {
		switch decl := pend.decl.(type) {
		case *ast.StructDecl:
			tp := declSet(decl.TypeParams)
			def := c.table.Get(pend.id)
			for _, f := range decl.Fields {
				def.Fields = append(def.Fields, typesystem.FieldDef{Name: f.Name, Type: c.convertType(f.Type, tp)})
			}
		case *ast.EnumDecl:
			tp := declSet(decl.TypeParams)
			def := c.table.Get(pend.id)
			for i, v := range decl.Variants {
				vd := typesystem.VariantDef{Name: v.Name, Index: i}
				for _, f := range v.Fields {
					vd.Positional = append(vd.Positional, c.convertType(f, tp))
				}
				for _, f := range v.Named {
					vd.Named = append(vd.Named, typesystem.FieldDef{Name: f.Name, Type: c.convertType(f.Type, tp)})
				}
				def.Variants = append(def.Variants, vd)
			}
		case *ast.UnionDecl:
			def := c.table.Get(pend.id)
			for _, mem := range decl.Members {
				def.UnionMembers = append(def.UnionMembers, c.convertType(mem, nil))
			}
		case *ast.TraitDecl:
			tp := declSet(decl.TypeParams)
			def := c.table.Get(pend.id)
			for _, ms := range decl.Methods {
				def.TraitMethods = append(def.TraitMethods, c.methodSigOf(ms.Name, nil, ms.Params, ms.Ret, tp, nil))
			}
		}
	}

	// extend blocks attach methods to the already-registered target type
	// (spec §4.5 "For every extend block, attach methods to the already
	// registered target type").
	for _, d := range prog.Decls {
		ext, ok := d.(*ast.ExtendDecl)
		if !ok {
			continue
		}
		extTP := declSet(ext.TypeParams)
		targetID, ok := c.lookupExtendTarget(ext.Target)
		if !ok {
			c.errorf(ext.Span, diagnostics.CodeGenericError, "cannot extend unknown type '%s'", ext.Target.TokenLiteral())
			continue
		}
		def := c.table.Get(targetID)
		combinedTP := map[string]bool{}
		for k := range extTP {
			combinedTP[k] = true
		}
		for _, n := range def.TypeParams {
			combinedTP[n] = true
		}
		for _, fn := range ext.Methods {
			md := c.methodSigOf(fn.Name, fn.TypeParams, fn.Params, fn.Ret, combinedTP, fn)
			md.Name = fn.Name
			c.table.AddMethod(targetID, md)
			selfType := typesystem.Named(targetID)
			if len(def.TypeParams) > 0 {
				args := make([]typesystem.Type, len(def.TypeParams))
				for i, pname := range def.TypeParams {
					args[i] = typesystem.UnresolvedNamed([]string{pname})
				}
				selfType = typesystem.Generic(targetID, args...)
			}
			c.sigByFn[fn] = &FnSig{
				Name: md.Name, TypeParams: md.TypeParams, Self: md.Self, SelfType: selfType,
				Params: md.Params, Ret: md.Ret, Decl: fn, NoAlloc: fn.NoAlloc,
				BodyTypeParams: combinedTP,
			}
		}
	}

	// Free-function and extern-function signatures.
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FnDecl:
			c.registerFreeFn(declToSym, decl)
		case *ast.ExternDecl:
			for _, fn := range decl.Fns {
				c.registerFreeFn(declToSym, fn)
			}
		}
	}
}

func (c *Checker) registerTypeSym(declToSym map[ast.Decl]resolver.SymbolId, decl ast.Decl, id typesystem.TypeId) {
	if sid, ok := declToSym[decl]; ok {
		c.typeIDs[sid] = id
	}
}

func (c *Checker) registerFreeFn(declToSym map[ast.Decl]resolver.SymbolId, fn *ast.FnDecl) {
	sid, ok := declToSym[fn]
	if !ok {
		return
	}
	tp := declSet(fn.TypeParams)
	sig := &FnSig{
		Name:           fn.Name,
		TypeParams:     typeParamNames(fn.TypeParams),
		Ret:            c.convertType(fn.Ret, tp),
		Decl:           fn,
		NoAlloc:        fn.NoAlloc,
		BodyTypeParams: tp,
	}
	for _, p := range fn.Params {
		sig.Params = append(sig.Params, typesystem.ParamDef{
			Name: p.Name, Type: c.convertType(p.Type, tp), Take: p.Take, Mutable: p.Mutable,
		})
	}
	c.funcs[sid] = sig
	c.sigByFn[fn] = sig
}

// methodSigOf converts one method/trait-signature's params and return type
// into a typesystem.MethodDef, classifying the receiver's consumption mode
// from its first (self) parameter.
func (c *Checker) methodSigOf(name string, ownTypeParams []ast.TypeParam, params []*ast.Param, ret ast.TypeExpr, typeParams map[string]bool, decl *ast.FnDecl) typesystem.MethodDef {
	md := typesystem.MethodDef{Name: name, Decl: decl}
	for _, tp := range ownTypeParams {
		md.TypeParams = append(md.TypeParams, tp.Name)
		typeParams[tp.Name] = true
	}
	md.Self = typesystem.SelfNone
	start := 0
	if len(params) > 0 && params[0].IsSelf {
		start = 1
		switch {
		case params[0].TakeSelf:
			md.Self = typesystem.SelfTake
		case params[0].MutateSelf, params[0].OwnSelf:
			md.Self = typesystem.SelfMutate
		default:
			md.Self = typesystem.SelfValue
		}
	}
	for _, p := range params[start:] {
		md.Params = append(md.Params, typesystem.ParamDef{
			Name: p.Name, Type: c.convertType(p.Type, typeParams), Take: p.Take, Mutable: p.Mutable,
		})
	}
	md.Ret = c.convertType(ret, typeParams)
	return md
}

// lookupExtendTarget resolves an `extend Target { ... }` block's target
// type name to a registered TypeId.
func (c *Checker) lookupExtendTarget(te ast.TypeExpr) (typesystem.TypeId, bool) {
	named, ok := te.(*ast.NamedTypeExpr)
	if !ok || len(named.Path) == 0 {
		return 0, false
	}
	return c.table.Lookup(named.Path[len(named.Path)-1])
}
