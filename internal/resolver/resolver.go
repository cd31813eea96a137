package resolver

import (
	"fmt"

	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/token"
)

// Result is everything a single resolved compilation unit produces for
// later passes: the flat symbol arena and the NodeId → SymbolId map for
// every identifier/path use-site the resolver could bind.
type Result struct {
	Table       *Table
	Resolutions map[ast.NodeId]SymbolId
	Errors      []*diagnostics.DiagnosticError
}

// Resolver walks one Program, building its scope tree and symbol arena.
type Resolver struct {
	table       *Table
	resolutions map[ast.NodeId]SymbolId
	errors      []*diagnostics.DiagnosticError
	top         *scope // the Global scope, retained for package-level lookups
}

// ResolveProgram resolves a single file's declarations (spec §4.4 "Inputs:
// either a single file's decls or a whole package plus PackageRegistry" —
// this is the single-file form; cmd/raskc's package subcommand applies it
// to each package's files merged into one program).
func ResolveProgram(prog *ast.Program) *Result {
	r := &Resolver{table: newTable(), resolutions: make(map[ast.NodeId]SymbolId)}
	r.top = newScope(ScopeGlobal, nil)
	r.registerImports(prog)
	r.collectTopLevel(prog)
	r.checkBodies(prog)
	return &Result{Table: r.table, Resolutions: r.resolutions, Errors: r.errors}
}

func (r *Resolver) errorf(span token.Span, code diagnostics.ErrorCode, format string, args ...any) {
	r.errors = append(r.errors, diagnostics.NewError(diagnostics.PhaseResolve, code, span, fmt.Sprintf(format, args...)))
}

// collectTopLevel registers every top-level declaration before any body is
// walked, so forward references (a function calling one declared later in
// the same file) resolve (spec §4.4 "Declarations populate it before
// bodies are walked").
func (r *Resolver) collectTopLevel(prog *ast.Program) {
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.FnDecl:
			r.defineTop(d.Name, SymFunction, false, d)
		case *ast.StructDecl:
			r.defineTop(d.Name, SymStruct, false, d)
		case *ast.EnumDecl:
			r.defineTop(d.Name, SymEnum, false, d)
			for _, v := range d.Variants {
				r.defineTopVariant(v.Name, v.Span)
			}
		case *ast.UnionDecl:
			r.defineTop(d.Name, SymUnion, false, d)
		case *ast.TraitDecl:
			r.defineTop(d.Name, SymTrait, false, d)
		case *ast.ConstDecl:
			r.defineTop(d.Name, SymConst, false, d)
		case *ast.TypeAliasDecl:
			r.defineTop(d.Name, SymTypeAlias, false, d)
		case *ast.ExternDecl:
			for _, fn := range d.Fns {
				r.defineTop(fn.Name, SymFunction, false, fn)
			}
		}
	}
}

func (r *Resolver) defineTop(name string, kind SymbolKind, mutable bool, decl ast.Decl) SymbolId {
	if existing, ok := r.top.lookup(name); ok {
		if sym, ok := r.table.Get(existing); ok {
			r.errorf(decl.GetSpan(), diagnostics.CodeResolveDuplicateDecl, "'%s' is already declared as a %s", name, sym.Kind)
		}
	}
	id := r.table.add(name, kind, mutable, decl)
	r.top.define(name, id)
	return id
}

// defineTopVariant registers an enum variant as a callable constructor
// symbol in the global scope (`Some`, `Ok`, `Err`, ...), distinct from the
// enum type symbol itself.
func (r *Resolver) defineTopVariant(variantName string, span token.Span) SymbolId {
	if existing, ok := r.top.lookup(variantName); ok {
		if sym, ok := r.table.Get(existing); ok {
			r.errorf(span, diagnostics.CodeResolveDuplicateDecl, "variant '%s' collides with existing %s '%s'", variantName, sym.Kind, sym.Name)
		}
	}
	id := r.table.add(variantName, SymEnumVariant, false, nil)
	r.top.define(variantName, id)
	return id
}

func (r *Resolver) checkBodies(prog *ast.Program) {
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.FnDecl:
			r.checkFn(d)
		case *ast.ExtendDecl:
			for _, m := range d.Methods {
				r.checkFn(m)
			}
		case *ast.TraitDecl:
			for _, m := range d.Methods {
				if m.Body != nil {
					fnScope := newScope(ScopeFunction, r.top)
					r.bindParams(fnScope, m.Params)
					r.block(fnScope, m.Body)
				}
			}
		case *ast.TestDecl:
			if d.Body != nil {
				r.block(newScope(ScopeFunction, r.top), d.Body)
			}
		case *ast.BenchmarkDecl:
			if d.Body != nil {
				r.block(newScope(ScopeFunction, r.top), d.Body)
			}
		case *ast.ConstDecl:
			if d.Value != nil {
				r.expr(r.top, d.Value)
			}
		}
	}
}

func (r *Resolver) checkFn(d *ast.FnDecl) {
	if d.Body == nil {
		return
	}
	fnScope := newScope(ScopeFunction, r.top)
	for _, tp := range d.TypeParams {
		id := r.table.add(tp.Name, SymTypeParam, false, nil)
		fnScope.define(tp.Name, id)
	}
	r.bindParams(fnScope, d.Params)
	r.block(fnScope, d.Body)
}

func (r *Resolver) bindParams(sc *scope, params []*ast.Param) {
	for _, p := range params {
		if p.IsSelf {
			id := r.table.add("self", SymParam, p.MutateSelf, nil)
			sc.define("self", id)
			continue
		}
		id := r.table.add(p.Name, SymParam, p.Mutable, nil)
		sc.define(p.Name, id)
	}
}
