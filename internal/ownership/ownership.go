// Package ownership implements spec §4.6: affine handle consumption,
// scope-exit resource checks, and the two-phase ESAD borrow discipline,
// run over one already-typed function body at a time.
package ownership

import (
	"fmt"

	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/resolver"
	"github.com/rask-lang/raskc/internal/token"
	"github.com/rask-lang/raskc/internal/typecheck"
	"github.com/rask-lang/raskc/internal/typesystem"
)

// resourceID is a dense per-package counter identifying one tracked
// resource value from creation to consumption/release (spec §4.6
// "Resource tracking"). Deterministic and process-local; unlike the
// lockfile's entry identifiers (internal/manifest), nothing here needs a
// globally unique uuid — see DESIGN.md's dependency ledger.
type resourceID uint32

// binding is one name's ownership state within the scope it was declared
// in.
type binding struct {
	name         string
	isResource   bool
	id           resourceID
	consumed     bool
	consumedAt   token.Span
	transferred  bool // returned, or moved to an outer scope
	createdDepth int
	declSpan     token.Span
}

// persistentBorrow is a `let v = &source...` binding recorded by ESAD
// phase 2 (spec §4.6 "Persistent borrows"); it stays live until the
// enclosing scope of its view variable pops.
type persistentBorrow struct {
	source   string
	viewVar  string
	span     token.Span
}

// funcScope is one nested block/loop/closure scope within a function body.
type funcScope struct {
	parent      *funcScope
	depth       int
	bindings    map[string]*binding
	borrows     []persistentBorrow
	hasEnsure   bool // an `ensure` block covers resources created here
}

func newFuncScope(parent *funcScope) *funcScope {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	return &funcScope{parent: parent, depth: depth, bindings: make(map[string]*binding)}
}

// lookup walks the scope chain outward for name, returning the owning
// scope along with the binding.
func (s *funcScope) lookup(name string) (*funcScope, *binding) {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.bindings[name]; ok {
			return sc, b
		}
	}
	return nil, nil
}

// activeBorrow is one ESAD phase-1 entry, live only for the statement
// currently being evaluated (spec §4.6 "Borrow stack (ESAD Phase 1)").
type activeBorrow struct {
	place string
	mode  borrowMode
	span  token.Span
}

type borrowMode int

const (
	borrowRead borrowMode = iota
	borrowWrite
)

// Checker is spec §4.6's ownership/borrow pass. One Checker is built per
// compilation unit and run once per function-like body.
type Checker struct {
	res    *resolver.Result
	tc     *typecheck.Result
	errors []*diagnostics.DiagnosticError

	top        *funcScope
	nextID     resourceID
	borrowLog  []activeBorrow // cleared at each statement boundary
}

// Check runs the ownership pass over every function-like body in prog
// (spec §4.6), given the resolver and type-checker results for the same
// compilation unit.
func Check(prog *ast.Program, res *resolver.Result, tc *typecheck.Result) []*diagnostics.DiagnosticError {
	c := &Checker{res: res, tc: tc}
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FnDecl:
			c.checkFn(decl)
		case *ast.ExtendDecl:
			for _, m := range decl.Methods {
				c.checkFn(m)
			}
		case *ast.TestDecl:
			c.checkBody(decl.Body, nil)
		case *ast.BenchmarkDecl:
			c.checkBody(decl.Body, nil)
		}
	}
	return c.errors
}

func (c *Checker) errorf(span token.Span, code diagnostics.ErrorCode, format string, args ...any) *diagnostics.DiagnosticError {
	d := diagnostics.NewError(diagnostics.PhaseOwnership, code, span, fmt.Sprintf(format, args...))
	c.errors = append(c.errors, d)
	return d
}

func (c *Checker) checkFn(fn *ast.FnDecl) {
	if fn.Body == nil {
		return
	}
	c.checkBody(fn.Body, fn.Params)
}

// checkBody runs a fresh ownership walk over one function/test/benchmark
// body, binding params (a `take`/`own` parameter already owns its value on
// entry, so it starts unconsumed and trackable like any other resource
// local).
func (c *Checker) checkBody(body *ast.BlockExpr, params []*ast.Param) {
	if body == nil {
		return
	}
	c.top = newFuncScope(nil)
	c.nextID = 1
	for _, p := range params {
		name := p.Name
		if p.IsSelf {
			name = "self"
		}
		if c.isResourceTypeExpr(p.Type) {
			c.top.bindings[name] = &binding{name: name, isResource: true, id: c.allocID(), declSpan: p.Span}
		}
	}
	c.block(c.top, body)
}

func (c *Checker) allocID() resourceID {
	id := c.nextID
	c.nextID++
	return id
}

