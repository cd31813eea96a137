// Package typecheck implements spec §4.5: bidirectional, constraint-based
// type checking with inference, generics, union types, Result/Option
// canonicalization, and method/field resolution over a resolved program.
package typecheck

import (
	"fmt"

	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/builtins"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/resolver"
	"github.com/rask-lang/raskc/internal/token"
	"github.com/rask-lang/raskc/internal/typesystem"
)

// FnSig is a checked function or method signature.
type FnSig struct {
	Name       string
	TypeParams []string
	Self       typesystem.SelfMode
	SelfType   typesystem.Type
	Params     []typesystem.ParamDef
	Ret        typesystem.Type
	Decl       *ast.FnDecl
	NoAlloc    bool
	// BodyTypeParams is every generic name in scope while checking Decl's
	// body: the function/method's own type params plus (for an extend
	// method) its target type's — convertType needs the full set to turn a
	// body-local `let x: T = ...` annotation into the right placeholder.
	BodyTypeParams map[string]bool
}

// Result is everything the type checker produces for later passes (spec §3
// "Typed program").
type Result struct {
	Table        *typesystem.Table
	NodeTypes    map[ast.NodeId]typesystem.Type
	CallTypeArgs map[ast.NodeId][]typesystem.Type
	Funcs        map[resolver.SymbolId]*FnSig
	Errors       []*diagnostics.DiagnosticError
}

// fnContext is the per-function-body checking state, pushed on entry and
// popped on exit so nested closures get their own unsafe/return context
// while still seeing the enclosing function's type parameters.
type fnContext struct {
	typeParams map[string]bool
	retType    typesystem.Type
	selfType   typesystem.Type
	hasSelf    bool
	self       typesystem.SelfMode
	unsafeDepth int
	noAlloc    bool
	noAllocFn  string
}

func (ctx *fnContext) selfMode() typesystem.SelfMode { return ctx.self }

// Checker drives spec §4.5's two passes (declaration collection, then
// declaration checking) over one resolved compilation unit.
type Checker struct {
	table *typesystem.Table
	ic    *typesystem.InferenceContext
	reg   *builtins.Registry

	res *resolver.Result

	nodeTypes    map[ast.NodeId]typesystem.Type
	pendingArgs  map[ast.NodeId][]typesystem.Type
	callTypeArgs map[ast.NodeId][]typesystem.Type

	funcs   map[resolver.SymbolId]*FnSig
	typeIDs map[resolver.SymbolId]typesystem.TypeId

	// sigByFn lets checkPass find the already-converted signature for a
	// given FnDecl body (free function or extend-block method) without
	// re-deriving it from the resolver's symbol table.
	sigByFn map[*ast.FnDecl]*FnSig

	// constTypes memoizes each top-level const symbol's type, computed once
	// on first reference (see constType in expr.go).
	constTypes map[resolver.SymbolId]typesystem.Type

	// intLitVars / floatLitVars collect every unsuffixed literal's fresh
	// inference variable so applyLiteralDefaults can default whichever ones
	// the solver left unconstrained (spec §4.5 "unconstrained numeric
	// literals default to i32 / f64").
	intLitVars   []typesystem.TypeVarId
	floatLitVars []typesystem.TypeVarId

	queue  []constraint
	errors []*diagnostics.DiagnosticError

	fnStack []*fnContext
	scope   *varScope
}

// varScope is typecheck's own lexical binding stack for local variables
// (params, let-bindings, pattern captures). It mirrors the resolver's scope
// tree structurally (pushed/popped at the same points: function entry,
// block entry, loop entry, catch block) but is keyed by name rather than
// SymbolId, since destructuring patterns don't get individual NodeIds to
// correlate back to the resolver's flat arena (spec §3 "only statements and
// expressions are indexed by NodeId").
type varScope struct {
	vars   map[string]typesystem.Type
	parent *varScope
}

func (c *Checker) pushScope() { c.scope = &varScope{vars: map[string]typesystem.Type{}, parent: c.scope} }
func (c *Checker) popScope()  { c.scope = c.scope.parent }

func (c *Checker) define(name string, t typesystem.Type) {
	if c.scope == nil {
		c.pushScope()
	}
	c.scope.vars[name] = t
}

func (c *Checker) lookupVar(name string) (typesystem.Type, bool) {
	for s := c.scope; s != nil; s = s.parent {
		if t, ok := s.vars[name]; ok {
			return t, true
		}
	}
	return typesystem.Type{}, false
}

// Check runs the full type-checking pipeline over prog using res (the
// resolver's output for the same program).
func Check(prog *ast.Program, res *resolver.Result) *Result {
	c := &Checker{
		table:        typesystem.NewTable(),
		ic:           typesystem.NewInferenceContext(),
		reg:          builtins.Default(),
		res:          res,
		nodeTypes:    make(map[ast.NodeId]typesystem.Type),
		pendingArgs:  make(map[ast.NodeId][]typesystem.Type),
		callTypeArgs: make(map[ast.NodeId][]typesystem.Type),
		funcs:        make(map[resolver.SymbolId]*FnSig),
		typeIDs:      make(map[resolver.SymbolId]typesystem.TypeId),
		sigByFn:      make(map[*ast.FnDecl]*FnSig),
		constTypes:   make(map[resolver.SymbolId]typesystem.Type),
	}
	c.declarePass(prog)
	c.checkPass(prog)
	c.solve()
	c.applyLiteralDefaults()
	c.solve()
	c.reportUnresolved()
	c.finalizeCallTypeArgs()
	return &Result{
		Table:        c.table,
		NodeTypes:    c.nodeTypes,
		CallTypeArgs: c.callTypeArgs,
		Funcs:        c.funcs,
		Errors:       c.errors,
	}
}

func (c *Checker) errorf(span token.Span, code diagnostics.ErrorCode, format string, args ...any) {
	c.errors = append(c.errors, diagnostics.NewError(diagnostics.PhaseTypecheck, code, span, fmt.Sprintf(format, args...)))
}

func (c *Checker) setType(id ast.NodeId, t typesystem.Type) {
	if id == ast.NoNodeId {
		return
	}
	c.nodeTypes[id] = t
}

func (c *Checker) pushFn(ctx *fnContext) { c.fnStack = append(c.fnStack, ctx) }
func (c *Checker) popFn()                { c.fnStack = c.fnStack[:len(c.fnStack)-1] }
func (c *Checker) curFn() *fnContext {
	if len(c.fnStack) == 0 {
		return &fnContext{typeParams: map[string]bool{}}
	}
	return c.fnStack[len(c.fnStack)-1]
}

func (c *Checker) inUnsafe() bool { return c.curFn().unsafeDepth > 0 }

// symbolOf is a convenience wrapper over the resolver's NodeId -> SymbolId
// -> Symbol chain.
func (c *Checker) symbolOf(id ast.NodeId) (resolver.Symbol, bool) {
	sid, ok := c.res.Resolutions[id]
	if !ok {
		return resolver.Symbol{}, false
	}
	return c.res.Table.Get(sid)
}
