package resolver

import (
	"strings"

	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/config"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/token"
)

// Capability is one of the coarse-grained permissions spec §4.4's
// capability inference assigns to a package from its imports and its use
// of unsafe/extern constructs. The concrete names (config.CapNet, ...) are
// shared with the manifest's `allow:` list parser.
type Capability = string

// capabilityImportPrefixes maps a dotted import-path prefix to the
// capability it implies (spec §4.4: "net (imports from io.net/http),
// read/write (io.fs), exec (os.exec)").
var capabilityImportPrefixes = map[string][]Capability{
	"io.net":  {config.CapNet},
	"io.http": {config.CapNet},
	"io.fs":   {config.CapRead, config.CapWrite},
	"os.exec": {config.CapExec},
}

// InferCapabilities walks prog's imports and bodies to compute the set of
// capabilities it requires, before type-checking an external dependency
// package (spec §4.4 "Capability inference").
func InferCapabilities(prog *ast.Program) map[Capability]bool {
	caps := make(map[Capability]bool)
	for _, imp := range prog.Imports {
		path := strings.Join(imp.Path, ".")
		for prefix, pcaps := range capabilityImportPrefixes {
			if path == prefix || strings.HasPrefix(path, prefix+".") {
				for _, c := range pcaps {
					caps[c] = true
				}
			}
		}
	}
	for _, decl := range prog.Decls {
		if _, ok := decl.(*ast.ExternDecl); ok {
			caps[config.CapFFI] = true
		}
	}
	scanner := &unsafeScanner{caps: caps}
	for _, decl := range prog.Decls {
		scanner.decl(decl)
	}
	return caps
}

// unsafeScanner finds any `unsafe { }` block anywhere in a declaration,
// implying the `ffi` capability (spec §4.4).
type unsafeScanner struct {
	caps map[Capability]bool
}

func (s *unsafeScanner) decl(decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.FnDecl:
		s.block(d.Body)
	case *ast.ExtendDecl:
		for _, m := range d.Methods {
			s.block(m.Body)
		}
	case *ast.TraitDecl:
		for _, m := range d.Methods {
			s.block(m.Body)
		}
	case *ast.TestDecl:
		s.block(d.Body)
	case *ast.BenchmarkDecl:
		s.block(d.Body)
	case *ast.ConstDecl:
		s.expr(d.Value)
	}
}

func (s *unsafeScanner) block(blk *ast.BlockExpr) {
	if blk == nil {
		return
	}
	for _, st := range blk.Stmts {
		s.stmt(st)
	}
	s.expr(blk.Tail)
}

func (s *unsafeScanner) stmt(st ast.Stmt) {
	switch n := st.(type) {
	case *ast.ExprStmt:
		s.expr(n.X)
	case *ast.LetStmt:
		s.expr(n.Value)
	case *ast.LetTupleStmt:
		s.expr(n.Value)
	case *ast.ConstStmt:
		s.expr(n.Value)
	case *ast.AssignStmt:
		s.expr(n.Target)
		s.expr(n.Value)
	case *ast.ReturnStmt:
		s.expr(n.Value)
	case *ast.WhileStmt:
		s.expr(n.Cond)
		s.block(n.Body)
	case *ast.WhileLetStmt:
		s.expr(n.Scrutinee)
		s.block(n.Body)
	case *ast.ForStmt:
		s.expr(n.Iterable)
		s.block(n.Body)
	case *ast.LoopStmt:
		s.block(n.Body)
	case *ast.BreakStmt:
		s.expr(n.Value)
	case *ast.EnsureStmt:
		s.block(n.Body)
		s.block(n.CatchBody)
	case *ast.ComptimeStmt:
		s.block(n.Body)
	}
}

func (s *unsafeScanner) expr(e ast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.UnsafeExpr:
		s.caps[config.CapFFI] = true
		s.block(n.Body)
	case *ast.BinaryExpr:
		s.expr(n.Left)
		s.expr(n.Right)
	case *ast.UnaryExpr:
		s.expr(n.Operand)
	case *ast.CallExpr:
		s.expr(n.Callee)
		for _, a := range n.Args {
			s.expr(a)
		}
	case *ast.MethodCallExpr:
		s.expr(n.Receiver)
		for _, a := range n.Args {
			s.expr(a)
		}
	case *ast.FieldExpr:
		s.expr(n.Receiver)
	case *ast.OptionalFieldExpr:
		s.expr(n.Receiver)
	case *ast.IndexExpr:
		s.expr(n.Receiver)
		s.expr(n.Index)
	case *ast.BlockExpr:
		s.block(n)
	case *ast.IfExpr:
		s.expr(n.Cond)
		s.block(n.Then)
		s.expr(n.Else)
	case *ast.IfIsExpr:
		s.expr(n.Scrutinee)
		s.block(n.Then)
		s.expr(n.Else)
	case *ast.MatchExpr:
		s.expr(n.Scrutinee)
		for _, arm := range n.Arms {
			s.expr(arm.Guard)
			s.expr(arm.Body)
		}
	case *ast.TryExpr:
		s.expr(n.Inner)
	case *ast.NullCoalesceExpr:
		s.expr(n.Left)
		s.expr(n.Right)
	case *ast.RangeExpr:
		s.expr(n.Start)
		s.expr(n.End)
	case *ast.StructLitExpr:
		for _, f := range n.Fields {
			s.expr(f.Value)
		}
		s.expr(n.Spread)
	case *ast.ArrayLitExpr:
		for _, el := range n.Elems {
			s.expr(el)
		}
	case *ast.ArrayRepeatExpr:
		s.expr(n.Value)
		s.expr(n.Count)
	case *ast.TupleExpr:
		for _, el := range n.Elems {
			s.expr(el)
		}
	case *ast.WithExpr:
		for _, b := range n.Bindings {
			s.expr(b.Value)
		}
		s.block(n.Body)
	case *ast.UsingExpr:
		for _, b := range n.Bindings {
			s.expr(b.Value)
		}
		s.block(n.Body)
	case *ast.ClosureExpr:
		s.expr(n.Body)
	case *ast.CastExpr:
		s.expr(n.Value)
	case *ast.SpawnExpr:
		s.block(n.Body)
	case *ast.RawThreadExpr:
		s.block(n.Body)
	case *ast.SelectExpr:
		for _, arm := range n.Arms {
			s.expr(arm.Channel)
			s.expr(arm.Body)
		}
	case *ast.TimeoutExpr:
		s.expr(n.Duration)
		s.block(n.Body)
	case *ast.DeliverExpr:
		s.expr(n.Value)
	case *ast.StepExpr:
		s.expr(n.Target)
	case *ast.ComptimeExpr:
		s.block(n.Body)
	case *ast.AssertExpr:
		s.expr(n.Cond)
		s.expr(n.Message)
	case *ast.CheckExpr:
		s.expr(n.Cond)
		s.expr(n.Message)
	}
}

// CheckCapabilities compares required against a manifest's declared
// `allow:` set and returns a lint-level warning for each capability used
// but not allowed (spec §4.4: "emit a warning (lint-level) surfaced
// through diagnostics").
func CheckCapabilities(pkgName string, required map[Capability]bool, allowed map[Capability]bool) []*diagnostics.DiagnosticError {
	var warnings []*diagnostics.DiagnosticError
	for c, need := range required {
		if !need || allowed[c] {
			continue
		}
		warnings = append(warnings, diagnostics.NewWarning(diagnostics.PhaseResolve, diagnostics.CodeResolveCapabilityDrift,
			token.Span{}, "package '"+pkgName+"' uses capability '"+string(c)+"' not declared in its manifest 'allow:' list"))
	}
	return warnings
}
