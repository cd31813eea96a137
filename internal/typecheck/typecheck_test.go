package typecheck

import (
	"testing"

	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/parser"
	"github.com/rask-lang/raskc/internal/resolver"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := parser.Parse("test.rk", src)
	if len(errs) != 0 {
		for _, e := range errs {
			t.Logf("parse diagnostic: %s", e.Message)
		}
		t.Fatalf("parse produced %d diagnostics, want 0", len(errs))
	}
	return prog
}

func mustResolve(t *testing.T, prog *ast.Program) *resolver.Result {
	t.Helper()
	res := resolver.ResolveProgram(prog)
	if len(res.Errors) != 0 {
		for _, e := range res.Errors {
			t.Logf("resolve diagnostic: %s", e.Message)
		}
		t.Fatalf("resolve produced %d diagnostics, want 0", len(res.Errors))
	}
	return res
}

// TestStructMethodCall is spec §8 scenario 1: `struct P {...} extend P {
// func sum(self) -> i32 {...} } func main() -> i32 { P{...}.sum() }`.
func TestStructMethodCall(t *testing.T) {
	src := `struct P { x: i32, y: i32 }
extend P {
  func sum(self) -> i32 { self.x + self.y }
}
func main() -> i32 {
  P { x: 3, y: 4 }.sum()
}
`
	prog := mustParse(t, src)
	res := mustResolve(t, prog)
	tc := Check(prog, res)
	if len(tc.Errors) != 0 {
		for _, e := range tc.Errors {
			t.Logf("typecheck diagnostic: %s", e.Message)
		}
		t.Fatalf("expected no typecheck errors, got %d", len(tc.Errors))
	}

	mainFn := findFn(prog, "main")
	call, ok := mainFn.Body.Tail.(*ast.MethodCallExpr)
	if !ok {
		t.Fatalf("expected main's tail expression to be a method call, got %T", mainFn.Body.Tail)
	}
	ty, ok := tc.NodeTypes[call.ID]
	if !ok {
		t.Fatalf("expected a recorded node type for the 'sum' call")
	}
	if ty.String() != "i32" {
		t.Fatalf("expected sum() call to type to i32, got %s", ty.String())
	}
}

// TestGenericIdentityMonomorphizationKey is spec §8 scenario 2.
func TestGenericIdentityMonomorphizationKey(t *testing.T) {
	src := `func id<T>(x: T) -> T { x }
func main() -> i32 {
  id(42)
}
`
	prog := mustParse(t, src)
	res := mustResolve(t, prog)
	tc := Check(prog, res)
	if len(tc.Errors) != 0 {
		t.Fatalf("expected no typecheck errors, got %v", tc.Errors)
	}

	mainFn := findFn(prog, "main")
	call, ok := mainFn.Body.Tail.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected main's tail expression to be a call, got %T", mainFn.Body.Tail)
	}
	args, ok := tc.CallTypeArgs[call.ID]
	if !ok || len(args) != 1 {
		t.Fatalf("expected exactly one recorded call type arg, got %v", args)
	}
	if args[0].String() != "i32" {
		t.Fatalf("expected id() to be instantiated at i32, got %s", args[0].String())
	}
}

// TestMissingReturnIsReported is spec §8 scenario 3.
func TestMissingReturnIsReported(t *testing.T) {
	src := `func f() -> i32 { let x = 1 }
`
	prog := mustParse(t, src)
	res := mustResolve(t, prog)
	tc := Check(prog, res)
	if !hasCode(tc.Errors, "E0269") {
		t.Fatalf("expected a MissingReturn (E0269) diagnostic, got %v", tc.Errors)
	}
}

// TestTryInNonPropagatingContext is spec §8 scenario 5.
func TestTryInNonPropagatingContext(t *testing.T) {
	src := `func some_call() -> i32 or string { 1 }
func f() -> i32 {
  let x = some_call()?
  x
}
`
	prog := mustParse(t, src)
	res := mustResolve(t, prog)
	tc := Check(prog, res)
	if !hasCode(tc.Errors, "E0277") {
		t.Fatalf("expected a TryInNonPropagatingContext (E0277) diagnostic, got %v", tc.Errors)
	}
}

func findFn(prog *ast.Program, name string) *ast.FnDecl {
	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FnDecl); ok && fn.Name == name {
			return fn
		}
	}
	return nil
}

func hasCode(errs []*diagnostics.DiagnosticError, code string) bool {
	for _, e := range errs {
		if string(e.Code) == code {
			return true
		}
	}
	return false
}
