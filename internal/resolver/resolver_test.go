package resolver

import (
	"testing"

	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/config"
	"github.com/rask-lang/raskc/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := parser.Parse("test.rk", src)
	if len(errs) != 0 {
		for _, e := range errs {
			t.Logf("unexpected diagnostic: %s", e.Message)
		}
		t.Fatalf("parse produced %d diagnostics, want 0", len(errs))
	}
	return prog
}

func TestResolvesForwardReference(t *testing.T) {
	prog := mustParse(t, `func main() -> i64 {
  helper()
}
func helper() -> i64 {
  1
}
`)
	res := ResolveProgram(prog)
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", res.Errors)
	}
	mainFn := prog.Decls[0].(*ast.FnDecl)
	call := mainFn.Body.Tail.(*ast.CallExpr)
	callee := call.Callee.(*ast.Identifier)
	id, ok := res.Resolutions[callee.ID]
	if !ok {
		t.Fatalf("expected 'helper' call to resolve")
	}
	sym, ok := res.Table.Get(id)
	if !ok || sym.Name != "helper" || sym.Kind != SymFunction {
		t.Fatalf("expected resolution to a function symbol named 'helper', got %#v", sym)
	}
}

func TestDuplicateTopLevelDeclarationIsAnError(t *testing.T) {
	prog := mustParse(t, `func run() -> i64 {
  1
}
func run() -> i64 {
  2
}
`)
	res := ResolveProgram(prog)
	if len(res.Errors) == 0 {
		t.Fatalf("expected a duplicate declaration error")
	}
	found := false
	for _, e := range res.Errors {
		if e.Code == "R002" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an R002 duplicate-decl error, got %v", res.Errors)
	}
}

func TestUndefinedNameIsAnError(t *testing.T) {
	prog := mustParse(t, `func run() -> i64 {
  missing_name
}
`)
	res := ResolveProgram(prog)
	if len(res.Errors) != 1 || res.Errors[0].Code != "R001" {
		t.Fatalf("expected exactly one R001 undefined-name error, got %v", res.Errors)
	}
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	prog := mustParse(t, `func run() {
  break
}
`)
	res := ResolveProgram(prog)
	if len(res.Errors) != 1 || res.Errors[0].Code != "R003" {
		t.Fatalf("expected exactly one R003 break-outside-loop error, got %v", res.Errors)
	}
}

func TestLabelNotFoundIsAnError(t *testing.T) {
	prog := mustParse(t, `func run() {
  loop {
    break outer
  }
}
`)
	res := ResolveProgram(prog)
	if len(res.Errors) != 1 || res.Errors[0].Code != "R004" {
		t.Fatalf("expected exactly one R004 label-not-found error, got %v", res.Errors)
	}
}

func TestLabeledBreakResolvesAcrossNestedLoops(t *testing.T) {
	prog := mustParse(t, `func run() {
  outer: loop {
    loop {
      break outer
    }
  }
}
`)
	res := ResolveProgram(prog)
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", res.Errors)
	}
}

func TestShadowingInNestedBlockIsPermitted(t *testing.T) {
	prog := mustParse(t, `func run() -> i64 {
  let x = 1
  if true {
    let x = 2
    x
  } else {
    x
  }
}
`)
	res := ResolveProgram(prog)
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", res.Errors)
	}
}

func TestEnumVariantResolvesAsConstructor(t *testing.T) {
	prog := mustParse(t, `enum Option {
  Some(i64),
  None,
}
func run() -> Option {
  Some(1)
}
`)
	res := ResolveProgram(prog)
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", res.Errors)
	}
	fn := prog.Decls[1].(*ast.FnDecl)
	call := fn.Body.Tail.(*ast.CallExpr)
	callee := call.Callee.(*ast.Identifier)
	id, ok := res.Resolutions[callee.ID]
	if !ok {
		t.Fatalf("expected 'Some' to resolve")
	}
	sym, ok := res.Table.Get(id)
	if !ok || sym.Kind != SymEnumVariant {
		t.Fatalf("expected resolution to an enum-variant symbol, got %#v", sym)
	}
}

func TestInferCapabilitiesFromImportsAndUnsafe(t *testing.T) {
	prog := mustParse(t, `import io.net.Socket
func run() {
  unsafe {
    1
  }
}
`)
	caps := InferCapabilities(prog)
	if !caps[config.CapNet] {
		t.Fatalf("expected 'net' capability from io.net import, got %v", caps)
	}
	if !caps[config.CapFFI] {
		t.Fatalf("expected 'ffi' capability from unsafe block, got %v", caps)
	}
}
