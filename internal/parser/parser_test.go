package parser

import (
	"testing"

	"github.com/rask-lang/raskc/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := Parse("test.rk", src)
	if len(errs) != 0 {
		for _, e := range errs {
			t.Logf("unexpected diagnostic: %s", e.Message)
		}
		t.Fatalf("parse produced %d diagnostics, want 0", len(errs))
	}
	return prog
}

func TestParsePackageAndImports(t *testing.T) {
	prog := mustParse(t, "package app.core\nimport std.io\nimport std.{fs, net as network}\n")
	if prog.Package == nil || len(prog.Package.Path) != 2 {
		t.Fatalf("expected package app.core, got %+v", prog.Package)
	}
	if len(prog.Imports) != 3 {
		t.Fatalf("expected 3 expanded imports, got %d", len(prog.Imports))
	}
	if prog.Imports[2].Alias != "network" {
		t.Fatalf("expected alias 'network', got %q", prog.Imports[2].Alias)
	}
}

func TestParseFnDecl(t *testing.T) {
	prog := mustParse(t, `func add(a: i64, b: i64) -> i64 {
  a + b
}
`)
	if len(prog.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(prog.Decls))
	}
	fn, ok := prog.Decls[0].(*ast.FnDecl)
	if !ok {
		t.Fatalf("expected *ast.FnDecl, got %T", prog.Decls[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("unexpected fn shape: %+v", fn)
	}
	if fn.Body == nil || fn.Body.Tail == nil {
		t.Fatalf("expected a tail expression in fn body")
	}
}

func TestParseGenericFnAndTypeParams(t *testing.T) {
	prog := mustParse(t, `func identity<T>(take x: T) -> T {
  x
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	if len(fn.TypeParams) != 1 || fn.TypeParams[0].Name != "T" {
		t.Fatalf("expected type param T, got %+v", fn.TypeParams)
	}
	if !fn.Params[0].Take {
		t.Fatalf("expected take param")
	}
}

func TestParseStructWithResourceAnnotation(t *testing.T) {
	prog := mustParse(t, `@resource
struct FileHandle {
  public fd: i32,
}
`)
	s := prog.Decls[0].(*ast.StructDecl)
	if !s.IsResource {
		t.Fatalf("expected IsResource true")
	}
	if len(s.Fields) != 1 || !s.Fields[0].IsPublic {
		t.Fatalf("unexpected fields: %+v", s.Fields)
	}
}

func TestParseEnumPositionalAndNamed(t *testing.T) {
	prog := mustParse(t, `enum Shape {
  Circle(f64),
  Rect { w: f64, h: f64 },
  Empty,
}
`)
	e := prog.Decls[0].(*ast.EnumDecl)
	if len(e.Variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(e.Variants))
	}
	if len(e.Variants[0].Fields) != 1 {
		t.Fatalf("expected Circle to have 1 positional field")
	}
	if len(e.Variants[1].Named) != 2 {
		t.Fatalf("expected Rect to have 2 named fields")
	}
}

func TestGenericAngleBracketVsComparison(t *testing.T) {
	prog := mustParse(t, `func main() {
  let v: Vec<i64> = foo()
  let b = a < c
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	let1 := fn.Body.Stmts[0].(*ast.LetStmt)
	named, ok := let1.Type.(*ast.NamedTypeExpr)
	if !ok || len(named.Args) != 1 {
		t.Fatalf("expected Vec<i64> to parse with one type arg, got %+v", let1.Type)
	}
	let2 := fn.Body.Stmts[1].(*ast.LetStmt)
	bin, ok := let2.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != "<" {
		t.Fatalf("expected 'a < c' to parse as a comparison, got %#v", let2.Value)
	}
}

func TestParseMatchExpr(t *testing.T) {
	prog := mustParse(t, `func classify(n: i64) -> string {
  match n {
    0 => "zero",
    x if x > 0 => "positive",
    _ => "negative",
  }
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	m, ok := fn.Body.Tail.(*ast.MatchExpr)
	if !ok {
		t.Fatalf("expected match tail expr, got %T", fn.Body.Tail)
	}
	if len(m.Arms) != 3 {
		t.Fatalf("expected 3 match arms, got %d", len(m.Arms))
	}
	if m.Arms[1].Guard == nil {
		t.Fatalf("expected a guard on the second arm")
	}
}

func TestParseIfIsPattern(t *testing.T) {
	prog := mustParse(t, `func unwrap(o: Option<i64>) -> i64 {
  if o is Some(x) {
    x
  } else {
    0
  }
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	ifIs, ok := fn.Body.Tail.(*ast.IfIsExpr)
	if !ok {
		t.Fatalf("expected IfIsExpr tail, got %T", fn.Body.Tail)
	}
	if _, ok := ifIs.Pattern.(*ast.ConstructorPattern); !ok {
		t.Fatalf("expected constructor pattern, got %T", ifIs.Pattern)
	}
}

func TestParseForDesugarShapePreserved(t *testing.T) {
	prog := mustParse(t, `func sum(xs: [i64]) -> i64 {
  let mutate total = 0
  for x in xs {
    total += x
  }
  total
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	var forStmt *ast.ForStmt
	for _, s := range fn.Body.Stmts {
		if f, ok := s.(*ast.ForStmt); ok {
			forStmt = f
		}
	}
	if forStmt == nil {
		t.Fatalf("expected a ForStmt to survive parsing undesugared")
	}
}

func TestParseWithExprAndTryOperator(t *testing.T) {
	prog := mustParse(t, `func readAll(path: string) -> string or Error {
  with f = open(path)? {
    f.readToString()?
  }
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	w, ok := fn.Body.Tail.(*ast.WithExpr)
	if !ok {
		t.Fatalf("expected WithExpr tail, got %T", fn.Body.Tail)
	}
	if len(w.Bindings) != 1 {
		t.Fatalf("expected 1 with-binding")
	}
	if _, ok := w.Bindings[0].Value.(*ast.TryExpr); !ok {
		t.Fatalf("expected binding value to be a TryExpr, got %T", w.Bindings[0].Value)
	}
}

func TestParseStructLiteralAndFieldAccess(t *testing.T) {
	prog := mustParse(t, `func make() -> Point {
  let p = Point { x: 1, y: 2 }
  p.x
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	lit, ok := let.Value.(*ast.StructLitExpr)
	if !ok || len(lit.Fields) != 2 {
		t.Fatalf("expected struct literal with 2 fields, got %#v", let.Value)
	}
	field, ok := fn.Body.Tail.(*ast.FieldExpr)
	if !ok || field.Field != "x" {
		t.Fatalf("expected field access .x, got %#v", fn.Body.Tail)
	}
}

func TestParseClosureAndMethodCallWithTypeArgs(t *testing.T) {
	prog := mustParse(t, `func run() {
  let add = |a: i64, b: i64| -> i64 { a + b }
  let v = xs.map::<i64>(add)
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	if _, ok := let.Value.(*ast.ClosureExpr); !ok {
		t.Fatalf("expected ClosureExpr, got %T", let.Value)
	}
}

func TestParseErrorRecoveryContinuesAfterBadDecl(t *testing.T) {
	_, errs := Parse("test.rk", "func ) bad\nfunc ok() -> i64 { 1 }\n")
	if len(errs) == 0 {
		t.Fatalf("expected at least one diagnostic from malformed declaration")
	}
}

func TestParseOwnershipAnnotations(t *testing.T) {
	prog := mustParse(t, `extend Buffer {
  func consume(take self, mutate other: Buffer) {
    other.len
  }
}
`)
	ext := prog.Decls[0].(*ast.ExtendDecl)
	m := ext.Methods[0]
	if !m.Params[0].IsSelf || !m.Params[0].TakeSelf {
		t.Fatalf("expected 'take self' receiver, got %+v", m.Params[0])
	}
	if !m.Params[1].Mutable {
		t.Fatalf("expected 'mutate other' param")
	}
}
