package desugar

import (
	"testing"

	"github.com/rask-lang/raskc/internal/ast"
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

func TestCompoundAssignRewritesToExplicitBinary(t *testing.T) {
	prog := mustParse(t, `func run() {
  let mutate total = 0
  total += 3
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	Desugar(prog)

	assign := fn.Body.Stmts[1].(*ast.AssignStmt)
	if assign.Op != "=" {
		t.Fatalf("expected rewritten op '=', got %q", assign.Op)
	}
	bin, ok := assign.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected a '+' BinaryExpr value, got %#v", assign.Value)
	}
	if _, ok := bin.Left.(*ast.Identifier); !ok {
		t.Fatalf("expected rewritten left operand to reuse the target expr, got %T", bin.Left)
	}
}

func TestForLoopDesugarsToWhileLetOverNext(t *testing.T) {
	prog := mustParse(t, `func sum(xs: [i64]) -> i64 {
  let mutate total = 0
  for x in xs {
    total += x
  }
  total
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	Desugar(prog)

	if len(fn.Body.Stmts) != 3 {
		t.Fatalf("expected the for loop to expand into 2 statements (let + while-let), got %d total: %#v", len(fn.Body.Stmts), fn.Body.Stmts)
	}
	letStmt, ok := fn.Body.Stmts[1].(*ast.LetStmt)
	if !ok || !letStmt.Mutable {
		t.Fatalf("expected a synthesized mutable let for the iterator temp, got %#v", fn.Body.Stmts[1])
	}
	whileLet, ok := fn.Body.Stmts[2].(*ast.WhileLetStmt)
	if !ok {
		t.Fatalf("expected a WhileLetStmt, got %T", fn.Body.Stmts[2])
	}
	call, ok := whileLet.Scrutinee.(*ast.MethodCallExpr)
	if !ok || call.Method != "next" {
		t.Fatalf("expected scrutinee to be a .next() call, got %#v", whileLet.Scrutinee)
	}
	ctor, ok := whileLet.Pattern.(*ast.ConstructorPattern)
	if !ok || len(ctor.Path) != 1 || ctor.Path[0] != "Some" {
		t.Fatalf("expected Some(..) pattern, got %#v", whileLet.Pattern)
	}
	for _, s := range fn.Body.Stmts {
		if _, ok := s.(*ast.ForStmt); ok {
			t.Fatalf("ForStmt should not survive desugaring")
		}
	}
}

func TestDesugarIsIdempotent(t *testing.T) {
	prog := mustParse(t, `func run(xs: [i64]) -> i64 {
  let mutate total = 0
  for x in xs {
    total += x
  }
  total
}
`)
	Desugar(prog)
	fn := prog.Decls[0].(*ast.FnDecl)
	firstPass := len(fn.Body.Stmts)

	Desugar(prog)
	if len(fn.Body.Stmts) != firstPass {
		t.Fatalf("second desugar pass changed statement count: %d -> %d", firstPass, len(fn.Body.Stmts))
	}
	assign, ok := fn.Body.Stmts[0].(*ast.LetStmt)
	if !ok || assign.Name != "total" {
		t.Fatalf("unexpected first statement after repeated desugar: %#v", fn.Body.Stmts[0])
	}
}

func TestDesugarRecursesIntoNestedBlocks(t *testing.T) {
	prog := mustParse(t, `func run(flag: bool) -> i64 {
  let mutate n = 0
  if flag {
    n += 1
  } else {
    n -= 1
  }
  n
}
`)
	Desugar(prog)
	fn := prog.Decls[0].(*ast.FnDecl)
	ifExpr := fn.Body.Stmts[1].(*ast.ExprStmt).X.(*ast.IfExpr)
	thenAssign := ifExpr.Then.Stmts[0].(*ast.AssignStmt)
	if thenAssign.Op != "=" {
		t.Fatalf("expected nested then-branch assignment desugared, got op %q", thenAssign.Op)
	}
	elseBlock := ifExpr.Else.(*ast.BlockExpr)
	elseAssign := elseBlock.Stmts[0].(*ast.AssignStmt)
	if elseAssign.Op != "=" {
		t.Fatalf("expected nested else-branch assignment desugared, got op %q", elseAssign.Op)
	}
}
