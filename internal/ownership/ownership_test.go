package ownership

import (
	"testing"

	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/desugar"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/parser"
	"github.com/rask-lang/raskc/internal/resolver"
	"github.com/rask-lang/raskc/internal/typecheck"
)

func checkSource(t *testing.T, src string) []*diagnostics.DiagnosticError {
	t.Helper()
	prog, errs := parser.Parse("test.rk", src)
	if len(errs) != 0 {
		for _, e := range errs {
			t.Logf("unexpected parse diagnostic: %s", e.Message)
		}
		t.Fatalf("parse produced %d diagnostics, want 0", len(errs))
	}
	prog = desugar.Desugar(prog)
	res := resolver.ResolveProgram(prog)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected resolver errors: %v", res.Errors)
	}
	tc := typecheck.Check(prog, res)
	if len(tc.Errors) != 0 {
		t.Fatalf("unexpected type errors: %v", tc.Errors)
	}
	return Check(prog, res, tc)
}

func codes(errs []*diagnostics.DiagnosticError) []diagnostics.ErrorCode {
	out := make([]diagnostics.ErrorCode, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func hasCode(errs []*diagnostics.DiagnosticError, code diagnostics.ErrorCode) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

func TestUseAfterMoveOnSecondConsumingCall(t *testing.T) {
	errs := checkSource(t, `@resource
struct Handle {
  public fd: i32,
}
func release(take h: Handle) -> i32 {
  h.fd
}
func main() -> i32 {
  let h = Handle { fd: 1 };
  release(h);
  release(h)
}
`)
	if !hasCode(errs, diagnostics.CodeUseAfterMove) {
		t.Fatalf("expected CodeUseAfterMove, got %v", codes(errs))
	}
}

func TestNoErrorWhenResourceConsumedOnce(t *testing.T) {
	errs := checkSource(t, `@resource
struct Handle {
  public fd: i32,
}
func release(take h: Handle) -> i32 {
  h.fd
}
func main() -> i32 {
  let h = Handle { fd: 1 };
  release(h)
}
`)
	if len(errs) != 0 {
		t.Fatalf("expected no ownership errors, got %v", codes(errs))
	}
}

func TestUnreleasedResourceAtScopeExit(t *testing.T) {
	errs := checkSource(t, `@resource
struct Handle {
  public fd: i32,
}
func main() -> i32 {
  let h = Handle { fd: 1 };
  0
}
`)
	if !hasCode(errs, diagnostics.CodeUnreleasedResource) {
		t.Fatalf("expected CodeUnreleasedResource, got %v", codes(errs))
	}
}

func TestUnreleasedResourceSuppressedByEnsure(t *testing.T) {
	errs := checkSource(t, `@resource
struct Handle {
  public fd: i32,
}
func release(take h: Handle) -> i32 {
  h.fd
}
func main() -> i32 {
  let h = Handle { fd: 1 };
  ensure {
    release(h)
  }
  0
}
`)
	if hasCode(errs, diagnostics.CodeUnreleasedResource) {
		t.Fatalf("expected no CodeUnreleasedResource under an ensure block, got %v", codes(errs))
	}
}

func TestMutateBorrowedSourceIsAnError(t *testing.T) {
	errs := checkSource(t, `struct Box {
  public n: i32,
}
func main() -> i32 {
  let mutate b = Box { n: 1 };
  let v = &b.n;
  b = Box { n: 2 };
  0
}
`)
	if !hasCode(errs, diagnostics.CodeMutateBorrowedSrc) {
		t.Fatalf("expected CodeMutateBorrowedSrc, got %v", codes(errs))
	}
}

func TestMutateReadOnlyParamIsAnError(t *testing.T) {
	errs := checkSource(t, `func bump(n: i32) -> i32 {
  n = n + 1;
  n
}
`)
	if !hasCode(errs, diagnostics.CodeMutateReadOnlyParm) {
		t.Fatalf("expected CodeMutateReadOnlyParm, got %v", codes(errs))
	}
}

func TestMutateParamAllowedWhenMarkedMutable(t *testing.T) {
	errs := checkSource(t, `func bump(mutate n: i32) -> i32 {
  n = n + 1;
  n
}
`)
	if hasCode(errs, diagnostics.CodeMutateReadOnlyParm) {
		t.Fatalf("expected no CodeMutateReadOnlyParm, got %v", codes(errs))
	}
}
