package pipeline

import (
	"testing"

	"github.com/rask-lang/raskc/internal/diagnostics"
)

func TestRunSucceedsThroughMirLowerForValidProgram(t *testing.T) {
	src := `func add(x: i32, y: i32) -> i32 { x + y }
func main() -> i32 {
  add(1, 2)
}
`
	ctx := Run("test.rk", src)
	if !ctx.Success() {
		for _, d := range ctx.Diagnostics {
			t.Logf("diagnostic: %s", d.Message)
		}
		t.Fatalf("expected a clean run, stopped at phase %v with %d diagnostics", ctx.StoppedAt, len(ctx.Diagnostics))
	}
	if ctx.Mir == nil {
		t.Fatalf("expected a lowered MIR program")
	}
	if len(ctx.Mir.Functions) == 0 {
		t.Fatalf("expected at least one lowered function")
	}
}

func TestRunHaltsAtParseOnSyntaxError(t *testing.T) {
	src := `func f( -> i32 { 1 }`
	ctx := Run("test.rk", src)
	if ctx.Success() {
		t.Fatalf("expected a parse failure to be reported")
	}
	if ctx.StoppedAt != diagnostics.PhaseParse {
		t.Fatalf("expected pipeline to stop at parse, got %v", ctx.StoppedAt)
	}
	if ctx.Resolved != nil {
		t.Fatalf("expected resolver to never run after a parse failure")
	}
}

func TestRunHaltsAtTypecheckOnMissingReturn(t *testing.T) {
	src := `func f() -> i32 { let x = 1 }
`
	ctx := Run("test.rk", src)
	if ctx.Success() {
		t.Fatalf("expected a typecheck failure to be reported")
	}
	if ctx.StoppedAt != diagnostics.PhaseTypecheck {
		t.Fatalf("expected pipeline to stop at typecheck, got %v", ctx.StoppedAt)
	}
	if ctx.Mono != nil {
		t.Fatalf("expected monomorphization to never run after a typecheck failure")
	}
}
