package mono

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/parser"
	"github.com/rask-lang/raskc/internal/resolver"
	"github.com/rask-lang/raskc/internal/typecheck"
)

// checkProgram runs the three phases mono depends on, failing the test
// immediately if any of them reports an error — the same parse/resolve/check
// setup as internal/typecheck/typecheck_test.go's mustParse/mustResolve.
func checkProgram(t *testing.T, src string) (*ast.Program, *resolver.Result, *typecheck.Result) {
	t.Helper()
	prog, errs := parser.Parse("test.rk", src)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	res := resolver.ResolveProgram(prog)
	if len(res.Errors) != 0 {
		t.Fatalf("resolve errors: %v", res.Errors)
	}
	tc := typecheck.Check(prog, res)
	if len(tc.Errors) != 0 {
		t.Fatalf("typecheck errors: %v", tc.Errors)
	}
	return prog, res, tc
}

// instanceKeys extracts the sorted set of (name, type_args) identities a
// Program produced, the granularity spec §8's idempotence property is
// stated over ("the same set of (name, type_args) keys").
func instanceKeys(p *Program) []string {
	keys := make([]string, 0, len(p.Functions))
	for _, fn := range p.Functions {
		keys = append(keys, fn.Name)
	}
	sort.Strings(keys)
	return keys
}

// TestMonomorphizeGenericIdentity is spec §8 end-to-end scenario 2: a
// single generic call to id<i32> produces exactly one instantiation keyed
// on i32.
func TestMonomorphizeGenericIdentity(t *testing.T) {
	src := `func id<T>(x: T) -> T { x }
func main() -> i32 {
  id(42)
}
`
	prog, res, tc := checkProgram(t, src)
	out := Monomorphize(prog, res, tc)
	if len(out.Errors) != 0 {
		t.Fatalf("unexpected monomorphize errors: %v", out.Errors)
	}

	got := instanceKeys(out)
	want := []string{"id$i32", "main"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("instance keys mismatch (-want +got):\n%s", diff)
	}
}

// TestMonomorphizeIdempotent is spec §8's "Monomorphization idempotence"
// property: running the pass twice over the same typed program yields the
// same set of (name, type_args) keys.
func TestMonomorphizeIdempotent(t *testing.T) {
	src := `func pair<T, U>(a: T, b: U) -> T { a }
func main() -> i32 {
  pair(1, true)
  pair(2_i32, "x")
  0
}
`
	prog, res, tc := checkProgram(t, src)

	first := Monomorphize(prog, res, tc)
	second := Monomorphize(prog, res, tc)

	if len(first.Errors) != 0 || len(second.Errors) != 0 {
		t.Fatalf("unexpected monomorphize errors: first=%v second=%v", first.Errors, second.Errors)
	}

	if diff := cmp.Diff(instanceKeys(first), instanceKeys(second)); diff != "" {
		t.Errorf("monomorphization is not idempotent (-first +second):\n%s", diff)
	}
}

// TestMonomorphizeLayoutsForReachableStruct checks spec §4.7's layout
// computation runs over a struct reached from a reachable function's
// body (main's `let p = Point { ... }`).
func TestMonomorphizeLayoutsForReachableStruct(t *testing.T) {
	src := `struct Point { x: i32, y: i32 }
func main() -> i32 {
  let p = Point { x: 1, y: 2 }
  p.x
}
`
	prog, res, tc := checkProgram(t, src)
	out := Monomorphize(prog, res, tc)
	if len(out.Errors) != 0 {
		t.Fatalf("unexpected monomorphize errors: %v", out.Errors)
	}

	found := false
	for _, l := range out.StructLayouts {
		if l.Name == "Point" {
			found = true
			if len(l.Fields) != 2 {
				t.Errorf("expected 2 fields on Point layout, got %d", len(l.Fields))
			}
		}
	}
	if !found {
		t.Errorf("expected a StructLayout for Point, got %v", out.StructLayouts)
	}
}
