package mir

import (
	"strings"
	"testing"

	"github.com/rask-lang/raskc/internal/typesystem"
)

// buildAddOne constructs `func add_one(x: i32) -> i32 { return x + 1 }` by
// hand, bypassing the lowerer, to exercise String() in isolation.
func buildAddOne() *Function {
	fn := &Function{Name: "add_one", RetTy: typesystem.I32}
	x := fn.NewLocal(typesystem.I32, "x")
	fn.Params = []Param{{ID: x, Type: typesystem.I32, Name: "x"}}
	tmp := fn.NewLocal(typesystem.I32, "")
	bb := fn.NewBlock()
	fn.EntryBlock = bb
	blk := fn.Block(bb)
	blk.Stmts = append(blk.Stmts, Assign(tmp, Rvalue{
		Kind: RBinaryOp, Op: "+", Left: UseLocal(x), Right: ConstIntOp(1, typesystem.I32),
	}))
	blk.Terminator = Return(UseLocal(tmp))
	return fn
}

func TestFunctionStringRendersSignatureAndBody(t *testing.T) {
	fn := buildAddOne()
	out := fn.String()
	for _, want := range []string{
		"func add_one(x: i32) -> i32 {",
		"_1 = _0 + 1",
		"return _1",
		"bb0:",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected rendering to contain %q, got:\n%s", want, out)
		}
	}
}

func TestProgramStringJoinsFunctions(t *testing.T) {
	prog := &Program{Functions: []*Function{buildAddOne(), buildAddOne()}}
	out := prog.String()
	if strings.Count(out, "func add_one") != 2 {
		t.Fatalf("expected two rendered functions, got:\n%s", out)
	}
}

func TestTerminatorStringVariants(t *testing.T) {
	cases := []struct {
		term Terminator
		want string
	}{
		{Goto(3), "goto bb3"},
		{Branch(ConstBoolOp(true), 1, 2), "branch true => bb1, bb2"},
		{Unreachable(), "unreachable"},
		{ReturnVoid(), "return"},
	}
	for _, c := range cases {
		if got := c.term.String(); got != c.want {
			t.Errorf("terminator rendering: got %q, want %q", got, c.want)
		}
	}
}
