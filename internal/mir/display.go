package mir

import (
	"fmt"
	"strings"
)

// String renders a Function in a textual form directly grounded on
// `rask-mir/src/display.rs`'s Display impls (SPEC_FULL.md §12): useful for
// golden-file tests of the lowerer and for a future `raskc --emit mir`
// debug flag. This is not a parser — no round-trip guarantee is claimed or
// needed, only a stable, readable rendering of the CFG.
func (f *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s(", f.Name)
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("_%d", p.ID)
		}
		fmt.Fprintf(&sb, "%s: %s", name, p.Type.String())
	}
	fmt.Fprintf(&sb, ") -> %s {\n", f.RetTy.String())
	for _, l := range f.Locals {
		name := l.Name
		if name == "" {
			name = fmt.Sprintf("_%d", l.ID)
		}
		fmt.Fprintf(&sb, "  let %s: %s\n", name, l.Type.String())
	}
	for _, b := range f.Blocks {
		fmt.Fprintf(&sb, "  bb%d:\n", b.ID)
		for _, s := range b.Stmts {
			fmt.Fprintf(&sb, "    %s\n", s.String())
		}
		fmt.Fprintf(&sb, "    %s\n", b.Terminator.String())
	}
	sb.WriteString("}")
	return sb.String()
}

// String renders a whole lowered Program, one function after another.
func (p *Program) String() string {
	parts := make([]string, 0, len(p.Functions))
	for _, fn := range p.Functions {
		parts = append(parts, fn.String())
	}
	return strings.Join(parts, "\n\n")
}

func local(id LocalId) string {
	if id == InvalidLocal {
		return "_"
	}
	return fmt.Sprintf("_%d", id)
}

// String renders an Operand (spec §4.8's "operand" grammar: local read or
// literal constant).
func (o Operand) String() string {
	if !o.IsConst {
		return local(o.Local)
	}
	switch o.ConstKind {
	case ConstInt:
		return fmt.Sprintf("%d", o.IntConst)
	case ConstFloat:
		return fmt.Sprintf("%g", o.FloatConst)
	case ConstBool:
		return fmt.Sprintf("%t", o.BoolConst)
	case ConstChar:
		return fmt.Sprintf("'%c'", o.CharConst)
	case ConstString:
		return fmt.Sprintf("%q", o.StrConst)
	case ConstUnit:
		return "()"
	case ConstNone:
		return "none"
	case ConstNull:
		return "null"
	default:
		return "<const?>"
	}
}

// String renders an Rvalue.
func (r Rvalue) String() string {
	switch r.Kind {
	case RUse:
		return r.Operand.String()
	case RRef:
		return "&" + local(r.Base)
	case RDeref:
		return "*" + local(r.Base)
	case RBinaryOp:
		return fmt.Sprintf("%s %s %s", r.Left, r.Op, r.Right)
	case RUnaryOp:
		return fmt.Sprintf("%s%s", r.UnaryOp, r.Operand1)
	case RCast:
		return fmt.Sprintf("%s as %s", r.Operand1, r.CastTo.String())
	case RField:
		if r.FieldName != "" {
			return fmt.Sprintf("%s.%s", r.FieldBase, r.FieldName)
		}
		return fmt.Sprintf("%s.%d", r.FieldBase, r.FieldIndex)
	case REnumTag:
		return fmt.Sprintf("tag(%s)", r.TagValue)
	case RAggregate:
		elems := make([]string, len(r.AggregateElems))
		for i, e := range r.AggregateElems {
			elems[i] = e.String()
		}
		return fmt.Sprintf("%s { %s }", r.AggregateType.String(), strings.Join(elems, ", "))
	default:
		return "<rvalue?>"
	}
}

// String renders one Stmt.
func (s Stmt) String() string {
	switch s.Kind {
	case SAssign:
		return fmt.Sprintf("%s = %s", local(s.Dst), s.Rvalue.String())
	case SStore:
		if s.FieldName != "" {
			return fmt.Sprintf("*(%s+%s) = %s", local(s.Addr), s.FieldName, s.Value)
		}
		return fmt.Sprintf("*(%s+%d) = %s", local(s.Addr), s.Offset, s.Value)
	case SCall:
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = a.String()
		}
		call := fmt.Sprintf("%s(%s)", s.Func, strings.Join(args, ", "))
		if s.Dst != InvalidLocal {
			return fmt.Sprintf("%s = %s", local(s.Dst), call)
		}
		return call
	case SResourceRegister:
		return fmt.Sprintf("%s = resource_register(%s, depth=%d)", local(s.Dst), s.TypeName, s.ScopeDepth)
	case SResourceConsume:
		return fmt.Sprintf("resource_consume(%d)", s.ResourceID)
	case SResourceScopeCheck:
		return fmt.Sprintf("resource_scope_check(depth=%d)", s.ScopeDepth)
	case SEnsurePush:
		return fmt.Sprintf("ensure_push(bb%d)", s.CleanupBlock)
	case SEnsurePop:
		return "ensure_pop"
	case SPoolCheckedAccess:
		return fmt.Sprintf("%s = pool_checked_access(%s, %s)", local(s.Dst), s.Pool, s.Handle)
	case SSourceLocation:
		return fmt.Sprintf("; loc %d:%d", s.Line, s.Col)
	case SClosureCreate:
		caps := make([]string, len(s.Captures))
		for i, c := range s.Captures {
			caps[i] = fmt.Sprintf("%s@%d", c.Name, c.Offset)
		}
		return fmt.Sprintf("%s = closure_create(%s, [%s], env_size=%d)",
			local(s.Dst), s.ClosureFunc, strings.Join(caps, ", "), s.EnvSize)
	case SClosureCall:
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = a.String()
		}
		call := fmt.Sprintf("closure_call(%s, %s)", s.Closure, strings.Join(args, ", "))
		if s.Dst != InvalidLocal {
			return fmt.Sprintf("%s = %s", local(s.Dst), call)
		}
		return call
	case SLoadCapture:
		return fmt.Sprintf("%s = load_capture(%s+%d)", local(s.Dst), local(s.EnvPtr), s.CaptureOffset)
	default:
		return "<stmt?>"
	}
}

// String renders a Terminator.
func (t Terminator) String() string {
	switch t.Kind {
	case TReturn:
		if t.HasValue {
			return fmt.Sprintf("return %s", t.Value)
		}
		return "return"
	case TGoto:
		return fmt.Sprintf("goto bb%d", t.Target)
	case TBranch:
		return fmt.Sprintf("branch %s => bb%d, bb%d", t.Cond, t.Then, t.Else)
	case TSwitch:
		cases := make([]string, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = fmt.Sprintf("%d => bb%d", c.Value, c.Target)
		}
		return fmt.Sprintf("switch %s { %s, default => bb%d }", t.SwitchOn, strings.Join(cases, ", "), t.Default)
	case TCleanupReturn:
		chain := make([]string, len(t.CleanupChain))
		for i, bb := range t.CleanupChain {
			chain[i] = fmt.Sprintf("bb%d", bb)
		}
		if t.HasValue {
			return fmt.Sprintf("cleanup_return %s [%s]", t.Value, strings.Join(chain, ", "))
		}
		return fmt.Sprintf("cleanup_return [%s]", strings.Join(chain, ", "))
	case TUnreachable:
		return "unreachable"
	default:
		return "<terminator?>"
	}
}
