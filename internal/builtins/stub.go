// Package builtins is the static built-in method/module signature registry
// consumed by the type checker (spec §4.5 "Built-in modules", §6 "Built-in
// method/module registry"). Signatures are written in a small stub syntax
// (`T or E` -> Result, `T?` -> Option, single uppercase letters -> a fresh
// type variable per call site) and instantiated on demand against a
// receiver's concrete type arguments.
package builtins

import (
	"strings"
	"unicode"

	"github.com/rask-lang/raskc/internal/typesystem"
)

// Stub is a signature type written in the registry's small stub syntax.
type Stub string

// stubNode is the tiny stub-syntax AST, parsed once per Stub string.
type stubNode struct {
	name string // bare identifier, "" when this is a tuple
	args []*stubNode
	opt  bool     // trailing `?`
	or   *stubNode // non-nil for `T or E`
	tuple []*stubNode
}

type stubParser struct {
	s   string
	pos int
}

func parseStub(s Stub) *stubNode {
	p := &stubParser{s: string(s)}
	n := p.parseOr()
	return n
}

func (p *stubParser) skipSpace() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *stubParser) peekWord(word string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.s[p.pos:], word)
}

func (p *stubParser) parseOr() *stubNode {
	left := p.parsePostfix()
	p.skipSpace()
	if p.peekWord("or ") || p.peekWord("or(") {
		p.pos += 2
		right := p.parseOr()
		return &stubNode{or: right, args: []*stubNode{left}}
	}
	return left
}

func (p *stubParser) parsePostfix() *stubNode {
	n := p.parseAtom()
	p.skipSpace()
	for p.pos < len(p.s) && p.s[p.pos] == '?' {
		n = &stubNode{opt: true, args: []*stubNode{n}}
		p.pos++
	}
	return n
}

func (p *stubParser) parseAtom() *stubNode {
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == '(' {
		p.pos++
		var elems []*stubNode
		for {
			p.skipSpace()
			if p.pos >= len(p.s) || p.s[p.pos] == ')' {
				break
			}
			elems = append(elems, p.parseOr())
			p.skipSpace()
			if p.pos < len(p.s) && p.s[p.pos] == ',' {
				p.pos++
				continue
			}
			break
		}
		if p.pos < len(p.s) && p.s[p.pos] == ')' {
			p.pos++
		}
		return &stubNode{tuple: elems}
	}
	start := p.pos
	for p.pos < len(p.s) && (isIdentRune(rune(p.s[p.pos]))) {
		p.pos++
	}
	name := p.s[start:p.pos]
	n := &stubNode{name: name}
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == '<' {
		p.pos++
		for {
			p.skipSpace()
			if p.pos >= len(p.s) || p.s[p.pos] == '>' {
				break
			}
			n.args = append(n.args, p.parseOr())
			p.skipSpace()
			if p.pos < len(p.s) && p.s[p.pos] == ',' {
				p.pos++
				continue
			}
			break
		}
		if p.pos < len(p.s) && p.s[p.pos] == '>' {
			p.pos++
		}
	}
	return n
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isSingleUpper(name string) bool {
	runes := []rune(name)
	return len(runes) == 1 && unicode.IsUpper(runes[0])
}

var primNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true,
	"f32": true, "f64": true, "bool": true, "char": true, "string": true,
	"unit": true, "never": true,
}

// Binder resolves the concrete Type for a single-uppercase-letter stub
// variable, e.g. the receiver's own generic arguments ("T" -> Vec<T>'s
// element type). instantiate calls Fresh for any letter Binder doesn't
// know, memoizing so repeated occurrences (a param and the return type
// sharing "E") resolve to the same variable.
type Binder struct {
	Known map[string]typesystem.Type
	Fresh func() typesystem.Type
	fresh map[string]typesystem.Type
}

func NewBinder(known map[string]typesystem.Type, fresh func() typesystem.Type) *Binder {
	return &Binder{Known: known, Fresh: fresh, fresh: make(map[string]typesystem.Type)}
}

func (b *Binder) resolveVar(name string) typesystem.Type {
	if t, ok := b.Known[name]; ok {
		return t
	}
	if t, ok := b.fresh[name]; ok {
		return t
	}
	t := b.Fresh()
	b.fresh[name] = t
	return t
}

// Instantiate converts a Stub to a concrete typesystem.Type against b.
func (b *Binder) Instantiate(s Stub) typesystem.Type {
	return b.build(parseStub(s))
}

func (b *Binder) build(n *stubNode) typesystem.Type {
	if n == nil {
		return typesystem.Unit
	}
	if n.or != nil {
		return typesystem.Result(b.build(n.args[0]), b.build(n.or))
	}
	if n.opt {
		return typesystem.Option(b.build(n.args[0]))
	}
	if n.tuple != nil {
		elems := make([]typesystem.Type, len(n.tuple))
		for i, e := range n.tuple {
			elems[i] = b.build(e)
		}
		return typesystem.Tuple(elems...)
	}
	if isSingleUpper(n.name) {
		return b.resolveVar(n.name)
	}
	if primNames[n.name] {
		return typesystem.Prim(n.name)
	}
	switch n.name {
	case "Vec", "Slice":
		if len(n.args) == 1 {
			return typesystem.Slice(b.build(n.args[0]))
		}
	}
	args := make([]typesystem.Type, len(n.args))
	for i, a := range n.args {
		args[i] = b.build(a)
	}
	// Opaque builtin handle type (Map, Pool, Handle, File, ...): represented
	// as an unresolved named type carrying its arguments; the type checker
	// treats any UnresolvedNamed/UnresolvedGeneric whose head matches a
	// registry receiver name as that builtin handle without needing a real
	// TypeTable entry (spec §4.5 dispatch path 1 is builtin-name-keyed, not
	// TypeId-keyed).
	if len(args) == 0 {
		return typesystem.UnresolvedNamed([]string{n.name})
	}
	return typesystem.UnresolvedGeneric([]string{n.name}, args)
}

// ReceiverHead returns the builtin registry key for a receiver type: the
// primitive name, or the head name of an (Unresolved)Named/Generic/builtin
// handle type. Ok is false for types with no builtin registry entry.
func ReceiverHead(t typesystem.Type) (string, bool) {
	switch t.Kind {
	case typesystem.KPrimitive:
		return t.Prim, true
	case typesystem.KUnresolvedNamed:
		if len(t.UnresolvedPath) > 0 {
			return t.UnresolvedPath[len(t.UnresolvedPath)-1], true
		}
	case typesystem.KUnresolvedGeneric:
		if len(t.UnresolvedPath) > 0 {
			return t.UnresolvedPath[len(t.UnresolvedPath)-1], true
		}
	case typesystem.KOption:
		return "Option", true
	case typesystem.KResult:
		return "Result", true
	case typesystem.KSlice:
		return "Vec", true
	}
	return "", false
}

// ReceiverArgs extracts the positional type arguments of a receiver (so
// "T" in a Vec<T> method stub binds to the slice's element type, etc.).
func ReceiverArgs(t typesystem.Type, paramNames []string) map[string]typesystem.Type {
	out := make(map[string]typesystem.Type)
	var args []typesystem.Type
	switch t.Kind {
	case typesystem.KUnresolvedGeneric:
		args = t.UnresolvedArgs
	case typesystem.KOption:
		args = []typesystem.Type{*t.Elem}
	case typesystem.KResult:
		args = []typesystem.Type{*t.Ok, *t.Err}
	case typesystem.KSlice:
		args = []typesystem.Type{*t.Elem}
	}
	for i, name := range paramNames {
		if i < len(args) {
			out[name] = args[i]
		}
	}
	return out
}
