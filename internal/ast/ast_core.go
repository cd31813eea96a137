// Package ast defines the parsed representation of Rask source: an owned
// tree whose expression and statement nodes carry a stable NodeId and a
// Span, per spec §3. NodeIds are the canonical keys for every later-pass
// side table (types, resolutions, call-site type arguments).
package ast

import (
	"github.com/rask-lang/raskc/internal/token"
)

// NodeId is a dense, package-local identifier assigned at parse time.
// Monomorphization clones nodes into a fresh NodeId space of its own
// (spec §5 "Memory discipline") to avoid collisions with pre-mono side
// tables.
type NodeId uint32

// NoNodeId is the zero value, used for nodes that are never looked up by
// ID (declarations, patterns, types — only statements and expressions are
// indexed by NodeId per spec §3).
const NoNodeId NodeId = 0

// IdGen densely allocates NodeIds within one package compile.
type IdGen struct{ next NodeId }

// NewIdGen returns an id generator starting at 1 (0 is NoNodeId).
func NewIdGen() *IdGen { return &IdGen{next: 1} }

// Next allocates and returns the next NodeId.
func (g *IdGen) Next() NodeId {
	id := g.next
	g.next++
	return id
}

// Node is the base interface implemented by every AST node.
type Node interface {
	TokenLiteral() string
	GetSpan() token.Span
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement; every Stmt carries a NodeId.
type Stmt interface {
	Node
	stmtNode()
	GetID() NodeId
}

// Expr is an expression; every Expr carries a NodeId.
type Expr interface {
	Node
	exprNode()
	GetID() NodeId
}

// Identifier is a bare name reference, reused across expressions, patterns
// and declarations.
type Identifier struct {
	ID    NodeId
	Span  token.Span
	Value string
}

func (i *Identifier) TokenLiteral() string { return i.Value }
func (i *Identifier) GetSpan() token.Span  { return i.Span }
func (i *Identifier) GetID() NodeId        { return i.ID }
func (i *Identifier) exprNode()            {}

// Program is the root node produced by parsing one source file.
type Program struct {
	File    string
	Package *PackageDecl
	Imports []*ImportDecl
	Decls   []Decl
}

func (p *Program) TokenLiteral() string {
	if len(p.Decls) > 0 {
		return p.Decls[0].TokenLiteral()
	}
	return ""
}
func (p *Program) GetSpan() token.Span {
	if len(p.Decls) > 0 {
		return p.Decls[0].GetSpan()
	}
	return token.Span{}
}
