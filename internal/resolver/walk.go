package resolver

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/token"
)

// registerImports defines one package symbol per ImportDecl in the Global
// scope, using its alias when present, else the imported member name, else
// the last segment of its dotted path (spec §4.4 "import foo.bar inside a
// dep-using file resolves to either a sibling package or an external one").
func (r *Resolver) registerImports(prog *ast.Program) {
	for _, imp := range prog.Imports {
		name := imp.Alias
		if name == "" && len(imp.Members) > 0 {
			name = imp.Members[0]
		}
		if name == "" && len(imp.Path) > 0 {
			name = imp.Path[len(imp.Path)-1]
		}
		if name == "" {
			continue
		}
		if _, exists := r.top.lookup(name); exists {
			r.errorf(imp.Span, diagnostics.CodeResolveAmbiguousImport, "import '%s' collides with an existing top-level name", name)
			continue
		}
		id := r.table.add(name, SymPackage, false, nil)
		r.top.define(name, id)
	}
}

func (r *Resolver) block(parent *scope, blk *ast.BlockExpr) {
	if blk == nil {
		return
	}
	sc := newScope(ScopeBlock, parent)
	for _, s := range blk.Stmts {
		r.stmt(sc, s)
	}
	if blk.Tail != nil {
		r.expr(sc, blk.Tail)
	}
}

func (r *Resolver) stmt(sc *scope, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		r.expr(sc, n.X)
	case *ast.LetStmt:
		if n.Value != nil {
			r.expr(sc, n.Value)
		}
		id := r.table.add(n.Name, SymLocal, n.Mutable, nil)
		sc.define(n.Name, id)
		r.resolutions[n.ID] = id
	case *ast.LetTupleStmt:
		if n.Value != nil {
			r.expr(sc, n.Value)
		}
		for _, name := range n.Names {
			id := r.table.add(name, SymLocal, n.Mutable, nil)
			sc.define(name, id)
		}
	case *ast.ConstStmt:
		if n.Value != nil {
			r.expr(sc, n.Value)
		}
		id := r.table.add(n.Name, SymConst, false, nil)
		sc.define(n.Name, id)
		r.resolutions[n.ID] = id
	case *ast.AssignStmt:
		r.expr(sc, n.Target)
		r.expr(sc, n.Value)
	case *ast.ReturnStmt:
		if n.Value != nil {
			r.expr(sc, n.Value)
		}
	case *ast.WhileStmt:
		r.expr(sc, n.Cond)
		loopSc := newScope(ScopeLoop, sc)
		loopSc.label = n.Label
		r.block(loopSc, n.Body)
	case *ast.WhileLetStmt:
		r.expr(sc, n.Scrutinee)
		loopSc := newScope(ScopeLoop, sc)
		loopSc.label = n.Label
		r.pattern(loopSc, n.Pattern)
		r.block(loopSc, n.Body)
	case *ast.ForStmt:
		// Only reachable if the resolver runs ahead of desugar (e.g. in a
		// unit test exercising the resolver directly); the pipeline always
		// desugars first, so production input never hits this arm.
		r.expr(sc, n.Iterable)
		loopSc := newScope(ScopeLoop, sc)
		loopSc.label = n.Label
		r.pattern(loopSc, n.Pattern)
		r.block(loopSc, n.Body)
	case *ast.LoopStmt:
		loopSc := newScope(ScopeLoop, sc)
		loopSc.label = n.Label
		r.block(loopSc, n.Body)
	case *ast.BreakStmt:
		r.checkLoopRef(sc, n.Label, n.Span)
		if n.Value != nil {
			r.expr(sc, n.Value)
		}
	case *ast.ContinueStmt:
		r.checkLoopRef(sc, n.Label, n.Span)
	case *ast.EnsureStmt:
		r.block(sc, n.Body)
		if n.CatchBody != nil {
			catchSc := newScope(ScopeBlock, sc)
			if n.CatchName != "" {
				id := r.table.add(n.CatchName, SymLocal, false, nil)
				catchSc.define(n.CatchName, id)
			}
			r.block(catchSc, n.CatchBody)
		}
	case *ast.ComptimeStmt:
		r.block(sc, n.Body)
	}
}

func (r *Resolver) checkLoopRef(sc *scope, label string, span token.Span) {
	if _, ok := sc.enclosingLoop(label); ok {
		return
	}
	if label != "" {
		r.errorf(span, diagnostics.CodeResolveLabelNotFound, "no loop labeled '%s' encloses this statement", label)
		return
	}
	r.errorf(span, diagnostics.CodeResolveBreakOutsideLoop, "break/continue used outside of a loop")
}

func (r *Resolver) pattern(sc *scope, p ast.Pattern) {
	switch n := p.(type) {
	case *ast.IdentPattern:
		id := r.table.add(n.Name, SymLocal, n.Mutable, nil)
		sc.define(n.Name, id)
	case *ast.ConstructorPattern:
		r.resolvePathHead(sc, n.Path, n.Span)
		for _, f := range n.Fields {
			r.pattern(sc, f)
		}
	case *ast.StructPattern:
		r.resolvePathHead(sc, n.Path, n.Span)
		for _, f := range n.Fields {
			if f.Pattern != nil {
				r.pattern(sc, f.Pattern)
			} else {
				id := r.table.add(f.Name, SymLocal, false, nil)
				sc.define(f.Name, id)
			}
		}
	case *ast.TuplePattern:
		for _, e := range n.Elems {
			r.pattern(sc, e)
		}
	case *ast.OrPattern:
		for _, alt := range n.Alternatives {
			r.pattern(sc, alt)
		}
	case *ast.LiteralPattern:
		r.expr(sc, n.Value)
	}
}

// resolvePathHead looks up the first segment of a constructor/struct
// pattern path (the enum/struct name, or a bare variant name like `Some`)
// as a best-effort existence check; qualified paths (`Color.Red`) are left
// for the type checker, which has the receiver type available.
func (r *Resolver) resolvePathHead(sc *scope, path []string, span token.Span) {
	if len(path) == 0 {
		return
	}
	if _, ok := sc.lookup(path[0]); !ok {
		r.errorf(span, diagnostics.CodeResolveUndefinedName, "undefined name '%s'", path[0])
	}
}
