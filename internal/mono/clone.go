package mono

import (
	"reflect"

	"github.com/rask-lang/raskc/internal/ast"
)

// nodeIdType / exprType / stmtType / patternType / typeExprType let cloneValue
// recognize ast.NodeId fields (which get fresh IDs) and the ast interface
// types (which dispatch through the interface-clone path) via reflection,
// rather than hand-writing a type switch over every *ast.XxxExpr/*ast.XxxStmt
// shape — spec §5 only requires that a clone's NodeIds live in a disjoint
// space from the original's, not any particular cloning strategy.
var (
	nodeIdType = reflect.TypeOf(ast.NoNodeId)
)

// cloner deep-copies an *ast.FnDecl, assigning every NodeId-bearing node a
// fresh id from gen and recording old->new in ids so the caller can carry
// node_types across the clone (spec §4.7 "Decl: a clone of the original
// FnDecl with fresh NodeIds").
type cloner struct {
	gen *ast.IdGen
	ids map[ast.NodeId]ast.NodeId
}

func newCloner() *cloner {
	return &cloner{gen: ast.NewIdGen(), ids: map[ast.NodeId]ast.NodeId{}}
}

// cloneFnDecl returns a structurally identical FnDecl whose every node
// carries a fresh NodeId, with decl.TypeParams cleared (spec §4.7 "and
// TypeParams cleared" — a mono instance is concrete, not generic).
func (c *cloner) cloneFnDecl(decl *ast.FnDecl) *ast.FnDecl {
	v := c.cloneValue(reflect.ValueOf(decl))
	out := v.Interface().(*ast.FnDecl)
	out.TypeParams = nil
	return out
}

func (c *cloner) cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(c.cloneValue(v.Elem()))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		elem := v.Elem()
		cloned := c.cloneValue(elem)
		out := reflect.New(v.Type()).Elem()
		out.Set(cloned)
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			fv := v.Field(i)
			if f.Name == "ID" && f.Type == nodeIdType {
				old := ast.NodeId(fv.Uint())
				fresh := c.gen.Next()
				if old != ast.NoNodeId {
					c.ids[old] = fresh
				}
				out.Field(i).SetUint(uint64(fresh))
				continue
			}
			out.Field(i).Set(c.cloneValue(fv))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.cloneValue(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.cloneValue(v.Index(i)))
		}
		return out
	default:
		// token.Span, string, bool, int, float, enum-like scalars, and any
		// NodeId field not named "ID" (none exist today) are copied as-is.
		return v
	}
}
