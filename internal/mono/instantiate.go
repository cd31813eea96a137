package mono

import (
	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/typesystem"
)

// instantiate builds (or returns the already-built) MonoFn for item.key,
// recording it in m.instances/m.order exactly once (spec §4.7 "identity is
// by SymbolId + args... memoized so repeated discovery is a no-op").
//
// A non-generic function (item.args empty) has exactly one instance and no
// free type parameters to substitute, so its original Decl/NodeTypes are
// reused verbatim — cloning would only rename NodeIds nothing else reads,
// since every pre-mono side table keyed by those ids belongs to the single
// package compile this monomorphizer already holds a reference to. Spec §5's
// "clone into a fresh NodeId space" concern is about generic instances,
// where the same Decl gets cloned once per distinct type-argument tuple and
// the clones' node tables must not collide with each other or the original.
func (m *monomorphizer) instantiate(item workItem) *MonoFn {
	if mf, ok := m.instances[item.key]; ok {
		return mf
	}

	sub := typeParamSub(item.decl, item.args)
	sig := m.tc.Funcs[item.sym]

	var mf *MonoFn
	if len(item.args) == 0 {
		mf = &MonoFn{
			Key:       item.key,
			Name:      item.decl.Name,
			TypeArgs:  nil,
			Decl:      item.decl,
			NodeTypes: m.tc.NodeTypes,
			Original:  item.decl,
		}
	} else {
		c := newCloner()
		cloned := c.cloneFnDecl(item.decl)

		nodeTypes := make(map[ast.NodeId]typesystem.Type, len(c.ids))
		for oldID, newID := range c.ids {
			if t, ok := m.tc.NodeTypes[oldID]; ok {
				nodeTypes[newID] = typesystem.ApplyNamed(t, sub)
			}
		}

		mf = &MonoFn{
			Key:       item.key,
			Name:      mangledName(item.decl.Name, item.args),
			TypeArgs:  item.args,
			Decl:      cloned,
			NodeTypes: nodeTypes,
			Original:  item.decl,
		}
	}

	if sig != nil {
		mf.Params = make([]typesystem.ParamDef, len(sig.Params))
		for i, p := range sig.Params {
			mf.Params[i] = typesystem.ParamDef{Name: p.Name, Type: typesystem.ApplyNamed(p.Type, sub), Take: p.Take, Mutable: p.Mutable}
		}
		mf.Ret = typesystem.ApplyNamed(sig.Ret, sub)
	}

	m.instances[item.key] = mf
	m.order = append(m.order, item.key)
	m.markReachableTypes(mf)
	return mf
}

// markReachableTypes records every struct/enum TypeId reachable from mf's
// body (via its recorded node types) so collectLayouts only computes
// layouts for types the monomorphized program actually uses (spec §4.7
// "layouts are computed only for reachable struct/enum types").
func (m *monomorphizer) markReachableTypes(mf *MonoFn) {
	for _, t := range mf.NodeTypes {
		m.markType(t)
	}
}

func (m *monomorphizer) markType(t typesystem.Type) {
	switch t.Kind {
	case typesystem.KNamed:
		m.markTypeID(t.Named)
	case typesystem.KGeneric:
		m.markTypeID(t.Base)
		for _, a := range t.Args {
			m.markType(a)
		}
	case typesystem.KOption:
		m.markType(*t.Elem)
	case typesystem.KResult:
		m.markType(*t.Ok)
		m.markType(*t.Err)
	case typesystem.KArray, typesystem.KSlice:
		m.markType(*t.Elem)
	case typesystem.KTuple:
		for _, e := range t.Elems {
			m.markType(e)
		}
	case typesystem.KFn:
		for _, p := range t.Params {
			m.markType(p)
		}
		m.markType(*t.Ret)
	case typesystem.KUnion:
		for _, mem := range t.Members {
			m.markType(mem)
		}
	}
}

// markTypeID marks id (and, transitively, every type its fields/variants
// mention) reachable, guarding against re-visiting an already-seen type so
// recursive struct definitions terminate.
func (m *monomorphizer) markTypeID(id typesystem.TypeId) {
	def := m.tc.Table.Get(id)
	if def == nil {
		return
	}
	switch def.Kind {
	case typesystem.DefStruct:
		if m.structSeen[id] {
			return
		}
		m.structSeen[id] = true
		for _, f := range def.Fields {
			m.markType(f.Type)
		}
	case typesystem.DefEnum:
		if id == m.tc.Table.OptionID || id == m.tc.Table.ResultID {
			return
		}
		if m.enumSeen[id] {
			return
		}
		m.enumSeen[id] = true
		for _, v := range def.Variants {
			for _, p := range v.Positional {
				m.markType(p)
			}
			for _, f := range v.Named {
				m.markType(f.Type)
			}
		}
	}
}
