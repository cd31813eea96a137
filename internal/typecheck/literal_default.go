package typecheck

import "github.com/rask-lang/raskc/internal/typesystem"

// applyLiteralDefaults runs once the constraint solver reaches a fixpoint
// (spec §4.5 "unconstrained numeric literals default to i32 / f64"):
// any inference variable allocated for an unsuffixed int/float literal that
// never got unified with a concrete type is pinned to the default.
func (c *Checker) applyLiteralDefaults() {
	for _, v := range c.intLitVars {
		resolved := c.ic.Apply(typesystem.Var(v))
		if resolved.IsVar() {
			c.ic.Subst[resolved.Var] = typesystem.I32
		}
	}
	for _, v := range c.floatLitVars {
		resolved := c.ic.Apply(typesystem.Var(v))
		if resolved.IsVar() {
			c.ic.Subst[resolved.Var] = typesystem.F64
		}
	}
}
