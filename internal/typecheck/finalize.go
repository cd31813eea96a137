package typecheck

import "github.com/rask-lang/raskc/internal/typesystem"

// finalizeCallTypeArgs resolves every generic call site's pending type
// arguments through the settled substitution, producing the call_type_args
// side table spec §3 describes ("NodeId of the call -> concrete type
// arguments the monomorphizer instantiates against").
func (c *Checker) finalizeCallTypeArgs() {
	for id, args := range c.pendingArgs {
		resolved := make([]typesystem.Type, len(args))
		for i, a := range args {
			resolved[i] = c.ic.Apply(a)
		}
		c.callTypeArgs[id] = resolved
	}
	for id, t := range c.nodeTypes {
		c.nodeTypes[id] = c.ic.Apply(t)
	}
}
