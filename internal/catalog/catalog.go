package catalog

import "fmt"

// Catalog bundles the service registry and target graph loaded from one set
// of declaration files. Immutable after Load.
type Catalog struct {
	Registry *Registry
	Graph    *Graph
}

// Alternatives returns the target's alternative sets. Targets without
// declared alternative blocks get a single implicit set built from the
// services that list the target, in registry preference order.
func (c *Catalog) Alternatives(target string) []*AlternativeSet {
	t := c.Graph.Target(target)
	if t == nil {
		return nil
	}
	if len(t.Alternatives) > 0 {
		return t.Alternatives
	}
	svcs := c.Registry.LookupByTarget(target)
	if len(svcs) == 0 {
		return nil
	}
	names := make([]string, len(svcs))
	for i, svc := range svcs {
		names[i] = svc.Name
	}
	return []*AlternativeSet{{Services: names}}
}

// validate checks the integrity of the catalog as a whole. Any failure here
// is fatal at load time, before planning starts.
func (c *Catalog) validate(knownRunners map[string]bool) error {
	if err := c.Registry.validate(); err != nil {
		return err
	}
	for _, svc := range c.Registry.Services() {
		for _, target := range svc.Targets {
			if c.Graph.Target(target) == nil {
				return fmt.Errorf("service %q: targets %q: %w", svc.Name, target, ErrUnknownTarget)
			}
		}
		if knownRunners != nil && !knownRunners[svc.Runner] {
			return fmt.Errorf("service %q: runner %q is not registered", svc.Name, svc.Runner)
		}
	}
	for _, name := range c.Graph.order {
		t := c.Graph.targets[name]
		for _, req := range append(append([]string{}, t.Requires...), t.Wants...) {
			if c.Graph.Target(req) == nil {
				return fmt.Errorf("target %q: prerequisite %q: %w", name, req, ErrUnknownTarget)
			}
		}
		for _, alt := range t.Alternatives {
			for _, svcName := range alt.Services {
				if c.Registry.Service(svcName) == nil {
					return fmt.Errorf("target %q: alternative service %q: %w", name, svcName, ErrUnknownDependency)
				}
			}
		}
	}
	// Prerequisite edges must admit a topological order; fail at load rather
	// than at the first plan.
	all := make([]string, len(c.Graph.order))
	copy(all, c.Graph.order)
	if _, err := c.Graph.Resolve(all); err != nil {
		return err
	}
	return nil
}
