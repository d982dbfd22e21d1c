package capability

// Satisfies is the capability matcher: it reports whether a service whose
// declaration carries the given requires/excludes lists is applicable to a
// workspace holding this set. Every required capability must be present and
// no excluded capability may be present.
//
// The check is pure. The planner calls it to prune alternatives statically
// against reachable capabilities; the executor calls it again immediately
// before each invocation, because capabilities recorded by earlier steps can
// narrow the candidate set further than static analysis could.
func (s Set) Satisfies(requires, excludes []Capability) bool {
	return s.HasAll(requires) && !s.HasAny(excludes)
}
