package executor

import (
	"github.com/seqqap/seqqap/internal/capability"
	"github.com/seqqap/seqqap/internal/catalog"
	"github.com/seqqap/seqqap/internal/planner"
)

// neededCapabilities computes, before execution starts, the set of
// capabilities that requested targets depend on, directly or transitively:
// starting from the requirements of every candidate on a needed step, each
// needed capability pulls in the requirements of the steps able to produce
// it.
func neededCapabilities(cat *catalog.Catalog, plan []planner.Step) capability.Set {
	producers := make(map[capability.Capability][]int)
	for i, step := range plan {
		seen := make(map[capability.Capability]bool)
		for _, name := range step.Alternatives {
			for _, c := range cat.Registry.Service(name).Produces {
				if !seen[c] {
					seen[c] = true
					producers[c] = append(producers[c], i)
				}
			}
		}
	}

	needed := capability.NewSet()
	var require func(caps []capability.Capability)
	require = func(caps []capability.Capability) {
		for _, c := range caps {
			if needed.Has(c) {
				continue
			}
			needed.Add(c)
			for _, i := range producers[c] {
				for _, name := range plan[i].Alternatives {
					require(cat.Registry.Service(name).Requires)
				}
			}
		}
	}

	for _, step := range plan {
		if !step.Needed {
			continue
		}
		for _, name := range step.Alternatives {
			require(cat.Registry.Service(name).Requires)
		}
	}
	return needed
}

// critical decides whether the failure (or skip) of plan[idx] dooms a
// requested target. A needed step failing is always critical. Otherwise the
// step is critical when it would have produced a needed capability that is
// neither already in the workspace nor producible by a later, still-pending
// step.
func (e *Executor) critical(plan []planner.Step, idx int, needed capability.Set) bool {
	if plan[idx].Needed {
		return true
	}

	have := e.ws.Capabilities()
	for _, name := range plan[idx].Alternatives {
		for _, c := range e.cat.Registry.Service(name).Produces {
			if !needed.Has(c) || have.Has(c) {
				continue
			}
			if !e.producibleLater(plan, idx, c) {
				return true
			}
		}
	}
	return false
}

// producibleLater reports whether any step after idx still has a candidate
// producing c. Steps before idx are terminal and cannot produce anything
// anymore; equal-position alternatives were already exhausted.
func (e *Executor) producibleLater(plan []planner.Step, idx int, c capability.Capability) bool {
	for i := idx + 1; i < len(plan); i++ {
		for _, name := range plan[i].Alternatives {
			for _, p := range e.cat.Registry.Service(name).Produces {
				if p == c {
					return true
				}
			}
		}
	}
	return false
}
