// Package planner resolves a requested set of logical targets into a linear,
// dependency-respecting execution plan. Each plan step carries a ranked list
// of alternative services; the executor tries them in order. Planning is
// fully deterministic: identical catalogs and inputs yield identical plans.
package planner

import (
	"errors"
	"fmt"

	"github.com/seqqap/seqqap/internal/capability"
	"github.com/seqqap/seqqap/internal/catalog"
)

var (
	// ErrUnsatisfiableTarget is returned when a needed target has zero
	// applicable services after static pruning against reachable
	// capabilities.
	ErrUnsatisfiableTarget = errors.New("unsatisfiable target")

	// ErrPlanOrder is returned when the union of target prerequisite edges
	// and service order hints admits no topological order.
	ErrPlanOrder = errors.New("no valid plan order")
)

// Step is one position in the ordered execution plan.
type Step struct {
	// ID identifies the step in records and work directories. It is the
	// target name, suffixed with ".N" when a target declares several
	// alternative sets and therefore spans several steps.
	ID     string
	Target string

	// Needed marks steps whose target was explicitly requested or is a hard
	// prerequisite of one; their failure fails the run.
	Needed bool

	// Alternatives are the candidate service names in preference order.
	Alternatives []string
}

// Plan expands the requested targets through the target graph, statically
// prunes alternatives that could never become applicable, and emits the
// ordered plan. It fails, before anything runs, with ErrUnsatisfiableTarget,
// ErrPlanOrder, or the catalog's resolution errors.
func Plan(cat *catalog.Catalog, requested, excluded []string, initial capability.Set) ([]Step, error) {
	closure, err := cat.Graph.Resolve(requested)
	if err != nil {
		return nil, err
	}

	exclTargets := make(map[string]bool)
	exclServices := make(map[string]bool)
	for _, name := range excluded {
		if cat.Graph.Target(name) != nil {
			exclTargets[name] = true
		} else if cat.Registry.Service(name) != nil {
			exclServices[name] = true
		} else {
			return nil, fmt.Errorf("%w: exclude %q matches no target or service", catalog.ErrUnknownTarget, name)
		}
	}

	var entries []catalog.Resolved
	for _, entry := range closure {
		if !exclTargets[entry.Name] {
			entries = append(entries, entry)
		}
	}

	// Candidate alternative sets per target, minus excluded services.
	candidates := make(map[string][][]string)
	declared := make(map[string]bool) // target had any declared candidates
	for _, entry := range entries {
		var sets [][]string
		for _, alt := range cat.Alternatives(entry.Name) {
			var names []string
			for _, name := range alt.Services {
				if !exclServices[name] {
					names = append(names, name)
				}
			}
			if len(alt.Services) > 0 {
				declared[entry.Name] = true
			}
			if len(names) > 0 {
				sets = append(sets, names)
			}
		}
		candidates[entry.Name] = sets
	}

	reachable := reachableCapabilities(cat, candidates, initial)

	applicable := func(svc *catalog.Service) bool {
		return reachable.HasAll(svc.Requires) && !initial.HasAny(svc.Excludes)
	}

	// Prune statically and detect unsatisfiable needed targets, reporting
	// the first one in request order.
	pruned := make(map[string][][]string)
	for _, entry := range entries {
		var sets [][]string
		for _, set := range candidates[entry.Name] {
			var kept []string
			for _, name := range set {
				if applicable(cat.Registry.Service(name)) {
					kept = append(kept, name)
				}
			}
			if len(kept) > 0 {
				sets = append(sets, kept)
			}
		}
		if len(sets) == 0 && entry.Needed {
			t := cat.Graph.Target(entry.Name)
			unfulfillable := declared[entry.Name] ||
				(len(t.Requires) == 0 && len(t.Wants) == 0)
			if unfulfillable {
				return nil, fmt.Errorf("%w: %q", ErrUnsatisfiableTarget, entry.Name)
			}
		}
		pruned[entry.Name] = sets
	}

	ordered, err := orderTargets(cat, entries, pruned)
	if err != nil {
		return nil, err
	}

	neededBy := make(map[string]bool, len(entries))
	for _, entry := range entries {
		neededBy[entry.Name] = entry.Needed
	}

	var plan []Step
	for _, target := range ordered {
		sets := pruned[target]
		for i, set := range sets {
			id := target
			if i > 0 {
				id = fmt.Sprintf("%s.%d", target, i+1)
			}
			plan = append(plan, Step{
				ID:           id,
				Target:       target,
				Needed:       neededBy[target],
				Alternatives: set,
			})
		}
	}
	return plan, nil
}

// reachableCapabilities computes, to fixpoint, the union of the initial
// capabilities and everything the candidate services could produce. A
// service contributes its outputs only once its own requirements are
// covered; excludes against the initial set disqualify it outright, since
// capabilities only ever accumulate.
func reachableCapabilities(cat *catalog.Catalog, candidates map[string][][]string, initial capability.Set) capability.Set {
	reachable := initial.Clone()
	for {
		grew := false
		for _, sets := range candidates {
			for _, set := range sets {
				for _, name := range set {
					svc := cat.Registry.Service(name)
					if !reachable.HasAll(svc.Requires) || initial.HasAny(svc.Excludes) {
						continue
					}
					for _, c := range svc.Produces {
						if !reachable.Has(c) {
							reachable.Add(c)
							grew = true
						}
					}
				}
			}
		}
		if !grew {
			return reachable
		}
	}
}

// orderTargets topologically sorts the closure targets over the union of
// prerequisite edges and service order hints. Ties break by first-seen
// closure position, which itself derives from the request order, so the
// result is stable.
func orderTargets(cat *catalog.Catalog, entries []catalog.Resolved, pruned map[string][][]string) ([]string, error) {
	index := make(map[string]int, len(entries))
	for i, entry := range entries {
		index[entry.Name] = i
	}

	// serviceTarget locates the target a surviving candidate belongs to.
	serviceTarget := make(map[string]string)
	for _, entry := range entries {
		for _, set := range pruned[entry.Name] {
			for _, name := range set {
				if _, ok := serviceTarget[name]; !ok {
					serviceTarget[name] = entry.Name
				}
			}
		}
	}

	indegree := make(map[string]int, len(entries))
	successors := make(map[string][]string, len(entries))
	addEdge := func(from, to string) {
		if from == to {
			return
		}
		successors[from] = append(successors[from], to)
		indegree[to]++
	}

	for _, entry := range entries {
		t := cat.Graph.Target(entry.Name)
		for _, req := range t.Requires {
			if _, ok := index[req]; ok {
				addEdge(req, entry.Name)
			}
		}
		for _, want := range t.Wants {
			if _, ok := index[want]; ok {
				addEdge(want, entry.Name)
			}
		}
		// Lift service order hints to target edges: if a candidate of this
		// target must run after a service planned under another target, that
		// target goes first.
		for _, set := range pruned[entry.Name] {
			for _, name := range set {
				for _, after := range cat.Registry.Service(name).After {
					if other, ok := serviceTarget[after]; ok && other != entry.Name {
						addEdge(other, entry.Name)
					}
				}
			}
		}
	}

	var ordered []string
	done := make(map[string]bool, len(entries))
	for len(ordered) < len(entries) {
		next := ""
		for _, entry := range entries {
			if !done[entry.Name] && indegree[entry.Name] == 0 {
				next = entry.Name
				break
			}
		}
		if next == "" {
			return nil, fmt.Errorf("%w: cyclic ordering constraints among remaining targets", ErrPlanOrder)
		}
		done[next] = true
		ordered = append(ordered, next)
		for _, succ := range successors[next] {
			indegree[succ]--
		}
	}
	return ordered, nil
}
