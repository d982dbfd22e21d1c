package catalog

import (
	"fmt"
	"sort"
)

// Graph is the declarative mapping from logical target names to the services
// that realize them, plus the prerequisite edges between targets.
type Graph struct {
	targets map[string]*Target
	order   []string // declaration order
}

// NewGraph creates an empty target graph.
func NewGraph() *Graph {
	return &Graph{targets: make(map[string]*Target)}
}

// AddTarget adds a target declaration to the graph.
func (g *Graph) AddTarget(t *Target) error {
	if _, exists := g.targets[t.Name]; exists {
		return fmt.Errorf("duplicate target %q", t.Name)
	}
	g.targets[t.Name] = t
	g.order = append(g.order, t.Name)
	return nil
}

// Target returns the named target, or nil when not declared.
func (g *Graph) Target(name string) *Target {
	return g.targets[name]
}

// Resolved is one entry of a prerequisite closure. Needed marks targets the
// user asked for, or hard prerequisites of such targets; these must end up
// satisfiable, while the rest may be dropped when inapplicable.
type Resolved struct {
	Name   string
	Needed bool
}

// Resolve expands the requested targets into their full prerequisite
// closure. Prerequisites precede their dependents, duplicates keep their
// first-seen position, and revisiting a target already on the current
// expansion path fails with ErrCyclicTarget.
func (g *Graph) Resolve(requested []string) ([]Resolved, error) {
	var order []string
	seen := make(map[string]bool)
	needed := make(map[string]bool)
	onPath := make(map[string]bool)

	// upgrade propagates neededness through the hard-prerequisite edges of
	// already-visited targets.
	var upgrade func(name string)
	upgrade = func(name string) {
		if needed[name] {
			return
		}
		needed[name] = true
		for _, req := range g.targets[name].Requires {
			upgrade(req)
		}
	}

	var visit func(name string, nd bool) error
	visit = func(name string, nd bool) error {
		t := g.targets[name]
		if t == nil {
			return fmt.Errorf("%w: %q", ErrUnknownTarget, name)
		}
		if onPath[name] {
			return fmt.Errorf("%w: %q", ErrCyclicTarget, name)
		}
		if seen[name] {
			if nd {
				upgrade(name)
			}
			return nil
		}
		onPath[name] = true
		for _, req := range t.Requires {
			if err := visit(req, nd); err != nil {
				return err
			}
		}
		for _, want := range t.Wants {
			if err := visit(want, false); err != nil {
				return err
			}
		}
		delete(onPath, name)
		seen[name] = true
		if nd {
			needed[name] = true
		}
		order = append(order, name)
		return nil
	}

	for _, name := range requested {
		if err := visit(name, true); err != nil {
			return nil, err
		}
	}

	out := make([]Resolved, len(order))
	for i, name := range order {
		out[i] = Resolved{Name: name, Needed: needed[name]}
	}
	return out, nil
}

// TargetInfo is one row of the --list-targets output.
type TargetInfo struct {
	Name        string
	Category    string
	Description string
}

// ListTargets returns all targets sorted by category then name, so that
// repeated --list-targets invocations print identical output.
func (g *Graph) ListTargets() []TargetInfo {
	out := make([]TargetInfo, 0, len(g.order))
	for _, name := range g.order {
		t := g.targets[name]
		out = append(out, TargetInfo{Name: t.Name, Category: t.Category, Description: t.Description})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}
