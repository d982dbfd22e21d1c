package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGraph(t *testing.T, targets ...*Target) *Graph {
	t.Helper()
	g := NewGraph()
	for _, tgt := range targets {
		require.NoError(t, g.AddTarget(tgt))
	}
	return g
}

func names(entries []Resolved) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestResolve_PrerequisitesPrecedeDependents(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		&Target{Name: "trim"},
		&Target{Name: "assemble", Requires: []string{"trim"}},
		&Target{Name: "metrics", Requires: []string{"assemble"}},
	)

	got, err := g.Resolve([]string{"metrics"})
	require.NoError(t, err)
	assert.Equal(t, []string{"trim", "assemble", "metrics"}, names(got))
	for _, e := range got {
		assert.True(t, e.Needed, "hard prerequisites of a requested target are needed: %s", e.Name)
	}
}

func TestResolve_WantsAreNotNeeded(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		&Target{Name: "qc"},
		&Target{Name: "assemble"},
		&Target{Name: "DEFAULT", Wants: []string{"qc", "assemble"}},
	)

	got, err := g.Resolve([]string{"DEFAULT"})
	require.NoError(t, err)
	require.Equal(t, []string{"qc", "assemble", "DEFAULT"}, names(got))
	assert.False(t, got[0].Needed)
	assert.False(t, got[1].Needed)
	assert.True(t, got[2].Needed)
}

func TestResolve_ExplicitRequestUpgradesWantedTarget(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		&Target{Name: "base"},
		&Target{Name: "qc", Requires: []string{"base"}},
		&Target{Name: "DEFAULT", Wants: []string{"qc"}},
	)

	// qc enters the closure as a soft want first, then is requested directly:
	// it and its own hard prerequisites become needed.
	got, err := g.Resolve([]string{"DEFAULT", "qc"})
	require.NoError(t, err)
	byName := make(map[string]bool)
	for _, e := range got {
		byName[e.Name] = e.Needed
	}
	assert.True(t, byName["qc"])
	assert.True(t, byName["base"])
	assert.True(t, byName["DEFAULT"])
}

func TestResolve_DuplicatesKeepFirstPosition(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		&Target{Name: "trim"},
		&Target{Name: "assemble", Requires: []string{"trim"}},
	)

	got, err := g.Resolve([]string{"assemble", "trim", "assemble"})
	require.NoError(t, err)
	assert.Equal(t, []string{"trim", "assemble"}, names(got))
}

func TestResolve_UnknownTarget(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, &Target{Name: "trim"})
	_, err := g.Resolve([]string{"nope"})
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestResolve_CycleDetected(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		&Target{Name: "a", Requires: []string{"b"}},
		&Target{Name: "b", Wants: []string{"a"}},
	)

	_, err := g.Resolve([]string{"a"})
	assert.ErrorIs(t, err, ErrCyclicTarget)
}

func TestAddTarget_Duplicate(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	require.NoError(t, g.AddTarget(&Target{Name: "trim"}))
	assert.Error(t, g.AddTarget(&Target{Name: "trim"}))
}

func TestListTargets_SortedByCategoryThenName(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		&Target{Name: "report", Category: "reporting"},
		&Target{Name: "trim", Category: "preprocessing"},
		&Target{Name: "clean", Category: "preprocessing"},
	)

	got := g.ListTargets()
	require.Len(t, got, 3)
	assert.Equal(t, "clean", got[0].Name)
	assert.Equal(t, "trim", got[1].Name)
	assert.Equal(t, "report", got[2].Name)
}

func TestRegistry_DuplicateAndLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(&Service{Name: "A", Targets: []string{"run"}}))
	require.NoError(t, r.Register(&Service{Name: "B", Targets: []string{"run", "other"}}))
	assert.ErrorIs(t, r.Register(&Service{Name: "A"}), ErrDuplicateService)

	byTarget := r.LookupByTarget("run")
	require.Len(t, byTarget, 2)
	assert.Equal(t, "A", byTarget[0].Name, "lookup preserves declaration order")
	assert.Empty(t, r.LookupByTarget("nope"))
}
