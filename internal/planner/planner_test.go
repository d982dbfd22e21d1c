package planner_test

import (
	"testing"

	"github.com/seqqap/seqqap/internal/capability"
	"github.com/seqqap/seqqap/internal/catalog"
	"github.com/seqqap/seqqap/internal/planner"
	"github.com/seqqap/seqqap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipelineHCL is a miniature of the shipped catalog: trimming feeds assembly,
// assembly feeds metrics, and DEFAULT softly wants the lot.
const pipelineHCL = `
	service "TrimA" {
		targets  = ["trim"]
		requires = ["paired_reads"]
		produces = ["trimmed_reads"]
		command  = "trim-a {reads_1} {reads_2}"
	}
	service "TrimB" {
		targets  = ["trim"]
		requires = ["paired_reads"]
		produces = ["trimmed_reads"]
		command  = "trim-b {reads_1} {reads_2}"
	}
	service "Assembler" {
		targets  = ["assemble"]
		requires = ["paired_reads"]
		excludes = ["contigs"]
		produces = ["contigs"]
		command  = "assemble {reads_1} {reads_2}"
	}
	service "Metrics" {
		targets  = ["metrics"]
		requires = ["contigs"]
		produces = ["contigs_metrics"]
		command  = "stats {contigs}"
	}

	target "trim" {
		alternative {
			services = ["TrimA", "TrimB"]
		}
	}
	target "assemble" {
		wants = ["trim"]
	}
	target "metrics" {
		wants = ["assemble"]
	}
	target "DEFAULT" {
		wants = ["trim", "assemble", "metrics"]
	}
`

func stepIDs(plan []planner.Step) []string {
	out := make([]string, len(plan))
	for i, s := range plan {
		out[i] = s.ID
	}
	return out
}

func TestPlan_PairedReadsPipeline(t *testing.T) {
	t.Parallel()

	cat := testutil.MustLoadCatalog(t, pipelineHCL)
	plan, err := planner.Plan(cat, []string{"DEFAULT"}, nil,
		capability.NewSet(capability.Reads, capability.PairedReads))
	require.NoError(t, err)

	assert.Equal(t, []string{"trim", "assemble", "metrics"}, stepIDs(plan))
	assert.Equal(t, []string{"TrimA", "TrimB"}, plan[0].Alternatives)
	assert.False(t, plan[0].Needed, "wanted-only targets are not needed")

	// Metrics requires contigs, which only becomes reachable through the
	// assembler. The forward fixpoint keeps it in the plan.
	assert.Equal(t, []string{"Metrics"}, plan[2].Alternatives)
}

func TestPlan_Deterministic(t *testing.T) {
	t.Parallel()

	cat := testutil.MustLoadCatalog(t, pipelineHCL)
	initial := capability.NewSet(capability.Reads, capability.PairedReads)

	first, err := planner.Plan(cat, []string{"DEFAULT"}, nil, initial)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := planner.Plan(cat, []string{"DEFAULT"}, nil, initial)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPlan_ContigsInputPrunesAssembly(t *testing.T) {
	t.Parallel()

	cat := testutil.MustLoadCatalog(t, pipelineHCL)
	plan, err := planner.Plan(cat, []string{"DEFAULT"}, nil,
		capability.NewSet(capability.Contigs))
	require.NoError(t, err)

	// No reads: trimming and assembly prune away, metrics remains.
	assert.Equal(t, []string{"metrics"}, stepIDs(plan))
}

func TestPlan_RequestedTargetUnsatisfiable(t *testing.T) {
	t.Parallel()

	cat := testutil.MustLoadCatalog(t, pipelineHCL)

	// Explicitly requesting assemble with a contigs input: every assembler
	// excludes contigs, so the needed target cannot be fulfilled.
	_, err := planner.Plan(cat, []string{"assemble"}, nil,
		capability.NewSet(capability.Contigs))
	assert.ErrorIs(t, err, planner.ErrUnsatisfiableTarget)
}

func TestPlan_ExcludeTargetDropsIt(t *testing.T) {
	t.Parallel()

	cat := testutil.MustLoadCatalog(t, pipelineHCL)
	plan, err := planner.Plan(cat, []string{"DEFAULT"}, []string{"trim"},
		capability.NewSet(capability.Reads, capability.PairedReads))
	require.NoError(t, err)
	assert.Equal(t, []string{"assemble", "metrics"}, stepIDs(plan))
}

func TestPlan_ExcludeServiceRemovesAlternative(t *testing.T) {
	t.Parallel()

	cat := testutil.MustLoadCatalog(t, pipelineHCL)
	plan, err := planner.Plan(cat, []string{"trim"}, []string{"TrimA"},
		capability.NewSet(capability.Reads, capability.PairedReads))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, []string{"TrimB"}, plan[0].Alternatives)
}

func TestPlan_ExcludeUnknownName(t *testing.T) {
	t.Parallel()

	cat := testutil.MustLoadCatalog(t, pipelineHCL)
	_, err := planner.Plan(cat, []string{"trim"}, []string{"nope"},
		capability.NewSet(capability.PairedReads))
	assert.ErrorIs(t, err, catalog.ErrUnknownTarget)
}

func TestPlan_MultipleAlternativeSetsBecomeSeparateSteps(t *testing.T) {
	t.Parallel()

	cat := testutil.MustLoadCatalog(t, `
		service "QCA" {
			targets  = ["qc"]
			requires = ["reads"]
			command  = "qc-a {reads_1}"
		}
		service "QCB" {
			targets  = ["qc"]
			requires = ["reads"]
			command  = "qc-b {reads_1}"
		}
		target "qc" {
			alternative {
				services = ["QCA"]
			}
			alternative {
				services = ["QCB"]
			}
		}
	`)

	plan, err := planner.Plan(cat, []string{"qc"}, nil, capability.NewSet(capability.Reads))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "qc", plan[0].ID)
	assert.Equal(t, "qc.2", plan[1].ID)
	assert.Equal(t, "qc", plan[1].Target)
}

func TestPlan_AfterHintOrdersTargets(t *testing.T) {
	t.Parallel()

	cat := testutil.MustLoadCatalog(t, `
		service "QC" {
			targets  = ["qc"]
			requires = ["reads"]
			command  = "qc {reads_1}"
		}
		service "Trim" {
			targets  = ["trim"]
			requires = ["reads"]
			after    = ["QC"]
			command  = "trim {reads_1}"
		}
		target "qc" {}
		target "trim" {}
	`)

	// trim is requested first, but its only candidate must run after QC.
	plan, err := planner.Plan(cat, []string{"trim", "qc"}, nil,
		capability.NewSet(capability.Reads))
	require.NoError(t, err)
	assert.Equal(t, []string{"qc", "trim"}, stepIDs(plan))
}

func TestPlan_ConflictingAfterHints(t *testing.T) {
	t.Parallel()

	cat := testutil.MustLoadCatalog(t, `
		service "A" {
			targets = ["ta"]
			after   = ["B"]
			command = "a"
		}
		service "B" {
			targets = ["tb"]
			after   = ["A"]
			command = "b"
		}
		target "ta" {}
		target "tb" {}
	`)

	_, err := planner.Plan(cat, []string{"ta", "tb"}, nil, capability.NewSet())
	assert.ErrorIs(t, err, planner.ErrPlanOrder)
}

func TestPlan_UnknownRequestedTarget(t *testing.T) {
	t.Parallel()

	cat := testutil.MustLoadCatalog(t, pipelineHCL)
	_, err := planner.Plan(cat, []string{"nope"}, nil, capability.NewSet())
	assert.ErrorIs(t, err, catalog.ErrUnknownTarget)
}
