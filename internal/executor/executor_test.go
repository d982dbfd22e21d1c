package executor_test

import (
	"context"
	"testing"

	"github.com/seqqap/seqqap/internal/adapter"
	"github.com/seqqap/seqqap/internal/capability"
	"github.com/seqqap/seqqap/internal/catalog"
	"github.com/seqqap/seqqap/internal/executor"
	"github.com/seqqap/seqqap/internal/planner"
	"github.com/seqqap/seqqap/internal/testutil"
	"github.com/seqqap/seqqap/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAdapter scripts per-service outcomes. Services without a script
// succeed and produce whatever their declaration promises.
type stubAdapter struct {
	outcomes map[string]*adapter.Outcome
	calls    []string
}

func (s *stubAdapter) Invoke(_ context.Context, inv adapter.Invocation) *adapter.Outcome {
	s.calls = append(s.calls, inv.Service.Name)
	if out, ok := s.outcomes[inv.Service.Name]; ok {
		return out
	}
	return &adapter.Outcome{Status: adapter.StatusOK, Produced: inv.Service.Produces}
}

func failure(reason string) *adapter.Outcome {
	return &adapter.Outcome{Status: adapter.StatusFailed, Reason: reason}
}

const pipelineHCL = `
	service "TrimA" {
		runner   = "stub"
		targets  = ["trim"]
		requires = ["paired_reads"]
		produces = ["trimmed_reads"]
	}
	service "TrimB" {
		runner   = "stub"
		targets  = ["trim"]
		requires = ["paired_reads"]
		produces = ["trimmed_reads"]
	}
	service "Assembler" {
		runner   = "stub"
		targets  = ["assemble"]
		requires = ["paired_reads"]
		excludes = ["contigs"]
		produces = ["contigs"]
	}
	service "Metrics" {
		runner   = "stub"
		targets  = ["metrics"]
		requires = ["contigs"]
		produces = ["contigs_metrics"]
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

type fixture struct {
	cat  *catalog.Catalog
	ws   *workspace.Workspace
	stub *stubAdapter
	exec *executor.Executor
}

func newFixture(t *testing.T, outcomes map[string]*adapter.Outcome, initial ...capability.Capability) *fixture {
	t.Helper()

	cat := testutil.MustLoadCatalog(t, pipelineHCL, "stub")

	ws, err := workspace.Open(t.TempDir(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	ws.AddCapabilities(initial...)

	stub := &stubAdapter{outcomes: outcomes}
	adapters := adapter.NewRegistry()
	adapters.Register("stub", stub)

	return &fixture{
		cat:  cat,
		ws:   ws,
		stub: stub,
		exec: executor.New(cat, adapters, ws, nil, 0),
	}
}

func (f *fixture) plan(t *testing.T, targets ...string) []planner.Step {
	t.Helper()
	plan, err := planner.Plan(f.cat, targets, nil, f.ws.Capabilities().Clone())
	require.NoError(t, err)
	return plan
}

func recordByID(t *testing.T, ws *workspace.Workspace, id string) *workspace.StepRecord {
	t.Helper()
	for _, rec := range ws.Records() {
		if rec.ID == id {
			return rec
		}
	}
	t.Fatalf("no record for step %q", id)
	return nil
}

func TestRun_AllStepsSucceed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, capability.Reads, capability.PairedReads)
	outcome := f.exec.Run(context.Background(), f.plan(t, "DEFAULT"))

	assert.Equal(t, workspace.RunComplete, outcome)
	assert.Equal(t, []string{"TrimA", "Assembler", "Metrics"}, f.stub.calls,
		"only the top-ranked applicable alternative runs")
	assert.Equal(t, workspace.StepSucceeded, recordByID(t, f.ws, "trim").State)
	assert.True(t, f.ws.Capabilities().Has("contigs_metrics"))
}

func TestRun_FallbackRecoversStep(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]*adapter.Outcome{
		"TrimA": failure("exit status 1"),
	}, capability.Reads, capability.PairedReads)

	outcome := f.exec.Run(context.Background(), f.plan(t, "DEFAULT"))
	assert.Equal(t, workspace.RunComplete, outcome,
		"a step recovered by a fallback does not degrade the run")

	rec := recordByID(t, f.ws, "trim")
	assert.Equal(t, workspace.StepSucceeded, rec.State)
	assert.Equal(t, "TrimB", rec.Service)

	// The failed first choice stays on the record.
	require.Len(t, rec.Attempts, 2)
	assert.Equal(t, "TrimA", rec.Attempts[0].Service)
	assert.Equal(t, "failed", rec.Attempts[0].Status)
	assert.Equal(t, "exit status 1", rec.Attempts[0].Reason)
	assert.Equal(t, "TrimB", rec.Attempts[1].Service)
	assert.Equal(t, "ok", rec.Attempts[1].Status)
}

func TestRun_NeededStepExhaustsAlternatives(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]*adapter.Outcome{
		"TrimA": failure("exit status 1"),
		"TrimB": failure("exit status 2"),
	}, capability.Reads, capability.PairedReads)

	outcome := f.exec.Run(context.Background(), f.plan(t, "trim"))
	assert.Equal(t, workspace.RunFailed, outcome)

	rec := recordByID(t, f.ws, "trim")
	assert.Equal(t, workspace.StepFailedFinal, rec.State)
	assert.Equal(t, "exit status 2", rec.Reason, "reason reflects the last attempt")
	assert.Len(t, rec.Attempts, 2)
}

func TestRun_NonCriticalFailureDegradesToPartial(t *testing.T) {
	t.Parallel()

	// Everything under DEFAULT is a soft want: nothing requested depends
	// on trimmed reads, so a trim failure merely degrades the run.
	f := newFixture(t, map[string]*adapter.Outcome{
		"TrimA": failure("boom"),
		"TrimB": failure("boom"),
	}, capability.Reads, capability.PairedReads)

	outcome := f.exec.Run(context.Background(), f.plan(t, "DEFAULT"))
	assert.Equal(t, workspace.RunPartial, outcome,
		"trimming is optional: later steps use the raw reads")
	assert.Equal(t, workspace.StepFailedFinal, recordByID(t, f.ws, "trim").State)
	assert.Equal(t, workspace.StepSucceeded, recordByID(t, f.ws, "assemble").State)
	assert.Equal(t, workspace.StepSucceeded, recordByID(t, f.ws, "metrics").State)
}

func TestRun_FailedOptionalStepOnCriticalPath(t *testing.T) {
	t.Parallel()

	// metrics is requested, so contigs is a needed capability. The assembler
	// is only wanted, but it is the sole producer of contigs: its failure
	// fails the run, and the metrics step ends FAILED_FINAL, not SKIPPED.
	f := newFixture(t, map[string]*adapter.Outcome{
		"Assembler": failure("assembly blew up"),
	}, capability.Reads, capability.PairedReads)

	outcome := f.exec.Run(context.Background(), f.plan(t, "metrics"))
	assert.Equal(t, workspace.RunFailed, outcome)

	assert.Equal(t, workspace.StepFailedFinal, recordByID(t, f.ws, "assemble").State)

	rec := recordByID(t, f.ws, "metrics")
	assert.Equal(t, workspace.StepFailedFinal, rec.State)
	assert.Equal(t, "no applicable alternative for a required step", rec.Reason)
	assert.Empty(t, rec.Attempts, "metrics never ran")
}

func TestRun_RuntimeRecheckSkipsInapplicableStep(t *testing.T) {
	t.Parallel()

	// The static pass plans the assembler because the initial set has no
	// contigs. A scripted outcome then produces contigs early, and the
	// runtime re-check rules the assembler out.
	f := newFixture(t, map[string]*adapter.Outcome{
		"TrimA": {Status: adapter.StatusOK, Produced: []capability.Capability{"trimmed_reads", "contigs"}},
	}, capability.Reads, capability.PairedReads)

	outcome := f.exec.Run(context.Background(), f.plan(t, "DEFAULT"))
	assert.Equal(t, workspace.RunPartial, outcome)

	rec := recordByID(t, f.ws, "assemble")
	assert.Equal(t, workspace.StepSkipped, rec.State)
	assert.Equal(t, "no applicable alternative", rec.Reason)
	assert.NotContains(t, f.stub.calls, "Assembler")

	// metrics still runs: the contigs capability is there.
	assert.Equal(t, workspace.StepSucceeded, recordByID(t, f.ws, "metrics").State)
}

func TestRun_CanceledContextSkipsRemainingSteps(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, capability.Reads, capability.PairedReads)
	plan := f.plan(t, "DEFAULT")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := f.exec.Run(ctx, plan)
	assert.Equal(t, workspace.RunFailed, outcome)
	assert.Empty(t, f.stub.calls)
	for _, rec := range f.ws.Records() {
		assert.Equal(t, workspace.StepSkipped, rec.State)
		assert.Equal(t, "run canceled", rec.Reason)
	}
}
