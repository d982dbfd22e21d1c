// Package executor runs a plan against a shared workspace, one step at a
// time, on a single control goroutine. Sequential execution is deliberate:
// each step consumes files and capabilities recorded by earlier steps, and
// the fallback logic needs one step's outcome before choosing the next
// step's candidate.
package executor

import (
	"context"
	"time"

	"github.com/seqqap/seqqap/internal/adapter"
	"github.com/seqqap/seqqap/internal/capability"
	"github.com/seqqap/seqqap/internal/catalog"
	"github.com/seqqap/seqqap/internal/ctxlog"
	"github.com/seqqap/seqqap/internal/planner"
	"github.com/seqqap/seqqap/internal/workspace"
)

// Executor executes one plan. It is the sole mutator of its workspace.
type Executor struct {
	cat       *catalog.Catalog
	adapters  *adapter.Registry
	ws        *workspace.Workspace
	overrides catalog.Overrides

	// defaultTimeout bounds each service invocation unless the service
	// declaration carries its own timeout. Zero means unbounded.
	defaultTimeout time.Duration
}

// New assembles an executor for one run.
func New(cat *catalog.Catalog, adapters *adapter.Registry, ws *workspace.Workspace, overrides catalog.Overrides, defaultTimeout time.Duration) *Executor {
	return &Executor{
		cat:            cat,
		adapters:       adapters,
		ws:             ws,
		overrides:      overrides,
		defaultTimeout: defaultTimeout,
	}
}

// Run executes the plan in order and returns the run-level outcome. Every
// step reaches a terminal state exactly once; completed artifacts are never
// rolled back, even when the run is canceled or fails.
func (e *Executor) Run(ctx context.Context, plan []planner.Step) workspace.RunOutcome {
	logger := ctxlog.FromContext(ctx)

	needed := neededCapabilities(e.cat, plan)

	degraded := false
	failed := false

	for i, step := range plan {
		if ctx.Err() != nil {
			e.ws.AppendRecord(&workspace.StepRecord{
				ID: step.ID, Target: step.Target,
				State: workspace.StepSkipped, Reason: "run canceled",
			})
			failed = true
			continue
		}

		rec := e.runStep(ctx, plan, i, needed)
		e.ws.AppendRecord(rec)

		switch rec.State {
		case workspace.StepSucceeded:
			// May have recovered via a fallback; the attempts list carries
			// the failed first choices.
		case workspace.StepSkipped:
			degraded = true
		case workspace.StepFailedFinal:
			degraded = true
			if e.critical(plan, i, needed) {
				failed = true
			}
		}
	}

	if ctx.Err() != nil {
		failed = true
	}

	outcome := workspace.RunComplete
	switch {
	case failed:
		outcome = workspace.RunFailed
	case degraded:
		outcome = workspace.RunPartial
	}
	e.ws.SetOutcome(outcome)
	logger.Info("Run finished.", "outcome", outcome)
	return outcome
}

// runStep drives one step through its state machine: re-check applicability
// of the top-ranked untried alternative, invoke it, fall back down the
// ranked list on failure, and settle on a terminal state.
func (e *Executor) runStep(ctx context.Context, plan []planner.Step, idx int, needed capability.Set) *workspace.StepRecord {
	step := plan[idx]
	logger := ctxlog.FromContext(ctx).With("step", step.ID)
	rec := &workspace.StepRecord{ID: step.ID, Target: step.Target, State: workspace.StepPending}

	tried := 0
	for _, name := range step.Alternatives {
		if ctx.Err() != nil {
			break
		}
		svc := e.cat.Registry.Service(name)

		// The runtime re-check: capabilities recorded by earlier steps can
		// rule out alternatives the static pass still allowed.
		if !e.ws.Capabilities().Satisfies(svc.Requires, svc.Excludes) {
			logger.Debug("Alternative not applicable.", "service", name)
			continue
		}

		tried++
		rec.State = workspace.StepRunning
		logger.Info("▶️ Running service.", "service", name)

		outcome, attempt := e.invoke(ctx, step, svc)
		rec.Attempts = append(rec.Attempts, attempt)

		if outcome.Status == adapter.StatusOK {
			rec.State = workspace.StepSucceeded
			rec.Service = name
			e.collect(svc, outcome, rec)
			logger.Info("✅ Service succeeded.", "service", name)
			return rec
		}

		logger.Warn("Service failed.", "service", name, "reason", attempt.Reason)
		rec.State = workspace.StepFailedRetrying
		rec.Reason = attempt.Reason
	}

	if ctx.Err() != nil {
		rec.State = workspace.StepFailedFinal
		rec.Reason = "run canceled"
		return rec
	}

	if tried == 0 {
		// Nothing was applicable. Not an error, unless a still-needed
		// capability now has no producer left.
		if e.critical(plan, idx, needed) {
			rec.State = workspace.StepFailedFinal
			rec.Reason = "no applicable alternative for a required step"
		} else {
			rec.State = workspace.StepSkipped
			rec.Reason = "no applicable alternative"
		}
		logger.Info("Step not run.", "state", rec.State, "reason", rec.Reason)
		return rec
	}

	// Alternatives exhausted.
	rec.State = workspace.StepFailedFinal
	logger.Error("Step failed, no alternatives remain.", "reason", rec.Reason)
	return rec
}

// invoke runs one alternative through its adapter and records the attempt.
func (e *Executor) invoke(ctx context.Context, step planner.Step, svc *catalog.Service) (*adapter.Outcome, workspace.AttemptRecord) {
	start := time.Now()
	fail := func(reason string) (*adapter.Outcome, workspace.AttemptRecord) {
		return &adapter.Outcome{Status: adapter.StatusFailed, Reason: reason},
			workspace.AttemptRecord{
				Service: svc.Name, Status: "failed", Reason: reason,
				Duration: time.Since(start).Seconds(),
			}
	}

	ad := e.adapters.Lookup(svc.Runner)
	if ad == nil {
		return fail("runner " + svc.Runner + " not registered")
	}
	params, err := svc.MergedParams(e.overrides[svc.Name])
	if err != nil {
		return fail(err.Error())
	}
	workDir, err := e.ws.StepDir(step.ID)
	if err != nil {
		return fail(err.Error())
	}

	timeout := e.defaultTimeout
	if svc.TimeoutSec > 0 {
		timeout = time.Duration(svc.TimeoutSec) * time.Second
	}

	outcome := ad.Invoke(ctx, adapter.Invocation{
		Service: svc,
		Params:  params,
		Files:   e.ws.Files(),
		WorkDir: workDir,
		Timeout: timeout,
	})

	attempt := workspace.AttemptRecord{
		Service:  svc.Name,
		Status:   "ok",
		Duration: time.Since(start).Seconds(),
		Log:      outcome.Log,
	}
	if outcome.Status != adapter.StatusOK {
		attempt.Status = "failed"
		attempt.Reason = outcome.Reason
	}
	return outcome, attempt
}

// collect applies a successful outcome to the workspace: artifact roles,
// produced capabilities, and metrics for the report.
func (e *Executor) collect(svc *catalog.Service, outcome *adapter.Outcome, rec *workspace.StepRecord) {
	for role, path := range outcome.Artifacts {
		e.ws.RegisterFile(role, path)
	}
	e.ws.AddCapabilities(svc.Produces...)
	e.ws.AddCapabilities(outcome.Produced...)
	if len(outcome.Metrics) > 0 {
		rec.Metrics = outcome.Metrics
	}
}
