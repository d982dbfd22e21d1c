package app

import (
	"context"
	"fmt"
	"time"

	"github.com/seqqap/seqqap/internal/capability"
	"github.com/seqqap/seqqap/internal/ctxlog"
	"github.com/seqqap/seqqap/internal/executor"
	"github.com/seqqap/seqqap/internal/planner"
	"github.com/seqqap/seqqap/internal/report"
	"github.com/seqqap/seqqap/internal/workspace"
)

// Run performs one pipeline run: scan inputs, plan, execute, report. The
// returned outcome maps to the process exit code; err is non-nil for
// load/plan-time failures, which happen before any external process runs.
func (a *App) Run(ctx context.Context) (workspace.RunOutcome, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run started.")

	if a.config.ListTargets {
		a.printTargets()
	}
	if a.config.ListServices {
		a.printServices()
	}
	if len(a.config.Files) == 0 {
		if a.config.ListTargets || a.config.ListServices {
			return workspace.RunComplete, nil
		}
		return workspace.RunFailed, fmt.Errorf("no input files were provided")
	}

	inputs, err := a.scanInputs()
	if err != nil {
		return workspace.RunFailed, err
	}
	a.logger.Debug("Inputs scanned.", "sample", inputs.sampleID, "capabilities", inputs.caps)

	overrides, err := a.collectOverrides()
	if err != nil {
		return workspace.RunFailed, err
	}

	// Plan before taking the workspace lock: a plan-time failure must leave
	// no side effects at all.
	plan, err := planner.Plan(a.catalog, a.config.Targets, a.config.Excludes, capability.NewSet(inputs.caps...))
	if err != nil {
		return workspace.RunFailed, err
	}
	a.logger.Info("Plan resolved.", "steps", len(plan))
	for _, step := range plan {
		a.logger.Debug("Planned step.", "step", step.ID, "alternatives", step.Alternatives)
	}

	ws, err := workspace.Open(a.config.OutDir, Version)
	if err != nil {
		return workspace.RunFailed, err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			a.logger.Warn("Closing workspace.", "error", cerr)
		}
	}()

	ws.SetSampleID(inputs.sampleID)
	for role, path := range inputs.roles {
		ws.RegisterFile(role, path)
	}
	ws.AddCapabilities(inputs.caps...)
	for _, w := range inputs.warnings {
		ws.AddWarning(w)
		a.logger.Warn(w)
	}

	a.logger.Info("🚀 Starting execution.", "steps", len(plan), "sample", inputs.sampleID)
	exec := executor.New(a.catalog, a.adapters, ws, overrides, time.Duration(a.config.TimeoutSec)*time.Second)
	outcome := exec.Run(ctx, plan)

	if err := report.Write(ws); err != nil {
		a.logger.Error("Writing reports failed.", "error", err)
		return workspace.RunFailed, err
	}
	a.logger.Info("🏁 Run complete.", "outcome", outcome, "dir", ws.Dir())
	return outcome, nil
}
