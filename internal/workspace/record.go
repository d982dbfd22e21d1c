package workspace

// StepState is the lifecycle state of one plan step. Succeeded, Skipped and
// FailedFinal are terminal; the executor never revisits a terminal step.
type StepState string

const (
	StepPending        StepState = "PENDING"
	StepRunning        StepState = "RUNNING"
	StepSucceeded      StepState = "SUCCEEDED"
	StepFailedRetrying StepState = "FAILED_RETRYING"
	StepFailedFinal    StepState = "FAILED_FINAL"
	StepSkipped        StepState = "SKIPPED"
)

// RunOutcome is the run-level result across all steps.
type RunOutcome string

const (
	// RunComplete means every step succeeded.
	RunComplete RunOutcome = "COMPLETE"
	// RunPartial means some non-critical step was skipped or failed, but
	// every requested target was still minimally satisfied.
	RunPartial RunOutcome = "PARTIAL"
	// RunFailed means a requested target's critical path failed.
	RunFailed RunOutcome = "FAILED"
)

// AttemptRecord describes one invocation of one alternative service within a
// step, including failed attempts that a later alternative recovered from.
type AttemptRecord struct {
	Service  string  `json:"service"`
	Status   string  `json:"status"` // "ok" or "failed"
	Reason   string  `json:"reason,omitempty"`
	Duration float64 `json:"duration_sec"`
	Log      string  `json:"log,omitempty"`
}

// StepRecord is the workspace's account of one executed plan step: its final
// state, the alternative that actually ran, and every attempt in order. A
// run that completes via a fallback still shows the failed first-ranked
// attempt here; failures are never silently swallowed.
type StepRecord struct {
	ID       string          `json:"id"`
	Target   string          `json:"target"`
	State    StepState       `json:"state"`
	Service  string          `json:"service,omitempty"` // winning alternative
	Reason   string          `json:"reason,omitempty"`
	Attempts []AttemptRecord `json:"attempts,omitempty"`
	Metrics  map[string]any  `json:"metrics,omitempty"`
}
