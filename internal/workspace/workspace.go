// Package workspace holds the mutable, run-scoped state shared across plan
// steps: input file registrations keyed by logical role, intermediate
// artifacts, the accumulated capability set, and the ordered step records
// that become the final report. The executor is the sole mutator within a
// run; a lock file keeps a second in-flight run out of the same directory.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/seqqap/seqqap/internal/capability"
)

// ErrLocked is returned when the designated workspace directory is already
// locked by another in-flight run.
var ErrLocked = errors.New("workspace is locked by another run")

const lockFileName = ".seqqap.lock"

// RunInfo is run-level metadata stamped into the final report.
type RunInfo struct {
	RunID    string     `json:"run_id"`
	Version  string     `json:"version"`
	SampleID string     `json:"sample_id,omitempty"`
	Start    time.Time  `json:"start"`
	End      time.Time  `json:"end"`
	Duration float64    `json:"duration_sec"`
	Outcome  RunOutcome `json:"outcome"`
}

// Workspace is the directory and state shared by all steps of a single run.
type Workspace struct {
	dir      string
	lockPath string

	info     RunInfo
	files    map[string]string // logical role -> absolute path
	caps     capability.Set
	records  []*StepRecord
	warnings []string
}

// Open creates the workspace directory if needed and takes its lock. The
// lock is a plain existence-based file holding the owner pid; a stale lock
// from a crashed run must be removed by hand, which is deliberate: the
// directory may hold partial results worth inspecting first.
func Open(dir, version string) (*Workspace, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace directory: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	lockPath := filepath.Join(abs, lockFileName)
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w (%s)", ErrLocked, lockPath)
		}
		return nil, fmt.Errorf("taking workspace lock: %w", err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	return &Workspace{
		dir:      abs,
		lockPath: lockPath,
		info: RunInfo{
			RunID:   uuid.NewString(),
			Version: version,
			Start:   time.Now(),
		},
		files: make(map[string]string),
		caps:  capability.NewSet(),
	}, nil
}

// Close stamps the end time and releases the lock. Safe to call on every
// exit path, including after cancellation.
func (w *Workspace) Close() error {
	w.info.End = time.Now()
	w.info.Duration = w.info.End.Sub(w.info.Start).Seconds()
	if err := os.Remove(w.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("releasing workspace lock: %w", err)
	}
	return nil
}

// Dir returns the workspace's absolute directory path.
func (w *Workspace) Dir() string { return w.dir }

// Info returns the run metadata.
func (w *Workspace) Info() RunInfo { return w.info }

// SetSampleID records the sample identifier used in reports.
func (w *Workspace) SetSampleID(id string) { w.info.SampleID = id }

// SetOutcome records the run-level outcome.
func (w *Workspace) SetOutcome(outcome RunOutcome) { w.info.Outcome = outcome }

// RegisterFile binds a logical role ("reads_1", "assembly", ...) to a file
// path. Later registrations of the same role win: a trimmed read set
// replaces the raw one as the canonical "reads_1" for downstream steps.
func (w *Workspace) RegisterFile(role, path string) {
	w.files[role] = path
}

// File returns the path bound to a role, or "" when the role is unbound.
func (w *Workspace) File(role string) string { return w.files[role] }

// Files returns a copy of all role bindings.
func (w *Workspace) Files() map[string]string {
	out := make(map[string]string, len(w.files))
	for role, path := range w.files {
		out[role] = path
	}
	return out
}

// AddCapabilities records produced capabilities. Capabilities accumulate
// monotonically; there is no way to retract one.
func (w *Workspace) AddCapabilities(caps ...capability.Capability) {
	w.caps.Add(caps...)
}

// Capabilities returns the accumulated capability set. Callers must treat
// it as read-only; all mutation goes through AddCapabilities.
func (w *Workspace) Capabilities() capability.Set { return w.caps }

// AppendRecord appends a step record in execution order.
func (w *Workspace) AppendRecord(rec *StepRecord) {
	w.records = append(w.records, rec)
}

// Records returns the step records in execution order.
func (w *Workspace) Records() []*StepRecord { return w.records }

// AddWarning records a run-level warning for the report.
func (w *Workspace) AddWarning(msg string) {
	w.warnings = append(w.warnings, msg)
}

// Warnings returns the accumulated run-level warnings.
func (w *Workspace) Warnings() []string { return w.warnings }

// StepDir creates and returns the per-step work directory for a step ID.
func (w *Workspace) StepDir(stepID string) (string, error) {
	dir := filepath.Join(w.dir, stepID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating step directory: %w", err)
	}
	return dir, nil
}
