// Package adapter defines the seam between the executor and the concrete
// external analysis tools. The executor only ever sees the uniform Invoke
// contract and the declared produced sets; which binary sits behind a
// service is invisible to it.
package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/seqqap/seqqap/internal/capability"
	"github.com/seqqap/seqqap/internal/catalog"
	"github.com/zclconf/go-cty/cty"
)

// Status is the adapter-level result of one invocation.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
)

// Invocation bundles everything an adapter needs to run one service: the
// service declaration, the merged parameters, a snapshot of the workspace's
// file roles, a private work directory, and the effective timeout.
type Invocation struct {
	Service *catalog.Service
	Params  map[string]cty.Value
	Files   map[string]string
	WorkDir string
	Timeout time.Duration
}

// Outcome is what an invocation reports back. The executor inspects only
// Status and the produced sets; everything else flows into the report.
type Outcome struct {
	Status    Status
	Reason    string
	Artifacts map[string]string // logical role -> absolute path
	Produced  []capability.Capability
	Metrics   map[string]any
	Log       string
}

// Adapter invokes one service against the workspace. Implementations must
// honor ctx cancellation and deadline by terminating the external process.
type Adapter interface {
	Invoke(ctx context.Context, inv Invocation) *Outcome
}

// Registry maps runner names from service declarations to Adapter
// implementations. Populated at startup, read-only afterwards.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry returns a registry preloaded with the given adapters.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under a runner name. A duplicate name is a
// programmer error, as in any mismatch between code and catalog.
func (r *Registry) Register(name string, a Adapter) {
	if _, exists := r.adapters[name]; exists {
		panic(fmt.Sprintf("adapter %q already registered", name))
	}
	r.adapters[name] = a
}

// Lookup returns the adapter for a runner name, or nil when unregistered.
func (r *Registry) Lookup(name string) Adapter {
	return r.adapters[name]
}

// Names returns the set of registered runner names, for catalog validation.
func (r *Registry) Names() map[string]bool {
	out := make(map[string]bool, len(r.adapters))
	for name := range r.adapters {
		out[name] = true
	}
	return out
}
