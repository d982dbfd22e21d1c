package catalog

import (
	"github.com/seqqap/seqqap/internal/capability"
	"github.com/zclconf/go-cty/cty"
)

// Service is the immutable description of one concrete analysis tool: the
// targets it can fulfill, the capabilities it needs and yields, its relative
// order hints, and its user-overridable parameters.
type Service struct {
	Name        string
	Description string

	// Targets this service can fulfill. Declaration order across the catalog
	// is the registry preference order within a target.
	Targets []string

	Requires []capability.Capability
	Excludes []capability.Capability
	Produces []capability.Capability

	// After lists services this one must run after, when both end up in the
	// same plan. Names must be registered; the edge is only applied to
	// services actually planned.
	After []string

	// Runner names the adapter that invokes the tool. Defaults to "exec".
	Runner string

	// Command is the argv template for the exec runner. Tokens of the form
	// {role} or {param} are substituted from workspace file roles and merged
	// parameters.
	Command string

	// Artifacts maps logical workspace roles to paths (relative to the
	// step's work directory) that the tool produces on success.
	Artifacts map[string]string

	// TimeoutSec overrides the run-wide per-service timeout when positive.
	TimeoutSec int

	Params map[string]*Param
}

// Param is one user-overridable service parameter with a typed default.
type Param struct {
	Name        string
	Description string
	Type        cty.Type
	Default     cty.Value
}

// AlternativeSet groups services that interchangeably satisfy one target,
// in rank order: the executor tries the first and falls back down the list.
type AlternativeSet struct {
	Services []string
}

// Target is one logical, user-requestable pipeline stage.
type Target struct {
	Name        string
	Description string
	Category    string

	// Requires are hard prerequisite targets: they must be planned and
	// satisfiable whenever this target is needed.
	Requires []string

	// Wants are soft prerequisites: they are pulled into the plan but are
	// silently dropped when no service for them is applicable to the inputs.
	Wants []string

	// Alternatives are this target's declared alternative sets. When empty,
	// the registry's target membership (services listing this target) forms
	// a single implicit alternative set.
	Alternatives []*AlternativeSet
}
