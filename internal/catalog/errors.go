package catalog

import "errors"

// Load-time validation errors. All of these are fatal and reported before
// any planning or external process execution happens.
var (
	// ErrDuplicateService is returned when two services declare the same name.
	ErrDuplicateService = errors.New("duplicate service")

	// ErrUnknownDependency is returned when a service's "after" hint or a
	// target's alternative names a service that is not registered.
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrUnknownTarget is returned when a requested or referenced target is
	// not declared in the target graph.
	ErrUnknownTarget = errors.New("unknown target")

	// ErrCyclicTarget is returned when target prerequisite expansion
	// revisits a target already on the current expansion path.
	ErrCyclicTarget = errors.New("cyclic target dependency")
)
