// Package catalog holds the static declarations the orchestrator plans from:
// the Service Registry (which concrete tools exist, what they need and
// produce) and the Target Graph (which logical targets the user can request
// and how they depend on each other).
//
// Declarations are HCL files loaded once at startup. The catalog is validated
// as a whole at load time and is immutable afterwards; the planner and
// executor receive it explicitly rather than reading ambient globals, so
// tests can build isolated catalogs side by side.
package catalog
