package app

import "github.com/seqqap/seqqap/internal/adapter"

// registerCoreAdapters installs the runners shipped with the binary. Tests
// and embedders can add stubs through NewApp's extra parameter.
func registerCoreAdapters(r *adapter.Registry) {
	r.Register("exec", adapter.NewExecAdapter())
}
