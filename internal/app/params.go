package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/seqqap/seqqap/internal/catalog"
	"gopkg.in/yaml.v3"
)

// collectOverrides merges parameter overrides from the --params yaml file
// and the repeatable -p service.param=value flags, the flags winning, and
// validates the result against the registry so typos fail before any
// external process runs.
func (a *App) collectOverrides() (catalog.Overrides, error) {
	overrides := make(catalog.Overrides)

	if a.config.ParamsFile != "" {
		data, err := os.ReadFile(a.config.ParamsFile)
		if err != nil {
			return nil, fmt.Errorf("reading params file: %w", err)
		}
		// yaml scalars may be numbers or bools; everything is carried as a
		// string and converted against the declared parameter type later.
		var raw map[string]map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing params file %s: %w", a.config.ParamsFile, err)
		}
		for svc, params := range raw {
			for name, value := range params {
				overrides.Set(svc, name, fmt.Sprint(value))
			}
		}
	}

	for _, setting := range a.config.ParamOverrides {
		key, value, ok := strings.Cut(setting, "=")
		if !ok {
			return nil, fmt.Errorf("invalid parameter override %q, want service.param=value", setting)
		}
		svc, name, ok := strings.Cut(key, ".")
		if !ok {
			return nil, fmt.Errorf("invalid parameter override %q, want service.param=value", setting)
		}
		overrides.Set(svc, name, value)
	}

	if err := overrides.Validate(a.catalog.Registry); err != nil {
		return nil, err
	}
	return overrides, nil
}
