package catalog

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Overrides holds the user's per-service parameter overrides, keyed by
// service name then parameter name. Values are the raw strings from the
// command line or the --params file; they are type-converted against the
// declared parameter types when a service is invoked.
type Overrides map[string]map[string]string

// Set records one override, creating the per-service map on first use.
func (o Overrides) Set(service, param, value string) {
	m, ok := o[service]
	if !ok {
		m = make(map[string]string)
		o[service] = m
	}
	m[param] = value
}

// Validate fails on overrides that name an unregistered service or an
// undeclared parameter, so typos surface before anything runs.
func (o Overrides) Validate(reg *Registry) error {
	for svcName, params := range o {
		svc := reg.Service(svcName)
		if svc == nil {
			return fmt.Errorf("parameter override for unknown service %q", svcName)
		}
		for name := range params {
			if _, ok := svc.Params[name]; !ok {
				return fmt.Errorf("service %q has no parameter %q", svcName, name)
			}
		}
	}
	return nil
}

// MergedParams resolves the service's effective parameters: declared
// defaults overlaid with the user's overrides, each converted to the
// declared cty type.
func (s *Service) MergedParams(overrides map[string]string) (map[string]cty.Value, error) {
	out := make(map[string]cty.Value, len(s.Params))
	for name, p := range s.Params {
		out[name] = p.Default
	}
	for name, raw := range overrides {
		p, ok := s.Params[name]
		if !ok {
			return nil, fmt.Errorf("service %q has no parameter %q", s.Name, name)
		}
		val, err := convert.Convert(cty.StringVal(raw), p.Type)
		if err != nil {
			return nil, fmt.Errorf("service %q parameter %q: %w", s.Name, name, err)
		}
		out[name] = val
	}
	return out, nil
}
