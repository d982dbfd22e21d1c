package catalog

import "fmt"

// Registry is the static catalog of available services. It is populated at
// load time and read-only afterwards.
type Registry struct {
	services map[string]*Service
	order    []string // declaration order, the registry preference order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]*Service)}
}

// Register adds a service definition to the registry.
func (r *Registry) Register(svc *Service) error {
	if _, exists := r.services[svc.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateService, svc.Name)
	}
	r.services[svc.Name] = svc
	r.order = append(r.order, svc.Name)
	return nil
}

// Service returns the named service, or nil when not registered.
func (r *Registry) Service(name string) *Service {
	return r.services[name]
}

// Services returns all services in declaration order.
func (r *Registry) Services() []*Service {
	out := make([]*Service, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.services[name])
	}
	return out
}

// LookupByTarget returns the services that can fulfill the target, in
// declaration (preference) order. An empty result is legal: it means no
// registered service fulfills the target.
func (r *Registry) LookupByTarget(target string) []*Service {
	var out []*Service
	for _, name := range r.order {
		svc := r.services[name]
		for _, t := range svc.Targets {
			if t == target {
				out = append(out, svc)
				break
			}
		}
	}
	return out
}

// validate checks cross-references between registered services: every name
// in an "after" hint must itself be registered.
func (r *Registry) validate() error {
	for _, name := range r.order {
		for _, dep := range r.services[name].After {
			if _, ok := r.services[dep]; !ok {
				return fmt.Errorf("service %q: after %q: %w", name, dep, ErrUnknownDependency)
			}
		}
	}
	return nil
}
