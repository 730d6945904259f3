package provider

import "fmt"

// Registry holds all configured strategies and allows lookup by provider
// name. This is the single dispatch point; no auth logic lives here.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry registers the given strategies by name. Names must be unique.
func NewRegistry(list ...Strategy) *Registry {
	m := make(map[string]Strategy)
	for _, s := range list {
		m[s.Name()] = s
	}
	return &Registry{strategies: m}
}

// Get returns the strategy by name or an error if not registered.
func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown auth provider: %s", name)
	}
	return s, nil
}

// Names lists the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	return names
}
