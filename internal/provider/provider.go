// Package provider keeps the named text services the narrative generator
// can be pointed at.
package provider

import (
	"fmt"
	"sort"

	"FieldOps/internal/ports"
)

// Registry keeps a mapping from provider names to their implementations.
type Registry struct {
	providers map[string]ports.TextGenerator
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]ports.TextGenerator{}}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(gen ports.TextGenerator) {
	if gen == nil {
		return
	}
	if r.providers == nil {
		r.providers = map[string]ports.TextGenerator{}
	}
	r.providers[gen.Name()] = gen
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.TextGenerator, error) {
	if gen, ok := r.providers[name]; ok {
		return gen, nil
	}
	return nil, fmt.Errorf("text provider %s is not registered", name)
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves the preferred provider, falling back to the only
// registered one. It returns nil when nothing is registered, which routes
// every narrative call to its template.
func (r *Registry) Select(preferred string) (ports.TextGenerator, error) {
	if preferred != "" {
		return r.Resolve(preferred)
	}
	switch len(r.providers) {
	case 0:
		return nil, nil
	case 1:
		for _, gen := range r.providers {
			return gen, nil
		}
	}
	return nil, fmt.Errorf("several text providers registered (%v), choose one", r.Names())
}
